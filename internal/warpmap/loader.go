package warpmap

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/png"
	"os"

	_ "github.com/ftrvxmtrx/tga"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"mirror-warp/internal/logging"
)

// Load reads an encoded map (PNG, TGA, BMP or TIFF) and returns its raw
// channels as NRGBA. The alpha channel carries data, so lossy or
// premultiplied formats corrupt the low byte of v.
func Load(path string) (*image.NRGBA, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("warpmap: read %s: %w", path, err)
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("warpmap: decode %s: %w", path, err)
	}

	logging.Logger().Debug("warp map loaded", "path", path, "format", format,
		"width", img.Bounds().Dx(), "height", img.Bounds().Dy())

	return toNRGBA(img), nil
}

// toNRGBA converts any image to NRGBA, rebased to a zero origin.
func toNRGBA(src image.Image) *image.NRGBA {
	b := src.Bounds()
	if n, ok := src.(*image.NRGBA); ok && b.Min == (image.Point{}) {
		return n
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))

	switch s := src.(type) {
	case *image.NRGBA:
		// Row copy; draw.Draw would round-trip through premultiplied alpha.
		for y := 0; y < b.Dy(); y++ {
			si := s.PixOffset(b.Min.X, b.Min.Y+y)
			copy(dst.Pix[dst.PixOffset(0, y):dst.PixOffset(b.Dx(), y)], s.Pix[si:si+b.Dx()*4])
		}
	case *image.YCbCr, *image.Gray:
		// No alpha: draw and force it opaque
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
		for i := 3; i < len(dst.Pix); i += 4 {
			dst.Pix[i] = 255
		}
	default:
		if _, premul := src.(*image.RGBA); premul {
			logging.Logger().Warn("warp map stored premultiplied; translucent texels lose precision")
		}
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				c := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
				i := dst.PixOffset(x, y)
				dst.Pix[i] = c.R
				dst.Pix[i+1] = c.G
				dst.Pix[i+2] = c.B
				dst.Pix[i+3] = c.A
			}
		}
	}
	return dst
}
