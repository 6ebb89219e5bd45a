package export

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"

	"mirror-warp/internal/logging"
	"mirror-warp/internal/warpmap"
)

// DefaultFileName is the debug export written next to the data directory.
const DefaultFileName = "warp_map_decoded.png"

// DefaultPath returns the fixed debug export location for dataDir:
// a sibling of the data directory, not inside it.
func DefaultPath(dataDir string) string {
	return filepath.Join(filepath.Dir(filepath.Clean(dataDir)), DefaultFileName)
}

// ToImage encodes a decoded map as 16-bit RGBA, channels clamped to [0, 1].
// Runtime maps export with b=0, a=1 like the debug variant.
func ToImage(m *warpmap.DecodedMap) *image.NRGBA64 {
	img := image.NewNRGBA64(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			t := m.RGBA(x, y)
			i := img.PixOffset(x, y)
			for c := 0; c < 4; c++ {
				q := quantize16(t[c])
				img.Pix[i+c*2] = uint8(q >> 8)
				img.Pix[i+c*2+1] = uint8(q)
			}
		}
	}
	return img
}

func quantize16(f float32) uint16 {
	v := float64(f)
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	if v >= 1 {
		return 0xffff
	}
	return uint16(math.Round(v * 0xffff))
}

// Write encodes m to path, picking the encoder from the extension:
// .png (16-bit), .tif/.tiff (16-bit, deflate) or .webp (lossless, 8-bit).
// The map itself is never modified.
func Write(path string, m *warpmap.DecodedMap) error {
	enc, err := encoderFor(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("export: mkdir %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: create %s: %w", path, err)
	}

	if err := enc(f, ToImage(m)); err != nil {
		f.Close()
		return fmt.Errorf("export: encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("export: close %s: %w", path, err)
	}

	logging.Logger().Info("decoded warp map exported", "path", path, "width", m.Width, "height", m.Height)
	return nil
}

type encodeFunc func(io.Writer, image.Image) error

func encoderFor(path string) (encodeFunc, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return png.Encode, nil
	case ".tif", ".tiff":
		return func(w io.Writer, img image.Image) error {
			return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
		}, nil
	case ".webp":
		return func(w io.Writer, img image.Image) error {
			return nativewebp.Encode(w, to8Bit(img), nil)
		}, nil
	default:
		return nil, fmt.Errorf("export: unsupported extension %q", filepath.Ext(path))
	}
}

// to8Bit keeps the high byte of each 16-bit channel.
func to8Bit(img image.Image) *image.NRGBA {
	src, ok := img.(*image.NRGBA64)
	if !ok {
		return Preview(img, 0)
	}
	dst := image.NewNRGBA(src.Rect)
	for i := 0; i < len(dst.Pix); i++ {
		dst.Pix[i] = src.Pix[i*2]
	}
	return dst
}

// Preview downscales an exported map so its longest side is at most size.
// Smaller images are returned as 8-bit copies at their own size.
func Preview(img image.Image, size int) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if size > 0 && (w > size || h > size) {
		if w >= h {
			h = max(1, h*size/w)
			w = size
		} else {
			w = max(1, w*size/h)
			h = size
		}
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
