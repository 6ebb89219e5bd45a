package export

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"

	"mirror-warp/internal/warpmap"
)

func debugMap(t *testing.T) *warpmap.DecodedMap {
	t.Helper()
	m, err := warpmap.DecodePixels([]warpmap.PackedPixel{
		{8, 0, 4, 0},
		{0, 0, 8, 0},
		{255, 255, 8, 0},
		{4, 0, 12, 0},
	}, 2, 2, warpmap.Options{Divisor: 4095, BitDepth: 8, DebugMask: true})
	require.NoError(t, err)
	return m
}

func TestDefaultPath(t *testing.T) {
	assert.Equal(t, filepath.Join("/srv", "app", DefaultFileName), DefaultPath("/srv/app/Data"))
	assert.Equal(t, filepath.Join("/srv", "app", DefaultFileName), DefaultPath("/srv/app/Data/"))
}

func TestToImage(t *testing.T) {
	img := ToImage(debugMap(t))
	require.Equal(t, image.Rect(0, 0, 2, 2), img.Bounds())

	c := img.NRGBA64At(0, 0)
	assert.InDelta(t, 2048.0/4095*0xffff, float64(c.R), 1)
	assert.InDelta(t, 1024.0/4095*0xffff, float64(c.G), 1)
	assert.Equal(t, uint16(0), c.B)
	assert.Equal(t, uint16(0xffff), c.A)

	// Masked edge texel.
	c = img.NRGBA64At(1, 0)
	assert.Equal(t, uint16(0), c.R)
	assert.Equal(t, uint16(0), c.G)

	// Out-of-range u clamps in the export only.
	c = img.NRGBA64At(0, 1)
	assert.Equal(t, uint16(0xffff), c.R)
}

func TestWritePNGRoundTrip(t *testing.T) {
	m := debugMap(t)
	path := filepath.Join(t.TempDir(), "out", "map.png")
	require.NoError(t, Write(path, m))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	got, err := png.Decode(f)
	require.NoError(t, err)

	want := ToImage(m)
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			assert.Equal(t, want.NRGBA64At(x, y), color.NRGBA64Model.Convert(got.At(x, y)), "texel %d,%d", x, y)
		}
	}
}

func TestWriteTIFF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.tiff")
	require.NoError(t, Write(path, debugMap(t)))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	got, err := tiff.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 2, 2), got.Bounds())
}

func TestWriteWebP(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.webp")
	require.NoError(t, Write(path, debugMap(t)))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	got, err := webp.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 2, 2), got.Bounds())
}

func TestWriteReportsErrors(t *testing.T) {
	m := debugMap(t)
	before := append([]float32(nil), m.Pix...)

	err := Write(filepath.Join(t.TempDir(), "map.jpg"), m)
	assert.ErrorContains(t, err, "unsupported extension")

	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))
	err = Write(filepath.Join(blocker, "map.png"), m)
	assert.Error(t, err)

	assert.Equal(t, before, m.Pix)
}

func TestPreview(t *testing.T) {
	src := image.NewNRGBA64(image.Rect(0, 0, 400, 100))
	p := Preview(src, 100)
	assert.Equal(t, image.Rect(0, 0, 100, 25), p.Bounds())

	p = Preview(image.NewNRGBA(image.Rect(0, 0, 10, 40)), 20)
	assert.Equal(t, image.Rect(0, 0, 5, 20), p.Bounds())

	p = Preview(image.NewNRGBA(image.Rect(0, 0, 8, 8)), 64)
	assert.Equal(t, image.Rect(0, 0, 8, 8), p.Bounds())
}
