package warpmap

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"

	"mirror-warp/internal/logging"
)

// ErrInvalidConfig marks decode calls that cannot produce a finite map:
// zero divisor, bad bit depth, empty or mismatched dimensions.
var ErrInvalidConfig = errors.New("invalid warp map configuration")

const (
	// DefaultDivisor maps a 12-bit coordinate stored in two 8-bit channels onto 0..1.
	DefaultDivisor = 4095
	// DefaultBitDepth is the shift applied to the high byte of each channel pair.
	DefaultBitDepth = 8
	// MaskEpsilon is the distance from 0 or 1 at which the debug variant
	// treats a texel as outside the calibrated area.
	MaskEpsilon = 0.001
)

// PackedPixel is one texel of an encoded map: (c0,c1) holds u, (c2,c3) holds v,
// high byte first.
type PackedPixel [4]uint8

// Options controls Decode.
type Options struct {
	Divisor  float64
	FlipY    bool // v = 1 - v; encoded maps have a top-left origin, samplers bottom-left
	BitDepth int
	// DebugMask selects the inspection variant: four channels (u, v, 0, 1)
	// and edge texels zeroed. Never use it for maps fed to a sampler.
	DebugMask bool
}

// DefaultOptions returns the runtime decode settings.
func DefaultOptions() Options {
	return Options{
		Divisor:  DefaultDivisor,
		FlipY:    true,
		BitDepth: DefaultBitDepth,
	}
}

// Validate reports whether the options can produce finite output.
func (o Options) Validate() error {
	if o.Divisor == 0 || math.IsNaN(o.Divisor) || math.IsInf(o.Divisor, 0) {
		return fmt.Errorf("warpmap: divisor %v: %w", o.Divisor, ErrInvalidConfig)
	}
	if o.BitDepth < 1 || o.BitDepth > 16 {
		return fmt.Errorf("warpmap: bit depth %d outside 1..16: %w", o.BitDepth, ErrInvalidConfig)
	}
	return nil
}

// Decode unpacks an encoded map image into normalized (u,v) offsets.
// The result has the same dimensions and row order as src.
func Decode(src *image.NRGBA, opts Options) (*DecodedMap, error) {
	if src == nil {
		return nil, fmt.Errorf("warpmap: nil image: %w", ErrInvalidConfig)
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if err := checkDims(w, h); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	m := newDecodedMap(w, h, opts.DebugMask)
	for y := 0; y < h; y++ {
		row := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
		for x := 0; x < w; x++ {
			i := x * 4
			m.set(x, y, decodeTexel(PackedPixel{row[i], row[i+1], row[i+2], row[i+3]}, opts))
		}
	}

	logDecoded(m)
	return m, nil
}

// DecodePixels is Decode over a raw row-major grid.
func DecodePixels(pix []PackedPixel, w, h int, opts Options) (*DecodedMap, error) {
	if err := checkDims(w, h); err != nil {
		return nil, err
	}
	if len(pix) != w*h {
		return nil, fmt.Errorf("warpmap: %d pixels for %dx%d grid: %w", len(pix), w, h, ErrInvalidConfig)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	m := newDecodedMap(w, h, opts.DebugMask)
	for i, p := range pix {
		m.set(i%w, i/w, decodeTexel(p, opts))
	}

	logDecoded(m)
	return m, nil
}

func checkDims(w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("warpmap: dimensions %dx%d: %w", w, h, ErrInvalidConfig)
	}
	return nil
}

// decodeTexel returns (u, v, b, a). b and a are only stored for the debug variant.
func decodeTexel(p PackedPixel, opts Options) [4]float32 {
	shift := uint(opts.BitDepth)
	u := float64(uint32(p[0])<<shift+uint32(p[1])) / opts.Divisor
	v := float64(uint32(p[2])<<shift+uint32(p[3])) / opts.Divisor
	if opts.FlipY {
		v = 1 - v
	}
	if opts.DebugMask && (nearEdge(u) || nearEdge(v)) {
		u, v = 0, 0
	}
	return [4]float32{float32(u), float32(v), 0, 1}
}

func nearEdge(f float64) bool {
	return math.Abs(f) <= MaskEpsilon || math.Abs(f-1) <= MaskEpsilon
}

func logDecoded(m *DecodedMap) {
	l := logging.Logger()
	if !l.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	l.Debug("warp map decoded",
		"width", m.Width,
		"height", m.Height,
		"texels", m.Width*m.Height,
		"debug", m.Channels == DebugChannels,
		"out_of_range", m.OutOfRange(),
	)
}
