package warpmap

import (
	"gonum.org/v1/gonum/floats"
)

const (
	// RuntimeChannels is the (u, v) layout fed to samplers.
	RuntimeChannels = 2
	// DebugChannels is the (u, v, 0, 1) layout of the inspection variant.
	DebugChannels = 4
)

// DecodedMap is a grid of normalized coordinate offsets, row-major, same
// dimensions as the encoded source. It is not modified after Decode returns.
type DecodedMap struct {
	Width    int
	Height   int
	Channels int
	Pix      []float32 // len = Width*Height*Channels
}

func newDecodedMap(w, h int, debug bool) *DecodedMap {
	ch := RuntimeChannels
	if debug {
		ch = DebugChannels
	}
	return &DecodedMap{
		Width:    w,
		Height:   h,
		Channels: ch,
		Pix:      make([]float32, w*h*ch),
	}
}

func (m *DecodedMap) set(x, y int, t [4]float32) {
	copy(m.Pix[m.offset(x, y):], t[:m.Channels])
}

func (m *DecodedMap) offset(x, y int) int {
	return (y*m.Width + x) * m.Channels
}

// At returns the (u, v) pair at texel (x, y).
func (m *DecodedMap) At(x, y int) (u, v float32) {
	i := m.offset(x, y)
	return m.Pix[i], m.Pix[i+1]
}

// RGBA returns the texel as four channels. Runtime maps report b=0, a=1.
func (m *DecodedMap) RGBA(x, y int) [4]float32 {
	i := m.offset(x, y)
	if m.Channels == DebugChannels {
		return [4]float32{m.Pix[i], m.Pix[i+1], m.Pix[i+2], m.Pix[i+3]}
	}
	return [4]float32{m.Pix[i], m.Pix[i+1], 0, 1}
}

// OutOfRange counts texels whose u or v lies outside [0, 1]. Decode never
// clamps; callers that need the unit range clamp downstream.
func (m *DecodedMap) OutOfRange() int {
	n := 0
	for i := 0; i < len(m.Pix); i += m.Channels {
		u, v := m.Pix[i], m.Pix[i+1]
		if u < 0 || u > 1 || v < 0 || v > 1 {
			n++
		}
	}
	return n
}

// Sample returns the bilinearly filtered (u, v) at normalized coordinates
// (s, t) with clamp addressing: coordinates outside [0, 1] read the edge texels.
func (m *DecodedMap) Sample(s, t float64) (u, v float32) {
	s = clamp01(s)
	t = clamp01(t)

	fx := s * float64(m.Width-1)
	fy := t * float64(m.Height-1)
	x0 := int(fx)
	y0 := int(fy)
	x1 := min(x0+1, m.Width-1)
	y1 := min(y0+1, m.Height-1)
	dx := fx - float64(x0)
	dy := fy - float64(y0)

	w00 := (1 - dx) * (1 - dy)
	w10 := dx * (1 - dy)
	w01 := (1 - dx) * dy
	w11 := dx * dy

	u00, v00 := m.At(x0, y0)
	u10, v10 := m.At(x1, y0)
	u01, v01 := m.At(x0, y1)
	u11, v11 := m.At(x1, y1)

	fu := float64(u00)*w00 + float64(u10)*w10 + float64(u01)*w01 + float64(u11)*w11
	fv := float64(v00)*w00 + float64(v10)*w10 + float64(v01)*w01 + float64(v11)*w11
	return float32(fu), float32(fv)
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// ChannelStats summarizes one channel of a decoded map.
type ChannelStats struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
}

// Stats holds per-channel summaries plus the out-of-range texel count.
type Stats struct {
	U          ChannelStats `json:"u"`
	V          ChannelStats `json:"v"`
	OutOfRange int          `json:"out_of_range"`
}

// Stats computes min, max and mean of u and v.
func (m *DecodedMap) Stats() Stats {
	n := m.Width * m.Height
	us := make([]float64, n)
	vs := make([]float64, n)
	for i := 0; i < n; i++ {
		us[i] = float64(m.Pix[i*m.Channels])
		vs[i] = float64(m.Pix[i*m.Channels+1])
	}
	return Stats{
		U:          channelStats(us),
		V:          channelStats(vs),
		OutOfRange: m.OutOfRange(),
	}
}

func channelStats(xs []float64) ChannelStats {
	return ChannelStats{
		Min:  floats.Min(xs),
		Max:  floats.Max(xs),
		Mean: floats.Sum(xs) / float64(len(xs)),
	}
}
