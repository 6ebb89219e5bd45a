// Package angle provides the shared rotation angle as an injected dependency.
// Consumers read it through Provider; only the host's rotation driver writes it.
package angle

import (
	"math"
	"sync/atomic"
	"time"
)

// Provider exposes the current rotation angle in degrees about the rig axis.
type Provider interface {
	Degrees() float64
}

// Source is a settable angle. Reads and writes are atomic so a decode
// running on another goroutine can log or inspect it safely.
type Source struct {
	bits atomic.Uint64
}

// NewSource returns a Source initialized to deg.
func NewSource(deg float64) *Source {
	s := &Source{}
	s.Set(deg)
	return s
}

// Degrees returns the current angle. The range is unbounded.
func (s *Source) Degrees() float64 {
	return math.Float64frombits(s.bits.Load())
}

// Set replaces the current angle.
func (s *Source) Set(deg float64) {
	s.bits.Store(math.Float64bits(deg))
}

// Fixed is a constant Provider.
type Fixed float64

func (f Fixed) Degrees() float64 { return float64(f) }

// Spinner advances a Source at a constant speed. It is the frame loop's
// angle writer and must be registered before any reader.
type Spinner struct {
	Source *Source
	Speed  float64 // degrees per second, may be negative
}

// Update advances the angle by Speed·dt.
func (s *Spinner) Update(dt time.Duration) {
	s.Source.Set(s.Source.Degrees() + s.Speed*dt.Seconds())
}
