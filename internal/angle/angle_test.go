package angle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSource(t *testing.T) {
	s := NewSource(12.5)
	assert.Equal(t, 12.5, s.Degrees())

	s.Set(-720)
	assert.Equal(t, -720.0, s.Degrees())

	var p Provider = s
	assert.Equal(t, -720.0, p.Degrees())
}

func TestZeroSource(t *testing.T) {
	var s Source
	assert.Equal(t, 0.0, s.Degrees())
}

func TestSpinner(t *testing.T) {
	src := NewSource(0)
	sp := &Spinner{Source: src, Speed: 90}

	sp.Update(500 * time.Millisecond)
	assert.InDelta(t, 45.0, src.Degrees(), 1e-12)

	sp.Update(4 * time.Second)
	assert.InDelta(t, 405.0, src.Degrees(), 1e-12)

	sp.Speed = -30
	sp.Update(time.Second)
	assert.InDelta(t, 375.0, src.Degrees(), 1e-12)
}

func TestFixed(t *testing.T) {
	assert.Equal(t, 90.0, Fixed(90).Degrees())
}
