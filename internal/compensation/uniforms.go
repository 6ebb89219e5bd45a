package compensation

import (
	"math"
	"sort"
	"sync"

	"mirror-warp/internal/angle"
	"mirror-warp/internal/logging"
)

// Shader parameter names.
const (
	UniformTexRotation = "_TexRotationVec"
	UniformPower       = "_power"
	UniformAlpha       = "_alpha"
)

// Params is brightness correction forwarded untouched to the shader.
type Params struct {
	Power float64 `json:"power"`
	Alpha float64 `json:"alpha"`
}

// DefaultParams leaves brightness unchanged.
var DefaultParams = Params{Power: 1, Alpha: 1}

// Brightness returns alpha·intensity^power, the correction the shader applies.
func (p Params) Brightness(intensity float64) float64 {
	return p.Alpha * math.Pow(intensity, p.Power)
}

// Uniforms is everything the warp shader receives per frame.
type Uniforms struct {
	TexRotation Matrix2
	Power       float64
	Alpha       float64
}

// ParamSink is the rendering collaborator's parameter set (a material).
type ParamSink interface {
	SetVector(name string, v [4]float64)
	SetFloat(name string, f float64)
}

// Push writes u to sink under the shader's names.
func (u Uniforms) Push(sink ParamSink) {
	sink.SetVector(UniformTexRotation, u.TexRotation)
	sink.SetFloat(UniformPower, u.Power)
	sink.SetFloat(UniformAlpha, u.Alpha)
}

// MaterialParams is an in-memory ParamSink.
type MaterialParams struct {
	mu      sync.RWMutex
	vectors map[string][4]float64
	floats  map[string]float64
}

// NewMaterialParams returns an empty parameter set.
func NewMaterialParams() *MaterialParams {
	return &MaterialParams{
		vectors: make(map[string][4]float64),
		floats:  make(map[string]float64),
	}
}

func (p *MaterialParams) SetVector(name string, v [4]float64) {
	p.mu.Lock()
	p.vectors[name] = v
	p.mu.Unlock()
}

func (p *MaterialParams) SetFloat(name string, f float64) {
	p.mu.Lock()
	p.floats[name] = f
	p.mu.Unlock()
}

// Vector returns a vector parameter and whether it was set.
func (p *MaterialParams) Vector(name string) ([4]float64, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.vectors[name]
	return v, ok
}

// Float returns a float parameter and whether it was set.
func (p *MaterialParams) Float(name string) (float64, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	f, ok := p.floats[name]
	return f, ok
}

// Names lists every parameter set so far, sorted.
func (p *MaterialParams) Names() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := make([]string, 0, len(p.vectors)+len(p.floats))
	for n := range p.vectors {
		names = append(names, n)
	}
	for n := range p.floats {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Warp recomputes the compensation matrix once per frame and pushes it with
// the brightness parameters. It must run after the angle writer for the frame.
type Warp struct {
	angle  angle.Provider
	aspect Aspect
	params Params
	sink   ParamSink
	last   Uniforms
}

// NewWarp validates aspect once so per-frame failures can only come from the angle.
func NewWarp(p angle.Provider, aspect Aspect, params Params, sink ParamSink) (*Warp, error) {
	if err := aspect.Validate(); err != nil {
		return nil, err
	}
	return &Warp{angle: p, aspect: aspect, params: params, sink: sink}, nil
}

// LateUpdate recomputes from scratch every call. If the angle is not finite
// the previous frame's uniforms stay in place.
func (w *Warp) LateUpdate() {
	deg := w.angle.Degrees()
	m, err := Compute(deg, w.aspect)
	if err != nil {
		logging.Logger().Warn("compensation skipped", "angle", deg, "err", err)
		return
	}
	w.last = Uniforms{TexRotation: m, Power: w.params.Power, Alpha: w.params.Alpha}
	w.last.Push(w.sink)
}

// Uniforms returns what was last pushed.
func (w *Warp) Uniforms() Uniforms {
	return w.last
}
