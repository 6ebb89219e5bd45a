package compensation

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"mirror-warp/internal/angle"
)

const tol = 1e-5

// closedForm is S⁻¹·R(-a)·S restricted to 2×2.
func closedForm(deg float64, a Aspect) Matrix2 {
	r := -deg * math.Pi / 180
	c, s := math.Cos(r), math.Sin(r)
	return Matrix2{c, -s * a.H / a.W, s * a.W / a.H, c}
}

func TestComputeZeroIsIdentity(t *testing.T) {
	m, err := Compute(0, DefaultAspect)
	require.NoError(t, err)
	assert.True(t, floats.EqualApprox(m[:], Identity2[:], tol), "%v", m)
}

func TestComputeQuarterTurn(t *testing.T) {
	m, err := Compute(90, DefaultAspect)
	require.NoError(t, err)

	want := Matrix2{0, 0.75, -4.0 / 3, 0}
	assert.True(t, floats.EqualApprox(m[:], want[:], tol), "got %v want %v", m, want)
}

func TestComputeMatchesClosedForm(t *testing.T) {
	t.Parallel()

	aspects := []Aspect{DefaultAspect, {W: 16, H: 9}, {W: 1, H: 1}, {W: 3, H: 4}}
	angles := []float64{-725, -90, -1, 0, 12.5, 45, 180, 270, 359.9, 3600}

	for _, a := range aspects {
		for _, deg := range angles {
			got, err := Compute(deg, a)
			require.NoError(t, err)
			want := closedForm(deg, a)
			if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, tol)); diff != "" {
				t.Errorf("Compute(%v, %v) mismatch (-want +got):\n%s", deg, a, diff)
			}
		}
	}
}

func TestComputeSquareAspectIsPureRotation(t *testing.T) {
	m, err := Compute(30, Aspect{W: 2, H: 2})
	require.NoError(t, err)
	det := m[0]*m[3] - m[1]*m[2]
	assert.InDelta(t, 1.0, det, 1e-12)

	// Rotating by -30° takes (1,0) clockwise.
	u, v := m.Apply(1, 0)
	assert.InDelta(t, math.Cos(math.Pi/6), u, 1e-12)
	assert.InDelta(t, -0.5, v, 1e-12)
}

func TestComputeUndoesVisualRotation(t *testing.T) {
	// The matrix for +a composed with the one for -a is the identity.
	fwd, err := Compute(37, DefaultAspect)
	require.NoError(t, err)
	back, err := Compute(-37, DefaultAspect)
	require.NoError(t, err)

	u, v := fwd.Apply(back.Apply(0.3, 0.8))
	assert.InDelta(t, 0.3, u, 1e-12)
	assert.InDelta(t, 0.8, v, 1e-12)
}

func TestComputeRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		angle  float64
		aspect Aspect
	}{
		{"zero width", 0, Aspect{W: 0, H: 3}},
		{"negative height", 0, Aspect{W: 4, H: -3}},
		{"NaN aspect", 0, Aspect{W: math.NaN(), H: 3}},
		{"infinite aspect", 0, Aspect{W: 4, H: math.Inf(1)}},
		{"NaN angle", math.NaN(), DefaultAspect},
		{"infinite angle", math.Inf(-1), DefaultAspect},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Compute(tc.angle, tc.aspect)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestBrightness(t *testing.T) {
	assert.Equal(t, 0.25, DefaultParams.Brightness(0.25))
	assert.InDelta(t, 1.5*0.0625, Params{Power: 2, Alpha: 1.5}.Brightness(0.25), 1e-12)
}

func TestWarpLateUpdate(t *testing.T) {
	src := angle.NewSource(0)
	sink := NewMaterialParams()
	w, err := NewWarp(src, DefaultAspect, Params{Power: 2, Alpha: 0.5}, sink)
	require.NoError(t, err)

	_, ok := sink.Vector(UniformTexRotation)
	assert.False(t, ok, "nothing pushed before the first frame")

	w.LateUpdate()
	v, ok := sink.Vector(UniformTexRotation)
	require.True(t, ok)
	assert.True(t, floats.EqualApprox(v[:], Identity2[:], tol))

	power, _ := sink.Float(UniformPower)
	alpha, _ := sink.Float(UniformAlpha)
	assert.Equal(t, 2.0, power)
	assert.Equal(t, 0.5, alpha)
	assert.Equal(t, []string{UniformTexRotation, UniformAlpha, UniformPower}, sink.Names())

	src.Set(90)
	w.LateUpdate()
	v, _ = sink.Vector(UniformTexRotation)
	want := closedForm(90, DefaultAspect)
	assert.True(t, floats.EqualApprox(v[:], want[:], tol), "%v", v)
	assert.Equal(t, Matrix2(v), w.Uniforms().TexRotation)
}

func TestWarpKeepsLastUniformsOnBadAngle(t *testing.T) {
	src := angle.NewSource(45)
	sink := NewMaterialParams()
	w, err := NewWarp(src, DefaultAspect, DefaultParams, sink)
	require.NoError(t, err)

	w.LateUpdate()
	before, _ := sink.Vector(UniformTexRotation)

	src.Set(math.NaN())
	w.LateUpdate()
	after, _ := sink.Vector(UniformTexRotation)
	assert.Equal(t, before, after)
}

func TestNewWarpRejectsBadAspect(t *testing.T) {
	_, err := NewWarp(angle.Fixed(0), Aspect{}, DefaultParams, NewMaterialParams())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
