package compensation

import (
	"errors"
	"fmt"
	"math"

	"mirror-warp/internal/mathutil"
)

// ErrInvalidConfig marks inputs that would produce a non-finite matrix.
var ErrInvalidConfig = errors.New("invalid compensation configuration")

// Aspect is the pixel aspect of the target display. UVs are scaled into this
// space before rotating so the rotation is not sheared by a non-square screen.
type Aspect struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// DefaultAspect is a 4:3 tablet.
var DefaultAspect = Aspect{W: 4, H: 3}

// Validate rejects zero, negative and non-finite sides.
func (a Aspect) Validate() error {
	for _, v := range []float64{a.W, a.H} {
		if !(v > 0) || math.IsInf(v, 0) {
			return fmt.Errorf("compensation: aspect %v:%v: %w", a.W, a.H, ErrInvalidConfig)
		}
	}
	return nil
}

// Matrix2 is a 2×2 linear map over UVs, row-major (m00, m01, m10, m11).
// This is the layout of the _TexRotationVec uniform.
type Matrix2 [4]float64

// Identity2 is the no-rotation matrix.
var Identity2 = Matrix2{1, 0, 0, 1}

// Apply maps (u, v) through the matrix.
func (m Matrix2) Apply(u, v float64) (float64, float64) {
	return m[0]*u + m[1]*v, m[2]*u + m[3]*v
}

// Compute builds the counter-rotation for the current angle: rotate by
// -angleDeg in aspect space, then scale back to normalized UVs. Only the
// top-left 2×2 of Scale(1/W,1/H,1) × TRS(0, Rz(-angle), (W,H,1)) is kept.
func Compute(angleDeg float64, aspect Aspect) (Matrix2, error) {
	if math.IsNaN(angleDeg) || math.IsInf(angleDeg, 0) {
		return Matrix2{}, fmt.Errorf("compensation: angle %v: %w", angleDeg, ErrInvalidConfig)
	}
	if err := aspect.Validate(); err != nil {
		return Matrix2{}, err
	}

	scale := mathutil.Vec3{aspect.W, aspect.H, 1}
	rot := mathutil.EulerDegToQuat(mathutil.Vec3{0, 0, -angleDeg})
	m := mathutil.Mat4Mul(
		mathutil.Mat4Scale(scale.Reciprocal()),
		mathutil.TRS(mathutil.Vec3{}, rot, scale),
	)
	return Matrix2(m.Upper2x2()), nil
}
