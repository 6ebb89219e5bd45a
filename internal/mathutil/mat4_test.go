package mathutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/floats"
)

func TestQuatMatchesRotZ(t *testing.T) {
	for _, deg := range []float64{0, 30, 90, -45, 270, 725} {
		got := QuatToMat3(EulerDegToQuat(Vec3{0, 0, deg}))
		want := RotZ(Deg2Rad(deg))
		assert.True(t, floats.EqualApprox(got[:], want[:], 1e-12), "deg=%v got %v want %v", deg, got, want)
	}
}

func TestTRSScalesBeforeRotating(t *testing.T) {
	m := TRS(Vec3{1, 2, 3}, EulerDegToQuat(Vec3{0, 0, 90}), Vec3{2, 1, 1})

	// (1,0,0) scales to (2,0,0), rotates to (0,2,0), then translates.
	p := Vec3{
		m.At(0, 0) + m.At(0, 3),
		m.At(1, 0) + m.At(1, 3),
		m.At(2, 0) + m.At(2, 3),
	}
	assert.InDelta(t, 1.0, p[0], 1e-12)
	assert.InDelta(t, 4.0, p[1], 1e-12)
	assert.InDelta(t, 3.0, p[2], 1e-12)
}

func TestScaleInverseCancels(t *testing.T) {
	s := Vec3{4, 3, 1}
	m := Mat4Mul(Mat4Scale(s.Reciprocal()), Mat4Scale(s))
	id := Mat4Identity()
	assert.True(t, floats.EqualApprox(m[:], id[:], 1e-15))
}

func TestUpper2x2(t *testing.T) {
	m := FromMat3Translation(RotZ(math.Pi/2), Vec3{})
	u := m.Upper2x2()
	assert.True(t, floats.EqualApprox(u[:], []float64{0, -1, 1, 0}, 1e-12), "%v", u)
}

func TestMat3MulVec3(t *testing.T) {
	v := Mat3Mul(Mat3Diag(2, 3, 4), Mat3Identity()).MulVec3(Vec3{1, 1, 1})
	assert.Equal(t, Vec3{2, 3, 4}, v)
}
