package mathutil

// Vec3 is a 3-component vector (value type, stack-allocated).
type Vec3 [3]float64

// Reciprocal returns (1/x, 1/y, 1/z). Zero components yield ±Inf; callers validate first.
func (v Vec3) Reciprocal() Vec3 {
	return Vec3{1 / v[0], 1 / v[1], 1 / v[2]}
}
