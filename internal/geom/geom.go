// Package geom holds the vector, rotation and bounding-volume math shared by
// the gesture, cursor and interaction packages. Vectors and quaternions are
// mathgl's float64 types.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return mgl64.Clamp(v, lo, hi)
}

// clampUnit limits an interpolation factor to [0, 1].
func clampUnit(t float64) float64 {
	return mgl64.Clamp(t, 0, 1)
}

// Distance is the Euclidean distance between a and b.
func Distance(a, b mgl64.Vec3) float64 {
	return a.Sub(b).Len()
}

// Lerp moves a toward b by t, with t clamped to [0, 1].
func Lerp(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(clampUnit(t)))
}

// LerpScalar moves a toward b by t, with t clamped to [0, 1].
func LerpScalar(a, b, t float64) float64 {
	return a + (b-a)*clampUnit(t)
}

// Slerp interpolates between two rotations along the shorter arc,
// with t clamped to [0, 1].
func Slerp(a, b mgl64.Quat, t float64) mgl64.Quat {
	return mgl64.QuatSlerp(a, b, clampUnit(t))
}

// MapLinear maps x from the range [a1, a2] to [b1, b2] without clamping.
func MapLinear(x, a1, a2, b1, b2 float64) float64 {
	return b1 + (x-a1)*(b2-b1)/(a2-a1)
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b mgl64.Vec3) mgl64.Vec3 {
	return a.Add(b).Mul(0.5)
}

// Euler is a rotation as three angles in radians, applied in XYZ order.
type Euler struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Quat converts e to a quaternion.
func (e Euler) Quat() mgl64.Quat {
	return mgl64.AnglesToQuat(e.X, e.Y, e.Z, mgl64.XYZ)
}

// Lerp moves each angle of e toward o by t.
func (e Euler) Lerp(o Euler, t float64) Euler {
	return Euler{
		X: LerpScalar(e.X, o.X, t),
		Y: LerpScalar(e.Y, o.Y, t),
		Z: LerpScalar(e.Z, o.Z, t),
	}
}

// MaxDelta returns the largest per-axis angle difference between e and o.
func (e Euler) MaxDelta(o Euler) float64 {
	return math.Max(math.Abs(e.X-o.X), math.Max(math.Abs(e.Y-o.Y), math.Abs(e.Z-o.Z)))
}

// BasisQuat returns the orientation whose forward axis points from `from`
// toward `to`, keeping world up as the reference. It reports false when the
// direction is degenerate (zero length or parallel to up).
func BasisQuat(from, to mgl64.Vec3) (mgl64.Quat, bool) {
	dir := to.Sub(from)
	if dir.Len() < 1e-9 {
		return mgl64.QuatIdent(), false
	}
	up := mgl64.Vec3{0, 1, 0}
	right := up.Cross(dir)
	if right.Len() < 1e-9 {
		return mgl64.QuatIdent(), false
	}
	right = right.Normalize()
	up = dir.Cross(right).Normalize()
	dir = dir.Normalize()

	m := mgl64.Mat4FromCols(right.Vec4(0), up.Vec4(0), dir.Vec4(0), mgl64.Vec4{0, 0, 0, 1})
	return mgl64.Mat4ToQuat(m).Normalize(), true
}
