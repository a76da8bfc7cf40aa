package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Box is an axis-aligned bounding box in world space.
type Box struct {
	Min mgl64.Vec3 `json:"min"`
	Max mgl64.Vec3 `json:"max"`
}

// BoxFromCenter returns the box centered on c with the given half extents.
func BoxFromCenter(c, half mgl64.Vec3) Box {
	return Box{Min: c.Sub(half), Max: c.Add(half)}
}

// OrientedBounds returns the world-space box enclosing a local box of the
// given half extents after rotating it by rot and moving it to center.
func OrientedBounds(center mgl64.Vec3, rot mgl64.Quat, half mgl64.Vec3) Box {
	inf := math.Inf(1)
	b := Box{
		Min: mgl64.Vec3{inf, inf, inf},
		Max: mgl64.Vec3{-inf, -inf, -inf},
	}
	for i := 0; i < 8; i++ {
		corner := mgl64.Vec3{half[0], half[1], half[2]}
		for axis := 0; axis < 3; axis++ {
			if i&(1<<axis) != 0 {
				corner[axis] = -corner[axis]
			}
		}
		p := rot.Rotate(corner).Add(center)
		for axis := 0; axis < 3; axis++ {
			b.Min[axis] = math.Min(b.Min[axis], p[axis])
			b.Max[axis] = math.Max(b.Max[axis], p[axis])
		}
	}
	return b
}

// Empty reports whether b has no volume on some axis.
func (b Box) Empty() bool {
	return b.Max[0] < b.Min[0] || b.Max[1] < b.Min[1] || b.Max[2] < b.Min[2]
}

// Center returns the center of b.
func (b Box) Center() mgl64.Vec3 {
	return Midpoint(b.Min, b.Max)
}

// Size returns the edge lengths of b.
func (b Box) Size() mgl64.Vec3 {
	return b.Max.Sub(b.Min)
}

// Intersects reports whether b and o overlap. Touching faces count as
// overlap. The test is symmetric in its arguments.
func (b Box) Intersects(o Box) bool {
	if b.Empty() || o.Empty() {
		return false
	}
	for axis := 0; axis < 3; axis++ {
		if o.Max[axis] < b.Min[axis] || o.Min[axis] > b.Max[axis] {
			return false
		}
	}
	return true
}
