package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Viewport is the pixel rectangle the scene renders into.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Valid reports whether the viewport can be projected onto.
func (v Viewport) Valid() bool {
	return v.Width > 0 && v.Height > 0
}

// Point2 is a pixel position, origin top-left.
type Point2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance is the pixel distance between p and q.
func (p Point2) Distance(q Point2) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// ProjectToScreen applies viewProj to p, divides by w and maps the
// normalized device coordinates to pixels. It reports false when the
// viewport is unusable or the transform leaves no finite result.
func ProjectToScreen(p mgl64.Vec3, viewProj mgl64.Mat4, vp Viewport) (Point2, bool) {
	if !vp.Valid() {
		return Point2{}, false
	}

	clip := viewProj.Mul4x1(p.Vec4(1))
	w := clip.W()
	if w == 0 || math.IsNaN(w) {
		return Point2{}, false
	}
	ndc := clip.Vec3().Mul(1 / w)

	halfW, halfH := vp.Width/2, vp.Height/2
	out := Point2{
		X: ndc.X()*halfW + halfW,
		Y: -(ndc.Y() * halfH) + halfH,
	}
	if math.IsNaN(out.X) || math.IsNaN(out.Y) || math.IsInf(out.X, 0) || math.IsInf(out.Y, 0) {
		return Point2{}, false
	}
	return out, true
}
