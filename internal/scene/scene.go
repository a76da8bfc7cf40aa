// Package scene holds the camera and viewport context that replaces a global
// scene manager. It is built once at startup and passed to whatever needs to
// project points onto the screen.
package scene

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/ayusman/mudra/internal/geom"
	"github.com/ayusman/mudra/internal/interaction"
)

// Camera is a perspective camera looking from Eye toward Center.
type Camera struct {
	Eye    mgl64.Vec3 `json:"eye"`
	Center mgl64.Vec3 `json:"center"`
	Up     mgl64.Vec3 `json:"up"`
	FovY   float64    `json:"fovY"` // radians
	Near   float64    `json:"near"`
	Far    float64    `json:"far"`
}

// DefaultCamera returns a 45 degree camera two units in front of the origin.
func DefaultCamera() Camera {
	return Camera{
		Eye:    mgl64.Vec3{0, 0, 2},
		Center: mgl64.Vec3{0, 0, 0},
		Up:     mgl64.Vec3{0, 1, 0},
		FovY:   mgl64.DegToRad(45),
		Near:   0.01,
		Far:    100,
	}
}

// ViewProjection returns projection * view for the given aspect ratio.
func (c Camera) ViewProjection(aspect float64) mgl64.Mat4 {
	proj := mgl64.Perspective(c.FovY, aspect, c.Near, c.Far)
	view := mgl64.LookAtV(c.Eye, c.Center, c.Up)
	return proj.Mul4(view)
}

// Context carries the camera and the viewport it renders into.
type Context struct {
	Camera   Camera
	Viewport geom.Viewport
}

// NewContext creates a context with the default camera and a width x height
// viewport.
func NewContext(width, height float64) *Context {
	return &Context{
		Camera:   DefaultCamera(),
		Viewport: geom.Viewport{Width: width, Height: height},
	}
}

// Resize updates the viewport.
func (c *Context) Resize(width, height float64) {
	c.Viewport = geom.Viewport{Width: width, Height: height}
}

// Project maps a world point to viewport pixels. A nil context or an
// unusable viewport yields false.
func (c *Context) Project(p mgl64.Vec3) (geom.Point2, bool) {
	if c == nil || !c.Viewport.Valid() {
		return geom.Point2{}, false
	}
	aspect := c.Viewport.Width / c.Viewport.Height
	return geom.ProjectToScreen(p, c.Camera.ViewProjection(aspect), c.Viewport)
}

// BoxEdge is the edge length of the default draggable boxes.
const BoxEdge = 0.15

// RandomObjects scatters n boxes in front of the camera with random
// orientations.
func RandomObjects(n int, rng *rand.Rand) []*interaction.Object {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	size := mgl64.Vec3{BoxEdge, BoxEdge, BoxEdge}
	objs := make([]*interaction.Object, 0, n)
	for i := 0; i < n; i++ {
		pos := mgl64.Vec3{
			rng.Float64()*2 - 1,
			rng.Float64()*0.5 - 0.25,
			rng.Float64()*2 - 1,
		}
		rot := geom.Euler{
			X: rng.Float64() * 2 * math.Pi,
			Y: rng.Float64() * 2 * math.Pi,
			Z: rng.Float64() * 2 * math.Pi,
		}.Quat()
		objs = append(objs, interaction.NewObject(fmt.Sprintf("box-%d", i+1), pos, rot, size))
	}
	return objs
}
