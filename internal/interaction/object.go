package interaction

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/event"
	"github.com/ayusman/mudra/internal/geom"
)

// Opacity levels used as collision feedback.
const (
	OpaqueOpacity    = 1.0
	CollisionOpacity = 0.4
)

// Object is a draggable box in the scene. The engine writes Position and
// Orientation only while the object is selected.
type Object struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Position    mgl64.Vec3 `json:"position"`
	Orientation mgl64.Quat `json:"orientation"`
	HalfExtents mgl64.Vec3 `json:"halfExtents"`
	Opacity     float64    `json:"opacity"`

	hasCollision bool
	selected     bool
}

// NewObject creates an opaque box with the given edge lengths.
func NewObject(name string, pos mgl64.Vec3, rot mgl64.Quat, size mgl64.Vec3) *Object {
	return &Object{
		ID:          uuid.New(),
		Name:        name,
		Position:    pos,
		Orientation: rot,
		HalfExtents: size.Mul(0.5),
		Opacity:     OpaqueOpacity,
	}
}

// Bounds returns the world-space box around the object's current pose.
func (o *Object) Bounds() geom.Box {
	return geom.OrientedBounds(o.Position, o.Orientation, o.HalfExtents)
}

// HasCollision reports whether the cursor touched the object in the last step.
func (o *Object) HasCollision() bool { return o.hasCollision }

// Selected reports whether the object is being dragged.
func (o *Object) Selected() bool { return o.selected }

// ObjectOf extracts the object carried by an engine event.
func ObjectOf(e event.Event) (*Object, bool) {
	o, ok := e.Payload.(*Object)
	return o, ok && o != nil
}
