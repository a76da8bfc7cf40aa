// Package interaction tests the cursor against the draggable objects every
// frame and manages the single selection used for drag and drop.
package interaction

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/event"
	"github.com/ayusman/mudra/internal/geom"
)

// Config holds the engine tunables.
type Config struct {
	// DragFactor is the fraction of the remaining distance a dragged object
	// covers each frame.
	DragFactor float64

	// Draggable enables selection and drag follow.
	Draggable bool

	// CollisionOpacity is applied to objects touching the cursor.
	CollisionOpacity float64
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		DragFactor:       0.3,
		Draggable:        true,
		CollisionOpacity: CollisionOpacity,
	}
}

// Input is the cursor state for one step.
type Input struct {
	Cursor         geom.Box
	CursorPosition mgl64.Vec3
	TargetRotation mgl64.Quat
	Pinching       bool
	Time           time.Time
}

// Result summarizes one step.
type Result struct {
	Colliding bool
	Dragging  bool
}

// Engine owns the object set and the selection.
type Engine struct {
	Config Config

	objects    []*Object
	dispatcher *event.Dispatcher
	logger     *zap.Logger

	selected    *Object
	releaseSent bool
	// token changes whenever a drag resumes, so a stale drag_end callback
	// cannot clear a newer grab.
	token uint64
}

// New creates an engine that raises its events on d.
func New(cfg Config, d *event.Dispatcher, logger *zap.Logger) *Engine {
	if d == nil {
		d = event.NewDispatcher()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		Config:     cfg,
		dispatcher: d,
		logger:     logger,
	}
}

// Add inserts objects. An object already present is not added twice.
func (e *Engine) Add(objs ...*Object) {
	for _, o := range objs {
		if o == nil || e.index(o) >= 0 {
			continue
		}
		e.objects = append(e.objects, o)
	}
}

// Remove drops o from the set, releasing it if it was selected.
func (e *Engine) Remove(o *Object) bool {
	i := e.index(o)
	if i < 0 {
		return false
	}
	if e.selected == o {
		e.clearSelection()
	}
	e.objects = append(e.objects[:i], e.objects[i+1:]...)
	return true
}

// Objects returns the current object set.
func (e *Engine) Objects() []*Object {
	out := make([]*Object, len(e.objects))
	copy(out, e.objects)
	return out
}

// Selected returns the object being dragged, if any.
func (e *Engine) Selected() *Object {
	return e.selected
}

func (e *Engine) index(o *Object) int {
	for i, cur := range e.objects {
		if cur == o {
			return i
		}
	}
	return -1
}

// Step runs collision, selection and drag follow for one frame.
func (e *Engine) Step(in Input) Result {
	var res Result

	// listeners may Add or Remove while the step runs
	for _, o := range e.Objects() {
		if e.index(o) < 0 {
			continue
		}
		hit := o.Bounds().Intersects(in.Cursor)
		o.hasCollision = hit

		if !hit {
			o.Opacity = OpaqueOpacity
			if e.selected == nil {
				e.emit(event.CollisionOff, o, in.Time, nil)
			}
			continue
		}

		res.Colliding = true
		e.emit(event.CollisionOn, o, in.Time, nil)
		if e.index(o) < 0 {
			continue
		}
		if in.Pinching && e.selected == nil && e.Config.Draggable {
			e.selected = o
			o.selected = true
			e.releaseSent = false
			e.token++
			e.logger.Info("drag started", zap.String("object", o.Name))
			e.emit(event.DragStart, o, in.Time, nil)
		}
		o.Opacity = e.Config.CollisionOpacity
	}

	sel := e.selected
	if sel == nil {
		return res
	}

	if in.Pinching {
		if e.releaseSent {
			// grabbed again before the listener finished the release
			e.releaseSent = false
			e.token++
		}
		if e.Config.Draggable {
			sel.Position = geom.Lerp(sel.Position, in.CursorPosition, e.Config.DragFactor)
			sel.Orientation = geom.Slerp(sel.Orientation, in.TargetRotation, e.Config.DragFactor)
			res.Dragging = true
		}
		return res
	}

	if !e.releaseSent {
		e.releaseSent = true
		token := e.token
		e.logger.Info("drag ended", zap.String("object", sel.Name))
		e.emit(event.DragEnd, sel, in.Time, func() {
			if e.token == token && e.selected == sel {
				e.clearSelection()
			}
		})
	}
	return res
}

func (e *Engine) clearSelection() {
	if e.selected != nil {
		e.selected.selected = false
	}
	e.selected = nil
	e.releaseSent = false
	e.token++
}

func (e *Engine) emit(t event.Type, o *Object, at time.Time, done func()) {
	e.dispatcher.Emit(event.Event{Type: t, Payload: o, Time: at, Done: done})
}
