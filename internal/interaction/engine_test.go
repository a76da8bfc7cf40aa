package interaction

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/mudra/internal/event"
	"github.com/ayusman/mudra/internal/geom"
)

var cubeSize = mgl64.Vec3{0.2, 0.2, 0.2}

func cursorAt(p mgl64.Vec3) geom.Box {
	return geom.BoxFromCenter(p, mgl64.Vec3{0.1, 0.1, 0.1})
}

type recorder struct {
	events []event.Event
}

func (r *recorder) listen(d *event.Dispatcher, types ...event.Type) {
	for _, t := range types {
		d.On(t, func(e event.Event) { r.events = append(r.events, e) })
	}
}

func (r *recorder) count(t event.Type) int {
	n := 0
	for _, e := range r.events {
		if e.Type == t {
			n++
		}
	}
	return n
}

func (r *recorder) last(t event.Type) (event.Event, bool) {
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Type == t {
			return r.events[i], true
		}
	}
	return event.Event{}, false
}

func countSelected(objs []*Object) int {
	n := 0
	for _, o := range objs {
		if o.Selected() {
			n++
		}
	}
	return n
}

func TestEngine_AddHasSetSemantics(t *testing.T) {
	e := New(DefaultConfig(), nil, nil)
	a := NewObject("a", mgl64.Vec3{}, mgl64.QuatIdent(), cubeSize)
	b := NewObject("b", mgl64.Vec3{1, 0, 0}, mgl64.QuatIdent(), cubeSize)

	e.Add(a, b, a, nil)
	e.Add(b)
	assert.Len(t, e.Objects(), 2)

	assert.True(t, e.Remove(a))
	assert.False(t, e.Remove(a))
	assert.Len(t, e.Objects(), 1)
}

func TestEngine_CollisionEvents(t *testing.T) {
	d := event.NewDispatcher()
	var rec recorder
	rec.listen(d, event.CollisionOn, event.CollisionOff)

	e := New(DefaultConfig(), d, nil)
	obj := NewObject("box", mgl64.Vec3{}, mgl64.QuatIdent(), cubeSize)
	e.Add(obj)

	res := e.Step(Input{Cursor: cursorAt(mgl64.Vec3{0.05, 0, 0}), TargetRotation: mgl64.QuatIdent()})
	assert.True(t, res.Colliding)
	assert.True(t, obj.HasCollision())
	assert.Equal(t, CollisionOpacity, obj.Opacity)
	assert.Equal(t, 1, rec.count(event.CollisionOn))

	got, ok := rec.last(event.CollisionOn)
	require.True(t, ok)
	o, ok := ObjectOf(got)
	require.True(t, ok)
	assert.Same(t, obj, o)

	res = e.Step(Input{Cursor: cursorAt(mgl64.Vec3{2, 0, 0}), TargetRotation: mgl64.QuatIdent()})
	assert.False(t, res.Colliding)
	assert.False(t, obj.HasCollision())
	assert.Equal(t, OpaqueOpacity, obj.Opacity)
	assert.Equal(t, 1, rec.count(event.CollisionOff))
}

func TestEngine_AtMostOneSelection(t *testing.T) {
	d := event.NewDispatcher()
	var rec recorder
	rec.listen(d, event.DragStart)

	e := New(DefaultConfig(), d, nil)
	a := NewObject("a", mgl64.Vec3{}, mgl64.QuatIdent(), cubeSize)
	b := NewObject("b", mgl64.Vec3{0.05, 0, 0}, mgl64.QuatIdent(), cubeSize)
	c := NewObject("c", mgl64.Vec3{0, 0.05, 0}, mgl64.QuatIdent(), cubeSize)
	e.Add(a, b, c)

	for i := 0; i < 20; i++ {
		e.Step(Input{
			Cursor:         cursorAt(mgl64.Vec3{0.02, 0.02, 0}),
			CursorPosition: mgl64.Vec3{0.02, 0.02, 0},
			TargetRotation: mgl64.QuatIdent(),
			Pinching:       true,
		})
		assert.LessOrEqual(t, countSelected(e.Objects()), 1, "frame %d", i)
	}

	assert.Equal(t, 1, countSelected(e.Objects()))
	assert.Equal(t, 1, rec.count(event.DragStart))
	assert.Same(t, a, e.Selected())
}

func TestEngine_DragFollowIsExact(t *testing.T) {
	e := New(DefaultConfig(), nil, nil)
	obj := NewObject("box", mgl64.Vec3{0, 0, 0}, mgl64.QuatIdent(), cubeSize)
	e.Add(obj)

	cursor := mgl64.Vec3{0.08, 0.04, -0.02}
	start := obj.Position
	res := e.Step(Input{
		Cursor:         cursorAt(cursor),
		CursorPosition: cursor,
		TargetRotation: mgl64.QuatIdent(),
		Pinching:       true,
	})

	require.True(t, res.Dragging)
	want := start.Add(cursor.Sub(start).Mul(0.3))
	assert.Equal(t, want, obj.Position)
}

func TestEngine_DragRotationFollows(t *testing.T) {
	e := New(DefaultConfig(), nil, nil)
	obj := NewObject("box", mgl64.Vec3{}, mgl64.QuatIdent(), cubeSize)
	e.Add(obj)

	target := mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0})
	e.Step(Input{Cursor: cursorAt(mgl64.Vec3{}), TargetRotation: target, Pinching: true})

	angle := 2 * math.Acos(math.Min(1, math.Abs(obj.Orientation.W)))
	assert.InDelta(t, 0.3*math.Pi/2, angle, 1e-6)
}

func TestEngine_DragEndDefersClear(t *testing.T) {
	d := event.NewDispatcher()
	var rec recorder
	rec.listen(d, event.DragEnd)

	e := New(DefaultConfig(), d, nil)
	obj := NewObject("box", mgl64.Vec3{}, mgl64.QuatIdent(), cubeSize)
	e.Add(obj)

	in := Input{Cursor: cursorAt(mgl64.Vec3{}), TargetRotation: mgl64.QuatIdent(), Pinching: true}
	e.Step(in)
	require.Same(t, obj, e.Selected())

	in.Pinching = false
	res := e.Step(in)
	assert.False(t, res.Dragging)
	assert.Equal(t, 1, rec.count(event.DragEnd))
	assert.Same(t, obj, e.Selected(), "selection survives until the listener calls Done")

	e.Step(in)
	assert.Equal(t, 1, rec.count(event.DragEnd), "drag_end is raised once per release")

	ev, ok := rec.last(event.DragEnd)
	require.True(t, ok)
	require.NotNil(t, ev.Done)
	ev.Done()
	assert.Nil(t, e.Selected())
	assert.False(t, obj.Selected())
}

func TestEngine_StaleDoneAfterRegrab(t *testing.T) {
	d := event.NewDispatcher()
	var rec recorder
	rec.listen(d, event.DragEnd)

	e := New(DefaultConfig(), d, nil)
	obj := NewObject("box", mgl64.Vec3{}, mgl64.QuatIdent(), cubeSize)
	e.Add(obj)

	in := Input{Cursor: cursorAt(mgl64.Vec3{}), TargetRotation: mgl64.QuatIdent(), Pinching: true}
	e.Step(in)
	in.Pinching = false
	e.Step(in)
	stale, ok := rec.last(event.DragEnd)
	require.True(t, ok)

	in.Pinching = true
	res := e.Step(in)
	assert.True(t, res.Dragging)

	stale.Done()
	assert.Same(t, obj, e.Selected(), "an old release must not clear a newer grab")

	in.Pinching = false
	e.Step(in)
	assert.Equal(t, 2, rec.count(event.DragEnd))
	fresh, _ := rec.last(event.DragEnd)
	fresh.Done()
	assert.Nil(t, e.Selected())
}

func TestEngine_CollisionOffSuppressedWhileSelected(t *testing.T) {
	d := event.NewDispatcher()
	var rec recorder
	rec.listen(d, event.CollisionOff)

	e := New(DefaultConfig(), d, nil)
	held := NewObject("held", mgl64.Vec3{}, mgl64.QuatIdent(), cubeSize)
	far := NewObject("far", mgl64.Vec3{3, 0, 0}, mgl64.QuatIdent(), cubeSize)
	e.Add(held, far)

	e.Step(Input{Cursor: cursorAt(mgl64.Vec3{}), TargetRotation: mgl64.QuatIdent(), Pinching: true})
	require.NotNil(t, e.Selected())
	assert.Equal(t, 0, rec.count(event.CollisionOff))
}

func TestEngine_DraggingDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Draggable = false
	e := New(cfg, nil, nil)
	obj := NewObject("box", mgl64.Vec3{}, mgl64.QuatIdent(), cubeSize)
	e.Add(obj)

	res := e.Step(Input{Cursor: cursorAt(mgl64.Vec3{}), CursorPosition: mgl64.Vec3{0.05, 0, 0}, TargetRotation: mgl64.QuatIdent(), Pinching: true})
	assert.True(t, res.Colliding)
	assert.False(t, res.Dragging)
	assert.Nil(t, e.Selected())
	assert.Equal(t, mgl64.Vec3{}, obj.Position)
}

func TestEngine_RemoveSelected(t *testing.T) {
	e := New(DefaultConfig(), nil, nil)
	obj := NewObject("box", mgl64.Vec3{}, mgl64.QuatIdent(), cubeSize)
	e.Add(obj)
	e.Step(Input{Cursor: cursorAt(mgl64.Vec3{}), TargetRotation: mgl64.QuatIdent(), Pinching: true})
	require.NotNil(t, e.Selected())

	e.Remove(obj)
	assert.Nil(t, e.Selected())
	assert.False(t, obj.Selected())
}

func TestEngine_RemoveFromListener(t *testing.T) {
	d := event.NewDispatcher()
	e := New(DefaultConfig(), d, nil)
	a := NewObject("a", mgl64.Vec3{}, mgl64.QuatIdent(), cubeSize)
	b := NewObject("b", mgl64.Vec3{0.01, 0, 0}, mgl64.QuatIdent(), cubeSize)
	c := NewObject("c", mgl64.Vec3{0.02, 0, 0}, mgl64.QuatIdent(), cubeSize)
	e.Add(a, b, c)

	hits := map[string]int{}
	d.On(event.CollisionOn, func(ev event.Event) {
		o, _ := ObjectOf(ev)
		hits[o.Name]++
		if o == a {
			e.Remove(b)
		}
	})

	e.Step(Input{Cursor: cursorAt(mgl64.Vec3{}), TargetRotation: mgl64.QuatIdent(), Pinching: true})

	assert.Equal(t, map[string]int{"a": 1, "c": 1}, hits, "removed objects are skipped and none is visited twice")
	assert.Equal(t, []*Object{a, c}, e.Objects())
	assert.Same(t, a, e.Selected())
	assert.False(t, b.Selected())
}
