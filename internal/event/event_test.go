package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatcher_Order(t *testing.T) {
	d := NewDispatcher()
	var got []string
	d.On(DragStart, func(Event) { got = append(got, "a") })
	d.On(DragStart, func(Event) { got = append(got, "b") })
	d.On(DragEnd, func(Event) { got = append(got, "other") })

	d.Emit(Event{Type: DragStart})

	assert.Equal(t, []string{"a", "b"}, got)
}

func TestDispatcher_Payload(t *testing.T) {
	d := NewDispatcher()
	var seen Event
	d.On(CollisionOn, func(e Event) { seen = e })

	d.Emit(Event{Type: CollisionOn, Payload: 42})

	assert.Equal(t, CollisionOn, seen.Type)
	assert.Equal(t, 42, seen.Payload)
}

func TestDispatcher_Unlistened(t *testing.T) {
	d := NewDispatcher()
	assert.False(t, d.Has(PinchOn))
	assert.NotPanics(t, func() { d.Emit(Event{Type: PinchOn}) })

	d.On(PinchOn, nil)
	assert.False(t, d.Has(PinchOn), "nil handlers are ignored")
}

func TestDispatcher_RegisterDuringEmit(t *testing.T) {
	d := NewDispatcher()
	calls := 0
	d.On(PinchOff, func(Event) {
		calls++
		d.On(PinchOff, func(Event) { calls += 10 })
	})

	d.Emit(Event{Type: PinchOff})
	assert.Equal(t, 1, calls)

	d.Emit(Event{Type: PinchOff})
	assert.Equal(t, 12, calls)
}
