// Package event provides the synchronous publish/subscribe dispatcher shared
// by the gesture classifier and the interaction engine.
package event

import "time"

// Type identifies an interaction event.
type Type string

// Event types raised by the interaction core.
const (
	CollisionOn  Type = "collision_on"
	CollisionOff Type = "collision_off"
	DragStart    Type = "drag_start"
	DragEnd      Type = "drag_end"
	PinchOn      Type = "pinch_on"
	PinchOff     Type = "pinch_off"
)

// Event is delivered synchronously to every handler registered for Type.
type Event struct {
	Type    Type
	Payload any
	Time    time.Time

	// Done is set on drag_end. The listener calls it once its own cleanup
	// is finished; the engine clears the selection only then.
	Done func()
}

// Handler receives events.
type Handler func(Event)

// Dispatcher routes events to handlers by type. It is not safe for
// concurrent use; all calls happen on the frame loop.
type Dispatcher struct {
	handlers map[Type][]Handler
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[Type][]Handler)}
}

// On registers h for events of type t. Handlers run in registration order.
func (d *Dispatcher) On(t Type, h Handler) {
	if h == nil {
		return
	}
	d.handlers[t] = append(d.handlers[t], h)
}

// Emit delivers e to the handlers registered for e.Type. Handlers added
// while Emit is running see only later events. An event nobody listens to
// is dropped.
func (d *Dispatcher) Emit(e Event) {
	hs := d.handlers[e.Type]
	if len(hs) == 0 {
		return
	}
	snapshot := make([]Handler, len(hs))
	copy(snapshot, hs)
	for _, h := range snapshot {
		h(e)
	}
}

// Has reports whether any handler is registered for t.
func (d *Dispatcher) Has(t Type) bool {
	return len(d.handlers[t]) > 0
}
