package tray

import (
	"context"
	"testing"

	"github.com/ayusman/mudra/internal/controls"
	"github.com/ayusman/mudra/internal/gesture"
)

func TestStatusLine(t *testing.T) {
	tests := []struct {
		name string
		st   controls.Status
		want string
	}{
		{name: "no hand", st: controls.Status{}, want: "idle"},
		{name: "returning", st: controls.Status{Returning: true}, want: "returning"},
		{name: "hovering", st: controls.Status{HandPresent: true}, want: "tracking"},
		{name: "touching", st: controls.Status{HandPresent: true, Colliding: true}, want: "tracking, touching"},
		{
			name: "dragging",
			st:   controls.Status{HandPresent: true, Colliding: true, Dragging: true, Pinching: true, Selected: "box-2"},
			want: "tracking, dragging box-2, pinch",
		},
		{
			name: "fist and swipe",
			st:   controls.Status{HandPresent: true, Fist: true, Direction: gesture.Left},
			want: "tracking, fist, left",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusLine(tt.st); got != tt.want {
				t.Errorf("statusLine() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTray_Toggle(t *testing.T) {
	tr := New()
	if !tr.IsEnabled() {
		t.Fatal("tray should start enabled")
	}

	var got []bool
	tr.OnToggle(func(enabled bool) { got = append(got, enabled) })

	tr.handleToggle()
	tr.handleToggle()

	if len(got) != 2 || got[0] || !got[1] {
		t.Errorf("toggle callbacks = %v, want [false true]", got)
	}
	if !tr.IsEnabled() {
		t.Error("two toggles should leave the tray enabled")
	}
}

func TestTray_Callbacks(t *testing.T) {
	tr := New()
	resets := 0
	tr.OnReset(func() { resets++ })

	tr.call(func() func() { return tr.onReset })
	tr.call(func() func() { return tr.onOpen })

	if resets != 1 {
		t.Errorf("reset called %d times, want 1", resets)
	}
}

func TestTray_Follow(t *testing.T) {
	tr := New()
	snaps := make(chan controls.Snapshot, 2)
	snaps <- controls.Snapshot{Status: controls.Status{HandPresent: true, Pinching: true}}
	close(snaps)

	tr.Follow(context.Background(), snaps)

	if got := tr.Status(); got != "tracking, pinch" {
		t.Errorf("Status() = %q, want %q", got, "tracking, pinch")
	}
}
