// Package tray provides the system tray menu for the gesture host.
package tray

import (
	"context"
	"strings"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/mudra/internal/controls"
)

// Tray represents the system tray application.
type Tray struct {
	onToggle func(enabled bool)
	onReset  func()
	onOpen   func()
	onQuit   func()
	enabled  bool
	status   string
	mu       sync.RWMutex

	menuToggle *systray.MenuItem
	menuStatus *systray.MenuItem
}

// New creates a new Tray with detection enabled.
func New() *Tray {
	return &Tray{
		enabled: true,
		status:  "idle",
	}
}

// OnToggle sets the callback for the enable toggle.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnReset sets the callback for the reset cursor item.
func (t *Tray) OnReset(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onReset = fn
}

// OnOpen sets the callback for the open UI item.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback for the quit item.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray. It blocks until Quit is clicked or
// systray.Quit is called, and must run on the main goroutine.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() {})
}

func (t *Tray) onReady() {
	systray.SetTitle("Mudra")
	systray.SetTooltip("Mudra hand gesture control")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle hand tracking")
	systray.AddSeparator()
	t.menuStatus = systray.AddMenuItem("Status: "+t.status, "Current interaction state")
	t.menuStatus.Disable()
	t.mu.Unlock()

	menuReset := systray.AddMenuItem("Reset cursor", "Return the cursor to its start pose")
	menuOpen := systray.AddMenuItem("Open scene...", "Open the scene in a browser")
	systray.AddSeparator()
	menuQuit := systray.AddMenuItem("Quit", "Quit Mudra")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuReset.ClickedCh:
				t.call(func() func() { return t.onReset })
			case <-menuOpen.ClickedCh:
				t.call(func() func() { return t.onOpen })
			case <-menuQuit.ClickedCh:
				t.call(func() func() { return t.onQuit })
				systray.Quit()
				return
			}
		}
	}()
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Enabled"
	}
	return "○ Disabled"
}

func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
	callback := t.onToggle
	t.mu.Unlock()

	if callback != nil {
		callback(enabled)
	}
}

// call runs the callback returned by get outside the lock.
func (t *Tray) call(get func() func()) {
	t.mu.RLock()
	callback := get()
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// SetStatus updates the status line from the interaction state.
func (t *Tray) SetStatus(st controls.Status) {
	line := statusLine(st)

	t.mu.Lock()
	defer t.mu.Unlock()

	if line == t.status {
		return
	}
	t.status = line
	if t.menuStatus != nil {
		t.menuStatus.SetTitle("Status: " + line)
	}
}

// Status returns the current status line.
func (t *Tray) Status() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

// Follow updates the status line from snapshots until ctx is done or the
// channel closes.
func (t *Tray) Follow(ctx context.Context, snaps <-chan controls.Snapshot) {
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-snaps:
			if !ok {
				return
			}
			t.SetStatus(snap.Status)
		}
	}
}

func statusLine(st controls.Status) string {
	if !st.HandPresent {
		if st.Returning {
			return "returning"
		}
		return "idle"
	}

	parts := []string{"tracking"}
	switch {
	case st.Dragging:
		parts = append(parts, "dragging "+st.Selected)
	case st.Colliding:
		parts = append(parts, "touching")
	}
	if st.Pinching {
		parts = append(parts, "pinch")
	}
	if st.Fist {
		parts = append(parts, "fist")
	}
	if st.Direction != "" {
		parts = append(parts, string(st.Direction))
	}
	return strings.Join(parts, ", ")
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// Quit stops a running tray from any goroutine.
func Quit() {
	systray.Quit()
}
