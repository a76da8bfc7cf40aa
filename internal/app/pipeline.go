package app

import (
	"context"
	"time"

	"github.com/ayusman/mudra/internal/controls"
)

// run is the frame loop. It is the only goroutine that touches the
// controls.
//
// Each iteration handles one of:
//  1. a command from Do
//  2. the latest landmark frame from the mailbox
//  3. a display tick: Animate, then publish a snapshot
func (a *App) run(ctx context.Context) {
	defer a.wg.Done()

	ticker := time.NewTicker(time.Second / time.Duration(a.config.FrameRate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.controls.Stop()
			return
		case cmd := <-a.cmds:
			cmd(a.controls)
		case frame := <-a.frames:
			a.controls.Update(frame)
		case <-ticker.C:
			a.tick()
		}
	}
}

func (a *App) tick() {
	a.controls.Animate()
	a.publish(a.controls.Snapshot())
}

func (a *App) publish(snap controls.Snapshot) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.snapshot = snap
	for _, ch := range a.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}
