package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/store"
)

var (
	// ErrRecording is returned when a recording is already in progress.
	ErrRecording = errors.New("recording already in progress")
	// ErrNotRecording is returned when stopping without a recording.
	ErrNotRecording = errors.New("not recording")
	// ErrReplaying is returned when a replay is already running.
	ErrReplaying = errors.New("replay already in progress")
)

type recording struct {
	id     string
	name   string
	start  time.Time
	frames []store.RecordedFrame
}

// StartRecording begins capturing submitted frames and returns the id the
// recording will be stored under.
func (a *App) StartRecording(name string) (string, error) {
	if a.config.Store == nil {
		return "", ErrNoStore
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.rec != nil {
		return "", ErrRecording
	}
	a.rec = &recording{
		id:    uuid.NewString(),
		name:  name,
		start: a.clock.Now(),
	}
	a.logger.Info("recording started", zap.String("id", a.rec.id), zap.String("name", name))
	return a.rec.id, nil
}

// Recording reports whether a recording is in progress.
func (a *App) Recording() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.rec != nil
}

// StopRecording ends the current recording and stores it.
func (a *App) StopRecording() (*store.Recording, error) {
	a.mu.Lock()
	rec := a.rec
	a.rec = nil
	a.mu.Unlock()

	if rec == nil {
		return nil, ErrNotRecording
	}

	r := &store.Recording{ID: rec.id, Name: rec.name}
	if err := a.config.Store.Recordings().Create(r, rec.frames); err != nil {
		return nil, fmt.Errorf("save recording: %w", err)
	}
	a.logger.Info("recording saved",
		zap.String("id", r.ID),
		zap.Int("frames", r.Frames),
		zap.Int64("duration_ms", r.DurationMs),
	)
	return r, nil
}

func (a *App) record(frame detector.Frame) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.rec == nil {
		return
	}
	data, err := json.Marshal(frame)
	if err != nil {
		a.logger.Warn("encode frame for recording", zap.Error(err))
		return
	}
	a.rec.frames = append(a.rec.frames, store.RecordedFrame{
		Sequence: len(a.rec.frames),
		OffsetMs: a.clock.Since(a.rec.start).Milliseconds(),
		Data:     data,
	})
}

// Replay feeds a stored recording into the loop with its original timing
// and returns when playback ends. Replayed frames bypass the enabled flag
// and are not recorded again. Only one replay runs at a time.
func (a *App) Replay(ctx context.Context, id string) error {
	frames, err := a.claimReplay(id)
	if err != nil {
		return err
	}
	defer a.replaying.Store(false)
	return a.play(ctx, id, frames)
}

// StartReplay claims the replay slot and loads the recording, then plays it
// in the background. Playback stops with ctx or when the loop stops.
func (a *App) StartReplay(ctx context.Context, id string) error {
	frames, err := a.claimReplay(id)
	if err != nil {
		return err
	}

	a.mu.RLock()
	loopCtx := a.loopCtx
	a.mu.RUnlock()

	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(loopCtx, cancel)
	go func() {
		defer a.replaying.Store(false)
		defer cancel()
		defer stop()
		if err := a.play(ctx, id, frames); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Warn("replay failed", zap.String("id", id), zap.Error(err))
		}
	}()
	return nil
}

// Replaying reports whether a replay is running.
func (a *App) Replaying() bool {
	return a.replaying.Load()
}

func (a *App) claimReplay(id string) ([]store.RecordedFrame, error) {
	if a.config.Store == nil {
		return nil, ErrNoStore
	}
	if !a.Running() {
		return nil, ErrStopped
	}
	if !a.replaying.CompareAndSwap(false, true) {
		return nil, ErrReplaying
	}

	frames, err := a.config.Store.Recordings().Frames(id)
	if err != nil {
		a.replaying.Store(false)
		return nil, fmt.Errorf("load recording %s: %w", id, err)
	}
	return frames, nil
}

func (a *App) play(ctx context.Context, id string, frames []store.RecordedFrame) error {
	a.logger.Info("replay started", zap.String("id", id), zap.Int("frames", len(frames)))
	start := time.Now()
	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	for _, rf := range frames {
		var frame detector.Frame
		if err := json.Unmarshal(rf.Data, &frame); err != nil {
			return fmt.Errorf("decode frame %d: %w", rf.Sequence, err)
		}

		if wait := time.Duration(rf.OffsetMs)*time.Millisecond - time.Since(start); wait > 0 {
			timer.Reset(wait)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		if !a.Running() {
			return ErrStopped
		}
		a.deliver(frame)
	}

	a.logger.Info("replay finished", zap.String("id", id))
	return nil
}
