// Package cursor owns the pose of the in-scene cursor: direct drive from the
// gesture classifier, the animated return to the initial pose, and swapping
// in an asynchronously loaded model.
package cursor

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/geom"
	"github.com/ayusman/mudra/internal/gesture"
)

// Config holds the return-to-rest tunables.
type Config struct {
	// ReturnSpeed is the fraction of the remaining offset covered per frame.
	ReturnSpeed float64
	// ReturnTolerance ends the return once every delta falls below it.
	ReturnTolerance float64
}

// DefaultConfig returns the default cursor configuration.
func DefaultConfig() Config {
	return Config{
		ReturnSpeed:     0.03,
		ReturnTolerance: 0.001,
	}
}

type loadResult struct {
	seq   uint64
	model Model
	err   error
}

// Controller holds the cursor pose. Everything except the loader goroutine
// runs on the frame loop.
type Controller struct {
	Config Config

	model     Model
	pose      Pose
	initial   Pose
	returning bool
	// requested marks a return asked for explicitly. Only convergence
	// clears it.
	requested bool

	logger *zap.Logger

	mu     sync.Mutex
	loaded *loadResult
	seq    uint64
}

// New creates a controller for model, capturing its pose as the initial one.
func New(cfg Config, model Model, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		Config:  cfg,
		model:   model,
		pose:    model.Pose,
		initial: model.Pose,
		logger:  logger,
	}
}

// Pose returns the current pose.
func (c *Controller) Pose() Pose { return c.pose }

// Initial returns the captured rest pose.
func (c *Controller) Initial() Pose { return c.initial }

// Model returns the current cursor model.
func (c *Controller) Model() Model { return c.model }

// Returning reports whether the return-to-rest animation is active.
func (c *Controller) Returning() bool { return c.returning }

// Bounds returns the world box around the cursor.
func (c *Controller) Bounds() geom.Box {
	return geom.OrientedBounds(c.pose.Position, c.pose.Rotation.Quat(), c.model.HalfExtents)
}

// DriveFrom copies the gesture pose onto the cursor. It does nothing while
// returning to rest and reports whether the pose was applied.
func (c *Controller) DriveFrom(out gesture.Output) bool {
	if c.returning {
		return false
	}
	c.pose.Position = out.Position
	c.pose.Rotation = out.Rotation
	return true
}

// RequestReset starts the return to rest. It keeps running until the
// cursor arrives, even if a hand shows up meanwhile.
func (c *Controller) RequestReset() {
	c.returning = true
	c.requested = true
	c.logger.Info("cursor reset requested")
}

// BeginReturn starts the return to rest after the hand was lost.
func (c *Controller) BeginReturn() {
	c.returning = true
}

// Resume hands control back to the gesture drive, unless an explicit reset
// is still running.
func (c *Controller) Resume() {
	if c.returning && !c.requested {
		c.returning = false
	}
}

// ReturnToRest moves the pose one step toward the initial pose. Once every
// delta is within tolerance the pose snaps to rest and the return ends. It
// reports whether the return is still in progress.
func (c *Controller) ReturnToRest(speed, tolerance float64) bool {
	if !c.returning {
		return false
	}
	c.pose.Position = geom.Lerp(c.pose.Position, c.initial.Position, speed)
	c.pose.Rotation = c.pose.Rotation.Lerp(c.initial.Rotation, speed)

	if geom.Distance(c.pose.Position, c.initial.Position) < tolerance &&
		c.pose.Rotation.MaxDelta(c.initial.Rotation) < tolerance {
		c.pose = c.initial
		c.returning = false
		c.requested = false
		c.logger.Debug("cursor at rest")
		return false
	}
	return true
}

// Step advances the return animation with the configured speed.
func (c *Controller) Step() bool {
	return c.ReturnToRest(c.Config.ReturnSpeed, c.Config.ReturnTolerance)
}

// LoadAsync loads a model in the background. The result is applied by the
// next Poll on the frame loop. A later LoadAsync supersedes an earlier one.
func (c *Controller) LoadAsync(ctx context.Context, loader ModelLoader) {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.mu.Unlock()

	go func() {
		m, err := loader.Load(ctx)
		c.mu.Lock()
		defer c.mu.Unlock()
		if seq != c.seq {
			return
		}
		c.loaded = &loadResult{seq: seq, model: m, err: err}
	}()
}

// Poll applies a finished model load. The new model's transform becomes the
// initial pose; a return in progress continues toward it. A failed load
// leaves the current model in place. Poll reports whether a model was
// swapped in.
func (c *Controller) Poll() bool {
	c.mu.Lock()
	res := c.loaded
	c.loaded = nil
	if res != nil && res.seq != c.seq {
		res = nil
	}
	c.mu.Unlock()

	if res == nil {
		return false
	}
	if res.err != nil {
		c.logger.Warn("cursor model load failed", zap.Error(res.err))
		return false
	}

	c.model = res.model
	c.pose = res.model.Pose
	c.initial = res.model.Pose
	c.logger.Info("cursor model loaded",
		zap.String("model", res.model.Name),
		zap.Bool("returning", c.returning),
	)
	return true
}
