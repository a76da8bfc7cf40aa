// Package controls composes the gesture classifier, cursor controller and
// interaction engine into the two calls a host makes every display frame:
// Update with fresh landmarks, then Animate.
package controls

import (
	"context"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/cursor"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/event"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/interaction"
	"github.com/ayusman/mudra/internal/scene"
	"github.com/ayusman/mudra/internal/timeutil"
)

// Options carries the collaborators Controls is built from.
type Options struct {
	Clock   timeutil.Clock
	Scene   *scene.Context
	Model   cursor.Model
	Objects []*interaction.Object
	Logger  *zap.Logger
}

// Status is the high-level state returned by Animate.
type Status struct {
	HandPresent bool              `json:"handPresent"`
	Pinching    bool              `json:"pinching"`
	Fist        bool              `json:"fist"`
	Colliding   bool              `json:"colliding"`
	Dragging    bool              `json:"dragging"`
	Returning   bool              `json:"returning"`
	Direction   gesture.Direction `json:"direction"`
	Selected    string            `json:"selected,omitempty"`
}

// Controls is the interaction core. It is driven from a single goroutine.
type Controls struct {
	settings Settings

	clock      timeutil.Clock
	scene      *scene.Context
	dispatcher *event.Dispatcher
	logger     *zap.Logger

	classifier *gesture.Classifier
	cursor     *cursor.Controller
	engine     *interaction.Engine

	status Status
}

// New builds the core. A zero Options.Model means the default sphere.
func New(s Settings, opts Options) *Controls {
	if opts.Clock == nil {
		opts.Clock = timeutil.RealClock{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Model.HalfExtents == (mgl64.Vec3{}) {
		opts.Model = cursor.DefaultModel()
	}

	d := event.NewDispatcher()
	c := &Controls{
		settings:   s,
		clock:      opts.Clock,
		scene:      opts.Scene,
		dispatcher: d,
		logger:     opts.Logger,
		classifier: gesture.NewClassifier(s.gestureConfig(), opts.Clock, opts.Scene, d, opts.Logger.Named("gesture")),
		cursor:     cursor.New(s.cursorConfig(), opts.Model, opts.Logger.Named("cursor")),
		engine:     interaction.New(s.engineConfig(), d, opts.Logger.Named("interaction")),
	}
	c.engine.Add(opts.Objects...)
	c.classifier.SetRotation(c.cursor.Pose().Rotation)
	return c
}

// On subscribes h to events of type t.
func (c *Controls) On(t event.Type, h event.Handler) {
	c.dispatcher.On(t, h)
}

// Update feeds one perception frame. Frames may arrive less often than
// Animate runs; the last gesture state persists in between.
func (c *Controls) Update(frame detector.Frame) {
	var out gesture.Output
	if !c.guard("gesture", func() { out = c.classifier.Update(frame) }) {
		return
	}
	c.guard("drive", func() {
		if out.HandPresent {
			c.cursor.Resume()
			c.cursor.DriveFrom(out)
			return
		}
		c.cursor.BeginReturn()
	})
}

// Animate advances one display frame and returns the resulting status.
func (c *Controls) Animate() Status {
	now := c.clock.Now()

	c.guard("model", func() {
		if c.cursor.Poll() {
			c.classifier.SetRotation(c.cursor.Pose().Rotation)
		}
	})
	c.guard("debounce", c.classifier.Poll)
	c.guard("return", func() {
		if c.cursor.Returning() {
			c.cursor.Step()
			c.classifier.SetRotation(c.cursor.Pose().Rotation)
		}
	})

	out := c.classifier.Output()
	var res interaction.Result
	c.guard("interaction", func() {
		pose := c.cursor.Pose()
		target := pose.Rotation.Quat()
		if c.settings.DragFollowsPalm && out.HandPresent {
			target = out.Palm
		}
		res = c.engine.Step(interaction.Input{
			Cursor:         c.cursor.Bounds(),
			CursorPosition: pose.Position,
			TargetRotation: target,
			Pinching:       out.Pinching,
			Time:           now,
		})
	})

	st := Status{
		HandPresent: out.HandPresent,
		Pinching:    out.Pinching,
		Fist:        out.Fist,
		Colliding:   res.Colliding,
		Dragging:    res.Dragging,
		Returning:   c.cursor.Returning(),
		Direction:   out.Direction,
	}
	if sel := c.engine.Selected(); sel != nil {
		st.Selected = sel.Name
	}
	c.status = st
	return st
}

// guard runs fn and turns a panic into a skipped subsystem for this frame.
func (c *Controls) guard(name string, fn func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("frame step panicked, skipping",
				zap.String("subsystem", name),
				zap.Any("panic", r),
			)
			ok = false
		}
	}()
	fn()
	return true
}

// Settings returns the active tunables.
func (c *Controls) Settings() Settings {
	return c.settings
}

// ApplySettings replaces the tunables of every subsystem.
func (c *Controls) ApplySettings(s Settings) {
	c.settings = s
	c.classifier.Config = s.gestureConfig()
	c.cursor.Config = s.cursorConfig()
	c.engine.Config = s.engineConfig()
	c.logger.Info("settings applied",
		zap.Float64("pinch_threshold", s.PinchThreshold),
		zap.String("policy", string(s.Policy)),
	)
}

// RequestReset animates the cursor back to its initial pose.
func (c *Controls) RequestReset() {
	c.cursor.RequestReset()
}

// Stop clears pending debounce transitions. Call it when perception stops.
func (c *Controls) Stop() {
	c.classifier.Stop()
}

// Release drops an active pinch at once so a selection ends on the next
// Animate. Call it when intake is switched off while the loop keeps running.
func (c *Controls) Release() {
	c.guard("gesture", c.classifier.Release)
}

// LoadModel swaps the cursor model once loader finishes.
func (c *Controls) LoadModel(ctx context.Context, loader cursor.ModelLoader) {
	c.cursor.LoadAsync(ctx, loader)
}

// Status returns the result of the last Animate.
func (c *Controls) Status() Status {
	return c.status
}

// Landmarks returns the remapped points of the last frame, if enabled.
func (c *Controls) Landmarks() []mgl64.Vec3 {
	return c.classifier.Landmarks()
}

// Objects returns the draggable objects.
func (c *Controls) Objects() []*interaction.Object {
	return c.engine.Objects()
}

// AddObjects inserts draggable objects.
func (c *Controls) AddObjects(objs ...*interaction.Object) {
	c.engine.Add(objs...)
}

// Cursor returns the cursor controller.
func (c *Controls) Cursor() *cursor.Controller {
	return c.cursor
}

// Scene returns the scene context, which may be nil.
func (c *Controls) Scene() *scene.Context {
	return c.scene
}

// ObjectState is a serializable view of a draggable object.
type ObjectState struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Position    mgl64.Vec3 `json:"position"`
	Orientation mgl64.Quat `json:"orientation"`
	HalfExtents mgl64.Vec3 `json:"halfExtents"`
	Opacity     float64    `json:"opacity"`
	Colliding   bool       `json:"colliding"`
	Selected    bool       `json:"selected"`
}

// Snapshot is the full renderable state after a frame.
type Snapshot struct {
	Time      time.Time     `json:"time"`
	Status    Status        `json:"status"`
	Cursor    cursor.Pose   `json:"cursor"`
	Model     cursor.Model  `json:"model"`
	Objects   []ObjectState `json:"objects"`
	Landmarks []mgl64.Vec3  `json:"landmarks,omitempty"`
}

// Snapshot copies the current state for rendering elsewhere.
func (c *Controls) Snapshot() Snapshot {
	objs := c.engine.Objects()
	states := make([]ObjectState, 0, len(objs))
	for _, o := range objs {
		states = append(states, ObjectState{
			ID:          o.ID,
			Name:        o.Name,
			Position:    o.Position,
			Orientation: o.Orientation,
			HalfExtents: o.HalfExtents,
			Opacity:     o.Opacity,
			Colliding:   o.HasCollision(),
			Selected:    o.Selected(),
		})
	}
	return Snapshot{
		Time:      c.clock.Now(),
		Status:    c.status,
		Cursor:    c.cursor.Pose(),
		Model:     c.cursor.Model(),
		Objects:   states,
		Landmarks: c.classifier.Landmarks(),
	}
}
