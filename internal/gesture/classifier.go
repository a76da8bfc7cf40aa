package gesture

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/event"
	"github.com/ayusman/mudra/internal/geom"
	"github.com/ayusman/mudra/internal/scene"
	"github.com/ayusman/mudra/internal/timeutil"
)

// State is the classifier's debounce bookkeeping.
type State struct {
	Pinching bool
	// PinchStart is when the current below-threshold run began; zero when
	// the hand is not pinching or is already confirmed.
	PinchStart     time.Time
	ReleasePending bool

	Direction      Direction
	DirectionStart time.Time
}

// Output is what the classifier derives from the latest frame.
type Output struct {
	HandPresent bool

	// Position is where the cursor should be, in scene space.
	Position mgl64.Vec3
	// Rotation is the swipe-driven target rotation.
	Rotation geom.Euler
	// Palm is the orientation of the palm, middle knuckle toward middle tip.
	Palm mgl64.Quat

	Pinching      bool
	PinchDistance float64
	Fist          bool
	Direction     Direction
}

// Classifier converts landmark frames into gesture signals. It is owned by
// the frame loop and is not safe for concurrent use.
type Classifier struct {
	Config Config

	clock      timeutil.Clock
	scene      *scene.Context
	dispatcher *event.Dispatcher
	logger     *zap.Logger

	state   State
	release timeutil.Deadline
	out     Output

	rotation  geom.Euler
	prevThumb mgl64.Vec3
	hasPrev   bool
	depth     float64
	landmarks []mgl64.Vec3
}

// NewClassifier creates a classifier. sc is used only by DriveDepthRay and
// may be nil, in which case depth stays at its last value.
func NewClassifier(cfg Config, clock timeutil.Clock, sc *scene.Context, d *event.Dispatcher, logger *zap.Logger) *Classifier {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	if d == nil {
		d = event.NewDispatcher()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{
		Config:     cfg,
		clock:      clock,
		scene:      sc,
		dispatcher: d,
		logger:     logger,
		out:        Output{Palm: mgl64.QuatIdent()},
	}
}

// State returns a copy of the debounce state.
func (c *Classifier) State() State {
	return c.state
}

// Output returns the most recent output.
func (c *Classifier) Output() Output {
	return c.out
}

// Landmarks returns the remapped points of the latest frame when
// ShowLandmarks is on.
func (c *Classifier) Landmarks() []mgl64.Vec3 {
	if !c.Config.ShowLandmarks || len(c.landmarks) == 0 {
		return nil
	}
	out := make([]mgl64.Vec3, len(c.landmarks))
	copy(out, c.landmarks)
	return out
}

// SetRotation replaces the accumulated swipe rotation, e.g. after the
// cursor returned to rest.
func (c *Classifier) SetRotation(r geom.Euler) {
	c.rotation = r
	c.out.Rotation = r
}

// Remap converts a normalized landmark to scene space. The x and y axes are
// inverted to undo the mirrored camera image.
func (c *Classifier) Remap(p detector.Point3D) mgl64.Vec3 {
	s := c.Config.Scale
	return mgl64.Vec3{
		(-p.X + c.Config.OriginX) * s,
		(-p.Y + c.Config.OriginY) * s,
		-p.Z * s,
	}
}

// Poll runs a pending pinch release if it is due. The frame loop calls it
// every tick, including ticks without new landmarks.
func (c *Classifier) Poll() {
	c.release.Fire(c.clock.Now())
}

// Stop cancels pending transitions so nothing fires after perception ends.
func (c *Classifier) Stop() {
	if c.release.Cancel() {
		c.logger.Debug("pending pinch release cancelled on stop")
	}
	c.state.ReleasePending = false
	c.state.PinchStart = time.Time{}
	c.state.Direction = None
	c.state.DirectionStart = time.Time{}
	c.hasPrev = false
}

// Release ends an active pinch immediately and clears pending transitions.
// Use it when intake is switched off mid-session; Stop keeps the pinch
// latched and is meant for shutdown.
func (c *Classifier) Release() {
	pinching := c.state.Pinching
	c.Stop()
	c.state.Pinching = false
	c.out.Pinching = false
	if pinching {
		c.logger.Info("pinch off", zap.String("reason", "released"))
		c.dispatcher.Emit(event.Event{Type: event.PinchOff, Time: c.clock.Now()})
	}
}

// Update classifies one frame and returns the new output. The frame is
// read, never retained.
func (c *Classifier) Update(frame detector.Frame) Output {
	c.Poll()
	now := c.clock.Now()

	hand, ok := frame.Hand()
	if !ok {
		c.handLost(now)
		return c.out
	}

	var pts [detector.NumLandmarks]mgl64.Vec3
	for i, p := range hand.Points {
		pts[i] = c.Remap(p)
	}
	if c.Config.ShowLandmarks {
		c.landmarks = append(c.landmarks[:0], pts[:]...)
	} else {
		c.landmarks = nil
	}

	thumb, index := pts[detector.ThumbTip], pts[detector.IndexTip]
	dist := geom.Distance(thumb, index)

	c.out.HandPresent = true
	c.out.PinchDistance = dist
	c.updatePinch(dist, now)
	c.updateDirection(thumb, now)

	c.out.Fist = geom.Distance(pts[detector.MiddleMCP], pts[detector.MiddleTip]) < c.Config.FistThreshold
	if palm, ok := geom.BasisQuat(pts[detector.MiddleMCP], pts[detector.MiddleTip]); ok {
		c.out.Palm = palm
	}

	switch c.Config.Policy {
	case DriveDepthRay:
		c.out.Position = c.depthRayPosition(pts)
	default:
		c.out.Position = geom.Midpoint(thumb, index)
	}

	c.out.Pinching = c.state.Pinching
	c.out.Direction = c.state.Direction
	c.out.Rotation = c.rotation
	return c.out
}

func (c *Classifier) handLost(now time.Time) {
	if c.out.HandPresent {
		c.logger.Debug("hand lost")
	}
	c.out.HandPresent = false
	c.out.Direction = None
	c.out.PinchDistance = 0
	c.landmarks = nil

	c.hasPrev = false
	c.state.Direction = None
	c.state.DirectionStart = time.Time{}
	c.state.PinchStart = time.Time{}

	if c.state.Pinching && !c.release.Pending() {
		c.scheduleRelease(now)
	}
	c.out.Pinching = c.state.Pinching
}

func (c *Classifier) updatePinch(dist float64, now time.Time) {
	if dist < c.Config.PinchThreshold {
		if c.release.Cancel() {
			c.state.ReleasePending = false
			c.logger.Debug("pinch release cancelled", zap.Float64("distance", dist))
		}
		if c.state.Pinching {
			return
		}
		if c.state.PinchStart.IsZero() {
			c.state.PinchStart = now
		}
		if now.Sub(c.state.PinchStart) >= c.Config.PinchInDelay {
			c.state.Pinching = true
			c.state.PinchStart = time.Time{}
			c.logger.Info("pinch on", zap.Float64("distance", dist))
			c.dispatcher.Emit(event.Event{Type: event.PinchOn, Payload: dist, Time: now})
		}
		return
	}

	c.state.PinchStart = time.Time{}
	if c.state.Pinching && !c.release.Pending() {
		c.scheduleRelease(now)
	}
}

func (c *Classifier) scheduleRelease(now time.Time) {
	c.state.ReleasePending = true
	c.release.Start(now.Add(c.Config.PinchOutDelay), func() {
		c.state.Pinching = false
		c.state.ReleasePending = false
		c.out.Pinching = false
		c.logger.Info("pinch off")
		c.dispatcher.Emit(event.Event{Type: event.PinchOff, Time: c.clock.Now()})
	})
}

func (c *Classifier) updateDirection(thumb mgl64.Vec3, now time.Time) {
	if !c.hasPrev {
		c.prevThumb = thumb
		c.hasPrev = true
		return
	}
	delta := thumb.Sub(c.prevThumb)
	c.prevThumb = thumb

	dir := classifyDirection(delta.X(), delta.Y(), c.Config.SwipeDeadZone)
	if dir != c.state.Direction {
		c.state.Direction = dir
		c.state.DirectionStart = now
		return
	}
	if dir == None || now.Sub(c.state.DirectionStart) < c.Config.DirectionHold {
		return
	}

	c.applyStep(dir)
	c.state.DirectionStart = now
}

func (c *Classifier) applyStep(dir Direction) {
	step, limit := c.Config.RotationStep, c.Config.RotationLimit
	switch dir {
	case Right:
		c.rotation.Y = geom.Clamp(c.rotation.Y+step, -limit, limit)
	case Left:
		c.rotation.Y = geom.Clamp(c.rotation.Y-step, -limit, limit)
	case Up:
		c.rotation.X = geom.Clamp(c.rotation.X+step, -limit, limit)
	case Down:
		c.rotation.X = geom.Clamp(c.rotation.X-step, -limit, limit)
	}
	c.logger.Debug("rotation step",
		zap.String("direction", string(dir)),
		zap.Float64("x", c.rotation.X),
		zap.Float64("y", c.rotation.Y),
	)
}

// classifyDirection picks the dominant axis of a per-frame motion.
func classifyDirection(dx, dy, deadZone float64) Direction {
	ax, ay := math.Abs(dx), math.Abs(dy)
	if ax < deadZone && ay < deadZone {
		return None
	}
	if ax > ay {
		if dx > 0 {
			return Right
		}
		return Left
	}
	if dy > 0 {
		return Up
	}
	return Down
}

// depthRayPosition follows the middle knuckle and estimates depth from the
// on-screen separation of the wrist and the middle finger joint. Without a
// usable projection the previous depth is kept.
func (c *Classifier) depthRayPosition(pts [detector.NumLandmarks]mgl64.Vec3) mgl64.Vec3 {
	a, okA := c.scene.Project(pts[detector.Wrist])
	b, okB := c.scene.Project(pts[detector.MiddlePIP])
	if okA && okB {
		d := geom.MapLinear(a.Distance(b), depthPixelsMin, depthPixelsMax, depthOutMin, depthOutMax)
		c.depth = geom.Clamp(d, depthClampMin, depthClampMax)
	}
	knuckle := pts[detector.MiddleMCP]
	return mgl64.Vec3{knuckle.X(), knuckle.Y(), -c.depth}
}
