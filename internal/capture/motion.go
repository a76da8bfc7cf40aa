package capture

import (
	"image"
	"sync"
	"sync/atomic"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/timeutil"
)

const (
	// blurKernel is the Gaussian kernel applied before differencing.
	blurKernel = 21
	// pixelDiffThreshold is the grey-level change that counts a pixel as moved.
	pixelDiffThreshold = 25
)

// MotionDetector compares each frame with the previous one and reports the
// share of pixels that changed.
type MotionDetector struct {
	mu        sync.Mutex
	threshold float64 // percent of pixels
	prev      gocv.Mat
	hasPrev   bool
}

// NewMotionDetector creates a detector that reports motion when more than
// threshold percent of the pixels change between frames.
func NewMotionDetector(threshold float64) *MotionDetector {
	return &MotionDetector{threshold: threshold, prev: gocv.NewMat()}
}

// Detect reports whether frame differs from the previous frame, and by how
// many percent. The first frame only sets the baseline.
func (m *MotionDetector) Detect(frame *gocv.Mat) (bool, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: blurKernel, Y: blurKernel}, 0, 0, gocv.BorderDefault)

	if !m.hasPrev {
		blurred.CopyTo(&m.prev)
		m.hasPrev = true
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, m.prev, &diff)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(diff, &mask, pixelDiffThreshold, 255, gocv.ThresholdBinary)

	changed := float64(gocv.CountNonZero(mask)) / float64(mask.Rows()*mask.Cols()) * 100
	blurred.CopyTo(&m.prev)

	return changed > m.threshold, changed
}

// SetThreshold changes the threshold. Non-positive values are ignored.
func (m *MotionDetector) SetThreshold(threshold float64) {
	if threshold <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.threshold = threshold
}

// Reset forgets the baseline frame.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.release()
}

// Close releases the baseline frame. The detector stays usable.
func (m *MotionDetector) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.release()
}

func (m *MotionDetector) release() {
	if !m.prev.Empty() {
		m.prev.Close()
		m.prev = gocv.NewMat()
	}
	m.hasPrev = false
}

// MotionGate tracks whether the scene is active: it turns active on motion
// and idle again after IdleTimeout without motion or Hold.
type MotionGate struct {
	IdleTimeout time.Duration

	detector   *MotionDetector
	clock      timeutil.Clock
	active     atomic.Bool
	lastMotion time.Time
}

// NewMotionGate wraps d. A nil clock means wall time.
func NewMotionGate(d *MotionDetector, idleTimeout time.Duration, clock timeutil.Clock) *MotionGate {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &MotionGate{IdleTimeout: idleTimeout, detector: d, clock: clock}
}

// Observe feeds one frame and returns the gate state and whether it changed.
func (g *MotionGate) Observe(frame *gocv.Mat) (active, changed bool) {
	moved, _ := g.detector.Detect(frame)
	return g.update(moved)
}

func (g *MotionGate) update(moved bool) (active, changed bool) {
	now := g.clock.Now()
	if moved {
		g.lastMotion = now
		return true, g.active.CompareAndSwap(false, true)
	}
	if g.active.Load() && now.Sub(g.lastMotion) > g.IdleTimeout {
		g.active.Store(false)
		return false, true
	}
	return g.active.Load(), false
}

// Hold counts as motion for the idle timeout without changing the state.
// A tracked hand keeps the scene active even when it holds still.
func (g *MotionGate) Hold() {
	g.lastMotion = g.clock.Now()
}

// Active reports the current state. It is safe to call from any goroutine.
func (g *MotionGate) Active() bool {
	return g.active.Load()
}

// Close releases the detector.
func (g *MotionGate) Close() {
	g.detector.Close()
}
