package capture

import (
	"errors"
	"sync"

	"gocv.io/x/gocv"
)

// ErrNoMoreFrames is returned by a non-looping MockCamera at the end of its
// frames.
var ErrNoMoreFrames = errors.New("no more frames")

// MockCamera plays back a fixed list of frames.
type MockCamera struct {
	mu      sync.Mutex
	frames  []*gocv.Mat
	index   int
	loop    bool
	running bool
	fps     int
}

// NewMockCamera creates a camera over frames. With loop set, playback
// wraps around.
func NewMockCamera(frames []*gocv.Mat, loop bool) *MockCamera {
	return &MockCamera{frames: frames, loop: loop, fps: IdleFPS}
}

func (c *MockCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = true
	c.index = 0
	return nil
}

func (c *MockCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
	return nil
}

// ReadFrame returns a clone of the next frame.
func (c *MockCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil, ErrCameraNotOpen
	}
	if len(c.frames) == 0 {
		return nil, ErrNoFrame
	}
	if c.index >= len(c.frames) {
		if !c.loop {
			return nil, ErrNoMoreFrames
		}
		c.index = 0
	}

	frame := c.frames[c.index].Clone()
	c.index++
	return &frame, nil
}

func (c *MockCamera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fps = fps
}

func (c *MockCamera) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

func (c *MockCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// SetFrames replaces the frame list and rewinds.
func (c *MockCamera) SetFrames(frames []*gocv.Mat) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = frames
	c.index = 0
}
