// Package capture reads webcam frames with GoCV, gates them on motion and
// turns them into landmark frames for the interaction core.
package capture

import (
	"errors"
	"sync"

	"gocv.io/x/gocv"
)

// Capture resolution and frame rates.
const (
	DefaultWidth  = 640
	DefaultHeight = 480

	// IdleFPS is used while nothing moves in front of the camera.
	IdleFPS = 5
	// ActiveFPS is used while a hand is being tracked.
	ActiveFPS = 30
)

var (
	// ErrCameraNotOpen is returned when reading from a closed camera.
	ErrCameraNotOpen = errors.New("camera is not open")
	// ErrNoFrame is returned when the device produced no usable image.
	ErrNoFrame = errors.New("camera returned no frame")
)

// Camera is a frame source. The caller closes every Mat it reads.
type Camera interface {
	Open() error
	Close() error
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

type deviceCamera struct {
	deviceID int

	mu      sync.Mutex
	capture *gocv.VideoCapture
	fps     int
}

// NewCamera returns a camera for the given device index. It starts at
// IdleFPS.
func NewCamera(deviceID int) Camera {
	return &deviceCamera{deviceID: deviceID, fps: IdleFPS}
}

func (c *deviceCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture != nil {
		return nil
	}

	vc, err := gocv.OpenVideoCapture(c.deviceID)
	if err != nil {
		return err
	}
	vc.Set(gocv.VideoCaptureFrameWidth, DefaultWidth)
	vc.Set(gocv.VideoCaptureFrameHeight, DefaultHeight)
	vc.Set(gocv.VideoCaptureFPS, float64(c.fps))

	c.capture = vc
	return nil
}

func (c *deviceCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture == nil {
		return nil
	}
	err := c.capture.Close()
	c.capture = nil
	return err
}

func (c *deviceCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		return nil, ErrNoFrame
	}
	return &mat, nil
}

// SetFPS changes the requested frame rate. Non-positive values are ignored.
func (c *deviceCamera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.fps = fps
	if c.capture != nil {
		c.capture.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

func (c *deviceCamera) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

func (c *deviceCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capture != nil
}
