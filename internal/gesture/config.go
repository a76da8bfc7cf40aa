// Package gesture turns hand landmarks into the signals that drive the
// cursor: a debounced pinch, a confirmed swipe direction, a fist flag and
// the palm orientation.
package gesture

import (
	"math"
	"time"
)

// DrivePolicy selects how the cursor position is derived from a hand.
type DrivePolicy string

const (
	// DrivePinchMidpoint follows the point between thumb and index tips.
	DrivePinchMidpoint DrivePolicy = "pinch_midpoint"

	// DriveDepthRay follows the middle finger knuckle and estimates depth
	// from how far apart the wrist and middle finger joint appear on screen.
	DriveDepthRay DrivePolicy = "depth_ray"
)

// Direction is a cardinal swipe direction in scene space.
type Direction string

const (
	None  Direction = ""
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

// Config holds classifier tunables. None of them are validated; odd values
// give odd but safe behavior.
type Config struct {
	// OriginX and OriginY shift normalized landmarks before scaling.
	OriginX float64
	OriginY float64
	// Scale converts normalized landmark units to scene units.
	Scale float64

	// PinchThreshold is the thumb to index tip distance, in scene units,
	// below which the hand reads as pinching.
	PinchThreshold float64
	PinchInDelay   time.Duration
	PinchOutDelay  time.Duration

	// DirectionHold is how long a swipe direction must persist before one
	// rotation step is applied.
	DirectionHold time.Duration
	RotationStep  float64
	RotationLimit float64
	// SwipeDeadZone ignores thumb motion smaller than this per frame.
	SwipeDeadZone float64

	// FistThreshold is the middle knuckle to middle tip distance below which
	// the hand reads as a closed fist.
	FistThreshold float64

	Policy DrivePolicy

	// ShowLandmarks keeps the remapped points of the latest frame.
	ShowLandmarks bool
}

// DefaultConfig returns the default classifier configuration.
func DefaultConfig() Config {
	return Config{
		OriginX:        0.5,
		OriginY:        0.5,
		Scale:          4,
		PinchThreshold: 0.5,
		PinchInDelay:   200 * time.Millisecond,
		PinchOutDelay:  1200 * time.Millisecond,
		DirectionHold:  200 * time.Millisecond,
		RotationStep:   math.Pi / 8,
		RotationLimit:  2,
		SwipeDeadZone:  0.01,
		FistThreshold:  0.35,
		Policy:         DrivePinchMidpoint,
	}
}

// Depth mapping for DriveDepthRay: projected pixel separation in
// [depthPixelsMin, depthPixelsMax] maps linearly to [depthOutMin,
// depthOutMax], then is clamped to [depthClampMin, depthClampMax].
const (
	depthPixelsMin = 0
	depthPixelsMax = 1000
	depthOutMin    = -3
	depthOutMax    = 5
	depthClampMin  = -2
	depthClampMax  = 4
)
