package detector

import "gocv.io/x/gocv"

// Detector defines the interface for hand detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns the detected hand landmarks.
	// A frame without hands is returned with an empty Hands slice.
	Detect(frame *gocv.Mat) (Frame, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for hand detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect. The interaction
	// core follows one hand, so anything above 1 only wastes inference.
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64

	// IdleTimeoutSec shuts the subprocess down after this many seconds
	// without a Detect call. Zero keeps it alive.
	IdleTimeoutSec int
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxHands:        1,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
		IdleTimeoutSec:  30,
	}
}
