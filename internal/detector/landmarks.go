// Package detector provides hand landmark types and the perception interfaces
// that feed them into the interaction core.
package detector

import "math"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point3D is a landmark position. X and Y are normalized to [0,1] image
// coordinates, Z is depth relative to the wrist.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Distance returns the Euclidean distance between p and q.
func (p Point3D) Distance(q Point3D) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	dz := p.Z - q.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Translate returns a copy of h with every point shifted by (dx, dy, dz).
func (h HandLandmarks) Translate(dx, dy, dz float64) HandLandmarks {
	for i := range h.Points {
		h.Points[i].X += dx
		h.Points[i].Y += dy
		h.Points[i].Z += dz
	}
	return h
}

// Frame is one perception result. Zero hands is a valid and frequent state.
type Frame struct {
	Hands     []HandLandmarks `json:"hands"`
	Timestamp int64           `json:"timestamp"` // unix milliseconds
}

// NewFrame builds a frame holding the given hands.
func NewFrame(timestamp int64, hands ...HandLandmarks) Frame {
	return Frame{Hands: hands, Timestamp: timestamp}.Clone()
}

// Hand returns a copy of the tracked hand. Frames with no hand, or with more
// than one, report false: the core follows a single hand.
func (f Frame) Hand() (HandLandmarks, bool) {
	if len(f.Hands) != 1 {
		return HandLandmarks{}, false
	}
	return f.Hands[0], true
}

// Clone returns a frame that shares no memory with f.
func (f Frame) Clone() Frame {
	out := Frame{Timestamp: f.Timestamp}
	if f.Hands != nil {
		out.Hands = make([]HandLandmarks, len(f.Hands))
		copy(out.Hands, f.Hands)
	}
	return out
}
