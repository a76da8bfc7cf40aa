package controls

import (
	"fmt"
	"strconv"
	"time"

	"github.com/ayusman/mudra/internal/cursor"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/interaction"
)

// Settings are the user-facing tunables. They are plain fields with no
// validation; out-of-range values degrade behavior but never crash a frame.
type Settings struct {
	PinchThreshold float64       `json:"pinchThreshold"`
	OriginX        float64       `json:"originX"`
	OriginY        float64       `json:"originY"`
	Scale          float64       `json:"scale"`
	PinchInDelay   time.Duration `json:"pinchInDelay"`
	PinchOutDelay  time.Duration `json:"pinchOutDelay"`
	DirectionHold  time.Duration `json:"directionHold"`
	RotationStep   float64       `json:"rotationStep"`
	RotationLimit  float64       `json:"rotationLimit"`
	SwipeDeadZone  float64       `json:"swipeDeadZone"`
	FistThreshold  float64       `json:"fistThreshold"`

	DragFactor      float64 `json:"dragFactor"`
	Draggable       bool    `json:"draggable"`
	DragFollowsPalm bool    `json:"dragFollowsPalm"`

	ReturnSpeed     float64 `json:"returnSpeed"`
	ReturnTolerance float64 `json:"returnTolerance"`

	Policy        gesture.DrivePolicy `json:"policy"`
	ShowLandmarks bool                `json:"showLandmarks"`
}

// DefaultSettings collects the defaults of every subsystem.
func DefaultSettings() Settings {
	g := gesture.DefaultConfig()
	cur := cursor.DefaultConfig()
	eng := interaction.DefaultConfig()
	return Settings{
		PinchThreshold:  g.PinchThreshold,
		OriginX:         g.OriginX,
		OriginY:         g.OriginY,
		Scale:           g.Scale,
		PinchInDelay:    g.PinchInDelay,
		PinchOutDelay:   g.PinchOutDelay,
		DirectionHold:   g.DirectionHold,
		RotationStep:    g.RotationStep,
		RotationLimit:   g.RotationLimit,
		SwipeDeadZone:   g.SwipeDeadZone,
		FistThreshold:   g.FistThreshold,
		DragFactor:      eng.DragFactor,
		Draggable:       eng.Draggable,
		ReturnSpeed:     cur.ReturnSpeed,
		ReturnTolerance: cur.ReturnTolerance,
		Policy:          g.Policy,
	}
}

func (s Settings) gestureConfig() gesture.Config {
	return gesture.Config{
		OriginX:        s.OriginX,
		OriginY:        s.OriginY,
		Scale:          s.Scale,
		PinchThreshold: s.PinchThreshold,
		PinchInDelay:   s.PinchInDelay,
		PinchOutDelay:  s.PinchOutDelay,
		DirectionHold:  s.DirectionHold,
		RotationStep:   s.RotationStep,
		RotationLimit:  s.RotationLimit,
		SwipeDeadZone:  s.SwipeDeadZone,
		FistThreshold:  s.FistThreshold,
		Policy:         s.Policy,
		ShowLandmarks:  s.ShowLandmarks,
	}
}

func (s Settings) cursorConfig() cursor.Config {
	return cursor.Config{ReturnSpeed: s.ReturnSpeed, ReturnTolerance: s.ReturnTolerance}
}

func (s Settings) engineConfig() interaction.Config {
	return interaction.Config{
		DragFactor:       s.DragFactor,
		Draggable:        s.Draggable,
		CollisionOpacity: interaction.CollisionOpacity,
	}
}

// Setting keys used by Encode and DecodeSettings.
const (
	KeyPinchThreshold  = "pinch_threshold"
	KeyOriginX         = "origin_x"
	KeyOriginY         = "origin_y"
	KeyScale           = "scale"
	KeyPinchInDelay    = "pinch_in_delay"
	KeyPinchOutDelay   = "pinch_out_delay"
	KeyDirectionHold   = "direction_hold"
	KeyRotationStep    = "rotation_step"
	KeyRotationLimit   = "rotation_limit"
	KeySwipeDeadZone   = "swipe_dead_zone"
	KeyFistThreshold   = "fist_threshold"
	KeyDragFactor      = "drag_factor"
	KeyDraggable       = "draggable"
	KeyDragFollowsPalm = "drag_follows_palm"
	KeyReturnSpeed     = "return_speed"
	KeyReturnTolerance = "return_tolerance"
	KeyPolicy          = "policy"
	KeyShowLandmarks   = "show_landmarks"
)

// Encode flattens s into string key/value pairs for storage.
func (s Settings) Encode() map[string]string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	return map[string]string{
		KeyPinchThreshold:  f(s.PinchThreshold),
		KeyOriginX:         f(s.OriginX),
		KeyOriginY:         f(s.OriginY),
		KeyScale:           f(s.Scale),
		KeyPinchInDelay:    s.PinchInDelay.String(),
		KeyPinchOutDelay:   s.PinchOutDelay.String(),
		KeyDirectionHold:   s.DirectionHold.String(),
		KeyRotationStep:    f(s.RotationStep),
		KeyRotationLimit:   f(s.RotationLimit),
		KeySwipeDeadZone:   f(s.SwipeDeadZone),
		KeyFistThreshold:   f(s.FistThreshold),
		KeyDragFactor:      f(s.DragFactor),
		KeyDraggable:       strconv.FormatBool(s.Draggable),
		KeyDragFollowsPalm: strconv.FormatBool(s.DragFollowsPalm),
		KeyReturnSpeed:     f(s.ReturnSpeed),
		KeyReturnTolerance: f(s.ReturnTolerance),
		KeyPolicy:          string(s.Policy),
		KeyShowLandmarks:   strconv.FormatBool(s.ShowLandmarks),
	}
}

// DecodeSettings overlays the stored pairs in m onto base. Unknown keys are
// ignored; a malformed value is an error.
func DecodeSettings(m map[string]string, base Settings) (Settings, error) {
	s := base
	floats := map[string]*float64{
		KeyPinchThreshold:  &s.PinchThreshold,
		KeyOriginX:         &s.OriginX,
		KeyOriginY:         &s.OriginY,
		KeyScale:           &s.Scale,
		KeyRotationStep:    &s.RotationStep,
		KeyRotationLimit:   &s.RotationLimit,
		KeySwipeDeadZone:   &s.SwipeDeadZone,
		KeyFistThreshold:   &s.FistThreshold,
		KeyDragFactor:      &s.DragFactor,
		KeyReturnSpeed:     &s.ReturnSpeed,
		KeyReturnTolerance: &s.ReturnTolerance,
	}
	durations := map[string]*time.Duration{
		KeyPinchInDelay:  &s.PinchInDelay,
		KeyPinchOutDelay: &s.PinchOutDelay,
		KeyDirectionHold: &s.DirectionHold,
	}
	bools := map[string]*bool{
		KeyDraggable:       &s.Draggable,
		KeyDragFollowsPalm: &s.DragFollowsPalm,
		KeyShowLandmarks:   &s.ShowLandmarks,
	}

	for k, v := range m {
		var err error
		switch {
		case floats[k] != nil:
			*floats[k], err = strconv.ParseFloat(v, 64)
		case durations[k] != nil:
			*durations[k], err = time.ParseDuration(v)
		case bools[k] != nil:
			*bools[k], err = strconv.ParseBool(v)
		case k == KeyPolicy:
			s.Policy = gesture.DrivePolicy(v)
		}
		if err != nil {
			return base, fmt.Errorf("setting %s=%q: %w", k, v, err)
		}
	}
	return s, nil
}
