package detector

import (
	"errors"
	"math"
	"testing"
)

const epsilon = 1e-9

// sceneScale mirrors the remap factor the classifier applies to raw points.
const sceneScale = 4.0

func TestFrame_Hand(t *testing.T) {
	t.Run("no hands", func(t *testing.T) {
		if _, ok := (Frame{}).Hand(); ok {
			t.Error("expected no hand for empty frame")
		}
	})

	t.Run("single hand", func(t *testing.T) {
		f := NewFrame(10, OpenPalmLandmarks())
		hand, ok := f.Hand()
		if !ok {
			t.Fatal("expected a hand")
		}
		if hand.Handedness != "Right" {
			t.Errorf("handedness = %s, want Right", hand.Handedness)
		}
	})

	t.Run("two hands are ignored", func(t *testing.T) {
		f := NewFrame(10, OpenPalmLandmarks(), PinchLandmarks())
		if _, ok := f.Hand(); ok {
			t.Error("expected two-hand frame to report no tracked hand")
		}
	})

	t.Run("returned hand does not alias the frame", func(t *testing.T) {
		f := NewFrame(10, OpenPalmLandmarks())
		hand, _ := f.Hand()
		hand.Points[Wrist].X = 42

		again, _ := f.Hand()
		if again.Points[Wrist].X == 42 {
			t.Error("mutating the returned hand changed the frame")
		}
	})
}

func TestFrame_Clone(t *testing.T) {
	src := []HandLandmarks{OpenPalmLandmarks()}
	f := Frame{Hands: src, Timestamp: 5}

	c := f.Clone()
	src[0].Points[ThumbTip].X = -1

	if c.Hands[0].Points[ThumbTip].X == -1 {
		t.Error("clone shares the hands slice with its source")
	}
	if c.Timestamp != 5 {
		t.Errorf("timestamp = %d, want 5", c.Timestamp)
	}
	if (Frame{}).Clone().Hands != nil {
		t.Error("cloning an empty frame should keep Hands nil")
	}
}

func TestHandLandmarks_Translate(t *testing.T) {
	h := OpenPalmLandmarks()
	moved := h.Translate(0.1, -0.2, 0.05)

	for i := 0; i < NumLandmarks; i++ {
		if math.Abs(moved.Points[i].X-(h.Points[i].X+0.1)) > epsilon {
			t.Fatalf("point %d X not translated", i)
		}
		if math.Abs(moved.Points[i].Y-(h.Points[i].Y-0.2)) > epsilon {
			t.Fatalf("point %d Y not translated", i)
		}
	}
	if h.Points[Wrist].X != 0.5 {
		t.Error("Translate mutated its receiver")
	}
}

func TestPresets(t *testing.T) {
	tests := []struct {
		name      string
		hand      HandLandmarks
		wantPinch bool
		wantFist  bool
	}{
		{name: "open palm", hand: OpenPalmLandmarks(), wantPinch: false, wantFist: false},
		{name: "pinch", hand: PinchLandmarks(), wantPinch: true, wantFist: false},
		{name: "fist", hand: FistLandmarks(), wantPinch: false, wantFist: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pinch := tt.hand.Points[ThumbTip].Distance(tt.hand.Points[IndexTip]) * sceneScale
			if got := pinch < 0.5; got != tt.wantPinch {
				t.Errorf("pinch distance %.3f: pinching = %v, want %v", pinch, got, tt.wantPinch)
			}

			fist := tt.hand.Points[MiddleMCP].Distance(tt.hand.Points[MiddleTip]) * sceneScale
			if got := fist < 0.35; got != tt.wantFist {
				t.Errorf("fist distance %.3f: fist = %v, want %v", fist, got, tt.wantFist)
			}
		})
	}
}

func TestMockDetector(t *testing.T) {
	t.Run("returns empty frame by default", func(t *testing.T) {
		mock := NewMockDetector()

		frame, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if len(frame.Hands) != 0 {
			t.Errorf("expected no hands, got %d", len(frame.Hands))
		}
	})

	t.Run("returns configured hands", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetHands(PinchLandmarks())

		frame, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if len(frame.Hands) != 1 {
			t.Errorf("expected 1 hand, got %d", len(frame.Hands))
		}
		if mock.Calls() != 1 {
			t.Errorf("calls = %d, want 1", mock.Calls())
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()

		expectedErr := errors.New("detection failed")
		mock.SetError(expectedErr)

		_, err := mock.Detect(nil)

		if !errors.Is(err, expectedErr) {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
	})

	t.Run("Close marks closed", func(t *testing.T) {
		mock := NewMockDetector()

		if err := mock.Close(); err != nil {
			t.Errorf("expected Close to return nil, got %v", err)
		}
		if !mock.Closed() {
			t.Error("expected Closed() to be true")
		}
	})

	t.Run("implements Detector interface", func(t *testing.T) {
		var _ Detector = (*MockDetector)(nil)
		var _ Detector = (*MediaPipeDetector)(nil)
	})
}

func TestParseResponse(t *testing.T) {
	t.Run("decodes hands", func(t *testing.T) {
		line := []byte(`{"hands":[{"points":[{"x":0.1,"y":0.2,"z":0.3},{"x":0.4,"y":0.5,"z":0.6}],"handedness":"Left","score":0.8}]}` + "\n")

		frame, err := parseResponse(line)
		if err != nil {
			t.Fatalf("parseResponse() error = %v", err)
		}
		if len(frame.Hands) != 1 {
			t.Fatalf("hands = %d, want 1", len(frame.Hands))
		}
		h := frame.Hands[0]
		if h.Handedness != "Left" || h.Score != 0.8 {
			t.Errorf("unexpected metadata %+v", h)
		}
		if h.Points[ThumbCMC].Y != 0.5 {
			t.Errorf("point 1 Y = %f, want 0.5", h.Points[ThumbCMC].Y)
		}
		if h.Points[PinkyTip] != (Point3D{}) {
			t.Errorf("missing points should stay zero, got %+v", h.Points[PinkyTip])
		}
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		if _, err := parseResponse([]byte("{")); err == nil {
			t.Error("expected error for malformed response")
		}
	})
}
