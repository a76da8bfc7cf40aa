package capture

import (
	"errors"
	"testing"

	"gocv.io/x/gocv"
)

func TestMockCamera_Playback(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	a := gocv.NewMatWithSize(10, 10, gocv.MatTypeCV8UC3)
	defer a.Close()
	b := gocv.NewMatWithSize(20, 20, gocv.MatTypeCV8UC3)
	defer b.Close()

	cam := NewMockCamera([]*gocv.Mat{&a, &b}, false)
	if _, err := cam.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
		t.Fatalf("ReadFrame() before Open error = %v, want ErrCameraNotOpen", err)
	}

	if err := cam.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	for i, want := range []int{10, 20} {
		f, err := cam.ReadFrame()
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		if f.Rows() != want {
			t.Errorf("frame %d rows = %d, want %d", i, f.Rows(), want)
		}
		f.Close()
	}
	if _, err := cam.ReadFrame(); !errors.Is(err, ErrNoMoreFrames) {
		t.Errorf("ReadFrame() past end error = %v, want ErrNoMoreFrames", err)
	}
}

func TestMockCamera_Loop(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	a := gocv.NewMatWithSize(10, 10, gocv.MatTypeCV8UC3)
	defer a.Close()

	cam := NewMockCamera([]*gocv.Mat{&a}, true)
	cam.Open()
	defer cam.Close()

	for i := 0; i < 3; i++ {
		f, err := cam.ReadFrame()
		if err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		f.Close()
	}
}

func TestMockCamera_Empty(t *testing.T) {
	cam := NewMockCamera(nil, true)
	cam.Open()
	if _, err := cam.ReadFrame(); !errors.Is(err, ErrNoFrame) {
		t.Errorf("ReadFrame() with no frames error = %v, want ErrNoFrame", err)
	}

	cam.SetFPS(12)
	if cam.FPS() != 12 {
		t.Errorf("FPS() = %d, want 12", cam.FPS())
	}
}
