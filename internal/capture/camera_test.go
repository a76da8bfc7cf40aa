package capture

import (
	"errors"
	"testing"
)

func TestNewCamera(t *testing.T) {
	for _, id := range []int{0, 1, 2} {
		cam := NewCamera(id)
		if cam == nil {
			t.Fatal("NewCamera returned nil")
		}
		if got := cam.FPS(); got != IdleFPS {
			t.Errorf("device %d: FPS() = %d, want %d", id, got, IdleFPS)
		}
		if cam.IsOpen() {
			t.Errorf("device %d: camera should not be open initially", id)
		}
	}
}

func TestCamera_SetFPS(t *testing.T) {
	cam := NewCamera(0)

	tests := []struct {
		name    string
		fps     int
		wantFPS int
	}{
		{name: "active rate", fps: ActiveFPS, wantFPS: ActiveFPS},
		{name: "one", fps: 1, wantFPS: 1},
		{name: "zero keeps previous", fps: 0, wantFPS: 1},
		{name: "negative keeps previous", fps: -5, wantFPS: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam.SetFPS(tt.fps)
			if got := cam.FPS(); got != tt.wantFPS {
				t.Errorf("FPS() = %d, want %d", got, tt.wantFPS)
			}
		})
	}
}

func TestCamera_ReadFrameWhenClosed(t *testing.T) {
	cam := NewCamera(0)

	frame, err := cam.ReadFrame()
	if !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("ReadFrame() error = %v, want ErrCameraNotOpen", err)
	}
	if frame != nil {
		t.Error("ReadFrame() should return nil frame when closed")
	}
}

func TestCamera_CloseWhenNotOpen(t *testing.T) {
	cam := NewCamera(0)
	if err := cam.Close(); err != nil {
		t.Errorf("Close() on unopened camera error = %v", err)
	}
	if err := cam.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
