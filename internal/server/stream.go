package server

import (
	"bytes"
	"fmt"
	"net/http"
	"time"
)

// Previewer provides the latest camera frame as JPEG.
type Previewer interface {
	Preview() []byte
}

// StreamHandler serves the camera preview as MJPEG.
type StreamHandler struct {
	camera   Previewer
	interval time.Duration
}

// NewStreamHandler creates a new StreamHandler with the given camera.
func NewStreamHandler(camera Previewer) *StreamHandler {
	return &StreamHandler{camera: camera, interval: 66 * time.Millisecond} // ~15 FPS
}

// ServeHTTP streams MJPEG frames to connected clients.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	var last []byte
	for {
		if jpeg := h.camera.Preview(); len(jpeg) > 0 && !bytes.Equal(jpeg, last) {
			fmt.Fprintf(w, "--frame\r\n")
			fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
			fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(jpeg))
			if _, err := w.Write(jpeg); err != nil {
				return
			}
			fmt.Fprintf(w, "\r\n")
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
			last = jpeg
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}
