package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/detector"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

const writeWait = time.Second

// LandmarksHandler ingests landmark frames from a browser-side hand tracker.
// Each text message is one JSON frame.
type LandmarksHandler struct {
	host   Host
	logger *zap.Logger
}

// NewLandmarksHandler creates a new LandmarksHandler.
func NewLandmarksHandler(h Host, logger *zap.Logger) *LandmarksHandler {
	return &LandmarksHandler{host: h, logger: logger}
}

// ServeHTTP upgrades the connection and submits frames until it closes.
func (h *LandmarksHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade", zap.Error(err))
		return
	}
	defer conn.Close()

	h.logger.Info("landmark source connected", zap.String("remote", r.RemoteAddr))
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			break
		}

		var frame detector.Frame
		if err := json.Unmarshal(msg, &frame); err != nil {
			h.logger.Debug("invalid landmark frame", zap.Error(err))
			continue
		}
		if frame.Timestamp == 0 {
			frame.Timestamp = time.Now().UnixMilli()
		}
		h.host.Submit(frame)
	}

	// The source went away; treat it as losing the hand.
	h.host.Submit(detector.NewFrame(time.Now().UnixMilli()))
	h.logger.Info("landmark source disconnected", zap.String("remote", r.RemoteAddr))
}

// SceneHandler streams scene snapshots to viewers after every frame.
type SceneHandler struct {
	host   Host
	logger *zap.Logger
}

// NewSceneHandler creates a new SceneHandler.
func NewSceneHandler(h Host, logger *zap.Logger) *SceneHandler {
	return &SceneHandler{host: h, logger: logger}
}

// ServeHTTP upgrades the connection and writes snapshots until it closes.
func (h *SceneHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade", zap.Error(err))
		return
	}
	defer conn.Close()

	snaps, cancel := h.host.Subscribe()
	defer cancel()

	// Keep reading so close frames are processed.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case snap, ok := <-snaps:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(snap); err != nil {
				h.logger.Debug("scene write", zap.Error(err))
				return
			}
		}
	}
}
