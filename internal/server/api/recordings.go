package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/store"
)

// RecordingHost captures and replays landmark sessions.
type RecordingHost interface {
	StartRecording(name string) (string, error)
	StopRecording() (*store.Recording, error)
	StartReplay(ctx context.Context, id string) error
}

// RecordingHandler handles HTTP requests for recording resources.
type RecordingHandler struct {
	store  *store.Store
	host   RecordingHost
	logger *zap.Logger
}

// NewRecordingHandler creates a new RecordingHandler.
func NewRecordingHandler(s *store.Store, h RecordingHost, logger *zap.Logger) *RecordingHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordingHandler{store: s, host: h, logger: logger}
}

// ServeHTTP routes requests.
// Expected paths: /api/recordings, /api/recordings/stop,
// /api/recordings/{id} and /api/recordings/{id}/replay
func (h *RecordingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/recordings")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.start(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if path == "stop" {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.stop(w, r)
		return
	}

	parts := strings.Split(path, "/")
	id := parts[0]
	switch {
	case len(parts) == 1:
		switch r.Method {
		case http.MethodGet:
			h.get(w, r, id)
		case http.MethodDelete:
			h.delete(w, r, id)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case len(parts) == 2 && parts[1] == "replay":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.replay(w, r, id)
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

var validate = validator.New()

type startRecordingRequest struct {
	Name string `json:"name" validate:"required,max=128"`
}

type startRecordingResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type recordingDetail struct {
	*store.Recording
	Data []store.RecordedFrame `json:"data"`
}

type listRecordingsResponse struct {
	Recordings []*store.Recording `json:"recordings"`
}

// list handles GET /api/recordings.
func (h *RecordingHandler) list(w http.ResponseWriter, r *http.Request) {
	recs, err := h.store.Recordings().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list recordings")
		return
	}
	if recs == nil {
		recs = []*store.Recording{}
	}
	writeJSON(w, http.StatusOK, listRecordingsResponse{Recordings: recs})
}

// get handles GET /api/recordings/{id} and includes the frames.
func (h *RecordingHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	rec, err := h.store.Recordings().GetByID(id)
	if err != nil {
		h.notFoundOr500(w, err, "Failed to get recording")
		return
	}

	frames, err := h.store.Recordings().Frames(id)
	if err != nil {
		h.notFoundOr500(w, err, "Failed to get frames")
		return
	}
	if frames == nil {
		frames = []store.RecordedFrame{}
	}

	writeJSON(w, http.StatusOK, recordingDetail{Recording: rec, Data: frames})
}

// delete handles DELETE /api/recordings/{id}.
func (h *RecordingHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Recordings().Delete(id); err != nil {
		h.notFoundOr500(w, err, "Failed to delete recording")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// start handles POST /api/recordings.
func (h *RecordingHandler) start(w http.ResponseWriter, r *http.Request) {
	var req startRecordingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Name is required and at most 128 characters")
		return
	}

	id, err := h.host.StartRecording(req.Name)
	if err != nil {
		if errors.Is(err, app.ErrRecording) {
			writeError(w, http.StatusConflict, "Already recording")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to start recording")
		return
	}

	writeJSON(w, http.StatusCreated, startRecordingResponse{ID: id, Name: req.Name})
}

// stop handles POST /api/recordings/stop.
func (h *RecordingHandler) stop(w http.ResponseWriter, r *http.Request) {
	rec, err := h.host.StopRecording()
	if err != nil {
		if errors.Is(err, app.ErrNotRecording) {
			writeError(w, http.StatusConflict, "Not recording")
			return
		}
		h.logger.Error("stop recording", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to save recording")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// replay handles POST /api/recordings/{id}/replay. Playback runs in the
// background; only one replay runs at a time.
func (h *RecordingHandler) replay(w http.ResponseWriter, r *http.Request, id string) {
	err := h.host.StartReplay(context.WithoutCancel(r.Context()), id)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusAccepted)
	case errors.Is(err, app.ErrReplaying):
		writeError(w, http.StatusConflict, "Replay already in progress")
	case errors.Is(err, app.ErrStopped):
		writeError(w, http.StatusServiceUnavailable, "Interaction loop is not running")
	default:
		h.logger.Warn("start replay", zap.String("id", id), zap.Error(err))
		h.notFoundOr500(w, err, "Failed to start replay")
	}
}

func (h *RecordingHandler) notFoundOr500(w http.ResponseWriter, err error, msg string) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Recording not found")
		return
	}
	writeError(w, http.StatusInternalServerError, msg)
}
