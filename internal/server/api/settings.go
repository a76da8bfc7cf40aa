package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/controls"
)

// SettingsHost reads and applies the core tunables.
type SettingsHost interface {
	Settings() controls.Settings
	ApplySettings(controls.Settings) error
}

// SettingsHandler serves /api/settings.
type SettingsHandler struct {
	host SettingsHost
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(h SettingsHost) *SettingsHandler {
	return &SettingsHandler{host: h}
}

// ServeHTTP implements the http.Handler interface.
func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.host.Settings())
	case http.MethodPut:
		h.update(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// update handles PUT /api/settings. Fields missing from the body keep their
// current values.
func (h *SettingsHandler) update(w http.ResponseWriter, r *http.Request) {
	s := h.host.Settings()
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := h.host.ApplySettings(s); err != nil {
		if errors.Is(err, app.ErrStopped) {
			writeError(w, http.StatusServiceUnavailable, "Not running")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to apply settings")
		return
	}

	writeJSON(w, http.StatusOK, s)
}
