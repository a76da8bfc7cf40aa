// Package server provides the HTTP surface of the interaction host: REST
// endpoints, landmark and scene WebSockets, and the camera preview stream.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/controls"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/server/api"
	"github.com/ayusman/mudra/internal/store"
)

// Host is the interaction host the server drives. *app.App implements it.
type Host interface {
	api.SettingsHost
	api.RecordingHost
	RequestReset() error
	Snapshot() controls.Snapshot
	Subscribe() (<-chan controls.Snapshot, func())
	Submit(detector.Frame)
}

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	Host      Host
	Camera    Previewer // optional, enables /api/stream
	Logger    *zap.Logger
}

// Server represents the HTTP server.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
	logger *zap.Logger
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
		logger: config.Logger,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if h := s.config.Host; h != nil {
		s.mux.Handle("/api/settings", api.NewSettingsHandler(h))
		s.mux.HandleFunc("/api/reset", s.handleReset)
		s.mux.HandleFunc("/api/state", s.handleState)
		s.mux.Handle("/api/landmarks", NewLandmarksHandler(h, s.logger.Named("ws")))
		s.mux.Handle("/api/scene", NewSceneHandler(h, s.logger.Named("ws")))

		if s.config.Store != nil {
			recordings := api.NewRecordingHandler(s.config.Store, h, s.logger.Named("recordings"))
			s.mux.Handle("/api/recordings", recordings)
			s.mux.Handle("/api/recordings/", recordings)
		}
	}

	if s.config.Camera != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Camera))
	}

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	})
}

// handleReset handles POST /api/reset.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := s.config.Host.RequestReset(); err != nil {
		if errors.Is(err, app.ErrStopped) {
			http.Error(w, "Not running", http.StatusServiceUnavailable)
			return
		}
		http.Error(w, "Reset failed", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleState handles GET /api/state.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.config.Host.Snapshot())
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
