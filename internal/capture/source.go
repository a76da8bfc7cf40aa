package capture

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/timeutil"
)

// SourceConfig controls the camera pipeline.
type SourceConfig struct {
	IdleFPS         int
	ActiveFPS       int
	IdleTimeout     time.Duration
	MotionThreshold float64 // percent of pixels
}

// DefaultSourceConfig returns the default pipeline settings.
func DefaultSourceConfig() SourceConfig {
	return SourceConfig{
		IdleFPS:         IdleFPS,
		ActiveFPS:       ActiveFPS,
		IdleTimeout:     2 * time.Second,
		MotionThreshold: 1.0,
	}
}

// Sink receives landmark frames. It is called from the Run goroutine.
type Sink func(detector.Frame)

// Source reads the camera, skips hand detection while the scene is still
// and delivers landmark frames to a sink.
//
// Pipeline:
//  1. Poll the camera at IdleFPS.
//  2. On motion, switch to ActiveFPS and run hand detection on each frame.
//  3. A detected hand counts as motion, so a hand held still stays tracked.
//  4. After IdleTimeout without motion or a hand, drop back to IdleFPS. If
//     the last detection still had a hand, deliver one empty frame so the
//     cursor returns to rest.
type Source struct {
	cfg      SourceConfig
	camera   Camera
	gate     *MotionGate
	detector detector.Detector
	clock    timeutil.Clock
	logger   *zap.Logger

	// tracking is set while the last detection returned a hand.
	tracking bool

	mu   sync.RWMutex
	jpeg []byte
}

// NewSource builds a pipeline over cam. det may be nil, in which case only
// the preview stream is produced.
func NewSource(cfg SourceConfig, cam Camera, det detector.Detector, clock timeutil.Clock, logger *zap.Logger) *Source {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{
		cfg:      cfg,
		camera:   cam,
		gate:     NewMotionGate(NewMotionDetector(cfg.MotionThreshold), cfg.IdleTimeout, clock),
		detector: det,
		clock:    clock,
		logger:   logger,
	}
}

// Run drives the pipeline until ctx is done. It owns the camera and the
// detector and closes both on return.
func (s *Source) Run(ctx context.Context, sink Sink) error {
	if err := s.camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	defer func() {
		if err := s.camera.Close(); err != nil {
			s.logger.Warn("close camera", zap.Error(err))
		}
		s.gate.Close()
		if s.detector != nil {
			if err := s.detector.Close(); err != nil {
				s.logger.Warn("close detector", zap.Error(err))
			}
		}
	}()

	s.camera.SetFPS(s.cfg.IdleFPS)
	ticker := time.NewTicker(interval(s.cfg.IdleFPS))
	defer ticker.Stop()

	s.logger.Info("camera pipeline started", zap.Int("idle_fps", s.cfg.IdleFPS))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("camera pipeline stopped")
			return nil
		case <-ticker.C:
			s.step(ticker, sink)
		}
	}
}

func (s *Source) step(ticker *time.Ticker, sink Sink) {
	frame, err := s.camera.ReadFrame()
	if err != nil {
		s.logger.Debug("read frame", zap.Error(err))
		return
	}
	defer frame.Close()

	s.storePreview(frame)

	active, changed := s.gate.Observe(frame)
	if changed {
		fps := s.cfg.IdleFPS
		if active {
			fps = s.cfg.ActiveFPS
		}
		s.camera.SetFPS(fps)
		ticker.Reset(interval(fps))
		s.logger.Info("camera mode changed", zap.Bool("active", active), zap.Int("fps", fps))
		if !active && s.tracking {
			s.tracking = false
			sink(detector.NewFrame(s.clock.Now().UnixMilli()))
		}
	}

	if !active || s.detector == nil {
		return
	}

	f, err := s.detector.Detect(frame)
	if err != nil {
		s.logger.Warn("hand detection failed", zap.Error(err))
		return
	}
	if f.Timestamp == 0 {
		f.Timestamp = s.clock.Now().UnixMilli()
	}
	_, s.tracking = f.Hand()
	if s.tracking {
		s.gate.Hold()
	}
	sink(f)
}

func (s *Source) storePreview(frame *gocv.Mat) {
	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return
	}
	defer buf.Close()

	data := make([]byte, buf.Len())
	copy(data, buf.GetBytes())

	s.mu.Lock()
	s.jpeg = data
	s.mu.Unlock()
}

// Preview returns the latest camera frame as JPEG, or nil before the first
// frame.
func (s *Source) Preview() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.jpeg
}

// Active reports whether the pipeline is in active mode.
func (s *Source) Active() bool {
	return s.gate.Active()
}

func interval(fps int) time.Duration {
	if fps <= 0 {
		fps = 1
	}
	return time.Second / time.Duration(fps)
}
