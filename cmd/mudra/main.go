package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/logger"
	"github.com/ayusman/mudra/internal/scene"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tray"
)

func main() {
	cfg := config.Load()

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "create data directory: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogFile, cfg.Production())
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Error("exiting", zap.Error(err))
		log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	st, err := store.New(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	src := newSource(cfg, log)

	sc := scene.NewContext(cfg.Width, cfg.Height)
	a, err := app.New(app.Config{
		Store:     st,
		Scene:     sc,
		Objects:   scene.RandomObjects(cfg.Objects, rand.New(rand.NewSource(time.Now().UnixNano()))),
		ModelPath: cfg.ModelPath,
		FrameRate: cfg.FrameRate,
		Source:    src,
		Logger:    log.Named("app"),
	})
	if err != nil {
		return err
	}
	if err := a.Start(ctx); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	defer a.Stop()

	webDir := cfg.WebDir
	if webDir == "" {
		webDir = findWebDir(cfg.DataDir)
	}
	if webDir != "" {
		log.Info("serving static files", zap.String("dir", webDir))
	}

	srvCfg := server.Config{
		StaticDir: webDir,
		Store:     st,
		Host:      a,
		Logger:    log.Named("http"),
	}
	if src != nil {
		srvCfg.Camera = src
	}
	srv := server.New(srvCfg)

	if !cfg.Tray {
		return srv.ListenAndServe(ctx, cfg.Addr)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe(ctx, cfg.Addr) }()

	t := tray.New()
	t.OnToggle(a.SetEnabled)
	t.OnReset(func() {
		if err := a.RequestReset(); err != nil {
			log.Warn("reset", zap.Error(err))
		}
	})
	t.OnOpen(func() { openBrowser(browserURL(cfg.Addr), log) })
	t.OnQuit(stop)

	snaps, cancel := a.Subscribe()
	defer cancel()
	go t.Follow(ctx, snaps)
	go func() {
		<-ctx.Done()
		tray.Quit()
	}()

	t.Run()
	stop()
	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// newSource builds the camera pipeline, or returns nil when the camera is
// disabled. Without MediaPipe the pipeline only serves the preview.
func newSource(cfg *config.Config, log *zap.Logger) *capture.Source {
	if cfg.CameraID < 0 {
		log.Info("camera disabled")
		return nil
	}

	var det detector.Detector
	if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig(), log); err == nil {
		det = mp
		log.Info("using MediaPipe hand detection")
	} else {
		log.Warn("MediaPipe not available, camera preview only", zap.Error(err))
	}

	return capture.NewSource(
		capture.DefaultSourceConfig(),
		capture.NewCamera(cfg.CameraID),
		det,
		nil,
		log.Named("capture"),
	)
}

func browserURL(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

func openBrowser(url string, log *zap.Logger) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Warn("open browser", zap.String("url", url), zap.Error(err))
	}
}

// findWebDir searches for the web directory in common locations: "web",
// "../web", "../../web" and the data directory.
func findWebDir(dataDir string) string {
	for _, p := range []string{"web", "../web", "../../web", filepath.Join(dataDir, "web")} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}
