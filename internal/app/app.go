// Package app hosts the interaction core: it owns the frame loop, accepts
// landmark frames from the camera, the browser or a replay, and publishes
// scene snapshots.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/controls"
	"github.com/ayusman/mudra/internal/cursor"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/event"
	"github.com/ayusman/mudra/internal/interaction"
	"github.com/ayusman/mudra/internal/scene"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/timeutil"
)

// DefaultFrameRate is the display frame rate of the loop.
const DefaultFrameRate = 60

var (
	// ErrStopped is returned for commands sent while the loop is not running.
	ErrStopped = errors.New("app is not running")
	// ErrNoStore is returned by operations that need persistence when the
	// app was built without a store.
	ErrNoStore = errors.New("no store configured")
)

// Config holds configuration options for the application.
type Config struct {
	Store     *store.Store // optional
	Scene     *scene.Context
	Objects   []*interaction.Object
	ModelPath string // optional cursor model descriptor
	FrameRate int
	Source    *capture.Source // optional camera pipeline
	Clock     timeutil.Clock
	Logger    *zap.Logger
}

// App runs the interaction core on a single goroutine. Every other method is
// safe to call from any goroutine.
type App struct {
	config   Config
	clock    timeutil.Clock
	logger   *zap.Logger
	controls *controls.Controls

	frames chan detector.Frame
	cmds   chan func(*controls.Controls)

	mu       sync.RWMutex
	enabled  bool
	settings controls.Settings
	snapshot controls.Snapshot
	subs     map[int]chan controls.Snapshot
	nextSub  int
	rec      *recording

	replaying atomic.Bool

	loopCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New builds the app. Stored settings, if any, override the defaults.
func New(config Config) (*App, error) {
	if config.Clock == nil {
		config.Clock = timeutil.RealClock{}
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	if config.Scene == nil {
		config.Scene = scene.NewContext(1920, 1080)
	}
	if config.FrameRate <= 0 {
		config.FrameRate = DefaultFrameRate
	}

	settings := controls.DefaultSettings()
	if config.Store != nil {
		stored, err := config.Store.Settings().All()
		if err != nil {
			return nil, fmt.Errorf("load settings: %w", err)
		}
		settings, err = controls.DecodeSettings(stored, settings)
		if err != nil {
			return nil, fmt.Errorf("decode settings: %w", err)
		}
		config.Logger.Info("loaded settings", zap.Int("stored", len(stored)))
	}

	a := &App{
		config:   config,
		clock:    config.Clock,
		logger:   config.Logger,
		frames:   make(chan detector.Frame, 1),
		cmds:     make(chan func(*controls.Controls)),
		enabled:  true,
		settings: settings,
		subs:     make(map[int]chan controls.Snapshot),
	}
	a.controls = controls.New(settings, controls.Options{
		Clock:   config.Clock,
		Scene:   config.Scene,
		Objects: config.Objects,
		Logger:  config.Logger.Named("controls"),
	})
	a.registerListeners()
	a.snapshot = a.controls.Snapshot()
	return a, nil
}

func (a *App) registerListeners() {
	a.controls.On(event.DragEnd, func(e event.Event) {
		if o, ok := interaction.ObjectOf(e); ok {
			o.Opacity = interaction.OpaqueOpacity
			a.logger.Info("drag ended", zap.String("object", o.Name))
		}
		if e.Done != nil {
			e.Done()
		}
	})
	a.controls.On(event.DragStart, func(e event.Event) {
		if o, ok := interaction.ObjectOf(e); ok {
			a.logger.Info("drag started", zap.String("object", o.Name))
		}
	})
	a.controls.On(event.PinchOn, func(event.Event) { a.logger.Debug("pinch on") })
	a.controls.On(event.PinchOff, func(event.Event) { a.logger.Debug("pinch off") })
}

// Start runs the frame loop, and the camera pipeline when one is
// configured, until ctx is done or Stop is called.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.loopCtx != nil && a.loopCtx.Err() == nil {
		return nil
	}

	loopCtx, cancel := context.WithCancel(ctx)
	a.loopCtx = loopCtx
	a.cancel = cancel

	if a.config.ModelPath != "" {
		a.controls.LoadModel(loopCtx, cursor.FileModelLoader{Path: a.config.ModelPath})
	}

	a.wg.Add(1)
	go a.run(loopCtx)

	if src := a.config.Source; src != nil {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			if err := src.Run(loopCtx, a.Submit); err != nil {
				a.logger.Error("camera pipeline failed", zap.Error(err))
			}
		}()
	}

	a.logger.Info("frame loop started", zap.Int("fps", a.config.FrameRate))
	return nil
}

// Stop halts the frame loop and the camera pipeline and waits for both.
func (a *App) Stop() {
	a.mu.Lock()
	cancel := a.cancel
	a.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	a.wg.Wait()
	a.logger.Info("frame loop stopped")
}

// Running reports whether the frame loop is running.
func (a *App) Running() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.loopCtx != nil && a.loopCtx.Err() == nil
}

// SetEnabled turns landmark intake on or off. Disabling acts like losing
// the hand without the release delay: the cursor returns to rest and any
// pinch ends, so a dragged object is dropped.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	was := a.enabled
	a.enabled = enabled
	a.mu.Unlock()

	if was && !enabled {
		err := a.Do(func(c *controls.Controls) {
			c.Update(detector.NewFrame(a.clock.Now().UnixMilli()))
			c.Release()
		})
		if err != nil && !errors.Is(err, ErrStopped) {
			a.logger.Warn("disable", zap.Error(err))
		}
	}
	a.logger.Info("detection toggled", zap.Bool("enabled", enabled))
}

// IsEnabled returns whether landmark intake is on.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// Submit hands a landmark frame to the loop. Only the latest pending frame
// is kept. Frames are dropped while intake is disabled.
func (a *App) Submit(frame detector.Frame) {
	if !a.IsEnabled() {
		return
	}
	a.record(frame)
	a.deliver(frame)
}

func (a *App) deliver(frame detector.Frame) {
	for {
		select {
		case a.frames <- frame:
			return
		default:
		}
		select {
		case <-a.frames:
		default:
		}
	}
}

// Do runs fn on the loop goroutine and waits for it to finish.
func (a *App) Do(fn func(*controls.Controls)) error {
	a.mu.RLock()
	ctx := a.loopCtx
	a.mu.RUnlock()
	if ctx == nil {
		return ErrStopped
	}

	done := make(chan struct{})
	cmd := func(c *controls.Controls) {
		defer close(done)
		fn(c)
	}

	select {
	case a.cmds <- cmd:
	case <-ctx.Done():
		return ErrStopped
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ErrStopped
	}
}

// Settings returns the active tunables.
func (a *App) Settings() controls.Settings {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.settings
}

// ApplySettings applies s on the loop and persists it.
func (a *App) ApplySettings(s controls.Settings) error {
	if err := a.Do(func(c *controls.Controls) { c.ApplySettings(s) }); err != nil {
		return err
	}

	a.mu.Lock()
	a.settings = s
	a.mu.Unlock()

	if a.config.Store == nil {
		return nil
	}
	if err := a.config.Store.Settings().SetMany(s.Encode()); err != nil {
		return fmt.Errorf("persist settings: %w", err)
	}
	return nil
}

// RequestReset animates the cursor back to its initial pose.
func (a *App) RequestReset() error {
	return a.Do(func(c *controls.Controls) { c.RequestReset() })
}

// LoadModel swaps the cursor model for the descriptor at path. The swap
// happens on a later frame once the file is read.
func (a *App) LoadModel(path string) error {
	a.mu.RLock()
	ctx := a.loopCtx
	a.mu.RUnlock()

	return a.Do(func(c *controls.Controls) {
		c.LoadModel(ctx, cursor.FileModelLoader{Path: path})
	})
}

// Snapshot returns the state published by the last frame.
func (a *App) Snapshot() controls.Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snapshot
}

// Subscribe returns a channel that receives the latest snapshot after each
// frame. Slow readers miss intermediate snapshots. Call cancel when done.
func (a *App) Subscribe() (<-chan controls.Snapshot, func()) {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := a.nextSub
	a.nextSub++
	ch := make(chan controls.Snapshot, 1)
	a.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			a.mu.Lock()
			defer a.mu.Unlock()
			delete(a.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// Store returns the configured store, which may be nil.
func (a *App) Store() *store.Store {
	return a.config.Store
}
