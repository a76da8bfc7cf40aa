package cursor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/mudra/internal/geom"
	"github.com/ayusman/mudra/internal/gesture"
)

func displaced(c *Controller) {
	c.DriveFrom(gesture.Output{
		Position: mgl64.Vec3{1, -0.5, 0.3},
		Rotation: geom.Euler{X: 1.2, Y: -0.7, Z: 0.4},
	})
}

func TestController_DriveFrom(t *testing.T) {
	c := New(DefaultConfig(), DefaultModel(), nil)

	out := gesture.Output{Position: mgl64.Vec3{0.2, 0.1, -0.3}, Rotation: geom.Euler{Y: 0.5}}
	assert.True(t, c.DriveFrom(out))
	assert.Equal(t, out.Position, c.Pose().Position)
	assert.Equal(t, out.Rotation, c.Pose().Rotation)

	c.BeginReturn()
	assert.False(t, c.DriveFrom(gesture.Output{Position: mgl64.Vec3{9, 9, 9}}))
	assert.Equal(t, out.Position, c.Pose().Position)
}

func TestController_ReturnToRestConverges(t *testing.T) {
	c := New(DefaultConfig(), DefaultModel(), nil)
	displaced(c)
	c.RequestReset()

	prevPos := geom.Distance(c.Pose().Position, c.Initial().Position)
	prevRot := c.Pose().Rotation.MaxDelta(c.Initial().Rotation)

	frames := 0
	for c.ReturnToRest(0.03, 0.001) {
		frames++
		require.Less(t, frames, 1000, "return did not terminate")

		pos := geom.Distance(c.Pose().Position, c.Initial().Position)
		rot := c.Pose().Rotation.MaxDelta(c.Initial().Rotation)
		assert.LessOrEqual(t, pos, prevPos+1e-12)
		assert.LessOrEqual(t, rot, prevRot+1e-12)
		prevPos, prevRot = pos, rot
	}

	assert.False(t, c.Returning())
	assert.Equal(t, c.Initial(), c.Pose())
	assert.Greater(t, frames, 100, "the return is animated, not a snap")
}

func TestController_StepUsesConfig(t *testing.T) {
	c := New(Config{ReturnSpeed: 1, ReturnTolerance: 0.001}, DefaultModel(), nil)
	displaced(c)
	c.BeginReturn()

	assert.False(t, c.Step())
	assert.Equal(t, c.Initial(), c.Pose())
	assert.False(t, c.Step(), "idle step is a no-op")
}

func TestController_ResumeRespectsExplicitReset(t *testing.T) {
	c := New(DefaultConfig(), DefaultModel(), nil)

	c.BeginReturn()
	c.Resume()
	assert.False(t, c.Returning(), "a dropout return yields to the hand")

	c.RequestReset()
	c.Resume()
	assert.True(t, c.Returning(), "an explicit reset runs to completion")

	for c.Step() {
	}
	c.BeginReturn()
	c.Resume()
	assert.False(t, c.Returning())
}

func TestController_Bounds(t *testing.T) {
	c := New(DefaultConfig(), DefaultModel(), nil)
	c.DriveFrom(gesture.Output{Position: mgl64.Vec3{1, 0, 0}})

	b := c.Bounds()
	assert.InDelta(t, 0.9, b.Min.X(), 1e-9)
	assert.InDelta(t, 1.1, b.Max.X(), 1e-9)
}

func TestController_LoadAsync(t *testing.T) {
	c := New(DefaultConfig(), DefaultModel(), nil)
	displaced(c)
	c.RequestReset()

	loaded := Model{
		Name:        "hand",
		HalfExtents: mgl64.Vec3{0.2, 0.1, 0.05},
		Pose:        Pose{Position: mgl64.Vec3{0, -0.5, 0}, Rotation: geom.Euler{Y: 0.3}},
	}
	c.LoadAsync(context.Background(), LoaderFunc(func(context.Context) (Model, error) {
		return loaded, nil
	}))

	require.Eventually(t, c.Poll, time.Second, 5*time.Millisecond)

	assert.Equal(t, loaded, c.Model())
	assert.Equal(t, loaded.Pose, c.Initial(), "initial pose reflects the loaded transform")
	assert.True(t, c.Returning(), "a return in progress continues")

	assert.False(t, c.Step())
	assert.Equal(t, loaded.Pose, c.Pose())
}

func TestController_LoadFailureKeepsDefault(t *testing.T) {
	c := New(DefaultConfig(), DefaultModel(), nil)
	done := make(chan struct{})
	c.LoadAsync(context.Background(), LoaderFunc(func(context.Context) (Model, error) {
		defer close(done)
		return Model{}, errors.New("boom")
	}))
	<-done

	assert.Eventually(t, func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.loaded != nil
	}, time.Second, 5*time.Millisecond)
	assert.False(t, c.Poll())
	assert.Equal(t, DefaultModel(), c.Model())
}

func TestController_LaterLoadWins(t *testing.T) {
	c := New(DefaultConfig(), DefaultModel(), nil)
	release := make(chan struct{})
	c.LoadAsync(context.Background(), LoaderFunc(func(context.Context) (Model, error) {
		<-release
		return Model{Name: "slow", HalfExtents: mgl64.Vec3{1, 1, 1}}, nil
	}))
	c.LoadAsync(context.Background(), LoaderFunc(func(context.Context) (Model, error) {
		return Model{Name: "fast", HalfExtents: mgl64.Vec3{1, 1, 1}}, nil
	}))

	require.Eventually(t, c.Poll, time.Second, 5*time.Millisecond)
	assert.Equal(t, "fast", c.Model().Name)

	close(release)
	time.Sleep(20 * time.Millisecond)
	assert.False(t, c.Poll())
	assert.Equal(t, "fast", c.Model().Name)
}

func TestFileModelLoader(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid", func(t *testing.T) {
		path := filepath.Join(dir, "hand.json")
		body := `{"name":"hand","halfExtents":[0.1,0.2,0.05],"pose":{"position":[0,1,0],"rotation":{"x":0,"y":0.5,"z":0}}}`
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

		m, err := FileModelLoader{Path: path}.Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "hand", m.Name)
		assert.Equal(t, mgl64.Vec3{0.1, 0.2, 0.05}, m.HalfExtents)
		assert.Equal(t, mgl64.Vec3{0, 1, 0}, m.Pose.Position)
		assert.Equal(t, 0.5, m.Pose.Rotation.Y)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := FileModelLoader{Path: filepath.Join(dir, "nope.json")}.Load(context.Background())
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("bad extents", func(t *testing.T) {
		path := filepath.Join(dir, "flat.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"halfExtents":[0.1,0,0.1]}`), 0o644))
		_, err := FileModelLoader{Path: path}.Load(context.Background())
		assert.Error(t, err)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := FileModelLoader{Path: "x"}.Load(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
