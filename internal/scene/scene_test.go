package scene

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContext_Project(t *testing.T) {
	ctx := NewContext(800, 600)

	t.Run("origin is centered", func(t *testing.T) {
		p, ok := ctx.Project(mgl64.Vec3{})
		require.True(t, ok)
		assert.InDelta(t, 400.0, p.X, 1e-6)
		assert.InDelta(t, 300.0, p.Y, 1e-6)
	})

	t.Run("off-axis point", func(t *testing.T) {
		p, ok := ctx.Project(mgl64.Vec3{0.5, 0.5, 0})
		require.True(t, ok)

		f := 1 / math.Tan(mgl64.DegToRad(45)/2)
		ndcX := f / (800.0 / 600.0) * 0.5 / 2
		ndcY := f * 0.5 / 2
		assert.InDelta(t, ndcX*400+400, p.X, 1e-6)
		assert.InDelta(t, 300-ndcY*300, p.Y, 1e-6)
		assert.Greater(t, p.X, 400.0)
		assert.Less(t, p.Y, 300.0, "up in the scene is up on screen")
	})

	t.Run("nil context", func(t *testing.T) {
		var c *Context
		_, ok := c.Project(mgl64.Vec3{})
		assert.False(t, ok)
	})

	t.Run("empty viewport", func(t *testing.T) {
		c := NewContext(0, 0)
		_, ok := c.Project(mgl64.Vec3{})
		assert.False(t, ok)

		c.Resize(320, 240)
		_, ok = c.Project(mgl64.Vec3{})
		assert.True(t, ok)
	})
}

func TestRandomObjects(t *testing.T) {
	objs := RandomObjects(5, rand.New(rand.NewSource(7)))
	require.Len(t, objs, 5)

	names := map[string]bool{}
	for _, o := range objs {
		assert.GreaterOrEqual(t, o.Position.X(), -1.0)
		assert.LessOrEqual(t, o.Position.X(), 1.0)
		assert.GreaterOrEqual(t, o.Position.Y(), -0.25)
		assert.LessOrEqual(t, o.Position.Y(), 0.25)
		assert.GreaterOrEqual(t, o.Position.Z(), -1.0)
		assert.LessOrEqual(t, o.Position.Z(), 1.0)
		assert.InDelta(t, BoxEdge/2, o.HalfExtents.X(), 1e-12)
		assert.Equal(t, 1.0, o.Opacity)
		names[o.Name] = true
	}
	assert.Len(t, names, 5)
}
