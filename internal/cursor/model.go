package cursor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/ayusman/mudra/internal/geom"
)

// CursorRadius is the radius of the default sphere cursor.
const CursorRadius = 0.1

// Pose is a position plus an Euler rotation.
type Pose struct {
	Position mgl64.Vec3 `json:"position"`
	Rotation geom.Euler `json:"rotation"`
}

// Model is the cursor geometry and the transform it was authored with.
type Model struct {
	Name        string     `json:"name"`
	HalfExtents mgl64.Vec3 `json:"halfExtents"`
	Pose        Pose       `json:"pose"`
}

// DefaultModel is the primitive sphere used until a model loads.
func DefaultModel() Model {
	return Model{
		Name:        "sphere",
		HalfExtents: mgl64.Vec3{CursorRadius, CursorRadius, CursorRadius},
	}
}

// ModelLoader produces a cursor model, possibly slowly.
type ModelLoader interface {
	Load(ctx context.Context) (Model, error)
}

// LoaderFunc adapts a function to ModelLoader.
type LoaderFunc func(ctx context.Context) (Model, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context) (Model, error) {
	return f(ctx)
}

// FileModelLoader reads a JSON model descriptor from disk.
type FileModelLoader struct {
	Path string
}

// Load reads and validates the descriptor.
func (l FileModelLoader) Load(ctx context.Context) (Model, error) {
	if err := ctx.Err(); err != nil {
		return Model{}, err
	}
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return Model{}, fmt.Errorf("read model %s: %w", l.Path, err)
	}
	m := DefaultModel()
	if err := json.Unmarshal(data, &m); err != nil {
		return Model{}, fmt.Errorf("parse model %s: %w", l.Path, err)
	}
	for i := 0; i < 3; i++ {
		if m.HalfExtents[i] <= 0 {
			return Model{}, fmt.Errorf("model %s: half extents must be positive, got %v", l.Path, m.HalfExtents)
		}
	}
	return m, nil
}
