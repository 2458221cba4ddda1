// Package formats provides readers for level editor geometry files and
// texture packages.
package formats

import (
	"github.com/Faultbox/map2prop/pkg/brush"
	"github.com/Faultbox/map2prop/pkg/geometry"
)

// ReadOptions configures the geometry readers.
type ReadOptions struct {
	// Textures resolves image sizes. Nil makes every texture 16x16.
	Textures brush.TextureResolver

	// Triangulate selects the ear clipping policy.
	Triangulate geometry.TriangulateOptions

	// Workers bounds parallel brush construction. Zero or less means no limit.
	Workers int
}

// DroppedPlane identifies a bounding plane that produced no face.
type DroppedPlane struct {
	Classname string
	Brush     int
	Plane     int
}

// Scene is the result of reading a geometry file.
type Scene struct {
	Format          brush.Format
	Entities        []*brush.Entity
	MissingTextures []string
	Dropped         []DroppedPlane
}

// Worldspawn returns the level root entity, or nil if there is none.
func (s *Scene) Worldspawn() *brush.Entity {
	for _, e := range s.Entities {
		if e.IsWorldspawn() {
			return e
		}
	}
	return nil
}

// HasMissingTextures reports whether any texture image could not be found.
func (s *Scene) HasMissingTextures() bool {
	return len(s.MissingTextures) > 0
}

// BrushCount returns the number of brushes across all entities.
func (s *Scene) BrushCount() int {
	n := 0
	for _, e := range s.Entities {
		n += len(e.Brushes)
	}
	return n
}
