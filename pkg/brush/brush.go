// Package brush holds the format independent scene model produced by the
// readers: entities made of convex brushes made of textured faces.
package brush

import (
	"fmt"
	"strings"

	"github.com/Faultbox/map2prop/pkg/geometry"
	"github.com/Faultbox/map2prop/pkg/math"
)

// Brush is a convex solid.
type Brush struct {
	Faces  []*Face
	Format Format
}

// FromPlanes reconstructs a brush from its bounding planes. Planes that end
// up with fewer than three corner points produce no face; their indices are
// returned so the caller can report them.
func FromPlanes(planes []geometry.FacePlane, project UVProjector, opts geometry.TriangulateOptions, format Format) (*Brush, []int, error) {
	data, dropped := geometry.FacesFromPlanes(planes)
	b := &Brush{Format: format}
	for _, fd := range data {
		face, err := NewFace(fd.Points, fd.Normal, fd.Texture, project, opts)
		if err != nil {
			return nil, dropped, fmt.Errorf("%s brush plane %d: %w", format, fd.Plane, err)
		}
		b.Faces = append(b.Faces, face)
	}
	return b, dropped, nil
}

// Points returns the points of every face, tool and skip faces included.
func (b *Brush) Points() []math.Vec3 {
	var points []math.Vec3
	for _, f := range b.Faces {
		points = append(points, f.Points...)
	}
	return points
}

// Polygons returns the polygons of all renderable faces.
func (b *Brush) Polygons() []geometry.Polygon {
	var polygons []geometry.Polygon
	for _, f := range b.Faces {
		polygons = append(polygons, f.Polygons...)
	}
	return polygons
}

// MaskedTextures returns the distinct masked texture names in face order.
func (b *Brush) MaskedTextures() []string {
	var names []string
	seen := make(map[string]bool)
	for _, f := range b.Faces {
		name := f.Texture.Name
		if !f.Renderable() || !IsMaskedTexture(name) || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// IsToolBrush reports whether every face uses the given tool texture.
func (b *Brush) IsToolBrush(tool string) bool {
	if len(b.Faces) == 0 {
		return false
	}
	for _, f := range b.Faces {
		if !strings.EqualFold(f.Texture.Name, tool) {
			return false
		}
	}
	return true
}

// HasContentWater reports whether any face is textured contentwater.
func (b *Brush) HasContentWater() bool {
	for _, f := range b.Faces {
		if strings.EqualFold(f.Texture.Name, ToolContentWater) {
			return true
		}
	}
	return false
}

// Bounds returns the axis-aligned box around all points.
func (b *Brush) Bounds() math.Bounds {
	return math.BoundsFromPoints(b.Points())
}

// Center returns the mean of all points.
func (b *Brush) Center() math.Vec3 {
	return math.Centroid(b.Points())
}

func (b *Brush) String() string {
	return fmt.Sprintf("Brush(%d faces)", len(b.Faces))
}
