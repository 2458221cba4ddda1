// Package geometry turns brush planes and face point lists into textured,
// triangulated polygons and smooths their vertex normals.
package geometry

import (
	"fmt"

	"github.com/Faultbox/map2prop/pkg/math"
)

// DefaultTextureSize is used for tool, skip and missing textures.
const DefaultTextureSize = 16

// Texture describes how an image is mapped onto a face.
type Texture struct {
	Name      string
	RightAxis math.Vec3
	DownAxis  math.Vec3
	ShiftX    float64
	ShiftY    float64
	Angle     float64
	ScaleX    float64
	ScaleY    float64
	Width     int
	Height    int
}

// NewTexture returns a texture with unit scale and the default 16x16 size.
func NewTexture(name string) Texture {
	return Texture{
		Name:   name,
		ScaleX: 1,
		ScaleY: 1,
		Width:  DefaultTextureSize,
		Height: DefaultTextureSize,
	}
}

// Validate rejects textures that would divide by zero during UV projection.
func (t Texture) Validate() error {
	if t.Width == 0 || t.Height == 0 {
		return &DegenerateConfigurationError{
			Msg: fmt.Sprintf("texture %q has zero size %dx%d", t.Name, t.Width, t.Height),
		}
	}
	if t.ScaleX == 0 || t.ScaleY == 0 {
		return &DegenerateConfigurationError{
			Msg: fmt.Sprintf("texture %q has zero scale %gx%g", t.Name, t.ScaleX, t.ScaleY),
		}
	}
	return nil
}
