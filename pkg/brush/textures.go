package brush

import "strings"

// Tool texture names. Brushes textured entirely with one of them carry
// metadata for the exporter instead of visible geometry.
const (
	ToolOrigin       = "origin"
	ToolBoundingBox  = "boundingbox"
	ToolClip         = "clip"
	ToolBevel        = "bevel"
	ToolSmooth       = "smooth"
	ToolContentWater = "contentwater"
)

// MaskedPrefix marks textures rendered with a transparent colour key.
const MaskedPrefix = "{"

var skipTextures = map[string]bool{
	"aaatrigger":     true,
	"bevel":          true,
	"black_hidden":   true,
	"clip":           true,
	"clipbevel":      true,
	"clipbevelbrush": true,
	"cliphull1":      true,
	"cliphull2":      true,
	"cliphull3":      true,
	"contentempty":   true,
	"hint":           true,
	"noclip":         true,
	"null":           true,
	"skip":           true,
	"sky":            true,
	"solidhint":      true,
}

var toolTextures = map[string]bool{
	ToolOrigin:       true,
	ToolBoundingBox:  true,
	ToolSmooth:       true,
	ToolContentWater: true,
}

// IsSkipTexture reports whether faces with this texture are never rendered
// and need no image. Matching is case-insensitive.
func IsSkipTexture(name string) bool {
	return skipTextures[strings.ToLower(name)]
}

// IsToolTexture reports whether the texture marks exporter metadata.
func IsToolTexture(name string) bool {
	return toolTextures[strings.ToLower(name)]
}

// IsMaskedTexture reports whether the texture uses colour-key transparency.
func IsMaskedTexture(name string) bool {
	return strings.HasPrefix(name, MaskedPrefix)
}

// IsRenderable reports whether faces with this texture produce polygons.
func IsRenderable(name string) bool {
	return !IsSkipTexture(name) && !IsToolTexture(name)
}

// TextureInfo is the resolved size of a texture image. Missing is set when no
// image could be found; the size then falls back to 16x16.
type TextureInfo struct {
	Width   int
	Height  int
	Missing bool
}

// TextureResolver looks up texture image sizes by name.
type TextureResolver interface {
	Resolve(name string) (TextureInfo, error)
}
