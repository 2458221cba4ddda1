package formats

import (
	"fmt"

	"github.com/Faultbox/map2prop/pkg/brush"
	"github.com/Faultbox/map2prop/pkg/geometry"
)

// wadListSetter is implemented by resolvers that accept the WAD list stored
// in a level's worldspawn entity.
type wadListSetter interface {
	SetWadList(wads []string)
}

// textureTable resolves and caches texture sizes for one file.
type textureTable struct {
	resolver brush.TextureResolver
	infos    map[string]brush.TextureInfo
	missing  []string
}

func newTextureTable(resolver brush.TextureResolver) *textureTable {
	return &textureTable{
		resolver: resolver,
		infos:    make(map[string]brush.TextureInfo),
	}
}

func (t *textureTable) lookup(name string) (brush.TextureInfo, error) {
	fallback := brush.TextureInfo{Width: geometry.DefaultTextureSize, Height: geometry.DefaultTextureSize}
	if !brush.IsRenderable(name) || t.resolver == nil {
		return fallback, nil
	}
	if info, ok := t.infos[name]; ok {
		return info, nil
	}

	info, err := t.resolver.Resolve(name)
	if err != nil {
		return brush.TextureInfo{}, fmt.Errorf("resolving texture %q: %w", name, err)
	}
	if info.Missing {
		t.missing = append(t.missing, name)
	}
	if info.Width <= 0 || info.Height <= 0 {
		info.Width, info.Height = fallback.Width, fallback.Height
	}
	t.infos[name] = info
	return info, nil
}

// texture returns tex with its size resolved.
func (t *textureTable) texture(tex geometry.Texture) (geometry.Texture, error) {
	info, err := t.lookup(tex.Name)
	if err != nil {
		return geometry.Texture{}, err
	}
	tex.Width = info.Width
	tex.Height = info.Height
	return tex, nil
}

func (t *textureTable) setWadList(wads []string) {
	if s, ok := t.resolver.(wadListSetter); ok {
		s.SetWadList(wads)
	}
}
