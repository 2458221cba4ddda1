// Package texture locates texture images for the converter. Images end up
// as 8-bit BMP files next to the generated model, which is where the model
// compiler expects them.
package texture

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/image/bmp"

	"github.com/Faultbox/map2prop/internal/assets"
	"github.com/Faultbox/map2prop/internal/logger"
	"github.com/Faultbox/map2prop/pkg/brush"
	"github.com/Faultbox/map2prop/pkg/formats"
	"github.com/Faultbox/map2prop/pkg/geometry"
)

// skipPackages are stock packages that never hold level textures.
var skipPackages = map[string]bool{
	"cached":     true,
	"decals":     true,
	"fonts":      true,
	"gfx":        true,
	"spraypaint": true,
	"tempdecal":  true,
}

// Options configures a Handler.
type Options struct {
	InputDir  string   // directory of the converted file
	OutputDir string   // directory receiving the BMP files
	WADList   []string // packages searched first
	ModPath   string   // game mod directory
	CacheSize int      // open packages kept in memory
}

// Handler resolves texture sizes and makes sure every found texture exists as
// a BMP in the output directory. It implements brush.TextureResolver.
type Handler struct {
	opts    Options
	wads    *assets.Manager
	levels  []string // packages named by the level file
	ready   bool
	log     *zap.Logger
	mu      sync.Mutex
	missing []string
}

// NewHandler creates a handler. Package discovery is deferred until the
// first texture has to be looked up in a package.
func NewHandler(opts Options) *Handler {
	return &Handler{
		opts: opts,
		wads: assets.NewManager(opts.CacheSize),
		log:  logger.Named("texture"),
	}
}

// SetWadList sets packages listed by the level itself. They are searched
// before the configured ones. Windows paths that do not exist locally are
// looked up by file name in the input and mod directories.
func (h *Handler) SetWadList(wads []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.levels = append([]string(nil), wads...)
	h.ready = false
}

// Resolve returns the size of a texture, extracting or copying its image into
// the output directory when needed. Textures that cannot be found are reported
// as missing with the default size.
func (h *Handler) Resolve(name string) (brush.TextureInfo, error) {
	fallback := brush.TextureInfo{Width: geometry.DefaultTextureSize, Height: geometry.DefaultTextureSize}
	if !brush.IsRenderable(name) {
		return fallback, nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	file := name + ".bmp"
	out := filepath.Join(h.opts.OutputDir, file)
	if info, err := imageSize(out); err == nil {
		return info, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return brush.TextureInfo{}, err
	}

	if h.opts.InputDir != "" && h.opts.InputDir != h.opts.OutputDir {
		in := filepath.Join(h.opts.InputDir, file)
		if info, err := imageSize(in); err == nil {
			h.log.Debug("copying texture", logger.Texture(name), zap.String("from", in))
			if err := copyFile(in, out); err != nil {
				return brush.TextureInfo{}, err
			}
			return info, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return brush.TextureInfo{}, err
		}
	}

	h.log.Debug("searching texture packages", logger.Texture(name))
	h.preparePackages()
	tex, pkg, err := h.wads.Find(name)
	if errors.Is(err, formats.ErrTextureNotFound) {
		h.log.Warn("texture not found in the output dir, input dir or any package",
			logger.Texture(name))
		h.missing = append(h.missing, name)
		fallback.Missing = true
		return fallback, nil
	}
	if err != nil {
		return brush.TextureInfo{}, err
	}

	h.log.Info("extracting texture", logger.Texture(name), zap.String("package", pkg))
	if err := writeBMP(out, tex.Image); err != nil {
		return brush.TextureInfo{}, err
	}
	return brush.TextureInfo{Width: tex.Width, Height: tex.Height}, nil
}

// Missing returns the textures that could not be found, in lookup order.
func (h *Handler) Missing() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.missing...)
}

// Packages returns the package search order.
func (h *Handler) Packages() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.preparePackages()
	return h.wads.Packages()
}

// Close releases cached packages.
func (h *Handler) Close() {
	h.wads.Close()
}

// preparePackages builds the search order: level packages, configured
// packages, then *.wad in the mod and input directories.
func (h *Handler) preparePackages() {
	if h.ready {
		return
	}
	h.ready = true

	var list []string
	seen := make(map[string]bool)
	add := func(p string) {
		key := strings.ToLower(filepath.Clean(p))
		if !seen[key] {
			seen[key] = true
			list = append(list, p)
		}
	}

	for _, w := range h.levels {
		if p, ok := h.locate(w); ok {
			add(p)
		} else {
			h.log.Debug("level package not found", zap.String("package", w))
		}
	}
	for _, w := range h.opts.WADList {
		add(w)
	}
	for _, dir := range []string{h.opts.ModPath, h.opts.InputDir} {
		if dir == "" {
			continue
		}
		matches, _ := filepath.Glob(filepath.Join(dir, "*.wad"))
		for _, m := range matches {
			stem := strings.TrimSuffix(filepath.Base(m), filepath.Ext(m))
			if skipPackages[strings.ToLower(stem)] {
				continue
			}
			add(m)
		}
	}
	h.wads.SetPackages(list)
}

// locate finds a package named by a level file on this machine.
func (h *Handler) locate(wad string) (string, bool) {
	if fileExists(wad) {
		return wad, true
	}
	base := path.Base(strings.ReplaceAll(wad, `\`, "/"))
	for _, dir := range []string{h.opts.InputDir, h.opts.ModPath} {
		if dir == "" {
			continue
		}
		if p := filepath.Join(dir, base); fileExists(p) {
			return p, true
		}
	}
	return "", false
}

func imageSize(path string) (brush.TextureInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return brush.TextureInfo{}, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return brush.TextureInfo{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return brush.TextureInfo{Width: cfg.Width, Height: cfg.Height}, nil
}

func writeBMP(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := bmp.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %s: %w", src, err)
	}
	return out.Close()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
