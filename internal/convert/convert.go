// Package convert runs the whole pipeline for one input file: read the level
// geometry, fold it into models, write the configured outputs and optionally
// compile them.
package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/map2prop/internal/compiler"
	"github.com/Faultbox/map2prop/internal/config"
	"github.com/Faultbox/map2prop/internal/export"
	"github.com/Faultbox/map2prop/internal/logger"
	"github.com/Faultbox/map2prop/internal/texture"
	"github.com/Faultbox/map2prop/pkg/formats"
	"github.com/Faultbox/map2prop/pkg/geometry"
	"github.com/Faultbox/map2prop/pkg/math"
)

// ErrUnsupportedFormat is returned for input files without a known reader.
var ErrUnsupportedFormat = errors.New("unsupported input format")

// Extensions lists the input file extensions Convert accepts.
var Extensions = []string{".map", ".rmf", ".jmf", ".obj", ".ol"}

// Result summarizes one converted input file.
type Result struct {
	Input           string
	OutputDir       string
	Models          []string
	Files           []string
	MissingTextures []string
	Compiled        []string
}

// source is one scene to fold into models under a base name.
type source struct {
	name  string
	scene *formats.Scene
}

// Supported reports whether path has a readable extension.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// OutputDir returns where outputs for input are written.
func OutputDir(cfg *config.Config, input string) string {
	if filepath.IsAbs(cfg.OutputDir) {
		return cfg.OutputDir
	}
	return filepath.Join(filepath.Dir(input), cfg.OutputDir)
}

// Convert converts one input file. Model failures do not stop the remaining
// models; all of them are returned combined.
func Convert(ctx context.Context, cfg *config.Config, input string) (*Result, error) {
	if !Supported(input) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, input)
	}

	input, err := filepath.Abs(input)
	if err != nil {
		return nil, err
	}
	log := logger.ForInput("convert", input)
	result := &Result{Input: input, OutputDir: OutputDir(cfg, input)}
	if err := os.MkdirAll(result.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	textures := texture.NewHandler(texture.Options{
		InputDir:  filepath.Dir(input),
		OutputDir: result.OutputDir,
		WADList:   cfg.WAD.List,
		ModPath:   cfg.WAD.ModPath,
		CacheSize: cfg.WAD.Cache,
	})
	defer textures.Close()

	opts := formats.ReadOptions{
		Textures:    textures,
		Triangulate: geometry.TriangulateOptions{Eager: cfg.Eager},
		Workers:     cfg.Workers,
	}

	log.Info("reading")
	sources, err := read(input, baseName(cfg, input), opts)
	if err != nil {
		return nil, err
	}

	modelOpts := export.Options{
		Smoothing: cfg.Smoothing,
		Scale:     cfg.QC.Scale,
		Rotation:  cfg.QC.Rotate,
		Offset:    math.Vec3{X: cfg.QC.Offset[0], Y: cfg.QC.Offset[1], Z: cfg.QC.Offset[2]},
		Gamma:     cfg.QC.Gamma,
	}
	if threshold, ok := SmoothingOverride(input); ok {
		log.Info("smoothing set by file name", zap.Float64("threshold", threshold))
		modelOpts.Smoothing = threshold
	}

	var models []*export.RawModel
	for _, src := range sources {
		for _, d := range src.scene.Dropped {
			log.Warn("plane produced no face",
				zap.String("classname", d.Classname), zap.Int("brush", d.Brush), zap.Int("plane", d.Plane))
		}
		models = append(models, export.PrepareModels(src.name, src.scene.Entities, modelOpts)...)
	}
	uniqueNames(models)

	result.MissingTextures = textures.Missing()
	if len(result.MissingTextures) > 0 {
		log.Warn("textures missing", zap.Strings("textures", result.MissingTextures))
	}

	if len(models) == 0 {
		log.Info("no props found")
		return result, nil
	}
	log.Info("models prepared", zap.Int("count", len(models)))

	files, err := exportModels(models, result.OutputDir, cfg)
	result.Files = files
	for _, m := range models {
		result.Models = append(result.Models, m.Name)
	}

	if cfg.Compile.Autocompile {
		compiled, cerr := compileModels(ctx, models, result, cfg)
		result.Compiled = compiled
		err = multierr.Append(err, cerr)
	}
	return result, err
}

// baseName is the configured output name or the input file stem.
func baseName(cfg *config.Config, input string) string {
	if cfg.QC.OutputName != "" {
		return cfg.QC.OutputName
	}
	return strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
}

func read(input, name string, opts formats.ReadOptions) ([]source, error) {
	switch strings.ToLower(filepath.Ext(input)) {
	case ".map":
		scene, err := formats.ParseMAPFile(input, opts)
		return single(name, scene, err)
	case ".rmf":
		scene, err := formats.ParseRMFFile(input, opts)
		return single(name, scene, err)
	case ".jmf":
		scene, err := formats.ParseJMFFile(input, opts)
		return single(name, scene, err)
	case ".obj":
		scene, err := formats.ParseOBJFile(input, opts)
		return single(name, scene, err)
	case ".ol":
		lib, err := formats.ParseOLFile(input, opts)
		if err != nil {
			return nil, err
		}
		sources := make([]source, 0, len(lib.Prefabs))
		for i := range lib.Prefabs {
			p := &lib.Prefabs[i]
			sources = append(sources, source{name: p.Slug(), scene: p.Scene})
		}
		return sources, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, input)
}

func single(name string, scene *formats.Scene, err error) ([]source, error) {
	if err != nil {
		return nil, err
	}
	return []source{{name: name, scene: scene}}, nil
}

// uniqueNames renames models whose name is already taken by an earlier one.
func uniqueNames(models []*export.RawModel) {
	seen := make(map[string]bool, len(models))
	for _, m := range models {
		name := m.Name
		for n := 1; seen[name]; n++ {
			name = fmt.Sprintf("%s_%d", m.Name, n)
		}
		m.Name = name
		seen[name] = true
	}
}

var smoothSuffix = regexp.MustCompile(`(?i)_smooth(\d{0,3})$`)

// SmoothingOverride reads a threshold from a file name ending in _smoothN.
// A bare _smooth smooths every edge.
func SmoothingOverride(input string) (float64, bool) {
	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	match := smoothSuffix.FindStringSubmatch(stem)
	if match == nil {
		return 0, false
	}
	if match[1] == "" {
		return 180, true
	}
	threshold, err := strconv.ParseFloat(match[1], 64)
	if err != nil || threshold > 180 {
		return 0, false
	}
	return threshold, true
}

// exportModels smooths and writes every model in parallel, bounded by the
// configured worker count.
func exportModels(models []*export.RawModel, dir string, cfg *config.Config) ([]string, error) {
	log := logger.Named("convert")

	files := make([][]string, len(models))
	errs := make([]error, len(models))

	var g errgroup.Group
	if cfg.Workers > 0 {
		g.SetLimit(cfg.Workers)
	}
	for i, m := range models {
		i, m := i, m
		g.Go(func() error {
			stats := export.Smooth(m)
			log.Debug("smoothed",
				logger.Model(m.Name),
				zap.Int("positions", stats.Positions),
				zap.Int("always", stats.Always),
				zap.Int("never", stats.Never))

			written, err := export.WriteFiles(dir, m, cfg.Export.Formats)
			files[i] = written
			if err != nil {
				errs[i] = fmt.Errorf("model %s: %w", m.Name, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	var all []string
	for _, f := range files {
		all = append(all, f...)
	}
	return all, multierr.Combine(errs...)
}

// compileModels runs studiomdl on every model, one at a time.
func compileModels(ctx context.Context, models []*export.RawModel, result *Result, cfg *config.Config) ([]string, error) {
	log := logger.Named("convert")
	if !cfg.Exports(config.FormatSMD) || !cfg.Exports(config.FormatQC) {
		log.Info("autocompile skipped", zap.String("reason", "smd and qc export are required"))
		return nil, nil
	}
	if reason := compiler.SkipReason(cfg.Compile.Studiomdl, result.MissingTextures); reason != "" {
		log.Info("autocompile skipped", zap.String("reason", reason))
		return nil, nil
	}

	var compiled []string
	var errs error
	for _, m := range models {
		if err := ctx.Err(); err != nil {
			return compiled, multierr.Append(errs, err)
		}
		qc := export.Path(result.OutputDir, m, config.FormatQC)
		if _, err := compiler.Run(ctx, cfg.Compile.Studiomdl, qc, cfg.Compile.Timeout); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		compiled = append(compiled, filepath.Join(result.OutputDir, m.Name+".mdl"))
	}
	return compiled, errs
}
