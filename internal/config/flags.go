package config

import (
	"flag"
	"fmt"
	stdmath "math"
	"strconv"
	"strings"
)

// Numeric flags default to values outside their valid range so an explicit
// 0 still overrides the config file.
var (
	flagConfig      = flag.String("config", "", "Path to config file")
	flagDebug       = flag.Bool("debug", false, "Enable debug logging")
	flagOutput      = flag.String("output", "", "Output directory, relative to the input file")
	flagSmoothing   = flag.Float64("smoothing", -1, "Smoothing angle threshold in degrees (0 disables)")
	flagEager       = flag.Bool("eager", false, "Use the faster eager triangulation")
	flagWorkers     = flag.Int("workers", -1, "Parallel workers (0 = unbounded)")
	flagFormats     = flag.String("formats", "", "Comma-separated export formats: smd,qc,gltf")
	flagWadList     = flag.String("wad-list", "", "Comma-separated .wad files to search first")
	flagWadCache    = flag.Int("wad-cache", -1, "Open .wad packages kept in memory (0 = unbounded)")
	flagModPath     = flag.String("mod", "", "Game mod directory searched for .wad files")
	flagAutocompile = flag.Bool("autocompile", false, "Compile the model with studiomdl after conversion")
	flagStudiomdl   = flag.String("studiomdl", "", "Path to studiomdl")
	flagTimeout     = flag.Duration("timeout", -1, "Timeout for studiomdl")
	flagOutputName  = flag.String("outputname", "", "File name for the finished model")
	flagScale       = flag.Float64("scale", 0, "Scale the model by this amount")
	flagGamma       = flag.Float64("gamma", 0, "Darken or brighten textures")
	flagOffset      = flag.String("offset", "", "\"x y z\" offset applied to the model")
	flagRotate      = flag.Float64("rotate", 0, "Rotate the model by this many degrees")
	flagSave        = flag.Bool("save-config", false, "Write the effective config to the user config dir")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// SaveRequested reports whether --save-config was given.
func SaveRequested() bool {
	return *flagSave
}

// Inputs returns the positional arguments: the files to convert.
func Inputs() []string {
	return flag.Args()
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) error {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagOutput != "" {
		cfg.OutputDir = *flagOutput
	}
	if *flagSmoothing >= 0 {
		cfg.Smoothing = *flagSmoothing
	}
	if *flagEager {
		cfg.Eager = true
	}
	if *flagWorkers >= 0 {
		cfg.Workers = *flagWorkers
	}
	if *flagFormats != "" {
		cfg.Export.Formats = splitList(*flagFormats)
	}
	if *flagWadList != "" {
		cfg.WAD.List = splitList(*flagWadList)
	}
	if *flagWadCache >= 0 {
		cfg.WAD.Cache = *flagWadCache
	}
	if *flagModPath != "" {
		cfg.WAD.ModPath = *flagModPath
	}
	if *flagAutocompile {
		cfg.Compile.Autocompile = true
	}
	if *flagStudiomdl != "" {
		cfg.Compile.Studiomdl = *flagStudiomdl
	}
	if *flagTimeout >= 0 {
		cfg.Compile.Timeout = *flagTimeout
	}
	if *flagOutputName != "" {
		cfg.QC.OutputName = *flagOutputName
	}
	if *flagScale > 0 {
		cfg.QC.Scale = *flagScale
	}
	if *flagGamma > 0 {
		cfg.QC.Gamma = *flagGamma
	}
	if *flagOffset != "" {
		offset, err := ParseOffset(*flagOffset)
		if err != nil {
			return err
		}
		cfg.QC.Offset = offset
	}
	if *flagRotate != 0 {
		cfg.QC.Rotate = stdmath.Mod(cfg.QC.Rotate+*flagRotate, 360)
	}
	return nil
}

// ParseOffset parses an "x y z" triple.
func ParseOffset(s string) ([3]float64, error) {
	var offset [3]float64
	fields := strings.Fields(s)
	if len(fields) != 3 {
		return offset, fmt.Errorf("offset %q: want three numbers", s)
	}
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return offset, fmt.Errorf("offset %q: %w", s, err)
		}
		offset[i] = v
	}
	return offset, nil
}

func splitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
