// Package config handles converter configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
)

// Export formats.
const (
	FormatSMD  = "smd"
	FormatQC   = "qc"
	FormatGLTF = "gltf"
)

// Config holds all converter settings. Smoothing is the angle threshold in
// degrees, 0 disables it. Workers bounds parallel brush construction and
// model export, 0 means no limit. OutputDir is relative to the input file.
type Config struct {
	Smoothing float64       `yaml:"smoothing"`
	Eager     bool          `yaml:"eager"`
	Workers   int           `yaml:"workers"`
	OutputDir string        `yaml:"output_dir"`
	Export    ExportConfig  `yaml:"export"`
	WAD       WADConfig     `yaml:"wad"`
	Compile   CompileConfig `yaml:"compile"`
	QC        QCConfig      `yaml:"qc"`
	Logging   LoggingConfig `yaml:"logging"`
}

// ExportConfig selects the files written per model.
type ExportConfig struct {
	Formats []string `yaml:"formats"`
}

// WADConfig holds texture package settings.
type WADConfig struct {
	List    []string `yaml:"list,omitempty"` // searched before mod and input dirs
	Cache   int      `yaml:"cache"`          // open packages kept in memory, 0 = unbounded
	ModPath string   `yaml:"mod_path"`       // game mod dir, its *.wad are searched
}

// CompileConfig holds studiomdl settings.
type CompileConfig struct {
	Autocompile bool          `yaml:"autocompile"`
	Studiomdl   string        `yaml:"studiomdl"`
	Timeout     time.Duration `yaml:"timeout"`
}

// QCConfig holds defaults for the generated .qc file.
type QCConfig struct {
	OutputName string     `yaml:"outputname"`
	Scale      float64    `yaml:"scale"`
	Gamma      float64    `yaml:"gamma"`
	Offset     [3]float64 `yaml:"offset,flow"`
	Rotate     float64    `yaml:"rotate"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Smoothing: 60,
		Eager:     false,
		Workers:   0,
		OutputDir: "converted",
		Export: ExportConfig{
			Formats: []string{FormatSMD, FormatQC},
		},
		WAD: WADConfig{
			Cache: 10,
		},
		Compile: CompileConfig{
			Autocompile: false,
			Timeout:     60 * time.Second,
		},
		QC: QCConfig{
			Scale:  1,
			Gamma:  1.8,
			Rotate: 270,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Exports reports whether the given export format is enabled.
func (c *Config) Exports(format string) bool {
	for _, f := range c.Export.Formats {
		if f == format {
			return true
		}
	}
	return false
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error
	if c.Smoothing < 0 || c.Smoothing > 180 {
		errs = append(errs, fmt.Errorf("smoothing must be between 0 and 180 degrees, got %g", c.Smoothing))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	if c.WAD.Cache < 0 {
		errs = append(errs, fmt.Errorf("wad.cache must not be negative, got %d", c.WAD.Cache))
	}
	if c.Compile.Timeout < 0 {
		errs = append(errs, fmt.Errorf("compile.timeout must not be negative, got %s", c.Compile.Timeout))
	}
	if c.QC.Scale < 0 {
		errs = append(errs, fmt.Errorf("qc.scale must not be negative, got %g", c.QC.Scale))
	}
	if c.QC.Gamma <= 0 {
		errs = append(errs, fmt.Errorf("qc.gamma must be positive, got %g", c.QC.Gamma))
	}
	if len(c.Export.Formats) == 0 {
		errs = append(errs, errors.New("export.formats must not be empty"))
	}
	for _, f := range c.Export.Formats {
		switch f {
		case FormatSMD, FormatQC, FormatGLTF:
		default:
			errs = append(errs, fmt.Errorf("unknown export format %q", f))
		}
	}
	return multierr.Combine(errs...)
}
