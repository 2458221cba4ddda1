package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

// resetFlags restores every flag to its unset value.
func resetFlags() {
	*flagConfig = ""
	*flagDebug = false
	*flagOutput = ""
	*flagSmoothing = -1
	*flagEager = false
	*flagWorkers = -1
	*flagFormats = ""
	*flagWadList = ""
	*flagWadCache = -1
	*flagModPath = ""
	*flagAutocompile = false
	*flagStudiomdl = ""
	*flagTimeout = -1
	*flagOutputName = ""
	*flagScale = 0
	*flagGamma = 0
	*flagOffset = ""
	*flagRotate = 0
	*flagSave = false
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Smoothing != 60 {
		t.Errorf("expected smoothing 60, got %g", cfg.Smoothing)
	}
	if cfg.Eager {
		t.Error("expected eager to be false by default")
	}
	if cfg.OutputDir != "converted" {
		t.Errorf("expected output dir 'converted', got %s", cfg.OutputDir)
	}
	if !cfg.Exports(FormatSMD) || !cfg.Exports(FormatQC) || cfg.Exports(FormatGLTF) {
		t.Errorf("unexpected default formats %v", cfg.Export.Formats)
	}
	if cfg.WAD.Cache != 10 {
		t.Errorf("expected wad cache 10, got %d", cfg.WAD.Cache)
	}
	if cfg.Compile.Timeout != 60*time.Second {
		t.Errorf("expected timeout 60s, got %v", cfg.Compile.Timeout)
	}
	if cfg.QC.Scale != 1 || cfg.QC.Gamma != 1.8 || cfg.QC.Rotate != 270 {
		t.Errorf("unexpected qc defaults %+v", cfg.QC)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config is invalid: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	yamlContent := `
smoothing: 45
eager: true
workers: 4
output_dir: "props"
export:
  formats: [smd, qc, gltf]
wad:
  list: ["halflife.wad", "decals.wad"]
  cache: 2
  mod_path: "/games/valve"
compile:
  autocompile: true
  studiomdl: "/sdk/studiomdl.exe"
  timeout: 90s
qc:
  outputname: "crate"
  scale: 0.5
  gamma: 2.2
  offset: [1, 2, 3]
  rotate: 90
logging:
  level: "debug"
  log_file: "map2prop.log"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Smoothing != 45 || !cfg.Eager || cfg.Workers != 4 || cfg.OutputDir != "props" {
		t.Errorf("unexpected general settings %+v", cfg)
	}
	if !cfg.Exports(FormatGLTF) {
		t.Error("expected gltf export")
	}
	if want := []string{"halflife.wad", "decals.wad"}; !reflect.DeepEqual(cfg.WAD.List, want) {
		t.Errorf("expected wad list %v, got %v", want, cfg.WAD.List)
	}
	if cfg.WAD.Cache != 2 || cfg.WAD.ModPath != "/games/valve" {
		t.Errorf("unexpected wad settings %+v", cfg.WAD)
	}
	if !cfg.Compile.Autocompile || cfg.Compile.Studiomdl != "/sdk/studiomdl.exe" || cfg.Compile.Timeout != 90*time.Second {
		t.Errorf("unexpected compile settings %+v", cfg.Compile)
	}
	want := QCConfig{OutputName: "crate", Scale: 0.5, Gamma: 2.2, Offset: [3]float64{1, 2, 3}, Rotate: 90}
	if cfg.QC != want {
		t.Errorf("expected qc %+v, got %+v", want, cfg.QC)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.LogFile != "map2prop.log" {
		t.Errorf("unexpected logging settings %+v", cfg.Logging)
	}
}

func TestLoadFromFilePartial(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("qc:\n  gamma: 2.0\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.QC.Gamma != 2.0 {
		t.Errorf("expected gamma 2.0, got %g", cfg.QC.Gamma)
	}
	// Unset keys keep their defaults.
	if cfg.QC.Rotate != 270 || cfg.Smoothing != 60 {
		t.Errorf("defaults lost: rotate %g smoothing %g", cfg.QC.Rotate, cfg.Smoothing)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid.yaml")
	invalidYAML := `
smoothing: not a number
  invalid syntax here
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if err := loadFromFile(Default(), configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if err := loadFromFile(Default(), "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestLoadFileValidates(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("smoothing: -5\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(configPath); err == nil {
		t.Error("expected validation error for negative smoothing")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"smoothing zero", func(c *Config) { c.Smoothing = 0 }, ""},
		{"smoothing negative", func(c *Config) { c.Smoothing = -1 }, "smoothing"},
		{"smoothing too large", func(c *Config) { c.Smoothing = 181 }, "smoothing"},
		{"workers", func(c *Config) { c.Workers = -2 }, "workers"},
		{"wad cache", func(c *Config) { c.WAD.Cache = -1 }, "wad.cache"},
		{"timeout", func(c *Config) { c.Compile.Timeout = -time.Second }, "timeout"},
		{"scale", func(c *Config) { c.QC.Scale = -1 }, "qc.scale"},
		{"gamma", func(c *Config) { c.QC.Gamma = 0 }, "qc.gamma"},
		{"no formats", func(c *Config) { c.Export.Formats = nil }, "export.formats"},
		{"unknown format", func(c *Config) { c.Export.Formats = []string{"fbx"} }, "fbx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	os.Chdir(tmpDir)

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	if err := os.WriteFile(filepath.Join(tmpDir, "map2prop.yaml"), []byte("smoothing: 30\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}
	if path := findConfigFile(); path == "" {
		t.Error("expected to find map2prop.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name   string
		setup  func()
		verify func(*testing.T, *Config)
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
		},
		{
			name:  "explicit zero smoothing",
			setup: func() { *flagSmoothing = 0 },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Smoothing != 0 {
					t.Errorf("expected smoothing 0, got %g", cfg.Smoothing)
				}
			},
		},
		{
			name:  "unset smoothing keeps config",
			setup: func() {},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Smoothing != 60 {
					t.Errorf("expected smoothing 60, got %g", cfg.Smoothing)
				}
			},
		},
		{
			name: "lists",
			setup: func() {
				*flagFormats = "smd, gltf"
				*flagWadList = "a.wad,,b.wad"
			},
			verify: func(t *testing.T, cfg *Config) {
				if want := []string{"smd", "gltf"}; !reflect.DeepEqual(cfg.Export.Formats, want) {
					t.Errorf("expected formats %v, got %v", want, cfg.Export.Formats)
				}
				if want := []string{"a.wad", "b.wad"}; !reflect.DeepEqual(cfg.WAD.List, want) {
					t.Errorf("expected wad list %v, got %v", want, cfg.WAD.List)
				}
			},
		},
		{
			name: "compile",
			setup: func() {
				*flagAutocompile = true
				*flagStudiomdl = "studiomdl"
				*flagTimeout = 5 * time.Second
			},
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Compile.Autocompile || cfg.Compile.Studiomdl != "studiomdl" || cfg.Compile.Timeout != 5*time.Second {
					t.Errorf("unexpected compile settings %+v", cfg.Compile)
				}
			},
		},
		{
			name: "qc",
			setup: func() {
				*flagOutputName = "lamp"
				*flagScale = 2
				*flagGamma = 1.5
				*flagOffset = "0 0 -16"
				*flagRotate = 180
			},
			verify: func(t *testing.T, cfg *Config) {
				want := QCConfig{OutputName: "lamp", Scale: 2, Gamma: 1.5, Offset: [3]float64{0, 0, -16}, Rotate: 90}
				if cfg.QC != want {
					t.Errorf("expected qc %+v, got %+v", want, cfg.QC)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			defer resetFlags()
			tt.setup()

			cfg := Default()
			if err := applyFlags(cfg); err != nil {
				t.Fatalf("applyFlags failed: %v", err)
			}
			tt.verify(t, cfg)
		})
	}
}

func TestApplyFlagsBadOffset(t *testing.T) {
	resetFlags()
	defer resetFlags()
	*flagOffset = "1 2"
	if err := applyFlags(Default()); err == nil {
		t.Error("expected error for two-component offset")
	}
}

func TestParseOffset(t *testing.T) {
	tests := []struct {
		in      string
		want    [3]float64
		wantErr bool
	}{
		{"0 0 0", [3]float64{}, false},
		{" 1.5  -2 3 ", [3]float64{1.5, -2, 3}, false},
		{"1 2", [3]float64{}, true},
		{"1 2 x", [3]float64{}, true},
	}
	for _, tt := range tests {
		got, err := ParseOffset(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseOffset(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseOffset(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoadPriority(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	yamlContent := `
smoothing: 30
qc:
  gamma: 2.0
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	resetFlags()
	defer resetFlags()
	*flagConfig = configPath
	*flagSmoothing = 10

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Smoothing != 10 {
		t.Errorf("expected smoothing 10 from flag, got %g", cfg.Smoothing)
	}
	if cfg.QC.Gamma != 2.0 {
		t.Errorf("expected gamma 2.0 from file, got %g", cfg.QC.Gamma)
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Smoothing = 15
	cfg.QC.Offset = [3]float64{4, 5, 6}
	cfg.Compile.Timeout = 2 * time.Minute
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if !reflect.DeepEqual(cfg, loaded) {
		t.Errorf("round trip mismatch:\nsaved  %+v\nloaded %+v", cfg, loaded)
	}
}
