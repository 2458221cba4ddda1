package compiler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/Faultbox/map2prop/internal/logger"
)

func init() {
	logger.InitNop()
}

// fakeCompiler writes a shell script standing in for studiomdl.
func fakeCompiler(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	path := filepath.Join(t.TempDir(), "studiomdl")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func writeQC(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "crate.qc")
	if err := os.WriteFile(path, []byte("$modelname crate.mdl\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "studiomdl.exe")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	tests := []struct {
		name string
		path string
		want error
	}{
		{"empty", "", ErrNotConfigured},
		{"missing", filepath.Join(dir, "nope.exe"), ErrNotFound},
		{"directory", dir, ErrNotFound},
		{"file", file, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.path)
			if tt.want == nil {
				if err != nil {
					t.Errorf("Check = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Check = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSkipReason(t *testing.T) {
	file := filepath.Join(t.TempDir(), "studiomdl.exe")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if got := SkipReason("", nil); got == "" {
		t.Error("SkipReason without compiler is empty")
	}
	if got := SkipReason(file, []string{"a", "b"}); !strings.Contains(got, "2 textures") {
		t.Errorf("SkipReason = %q, want missing texture count", got)
	}
	if got := SkipReason(file, nil); got != "" {
		t.Errorf("SkipReason = %q, want empty", got)
	}
}

func TestDecodeLines(t *testing.T) {
	got := decodeLines([]byte("caf\xe9\r\n\r\nline two\n"))
	if len(got) != 2 || got[0] != "café" || got[1] != "line two" {
		t.Errorf("decodeLines = %q", got)
	}
}

func TestRun(t *testing.T) {
	studiomdl := fakeCompiler(t, `printf 'building %s\r\n' "$1"
printf 'caf\351\n'
touch compiled.mdl
`)
	qc := writeQC(t)

	result, err := Run(context.Background(), studiomdl, qc, 10*time.Second)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", result.ExitCode)
	}
	if len(result.Output) != 2 || result.Output[0] != "building crate.qc" || result.Output[1] != "café" {
		t.Errorf("Output = %q", result.Output)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(qc), "compiled.mdl")); err != nil {
		t.Errorf("compiler did not run in the qc directory: %v", err)
	}
}

func TestRun_Failure(t *testing.T) {
	studiomdl := fakeCompiler(t, "echo 'Error: bad texture'\nexit 3\n")

	result, err := Run(context.Background(), studiomdl, writeQC(t), 0)
	if !errors.Is(err, ErrFailed) {
		t.Fatalf("Run = %v, want ErrFailed", err)
	}
	if result.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", result.ExitCode)
	}
	if len(result.Output) != 1 || result.Output[0] != "Error: bad texture" {
		t.Errorf("Output = %q", result.Output)
	}
}

func TestRun_Timeout(t *testing.T) {
	studiomdl := fakeCompiler(t, "exec sleep 5\n")

	start := time.Now()
	_, err := Run(context.Background(), studiomdl, writeQC(t), 100*time.Millisecond)
	if err == nil || !strings.Contains(err.Error(), "timed out") {
		t.Fatalf("Run = %v, want a timeout", err)
	}
	if elapsed := time.Since(start); elapsed > 4*time.Second {
		t.Errorf("Run took %s, want it cut short", elapsed)
	}
}

func TestRun_NotConfigured(t *testing.T) {
	if _, err := Run(context.Background(), "", "crate.qc", 0); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Run = %v, want ErrNotConfigured", err)
	}
}
