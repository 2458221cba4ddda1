// Package compiler runs the studio model compiler on generated QC files.
package compiler

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"

	"github.com/Faultbox/map2prop/internal/logger"
)

var (
	// ErrNotConfigured is returned when no compiler path is set.
	ErrNotConfigured = errors.New("studiomdl is not configured")
	// ErrNotFound is returned when the compiler path is not a regular file.
	ErrNotFound = errors.New("studiomdl was not found")
	// ErrFailed is returned when the compiler exits with a non-zero status.
	ErrFailed = errors.New("studiomdl failed")
)

// Result is the outcome of one compiler run.
type Result struct {
	Output   []string
	ExitCode int
	Duration time.Duration
}

// Check reports why the compiler at path cannot run, or nil.
func Check(path string) error {
	if path == "" {
		return ErrNotConfigured
	}
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return nil
}

// SkipReason returns why compilation should not start, or "" when it may.
func SkipReason(studiomdl string, missingTextures []string) string {
	if err := Check(studiomdl); err != nil {
		return err.Error()
	}
	if len(missingTextures) > 0 {
		return fmt.Sprintf("%d textures are missing", len(missingTextures))
	}
	return ""
}

// Run compiles qcPath inside its own directory. A positive timeout bounds the
// run. Compiler output is decoded from Windows-1252 and logged line by line.
func Run(ctx context.Context, studiomdl, qcPath string, timeout time.Duration) (*Result, error) {
	if err := Check(studiomdl); err != nil {
		return nil, err
	}
	log := logger.Named("compiler")

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, studiomdl, filepath.Base(qcPath))
	cmd.Dir = filepath.Dir(qcPath)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	log.Info("compiling model", zap.String("qc", qcPath))
	start := time.Now()
	runErr := cmd.Run()

	result := &Result{
		Output:   decodeLines(out.Bytes()),
		Duration: time.Since(start),
	}
	for _, line := range result.Output {
		log.Info(line)
	}
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}

	if ctx.Err() == context.DeadlineExceeded {
		return result, fmt.Errorf("compile %s: timed out after %s", qcPath, timeout)
	}
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			return result, fmt.Errorf("compile %s: %w (exit code %d)", qcPath, ErrFailed, result.ExitCode)
		}
		return result, fmt.Errorf("compile %s: %w", qcPath, runErr)
	}

	log.Info("model compiled", zap.String("qc", qcPath), zap.Duration("took", result.Duration))
	return result, nil
}

func decodeLines(raw []byte) []string {
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		decoded = raw
	}

	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(decoded))
	for scanner.Scan() {
		line := bytes.TrimRight(scanner.Bytes(), "\r")
		if len(line) > 0 {
			lines = append(lines, string(line))
		}
	}
	return lines
}
