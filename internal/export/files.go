package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/map2prop/internal/logger"
)

// Writer serializes a model into one output format.
type Writer func(w io.Writer, m *RawModel) error

// Output formats and their writers.
var (
	Writers = map[string]Writer{
		"smd":  WriteSMD,
		"qc":   WriteQC,
		"gltf": WriteGLTF,
	}
	Extensions = map[string]string{
		"smd":  ".smd",
		"qc":   ".qc",
		"gltf": ".glb",
	}
)

// Path returns the file the model is written to for format.
func Path(dir string, m *RawModel, format string) string {
	return filepath.Join(dir, m.Name+Extensions[format])
}

// WriteFiles writes the model into dir once per format and returns the
// written paths. Every format is attempted; failures are combined.
func WriteFiles(dir string, m *RawModel, formats []string) ([]string, error) {
	log := logger.Named("export")

	var written []string
	var errs error
	for _, format := range formats {
		write, ok := Writers[format]
		if !ok {
			errs = multierr.Append(errs, fmt.Errorf("unknown output format %q", format))
			continue
		}

		path := Path(dir, m, format)
		if err := writeFile(path, m, write); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("write %s: %w", path, err))
			continue
		}
		log.Info("model written", logger.Model(m.Name), zap.String("path", path))
		written = append(written, path)
	}
	return written, errs
}

func writeFile(path string, m *RawModel, write Writer) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()
	return write(f, m)
}
