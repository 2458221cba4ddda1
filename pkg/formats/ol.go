package formats

import (
	"errors"
	"fmt"
	stdmath "math"
	"os"
	"strings"

	"github.com/Faultbox/map2prop/pkg/brush"
	"github.com/Faultbox/map2prop/pkg/math"
)

// OL format errors.
var (
	ErrInvalidOLMagic       = errors.New("invalid OL magic: expected 'Worldcraft Prefab Library'")
	ErrUnsupportedOLVersion = errors.New("unsupported OL version")
	ErrTruncatedOLData      = errors.New("truncated OL data")
)

// OLMagic is the header of a prefab library.
const OLMagic = "Worldcraft Prefab Library\r\n\x1a"

const (
	olVersion      = 0.1
	olNotesSize    = 501
	olNameSize     = 31
	olDirEntrySize = 544
	olHeaderSize   = len(OLMagic) + 4 + 4 + 4 + olNotesSize
)

// Prefab is one RMF payload stored in a prefab library.
type Prefab struct {
	Name  string
	Notes string
	Type  int32
	Scene *Scene
}

// Slug returns the prefab name lowercased with spaces replaced, suitable as
// an output file name.
func (p *Prefab) Slug() string {
	return strings.ReplaceAll(strings.ToLower(p.Name), " ", "_")
}

// PrefabLibrary is a parsed .ol file.
type PrefabLibrary struct {
	Notes   string
	Prefabs []Prefab
}

// HasMissingTextures reports whether any prefab references a missing texture.
func (l *PrefabLibrary) HasMissingTextures() bool {
	for _, p := range l.Prefabs {
		if p.Scene.HasMissingTextures() {
			return true
		}
	}
	return false
}

// ParseOL parses a Worldcraft prefab library.
func ParseOL(data []byte, opts ReadOptions) (*PrefabLibrary, error) {
	if len(data) < olHeaderSize {
		return nil, ErrTruncatedOLData
	}
	if string(data[:len(OLMagic)]) != OLMagic {
		return nil, ErrInvalidOLMagic
	}

	r := newBinReader(data[len(OLMagic):], ErrTruncatedOLData)
	version := r.float32("version")
	if stdmath.Abs(version-olVersion) > math.Epsilon {
		return nil, fmt.Errorf("%w: %g", ErrUnsupportedOLVersion, version)
	}
	dirOffset := int(r.int32("directory offset"))
	entries := int(r.int32("directory entry count"))
	lib := &PrefabLibrary{Notes: r.fixedString(olNotesSize, "notes")}
	if r.err != nil {
		return nil, r.err
	}
	if entries < 0 || dirOffset < 0 || dirOffset+entries*olDirEntrySize > len(data) {
		return nil, fmt.Errorf("%w: directory of %d entries at %d", ErrTruncatedOLData, entries, dirOffset)
	}

	for i := 0; i < entries; i++ {
		start := dirOffset + i*olDirEntrySize
		er := newBinReader(data[start:start+olDirEntrySize], ErrTruncatedOLData)
		offset := int(er.int32("prefab offset"))
		size := int(er.int32("prefab size"))
		prefab := Prefab{
			Name:  er.fixedString(olNameSize, "prefab name"),
			Notes: er.fixedString(olNotesSize, "prefab notes"),
			Type:  er.int32("prefab type"),
		}
		if er.err != nil {
			return nil, er.err
		}
		if offset < 0 || size < 0 || offset+size > len(data) {
			return nil, fmt.Errorf("%w: prefab %q at %d+%d", ErrTruncatedOLData, prefab.Name, offset, size)
		}

		scene, err := ParseRMF(data[offset:offset+size], opts)
		if err != nil {
			return nil, fmt.Errorf("prefab %q: %w", prefab.Name, err)
		}
		scene.Format = brush.FormatOL
		prefab.Scene = scene
		lib.Prefabs = append(lib.Prefabs, prefab)
	}
	return lib, nil
}

// ParseOLFile parses an .ol file from disk.
func ParseOLFile(path string, opts ReadOptions) (*PrefabLibrary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading OL file: %w", err)
	}
	return ParseOL(data, opts)
}
