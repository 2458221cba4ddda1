package formats

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/Faultbox/map2prop/pkg/encoding"
)

// WAD3 format errors.
var (
	ErrInvalidWADMagic  = errors.New("invalid WAD magic: expected 'WAD3'")
	ErrTruncatedWADData = errors.New("truncated WAD data")
	ErrTextureNotFound  = errors.New("texture not found")
	ErrUnsupportedLump  = errors.New("unsupported WAD lump")
)

// WADTypeMipTex is the lump type of a mip-mapped texture.
const WADTypeMipTex = 0x43

const (
	wadHeaderSize   = 12
	wadDirEntrySize = 32
	wadNameSize     = 16
	mipTexHeader    = wadNameSize + 4 + 4 + 4*4
)

// WADEntry is one directory entry of a WAD3 package.
type WADEntry struct {
	Name       string
	Offset     int32
	DiskSize   int32
	Size       int32
	Type       uint8
	Compressed bool
}

// WAD is a parsed WAD3 texture package. Textures are decoded on demand.
type WAD struct {
	Entries []WADEntry
	data    []byte
	index   map[string]int
}

// MipTexture is the full-size image of a texture lump.
type MipTexture struct {
	Name   string
	Width  int
	Height int
	Image  *image.Paletted
}

// ParseWAD3 parses the header and directory of a WAD3 package.
func ParseWAD3(data []byte) (*WAD, error) {
	if len(data) < wadHeaderSize {
		return nil, ErrTruncatedWADData
	}
	if string(data[0:4]) != "WAD3" {
		return nil, ErrInvalidWADMagic
	}

	count := int(int32(binary.LittleEndian.Uint32(data[4:8])))
	dirOffset := int(int32(binary.LittleEndian.Uint32(data[8:12])))
	if count < 0 || dirOffset < wadHeaderSize || dirOffset+count*wadDirEntrySize > len(data) {
		return nil, fmt.Errorf("%w: directory of %d entries at %d", ErrTruncatedWADData, count, dirOffset)
	}

	w := &WAD{
		Entries: make([]WADEntry, count),
		data:    data,
		index:   make(map[string]int, count),
	}
	for i := 0; i < count; i++ {
		r := newBinReader(data[dirOffset+i*wadDirEntrySize:], ErrTruncatedWADData)
		e := WADEntry{
			Offset:   r.int32("lump offset"),
			DiskSize: r.int32("lump disk size"),
			Size:     r.int32("lump size"),
			Type:     r.uint8("lump type"),
		}
		e.Compressed = r.uint8("lump compression") != 0
		r.skip(2, "lump padding")
		e.Name = r.fixedString(wadNameSize, "lump name")
		if r.err != nil {
			return nil, r.err
		}
		if e.Offset < 0 || e.DiskSize < 0 || int(e.Offset)+int(e.DiskSize) > len(data) {
			return nil, fmt.Errorf("%w: lump %q at %d+%d", ErrTruncatedWADData, e.Name, e.Offset, e.DiskSize)
		}
		w.Entries[i] = e
		if e.Type == WADTypeMipTex {
			w.index[encoding.NormalizeTextureName(e.Name)] = i
		}
	}
	return w, nil
}

// ParseWAD3File parses a .wad file from disk.
func ParseWAD3File(path string) (*WAD, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading WAD file: %w", err)
	}
	return ParseWAD3(data)
}

// Has reports whether the package contains a texture. Names are
// case-insensitive.
func (w *WAD) Has(name string) bool {
	_, ok := w.index[encoding.NormalizeTextureName(name)]
	return ok
}

// Textures returns the names of all texture lumps in directory order.
func (w *WAD) Textures() []string {
	var names []string
	for _, e := range w.Entries {
		if e.Type == WADTypeMipTex {
			names = append(names, e.Name)
		}
	}
	return names
}

// Texture decodes the full-size mip level of a texture with its palette.
func (w *WAD) Texture(name string) (*MipTexture, error) {
	i, ok := w.index[encoding.NormalizeTextureName(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTextureNotFound, name)
	}
	e := w.Entries[i]
	if e.Compressed {
		return nil, fmt.Errorf("%w: %q is compressed", ErrUnsupportedLump, e.Name)
	}
	return decodeMipTex(w.data[e.Offset : e.Offset+e.DiskSize])
}

func decodeMipTex(lump []byte) (*MipTexture, error) {
	r := newBinReader(lump, ErrTruncatedWADData)
	tex := &MipTexture{Name: r.fixedString(wadNameSize, "texture name")}
	width := r.uint32("texture width")
	height := r.uint32("texture height")
	var offsets [4]uint32
	for i := range offsets {
		offsets[i] = r.uint32("mip offset")
	}
	if r.err != nil {
		return nil, r.err
	}
	if width == 0 || height == 0 || width > 4096 || height > 4096 {
		return nil, fmt.Errorf("invalid texture dimensions: %dx%d", width, height)
	}
	tex.Width, tex.Height = int(width), int(height)

	pixels := tex.Width * tex.Height
	base := int(offsets[0])
	if base < mipTexHeader || base+pixels > len(lump) {
		return nil, fmt.Errorf("%w: pixel data of %q", ErrTruncatedWADData, tex.Name)
	}

	// The palette follows the smallest mip level.
	paletteAt := int(offsets[3]) + (tex.Width/8)*(tex.Height/8)
	if paletteAt+2 > len(lump) {
		return nil, fmt.Errorf("%w: palette of %q", ErrTruncatedWADData, tex.Name)
	}
	colors := int(binary.LittleEndian.Uint16(lump[paletteAt:]))
	if colors > 256 || paletteAt+2+colors*3 > len(lump) {
		return nil, fmt.Errorf("%w: palette of %q", ErrTruncatedWADData, tex.Name)
	}
	palette := make(color.Palette, colors)
	for i := range palette {
		c := lump[paletteAt+2+i*3:]
		palette[i] = color.RGBA{R: c[0], G: c[1], B: c[2], A: 0xff}
	}

	img := image.NewPaletted(image.Rect(0, 0, tex.Width, tex.Height), palette)
	copy(img.Pix, lump[base:base+pixels])
	tex.Image = img
	return tex, nil
}
