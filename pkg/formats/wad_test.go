package formats

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

type testLump struct {
	name          string
	width, height int
	typ           uint8
	compressed    bool
}

// mipTexLump builds a texture lump whose pixel at index i has palette index
// i%256 and whose palette entry i is (i, 255-i, i/2).
func mipTexLump(name string, width, height int) []byte {
	f := &fixture{}
	f.fixed(name, wadNameSize)
	f.u32(uint32(width))
	f.u32(uint32(height))

	offset := mipTexHeader
	for level := 0; level < 4; level++ {
		f.u32(uint32(offset))
		offset += (width >> level) * (height >> level)
	}
	for level := 0; level < 4; level++ {
		n := (width >> level) * (height >> level)
		for i := 0; i < n; i++ {
			f.WriteByte(byte(i % 256))
		}
	}

	f.Write([]byte{0, 1}) // 256 colours
	for i := 0; i < 256; i++ {
		f.Write([]byte{byte(i), byte(255 - i), byte(i / 2)})
	}
	f.pad(2)
	return f.Bytes()
}

func createTestWAD(lumps ...testLump) []byte {
	f := &fixture{}
	f.WriteString("WAD3")

	var bodies [][]byte
	size := wadHeaderSize
	for _, l := range lumps {
		body := mipTexLump(l.name, l.width, l.height)
		bodies = append(bodies, body)
		size += len(body)
	}
	f.i32(int32(len(lumps)))
	f.i32(int32(size))

	for _, b := range bodies {
		f.Write(b)
	}
	offset := wadHeaderSize
	for i, l := range lumps {
		f.i32(int32(offset))
		f.i32(int32(len(bodies[i])))
		f.i32(int32(len(bodies[i])))
		f.WriteByte(l.typ)
		if l.compressed {
			f.WriteByte(1)
		} else {
			f.WriteByte(0)
		}
		f.pad(2)
		f.fixed(l.name, wadNameSize)
		offset += len(bodies[i])
	}
	return f.Bytes()
}

func TestParseWAD3(t *testing.T) {
	data := createTestWAD(
		testLump{name: "{FENCE", width: 16, height: 32, typ: WADTypeMipTex},
		testLump{name: "conchars", width: 16, height: 16, typ: 0x42},
		testLump{name: "stone1", width: 32, height: 16, typ: WADTypeMipTex},
	)
	w, err := ParseWAD3(data)
	if err != nil {
		t.Fatalf("ParseWAD3 failed: %v", err)
	}

	if len(w.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(w.Entries))
	}
	if want := []string{"{FENCE", "stone1"}; !reflect.DeepEqual(w.Textures(), want) {
		t.Errorf("Textures() = %v, want %v", w.Textures(), want)
	}

	tests := []struct {
		name string
		want bool
	}{
		{"{fence", true},
		{"{FENCE", true},
		{"STONE1", true},
		{"conchars", false},
		{"stone2", false},
	}
	for _, tt := range tests {
		if got := w.Has(tt.name); got != tt.want {
			t.Errorf("Has(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestWAD_Texture(t *testing.T) {
	w, err := ParseWAD3(createTestWAD(testLump{name: "stone1", width: 32, height: 16, typ: WADTypeMipTex}))
	if err != nil {
		t.Fatalf("ParseWAD3 failed: %v", err)
	}

	tex, err := w.Texture("Stone1")
	if err != nil {
		t.Fatalf("Texture failed: %v", err)
	}
	if tex.Name != "stone1" || tex.Width != 32 || tex.Height != 16 {
		t.Errorf("texture = %q %dx%d, want stone1 32x16", tex.Name, tex.Width, tex.Height)
	}
	if got := tex.Image.Bounds().Dx(); got != 32 {
		t.Errorf("image width = %d, want 32", got)
	}
	if len(tex.Image.Palette) != 256 {
		t.Fatalf("palette has %d colours, want 256", len(tex.Image.Palette))
	}

	// Pixel (5, 2) has index 2*32+5 = 69.
	if got := tex.Image.ColorIndexAt(5, 2); got != 69 {
		t.Errorf("ColorIndexAt(5, 2) = %d, want 69", got)
	}
	want := color.RGBA{R: 69, G: 186, B: 34, A: 0xff}
	if got := tex.Image.At(5, 2); got != want {
		t.Errorf("At(5, 2) = %v, want %v", got, want)
	}

	if _, err := w.Texture("missing"); !errors.Is(err, ErrTextureNotFound) {
		t.Errorf("expected ErrTextureNotFound, got %v", err)
	}
}

func TestWAD_CompressedLump(t *testing.T) {
	w, err := ParseWAD3(createTestWAD(testLump{name: "packed", width: 16, height: 16, typ: WADTypeMipTex, compressed: true}))
	if err != nil {
		t.Fatalf("ParseWAD3 failed: %v", err)
	}
	if _, err := w.Texture("packed"); !errors.Is(err, ErrUnsupportedLump) {
		t.Errorf("expected ErrUnsupportedLump, got %v", err)
	}
}

func TestParseWAD3_Errors(t *testing.T) {
	valid := createTestWAD(testLump{name: "stone1", width: 16, height: 16, typ: WADTypeMipTex})

	badMagic := append([]byte(nil), valid...)
	copy(badMagic, "WAD2")

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"too short", []byte("WAD3"), ErrTruncatedWADData},
		{"bad magic", badMagic, ErrInvalidWADMagic},
		{"directory cut", valid[:len(valid)-8], ErrTruncatedWADData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseWAD3(tt.data)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestParseWAD3File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.wad")
	if err := os.WriteFile(path, createTestWAD(testLump{name: "a", width: 16, height: 16, typ: WADTypeMipTex}), 0644); err != nil {
		t.Fatal(err)
	}
	w, err := ParseWAD3File(path)
	if err != nil {
		t.Fatalf("ParseWAD3File failed: %v", err)
	}
	if !w.Has("A") {
		t.Error("expected texture a")
	}
}
