// Package wadtest builds WAD3 texture packages for tests.
package wadtest

import (
	"bytes"
	"encoding/binary"
	"os"
	"testing"
)

// Texture describes one generated texture lump. Pixel i of every mip level
// has palette index i%256; palette entry i is (i, 255-i, i/2).
type Texture struct {
	Name   string
	Width  int
	Height int
}

const (
	nameSize   = 16
	headerSize = 12
	lumpHeader = nameSize + 4 + 4 + 4*4
	mipTexType = 0x43
)

// Build returns a WAD3 package holding the given textures.
func Build(textures ...Texture) []byte {
	var lumps [][]byte
	size := headerSize
	for _, tex := range textures {
		lump := mipTex(tex)
		lumps = append(lumps, lump)
		size += len(lump)
	}

	var buf bytes.Buffer
	buf.WriteString("WAD3")
	binary.Write(&buf, binary.LittleEndian, int32(len(textures)))
	binary.Write(&buf, binary.LittleEndian, int32(size))
	for _, lump := range lumps {
		buf.Write(lump)
	}

	offset := headerSize
	for i, tex := range textures {
		binary.Write(&buf, binary.LittleEndian, int32(offset))
		binary.Write(&buf, binary.LittleEndian, int32(len(lumps[i])))
		binary.Write(&buf, binary.LittleEndian, int32(len(lumps[i])))
		buf.Write([]byte{mipTexType, 0, 0, 0})
		buf.Write(fixed(tex.Name))
		offset += len(lumps[i])
	}
	return buf.Bytes()
}

// Write stores a generated package at path.
func Write(t testing.TB, path string, textures ...Texture) {
	t.Helper()
	if err := os.WriteFile(path, Build(textures...), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func mipTex(tex Texture) []byte {
	var buf bytes.Buffer
	buf.Write(fixed(tex.Name))
	binary.Write(&buf, binary.LittleEndian, uint32(tex.Width))
	binary.Write(&buf, binary.LittleEndian, uint32(tex.Height))

	offset := lumpHeader
	for level := 0; level < 4; level++ {
		binary.Write(&buf, binary.LittleEndian, uint32(offset))
		offset += (tex.Width >> level) * (tex.Height >> level)
	}
	for level := 0; level < 4; level++ {
		n := (tex.Width >> level) * (tex.Height >> level)
		for i := 0; i < n; i++ {
			buf.WriteByte(byte(i % 256))
		}
	}

	binary.Write(&buf, binary.LittleEndian, uint16(256))
	for i := 0; i < 256; i++ {
		buf.Write([]byte{byte(i), byte(255 - i), byte(i / 2)})
	}
	buf.Write([]byte{0, 0})
	return buf.Bytes()
}

func fixed(name string) []byte {
	b := make([]byte, nameSize)
	copy(b, name)
	return b
}
