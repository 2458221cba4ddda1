package encoding

import (
	"bytes"
	"testing"
)

func TestWindows1252ToUTF8(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"ascii", []byte("stone01"), "stone01"},
		{"e acute", []byte{'c', 'a', 'f', 0xE9}, "café"},
		{"euro", []byte{0x80}, "€"},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Windows1252ToUTF8(tt.data); got != tt.want {
				t.Errorf("Windows1252ToUTF8 = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFixedStringRoundTrip(t *testing.T) {
	field := UTF8ToFixedString("{fence", 16)
	if len(field) != 16 {
		t.Fatalf("len = %d, want 16", len(field))
	}
	if got := FixedStringToUTF8(field); got != "{fence" {
		t.Errorf("FixedStringToUTF8 = %q, want {fence", got)
	}
}

func TestFixedStringStopsAtNull(t *testing.T) {
	data := []byte{'a', 'b', 0, 'j', 'u', 'n', 'k'}
	if got := FixedStringToUTF8(data); got != "ab" {
		t.Errorf("FixedStringToUTF8 = %q, want ab", got)
	}
}

func TestTrimNull(t *testing.T) {
	if got := TrimNullBytes([]byte("abc\x00\x00")); !bytes.Equal(got, []byte("abc")) {
		t.Errorf("TrimNullBytes = %q, want abc", got)
	}
	if got := TrimNullString([]byte("abc\x00")); got != "abc" {
		t.Errorf("TrimNullString = %q, want abc", got)
	}
}

func TestNormalizeTextureName(t *testing.T) {
	if got := NormalizeTextureName(" Stone01 "); got != "stone01" {
		t.Errorf("NormalizeTextureName = %q, want stone01", got)
	}
}
