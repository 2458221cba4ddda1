package formats

import (
	"bytes"
	"encoding/binary"
	"fmt"
	stdmath "math"
	"strings"

	"github.com/Faultbox/map2prop/pkg/brush"
	"github.com/Faultbox/map2prop/pkg/math"
)

// fixture builds little-endian binary test files.
type fixture struct {
	bytes.Buffer
}

func (f *fixture) i32(v int32)   { binary.Write(&f.Buffer, binary.LittleEndian, v) }
func (f *fixture) u32(v uint32)  { binary.Write(&f.Buffer, binary.LittleEndian, v) }
func (f *fixture) i16(v int16)   { binary.Write(&f.Buffer, binary.LittleEndian, v) }
func (f *fixture) f32(v float64) { binary.Write(&f.Buffer, binary.LittleEndian, float32(v)) }
func (f *fixture) f64(v float64) { binary.Write(&f.Buffer, binary.LittleEndian, v) }
func (f *fixture) pad(n int)     { f.Write(make([]byte, n)) }

func (f *fixture) vec(v math.Vec3) {
	f.f32(v.X)
	f.f32(v.Y)
	f.f32(v.Z)
}

func (f *fixture) fixed(s string, n int) {
	b := make([]byte, n)
	copy(b, s)
	f.Write(b)
}

// byteStr writes a string with a one byte length that counts the null.
func (f *fixture) byteStr(s string) {
	f.WriteByte(byte(len(s) + 1))
	f.WriteString(s)
	f.WriteByte(0)
}

// intStr writes a string with an int32 length, -1 for empty strings.
func (f *fixture) intStr(s string) {
	if s == "" {
		f.i32(-1)
		return
	}
	f.i32(int32(len(s) + 1))
	f.WriteString(s)
	f.WriteByte(0)
}

// boxFace is one side of an axis-aligned cube.
type boxFace struct {
	normal, center, u, v math.Vec3
}

// cubeFaces returns the faces of a cube spanning -size..size around center,
// in the order +x, -x, +y, -y, +z, -z.
func cubeFaces(center math.Vec3, size float64) []boxFace {
	normals := []math.Vec3{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}, {Z: 1}, {Z: -1}}
	faces := make([]boxFace, len(normals))
	for i, n := range normals {
		u := math.Vec3{X: 1}
		if stdmath.Abs(n.X) > 0.5 {
			u = math.Vec3{Y: 1}
		}
		faces[i] = boxFace{
			normal: n,
			center: center.Add(n.Scale(size)),
			u:      u.Scale(size),
			v:      n.Cross(u).Scale(size),
		}
	}
	return faces
}

// ccw returns the corners counter-clockwise around the outward normal.
func (f boxFace) ccw() []math.Vec3 {
	c, u, v := f.center, f.u, f.v
	return []math.Vec3{
		c.Sub(u).Sub(v),
		c.Add(u).Sub(v),
		c.Add(u).Add(v),
		c.Sub(u).Add(v),
	}
}

// cw returns the corners in the clockwise order editors store.
func (f boxFace) cw() []math.Vec3 {
	pts := f.ccw()
	return []math.Vec3{pts[3], pts[2], pts[1], pts[0]}
}

// planePoints returns three points in the order editors store them.
func (f boxFace) planePoints() [3]math.Vec3 {
	c, u, v := f.center, f.u, f.v
	return [3]math.Vec3{c.Add(u).Add(v), c.Add(u), c}
}

// mapPlaneLine formats a Valve 220 plane line.
func mapPlaneLine(pts [3]math.Vec3, texture string) string {
	var b strings.Builder
	for _, p := range pts {
		fmt.Fprintf(&b, "( %g %g %g ) ", p.X, p.Y, p.Z)
	}
	fmt.Fprintf(&b, "%s [ 1 0 0 0 ] [ 0 -1 0 0 ] 0 1 1", texture)
	return b.String()
}

// mapBrush formats a cube brush with one texture per face.
func mapBrush(center math.Vec3, size float64, textures [6]string) string {
	var b strings.Builder
	b.WriteString("{\n")
	for i, f := range cubeFaces(center, size) {
		b.WriteString(mapPlaneLine(f.planePoints(), textures[i]))
		b.WriteString("\n")
	}
	b.WriteString("}\n")
	return b.String()
}

func allFaces(name string) [6]string {
	return [6]string{name, name, name, name, name, name}
}

// fakeResolver serves fixed sizes and reports unknown names as missing.
type fakeResolver struct {
	sizes map[string][2]int
	wads  []string
	calls int
}

func (r *fakeResolver) Resolve(name string) (brush.TextureInfo, error) {
	r.calls++
	size, ok := r.sizes[name]
	if !ok {
		return brush.TextureInfo{Width: 16, Height: 16, Missing: true}, nil
	}
	return brush.TextureInfo{Width: size[0], Height: size[1]}, nil
}

func (r *fakeResolver) SetWadList(wads []string) {
	r.wads = wads
}

func near(a, b float64) bool {
	return stdmath.Abs(a-b) < 1e-6
}
