package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/map2prop/pkg/brush"
	"github.com/Faultbox/map2prop/pkg/encoding"
	"github.com/Faultbox/map2prop/pkg/geometry"
	"github.com/Faultbox/map2prop/pkg/math"
)

// OBJ format errors.
var (
	ErrInvalidOBJData = errors.New("invalid OBJ data")
)

type objFace struct {
	texture  geometry.Texture
	normal   math.Vec3
	vertices []geometry.Vertex
}

type objParser struct {
	sb        *sceneBuilder
	entity    *brush.Entity
	positions []math.Vec3
	uvs       []math.Vec2
	normals   []math.Vec3
	texture   geometry.Texture
	faces     []objFace
	line      int
}

// ParseOBJ parses a Wavefront .obj file as exported by J.A.C.K. Every group
// becomes one brush of a single worldspawn entity. Coordinates are converted
// from the Y-up export to the editor's Z-up space.
func ParseOBJ(data []byte, opts ReadOptions) (*Scene, error) {
	p := &objParser{
		sb:     newSceneBuilder(brush.FormatOBJ, opts),
		entity: brush.NewEntity(brush.Worldspawn, brush.FormatOBJ),
	}
	p.sb.addEntity(p.entity)
	p.texture = geometry.NewTexture("null")

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	for sc.Scan() {
		p.line++
		line := strings.TrimSpace(encoding.Windows1252ToUTF8(sc.Bytes()))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := p.parseLine(line); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading OBJ data: %w", err)
	}
	p.flushGroup()
	return p.sb.build()
}

// ParseOBJFile parses an .obj file from disk.
func ParseOBJFile(path string, opts ReadOptions) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading OBJ file: %w", err)
	}
	return ParseOBJ(data, opts)
}

func (p *objParser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrInvalidOBJData, p.line, fmt.Sprintf(format, args...))
}

func (p *objParser) parseLine(line string) error {
	keyword, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch keyword {
	case "v", "vn":
		nums, err := p.floats(rest, 3)
		if err != nil {
			return err
		}
		v := math.Vec3{X: nums[0], Y: -nums[2], Z: nums[1]}
		if keyword == "v" {
			p.positions = append(p.positions, v)
		} else {
			p.normals = append(p.normals, v)
		}
	case "vt":
		nums, err := p.floats(rest, 2)
		if err != nil {
			return err
		}
		p.uvs = append(p.uvs, math.Vec2{X: nums[0], Y: nums[1]})
	case "o", "g":
		p.flushGroup()
	case "usemtl":
		tex, err := p.sb.textures.texture(geometry.NewTexture(rest))
		if err != nil {
			return err
		}
		p.texture = tex
	case "f":
		return p.parseFace(rest)
	}
	// mtllib and smoothing groups carry nothing the converter needs.
	return nil
}

func (p *objParser) floats(s string, n int) ([]float64, error) {
	fields := strings.Fields(s)
	if len(fields) < n {
		return nil, p.errorf("expected %d numbers, got %q", n, s)
	}
	nums := make([]float64, n)
	for i := 0; i < n; i++ {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, p.errorf("%v", err)
		}
		nums[i] = v
	}
	return nums, nil
}

// index resolves a 1-based, possibly negative OBJ index.
func (p *objParser) index(s string, n int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, p.errorf("invalid index %q", s)
	}
	if i < 0 {
		i = n + i + 1
	}
	if i < 1 || i > n {
		return 0, p.errorf("index %d out of range", i)
	}
	return i - 1, nil
}

func (p *objParser) parseFace(rest string) error {
	corners := strings.Fields(rest)
	if len(corners) < 3 {
		return p.errorf("face with %d vertices", len(corners))
	}

	face := objFace{texture: p.texture, vertices: make([]geometry.Vertex, len(corners))}
	for i, corner := range corners {
		parts := strings.Split(corner, "/")
		vi, err := p.index(parts[0], len(p.positions))
		if err != nil {
			return err
		}
		v := geometry.Vertex{Position: p.positions[vi]}
		if len(parts) > 1 && parts[1] != "" {
			ti, err := p.index(parts[1], len(p.uvs))
			if err != nil {
				return err
			}
			v.UV = p.uvs[ti]
		}
		if i == 0 && len(parts) > 2 && parts[2] != "" {
			ni, err := p.index(parts[2], len(p.normals))
			if err != nil {
				return err
			}
			face.normal = p.normals[ni].Normalize()
		}
		face.vertices[i] = v
	}
	if face.normal.IsZero() {
		points := make([]math.Vec3, len(face.vertices))
		for i, v := range face.vertices {
			points[i] = v.Position
		}
		face.normal = geometry.NewellNormal(points)
	}
	p.faces = append(p.faces, face)
	return nil
}

// flushGroup turns the faces collected since the last group into a brush.
func (p *objParser) flushGroup() {
	if len(p.faces) == 0 {
		return
	}
	faces := p.faces
	p.faces = nil

	opts := p.sb.opts.Triangulate
	p.sb.addBrush(p.entity, func() (*brush.Brush, []int, error) {
		b := &brush.Brush{Format: brush.FormatOBJ}
		for i, of := range faces {
			face, err := brush.NewFaceWithUVs(of.vertices, of.normal, of.texture, opts)
			if err != nil {
				return nil, nil, fmt.Errorf("face %d: %w", i, err)
			}
			b.Faces = append(b.Faces, face)
		}
		return b, nil, nil
	})
}
