package formats

import (
	"errors"
	"fmt"
	"os"

	"github.com/Faultbox/map2prop/pkg/brush"
	"github.com/Faultbox/map2prop/pkg/geometry"
	"github.com/Faultbox/map2prop/pkg/math"
)

// JMF format errors.
var (
	ErrInvalidJMFMagic       = errors.New("invalid JMF magic: expected 'JHMF'")
	ErrUnsupportedJMFVersion = errors.New("unsupported JMF version")
	ErrTruncatedJMFData      = errors.New("truncated JMF data")
)

// JMF versions. 122 added background images to the header.
const (
	JMFVersion121 = 121
	JMFVersion122 = 122
)

const (
	jmfTextureNameSize = 64
	jmfCurvePoints     = 1024
	jmfEntityStrings   = 13
)

type jmfFace struct {
	texture  geometry.Texture
	normal   math.Vec3
	vertices []geometry.Vertex
}

type jmfParser struct {
	r       *binReader
	sb      *sceneBuilder
	version int32
}

// ParseJMF parses a J.A.C.K .jmf file. Face vertices carry their own texture
// coordinates.
func ParseJMF(data []byte, opts ReadOptions) (*Scene, error) {
	if len(data) < 8 {
		return nil, ErrTruncatedJMFData
	}
	if string(data[0:4]) != "JHMF" {
		return nil, ErrInvalidJMFMagic
	}

	p := &jmfParser{
		r:  newBinReader(data[4:], ErrTruncatedJMFData),
		sb: newSceneBuilder(brush.FormatJMF, opts),
	}
	p.version = p.r.int32("version")
	if p.version != JMFVersion121 && p.version != JMFVersion122 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedJMFVersion, p.version)
	}

	paths := p.r.count("export path count")
	for i := 0; i < paths; i++ {
		p.r.intString("export path")
	}
	if p.version >= JMFVersion122 {
		for i := 0; i < 3; i++ {
			p.readBackgroundImage()
		}
	}

	groups := p.r.count("group count")
	for i := 0; i < groups; i++ {
		p.r.skip(4*4+4, "group")
	}
	visgroups := p.r.count("visgroup count")
	for i := 0; i < visgroups; i++ {
		p.r.intString("visgroup name")
		p.r.skip(4+4+1, "visgroup")
	}
	p.r.vec3("cordon min")
	p.r.vec3("cordon max")

	cameras := p.r.count("camera count")
	for i := 0; i < cameras; i++ {
		p.r.skip(12+12+4+4, "camera")
	}
	pathCount := p.r.count("path count")
	for i := 0; i < pathCount; i++ {
		p.readPath()
	}
	if p.r.err != nil {
		return nil, p.r.err
	}

	// Entities run to the end of the file.
	for p.r.remaining() >= 4 {
		if err := p.readEntity(); err != nil {
			return nil, err
		}
	}
	return p.sb.build()
}

// ParseJMFFile parses a .jmf file from disk.
func ParseJMFFile(path string, opts ReadOptions) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading JMF file: %w", err)
	}
	return ParseJMF(data, opts)
}

func (p *jmfParser) readBackgroundImage() {
	p.r.intString("background image path")
	p.r.float64("background scale")
	p.r.skip(6*4, "background settings")
}

func (p *jmfParser) readPath() {
	p.r.intString("path classname")
	p.r.intString("path name")
	p.r.skip(4+4+4, "path header")
	nodes := p.r.count("path node count")
	for i := 0; i < nodes && p.r.err == nil; i++ {
		p.r.intString("node name")
		p.r.intString("node target")
		p.r.skip(12+12+4+4, "node")
		props := p.r.count("node property count")
		for j := 0; j < props && p.r.err == nil; j++ {
			p.r.intString("node key")
			p.r.intString("node value")
		}
	}
}

func (p *jmfParser) readEntity() error {
	e := brush.NewEntity(p.r.intString("classname"), brush.FormatJMF)
	p.r.vec3("entity origin")
	p.r.skip(4*3+4, "entity editor state")
	for i := 0; i < jmfEntityStrings; i++ {
		p.r.intString("entity special attribute")
	}
	spawnflags := p.r.int32("spawnflags")
	p.r.vec3("entity angles")
	p.r.skip(4+4+4+4, "entity render settings")
	p.r.int16("body")
	p.r.int16("skin")
	p.r.skip(4*4, "entity sequence settings")
	p.r.skip(28, "entity padding")

	props := p.r.count("property count")
	for i := 0; i < props && p.r.err == nil; i++ {
		key := p.r.intString("property key")
		e.SetProperty(key, p.r.intString("property value"))
	}
	setSpawnflags(e, spawnflags)

	visgroups := p.r.count("entity visgroup count")
	p.r.skip(visgroups*4, "entity visgroups")
	if p.r.err != nil {
		return p.r.err
	}
	p.sb.addEntity(e)

	brushes := p.r.count("brush count")
	for i := 0; i < brushes && p.r.err == nil; i++ {
		if err := p.readBrush(e); err != nil {
			return err
		}
	}
	return p.r.err
}

func (p *jmfParser) readBrush(owner *brush.Entity) error {
	curves := p.r.count("curve count")
	p.r.skip(4*3+4, "brush editor state")
	visgroups := p.r.count("brush visgroup count")
	p.r.skip(visgroups*4, "brush visgroups")

	n := p.r.count("face count")
	faces := make([]jmfFace, 0, n)
	for i := 0; i < n && p.r.err == nil; i++ {
		face, err := p.readFace()
		if err != nil {
			return err
		}
		faces = append(faces, face)
	}
	for i := 0; i < curves && p.r.err == nil; i++ {
		p.readCurve()
	}
	if p.r.err != nil {
		return p.r.err
	}

	opts := p.sb.opts.Triangulate
	p.sb.addBrush(owner, func() (*brush.Brush, []int, error) {
		b := &brush.Brush{Format: brush.FormatJMF}
		for i, jf := range faces {
			face, err := brush.NewFaceWithUVs(jf.vertices, jf.normal, jf.texture, opts)
			if err != nil {
				return nil, nil, fmt.Errorf("face %d: %w", i, err)
			}
			b.Faces = append(b.Faces, face)
		}
		return b, nil, nil
	})
	return nil
}

func (p *jmfParser) readFace() (jmfFace, error) {
	var face jmfFace
	p.r.int32("render flags")
	n := p.r.count("vertex count")

	var tex geometry.Texture
	tex.RightAxis = p.r.vec3("right axis")
	tex.ShiftX = p.r.float32("shift x")
	tex.DownAxis = p.r.vec3("down axis")
	tex.ShiftY = p.r.float32("shift y")
	tex.ScaleX = p.r.float32("scale x")
	tex.ScaleY = p.r.float32("scale y")
	tex.Angle = p.r.float32("angle")
	p.r.int32("texture alignment")
	p.r.skip(12, "face padding")
	p.r.int32("contents")
	tex.Name = p.r.fixedString(jmfTextureNameSize, "texture name")
	face.normal = p.r.vec3("face normal")
	p.r.float32("face distance")
	p.r.int32("aligned axis")

	face.vertices = make([]geometry.Vertex, n)
	for i := 0; i < n; i++ {
		pos := p.r.vec3("vertex")
		u := p.r.float32("vertex u")
		v := p.r.float32("vertex v")
		p.r.float32("vertex selection")
		face.vertices[i] = geometry.Vertex{Position: pos, UV: math.Vec2{X: u, Y: -v}}
	}
	if p.r.err != nil {
		return face, p.r.err
	}

	resolved, err := p.sb.textures.texture(tex)
	if err != nil {
		return face, err
	}
	face.texture = resolved
	return face, nil
}

// readCurve skips a patch. Patches are not converted.
func (p *jmfParser) readCurve() {
	p.r.skip(4+4, "curve size")
	p.r.skip(12+4+12+4+4*3, "curve texture")
	p.r.skip(16+4, "curve flags")
	p.r.skip(jmfTextureNameSize, "curve texture name")
	p.r.skip(4, "curve padding")
	p.r.skip(jmfCurvePoints*36, "curve points")
}
