package formats

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/Faultbox/map2prop/pkg/brush"
	"github.com/Faultbox/map2prop/pkg/geometry"
	"github.com/Faultbox/map2prop/pkg/math"
)

// RMF format errors.
var (
	ErrInvalidRMFMagic  = errors.New("invalid RMF magic: expected 'RMF'")
	ErrTruncatedRMFData = errors.New("truncated RMF data")
	ErrUnknownRMFObject = errors.New("unknown RMF object type")
)

// Fixed field sizes of the RMF layout.
const (
	rmfNameSize        = 128
	rmfTextureNameSize = 260
)

type rmfFace struct {
	texture geometry.Texture
	points  []math.Vec3
	plane   [3]math.Vec3
}

type rmfParser struct {
	r          *binReader
	sb         *sceneBuilder
	worldspawn *brush.Entity
}

// ParseRMF parses a Worldcraft .rmf file. Faces are stored as ordered point
// lists, so no plane intersection is needed.
func ParseRMF(data []byte, opts ReadOptions) (*Scene, error) {
	sb := newSceneBuilder(brush.FormatRMF, opts)
	if err := parseRMFInto(data, sb); err != nil {
		return nil, err
	}
	return sb.build()
}

// ParseRMFFile parses an .rmf file from disk.
func ParseRMFFile(path string, opts ReadOptions) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading RMF file: %w", err)
	}
	return ParseRMF(data, opts)
}

func parseRMFInto(data []byte, sb *sceneBuilder) error {
	if len(data) < 7 {
		return ErrTruncatedRMFData
	}
	if string(data[4:7]) != "RMF" {
		return ErrInvalidRMFMagic
	}

	p := &rmfParser{
		r:          newBinReader(data, ErrTruncatedRMFData),
		sb:         sb,
		worldspawn: brush.NewEntity(brush.Worldspawn, brush.FormatRMF),
	}
	sb.addEntity(p.worldspawn)

	p.r.float32("version")
	p.r.skip(3, "magic")

	visgroups := p.r.count("visgroup count")
	for i := 0; i < visgroups; i++ {
		p.readVisgroup()
	}

	p.r.byteString("world class")
	p.r.skip(7, "world header")

	objects := p.r.count("object count")
	for i := 0; i < objects && p.r.err == nil; i++ {
		if err := p.readObject(p.worldspawn); err != nil {
			return err
		}
	}

	p.r.byteString("world classname")
	p.r.skip(4, "world header")
	spawnflags := p.r.int32("world spawnflags")
	p.readProperties(p.worldspawn)
	p.r.skip(12, "world trailer")
	setSpawnflags(p.worldspawn, spawnflags)

	// Paths are optional in prefab payloads.
	if p.r.err == nil && p.r.remaining() >= 4 {
		paths := p.r.count("path count")
		for i := 0; i < paths; i++ {
			p.readPath()
		}
	}
	return p.r.err
}

func (p *rmfParser) readVisgroup() {
	p.r.skip(rmfNameSize, "visgroup name")
	p.r.skip(3, "visgroup colour")
	p.r.skip(1, "visgroup padding")
	p.r.int32("visgroup id")
	p.r.uint8("visgroup visibility")
	p.r.skip(3, "visgroup padding")
}

// readObject reads a solid, entity or group. Loose solids and the contents
// of groups belong to parent.
func (p *rmfParser) readObject(parent *brush.Entity) error {
	typename := p.r.byteString("object type")
	if p.r.err != nil {
		return p.r.err
	}
	switch typename {
	case "CMapSolid":
		p.readSolid(parent)
	case "CMapEntity":
		p.readEntity()
	case "CMapGroup":
		p.r.int32("group visgroup")
		p.r.skip(3, "group colour")
		children := p.r.count("group object count")
		for i := 0; i < children && p.r.err == nil; i++ {
			if err := p.readObject(parent); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownRMFObject, typename)
	}
	return p.r.err
}

func (p *rmfParser) readSolid(owner *brush.Entity) {
	p.r.int32("solid visgroup")
	p.r.skip(3, "solid colour")
	p.r.skip(4, "solid padding")

	n := p.r.count("face count")
	faces := make([]rmfFace, 0, n)
	for i := 0; i < n && p.r.err == nil; i++ {
		face, err := p.readFace()
		if err != nil {
			p.r.err = err
			return
		}
		faces = append(faces, face)
	}
	if p.r.err != nil {
		return
	}

	opts := p.sb.opts.Triangulate
	p.sb.addBrush(owner, func() (*brush.Brush, []int, error) {
		return buildRMFBrush(faces, opts)
	})
}

func (p *rmfParser) readFace() (rmfFace, error) {
	var face rmfFace
	tex := geometry.Texture{Name: p.r.fixedString(rmfTextureNameSize, "texture name")}
	tex.RightAxis = p.r.vec3("right axis")
	tex.ShiftX = p.r.float32("shift x")
	tex.DownAxis = p.r.vec3("down axis")
	tex.ShiftY = p.r.float32("shift y")
	tex.Angle = p.r.float32("angle")
	tex.ScaleX = p.r.float32("scale x")
	tex.ScaleY = p.r.float32("scale y")
	p.r.skip(16, "face padding")

	n := p.r.count("vertex count")
	face.points = make([]math.Vec3, n)
	for i := n - 1; i >= 0; i-- {
		face.points[i] = p.r.vec3("vertex")
	}
	for i := range face.plane {
		face.plane[i] = p.r.vec3("plane point")
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

func buildRMFBrush(faces []rmfFace, opts geometry.TriangulateOptions) (*brush.Brush, []int, error) {
	b := &brush.Brush{Format: brush.FormatRMF}
	for i, rf := range faces {
		pl, err := geometry.NewFacePlane(rf.plane, rf.texture)
		if err != nil {
			return nil, nil, fmt.Errorf("face %d: %w", i, err)
		}
		face, err := brush.NewFace(rf.points, pl.Normal, rf.texture, geometry.ProjectUV, opts)
		if err != nil {
			return nil, nil, fmt.Errorf("face %d: %w", i, err)
		}
		b.Faces = append(b.Faces, face)
	}
	return b, nil, nil
}

func (p *rmfParser) readEntity() {
	p.r.int32("entity visgroup")
	p.r.skip(3, "entity colour")

	e := brush.NewEntity("", brush.FormatRMF)
	p.sb.addEntity(e)

	solids := p.r.count("entity solid count")
	for i := 0; i < solids && p.r.err == nil; i++ {
		p.r.byteString("solid type")
		p.readSolid(e)
	}

	e.Classname = p.r.byteString("classname")
	p.r.skip(4, "entity padding")
	spawnflags := p.r.int32("spawnflags")
	p.readProperties(e)
	p.r.skip(14, "entity padding")
	setSpawnflags(e, spawnflags)
	p.r.vec3("entity origin")
	p.r.skip(4, "entity padding")
}

func (p *rmfParser) readProperties(e *brush.Entity) {
	n := p.r.count("property count")
	for i := 0; i < n && p.r.err == nil; i++ {
		key := p.r.byteString("property key")
		e.SetProperty(key, p.r.byteString("property value"))
	}
}

func (p *rmfParser) readPath() {
	p.r.skip(rmfNameSize, "path name")
	p.r.skip(rmfNameSize, "path class")
	p.r.int32("path type")
	nodes := p.r.count("path node count")
	for i := 0; i < nodes && p.r.err == nil; i++ {
		p.r.vec3("node position")
		p.r.int32("node index")
		p.r.skip(rmfNameSize, "node name")
		props := p.r.count("node property count")
		for j := 0; j < props && p.r.err == nil; j++ {
			p.r.byteString("node key")
			p.r.byteString("node value")
		}
	}
}

func setSpawnflags(e *brush.Entity, spawnflags int32) {
	if _, ok := e.Properties["spawnflags"]; !ok {
		e.SetProperty("spawnflags", strconv.Itoa(int(spawnflags)))
	}
}
