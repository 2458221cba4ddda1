package geometry

import "github.com/Faultbox/map2prop/pkg/math"

// Vertex is a polygon corner with its texture coordinate and normal.
// Flipped marks vertices of mirrored (back face) duplicates.
type Vertex struct {
	Position math.Vec3
	UV       math.Vec2
	Normal   math.Vec3
	Flipped  bool
}

// Polygon is an ordered, coplanar list of vertices sharing one texture.
type Polygon struct {
	Vertices []Vertex
	Texture  string
	Flipped  bool
}

// Normal derives the polygon normal from its first three vertices.
func (p *Polygon) Normal() math.Vec3 {
	if len(p.Vertices) < 3 {
		return math.Vec3{}
	}
	return math.SegmentsCross(
		p.Vertices[0].Position,
		p.Vertices[1].Position,
		p.Vertices[2].Position,
	).Normalize()
}

// Points returns the vertex positions.
func (p *Polygon) Points() []math.Vec3 {
	points := make([]math.Vec3, len(p.Vertices))
	for i, v := range p.Vertices {
		points[i] = v.Position
	}
	return points
}

// Clone returns a deep copy of p.
func (p Polygon) Clone() Polygon {
	p.Vertices = append([]Vertex(nil), p.Vertices...)
	return p
}

// FlipPolygons returns back-facing duplicates of polygons: reversed winding,
// negated normals, and every vertex marked as flipped.
func FlipPolygons(polygons []Polygon) []Polygon {
	flipped := make([]Polygon, 0, len(polygons))
	for _, poly := range polygons {
		n := len(poly.Vertices)
		vertices := make([]Vertex, n)
		for i, v := range poly.Vertices {
			vertices[n-1-i] = Vertex{
				Position: v.Position,
				UV:       v.UV,
				Normal:   v.Normal.Neg(),
				Flipped:  true,
			}
		}
		flipped = append(flipped, Polygon{Vertices: vertices, Texture: poly.Texture, Flipped: true})
	}
	return flipped
}
