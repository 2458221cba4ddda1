package brush

import (
	"fmt"

	"github.com/Faultbox/map2prop/pkg/geometry"
	"github.com/Faultbox/map2prop/pkg/math"
)

// UVProjector maps a point on a face to texture space.
type UVProjector func(point math.Vec3, tex geometry.Texture) (math.Vec2, error)

// Face is one side of a brush. Points are in winding order for renderable
// faces. Polygons holds the triangulated, textured geometry and is empty for
// skip and tool textured faces.
type Face struct {
	Points   []math.Vec3
	Normal   math.Vec3
	Texture  geometry.Texture
	Polygons []geometry.Polygon
}

// NewFace orders points around normal, projects texture coordinates and
// triangulates the result. Faces that do not render keep their points for
// bounds and classification only.
func NewFace(points []math.Vec3, normal math.Vec3, tex geometry.Texture, project UVProjector, opts geometry.TriangulateOptions) (*Face, error) {
	face := &Face{Points: points, Normal: normal, Texture: tex}
	if !face.Renderable() {
		return face, nil
	}

	sorted, err := geometry.SortVertices(points, normal)
	if err != nil {
		return nil, fmt.Errorf("face %q: %w", tex.Name, err)
	}
	face.Points = sorted

	vertices := make([]geometry.Vertex, len(sorted))
	for i, p := range sorted {
		uv, err := project(p, tex)
		if err != nil {
			return nil, fmt.Errorf("face %q: %w", tex.Name, err)
		}
		vertices[i] = geometry.Vertex{Position: p, UV: uv, Normal: normal}
	}

	tris, err := geometry.EarClipIndices(sorted, normal, opts)
	if err != nil {
		return nil, fmt.Errorf("face %q: %w", tex.Name, err)
	}
	face.Polygons = polygonsFromIndices(vertices, tris, tex.Name)
	return face, nil
}

// NewFaceWithUVs builds a face from vertices that already carry texture
// coordinates. The winding is kept as given.
func NewFaceWithUVs(vertices []geometry.Vertex, normal math.Vec3, tex geometry.Texture, opts geometry.TriangulateOptions) (*Face, error) {
	points := make([]math.Vec3, len(vertices))
	for i, v := range vertices {
		points[i] = v.Position
	}
	face := &Face{Points: points, Normal: normal, Texture: tex}
	if !face.Renderable() {
		return face, nil
	}

	withNormals := make([]geometry.Vertex, len(vertices))
	for i, v := range vertices {
		v.Normal = normal
		withNormals[i] = v
	}

	tris, err := geometry.Triangulate(points, opts)
	if err != nil {
		return nil, fmt.Errorf("face %q: %w", tex.Name, err)
	}
	face.Polygons = polygonsFromIndices(withNormals, tris, tex.Name)
	return face, nil
}

// Renderable reports whether the face produces polygons.
func (f *Face) Renderable() bool {
	return IsRenderable(f.Texture.Name)
}

func polygonsFromIndices(vertices []geometry.Vertex, tris [][3]int, texture string) []geometry.Polygon {
	polygons := make([]geometry.Polygon, len(tris))
	for i, tri := range tris {
		polygons[i] = geometry.Polygon{
			Vertices: []geometry.Vertex{vertices[tri[0]], vertices[tri[1]], vertices[tri[2]]},
			Texture:  texture,
		}
	}
	return polygons
}
