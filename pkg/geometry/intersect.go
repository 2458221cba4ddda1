package geometry

import (
	stdmath "math"

	"github.com/Faultbox/map2prop/pkg/math"
)

// FaceData is the unordered polygon produced for one bounding plane.
type FaceData struct {
	Plane   int // index into the input planes
	Points  []math.Vec3
	Normal  math.Vec3
	Texture Texture
}

// IntersectPlanes returns the single point shared by three planes. The second
// return value is false when two of the planes are parallel or coincident.
func IntersectPlanes(p1, p2, p3 math.Plane) (math.Vec3, bool) {
	n1, d1 := p1.Normal, p1.Distance
	n2, d2 := p2.Normal, p2.Distance
	n3, d3 := p3.Normal, p3.Distance

	denominator := n1.Dot(n2.Cross(n3))
	if stdmath.Abs(denominator) < math.Epsilon {
		return math.Vec3{}, false
	}

	return n2.Cross(n3).Scale(d1).
		Add(n3.Cross(n1).Scale(d2)).
		Add(n1.Cross(n2).Scale(d3)).
		Div(denominator), true
}

// IsOutsidePlanes reports whether v lies strictly in front of any plane.
func IsOutsidePlanes(v math.Vec3, planes []FacePlane) bool {
	for _, pl := range planes {
		if pl.Relation(v) == math.Front {
			return true
		}
	}
	return false
}

// FacesFromPlanes reconstructs the faces of a convex brush from its bounding
// planes. Every triple of planes meeting in a point inside the brush adds that
// point to all three faces. Faces left with fewer than three distinct points
// are not returned; their plane indices are reported in dropped.
func FacesFromPlanes(planes []FacePlane) (faces []FaceData, dropped []int) {
	n := len(planes)
	points := make([][]math.Vec3, n)

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			for k := j + 1; k < n; k++ {
				v, ok := IntersectPlanes(planes[i].Plane, planes[j].Plane, planes[k].Plane)
				if !ok {
					continue
				}
				if IsOutsidePlanes(v, planes) {
					continue
				}
				points[i] = append(points[i], v)
				points[j] = append(points[j], v)
				points[k] = append(points[k], v)
			}
		}
	}

	for i, pl := range planes {
		unique := UniquePoints(points[i])
		if len(unique) < 3 {
			dropped = append(dropped, i)
			continue
		}
		faces = append(faces, FaceData{
			Plane:   i,
			Points:  unique,
			Normal:  pl.Normal,
			Texture: pl.Texture,
		})
	}
	return faces, dropped
}

// UniquePoints drops points equal within math.Epsilon to an earlier point.
func UniquePoints(points []math.Vec3) []math.Vec3 {
	unique := make([]math.Vec3, 0, len(points))
	for _, p := range points {
		seen := false
		for _, u := range unique {
			if p.Eq(u) {
				seen = true
				break
			}
		}
		if !seen {
			unique = append(unique, p)
		}
	}
	return unique
}
