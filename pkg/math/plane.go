package math

import "math"

// Side classifies a point against a plane.
type Side int

// Point-plane relations.
const (
	Back  Side = -1
	On    Side = 0
	Front Side = 1
)

// String returns a human-readable side name.
func (s Side) String() string {
	switch s {
	case Back:
		return "Back"
	case On:
		return "On"
	case Front:
		return "Front"
	default:
		return "Unknown"
	}
}

// Plane is a plane in Hessian normal form: normal·p = Distance.
type Plane struct {
	Normal   Vec3
	Distance float64
}

// SegmentsCross returns the cross product of segments BC and BA, (c-b)×(a-b).
// Counter-clockwise a, b, c yield a vector along the front face normal.
func SegmentsCross(a, b, c Vec3) Vec3 {
	return c.Sub(b).Cross(a.Sub(b))
}

// PlaneFromPoints derives the plane through a, b and c. The second return
// value is false when the points are collinear.
func PlaneFromPoints(a, b, c Vec3) (Plane, bool) {
	cross := SegmentsCross(a, b, c)
	if cross.Length() < Epsilon*Epsilon {
		return Plane{}, false
	}
	n := cross.Normalize()
	return Plane{Normal: n, Distance: n.Dot(a)}, true
}

// PolygonNormal returns the normal derived from the first three points.
func PolygonNormal(points []Vec3) Vec3 {
	if len(points) < 3 {
		return Vec3{}
	}
	return SegmentsCross(points[0], points[1], points[2]).Normalize()
}

// DistanceTo returns the signed distance from the plane to p.
func (pl Plane) DistanceTo(p Vec3) float64 {
	return pl.Normal.Dot(p.Sub(pl.Normal.Scale(pl.Distance)))
}

// Relation classifies p as in front of, behind, or on the plane.
func (pl Plane) Relation(p Vec3) Side {
	d := pl.DistanceTo(p)
	if math.Abs(d) < Epsilon {
		return On
	}
	if d > 0 {
		return Front
	}
	return Back
}
