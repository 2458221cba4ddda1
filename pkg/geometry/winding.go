package geometry

import "github.com/Faultbox/map2prop/pkg/math"

// SortVertices orders coplanar points cyclically around their centroid so the
// winding is counter-clockwise when seen from the side normal points to.
//
// Each step picks, among the points ahead of the last placed point (in front of
// the plane through it, the centroid and centroid+normal), the one closest in
// angle. Restricting the search to one side keeps the order monotonic.
func SortVertices(points []math.Vec3, normal math.Vec3) ([]math.Vec3, error) {
	if len(points) < 3 {
		return nil, invalidGeometry("sort vertices", "fewer than 3 points", points)
	}

	center := math.Centroid(points)
	sorted := make([]math.Vec3, 0, len(points))
	sorted = append(sorted, points[0])
	rest := append([]math.Vec3(nil), points[1:]...)

	for len(rest) > 0 {
		a := sorted[len(sorted)-1]
		side, ok := math.PlaneFromPoints(a, center, center.Add(normal))
		if !ok {
			return nil, invalidGeometry("sort vertices", "point coincides with centroid", points)
		}
		dirA := a.Sub(center).Normalize()

		best := -1
		bestDot := -1.0
		for i, b := range rest {
			if side.Relation(b) != math.Front {
				continue
			}
			d := dirA.Dot(b.Sub(center).Normalize())
			if d > bestDot {
				bestDot = d
				best = i
			}
		}
		if best < 0 {
			return nil, invalidGeometry("sort vertices", "no point ahead of winding", points)
		}

		sorted = append(sorted, rest[best])
		rest = append(rest[:best], rest[best+1:]...)
	}

	if normal.Dot(math.PolygonNormal(sorted)) < 0 {
		for i, j := 0, len(sorted)-1; i < j; i, j = i+1, j-1 {
			sorted[i], sorted[j] = sorted[j], sorted[i]
		}
	}
	return sorted, nil
}
