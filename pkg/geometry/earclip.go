package geometry

import (
	stdmath "math"

	"github.com/Faultbox/map2prop/pkg/math"
)

// optimalEarDot is the ear normal dot product the quality policy aims for.
const optimalEarDot = 0.5

// TriangulateOptions controls ear selection.
type TriangulateOptions struct {
	// Eager accepts the first valid ear instead of searching for the one
	// closest to the optimal shape. Faster, but produces more slivers.
	Eager bool
}

// EarClip triangulates a simple polygon (convex or concave, no holes) wound
// counter-clockwise around normal. It returns len(polygon)-2 triangles.
func EarClip(polygon []math.Vec3, normal math.Vec3, opts TriangulateOptions) ([][3]math.Vec3, error) {
	indices, err := EarClipIndices(polygon, normal, opts)
	if err != nil {
		return nil, err
	}
	triangles := make([][3]math.Vec3, len(indices))
	for i, tri := range indices {
		triangles[i] = [3]math.Vec3{polygon[tri[0]], polygon[tri[1]], polygon[tri[2]]}
	}
	return triangles, nil
}

// Triangulate is EarClip with the normal derived from the polygon itself.
func Triangulate(polygon []math.Vec3, opts TriangulateOptions) ([][3]int, error) {
	return EarClipIndices(polygon, NewellNormal(polygon), opts)
}

// EarClipIndices is EarClip returning index triples into polygon.
func EarClipIndices(polygon []math.Vec3, normal math.Vec3, opts TriangulateOptions) ([][3]int, error) {
	n := len(polygon)
	if n < 3 {
		return nil, invalidGeometry("ear clip", "polygon with less than 3 sides", polygon)
	}
	if n == 3 {
		return [][3]int{{0, 1, 2}}, nil
	}

	// Active vertices form a doubly-linked ring over the original indices.
	prev := make([]int, n)
	next := make([]int, n)
	for i := range polygon {
		prev[i] = (i - 1 + n) % n
		next[i] = (i + 1) % n
	}
	head := 0
	remaining := n

	triangles := make([][3]int, 0, n-2)
	for remaining > 3 {
		ear := findEar(polygon, normal, prev, next, head, remaining, opts)
		if ear < 0 {
			return nil, invalidGeometry("ear clip", "no valid ear found", polygon)
		}

		p, nx := prev[ear], next[ear]
		triangles = append(triangles, [3]int{p, ear, nx})
		next[p] = nx
		prev[nx] = p
		if ear == head {
			head = nx
		}
		remaining--
	}
	triangles = append(triangles, [3]int{head, next[head], next[next[head]]})

	return triangles, nil
}

// findEar returns the index of the ear to clip, or -1 if there is none.
// Ties keep the first ear found.
func findEar(polygon []math.Vec3, normal math.Vec3, prev, next []int, head, remaining int, opts TriangulateOptions) int {
	best := -1
	bestDelta := 0.0

	i := head
	for count := 0; count < remaining; count++ {
		p, nx := prev[i], next[i]
		cur := i
		i = nx

		dot := earDot(polygon[p], polygon[cur], polygon[nx], normal)
		if dot <= 0 {
			continue
		}
		if anyPointInTriangle(polygon, p, cur, nx) {
			continue
		}
		if opts.Eager {
			return cur
		}

		delta := stdmath.Abs(optimalEarDot - dot)
		if best == -1 || delta < bestDelta {
			best = cur
			bestDelta = delta
		}
	}
	return best
}

// earDot is positive when the corner at v turns the convex way.
func earDot(prev, v, next, normal math.Vec3) float64 {
	cross := prev.Sub(v).Normalize().Cross(next.Sub(v).Normalize())
	return -normal.Dot(cross)
}

func anyPointInTriangle(polygon []math.Vec3, a, b, c int) bool {
	tri := [3]math.Vec3{polygon[a], polygon[b], polygon[c]}
	for j, pt := range polygon {
		if j == a || j == b || j == c {
			continue
		}
		if pt == tri[0] || pt == tri[1] || pt == tri[2] {
			continue
		}
		if PointInTriangle(pt, tri) {
			return true
		}
	}
	return false
}

// PointInTriangle reports whether a coplanar point lies inside the triangle
// or on its border.
func PointInTriangle(point math.Vec3, tri [3]math.Vec3) bool {
	a := tri[0].Sub(point)
	b := tri[1].Sub(point)
	c := tri[2].Sub(point)

	u, v, w := b.Cross(c), c.Cross(a), a.Cross(b)
	if u.Dot(v) < 0 || u.Dot(w) < 0 {
		return false
	}
	return true
}

// NewellNormal returns the unit normal of a polygon using Newell's method,
// which tolerates collinear leading vertices.
func NewellNormal(polygon []math.Vec3) math.Vec3 {
	var n math.Vec3
	for i, cur := range polygon {
		nx := polygon[(i+1)%len(polygon)]
		n.X += (cur.Y - nx.Y) * (cur.Z + nx.Z)
		n.Y += (cur.Z - nx.Z) * (cur.X + nx.X)
		n.Z += (cur.X - nx.X) * (cur.Y + nx.Y)
	}
	return n.Normalize()
}

// TriangleArea returns the area of a triangle.
func TriangleArea(tri [3]math.Vec3) float64 {
	return tri[1].Sub(tri[0]).Cross(tri[2].Sub(tri[0])).Length() / 2
}

// PolygonArea returns the area of a planar polygon.
func PolygonArea(polygon []math.Vec3) float64 {
	if len(polygon) < 3 {
		return 0
	}
	var sum math.Vec3
	for i, cur := range polygon {
		sum = sum.Add(cur.Cross(polygon[(i+1)%len(polygon)]))
	}
	return stdmath.Abs(sum.Dot(NewellNormal(polygon))) / 2
}
