package geometry

import (
	stdmath "math"

	"github.com/Faultbox/map2prop/pkg/math"
)

// SmoothOptions configures a smoothing pass over a whole model.
type SmoothOptions struct {
	// Threshold is the largest angle in degrees between two face normals
	// that still get averaged. Zero disables smoothing.
	Threshold float64

	// AlwaysSmooth regions average every normal at a position regardless of
	// the threshold.
	AlwaysSmooth []math.Bounds

	// NeverSmooth regions keep the face normal of every vertex inside them.
	// They take precedence over AlwaysSmooth.
	NeverSmooth []math.Bounds
}

// SmoothStats summarizes a smoothing pass.
type SmoothStats struct {
	Positions int
	Always    int
	Never     int
	Threshold int
}

type bucketKey struct {
	position int
	flipped  bool
}

// SmoothPolygons replaces vertex normals with averaged normals of the
// vertices sharing their position. Flipped and front-facing vertices are
// never averaged together.
func SmoothPolygons(polygons []Polygon, opts SmoothOptions) SmoothStats {
	var stats SmoothStats
	if opts.Threshold == 0 {
		return stats
	}
	threshold := math.DegToRad(opts.Threshold)

	index := newPositionIndex()
	var alwaysKeys, nearKeys []bucketKey
	always := make(map[bucketKey][]*Vertex)
	near := make(map[bucketKey][]*Vertex)

	for pi := range polygons {
		for vi := range polygons[pi].Vertices {
			v := &polygons[pi].Vertices[vi]
			if inAnyRegion(v.Position, opts.NeverSmooth) {
				stats.Never++
				continue
			}

			key := bucketKey{position: index.lookup(v.Position), flipped: v.Flipped}
			if inAnyRegion(v.Position, opts.AlwaysSmooth) {
				if _, ok := always[key]; !ok {
					alwaysKeys = append(alwaysKeys, key)
				}
				always[key] = append(always[key], v)
				stats.Always++
				continue
			}
			if _, ok := near[key]; !ok {
				nearKeys = append(nearKeys, key)
			}
			near[key] = append(near[key], v)
			stats.Threshold++
		}
	}

	for _, key := range alwaysKeys {
		SmoothAllNormals(always[key])
	}
	for _, key := range nearKeys {
		SmoothNearNormals(near[key], threshold)
	}
	stats.Positions = len(index.reps)
	return stats
}

// SmoothAllNormals assigns every vertex the average of their distinct normals.
func SmoothAllNormals(vertices []*Vertex) {
	if len(vertices) == 0 {
		return
	}
	avg := averageDistinctNormals(vertices)
	for _, v := range vertices {
		v.Normal = avg
	}
}

// SmoothNearNormals clusters vertices greedily: the first unprocessed vertex
// collects every other unprocessed vertex whose normal is within threshold
// radians of its own, and the cluster shares its averaged normal. The result
// depends on vertex order.
func SmoothNearNormals(vertices []*Vertex, threshold float64) {
	remaining := append([]*Vertex(nil), vertices...)
	for len(remaining) > 0 {
		a := remaining[0]
		cluster := []*Vertex{a}
		rest := make([]*Vertex, 0, len(remaining)-1)
		for _, b := range remaining[1:] {
			if a.Normal.Angle(b.Normal) <= threshold+angleTolerance {
				cluster = append(cluster, b)
			} else {
				rest = append(rest, b)
			}
		}

		avg := averageDistinctNormals(cluster)
		for _, v := range cluster {
			v.Normal = avg
		}
		remaining = rest
	}
}

// angleTolerance absorbs the rounding of acos against a threshold converted
// from degrees.
const angleTolerance = 1e-9

func averageDistinctNormals(vertices []*Vertex) math.Vec3 {
	seen := make(map[math.Vec3]bool, len(vertices))
	normals := make([]math.Vec3, 0, len(vertices))
	for _, v := range vertices {
		if seen[v.Normal] {
			continue
		}
		seen[v.Normal] = true
		normals = append(normals, v.Normal)
	}
	return math.Average(normals)
}

func inAnyRegion(p math.Vec3, regions []math.Bounds) bool {
	for _, r := range regions {
		if r.Contains(p) {
			return true
		}
	}
	return false
}

// positionIndex assigns the same id to positions equal within math.Epsilon.
// Cells are Epsilon wide, so a match is always in a neighbouring cell.
type positionIndex struct {
	cells map[[3]int64][]int
	reps  []math.Vec3
}

func newPositionIndex() *positionIndex {
	return &positionIndex{cells: make(map[[3]int64][]int)}
}

func (idx *positionIndex) lookup(p math.Vec3) int {
	c := cellOf(p)
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for dz := int64(-1); dz <= 1; dz++ {
				for _, id := range idx.cells[[3]int64{c[0] + dx, c[1] + dy, c[2] + dz}] {
					if idx.reps[id].Eq(p) {
						return id
					}
				}
			}
		}
	}
	id := len(idx.reps)
	idx.reps = append(idx.reps, p)
	idx.cells[c] = append(idx.cells[c], id)
	return id
}

func cellOf(p math.Vec3) [3]int64 {
	return [3]int64{
		int64(stdmath.Floor(p.X / math.Epsilon)),
		int64(stdmath.Floor(p.Y / math.Epsilon)),
		int64(stdmath.Floor(p.Z / math.Epsilon)),
	}
}
