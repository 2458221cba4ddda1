package geometry

import (
	"errors"
	"testing"

	"github.com/Faultbox/map2prop/pkg/math"
)

func TestEarClipBoxFace(t *testing.T) {
	a := math.Vec3{X: 1, Y: -1, Z: 0}
	b := math.Vec3{X: 1, Y: -1, Z: 2}
	c := math.Vec3{X: 1, Y: 1, Z: 0}
	d := math.Vec3{X: 1, Y: 1, Z: 2}

	got, err := EarClip([]math.Vec3{a, c, d, b}, math.Vec3{X: 1}, TriangulateOptions{})
	if err != nil {
		t.Fatalf("EarClip: %v", err)
	}
	want := [][3]math.Vec3{{b, a, c}, {c, d, b}}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("triangle %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestEarClipEarSelection(t *testing.T) {
	tests := []struct {
		name    string
		polygon []math.Vec3
		eager   [3]int
		quality [3]int
	}{
		{
			// Right angles at 0, 1 and 3; 135 degrees at 2 and 4.
			name: "house",
			polygon: []math.Vec3{
				{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 4}, {X: 2, Y: 6}, {X: 0, Y: 4},
			},
			eager:   [3]int{4, 0, 1},
			quality: [3]int{1, 2, 3},
		},
		{
			// The sharp corner at 0 is valid but further from the
			// optimal shape than the corner at 3.
			name: "sliver first",
			polygon: []math.Vec3{
				{X: 0, Y: 0}, {X: 20, Y: 0}, {X: 20, Y: 1}, {X: 10, Y: 4},
			},
			eager:   [3]int{3, 0, 1},
			quality: [3]int{2, 3, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eager, err := EarClipIndices(tt.polygon, math.Vec3{Z: 1}, TriangulateOptions{Eager: true})
			if err != nil {
				t.Fatalf("eager: %v", err)
			}
			quality, err := EarClipIndices(tt.polygon, math.Vec3{Z: 1}, TriangulateOptions{})
			if err != nil {
				t.Fatalf("quality: %v", err)
			}
			if eager[0] != tt.eager {
				t.Errorf("eager first ear = %v, want %v", eager[0], tt.eager)
			}
			if quality[0] != tt.quality {
				t.Errorf("quality first ear = %v, want %v", quality[0], tt.quality)
			}
			if len(eager) != len(tt.polygon)-2 || len(quality) != len(tt.polygon)-2 {
				t.Errorf("triangle counts = %d, %d, want %d", len(eager), len(quality), len(tt.polygon)-2)
			}
		})
	}
}

func TestEarClipPolygons(t *testing.T) {
	tests := []struct {
		name    string
		polygon []math.Vec3
		area    float64
	}{
		{
			name:    "triangle",
			polygon: []math.Vec3{{X: 0}, {X: 1}, {Y: 1}},
			area:    0.5,
		},
		{
			name: "L shape",
			polygon: []math.Vec3{
				{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 1},
				{X: 1, Y: 1}, {X: 1, Y: 2}, {X: 0, Y: 2},
			},
			area: 3,
		},
		{
			name: "arrow",
			polygon: []math.Vec3{
				{X: 0, Y: 0}, {X: 4, Y: 2}, {X: 0, Y: 4}, {X: 1, Y: 2},
			},
			area: 6,
		},
		{
			name: "octagon",
			polygon: []math.Vec3{
				{X: 2, Y: 0}, {X: 4, Y: 0}, {X: 6, Y: 2}, {X: 6, Y: 4},
				{X: 4, Y: 6}, {X: 2, Y: 6}, {X: 0, Y: 4}, {X: 0, Y: 2},
			},
			area: 28,
		},
	}

	normal := math.Vec3{Z: 1}
	for _, tt := range tests {
		for _, eager := range []bool{false, true} {
			name := tt.name
			if eager {
				name += " eager"
			}
			t.Run(name, func(t *testing.T) {
				got, err := EarClipIndices(tt.polygon, normal, TriangulateOptions{Eager: eager})
				if err != nil {
					t.Fatalf("EarClipIndices: %v", err)
				}
				if len(got) != len(tt.polygon)-2 {
					t.Errorf("len = %d, want %d", len(got), len(tt.polygon)-2)
				}

				used := make(map[int]bool)
				area := 0.0
				for _, tri := range got {
					pts := [3]math.Vec3{tt.polygon[tri[0]], tt.polygon[tri[1]], tt.polygon[tri[2]]}
					area += TriangleArea(pts)
					if n := math.SegmentsCross(pts[0], pts[1], pts[2]); n.Dot(normal) <= 0 {
						t.Errorf("triangle %v is not counter-clockwise", tri)
					}
					for _, i := range tri {
						used[i] = true
					}
				}
				if !near(area, tt.area) {
					t.Errorf("area = %f, want %f", area, tt.area)
				}
				if len(used) != len(tt.polygon) {
					t.Errorf("triangles cover %d vertices, want %d", len(used), len(tt.polygon))
				}
			})
		}
	}
}

func TestEarClipMatchesPolygonArea(t *testing.T) {
	polygon := []math.Vec3{
		{X: 0, Y: 0}, {X: 3, Y: 0}, {X: 3, Y: 3}, {X: 2, Y: 1}, {X: 0, Y: 3},
	}
	got, err := Triangulate(polygon, TriangulateOptions{})
	if err != nil {
		t.Fatalf("Triangulate: %v", err)
	}
	area := 0.0
	for _, tri := range got {
		area += TriangleArea([3]math.Vec3{polygon[tri[0]], polygon[tri[1]], polygon[tri[2]]})
	}
	if want := PolygonArea(polygon); !near(area, want) {
		t.Errorf("area = %f, want %f", area, want)
	}
}

func TestEarClipErrors(t *testing.T) {
	tests := []struct {
		name    string
		polygon []math.Vec3
		normal  math.Vec3
	}{
		{
			name:    "two points",
			polygon: []math.Vec3{{X: 0}, {X: 1}},
			normal:  math.Vec3{Z: 1},
		},
		{
			name:    "clockwise",
			polygon: []math.Vec3{{X: 0}, {Y: 1}, {X: 1, Y: 1}, {X: 1}},
			normal:  math.Vec3{Z: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EarClip(tt.polygon, tt.normal, TriangulateOptions{})
			var invalid *InvalidGeometryError
			if !errors.As(err, &invalid) {
				t.Fatalf("err = %v, want InvalidGeometryError", err)
			}
		})
	}
}

func TestPointInTriangle(t *testing.T) {
	tri := [3]math.Vec3{{X: 0}, {X: 2}, {Y: 2}}
	tests := []struct {
		point math.Vec3
		want  bool
	}{
		{math.Vec3{X: 0.5, Y: 0.5}, true},
		{math.Vec3{X: 1, Y: 0}, true},
		{math.Vec3{X: 2, Y: 2}, false},
		{math.Vec3{X: -0.1, Y: 0.5}, false},
	}
	for _, tt := range tests {
		if got := PointInTriangle(tt.point, tri); got != tt.want {
			t.Errorf("PointInTriangle(%v) = %v, want %v", tt.point, got, tt.want)
		}
	}
}
