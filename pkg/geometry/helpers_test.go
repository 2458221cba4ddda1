package geometry

import (
	stdmath "math"
	"testing"

	"github.com/Faultbox/map2prop/pkg/math"
)

const tolerance = 1e-9

func near(a, b float64) bool {
	return stdmath.Abs(a-b) < tolerance
}

func nearVec(a, b math.Vec3) bool {
	return near(a.X, b.X) && near(a.Y, b.Y) && near(a.Z, b.Z)
}

// sourcePlane returns the three points an editor would store for a face with
// outward normal n passing through center.
func sourcePlane(t *testing.T, center, n math.Vec3) FacePlane {
	t.Helper()
	u := math.Vec3{X: 1}
	if stdmath.Abs(n.Dot(u)) > 0.5 {
		u = math.Vec3{Y: 1}
	}
	u = u.Sub(n.Scale(n.Dot(u))).Normalize()
	v := n.Cross(u)
	pl, err := NewFacePlane([3]math.Vec3{center.Add(u).Add(v), center.Add(u), center}, NewTexture("test"))
	if err != nil {
		t.Fatalf("NewFacePlane: %v", err)
	}
	return pl
}

// boxPlanes returns the six planes of an axis-aligned box.
func boxPlanes(t *testing.T, min, max math.Vec3) []FacePlane {
	t.Helper()
	return []FacePlane{
		sourcePlane(t, math.Vec3{X: max.X}, math.Vec3{X: 1}),
		sourcePlane(t, math.Vec3{X: min.X}, math.Vec3{X: -1}),
		sourcePlane(t, math.Vec3{Y: max.Y}, math.Vec3{Y: 1}),
		sourcePlane(t, math.Vec3{Y: min.Y}, math.Vec3{Y: -1}),
		sourcePlane(t, math.Vec3{Z: max.Z}, math.Vec3{Z: 1}),
		sourcePlane(t, math.Vec3{Z: min.Z}, math.Vec3{Z: -1}),
	}
}
