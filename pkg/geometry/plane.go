package geometry

import (
	"fmt"

	"github.com/Faultbox/map2prop/pkg/math"
)

// FacePlane is a brush bounding plane defined by three points in source
// order, carrying the texture of the face it produces.
type FacePlane struct {
	math.Plane
	Points  [3]math.Vec3
	Texture Texture
}

// NewFacePlane builds a plane from three points listed clockwise when seen
// from the front, as editors store them. The points are reversed before the
// normal is derived, so the resulting normal points out of the brush.
func NewFacePlane(points [3]math.Vec3, tex Texture) (FacePlane, error) {
	reversed := [3]math.Vec3{points[2], points[1], points[0]}
	pl, ok := math.PlaneFromPoints(reversed[0], reversed[1], reversed[2])
	if !ok {
		return FacePlane{}, &DegenerateConfigurationError{
			Msg: fmt.Sprintf("plane points %v %v %v are collinear", points[0], points[1], points[2]),
		}
	}
	return FacePlane{Plane: pl, Points: reversed, Texture: tex}, nil
}
