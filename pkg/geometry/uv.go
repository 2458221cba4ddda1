package geometry

import "github.com/Faultbox/map2prop/pkg/math"

// ProjectUV maps a point onto texture space. The point is projected onto the
// texture plane (normal = right × down) before the axes are applied; shift is
// added for u and subtracted for v. The result is normalized by the texture
// size, so one tile spans [0, 1].
func ProjectUV(point math.Vec3, tex Texture) (math.Vec2, error) {
	if err := tex.Validate(); err != nil {
		return math.Vec2{}, err
	}

	n := tex.RightAxis.Cross(tex.DownAxis)
	projected := point.Sub(n.Scale(point.Dot(n)))

	u := tex.ShiftX*tex.ScaleX + projected.Dot(tex.RightAxis)
	v := -tex.ShiftY*tex.ScaleY - projected.Dot(tex.DownAxis)

	u /= tex.ScaleX
	v /= tex.ScaleY

	return math.Vec2{
		X: u / float64(tex.Width),
		Y: v / float64(tex.Height),
	}, nil
}

// ProjectUVClosedForm is the unprojected formulation used by the text map
// format. For orthogonal texture axes it agrees with ProjectUV.
func ProjectUVClosedForm(point math.Vec3, tex Texture) (math.Vec2, error) {
	if err := tex.Validate(); err != nil {
		return math.Vec2{}, err
	}

	w, h := float64(tex.Width), float64(tex.Height)
	u := (point.Dot(tex.RightAxis)/w)/tex.ScaleX + tex.ShiftX/w
	v := (point.Dot(tex.DownAxis)/h)/tex.ScaleY + tex.ShiftY/h

	return math.Vec2{X: u, Y: -v}, nil
}
