package geometry

import (
	"fmt"
	"strings"

	"github.com/Faultbox/map2prop/pkg/math"
)

// InvalidGeometryError reports a polygon that cannot be processed: fewer than
// three vertices, points that do not form a winding, or an ear-clipping pass
// that found no ear. It aborts the containing brush or model.
type InvalidGeometryError struct {
	Op       string
	Msg      string
	Vertices []math.Vec3
}

func (e *InvalidGeometryError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Op, e.Msg)
	if len(e.Vertices) > 0 {
		b.WriteString(" [vertices:")
		for _, v := range e.Vertices {
			b.WriteString(" ")
			b.WriteString(v.String())
		}
		b.WriteString("]")
	}
	return b.String()
}

// DegenerateConfigurationError reports input parameters the pipeline cannot
// work with, such as a zero texture scale or collinear plane points.
type DegenerateConfigurationError struct {
	Msg string
}

func (e *DegenerateConfigurationError) Error() string {
	return "degenerate configuration: " + e.Msg
}

func invalidGeometry(op, msg string, vertices []math.Vec3) error {
	return &InvalidGeometryError{
		Op:       op,
		Msg:      msg,
		Vertices: append([]math.Vec3(nil), vertices...),
	}
}
