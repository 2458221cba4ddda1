package export

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/Faultbox/map2prop/pkg/math"
)

// WriteQC writes the studiomdl script that compiles the model's SMD.
func WriteQC(w io.Writer, m *RawModel) error {
	bw := bufio.NewWriter(w)

	bw.WriteString("/*\n Automatically generated by map2prop.\n*/\n\n")
	fmt.Fprintf(bw, "$modelname %s.mdl\n", m.Name)
	bw.WriteString("$cd \".\"\n")
	bw.WriteString("$cdtexture \".\"\n")
	fmt.Fprintf(bw, "$scale %s\n", formatFloat(m.Scale))
	fmt.Fprintf(bw, "$origin %s %s %s %s\n",
		formatFloat(m.Offset.X), formatFloat(m.Offset.Y), formatFloat(m.Offset.Z),
		formatFloat(m.Rotation))

	if m.BBox != nil {
		fmt.Fprintf(bw, "$bbox %s\n", formatBox(*m.BBox, m.Offset))
	}
	if m.CBox != nil {
		fmt.Fprintf(bw, "$cbox %s\n", formatBox(*m.CBox, m.Offset))
	}
	for _, tex := range m.MaskedTextures {
		fmt.Fprintf(bw, "$texrendermode %s.bmp masked\n", tex)
	}

	fmt.Fprintf(bw, "$gamma %s\n", formatFloat(m.Gamma))
	fmt.Fprintf(bw, "$body studio \"%s\"\n", m.Name)
	fmt.Fprintf(bw, "$sequence \"idle\" \"%s\"\n", m.Name)
	return bw.Flush()
}

func formatBox(box math.Bounds, offset math.Vec3) string {
	lo := box.Min.Sub(offset)
	hi := box.Max.Sub(offset)
	return fmt.Sprintf("%s %s %s %s %s %s",
		formatFloat(lo.X), formatFloat(lo.Y), formatFloat(lo.Z),
		formatFloat(hi.X), formatFloat(hi.Y), formatFloat(hi.Z))
}

func formatFloat(f float64) string {
	if f == 0 {
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
