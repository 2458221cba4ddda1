package export

import (
	"bufio"
	"fmt"
	"io"
)

const smdHeader = `version 1
nodes
0 "root" -1
end
skeleton
time 0
0 0 0 0 0 0 0
end
triangles
`

// WriteSMD writes the model as a single-bone studiomdl reference mesh. Every
// polygon must be a triangle. Texture V is shifted by one so tiles start at
// the bottom edge.
func WriteSMD(w io.Writer, m *RawModel) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(smdHeader)

	for i, p := range m.Polygons {
		if len(p.Vertices) != 3 {
			return fmt.Errorf("smd: polygon %d has %d vertices", i, len(p.Vertices))
		}
		bw.WriteString(p.Texture + ".bmp\n")
		for _, v := range p.Vertices {
			fmt.Fprintf(bw, "0\t%.6f %.6f %.6f\t%.6f %.6f %.6f\t%.6f %.6f\n",
				v.Position.X, v.Position.Y, v.Position.Z,
				v.Normal.X, v.Normal.Y, v.Normal.Z,
				v.UV.X, v.UV.Y+1)
		}
	}

	bw.WriteString("end\n")
	return bw.Flush()
}
