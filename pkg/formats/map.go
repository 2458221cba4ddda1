package formats

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/map2prop/pkg/brush"
	"github.com/Faultbox/map2prop/pkg/encoding"
	"github.com/Faultbox/map2prop/pkg/geometry"
	"github.com/Faultbox/map2prop/pkg/math"
)

// MAP format errors.
var (
	ErrInvalidMAPData = errors.New("invalid MAP data")
)

// valvePlaneFields is the token count of a Valve 220 plane line:
// ( x y z ) ( x y z ) ( x y z ) NAME [ rx ry rz shiftx ] [ dx dy dz shifty ] angle scalex scaley
const valvePlaneFields = 31

type mapParser struct {
	sc   *bufio.Scanner
	line int
	sb   *sceneBuilder
}

// ParseMAP parses a Valve 220 .map file. Brushes are rebuilt from their
// bounding planes.
func ParseMAP(data []byte, opts ReadOptions) (*Scene, error) {
	text := encoding.Windows1252ToUTF8(data)
	p := &mapParser{
		sc: bufio.NewScanner(strings.NewReader(text)),
		sb: newSceneBuilder(brush.FormatMAP, opts),
	}
	p.sc.Buffer(make([]byte, 64*1024), 1<<20)

	for {
		line, ok := p.next()
		if !ok {
			break
		}
		if !strings.HasPrefix(line, "{") {
			return nil, p.errorf("expected entity, got %q", line)
		}
		if err := p.readEntity(); err != nil {
			return nil, err
		}
	}
	if err := p.sc.Err(); err != nil {
		return nil, fmt.Errorf("reading MAP data: %w", err)
	}
	return p.sb.build()
}

// ParseMAPFile parses a .map file from disk.
func ParseMAPFile(path string, opts ReadOptions) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading MAP file: %w", err)
	}
	return ParseMAP(data, opts)
}

// next returns the next line that is neither blank nor a comment.
func (p *mapParser) next() (string, bool) {
	for p.sc.Scan() {
		p.line++
		line := strings.TrimSpace(p.sc.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		return line, true
	}
	return "", false
}

func (p *mapParser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrInvalidMAPData, p.line, fmt.Sprintf(format, args...))
}

func (p *mapParser) readEntity() error {
	e := brush.NewEntity("", brush.FormatMAP)
	p.sb.addEntity(e)

	for {
		line, ok := p.next()
		if !ok {
			return p.errorf("unterminated entity")
		}
		switch {
		case strings.HasPrefix(line, "\""):
			key, value, err := parseKeyValue(line)
			if err != nil {
				return p.errorf("%v", err)
			}
			if key == "classname" {
				e.Classname = value
			}
			if key == "wad" && e.IsWorldspawn() {
				p.sb.textures.setWadList(splitWadList(value))
			}
			e.SetProperty(key, value)
		case strings.HasPrefix(line, "{"):
			planes, err := p.readBrush()
			if err != nil {
				return err
			}
			opts := p.sb.opts.Triangulate
			p.sb.addBrush(e, func() (*brush.Brush, []int, error) {
				return brush.FromPlanes(planes, geometry.ProjectUVClosedForm, opts, brush.FormatMAP)
			})
		case strings.HasPrefix(line, "}"):
			return nil
		default:
			return p.errorf("unexpected entity data %q", line)
		}
	}
}

func (p *mapParser) readBrush() ([]geometry.FacePlane, error) {
	var planes []geometry.FacePlane
	for {
		line, ok := p.next()
		if !ok {
			return nil, p.errorf("unterminated brush")
		}
		switch {
		case strings.HasPrefix(line, "("):
			pl, err := p.readPlane(line)
			if err != nil {
				return nil, err
			}
			planes = append(planes, pl)
		case strings.HasPrefix(line, "}"):
			return planes, nil
		default:
			return nil, p.errorf("unexpected face data %q", line)
		}
	}
}

func (p *mapParser) readPlane(line string) (geometry.FacePlane, error) {
	fields := strings.Fields(line)
	if len(fields) != valvePlaneFields {
		return geometry.FacePlane{}, p.errorf("plane has %d fields, want %d", len(fields), valvePlaneFields)
	}

	var nums [valvePlaneFields]float64
	for _, i := range []int{1, 2, 3, 6, 7, 8, 11, 12, 13, 17, 18, 19, 20, 23, 24, 25, 26, 28, 29, 30} {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return geometry.FacePlane{}, p.errorf("plane field %d: %v", i, err)
		}
		nums[i] = v
	}
	vec := func(i int) math.Vec3 {
		return math.Vec3{X: nums[i], Y: nums[i+1], Z: nums[i+2]}
	}

	tex, err := p.sb.textures.texture(geometry.Texture{
		Name:      fields[15],
		RightAxis: vec(17),
		ShiftX:    nums[20],
		DownAxis:  vec(23),
		ShiftY:    nums[26],
		Angle:     nums[28],
		ScaleX:    nums[29],
		ScaleY:    nums[30],
	})
	if err != nil {
		return geometry.FacePlane{}, err
	}

	pl, err := geometry.NewFacePlane([3]math.Vec3{vec(1), vec(6), vec(11)}, tex)
	if err != nil {
		return geometry.FacePlane{}, fmt.Errorf("line %d: %w", p.line, err)
	}
	return pl, nil
}

// parseKeyValue splits a `"key" "value"` line.
func parseKeyValue(line string) (string, string, error) {
	parts := strings.Split(line, "\"")
	if len(parts) != 5 {
		return "", "", fmt.Errorf("invalid keyvalue %q", line)
	}
	return strings.TrimSpace(parts[1]), strings.TrimSpace(parts[3]), nil
}

// splitWadList splits a worldspawn wad property on semicolons.
func splitWadList(value string) []string {
	var wads []string
	for _, w := range strings.Split(value, ";") {
		if w = strings.TrimSpace(w); w != "" {
			wads = append(wads, w)
		}
	}
	return wads
}
