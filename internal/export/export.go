// Package export folds brush entities into models and writes them as studio
// model sources (SMD + QC) or binary glTF.
package export

import (
	"fmt"
	stdmath "math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/map2prop/internal/logger"
	"github.com/Faultbox/map2prop/pkg/brush"
	"github.com/Faultbox/map2prop/pkg/geometry"
	"github.com/Faultbox/map2prop/pkg/math"
)

// PropClass is the point entity class that can split geometry into models.
const PropClass = "func_map2prop"

// Options are the model defaults taken from configuration.
type Options struct {
	Smoothing float64
	Scale     float64
	Rotation  float64
	Offset    math.Vec3
	Gamma     float64
}

// RawModel is one output model before it is written.
type RawModel struct {
	Name     string
	Polygons []geometry.Polygon

	// Offset is the model origin. HasOrigin is set when it came from an
	// origin brush instead of configuration.
	Offset    math.Vec3
	HasOrigin bool

	BBox *math.Bounds
	CBox *math.Bounds

	Smoothing    float64
	AlwaysSmooth []math.Bounds
	NeverSmooth  []math.Bounds

	Scale    float64
	Rotation float64
	Gamma    float64

	MaskedTextures []string
}

// Textures returns the distinct polygon textures in first use order.
func (m *RawModel) Textures() []string {
	var names []string
	seen := make(map[string]bool)
	for _, p := range m.Polygons {
		if seen[p.Texture] {
			continue
		}
		seen[p.Texture] = true
		names = append(names, p.Texture)
	}
	return names
}

// Bounds returns the box around every polygon vertex.
func (m *RawModel) Bounds() math.Bounds {
	var points []math.Vec3
	for i := range m.Polygons {
		points = append(points, m.Polygons[i].Points()...)
	}
	return math.BoundsFromPoints(points)
}

func (m *RawModel) addMasked(names []string) {
	for _, name := range names {
		found := false
		for _, have := range m.MaskedTextures {
			if have == name {
				found = true
				break
			}
		}
		if !found {
			m.MaskedTextures = append(m.MaskedTextures, name)
		}
	}
}

// PrepareModels folds entities into models. Worldspawn and ordinary brush
// entities go into the model called name; func_map2prop entities with
// own_model=1 get their own model. Models without polygons are dropped.
func PrepareModels(name string, entities []*brush.Entity, opts Options) []*RawModel {
	log := logger.Named("export")

	var order []*RawModel
	models := make(map[string]*RawModel)
	n := 0

	for _, entity := range entities {
		outname := name
		own := entity.Classname == PropClass && entity.Property("own_model") == "1"
		if own {
			outname = entity.Property("outname")
			if outname == "" {
				outname = fmt.Sprintf("%s_%d", name, n)
				n++
			}
			for models[outname] != nil {
				outname = fmt.Sprintf("%s_%d", outname, n)
				n++
			}
		}

		model := models[outname]
		if model == nil {
			model = &RawModel{
				Name:      outname,
				Offset:    opts.Offset,
				Smoothing: opts.Smoothing,
				Scale:     opts.Scale,
				Rotation:  opts.Rotation,
				Gamma:     opts.Gamma,
			}
			if entity.IsWorldspawn() || own {
				applyTransform(model, entity, log)
			}
			models[outname] = model
			order = append(order, model)
		}

		foldEntity(model, entity, entity.IsWorldspawn() || own, log)
	}

	result := make([]*RawModel, 0, len(order))
	for _, model := range order {
		if len(model.Polygons) == 0 {
			log.Warn("model has no visible geometry", logger.Model(model.Name))
			continue
		}
		result = append(result, model)
	}
	return result
}

// applyTransform reads the scale and angles keys of a model root entity.
func applyTransform(model *RawModel, entity *brush.Entity, log *zap.Logger) {
	if s := entity.Property("scale"); s != "" {
		scale, err := strconv.ParseFloat(s, 64)
		switch {
		case err != nil:
			log.Warn("ignoring invalid scale", logger.Model(model.Name), zap.String("scale", s))
		case scale == 0:
			model.Scale = 1
		default:
			model.Scale = scale
		}
	}

	angles := strings.Fields(entity.Property("angles"))
	if len(angles) != 3 {
		return
	}
	yaw, err := strconv.ParseFloat(angles[1], 64)
	if err != nil {
		log.Warn("ignoring invalid angles", logger.Model(model.Name), zap.String("angles", entity.Property("angles")))
		return
	}
	model.Rotation = stdmath.Mod(model.Rotation+yaw, 360)
	if model.Rotation < 0 {
		model.Rotation += 360
	}
}

func foldEntity(model *RawModel, entity *brush.Entity, root bool, log *zap.Logger) {
	originFound := false
	for _, b := range entity.Brushes {
		switch {
		case b.IsToolBrush(brush.ToolOrigin):
			if originFound || model.HasOrigin {
				log.Info("ignoring extra origin brush",
					zap.String("classname", entity.Classname),
					zap.Stringer("center", b.Center()))
				continue
			}
			originFound = true
			if root {
				model.Offset = b.Center()
				model.HasOrigin = true
			}
			continue
		case b.IsToolBrush(brush.ToolBoundingBox):
			model.BBox = extendBox(model.BBox, b.Bounds())
			continue
		case b.IsToolBrush(brush.ToolClip):
			model.CBox = extendBox(model.CBox, b.Bounds())
			continue
		case b.IsToolBrush(brush.ToolBevel):
			model.NeverSmooth = append(model.NeverSmooth, region(b))
			continue
		case b.IsToolBrush(brush.ToolSmooth):
			model.AlwaysSmooth = append(model.AlwaysSmooth, region(b))
			continue
		}

		model.addMasked(b.MaskedTextures())

		polygons := b.Polygons()
		for _, p := range polygons {
			model.Polygons = append(model.Polygons, p.Clone())
		}
		if b.HasContentWater() {
			model.Polygons = append(model.Polygons, geometry.FlipPolygons(polygons)...)
		}
	}
}

func extendBox(box *math.Bounds, b math.Bounds) *math.Bounds {
	if box == nil {
		return &b
	}
	grown := box.Extend(b.Min).Extend(b.Max)
	return &grown
}

// region grows the brush box by Epsilon so vertices on its faces count as
// inside.
func region(b *brush.Brush) math.Bounds {
	bounds := b.Bounds()
	pad := math.Vec3{X: math.Epsilon, Y: math.Epsilon, Z: math.Epsilon}
	return math.Bounds{Min: bounds.Min.Sub(pad), Max: bounds.Max.Add(pad)}
}

// Smooth averages the model's vertex normals in place.
func Smooth(m *RawModel) geometry.SmoothStats {
	return geometry.SmoothPolygons(m.Polygons, geometry.SmoothOptions{
		Threshold:    m.Smoothing,
		AlwaysSmooth: m.AlwaysSmooth,
		NeverSmooth:  m.NeverSmooth,
	})
}
