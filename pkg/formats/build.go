package formats

import (
	"fmt"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/map2prop/pkg/brush"
)

// brushJob constructs one brush. Dropped holds plane indices that produced
// no face.
type brushJob func() (b *brush.Brush, dropped []int, err error)

// sceneBuilder collects brush jobs while a file is parsed and runs them in
// parallel once parsing is done. Each job writes only its own slot.
type sceneBuilder struct {
	scene    *Scene
	opts     ReadOptions
	textures *textureTable
	jobs     []brushJob
	owners   []*brush.Entity
}

func newSceneBuilder(format brush.Format, opts ReadOptions) *sceneBuilder {
	return &sceneBuilder{
		scene:    &Scene{Format: format},
		opts:     opts,
		textures: newTextureTable(opts.Textures),
	}
}

func (sb *sceneBuilder) addEntity(e *brush.Entity) {
	sb.scene.Entities = append(sb.scene.Entities, e)
}

func (sb *sceneBuilder) addBrush(owner *brush.Entity, job brushJob) {
	sb.jobs = append(sb.jobs, job)
	sb.owners = append(sb.owners, owner)
}

// build runs all brush jobs and attaches the brushes to their entities in
// the order they were added. Every failing brush is reported.
func (sb *sceneBuilder) build() (*Scene, error) {
	brushes := make([]*brush.Brush, len(sb.jobs))
	dropped := make([][]int, len(sb.jobs))
	errs := make([]error, len(sb.jobs))

	var g errgroup.Group
	if sb.opts.Workers > 0 {
		g.SetLimit(sb.opts.Workers)
	}
	for i, job := range sb.jobs {
		i, job := i, job
		g.Go(func() error {
			b, d, err := job()
			if err != nil {
				errs[i] = fmt.Errorf("%s brush %d of %s: %w",
					sb.scene.Format, i, sb.owners[i].Classname, err)
				return nil
			}
			brushes[i] = b
			dropped[i] = d
			return nil
		})
	}
	_ = g.Wait()

	if err := multierr.Combine(errs...); err != nil {
		return nil, err
	}

	for i, b := range brushes {
		owner := sb.owners[i]
		for _, plane := range dropped[i] {
			sb.scene.Dropped = append(sb.scene.Dropped, DroppedPlane{
				Classname: owner.Classname,
				Brush:     i,
				Plane:     plane,
			})
		}
		owner.Brushes = append(owner.Brushes, b)
	}
	sb.scene.MissingTextures = sb.textures.missing
	return sb.scene, nil
}
