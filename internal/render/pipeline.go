package render

import (
	"mini-engine/internal/graphics/renderer"
	"mini-engine/internal/profiling"
	"mini-engine/internal/scene"

	"go.uber.org/zap"
)

// Pipeline renders a scene through an ordered list of passes
type Pipeline struct {
	renderer *renderer.Renderer
	log      *zap.Logger
	prof     *profiling.Profiler
	passes   []Pass

	noCamera bool
}

// NewPipeline creates an empty pipeline. prof may be nil.
func NewPipeline(r *renderer.Renderer, log *zap.Logger, prof *profiling.Profiler) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{renderer: r, log: log, prof: prof}
}

// AddPass appends p; passes run in the order they were added
func (pl *Pipeline) AddPass(p Pass) {
	pl.passes = append(pl.passes, p)
}

func (pl *Pipeline) Passes() []Pass { return pl.passes }

// Render draws root from its first active camera into the current viewport.
// A scene without an active camera renders nothing. It reports whether a
// camera was found.
func (pl *Pipeline) Render(root *scene.Actor, time float32) bool {
	defer pl.prof.Track("render.Pipeline")()
	r := pl.renderer
	r.BeginFrame()

	cam := root.FirstActiveCamera()
	if cam == nil {
		if !pl.noCamera {
			pl.log.Warn("no active camera", zap.String("scene", root.Name()))
			pl.noCamera = true
		}
		return false
	}
	pl.noCamera = false

	width, height := r.Viewport()
	cam.UpdateMatrices(width, height)
	r.Clear(cam.ClearColor(), true, true)

	ctx := &Context{Renderer: r, Scene: root, Camera: cam, Time: time}
	for _, p := range pl.passes {
		stop := pl.prof.Track("render." + p.Name())
		p.Render(ctx)
		stop()
	}
	return true
}
