package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"mini-engine/internal/config"
	"mini-engine/internal/event"
	"mini-engine/internal/graphics/renderer"
	"mini-engine/internal/input"
	"mini-engine/internal/profiling"
	"mini-engine/internal/render"
	"mini-engine/internal/resource"
	"mini-engine/internal/scene"

	"go.uber.org/zap"
)

// slowFrame is the processing time above which a frame is logged
const slowFrame = 16 * time.Millisecond

// Window is the part of a native window the loop drives. *glfw.Window
// satisfies it.
type Window interface {
	ShouldClose() bool
	SetShouldClose(bool)
	SwapBuffers()
	GetFramebufferSize() (width, height int)
}

// Options wires an App. Fields other than Window, Scene and Renderer may be nil.
type Options struct {
	Window     Window
	PollEvents func()
	Input      *input.Manager
	Scene      *scene.Actor
	Cache      *resource.Cache
	Renderer   *renderer.Renderer
	ScenePass  *render.ScenePass
	IdPass     *render.IdPass
	Settings   *config.RenderSettings
	Profiler   *profiling.Profiler
	Logger     *zap.Logger
	// DumpDir receives ID buffer dumps
	DumpDir    string
}

// App runs the frame loop: poll input, dispatch actions, update the scene,
// finish async loads, render, swap.
type App struct {
	opts     Options
	log      *zap.Logger
	prof     *profiling.Profiler
	pipeline *render.Pipeline
	limiter  *FPSLimiter

	start    time.Time
	lastTime time.Time
	frames   int

	showProfile bool
	pickPending bool
	pickX       int
	pickY       int

	// Picked fires after a pick click, with nil when nothing was hit
	Picked event.Event[*scene.Actor]
}

func New(opts Options) *App {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	prof := opts.Profiler
	if prof == nil {
		prof = profiling.New()
	}
	pl := render.NewPipeline(opts.Renderer, log, prof)
	if opts.ScenePass != nil {
		pl.AddPass(opts.ScenePass)
	}
	if opts.IdPass != nil {
		pl.AddPass(opts.IdPass)
	}

	var limit func() int
	if opts.Settings != nil {
		limit = opts.Settings.MaxFPS
	}
	now := time.Now()
	return &App{
		opts:     opts,
		log:      log,
		prof:     prof,
		pipeline: pl,
		limiter:  NewFPSLimiter(limit),
		start:    now,
		lastTime: now,
	}
}

func (a *App) Pipeline() *render.Pipeline { return a.pipeline }
func (a *App) Frames() int                { return a.frames }

// Run loops until the window asks to close
func (a *App) Run() {
	for !a.opts.Window.ShouldClose() {
		a.tick()
	}
}

// RunFrames runs at most n frames, stopping early if the window closes
func (a *App) RunFrames(n int) {
	for i := 0; i < n && !a.opts.Window.ShouldClose(); i++ {
		a.tick()
	}
}

func (a *App) tick() {
	now := time.Now()
	dt := float32(now.Sub(a.lastTime).Seconds())
	a.lastTime = now

	began := time.Now()
	a.Frame(dt)

	if took := time.Since(began); took > slowFrame {
		a.log.Debug("slow frame", append([]zap.Field{zap.Duration("took", took)}, a.prof.Fields(5)...)...)
	}
	a.limiter.Wait()
}

// Frame runs one frame with the given delta time in seconds
func (a *App) Frame(dt float32) {
	a.prof.ResetFrame()
	o := &a.opts

	if o.PollEvents != nil {
		o.PollEvents()
	}
	a.handleInput()

	width, height := o.Window.GetFramebufferSize()
	o.Renderer.SetViewport(width, height)

	stop := a.prof.Track("scene.Update")
	o.Scene.Update(dt)
	stop()

	if o.Cache != nil {
		stop = a.prof.Track("cache.Poll")
		o.Cache.Poll()
		stop()
	}

	a.pipeline.Render(o.Scene, float32(time.Since(a.start).Seconds()))
	a.resolvePick()

	o.Window.SwapBuffers()
	a.frames++

	if a.showProfile && a.frames%60 == 0 {
		info := o.Renderer.FrameInfo()
		a.log.Info("frame",
			append([]zap.Field{
				zap.Int("batches", info.Batches),
				zap.Int("polygons", info.Polygons),
			}, a.prof.Fields(5)...)...)
	}
	if o.Input != nil {
		o.Input.PostUpdate()
	}
}

func (a *App) handleInput() {
	in := a.opts.Input
	if in == nil {
		return
	}
	if in.JustPressed(input.ActionQuit) {
		a.opts.Window.SetShouldClose(true)
	}
	if in.JustPressed(input.ActionToggleCameras) && a.opts.Settings != nil {
		a.log.Info("camera gizmos", zap.Bool("on", a.opts.Settings.ToggleCameras()))
	}
	if a.opts.ScenePass != nil && a.opts.Settings != nil {
		a.opts.ScenePass.ShowCameras = a.opts.Settings.ShowCameras()
	}
	if in.JustPressed(input.ActionToggleProfiling) {
		a.showProfile = !a.showProfile
	}
	if in.JustPressed(input.ActionPick) {
		x, y := in.Cursor()
		a.RequestPick(int(x), int(y))
	}
	if in.JustPressed(input.ActionDumpIDs) {
		if path, err := a.DumpIDs(); err != nil {
			a.log.Warn("id buffer dump failed", zap.Error(err))
		} else {
			a.log.Info("id buffer dumped", zap.String("path", path))
		}
	}
}

// RequestPick resolves the actor under window coordinate (x, y) after the
// next render
func (a *App) RequestPick(x, y int) {
	a.pickPending, a.pickX, a.pickY = true, x, y
}

func (a *App) resolvePick() {
	if !a.pickPending || a.opts.IdPass == nil {
		return
	}
	a.pickPending = false
	var hit *scene.Actor
	if id := a.opts.IdPass.Pick(a.pickX, a.pickY); id != 0 {
		hit = a.opts.Scene.FindActorByID(id)
	}
	if hit != nil {
		a.log.Info("picked", zap.Uint32("id", hit.ID()), zap.String("name", hit.Name()))
	}
	a.Picked.Emit(hit)
}

// DumpIDs writes the last ID buffer to a BMP in DumpDir and returns its path
func (a *App) DumpIDs() (string, error) {
	if a.opts.IdPass == nil {
		return "", fmt.Errorf("no id pass")
	}
	dir := a.opts.DumpDir
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, fmt.Sprintf("ids-%06d.bmp", a.frames))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create dump: %w", err)
	}
	defer f.Close()
	if err := a.opts.IdPass.Dump(f); err != nil {
		return "", err
	}
	return path, nil
}
