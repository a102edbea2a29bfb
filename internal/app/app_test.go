package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"mini-engine/internal/asset"
	"mini-engine/internal/config"
	"mini-engine/internal/graphics"
	"mini-engine/internal/graphics/device"
	"mini-engine/internal/graphics/renderer"
	"mini-engine/internal/input"
	"mini-engine/internal/render"
	"mini-engine/internal/resource"
	"mini-engine/internal/scene"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWindow struct {
	closed     bool
	swaps      int
	closeAfter int
}

func (w *fakeWindow) ShouldClose() bool              { return w.closed }
func (w *fakeWindow) SetShouldClose(v bool)          { w.closed = v }
func (w *fakeWindow) GetFramebufferSize() (int, int) { return 320, 240 }

func (w *fakeWindow) SwapBuffers() {
	w.swaps++
	if w.closeAfter > 0 && w.swaps >= w.closeAfter {
		w.closed = true
	}
}

type world struct {
	rec    *device.Recorder
	win    *fakeWindow
	in     *input.Manager
	root   *scene.Actor
	assets string
	cache  *resource.Cache
	cube   *scene.Actor
	app    *App
	ids    *render.IdPass
	events []string
}

func newWorld(t *testing.T) *world {
	t.Helper()
	w := &world{rec: device.NewRecorder(), win: &fakeWindow{}, in: input.NewManager()}
	w.root = scene.NewScene("Root", nil)
	cam := w.root.CreateActor("Camera", "")
	cam.Transform().SetPosition(mgl32.Vec3{0, 0, 5})
	scene.AddComponent(cam, scene.NewCamera())

	w.assets = t.TempDir()
	w.cache = resource.NewCache(w.rec, nil, w.assets, nil)
	w.cube = w.root.CreateActor("Cube", "")
	mr := scene.AddComponent(w.cube, scene.NewModelRenderer())
	mr.SetModel(w.cache.AddModel("cube", asset.CubeModel(1, "body")))

	idShader, err := graphics.NewBuiltinShader(w.rec, graphics.ShaderID)
	require.NoError(t, err)
	w.ids = render.NewIdPass(idShader, nil)

	w.app = New(Options{
		Window:     w.win,
		PollEvents: func() { w.events = append(w.events, "poll") },
		Input:      w.in,
		Scene:      w.root,
		Cache:      w.cache,
		Renderer:   renderer.NewRenderer(w.rec, nil),
		ScenePass:  render.NewScenePass(w.cache.DefaultMaterial(), nil),
		IdPass:     w.ids,
		Settings:   config.NewRenderSettings(config.RendererConfig{}),
		DumpDir:    t.TempDir(),
	})
	return w
}

func TestRunStopsWhenWindowCloses(t *testing.T) {
	w := newWorld(t)
	w.win.closeAfter = 3
	w.app.Run()
	assert.Equal(t, 3, w.app.Frames())
	assert.Equal(t, 3, w.win.swaps)
	assert.Equal(t, []string{"poll", "poll", "poll"}, w.events)
	// one draw per pass per frame
	assert.Equal(t, 6, w.rec.Count("DrawElements"))
}

func TestRunFramesHonoursCount(t *testing.T) {
	w := newWorld(t)
	w.app.RunFrames(2)
	assert.Equal(t, 2, w.app.Frames())
}

func TestQuitAction(t *testing.T) {
	w := newWorld(t)
	w.in.HandleKeyEvent(glfw.KeyEscape, glfw.Press)
	w.app.RunFrames(10)
	assert.Equal(t, 1, w.app.Frames())
	assert.True(t, w.win.closed)
}

func TestFrameOrder(t *testing.T) {
	w := newWorld(t)
	var order []string
	rec := &orderRecorder{log: &order}
	scene.AddComponent(w.cube, rec)

	require.NoError(t, asset.SaveFile(filepath.Join(w.assets, "late.lgmdl"), asset.CubeModel(1, "x")))
	w.cache.LoadModelAsync("late.lgmdl", func(m *resource.GpuModel, err error) {
		require.NoError(t, err)
		order = append(order, "loaded")
	})

	w.app.Frame(0.016)
	assert.Equal(t, []string{"update", "loaded"}, order)
	assert.Equal(t, 0, w.cache.Pending())
}

type orderRecorder struct {
	scene.BaseComponent
	log *[]string
}

func (p *orderRecorder) OnUpdate(float32) { *p.log = append(*p.log, "update") }

func TestPickResolvesActor(t *testing.T) {
	w := newWorld(t)
	id := w.cube.ID()
	w.rec.Pixels = func(x, y int32) [4]byte {
		return [4]byte{byte(id >> 24), byte(id >> 16), byte(id >> 8), byte(id)}
	}
	var picked []*scene.Actor
	w.app.Picked.Subscribe(func(a *scene.Actor) { picked = append(picked, a) })

	w.app.RequestPick(160, 120)
	w.app.Frame(0.016)
	require.Len(t, picked, 1)
	assert.Same(t, w.cube, picked[0])

	// no request, no event
	w.app.Frame(0.016)
	assert.Len(t, picked, 1)

	w.rec.Pixels = nil
	w.app.RequestPick(1, 1)
	w.app.Frame(0.016)
	require.Len(t, picked, 2)
	assert.Nil(t, picked[1])
}

func TestToggleCamerasAndDump(t *testing.T) {
	w := newWorld(t)
	w.in.HandleKeyEvent(glfw.KeyC, glfw.Press)
	w.app.Frame(0.016)
	assert.True(t, w.app.opts.Settings.ShowCameras())
	assert.True(t, w.app.opts.ScenePass.ShowCameras)

	path, err := w.app.DumpIDs()
	require.NoError(t, err)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestFPSLimiter(t *testing.T) {
	l := NewFPSLimiter(func() int { return 100 })
	began := time.Now()
	for i := 0; i < 5; i++ {
		l.Wait()
	}
	assert.GreaterOrEqual(t, time.Since(began), 40*time.Millisecond)

	unlimited := NewFPSLimiter(nil)
	began = time.Now()
	unlimited.Wait()
	assert.Less(t, time.Since(began), 10*time.Millisecond)
}
