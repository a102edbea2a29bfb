package main

import (
	"context"
	"path/filepath"
	"slices"

	"mini-engine/internal/asset"
	"mini-engine/internal/config"
	"mini-engine/internal/control"
	"mini-engine/internal/graphics"
	"mini-engine/internal/input"
	"mini-engine/internal/resource"
	"mini-engine/internal/scene"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

func setupWindow(cfg config.WindowConfig) (*glfw.Window, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	window, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		return nil, err
	}
	window.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		return nil, err
	}

	// the FPS limiter paces frames when vsync is off
	if cfg.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}
	return window, nil
}

// headlessWindow stands in for a window when rendering to a Recorder
type headlessWindow struct {
	width, height int
	frames        int
	swaps         int
	closed        bool
}

func (w *headlessWindow) ShouldClose() bool              { return w.closed || w.swaps >= w.frames }
func (w *headlessWindow) SetShouldClose(v bool)          { w.closed = v }
func (w *headlessWindow) SwapBuffers()                   { w.swaps++ }
func (w *headlessWindow) GetFramebufferSize() (int, int) { return w.width, w.height }

const spinScript = `
local speed = 0.8

function on_start()
	print("spinner " .. actor.name() .. " started")
end

function on_update(dt)
	actor.rotate(0, 1, 0, speed * dt)
end
`

// buildDemoScene lays out a camera, two lights, a sky, a sub-scene of
// props and a scripted spinner.
func buildDemoScene(cfg *config.Config, cache *resource.Cache, in *input.Manager, log *zap.Logger) *scene.Actor {
	root := scene.NewScene("Root", log)

	camActor := root.CreateActor("Camera", "camera")
	camActor.Transform().SetPosition(mgl32.Vec3{0, 2, 10})
	cam := scene.AddComponent(camActor, scene.NewCamera())
	cam.SetFov(cfg.Camera.FovRadians())
	cam.SetFar(cfg.Camera.Far)
	cam.SetNear(cfg.Camera.Near)
	c := cfg.Renderer.ClearColor
	cam.SetClearColor(mgl32.Vec4{c[0], c[1], c[2], c[3]})
	scene.AddComponent(camActor, control.NewFlyController(in, cfg.Camera.MoveSpeed, cfg.Camera.LookSpeed))

	sun := root.CreateActor("Sun", "light")
	sun.Transform().LookAt(mgl32.Vec3{-1, -2, -1}, mgl32.Vec3{0, 1, 0})
	scene.AddComponent(sun, scene.NewLight(scene.LightDirectional))

	lamp := root.CreateActor("Lamp", "light")
	lamp.Transform().SetPosition(mgl32.Vec3{3, 3, 2})
	point := scene.AddComponent(lamp, scene.NewLight(scene.LightPoint))
	point.SetColor(mgl32.Vec3{1, 0.8, 0.6})
	point.SetIntensity(2)

	if skyShader, err := cache.Shader(graphics.ShaderSky); err == nil {
		sky := resource.NewMaterial("builtin:sky", skyShader)
		scene.AddComponent(root, scene.NewSky(cache.AddMaterial(sky)))
	} else {
		log.Warn("sky disabled", zap.Error(err))
	}

	cube := cache.AddModel("builtin:cube", asset.CubeModel(0.5, "surface"))
	glass := resource.NewMaterial("builtin:glass", cache.DefaultMaterial().Shader())
	glass.SetBlendable(true)
	glass.Uniforms.Albedo = mgl32.Vec4{0.4, 0.7, 1, 0.4}
	cache.AddMaterial(glass)

	props := root.CreateScene("Props", "")
	for i := 0; i < 5; i++ {
		a := props.CreateActor("Crate", "prop")
		a.Transform().SetPosition(mgl32.Vec3{float32(i-2) * 1.5, 0, 0})
		mr := scene.AddComponent(a, scene.NewModelRenderer())
		mr.SetModel(cube)
		if i%2 == 1 {
			mr.SetMaterial(0, glass)
		}
	}

	floor := root.CreateActor("Floor", "")
	floor.Transform().SetPosition(mgl32.Vec3{0, -0.6, 0})
	floor.Transform().SetScale(mgl32.Vec3{20, 0.1, 20})
	floorMR := scene.AddComponent(floor, scene.NewModelRenderer())
	floorMR.SetModel(cube)
	floorMR.SetCullMode(scene.CullModel)

	spinner := root.CreateActor("Spinner", "")
	spinner.Transform().SetPosition(mgl32.Vec3{0, 1.5, -2})
	spinMR := scene.AddComponent(spinner, scene.NewModelRenderer())
	scene.AddComponent(spinner, scene.NewScript("spin", spinScript))
	cache.LoadModelAsync("models/spinner.lgmdl", func(m *resource.GpuModel, err error) {
		if err != nil {
			m = cube
		}
		spinMR.SetModel(m)
	})

	return root
}

// preloadModels decodes every model under <root>/models and lines them up
// behind the props.
func preloadModels(ctx context.Context, cache *resource.Cache, root string, scn *scene.Actor) error {
	matches, err := filepath.Glob(filepath.Join(root, "models", "*.lgmdl"))
	if err != nil || len(matches) == 0 {
		return err
	}
	var paths []string
	for _, m := range matches {
		rel, err := filepath.Rel(root, m)
		if err != nil {
			return err
		}
		if filepath.Base(rel) != "spinner.lgmdl" {
			paths = append(paths, rel)
		}
	}
	slices.Sort(paths)
	if err := cache.Preload(ctx, paths); err != nil {
		return err
	}
	for i, p := range paths {
		m, err := cache.Model(p)
		if err != nil {
			continue
		}
		a := scn.CreateActor(filepath.Base(p), "model")
		a.Transform().SetPosition(mgl32.Vec3{float32(i) * 3, 0, -6})
		scene.AddComponent(a, scene.NewModelRenderer()).SetModel(m)
	}
	return nil
}

// cameraGizmo returns the model and material drawn at non-viewing cameras
func cameraGizmo(cache *resource.Cache) (*resource.GpuModel, *resource.Material) {
	model := cache.AddModel("builtin:camera-gizmo", asset.CubeModel(0.2, "gizmo"))
	shader, err := cache.Shader(graphics.ShaderUnlit)
	if err != nil {
		shader = cache.DefaultMaterial().Shader()
	}
	m := resource.NewMaterial("builtin:camera-gizmo", shader)
	m.SetBlendable(true)
	m.Uniforms.Albedo = mgl32.Vec4{1, 0.9, 0.2, 0.6}
	return model, cache.AddMaterial(m)
}
