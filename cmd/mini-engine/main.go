package main

import (
	"context"
	"flag"
	"runtime"

	"mini-engine/internal/app"
	"mini-engine/internal/config"
	"mini-engine/internal/graphics"
	"mini-engine/internal/graphics/device"
	"mini-engine/internal/graphics/renderer"
	"mini-engine/internal/input"
	"mini-engine/internal/loader"
	"mini-engine/internal/logging"
	"mini-engine/internal/profiling"
	"mini-engine/internal/render"
	"mini-engine/internal/resource"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/xlab/closer"
	"go.uber.org/zap"
)

func init() {
	// GL and glfw calls must stay on the main thread
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "engine.toml", "path to the TOML config")
	headless := flag.Bool("headless", false, "render to a recording device without a window")
	frames := flag.Int("frames", 120, "frames to run in headless mode")
	dumpDir := flag.String("dump", ".", "directory for ID buffer dumps")
	flag.Parse()

	defer closer.Close()

	cfg, err := config.Load(*configPath)
	if err != nil {
		closer.Fatalln(err)
	}
	log, err := logging.New(cfg.Logging)
	if err != nil {
		closer.Fatalln(err)
	}

	var (
		dev    device.Device
		window app.Window
		poll   func()
		in     = input.NewManager()
	)
	if *headless {
		dev = device.NewRecorder()
		window = &headlessWindow{width: cfg.Window.Width, height: cfg.Window.Height, frames: *frames}
	} else {
		if err := glfw.Init(); err != nil {
			log.Fatal("glfw init", zap.Error(err))
		}
		w, err := setupWindow(cfg.Window)
		if err != nil {
			glfw.Terminate()
			log.Fatal("window setup", zap.Error(err))
		}
		in.Attach(w)
		dev = device.NewGLDevice()
		window = w
		poll = glfw.PollEvents
	}

	pool := loader.NewPool(cfg.Assets.LoaderWorkers, cfg.Assets.QueueSize)
	cache := resource.NewCache(dev, log.Named("cache"), cfg.Assets.Root, pool)
	r := renderer.NewRenderer(dev, log.Named("renderer"))
	r.FetchState()

	defaultMat := cache.DefaultMaterial()
	if cfg.Renderer.DefaultMaterial != "" {
		if m, err := cache.Material(cfg.Renderer.DefaultMaterial); err == nil {
			defaultMat = m
		}
	}
	scenePass := render.NewScenePass(defaultMat, log.Named("scene-pass"))
	idShader, err := cache.Shader(graphics.ShaderID)
	if err != nil {
		log.Warn("picking disabled", zap.Error(err))
	}
	idPass := render.NewIdPass(idShader, log.Named("id-pass"))

	root := buildDemoScene(cfg, cache, in, log.Named("scene"))
	if err := preloadModels(context.Background(), cache, cfg.Assets.Root, root); err != nil {
		log.Warn("preload failed", zap.Error(err))
	}
	scenePass.CameraModel, scenePass.CameraMaterial = cameraGizmo(cache)
	idPass.CameraModel = scenePass.CameraModel

	a := app.New(app.Options{
		Window:     window,
		PollEvents: poll,
		Input:      in,
		Scene:      root,
		Cache:      cache,
		Renderer:   r,
		ScenePass:  scenePass,
		IdPass:     idPass,
		Settings:   config.NewRenderSettings(cfg.Renderer),
		Profiler:   profiling.New(),
		Logger:     log,
		DumpDir:    *dumpDir,
	})

	closer.Bind(func() {
		root.Delete()
		scenePass.Dispose()
		idPass.Dispose()
		pool.Shutdown()
		cache.Dispose()
		if !*headless {
			glfw.Terminate()
		}
		log.Info("shutdown", zap.Int("frames", a.Frames()))
		_ = log.Sync()
	})

	log.Info("running", zap.Bool("headless", *headless), zap.String("config", *configPath))
	a.Run()
}
