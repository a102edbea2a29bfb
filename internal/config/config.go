package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Window   WindowConfig   `toml:"window"`
	Camera   CameraConfig   `toml:"camera"`
	Renderer RendererConfig `toml:"renderer"`
	Assets   AssetsConfig   `toml:"assets"`
	Logging  LoggingConfig  `toml:"logging"`
}

type WindowConfig struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
	VSync  bool   `toml:"vsync"`
}

type CameraConfig struct {
	FovDegrees float32 `toml:"fov_degrees"`
	Near       float32 `toml:"near"`
	Far        float32 `toml:"far"`
	MoveSpeed  float32 `toml:"move_speed"` // units per second
	LookSpeed  float32 `toml:"look_speed"` // radians per pixel
}

type RendererConfig struct {
	ClearColor       [4]float32 `toml:"clear_color"`
	DefaultMaterial  string     `toml:"default_material"` // empty = built-in
	MaxFPS           int        `toml:"max_fps"`          // 0 = unlimited
	ShowCameraGizmos bool       `toml:"show_camera_gizmos"`
}

type AssetsConfig struct {
	Root          string `toml:"root"`
	LoaderWorkers int    `toml:"loader_workers"`
	QueueSize     int    `toml:"queue_size"`
}

type LoggingConfig struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			Title:  "mini-engine",
			VSync:  true,
		},
		Camera: CameraConfig{
			FovDegrees: 45,
			Near:       0.1,
			Far:        1000,
			MoveSpeed:  5,
			LookSpeed:  0.003,
		},
		Renderer: RendererConfig{
			ClearColor: [4]float32{0.1, 0.1, 0.12, 1},
			MaxFPS:     144,
		},
		Assets: AssetsConfig{
			Root:          "assets",
			LoaderWorkers: 2,
			QueueSize:     64,
		},
		Logging: LoggingConfig{
			Level:       "info",
			Development: true,
		},
	}
}

// Load decodes path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.clamp()
	return cfg, nil
}

// clamp pulls out-of-range values back to something usable
func (c *Config) clamp() {
	if c.Window.Width < 64 {
		c.Window.Width = 64
	}
	if c.Window.Height < 64 {
		c.Window.Height = 64
	}
	c.Camera.FovDegrees = clampf(c.Camera.FovDegrees, 1, 179)
	if c.Camera.Near < 0.01 {
		c.Camera.Near = 0.01
	}
	if c.Camera.Far < c.Camera.Near {
		c.Camera.Far = c.Camera.Near
	}
	if c.Camera.MoveSpeed < 0 {
		c.Camera.MoveSpeed = 0
	}
	if c.Camera.LookSpeed < 0 {
		c.Camera.LookSpeed = 0
	}
	c.Renderer.MaxFPS = clampFPS(c.Renderer.MaxFPS)
	if c.Assets.LoaderWorkers < 1 {
		c.Assets.LoaderWorkers = 1
	}
	if c.Assets.QueueSize < 1 {
		c.Assets.QueueSize = 1
	}
}

// FovRadians returns the configured field of view in radians
func (c CameraConfig) FovRadians() float32 {
	return c.FovDegrees * math.Pi / 180
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFPS(fps int) int {
	if fps <= 0 {
		return 0
	}
	if fps < 15 {
		return 15
	}
	if fps > 1000 {
		return 1000
	}
	return fps
}
