package config

import "sync"

// RenderSettings holds the render options that can change while running
type RenderSettings struct {
	mu          sync.RWMutex
	maxFPS      int
	showCameras bool
}

func NewRenderSettings(cfg RendererConfig) *RenderSettings {
	return &RenderSettings{
		maxFPS:      clampFPS(cfg.MaxFPS),
		showCameras: cfg.ShowCameraGizmos,
	}
}

// MaxFPS returns the frame cap, 0 when unlimited
func (s *RenderSettings) MaxFPS() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxFPS
}

// SetMaxFPS sets the frame cap. Values <= 0 disable it, others are clamped to [15, 1000].
func (s *RenderSettings) SetMaxFPS(fps int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxFPS = clampFPS(fps)
}

func (s *RenderSettings) ShowCameras() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.showCameras
}

// ToggleCameras flips camera gizmo drawing and returns the new value
func (s *RenderSettings) ToggleCameras() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.showCameras = !s.showCameras
	return s.showCameras
}
