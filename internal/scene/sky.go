package scene

import "mini-engine/internal/resource"

// Sky draws a background with its material before any opaque geometry
type Sky struct {
	BaseComponent
	material *resource.Material
}

func NewSky(m *resource.Material) *Sky {
	return &Sky{material: m}
}

func (s *Sky) Material() *resource.Material     { return s.material }
func (s *Sky) SetMaterial(m *resource.Material) { s.material = m }
