package scene

import (
	"mini-engine/internal/event"
	"mini-engine/internal/geom"
	"mini-engine/internal/resource"
)

// CullMode selects the bounding volume tested against the camera frustum
type CullMode uint8

const (
	CullDisabled CullMode = iota
	CullModel
	CullMesh
	CullCustom
)

func (m CullMode) String() string {
	switch m {
	case CullDisabled:
		return "disabled"
	case CullModel:
		return "model"
	case CullMesh:
		return "mesh"
	case CullCustom:
		return "custom"
	}
	return "unknown"
}

// ModelRenderer draws a model with one material per material slot
type ModelRenderer struct {
	BaseComponent

	model      *resource.GpuModel
	materials  []*resource.Material
	cullMode   CullMode
	customAABB geom.AABB

	ModelChanged event.Event[*ModelRenderer]
}

func NewModelRenderer() *ModelRenderer {
	return &ModelRenderer{cullMode: CullMesh}
}

func (r *ModelRenderer) Model() *resource.GpuModel       { return r.model }
func (r *ModelRenderer) HasModel() bool                  { return r.model != nil }
func (r *ModelRenderer) Materials() []*resource.Material { return r.materials }
func (r *ModelRenderer) CullMode() CullMode              { return r.cullMode }
func (r *ModelRenderer) SetCullMode(m CullMode)          { r.cullMode = m }
func (r *ModelRenderer) CustomAABB() geom.AABB           { return r.customAABB }
func (r *ModelRenderer) SetCustomAABB(b geom.AABB)       { r.customAABB = b }

// SetModel swaps the model, holding a reference on the new one. The material
// list is resized to the model's slot count, keeping existing assignments.
func (r *ModelRenderer) SetModel(m *resource.GpuModel) {
	if m == r.model {
		return
	}
	if m != nil {
		m.Retain()
	}
	if r.model != nil {
		r.model.Release()
	}
	r.model = m

	n := 0
	if m != nil {
		n = len(m.MaterialNames())
	}
	materials := make([]*resource.Material, n)
	copy(materials, r.materials)
	r.materials = materials
	r.ModelChanged.Emit(r)
}

// Material returns the material for slot i, nil if unset or out of range
func (r *ModelRenderer) Material(i int) *resource.Material {
	if i < 0 || i >= len(r.materials) {
		return nil
	}
	return r.materials[i]
}

// SetMaterial assigns slot i; out-of-range slots are ignored
func (r *ModelRenderer) SetMaterial(i int, m *resource.Material) bool {
	if i < 0 || i >= len(r.materials) {
		return false
	}
	r.materials[i] = m
	return true
}

// OnDestroy drops the model reference
func (r *ModelRenderer) OnDestroy() {
	r.SetModel(nil)
}
