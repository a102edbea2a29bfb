package asset

import "mini-engine/internal/geom"

// Model is a set of meshes plus the material slot names they index into.
type Model struct {
	Meshes        []*Mesh
	MaterialNames []string
	AABB          geom.AABB
}

// NewModel creates a model and merges the mesh bounding boxes
func NewModel(meshes []*Mesh, materialNames []string) *Model {
	m := &Model{Meshes: meshes, MaterialNames: materialNames}
	m.UpdateAABB()
	return m
}

// UpdateAABB merges all mesh boxes; a model without meshes gets the zero box.
func (m *Model) UpdateAABB() {
	if len(m.Meshes) == 0 {
		m.AABB = geom.AABB{}
		return
	}
	box := m.Meshes[0].AABB
	for _, mesh := range m.Meshes[1:] {
		box = box.Merge(mesh.AABB)
	}
	m.AABB = box
}

// Empty reports whether the model has neither meshes nor material slots
func (m *Model) Empty() bool {
	return len(m.Meshes) == 0 && len(m.MaterialNames) == 0
}
