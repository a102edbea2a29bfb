package asset

import (
	"mini-engine/internal/geom"

	"github.com/go-gl/mathgl/mgl32"
)

// Mesh is CPU-side geometry for one material slot.
type Mesh struct {
	Vertices      []Vertex
	Indices       []uint32
	MaterialIndex uint32
	AABB          geom.AABB
}

// NewMesh creates a mesh and computes its bounding box from the vertex positions
func NewMesh(vertices []Vertex, indices []uint32, materialIndex uint32) *Mesh {
	m := &Mesh{Vertices: vertices, Indices: indices, MaterialIndex: materialIndex}
	m.UpdateAABB()
	return m
}

// UpdateAABB recomputes the bounding box; a mesh without vertices gets the zero box.
func (m *Mesh) UpdateAABB() {
	pts := make([]mgl32.Vec3, len(m.Vertices))
	for i, v := range m.Vertices {
		pts[i] = v.Position
	}
	m.AABB = geom.FromPoints(pts)
}

// TriangleCount returns the number of triangles described by the index list
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}
