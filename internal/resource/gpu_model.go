package resource

import (
	"sync/atomic"

	"mini-engine/internal/asset"
	"mini-engine/internal/geom"
	"mini-engine/internal/graphics/device"
)

// GpuModel is the uploaded form of an asset.Model
type GpuModel struct {
	path          string
	meshes        []*GpuMesh
	materialNames []string
	aabb          geom.AABB
	refs          atomic.Int32
}

// NewGpuModel uploads every mesh of m. The model holds one reference.
func NewGpuModel(dev device.Device, path string, m *asset.Model) *GpuModel {
	g := &GpuModel{
		path:          path,
		materialNames: append([]string(nil), m.MaterialNames...),
		aabb:          m.AABB,
	}
	g.meshes = make([]*GpuMesh, 0, len(m.Meshes))
	for _, mesh := range m.Meshes {
		g.meshes = append(g.meshes, NewGpuMesh(dev, mesh))
	}
	g.refs.Store(1)
	return g
}

func (g *GpuModel) Path() string            { return g.path }
func (g *GpuModel) Meshes() []*GpuMesh      { return g.meshes }
func (g *GpuModel) MaterialNames() []string { return g.materialNames }
func (g *GpuModel) AABB() geom.AABB         { return g.aabb }

// Retain adds a reference
func (g *GpuModel) Retain() *GpuModel {
	g.refs.Add(1)
	return g
}

// Release drops a reference; the last one releases every mesh
func (g *GpuModel) Release() {
	if g.refs.Add(-1) == 0 {
		for _, m := range g.meshes {
			m.Release()
		}
	}
}

// Refs returns the current reference count
func (g *GpuModel) Refs() int32 {
	return g.refs.Load()
}
