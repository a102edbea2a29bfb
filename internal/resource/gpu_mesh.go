package resource

import (
	"sync/atomic"

	"mini-engine/internal/asset"
	"mini-engine/internal/geom"
	"mini-engine/internal/graphics/device"
)

// GpuMesh is an uploaded mesh. It is reference counted; the GPU buffers are
// freed when the last reference is released.
type GpuMesh struct {
	dev           device.Device
	handle        device.MeshHandle
	indexCount    int32
	vertexCount   int32
	materialIndex uint32
	aabb          geom.AABB
	refs          atomic.Int32
}

// NewGpuMesh uploads m and returns a mesh holding one reference
func NewGpuMesh(dev device.Device, m *asset.Mesh) *GpuMesh {
	g := &GpuMesh{
		dev:           dev,
		handle:        dev.CreateMesh(asset.PackVertices(m.Vertices), m.Indices),
		indexCount:    int32(len(m.Indices)),
		vertexCount:   int32(len(m.Vertices)),
		materialIndex: m.MaterialIndex,
		aabb:          m.AABB,
	}
	g.refs.Store(1)
	return g
}

func (g *GpuMesh) Bind()   { g.dev.BindMesh(g.handle) }
func (g *GpuMesh) Unbind() { g.dev.BindMesh(0) }

func (g *GpuMesh) Handle() device.MeshHandle { return g.handle }
func (g *GpuMesh) IndexCount() int32         { return g.indexCount }
func (g *GpuMesh) VertexCount() int32        { return g.vertexCount }
func (g *GpuMesh) MaterialIndex() uint32     { return g.materialIndex }
func (g *GpuMesh) AABB() geom.AABB           { return g.aabb }

// Retain adds a reference
func (g *GpuMesh) Retain() *GpuMesh {
	g.refs.Add(1)
	return g
}

// Release drops a reference and deletes the GPU buffers on the last one.
func (g *GpuMesh) Release() {
	if g.refs.Add(-1) == 0 {
		g.dev.DeleteMesh(g.handle)
		g.handle = 0
	}
}

// Released reports whether the GPU buffers are gone
func (g *GpuMesh) Released() bool {
	return g.refs.Load() <= 0
}
