package renderer

import (
	"mini-engine/internal/geom"
	"mini-engine/internal/graphics/device"
	"mini-engine/internal/graphics/pipeline"
	"mini-engine/internal/resource"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Renderer owns the currently applied pipeline state and issues draw calls
type Renderer struct {
	dev    device.Device
	log    *zap.Logger
	state  pipeline.State
	frame  FrameInfo
	width  int
	height int
}

// NewRenderer creates a renderer and reads back the device's current state
func NewRenderer(dev device.Device, log *zap.Logger) *Renderer {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Renderer{dev: dev, log: log}
	r.FetchState()
	return r
}

// Device returns the underlying device
func (r *Renderer) Device() device.Device {
	return r.dev
}

// State returns the mask the renderer believes is applied
func (r *Renderer) State() pipeline.State {
	return r.state
}

// FetchState reads the device's fixed-function state and makes it current.
func (r *Renderer) FetchState() pipeline.State {
	var s pipeline.State
	s.SetDepthWrite(r.dev.DepthMask())
	s.SetColorWrite(r.dev.ColorMask())
	s.SetBlend(r.dev.Capability(device.CapBlend))
	s.SetFaceCull(r.dev.Capability(device.CapCullFace))
	s.SetDepthTest(r.dev.Capability(device.CapDepthTest))
	switch r.dev.CullFace() {
	case device.FaceBack:
		s.SetBackCull(true)
	case device.FaceFront:
		s.SetFrontCull(true)
	case device.FaceFrontAndBack:
		s.SetFrontAndBackCull(true)
	}
	r.state = s
	r.log.Debug("pipeline state fetched", zap.Stringer("state", s))
	return s
}

// ApplyStateMask transitions to mask, issuing one device call per differing
// group. The cull face is only selected while face culling is enabled in mask,
// with back taking priority over front over front-and-back.
func (r *Renderer) ApplyStateMask(mask pipeline.State) {
	applyStateDiff(r.dev, r.state, mask)
	r.state = mask
}

func applyStateDiff(dev StateDevice, current, mask pipeline.State) {
	diff := mask.Diff(current)
	if diff == 0 {
		return
	}
	if diff.Has(pipeline.DepthWrite) {
		dev.SetDepthMask(mask.DepthWriteEnabled())
	}
	if diff.Has(pipeline.ColorWrite) {
		dev.SetColorMask(mask.ColorWriteEnabled())
	}
	if diff.Has(pipeline.Blend) {
		dev.SetCapability(device.CapBlend, mask.BlendEnabled())
	}
	if diff.Has(pipeline.FaceCull) {
		dev.SetCapability(device.CapCullFace, mask.FaceCullEnabled())
	}
	if diff.Has(pipeline.DepthTest) {
		dev.SetCapability(device.CapDepthTest, mask.DepthTestEnabled())
	}
	if mask.FaceCullEnabled() && diff&pipeline.CullModeBits != 0 {
		switch {
		case mask.BackCullEnabled():
			dev.SetCullFace(device.FaceBack)
		case mask.FrontCullEnabled():
			dev.SetCullFace(device.FaceFront)
		default:
			dev.SetCullFace(device.FaceFrontAndBack)
		}
	}
}

// SetViewport resizes the drawable area
func (r *Renderer) SetViewport(width, height int) {
	r.width, r.height = width, height
	r.dev.Viewport(0, 0, int32(width), int32(height))
}

// Viewport returns the last size passed to SetViewport
func (r *Renderer) Viewport() (int, int) {
	return r.width, r.height
}

// Clear clears the bound framebuffer. Writes disabled by the current state
// are enabled for the clear so the whole buffer is reset.
func (r *Renderer) Clear(color mgl32.Vec4, colorBuffer, depthBuffer bool) {
	saved := r.state
	want := saved
	if colorBuffer {
		want.SetColorWrite(true)
	}
	if depthBuffer {
		want.SetDepthWrite(true)
	}
	r.ApplyStateMask(want)
	r.dev.Clear(color, colorBuffer, depthBuffer)
	r.ApplyStateMask(saved)
}

// BeginFrame resets the frame counters
func (r *Renderer) BeginFrame() {
	r.frame = FrameInfo{}
}

// FrameInfo returns the counters accumulated since BeginFrame
func (r *Renderer) FrameInfo() FrameInfo {
	return r.frame
}

// Draw issues an indexed draw of mesh
func (r *Renderer) Draw(mesh *resource.GpuMesh, prim device.Primitive, instances int) {
	if mesh == nil || mesh.Released() || mesh.IndexCount() == 0 || instances < 1 {
		return
	}
	mesh.Bind()
	r.dev.DrawElements(prim, mesh.IndexCount(), int32(instances))

	r.frame.Batches++
	r.frame.Instances += instances
	if prim == device.Triangles {
		r.frame.Polygons += int(mesh.IndexCount()) / 3 * instances
	}
}

// GetMeshesInFrustum returns the meshes of model visible through frustum when
// placed with modelMatrix. A single-mesh model is decided by the model box alone.
func (r *Renderer) GetMeshesInFrustum(model *resource.GpuModel, modelMatrix mgl32.Mat4, frustum *geom.Frustum) []*resource.GpuMesh {
	if model == nil || frustum == nil {
		return nil
	}
	if !frustum.IsBoxVisible(model.AABB().Transformed(modelMatrix)) {
		return nil
	}
	meshes := model.Meshes()
	if len(meshes) == 1 {
		return meshes[:1:1]
	}
	result := make([]*resource.GpuMesh, 0, len(meshes))
	for _, mesh := range meshes {
		if frustum.IsBoxVisible(mesh.AABB().Transformed(modelMatrix)) {
			result = append(result, mesh)
		}
	}
	return result
}
