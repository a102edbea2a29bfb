package render

import (
	"cmp"
	"slices"

	"mini-engine/internal/asset"
	"mini-engine/internal/graphics/device"
	"mini-engine/internal/graphics/pipeline"
	"mini-engine/internal/resource"
	"mini-engine/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Drawable is one mesh submitted with a resolved material
type Drawable struct {
	Transform mgl32.Mat4
	Mesh      *resource.GpuMesh
	Material  *resource.Material
	Distance  float32
	ActorID   uint32
}

// skyState: no depth, inside faces of the cube
const skyState = pipeline.ColorWrite | pipeline.FaceCull | pipeline.CullFront

// ScenePass draws the model renderers of a scene: sky first, then opaque
// drawables front-to-back, then transparent ones back-to-front.
type ScenePass struct {
	log             *zap.Logger
	defaultMaterial *resource.Material

	// ShowCameras draws CameraModel at every other camera (editor aid)
	ShowCameras    bool
	CameraModel    *resource.GpuModel
	CameraMaterial *resource.Material

	skyMesh *resource.GpuMesh
	warned  map[uint32]bool // actor IDs already reported

	opaque      []Drawable
	transparent []Drawable
}

// NewScenePass creates a pass that falls back to def for slots without a
// usable material. def may be nil.
func NewScenePass(def *resource.Material, log *zap.Logger) *ScenePass {
	if log == nil {
		log = zap.NewNop()
	}
	return &ScenePass{
		log:             log,
		defaultMaterial: def,
		warned:          make(map[uint32]bool),
	}
}

func (p *ScenePass) Name() string { return "ScenePass" }

func (p *ScenePass) DefaultMaterial() *resource.Material     { return p.defaultMaterial }
func (p *ScenePass) SetDefaultMaterial(m *resource.Material) { p.defaultMaterial = m }

// Opaque returns the opaque drawables of the last Collect, in draw order
func (p *ScenePass) Opaque() []Drawable { return p.opaque }

// Transparent returns the transparent drawables of the last Collect, in draw order
func (p *ScenePass) Transparent() []Drawable { return p.transparent }

// Collect builds and sorts the drawable buckets for ctx without drawing
func (p *ScenePass) Collect(ctx *Context) {
	p.opaque = p.opaque[:0]
	p.transparent = p.transparent[:0]
	fa := ctx.Scene.FastAccess()
	if fa == nil || ctx.Camera == nil {
		return
	}
	camPos := ctx.Camera.Position()
	frustum := ctx.Camera.Frustum()

	for _, mr := range fa.ModelRenderers() {
		model := mr.Model()
		if model == nil || !mr.IsActive() {
			continue
		}
		owner := mr.Owner()
		world := owner.Transform().WorldMatrix()
		d := Drawable{
			Transform: world,
			Distance:  owner.Transform().WorldPosition().Sub(camPos).Len(),
			ActorID:   owner.ID(),
		}

		var meshes []*resource.GpuMesh
		switch mr.CullMode() {
		case scene.CullDisabled:
			meshes = model.Meshes()
		case scene.CullModel:
			if frustum.IsBoxVisible(model.AABB().Transformed(world)) {
				meshes = model.Meshes()
			}
		case scene.CullMesh:
			meshes = ctx.Renderer.GetMeshesInFrustum(model, world, frustum)
		case scene.CullCustom:
			if frustum.IsBoxVisible(mr.CustomAABB().Transformed(world)) {
				meshes = model.Meshes()
			}
		}

		for _, mesh := range meshes {
			d.Mesh = mesh
			d.Material = mr.Material(int(mesh.MaterialIndex()))
			if !d.Material.HasShader() {
				d.Material = p.defaultMaterial
				if !d.Material.HasShader() {
					p.warnOnce(mr)
					continue
				}
			}
			if d.Material.IsBlendable() {
				p.transparent = append(p.transparent, d)
			} else {
				p.opaque = append(p.opaque, d)
			}
		}
	}

	if p.ShowCameras && p.CameraModel != nil && p.CameraMaterial.HasShader() {
		for _, cam := range fa.Cameras() {
			if cam == ctx.Camera || !cam.IsActive() {
				continue
			}
			owner := cam.Owner()
			d := Drawable{
				Transform: owner.Transform().WorldMatrix(),
				Material:  p.CameraMaterial,
				Distance:  owner.Transform().WorldPosition().Sub(camPos).Len(),
				ActorID:   owner.ID(),
			}
			for _, mesh := range p.CameraModel.Meshes() {
				d.Mesh = mesh
				p.transparent = append(p.transparent, d)
			}
		}
	}

	// stable sorts keep FastAccess order for equal distances
	slices.SortStableFunc(p.opaque, func(a, b Drawable) int { return cmp.Compare(a.Distance, b.Distance) })
	slices.SortStableFunc(p.transparent, func(a, b Drawable) int { return cmp.Compare(b.Distance, a.Distance) })
}

func (p *ScenePass) warnOnce(mr *scene.ModelRenderer) {
	id := mr.Owner().ID()
	if p.warned[id] {
		return
	}
	p.warned[id] = true
	p.log.Warn("mesh skipped: no material with a shader",
		zap.String("actor", mr.Owner().Name()),
		zap.String("model", mr.Model().Path()))
}

// Render collects drawables and submits them
func (p *ScenePass) Render(ctx *Context) {
	p.Collect(ctx)
	if ctx.Camera == nil {
		return
	}
	frame := newFrameUniforms(ctx)
	frame.collectLights(ctx.Scene.FastAccess())

	p.drawSky(ctx, frame)
	for i := range p.opaque {
		p.draw(ctx, frame, &p.opaque[i])
	}
	for i := range p.transparent {
		p.draw(ctx, frame, &p.transparent[i])
	}
}

func (p *ScenePass) draw(ctx *Context, frame *frameUniforms, d *Drawable) {
	if !d.Material.Bind(ctx.Renderer) {
		return
	}
	s := d.Material.Shader()
	frame.apply(s)
	s.SetMatrix4("ub_Model", d.Transform)
	ctx.Renderer.Draw(d.Mesh, device.Triangles, 1)
}

func (p *ScenePass) drawSky(ctx *Context, frame *frameUniforms) {
	sky := ctx.Scene.ActiveSky()
	if sky == nil {
		return
	}
	m := sky.Material()
	if !m.Bind(nil) {
		return
	}
	if p.skyMesh == nil {
		p.skyMesh = resource.NewGpuMesh(ctx.Renderer.Device(), asset.CubeMesh(1, 0))
	}
	ctx.Renderer.ApplyStateMask(skyState)
	s := m.Shader()
	frame.apply(s)
	s.SetMatrix4("ub_Model", mgl32.Translate3D(frame.viewPos[0], frame.viewPos[1], frame.viewPos[2]))
	ctx.Renderer.Draw(p.skyMesh, device.Triangles, 1)
}

// Dispose releases the pass's own GPU resources
func (p *ScenePass) Dispose() {
	if p.skyMesh != nil {
		p.skyMesh.Release()
		p.skyMesh = nil
	}
}
