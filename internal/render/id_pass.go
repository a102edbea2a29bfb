package render

import (
	"cmp"
	"fmt"
	"image"
	"image/color"
	"io"
	"slices"

	"mini-engine/internal/graphics"
	"mini-engine/internal/graphics/device"
	"mini-engine/internal/graphics/pipeline"
	"mini-engine/internal/resource"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
	"golang.org/x/image/bmp"
)

// idState: opaque, depth-tested, no culling so both faces are pickable
const idState = pipeline.DepthWrite | pipeline.ColorWrite | pipeline.DepthTest

// ActorIDToColor packs an actor ID into an RGBA color, most significant byte in red
func ActorIDToColor(id uint32) mgl32.Vec4 {
	return mgl32.Vec4{
		float32(id>>24&0xFF) / 255,
		float32(id>>16&0xFF) / 255,
		float32(id>>8&0xFF) / 255,
		float32(id&0xFF) / 255,
	}
}

// ColorToActorID reverses ActorIDToColor for an RGBA8 pixel
func ColorToActorID(px [4]byte) uint32 {
	return uint32(px[0])<<24 | uint32(px[1])<<16 | uint32(px[2])<<8 | uint32(px[3])
}

// IdPass renders every model renderer into an offscreen buffer with its
// actor ID as flat color, for picking.
type IdPass struct {
	shader *graphics.Shader
	log    *zap.Logger

	// CameraModel, when set, makes cameras pickable
	CameraModel *resource.GpuModel

	dev    device.Device
	fbo    device.FramebufferHandle
	width  int
	height int

	drawables []Drawable
}

func NewIdPass(shader *graphics.Shader, log *zap.Logger) *IdPass {
	if log == nil {
		log = zap.NewNop()
	}
	return &IdPass{shader: shader, log: log}
}

func (p *IdPass) Name() string { return "IdPass" }

// Drawables returns the drawables of the last Render, in draw order
func (p *IdPass) Drawables() []Drawable { return p.drawables }

func (p *IdPass) ensureTarget(dev device.Device, width, height int) error {
	if p.fbo != 0 && p.width == width && p.height == height {
		return nil
	}
	if p.fbo != 0 {
		p.dev.DeleteFramebuffer(p.fbo)
		p.fbo = 0
	}
	fbo, err := dev.CreateFramebuffer(int32(width), int32(height))
	if err != nil {
		return fmt.Errorf("id pass target %dx%d: %w", width, height, err)
	}
	p.dev, p.fbo, p.width, p.height = dev, fbo, width, height
	return nil
}

func (p *IdPass) collect(ctx *Context) {
	p.drawables = p.drawables[:0]
	fa := ctx.Scene.FastAccess()
	if fa == nil || ctx.Camera == nil {
		return
	}
	camPos := ctx.Camera.Position()
	for _, mr := range fa.ModelRenderers() {
		model := mr.Model()
		if model == nil || !mr.IsActive() {
			continue
		}
		owner := mr.Owner()
		d := Drawable{
			Transform: owner.Transform().WorldMatrix(),
			Distance:  owner.Transform().WorldPosition().Sub(camPos).Len(),
			ActorID:   owner.ID(),
		}
		for _, mesh := range model.Meshes() {
			d.Mesh = mesh
			p.drawables = append(p.drawables, d)
		}
	}
	if p.CameraModel != nil {
		for _, cam := range fa.Cameras() {
			if cam == ctx.Camera || !cam.IsActive() {
				continue
			}
			owner := cam.Owner()
			d := Drawable{
				Transform: owner.Transform().WorldMatrix(),
				Distance:  owner.Transform().WorldPosition().Sub(camPos).Len(),
				ActorID:   owner.ID(),
			}
			for _, mesh := range p.CameraModel.Meshes() {
				d.Mesh = mesh
				p.drawables = append(p.drawables, d)
			}
		}
	}
	slices.SortStableFunc(p.drawables, func(a, b Drawable) int { return cmp.Compare(a.Distance, b.Distance) })
}

// Render draws the ID buffer at the renderer's viewport size
func (p *IdPass) Render(ctx *Context) {
	p.collect(ctx)
	if p.shader == nil || ctx.Camera == nil {
		return
	}
	r := ctx.Renderer
	width, height := r.Viewport()
	if width <= 0 || height <= 0 {
		return
	}
	if err := p.ensureTarget(r.Device(), width, height); err != nil {
		p.log.Error("id pass disabled for this frame", zap.Error(err))
		return
	}
	dev := r.Device()
	dev.BindFramebuffer(p.fbo)
	defer dev.BindFramebuffer(0)

	r.ApplyStateMask(idState)
	r.Clear(mgl32.Vec4{}, true, true)

	p.shader.Use()
	p.shader.SetMatrix4("ub_View", ctx.Camera.View())
	p.shader.SetMatrix4("ub_Projection", ctx.Camera.Projection())
	for i := range p.drawables {
		d := &p.drawables[i]
		p.shader.SetMatrix4("ub_Model", d.Transform)
		p.shader.SetVector4("u_ID", ActorIDToColor(d.ActorID))
		r.Draw(d.Mesh, device.Triangles, 1)
	}
}

// Pick returns the actor ID under window coordinate (x, y), origin top-left.
// Zero means nothing was drawn there.
func (p *IdPass) Pick(x, y int) uint32 {
	if p.fbo == 0 || x < 0 || y < 0 || x >= p.width || y >= p.height {
		return 0
	}
	p.dev.BindFramebuffer(p.fbo)
	defer p.dev.BindFramebuffer(0)
	px := p.dev.ReadPixels(int32(x), int32(p.height-1-y), 1, 1)
	if len(px) < 4 {
		return 0
	}
	return ColorToActorID([4]byte{px[0], px[1], px[2], px[3]})
}

// Dump writes the ID buffer as a BMP image
func (p *IdPass) Dump(w io.Writer) error {
	if p.fbo == 0 {
		return fmt.Errorf("id pass has not rendered")
	}
	p.dev.BindFramebuffer(p.fbo)
	data := p.dev.ReadPixels(0, 0, int32(p.width), int32(p.height))
	p.dev.BindFramebuffer(0)
	if len(data) < p.width*p.height*4 {
		return fmt.Errorf("id pass readback: got %d bytes", len(data))
	}

	img := image.NewRGBA(image.Rect(0, 0, p.width, p.height))
	for y := 0; y < p.height; y++ {
		// rows come bottom-up
		row := data[(p.height-1-y)*p.width*4:]
		for x := 0; x < p.width; x++ {
			o := x * 4
			// alpha carries the low ID byte; show it opaque
			img.SetRGBA(x, y, color.RGBA{R: row[o], G: row[o+1], B: row[o+2], A: 0xFF})
		}
	}
	return bmp.Encode(w, img)
}

// Dispose deletes the offscreen target
func (p *IdPass) Dispose() {
	if p.fbo != 0 {
		p.dev.DeleteFramebuffer(p.fbo)
		p.fbo = 0
	}
}
