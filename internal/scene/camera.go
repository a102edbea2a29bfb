package scene

import (
	"mini-engine/internal/geom"
	"mini-engine/internal/transform"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	DefaultFov  = 45 * math32.Pi / 180
	DefaultNear = 0.1
	DefaultFar  = 1000
	minNear     = 0.01
)

// Camera renders the scene from its owner's world transform
type Camera struct {
	BaseComponent

	fov        float32
	near       float32
	far        float32
	clearColor mgl32.Vec4

	projection mgl32.Mat4
	view       mgl32.Mat4
	frustum    geom.Frustum
}

func NewCamera() *Camera {
	c := &Camera{
		fov:        DefaultFov,
		near:       DefaultNear,
		far:        DefaultFar,
		clearColor: mgl32.Vec4{0.1, 0.1, 0.12, 1},
		projection: mgl32.Ident4(),
		view:       mgl32.Ident4(),
	}
	c.frustum.Reset(mgl32.Ident4())
	return c
}

func (c *Camera) Fov() float32                 { return c.fov }
func (c *Camera) Near() float32                { return c.near }
func (c *Camera) Far() float32                 { return c.far }
func (c *Camera) ClearColor() mgl32.Vec4       { return c.clearColor }
func (c *Camera) SetClearColor(col mgl32.Vec4) { c.clearColor = col }
func (c *Camera) Projection() mgl32.Mat4       { return c.projection }
func (c *Camera) View() mgl32.Mat4             { return c.view }
func (c *Camera) Frustum() *geom.Frustum       { return &c.frustum }

// SetFov sets the vertical field of view in radians, clamped to [0, Pi]
func (c *Camera) SetFov(fov float32) {
	c.fov = mgl32.Clamp(fov, 0, math32.Pi)
}

// SetNear clamps to [0.01, far]
func (c *Camera) SetNear(near float32) {
	c.near = mgl32.Clamp(near, minNear, c.far)
}

// SetFar keeps far >= near
func (c *Camera) SetFar(far float32) {
	c.far = math32.Max(far, c.near)
}

// Position returns the owner's world position
func (c *Camera) Position() mgl32.Vec3 {
	if c.owner == nil {
		return mgl32.Vec3{}
	}
	return c.owner.transform.WorldPosition()
}

// UpdateMatrices recomputes projection, view and frustum for a viewport
func (c *Camera) UpdateMatrices(width, height int) {
	aspect := float32(1)
	if width > 0 && height > 0 {
		aspect = float32(width) / float32(height)
	}
	c.projection = mgl32.Perspective(c.fov, aspect, c.near, c.far)

	pos := mgl32.Vec3{}
	rot := mgl32.QuatIdent()
	if c.owner != nil {
		pos = c.owner.transform.WorldPosition()
		rot = c.owner.transform.WorldRotation()
	}
	c.view = mgl32.LookAtV(pos, pos.Add(rot.Rotate(transform.Forward)), rot.Rotate(transform.Up))
	c.frustum.Reset(c.projection.Mul4(c.view))
}

// ViewProjection returns projection * view
func (c *Camera) ViewProjection() mgl32.Mat4 {
	return c.projection.Mul4(c.view)
}
