package control

import (
	"mini-engine/internal/input"
	"mini-engine/internal/scene"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const maxPitch = 89 * math32.Pi / 180

// Source is the input state a controller reads
type Source interface {
	IsActive(action input.Action) bool
	MouseDelta() (dx, dy float64)
}

// FlyController moves its owner freely: WASD/QE translate along the owner's
// axes, mouse motion while Look is held turns it.
type FlyController struct {
	scene.BaseComponent

	input Source

	MoveSpeed float32 // units per second
	LookSpeed float32 // radians per pixel
	FastScale float32

	yaw, pitch float32
}

func NewFlyController(src Source, moveSpeed, lookSpeed float32) *FlyController {
	return &FlyController{
		input:     src,
		MoveSpeed: moveSpeed,
		LookSpeed: lookSpeed,
		FastScale: 4,
	}
}

func (c *FlyController) Yaw() float32   { return c.yaw }
func (c *FlyController) Pitch() float32 { return c.pitch }

// OnStart picks up the orientation the owner already has
func (c *FlyController) OnStart() {
	fwd := c.Owner().Transform().Forward()
	c.yaw = math32.Atan2(-fwd.X(), -fwd.Z())
	c.pitch = clampPitch(math32.Asin(mgl32.Clamp(fwd.Y(), -1, 1)))
	c.apply()
}

// SetLook sets yaw and pitch in radians. Pitch is clamped to +-89 degrees.
func (c *FlyController) SetLook(yaw, pitch float32) {
	c.yaw, c.pitch = yaw, clampPitch(pitch)
	c.apply()
}

func (c *FlyController) OnUpdate(dt float32) {
	if c.input == nil {
		return
	}
	if c.input.IsActive(input.ActionLook) {
		dx, dy := c.input.MouseDelta()
		if dx != 0 || dy != 0 {
			c.SetLook(c.yaw-float32(dx)*c.LookSpeed, c.pitch-float32(dy)*c.LookSpeed)
		}
	}

	var move mgl32.Vec3
	axis := func(pos, neg input.Action) float32 {
		var v float32
		if c.input.IsActive(pos) {
			v++
		}
		if c.input.IsActive(neg) {
			v--
		}
		return v
	}
	move[2] = -axis(input.ActionMoveForward, input.ActionMoveBackward)
	move[0] = axis(input.ActionMoveRight, input.ActionMoveLeft)
	move[1] = axis(input.ActionMoveUp, input.ActionMoveDown)
	if move.Len() == 0 {
		return
	}

	speed := c.MoveSpeed * dt
	if c.input.IsActive(input.ActionFast) {
		speed *= c.FastScale
	}
	t := c.Owner().Transform()
	t.Translate(t.Rotation().Rotate(move.Normalize()).Mul(speed))
}

func (c *FlyController) apply() {
	q := mgl32.QuatRotate(c.yaw, mgl32.Vec3{0, 1, 0}).Mul(mgl32.QuatRotate(c.pitch, mgl32.Vec3{1, 0, 0}))
	c.Owner().Transform().SetRotation(q)
}

func clampPitch(p float32) float32 {
	return mgl32.Clamp(p, -maxPitch, maxPitch)
}
