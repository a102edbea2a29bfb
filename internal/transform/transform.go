package transform

import (
	"mini-engine/internal/event"

	"github.com/go-gl/mathgl/mgl32"
)

// Local-space basis directions
var (
	Forward = mgl32.Vec3{0, 0, -1}
	Up      = mgl32.Vec3{0, 1, 0}
	Right   = mgl32.Vec3{1, 0, 0}
)

// Transform holds a node's local position, rotation and scale and lazily caches
// its local and world matrices. Children track their parent through Changed.
type Transform struct {
	position mgl32.Vec3
	rotation mgl32.Quat
	scale    mgl32.Vec3

	parent    *Transform
	parentSub *event.Subscription

	localDirty bool
	worldDirty bool

	localMatrix   mgl32.Mat4
	worldMatrix   mgl32.Mat4
	worldPosition mgl32.Vec3
	worldRotation mgl32.Quat
	worldScale    mgl32.Vec3

	// Changed fires after any local value or the parent chain changes
	Changed event.Event[*Transform]
}

// New creates an identity transform with no parent
func New() *Transform {
	return &Transform{
		rotation:   mgl32.QuatIdent(),
		scale:      mgl32.Vec3{1, 1, 1},
		localDirty: true,
		worldDirty: true,
	}
}

func (t *Transform) invalidate() {
	t.localDirty = true
	t.worldDirty = true
	t.Changed.Emit(t)
}

func (t *Transform) onParentChanged(*Transform) {
	// local values are untouched; only the world cache depends on the parent
	t.worldDirty = true
	t.Changed.Emit(t)
}

// SetPosition sets the local position
func (t *Transform) SetPosition(p mgl32.Vec3) {
	t.position = p
	t.invalidate()
}

// SetRotation sets the local rotation
func (t *Transform) SetRotation(q mgl32.Quat) {
	t.rotation = q
	t.invalidate()
}

// SetScale sets the local scale
func (t *Transform) SetScale(s mgl32.Vec3) {
	t.scale = s
	t.invalidate()
}

// SetWorldPosition places the node at a world-space position
func (t *Transform) SetWorldPosition(p mgl32.Vec3) {
	if t.parent == nil {
		t.position = p
	} else {
		t.position = t.parent.WorldMatrix().Inv().Mul4x1(p.Vec4(1)).Vec3()
	}
	t.invalidate()
}

// SetWorldRotation orients the node with a world-space rotation
func (t *Transform) SetWorldRotation(q mgl32.Quat) {
	if t.parent == nil {
		t.rotation = q
	} else {
		t.rotation = t.parent.WorldRotation().Inverse().Mul(q)
	}
	t.invalidate()
}

// Translate offsets the local position
func (t *Transform) Translate(d mgl32.Vec3) {
	t.position = t.position.Add(d)
	t.invalidate()
}

// Rotate applies q after the current local rotation
func (t *Transform) Rotate(q mgl32.Quat) {
	t.rotation = t.rotation.Mul(q).Normalize()
	t.invalidate()
}

// RotateAxis rotates around a local axis by angle radians
func (t *Transform) RotateAxis(axis mgl32.Vec3, angle float32) {
	t.Rotate(mgl32.QuatRotate(angle, axis.Normalize()))
}

// Scale multiplies the local scale component-wise
func (t *Transform) Scale(s mgl32.Vec3) {
	t.scale = mgl32.Vec3{t.scale[0] * s[0], t.scale[1] * s[1], t.scale[2] * s[2]}
	t.invalidate()
}

// LookAt turns the node so its forward axis points from its local position at target.
func (t *Transform) LookAt(target, up mgl32.Vec3) {
	view := mgl32.LookAtV(t.position, target, up)
	t.rotation = mgl32.Mat4ToQuat(view).Conjugate().Normalize()
	t.invalidate()
}

func (t *Transform) Position() mgl32.Vec3   { return t.position }
func (t *Transform) Rotation() mgl32.Quat   { return t.rotation }
func (t *Transform) LocalScale() mgl32.Vec3 { return t.scale }

func (t *Transform) Forward() mgl32.Vec3 { return t.rotation.Rotate(Forward) }
func (t *Transform) Up() mgl32.Vec3      { return t.rotation.Rotate(Up) }
func (t *Transform) Right() mgl32.Vec3   { return t.rotation.Rotate(Right) }

// WorldPosition returns the position in world space
func (t *Transform) WorldPosition() mgl32.Vec3 {
	t.updateWorld()
	return t.worldPosition
}

// WorldRotation returns the rotation in world space
func (t *Transform) WorldRotation() mgl32.Quat {
	t.updateWorld()
	return t.worldRotation
}

// WorldScale returns the lossy world scale
func (t *Transform) WorldScale() mgl32.Vec3 {
	t.updateWorld()
	return t.worldScale
}

func (t *Transform) WorldForward() mgl32.Vec3 { return t.WorldRotation().Rotate(Forward) }
func (t *Transform) WorldUp() mgl32.Vec3      { return t.WorldRotation().Rotate(Up) }
func (t *Transform) WorldRight() mgl32.Vec3   { return t.WorldRotation().Rotate(Right) }

// LocalMatrix returns T*R*S of the local values
func (t *Transform) LocalMatrix() mgl32.Mat4 {
	if t.localDirty {
		t.localDirty = false
		t.localMatrix = mgl32.Translate3D(t.position[0], t.position[1], t.position[2]).
			Mul4(t.rotation.Mat4()).
			Mul4(mgl32.Scale3D(t.scale[0], t.scale[1], t.scale[2]))
	}
	return t.localMatrix
}

// WorldMatrix returns parent.WorldMatrix * LocalMatrix, or LocalMatrix without a parent.
func (t *Transform) WorldMatrix() mgl32.Mat4 {
	t.updateWorld()
	return t.worldMatrix
}

func (t *Transform) updateWorld() {
	if !t.worldDirty {
		return
	}
	t.worldDirty = false
	if t.parent == nil {
		t.worldMatrix = t.LocalMatrix()
		t.worldPosition = t.position
		t.worldRotation = t.rotation
		t.worldScale = t.scale
		return
	}
	t.worldMatrix = t.parent.WorldMatrix().Mul4(t.LocalMatrix())
	t.worldPosition, t.worldRotation, t.worldScale = decompose(t.worldMatrix)
}

// decompose splits an affine matrix into translation, rotation and scale.
// Shear is dropped.
func decompose(m mgl32.Mat4) (mgl32.Vec3, mgl32.Quat, mgl32.Vec3) {
	pos := m.Col(3).Vec3()
	c0, c1, c2 := m.Col(0).Vec3(), m.Col(1).Vec3(), m.Col(2).Vec3()
	scale := mgl32.Vec3{c0.Len(), c1.Len(), c2.Len()}
	if m.Mat3().Det() < 0 {
		scale[0] = -scale[0]
	}
	if scale[0] == 0 || scale[1] == 0 || scale[2] == 0 {
		return pos, mgl32.QuatIdent(), scale
	}
	rot := mgl32.Mat3FromCols(c0.Mul(1/scale[0]), c1.Mul(1/scale[1]), c2.Mul(1/scale[2]))
	return pos, mgl32.Mat4ToQuat(rot.Mat4()).Normalize(), scale
}

// Parent returns the parent transform or nil
func (t *Transform) Parent() *Transform {
	return t.parent
}

// SetParent rewires the parent link. Local values are kept unless keepWorld is set,
// in which case they are recomputed so the world placement does not move.
func (t *Transform) SetParent(parent *Transform, keepWorld bool) {
	if parent == t.parent {
		return
	}
	var world mgl32.Mat4
	if keepWorld {
		world = t.WorldMatrix()
	}
	if t.parentSub != nil {
		t.parentSub.Unsubscribe()
		t.parentSub = nil
	}
	t.parent = parent
	if keepWorld {
		local := world
		if parent != nil {
			local = parent.WorldMatrix().Inv().Mul4(world)
		}
		t.position, t.rotation, t.scale = decompose(local)
	}
	t.invalidate()
	if parent != nil {
		t.parentSub = parent.Changed.Subscribe(t.onParentChanged)
	}
}
