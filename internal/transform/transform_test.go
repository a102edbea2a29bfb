package transform

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomize(t *Transform, r *rand.Rand) {
	f := func() float32 { return r.Float32()*10 - 5 }
	t.SetPosition(mgl32.Vec3{f(), f(), f()})
	t.SetRotation(mgl32.QuatRotate(f(), mgl32.Vec3{f(), f(), f()}.Normalize()))
	t.SetScale(mgl32.Vec3{0.5 + r.Float32(), 0.5 + r.Float32(), 0.5 + r.Float32()})
}

// assertVec3 compares component-wise with an absolute tolerance
func assertVec3(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	assert.InDeltaSlice(t, want[:], got[:], 1e-4, "want %v got %v", want, got)
}

func assertMat4(t *testing.T, want, got mgl32.Mat4, msgAndArgs ...any) {
	t.Helper()
	assert.InDeltaSlice(t, want[:], got[:], 1e-4, msgAndArgs...)
}

// assertSameRotation accepts q and -q
func assertSameRotation(t *testing.T, want, got mgl32.Quat) {
	t.Helper()
	assert.InDelta(t, 1, math.Abs(float64(want.Dot(got))), 1e-4, "want %v got %v", want, got)
}

func TestWorldIsParentTimesLocal(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for depth := 1; depth <= 5; depth++ {
		chain := make([]*Transform, depth)
		for i := range chain {
			chain[i] = New()
			randomize(chain[i], r)
			if i > 0 {
				chain[i].SetParent(chain[i-1], false)
			}
		}
		for i := 1; i < depth; i++ {
			want := chain[i-1].WorldMatrix().Mul4(chain[i].LocalMatrix())
			assertMat4(t, want, chain[i].WorldMatrix(), "depth %d node %d", depth, i)
		}
	}
}

func TestWorldMatrixIdempotent(t *testing.T) {
	parent, child := New(), New()
	randomize(parent, rand.New(rand.NewSource(1)))
	randomize(child, rand.New(rand.NewSource(2)))
	child.SetParent(parent, false)

	first := child.WorldMatrix()
	second := child.WorldMatrix()
	assert.Equal(t, first, second)
}

func TestParentChangeInvalidatesChild(t *testing.T) {
	parent, child := New(), New()
	child.SetParent(parent, false)
	child.SetPosition(mgl32.Vec3{1, 0, 0})
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, child.WorldPosition())

	parent.SetPosition(mgl32.Vec3{0, 2, 0})
	assertVec3(t, mgl32.Vec3{1, 2, 0}, child.WorldPosition())

	grandchild := New()
	grandchild.SetParent(child, false)
	parent.SetScale(mgl32.Vec3{2, 2, 2})
	assertVec3(t, mgl32.Vec3{2, 2, 0}, grandchild.WorldPosition())
}

func TestSetParentKeepsLocalByDefault(t *testing.T) {
	parent, child := New(), New()
	parent.SetPosition(mgl32.Vec3{5, 0, 0})
	child.SetPosition(mgl32.Vec3{1, 0, 0})

	child.SetParent(parent, false)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, child.Position())
	assertVec3(t, mgl32.Vec3{6, 0, 0}, child.WorldPosition())
}

func TestSetParentKeepWorld(t *testing.T) {
	parent, child := New(), New()
	parent.SetPosition(mgl32.Vec3{5, 0, 0})
	parent.SetRotation(mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0}))
	child.SetPosition(mgl32.Vec3{1, 2, 3})
	before := child.WorldMatrix()

	child.SetParent(parent, true)
	assertMat4(t, before, child.WorldMatrix())

	child.SetParent(nil, true)
	assertVec3(t, mgl32.Vec3{1, 2, 3}, child.Position())
}

func TestOldParentNoLongerNotifies(t *testing.T) {
	a, b, child := New(), New(), New()
	child.SetParent(a, false)
	child.SetParent(b, false)
	require.Equal(t, 0, a.Changed.Len())

	fired := 0
	child.Changed.Subscribe(func(*Transform) { fired++ })
	a.SetPosition(mgl32.Vec3{1, 1, 1})
	assert.Zero(t, fired)
	b.SetPosition(mgl32.Vec3{1, 1, 1})
	assert.Equal(t, 1, fired)
}

func TestSetWorldPositionAndRotation(t *testing.T) {
	parent, child := New(), New()
	parent.SetPosition(mgl32.Vec3{1, 2, 3})
	parent.SetRotation(mgl32.QuatRotate(mgl32.DegToRad(30), mgl32.Vec3{0, 0, 1}))
	parent.SetScale(mgl32.Vec3{2, 2, 2})
	child.SetParent(parent, false)

	child.SetWorldPosition(mgl32.Vec3{-4, 5, 6})
	assertVec3(t, mgl32.Vec3{-4, 5, 6}, child.WorldPosition())

	target := mgl32.QuatRotate(mgl32.DegToRad(45), mgl32.Vec3{1, 0, 0})
	child.SetWorldRotation(target)
	assertSameRotation(t, target, child.WorldRotation())
}

func TestLookAt(t *testing.T) {
	tr := New()
	tr.SetPosition(mgl32.Vec3{0, 0, 5})
	tr.LookAt(mgl32.Vec3{0, 0, 0}, Up)
	assertVec3(t, mgl32.Vec3{0, 0, -1}, tr.Forward())

	tr.LookAt(mgl32.Vec3{5, 0, 5}, Up)
	assertVec3(t, mgl32.Vec3{1, 0, 0}, tr.Forward())
}

func TestTranslateRotateScale(t *testing.T) {
	tr := New()
	tr.Translate(mgl32.Vec3{1, 0, 0})
	tr.Translate(mgl32.Vec3{0, 1, 0})
	tr.Scale(mgl32.Vec3{2, 3, 4})
	tr.RotateAxis(mgl32.Vec3{0, 1, 0}, mgl32.DegToRad(90))

	assert.Equal(t, mgl32.Vec3{1, 1, 0}, tr.Position())
	assert.Equal(t, mgl32.Vec3{2, 3, 4}, tr.LocalScale())
	assertVec3(t, mgl32.Vec3{0, 0, -1}, tr.Right())
}
