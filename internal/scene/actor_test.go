package scene

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type hookRecorder struct {
	BaseComponent
	events   []string
	starts   int
	enables  int
	disables int
	destroys int
	updates  int
}

func (p *hookRecorder) OnStart()            { p.starts++; p.events = append(p.events, "start") }
func (p *hookRecorder) OnEnable()           { p.enables++; p.events = append(p.events, "enable") }
func (p *hookRecorder) OnDisable()          { p.disables++; p.events = append(p.events, "disable") }
func (p *hookRecorder) OnDestroy()          { p.destroys++; p.events = append(p.events, "destroy") }
func (p *hookRecorder) OnUpdate(dt float32) { p.updates++ }

func (p *hookRecorder) hooks() int { return p.starts + p.enables + p.disables }

func assertVec3(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	assert.InDeltaSlice(t, want[:], got[:], 1e-4, "want %v got %v", want, got)
}

type other struct{ BaseComponent }

func TestFactoryAssignsUniqueIDs(t *testing.T) {
	f := NewFactory(nil)
	seen := map[uint32]bool{}
	for i := 0; i < 100; i++ {
		a := f.CreateActor("a", "")
		require.NotZero(t, a.ID())
		require.False(t, seen[a.ID()])
		seen[a.ID()] = true
	}
	s := f.CreateScene("s", "")
	assert.True(t, s.IsScene())
	assert.NotNil(t, s.FastAccess())
	assert.False(t, seen[s.ID()])
}

func TestIsActiveFollowsAncestors(t *testing.T) {
	root := NewScene("Root", nil)
	a := root.CreateActor("A", "")
	b := a.CreateActor("B", "")

	assert.True(t, b.IsActive())
	a.SetActive(false)
	assert.False(t, b.IsActive())
	assert.True(t, b.IsSelfActive())
	b.SetActive(false)
	a.SetActive(true)
	assert.False(t, b.IsActive())
	b.SetActive(true)
	assert.True(t, b.IsActive())
}

func TestAddComponentOnActiveActorEnablesThenStarts(t *testing.T) {
	root := NewScene("Root", nil)
	a := root.CreateActor("A", "")
	p := AddComponent(a, &hookRecorder{})
	assert.Equal(t, []string{"enable", "start"}, p.events)
	assert.Same(t, a, p.Owner())
}

func TestFirstActivationStartsThenEnables(t *testing.T) {
	root := NewScene("Root", nil)
	a := root.CreateActor("A", "")
	a.SetActive(false)
	p := AddComponent(a, &hookRecorder{})
	assert.Empty(t, p.events)

	a.SetActive(true)
	assert.Equal(t, []string{"start", "enable"}, p.events)
	assert.True(t, a.IsStarted())

	a.SetActive(false)
	a.SetActive(true)
	assert.Equal(t, []string{"start", "enable", "disable", "enable"}, p.events)
}

func TestComponentAddedWhileInactiveStartsOnReactivation(t *testing.T) {
	root := NewScene("Root", nil)
	a := root.CreateActor("A", "")
	a.SetActive(false)
	a.SetActive(true)
	a.SetActive(false)
	require.True(t, a.IsStarted())

	p := AddComponent(a, &hookRecorder{})
	assert.Empty(t, p.events)
	a.SetActive(true)
	assert.Equal(t, []string{"start", "enable"}, p.events)

	a.SetActive(false)
	a.SetActive(true)
	assert.Equal(t, 1, p.starts)
	assert.Equal(t, 2, p.enables)
}

func TestComponentAddedUnderInactiveParentStartsOnReactivation(t *testing.T) {
	root := NewScene("Root", nil)
	parent := root.CreateActor("P", "")
	child := parent.CreateActor("C", "")
	parent.SetActive(false)

	p := AddComponent(child, &hookRecorder{})
	parent.SetActive(true)
	assert.Equal(t, []string{"start", "enable"}, p.events)
}

type orderRecorder struct {
	BaseComponent
	name string
	log  *[]string
}

func (p *orderRecorder) OnEnable()  { *p.log = append(*p.log, p.name+":enable") }
func (p *orderRecorder) OnDisable() { *p.log = append(*p.log, p.name+":disable") }

func TestParentTransitionsFireBeforeChildren(t *testing.T) {
	root := NewScene("Root", nil)
	a := root.CreateActor("A", "")
	b := a.CreateActor("B", "")
	var order []string
	AddComponent(a, &orderRecorder{name: "A", log: &order})
	AddComponent(b, &orderRecorder{name: "B", log: &order})
	order = nil

	root.SetActive(false)
	root.SetActive(true)
	assert.Equal(t, []string{"A:disable", "B:disable", "A:enable", "B:enable"}, order)
}

func TestAddComponentIsIdempotentPerType(t *testing.T) {
	a := NewFactory(nil).CreateActor("A", "")
	first := AddComponent(a, &hookRecorder{})
	second := AddComponent(a, &hookRecorder{})
	assert.Same(t, first, second)
	assert.Len(t, a.Components(), 1)

	AddComponent(a, &other{})
	assert.Len(t, a.Components(), 2)
	assert.True(t, HasComponent[*other](a))
	assert.Same(t, first, GetComponent[*hookRecorder](a))
}

func TestRemoveComponent(t *testing.T) {
	a := NewFactory(nil).CreateActor("A", "")
	p := AddComponent(a, &hookRecorder{})
	var seen []Component
	a.ComponentRemoved.Subscribe(func(c Component) {
		// still attached when the notification fires
		assert.True(t, HasComponent[*hookRecorder](a))
		seen = append(seen, c)
	})

	assert.True(t, RemoveComponent[*hookRecorder](a))
	assert.False(t, RemoveComponent[*hookRecorder](a))
	assert.Equal(t, []Component{p}, seen)
	assert.Nil(t, p.Owner())
	assert.Equal(t, 1, p.destroys)
	assert.Nil(t, GetComponent[*hookRecorder](a))
}

func TestRemoveForeignComponent(t *testing.T) {
	f := NewFactory(nil)
	a, b := f.CreateActor("A", ""), f.CreateActor("B", "")
	p := AddComponent(b, &hookRecorder{})

	assert.False(t, a.RemoveComponent(p))
	assert.Same(t, b, p.Owner())

	DebugAssertions = true
	defer func() { DebugAssertions = false }()
	assert.Panics(t, func() { a.RemoveComponent(p) })
}

func TestSetParentRewiresBothSides(t *testing.T) {
	f := NewFactory(nil)
	a, b, c := f.CreateActor("A", ""), f.CreateActor("B", ""), f.CreateActor("C", "")
	var detached, attached []*Actor
	c.Detached.Subscribe(func(p *Actor) { detached = append(detached, p) })
	c.Attached.Subscribe(func(p *Actor) { attached = append(attached, p) })

	c.SetParent(a)
	c.SetParent(a)
	c.SetParent(b)

	assert.Empty(t, a.Children())
	assert.Equal(t, []*Actor{c}, b.Children())
	assert.Same(t, b, c.Parent())
	assert.Equal(t, b.ID(), c.ParentID())
	assert.Same(t, b.Transform(), c.Transform().Parent())
	assert.Equal(t, []*Actor{a}, detached)
	assert.Equal(t, []*Actor{a, b}, attached)

	c.DetachFromParent()
	assert.Nil(t, c.Parent())
	assert.Zero(t, c.ParentID())
	assert.Nil(t, c.Transform().Parent())
}

func TestSetParentRejectsCycles(t *testing.T) {
	f := NewFactory(nil)
	a := f.CreateActor("A", "")
	b := a.CreateActor("B", "")

	a.SetParent(b)
	a.SetParent(a)
	assert.Nil(t, a.Parent())
	assert.Same(t, a, b.Parent())
	assert.True(t, a.IsAncestorOf(b))
	assert.False(t, b.IsAncestorOf(a))
	assert.Same(t, a, b.Root())
}

func TestSetParentKeepsLocalTransform(t *testing.T) {
	f := NewFactory(nil)
	p := f.CreateActor("P", "")
	p.Transform().SetPosition(mgl32.Vec3{10, 0, 0})
	c := f.CreateActor("C", "")
	c.Transform().SetPosition(mgl32.Vec3{1, 2, 3})

	c.SetParent(p)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, c.Transform().Position())
	assertVec3(t, mgl32.Vec3{11, 2, 3}, c.Transform().WorldPosition())

	d := f.CreateActor("D", "")
	d.Transform().SetPosition(mgl32.Vec3{1, 2, 3})
	d.SetParentKeepWorld(p)
	assertVec3(t, mgl32.Vec3{1, 2, 3}, d.Transform().WorldPosition())
	assertVec3(t, mgl32.Vec3{-9, 2, 3}, d.Transform().Position())
}

func TestReparentUnderInactiveParentDisables(t *testing.T) {
	f := NewFactory(nil)
	off := f.CreateActor("Off", "")
	off.SetActive(false)
	a := f.CreateActor("A", "")
	p := AddComponent(a, &hookRecorder{})

	a.SetParent(off)
	assert.False(t, a.IsActive())
	assert.Equal(t, 1, p.disables)

	a.DetachFromParent()
	assert.True(t, a.IsActive())
	assert.Equal(t, 2, p.enables)
	assert.Equal(t, 1, p.starts)
}

func TestMarkAsDestroyIsRecursive(t *testing.T) {
	root := NewScene("Root", nil)
	a := root.CreateActor("A", "")
	b := a.CreateActor("B", "")
	a.MarkAsDestroy()

	assert.False(t, a.IsAlive())
	assert.False(t, b.IsAlive())
	assert.True(t, root.IsAlive())
	// tombstoned actors stay attached and usable
	assert.Same(t, a, b.Parent())
}

func TestDeleteTearsDownSubtree(t *testing.T) {
	root := NewScene("Root", nil)
	a := root.CreateActor("A", "")
	b := a.CreateActor("B", "")
	pa := AddComponent(a, &hookRecorder{})
	pb := AddComponent(b, &hookRecorder{})
	mr := AddComponent(b, NewModelRenderer())
	require.Len(t, root.FastAccess().ModelRenderers(), 1)

	var order []string
	a.Destroyed.Subscribe(func(*Actor) { order = append(order, "destroyed") })
	a.Detached.Subscribe(func(*Actor) { order = append(order, "detached") })
	a.ComponentRemoved.Subscribe(func(Component) { order = append(order, "removed") })

	a.Delete()
	assert.Equal(t, []string{"destroyed", "detached", "removed"}, order)
	assert.Empty(t, root.Children())
	assert.Empty(t, root.FastAccess().ModelRenderers())
	assert.Empty(t, a.Children())
	assert.Equal(t, 1, pa.destroys)
	assert.Equal(t, 1, pb.destroys)
	assert.Nil(t, mr.Owner())

	a.Delete()
	DebugAssertions = true
	defer func() { DebugAssertions = false }()
	assert.Panics(t, func() { a.Delete() })
}

func TestUpdateSkipsInactiveSubtrees(t *testing.T) {
	root := NewScene("Root", nil)
	a := root.CreateActor("A", "")
	b := a.CreateActor("B", "")
	c := root.CreateActor("C", "")
	pa, pb, pc := AddComponent(a, &hookRecorder{}), AddComponent(b, &hookRecorder{}), AddComponent(c, &hookRecorder{})

	root.Update(0.016)
	a.SetActive(false)
	root.Update(0.016)
	b.Update(0.016)

	assert.Equal(t, 1, pa.updates)
	assert.Equal(t, 1, pb.updates)
	assert.Equal(t, 2, pc.updates)
}

func TestLookups(t *testing.T) {
	root := NewScene("Root", nil)
	a := root.CreateActor("A", "enemy")
	b := root.CreateActor("B", "enemy")
	deep := a.CreateActor("Deep", "boss")
	dup := b.CreateActor("A", "")

	assert.Same(t, a, root.ChildByName("A"))
	assert.Nil(t, root.ChildByName("Deep"))
	assert.Same(t, b, root.ChildByID(b.ID()))
	assert.Same(t, a, root.ChildByTag("enemy"))
	assert.Equal(t, []*Actor{a, b}, root.ChildrenByTag("enemy"))

	assert.Same(t, deep, root.FindChildByName("Deep"))
	assert.Same(t, deep, root.FindChildByTag("boss"))
	assert.Same(t, dup, root.FindChildByID(dup.ID()))
	assert.Same(t, root, root.FindActorByID(root.ID()))
	assert.Same(t, deep, root.FindActorByID(deep.ID()))
	assert.Nil(t, root.FindActorByID(9999))
}

// Random SetActive and SetParent sequences: effective activation always matches
// the ancestor chain and hooks fire once per real transition.
func TestActivationTransitionsFireExactlyOnce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	f := NewFactory(nil)
	const n = 24

	actors := make([]*Actor, n)
	recorders := make([]*hookRecorder, n)
	for i := range actors {
		actors[i] = f.CreateActor("a", "")
		recorders[i] = AddComponent(actors[i], &hookRecorder{})
	}
	for i := 1; i < n; i++ {
		actors[i].SetParent(actors[rng.Intn(i)])
	}

	expectActive := func(a *Actor) bool {
		for p := a; p != nil; p = p.Parent() {
			if !p.IsSelfActive() {
				return false
			}
		}
		return true
	}

	for step := 0; step < 2000; step++ {
		before := make([]bool, n)
		hooks := make([]int, n)
		starts := make([]int, n)
		for i, a := range actors {
			before[i] = a.IsActive()
			hooks[i] = recorders[i].hooks()
			starts[i] = recorders[i].starts
		}

		i := rng.Intn(n)
		if rng.Intn(4) == 0 {
			j := rng.Intn(n)
			if j != i && !actors[i].IsAncestorOf(actors[j]) {
				actors[i].SetParent(actors[j])
			}
		} else {
			actors[i].SetActive(rng.Intn(2) == 0)
		}

		for k, a := range actors {
			after := a.IsActive()
			require.Equal(t, expectActive(a), after)
			want := 0
			if after != before[k] {
				want = 1
				if after && starts[k] == 0 {
					want = 2
				}
			}
			require.Equal(t, want, recorders[k].hooks()-hooks[k], "step %d actor %d", step, k)
			require.LessOrEqual(t, recorders[k].starts, 1)
			enabled := recorders[k].enables - recorders[k].disables
			if after {
				require.Equal(t, 1, enabled)
			} else {
				require.Equal(t, 0, enabled)
			}
		}
	}
}
