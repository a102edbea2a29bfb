package scene

import (
	"slices"

	"mini-engine/internal/event"
	"mini-engine/internal/transform"

	"go.uber.org/zap"
)

// Kind distinguishes plain actors from scene roots
type Kind uint8

const (
	KindActor Kind = iota
	KindScene
)

func (k Kind) String() string {
	if k == KindScene {
		return "scene"
	}
	return "actor"
}

// Actor is a node of the scene tree. It owns its children and components;
// the parent link is a plain back-reference that never keeps the parent alive.
type Actor struct {
	id      uint32
	name    string
	tag     string
	kind    Kind
	factory *Factory

	active    bool
	wasActive bool
	destroyed bool
	started   bool
	deleted   bool

	parent     *Actor
	children   []*Actor
	components []Component

	transform  *transform.Transform
	fastAccess *FastAccess

	// Destroyed fires at the start of Delete
	Destroyed event.Event[*Actor]
	// Detached carries the parent being left
	Detached event.Event[*Actor]
	// Attached carries the new parent
	Attached event.Event[*Actor]

	ComponentAdded   event.Event[Component]
	ComponentRemoved event.Event[Component]
}

func newActor(f *Factory, kind Kind, name, tag string) *Actor {
	a := &Actor{
		id:        f.nextID(),
		name:      name,
		tag:       tag,
		kind:      kind,
		factory:   f,
		active:    true,
		transform: transform.New(),
	}
	if kind == KindScene {
		a.fastAccess = &FastAccess{}
	}
	return a
}

func (a *Actor) ID() uint32                      { return a.id }
func (a *Actor) Name() string                    { return a.name }
func (a *Actor) SetName(name string)             { a.name = name }
func (a *Actor) Tag() string                     { return a.tag }
func (a *Actor) SetTag(tag string)               { a.tag = tag }
func (a *Actor) Kind() Kind                      { return a.kind }
func (a *Actor) IsScene() bool                   { return a.kind == KindScene }
func (a *Actor) Factory() *Factory               { return a.factory }
func (a *Actor) Logger() *zap.Logger             { return a.factory.log }
func (a *Actor) Transform() *transform.Transform { return a.transform }
func (a *Actor) Parent() *Actor                  { return a.parent }
func (a *Actor) HasParent() bool                 { return a.parent != nil }
func (a *Actor) Children() []*Actor              { return a.children }
func (a *Actor) Components() []Component         { return a.components }
func (a *Actor) IsSelfActive() bool              { return a.active }
func (a *Actor) IsAlive() bool                   { return !a.destroyed }
func (a *Actor) IsStarted() bool                 { return a.started }

// FastAccess returns the scene's renderable index, nil for plain actors
func (a *Actor) FastAccess() *FastAccess { return a.fastAccess }

// ParentID returns the parent's ID or 0
func (a *Actor) ParentID() uint32 {
	if a.parent == nil {
		return 0
	}
	return a.parent.id
}

// IsActive is true when the actor and all of its ancestors are self-active
func (a *Actor) IsActive() bool {
	for n := a; n != nil; n = n.parent {
		if !n.active {
			return false
		}
	}
	return true
}

// Root returns the topmost ancestor, a itself when parentless
func (a *Actor) Root() *Actor {
	n := a
	for n.parent != nil {
		n = n.parent
	}
	return n
}

// IsAncestorOf reports whether a is a strict ancestor of other
func (a *Actor) IsAncestorOf(other *Actor) bool {
	for n := other.parent; n != nil; n = n.parent {
		if n == a {
			return true
		}
	}
	return false
}

// SetActive changes the self-active flag and fires the resulting
// OnStart/OnEnable/OnDisable transitions top-down through the subtree.
func (a *Actor) SetActive(active bool) {
	if a.active == active {
		return
	}
	a.snapshotActive()
	a.active = active
	a.propagateActive()
}

func (a *Actor) snapshotActive() {
	a.wasActive = a.IsActive()
	for _, c := range a.children {
		c.snapshotActive()
	}
}

func (a *Actor) propagateActive() {
	is := a.IsActive()
	switch {
	case !a.wasActive && is:
		// start skips components that already ran OnStart
		a.started = true
		a.onStart()
		a.onEnable()
	case a.wasActive && !is:
		a.onDisable()
	}
	a.wasActive = is
	for _, c := range a.children {
		c.propagateActive()
	}
}

func (a *Actor) onStart() {
	for _, c := range slices.Clone(a.components) {
		start(c)
	}
}

func (a *Actor) onEnable() {
	for _, c := range slices.Clone(a.components) {
		c.OnEnable()
	}
}

func (a *Actor) onDisable() {
	for _, c := range slices.Clone(a.components) {
		c.OnDisable()
	}
}

// Update calls OnUpdate on the components of every active actor in the
// subtree, parents before children.
func (a *Actor) Update(dt float32) {
	if !a.IsActive() {
		return
	}
	a.update(dt)
}

func (a *Actor) update(dt float32) {
	if !a.active {
		return
	}
	for _, c := range slices.Clone(a.components) {
		c.OnUpdate(dt)
	}
	for _, child := range slices.Clone(a.children) {
		child.update(dt)
	}
}

// SetParent moves a under parent, or makes it a root when parent is nil.
// The local transform is kept as is.
func (a *Actor) SetParent(parent *Actor) {
	a.setParent(parent, false)
}

// SetParentKeepWorld moves a under parent without changing its world placement
func (a *Actor) SetParentKeepWorld(parent *Actor) {
	a.setParent(parent, true)
}

func (a *Actor) setParent(parent *Actor, keepWorld bool) {
	if parent == a.parent {
		return
	}
	if parent != nil && !a.factory.assert(parent != a && !a.IsAncestorOf(parent),
		"actor cannot be parented to itself or a descendant",
		zap.Uint32("actor", a.id), zap.Uint32("parent", parent.id)) {
		return
	}
	a.snapshotActive()
	a.detach(keepWorld)
	if parent != nil {
		a.parent = parent
		parent.children = append(parent.children, a)
		a.transform.SetParent(parent.transform, keepWorld)
		for s := parent; s != nil; s = s.parent {
			if s.kind == KindScene {
				s.addSubtree(a)
			}
		}
		a.Attached.Emit(parent)
	}
	a.propagateActive()
}

// DetachFromParent makes a a root. Equivalent to SetParent(nil).
func (a *Actor) DetachFromParent() {
	a.SetParent(nil)
}

func (a *Actor) detach(keepWorld bool) {
	old := a.parent
	if old == nil {
		return
	}
	a.Detached.Emit(old)
	for s := old; s != nil; s = s.parent {
		if s.kind == KindScene {
			s.removeSubtree(a)
		}
	}
	if i := slices.Index(old.children, a); i >= 0 {
		old.children = slices.Delete(old.children, i, i+1)
	}
	a.parent = nil
	a.transform.SetParent(nil, keepWorld)
}

// addSubtree indexes the renderables of sub in a. A sub-scene lends its own
// index instead of being walked.
func (a *Actor) addSubtree(sub *Actor) {
	if sub.kind == KindScene {
		a.fastAccess.Absorb(sub.fastAccess)
		return
	}
	a.fastAccess.collect(sub)
}

func (a *Actor) removeSubtree(sub *Actor) {
	if sub.kind == KindScene {
		a.fastAccess.Subtract(sub.fastAccess)
		return
	}
	a.fastAccess.Subtract(Collect(sub))
}

// registerComponent adds c to a's own index and to every scene above a
func (a *Actor) registerComponent(c Component) {
	for s := a; s != nil; s = s.parent {
		if s.kind == KindScene {
			s.fastAccess.add(c)
		}
	}
}

func (a *Actor) unregisterComponent(c Component) {
	for s := a; s != nil; s = s.parent {
		if s.kind == KindScene {
			s.fastAccess.remove(c)
		}
	}
}

// RemoveComponent detaches c from a. It reports false when c is not one of a's components.
func (a *Actor) RemoveComponent(c Component) bool {
	i := slices.IndexFunc(a.components, func(x Component) bool { return x == c })
	if i < 0 {
		a.factory.assert(c == nil, "removing a component the actor does not own", zap.Uint32("actor", a.id))
		return false
	}
	a.ComponentRemoved.Emit(c)
	a.unregisterComponent(c)
	a.components = slices.Delete(a.components, i, i+1)
	c.OnDestroy()
	c.base().owner = nil
	return true
}

// MarkAsDestroy flags the subtree as destroyed. Nothing is freed;
// the caller deletes the actor later with Delete.
func (a *Actor) MarkAsDestroy() {
	a.destroyed = true
	for _, c := range a.children {
		c.MarkAsDestroy()
	}
}

// Delete tears down the subtree: children are deleted, a leaves its parent,
// and every component is removed. a must not be used afterwards.
func (a *Actor) Delete() {
	if !a.factory.assert(!a.deleted, "actor deleted twice", zap.Uint32("actor", a.id)) {
		return
	}
	a.deleted = true
	a.destroyed = true
	a.Destroyed.Emit(a)

	for len(a.children) > 0 {
		child := a.children[len(a.children)-1]
		child.detach(false)
		child.Delete()
	}
	a.detach(false)

	components := a.components
	for _, c := range components {
		a.ComponentRemoved.Emit(c)
		a.unregisterComponent(c)
	}
	a.components = nil
	for _, c := range components {
		c.OnDestroy()
		c.base().owner = nil
	}

	a.Destroyed.Clear()
	a.Detached.Clear()
	a.Attached.Clear()
	a.ComponentAdded.Clear()
	a.ComponentRemoved.Clear()
}

// ChildByName returns the first direct child named name
func (a *Actor) ChildByName(name string) *Actor {
	return a.child(func(c *Actor) bool { return c.name == name })
}

// ChildByID returns the direct child with the given ID
func (a *Actor) ChildByID(id uint32) *Actor {
	return a.child(func(c *Actor) bool { return c.id == id })
}

// ChildByTag returns the first direct child tagged tag
func (a *Actor) ChildByTag(tag string) *Actor {
	return a.child(func(c *Actor) bool { return c.tag == tag })
}

// FindChildByName searches the whole subtree depth-first
func (a *Actor) FindChildByName(name string) *Actor {
	return a.find(func(c *Actor) bool { return c.name == name })
}

func (a *Actor) FindChildByID(id uint32) *Actor {
	return a.find(func(c *Actor) bool { return c.id == id })
}

func (a *Actor) FindChildByTag(tag string) *Actor {
	return a.find(func(c *Actor) bool { return c.tag == tag })
}

// ChildrenByTag returns every direct child tagged tag, in insertion order
func (a *Actor) ChildrenByTag(tag string) []*Actor {
	var out []*Actor
	for _, c := range a.children {
		if c.tag == tag {
			out = append(out, c)
		}
	}
	return out
}

// FindActorByID returns a itself or the descendant with the given ID
func (a *Actor) FindActorByID(id uint32) *Actor {
	if a.id == id {
		return a
	}
	return a.FindChildByID(id)
}

func (a *Actor) child(match func(*Actor) bool) *Actor {
	for _, c := range a.children {
		if match(c) {
			return c
		}
	}
	return nil
}

func (a *Actor) find(match func(*Actor) bool) *Actor {
	for _, c := range a.children {
		if match(c) {
			return c
		}
		if found := c.find(match); found != nil {
			return found
		}
	}
	return nil
}

// CreateActor creates a child actor using a's factory
func (a *Actor) CreateActor(name, tag string) *Actor {
	child := a.factory.CreateActor(name, tag)
	child.SetParent(a)
	return child
}

// CreateScene creates a child sub-scene using a's factory
func (a *Actor) CreateScene(name, tag string) *Actor {
	child := a.factory.CreateScene(name, tag)
	child.SetParent(a)
	return child
}

// FirstActiveCamera returns the first camera in FastAccess order whose owner
// is active, or nil. Plain actors have no cameras.
func (a *Actor) FirstActiveCamera() *Camera {
	if a.fastAccess == nil {
		return nil
	}
	for _, c := range a.fastAccess.Cameras() {
		if c.IsActive() {
			return c
		}
	}
	return nil
}

// ActiveSky returns the first sky with an active owner, or nil
func (a *Actor) ActiveSky() *Sky {
	if a.fastAccess == nil {
		return nil
	}
	for _, s := range a.fastAccess.Skies() {
		if s.IsActive() {
			return s
		}
	}
	return nil
}
