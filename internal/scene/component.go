package scene

// Component is a unit of behavior or data attached to exactly one Actor.
// Implementations embed BaseComponent and override the hooks they need.
type Component interface {
	Owner() *Actor

	OnStart()
	OnEnable()
	OnDisable()
	OnDestroy()
	OnUpdate(dt float32)

	base() *BaseComponent
}

// BaseComponent provides the owner link and no-op lifecycle hooks
type BaseComponent struct {
	owner   *Actor
	started bool
}

func (b *BaseComponent) base() *BaseComponent { return b }

// Owner returns the actor the component is attached to, nil once removed
func (b *BaseComponent) Owner() *Actor { return b.owner }

// IsActive reports whether the owner is effectively active
func (b *BaseComponent) IsActive() bool {
	return b.owner != nil && b.owner.IsActive()
}

// Started reports whether OnStart has run
func (b *BaseComponent) Started() bool { return b.started }

func (b *BaseComponent) OnStart()            {}
func (b *BaseComponent) OnEnable()           {}
func (b *BaseComponent) OnDisable()          {}
func (b *BaseComponent) OnDestroy()          {}
func (b *BaseComponent) OnUpdate(dt float32) {}

// start runs OnStart at most once per component lifetime
func start(c Component) {
	b := c.base()
	if b.started {
		return
	}
	b.started = true
	c.OnStart()
}

// AddComponent attaches c to a unless a already has a component of type T,
// in which case the existing one is returned and c is discarded.
// If a is active the new component receives OnEnable then OnStart.
func AddComponent[T Component](a *Actor, c T) T {
	if found, ok := findComponent[T](a); ok {
		return found
	}
	c.base().owner = a
	a.components = append(a.components, c)
	a.registerComponent(c)
	a.ComponentAdded.Emit(c)
	if a.IsActive() {
		c.OnEnable()
		start(c)
	}
	return c
}

// GetComponent returns the component of type T or its zero value
func GetComponent[T Component](a *Actor) T {
	c, _ := findComponent[T](a)
	return c
}

// HasComponent reports whether a has a component of type T
func HasComponent[T Component](a *Actor) bool {
	_, ok := findComponent[T](a)
	return ok
}

// RemoveComponent removes the component of type T, if any
func RemoveComponent[T Component](a *Actor) bool {
	c, ok := findComponent[T](a)
	if !ok {
		return false
	}
	return a.RemoveComponent(c)
}

func findComponent[T Component](a *Actor) (T, bool) {
	for _, c := range a.components {
		if t, ok := c.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}
