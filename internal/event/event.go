package event

// Event is a multi-cast event carrying one argument.
// Listeners are kept in subscription order and identified by an ID,
// so they can be removed through the Subscription returned by Subscribe.
type Event[T any] struct {
	nextID    uint64
	listeners []listener[T]
}

type listener[T any] struct {
	id uint64
	fn func(T)
}

// Subscription detaches a listener from the event it was obtained from.
type Subscription struct {
	cancel func()
}

// Unsubscribe removes the listener. Safe to call more than once and on a zero Subscription.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.cancel == nil {
		return
	}
	s.cancel()
	s.cancel = nil
}

// Active reports whether the subscription still has a listener attached.
func (s *Subscription) Active() bool {
	return s != nil && s.cancel != nil
}

// Subscribe adds a callback invoked on every Emit
func (e *Event[T]) Subscribe(fn func(T)) *Subscription {
	if fn == nil {
		return &Subscription{}
	}
	e.nextID++
	id := e.nextID
	e.listeners = append(e.listeners, listener[T]{id: id, fn: fn})
	return &Subscription{cancel: func() { e.remove(id) }}
}

func (e *Event[T]) remove(id uint64) {
	for i, l := range e.listeners {
		if l.id == id {
			e.listeners = append(e.listeners[:i:i], e.listeners[i+1:]...)
			return
		}
	}
}

// Emit calls all listeners in subscription order.
// Listeners added or removed during Emit take effect on the next call.
func (e *Event[T]) Emit(arg T) {
	if len(e.listeners) == 0 {
		return
	}
	snapshot := make([]listener[T], len(e.listeners))
	copy(snapshot, e.listeners)
	for _, l := range snapshot {
		l.fn(arg)
	}
}

// Clear drops every listener
func (e *Event[T]) Clear() {
	e.listeners = nil
}

// Len returns the number of registered listeners
func (e *Event[T]) Len() int {
	return len(e.listeners)
}

// Group collects subscriptions that share an owner lifetime.
type Group struct {
	subs []*Subscription
}

// Add keeps s until Close
func (g *Group) Add(s *Subscription) {
	g.subs = append(g.subs, s)
}

// Close unsubscribes everything in the group
func (g *Group) Close() {
	for _, s := range g.subs {
		s.Unsubscribe()
	}
	g.subs = nil
}
