package scene

// orderedSet keeps unique items in insertion order
type orderedSet[T comparable] struct {
	items []T
	index map[T]int
}

func (s *orderedSet[T]) add(v T) bool {
	if s.index == nil {
		s.index = make(map[T]int)
	}
	if _, ok := s.index[v]; ok {
		return false
	}
	s.index[v] = len(s.items)
	s.items = append(s.items, v)
	return true
}

func (s *orderedSet[T]) remove(v T) bool {
	i, ok := s.index[v]
	if !ok {
		return false
	}
	delete(s.index, v)
	copy(s.items[i:], s.items[i+1:])
	var zero T
	s.items[len(s.items)-1] = zero
	s.items = s.items[:len(s.items)-1]
	for j := i; j < len(s.items); j++ {
		s.index[s.items[j]] = j
	}
	return true
}

func (s *orderedSet[T]) has(v T) bool {
	_, ok := s.index[v]
	return ok
}

func (s *orderedSet[T]) clear() {
	s.items = nil
	s.index = nil
}

// FastAccess indexes the renderable components of a scene subtree so the
// render passes do not walk the tree every frame. Each list is in
// registration order, which is also the draw-order tie-break.
type FastAccess struct {
	modelRenderers orderedSet[*ModelRenderer]
	cameras        orderedSet[*Camera]
	lights         orderedSet[*Light]
	skies          orderedSet[*Sky]
}

func (f *FastAccess) ModelRenderers() []*ModelRenderer { return f.modelRenderers.items }
func (f *FastAccess) Cameras() []*Camera               { return f.cameras.items }
func (f *FastAccess) Lights() []*Light                 { return f.lights.items }
func (f *FastAccess) Skies() []*Sky                    { return f.skies.items }

// Contains reports whether c is indexed
func (f *FastAccess) Contains(c Component) bool {
	switch v := c.(type) {
	case *ModelRenderer:
		return f.modelRenderers.has(v)
	case *Camera:
		return f.cameras.has(v)
	case *Light:
		return f.lights.has(v)
	case *Sky:
		return f.skies.has(v)
	}
	return false
}

// Len returns the total number of indexed components
func (f *FastAccess) Len() int {
	return len(f.modelRenderers.items) + len(f.cameras.items) + len(f.lights.items) + len(f.skies.items)
}

func (f *FastAccess) add(c Component) {
	switch v := c.(type) {
	case *ModelRenderer:
		f.modelRenderers.add(v)
	case *Camera:
		f.cameras.add(v)
	case *Light:
		f.lights.add(v)
	case *Sky:
		f.skies.add(v)
	}
}

func (f *FastAccess) remove(c Component) {
	switch v := c.(type) {
	case *ModelRenderer:
		f.modelRenderers.remove(v)
	case *Camera:
		f.cameras.remove(v)
	case *Light:
		f.lights.remove(v)
	case *Sky:
		f.skies.remove(v)
	}
}

// Absorb adds every entry of other that is not already present
func (f *FastAccess) Absorb(other *FastAccess) {
	for _, v := range other.modelRenderers.items {
		f.modelRenderers.add(v)
	}
	for _, v := range other.cameras.items {
		f.cameras.add(v)
	}
	for _, v := range other.lights.items {
		f.lights.add(v)
	}
	for _, v := range other.skies.items {
		f.skies.add(v)
	}
}

// Subtract removes every entry of other
func (f *FastAccess) Subtract(other *FastAccess) {
	for _, v := range other.modelRenderers.items {
		f.modelRenderers.remove(v)
	}
	for _, v := range other.cameras.items {
		f.cameras.remove(v)
	}
	for _, v := range other.lights.items {
		f.lights.remove(v)
	}
	for _, v := range other.skies.items {
		f.skies.remove(v)
	}
}

func (f *FastAccess) Clear() {
	f.modelRenderers.clear()
	f.cameras.clear()
	f.lights.clear()
	f.skies.clear()
}

// collect adds the components of a and its descendants, depth-first
func (f *FastAccess) collect(a *Actor) {
	for _, c := range a.components {
		f.add(c)
	}
	for _, child := range a.children {
		f.collect(child)
	}
}

// Collect builds a fresh index by walking the subtree rooted at a
func Collect(a *Actor) *FastAccess {
	f := &FastAccess{}
	f.collect(a)
	return f
}

// RebuildFastAccess discards the scene's index and walks its subtree again
func (a *Actor) RebuildFastAccess() {
	if a.fastAccess == nil {
		return
	}
	a.fastAccess.Clear()
	a.fastAccess.collect(a)
}
