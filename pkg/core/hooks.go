package core

// UseController creates a controller owned by the state s: it is disposed
// exactly once, when s is.
//
//	s.web = core.UseController(s, func() *platform.WebViewController {
//	    return platform.NewWebViewController(params)
//	})
func UseController[C Disposable](s stateBase, create func() C) C {
	c := create()
	s.state().OnDispose(c.Dispose)
	return c
}

// Managed is a value owned by a state; setting it rebuilds the state.
// Like SetState, it must only be touched on the UI thread.
type Managed[T any] struct {
	owner *StateBase
	value T
}

// NewManaged returns a Managed holding initial, owned by s.
func NewManaged[T any](s stateBase, initial T) *Managed[T] {
	return &Managed[T]{owner: s.state(), value: initial}
}

// Value returns the current value.
func (m *Managed[T]) Value() T { return m.value }

// Set stores value and schedules a rebuild, even when value is unchanged.
func (m *Managed[T]) Set(value T) {
	m.owner.SetState(func() { m.value = value })
}

// Update replaces the value with fn applied to it.
func (m *Managed[T]) Update(fn func(T) T) {
	m.owner.SetState(func() { m.value = fn(m.value) })
}
