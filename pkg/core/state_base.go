package core

import "sync"

// stateBase is implemented by every state that embeds StateBase, so hooks
// can take the state itself rather than its embedded field.
type stateBase interface {
	state() *StateBase
}

func (s *StateBase) state() *StateBase { return s }

// StateBase gives a State its element link, SetState and disposal
// bookkeeping. Embed it and override only what the state needs:
//
//	type webState struct {
//	    core.StateBase
//	    web *platform.WebViewController
//	}
type StateBase struct {
	element *StatefulElement

	mu       sync.Mutex
	cleanups []*cleanup
	disposed bool
}

type cleanup struct {
	fn func()
}

// SetElement links the state to its element. The framework calls it
// before InitState.
func (s *StateBase) SetElement(element *StatefulElement) {
	s.element = element
}

// Element returns the element hosting the state, or nil before mount.
func (s *StateBase) Element() *StatefulElement {
	return s.element
}

// SetState runs fn and schedules a rebuild. After disposal it does
// nothing, so late native events are harmless. UI thread only.
func (s *StateBase) SetState(fn func()) {
	if s.IsDisposed() {
		return
	}
	if fn != nil {
		fn()
	}
	if s.element != nil {
		s.element.MarkNeedsBuild()
	}
}

// OnDispose registers fn to run when the state is disposed, after every
// cleanup registered later. If the state is already disposed fn runs now.
// The returned function unregisters fn.
func (s *StateBase) OnDispose(fn func()) (unregister func()) {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		fn()
		return func() {}
	}
	c := &cleanup{fn: fn}
	s.cleanups = append(s.cleanups, c)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		c.fn = nil
		s.mu.Unlock()
	}
}

// RunDisposers runs the registered cleanups once, newest first.
func (s *StateBase) RunDisposers() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	cleanups := s.cleanups
	s.cleanups = nil
	s.mu.Unlock()

	for i := len(cleanups) - 1; i >= 0; i-- {
		if fn := cleanups[i].fn; fn != nil {
			fn()
		}
	}
}

// Dispose runs the registered cleanups. A state overriding Dispose must
// still call RunDisposers.
func (s *StateBase) Dispose() {
	s.RunDisposers()
}

// IsDisposed reports whether Dispose has run.
func (s *StateBase) IsDisposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposed
}

func (s *StateBase) InitState() {}

// Build returns nil; states override it.
func (s *StateBase) Build(ctx BuildContext) Widget { return nil }

func (s *StateBase) DidChangeDependencies() {}

func (s *StateBase) DidUpdateWidget(oldWidget StatefulWidget) {}
