package core

// The Base types below are embedded in widget structs to supply
// CreateElement and an unkeyed Key. A widget that needs a key declares its
// own Key method, which takes precedence over the embedded one.

// StatelessBase makes a widget with a Build method a [StatelessWidget].
type StatelessBase struct{}

func (StatelessBase) CreateElement() Element { return NewStatelessElement() }
func (StatelessBase) Key() any               { return nil }

// StatefulBase makes a widget with a CreateState method a [StatefulWidget].
type StatefulBase struct{}

func (StatefulBase) CreateElement() Element { return NewStatefulElement() }
func (StatefulBase) Key() any               { return nil }

// ParentBase makes a widget with a ChildWidgets method a [ParentWidget].
type ParentBase struct{}

func (ParentBase) CreateElement() Element { return NewParentElement() }
func (ParentBase) Key() any               { return nil }

// Stateful builds a stateful widget from two closures: init produces the
// first value and build renders a value. The setState passed to build
// replaces the value with the result of its argument.
func Stateful[S any](
	init func() S,
	build func(value S, ctx BuildContext, setState func(func(S) S)) Widget,
) Widget {
	return &closureWidget[S]{init: init, build: build}
}

type closureWidget[S any] struct {
	StatefulBase
	init  func() S
	build func(S, BuildContext, func(func(S) S)) Widget
}

func (w *closureWidget[S]) CreateState() State {
	return &closureState[S]{widget: w}
}

type closureState[S any] struct {
	StateBase
	widget *closureWidget[S]
	value  S
}

func (s *closureState[S]) InitState() {
	s.value = s.widget.init()
}

func (s *closureState[S]) Build(ctx BuildContext) Widget {
	// Follow the latest configuration so rebuilt closures see new captures.
	if w, ok := ctx.Widget().(*closureWidget[S]); ok {
		s.widget = w
	}
	return s.widget.build(s.value, ctx, s.update)
}

func (s *closureState[S]) update(fn func(S) S) {
	s.SetState(func() { s.value = fn(s.value) })
}
