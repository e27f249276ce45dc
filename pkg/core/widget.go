package core

// Widget is an immutable description of part of the UI.
type Widget interface {
	// CreateElement creates the element that mounts this widget.
	CreateElement() Element

	// Key identifies the widget among its siblings. Elements are reused
	// across rebuilds only when type and key match.
	Key() any
}

// StatelessWidget builds its subtree from its own configuration alone.
type StatelessWidget interface {
	Widget
	Build(ctx BuildContext) Widget
}

// StatefulWidget has mutable state held by a [State].
type StatefulWidget interface {
	Widget
	CreateState() State
}

// ParentWidget is a leaf or container widget that builds nothing itself
// and exposes its children directly. Widgets with no children return nil.
type ParentWidget interface {
	Widget
	ChildWidgets() []Widget
}

// State holds the mutable part of a StatefulWidget. Embed [StateBase] to
// get defaults for everything but Build.
type State interface {
	InitState()
	Build(ctx BuildContext) Widget
	SetState(fn func())
	Dispose()
	DidChangeDependencies()
	DidUpdateWidget(oldWidget StatefulWidget)
}

// BuildContext is the handle a widget receives while building.
type BuildContext interface {
	// Widget returns the widget currently configuring this location.
	Widget() Widget

	// FindAncestor returns the nearest ancestor element matching predicate.
	FindAncestor(predicate func(Element) bool) Element
}

// Element is a widget mounted at a location in the tree.
type Element interface {
	BuildContext
	Mount(parent Element, slot any)
	Update(newWidget Widget)
	Unmount()
	MarkNeedsBuild()
	RebuildIfNeeded()
	Depth() int
	VisitChildren(visitor func(Element) bool)
}

// Disposable is implemented by controllers that hold resources.
type Disposable interface {
	Dispose()
}
