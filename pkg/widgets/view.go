package widgets

import "github.com/go-drift/webbridge/pkg/core"

// View is a box that lays its children out in order.
type View struct {
	core.ParentBase
	// Tag identifies the view among its siblings.
	Tag      any
	Style    Style
	Children []core.Widget
}

// Key returns Tag.
func (v View) Key() any { return v.Tag }

// ChildWidgets returns the non-nil children.
func (v View) ChildWidgets() []core.Widget {
	children := make([]core.Widget, 0, len(v.Children))
	for _, child := range v.Children {
		if child != nil {
			children = append(children, child)
		}
	}
	return children
}
