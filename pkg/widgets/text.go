package widgets

import (
	"github.com/go-drift/webbridge/pkg/core"
	"github.com/go-drift/webbridge/pkg/graphics"
)

// Text displays a string.
type Text struct {
	core.ParentBase
	// Tag identifies the text among its siblings.
	Tag     any
	Content string
	Color   graphics.Color
}

// Key returns Tag.
func (t Text) Key() any { return t.Tag }

// ChildWidgets returns nil; Text is a leaf.
func (Text) ChildWidgets() []core.Widget { return nil }
