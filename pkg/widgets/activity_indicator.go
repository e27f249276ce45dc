package widgets

import (
	"github.com/go-drift/webbridge/pkg/core"
	"github.com/go-drift/webbridge/pkg/graphics"
)

// ActivityIndicatorSize represents the size of the activity indicator.
type ActivityIndicatorSize int

const (
	// ActivityIndicatorSizeMedium is a medium spinner (default).
	ActivityIndicatorSizeMedium ActivityIndicatorSize = iota
	// ActivityIndicatorSizeSmall is a small spinner.
	ActivityIndicatorSizeSmall
	// ActivityIndicatorSizeLarge is a large spinner.
	ActivityIndicatorSizeLarge
)

// ActivityIndicator displays a native platform spinner, the usual
// RenderLoading placeholder.
type ActivityIndicator struct {
	core.ParentBase
	// Animating controls whether the indicator is spinning.
	Animating bool

	// Size is the indicator size (Small, Medium, Large).
	Size ActivityIndicatorSize

	// Color is the spinner color (optional, uses system default if not set).
	Color graphics.Color
}

// ChildWidgets returns nil; ActivityIndicator is a leaf.
func (ActivityIndicator) ChildWidgets() []core.Widget { return nil }
