package widgets

import (
	"github.com/go-drift/webbridge/pkg/core"
	"github.com/go-drift/webbridge/pkg/platform"
)

// NativeBridgedWebView is the slot the native web view surface occupies.
// It does not own the controller; [BridgedWebView] creates and disposes it.
type NativeBridgedWebView struct {
	core.ParentBase
	// Controller drives the native surface.
	Controller *platform.WebViewController

	// Style is the box the surface occupies. A collapsed style keeps the
	// surface mounted with zero height.
	Style Style
}

// ChildWidgets returns nil; the native surface has no Go children.
func (NativeBridgedWebView) ChildWidgets() []core.Widget { return nil }

// ViewID returns the native view id, or 0 when no view exists.
func (n NativeBridgedWebView) ViewID() int64 {
	if n.Controller == nil {
		return 0
	}
	return n.Controller.ViewID()
}

// Visible reports whether the surface is shown.
func (n NativeBridgedWebView) Visible() bool {
	return !n.Style.Collapsed
}
