package widgets

import "fmt"

// ViewState is the load lifecycle of a BridgedWebView.
type ViewState int

const (
	// ViewStateIdle shows the page.
	ViewStateIdle ViewState = iota
	// ViewStateLoading shows the loading placeholder.
	ViewStateLoading
	// ViewStateError shows the error placeholder.
	ViewStateError
)

func (s ViewState) String() string {
	switch s {
	case ViewStateIdle:
		return "idle"
	case ViewStateLoading:
		return "loading"
	case ViewStateError:
		return "error"
	default:
		return fmt.Sprintf("ViewState(%d)", int(s))
	}
}

// valid reports whether s is one of the defined states.
func (s ViewState) valid() bool {
	return s >= ViewStateIdle && s <= ViewStateError
}

// hidesSurface reports whether the native surface is collapsed in s.
func (s ViewState) hidesSurface() bool {
	return s == ViewStateLoading || s == ViewStateError
}
