package core

import (
	"sync/atomic"

	"github.com/go-drift/webbridge/pkg/errors"
)

// ErrorWidgetBuilder returns the widget shown in place of a subtree whose
// Build panicked.
type ErrorWidgetBuilder func(err *errors.BuildError) Widget

var errorWidgetBuilder atomic.Pointer[ErrorWidgetBuilder]

// SetErrorWidgetBuilder installs builder. With no builder, a failed
// subtree renders as nothing.
func SetErrorWidgetBuilder(builder ErrorWidgetBuilder) {
	if builder == nil {
		errorWidgetBuilder.Store(nil)
		return
	}
	errorWidgetBuilder.Store(&builder)
}

// GetErrorWidgetBuilder returns the installed builder, or nil.
func GetErrorWidgetBuilder() ErrorWidgetBuilder {
	if b := errorWidgetBuilder.Load(); b != nil {
		return *b
	}
	return nil
}
