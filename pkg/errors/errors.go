// Package errors provides structured error handling for webbridge.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ErrorKind says which part of the bridge an error came from.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindPlatform: a channel call or the native bridge failed.
	KindPlatform
	// KindParsing: an event payload could not be decoded.
	KindParsing
	// KindInit: a native view could not be created.
	KindInit
	// KindCommand: an imperative web view command could not be sent.
	KindCommand
	// KindConfig: settings were invalid or used a deprecated option.
	KindConfig
	// KindState: a view state change outside the lifecycle was observed.
	KindState
	KindPanic
	KindBuild
)

var kindNames = [...]string{
	KindUnknown:  "unknown",
	KindPlatform: "platform",
	KindParsing:  "parsing",
	KindInit:     "init",
	KindCommand:  "command",
	KindConfig:   "config",
	KindState:    "state",
	KindPanic:    "panic",
	KindBuild:    "build",
}

func (k ErrorKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return kindNames[KindUnknown]
	}
	return kindNames[k]
}

// BridgeError represents a structured error raised by webbridge.
type BridgeError struct {
	// Op is the operation that failed (e.g., "platform.WebViewController.SendToBridge").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// Channel is the platform channel name, if applicable.
	Channel string
	// ViewID is the platform view the error relates to, or 0.
	ViewID int64
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *BridgeError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s]", e.Op, e.Kind)
	if e.Channel != "" {
		b.WriteString(" channel=" + e.Channel)
	}
	if e.ViewID != 0 {
		fmt.Fprintf(&b, " view=%d", e.ViewID)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *BridgeError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "platform.HandleEvent").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// ParseError represents a failure to parse event data.
type ParseError struct {
	// Channel is the platform channel that received the event.
	Channel string
	// DataType is the expected type name.
	DataType string
	// Got is the actual data received.
	Got any
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s from channel %s: got %T", e.DataType, e.Channel, e.Got)
}

// BuildError represents a failure during widget build.
type BuildError struct {
	// Widget is the type name of the widget that failed.
	Widget string
	// Element is the element type (StatelessElement, StatefulElement, etc.).
	Element string
	// Recovered is the panic value (nil for regular errors).
	Recovered any
	// Err is the underlying error (nil for panics).
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *BuildError) Error() string {
	if e.Recovered != nil {
		return fmt.Sprintf("panic in %s.Build(): %v", e.Widget, e.Recovered)
	}
	if e.Err != nil {
		return fmt.Sprintf("error in %s.Build(): %v", e.Widget, e.Err)
	}
	return fmt.Sprintf("unknown error in %s.Build()", e.Widget)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// ErrorHandler receives errors reported by webbridge.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *BridgeError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
	// HandleBuildError is called when a widget build fails.
	HandleBuildError(err *BuildError)
}
