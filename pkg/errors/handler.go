package errors

import (
	"fmt"
	"runtime"
	"strings"
	"sync/atomic"
	"time"
)

// handlerSlot wraps the installed handler so it can live in an atomic.Value.
type handlerSlot struct{ h ErrorHandler }

var current atomic.Value

func init() {
	current.Store(handlerSlot{h: &LogHandler{}})
}

// SetHandler installs h as the process error handler. Nil restores a
// LogHandler.
func SetHandler(h ErrorHandler) {
	if h == nil {
		h = &LogHandler{}
	}
	current.Store(handlerSlot{h: h})
}

func getHandler() ErrorHandler {
	return current.Load().(handlerSlot).h
}

// Report hands err to the installed handler, stamping it if needed.
func Report(err *BridgeError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	getHandler().HandleError(err)
}

// ReportPanic hands a recovered panic to the installed handler.
func ReportPanic(err *PanicError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	getHandler().HandlePanic(err)
}

// ReportBuildError hands a failed build to the installed handler.
func ReportBuildError(err *BuildError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	getHandler().HandleBuildError(err)
}

// Recover reports a panic in progress and stops it. Use it deferred:
//
//	defer errors.Recover("headless.job")
func Recover(op string) {
	if r := recover(); r != nil {
		ReportPanic(&PanicError{Op: op, Value: r, StackTrace: CaptureStack()})
	}
}

// CaptureStack formats the caller's stack, one frame per two lines.
func CaptureStack() string {
	var pcs [32]uintptr
	n := runtime.Callers(3, pcs[:])
	if n == 0 {
		return ""
	}

	var sb strings.Builder
	frames := runtime.CallersFrames(pcs[:n])
	for more := true; more; {
		var frame runtime.Frame
		frame, more = frames.Next()
		fmt.Fprintf(&sb, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
	}
	return sb.String()
}
