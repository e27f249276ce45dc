package errors

import (
	"github.com/go-drift/webbridge/pkg/logging"
	"go.uber.org/zap"
)

// LogHandler is an ErrorHandler that writes reports to the process logger.
type LogHandler struct {
	// Verbose attaches stack traces to logged entries.
	Verbose bool
}

// HandleError logs a BridgeError.
func (h *LogHandler) HandleError(err *BridgeError) {
	if err == nil {
		return
	}
	fields := []zap.Field{
		zap.String("op", err.Op),
		zap.Stringer("kind", err.Kind),
		zap.Error(err.Err),
	}
	if err.Channel != "" {
		fields = append(fields, zap.String("channel", err.Channel))
	}
	if err.ViewID != 0 {
		fields = append(fields, zap.Int64("view_id", err.ViewID))
	}
	if h.Verbose && err.StackTrace != "" {
		fields = append(fields, zap.String("stack", err.StackTrace))
	}
	logging.Named("errors").Error("bridge error", fields...)
}

// HandlePanic logs a PanicError.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	fields := []zap.Field{
		zap.String("op", err.Op),
		zap.Any("value", err.Value),
	}
	if h.Verbose && err.StackTrace != "" {
		fields = append(fields, zap.String("stack", err.StackTrace))
	}
	logging.Named("errors").Error("recovered panic", fields...)
}

// HandleBuildError logs a BuildError.
func (h *LogHandler) HandleBuildError(err *BuildError) {
	if err == nil {
		return
	}
	fields := []zap.Field{
		zap.String("widget", err.Widget),
		zap.String("element", err.Element),
	}
	if err.Recovered != nil {
		fields = append(fields, zap.Any("recovered", err.Recovered))
	}
	if err.Err != nil {
		fields = append(fields, zap.Error(err.Err))
	}
	if h.Verbose && err.StackTrace != "" {
		fields = append(fields, zap.String("stack", err.StackTrace))
	}
	logging.Named("errors").Error("build failed", fields...)
}
