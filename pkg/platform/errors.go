package platform

import "errors"

var (
	// ErrClosed is returned when operating on a closed channel or stream.
	ErrClosed = errors.New("platform: channel closed")

	// ErrDisposed is returned by controller methods after Dispose, or when
	// the native view could not be created.
	ErrDisposed = errors.New("platform: controller disposed")

	// ErrChannelNotFound is returned for a channel the receiver does not serve.
	ErrChannelNotFound = errors.New("platform: channel not found")

	// ErrMethodNotFound is returned for a method the receiver does not implement.
	ErrMethodNotFound = errors.New("platform: method not implemented")

	// ErrInvalidArguments is returned when call arguments are malformed.
	ErrInvalidArguments = errors.New("platform: invalid arguments")

	// ErrPlatformUnavailable is returned when no native bridge is installed.
	ErrPlatformUnavailable = errors.New("platform: native bridge unavailable")

	// ErrViewTypeNotFound is returned when creating a view of an
	// unregistered type.
	ErrViewTypeNotFound = errors.New("platform: view type not registered")
)

// ChannelError is an error reported by native code, identified by Code.
type ChannelError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (e *ChannelError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Code + ": " + e.Message
}

// NewChannelError returns a ChannelError without details.
func NewChannelError(code, message string) *ChannelError {
	return &ChannelError{Code: code, Message: message}
}
