package engine

import "errors"

// ErrAlreadyRunning is returned by Run when the runner is already running.
var ErrAlreadyRunning = errors.New("engine: runner already running")
