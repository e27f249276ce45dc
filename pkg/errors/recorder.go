package errors

import "sync"

// Recorder is an ErrorHandler that keeps every report in memory.
// Install it with SetHandler in tests that assert on reported errors.
type Recorder struct {
	mu          sync.Mutex
	errs        []*BridgeError
	panics      []*PanicError
	buildErrors []*BuildError
}

// HandleError records err.
func (r *Recorder) HandleError(err *BridgeError) {
	r.mu.Lock()
	r.errs = append(r.errs, err)
	r.mu.Unlock()
}

// HandlePanic records err.
func (r *Recorder) HandlePanic(err *PanicError) {
	r.mu.Lock()
	r.panics = append(r.panics, err)
	r.mu.Unlock()
}

// HandleBuildError records err.
func (r *Recorder) HandleBuildError(err *BuildError) {
	r.mu.Lock()
	r.buildErrors = append(r.buildErrors, err)
	r.mu.Unlock()
}

// Errors returns the recorded errors, optionally filtered by kind.
func (r *Recorder) Errors(kinds ...ErrorKind) []*BridgeError {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(kinds) == 0 {
		return append([]*BridgeError(nil), r.errs...)
	}
	var out []*BridgeError
	for _, err := range r.errs {
		for _, k := range kinds {
			if err.Kind == k {
				out = append(out, err)
				break
			}
		}
	}
	return out
}

// Panics returns the recorded panics.
func (r *Recorder) Panics() []*PanicError {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*PanicError(nil), r.panics...)
}

// BuildErrors returns the recorded build errors.
func (r *Recorder) BuildErrors() []*BuildError {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*BuildError(nil), r.buildErrors...)
}

// Install sets r as the global handler and returns a function restoring
// the previous one.
func (r *Recorder) Install() (restore func()) {
	prev := getHandler()
	SetHandler(r)
	return func() { SetHandler(prev) }
}
