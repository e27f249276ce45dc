package platform

import "sync/atomic"

type dispatcher struct {
	fn func(callback func())
}

var uiDispatch atomic.Pointer[dispatcher]

// RegisterDispatch installs fn as the way callbacks reach the UI thread.
// The embedder or test harness calls it once at startup; nil removes it.
func RegisterDispatch(fn func(callback func())) {
	if fn == nil {
		uiDispatch.Store(nil)
		return
	}
	uiDispatch.Store(&dispatcher{fn: fn})
}

// Dispatch schedules callback on the UI thread. It reports false, without
// running callback, when no dispatcher is installed or callback is nil.
func Dispatch(callback func()) bool {
	d := uiDispatch.Load()
	if d == nil || callback == nil {
		return false
	}
	d.fn(callback)
	return true
}
