// Package engine runs a widget tree outside a platform embedder: it owns
// the UI goroutine, drains callbacks posted with platform.Dispatch and
// rebuilds dirty elements once per frame.
package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-drift/webbridge/pkg/core"
	"github.com/go-drift/webbridge/pkg/errors"
	"github.com/go-drift/webbridge/pkg/logging"
	"github.com/go-drift/webbridge/pkg/platform"
	"go.uber.org/zap"
)

// Runner is the UI thread of a headless app. Create one per process with
// [NewRunner]; it installs itself as the platform dispatcher.
type Runner struct {
	owner *core.BuildOwner
	log   *zap.Logger

	// frameLock is held while a frame runs and while the tree is inspected.
	frameLock sync.Mutex
	root      core.Element

	dispatchMu    sync.Mutex
	dispatchQueue []func()
	wake          chan struct{}

	frames  atomic.Int64
	running atomic.Bool
}

// NewRunner creates a runner and registers it with platform.RegisterDispatch.
func NewRunner() *Runner {
	r := &Runner{
		owner: core.NewBuildOwner(),
		log:   logging.Named("engine"),
		wake:  make(chan struct{}, 1),
	}
	r.owner.OnNeedsFrame = r.requestFrame
	platform.RegisterDispatch(r.Dispatch)
	return r
}

// Dispatch schedules callback on the UI goroutine. Safe from any goroutine.
func (r *Runner) Dispatch(callback func()) {
	if callback == nil {
		return
	}
	r.dispatchMu.Lock()
	r.dispatchQueue = append(r.dispatchQueue, callback)
	r.dispatchMu.Unlock()
	r.requestFrame()
}

func (r *Runner) requestFrame() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

func (r *Runner) drainDispatchQueue() []func() {
	r.dispatchMu.Lock()
	callbacks := r.dispatchQueue
	r.dispatchQueue = nil
	r.dispatchMu.Unlock()
	return callbacks
}

// Frames returns the number of frames run so far.
func (r *Runner) Frames() int64 {
	return r.frames.Load()
}

// Run mounts root and runs frames until ctx is done, then unmounts the
// tree on the UI goroutine. Run must not be called twice at once.
func (r *Runner) Run(ctx context.Context, root core.Widget) error {
	if !r.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer r.running.Store(false)

	r.frameLock.Lock()
	r.root = core.MountRoot(root, r.owner)
	r.frameLock.Unlock()
	r.log.Debug("root mounted")
	r.stepFrame()

	defer func() {
		r.frameLock.Lock()
		if r.root != nil {
			r.root.Unmount()
			r.root = nil
		}
		r.frameLock.Unlock()
		r.log.Debug("root unmounted", zap.Int64("frames", r.frames.Load()))
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-r.wake:
			r.stepFrame()
		}
	}
}

// stepFrame runs dispatched callbacks, then rebuilds dirty elements.
// A panicking callback is reported and the frame continues.
func (r *Runner) stepFrame() {
	r.frameLock.Lock()
	defer r.frameLock.Unlock()
	start := time.Now()

	for _, callback := range r.drainDispatchQueue() {
		r.runCallback(callback)
	}
	r.flushBuild()

	r.frames.Add(1)
	if elapsed := time.Since(start); elapsed > slowFrame {
		r.log.Debug("slow frame", zap.Duration("elapsed", elapsed))
	}
}

func (r *Runner) runCallback(callback func()) {
	defer errors.Recover("engine.dispatch")
	callback()
}

func (r *Runner) flushBuild() {
	defer errors.Recover("engine.build")
	r.owner.FlushBuild()
}

// Post runs fn on the UI goroutine and waits for it. It must not be called
// from the UI goroutine.
func (r *Runner) Post(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	r.Dispatch(func() {
		defer close(done)
		fn()
	})
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

const slowFrame = 16 * time.Millisecond
