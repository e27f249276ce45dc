package testing

import (
	"errors"
	"sync"
	"testing"

	"github.com/go-drift/webbridge/pkg/core"
	"github.com/go-drift/webbridge/pkg/platform"
)

// maxSettleFrames bounds PumpAndSettle.
const maxSettleFrames = 100

// ErrSettleTimeout is returned when PumpAndSettle exceeds its frame budget.
var ErrSettleTimeout = errors.New("PumpAndSettle timed out: framework did not settle")

// WidgetTester mounts widgets and drives the build phase without a host.
type WidgetTester struct {
	buildOwner *core.BuildOwner
	root       core.Element

	mu         sync.Mutex
	dispatches []func()
}

// NewWidgetTester creates a tester and registers its dispatch queue with
// the platform package. Call Cleanup() when done, or use
// NewWidgetTesterWithT() instead.
func NewWidgetTester() *WidgetTester {
	t := &WidgetTester{
		buildOwner: core.NewBuildOwner(),
	}
	platform.RegisterDispatch(t.Dispatch)
	return t
}

// NewWidgetTesterWithT creates a tester that auto-cleans up via t.Cleanup().
// This is the recommended constructor for tests.
func NewWidgetTesterWithT(t *testing.T) *WidgetTester {
	tester := NewWidgetTester()
	t.Cleanup(tester.Cleanup)
	return tester
}

// Cleanup unmounts the tree, disposing every state and controller.
func (t *WidgetTester) Cleanup() {
	if t.root != nil {
		t.root.Unmount()
		t.root = nil
	}
}

// PumpWidget mounts widget, replacing the current tree, and runs one frame.
func (t *WidgetTester) PumpWidget(widget core.Widget) error {
	if t.root != nil {
		t.root.Unmount()
		t.root = nil
	}
	t.root = core.MountRoot(widget, t.buildOwner)
	return t.Pump()
}

// UpdateWidget reconfigures the mounted tree with widget, keeping state
// where type and key match, and runs one frame.
func (t *WidgetTester) UpdateWidget(widget core.Widget) error {
	t.root = core.UpdateRoot(t.root, widget, t.buildOwner)
	return t.Pump()
}

// Pump runs a single frame: drains dispatched callbacks, then rebuilds
// dirty elements.
func (t *WidgetTester) Pump() error {
	t.mu.Lock()
	dispatches := t.dispatches
	t.dispatches = nil
	t.mu.Unlock()
	for _, fn := range dispatches {
		fn()
	}
	t.buildOwner.FlushBuild()
	return nil
}

// PumpAndSettle pumps until no work is pending.
func (t *WidgetTester) PumpAndSettle() error {
	for range maxSettleFrames {
		if err := t.Pump(); err != nil {
			return err
		}
		if !t.needsWork() {
			return nil
		}
	}
	return ErrSettleTimeout
}

func (t *WidgetTester) needsWork() bool {
	t.mu.Lock()
	pending := len(t.dispatches)
	t.mu.Unlock()
	return t.buildOwner.NeedsWork() || pending > 0
}

// Dispatch queues a callback for the next frame, mirroring platform.Dispatch.
// It is safe to call from any goroutine.
func (t *WidgetTester) Dispatch(fn func()) {
	t.mu.Lock()
	t.dispatches = append(t.dispatches, fn)
	t.mu.Unlock()
}

// Unmount removes the tree, disposing every state and controller.
func (t *WidgetTester) Unmount() {
	t.Cleanup()
}

// RootElement returns the root element of the mounted tree.
func (t *WidgetTester) RootElement() core.Element {
	return t.root
}

// Find evaluates a finder against the current element tree.
func (t *WidgetTester) Find(finder Finder) FinderResult {
	if t.root == nil {
		return FinderResult{finder: finder}
	}
	return FinderResult{
		elements: finder.Evaluate(t.root),
		finder:   finder,
	}
}
