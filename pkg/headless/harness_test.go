package headless_test

import (
	"io/fs"
	"sync"
	"testing"

	"github.com/go-drift/webbridge/pkg/headless"
	"github.com/go-drift/webbridge/pkg/platform"
)

// uiThread queues dispatched callbacks until drained, like a host main loop.
type uiThread struct {
	mu      sync.Mutex
	pending []func()
}

func (u *uiThread) dispatch(fn func()) {
	u.mu.Lock()
	u.pending = append(u.pending, fn)
	u.mu.Unlock()
}

func (u *uiThread) drain() int {
	u.mu.Lock()
	pending := u.pending
	u.pending = nil
	u.mu.Unlock()
	for _, fn := range pending {
		fn()
	}
	return len(pending)
}

type harness struct {
	host *headless.Host
	ui   *uiThread
}

// newHarness installs a fresh headless host as the native bridge.
func newHarness(t *testing.T, pages fs.FS) *harness {
	t.Helper()
	platform.ResetForTest()
	t.Cleanup(platform.ResetForTest)

	h := &harness{
		host: headless.New(headless.Config{Pages: pages}),
		ui:   &uiThread{},
	}
	t.Cleanup(func() { _ = h.host.Close() })
	platform.SetNativeBridge(h.host)
	platform.RegisterDispatch(h.ui.dispatch)
	return h
}

// settle alternates host work and UI callbacks until both are idle.
func (h *harness) settle() {
	for range 50 {
		h.host.Sync()
		if h.ui.drain() == 0 {
			return
		}
	}
}

// newController creates a controller for src and disposes it with the test.
func (h *harness) newController(t *testing.T, params map[string]any) *platform.WebViewController {
	t.Helper()
	c := platform.NewWebViewController(params)
	t.Cleanup(c.Dispose)
	return c
}

func withSource(uri string, params map[string]any) map[string]any {
	if params == nil {
		params = map[string]any{}
	}
	params["source"] = platform.Source{URI: uri}.Map()
	return params
}
