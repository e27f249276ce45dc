package widgets

import (
	"errors"
	"sync"

	"github.com/go-drift/webbridge/pkg/platform"
)

// ErrNotMounted is returned by WebViewRef commands when no BridgedWebView
// is mounted with the ref.
var ErrNotMounted = errors.New("webview: not mounted")

var _ platform.WebViewCommands = (*WebViewRef)(nil)

// WebViewRef issues commands to the BridgedWebView it is passed to. A ref
// is bound while the widget is mounted; commands on an unbound ref return
// [ErrNotMounted].
type WebViewRef struct {
	mu         sync.RWMutex
	controller *platform.WebViewController
}

// NewWebViewRef returns an unbound ref.
func NewWebViewRef() *WebViewRef {
	return &WebViewRef{}
}

func (r *WebViewRef) bind(c *platform.WebViewController) {
	r.mu.Lock()
	r.controller = c
	r.mu.Unlock()
}

// unbind clears the ref if it still points at c.
func (r *WebViewRef) unbind(c *platform.WebViewController) {
	r.mu.Lock()
	if r.controller == c {
		r.controller = nil
	}
	r.mu.Unlock()
}

// Mounted reports whether a view is bound.
func (r *WebViewRef) Mounted() bool {
	return r.current() != nil
}

// ViewID returns the native view id, or 0 when unbound.
func (r *WebViewRef) ViewID() int64 {
	if c := r.current(); c != nil {
		return c.ViewID()
	}
	return 0
}

func (r *WebViewRef) current() *platform.WebViewController {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.controller
}

func (r *WebViewRef) with(fn func(*platform.WebViewController) error) error {
	c := r.current()
	if c == nil {
		return ErrNotMounted
	}
	return fn(c)
}

// GoBack navigates back in history.
func (r *WebViewRef) GoBack() error {
	return r.with((*platform.WebViewController).GoBack)
}

// GoForward navigates forward in history.
func (r *WebViewRef) GoForward() error {
	return r.with((*platform.WebViewController).GoForward)
}

// Reload reloads the current page.
func (r *WebViewRef) Reload() error {
	return r.with((*platform.WebViewController).Reload)
}

// StopLoading stops the current load.
func (r *WebViewRef) StopLoading() error {
	return r.with((*platform.WebViewController).StopLoading)
}

// SendToBridge posts message to the page's bridge handler.
func (r *WebViewRef) SendToBridge(message any) error {
	return r.with(func(c *platform.WebViewController) error {
		return c.SendToBridge(message)
	})
}

// InjectJavaScript evaluates script in the current page.
func (r *WebViewRef) InjectJavaScript(script string) error {
	return r.with(func(c *platform.WebViewController) error {
		return c.InjectJavaScript(script)
	})
}
