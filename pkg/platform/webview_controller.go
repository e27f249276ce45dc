package platform

import (
	"fmt"
	"sync"

	"github.com/go-drift/webbridge/pkg/errors"
)

// WebViewCommands are the commands a bridged web view accepts. Both
// [WebViewController] and widgets.WebViewRef implement it.
type WebViewCommands interface {
	GoBack() error
	GoForward() error
	Reload() error
	StopLoading() error
	SendToBridge(message any) error
	InjectJavaScript(script string) error
}

var _ WebViewCommands = (*WebViewController)(nil)

// WebViewController drives a native bridged web view and receives its
// events. The controller creates its platform view eagerly, so methods and
// callbacks work immediately after construction.
//
// Create with [NewWebViewController] and manage lifecycle with
// [core.UseController]:
//
//	s.web = core.UseController(s, func() *platform.WebViewController {
//	    return platform.NewWebViewController(params)
//	})
//	s.web.OnBridgeMessage = func(msg any) { ... }
//
// Set callback fields before the first command so no events are missed.
//
// Commands are fire-and-forget: a nil error means native accepted the
// command, not that it completed. All methods are safe for concurrent use.
type WebViewController struct {
	mu          sync.RWMutex
	view        *bridgedWebView // guarded by mu
	viewID      int64           // guarded by mu
	unsubscribe func()          // guarded by mu

	// OnLoadingStart is called when a page starts loading.
	// Called on the UI thread.
	OnLoadingStart func(nav NavigationState)

	// OnLoadingFinish is called when a page finishes loading.
	// Called on the UI thread.
	OnLoadingFinish func(nav NavigationState)

	// OnLoadingError is called when a page fails to load.
	// Called on the UI thread.
	OnLoadingError func(err LoadError)

	// OnNavigationStateChange is called when native reports a navigation
	// change outside the load lifecycle (history, title, hash changes).
	// Called on the UI thread.
	OnNavigationStateChange func(nav NavigationState)

	// OnBridgeMessage is called with each message the page posts through
	// the bridge, in delivery order. Called on the UI thread.
	OnBridgeMessage func(message any)
}

// NewWebViewController creates a controller and its native view. params
// are the creation parameters forwarded to native (settings and source).
// If the view cannot be created the failure is reported and every command
// returns [ErrDisposed].
func NewWebViewController(params map[string]any) *WebViewController {
	c := &WebViewController{}

	view, err := GetPlatformViewRegistry().Create(BridgedWebViewType, params)
	if err != nil {
		errors.Report(&errors.BridgeError{
			Op:   "platform.NewWebViewController",
			Kind: errors.KindInit,
			Err:  fmt.Errorf("failed to create web view: %w", err),
		})
		return c
	}

	webView, ok := view.(*bridgedWebView)
	if !ok {
		errors.Report(&errors.BridgeError{
			Op:   "platform.NewWebViewController",
			Kind: errors.KindInit,
			Err:  fmt.Errorf("unexpected view type: %T", view),
		})
		return c
	}

	c.view = webView
	c.viewID = webView.ViewID()

	// Wire view callbacks to controller callback fields. The fields are read
	// at delivery time so they can be set after construction.
	webView.setCallbacks(bridgedWebViewCallbacks{
		onLoadingStart: func(nav NavigationState) {
			if c.OnLoadingStart != nil {
				c.OnLoadingStart(nav)
			}
		},
		onLoadingFinish: func(nav NavigationState) {
			if c.OnLoadingFinish != nil {
				c.OnLoadingFinish(nav)
			}
		},
		onLoadingError: func(loadErr LoadError) {
			if c.OnLoadingError != nil {
				c.OnLoadingError(loadErr)
			}
		},
		onNavigationStateChange: func(nav NavigationState) {
			if c.OnNavigationStateChange != nil {
				c.OnNavigationStateChange(nav)
			}
		},
		onMessage: c.deliverMessage,
	})

	// Messages on the shared bridge channel are routed by view id; this
	// registration is released in Dispose.
	c.unsubscribe = bridgeMessages.subscribe(c.viewID, func(message any) {
		Dispatch(func() { c.deliverMessage(message) })
	})

	return c
}

func (c *WebViewController) deliverMessage(message any) {
	if c.ViewID() == 0 {
		return
	}
	if c.OnBridgeMessage != nil {
		c.OnBridgeMessage(message)
	}
}

// ViewID returns the platform view ID, or 0 if the view was not created or
// has been disposed.
func (c *WebViewController) ViewID() int64 {
	c.mu.RLock()
	id := c.viewID
	c.mu.RUnlock()
	return id
}

// invoke sends a view command. Positional arguments travel as "args".
func (c *WebViewController) invoke(method string, args ...any) error {
	id := c.ViewID()
	if id == 0 {
		return ErrDisposed
	}
	var payload map[string]any
	if len(args) > 0 {
		payload = map[string]any{"args": args}
	}
	if _, err := GetPlatformViewRegistry().InvokeViewMethod(id, method, payload); err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	return nil
}

// GoBack navigates back in history.
func (c *WebViewController) GoBack() error {
	return c.invoke("goBack")
}

// GoForward navigates forward in history.
func (c *WebViewController) GoForward() error {
	return c.invoke("goForward")
}

// Reload reloads the current page.
func (c *WebViewController) Reload() error {
	return c.invoke("reload")
}

// StopLoading stops the current page load.
func (c *WebViewController) StopLoading() error {
	return c.invoke("stopLoading")
}

// SendToBridge posts message to the page's bridge handler.
func (c *WebViewController) SendToBridge(message any) error {
	return c.invoke("sendToBridge", message)
}

// InjectJavaScript evaluates script in the current page.
func (c *WebViewController) InjectJavaScript(script string) error {
	return c.invoke("injectJavaScript", script)
}

// Load loads the specified URL.
func (c *WebViewController) Load(url string) error {
	return c.LoadSource(Source{URI: url})
}

// LoadSource loads src, which should already be resolved with
// [ResolveSource].
func (c *WebViewController) LoadSource(src Source) error {
	if err := src.Validate(); err != nil {
		return err
	}
	return c.invoke("loadSource", src.Map())
}

// UpdateSettings forwards changed native settings.
func (c *WebViewController) UpdateSettings(settings map[string]any) error {
	return c.invoke("updateSettings", settings)
}

// SetVisible shows or hides the native surface. The view keeps loading
// while hidden.
func (c *WebViewController) SetVisible(visible bool) {
	c.mu.RLock()
	view := c.view
	c.mu.RUnlock()
	if view != nil {
		view.SetVisible(visible)
	}
}

// Dispose releases the web view, its bridge-message route and its native
// resources. After disposal, this controller must not be reused. Dispose
// is idempotent; calling it more than once is safe.
func (c *WebViewController) Dispose() {
	c.mu.Lock()
	id := c.viewID
	unsubscribe := c.unsubscribe
	c.view = nil
	c.viewID = 0
	c.unsubscribe = nil
	c.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if id != 0 {
		GetPlatformViewRegistry().Dispose(id)
	}
}
