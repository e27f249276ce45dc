package platform

import "sync"

// BridgedWebViewType is the platform view type of the bridged web view.
const BridgedWebViewType = "bridged_webview"

type bridgedWebViewFactory struct{}

func (bridgedWebViewFactory) ViewType() string {
	return BridgedWebViewType
}

func (bridgedWebViewFactory) Create(viewID int64, params map[string]any) (PlatformView, error) {
	v := &bridgedWebView{
		basePlatformView: basePlatformView{
			viewID:   viewID,
			viewType: BridgedWebViewType,
		},
	}
	v.visible.Store(true)
	return v, nil
}

// bridgedWebViewCallbacks are the Go-side receivers of native events.
// Each is called on the UI thread via [Dispatch].
type bridgedWebViewCallbacks struct {
	onLoadingStart          func(NavigationState)
	onLoadingFinish         func(NavigationState)
	onLoadingError          func(LoadError)
	onNavigationStateChange func(NavigationState)
	onMessage               func(message any)
}

type bridgedWebView struct {
	basePlatformView
	mu        sync.RWMutex
	callbacks bridgedWebViewCallbacks
}

func (v *bridgedWebView) Create(params map[string]any) error {
	return nil
}

func (v *bridgedWebView) Dispose() {
	v.mu.Lock()
	v.callbacks = bridgedWebViewCallbacks{}
	v.mu.Unlock()
}

func (v *bridgedWebView) setCallbacks(cb bridgedWebViewCallbacks) {
	v.mu.Lock()
	v.callbacks = cb
	v.mu.Unlock()
}

func (v *bridgedWebView) getCallbacks() bridgedWebViewCallbacks {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.callbacks
}

// handleViewEvent processes events from native. Payloads are decoded here,
// before dispatch, so callbacks receive values that stay valid after the
// native event is released.
func (v *bridgedWebView) handleViewEvent(method string, args map[string]any) {
	cb := v.getCallbacks()
	switch method {
	case "onLoadingStart":
		if fn := cb.onLoadingStart; fn != nil {
			nav := parseNavigationState(args)
			Dispatch(func() { fn(nav) })
		}
	case "onLoadingFinish":
		if fn := cb.onLoadingFinish; fn != nil {
			nav := parseNavigationState(args)
			Dispatch(func() { fn(nav) })
		}
	case "onLoadingError":
		if fn := cb.onLoadingError; fn != nil {
			loadErr := parseLoadError(args)
			Dispatch(func() { fn(loadErr) })
		}
	case "onNavigationStateChange":
		if fn := cb.onNavigationStateChange; fn != nil {
			nav := parseNavigationState(args)
			Dispatch(func() { fn(nav) })
		}
	case "onMessage":
		message, ok := args["message"]
		if fn := cb.onMessage; fn != nil && ok && message != nil {
			Dispatch(func() { fn(message) })
		}
	}
}

func init() {
	GetPlatformViewRegistry().RegisterFactory(bridgedWebViewFactory{})
}
