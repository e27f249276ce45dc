package platform

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/go-drift/webbridge/pkg/errors"
	"github.com/go-drift/webbridge/pkg/logging"
	"go.uber.org/zap"
)

// PlatformViewChannel is the channel carrying platform-view calls and the
// per-view events native sends back.
const PlatformViewChannel = "drift/platform_views"

// PlatformView represents a native view embedded in the widget tree.
type PlatformView interface {
	// ViewID returns the unique identifier for this view.
	ViewID() int64

	// ViewType returns the type identifier for this view (e.g., "bridged_webview").
	ViewType() string

	// Create initializes the native view with given parameters.
	Create(params map[string]any) error

	// Dispose cleans up the native view.
	Dispose()

	// SetVisible shows or hides the native view.
	SetVisible(visible bool)
}

// viewEventHandler is implemented by views that receive events from native.
type viewEventHandler interface {
	handleViewEvent(method string, args map[string]any)
}

// PlatformViewFactory creates platform views of a specific type.
type PlatformViewFactory interface {
	// Create creates a new platform view instance.
	Create(viewID int64, params map[string]any) (PlatformView, error)

	// ViewType returns the view type this factory creates.
	ViewType() string
}

// PlatformViewRegistry manages platform view types and instances.
type PlatformViewRegistry struct {
	factories map[string]PlatformViewFactory
	views     map[int64]PlatformView
	nextID    atomic.Int64
	mu        sync.RWMutex
	channel   *MethodChannel
	events    *EventChannel
}

var (
	platformViewRegistry     *PlatformViewRegistry
	platformViewRegistryOnce sync.Once
)

// GetPlatformViewRegistry returns the global platform view registry.
func GetPlatformViewRegistry() *PlatformViewRegistry {
	platformViewRegistryOnce.Do(func() {
		platformViewRegistry = newPlatformViewRegistry()
	})
	return platformViewRegistry
}

func newPlatformViewRegistry() *PlatformViewRegistry {
	r := &PlatformViewRegistry{
		factories: make(map[string]PlatformViewFactory),
		views:     make(map[int64]PlatformView),
		channel:   NewMethodChannel(PlatformViewChannel),
		events:    NewEventChannel(PlatformViewChannel),
	}
	r.channel.SetHandler(r.handleMethodCall)
	return r
}

// listen subscribes the registry to per-view events from native.
func (r *PlatformViewRegistry) listen() {
	r.events.Listen(EventHandler{
		OnEvent: r.routeViewEvent,
		OnError: func(err error) {
			errors.Report(&errors.BridgeError{
				Op:      "platform.PlatformViewRegistry.events",
				Kind:    errors.KindPlatform,
				Channel: PlatformViewChannel,
				Err:     err,
			})
		},
	})
}

// RegisterFactory registers a factory for a platform view type.
func (r *PlatformViewRegistry) RegisterFactory(factory PlatformViewFactory) {
	r.mu.Lock()
	r.factories[factory.ViewType()] = factory
	r.mu.Unlock()
}

// Create creates a new platform view of the given type.
func (r *PlatformViewRegistry) Create(viewType string, params map[string]any) (PlatformView, error) {
	r.mu.RLock()
	factory, ok := r.factories[viewType]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrViewTypeNotFound, viewType)
	}

	viewID := r.nextID.Add(1)

	view, err := factory.Create(viewID, params)
	if err != nil {
		return nil, err
	}
	if err := view.Create(params); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.views[viewID] = view
	r.mu.Unlock()

	// Notify native to create the view
	_, err = r.channel.Invoke("create", map[string]any{
		"viewId":   viewID,
		"viewType": viewType,
		"params":   params,
	})
	if err != nil {
		r.mu.Lock()
		delete(r.views, viewID)
		r.mu.Unlock()
		return nil, err
	}

	return view, nil
}

// Dispose destroys a platform view.
func (r *PlatformViewRegistry) Dispose(viewID int64) {
	r.mu.Lock()
	view, ok := r.views[viewID]
	if ok {
		delete(r.views, viewID)
	}
	r.mu.Unlock()

	if ok {
		view.Dispose()
		if _, err := r.channel.Invoke("dispose", map[string]any{"viewId": viewID}); err != nil {
			logging.Named("platform").Debug("native dispose failed",
				zap.Int64("view_id", viewID), zap.Error(err))
		}
	}
}

// GetView returns a platform view by ID.
func (r *PlatformViewRegistry) GetView(viewID int64) PlatformView {
	r.mu.RLock()
	view := r.views[viewID]
	r.mu.RUnlock()
	return view
}

// SetViewVisible notifies native to show or hide a view.
func (r *PlatformViewRegistry) SetViewVisible(viewID int64, visible bool) error {
	_, err := r.channel.Invoke("setVisible", map[string]any{
		"viewId":  viewID,
		"visible": visible,
	})
	return err
}

// InvokeViewMethod invokes a method on a specific platform view. This is
// the view-command dispatch: native runs the command asynchronously and
// the result, if any, is whatever native returns on acceptance.
func (r *PlatformViewRegistry) InvokeViewMethod(viewID int64, method string, args map[string]any) (any, error) {
	// Clone the args map to avoid mutating the caller's map
	invokeArgs := make(map[string]any, len(args)+2)
	for k, v := range args { // safe: range over nil map is no-op
		invokeArgs[k] = v
	}
	invokeArgs["viewId"] = viewID
	invokeArgs["method"] = method
	return r.channel.Invoke("invokeViewMethod", invokeArgs)
}

// handleMethodCall processes incoming method calls from native code.
func (r *PlatformViewRegistry) handleMethodCall(method string, args any) (any, error) {
	switch method {
	case "onViewCreated", "onViewDisposed":
		return nil, nil
	default:
		return nil, ErrMethodNotFound
	}
}

// routeViewEvent delivers a native event to the view named by its viewId.
// Events for views that no longer exist are dropped.
func (r *PlatformViewRegistry) routeViewEvent(data any) {
	args := mapArg(data)
	viewID, ok := intArg(args["viewId"])
	method := stringArg(args["method"])
	if args == nil || !ok || method == "" {
		errors.Report(&errors.BridgeError{
			Op:      "platform.PlatformViewRegistry.routeViewEvent",
			Kind:    errors.KindParsing,
			Channel: PlatformViewChannel,
			Err:     &errors.ParseError{Channel: PlatformViewChannel, DataType: "PlatformViewEvent", Got: data},
		})
		return
	}

	view := r.GetView(viewID)
	if view == nil {
		logging.Named("platform").Debug("event for unknown view",
			zap.Int64("view_id", viewID), zap.String("method", method))
		return
	}
	if handler, ok := view.(viewEventHandler); ok {
		handler.handleViewEvent(method, args)
	}
}

func init() {
	registerBuiltinInit(func() { GetPlatformViewRegistry().listen() })
}

// basePlatformView provides common implementation for platform views.
type basePlatformView struct {
	viewID   int64
	viewType string
	visible  atomic.Bool
}

func (v *basePlatformView) ViewID() int64 {
	return v.viewID
}

func (v *basePlatformView) ViewType() string {
	return v.viewType
}

// SetVisible records visibility and forwards it to native when it changes.
func (v *basePlatformView) SetVisible(visible bool) {
	if v.visible.Swap(visible) == visible {
		return
	}
	if err := GetPlatformViewRegistry().SetViewVisible(v.viewID, visible); err != nil {
		logging.Named("platform").Debug("setVisible failed",
			zap.Int64("view_id", v.viewID), zap.Error(err))
	}
}
