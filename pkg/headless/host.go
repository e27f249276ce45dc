package headless

import (
	"fmt"
	"io/fs"
	"sync"

	"github.com/go-drift/webbridge/pkg/errors"
	"github.com/go-drift/webbridge/pkg/logging"
	"github.com/go-drift/webbridge/pkg/platform"
	"go.uber.org/zap"
)

// DefaultUserAgent is navigator.userAgent when no view sets its own.
const DefaultUserAgent = "webbridge-headless/1.0"

// Config configures a Host.
type Config struct {
	// Pages serves asset://, file:// and relative page URIs. Nil means
	// only inline HTML can be loaded.
	Pages fs.FS

	// UserAgent overrides DefaultUserAgent.
	UserAgent string
}

// Host is a [platform.NativeBridge] that hosts bridged web views in
// process. Commands are accepted immediately and executed in order on a
// single goroutine; events go back to Go through the platform package, so
// callbacks still run on the UI thread set with [platform.RegisterDispatch].
type Host struct {
	pages     fs.FS
	userAgent string
	log       *zap.Logger
	queue     *jobQueue

	mu      sync.RWMutex
	views   map[int64]*webView
	streams map[string]bool
}

var _ platform.NativeBridge = (*Host)(nil)

// New starts a host. Close it when done.
func New(cfg Config) *Host {
	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	return &Host{
		pages:     cfg.Pages,
		userAgent: ua,
		log:       logging.Named("headless"),
		queue:     newJobQueue(),
		views:     make(map[int64]*webView),
		streams:   make(map[string]bool),
	}
}

// Sync blocks until every accepted command and the events it produced have
// been handed to the platform package. It must not be called from a page
// callback.
func (h *Host) Sync() {
	h.queue.wait()
}

// Close finishes queued work and stops the host. Views still open are
// disposed without notifying Go.
func (h *Host) Close() error {
	h.mu.Lock()
	for id, v := range h.views {
		v.dispose()
		delete(h.views, id)
	}
	h.mu.Unlock()
	h.queue.close()
	return nil
}

// Views returns the ids of the open views.
func (h *Host) Views() []int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ids := make([]int64, 0, len(h.views))
	for id := range h.views {
		ids = append(ids, id)
	}
	return ids
}

// Visible reports whether the view is shown, as last set by Go.
func (h *Host) Visible(viewID int64) bool {
	v := h.view(viewID)
	return v != nil && v.visible.Load()
}

// InvokeMethod implements platform.NativeBridge.
func (h *Host) InvokeMethod(channel, method string, args []byte) ([]byte, error) {
	if channel != platform.PlatformViewChannel {
		return nil, fmt.Errorf("%w: %s", platform.ErrChannelNotFound, channel)
	}
	decoded, err := platform.DefaultCodec.Decode(args)
	if err != nil {
		return nil, err
	}
	m, _ := decoded.(map[string]any)
	if err := h.handleViewCall(method, m); err != nil {
		return nil, err
	}
	return platform.DefaultCodec.Encode(nil)
}

// StartEventStream implements platform.NativeBridge.
func (h *Host) StartEventStream(channel string) error {
	h.mu.Lock()
	h.streams[channel] = true
	h.mu.Unlock()
	return nil
}

// StopEventStream implements platform.NativeBridge.
func (h *Host) StopEventStream(channel string) error {
	h.mu.Lock()
	delete(h.streams, channel)
	h.mu.Unlock()
	return nil
}

func (h *Host) streaming(channel string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.streams[channel]
}

func (h *Host) view(id int64) *webView {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.views[id]
}

func (h *Host) handleViewCall(method string, args map[string]any) error {
	id, ok := viewID(args["viewId"])
	if !ok {
		return fmt.Errorf("%w: %s without viewId", platform.ErrInvalidArguments, method)
	}

	switch method {
	case "create":
		return h.create(id, args)
	case "dispose":
		h.mu.Lock()
		v := h.views[id]
		delete(h.views, id)
		h.mu.Unlock()
		if v != nil {
			v.dispose()
			h.log.Debug("view disposed", zap.Int64("view_id", id))
		}
		return nil
	case "setVisible":
		if v := h.view(id); v != nil {
			visible, _ := args["visible"].(bool)
			v.visible.Store(visible)
		}
		return nil
	case "setGeometry":
		return nil
	case "invokeViewMethod":
		v := h.view(id)
		if v == nil {
			return fmt.Errorf("%w: unknown view %d", platform.ErrInvalidArguments, id)
		}
		command, _ := args["method"].(string)
		return h.command(v, command, args)
	default:
		return fmt.Errorf("%w: %s", platform.ErrMethodNotFound, method)
	}
}

func (h *Host) create(id int64, args map[string]any) error {
	viewType, _ := args["viewType"].(string)
	if viewType != platform.BridgedWebViewType {
		return fmt.Errorf("%w: %s", platform.ErrViewTypeNotFound, viewType)
	}
	params, _ := args["params"].(map[string]any)

	h.mu.Lock()
	if _, exists := h.views[id]; exists {
		h.mu.Unlock()
		return fmt.Errorf("%w: view %d already exists", platform.ErrInvalidArguments, id)
	}
	v := newWebView(h, id, params)
	h.views[id] = v
	h.mu.Unlock()
	h.log.Debug("view created", zap.Int64("view_id", id))

	// The first load starts from the UI thread, after the Go side has
	// finished wiring the view's callbacks.
	if src := platform.SourceFromMap(params["source"]); !src.IsZero() {
		start := func() { h.enqueue(v, func() { v.navigate(src) }) }
		if !platform.Dispatch(start) {
			start()
		}
	}
	return nil
}

// command accepts a view command. stopLoading acts at once so it can
// interrupt a running page; the rest run in order on the job goroutine.
func (h *Host) command(v *webView, method string, args map[string]any) error {
	positional, _ := args["args"].([]any)
	arg := func(i int) any {
		if i < len(positional) {
			return positional[i]
		}
		return nil
	}

	switch method {
	case "goBack":
		h.enqueue(v, v.goBack)
	case "goForward":
		h.enqueue(v, v.goForward)
	case "reload":
		h.enqueue(v, v.reload)
	case "stopLoading":
		v.stopLoading()
	case "sendToBridge":
		message := arg(0)
		h.enqueue(v, func() { v.sendToBridge(message) })
	case "injectJavaScript":
		script, ok := arg(0).(string)
		if !ok {
			return fmt.Errorf("%w: injectJavaScript expects a script", platform.ErrInvalidArguments)
		}
		h.enqueue(v, func() { v.injectJavaScript(script) })
	case "loadSource":
		src := platform.SourceFromMap(arg(0))
		if err := src.Validate(); err != nil {
			return err
		}
		h.enqueue(v, func() { v.navigate(src) })
	case "updateSettings":
		params, _ := arg(0).(map[string]any)
		h.enqueue(v, func() { v.settings.apply(params) })
	default:
		return fmt.Errorf("%w: %s", platform.ErrMethodNotFound, method)
	}
	return nil
}

// enqueue runs job on the job goroutine. A panicking page callback is
// reported and does not stop the host.
func (h *Host) enqueue(v *webView, job func()) {
	ok := h.queue.push(func() {
		defer errors.Recover(fmt.Sprintf("headless.view[%d]", v.id))
		job()
	})
	if !ok {
		h.log.Debug("host closed, command dropped", zap.Int64("view_id", v.id))
	}
}

func viewID(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), n > 0
	case int64:
		return n, n > 0
	case int:
		return int64(n), n > 0
	default:
		return 0, false
	}
}
