package platform

import (
	"maps"
	"slices"
	"sync"

	"github.com/go-drift/webbridge/pkg/errors"
	"github.com/go-drift/webbridge/pkg/logging"
	"go.uber.org/zap"
)

// BridgeMessageChannel is the process-wide event channel native uses to
// deliver messages posted by page scripts. Each event is {viewId, message};
// an event without viewId goes to every subscribed view.
const BridgeMessageChannel = "webViewBridgeMessage"

// bridgeMessageRouter owns the single subscription on BridgeMessageChannel
// and hands each message to the handler registered for its view, so two
// mounted web views never see each other's messages.
type bridgeMessageRouter struct {
	mu       sync.RWMutex
	channel  *EventChannel
	handlers map[int64]*bridgeMessageRoute
}

type bridgeMessageRoute struct {
	handler func(message any)
}

var bridgeMessages = &bridgeMessageRouter{
	channel:  NewEventChannel(BridgeMessageChannel),
	handlers: make(map[int64]*bridgeMessageRoute),
}

func init() {
	registerBuiltinInit(bridgeMessages.listen)
}

func (r *bridgeMessageRouter) listen() {
	r.channel.Listen(EventHandler{
		OnEvent: r.route,
		OnError: func(err error) {
			errors.Report(&errors.BridgeError{
				Op:      "platform.bridgeMessageRouter",
				Kind:    errors.KindPlatform,
				Channel: BridgeMessageChannel,
				Err:     err,
			})
		},
	})
}

// subscribe registers handler for messages addressed to viewID. The
// returned function removes exactly this registration; a later subscribe
// for the same view is not affected by an earlier unsubscribe.
func (r *bridgeMessageRouter) subscribe(viewID int64, handler func(message any)) (unsubscribe func()) {
	route := &bridgeMessageRoute{handler: handler}
	r.mu.Lock()
	r.handlers[viewID] = route
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			if r.handlers[viewID] == route {
				delete(r.handlers, viewID)
			}
			r.mu.Unlock()
		})
	}
}

func (r *bridgeMessageRouter) route(data any) {
	event := mapArg(data)
	rawID, keyed := event["viewId"]
	viewID, ok := intArg(rawID)
	if event == nil || (keyed && !ok) {
		errors.Report(&errors.BridgeError{
			Op:      "platform.bridgeMessageRouter.route",
			Kind:    errors.KindParsing,
			Channel: BridgeMessageChannel,
			Err:     &errors.ParseError{Channel: BridgeMessageChannel, DataType: "BridgeMessage", Got: data},
		})
		return
	}
	message, present := event["message"]
	if !present || message == nil {
		return
	}
	if !keyed {
		r.broadcast(message)
		return
	}

	r.mu.RLock()
	route := r.handlers[viewID]
	r.mu.RUnlock()
	if route == nil {
		logging.Named("platform").Debug("bridge message for unsubscribed view", zap.Int64("view_id", viewID))
		return
	}
	route.handler(message)
}

// broadcast delivers a message that names no view to every subscribed
// view, in view id order. With a single mounted web view that view is the
// only recipient.
func (r *bridgeMessageRouter) broadcast(message any) {
	r.mu.RLock()
	ids := slices.Sorted(maps.Keys(r.handlers))
	routes := make([]*bridgeMessageRoute, 0, len(ids))
	for _, id := range ids {
		routes = append(routes, r.handlers[id])
	}
	r.mu.RUnlock()

	if len(routes) == 0 {
		logging.Named("platform").Debug("bridge message with no subscribed view")
		return
	}
	for _, route := range routes {
		route.handler(message)
	}
}

// subscribers reports how many views currently receive bridge messages.
func (r *bridgeMessageRouter) subscribers() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers)
}

func (r *bridgeMessageRouter) reset() {
	r.mu.Lock()
	r.handlers = make(map[int64]*bridgeMessageRoute)
	r.mu.Unlock()
}
