// Package relay exposes a live bridged web view over WebSocket, so tools
// outside the app can watch the page's bridge traffic and talk back to it.
//
// Every connected client receives each event as one JSON frame:
//
//	{"type":"message","data":"hello"}
//	{"type":"navigation","navigation":{"url":"...","title":"...",...}}
//	{"type":"loadError","error":{"domain":"network_error","code":-2,...}}
//
// Clients send frames of their own:
//
//	{"type":"send","data":"ping"}        → SendToBridge
//	{"type":"command","name":"reload"}   → goBack, goForward, reload, stopLoading
//	{"type":"inject","data":"script"}    → InjectJavaScript
package relay

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-drift/webbridge/pkg/logging"
	"github.com/go-drift/webbridge/pkg/platform"
	"go.uber.org/zap"
)

// Frame types.
const (
	TypeMessage    = "message"
	TypeNavigation = "navigation"
	TypeLoadError  = "loadError"
	TypeError      = "error"
	TypeSend       = "send"
	TypeCommand    = "command"
	TypeInject     = "inject"
)

const (
	// clientBuffer is how many frames may wait for a slow client before
	// it is disconnected.
	clientBuffer = 64
	writeTimeout = 5 * time.Second
	maxFrameSize = 1 << 20
)

// ErrUnknownCommand is reported to a client that names no known command.
var ErrUnknownCommand = errors.New("relay: unknown command")

// Frame is one JSON message on the relay socket.
type Frame struct {
	Type       string                    `json:"type"`
	Data       any                       `json:"data,omitempty"`
	Name       string                    `json:"name,omitempty"`
	Navigation *platform.NavigationState `json:"navigation,omitempty"`
	Error      *platform.LoadError       `json:"error,omitempty"`
}

// Config configures a Relay.
type Config struct {
	// OriginPatterns lists the extra origins allowed to connect, in the
	// form accepted by websocket.AcceptOptions. Same-origin requests are
	// always allowed.
	OriginPatterns []string
}

// Relay is an http.Handler that upgrades requests to WebSocket and
// forwards frames between its clients and a web view.
type Relay struct {
	target platform.WebViewCommands
	opts   websocket.AcceptOptions
	log    *zap.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

type client struct {
	conn *websocket.Conn
	send chan Frame
	once sync.Once
}

func (c *client) close(code websocket.StatusCode, reason string) {
	c.once.Do(func() {
		go func() { _ = c.conn.Close(code, reason) }()
	})
}

// New returns a relay that drives target.
func New(target platform.WebViewCommands, cfg Config) *Relay {
	return &Relay{
		target:  target,
		opts:    websocket.AcceptOptions{OriginPatterns: cfg.OriginPatterns},
		log:     logging.Named("relay"),
		clients: make(map[*client]struct{}),
	}
}

// Message forwards a message the page posted.
func (r *Relay) Message(message any) {
	r.broadcast(Frame{Type: TypeMessage, Data: message})
}

// Navigation forwards a navigation state change.
func (r *Relay) Navigation(nav platform.NavigationState) {
	r.broadcast(Frame{Type: TypeNavigation, Navigation: &nav})
}

// LoadError forwards a failed load.
func (r *Relay) LoadError(err platform.LoadError) {
	r.broadcast(Frame{Type: TypeLoadError, Error: &err})
}

// Clients returns the number of connected clients.
func (r *Relay) Clients() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// Close disconnects every client and rejects new ones.
func (r *Relay) Close() {
	r.mu.Lock()
	r.closed = true
	clients := r.clients
	r.clients = make(map[*client]struct{})
	r.mu.Unlock()
	for c := range clients {
		c.close(websocket.StatusGoingAway, "relay closed")
	}
}

func (r *Relay) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	conn, err := websocket.Accept(w, req, &r.opts)
	if err != nil {
		r.log.Debug("websocket accept failed", zap.Error(err))
		return
	}
	conn.SetReadLimit(maxFrameSize)

	c := &client{conn: conn, send: make(chan Frame, clientBuffer)}
	if !r.add(c) {
		_ = conn.Close(websocket.StatusGoingAway, "relay closed")
		return
	}
	defer r.remove(c)
	r.log.Info("relay client connected", zap.String("remote", req.RemoteAddr))

	ctx, cancel := context.WithCancel(req.Context())
	defer cancel()
	go r.writeLoop(ctx, c)
	r.readLoop(ctx, c)
}

func (r *Relay) add(c *client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false
	}
	r.clients[c] = struct{}{}
	return true
}

func (r *Relay) remove(c *client) {
	r.mu.Lock()
	delete(r.clients, c)
	r.mu.Unlock()
}

func (r *Relay) broadcast(f Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for c := range r.clients {
		select {
		case c.send <- f:
		default:
			r.log.Warn("relay client too slow, disconnecting")
			delete(r.clients, c)
			c.close(websocket.StatusPolicyViolation, "client too slow")
		}
	}
}

func (r *Relay) writeLoop(ctx context.Context, c *client) {
	for {
		select {
		case <-ctx.Done():
			return
		case f := <-c.send:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(wctx, c.conn, f)
			cancel()
			if err != nil {
				r.log.Debug("relay write failed", zap.Error(err))
				c.close(websocket.StatusInternalError, "write failed")
				return
			}
		}
	}
}

func (r *Relay) readLoop(ctx context.Context, c *client) {
	for {
		var f Frame
		if err := wsjson.Read(ctx, c.conn, &f); err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				r.log.Info("relay client disconnected")
			default:
				r.log.Debug("relay read failed", zap.Error(err))
			}
			return
		}
		if err := r.handle(f); err != nil {
			select {
			case c.send <- Frame{Type: TypeError, Data: err.Error()}:
			default:
			}
		}
	}
}

func (r *Relay) handle(f Frame) error {
	switch f.Type {
	case TypeSend:
		return r.target.SendToBridge(f.Data)
	case TypeInject:
		script, ok := f.Data.(string)
		if !ok {
			return fmt.Errorf("%w: inject expects a script string", platform.ErrInvalidArguments)
		}
		return r.target.InjectJavaScript(script)
	case TypeCommand:
		return RunCommand(r.target, f.Name)
	default:
		return fmt.Errorf("%w: frame type %q", platform.ErrInvalidArguments, f.Type)
	}
}

// RunCommand runs the navigation command name on target.
func RunCommand(target platform.WebViewCommands, name string) error {
	switch name {
	case "goBack":
		return target.GoBack()
	case "goForward":
		return target.GoForward()
	case "reload":
		return target.Reload()
	case "stopLoading":
		return target.StopLoading()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
}
