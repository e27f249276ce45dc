package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"reflect"
	"sync"
	"time"

	"github.com/go-drift/webbridge/pkg/core"
	"go.uber.org/zap"
)

// maxTreeDepth limits recursion depth to prevent stack overflow from malformed trees.
const maxTreeDepth = 500

// WidgetTreeNode represents a node in the serialized widget/element tree.
type WidgetTreeNode struct {
	WidgetType  string           `json:"widgetType"`
	ElementType string           `json:"elementType"`
	Key         any              `json:"key,omitempty"`
	Depth       int              `json:"depth"`
	HasState    bool             `json:"hasState,omitempty"`
	Children    []WidgetTreeNode `json:"children,omitempty"`
}

// DebugServer serves inspection endpoints for a Runner, and any extra
// handlers mounted with Handle (the bridge relay, for instance).
type DebugServer struct {
	runner *Runner
	mux    *http.ServeMux

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// NewDebugServer returns a server exposing /health, /debug and
// /widget-tree for runner.
func NewDebugServer(runner *Runner) *DebugServer {
	s := &DebugServer{runner: runner, mux: http.NewServeMux()}
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/debug", s.handleDebug)
	s.mux.HandleFunc("/widget-tree", s.handleWidgetTree)
	return s
}

// Handle mounts handler at pattern. Call before Start.
func (s *DebugServer) Handle(pattern string, handler http.Handler) {
	s.mux.Handle(pattern, handler)
}

// ServeHTTP implements http.Handler.
func (s *DebugServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Start listens on addr and serves in the background. It returns the
// bound address, useful when addr asks for an ephemeral port.
func (s *DebugServer) Start(addr string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String(), nil
	}

	// Bind listener first to fail fast on port conflicts
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("debug server listen: %w", err)
	}
	server := &http.Server{Handler: s.mux, ReadHeaderTimeout: 5 * time.Second}
	s.server = server
	s.listener = listener

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.runner.log.Error("debug server stopped", zap.Error(err))
		}
	}()
	s.runner.log.Info("debug server listening", zap.String("addr", listener.Addr().String()))
	return listener.Addr().String(), nil
}

// Stop gracefully shuts down the server.
func (s *DebugServer) Stop(ctx context.Context) error {
	s.mu.Lock()
	server := s.server
	s.server = nil
	s.listener = nil
	s.mu.Unlock()

	if server == nil {
		return nil
	}
	return server.Shutdown(ctx)
}

func (s *DebugServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// handleDebug reports the runner's state.
func (s *DebugServer) handleDebug(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var info struct {
		HasRoot  bool   `json:"hasRoot"`
		RootType string `json:"rootType,omitempty"`
		Frames   int64  `json:"frames"`
		Pending  int    `json:"pendingCallbacks"`
	}
	s.runner.frameLock.Lock()
	if root := s.runner.root; root != nil {
		info.HasRoot = true
		info.RootType = reflect.TypeOf(root.Widget()).String()
	}
	s.runner.frameLock.Unlock()
	info.Frames = s.runner.Frames()
	s.runner.dispatchMu.Lock()
	info.Pending = len(s.runner.dispatchQueue)
	s.runner.dispatchMu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(info)
}

// handleWidgetTree returns the widget/element tree as JSON.
func (s *DebugServer) handleWidgetTree(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Recover from panics during serialization
	defer func() {
		if rec := recover(); rec != nil {
			http.Error(w, fmt.Sprintf("panic: %v", rec), http.StatusInternalServerError)
		}
	}()

	s.runner.frameLock.Lock()
	root := s.runner.root
	if root == nil {
		s.runner.frameLock.Unlock()
		http.Error(w, "no widget tree", http.StatusServiceUnavailable)
		return
	}
	tree := serializeWidgetTree(root, 0)
	s.runner.frameLock.Unlock()

	data, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		http.Error(w, fmt.Sprintf("json encode error: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func serializeWidgetTree(elem core.Element, depth int) WidgetTreeNode {
	if elem == nil {
		return WidgetTreeNode{ElementType: "<nil>"}
	}

	node := WidgetTreeNode{
		ElementType: reflect.TypeOf(elem).String(),
		Depth:       elem.Depth(),
	}
	if widget := elem.Widget(); widget != nil {
		node.WidgetType = reflect.TypeOf(widget).String()
		node.Key = safeKey(widget.Key())
	}
	if _, ok := elem.(*core.StatefulElement); ok {
		node.HasState = true
	}

	if depth < maxTreeDepth {
		elem.VisitChildren(func(child core.Element) bool {
			node.Children = append(node.Children, serializeWidgetTree(child, depth+1))
			return true
		})
	}
	return node
}

// safeKey converts a widget key to a JSON-safe value.
func safeKey(key any) any {
	if key == nil {
		return nil
	}
	switch key.(type) {
	case string, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, bool:
		return key
	default:
		return fmt.Sprintf("%v", key)
	}
}
