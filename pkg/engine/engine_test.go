package engine_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-drift/webbridge/pkg/core"
	"github.com/go-drift/webbridge/pkg/engine"
	"github.com/go-drift/webbridge/pkg/errors"
	"github.com/go-drift/webbridge/pkg/platform"
	"github.com/go-drift/webbridge/pkg/widgets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counter rebuilds with a new label each time bump is called.
type counter struct {
	core.StatefulBase
	bump chan<- func()
}

func (counter) CreateState() core.State { return &counterState{} }

type counterState struct {
	core.StateBase
	n int
}

func (s *counterState) InitState() {
	w := s.Element().Widget().(counter)
	w.bump <- func() { s.SetState(func() { s.n++ }) }
}

func (s *counterState) Build(ctx core.BuildContext) core.Widget {
	return widgets.Text{Tag: "count", Content: string(rune('0' + s.n))}
}

func startRunner(t *testing.T, root core.Widget) (*engine.Runner, context.Context) {
	t.Helper()
	t.Cleanup(platform.ResetForTest)
	r := engine.NewRunner()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx, root) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})
	return r, ctx
}

func TestRunner_RunsDispatchedCallbacksOnFrames(t *testing.T) {
	r, ctx := startRunner(t, widgets.Text{Content: "hi"})

	var ran []int
	for i := range 3 {
		platform.Dispatch(func() { ran = append(ran, i) })
	}
	require.NoError(t, r.Post(ctx, func() {}))

	assert.Equal(t, []int{0, 1, 2}, ran)
	assert.Positive(t, r.Frames())
}

func TestRunner_RebuildsAfterSetState(t *testing.T) {
	bumps := make(chan func(), 1)
	r, ctx := startRunner(t, counter{bump: bumps})
	bump := <-bumps

	r.Dispatch(bump)
	require.NoError(t, r.Post(ctx, func() {}))

	srv := httptest.NewServer(engine.NewDebugServer(r))
	t.Cleanup(srv.Close)
	tree := fetchTree(t, srv.URL)
	require.Len(t, tree.Children, 1)
	assert.Equal(t, "widgets.Text", tree.Children[0].WidgetType)
	assert.Equal(t, "count", tree.Children[0].Key)
	assert.True(t, tree.HasState)
}

func TestRunner_ReportsPanickingCallbacks(t *testing.T) {
	rec := &errors.Recorder{}
	t.Cleanup(rec.Install())
	r, ctx := startRunner(t, widgets.Text{Content: "hi"})

	r.Dispatch(func() { panic("boom") })
	ran := false
	r.Dispatch(func() { ran = true })
	require.NoError(t, r.Post(ctx, func() {}))

	assert.True(t, ran)
	require.Len(t, rec.Panics(), 1)
	assert.Equal(t, "boom", rec.Panics()[0].Value)
}

func TestRunner_RejectsSecondRun(t *testing.T) {
	r, ctx := startRunner(t, widgets.Text{Content: "hi"})
	require.NoError(t, r.Post(ctx, func() {}))

	assert.ErrorIs(t, r.Run(ctx, widgets.Text{}), engine.ErrAlreadyRunning)
}

func TestRunner_PostHonoursContext(t *testing.T) {
	t.Cleanup(platform.ResetForTest)
	r := engine.NewRunner()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// Not running, so the callback never executes.
	assert.ErrorIs(t, r.Post(ctx, func() {}), context.DeadlineExceeded)
}

func TestDebugServer_Endpoints(t *testing.T) {
	r, ctx := startRunner(t, widgets.View{Children: []core.Widget{widgets.Text{Content: "a"}}})
	require.NoError(t, r.Post(ctx, func() {}))

	s := engine.NewDebugServer(r)
	s.Handle("/extra", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	addr, err := s.Start("127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Stop(context.Background()) })
	base := "http://" + addr

	resp, err := http.Get(base + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(base + "/debug")
	require.NoError(t, err)
	var info struct {
		HasRoot  bool   `json:"hasRoot"`
		RootType string `json:"rootType"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	resp.Body.Close()
	assert.True(t, info.HasRoot)
	assert.Equal(t, "widgets.View", info.RootType)

	resp, err = http.Post(base+"/health", "text/plain", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, err = http.Get(base + "/extra")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)

	tree := fetchTree(t, base)
	assert.Equal(t, "widgets.View", tree.WidgetType)
	require.Len(t, tree.Children, 1)
	assert.Equal(t, "widgets.Text", tree.Children[0].WidgetType)
}

func fetchTree(t *testing.T, base string) engine.WidgetTreeNode {
	t.Helper()
	resp, err := http.Get(base + "/widget-tree")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var tree engine.WidgetTreeNode
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tree))
	return tree
}
