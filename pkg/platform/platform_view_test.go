package platform

import (
	"testing"

	"github.com/go-drift/webbridge/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestBridge(t *testing.T) *RecordingBridge {
	t.Helper()
	return SetupRecordingBridge(t.Cleanup)
}

// stubView is a minimal PlatformView that records events routed to it.
type stubView struct {
	basePlatformView
	events []string
}

func (v *stubView) Create(params map[string]any) error { return nil }
func (v *stubView) Dispose()                           {}
func (v *stubView) handleViewEvent(method string, args map[string]any) {
	v.events = append(v.events, method)
}

type stubFactory struct{ created []*stubView }

func (f *stubFactory) ViewType() string { return "stub" }
func (f *stubFactory) Create(viewID int64, params map[string]any) (PlatformView, error) {
	v := &stubView{basePlatformView: basePlatformView{viewID: viewID, viewType: "stub"}}
	f.created = append(f.created, v)
	return v, nil
}

func TestPlatformViewRegistry_CreateNotifiesNative(t *testing.T) {
	bridge := setupTestBridge(t)
	r := GetPlatformViewRegistry()
	r.RegisterFactory(&stubFactory{})

	view, err := r.Create("stub", map[string]any{"a": 1})
	require.NoError(t, err)
	assert.NotZero(t, view.ViewID())
	assert.Same(t, view, r.GetView(view.ViewID()))

	var create *Invocation
	for _, inv := range bridge.Invocations() {
		if inv.Method == "create" {
			inv := inv
			create = &inv
		}
	}
	require.NotNil(t, create)
	assert.Equal(t, PlatformViewChannel, create.Channel)
	assert.Equal(t, "stub", create.Args["viewType"])
	assert.EqualValues(t, view.ViewID(), create.Args["viewId"])
}

func TestPlatformViewRegistry_UnknownType(t *testing.T) {
	setupTestBridge(t)

	_, err := GetPlatformViewRegistry().Create("missing", nil)
	assert.ErrorIs(t, err, ErrViewTypeNotFound)
}

func TestPlatformViewRegistry_CreateFailsWithoutBridge(t *testing.T) {
	setupTestBridge(t)
	SetNativeBridge(nil)
	r := GetPlatformViewRegistry()
	r.RegisterFactory(&stubFactory{})

	_, err := r.Create("stub", nil)
	assert.ErrorIs(t, err, ErrPlatformUnavailable)
}

func TestPlatformViewRegistry_Dispose(t *testing.T) {
	bridge := setupTestBridge(t)
	r := GetPlatformViewRegistry()
	r.RegisterFactory(&stubFactory{})

	view, err := r.Create("stub", nil)
	require.NoError(t, err)
	bridge.Reset()

	r.Dispose(view.ViewID())
	r.Dispose(view.ViewID())

	assert.Nil(t, r.GetView(view.ViewID()))
	invs := bridge.Invocations()
	require.Len(t, invs, 1, "second Dispose must not reach native")
	assert.Equal(t, "dispose", invs[0].Method)
}

func TestPlatformViewRegistry_RoutesEventsByViewID(t *testing.T) {
	setupTestBridge(t)
	r := GetPlatformViewRegistry()
	f := &stubFactory{}
	r.RegisterFactory(f)

	a, err := r.Create("stub", nil)
	require.NoError(t, err)
	b, err := r.Create("stub", nil)
	require.NoError(t, err)

	require.NoError(t, SendViewEvent(b.ViewID(), "onPing", nil))

	assert.Empty(t, f.created[0].events)
	assert.Equal(t, []string{"onPing"}, f.created[1].events)
	_ = a
}

func TestPlatformViewRegistry_MalformedEventReported(t *testing.T) {
	setupTestBridge(t)
	rec := &errors.Recorder{}
	t.Cleanup(rec.Install())

	data, err := DefaultCodec.Encode(map[string]any{"method": "onPing"})
	require.NoError(t, err)
	require.NoError(t, HandleEvent(PlatformViewChannel, data))

	require.Len(t, rec.Errors(errors.KindParsing), 1)
}

func TestPlatformViewRegistry_SetVisibleOnlyOnChange(t *testing.T) {
	bridge := setupTestBridge(t)
	r := GetPlatformViewRegistry()
	r.RegisterFactory(bridgedWebViewFactory{})

	view, err := r.Create(BridgedWebViewType, nil)
	require.NoError(t, err)
	bridge.Reset()

	view.SetVisible(true)
	view.SetVisible(false)
	view.SetVisible(false)
	view.SetVisible(true)

	var visible []bool
	for _, inv := range bridge.Invocations() {
		if inv.Method == "setVisible" {
			visible = append(visible, inv.Args["visible"].(bool))
		}
	}
	assert.Equal(t, []bool{false, true}, visible)
}

func TestInvokeViewMethodDoesNotMutateArgs(t *testing.T) {
	bridge := setupTestBridge(t)

	args := map[string]any{"args": []any{"x"}}
	_, err := GetPlatformViewRegistry().InvokeViewMethod(5, "sendToBridge", args)
	require.NoError(t, err)

	assert.Len(t, args, 1)
	cmds := bridge.ViewCommands(5)
	require.Len(t, cmds, 1)
	assert.Equal(t, ViewCommand{Method: "sendToBridge", Args: []any{"x"}}, cmds[0])
}
