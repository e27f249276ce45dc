package platform

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMethodChannel_HandleMethodCall(t *testing.T) {
	setupTestBridge(t)

	ch := NewMethodChannel("test/echo")
	ch.SetHandler(func(method string, args any) (any, error) {
		if method != "echo" {
			return nil, ErrMethodNotFound
		}
		return args, nil
	})

	out, err := HandleMethodCall("test/echo", "echo", []byte(`{"v":1}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":1}`, string(out))

	_, err = HandleMethodCall("test/echo", "other", []byte(`null`))
	assert.ErrorIs(t, err, ErrMethodNotFound)

	_, err = HandleMethodCall("test/missing", "echo", []byte(`null`))
	assert.ErrorIs(t, err, ErrChannelNotFound)
}

func TestEventChannel_StreamFollowsSubscriptions(t *testing.T) {
	bridge := setupTestBridge(t)

	ch := NewEventChannel("test/stream")
	assert.False(t, bridge.Streaming("test/stream"))

	a := ch.Listen(EventHandler{})
	b := ch.Listen(EventHandler{})
	assert.True(t, bridge.Streaming("test/stream"))

	a.Cancel()
	assert.True(t, bridge.Streaming("test/stream"))
	b.Cancel()
	assert.False(t, bridge.Streaming("test/stream"))
	assert.True(t, b.IsCanceled())
}

func TestEventChannel_DeferredStartUntilBridge(t *testing.T) {
	setupTestBridge(t)
	SetNativeBridge(nil)

	ch := NewEventChannel("test/deferred")
	ch.Listen(EventHandler{})

	bridge := &RecordingBridge{}
	SetNativeBridge(bridge)

	assert.True(t, bridge.Streaming("test/deferred"))
}

func TestEventChannel_EventErrorDone(t *testing.T) {
	setupTestBridge(t)

	ch := NewEventChannel("test/events")
	var events []any
	var errs []error
	done := 0
	ch.Listen(EventHandler{
		OnEvent: func(data any) { events = append(events, data) },
		OnError: func(err error) { errs = append(errs, err) },
		OnDone:  func() { done++ },
	})

	require.NoError(t, HandleEvent("test/events", []byte(`"a"`)))
	require.Error(t, HandleEvent("test/events", []byte(`{bad`)))
	require.NoError(t, HandleEventError("test/events", "E1", "boom"))
	require.NoError(t, HandleEventDone("test/events"))
	require.NoError(t, HandleEvent("test/events", []byte(`"after"`)))

	assert.Equal(t, []any{"a"}, events)
	require.Len(t, errs, 2)
	var chErr *ChannelError
	require.True(t, stderrors.As(errs[1], &chErr))
	assert.Equal(t, "E1", chErr.Code)
	assert.Equal(t, 1, done)
}

func TestHandleEvent_UnknownChannel(t *testing.T) {
	setupTestBridge(t)

	err := HandleEvent("test/nowhere", []byte(`1`))
	assert.ErrorIs(t, err, ErrChannelNotRegistered)
}

func TestHandleEvent_RecoversSubscriberPanic(t *testing.T) {
	setupTestBridge(t)

	ch := NewEventChannel("test/panics")
	ch.Listen(EventHandler{OnEvent: func(any) { panic("boom") }})

	assert.NotPanics(t, func() {
		_ = HandleEvent("test/panics", []byte(`1`))
	})
}
