package platform

import "sync"

// noopBridge is a NativeBridge that accepts all calls without side effects.
type noopBridge struct{}

func (noopBridge) InvokeMethod(channel, method string, args []byte) ([]byte, error) {
	return DefaultCodec.Encode(nil)
}
func (noopBridge) StartEventStream(string) error { return nil }
func (noopBridge) StopEventStream(string) error  { return nil }

// SetupTestBridge installs a no-op native bridge and synchronous dispatch
// function for testing. The cleanup function should be testing.T.Cleanup or
// equivalent; it registers a teardown that calls ResetForTest.
//
//	platform.SetupTestBridge(t.Cleanup)
func SetupTestBridge(cleanup func(func())) {
	SetNativeBridge(noopBridge{})
	RegisterDispatch(func(cb func()) { cb() })
	cleanup(ResetForTest)
}

// Invocation is one method call a RecordingBridge received.
type Invocation struct {
	Channel string
	Method  string
	Args    map[string]any
}

// ViewCommand is an invokeViewMethod call addressed to a single view.
type ViewCommand struct {
	Method string
	Args   []any
}

// RecordingBridge is a NativeBridge that records every call. Set Err to
// make subsequent calls fail.
type RecordingBridge struct {
	mu          sync.Mutex
	invocations []Invocation
	streams     map[string]bool
	Err         error
}

// InvokeMethod records the call and returns a nil result.
func (b *RecordingBridge) InvokeMethod(channel, method string, args []byte) ([]byte, error) {
	decoded, err := DefaultCodec.Decode(args)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.invocations = append(b.invocations, Invocation{
		Channel: channel,
		Method:  method,
		Args:    mapArg(decoded),
	})
	if b.Err != nil {
		return nil, b.Err
	}
	return DefaultCodec.Encode(nil)
}

// StartEventStream records that native was asked to stream channel.
func (b *RecordingBridge) StartEventStream(channel string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.streams == nil {
		b.streams = make(map[string]bool)
	}
	b.streams[channel] = true
	return nil
}

// StopEventStream records that native was asked to stop streaming channel.
func (b *RecordingBridge) StopEventStream(channel string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.streams != nil {
		b.streams[channel] = false
	}
	return nil
}

// Streaming reports whether the stream for channel is active.
func (b *RecordingBridge) Streaming(channel string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.streams[channel]
}

// Invocations returns every recorded call.
func (b *RecordingBridge) Invocations() []Invocation {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Invocation(nil), b.invocations...)
}

// ViewCommands returns the commands sent to viewID, in order.
func (b *RecordingBridge) ViewCommands(viewID int64) []ViewCommand {
	var out []ViewCommand
	for _, inv := range b.Invocations() {
		if inv.Channel != PlatformViewChannel || inv.Method != "invokeViewMethod" {
			continue
		}
		id, _ := intArg(inv.Args["viewId"])
		if id != viewID {
			continue
		}
		cmd := ViewCommand{Method: stringArg(inv.Args["method"])}
		if args, ok := inv.Args["args"].([]any); ok {
			cmd.Args = args
		}
		out = append(out, cmd)
	}
	return out
}

// Reset forgets recorded calls.
func (b *RecordingBridge) Reset() {
	b.mu.Lock()
	b.invocations = nil
	b.mu.Unlock()
}

// SetupRecordingBridge installs a RecordingBridge and synchronous dispatch
// for testing, registering ResetForTest with cleanup.
func SetupRecordingBridge(cleanup func(func())) *RecordingBridge {
	bridge := &RecordingBridge{}
	SetNativeBridge(bridge)
	RegisterDispatch(func(cb func()) { cb() })
	cleanup(ResetForTest)
	return bridge
}
