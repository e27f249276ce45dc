// Package platform connects Go widgets to the native side of the app.
//
// It carries method calls and event streams over named channels, hosts the
// platform-view registry that creates and drives native views, and defines
// the bridged web view: its controller, its payloads and the routing of
// inbound bridge messages to the view instance they belong to.
package platform

import (
	"bytes"
	"encoding/json"
)

// MessageCodec converts channel payloads to and from bytes.
type MessageCodec interface {
	Encode(value any) ([]byte, error)
	// Decode returns nil for empty input. Numbers decode as float64 and
	// objects as map[string]any.
	Decode(data []byte) (any, error)
}

// JSONCodec is the wire format shared with the native bridge.
type JSONCodec struct{}

func (JSONCodec) Encode(value any) ([]byte, error) {
	return json.Marshal(value)
}

func (JSONCodec) Decode(data []byte) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// DefaultCodec encodes every channel payload.
var DefaultCodec MessageCodec = JSONCodec{}
