package platform

// SendViewEvent delivers an event from native to the platform view viewID
// as if it arrived over [PlatformViewChannel]. Native host implementations
// written in Go, such as the headless host, call it directly.
func SendViewEvent(viewID int64, method string, args map[string]any) error {
	payload := make(map[string]any, len(args)+2)
	for k, v := range args {
		payload[k] = v
	}
	payload["viewId"] = viewID
	payload["method"] = method
	data, err := DefaultCodec.Encode(payload)
	if err != nil {
		return err
	}
	return HandleEvent(PlatformViewChannel, data)
}

// SendBridgeMessage delivers a page-posted message for viewID over
// [BridgeMessageChannel].
func SendBridgeMessage(viewID int64, message any) error {
	data, err := DefaultCodec.Encode(map[string]any{
		"viewId":  viewID,
		"message": message,
	})
	if err != nil {
		return err
	}
	return HandleEvent(BridgeMessageChannel, data)
}
