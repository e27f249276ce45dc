// Package testing provides a widget testing harness for bridged web views.
//
// Install a recording native bridge, create a tester, pump a widget, then
// drive native events and make assertions:
//
//	func TestPage(t *testing.T) {
//	    bridge := platform.SetupRecordingBridge(t.Cleanup)
//	    tester := webtest.NewWidgetTesterWithT(t)
//	    ref := widgets.NewWebViewRef()
//	    tester.PumpWidget(widgets.BridgedWebView{Ref: ref})
//
//	    platform.SendViewEvent(ref.ViewID(), "onLoadingFinish", nil)
//	    tester.Pump()
//
//	    surface := tester.Find(webtest.ByType[widgets.NativeBridgedWebView]()).Widget()
//	    ...
//	}
//
// Native events are queued through [platform.Dispatch] and run on the next
// Pump, the way the engine runs them on the next frame.
package testing
