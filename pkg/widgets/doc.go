// Package widgets provides BridgedWebView, a widget that embeds a native
// web view, tracks its load lifecycle and relays messages between the
// page and the app, together with the small set of widgets it composes.
//
// A BridgedWebView shows its placeholder while the page is loading or has
// failed. The native surface stays mounted and keeps loading while it is
// collapsed:
//
//	widgets.BridgedWebView{
//	    Settings: widgets.WebViewSettings{
//	        Source:              platform.Source{URI: "asset://web/index.html"},
//	        StartInLoadingState: true,
//	    },
//	    Ref:             ref,
//	    OnBridgeMessage: func(msg any) { ... },
//	    RenderLoading:   func() core.Widget { return widgets.ActivityIndicator{Animating: true} },
//	}
//
// Commands reach the mounted view through a [WebViewRef]:
//
//	if err := ref.SendToBridge("ping"); err != nil { ... }
package widgets
