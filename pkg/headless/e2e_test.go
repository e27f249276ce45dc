package headless_test

import (
	"testing"

	"github.com/go-drift/webbridge/pkg/core"
	"github.com/go-drift/webbridge/pkg/platform"
	webtest "github.com/go-drift/webbridge/pkg/testing"
	"github.com/go-drift/webbridge/pkg/widgets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mountOnHost(t *testing.T) (*harness, *webtest.WidgetTester) {
	t.Helper()
	h := newHarness(t, demoPages)
	platform.SetAssetResolver(platform.DefaultAssetResolver{Target: platform.TargetHeadless})
	return h, webtest.NewWidgetTesterWithT(t)
}

// pump lets the host and the widget tree exchange events until both settle.
func pump(t *testing.T, h *harness, tester *webtest.WidgetTester) {
	t.Helper()
	for range 10 {
		h.host.Sync()
		require.NoError(t, tester.PumpAndSettle())
	}
}

func loadingText() core.Widget {
	return widgets.Text{Content: "loading"}
}

func errorText(domain string, code int, description string) core.Widget {
	return widgets.Text{Content: domain + " failed"}
}

func TestBridgedWebViewOnHost_MessagesBothWays(t *testing.T) {
	h, tester := mountOnHost(t)
	ref := widgets.NewWebViewRef()
	var messages []any

	require.NoError(t, tester.PumpWidget(widgets.BridgedWebView{
		Settings:        widgets.WebViewSettings{Source: platform.Source{URI: "asset://web/index.html"}},
		Ref:             ref,
		OnBridgeMessage: func(message any) { messages = append(messages, message) },
	}))
	pump(t, h, tester)

	require.NoError(t, ref.SendToBridge("ping"))
	pump(t, h, tester)

	assert.Equal(t, []any{"ready", "echo:ping"}, messages)
}

func TestBridgedWebViewOnHost_LoadingPlaceholderAndVisibility(t *testing.T) {
	h, tester := mountOnHost(t)
	ref := widgets.NewWebViewRef()

	require.NoError(t, tester.PumpWidget(widgets.BridgedWebView{
		Settings: widgets.WebViewSettings{
			Source:              platform.Source{URI: "asset://web/about.html"},
			StartInLoadingState: true,
		},
		Ref:           ref,
		RenderLoading: loadingText,
	}))
	assert.True(t, tester.Find(webtest.ByText("loading")).Exists())
	h.host.Sync()
	assert.False(t, h.host.Visible(ref.ViewID()))

	pump(t, h, tester)

	assert.False(t, tester.Find(webtest.ByText("loading")).Exists())
	assert.True(t, h.host.Visible(ref.ViewID()))
}

func TestBridgedWebViewOnHost_ErrorThenRecover(t *testing.T) {
	h, tester := mountOnHost(t)
	var loadEnds []string

	build := func(uri string) widgets.BridgedWebView {
		return widgets.BridgedWebView{
			Settings:    widgets.WebViewSettings{Source: platform.Source{URI: uri}},
			RenderError: errorText,
			OnLoadEnd: func(nav platform.NavigationState, err *platform.LoadError) {
				if err != nil {
					loadEnds = append(loadEnds, "error "+err.Domain)
					return
				}
				loadEnds = append(loadEnds, "ok "+nav.URL)
			},
		}
	}

	require.NoError(t, tester.PumpWidget(build("asset://web/broken.html")))
	pump(t, h, tester)
	assert.True(t, tester.Find(webtest.ByText("script_error failed")).Exists())

	require.NoError(t, tester.UpdateWidget(build("asset://web/about.html")))
	pump(t, h, tester)

	assert.False(t, tester.Find(webtest.ByText("script_error failed")).Exists())
	assert.Equal(t, []string{"error script_error", "ok asset://web/about.html"}, loadEnds)
}

func TestBridgedWebViewOnHost_UnmountDisposesNativeView(t *testing.T) {
	h, tester := mountOnHost(t)
	ref := widgets.NewWebViewRef()

	require.NoError(t, tester.PumpWidget(widgets.BridgedWebView{
		Settings: widgets.WebViewSettings{Source: platform.Source{URI: "asset://web/index.html"}},
		Ref:      ref,
	}))
	pump(t, h, tester)
	require.Len(t, h.host.Views(), 1)

	tester.Unmount()
	h.host.Sync()

	assert.Empty(t, h.host.Views())
	assert.ErrorIs(t, ref.Reload(), widgets.ErrNotMounted)
}
