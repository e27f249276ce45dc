package headless_test

import (
	"fmt"
	"testing"
	"testing/fstest"
	"time"

	"github.com/go-drift/webbridge/pkg/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects controller callbacks as short strings.
type recorder struct {
	events []string
}

func (r *recorder) attach(c *platform.WebViewController) {
	c.OnLoadingStart = func(nav platform.NavigationState) {
		r.events = append(r.events, "start "+nav.URL)
	}
	c.OnLoadingFinish = func(nav platform.NavigationState) {
		r.events = append(r.events, fmt.Sprintf("finish %s %q back=%t fwd=%t", nav.URL, nav.Title, nav.CanGoBack, nav.CanGoForward))
	}
	c.OnLoadingError = func(err platform.LoadError) {
		r.events = append(r.events, fmt.Sprintf("error %s %d", err.Domain, err.Code))
	}
	c.OnNavigationStateChange = func(nav platform.NavigationState) {
		r.events = append(r.events, fmt.Sprintf("nav %q", nav.Title))
	}
	c.OnBridgeMessage = func(message any) {
		r.events = append(r.events, fmt.Sprintf("message %v", message))
	}
}

func (r *recorder) reset() {
	r.events = nil
}

var demoPages = fstest.MapFS{
	"web/index.html": {Data: []byte(`<html><head><title>Home</title></head><body>
<script>
webViewBridge.onMessage = function (msg) {
  webViewBridge.send("echo:" + msg);
};
webViewBridge.send("ready");
</script></body></html>`)},
	"web/about.html": {Data: []byte(`<title>About</title>`)},
	"web/broken.html": {Data: []byte(`<title>Broken</title><script>throw new Error("boom")</script>`)},
	"web/loop.html":   {Data: []byte(`<script>while (true) {}</script>`)},
	"web/nav.html":    {Data: []byte(`<script>location.assign("about.html")</script>`)},
	"web/store.html":  {Data: []byte(`<script>
var n = Number(localStorage.getItem("visits") || 0) + 1;
localStorage.setItem("visits", String(n));
webViewBridge.send("visits:" + n);
</script>`)},
	"web/module.html": {Data: []byte(`<script type="module">
export const greeting = "from module";
webViewBridge.send(greeting);
</script>`)},
	"web/import.html": {Data: []byte(`<script type="module">
import { x } from "./lib.js";
webViewBridge.send(x);
</script>`)},
	"web/timer.html": {Data: []byte(`<script>
setTimeout(function () { webViewBridge.send("timer"); }, 100);
webViewBridge.send("sync");
</script>`)},
}

func TestHost_InitialLoadLifecycle(t *testing.T) {
	h := newHarness(t, demoPages)
	rec := &recorder{}
	c := h.newController(t, withSource("asset://web/index.html", nil))
	rec.attach(c)

	h.settle()

	assert.Equal(t, []string{
		"start asset://web/index.html",
		"message ready",
		`finish asset://web/index.html "Home" back=false fwd=false`,
	}, rec.events)
}

func TestHost_SendToBridgeReachesPage(t *testing.T) {
	h := newHarness(t, demoPages)
	rec := &recorder{}
	c := h.newController(t, withSource("asset://web/index.html", nil))
	rec.attach(c)
	h.settle()
	rec.reset()

	require.NoError(t, c.SendToBridge("ping"))
	require.NoError(t, c.SendToBridge("pong"))
	h.settle()

	assert.Equal(t, []string{"message echo:ping", "message echo:pong"}, rec.events)
}

func TestHost_MessagesFallBackToViewEvents(t *testing.T) {
	h := newHarness(t, demoPages)
	require.NoError(t, h.host.StopEventStream(platform.BridgeMessageChannel))
	rec := &recorder{}
	c := h.newController(t, withSource("asset://web/index.html", nil))
	rec.attach(c)

	h.settle()

	assert.Contains(t, rec.events, "message ready")
}

func TestHost_ModuleScripts(t *testing.T) {
	h := newHarness(t, demoPages)
	rec := &recorder{}
	c := h.newController(t, withSource("asset://web/module.html", nil))
	rec.attach(c)
	h.settle()

	assert.Equal(t, []string{
		"start asset://web/module.html",
		"message from module",
		`finish asset://web/module.html "" back=false fwd=false`,
	}, rec.events)

	rec.reset()
	require.NoError(t, c.Load("asset://web/import.html"))
	h.settle()

	assert.Equal(t, []string{"start asset://web/import.html", "error script_error -1"}, rec.events)
}

func TestHost_History(t *testing.T) {
	h := newHarness(t, demoPages)
	rec := &recorder{}
	c := h.newController(t, withSource("asset://web/index.html", nil))
	rec.attach(c)
	h.settle()
	rec.reset()

	require.NoError(t, c.Load("asset://web/about.html"))
	h.settle()
	require.NoError(t, c.GoBack())
	h.settle()
	require.NoError(t, c.GoForward())
	h.settle()
	require.NoError(t, c.GoForward())
	h.settle()

	assert.Equal(t, []string{
		"start asset://web/about.html",
		`finish asset://web/about.html "About" back=true fwd=false`,
		"start asset://web/index.html",
		"message ready",
		`finish asset://web/index.html "Home" back=false fwd=true`,
		"start asset://web/about.html",
		`finish asset://web/about.html "About" back=true fwd=false`,
	}, rec.events)
}

func TestHost_ReloadRerunsPage(t *testing.T) {
	h := newHarness(t, demoPages)
	rec := &recorder{}
	c := h.newController(t, withSource("asset://web/index.html", nil))
	rec.attach(c)
	h.settle()
	rec.reset()

	require.NoError(t, c.Reload())
	h.settle()

	assert.Equal(t, []string{
		"start asset://web/index.html",
		"message ready",
		`finish asset://web/index.html "Home" back=false fwd=false`,
	}, rec.events)
}

func TestHost_LoadErrors(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"asset://web/broken.html", "error script_error -1"},
		{"asset://web/missing.html", "error load_failed -14"},
		{"https://example.com/", "error network_error -2"},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			h := newHarness(t, demoPages)
			rec := &recorder{}
			c := h.newController(t, withSource(tt.uri, nil))
			rec.attach(c)

			h.settle()

			assert.Equal(t, []string{"start " + tt.uri, tt.want}, rec.events)
		})
	}
}

func TestHost_InjectedJavaScriptAndTitleChanges(t *testing.T) {
	h := newHarness(t, demoPages)
	rec := &recorder{}
	c := h.newController(t, withSource("asset://web/about.html", map[string]any{
		"injectedJavaScript": `webViewBridge.send("injected:" + document.title)`,
	}))
	rec.attach(c)
	h.settle()

	require.NoError(t, c.InjectJavaScript(`document.title = "Renamed"`))
	h.settle()

	assert.Equal(t, []string{
		"start asset://web/about.html",
		"message injected:About",
		`finish asset://web/about.html "About" back=false fwd=false`,
		`nav "Renamed"`,
	}, rec.events)
}

func TestHost_JavaScriptDisabled(t *testing.T) {
	h := newHarness(t, demoPages)
	rec := &recorder{}
	c := h.newController(t, withSource("asset://web/index.html", map[string]any{"javaScriptEnabled": false}))
	rec.attach(c)
	h.settle()

	require.NoError(t, c.SendToBridge("ping"))
	h.settle()

	assert.Equal(t, []string{
		"start asset://web/index.html",
		`finish asset://web/index.html "Home" back=false fwd=false`,
	}, rec.events)
}

func TestHost_LocationAssignNavigates(t *testing.T) {
	h := newHarness(t, demoPages)
	rec := &recorder{}
	c := h.newController(t, withSource("asset://web/nav.html", nil))
	rec.attach(c)

	h.settle()

	assert.Equal(t, []string{
		"start asset://web/nav.html",
		`finish asset://web/nav.html "" back=false fwd=false`,
		"start asset://web/about.html",
		`finish asset://web/about.html "About" back=true fwd=false`,
	}, rec.events)
}

func TestHost_DomStorage(t *testing.T) {
	t.Run("enabled persists across loads", func(t *testing.T) {
		h := newHarness(t, demoPages)
		rec := &recorder{}
		c := h.newController(t, withSource("asset://web/store.html", map[string]any{"domStorageEnabled": true}))
		rec.attach(c)
		h.settle()
		require.NoError(t, c.Reload())
		h.settle()

		assert.Contains(t, rec.events, "message visits:1")
		assert.Contains(t, rec.events, "message visits:2")
	})

	t.Run("disabled fails the page script", func(t *testing.T) {
		h := newHarness(t, demoPages)
		rec := &recorder{}
		c := h.newController(t, withSource("asset://web/store.html", map[string]any{"domStorageEnabled": false}))
		rec.attach(c)
		h.settle()

		assert.Contains(t, rec.events, "error script_error -1")
	})
}

func TestHost_TimersRunAfterCurrentWork(t *testing.T) {
	h := newHarness(t, demoPages)
	rec := &recorder{}
	c := h.newController(t, withSource("asset://web/timer.html", nil))
	rec.attach(c)

	h.settle()

	assert.Equal(t, []string{
		"start asset://web/timer.html",
		"message sync",
		`finish asset://web/timer.html "" back=false fwd=false`,
		"message timer",
	}, rec.events)
}

func TestHost_StopLoadingInterruptsScript(t *testing.T) {
	h := newHarness(t, demoPages)
	rec := &recorder{}
	c := h.newController(t, withSource("asset://web/loop.html", nil))
	rec.attach(c)
	h.ui.drain()

	done := make(chan struct{})
	go func() {
		h.host.Sync()
		close(done)
	}()
	deadline := time.After(5 * time.Second)
	for stopped := false; !stopped; {
		select {
		case <-done:
			stopped = true
		case <-deadline:
			t.Fatal("page script was not interrupted")
		case <-time.After(10 * time.Millisecond):
			require.NoError(t, c.StopLoading())
		}
	}
	h.settle()

	assert.Equal(t, []string{"start asset://web/loop.html", "error load_failed -1"}, rec.events)
}

func TestHost_DisposeStopsEvents(t *testing.T) {
	h := newHarness(t, demoPages)
	rec := &recorder{}
	c := h.newController(t, withSource("asset://web/index.html", nil))
	rec.attach(c)
	h.settle()
	id := c.ViewID()
	rec.reset()

	c.Dispose()
	h.settle()

	assert.Empty(t, rec.events)
	assert.NotContains(t, h.host.Views(), id)
	assert.ErrorIs(t, c.SendToBridge("late"), platform.ErrDisposed)
}

func TestHost_RejectsUnknownViews(t *testing.T) {
	h := newHarness(t, demoPages)
	data, err := platform.DefaultCodec.Encode(map[string]any{"viewId": 42, "method": "reload"})
	require.NoError(t, err)

	_, err = h.host.InvokeMethod(platform.PlatformViewChannel, "invokeViewMethod", data)
	assert.ErrorIs(t, err, platform.ErrInvalidArguments)

	_, err = h.host.InvokeMethod("other/channel", "anything", nil)
	assert.ErrorIs(t, err, platform.ErrChannelNotFound)
}

func TestHost_TracksVisibility(t *testing.T) {
	h := newHarness(t, demoPages)
	c := h.newController(t, nil)

	view := platform.GetPlatformViewRegistry().GetView(c.ViewID())
	require.NotNil(t, view)
	assert.True(t, h.host.Visible(c.ViewID()))

	view.SetVisible(false)
	assert.False(t, h.host.Visible(c.ViewID()))
}
