package headless

import (
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/go-drift/webbridge/pkg/platform"
	"github.com/grafana/sobek"
	"go.uber.org/zap"
)

// viewSettings are the creation parameters the headless host honours.
type viewSettings struct {
	javaScriptEnabled  bool
	domStorageEnabled  bool
	injectedJavaScript string
	userAgent          string
}

func (s *viewSettings) apply(params map[string]any) {
	if v, ok := params["javaScriptEnabled"].(bool); ok {
		s.javaScriptEnabled = v
	}
	if v, ok := params["domStorageEnabled"].(bool); ok {
		s.domStorageEnabled = v
	}
	if v, ok := params["injectedJavaScript"].(string); ok {
		s.injectedJavaScript = v
	}
	if v, ok := params["userAgent"].(string); ok {
		s.userAgent = v
	}
}

// webView is one bridged web view. Everything except the fields guarded
// by mu is owned by the host's job goroutine.
type webView struct {
	host     *Host
	id       int64
	log      *zap.Logger
	disposed atomic.Bool
	visible  atomic.Bool

	settings viewSettings
	history  []platform.Source
	index    int
	page     *pageRuntime
	pageURL  string
	title    string
	storage  map[string]string

	mu      sync.Mutex
	gen     uint64
	running *sobek.Runtime
}

func newWebView(h *Host, id int64, params map[string]any) *webView {
	v := &webView{
		host:     h,
		id:       id,
		log:      h.log.With(zap.Int64("view_id", id)),
		settings: viewSettings{javaScriptEnabled: true},
		index:    -1,
		storage:  map[string]string{},
	}
	v.visible.Store(true)
	v.settings.apply(params)
	return v
}

func (v *webView) userAgent() string {
	if v.settings.userAgent != "" {
		return v.settings.userAgent
	}
	return v.host.userAgent
}

func (v *webView) currentURL() string {
	return v.pageURL
}

// current reports whether gen is still the generation of the loaded page.
func (v *webView) current(gen uint64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.gen == gen && !v.disposed.Load()
}

func (v *webView) navState(loading bool) platform.NavigationState {
	return platform.NavigationState{
		URL:          v.pageURL,
		Title:        v.title,
		Loading:      loading,
		CanGoBack:    v.index > 0,
		CanGoForward: v.index >= 0 && v.index < len(v.history)-1,
	}
}

// navigate loads src as a new history entry, dropping forward entries.
func (v *webView) navigate(src platform.Source) {
	if v.disposed.Load() {
		return
	}
	v.history = append(v.history[:v.index+1], src)
	v.index = len(v.history) - 1
	v.load(src)
}

func (v *webView) goBack() {
	if v.disposed.Load() || v.index <= 0 {
		return
	}
	v.index--
	v.load(v.history[v.index])
}

func (v *webView) goForward() {
	if v.disposed.Load() || v.index >= len(v.history)-1 {
		return
	}
	v.index++
	v.load(v.history[v.index])
}

func (v *webView) reload() {
	if v.disposed.Load() || v.index < 0 {
		return
	}
	v.load(v.history[v.index])
}

// stopLoading interrupts a script that is still running for the current
// load. It is called off the job goroutine and does nothing when idle.
func (v *webView) stopLoading() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.running != nil {
		v.running.Interrupt("stopped")
	}
}

// load runs one page load and reports it to the Go side: loading-start,
// then loading-finish or loading-error.
func (v *webView) load(src platform.Source) {
	v.mu.Lock()
	v.gen++
	gen := v.gen
	v.mu.Unlock()

	v.page = nil
	v.pageURL = sourceURL(src)
	v.title = ""
	v.emit("onLoadingStart", v.navState(true).Map())

	doc, failure := v.fetch(src)
	if failure != nil {
		v.fail(failure)
		return
	}
	v.title = doc.title

	page := newPageRuntime(v, doc, gen)
	v.page = page
	if v.settings.javaScriptEnabled {
		if failure := v.runScripts(page, doc); failure != nil {
			v.fail(failure)
			return
		}
		v.title = page.title()
	}
	v.emit("onLoadingFinish", v.navState(false).Map())
}

func (v *webView) fetch(src platform.Source) (*document, *loadFailure) {
	if src.HTML != "" {
		doc, failure := parseDocument(v.host.pages, baseDir(src.BaseURL), src.HTML)
		if failure != nil {
			return nil, failure
		}
		doc.url = v.pageURL
		return doc, nil
	}
	if src.URI == "about:blank" {
		return &document{url: src.URI}, nil
	}
	return readPage(v.host.pages, src.URI)
}

func (v *webView) runScripts(page *pageRuntime, doc *document) *loadFailure {
	v.mu.Lock()
	v.running = page.vm
	v.mu.Unlock()
	defer func() {
		v.mu.Lock()
		v.running = nil
		v.mu.Unlock()
		page.vm.ClearInterrupt()
	}()

	for _, s := range doc.scripts {
		if err := page.run(s.name, s.source); err != nil {
			return v.scriptFailure(err)
		}
	}
	if v.settings.injectedJavaScript != "" {
		if err := page.run("injectedJavaScript", v.settings.injectedJavaScript); err != nil {
			return v.scriptFailure(err)
		}
	}
	return nil
}

func (v *webView) scriptFailure(err error) *loadFailure {
	var interrupted *sobek.InterruptedError
	if errors.As(err, &interrupted) {
		return &loadFailure{platform.ErrDomainLoadFailed, codeUnknown, "loading stopped"}
	}
	return &loadFailure{platform.ErrDomainScript, codeUnknown, err.Error()}
}

func (v *webView) fail(f *loadFailure) {
	v.log.Debug("page load failed", zap.String("url", v.pageURL), zap.Error(f))
	v.emit("onLoadingError", platform.LoadError{
		URL:         v.pageURL,
		Domain:      f.domain,
		Code:        f.code,
		Description: f.description,
		Navigation:  v.navState(false),
	}.Map())
}

// injectJavaScript evaluates script in the current page. Failures are
// logged; a page that failed to load has no runtime and ignores scripts.
func (v *webView) injectJavaScript(script string) {
	if v.page == nil || !v.settings.javaScriptEnabled {
		return
	}
	if err := v.page.run("injectJavaScript", script); err != nil {
		v.log.Warn("injected script failed", zap.Error(err))
	}
	v.afterScript()
}

// sendToBridge hands message to the page's webViewBridge.onMessage.
func (v *webView) sendToBridge(message any) {
	if v.page == nil {
		v.log.Debug("message dropped, no page loaded")
		return
	}
	handled, err := v.page.deliver(message)
	if !handled {
		v.log.Debug("message dropped, page has no onMessage handler")
		return
	}
	if err != nil {
		v.log.Warn("page message handler failed", zap.Error(err))
	}
	v.afterScript()
}

// afterScript reports a title the page changed outside a load.
func (v *webView) afterScript() {
	if v.page == nil {
		return
	}
	if title := v.page.title(); title != v.title {
		v.title = title
		v.emit("onNavigationStateChange", v.navState(false).Map())
	}
}

// postMessage delivers a page message to Go on the bridge channel, or as
// a view event when native was not asked to stream it.
func (v *webView) postMessage(message any) {
	if v.disposed.Load() {
		return
	}
	var err error
	if v.host.streaming(platform.BridgeMessageChannel) {
		err = platform.SendBridgeMessage(v.id, message)
	} else {
		err = platform.SendViewEvent(v.id, "onMessage", map[string]any{"message": message})
	}
	if err != nil {
		v.log.Warn("bridge message not delivered", zap.Error(err))
	}
}

func (v *webView) emit(method string, args map[string]any) {
	if v.disposed.Load() {
		return
	}
	if err := platform.SendViewEvent(v.id, method, args); err != nil {
		v.log.Warn("view event not delivered", zap.String("method", method), zap.Error(err))
	}
}

func (v *webView) dispose() {
	v.disposed.Store(true)
	v.stopLoading()
}

func sourceURL(src platform.Source) string {
	if src.URI != "" {
		return src.URI
	}
	if src.BaseURL != "" {
		return src.BaseURL
	}
	return "about:blank"
}

func sourceFor(uri string) platform.Source {
	return platform.Source{URI: uri}
}

// baseDir returns the file system path inline HTML resolves scripts against.
func baseDir(baseURL string) string {
	if baseURL == "" {
		return ""
	}
	p, failure := pagePath(baseURL)
	if failure != nil {
		return ""
	}
	if strings.HasSuffix(baseURL, "/") {
		return p + "/index.html"
	}
	return p
}
