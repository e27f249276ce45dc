package widgets

import (
	"fmt"
	"maps"
	"reflect"

	"github.com/go-drift/webbridge/pkg/core"
	"github.com/go-drift/webbridge/pkg/errors"
	"github.com/go-drift/webbridge/pkg/graphics"
	"github.com/go-drift/webbridge/pkg/logging"
	"github.com/go-drift/webbridge/pkg/platform"
	"go.uber.org/zap"
)

var (
	containerStyle   = Style{Flex: Float(1)}
	baseWebViewStyle = Style{Flex: Float(1), BackgroundColor: ColorRef(graphics.ColorWhite)}
)

// BridgedWebView embeds a native web view, follows its load lifecycle and
// relays bridge messages posted by the page.
//
// While a page loads or after it fails, the native surface is collapsed
// and the RenderLoading or RenderError placeholder is shown after it. The
// surface stays mounted and keeps loading in the background.
//
// Callbacks run on the UI thread in the order native delivers events.
type BridgedWebView struct {
	core.StatefulBase

	// Tag identifies the widget among its siblings.
	Tag any

	// Settings configures the native view. Changes are forwarded on rebuild.
	Settings WebViewSettings

	// Ref is bound to the mounted view for issuing commands.
	Ref *WebViewRef

	// OnBridgeMessage receives each message the page posts, in order.
	OnBridgeMessage func(message any)

	// OnLoadStart is called when a page starts loading.
	OnLoadStart func(nav platform.NavigationState)

	// OnLoad is called when a page finished loading successfully.
	OnLoad func(nav platform.NavigationState)

	// OnLoadEnd is called after every load, with the error when it failed.
	OnLoadEnd func(nav platform.NavigationState, err *platform.LoadError)

	// OnError is called when a page fails to load.
	OnError func(err platform.LoadError)

	// OnNavigationStateChange receives the navigation state after load
	// start, load finish and in-page navigation.
	OnNavigationStateChange func(nav platform.NavigationState)

	// RenderLoading builds the placeholder shown while loading.
	RenderLoading func() core.Widget

	// RenderError builds the placeholder shown after a failed load.
	RenderError func(domain string, code int, description string) core.Widget
}

// Key returns Tag.
func (w BridgedWebView) Key() any { return w.Tag }

// CreateState implements core.StatefulWidget.
func (w BridgedWebView) CreateState() core.State {
	return &bridgedWebViewState{}
}

type bridgedWebViewState struct {
	core.StateBase
	viewState           *core.Managed[ViewState]
	lastError           *platform.LoadError
	startInLoadingState bool

	web     *platform.WebViewController
	ref     *WebViewRef
	params  map[string]any
	source  platform.Source
	visible bool
	warned  map[string]bool
}

func (s *bridgedWebViewState) widget() BridgedWebView {
	return s.Element().Widget().(BridgedWebView)
}

func (s *bridgedWebViewState) InitState() {
	w := s.widget()
	s.viewState = core.NewManaged(s, ViewStateIdle)
	s.startInLoadingState = w.Settings.StartInLoadingState
	s.warned = map[string]bool{}

	settings := s.normalize(w.Settings)
	s.params = settings.Params()
	s.source = s.resolve(settings.Source)
	params := maps.Clone(s.params)
	if !s.source.IsZero() {
		params["source"] = s.source.Map()
	}

	s.web = core.UseController(s, func() *platform.WebViewController {
		return platform.NewWebViewController(params)
	})
	s.web.OnLoadingStart = s.handleLoadingStart
	s.web.OnLoadingFinish = s.handleLoadingFinish
	s.web.OnLoadingError = s.handleLoadingError
	s.web.OnNavigationStateChange = s.relayNavigation
	s.web.OnBridgeMessage = s.handleMessage
	s.visible = true

	s.bindRef(w.Ref)
	s.OnDispose(func() { s.bindRef(nil) })

	if s.startInLoadingState {
		s.viewState.Set(ViewStateLoading)
	}
}

func (s *bridgedWebViewState) DidUpdateWidget(oldWidget core.StatefulWidget) {
	w := s.widget()
	settings := s.normalize(w.Settings)

	if params := settings.Params(); !reflect.DeepEqual(params, s.params) {
		s.params = params
		if err := s.web.UpdateSettings(params); err != nil {
			s.reportCommand("UpdateSettings", err)
		}
	}
	if src := s.resolve(settings.Source); !reflect.DeepEqual(src, s.source) {
		s.source = src
		if !src.IsZero() {
			if err := s.web.LoadSource(src); err != nil {
				s.reportCommand("LoadSource", err)
			}
		}
	}
	if w.Ref != s.ref {
		s.bindRef(w.Ref)
	}
}

func (s *bridgedWebViewState) Build(ctx core.BuildContext) core.Widget {
	w := s.widget()
	state := s.viewState.Value()

	surface := baseWebViewStyle.Merge(w.Settings.Style)
	if state.hidesSurface() {
		surface = surface.Collapse()
	}
	s.setVisible(!surface.Collapsed)

	return View{
		Style: containerStyle,
		Children: []core.Widget{
			NativeBridgedWebView{Controller: s.web, Style: surface},
			s.placeholder(w, state),
		},
	}
}

// placeholder returns the widget shown in place of the surface, or nil.
func (s *bridgedWebViewState) placeholder(w BridgedWebView, state ViewState) core.Widget {
	if !state.valid() {
		errors.Report(&errors.BridgeError{
			Op:     "widgets.BridgedWebView.Build",
			Kind:   errors.KindState,
			ViewID: s.web.ViewID(),
			Err:    fmt.Errorf("invalid view state %s", state),
		})
		return nil
	}
	switch state {
	case ViewStateLoading:
		if w.RenderLoading != nil {
			return w.RenderLoading()
		}
	case ViewStateError:
		if w.RenderError != nil && s.lastError != nil {
			return w.RenderError(s.lastError.Domain, s.lastError.Code, s.lastError.Description)
		}
	}
	return nil
}

func (s *bridgedWebViewState) handleLoadingStart(nav platform.NavigationState) {
	w := s.widget()
	if w.OnLoadStart != nil {
		w.OnLoadStart(nav)
	}
	s.transition(ViewStateLoading, nil)
	s.relayNavigation(nav)
}

func (s *bridgedWebViewState) handleLoadingFinish(nav platform.NavigationState) {
	w := s.widget()
	if w.OnLoad != nil {
		w.OnLoad(nav)
	}
	if w.OnLoadEnd != nil {
		w.OnLoadEnd(nav, nil)
	}
	s.transition(ViewStateIdle, nil)
	s.relayNavigation(nav)
}

func (s *bridgedWebViewState) handleLoadingError(loadErr platform.LoadError) {
	w := s.widget()
	if w.OnError != nil {
		w.OnError(loadErr)
	}
	if w.OnLoadEnd != nil {
		passed := loadErr
		w.OnLoadEnd(loadErr.NavigationState(), &passed)
	}
	stored := loadErr
	s.transition(ViewStateError, &stored)
}

func (s *bridgedWebViewState) handleMessage(message any) {
	if w := s.widget(); w.OnBridgeMessage != nil && message != nil {
		w.OnBridgeMessage(message)
	}
}

func (s *bridgedWebViewState) relayNavigation(nav platform.NavigationState) {
	if w := s.widget(); w.OnNavigationStateChange != nil {
		w.OnNavigationStateChange(nav)
	}
}

// transition moves to next. lastError is set only for ViewStateError.
func (s *bridgedWebViewState) transition(next ViewState, loadErr *platform.LoadError) {
	if next != ViewStateError {
		loadErr = nil
	}
	s.lastError = loadErr
	s.viewState.Set(next)
}

func (s *bridgedWebViewState) setVisible(visible bool) {
	if visible == s.visible {
		return
	}
	s.visible = visible
	s.web.SetVisible(visible)
}

func (s *bridgedWebViewState) bindRef(ref *WebViewRef) {
	if s.ref != nil {
		s.ref.unbind(s.web)
	}
	s.ref = ref
	if ref != nil {
		ref.bind(s.web)
	}
}

// normalize applies aliases and logs each deprecated option once per view.
func (s *bridgedWebViewState) normalize(settings WebViewSettings) NormalizedSettings {
	normalized, deprecations := NormalizeSettings(settings)
	for _, d := range deprecations {
		if s.warned[d.Option] {
			continue
		}
		s.warned[d.Option] = true
		logging.Named("webview").Warn("deprecated web view option",
			zap.String("option", d.Option),
			zap.String("replacement", d.Replacement))
	}
	return normalized
}

// resolve resolves asset sources. On failure the error is reported and
// the source is forwarded unchanged.
func (s *bridgedWebViewState) resolve(src platform.Source) platform.Source {
	if src.IsZero() {
		return src
	}
	resolved, err := platform.ResolveSource(src)
	if err != nil {
		errors.Report(&errors.BridgeError{
			Op:   "widgets.BridgedWebView.resolveSource",
			Kind: errors.KindConfig,
			Err:  err,
		})
		return src
	}
	return resolved
}

func (s *bridgedWebViewState) reportCommand(op string, err error) {
	errors.Report(&errors.BridgeError{
		Op:     "widgets.BridgedWebView." + op,
		Kind:   errors.KindCommand,
		ViewID: s.web.ViewID(),
		Err:    err,
	})
}
