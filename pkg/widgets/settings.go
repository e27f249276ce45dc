package widgets

import (
	"fmt"

	"github.com/go-drift/webbridge/pkg/platform"
)

// WebViewSettings configures a BridgedWebView. Nil pointer fields leave the
// native default in place.
type WebViewSettings struct {
	// Source is the initial content. asset:// URIs are resolved with
	// [platform.ResolveSource] before they reach native.
	Source platform.Source `yaml:"source,omitempty" json:"source,omitempty"`

	// JavaScriptEnabled enables page scripts. Defaults to true.
	JavaScriptEnabled *bool `yaml:"javaScriptEnabled,omitempty" json:"javaScriptEnabled,omitempty"`

	// DomStorageEnabled enables localStorage and sessionStorage. Defaults to false.
	DomStorageEnabled *bool `yaml:"domStorageEnabled,omitempty" json:"domStorageEnabled,omitempty"`

	// Deprecated: use JavaScriptEnabled. When set it takes precedence.
	JavaScriptEnabledAndroid *bool `yaml:"javaScriptEnabledAndroid,omitempty" json:"javaScriptEnabledAndroid,omitempty" jsonschema:"description=Deprecated: use javaScriptEnabled. Overrides it when set"`

	// Deprecated: use DomStorageEnabled. When set it takes precedence.
	DomStorageEnabledAndroid *bool `yaml:"domStorageEnabledAndroid,omitempty" json:"domStorageEnabledAndroid,omitempty" jsonschema:"description=Deprecated: use domStorageEnabled. Overrides it when set"`

	// StartInLoadingState shows the loading placeholder from mount, before
	// native reports the first load.
	StartInLoadingState bool `yaml:"startInLoadingState,omitempty" json:"startInLoadingState,omitempty"`

	// InjectedJavaScript runs after every page load.
	InjectedJavaScript string `yaml:"injectedJavaScript,omitempty" json:"injectedJavaScript,omitempty"`

	UserAgent                        string     `yaml:"userAgent,omitempty" json:"userAgent,omitempty"`
	ScalesPageToFit                  *bool      `yaml:"scalesPageToFit,omitempty" json:"scalesPageToFit,omitempty"`
	ScrollEnabled                    *bool      `yaml:"scrollEnabled,omitempty" json:"scrollEnabled,omitempty"`
	Bounces                          *bool      `yaml:"bounces,omitempty" json:"bounces,omitempty"`
	AutomaticallyAdjustContentInsets *bool      `yaml:"automaticallyAdjustContentInsets,omitempty" json:"automaticallyAdjustContentInsets,omitempty"`
	ContentInset                     EdgeInsets `yaml:"contentInset,omitempty" json:"contentInset,omitempty"`
	MediaPlaybackRequiresUserAction  *bool      `yaml:"mediaPlaybackRequiresUserAction,omitempty" json:"mediaPlaybackRequiresUserAction,omitempty"`
	AllowsInlineMediaPlayback        *bool      `yaml:"allowsInlineMediaPlayback,omitempty" json:"allowsInlineMediaPlayback,omitempty"`

	// Style is merged over the surface's base style.
	Style Style `yaml:"style,omitempty" json:"style,omitempty"`
}

// Deprecation records a deprecated option that was used.
type Deprecation struct {
	Option      string
	Replacement string
}

func (d Deprecation) String() string {
	return fmt.Sprintf("%s is deprecated, use %s", d.Option, d.Replacement)
}

// NormalizedSettings are settings with aliases applied and defaults filled.
type NormalizedSettings struct {
	Source              platform.Source
	JavaScriptEnabled   bool
	DomStorageEnabled   bool
	StartInLoadingState bool
	InjectedJavaScript  string
	UserAgent           string
	ContentInset        EdgeInsets
	Style               Style

	// flags holds the optional native booleans that were set.
	flags map[string]bool
}

// NormalizeSettings applies deprecated aliases and defaults. A deprecated
// alias that is set overrides its replacement and is reported in the
// returned deprecations.
func NormalizeSettings(s WebViewSettings) (NormalizedSettings, []Deprecation) {
	var deprecations []Deprecation
	n := NormalizedSettings{
		Source:              s.Source,
		JavaScriptEnabled:   true,
		StartInLoadingState: s.StartInLoadingState,
		InjectedJavaScript:  s.InjectedJavaScript,
		UserAgent:           s.UserAgent,
		ContentInset:        s.ContentInset,
		Style:               s.Style,
		flags:               map[string]bool{},
	}

	if s.JavaScriptEnabled != nil {
		n.JavaScriptEnabled = *s.JavaScriptEnabled
	}
	if s.JavaScriptEnabledAndroid != nil {
		n.JavaScriptEnabled = *s.JavaScriptEnabledAndroid
		deprecations = append(deprecations, Deprecation{Option: "javaScriptEnabledAndroid", Replacement: "javaScriptEnabled"})
	}
	if s.DomStorageEnabled != nil {
		n.DomStorageEnabled = *s.DomStorageEnabled
	}
	if s.DomStorageEnabledAndroid != nil {
		n.DomStorageEnabled = *s.DomStorageEnabledAndroid
		deprecations = append(deprecations, Deprecation{Option: "domStorageEnabledAndroid", Replacement: "domStorageEnabled"})
	}

	for name, v := range map[string]*bool{
		"scalesPageToFit":                  s.ScalesPageToFit,
		"scrollEnabled":                    s.ScrollEnabled,
		"bounces":                          s.Bounces,
		"automaticallyAdjustContentInsets": s.AutomaticallyAdjustContentInsets,
		"mediaPlaybackRequiresUserAction":  s.MediaPlaybackRequiresUserAction,
		"allowsInlineMediaPlayback":        s.AllowsInlineMediaPlayback,
	} {
		if v != nil {
			n.flags[name] = *v
		}
	}

	return n, deprecations
}

// Params returns the native creation parameters, without the source.
func (n NormalizedSettings) Params() map[string]any {
	params := map[string]any{
		"javaScriptEnabled":   n.JavaScriptEnabled,
		"domStorageEnabled":   n.DomStorageEnabled,
		"startInLoadingState": n.StartInLoadingState,
	}
	if n.InjectedJavaScript != "" {
		params["injectedJavaScript"] = n.InjectedJavaScript
	}
	if n.UserAgent != "" {
		params["userAgent"] = n.UserAgent
	}
	if !n.ContentInset.IsZero() {
		params["contentInset"] = n.ContentInset.Map()
	}
	for name, v := range n.flags {
		params[name] = v
	}
	return params
}
