package platform

import (
	"fmt"
	"path"
	"runtime"
	"strings"
	"sync"
)

// AssetScheme prefixes URIs that name a file bundled with the app.
const AssetScheme = "asset://"

// Source is the content a web view loads: a URI or an inline HTML document.
type Source struct {
	URI     string            `yaml:"uri,omitempty" json:"uri,omitempty" jsonschema:"description=URL or asset:// path to load"`
	HTML    string            `yaml:"html,omitempty" json:"html,omitempty" jsonschema:"description=Inline HTML document"`
	BaseURL string            `yaml:"baseUrl,omitempty" json:"baseUrl,omitempty" jsonschema:"description=Base URL for resolving relative links in inline HTML"`
	Method  string            `yaml:"method,omitempty" json:"method,omitempty" jsonschema:"enum=GET,enum=POST"`
	Headers map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
	Body    string            `yaml:"body,omitempty" json:"body,omitempty"`
}

// IsZero reports whether the source names nothing to load.
func (s Source) IsZero() bool {
	return s.URI == "" && s.HTML == ""
}

// Validate checks that exactly one of URI and HTML is set.
func (s Source) Validate() error {
	if s.URI != "" && s.HTML != "" {
		return fmt.Errorf("%w: source has both uri and html", ErrInvalidArguments)
	}
	if s.Body != "" && !strings.EqualFold(s.Method, "POST") {
		return fmt.Errorf("%w: source body requires method POST", ErrInvalidArguments)
	}
	return nil
}

// Map converts the source to the wire form, omitting empty fields.
func (s Source) Map() map[string]any {
	m := map[string]any{}
	if s.URI != "" {
		m["uri"] = s.URI
	}
	if s.HTML != "" {
		m["html"] = s.HTML
	}
	if s.BaseURL != "" {
		m["baseUrl"] = s.BaseURL
	}
	if s.Method != "" {
		m["method"] = strings.ToUpper(s.Method)
	}
	if len(s.Headers) > 0 {
		headers := make(map[string]any, len(s.Headers))
		for k, v := range s.Headers {
			headers[k] = v
		}
		m["headers"] = headers
	}
	if s.Body != "" {
		m["body"] = s.Body
	}
	return m
}

// SourceFromMap is the inverse of [Source.Map]; native hosts use it to
// read creation params and loadSource commands.
func SourceFromMap(value any) Source {
	m := mapArg(value)
	src := Source{
		URI:     stringArg(m["uri"]),
		HTML:    stringArg(m["html"]),
		BaseURL: stringArg(m["baseUrl"]),
		Method:  stringArg(m["method"]),
		Body:    stringArg(m["body"]),
	}
	if headers := mapArg(m["headers"]); len(headers) > 0 {
		src.Headers = make(map[string]string, len(headers))
		for k, v := range headers {
			src.Headers[k] = stringArg(v)
		}
	}
	return src
}

// AssetPath returns the bundle-relative path of an asset:// URI.
func AssetPath(uri string) (string, bool) {
	if !strings.HasPrefix(uri, AssetScheme) {
		return "", false
	}
	p := strings.TrimPrefix(uri, AssetScheme)
	cleaned := path.Clean("/" + p)[1:]
	if cleaned == "" || cleaned != strings.TrimPrefix(p, "/") {
		return "", false
	}
	return cleaned, true
}

// TargetPlatform names the native host an asset is resolved for.
type TargetPlatform string

const (
	TargetAndroid  TargetPlatform = "android"
	TargetIOS      TargetPlatform = "ios"
	TargetHeadless TargetPlatform = "headless"
)

// CurrentTarget returns the target platform of the running binary.
func CurrentTarget() TargetPlatform {
	switch runtime.GOOS {
	case "android":
		return TargetAndroid
	case "ios":
		return TargetIOS
	default:
		return TargetHeadless
	}
}

// AssetResolver turns an initial source into the form the native web view
// can load.
type AssetResolver interface {
	Resolve(src Source) (Source, error)
}

// DefaultAssetResolver maps asset:// URIs to the platform's bundle
// location. Android serves bundled files from file:///android_asset/, iOS
// hosts resolve bundle:// against the main bundle, and the headless host
// reads asset:// directly from its file system.
type DefaultAssetResolver struct {
	Target TargetPlatform
}

// Resolve implements AssetResolver.
func (r DefaultAssetResolver) Resolve(src Source) (Source, error) {
	if err := src.Validate(); err != nil {
		return src, err
	}
	if !strings.HasPrefix(src.URI, AssetScheme) {
		return src, nil
	}
	p, ok := AssetPath(src.URI)
	if !ok {
		return src, fmt.Errorf("%w: invalid asset uri %q", ErrInvalidArguments, src.URI)
	}

	target := r.Target
	if target == "" {
		target = CurrentTarget()
	}
	switch target {
	case TargetAndroid:
		src.URI = "file:///android_asset/" + p
	case TargetIOS:
		src.URI = "bundle://" + p
	case TargetHeadless:
		src.URI = AssetScheme + p
	default:
		return src, fmt.Errorf("%w: unknown target platform %q", ErrInvalidArguments, target)
	}
	return src, nil
}

var (
	assetResolverMu sync.RWMutex
	assetResolver   AssetResolver = DefaultAssetResolver{}
)

// SetAssetResolver replaces the resolver used by [ResolveSource]. Passing
// nil restores [DefaultAssetResolver].
func SetAssetResolver(r AssetResolver) {
	assetResolverMu.Lock()
	defer assetResolverMu.Unlock()
	if r == nil {
		r = DefaultAssetResolver{}
	}
	assetResolver = r
}

// ResolveSource resolves src with the installed resolver.
func ResolveSource(src Source) (Source, error) {
	assetResolverMu.RLock()
	r := assetResolver
	assetResolverMu.RUnlock()
	return r.Resolve(src)
}
