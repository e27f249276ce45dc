package headless

import (
	"fmt"
	"io/fs"
	"net/url"
	"path"
	"strings"

	esbuild "github.com/evanw/esbuild/pkg/api"
	"github.com/go-drift/webbridge/pkg/platform"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Android WebViewClient error codes, reused so headless load errors look
// like the ones a device reports.
const (
	codeUnknown           = -1
	codeHostLookup        = -2
	codeUnsupportedScheme = -10
	codeFileNotFound      = -14
)

// document is a parsed page.
type document struct {
	url     string
	path    string // fs path, empty for inline HTML
	title   string
	scripts []script
}

type script struct {
	name   string
	source string
}

// loadFailure is a page that could not be loaded.
type loadFailure struct {
	domain      string
	code        int
	description string
}

func (f *loadFailure) Error() string {
	return fmt.Sprintf("%s %d: %s", f.domain, f.code, f.description)
}

// pagePath maps a URI to a path in the page file system.
func pagePath(uri string) (string, *loadFailure) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", &loadFailure{platform.ErrDomainLoadFailed, codeUnknown, err.Error()}
	}
	switch u.Scheme {
	case "http", "https":
		return "", &loadFailure{platform.ErrDomainNetwork, codeHostLookup, "network access is not available in the headless host: " + uri}
	case "asset":
		return cleanPath(u.Host + u.Path), nil
	case "file":
		p := strings.TrimPrefix(cleanPath(u.Path), "android_asset/")
		return p, nil
	case "":
		return cleanPath(u.Path), nil
	default:
		return "", &loadFailure{platform.ErrDomainLoadFailed, codeUnsupportedScheme, "unsupported scheme " + u.Scheme}
	}
}

func cleanPath(p string) string {
	return strings.TrimPrefix(path.Clean("/"+p), "/")
}

// resolveRef resolves ref against base the way a browser resolves a link.
func resolveRef(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil || base == "" {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

// readPage loads and parses the page at uri from pages.
func readPage(pages fs.FS, uri string) (*document, *loadFailure) {
	p, failure := pagePath(uri)
	if failure != nil {
		return nil, failure
	}
	if pages == nil || p == "" {
		return nil, &loadFailure{platform.ErrDomainLoadFailed, codeFileNotFound, "page not found: " + uri}
	}
	data, err := fs.ReadFile(pages, p)
	if err != nil {
		return nil, &loadFailure{platform.ErrDomainLoadFailed, codeFileNotFound, err.Error()}
	}

	if strings.HasSuffix(p, ".js") || strings.HasSuffix(p, ".ts") {
		// A bare script is treated as a page holding only that script.
		src, err := transformScript(p, string(data), strings.HasSuffix(p, ".ts"), false)
		if err != nil {
			return nil, &loadFailure{platform.ErrDomainScript, codeUnknown, err.Error()}
		}
		return &document{url: uri, path: p, scripts: []script{{name: p, source: src}}}, nil
	}

	doc, failure := parseDocument(pages, p, string(data))
	if failure != nil {
		return nil, failure
	}
	doc.url = uri
	return doc, nil
}

// parseDocument extracts the title and scripts of an HTML document.
// External scripts are read relative to dir in pages; pages may be nil
// for inline HTML.
func parseDocument(pages fs.FS, pagePath, markup string) (*document, *loadFailure) {
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, &loadFailure{platform.ErrDomainLoadFailed, codeUnknown, err.Error()}
	}

	doc := &document{path: pagePath}
	var failure *loadFailure
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if failure != nil {
			return
		}
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Title:
				if doc.title == "" {
					doc.title = strings.TrimSpace(textContent(n))
				}
			case atom.Script:
				s, f := extractScript(pages, pagePath, n, len(doc.scripts))
				if f != nil {
					failure = f
					return
				}
				if s != nil {
					doc.scripts = append(doc.scripts, *s)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	if failure != nil {
		return nil, failure
	}
	return doc, nil
}

func extractScript(pages fs.FS, pagePath string, n *html.Node, index int) (*script, *loadFailure) {
	typ := strings.ToLower(attr(n, "type"))
	src := attr(n, "src")
	typescript := typ == "text/typescript" || typ == "application/typescript" || strings.HasSuffix(src, ".ts")

	switch typ {
	case "", "text/javascript", "application/javascript", "module", "text/typescript", "application/typescript":
	default:
		// Data blocks such as application/json are not executed.
		return nil, nil
	}

	name := fmt.Sprintf("%s#script%d", pagePath, index)
	body := textContent(n)
	if src != "" {
		if u, err := url.Parse(src); err == nil && u.Scheme != "" {
			return nil, &loadFailure{platform.ErrDomainNetwork, codeHostLookup, "cannot fetch external script " + src}
		}
		if pages == nil {
			return nil, &loadFailure{platform.ErrDomainLoadFailed, codeFileNotFound, "script not found: " + src}
		}
		name = cleanPath(path.Join(path.Dir("/"+pagePath), src))
		if strings.HasPrefix(src, "/") {
			name = cleanPath(src)
		}
		data, err := fs.ReadFile(pages, name)
		if err != nil {
			return nil, &loadFailure{platform.ErrDomainLoadFailed, codeFileNotFound, err.Error()}
		}
		body = string(data)
	}

	code, err := transformScript(name, body, typescript, typ == "module")
	if err != nil {
		return nil, &loadFailure{platform.ErrDomainScript, codeUnknown, err.Error()}
	}
	return &script{name: name, source: code}, nil
}

// transformScript compiles TypeScript to JavaScript the runtime accepts
// and wraps module scripts in an IIFE so their exports stay local. Plain
// classic JavaScript is returned unchanged. Imports are not bundled; a
// module that imports fails when it runs.
func transformScript(name, source string, typescript, module bool) (string, error) {
	if !typescript && !module {
		return source, nil
	}
	opts := esbuild.TransformOptions{
		Loader:     esbuild.LoaderJS,
		Target:     esbuild.ES2017,
		Sourcefile: name,
	}
	if typescript {
		opts.Loader = esbuild.LoaderTS
	}
	if module {
		opts.Format = esbuild.FormatIIFE
	}
	result := esbuild.Transform(source, opts)
	if len(result.Errors) > 0 {
		msg := result.Errors[0]
		if msg.Location != nil {
			return "", fmt.Errorf("%s:%d:%d: %s", name, msg.Location.Line, msg.Location.Column, msg.Text)
		}
		return "", fmt.Errorf("%s: %s", name, msg.Text)
	}
	return string(result.Code), nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}
