package platform

import "fmt"

// Canonical load-error domains shared by the native implementations.
// Native code may also pass a platform domain (e.g. NSURLErrorDomain)
// through unchanged.
const (
	// ErrDomainNetwork indicates a network-level failure such as DNS
	// resolution, connectivity, or timeout errors.
	ErrDomainNetwork = "network_error"

	// ErrDomainSSL indicates a TLS/certificate failure.
	ErrDomainSSL = "ssl_error"

	// ErrDomainLoadFailed indicates a general page load failure that does
	// not fit a more specific category.
	ErrDomainLoadFailed = "load_failed"

	// ErrDomainScript indicates the page's own script failed while loading.
	ErrDomainScript = "script_error"
)

// NavigationState describes the page a web view is showing.
type NavigationState struct {
	URL          string `json:"url"`
	Title        string `json:"title"`
	Loading      bool   `json:"loading"`
	CanGoBack    bool   `json:"canGoBack"`
	CanGoForward bool   `json:"canGoForward"`
}

// LoadError is the payload of a failed page load.
type LoadError struct {
	URL         string `json:"url"`
	Domain      string `json:"domain"`
	Code        int    `json:"code"`
	Description string `json:"description"`

	// Navigation is the page state reported with the failure. Native
	// implementations may send only the URL.
	Navigation NavigationState `json:"-"`
}

func (e LoadError) Error() string {
	return fmt.Sprintf("%s %d: %s", e.Domain, e.Code, e.Description)
}

// Map converts the navigation state to the wire form.
func (n NavigationState) Map() map[string]any {
	return map[string]any{
		"url":          n.URL,
		"title":        n.Title,
		"loading":      n.Loading,
		"canGoBack":    n.CanGoBack,
		"canGoForward": n.CanGoForward,
	}
}

// Map converts the load error to the wire form. Navigation fields travel
// alongside the error fields.
func (e LoadError) Map() map[string]any {
	m := e.Navigation.Map()
	m["url"] = e.URL
	m["domain"] = e.Domain
	m["code"] = e.Code
	m["description"] = e.Description
	return m
}

// NavigationState returns the page state at the failure, with the
// failing URL filled in when native omitted it.
func (e LoadError) NavigationState() NavigationState {
	nav := e.Navigation
	if nav.URL == "" {
		nav.URL = e.URL
	}
	return nav
}

func parseNavigationState(args map[string]any) NavigationState {
	return NavigationState{
		URL:          stringArg(args["url"]),
		Title:        stringArg(args["title"]),
		Loading:      boolArg(args["loading"]),
		CanGoBack:    boolArg(args["canGoBack"]),
		CanGoForward: boolArg(args["canGoForward"]),
	}
}

func parseLoadError(args map[string]any) LoadError {
	code, _ := intArg(args["code"])
	return LoadError{
		URL:         stringArg(args["url"]),
		Domain:      stringArg(args["domain"]),
		Code:        int(code),
		Description: stringArg(args["description"]),
		Navigation:  parseNavigationState(args),
	}
}
