// Package headless is a native host without a platform toolkit. It
// implements [platform.NativeBridge], loads pages from an [io/fs.FS] and
// runs their scripts in an embedded JavaScript runtime, so bridged web
// views can be driven end to end from a terminal or a test.
//
// A page talks to Go through window.webViewBridge:
//
//	webViewBridge.onMessage = function (msg) { webViewBridge.send("echo:" + msg) }
//
// Install the host once, before any web view is created:
//
//	host := headless.New(headless.Config{Pages: os.DirFS("web")})
//	defer host.Close()
//	platform.SetNativeBridge(host)
//
// Network URLs are not fetched; loading one fails with
// [platform.ErrDomainNetwork].
package headless
