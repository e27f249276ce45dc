package headless

import (
	"github.com/grafana/sobek"
	"go.uber.org/zap"
)

// pageRuntime is the script environment of one loaded page.
type pageRuntime struct {
	vm       *sobek.Runtime
	view     *webView
	gen      uint64
	document *sobek.Object
	bridge   *sobek.Object
}

func newPageRuntime(v *webView, doc *document, gen uint64) *pageRuntime {
	vm := sobek.New()
	r := &pageRuntime{vm: vm, view: v, gen: gen}

	global := vm.GlobalObject()
	_ = global.Set("window", global)
	_ = global.Set("self", global)

	r.document = vm.NewObject()
	_ = r.document.Set("title", doc.title)
	_ = r.document.Set("URL", doc.url)
	_ = global.Set("document", r.document)

	r.bridge = vm.NewObject()
	_ = r.bridge.Set("send", r.send)
	_ = r.bridge.Set("onMessage", sobek.Null())
	_ = global.Set("webViewBridge", r.bridge)

	location := vm.NewObject()
	_ = location.Set("href", doc.url)
	_ = location.Set("assign", r.assign)
	_ = location.Set("reload", func(sobek.FunctionCall) sobek.Value {
		v.host.queue.push(v.reload)
		return sobek.Undefined()
	})
	_ = global.Set("location", location)

	history := vm.NewObject()
	_ = history.Set("back", func(sobek.FunctionCall) sobek.Value {
		v.host.queue.push(v.goBack)
		return sobek.Undefined()
	})
	_ = history.Set("forward", func(sobek.FunctionCall) sobek.Value {
		v.host.queue.push(v.goForward)
		return sobek.Undefined()
	})
	_ = global.Set("history", history)

	navigator := vm.NewObject()
	_ = navigator.Set("userAgent", v.userAgent())
	_ = global.Set("navigator", navigator)

	_ = global.Set("console", r.console())
	_ = global.Set("setTimeout", r.setTimeout)

	if v.settings.domStorageEnabled {
		_ = global.Set("localStorage", r.localStorage())
	}
	return r
}

// run evaluates source as a classic script.
func (r *pageRuntime) run(name, source string) error {
	_, err := r.vm.RunScript(name, source)
	return err
}

// title returns document.title as the page last set it.
func (r *pageRuntime) title() string {
	v := r.document.Get("title")
	if v == nil || sobek.IsUndefined(v) || sobek.IsNull(v) {
		return ""
	}
	return v.String()
}

// deliver calls webViewBridge.onMessage with message. It reports false
// when the page has no handler.
func (r *pageRuntime) deliver(message any) (bool, error) {
	handler, ok := sobek.AssertFunction(r.bridge.Get("onMessage"))
	if !ok {
		return false, nil
	}
	_, err := handler(r.bridge, r.vm.ToValue(message))
	return true, err
}

func (r *pageRuntime) send(call sobek.FunctionCall) sobek.Value {
	arg := call.Argument(0)
	if sobek.IsUndefined(arg) || sobek.IsNull(arg) {
		return sobek.Undefined()
	}
	r.view.postMessage(arg.Export())
	return sobek.Undefined()
}

func (r *pageRuntime) assign(call sobek.FunctionCall) sobek.Value {
	target := resolveRef(r.view.currentURL(), call.Argument(0).String())
	r.view.host.queue.push(func() { r.view.navigate(sourceFor(target)) })
	return sobek.Undefined()
}

// setTimeout runs the callback after the current work, ignoring the delay.
// Callbacks of a page that has been replaced are dropped.
func (r *pageRuntime) setTimeout(call sobek.FunctionCall) sobek.Value {
	fn, ok := sobek.AssertFunction(call.Argument(0))
	if !ok {
		panic(r.vm.NewTypeError("setTimeout: callback is not a function"))
	}
	r.view.host.queue.push(func() {
		if !r.view.current(r.gen) {
			return
		}
		if _, err := fn(sobek.Undefined()); err != nil {
			r.view.log.Warn("timer callback failed", zap.Error(err))
		}
		r.view.afterScript()
	})
	return sobek.Undefined()
}

func (r *pageRuntime) console() *sobek.Object {
	console := r.vm.NewObject()
	logAt := func(log func(string, ...zap.Field)) func(sobek.FunctionCall) sobek.Value {
		return func(call sobek.FunctionCall) sobek.Value {
			args := make([]any, len(call.Arguments))
			for i, a := range call.Arguments {
				args[i] = a.Export()
			}
			log("console", zap.Any("args", args))
			return sobek.Undefined()
		}
	}
	_ = console.Set("log", logAt(r.view.log.Info))
	_ = console.Set("info", logAt(r.view.log.Info))
	_ = console.Set("debug", logAt(r.view.log.Debug))
	_ = console.Set("warn", logAt(r.view.log.Warn))
	_ = console.Set("error", logAt(r.view.log.Error))
	return console
}

// localStorage is backed by the view, so it survives navigation.
func (r *pageRuntime) localStorage() *sobek.Object {
	storage := r.vm.NewObject()
	store := r.view.storage
	_ = storage.Set("getItem", func(call sobek.FunctionCall) sobek.Value {
		v, ok := store[call.Argument(0).String()]
		if !ok {
			return sobek.Null()
		}
		return r.vm.ToValue(v)
	})
	_ = storage.Set("setItem", func(call sobek.FunctionCall) sobek.Value {
		store[call.Argument(0).String()] = call.Argument(1).String()
		return sobek.Undefined()
	})
	_ = storage.Set("removeItem", func(call sobek.FunctionCall) sobek.Value {
		delete(store, call.Argument(0).String())
		return sobek.Undefined()
	})
	_ = storage.Set("clear", func(sobek.FunctionCall) sobek.Value {
		clear(store)
		return sobek.Undefined()
	})
	return storage
}
