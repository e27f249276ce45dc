package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-drift/webbridge/cmd/webbridge/internal/watch"
	"github.com/go-drift/webbridge/pkg/engine"
	"github.com/go-drift/webbridge/pkg/headless"
	"github.com/go-drift/webbridge/pkg/inspector"
	"github.com/go-drift/webbridge/pkg/platform"
	"github.com/go-drift/webbridge/pkg/relay"
	"github.com/go-drift/webbridge/pkg/widgets"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type hostOptions struct {
	watch bool
	tui   bool
	once  bool
	send  []string
}

func newHostCmd(a *app) *cobra.Command {
	var opts hostOptions
	cmd := &cobra.Command{
		Use:   "host [page]",
		Short: "Run a page in the headless web view host",
		Long: `Mount a BridgedWebView on the headless host and print its lifecycle and
bridge events as JSON lines.

The page is a path relative to --pages, an asset:// URI or a file:// URI.
Without one, the source from --settings is used, then index.html.

Examples:
  webbridge host                         # load index.html from the project
  webbridge host about.html --watch      # reload when pages change
  webbridge host --listen :8790          # relay bridge traffic on ws://:8790/relay
  webbridge host --send '{"ping":1}'     # send a message once the page loads
  webbridge host --tui                   # interactive inspector`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page := ""
			if len(args) == 1 {
				page = args[0]
			}
			return a.runHost(cmd, page, opts)
		},
	}

	flags := cmd.Flags()
	flags.String("pages", "", "directory serving page URIs (default: project root)")
	flags.String("settings", "", "web view settings file")
	flags.String("listen", "", "address for the debug server and bridge relay")
	flags.String("user-agent", "", "navigator.userAgent for pages")
	flags.BoolVar(&opts.watch, "watch", false, "reload the page when files under --pages change")
	flags.BoolVar(&opts.tui, "tui", false, "open the interactive inspector")
	flags.BoolVar(&opts.once, "once", false, "exit after the first page load ends")
	flags.StringArrayVar(&opts.send, "send", nil, "message to send after the first load (JSON or text, repeatable)")
	for _, name := range []string{"pages", "settings", "listen", "user-agent"} {
		_ = a.v.BindPFlag("host."+name, flags.Lookup(name))
	}
	return cmd
}

func (a *app) runHost(cmd *cobra.Command, page string, opts hostOptions) error {
	if opts.tui && opts.once {
		return fmt.Errorf("--tui and --once cannot be combined")
	}

	pages := a.v.GetString("host.pages")
	settings, err := hostSettings(a.v.GetString("host.settings"), page)
	if err != nil {
		return err
	}
	messages := parseMessages(opts.send)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	host := headless.New(headless.Config{
		Pages:     os.DirFS(pages),
		UserAgent: a.v.GetString("host.user-agent"),
	})
	defer host.Close()

	runner := engine.NewRunner()
	platform.SetNativeBridge(host)
	ref := widgets.NewWebViewRef()

	var sinks fanout
	if !opts.tui {
		sinks = append(sinks, &printer{w: cmd.OutOrStdout()})
	}
	var feed *inspector.Feed
	if opts.tui {
		feed = inspector.NewFeed(256)
		sinks = append(sinks, feed)
	}
	var rel *relay.Relay
	if a.v.GetString("host.listen") != "" {
		rel = relay.New(ref, relay.Config{})
		sinks = append(sinks, rel)
	}

	var firstLoad sync.Once
	root := widgets.BridgedWebView{
		Settings:                settings,
		Ref:                     ref,
		OnBridgeMessage:         sinks.Message,
		OnNavigationStateChange: sinks.Navigation,
		OnError:                 sinks.LoadError,
		OnLoadEnd: func(platform.NavigationState, *platform.LoadError) {
			firstLoad.Do(func() {
				for _, m := range messages {
					if err := ref.SendToBridge(m); err != nil {
						a.log.Warn("send message", zap.Error(err))
					}
				}
				if opts.once {
					// Let the page answer the messages before exiting.
					go func() {
						host.Sync()
						runner.Dispatch(cancel)
					}()
				}
			})
		},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return runner.Run(gctx, root)
	})

	if listen := a.v.GetString("host.listen"); listen != "" {
		server := engine.NewDebugServer(runner)
		server.Handle("/relay", rel)
		addr, err := server.Start(listen)
		if err != nil {
			cancel()
			_ = g.Wait()
			return err
		}
		if feed != nil {
			feed.Status("relay listening on ws://" + addr + "/relay")
		} else {
			fmt.Fprintf(cmd.ErrOrStderr(), "relay listening on ws://%s/relay\n", addr)
		}
		g.Go(func() error {
			<-gctx.Done()
			rel.Close()
			shutdown, done := context.WithTimeout(context.Background(), 2*time.Second)
			defer done()
			return server.Stop(shutdown)
		})
	}

	if opts.watch {
		w, err := watch.New(pages, 0)
		if err != nil {
			cancel()
			_ = g.Wait()
			return err
		}
		g.Go(func() error {
			defer w.Close()
			return w.Run(gctx, func(paths []string) {
				if feed != nil {
					feed.Status(fmt.Sprintf("%d file(s) changed, reloading", len(paths)))
				}
				if err := ref.Reload(); err != nil {
					a.log.Warn("reload after change", zap.Error(err))
				}
			})
		})
	}

	if opts.tui {
		g.Go(func() error {
			model := inspector.New(sourceLabel(settings), ref, feed)
			_, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(gctx)).Run()
			cancel()
			if err != nil && gctx.Err() == nil {
				return err
			}
			return nil
		})
	}

	return g.Wait()
}

// hostSettings loads the settings file, if any, and points it at page.
func hostSettings(path, page string) (widgets.WebViewSettings, error) {
	var settings widgets.WebViewSettings
	if path != "" {
		loaded, err := widgets.LoadWebViewSettings(path)
		if err != nil {
			return settings, err
		}
		settings = loaded
	}
	switch {
	case page != "":
		settings.Source = platform.Source{URI: filepath.ToSlash(page)}
	case settings.Source.IsZero():
		settings.Source = platform.Source{URI: "index.html"}
	}
	return settings, nil
}

// parseMessages decodes each value as JSON, keeping it as text otherwise.
func parseMessages(values []string) []any {
	messages := make([]any, 0, len(values))
	for _, raw := range values {
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
		messages = append(messages, v)
	}
	return messages
}

func sourceLabel(settings widgets.WebViewSettings) string {
	if settings.Source.URI != "" {
		return settings.Source.URI
	}
	return "inline html"
}

// eventSink receives what a hosted view reports.
type eventSink interface {
	Message(message any)
	Navigation(nav platform.NavigationState)
	LoadError(err platform.LoadError)
}

type fanout []eventSink

func (f fanout) Message(message any) {
	for _, s := range f {
		s.Message(message)
	}
}

func (f fanout) Navigation(nav platform.NavigationState) {
	for _, s := range f {
		s.Navigation(nav)
	}
}

func (f fanout) LoadError(err platform.LoadError) {
	for _, s := range f {
		s.LoadError(err)
	}
}

// printer writes events as JSON lines.
type printer struct {
	mu sync.Mutex
	w  io.Writer
}

func (p *printer) Message(message any) {
	p.write(relay.Frame{Type: relay.TypeMessage, Data: message})
}

func (p *printer) Navigation(nav platform.NavigationState) {
	p.write(relay.Frame{Type: relay.TypeNavigation, Navigation: &nav})
}

func (p *printer) LoadError(err platform.LoadError) {
	p.write(relay.Frame{Type: relay.TypeLoadError, Error: &err})
}

func (p *printer) write(f relay.Frame) {
	data, err := json.Marshal(f)
	if err != nil {
		data = []byte(fmt.Sprintf(`{"type":"error","data":%q}`, err.Error()))
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w, string(data))
}
