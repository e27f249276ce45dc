// Package cmd implements the webbridge CLI commands.
package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-drift/webbridge/cmd/webbridge/internal/config"
	"github.com/go-drift/webbridge/pkg/errors"
	"github.com/go-drift/webbridge/pkg/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

// Execute runs the CLI with os.Args.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// app carries state shared by every command of one invocation.
type app struct {
	v       *viper.Viper
	project *config.Resolved
	log     *zap.Logger
}

// NewRootCmd builds the command tree. Each call gets its own viper
// instance, so tests can run commands side by side.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "webbridge",
		Short: "Host and inspect bridged web views",
		Long: `webbridge runs BridgedWebView pages in a headless host, relays their
bridge messages and validates web view settings files.

Flags can also be set with WEBBRIDGE_* environment variables
(WEBBRIDGE_LOG_LEVEL, WEBBRIDGE_HOST_LISTEN, ...) or a --config file.
Defaults for the host command come from webbridge.yaml in the project root.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "CLI config file (yaml, json or toml)")
	flags.String("log-level", "warn", "log level: debug, info, warn or error")
	flags.Bool("dev", false, "human-readable development logs")
	flags.String("project", ".", "directory to search for webbridge.yaml")
	_ = a.v.BindPFlag("log-level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("dev", flags.Lookup("dev"))
	_ = a.v.BindPFlag("project", flags.Lookup("project"))

	a.v.SetEnvPrefix("WEBBRIDGE")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	a.v.AutomaticEnv()

	root.AddCommand(
		newHostCmd(a),
		newSchemaCmd(),
		newValidateCmd(),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return root
}

// init reads the CLI config file, installs the logger and resolves the
// project configuration.
func (a *app) init(cmd *cobra.Command) error {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		a.v.SetConfigFile(path)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
	}

	log, err := logging.New(a.v.GetString("log-level"), a.v.GetBool("dev"))
	if err != nil {
		return err
	}
	a.log = log
	logging.SetLogger(log)
	errors.SetHandler(&errors.LogHandler{Verbose: a.v.GetBool("dev")})

	root, err := config.FindProjectRoot(a.v.GetString("project"))
	if err != nil {
		return err
	}
	project, err := config.Resolve(root)
	if err != nil {
		return err
	}
	a.project = project

	a.v.SetDefault("host.pages", project.Host.Pages)
	a.v.SetDefault("host.settings", project.Host.Settings)
	a.v.SetDefault("host.listen", project.Host.Listen)
	a.v.SetDefault("host.user-agent", project.Host.UserAgent)
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "webbridge version %s (built %s)\n", Version, BuildTime)
			return nil
		},
	}
}

func writeLine(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format+"\n", args...)
}
