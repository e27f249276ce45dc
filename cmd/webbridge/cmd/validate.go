package cmd

import (
	"fmt"
	"maps"
	"slices"

	"github.com/go-drift/webbridge/pkg/widgets"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "validate <settings.yaml>",
		Short: "Check a web view settings file",
		Long: `Parse a web view settings file, normalise it and print the creation
parameters the native view would receive. Deprecated options are listed with
their replacements; with --strict they fail validation.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := widgets.LoadWebViewSettings(args[0])
			if err != nil {
				return err
			}
			normalized, deprecations := widgets.NormalizeSettings(settings)

			out := cmd.OutOrStdout()
			for _, d := range deprecations {
				writeLine(out, "warning: %s", d)
			}
			params := normalized.Params()
			for _, key := range slices.Sorted(maps.Keys(params)) {
				writeLine(out, "%s: %v", key, params[key])
			}
			if !settings.Source.IsZero() {
				writeLine(out, "source: %v", settings.Source.Map())
			}

			if strict && len(deprecations) > 0 {
				return fmt.Errorf("%s: %d deprecated option(s)", args[0], len(deprecations))
			}
			writeLine(out, "%s: ok", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "treat deprecated options as errors")
	return cmd
}
