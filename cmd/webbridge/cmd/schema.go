package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/go-drift/webbridge/pkg/widgets"
	"github.com/spf13/cobra"
)

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of web view settings files",
		Long: `Print the JSON schema describing web view settings files, for editor
completion and validation. Deprecated platform-specific options are included
and marked as such.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := json.MarshalIndent(widgets.WebViewSettingsSchema(), "", "  ")
			if err != nil {
				return fmt.Errorf("encode schema: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
}
