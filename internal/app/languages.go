package app

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rznies/lingoSir/internal/translation"
)

func newLanguagesCommand() *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "languages",
		Short: "List the supported target languages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			options := translation.SupportedLanguageOptions()
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"supported": options,
					"count":     len(options),
				})
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, option := range options {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", option.Code, option.Label, option.Native)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the list as JSON")
	return cmd
}
