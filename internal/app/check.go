package app

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rznies/lingoSir/internal/translation"
)

func newCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check that the Lingo.dev CLI can be launched",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadRuntime(cmd.ErrOrStderr(), "")
			if err != nil {
				return runtimeError("load config: %w", err)
			}
			workspaces := translation.NewWorkspaceManager(cfg.CLIWorkspaceRoot, cfg.SourceLocale, logger)
			process, err := translation.NewProcessTranslator(workspaces, cfg.ProcessOptions(), logger)
			if err != nil {
				return runtimeError("build process translator: %w", err)
			}

			command := strings.Join(cfg.CLIVersionCommand(), " ")
			if !process.CheckAvailability(cmd.Context()) {
				return runtimeError("translation tool unavailable: %s", command)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "translation tool available: %s\n", command)
			return nil
		},
	}
}
