package app

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rznies/lingoSir/internal/cli"
)

// exitError marks a runtime failure. Anything else returned from a command is
// treated as a usage error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func runtimeError(format string, args ...any) error {
	return &exitError{code: 1, err: fmt.Errorf(format, args...)}
}

// Run executes the CLI command and returns a process exit code.
func Run(args []string) int {
	return run(args, os.Stdout, os.Stderr)
}

func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			return exitErr.code
		}
		fmt.Fprintf(stderr, "Run \"%s --help\" for usage.\n", commandPath(root, args))
		return 2
	}
	return 0
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "lingosir",
		Short: "Translate captions into many languages",
		Long: `lingosir translates a caption into several target languages.

It runs the Lingo.dev CLI once per language inside an isolated workspace,
falls back to the hosted API when configured, and exposes the same
pipeline over HTTP.

Examples:
  lingosir serve                            # Start the HTTP API
  lingosir translate "Hello" --lang es,fr   # Translate from the shell
  lingosir check                            # Check the Lingo.dev CLI
  lingosir validate testdata/requests       # Lint stored request bodies`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	env := cli.AddEnvFlag(root.PersistentFlags(), ".env", "Path to the .env file")
	root.PersistentPreRun = func(*cobra.Command, []string) {
		env.LoadOptional()
	}

	root.AddCommand(
		newServeCommand(),
		newTranslateCommand(),
		newCheckCommand(),
		newLanguagesCommand(),
		newValidateCommand(),
	)
	return root
}

// commandPath names the subcommand a usage error came from, best effort.
func commandPath(root *cobra.Command, args []string) string {
	cmd, _, err := root.Find(args)
	if err != nil {
		return root.CommandPath()
	}
	return cmd.CommandPath()
}
