// Package cli implements the intl-extract command line.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configFile string
	rootDir    string
	verbose    bool
	noColor    bool
}

// NewRootCommand builds the command tree. Each call returns a fresh tree with
// its own flag state.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "intl-extract",
		Short: "Extract react-intl message descriptors from JavaScript and TypeScript sources",
		Long: `intl-extract statically finds <FormattedMessage>, <FormattedHTMLMessage> and
defineMessage() invocations that use the configured catalog module, validates
the message descriptors of every source file and writes them as JSON.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "config file (default is .intl-extract.yml in the project root)")
	flags.StringVarP(&opts.rootDir, "dir", "C", "", "project root (default is the current directory)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable coloured output")

	rootCmd.AddCommand(newExtractCommand(opts))
	rootCmd.AddCommand(newVersionCommand())
	return rootCmd
}

// Execute runs the command line and exits non-zero on failure.
// This is called by main.main().
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// resolveRoot returns the project root from --dir or the working directory.
func (o *globalOptions) resolveRoot() (string, error) {
	if o.rootDir != "" {
		return o.rootDir, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return wd, nil
}

// newLogger builds the text logger used for internal events. Diagnostics are
// rendered by the reporter, so only errors are logged unless verbose.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelError
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
