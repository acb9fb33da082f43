// Package cli contains the Cobra command tree for codesuggest.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configFile string
	noColor    bool
}

// NewRootCommand builds the full command tree. version is reported by --version.
func NewRootCommand(version string) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "codesuggest",
		Short: "Code suggestion engine for theme JavaScript, CSS and Liquid files",
		Long: `codesuggest detects improvement opportunities in JavaScript, CSS and
Liquid files with deterministic rules and an optional AI model, and manages
each suggestion through review: apply, edit, reject and undo.

Run 'codesuggest serve' to start the HTTP API, or 'codesuggest analyze <file>'
for an offline rule check.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "Config file path (default: ./codesuggest.yaml)")
	cmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	cmd.AddCommand(
		newServeCommand(opts),
		newAnalyzeCommand(opts),
		newMigrateCommand(opts),
	)

	return cmd
}

// Execute runs the command tree and exits non-zero on error.
func Execute(version string) {
	if err := ExecuteContext(context.Background(), version, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// ExecuteContext runs the command tree with explicit arguments and streams.
// The error is printed to stderr before being returned.
func ExecuteContext(ctx context.Context, version string, args []string, stdout, stderr io.Writer) error {
	cmd := NewRootCommand(version)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return err
	}
	return nil
}
