// Package cli implements the rcfg command line.
package cli

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"
)

// Version is the rcfg release.
const Version = "0.1.0-dev"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose      bool
	Func         string // only act on this function
	Passes       string // comma-separated pass pipeline
	DumpBefore   string // dump before this pass ("*" for all)
	DumpAfter    string // dump after this pass ("*" for all)
	VerifyPasses bool   // verify before and after each pass
}

// NewRootCommand creates the root command for the rcfg CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "rcfg",
		Short: "Inspect reference-counted control flow graphs",
		Long: `rcfg reads YAML fixtures describing control flow graphs and renders,
verifies, balance-checks or snapshots them.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&opts.Func, "func", "", "only process the named function")
	flags.StringVar(&opts.Passes, "passes", "", "comma-separated passes to run first (trim, fuse, nops)")
	flags.StringVar(&opts.DumpBefore, "dump-before", "", `dump the graph before pass (name or "*")`)
	flags.StringVar(&opts.DumpAfter, "dump-after", "", `dump the graph after pass (name or "*")`)
	flags.BoolVar(&opts.VerifyPasses, "verify-passes", false, "verify the graph before and after each pass")

	cmd.AddCommand(NewRenderCommand(opts))
	cmd.AddCommand(NewVerifyCommand(opts))
	cmd.AddCommand(NewBalanceCommand(opts))
	cmd.AddCommand(NewSnapshotCommand(opts))

	return cmd
}

// logger returns a text logger on w. Verbose mode lowers the level to
// debug.
func (o *RootOptions) logger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
