package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/you-not-fish/rcfg/internal/cfg"
)

// BalanceOptions holds flags for the balance command.
type BalanceOptions struct {
	MaxPaths int
}

// NewBalanceCommand creates the balance command.
func NewBalanceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BalanceOptions{}

	cmd := &cobra.Command{
		Use:   "balance <fixture>...",
		Short: "Check that reference counts balance on every path",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBalance(rootOpts, opts, cmd, args)
		},
	}

	cmd.Flags().IntVar(&opts.MaxPaths, "max-paths", cfg.DefaultMaxPaths, "maximum number of paths to walk per function")
	return cmd
}

func runBalance(rootOpts *RootOptions, opts *BalanceOptions, cmd *cobra.Command, paths []string) error {
	graphs, err := loadGraphs(rootOpts, cmd, paths)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	log := rootOpts.logger(cmd.ErrOrStderr())
	failed := 0
	for _, c := range graphs {
		// The walk assumes a well-formed graph.
		if err := cfg.Verify(c); err != nil {
			failed++
			fmt.Fprintf(w, "FAIL %s\n", c.Name)
			writeViolations(w, err)
			continue
		}

		report := cfg.CheckBalance(c, cfg.BalanceOptions{MaxPaths: opts.MaxPaths})
		log.Debug("balance checked", "func", c.Name, "paths", report.Paths, "truncated", report.Truncated)
		if report.Truncated {
			log.Warn("path limit reached", "func", c.Name, "max_paths", opts.MaxPaths)
		}

		if !report.OK() {
			failed++
			fmt.Fprintf(w, "FAIL %s\n", c.Name)
			for _, im := range report.Imbalances {
				fmt.Fprintf(w, "     %s\n", im)
			}
			continue
		}
		fmt.Fprintf(w, "ok   %s (%d paths)\n", c.Name, report.Paths)
	}

	if failed > 0 {
		return NewExitError(ExitFailure, "%d of %d functions are unbalanced", failed, len(graphs))
	}
	return nil
}
