package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/you-not-fish/rcfg/internal/cfg"
)

// VerifyOptions holds flags for the verify command.
type VerifyOptions struct {
	Dom bool
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VerifyOptions{}

	cmd := &cobra.Command{
		Use:   "verify <fixture>...",
		Short: "Check the structural invariants of each graph",
		Long: `Check the structural invariants of each graph: register ranges and
types, single definitions, phi options against predecessors, goto targets
and reference-count statements on managed registers. With --dom, also check
that every use is dominated by its definition.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(rootOpts, opts, cmd, args)
		},
	}

	cmd.Flags().BoolVar(&opts.Dom, "dom", false, "also check dominance of definitions over uses")
	return cmd
}

func runVerify(rootOpts *RootOptions, opts *VerifyOptions, cmd *cobra.Command, paths []string) error {
	graphs, err := loadGraphs(rootOpts, cmd, paths)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	failed := 0
	for _, c := range graphs {
		check := cfg.Verify
		if opts.Dom {
			check = cfg.VerifyDom
		}
		if err := check(c); err != nil {
			failed++
			fmt.Fprintf(w, "FAIL %s\n", c.Name)
			writeViolations(w, err)
			continue
		}
		fmt.Fprintf(w, "ok   %s\n", c.Name)
	}

	if failed > 0 {
		return NewExitError(ExitFailure, "%d of %d functions failed verification", failed, len(graphs))
	}
	return nil
}

// writeViolations lists the violations of a verification error, one per
// indented line.
func writeViolations(w io.Writer, err error) {
	if verr, ok := err.(*cfg.VerifyError); ok {
		for _, v := range verr.Violations {
			fmt.Fprintf(w, "     %s\n", v)
		}
		return
	}
	fmt.Fprintf(w, "     %s\n", strings.ReplaceAll(err.Error(), "\n", "\n     "))
}
