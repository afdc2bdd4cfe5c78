package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/you-not-fish/rcfg/internal/cfg"
)

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "render <fixture>...",
		Short: "Print the canonical rendering of each graph",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			graphs, err := loadGraphs(rootOpts, cmd, args)
			if err != nil {
				return err
			}
			writeGraphs(cmd.OutOrStdout(), graphs)
			return nil
		},
	}
}

// writeGraphs writes the renderings separated by blank lines, with a final
// newline.
func writeGraphs(w io.Writer, graphs []*cfg.Cfg) {
	for i, c := range graphs {
		if i > 0 {
			io.WriteString(w, "\n\n")
		}
		cfg.Fprint(w, c)
	}
	if len(graphs) > 0 {
		io.WriteString(w, "\n")
	}
}
