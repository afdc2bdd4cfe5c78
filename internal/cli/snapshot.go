package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/you-not-fish/rcfg/internal/cfg"
	"github.com/you-not-fish/rcfg/internal/snapshot"
)

// SnapshotOptions holds flags for the snapshot command.
type SnapshotOptions struct {
	Database string
}

// NewSnapshotCommand creates the snapshot command.
func NewSnapshotCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SnapshotOptions{}

	cmd := &cobra.Command{
		Use:   "snapshot --db <path> <fixture>...",
		Short: "Record renderings and report which ones changed",
		Long: `Record the canonical rendering of each graph in a SQLite database,
keyed by function name. Each function is reported as new, unchanged or
changed; any change makes the command fail.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshot(cmd.Context(), rootOpts, opts, cmd, args)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the snapshot database (required)")
	_ = cmd.MarkFlagRequired("db")
	return cmd
}

func runSnapshot(ctx context.Context, rootOpts *RootOptions, opts *SnapshotOptions, cmd *cobra.Command, paths []string) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}

	graphs, err := loadGraphs(rootOpts, cmd, paths)
	if err != nil {
		return err
	}

	log := rootOpts.logger(cmd.ErrOrStderr())
	log.Debug("opening database", "path", opts.Database)
	store, err := snapshot.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "open snapshot database", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil && err == nil {
			err = WrapExitError(ExitCommandError, "close snapshot database", closeErr)
		}
	}()

	w := cmd.OutOrStdout()
	changed := 0
	for _, c := range graphs {
		status, err := store.Record(ctx, c.Name, cfg.Sprint(c))
		if err != nil {
			return WrapExitError(ExitCommandError, "record "+c.Name, err)
		}
		if status == snapshot.StatusChanged {
			changed++
		}
		fmt.Fprintf(w, "%-9s %s\n", status, c.Name)
	}

	if changed > 0 {
		return NewExitError(ExitFailure, "%d of %d snapshots changed", changed, len(graphs))
	}
	return nil
}
