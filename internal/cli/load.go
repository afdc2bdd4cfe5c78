package cli

import (
	"github.com/spf13/cobra"

	"github.com/you-not-fish/rcfg/internal/cfg"
	"github.com/you-not-fish/rcfg/internal/cfg/passes"
	"github.com/you-not-fish/rcfg/internal/fixture"
)

// loadGraphs reads every fixture in paths, keeps the graphs selected by
// --func and runs the --passes pipeline over them.
func loadGraphs(opts *RootOptions, cmd *cobra.Command, paths []string) ([]*cfg.Cfg, error) {
	log := opts.logger(cmd.ErrOrStderr())

	pipeline, err := passes.Parse(opts.Passes)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "bad --passes", err)
	}

	var graphs []*cfg.Cfg
	for _, path := range paths {
		m, err := fixture.Load(path)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "load fixture", err)
		}
		log.Debug("fixture loaded", "path", path, "funcs", len(m.Funcs))

		for _, c := range m.Funcs {
			if opts.Func == "" || opts.Func == c.Name {
				graphs = append(graphs, c)
			}
		}
	}
	if opts.Func != "" && len(graphs) == 0 {
		return nil, NewExitError(ExitCommandError, "no function named %q", opts.Func)
	}

	conf := passes.Config{
		DumpBefore: opts.DumpBefore,
		DumpAfter:  opts.DumpAfter,
		DumpFunc:   opts.Func,
		Verify:     opts.VerifyPasses,
		Out:        cmd.ErrOrStderr(),
		Logger:     log,
	}
	for _, c := range graphs {
		if err := passes.Run(c, pipeline, conf); err != nil {
			return nil, WrapExitError(ExitFailure, c.Name, err)
		}
	}
	return graphs, nil
}
