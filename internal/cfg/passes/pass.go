// Package passes runs transformations over cfg graphs.
package passes

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"tlog.app/go/errors"

	"github.com/you-not-fish/rcfg/internal/cfg"
)

// Pass describes a single CFG transformation.
type Pass struct {
	Name string
	Fn   func(c *cfg.Cfg)
}

// Config controls pass execution behavior.
type Config struct {
	DumpBefore string // dump the graph before this pass ("*" for all)
	DumpAfter  string // dump the graph after this pass ("*" for all)
	Verify     bool   // verify the graph before/after each pass
	DumpFunc   string // restrict dumps to this function name

	// Out receives dumps. Nil means os.Stderr.
	Out io.Writer

	// Logger receives progress records. Nil means slog.Default().
	Logger *slog.Logger
}

// All lists the available passes in their default order.
var All = []Pass{
	{Name: "trim", Fn: TrimUnreachable},
	{Name: "fuse", Fn: FuseRefCounts},
	{Name: "nops", Fn: StripNops},
}

// Lookup returns the pass with the given name.
func Lookup(name string) (Pass, bool) {
	for _, p := range All {
		if p.Name == name {
			return p, true
		}
	}
	return Pass{}, false
}

// Parse resolves a comma-separated list of pass names. An empty list
// yields no passes.
func Parse(list string) ([]Pass, error) {
	var ps []Pass
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		p, ok := Lookup(name)
		if !ok {
			return nil, errors.New("unknown pass %q", name)
		}
		ps = append(ps, p)
	}
	return ps, nil
}

// Run executes the given passes on c in order.
func Run(c *cfg.Cfg, passes []Pass, conf Config) error {
	out := conf.Out
	if out == nil {
		out = os.Stderr
	}
	log := conf.Logger
	if log == nil {
		log = slog.Default()
	}

	for _, p := range passes {
		if shouldDump(conf.DumpBefore, p.Name) && matchFunc(conf.DumpFunc, c.Name) {
			fmt.Fprintf(out, "--- before %s (%s) ---\n", p.Name, c.Name)
			cfg.Fprint(out, c)
			fmt.Fprintln(out)
		}

		if conf.Verify {
			if err := cfg.Verify(c); err != nil {
				return errors.Wrap(err, "verify before %s", p.Name)
			}
		}

		start := time.Now()
		stmts := c.NumStmts()
		p.Fn(c)
		log.Debug("pass done",
			"pass", p.Name,
			"func", c.Name,
			"blocks", c.NumBlocks(),
			"stmts_before", stmts,
			"stmts_after", c.NumStmts(),
			"elapsed", time.Since(start),
		)

		if conf.Verify {
			if err := cfg.Verify(c); err != nil {
				return errors.Wrap(err, "verify after %s", p.Name)
			}
		}

		if shouldDump(conf.DumpAfter, p.Name) && matchFunc(conf.DumpFunc, c.Name) {
			fmt.Fprintf(out, "--- after %s (%s) ---\n", p.Name, c.Name)
			cfg.Fprint(out, c)
			fmt.Fprintln(out)
		}
	}
	return nil
}

func shouldDump(pattern, name string) bool {
	return pattern == "*" || pattern == name
}

func matchFunc(filter, name string) bool {
	return filter == "" || filter == name
}
