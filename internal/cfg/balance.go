package cfg

import (
	"fmt"
	"strings"
)

// DefaultMaxPaths bounds path enumeration in CheckBalance when
// BalanceOptions.MaxPaths is zero.
const DefaultMaxPaths = 4096

// maxVisits is how often a node may appear on one path: once on the way in
// and once more after taking a back edge.
const maxVisits = 2

// BalanceOptions configures CheckBalance.
type BalanceOptions struct {
	// MaxPaths is the maximum number of complete paths to examine.
	// Zero means DefaultMaxPaths.
	MaxPaths int
}

// Imbalance is a reference-count defect found on one path.
type Imbalance struct {
	// Path lists the node labels from the entry to the point of failure.
	Path []string

	// Place is the register that introduced the referent: its allocation
	// site or the argument it arrived in.
	Place Place

	// Net is the reference count observed, relative to the start of the
	// referent's life (allocation = 1, argument = 0).
	Net int

	// Want is the count expected at that point.
	Want int

	// Msg describes the defect.
	Msg string
}

// String formats the imbalance on one line.
func (im Imbalance) String() string {
	return fmt.Sprintf("%s: %s: %s", strings.Join(im.Path, " -> "), im.Place, im.Msg)
}

// BalanceReport is the result of CheckBalance.
type BalanceReport struct {
	// Paths is the number of complete paths examined.
	Paths int

	// Truncated is set when enumeration stopped at MaxPaths.
	Truncated bool

	// Imbalances lists every defect, in path order.
	Imbalances []Imbalance
}

// OK reports whether no imbalance was found.
func (r *BalanceReport) OK() bool {
	return len(r.Imbalances) == 0
}

// referent is one piece of managed storage tracked along a path.
type referent struct {
	origin   Place
	count    int
	borrowed bool // arrived as an argument; starts at 0 and is never freed here
	released bool
}

// rcState is the reference-count state at a program point on one path.
type rcState struct {
	refs  []referent
	alias map[Place]int // register -> index into refs
}

func (s *rcState) clone() *rcState {
	c := &rcState{
		refs:  append([]referent(nil), s.refs...),
		alias: make(map[Place]int, len(s.alias)),
	}
	for p, r := range s.alias {
		c.alias[p] = r
	}
	return c
}

// CheckBalance walks every acyclic path from the entry of c to each Return
// and verifies that reference counts of managed registers balance.
//
// Counts are tracked per referent: an allocating assignment, or a call
// whose result is managed, creates a referent at one; copying a register
// or merging it through a phi shares the referent. Dup and Drop adjust the
// count, Drop to zero or Deallocate releases it, and any later use of a
// released referent is a defect. Arguments are borrowed: their net count
// starts at zero and must return to zero. At a Return the returned
// referent must hold exactly one reference, which passes to the caller;
// every other referent must be released or at zero.
//
// Paths end at returns and dead ends. Loops are followed around once: a
// node may appear on a path at most twice, so state built up in a loop body
// reaches the checks after the loop exits. Arriving at a node a third time
// ends the path without a check. CheckBalance assumes c passes Verify.
func CheckBalance(c *Cfg, opts BalanceOptions) *BalanceReport {
	if opts.MaxPaths <= 0 {
		opts.MaxPaths = DefaultMaxPaths
	}
	report := &BalanceReport{}

	g := BuildGraph(c)
	if g.Entry == nil {
		return report
	}

	start := &rcState{alias: make(map[Place]int)}
	for _, p := range c.Args() {
		if c.IsManaged(p) {
			start.alias[p] = len(start.refs)
			start.refs = append(start.refs, referent{origin: p, borrowed: true})
		}
	}

	b := &balancer{c: c, report: report, max: opts.MaxPaths, onPath: make(map[*Node]int)}
	b.walk(g.Entry, nil, start)
	return report
}

type balancer struct {
	c      *Cfg
	report *BalanceReport
	max    int
	path   []string
	onPath map[*Node]int // visits of each node on the current path
}

func (b *balancer) done() bool {
	if b.report.Paths >= b.max {
		b.report.Truncated = true
		return true
	}
	return false
}

func (b *balancer) fail(s *rcState, r int, want int, format string, args ...interface{}) {
	ref := s.refs[r]
	b.report.Imbalances = append(b.report.Imbalances, Imbalance{
		Path:  append([]string(nil), b.path...),
		Place: ref.origin,
		Net:   ref.count,
		Want:  want,
		Msg:   fmt.Sprintf(format, args...),
	})
}

func (b *balancer) walk(n *Node, from *Node, s *rcState) {
	if b.done() {
		return
	}
	if b.onPath[n] == maxVisits {
		// Second time around this loop on the current path.
		b.report.Paths++
		return
	}
	b.onPath[n]++
	b.path = append(b.path, n.Label)
	defer func() {
		b.path = b.path[:len(b.path)-1]
		b.onPath[n]--
	}()

	// Phis read their sources simultaneously on entry.
	if from != nil {
		merged := make(map[Place]int)
		for _, phi := range n.Block.Phis {
			if src, ok := phi.Src(from.Label); ok {
				if r, tracked := s.alias[src]; tracked {
					merged[phi.Place] = r
				}
			}
		}
		for p, r := range merged {
			s.alias[p] = r
		}
	}

	for _, st := range n.Block.Stmts {
		b.step(s, st)
	}

	switch t := n.Block.Term.(type) {
	case *Return:
		b.use(s, t.Place, "return")
		b.finish(s, t.Place)
		b.report.Paths++
	case *Goto, *IfElse:
		if len(n.Succs) == 0 {
			b.report.Paths++
			return
		}
		for i, succ := range n.Succs {
			next := s
			if i < len(n.Succs)-1 {
				next = s.clone()
			}
			b.walk(succ, n, next)
		}
	default:
		// Dead end: control never arrives here normally, so nothing
		// needs to balance.
		b.report.Paths++
	}
}

// use reports a read of a released referent.
func (b *balancer) use(s *rcState, p Place, what string) (int, bool) {
	r, ok := s.alias[p]
	if !ok {
		return 0, false
	}
	if s.refs[r].released {
		b.fail(s, r, 0, "%s of %s after release", what, p)
		return r, false
	}
	return r, true
}

func (b *balancer) fresh(s *rcState, p Place) {
	s.alias[p] = len(s.refs)
	s.refs = append(s.refs, referent{origin: p, count: 1})
}

func (b *balancer) step(s *rcState, st Stmt) {
	switch st := st.(type) {
	case *Assign:
		for _, u := range valueUses(nil, st.Value) {
			b.use(s, u, "read")
		}
		if !b.c.IsManaged(st.Place) {
			return
		}
		switch v := st.Value.(type) {
		case Place:
			if st.Allocate {
				b.fresh(s, st.Place)
			} else if r, ok := s.alias[v]; ok {
				s.alias[st.Place] = r
			}
		case *Call:
			b.fresh(s, st.Place)
		}

	case *Dup:
		if r, ok := b.use(s, st.Place, "dup"); ok {
			s.refs[r].count += int(st.Count)
		}

	case *Drop:
		r, ok := b.use(s, st.Place, "drop")
		if !ok {
			return
		}
		ref := &s.refs[r]
		ref.count -= int(st.Count)
		switch {
		case ref.count < 0:
			b.fail(s, r, 0, "drop-%d takes the count below zero", st.Count)
			ref.count = 0
		case ref.count == 0 && !ref.borrowed:
			ref.released = true
		}

	case *Deallocate:
		if r, ok := b.use(s, st.Place, "deallocate"); ok {
			s.refs[r].released = true
		}
	}
}

// finish checks the state at a Return of ret.
func (b *balancer) finish(s *rcState, ret Place) {
	out, returning := s.alias[ret]
	for r, ref := range s.refs {
		if ref.released {
			continue
		}
		want := 0
		if returning && r == out {
			want = 1
		}
		if ref.count != want {
			b.fail(s, r, want, "count %+d at return, want %+d", ref.count, want)
		}
	}
}
