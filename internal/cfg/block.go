package cfg

// PhiOpt is one incoming edge of a phi node: the label of a predecessor
// block and the register that flows in along that edge.
type PhiOpt struct {
	Label string
	Src   Place
}

// Phi is an SSA merge at block entry. Place takes the value of the Src of
// the option whose Label names the predecessor control arrived from.
//
// Opts is an ordered association list rather than a map so that rendering
// is deterministic.
type Phi struct {
	Place Place
	Opts  []PhiOpt
}

// String returns the canonical rendering of the phi node without the
// leading tab and trailing semicolon.
func (p *Phi) String() string {
	return phiString(p)
}

// Src returns the source register for the given predecessor label.
func (p *Phi) Src(label string) (Place, bool) {
	for _, o := range p.Opts {
		if o.Label == label {
			return o.Src, true
		}
	}
	return 0, false
}

// BasicBlock is a straight-line sequence of statements preceded by phi
// nodes and followed by an optional terminator. A nil Term marks a
// deliberate dead end: control never leaves the block normally.
type BasicBlock struct {
	Phis  []*Phi
	Stmts []Stmt
	Term  Terminator
}

// String returns the canonical rendering of the block.
func (b *BasicBlock) String() string {
	return blockString(b)
}

// AddPhi appends a phi node defining place with the given options.
func (b *BasicBlock) AddPhi(place Place, opts ...PhiOpt) *Phi {
	p := &Phi{Place: place, Opts: opts}
	b.Phis = append(b.Phis, p)
	return p
}

// Add appends statements to the block.
func (b *BasicBlock) Add(stmts ...Stmt) {
	b.Stmts = append(b.Stmts, stmts...)
}

// IsDeadend reports whether the block has no terminator.
func (b *BasicBlock) IsDeadend() bool {
	return b.Term == nil
}

// Succs returns the top-level blocks control may reach from b, in
// terminator order and without duplicates. Targets named inside nested
// IfElse arms are included.
func (b *BasicBlock) Succs() []BlockID {
	var succs []BlockID
	var walk func(b *BasicBlock)
	walk = func(b *BasicBlock) {
		if b == nil {
			return
		}
		switch t := b.Term.(type) {
		case *Goto:
			for _, s := range succs {
				if s == t.Target {
					return
				}
			}
			succs = append(succs, t.Target)
		case *IfElse:
			walk(t.Then)
			walk(t.Else)
		}
	}
	walk(b)
	return succs
}

// termUses appends the places read by the terminator itself to dst. The
// contents of IfElse arms are not included.
func termUses(dst []Place, t Terminator) []Place {
	switch t := t.(type) {
	case *Return:
		dst = append(dst, t.Place)
	case *IfElse:
		dst = append(dst, t.Cond)
	}
	return dst
}
