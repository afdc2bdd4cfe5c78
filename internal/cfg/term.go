package cfg

// BlockID is the index of a top-level block in Cfg.Blocks.
type BlockID int

// Terminator ends the control flow of a basic block. The set is closed:
// Goto, Return and IfElse. A block without a terminator is a dead end.
type Terminator interface {
	String() string
	aTerm()
}

// Goto transfers control to the top-level block Target.
type Goto struct {
	Target BlockID
}

// Return ends the function, yielding the value of Place.
type Return struct {
	Place Place
}

// IfElse is a structured two-way branch on Cond. The arms are owned
// sub-blocks, not entries of Cfg.Blocks; each arm ends with its own
// terminator, typically a Goto to a join block or a Return.
type IfElse struct {
	Cond Place
	Then *BasicBlock
	Else *BasicBlock
}

func (*Goto) aTerm()   {}
func (*Return) aTerm() {}
func (*IfElse) aTerm() {}

func (t *Goto) String() string   { return termString(t) }
func (t *Return) String() string { return termString(t) }
func (t *IfElse) String() string { return termString(t) }
