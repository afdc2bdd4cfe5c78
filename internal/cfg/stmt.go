package cfg

// Stmt is a single straight-line instruction of a basic block.
//
// The set of statements is closed:
//
//	Assign      let _p = [allocate ]value
//	Nop         nop
//	Deallocate  deallocate _p
//	Dup         dup+N _p
//	Drop        drop-N _p
type Stmt interface {
	String() string
	aStmt()
}

// Assign binds the result of Value to Place. When Allocate is set the
// assignment also materializes fresh heap-managed storage for the result,
// which starts with a reference count of one.
type Assign struct {
	Place    Place
	Value    Value
	Allocate bool
}

// Nop has no effect. It is left behind by passes that delete statements in
// place.
type Nop struct{}

// Deallocate frees the storage owned by Place regardless of its reference
// count.
type Deallocate struct {
	Place Place
}

// Dup increases the reference count of Place's referent by Count.
type Dup struct {
	Place Place
	Count uint32
}

// Drop decreases the reference count of Place's referent by Count.
// Reaching zero releases the storage.
type Drop struct {
	Place Place
	Count uint32
}

func (*Assign) aStmt()     {}
func (*Nop) aStmt()        {}
func (*Deallocate) aStmt() {}
func (*Dup) aStmt()        {}
func (*Drop) aStmt()       {}

func (s *Assign) String() string     { return stmtString(s) }
func (s *Nop) String() string        { return stmtString(s) }
func (s *Deallocate) String() string { return stmtString(s) }
func (s *Dup) String() string        { return stmtString(s) }
func (s *Drop) String() string       { return stmtString(s) }

// stmtUses appends the places read by s to dst. Assign's destination is a
// definition, not a use.
func stmtUses(dst []Place, s Stmt) []Place {
	switch s := s.(type) {
	case *Assign:
		dst = valueUses(dst, s.Value)
	case *Deallocate:
		dst = append(dst, s.Place)
	case *Dup:
		dst = append(dst, s.Place)
	case *Drop:
		dst = append(dst, s.Place)
	}
	return dst
}
