package types

// BasicKind describes the kind of basic type.
type BasicKind int

const (
	Invalid BasicKind = iota // invalid type

	Unit
	Bool
	Int
	Float
	Str
)

// Basic represents a scalar type. Values of basic types are never heap
// managed and carry no reference count.
type Basic struct {
	typ
	kind BasicKind
	name string
}

// Kind returns the kind of the basic type.
func (b *Basic) Kind() BasicKind {
	return b.kind
}

// Name returns the name of the basic type.
func (b *Basic) Name() string {
	return b.name
}

// Underlying implements Type.
func (b *Basic) Underlying() Type {
	return b
}

// String implements Type.
func (b *Basic) String() string {
	return b.name
}

// Typ holds the predeclared basic types, indexed by BasicKind.
// Typ[Invalid] is nil, representing an invalid type.
var Typ = []*Basic{
	Invalid: nil,
	Unit:    {kind: Unit, name: "Unit"},
	Bool:    {kind: Bool, name: "Bool"},
	Int:     {kind: Int, name: "Int"},
	Float:   {kind: Float, name: "Float"},
	Str:     {kind: Str, name: "Str"},
}

// LookupBasic returns the predeclared basic type with the given name,
// or nil if there is none.
func LookupBasic(name string) *Basic {
	for _, b := range Typ {
		if b != nil && b.name == name {
			return b
		}
	}
	return nil
}
