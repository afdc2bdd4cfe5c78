package types

// Named represents a named type definition (for example an enum or struct
// declared at module level).
type Named struct {
	typ
	name       string
	underlying Type
}

// NewNamed creates a new named type.
// The underlying type may be set later using SetUnderlying, which allows
// recursive definitions such as a list enum referring to itself.
func NewNamed(name string, underlying Type) *Named {
	return &Named{name: name, underlying: underlying}
}

// Name returns the type name.
func (n *Named) Name() string {
	return n.name
}

// SetUnderlying sets the underlying type.
func (n *Named) SetUnderlying(underlying Type) {
	n.underlying = underlying
}

// Underlying implements Type.
// For named types, returns the underlying type of the named type.
func (n *Named) Underlying() Type {
	return n.underlying
}

// String implements Type.
func (n *Named) String() string {
	if n.name != "" {
		return n.name
	}
	return "unnamed"
}
