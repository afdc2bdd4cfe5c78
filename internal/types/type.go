// Package types implements the type tokens attached to virtual registers of
// the CFG IR. Types here are opaque to the IR itself: they are compared with
// Identical, printed with String, and asked whether they are heap managed.
package types

// Type is the interface implemented by all types.
type Type interface {
	// Underlying returns the underlying type.
	// For Named types, returns the type it names.
	// For all other types, returns the receiver.
	Underlying() Type

	// String returns a human-readable representation of the type.
	String() string

	// aType is a marker method to restrict implementations to this package.
	aType()
}

// typ is a base struct for all type implementations.
type typ struct{}

func (typ) aType() {}
