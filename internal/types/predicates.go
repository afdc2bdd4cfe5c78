package types

// Identical reports whether x and y are identical types.
func Identical(x, y Type) bool {
	if x == y {
		return true
	}
	if x == nil || y == nil {
		return false
	}
	return identical(x, y)
}

func identical(x, y Type) bool {
	// Handle named types
	xn, xNamed := x.(*Named)
	yn, yNamed := y.(*Named)
	if xNamed && yNamed {
		// Two named types are identical only if they are the same definition
		return xn == yn
	}
	if xNamed != yNamed {
		return false
	}

	switch x := x.(type) {
	case *Basic:
		if y, ok := y.(*Basic); ok {
			return x.kind == y.kind
		}
	case *Struct:
		if y, ok := y.(*Struct); ok {
			return identicalStructs(x, y)
		}
	case *Enum:
		if y, ok := y.(*Enum); ok {
			return identicalEnums(x, y)
		}
	case *Ref:
		if y, ok := y.(*Ref); ok {
			return Identical(x.base, y.base)
		}
	}
	return false
}

func identicalStructs(x, y *Struct) bool {
	if len(x.fields) != len(y.fields) {
		return false
	}
	for i := range x.fields {
		if x.fields[i].Name != y.fields[i].Name {
			return false
		}
		if !Identical(x.fields[i].Type, y.fields[i].Type) {
			return false
		}
	}
	return true
}

func identicalEnums(x, y *Enum) bool {
	if len(x.variants) != len(y.variants) {
		return false
	}
	for i := range x.variants {
		xv, yv := x.variants[i], y.variants[i]
		if xv.Name != yv.Name || len(xv.Fields) != len(yv.Fields) {
			return false
		}
		for j := range xv.Fields {
			if !Identical(xv.Fields[j], yv.Fields[j]) {
				return false
			}
		}
	}
	return true
}

// IsManaged reports whether values of type T live in reference-counted heap
// storage. Such values are the subject of dup, drop and deallocate.
func IsManaged(T Type) bool {
	if T == nil {
		return false
	}
	switch T.Underlying().(type) {
	case *Struct, *Enum, *Ref:
		return true
	}
	return false
}

// IsEnum reports whether T is an enum type (directly or through a name).
func IsEnum(T Type) bool {
	if T == nil {
		return false
	}
	_, ok := T.Underlying().(*Enum)
	return ok
}

// IsBool reports whether T is the boolean type.
func IsBool(T Type) bool {
	if T == nil {
		return false
	}
	b, ok := T.Underlying().(*Basic)
	return ok && b.kind == Bool
}
