package types

import (
	"strings"
)

// Field is a named member of a struct type.
type Field struct {
	Name string
	Type Type
}

// Struct represents a product type. Struct values are heap managed.
type Struct struct {
	typ
	fields []Field
}

// NewStruct creates a new struct type with the given fields.
func NewStruct(fields ...Field) *Struct {
	return &Struct{fields: fields}
}

// NumFields returns the number of fields.
func (s *Struct) NumFields() int {
	return len(s.fields)
}

// Field returns the field at the given index.
func (s *Struct) Field(i int) Field {
	return s.fields[i]
}

// Fields returns all fields.
func (s *Struct) Fields() []Field {
	return s.fields
}

// Underlying implements Type.
func (s *Struct) Underlying() Type {
	return s
}

// String implements Type.
func (s *Struct) String() string {
	var buf strings.Builder
	buf.WriteString("struct{")
	for i, f := range s.fields {
		if i > 0 {
			buf.WriteString("; ")
		}
		buf.WriteString(f.Name)
		buf.WriteString(" ")
		buf.WriteString(typeString(f.Type))
	}
	buf.WriteString("}")
	return buf.String()
}

// Variant is one constructor of an enum type.
type Variant struct {
	Name   string
	Fields []Type
}

// Enum represents a sum-of-variants type. Enum values are heap managed.
type Enum struct {
	typ
	variants []Variant
}

// NewEnum creates a new enum type with the given variants.
func NewEnum(variants ...Variant) *Enum {
	return &Enum{variants: variants}
}

// NumVariants returns the number of variants.
func (e *Enum) NumVariants() int {
	return len(e.variants)
}

// Variant returns the variant at index i.
func (e *Enum) Variant(i int) Variant {
	return e.variants[i]
}

// Variants returns all variants.
func (e *Enum) Variants() []Variant {
	return e.variants
}

// LookupVariant returns the index of the named variant, or -1.
func (e *Enum) LookupVariant(name string) int {
	for i, v := range e.variants {
		if v.Name == name {
			return i
		}
	}
	return -1
}

// Underlying implements Type.
func (e *Enum) Underlying() Type {
	return e
}

// String implements Type.
func (e *Enum) String() string {
	var buf strings.Builder
	buf.WriteString("enum{")
	for i, v := range e.variants {
		if i > 0 {
			buf.WriteString(" | ")
		}
		buf.WriteString(v.Name)
		if len(v.Fields) > 0 {
			buf.WriteString("(")
			for j, f := range v.Fields {
				if j > 0 {
					buf.WriteString(", ")
				}
				buf.WriteString(typeString(f))
			}
			buf.WriteString(")")
		}
	}
	buf.WriteString("}")
	return buf.String()
}

// Ref represents a reference-counted pointer to a value of type base.
type Ref struct {
	typ
	base Type
}

// NewRef creates a new reference type.
func NewRef(base Type) *Ref {
	return &Ref{base: base}
}

// Elem returns the base type that the reference points to.
func (r *Ref) Elem() Type {
	return r.base
}

// Underlying implements Type.
func (r *Ref) Underlying() Type {
	return r
}

// String implements Type.
func (r *Ref) String() string {
	return "Ref<" + typeString(r.base) + ">"
}

func typeString(t Type) string {
	if t == nil {
		return "invalid"
	}
	return t.String()
}
