package fixture

import (
	"strings"

	"gopkg.in/yaml.v3"
	"tlog.app/go/errors"

	"github.com/you-not-fish/rcfg/internal/types"
)

// typeTable resolves type names while a fixture is decoded.
type typeTable struct {
	defs  map[string]types.Type
	named map[string]*types.Named
}

// decodeTypes builds the named types of the types section. All names are
// declared before any definition is read so that definitions may refer to
// each other and to themselves.
func decodeTypes(node *yaml.Node) (*typeTable, error) {
	tt := &typeTable{
		defs:  make(map[string]types.Type),
		named: make(map[string]*types.Named),
	}
	if node.Kind == 0 {
		return tt, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, errors.New("line %d: want a mapping of type names", node.Line)
	}

	for i := 0; i < len(node.Content); i += 2 {
		name := node.Content[i].Value
		if types.LookupBasic(name) != nil || strings.HasPrefix(name, "Ref<") {
			return nil, errors.New("line %d: %s redefines a builtin type", node.Content[i].Line, name)
		}
		if _, dup := tt.named[name]; dup {
			return nil, errors.New("line %d: %s defined twice", node.Content[i].Line, name)
		}
		n := types.NewNamed(name, nil)
		tt.named[name] = n
		tt.defs[name] = n
	}

	for i := 0; i < len(node.Content); i += 2 {
		name, def := node.Content[i].Value, node.Content[i+1]
		u, err := tt.definition(def)
		if err != nil {
			return nil, errors.Wrap(err, "%s", name)
		}
		tt.named[name].SetUnderlying(u)
	}

	// A definition naming another type takes that type's structure.
	for i := 0; i < len(node.Content); i += 2 {
		name := node.Content[i].Value
		u, ok := resolveAlias(tt.named[name])
		if !ok {
			return nil, errors.New("%s is defined in terms of itself", name)
		}
		tt.named[name].SetUnderlying(u)
	}
	return tt, nil
}

// definition decodes the right-hand side of a type definition: a type
// name, {enum: [...]} or {struct: {...}}.
func (tt *typeTable) definition(node *yaml.Node) (types.Type, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		return tt.lookup(node.Value)

	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return nil, errors.New("line %d: want exactly one of enum or struct", node.Line)
		}
		key, body := node.Content[0], node.Content[1]
		switch key.Value {
		case "enum":
			return tt.enum(body)
		case "struct":
			return tt.structType(body)
		}
		return nil, errors.New("line %d: unknown type form %q", key.Line, key.Value)
	}
	return nil, errors.New("line %d: malformed type definition", node.Line)
}

func (tt *typeTable) enum(node *yaml.Node) (types.Type, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, errors.New("line %d: enum wants a list of variants", node.Line)
	}
	variants := make([]types.Variant, 0, len(node.Content))
	seen := make(map[string]bool)
	for _, v := range node.Content {
		var variant types.Variant
		switch v.Kind {
		case yaml.ScalarNode:
			variant.Name = v.Value
		case yaml.MappingNode:
			if len(v.Content) != 2 || v.Content[1].Kind != yaml.SequenceNode {
				return nil, errors.New("line %d: variant wants {Name: [field types]}", v.Line)
			}
			variant.Name = v.Content[0].Value
			for _, f := range v.Content[1].Content {
				ty, err := tt.lookup(f.Value)
				if err != nil {
					return nil, errors.Wrap(err, "variant %s", variant.Name)
				}
				variant.Fields = append(variant.Fields, ty)
			}
		default:
			return nil, errors.New("line %d: malformed variant", v.Line)
		}
		if seen[variant.Name] {
			return nil, errors.New("line %d: variant %s listed twice", v.Line, variant.Name)
		}
		seen[variant.Name] = true
		variants = append(variants, variant)
	}
	return types.NewEnum(variants...), nil
}

func (tt *typeTable) structType(node *yaml.Node) (types.Type, error) {
	if node.Kind != yaml.MappingNode {
		return nil, errors.New("line %d: struct wants a mapping of fields", node.Line)
	}
	fields := make([]types.Field, 0, len(node.Content)/2)
	for i := 0; i < len(node.Content); i += 2 {
		name := node.Content[i].Value
		ty, err := tt.lookup(node.Content[i+1].Value)
		if err != nil {
			return nil, errors.Wrap(err, "field %s", name)
		}
		fields = append(fields, types.Field{Name: name, Type: ty})
	}
	return types.NewStruct(fields...), nil
}

// lookup resolves a type name: a builtin, Ref<T>, or a defined name.
func (tt *typeTable) lookup(name string) (types.Type, error) {
	name = strings.TrimSpace(name)
	if b := types.LookupBasic(name); b != nil {
		return b, nil
	}
	if inner, ok := strings.CutPrefix(name, "Ref<"); ok {
		inner, ok = strings.CutSuffix(inner, ">")
		if !ok {
			return nil, errors.New("malformed type %q", name)
		}
		base, err := tt.lookup(inner)
		if err != nil {
			return nil, err
		}
		return types.NewRef(base), nil
	}
	if n, ok := tt.named[name]; ok {
		return n, nil
	}
	if name == "" {
		return nil, errors.New("missing type")
	}
	return nil, errors.New("unknown type %q", name)
}

// resolveAlias follows n through names alone to the first structural type.
// It reports false if the chain loops.
func resolveAlias(n *types.Named) (types.Type, bool) {
	seen := map[*types.Named]bool{}
	for {
		if seen[n] {
			return nil, false
		}
		seen[n] = true
		next, ok := n.Underlying().(*types.Named)
		if !ok {
			return n.Underlying(), true
		}
		n = next
	}
}
