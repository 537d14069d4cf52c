package metamodel

import "fmt"

// UnknownTypeError is returned when a lookup references a type name the
// metamodel does not declare.
type UnknownTypeError struct {
	Name string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown type %q", e.Name)
}

// UnknownTraitError is returned when a lookup references a trait name
// the metamodel does not declare.
type UnknownTraitError struct {
	Name string
}

func (e *UnknownTraitError) Error() string {
	return fmt.Sprintf("unknown trait %q", e.Name)
}

// Metamodel is the schema for a design: its declared traits, object
// types, edge rules, and global constraints.
type Metamodel struct {
	Name        string
	traits      map[string]*Trait
	types       map[string]*ObjectType
	edgeRules   []*EdgeRule
	constraints []*Constraint
}

// New creates an empty, named metamodel. Use AddTrait/AddType/AddEdgeRule/
// AddConstraint to populate it (typically done by the rawstore loader
// from a metamodel definition file).
func New(name string) *Metamodel {
	return &Metamodel{
		Name:   name,
		traits: make(map[string]*Trait),
		types:  make(map[string]*ObjectType),
	}
}

// AddTrait registers a trait. It overwrites any previous trait of the
// same name.
func (m *Metamodel) AddTrait(t *Trait) {
	m.traits[t.Name] = t
}

// AddType registers an object type. It overwrites any previous type of
// the same name.
func (m *Metamodel) AddType(t *ObjectType) {
	m.types[t.Name] = t
}

// AddEdgeRule appends an edge rule.
func (m *Metamodel) AddEdgeRule(r *EdgeRule) {
	m.edgeRules = append(m.edgeRules, r)
}

// AddConstraint appends a global constraint.
func (m *Metamodel) AddConstraint(c *Constraint) {
	m.constraints = append(m.constraints, c)
}

// Type looks up an object type by name.
func (m *Metamodel) Type(name string) (*ObjectType, error) {
	t, ok := m.types[name]
	if !ok {
		return nil, &UnknownTypeError{Name: name}
	}
	return t, nil
}

// HasType reports whether name is a declared object type.
func (m *Metamodel) HasType(name string) bool {
	_, ok := m.types[name]
	return ok
}

// Trait looks up a trait by name.
func (m *Metamodel) Trait(name string) (*Trait, error) {
	t, ok := m.traits[name]
	if !ok {
		return nil, &UnknownTraitError{Name: name}
	}
	return t, nil
}

// Types returns every declared object type, in an unspecified order.
func (m *Metamodel) Types() []*ObjectType {
	out := make([]*ObjectType, 0, len(m.types))
	for _, t := range m.types {
		out = append(out, t)
	}
	return out
}

// EdgeRulesFor returns the edge rules declared for the given edge type
// name.
func (m *Metamodel) EdgeRulesFor(typeName string) []*EdgeRule {
	var out []*EdgeRule
	for _, r := range m.edgeRules {
		if r.Type.Name == typeName {
			out = append(out, r)
		}
	}
	return out
}

// Constraints returns every declared global constraint, in declaration
// order.
func (m *Metamodel) Constraints() []*Constraint {
	out := make([]*Constraint, len(m.constraints))
	copy(out, m.constraints)
	return out
}
