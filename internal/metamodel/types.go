// Package metamodel defines the schema layer of the design graph core:
// traits, object types, edge rules, constraints, and the predicates used
// to match objects against them. The package is deliberately independent
// of the concrete graph/frame representation; it interacts with objects
// and frames only through the small ObjectView/FrameView interfaces,
// which internal/graph's types satisfy.
package metamodel

import (
	"fmt"

	"github.com/moolen/poietic/internal/ident"
	"github.com/moolen/poietic/internal/value"
)

// StructuralType is the structural role an ObjectType plays in the
// graph: a plain unstructured object, a node, or an edge.
type StructuralType int

const (
	Unstructured StructuralType = iota
	Node
	Edge
)

func (s StructuralType) String() string {
	switch s {
	case Node:
		return "node"
	case Edge:
		return "edge"
	default:
		return "unstructured"
	}
}

// ParseStructuralType parses the on-disk spelling of a StructuralType.
func ParseStructuralType(s string) (StructuralType, error) {
	switch s {
	case "unstructured":
		return Unstructured, nil
	case "node":
		return Node, nil
	case "edge":
		return Edge, nil
	default:
		return 0, fmt.Errorf("unknown structural type %q", s)
	}
}

// Attribute declares one named, typed slot on a Trait.
type Attribute struct {
	Name     string
	Type     value.Type
	Optional bool
	Default  *value.Variant
}

// Trait is a named, ordered bundle of attributes shared by every
// ObjectType that references it.
type Trait struct {
	Name       string
	Attributes []Attribute
}

// Attribute looks up a declared attribute by name.
func (t *Trait) Attribute(name string) (Attribute, bool) {
	for _, a := range t.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

// ObjectType names a kind of object: its structural role and the
// traits it carries.
type ObjectType struct {
	Name       string
	Structural StructuralType
	Traits     []*Trait
}

// HasTrait reports whether t references trait by identity.
func (t *ObjectType) HasTrait(trait *Trait) bool {
	for _, tr := range t.Traits {
		if tr == trait {
			return true
		}
	}
	return false
}

// HasTraitName reports whether t references a trait with the given name.
func (t *ObjectType) HasTraitName(name string) bool {
	for _, tr := range t.Traits {
		if tr.Name == name {
			return true
		}
	}
	return false
}

// Attribute looks up an attribute by name across all of t's traits, in
// trait declaration order, returning the first match.
func (t *ObjectType) Attribute(name string) (Attribute, bool) {
	for _, tr := range t.Traits {
		if a, ok := tr.Attribute(name); ok {
			return a, true
		}
	}
	return Attribute{}, false
}

// Direction distinguishes the two edge-traversal senses used by
// UniqueNeighbour constraints and frame neighbourhood queries.
type Direction int

const (
	Outgoing Direction = iota
	Incoming
)

func (d Direction) String() string {
	if d == Incoming {
		return "incoming"
	}
	return "outgoing"
}

// ObjectView is the minimal view of a single graph object that
// predicates, edge rules, and constraints need. internal/graph's
// Snapshot (and Frame-bound object wrappers) satisfy this interface.
type ObjectView interface {
	ID() ident.ID
	TypeName() string
	Structure() StructuralType
	// Origin and Target are only meaningful when Structure() == Edge.
	Origin() (ident.ID, bool)
	Target() (ident.ID, bool)
	// HasComponent reports whether the object carries a named component
	// (an attached sub-structure outside the trait/attribute system,
	// e.g. a formula or style component).
	HasComponent(name string) bool
	// HasTraitName reports whether the object's type carries a trait
	// with the given name.
	HasTraitName(name string) bool
}

// FrameView is the minimal view of a frame that predicates, edge rules,
// and constraints need in order to resolve neighbours. internal/graph's
// Frame and TransientFrame satisfy this interface.
type FrameView interface {
	Object(id ident.ID) (ObjectView, bool)
	AllObjects() []ObjectView
	// Outgoing returns edge objects whose origin is id.
	Outgoing(id ident.ID) []ObjectView
	// Incoming returns edge objects whose target is id.
	Incoming(id ident.ID) []ObjectView
}
