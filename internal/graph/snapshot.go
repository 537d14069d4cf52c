// Package graph implements the versioned object graph: immutable
// object snapshots, the reference-counted snapshot table, frozen
// frames, and the copy-on-write transient frames used to edit them.
package graph

import (
	"fmt"

	"github.com/moolen/poietic/internal/ident"
	"github.com/moolen/poietic/internal/metamodel"
	"github.com/moolen/poietic/internal/value"
)

// Structure describes an object's structural role and, for edges, its
// endpoints.
type Structure struct {
	Kind   metamodel.StructuralType
	Origin ident.ID
	Target ident.ID
}

// NodeStructure builds the structure for a plain node object.
func NodeStructure() Structure { return Structure{Kind: metamodel.Node} }

// UnstructuredStructure builds the structure for an unstructured object.
func UnstructuredStructure() Structure { return Structure{Kind: metamodel.Unstructured} }

// EdgeStructure builds the structure for an edge between origin and target.
func EdgeStructure(origin, target ident.ID) Structure {
	return Structure{Kind: metamodel.Edge, Origin: origin, Target: target}
}

// Snapshot is one immutable version of an object. Equality is by
// snapshot id, per spec: two snapshots with the same SnapshotID are
// considered the same version even if their backing pointers differ
// (e.g. after a round-trip through the store).
type Snapshot struct {
	objectID   ident.ID
	snapshotID ident.ID
	objType    *metamodel.ObjectType
	structure  Structure
	parent     *ident.ID
	children   []ident.ID
	attributes map[string]value.Variant
	components map[string]struct{}
}

// NewSnapshot constructs a snapshot. attributes and components may be
// nil (treated as empty).
func NewSnapshot(objectID, snapshotID ident.ID, objType *metamodel.ObjectType, structure Structure, attributes map[string]value.Variant, components map[string]struct{}) *Snapshot {
	if attributes == nil {
		attributes = make(map[string]value.Variant)
	}
	if components == nil {
		components = make(map[string]struct{})
	}
	return &Snapshot{
		objectID:   objectID,
		snapshotID: snapshotID,
		objType:    objType,
		structure:  structure,
		attributes: attributes,
		components: components,
	}
}

// ObjectID returns the identity stable across this object's versions.
func (s *Snapshot) ObjectID() ident.ID { return s.objectID }

// SnapshotID returns the identity of this particular version.
func (s *Snapshot) SnapshotID() ident.ID { return s.snapshotID }

// Type returns the object's declared metamodel type.
func (s *Snapshot) Type() *metamodel.ObjectType { return s.objType }

// TypeName returns the object's declared type name.
func (s *Snapshot) TypeName() string {
	if s.objType == nil {
		return ""
	}
	return s.objType.Name
}

// Structure returns the object's structural role and, for edges, its
// endpoints.
func (s *Snapshot) Structure() metamodel.StructuralType { return s.structure.Kind }

// StructureDetail returns the full Structure value.
func (s *Snapshot) StructureDetail() Structure { return s.structure }

// Origin returns the edge's origin object id, if s is an edge.
func (s *Snapshot) Origin() (ident.ID, bool) {
	if s.structure.Kind != metamodel.Edge {
		return 0, false
	}
	return s.structure.Origin, true
}

// Target returns the edge's target object id, if s is an edge.
func (s *Snapshot) Target() (ident.ID, bool) {
	if s.structure.Kind != metamodel.Edge {
		return 0, false
	}
	return s.structure.Target, true
}

// Parent returns the object's parent object id, if any.
func (s *Snapshot) Parent() (ident.ID, bool) {
	if s.parent == nil {
		return 0, false
	}
	return *s.parent, true
}

// Children returns the object's children, in insertion order.
func (s *Snapshot) Children() []ident.ID {
	out := make([]ident.ID, len(s.children))
	copy(out, s.children)
	return out
}

// Attribute looks up an attribute value by name.
func (s *Snapshot) Attribute(name string) (value.Variant, bool) {
	v, ok := s.attributes[name]
	return v, ok
}

// Attributes returns a copy of the full attribute map.
func (s *Snapshot) Attributes() map[string]value.Variant {
	out := make(map[string]value.Variant, len(s.attributes))
	for k, v := range s.attributes {
		out[k] = v
	}
	return out
}

// Name renders the "name" attribute as a string, if present and
// convertible.
func (s *Snapshot) Name() (string, bool) {
	v, ok := s.attributes["name"]
	if !ok {
		return "", false
	}
	str, err := v.StringValue()
	if err != nil {
		return "", false
	}
	return str, true
}

// HasComponent reports whether s carries a named component.
func (s *Snapshot) HasComponent(name string) bool {
	_, ok := s.components[name]
	return ok
}

// HasTraitName reports whether s's type carries the named trait.
func (s *Snapshot) HasTraitName(name string) bool {
	if s.objType == nil {
		return false
	}
	return s.objType.HasTraitName(name)
}

// ID satisfies metamodel.ObjectView; it is the object id, since that is
// the identity frames and predicates index by.
func (s *Snapshot) ID() ident.ID { return s.objectID }

// Clone returns a deep copy of s, suitable as the basis for a mutation
// under a fresh snapshot id.
func (s *Snapshot) Clone(newSnapshotID ident.ID) *Snapshot {
	cp := &Snapshot{
		objectID:   s.objectID,
		snapshotID: newSnapshotID,
		objType:    s.objType,
		structure:  s.structure,
		attributes: make(map[string]value.Variant, len(s.attributes)),
		components: make(map[string]struct{}, len(s.components)),
	}
	for k, v := range s.attributes {
		cp.attributes[k] = v
	}
	for k := range s.components {
		cp.components[k] = struct{}{}
	}
	if s.parent != nil {
		p := *s.parent
		cp.parent = &p
	}
	cp.children = make([]ident.ID, len(s.children))
	copy(cp.children, s.children)
	return cp
}

// SetAttribute sets an attribute value. Intended for use by
// TransientFrame on an owned (mutable) snapshot only.
func (s *Snapshot) SetAttribute(name string, v value.Variant) {
	s.attributes[name] = v
}

// RemoveAttribute removes an attribute, if present.
func (s *Snapshot) RemoveAttribute(name string) {
	delete(s.attributes, name)
}

// SetParent sets or clears the parent reference.
func (s *Snapshot) SetParent(parent *ident.ID) {
	s.parent = parent
}

// AddChild appends a child id if not already present.
func (s *Snapshot) AddChild(child ident.ID) {
	for _, c := range s.children {
		if c == child {
			return
		}
	}
	s.children = append(s.children, child)
}

// RemoveChild removes a child id, if present.
func (s *Snapshot) RemoveChild(child ident.ID) {
	for i, c := range s.children {
		if c == child {
			s.children = append(s.children[:i], s.children[i+1:]...)
			return
		}
	}
}

// SetStructure replaces the structure (used when an edge is rewired).
func (s *Snapshot) SetStructure(st Structure) {
	s.structure = st
}

func (s *Snapshot) String() string {
	return fmt.Sprintf("Snapshot{object=%d snapshot=%d type=%s}", s.objectID, s.snapshotID, s.TypeName())
}
