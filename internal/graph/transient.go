package graph

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/moolen/poietic/internal/ident"
	"github.com/moolen/poietic/internal/metamodel"
	"github.com/moolen/poietic/internal/value"
)

// FrameState is the lifecycle state of a TransientFrame.
type FrameState int

const (
	StateTransient FrameState = iota
	StateAccepted
	StateDiscarded
)

func (s FrameState) String() string {
	switch s {
	case StateAccepted:
		return "accepted"
	case StateDiscarded:
		return "discarded"
	default:
		return "transient"
	}
}

// StructuralIntegrityErrorKind enumerates Phase A failures.
type StructuralIntegrityErrorKind int

const (
	BrokenStructureReference StructuralIntegrityErrorKind = iota
	BrokenParent
	BrokenChild
	ParentChildMismatch
	ParentChildCycle
	EdgeEndpointNotANode
)

func (k StructuralIntegrityErrorKind) String() string {
	switch k {
	case BrokenStructureReference:
		return "brokenStructureReference"
	case BrokenParent:
		return "brokenParent"
	case BrokenChild:
		return "brokenChild"
	case ParentChildMismatch:
		return "parentChildMismatch"
	case ParentChildCycle:
		return "parentChildCycle"
	case EdgeEndpointNotANode:
		return "edgeEndpointNotANode"
	default:
		return "unknown"
	}
}

// StructuralIntegrityError is a Phase A validation failure.
type StructuralIntegrityError struct {
	Kind     StructuralIntegrityErrorKind
	ObjectID ident.ID
}

func (e *StructuralIntegrityError) Error() string {
	return fmt.Sprintf("structural integrity violation on object %d: %s", e.ObjectID, e.Kind)
}

// TransientFrame is a copy-on-write, mutable working set of objects
// derived from an optional frozen parent frame. Every mutation is
// local until Accept commits it.
type TransientFrame struct {
	sessionID uuid.UUID

	idents *ident.Manager
	mm     *metamodel.Metamodel
	table  *SnapshotTable
	parent *Frame

	// objects holds the object's current snapshot. Entries that are
	// identical to the parent's snapshot (by pointer) are unowned; the
	// first Mutate call on such an entry clones it and marks it owned.
	objects map[ident.ID]*Snapshot
	owned   map[ident.ID]bool

	// order preserves insertion order of objects first touched in this
	// frame (for frames created empty, or objects newly created here).
	order []ident.ID

	removedObjects []ident.ID
	reservedIDs    []ident.ID

	hasChanges bool
	state      FrameState
}

// NewTransientFrame creates an empty transient frame (no parent).
func NewTransientFrame(idents *ident.Manager, mm *metamodel.Metamodel, table *SnapshotTable) *TransientFrame {
	return newTransientFrame(idents, mm, table, nil)
}

// DeriveTransientFrame creates a transient frame that starts as a
// shallow copy of parent: every object reference is shared until
// mutated.
func DeriveTransientFrame(idents *ident.Manager, mm *metamodel.Metamodel, table *SnapshotTable, parent *Frame) *TransientFrame {
	return newTransientFrame(idents, mm, table, parent)
}

func newTransientFrame(idents *ident.Manager, mm *metamodel.Metamodel, table *SnapshotTable, parent *Frame) *TransientFrame {
	tf := &TransientFrame{
		sessionID: uuid.New(),
		idents:    idents,
		mm:        mm,
		table:     table,
		parent:    parent,
		objects:   make(map[ident.ID]*Snapshot),
		owned:     make(map[ident.ID]bool),
	}
	if parent != nil {
		for _, sid := range parent.SnapshotIDs() {
			if snap, ok := table.Get(sid); ok {
				tf.objects[snap.ObjectID()] = snap
				tf.order = append(tf.order, snap.ObjectID())
			}
		}
	}
	return tf
}

// SessionID uniquely identifies this editing session, independent of
// the frame id it will eventually be accepted or discarded under.
func (tf *TransientFrame) SessionID() uuid.UUID { return tf.sessionID }

// HasChanges reports whether any mutation has occurred since creation.
func (tf *TransientFrame) HasChanges() bool { return tf.hasChanges }

// State returns the frame's lifecycle state.
func (tf *TransientFrame) State() FrameState { return tf.state }

// RemovedObjects returns the object ids that were present in the
// parent frame and have since been removed.
func (tf *TransientFrame) RemovedObjects() []ident.ID {
	out := make([]ident.ID, len(tf.removedObjects))
	copy(out, tf.removedObjects)
	return out
}

// Object returns the current snapshot for objectID.
func (tf *TransientFrame) Object(objectID ident.ID) (*Snapshot, bool) {
	snap, ok := tf.objects[objectID]
	return snap, ok
}

// Contains reports whether objectID is currently present.
func (tf *TransientFrame) Contains(objectID ident.ID) bool {
	_, ok := tf.objects[objectID]
	return ok
}

// AllObjects returns every current snapshot, in first-touched order.
func (tf *TransientFrame) AllObjects() []*Snapshot {
	out := make([]*Snapshot, 0, len(tf.objects))
	seen := make(map[ident.ID]bool, len(tf.order))
	for _, id := range tf.order {
		if snap, ok := tf.objects[id]; ok && !seen[id] {
			out = append(out, snap)
			seen[id] = true
		}
	}
	for id, snap := range tf.objects {
		if !seen[id] {
			out = append(out, snap)
			seen[id] = true
		}
	}
	return out
}

func (tf *TransientFrame) touch(id ident.ID) {
	for _, existing := range tf.order {
		if existing == id {
			return
		}
	}
	tf.order = append(tf.order, id)
}

// Create reserves fresh (or asserts the caller-supplied) object and
// snapshot ids, builds a new owned snapshot, and inserts it. Defaults:
// structure follows the type's declared structural role if not given.
func (tf *TransientFrame) Create(typ *metamodel.ObjectType, objectID, snapshotID *ident.ID, structure *Structure, attributes map[string]value.Variant, components map[string]struct{}) (ident.ID, error) {
	oid, err := tf.resolveOrReserve(objectID, ident.Object)
	if err != nil {
		return 0, err
	}
	sid, err := tf.resolveOrReserve(snapshotID, ident.Snapshot)
	if err != nil {
		return 0, err
	}

	var st Structure
	if structure != nil {
		st = *structure
	} else {
		st = Structure{Kind: typ.Structural}
	}

	snap := NewSnapshot(oid, sid, typ, st, attributes, components)
	tf.objects[oid] = snap
	tf.owned[oid] = true
	tf.touch(oid)
	tf.hasChanges = true
	return oid, nil
}

func (tf *TransientFrame) resolveOrReserve(id *ident.ID, typ ident.Type) (ident.ID, error) {
	if id == nil || *id == 0 {
		newID := tf.idents.ReserveNew(typ)
		tf.reservedIDs = append(tf.reservedIDs, newID)
		return newID, nil
	}
	ok, err := tf.idents.ReserveIfNeeded(*id, typ)
	if err != nil {
		return 0, err
	}
	if ok {
		tf.reservedIDs = append(tf.reservedIDs, *id)
	}
	return *id, nil
}

// Mutate returns a mutable snapshot for objectID, cloning it under a
// fresh snapshot id the first time it is called for that object (idempotent
// thereafter: repeated calls return the same owned snapshot).
func (tf *TransientFrame) Mutate(objectID ident.ID) (*Snapshot, error) {
	snap, ok := tf.objects[objectID]
	if !ok {
		return nil, &ident.UnknownIDError{ID: objectID}
	}
	if tf.owned[objectID] {
		return snap, nil
	}

	newSnapID := tf.idents.ReserveNew(ident.Snapshot)
	tf.reservedIDs = append(tf.reservedIDs, newSnapID)
	clone := snap.Clone(newSnapID)
	tf.objects[objectID] = clone
	tf.owned[objectID] = true
	tf.hasChanges = true
	return clone, nil
}

// Insert installs snap directly (for loader paths), reserving its ids
// as used rather than merely reserved.
func (tf *TransientFrame) Insert(snap *Snapshot) error {
	if tf.Contains(snap.ObjectID()) {
		return &ident.DuplicateIDError{ID: snap.ObjectID(), Context: "object already present in frame"}
	}
	if err := tf.idents.Use(snap.ObjectID(), ident.Object); err != nil {
		return err
	}
	if err := tf.idents.Use(snap.SnapshotID(), ident.Snapshot); err != nil {
		return err
	}
	tf.objects[snap.ObjectID()] = snap
	tf.owned[snap.ObjectID()] = true
	tf.touch(snap.ObjectID())
	tf.hasChanges = true
	return nil
}

// UnsafeInsert installs snap without touching the identity manager at
// all, for loader paths that manage identity reservation themselves.
func (tf *TransientFrame) UnsafeInsert(snap *Snapshot) {
	tf.objects[snap.ObjectID()] = snap
	tf.owned[snap.ObjectID()] = true
	tf.touch(snap.ObjectID())
	tf.hasChanges = true
}

// RemoveCascading removes objectID and transitively every child under
// the parent hierarchy, plus every edge incident on any removed object.
// Returns the full set of object ids removed.
func (tf *TransientFrame) RemoveCascading(objectID ident.ID) []ident.ID {
	toRemove := map[ident.ID]bool{}
	tf.collectCascade(objectID, toRemove)

	// Edges incident on anything being removed also go, including
	// transitively newly-exposed incident edges.
	changed := true
	for changed {
		changed = false
		for _, snap := range tf.AllObjects() {
			if toRemove[snap.ObjectID()] {
				continue
			}
			if snap.Structure() != metamodel.Edge {
				continue
			}
			origin, _ := snap.Origin()
			target, _ := snap.Target()
			if toRemove[origin] || toRemove[target] {
				toRemove[snap.ObjectID()] = true
				changed = true
			}
		}
	}

	var removed []ident.ID
	for id := range toRemove {
		removed = append(removed, id)
		tf.removeOne(id)
	}
	if len(removed) > 0 {
		tf.hasChanges = true
	}
	return removed
}

func (tf *TransientFrame) collectCascade(objectID ident.ID, acc map[ident.ID]bool) {
	if acc[objectID] {
		return
	}
	acc[objectID] = true
	snap, ok := tf.objects[objectID]
	if !ok {
		return
	}
	for _, child := range snap.Children() {
		tf.collectCascade(child, acc)
	}
}

func (tf *TransientFrame) removeOne(objectID ident.ID) {
	wasInParent := tf.parent != nil && tf.parent.Contains(objectID)
	if snap, ok := tf.objects[objectID]; ok {
		if parentID, hasParent := snap.Parent(); hasParent {
			if parentSnap, err := tf.Mutate(parentID); err == nil {
				parentSnap.RemoveChild(objectID)
			}
		}
	}
	delete(tf.objects, objectID)
	delete(tf.owned, objectID)
	if wasInParent {
		tf.removedObjects = append(tf.removedObjects, objectID)
	}
}

// AddChild appends child under parent, maintaining the two-way
// parent/child invariant atomically.
func (tf *TransientFrame) AddChild(child, parent ident.ID) error {
	childSnap, err := tf.Mutate(child)
	if err != nil {
		return err
	}
	parentSnap, err := tf.Mutate(parent)
	if err != nil {
		return err
	}
	p := parent
	childSnap.SetParent(&p)
	parentSnap.AddChild(child)
	tf.hasChanges = true
	return nil
}

// RemoveChild detaches child from parent.
func (tf *TransientFrame) RemoveChild(child, parent ident.ID) error {
	childSnap, err := tf.Mutate(child)
	if err != nil {
		return err
	}
	parentSnap, err := tf.Mutate(parent)
	if err != nil {
		return err
	}
	childSnap.SetParent(nil)
	parentSnap.RemoveChild(child)
	tf.hasChanges = true
	return nil
}

// SetParent reparents child to a new parent, detaching from any
// previous parent first.
func (tf *TransientFrame) SetParent(child, newParent ident.ID) error {
	childSnap, err := tf.Mutate(child)
	if err != nil {
		return err
	}
	if oldParent, ok := childSnap.Parent(); ok && oldParent != newParent {
		if err := tf.RemoveChild(child, oldParent); err != nil {
			return err
		}
	}
	return tf.AddChild(child, newParent)
}

// RemoveFromParent detaches child from its current parent, if any.
func (tf *TransientFrame) RemoveFromParent(child ident.ID) error {
	snap, ok := tf.objects[child]
	if !ok {
		return &ident.UnknownIDError{ID: child}
	}
	parentID, hasParent := snap.Parent()
	if !hasParent {
		return nil
	}
	return tf.RemoveChild(child, parentID)
}

// SetAttribute triggers Mutate if needed and sets the attribute on the
// resulting owned snapshot.
func (tf *TransientFrame) SetAttribute(objectID ident.ID, name string, v value.Variant) error {
	snap, err := tf.Mutate(objectID)
	if err != nil {
		return err
	}
	snap.SetAttribute(name, v)
	return nil
}

// AsFrameView adapts tf to metamodel.FrameView for use by predicates,
// edge rules, and constraints during validation.
func (tf *TransientFrame) AsFrameView() metamodel.FrameView {
	return transientViewAdapter{tf: tf}
}

type transientViewAdapter struct{ tf *TransientFrame }

func (a transientViewAdapter) Object(id ident.ID) (metamodel.ObjectView, bool) {
	snap, ok := a.tf.Object(id)
	if !ok {
		return nil, false
	}
	return snap, true
}

func (a transientViewAdapter) AllObjects() []metamodel.ObjectView {
	snaps := a.tf.AllObjects()
	out := make([]metamodel.ObjectView, len(snaps))
	for i, s := range snaps {
		out[i] = s
	}
	return out
}

func (a transientViewAdapter) Outgoing(id ident.ID) []metamodel.ObjectView {
	var out []metamodel.ObjectView
	for _, s := range a.tf.AllObjects() {
		if o, ok := s.Origin(); ok && o == id {
			out = append(out, s)
		}
	}
	return out
}

func (a transientViewAdapter) Incoming(id ident.ID) []metamodel.ObjectView {
	var out []metamodel.ObjectView
	for _, s := range a.tf.AllObjects() {
		if t, ok := s.Target(); ok && t == id {
			out = append(out, s)
		}
	}
	return out
}

// BrokenReferences returns the Phase A structural integrity violations
// in tf: dangling edge endpoints, dangling parent/child references,
// parent/child mismatches, and parent-forest cycles.
func (tf *TransientFrame) BrokenReferences() []*StructuralIntegrityError {
	var errs []*StructuralIntegrityError
	objects := tf.AllObjects()

	for _, snap := range objects {
		if snap.Structure() == metamodel.Edge {
			origin, _ := snap.Origin()
			target, _ := snap.Target()
			originSnap, originOK := tf.objects[origin]
			targetSnap, targetOK := tf.objects[target]
			if !originOK || !targetOK {
				errs = append(errs, &StructuralIntegrityError{Kind: BrokenStructureReference, ObjectID: snap.ObjectID()})
				continue
			}
			if originSnap.Structure() != metamodel.Node || targetSnap.Structure() != metamodel.Node {
				errs = append(errs, &StructuralIntegrityError{Kind: EdgeEndpointNotANode, ObjectID: snap.ObjectID()})
			}
		}

		if parentID, ok := snap.Parent(); ok {
			parentSnap, exists := tf.objects[parentID]
			if !exists {
				errs = append(errs, &StructuralIntegrityError{Kind: BrokenParent, ObjectID: snap.ObjectID()})
				continue
			}
			found := false
			for _, c := range parentSnap.Children() {
				if c == snap.ObjectID() {
					found = true
					break
				}
			}
			if !found {
				errs = append(errs, &StructuralIntegrityError{Kind: ParentChildMismatch, ObjectID: snap.ObjectID()})
			}
		}

		for _, childID := range snap.Children() {
			childSnap, exists := tf.objects[childID]
			if !exists {
				errs = append(errs, &StructuralIntegrityError{Kind: BrokenChild, ObjectID: snap.ObjectID()})
				continue
			}
			if p, ok := childSnap.Parent(); !ok || p != snap.ObjectID() {
				errs = append(errs, &StructuralIntegrityError{Kind: ParentChildMismatch, ObjectID: childSnap.ObjectID()})
			}
		}
	}

	if cyc := tf.findParentCycle(); cyc != 0 {
		errs = append(errs, &StructuralIntegrityError{Kind: ParentChildCycle, ObjectID: cyc})
	}

	return errs
}

func (tf *TransientFrame) findParentCycle() ident.ID {
	visitedGlobal := map[ident.ID]bool{}
	for _, snap := range tf.AllObjects() {
		if visitedGlobal[snap.ObjectID()] {
			continue
		}
		path := map[ident.ID]bool{}
		cur := snap.ObjectID()
		for {
			if path[cur] {
				return cur
			}
			path[cur] = true
			visitedGlobal[cur] = true
			curSnap, ok := tf.objects[cur]
			if !ok {
				break
			}
			parentID, hasParent := curSnap.Parent()
			if !hasParent {
				break
			}
			cur = parentID
		}
	}
	return 0
}

// MarkAccepted transitions the frame to accepted state.
func (tf *TransientFrame) MarkAccepted() { tf.state = StateAccepted }

// MarkDiscarded transitions the frame to discarded state.
func (tf *TransientFrame) MarkDiscarded() { tf.state = StateDiscarded }

// ReservedIDs returns every id this frame has reserved (for release on
// discard, or promotion to used on accept).
func (tf *TransientFrame) ReservedIDs() []ident.ID {
	out := make([]ident.ID, len(tf.reservedIDs))
	copy(out, tf.reservedIDs)
	return out
}

// Metamodel returns the metamodel this frame validates against.
func (tf *TransientFrame) Metamodel() *metamodel.Metamodel { return tf.mm }

// Table returns the shared snapshot table.
func (tf *TransientFrame) Table() *SnapshotTable { return tf.table }

// Owned reports whether objectID's current snapshot was created or
// mutated within this frame (as opposed to shared, unmodified, from
// the parent).
func (tf *TransientFrame) Owned(objectID ident.ID) bool { return tf.owned[objectID] }
