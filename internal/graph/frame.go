package graph

import (
	"github.com/moolen/poietic/internal/ident"
	"github.com/moolen/poietic/internal/metamodel"
)

// Frame is an immutable, accepted version of the whole object graph: a
// frame id plus the ordered list of snapshot ids that belong to it. Its
// snapshot instances are shared with the SnapshotTable via refcounts,
// so holding a Frame keeps its snapshots alive.
type Frame struct {
	id          ident.ID
	table       *SnapshotTable
	snapshotIDs []ident.ID
	byObject    map[ident.ID]ident.ID // object id -> snapshot id
}

// NewFrame builds a frozen frame over the given snapshot ids, in
// insertion order. Every id must already be present in table.
func NewFrame(id ident.ID, table *SnapshotTable, snapshotIDs []ident.ID) *Frame {
	f := &Frame{
		id:          id,
		table:       table,
		snapshotIDs: append([]ident.ID(nil), snapshotIDs...),
		byObject:    make(map[ident.ID]ident.ID, len(snapshotIDs)),
	}
	for _, sid := range snapshotIDs {
		if snap, ok := table.Get(sid); ok {
			f.byObject[snap.ObjectID()] = sid
		}
	}
	return f
}

// ID returns the frame's own id.
func (f *Frame) ID() ident.ID { return f.id }

// SnapshotIDs returns the frame's snapshot ids, in insertion order.
func (f *Frame) SnapshotIDs() []ident.ID {
	out := make([]ident.ID, len(f.snapshotIDs))
	copy(out, f.snapshotIDs)
	return out
}

// Snapshots iterates the frame's snapshots in insertion order.
func (f *Frame) Snapshots() []*Snapshot {
	out := make([]*Snapshot, 0, len(f.snapshotIDs))
	for _, sid := range f.snapshotIDs {
		if snap, ok := f.table.Get(sid); ok {
			out = append(out, snap)
		}
	}
	return out
}

// Object looks up the current snapshot for an object id.
func (f *Frame) Object(id ident.ID) (*Snapshot, bool) {
	sid, ok := f.byObject[id]
	if !ok {
		return nil, false
	}
	return f.table.Get(sid)
}

// Contains reports whether objectID is present in the frame.
func (f *Frame) Contains(objectID ident.ID) bool {
	_, ok := f.byObject[objectID]
	return ok
}

// Node returns the snapshot for objectID if it is present and a node.
func (f *Frame) Node(objectID ident.ID) (*Snapshot, bool) {
	snap, ok := f.Object(objectID)
	if !ok || snap.Structure() != metamodel.Node {
		return nil, false
	}
	return snap, true
}

// Edge returns the snapshot for objectID if it is present and an edge.
func (f *Frame) Edge(objectID ident.ID) (*Snapshot, bool) {
	snap, ok := f.Object(objectID)
	if !ok || snap.Structure() != metamodel.Edge {
		return nil, false
	}
	return snap, true
}

// Incoming returns edge snapshots whose target is the given object id.
func (f *Frame) Incoming(target ident.ID) []*Snapshot {
	var out []*Snapshot
	for _, snap := range f.Snapshots() {
		if t, ok := snap.Target(); ok && t == target {
			out = append(out, snap)
		}
	}
	return out
}

// Outgoing returns edge snapshots whose origin is the given object id.
func (f *Frame) Outgoing(origin ident.ID) []*Snapshot {
	var out []*Snapshot
	for _, snap := range f.Snapshots() {
		if o, ok := snap.Origin(); ok && o == origin {
			out = append(out, snap)
		}
	}
	return out
}

// Hood returns the neighbourhood of objectID: the other-endpoint
// objects reachable via edges in the given direction that satisfy
// edgePredicate (nil matches every edge).
func (f *Frame) Hood(objectID ident.ID, direction metamodel.Direction, edgePredicate metamodel.Predicate) []*Snapshot {
	var edges []*Snapshot
	if direction == metamodel.Outgoing {
		edges = f.Outgoing(objectID)
	} else {
		edges = f.Incoming(objectID)
	}

	view := f.AsFrameView()
	var out []*Snapshot
	for _, e := range edges {
		if edgePredicate != nil && !edgePredicate.Match(e, view) {
			continue
		}
		var otherID ident.ID
		var ok bool
		if direction == metamodel.Outgoing {
			otherID, ok = e.Target()
		} else {
			otherID, ok = e.Origin()
		}
		if !ok {
			continue
		}
		if other, found := f.Object(otherID); found {
			out = append(out, other)
		}
	}
	return out
}

// AllObjects satisfies metamodel.FrameView.
func (f *Frame) AllObjects() []metamodel.ObjectView {
	snaps := f.Snapshots()
	out := make([]metamodel.ObjectView, len(snaps))
	for i, s := range snaps {
		out[i] = s
	}
	return out
}

// metamodel.FrameView.Object must return (ObjectView, bool); Frame also
// exposes the concrete *Snapshot overload above, so we give the
// interface method a distinct name at the call site via an adapter.
type frameViewAdapter struct{ f *Frame }

func (a frameViewAdapter) Object(id ident.ID) (metamodel.ObjectView, bool) {
	snap, ok := a.f.Object(id)
	if !ok {
		return nil, false
	}
	return snap, true
}

func (a frameViewAdapter) AllObjects() []metamodel.ObjectView { return a.f.AllObjects() }

func (a frameViewAdapter) Outgoing(id ident.ID) []metamodel.ObjectView {
	snaps := a.f.Outgoing(id)
	out := make([]metamodel.ObjectView, len(snaps))
	for i, s := range snaps {
		out[i] = s
	}
	return out
}

func (a frameViewAdapter) Incoming(id ident.ID) []metamodel.ObjectView {
	snaps := a.f.Incoming(id)
	out := make([]metamodel.ObjectView, len(snaps))
	for i, s := range snaps {
		out[i] = s
	}
	return out
}

// AsFrameView adapts f to metamodel.FrameView, for passing to
// predicates, edge rules, and constraints.
func (f *Frame) AsFrameView() metamodel.FrameView {
	return frameViewAdapter{f: f}
}
