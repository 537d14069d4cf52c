package graph

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/moolen/poietic/internal/ident"
)

// DuplicateSnapshotError is returned by Insert when the snapshot id is
// already present in the table.
type DuplicateSnapshotError struct {
	SnapshotID ident.ID
}

func (e *DuplicateSnapshotError) Error() string {
	return fmt.Sprintf("duplicate snapshot id %d", e.SnapshotID)
}

// UnknownSnapshotError is returned by operations that require an
// existing entry.
type UnknownSnapshotError struct {
	SnapshotID ident.ID
}

func (e *UnknownSnapshotError) Error() string {
	return fmt.Sprintf("unknown snapshot id %d", e.SnapshotID)
}

type tableSlot struct {
	snapshot *Snapshot
	refCount int
}

// SnapshotTable is the single owner of snapshot storage, shared by
// every frame of a design. Frames hold only ids; the table tracks how
// many frames currently reference each snapshot.
//
// Entries preserve insertion order with gaps: removed slots are left
// as tombstones (nil) rather than compacted, so that iterators started
// before a removal are not disturbed by index shifts. This mirrors a
// generational-index array backed by a hashmap for id→index lookup.
//
// An optional bounded LRU sits in front of the map as a secondary index
// for Get: eviction from it never loses data (the slots/index pair
// remains authoritative), it only bounds how many *Snapshot pointers a
// long-lived design keeps warm for frequently-accessed, low-refcount
// historical entries.
type SnapshotTable struct {
	slots []*tableSlot
	index map[ident.ID]int
	cache *lru.Cache[ident.ID, *Snapshot]
}

// NewSnapshotTable creates an empty table with no secondary cache.
func NewSnapshotTable() *SnapshotTable {
	return &SnapshotTable{index: make(map[ident.ID]int)}
}

// NewSnapshotTableWithCache creates an empty table whose Get lookups are
// fronted by a bounded LRU of the given size. size <= 0 disables the
// cache, equivalent to NewSnapshotTable.
func NewSnapshotTableWithCache(size int) *SnapshotTable {
	t := NewSnapshotTable()
	if size <= 0 {
		return t
	}
	c, err := lru.New[ident.ID, *Snapshot](size)
	if err != nil {
		return t
	}
	t.cache = c
	return t
}

// Insert adds a new snapshot with refcount 1. Fails if the snapshot id
// already exists.
func (t *SnapshotTable) Insert(snap *Snapshot) error {
	if _, exists := t.index[snap.SnapshotID()]; exists {
		return &DuplicateSnapshotError{SnapshotID: snap.SnapshotID()}
	}
	t.index[snap.SnapshotID()] = len(t.slots)
	t.slots = append(t.slots, &tableSlot{snapshot: snap, refCount: 1})
	return nil
}

// InsertOrRetain inserts snap with refcount 1 if absent, or increments
// the refcount of the existing entry if present.
func (t *SnapshotTable) InsertOrRetain(snap *Snapshot) {
	if idx, exists := t.index[snap.SnapshotID()]; exists {
		t.slots[idx].refCount++
		return
	}
	t.index[snap.SnapshotID()] = len(t.slots)
	t.slots = append(t.slots, &tableSlot{snapshot: snap, refCount: 1})
}

// Retain increments the refcount of an existing entry.
func (t *SnapshotTable) Retain(id ident.ID) error {
	idx, exists := t.index[id]
	if !exists {
		return &UnknownSnapshotError{SnapshotID: id}
	}
	t.slots[idx].refCount++
	return nil
}

// Release decrements the refcount of an existing entry, removing it at
// zero. Returns whether the entry was removed.
func (t *SnapshotTable) Release(id ident.ID) (bool, error) {
	idx, exists := t.index[id]
	if !exists {
		return false, &UnknownSnapshotError{SnapshotID: id}
	}
	t.slots[idx].refCount--
	if t.slots[idx].refCount <= 0 {
		t.slots[idx] = nil
		delete(t.index, id)
		if t.cache != nil {
			t.cache.Remove(id)
		}
		return true, nil
	}
	return false, nil
}

// Remove force-removes an entry regardless of refcount.
func (t *SnapshotTable) Remove(id ident.ID) error {
	idx, exists := t.index[id]
	if !exists {
		return &UnknownSnapshotError{SnapshotID: id}
	}
	t.slots[idx] = nil
	delete(t.index, id)
	if t.cache != nil {
		t.cache.Remove(id)
	}
	return nil
}

// Replace installs snap under its own snapshot id, resetting its
// refcount to 1 (used when the writer/loader reinstalls a snapshot
// that already exists, e.g. during store reload).
func (t *SnapshotTable) Replace(snap *Snapshot) {
	if idx, exists := t.index[snap.SnapshotID()]; exists {
		t.slots[idx] = &tableSlot{snapshot: snap, refCount: 1}
	} else {
		t.index[snap.SnapshotID()] = len(t.slots)
		t.slots = append(t.slots, &tableSlot{snapshot: snap, refCount: 1})
	}
	if t.cache != nil {
		t.cache.Add(snap.SnapshotID(), snap)
	}
}

// Contains reports whether id is present.
func (t *SnapshotTable) Contains(id ident.ID) bool {
	_, exists := t.index[id]
	return exists
}

// Get returns the snapshot for id, if present.
func (t *SnapshotTable) Get(id ident.ID) (*Snapshot, bool) {
	if t.cache != nil {
		if snap, ok := t.cache.Get(id); ok {
			return snap, true
		}
	}
	idx, exists := t.index[id]
	if !exists {
		return nil, false
	}
	snap := t.slots[idx].snapshot
	if t.cache != nil {
		t.cache.Add(id, snap)
	}
	return snap, true
}

// RefCount returns the current refcount for id, or 0 if absent.
func (t *SnapshotTable) RefCount(id ident.ID) int {
	idx, exists := t.index[id]
	if !exists {
		return 0
	}
	return t.slots[idx].refCount
}

// Len returns the number of live entries.
func (t *SnapshotTable) Len() int {
	return len(t.index)
}

// All iterates live snapshots in insertion order, skipping gaps left by
// removed entries.
func (t *SnapshotTable) All() []*Snapshot {
	out := make([]*Snapshot, 0, len(t.index))
	for _, slot := range t.slots {
		if slot != nil {
			out = append(out, slot.snapshot)
		}
	}
	return out
}
