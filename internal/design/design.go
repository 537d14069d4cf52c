package design

import (
	"github.com/moolen/poietic/internal/graph"
	"github.com/moolen/poietic/internal/ident"
	"github.com/moolen/poietic/internal/logging"
	"github.com/moolen/poietic/internal/metamodel"
	"github.com/moolen/poietic/internal/metrics"
	"github.com/moolen/poietic/internal/validate"
)

// Stats summarizes a design's current size, mirroring the shape of the
// graph statistics the teacher's query layer reports for its own
// (Kubernetes-resource) graph.
type Stats struct {
	FrameCount     int
	SnapshotCount  int
	ObjectTypeCount int
	UndoableCount  int
	RedoableCount  int
}

// Design is the top-level container: it owns the metamodel, the
// identity manager, and the snapshot table, and tracks frame history.
//
// Per the single-threaded cooperative scheduling model this package
// targets, a Design is not safe for concurrent mutation from multiple
// goroutines; callers that need that must serialize externally.
type Design struct {
	mm      *metamodel.Metamodel
	idents  *ident.Manager
	table   *graph.SnapshotTable
	checker *validate.ConstraintChecker
	metrics *metrics.Recorder
	logger  *logging.Logger

	frames         map[ident.ID]*graph.Frame
	undoableFrames []ident.ID
	redoableFrames []ident.ID
	currentFrameID *ident.ID
	namedFrames    map[string]ident.ID
}

// New creates an empty design over the given metamodel. rec may be
// nil, in which case metric recording is a no-op.
func New(mm *metamodel.Metamodel, rec *metrics.Recorder) *Design {
	return NewWithCacheSize(mm, rec, 0)
}

// NewWithCacheSize creates an empty design whose snapshot table fronts
// its lookups with a bounded LRU of cacheSize entries. cacheSize <= 0
// disables the cache, equivalent to New.
func NewWithCacheSize(mm *metamodel.Metamodel, rec *metrics.Recorder, cacheSize int) *Design {
	return &Design{
		mm:          mm,
		idents:      ident.NewManager(),
		table:       graph.NewSnapshotTableWithCache(cacheSize),
		checker:     validate.NewConstraintChecker(mm),
		metrics:     rec,
		logger:      logging.GetLogger("design"),
		frames:      make(map[ident.ID]*graph.Frame),
		namedFrames: make(map[string]ident.ID),
	}
}

// Metamodel returns the design's schema.
func (d *Design) Metamodel() *metamodel.Metamodel { return d.mm }

// Identities returns the shared identity manager.
func (d *Design) Identities() *ident.Manager { return d.idents }

// Table returns the shared snapshot table.
func (d *Design) Table() *graph.SnapshotTable { return d.table }

// CreateFrame starts a new transient frame, either empty or deriving
// from an existing accepted frame.
func (d *Design) CreateFrame(deriving *ident.ID) (*graph.TransientFrame, error) {
	if deriving == nil {
		return graph.NewTransientFrame(d.idents, d.mm, d.table), nil
	}
	parent, ok := d.frames[*deriving]
	if !ok {
		return nil, &UnknownFrameError{FrameID: *deriving}
	}
	return graph.DeriveTransientFrame(d.idents, d.mm, d.table, parent), nil
}

// Accept validates tf and, on success, freezes it into a new Frame
// that becomes the new current frame, clearing any redo history.
//
// frameID always comes from d.idents.ReserveNew, which the identity
// manager guarantees is fresh across the whole object namespace, so
// it can never collide with an id NameFrame has already bound to a
// name; Undo and Redo only reorder ids already present in
// undoableFrames/redoableFrames and never introduce new ones. Taken
// together with NameFrame's own check, a named frame can therefore
// never re-enter undoableFrames, redoableFrames, or currentFrameID.
func (d *Design) Accept(tf *graph.TransientFrame) (*graph.Frame, error) {
	if err := d.checker.Validate(tf); err != nil {
		d.metrics.RecordValidationError(validationPhase(err))
		d.logger.Debug("frame rejected: %v", err)
		return nil, err
	}

	frameID := d.idents.ReserveNew(ident.Object)
	if err := d.idents.UseReserved(frameID); err != nil {
		return nil, err
	}

	snapshots := tf.AllObjects()
	snapshotIDs := make([]ident.ID, 0, len(snapshots))
	for _, snap := range snapshots {
		d.table.InsertOrRetain(snap)
		snapshotIDs = append(snapshotIDs, snap.SnapshotID())
	}

	for _, id := range tf.ReservedIDs() {
		if d.idents.IsReserved(id) {
			if err := d.idents.UseReserved(id); err != nil {
				d.logger.Warn("failed to promote reserved id %d on accept: %v", id, err)
			}
		}
	}

	frame := graph.NewFrame(frameID, d.table, snapshotIDs)
	d.frames[frameID] = frame
	d.undoableFrames = append(d.undoableFrames, frameID)
	d.redoableFrames = nil
	d.currentFrameID = &frameID
	tf.MarkAccepted()

	d.metrics.RecordFrameAccepted()
	d.metrics.SetSnapshotTableSize(d.table.Len())
	d.logger.Debug("accepted frame %d (%d snapshots)", frameID, len(snapshotIDs))
	return frame, nil
}

// Discard releases tf's reservations and abandons it; it never joins
// history.
func (d *Design) Discard(tf *graph.TransientFrame) {
	for _, id := range tf.ReservedIDs() {
		if d.idents.IsReserved(id) {
			if err := d.idents.Release(id); err != nil {
				d.logger.Warn("failed to release reserved id %d on discard: %v", id, err)
			}
		}
	}
	tf.MarkDiscarded()
	d.metrics.RecordFrameDiscarded()
}

// Undo moves currentFrameID back to an earlier frame in the undoable
// history, pushing everything after it onto the front of the redoable
// stack so that redoableFrames stays in chronological order.
func (d *Design) Undo(to ident.ID) error {
	idx := indexOf(d.undoableFrames, to)
	if idx < 0 {
		return &NotUndoableError{FrameID: to}
	}
	moved := append([]ident.ID(nil), d.undoableFrames[idx+1:]...)
	d.undoableFrames = d.undoableFrames[:idx+1]
	d.redoableFrames = append(moved, d.redoableFrames...)
	target := to
	d.currentFrameID = &target
	return nil
}

// Redo moves currentFrameID forward to a frame previously undone.
func (d *Design) Redo(to ident.ID) error {
	idx := indexOf(d.redoableFrames, to)
	if idx < 0 {
		return &NotRedoableError{FrameID: to}
	}
	moved := append([]ident.ID(nil), d.redoableFrames[:idx+1]...)
	d.redoableFrames = d.redoableFrames[idx+1:]
	d.undoableFrames = append(d.undoableFrames, moved...)
	target := to
	d.currentFrameID = &target
	return nil
}

func indexOf(ids []ident.ID, target ident.ID) int {
	for i, id := range ids {
		if id == target {
			return i
		}
	}
	return -1
}

// Frame looks up an accepted frame by id.
func (d *Design) Frame(id ident.ID) (*graph.Frame, bool) {
	f, ok := d.frames[id]
	return f, ok
}

// FrameByName looks up an accepted frame by its bookmark name.
func (d *Design) FrameByName(name string) (*graph.Frame, bool) {
	id, ok := d.namedFrames[name]
	if !ok {
		return nil, false
	}
	return d.Frame(id)
}

// ContainsFrame reports whether id names an accepted frame.
func (d *Design) ContainsFrame(id ident.ID) bool {
	_, ok := d.frames[id]
	return ok
}

// NameFrame binds name to an existing accepted frame id. The id must
// have already fallen out of the live undo/redo chain: named frames
// never overlap with undoableFrames, redoableFrames, or
// currentFrameID, so a caller must name a frame only after it is no
// longer reachable by Undo/Redo from the current position.
func (d *Design) NameFrame(name string, id ident.ID) error {
	if _, ok := d.frames[id]; !ok {
		return &UnknownFrameError{FrameID: id}
	}
	if d.currentFrameID != nil && *d.currentFrameID == id {
		return &FrameInHistoryError{FrameID: id}
	}
	if indexOf(d.undoableFrames, id) >= 0 {
		return &FrameInHistoryError{FrameID: id}
	}
	if indexOf(d.redoableFrames, id) >= 0 {
		return &FrameInHistoryError{FrameID: id}
	}
	d.namedFrames[name] = id
	return nil
}

// NamedFrames returns a copy of the name -> frame id bookmarks.
func (d *Design) NamedFrames() map[string]ident.ID {
	out := make(map[string]ident.ID, len(d.namedFrames))
	for k, v := range d.namedFrames {
		out[k] = v
	}
	return out
}

// Snapshot looks up a snapshot by its snapshot id.
func (d *Design) Snapshot(id ident.ID) (*graph.Snapshot, bool) {
	return d.table.Get(id)
}

// ReferenceCount returns the snapshot table's refcount for a snapshot id.
func (d *Design) ReferenceCount(snapshotID ident.ID) int {
	return d.table.RefCount(snapshotID)
}

// CurrentFrameID returns the design's current frame, if any. History
// being non-empty implies this is always set.
func (d *Design) CurrentFrameID() (ident.ID, bool) {
	if d.currentFrameID == nil {
		return 0, false
	}
	return *d.currentFrameID, true
}

// UndoableFrames returns the chronological list of frames that can be
// undone to, oldest first.
func (d *Design) UndoableFrames() []ident.ID {
	out := make([]ident.ID, len(d.undoableFrames))
	copy(out, d.undoableFrames)
	return out
}

// RedoableFrames returns the chronological list of frames that can be
// redone to.
func (d *Design) RedoableFrames() []ident.ID {
	out := make([]ident.ID, len(d.redoableFrames))
	copy(out, d.redoableFrames)
	return out
}

// ConstraintChecker returns the design's validator, for callers (e.g.
// the rawstore loader) that need to validate frames directly.
func (d *Design) ConstraintChecker() *validate.ConstraintChecker { return d.checker }

// InstallFrame registers an already-built, already-validated Frame
// under id. It is intended for the rawstore loader, which constructs
// Frame values directly from reloaded snapshots rather than deriving
// them from a TransientFrame via Accept.
func (d *Design) InstallFrame(id ident.ID, frame *graph.Frame) {
	d.frames[id] = frame
}

// InstallHistory replaces the design's undo/redo history and current
// frame wholesale. Intended for the rawstore loader, after every frame
// named by undoable/redoable/current has been installed via
// InstallFrame.
func (d *Design) InstallHistory(undoable, redoable []ident.ID, current *ident.ID) {
	d.undoableFrames = append([]ident.ID(nil), undoable...)
	d.redoableFrames = append([]ident.ID(nil), redoable...)
	d.currentFrameID = current
}

// Stats summarizes the design's current size.
func (d *Design) Stats() Stats {
	return Stats{
		FrameCount:      len(d.frames),
		SnapshotCount:   d.table.Len(),
		ObjectTypeCount: len(d.mm.Types()),
		UndoableCount:   len(d.undoableFrames),
		RedoableCount:   len(d.redoableFrames),
	}
}

func validationPhase(err error) string {
	switch err.(type) {
	case *graph.StructuralIntegrityError:
		return "structural"
	case *validate.TypeError:
		return "type"
	case *validate.EdgeRuleViolation:
		return "edge"
	case *validate.ConstraintViolationError:
		return "constraint"
	default:
		return "unknown"
	}
}
