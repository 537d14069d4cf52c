package rawstore

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/moolen/poietic/internal/design"
	"github.com/moolen/poietic/internal/graph"
	"github.com/moolen/poietic/internal/ident"
	"github.com/moolen/poietic/internal/metamodel"
	"github.com/moolen/poietic/internal/value"
)

// loadingContext funnels every raw id reference a RawDesign contains
// (JSON number, numeric string, or symbolic name string) through the
// identity manager, reserving a fresh id the first time a symbolic
// name is seen and reusing it for every later reference to the same
// name within the same load.
type loadingContext struct {
	idents  *ident.Manager
	names   map[string]ident.ID
	touched []ident.ID
}

func newLoadingContext(idents *ident.Manager) *loadingContext {
	return &loadingContext{idents: idents, names: make(map[string]ident.ID)}
}

func (c *loadingContext) resolveID(raw interface{}, typ ident.Type, path string) (ident.ID, error) {
	switch v := raw.(type) {
	case nil:
		return 0, &MissingPropertyError{Name: "id", Path: path}
	case float64:
		return c.registerNumeric(ident.ID(v), typ, path)
	case int:
		return c.registerNumeric(ident.ID(v), typ, path)
	case int64:
		return c.registerNumeric(ident.ID(v), typ, path)
	case uint64:
		return c.registerNumeric(ident.ID(v), typ, path)
	case ident.ID:
		return c.registerNumeric(v, typ, path)
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, &TypeMismatchError{Expected: "integer id", Path: path}
		}
		return c.registerNumeric(ident.ID(n), typ, path)
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return c.registerNumeric(ident.ID(n), typ, path)
		}
		if id, ok := c.names[v]; ok {
			return id, nil
		}
		id := c.idents.ReserveNew(typ)
		c.names[v] = id
		c.touched = append(c.touched, id)
		return id, nil
	default:
		return 0, &TypeMismatchError{Expected: "id reference (number or string)", Path: path}
	}
}

func (c *loadingContext) registerNumeric(id ident.ID, typ ident.Type, path string) (ident.ID, error) {
	ok, err := c.idents.ReserveIfNeeded(id, typ)
	if err != nil {
		return 0, &TypeMismatchError{Expected: fmt.Sprintf("%s id", typ), Path: path}
	}
	if ok {
		c.touched = append(c.touched, id)
	}
	return id, nil
}

// promote transitions every id this context touched from reserved to
// used, now that loading has completed without error. Ids already used
// (referenced more than once across the load) are left alone.
func (c *loadingContext) promote() {
	for _, id := range c.touched {
		if c.idents.IsReserved(id) {
			_ = c.idents.UseReserved(id)
		}
	}
}

// Loader installs a RawDesign into a design.Design: it resolves every
// identity reference, rebuilds snapshots and frames, validates each
// frame against the design's metamodel, and finally installs the
// undo/redo history and named-frame bookmarks.
type Loader struct {
	design *design.Design
}

// NewLoader constructs a Loader targeting an existing, empty Design.
// The Design's metamodel must already be populated; Load does not
// build a metamodel from the store, only cross-checks its declared
// name.
func NewLoader(d *design.Design) *Loader {
	return &Loader{design: d}
}

// Load installs raw into the target design. On any error the target
// design may be left partially populated; callers that need atomicity
// should load into a freshly constructed Design and discard it on
// failure.
func (l *Loader) Load(raw *RawDesign) error {
	mm := l.design.Metamodel()
	if raw.Metamodel != "" && raw.Metamodel != mm.Name {
		return fmt.Errorf("rawstore: design metamodel %q does not match store metamodel %q", mm.Name, raw.Metamodel)
	}

	ctx := newLoadingContext(l.design.Identities())
	table := l.design.Table()

	snapshotByID := make(map[ident.ID]*graph.Snapshot, len(raw.Snapshots))

	// Build every snapshot up front. Table insertion happens in the
	// frame-building pass below, where refcounts can be tied to actual
	// frame membership instead of a blanket 1 per snapshot.
	for i, rs := range raw.Snapshots {
		path := fmt.Sprintf("$.snapshots[%d]", i)
		objID, err := ctx.resolveID(rs.ID, ident.Object, path+".id")
		if err != nil {
			return err
		}
		snapID, err := ctx.resolveID(rs.SnapshotID, ident.Snapshot, path+".snapshot_id")
		if err != nil {
			return err
		}
		if _, exists := snapshotByID[snapID]; exists {
			return &DataCorruptedError{Detail: fmt.Sprintf("%s: duplicate snapshot id %d", path, snapID)}
		}

		typ, err := mm.Type(rs.Type)
		if err != nil {
			return err
		}
		st, err := metamodel.ParseStructuralType(rs.StructuralType)
		if err != nil {
			return &TypeMismatchError{Expected: "structural type", Path: path + ".structural_type"}
		}
		if st != typ.Structural {
			return &TypeMismatchError{Expected: typ.Structural.String(), Path: path + ".structural_type"}
		}

		var structure graph.Structure
		switch st {
		case metamodel.Edge:
			if rs.From == nil {
				return &MissingPropertyError{Name: "from", Path: path}
			}
			if rs.To == nil {
				return &MissingPropertyError{Name: "to", Path: path}
			}
			origin, err := ctx.resolveID(rs.From, ident.Object, path+".from")
			if err != nil {
				return err
			}
			target, err := ctx.resolveID(rs.To, ident.Object, path+".to")
			if err != nil {
				return err
			}
			structure = graph.EdgeStructure(origin, target)
		case metamodel.Node:
			structure = graph.NodeStructure()
		default:
			structure = graph.UnstructuredStructure()
		}

		attributes := make(map[string]value.Variant, len(rs.Attributes))
		for name, payload := range rs.Attributes {
			v, err := value.Unmarshal(payload)
			if err != nil {
				return &DataCorruptedError{Detail: fmt.Sprintf("%s.attributes[%s]: %v", path, name, err)}
			}
			attributes[name] = v
		}

		snap := graph.NewSnapshot(objID, snapID, typ, structure, attributes, nil)

		if rs.Parent != nil {
			parentID, err := ctx.resolveID(rs.Parent, ident.Object, path+".parent")
			if err != nil {
				return err
			}
			snap.SetParent(&parentID)
		}
		for j, childRef := range rs.Children {
			childID, err := ctx.resolveID(childRef, ident.Object, fmt.Sprintf("%s.children[%d]", path, j))
			if err != nil {
				return err
			}
			snap.AddChild(childID)
		}

		snapshotByID[snapID] = snap
	}

	// Build frames, tying snapshot table refcounts to actual membership.
	seenFrame := make(map[ident.ID]bool, len(raw.Frames))
	frames := make(map[ident.ID]*graph.Frame, len(raw.Frames))
	frameOrder := make([]ident.ID, 0, len(raw.Frames))
	installed := make(map[ident.ID]bool, len(snapshotByID))

	for i, rf := range raw.Frames {
		path := fmt.Sprintf("$.frames[%d]", i)
		frameID, err := ctx.resolveID(rf.ID, ident.Object, path+".id")
		if err != nil {
			return err
		}
		if seenFrame[frameID] {
			return &DuplicateFrameError{FrameID: frameID}
		}
		seenFrame[frameID] = true

		snapIDs := make([]ident.ID, 0, len(rf.Snapshots))
		for j, sref := range rf.Snapshots {
			sid, err := ctx.resolveID(sref, ident.Snapshot, fmt.Sprintf("%s.snapshots[%d]", path, j))
			if err != nil {
				return err
			}
			snap, ok := snapshotByID[sid]
			if !ok {
				return &UnknownReferenceError{Reference: sref, Path: path}
			}
			if installed[sid] {
				if err := table.Retain(sid); err != nil {
					return &DataCorruptedError{Detail: err.Error()}
				}
			} else {
				if err := table.Insert(snap); err != nil {
					return &DataCorruptedError{Detail: err.Error()}
				}
				installed[sid] = true
			}
			snapIDs = append(snapIDs, sid)
		}

		frame := graph.NewFrame(frameID, table, snapIDs)
		frames[frameID] = frame
		frameOrder = append(frameOrder, frameID)
	}

	// Snapshots not referenced by any frame still need a home in the
	// table so direct lookups (Design.Snapshot) resolve them.
	for sid, snap := range snapshotByID {
		if !installed[sid] {
			if err := table.Insert(snap); err != nil {
				return &DataCorruptedError{Detail: err.Error()}
			}
		}
	}

	checker := l.design.ConstraintChecker()
	idents := l.design.Identities()
	for _, frameID := range frameOrder {
		frame := frames[frameID]
		tf := graph.NewTransientFrame(idents, mm, table)
		for _, sid := range frame.SnapshotIDs() {
			if snap, ok := table.Get(sid); ok {
				tf.UnsafeInsert(snap)
			}
		}
		if err := checker.Validate(tf); err != nil {
			return &FrameValidationFailedError{FrameID: frameID, Cause: err}
		}
		l.design.InstallFrame(frameID, frame)
	}

	undoable, err := l.resolveFrameRefs(ctx, raw.State.UndoableFrames, frames, "$.state.undoable_frames")
	if err != nil {
		return err
	}
	redoable, err := l.resolveFrameRefs(ctx, raw.State.RedoableFrames, frames, "$.state.redoable_frames")
	if err != nil {
		return err
	}

	inBoth := make(map[ident.ID]bool, len(undoable))
	for _, id := range undoable {
		inBoth[id] = true
	}
	for _, id := range redoable {
		if inBoth[id] {
			return &DataCorruptedError{Detail: fmt.Sprintf("frame %d is listed in both undoable_frames and redoable_frames", id)}
		}
	}

	var current *ident.ID
	if raw.State.CurrentFrame != nil {
		id, err := ctx.resolveID(raw.State.CurrentFrame, ident.Object, "$.state.current_frame")
		if err != nil {
			return err
		}
		if _, ok := frames[id]; !ok {
			return &UnknownReferenceError{Reference: raw.State.CurrentFrame, Path: "$.state.current_frame"}
		}
		current = &id
	}

	l.design.InstallHistory(undoable, redoable, current)

	for name, ref := range raw.NamedFrames {
		id, err := ctx.resolveID(ref, ident.Object, fmt.Sprintf("$.named_frames[%s]", name))
		if err != nil {
			return err
		}
		if !l.design.ContainsFrame(id) {
			return &UnknownReferenceError{Reference: ref, Path: fmt.Sprintf("$.named_frames[%s]", name)}
		}
		// NameFrame itself enforces that named frames never overlap with
		// undoable_frames, redoable_frames, or current_frame; InstallHistory
		// above has already populated those, so this rejects a store that
		// violates that invariant.
		if err := l.design.NameFrame(name, id); err != nil {
			return &DataCorruptedError{Detail: fmt.Sprintf("$.named_frames[%s]: %v", name, err)}
		}
	}

	ctx.promote()
	return nil
}

func (l *Loader) resolveFrameRefs(ctx *loadingContext, refs []interface{}, frames map[ident.ID]*graph.Frame, path string) ([]ident.ID, error) {
	out := make([]ident.ID, 0, len(refs))
	for i, ref := range refs {
		id, err := ctx.resolveID(ref, ident.Object, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		if _, ok := frames[id]; !ok {
			return nil, &UnknownReferenceError{Reference: ref, Path: fmt.Sprintf("%s[%d]", path, i)}
		}
		out = append(out, id)
	}
	return out, nil
}
