package rawstore

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/moolen/poietic/internal/design"
	"github.com/moolen/poietic/internal/graph"
	"github.com/moolen/poietic/internal/ident"
	"github.com/moolen/poietic/internal/value"
)

// Writer serializes a design.Design back into the on-disk JSON layout.
// It writes every frame reachable from history (undoable + redoable)
// plus every named frame: NameFrame only binds names to frames outside
// undo/redo history, so named frames need their own pass.
// Current frame is always a member of undoableFrames, so it needs no
// separate accounting. Snapshots reachable from any of those frames
// round out the store.
type Writer struct{}

// NewWriter constructs a Writer.
func NewWriter() *Writer { return &Writer{} }

// Build renders d into a RawDesign, ready for json.Marshal.
func (w *Writer) Build(d *design.Design) (*RawDesign, error) {
	undoable := d.UndoableFrames()
	redoable := d.RedoableFrames()
	namedFrames := d.NamedFrames()

	seen := make(map[ident.ID]bool, len(undoable)+len(redoable)+len(namedFrames))
	frameIDs := make([]ident.ID, 0, len(undoable)+len(redoable)+len(namedFrames))
	for _, id := range undoable {
		if !seen[id] {
			seen[id] = true
			frameIDs = append(frameIDs, id)
		}
	}
	for _, id := range redoable {
		if !seen[id] {
			seen[id] = true
			frameIDs = append(frameIDs, id)
		}
	}
	namedIDs := make([]ident.ID, 0, len(namedFrames))
	for _, id := range namedFrames {
		namedIDs = append(namedIDs, id)
	}
	sort.Slice(namedIDs, func(i, j int) bool { return namedIDs[i] < namedIDs[j] })
	for _, id := range namedIDs {
		if !seen[id] {
			seen[id] = true
			frameIDs = append(frameIDs, id)
		}
	}

	rawFrames := make([]RawFrame, 0, len(frameIDs))
	snapshotIDs := make(map[ident.ID]bool)

	for _, id := range frameIDs {
		frame, ok := d.Frame(id)
		if !ok {
			return nil, fmt.Errorf("rawstore: history references unknown frame %d", id)
		}
		refs := make([]interface{}, 0, len(frame.SnapshotIDs()))
		for _, sid := range frame.SnapshotIDs() {
			refs = append(refs, uint64(sid))
			snapshotIDs[sid] = true
		}
		rawFrames = append(rawFrames, RawFrame{ID: uint64(id), Snapshots: refs})
	}

	rawSnapshots := make([]RawSnapshot, 0, len(snapshotIDs))
	for sid := range snapshotIDs {
		snap, ok := d.Snapshot(sid)
		if !ok {
			return nil, fmt.Errorf("rawstore: frame references unknown snapshot %d", sid)
		}
		rs, err := w.buildSnapshot(snap)
		if err != nil {
			return nil, err
		}
		rawSnapshots = append(rawSnapshots, rs)
	}

	var state RawState
	state.UndoableFrames = idRefs(undoable)
	state.RedoableFrames = idRefs(redoable)
	if current, ok := d.CurrentFrameID(); ok {
		state.CurrentFrame = uint64(current)
	}

	namedOut := make(map[string]interface{}, len(namedFrames))
	for name, id := range namedFrames {
		namedOut[name] = uint64(id)
	}

	return &RawDesign{
		StoreFormatVersion: CurrentFormatVersion,
		Metamodel:          d.Metamodel().Name,
		Snapshots:          rawSnapshots,
		Frames:             rawFrames,
		State:              state,
		NamedFrames:        namedOut,
	}, nil
}

// Write renders d and marshals it to indented JSON.
func (w *Writer) Write(d *design.Design) ([]byte, error) {
	raw, err := w.Build(d)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(raw, "", "  ")
}

func (w *Writer) buildSnapshot(snap *graph.Snapshot) (RawSnapshot, error) {
	rs := RawSnapshot{
		ID:             uint64(snap.ObjectID()),
		SnapshotID:     uint64(snap.SnapshotID()),
		Type:           snap.TypeName(),
		StructuralType: snap.Structure().String(),
	}

	if origin, ok := snap.Origin(); ok {
		rs.From = uint64(origin)
	}
	if target, ok := snap.Target(); ok {
		rs.To = uint64(target)
	}
	if parent, ok := snap.Parent(); ok {
		rs.Parent = uint64(parent)
	}
	for _, child := range snap.Children() {
		rs.Children = append(rs.Children, uint64(child))
	}

	attrs := snap.Attributes()
	if len(attrs) > 0 {
		rs.Attributes = make(map[string]json.RawMessage, len(attrs))
		for name, v := range attrs {
			b, err := value.MarshalDict(v)
			if err != nil {
				return RawSnapshot{}, fmt.Errorf("encoding attribute %q on object %d: %w", name, snap.ObjectID(), err)
			}
			rs.Attributes[name] = b
		}
	}

	return rs, nil
}

func idRefs(ids []ident.ID) []interface{} {
	out := make([]interface{}, len(ids))
	for i, id := range ids {
		out[i] = uint64(id)
	}
	return out
}
