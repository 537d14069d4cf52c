// Package rawstore implements the JSON on-disk representation of a
// design (C10): the raw decode/encode types, a version-tolerant
// reader, a loader that installs a RawDesign into a design.Design, and
// a writer that serializes a design.Design back to the same layout.
package rawstore

import "encoding/json"

// RawSnapshot is the on-disk representation of one object snapshot.
// ID, SnapshotID, From, To, and Parent are reference values: a JSON
// number (a resolved id), or a JSON string (parsed as a numeric id if
// possible, otherwise treated as a symbolic name resolved within the
// same load).
type RawSnapshot struct {
	ID             interface{}                `json:"id"`
	SnapshotID     interface{}                `json:"snapshot_id"`
	Type           string                     `json:"type"`
	StructuralType string                     `json:"structural_type"`
	From           interface{}                `json:"from,omitempty"`
	To             interface{}                `json:"to,omitempty"`
	Parent         interface{}                `json:"parent,omitempty"`
	Children       []interface{}              `json:"children,omitempty"`
	Attributes     map[string]json.RawMessage `json:"attributes,omitempty"`
}

// RawFrame is the on-disk representation of one accepted frame.
type RawFrame struct {
	ID        interface{}   `json:"id"`
	Snapshots []interface{} `json:"snapshots"`
}

// RawState is the on-disk representation of the design's undo/redo
// history and current position.
type RawState struct {
	CurrentFrame   interface{}   `json:"current_frame,omitempty"`
	UndoableFrames []interface{} `json:"undoable_frames"`
	RedoableFrames []interface{} `json:"redoable_frames"`
}

// RawDesign is the full decoded on-disk layout.
type RawDesign struct {
	StoreFormatVersion string                 `json:"store_format_version"`
	Metamodel          string                 `json:"metamodel"`
	Snapshots          []RawSnapshot          `json:"snapshots"`
	Frames             []RawFrame             `json:"frames"`
	State              RawState               `json:"state"`
	NamedFrames        map[string]interface{} `json:"named_frames,omitempty"`
}
