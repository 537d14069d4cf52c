package rawstore

import (
	"encoding/json"
	"fmt"
)

// Reader decodes the on-disk JSON layout into a RawDesign, without
// touching an identity manager or metamodel. It only validates shape:
// required top-level properties are present, and snapshots carry the
// minimum fields a Loader needs to resolve identities.
type Reader struct{}

// NewReader constructs a Reader. It holds no state; the type exists to
// mirror the Writer/Loader pairing and leave room for future options
// (e.g. strict vs lenient mode).
func NewReader() *Reader { return &Reader{} }

// Read decodes data into a RawDesign.
func (r *Reader) Read(data []byte) (*RawDesign, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, &DataCorruptedError{Detail: err.Error()}
	}

	if _, ok := top["store_format_version"]; !ok {
		return nil, &MissingPropertyError{Name: "store_format_version", Path: "$"}
	}
	if _, ok := top["snapshots"]; !ok {
		return nil, &MissingPropertyError{Name: "snapshots", Path: "$"}
	}
	if _, ok := top["frames"]; !ok {
		return nil, &MissingPropertyError{Name: "frames", Path: "$"}
	}

	var design RawDesign
	if err := json.Unmarshal(data, &design); err != nil {
		return nil, &DataCorruptedError{Detail: err.Error()}
	}

	if design.StoreFormatVersion == "" {
		return nil, &MissingPropertyError{Name: "store_format_version", Path: "$"}
	}
	if err := CheckVersionSupported(design.StoreFormatVersion); err != nil {
		return nil, err
	}

	for i, snap := range design.Snapshots {
		path := fmt.Sprintf("$.snapshots[%d]", i)
		if snap.ID == nil {
			return nil, &MissingPropertyError{Name: "id", Path: path}
		}
		if snap.SnapshotID == nil {
			return nil, &MissingPropertyError{Name: "snapshot_id", Path: path}
		}
		if snap.Type == "" {
			return nil, &MissingPropertyError{Name: "type", Path: path}
		}
		if snap.StructuralType == "" {
			return nil, &MissingPropertyError{Name: "structural_type", Path: path}
		}
	}

	for i, frame := range design.Frames {
		path := fmt.Sprintf("$.frames[%d]", i)
		if frame.ID == nil {
			return nil, &MissingPropertyError{Name: "id", Path: path}
		}
		if frame.Snapshots == nil {
			return nil, &MissingPropertyError{Name: "snapshots", Path: path}
		}
	}

	return &design, nil
}
