package rawstore

import (
	"fmt"

	"github.com/moolen/poietic/internal/ident"
)

// UnknownFormatVersionError is returned when store_format_version is
// present but unparsable. A missing version is a MissingPropertyError.
type UnknownFormatVersionError struct {
	Version string
}

func (e *UnknownFormatVersionError) Error() string {
	return fmt.Sprintf("unknown store format version %q", e.Version)
}

// UnsupportedFormatVersionError is returned when store_format_version
// parses but no loader handles its major version.
type UnsupportedFormatVersionError struct {
	Version string
}

func (e *UnsupportedFormatVersionError) Error() string {
	return fmt.Sprintf("unsupported store format version %q", e.Version)
}

// TypeMismatchError is returned when a JSON value at path does not have
// the expected shape.
type TypeMismatchError struct {
	Expected string
	Path     string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("%s: expected %s", e.Path, e.Expected)
}

// MissingPropertyError is returned when a required property is absent.
type MissingPropertyError struct {
	Name string
	Path string
}

func (e *MissingPropertyError) Error() string {
	return fmt.Sprintf("%s: missing property %q", e.Path, e.Name)
}

// DataCorruptedError reports a store whose content cannot be decoded or
// installed: malformed JSON or attribute payloads, duplicate snapshot
// ids, or frame ids that overlap between undo/redo history and named
// frames. Unresolved references are reported as UnknownReferenceError.
type DataCorruptedError struct {
	Detail string
}

func (e *DataCorruptedError) Error() string {
	return fmt.Sprintf("data corrupted: %s", e.Detail)
}

// DuplicateFrameError is returned when two frames in the same store
// declare the same frame id.
type DuplicateFrameError struct {
	FrameID ident.ID
}

func (e *DuplicateFrameError) Error() string {
	return fmt.Sprintf("duplicate frame id %d", e.FrameID)
}

// FrameValidationFailedError wraps the underlying constraint violation
// encountered while accepting a loaded frame.
type FrameValidationFailedError struct {
	FrameID ident.ID
	Cause   error
}

func (e *FrameValidationFailedError) Error() string {
	return fmt.Sprintf("frame %d failed validation on load: %v", e.FrameID, e.Cause)
}

func (e *FrameValidationFailedError) Unwrap() error { return e.Cause }

// UnknownReferenceError is returned when a reference (by id or by name)
// does not resolve to any snapshot, object, or frame declared earlier
// in the same store.
type UnknownReferenceError struct {
	Reference interface{}
	Path      string
}

func (e *UnknownReferenceError) Error() string {
	return fmt.Sprintf("%s: unresolved reference %v", e.Path, e.Reference)
}
