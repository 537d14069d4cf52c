// Package design implements the top-level owner of a design graph: the
// metamodel, identity manager, and snapshot table it shares across
// every frame, plus the frame history (undo/redo) and named-frame
// bookmarks.
package design

import (
	"fmt"

	"github.com/moolen/poietic/internal/ident"
)

// UnknownFrameError is returned when an operation references a frame
// id the design does not know about.
type UnknownFrameError struct {
	FrameID ident.ID
}

func (e *UnknownFrameError) Error() string {
	return fmt.Sprintf("unknown frame id %d", e.FrameID)
}

// UnknownNamedFrameError describes a reference to a frame name the
// design does not know about. FrameByName does not return it: it
// reports a missing name through its boolean result.
type UnknownNamedFrameError struct {
	Name string
}

func (e *UnknownNamedFrameError) Error() string {
	return fmt.Sprintf("unknown named frame %q", e.Name)
}

// NotUndoableError is returned when Undo's target is not in the
// current undoable history.
type NotUndoableError struct {
	FrameID ident.ID
}

func (e *NotUndoableError) Error() string {
	return fmt.Sprintf("frame %d is not in undoable history", e.FrameID)
}

// NotRedoableError is returned when Redo's target is not in the
// current redoable history.
type NotRedoableError struct {
	FrameID ident.ID
}

func (e *NotRedoableError) Error() string {
	return fmt.Sprintf("frame %d is not in redoable history", e.FrameID)
}

// FrameInHistoryError is returned when NameFrame's target is still
// part of the live undo/redo chain, since a named frame must never
// overlap with undoableFrames, redoableFrames, or currentFrameID.
type FrameInHistoryError struct {
	FrameID ident.ID
}

func (e *FrameInHistoryError) Error() string {
	return fmt.Sprintf("frame %d is still part of undo/redo history and cannot be named", e.FrameID)
}
