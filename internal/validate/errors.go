// Package validate implements the constraint checker (C8): the
// three-phase validation pipeline (structural integrity, type
// conformance, edge rules & constraints) run on a transient frame at
// accept time, plus the diagnose and canConnect query entry points.
package validate

import (
	"fmt"
	"strings"

	"github.com/moolen/poietic/internal/ident"
	"github.com/moolen/poietic/internal/metamodel"
)

// TypeErrorKind enumerates Phase B failures.
type TypeErrorKind int

const (
	UnknownType TypeErrorKind = iota
	StructureMismatch
	MissingTraitAttribute
	TypeMismatch
)

func (k TypeErrorKind) String() string {
	switch k {
	case UnknownType:
		return "unknownType"
	case StructureMismatch:
		return "structureMismatch"
	case MissingTraitAttribute:
		return "missingTraitAttribute"
	case TypeMismatch:
		return "typeMismatch"
	default:
		return "unknown"
	}
}

// TypeError is a single Phase B (type conformance) violation.
type TypeError struct {
	Kind     TypeErrorKind
	ObjectID ident.ID
	Detail   string
}

func (e *TypeError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("object %d: %s (%s)", e.ObjectID, e.Kind, e.Detail)
	}
	return fmt.Sprintf("object %d: %s", e.ObjectID, e.Kind)
}

// EdgeRuleViolationKind enumerates Phase C edge-rule failures.
type EdgeRuleViolationKind int

const (
	EdgeNotAllowed EdgeRuleViolationKind = iota
	NoRuleSatisfied
	CardinalityViolation
)

func (k EdgeRuleViolationKind) String() string {
	switch k {
	case EdgeNotAllowed:
		return "edgeNotAllowed"
	case NoRuleSatisfied:
		return "noRuleSatisfied"
	case CardinalityViolation:
		return "cardinalityViolation"
	default:
		return "unknown"
	}
}

// EdgeRuleViolation is a single Phase C edge-rule violation.
type EdgeRuleViolation struct {
	Kind      EdgeRuleViolationKind
	ObjectID  ident.ID
	Direction metamodel.Direction
	Detail    string
}

func (e *EdgeRuleViolation) Error() string {
	if e.Kind == CardinalityViolation {
		return fmt.Sprintf("edge %d: cardinalityViolation(%s, %s)", e.ObjectID, e.Detail, e.Direction)
	}
	return fmt.Sprintf("edge %d: %s(%s)", e.ObjectID, e.Kind, e.Detail)
}

// ConstraintViolationError reports a failing metamodel Constraint and
// the object ids that violate it.
type ConstraintViolationError struct {
	Name      string
	ObjectIDs []ident.ID
}

func (e *ConstraintViolationError) Error() string {
	ids := make([]string, len(e.ObjectIDs))
	for i, id := range e.ObjectIDs {
		ids[i] = fmt.Sprintf("%d", id)
	}
	return fmt.Sprintf("constraint %q violated by objects [%s]", e.Name, strings.Join(ids, ","))
}

// FrameValidationResult is the full report produced by Diagnose: every
// violation found, without short-circuiting (except that Phase A
// failures suppress Phase B/C entirely, since the graph itself cannot
// be safely interpreted beyond that point).
type FrameValidationResult struct {
	StructuralErrors      []error
	ObjectErrors          map[ident.ID][]*TypeError
	EdgeRuleViolations    map[ident.ID][]*EdgeRuleViolation
	ConstraintViolations  map[string][]ident.ID
}

// OK reports whether the diagnosed frame has no violations at all.
func (r *FrameValidationResult) OK() bool {
	return len(r.StructuralErrors) == 0 &&
		len(r.ObjectErrors) == 0 &&
		len(r.EdgeRuleViolations) == 0 &&
		len(r.ConstraintViolations) == 0
}
