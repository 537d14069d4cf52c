package validate

import (
	"github.com/moolen/poietic/internal/graph"
	"github.com/moolen/poietic/internal/ident"
	"github.com/moolen/poietic/internal/metamodel"
)

// ConstraintChecker is the stateless C8 component: it owns only a
// reference to the metamodel it checks frames against.
type ConstraintChecker struct {
	mm *metamodel.Metamodel
}

// NewConstraintChecker creates a checker bound to mm.
func NewConstraintChecker(mm *metamodel.Metamodel) *ConstraintChecker {
	return &ConstraintChecker{mm: mm}
}

// Validate runs the three-phase pipeline against tf, returning the
// first violation encountered (fail-fast). A nil return means tf would
// be accepted.
func (c *ConstraintChecker) Validate(tf *graph.TransientFrame) error {
	if errs := tf.BrokenReferences(); len(errs) > 0 {
		return errs[0]
	}

	for _, snap := range tf.AllObjects() {
		if err := c.firstTypeError(snap); err != nil {
			return err
		}
	}

	view := tf.AsFrameView()
	for _, snap := range tf.AllObjects() {
		if snap.Structure() == metamodel.Edge {
			if err := c.firstEdgeRuleViolation(snap, view); err != nil {
				return err
			}
		}
	}

	for _, constraint := range c.mm.Constraints() {
		if violating := constraint.Check(view); len(violating) > 0 {
			return &ConstraintViolationError{Name: constraint.Name, ObjectIDs: violating}
		}
	}

	return nil
}

// Diagnose runs the same three phases but collects every violation
// instead of stopping at the first. Phase A failures still suppress
// Phase B/C, since a structurally broken frame cannot be safely
// interpreted any further.
func (c *ConstraintChecker) Diagnose(tf *graph.TransientFrame) *FrameValidationResult {
	result := &FrameValidationResult{
		ObjectErrors:         map[ident.ID][]*TypeError{},
		EdgeRuleViolations:   map[ident.ID][]*EdgeRuleViolation{},
		ConstraintViolations: map[string][]ident.ID{},
	}

	for _, e := range tf.BrokenReferences() {
		result.StructuralErrors = append(result.StructuralErrors, e)
	}
	if len(result.StructuralErrors) > 0 {
		return result
	}

	for _, snap := range tf.AllObjects() {
		if errs := c.typeErrors(snap); len(errs) > 0 {
			result.ObjectErrors[snap.ObjectID()] = errs
		}
	}

	view := tf.AsFrameView()
	for _, snap := range tf.AllObjects() {
		if snap.Structure() == metamodel.Edge {
			if errs := c.edgeRuleErrors(snap, view); len(errs) > 0 {
				result.EdgeRuleViolations[snap.ObjectID()] = errs
			}
		}
	}

	for _, constraint := range c.mm.Constraints() {
		if violating := constraint.Check(view); len(violating) > 0 {
			result.ConstraintViolations[constraint.Name] = violating
		}
	}

	return result
}

func (c *ConstraintChecker) firstTypeError(snap *graph.Snapshot) error {
	errs := c.typeErrors(snap)
	if len(errs) == 0 {
		return nil
	}
	return errs[0]
}

func (c *ConstraintChecker) typeErrors(snap *graph.Snapshot) []*TypeError {
	typ, err := c.mm.Type(snap.TypeName())
	if err != nil {
		return []*TypeError{{Kind: UnknownType, ObjectID: snap.ObjectID(), Detail: snap.TypeName()}}
	}
	if typ.Structural != snap.Structure() {
		return []*TypeError{{Kind: StructureMismatch, ObjectID: snap.ObjectID(), Detail: typ.Structural.String()}}
	}

	var errs []*TypeError
	for _, trait := range typ.Traits {
		for _, attr := range trait.Attributes {
			v, ok := snap.Attribute(attr.Name)
			if !ok {
				if !attr.Optional {
					errs = append(errs, &TypeError{Kind: MissingTraitAttribute, ObjectID: snap.ObjectID(), Detail: attr.Name + "@" + trait.Name})
				}
				continue
			}
			if !v.IsConvertible(attr.Type) {
				errs = append(errs, &TypeError{Kind: TypeMismatch, ObjectID: snap.ObjectID(), Detail: attr.Name})
			}
		}
	}
	return errs
}

func (c *ConstraintChecker) firstEdgeRuleViolation(snap *graph.Snapshot, view metamodel.FrameView) error {
	errs := c.edgeRuleErrors(snap, view)
	if len(errs) == 0 {
		return nil
	}
	return errs[0]
}

func (c *ConstraintChecker) edgeRuleErrors(snap *graph.Snapshot, view metamodel.FrameView) []*EdgeRuleViolation {
	rules := c.mm.EdgeRulesFor(snap.TypeName())
	if len(rules) == 0 {
		return []*EdgeRuleViolation{{Kind: EdgeNotAllowed, ObjectID: snap.ObjectID(), Detail: snap.TypeName()}}
	}

	originID, _ := snap.Origin()
	targetID, _ := snap.Target()
	originObj, originOK := view.Object(originID)
	targetObj, targetOK := view.Object(targetID)
	if !originOK || !targetOK {
		return []*EdgeRuleViolation{{Kind: NoRuleSatisfied, ObjectID: snap.ObjectID(), Detail: snap.TypeName()}}
	}

	var matched []*metamodel.EdgeRule
	for _, r := range rules {
		if r.MatchesEndpoints(originObj, targetObj, view) {
			matched = append(matched, r)
		}
	}
	if len(matched) == 0 {
		return []*EdgeRuleViolation{{Kind: NoRuleSatisfied, ObjectID: snap.ObjectID(), Detail: snap.TypeName()}}
	}

	var errs []*EdgeRuleViolation
	outCount := countEdgesOfType(view, snap.TypeName(), metamodel.Outgoing, originID)
	inCount := countEdgesOfType(view, snap.TypeName(), metamodel.Incoming, targetID)
	for _, r := range matched {
		if r.OutgoingCardinality == metamodel.One && outCount != 1 {
			errs = append(errs, &EdgeRuleViolation{Kind: CardinalityViolation, ObjectID: snap.ObjectID(), Direction: metamodel.Outgoing, Detail: snap.TypeName()})
		}
		if r.IncomingCardinality == metamodel.One && inCount != 1 {
			errs = append(errs, &EdgeRuleViolation{Kind: CardinalityViolation, ObjectID: snap.ObjectID(), Direction: metamodel.Incoming, Detail: snap.TypeName()})
		}
	}
	return errs
}

func countEdgesOfType(view metamodel.FrameView, typeName string, direction metamodel.Direction, objectID ident.ID) int {
	var edges []metamodel.ObjectView
	if direction == metamodel.Outgoing {
		edges = view.Outgoing(objectID)
	} else {
		edges = view.Incoming(objectID)
	}
	count := 0
	for _, e := range edges {
		if e.TypeName() == typeName {
			count++
		}
	}
	return count
}

// CanConnect reports whether a hypothetical edge of edgeType between
// originID and targetID would be allowed in view, without mutating
// anything. Cardinality is evaluated on the *current* counts (i.e. an
// endpoint bound to "one" must currently have zero edges of this type
// in that direction).
func (c *ConstraintChecker) CanConnect(edgeType string, originID, targetID ident.ID, view metamodel.FrameView) (bool, error) {
	if !c.mm.HasType(edgeType) {
		return false, &metamodel.UnknownTypeError{Name: edgeType}
	}
	rules := c.mm.EdgeRulesFor(edgeType)
	if len(rules) == 0 {
		return false, nil
	}

	originObj, ok := view.Object(originID)
	if !ok {
		return false, nil
	}
	targetObj, ok := view.Object(targetID)
	if !ok {
		return false, nil
	}

	var matched []*metamodel.EdgeRule
	for _, r := range rules {
		if r.MatchesEndpoints(originObj, targetObj, view) {
			matched = append(matched, r)
		}
	}
	if len(matched) == 0 {
		return false, nil
	}

	outCount := countEdgesOfType(view, edgeType, metamodel.Outgoing, originID)
	inCount := countEdgesOfType(view, edgeType, metamodel.Incoming, targetID)
	for _, r := range matched {
		if r.OutgoingCardinality == metamodel.One && outCount >= 1 {
			return false, nil
		}
		if r.IncomingCardinality == metamodel.One && inCount >= 1 {
			return false, nil
		}
	}
	return true, nil
}
