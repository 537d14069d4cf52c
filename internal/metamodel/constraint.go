package metamodel

import "github.com/moolen/poietic/internal/ident"

// Requirement is the closed set of constraint bodies. check inspects
// the objects a Constraint's Match predicate selected and reports which
// of them violate the requirement.
type Requirement interface {
	check(frame FrameView, matched []ObjectView) []ident.ID
}

// RejectAllRequirement violates for every matched object (used to
// forbid a shape entirely, e.g. "no object may have both trait X and
// trait Y").
type RejectAllRequirement struct{}

func (RejectAllRequirement) check(_ FrameView, matched []ObjectView) []ident.ID {
	ids := make([]ident.ID, 0, len(matched))
	for _, o := range matched {
		ids = append(ids, o.ID())
	}
	return ids
}

// AcceptAllRequirement never violates; useful as a placeholder or to
// assert a Match predicate is exercised without constraining further.
type AcceptAllRequirement struct{}

func (AcceptAllRequirement) check(_ FrameView, _ []ObjectView) []ident.ID {
	return nil
}

// UniqueNeighbourRequirement requires that each matched object have at
// most one neighbour (in Direction) satisfying Predicate; if Required
// is true, exactly one (zero is also a violation).
type UniqueNeighbourRequirement struct {
	Predicate Predicate
	Direction Direction
	Required  bool
}

func (r UniqueNeighbourRequirement) check(frame FrameView, matched []ObjectView) []ident.ID {
	var violating []ident.ID
	for _, o := range matched {
		count := r.countNeighbours(o, frame)
		if count > 1 || (r.Required && count == 0) {
			violating = append(violating, o.ID())
		}
	}
	return violating
}

func (r UniqueNeighbourRequirement) countNeighbours(o ObjectView, frame FrameView) int {
	var edges []ObjectView
	if r.Direction == Outgoing {
		edges = frame.Outgoing(o.ID())
	} else {
		edges = frame.Incoming(o.ID())
	}
	count := 0
	for _, e := range edges {
		var otherID ident.ID
		var ok bool
		if r.Direction == Outgoing {
			otherID, ok = e.Target()
		} else {
			otherID, ok = e.Origin()
		}
		if !ok {
			continue
		}
		other, ok := frame.Object(otherID)
		if !ok {
			continue
		}
		if r.Predicate.Match(other, frame) {
			count++
		}
	}
	return count
}

// EdgeEndpointRequirement requires that every matched edge object
// satisfy the given sub-predicates on itself and its endpoints. A nil
// sub-predicate imposes no constraint on that position.
type EdgeEndpointRequirement struct {
	Origin Predicate
	Target Predicate
	Edge   Predicate
}

func (r EdgeEndpointRequirement) check(frame FrameView, matched []ObjectView) []ident.ID {
	ep := EdgePredicate{EdgePred: r.Edge, OriginPred: r.Origin, TargetPred: r.Target}
	var violating []ident.ID
	for _, o := range matched {
		if o.Structure() != Edge {
			continue
		}
		if !ep.Match(o, frame) {
			violating = append(violating, o.ID())
		}
	}
	return violating
}

// Constraint is a global rule over a frame: every object matching Match
// must satisfy Requirement. check(frame) returns the offending object
// ids (empty means satisfied).
type Constraint struct {
	Name        string
	Match       Predicate
	Requirement Requirement
}

// Check evaluates c against every object in frame.
func (c *Constraint) Check(frame FrameView) []ident.ID {
	match := c.Match
	if match == nil {
		match = AnyPredicate{}
	}
	var matched []ObjectView
	for _, o := range frame.AllObjects() {
		if match.Match(o, frame) {
			matched = append(matched, o)
		}
	}
	return c.Requirement.check(frame, matched)
}
