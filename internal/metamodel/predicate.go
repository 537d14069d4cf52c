package metamodel

// Predicate is the closed set of matchers used by edge rules and
// constraints. Every variant must be pure (no side effects) and total
// (defined for every object/frame pair, never panicking).
type Predicate interface {
	// Match reports whether obj (in the context of frame) satisfies
	// the predicate.
	Match(obj ObjectView, frame FrameView) bool
	// Equal reports structural equality between two predicates. Used
	// by EdgeRule.Equal, which (unlike some host languages' versions
	// of this model) compares predicates structurally rather than
	// ignoring them.
	Equal(other Predicate) bool
}

// AnyPredicate matches every object unconditionally.
type AnyPredicate struct{}

func (AnyPredicate) Match(ObjectView, FrameView) bool { return true }

func (AnyPredicate) Equal(other Predicate) bool {
	_, ok := other.(AnyPredicate)
	return ok
}

// IsTypePredicate matches objects of exactly the given type.
type IsTypePredicate struct {
	Type *ObjectType
}

func (p IsTypePredicate) Match(obj ObjectView, _ FrameView) bool {
	return obj.TypeName() == p.Type.Name
}

func (p IsTypePredicate) Equal(other Predicate) bool {
	o, ok := other.(IsTypePredicate)
	return ok && o.Type.Name == p.Type.Name
}

// HasTraitPredicate matches objects whose type carries the given trait.
type HasTraitPredicate struct {
	Trait *Trait
}

func (p HasTraitPredicate) Match(obj ObjectView, _ FrameView) bool {
	return obj.HasTraitName(p.Trait.Name)
}

func (p HasTraitPredicate) Equal(other Predicate) bool {
	o, ok := other.(HasTraitPredicate)
	return ok && o.Trait.Name == p.Trait.Name
}

// HasComponentPredicate matches objects carrying a named component.
type HasComponentPredicate struct {
	Component string
}

func (p HasComponentPredicate) Match(obj ObjectView, _ FrameView) bool {
	return obj.HasComponent(p.Component)
}

func (p HasComponentPredicate) Equal(other Predicate) bool {
	o, ok := other.(HasComponentPredicate)
	return ok && o.Component == p.Component
}

// CompoundOp is the boolean combinator used by CompoundPredicate.
type CompoundOp int

const (
	And CompoundOp = iota
	Or
)

// CompoundPredicate combines operands with And/Or, short-circuiting.
type CompoundPredicate struct {
	Op       CompoundOp
	Operands []Predicate
}

func (p CompoundPredicate) Match(obj ObjectView, frame FrameView) bool {
	switch p.Op {
	case And:
		for _, o := range p.Operands {
			if !o.Match(obj, frame) {
				return false
			}
		}
		return true
	case Or:
		for _, o := range p.Operands {
			if o.Match(obj, frame) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func (p CompoundPredicate) Equal(other Predicate) bool {
	o, ok := other.(CompoundPredicate)
	if !ok || o.Op != p.Op || len(o.Operands) != len(p.Operands) {
		return false
	}
	for i := range p.Operands {
		if !p.Operands[i].Equal(o.Operands[i]) {
			return false
		}
	}
	return true
}

// NegationPredicate inverts its operand.
type NegationPredicate struct {
	Operand Predicate
}

func (p NegationPredicate) Match(obj ObjectView, frame FrameView) bool {
	return !p.Operand.Match(obj, frame)
}

func (p NegationPredicate) Equal(other Predicate) bool {
	o, ok := other.(NegationPredicate)
	return ok && p.Operand.Equal(o.Operand)
}

// EdgePredicate matches edge objects whose own type/origin/target
// satisfy sub-predicates. A nil sub-predicate means "no constraint on
// this position" (equivalent to Any).
type EdgePredicate struct {
	EdgePred   Predicate
	OriginPred Predicate
	TargetPred Predicate
}

func (p EdgePredicate) Match(obj ObjectView, frame FrameView) bool {
	if obj.Structure() != Edge {
		return false
	}
	if p.EdgePred != nil && !p.EdgePred.Match(obj, frame) {
		return false
	}
	if p.OriginPred != nil {
		originID, ok := obj.Origin()
		if !ok {
			return false
		}
		origin, ok := frame.Object(originID)
		if !ok || !p.OriginPred.Match(origin, frame) {
			return false
		}
	}
	if p.TargetPred != nil {
		targetID, ok := obj.Target()
		if !ok {
			return false
		}
		target, ok := frame.Object(targetID)
		if !ok || !p.TargetPred.Match(target, frame) {
			return false
		}
	}
	return true
}

func (p EdgePredicate) Equal(other Predicate) bool {
	o, ok := other.(EdgePredicate)
	if !ok {
		return false
	}
	return predicateEqual(p.EdgePred, o.EdgePred) &&
		predicateEqual(p.OriginPred, o.OriginPred) &&
		predicateEqual(p.TargetPred, o.TargetPred)
}

func predicateEqual(a, b Predicate) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}
