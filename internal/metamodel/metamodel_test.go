package metamodel

import (
	"testing"

	"github.com/moolen/poietic/internal/ident"
	"github.com/moolen/poietic/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeObject is a minimal ObjectView used to exercise predicates,
// edge rules, and constraints without depending on internal/graph.
type fakeObject struct {
	id         ident.ID
	typeName   string
	structure  StructuralType
	origin     ident.ID
	target     ident.ID
	hasEdge    bool
	traits     map[string]bool
	components map[string]bool
}

func (o *fakeObject) ID() ident.ID          { return o.id }
func (o *fakeObject) TypeName() string      { return o.typeName }
func (o *fakeObject) Structure() StructuralType { return o.structure }
func (o *fakeObject) Origin() (ident.ID, bool) {
	if o.structure != Edge {
		return 0, false
	}
	return o.origin, true
}
func (o *fakeObject) Target() (ident.ID, bool) {
	if o.structure != Edge {
		return 0, false
	}
	return o.target, true
}
func (o *fakeObject) HasComponent(name string) bool { return o.components[name] }
func (o *fakeObject) HasTraitName(name string) bool { return o.traits[name] }

type fakeFrame struct {
	objects map[ident.ID]ObjectView
}

func newFakeFrame() *fakeFrame { return &fakeFrame{objects: map[ident.ID]ObjectView{}} }

func (f *fakeFrame) add(o *fakeObject) { f.objects[o.id] = o }

func (f *fakeFrame) Object(id ident.ID) (ObjectView, bool) {
	o, ok := f.objects[id]
	return o, ok
}

func (f *fakeFrame) AllObjects() []ObjectView {
	out := make([]ObjectView, 0, len(f.objects))
	for _, o := range f.objects {
		out = append(out, o)
	}
	return out
}

func (f *fakeFrame) Outgoing(id ident.ID) []ObjectView {
	var out []ObjectView
	for _, o := range f.objects {
		if o.Structure() == Edge {
			if origin, ok := o.Origin(); ok && origin == id {
				out = append(out, o)
			}
		}
	}
	return out
}

func (f *fakeFrame) Incoming(id ident.ID) []ObjectView {
	var out []ObjectView
	for _, o := range f.objects {
		if o.Structure() == Edge {
			if target, ok := o.Target(); ok && target == id {
				out = append(out, o)
			}
		}
	}
	return out
}

func TestPredicateVariants(t *testing.T) {
	stockType := &ObjectType{Name: "Stock", Structural: Node}
	flowType := &ObjectType{Name: "Flow", Structural: Edge}
	nameTrait := &Trait{Name: "Named", Attributes: []Attribute{{Name: "name", Type: value.String}}}

	s1 := &fakeObject{id: 1, typeName: "Stock", structure: Node, traits: map[string]bool{"Named": true}}
	f1 := &fakeObject{id: 2, typeName: "Flow", structure: Edge, origin: 1, target: 3}
	frame := newFakeFrame()
	frame.add(s1)
	frame.add(f1)

	assert.True(t, AnyPredicate{}.Match(s1, frame))
	assert.True(t, IsTypePredicate{Type: stockType}.Match(s1, frame))
	assert.False(t, IsTypePredicate{Type: flowType}.Match(s1, frame))
	assert.True(t, HasTraitPredicate{Trait: nameTrait}.Match(s1, frame))

	neg := NegationPredicate{Operand: IsTypePredicate{Type: stockType}}
	assert.False(t, neg.Match(s1, frame))

	and := CompoundPredicate{Op: And, Operands: []Predicate{AnyPredicate{}, IsTypePredicate{Type: stockType}}}
	assert.True(t, and.Match(s1, frame))

	or := CompoundPredicate{Op: Or, Operands: []Predicate{IsTypePredicate{Type: flowType}, IsTypePredicate{Type: stockType}}}
	assert.True(t, or.Match(s1, frame))
}

func TestPredicateEqual(t *testing.T) {
	stockType := &ObjectType{Name: "Stock", Structural: Node}
	p1 := IsTypePredicate{Type: stockType}
	p2 := IsTypePredicate{Type: stockType}
	assert.True(t, p1.Equal(p2))

	c1 := CompoundPredicate{Op: And, Operands: []Predicate{p1, AnyPredicate{}}}
	c2 := CompoundPredicate{Op: And, Operands: []Predicate{p2, AnyPredicate{}}}
	assert.True(t, c1.Equal(c2))

	c3 := CompoundPredicate{Op: Or, Operands: []Predicate{p1, AnyPredicate{}}}
	assert.False(t, c1.Equal(c3))
}

func TestEdgeRuleMatchesEndpointsAndEquality(t *testing.T) {
	stockType := &ObjectType{Name: "Stock", Structural: Node}
	flowType := &ObjectType{Name: "Flow", Structural: Edge}

	rule := &EdgeRule{
		Type:                flowType,
		OriginPredicate:     IsTypePredicate{Type: stockType},
		OutgoingCardinality: Many,
		TargetPredicate:     IsTypePredicate{Type: stockType},
		IncomingCardinality: One,
	}

	origin := &fakeObject{id: 1, typeName: "Stock", structure: Node}
	target := &fakeObject{id: 2, typeName: "Stock", structure: Node}
	frame := newFakeFrame()
	frame.add(origin)
	frame.add(target)

	assert.True(t, rule.MatchesEndpoints(origin, target, frame))

	other := &EdgeRule{
		Type:                flowType,
		OriginPredicate:     IsTypePredicate{Type: stockType},
		OutgoingCardinality: Many,
		TargetPredicate:     IsTypePredicate{Type: stockType},
		IncomingCardinality: One,
	}
	assert.True(t, rule.Equal(other))

	other.IncomingCardinality = Many
	assert.False(t, rule.Equal(other))
}

func TestUniqueNeighbourRequirement(t *testing.T) {
	rateType := &ObjectType{Name: "Rate", Structural: Node}
	stock := &fakeObject{id: 1, typeName: "Stock", structure: Node}
	rate1 := &fakeObject{id: 2, typeName: "Rate", structure: Node}
	rate2 := &fakeObject{id: 3, typeName: "Rate", structure: Node}
	flow1 := &fakeObject{id: 4, typeName: "Flow", structure: Edge, origin: 1, target: 2}
	flow2 := &fakeObject{id: 5, typeName: "Flow", structure: Edge, origin: 1, target: 3}

	frame := newFakeFrame()
	frame.add(stock)
	frame.add(rate1)
	frame.add(rate2)
	frame.add(flow1)
	frame.add(flow2)

	req := UniqueNeighbourRequirement{Predicate: IsTypePredicate{Type: rateType}, Direction: Outgoing, Required: false}
	c := &Constraint{Name: "unique-rate", Match: IsTypePredicate{Type: &ObjectType{Name: "Stock"}}, Requirement: req}
	violations := c.Check(frame)
	require.Len(t, violations, 1)
	assert.Equal(t, stock.ID(), violations[0])
}

func TestRejectAllAndAcceptAllRequirements(t *testing.T) {
	obj := &fakeObject{id: 1, typeName: "Stock", structure: Node}
	frame := newFakeFrame()
	frame.add(obj)

	reject := &Constraint{Name: "reject", Match: AnyPredicate{}, Requirement: RejectAllRequirement{}}
	assert.Equal(t, []ident.ID{1}, reject.Check(frame))

	accept := &Constraint{Name: "accept", Match: AnyPredicate{}, Requirement: AcceptAllRequirement{}}
	assert.Empty(t, accept.Check(frame))
}

func TestMetamodelLookups(t *testing.T) {
	mm := New("test")
	trait := &Trait{Name: "Named"}
	mm.AddTrait(trait)
	mm.AddType(&ObjectType{Name: "Stock", Structural: Node, Traits: []*Trait{trait}})

	typ, err := mm.Type("Stock")
	require.NoError(t, err)
	assert.Equal(t, "Stock", typ.Name)
	assert.True(t, mm.HasType("Stock"))
	assert.False(t, mm.HasType("Nope"))

	_, err = mm.Type("Nope")
	require.Error(t, err)
	var unk *UnknownTypeError
	assert.ErrorAs(t, err, &unk)

	tr, err := mm.Trait("Named")
	require.NoError(t, err)
	assert.Equal(t, "Named", tr.Name)
}
