package validate

import (
	"testing"

	"github.com/moolen/poietic/internal/graph"
	"github.com/moolen/poietic/internal/ident"
	"github.com/moolen/poietic/internal/metamodel"
	"github.com/moolen/poietic/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildMetamodel() (*metamodel.Metamodel, *metamodel.ObjectType, *metamodel.ObjectType, *metamodel.ObjectType) {
	mm := metamodel.New("test")
	nameTrait := &metamodel.Trait{Name: "Named", Attributes: []metamodel.Attribute{{Name: "name", Type: value.String}}}
	mm.AddTrait(nameTrait)

	stock := &metamodel.ObjectType{Name: "Stock", Structural: metamodel.Node, Traits: []*metamodel.Trait{nameTrait}}
	rate := &metamodel.ObjectType{Name: "FlowRate", Structural: metamodel.Node, Traits: []*metamodel.Trait{nameTrait}}
	flow := &metamodel.ObjectType{Name: "Flow", Structural: metamodel.Edge}
	mm.AddType(stock)
	mm.AddType(rate)
	mm.AddType(flow)

	mm.AddEdgeRule(&metamodel.EdgeRule{
		Type:                flow,
		OriginPredicate:     metamodel.IsTypePredicate{Type: stock},
		OutgoingCardinality: metamodel.Many,
		TargetPredicate:     metamodel.IsTypePredicate{Type: rate},
		IncomingCardinality: metamodel.One,
	})

	return mm, stock, rate, flow
}

func TestValidateAcceptsWellFormedFrame(t *testing.T) {
	mm, stock, rate, flow := buildMetamodel()
	idents := ident.NewManager()
	table := graph.NewSnapshotTable()
	tf := graph.NewTransientFrame(idents, mm, table)

	s1, err := tf.Create(stock, nil, nil, nil, map[string]value.Variant{"name": value.NewScalar(value.NewString("S1"))}, nil)
	require.NoError(t, err)
	r1, err := tf.Create(rate, nil, nil, nil, map[string]value.Variant{"name": value.NewScalar(value.NewString("R1"))}, nil)
	require.NoError(t, err)
	structure := graph.EdgeStructure(s1, r1)
	_, err = tf.Create(flow, nil, nil, &structure, nil, nil)
	require.NoError(t, err)

	checker := NewConstraintChecker(mm)
	assert.NoError(t, checker.Validate(tf))
}

func TestValidateReportsMissingTraitAttribute(t *testing.T) {
	mm, stock, _, _ := buildMetamodel()
	idents := ident.NewManager()
	table := graph.NewSnapshotTable()
	tf := graph.NewTransientFrame(idents, mm, table)

	_, err := tf.Create(stock, nil, nil, nil, nil, nil)
	require.NoError(t, err)

	checker := NewConstraintChecker(mm)
	err = checker.Validate(tf)
	require.Error(t, err)
	var typeErr *TypeError
	assert.ErrorAs(t, err, &typeErr)
	assert.Equal(t, MissingTraitAttribute, typeErr.Kind)
}

func TestValidateCardinalityViolation(t *testing.T) {
	mm, stock, rate, flow := buildMetamodel()
	idents := ident.NewManager()
	table := graph.NewSnapshotTable()
	tf := graph.NewTransientFrame(idents, mm, table)

	s1, err := tf.Create(stock, nil, nil, nil, map[string]value.Variant{"name": value.NewScalar(value.NewString("S1"))}, nil)
	require.NoError(t, err)
	r1, err := tf.Create(rate, nil, nil, nil, map[string]value.Variant{"name": value.NewScalar(value.NewString("R1"))}, nil)
	require.NoError(t, err)

	s1ToR1 := graph.EdgeStructure(s1, r1)
	_, err = tf.Create(flow, nil, nil, &s1ToR1, nil, nil)
	require.NoError(t, err)
	_, err = tf.Create(flow, nil, nil, &s1ToR1, nil, nil)
	require.NoError(t, err)

	checker := NewConstraintChecker(mm)
	diag := checker.Diagnose(tf)
	assert.False(t, diag.OK())
	assert.Len(t, diag.EdgeRuleViolations, 2)
	for _, violations := range diag.EdgeRuleViolations {
		require.Len(t, violations, 1)
		assert.Equal(t, CardinalityViolation, violations[0].Kind)
		assert.Equal(t, metamodel.Incoming, violations[0].Direction)
	}
}

func TestCanConnectHonoursCardinality(t *testing.T) {
	mm, stock, rate, flow := buildMetamodel()
	idents := ident.NewManager()
	table := graph.NewSnapshotTable()
	tf := graph.NewTransientFrame(idents, mm, table)

	s1, err := tf.Create(stock, nil, nil, nil, map[string]value.Variant{"name": value.NewScalar(value.NewString("S1"))}, nil)
	require.NoError(t, err)
	r1, err := tf.Create(rate, nil, nil, nil, map[string]value.Variant{"name": value.NewScalar(value.NewString("R1"))}, nil)
	require.NoError(t, err)

	checker := NewConstraintChecker(mm)
	view := tf.AsFrameView()

	ok, err := checker.CanConnect(flow.Name, s1, r1, view)
	require.NoError(t, err)
	assert.True(t, ok)

	structure := graph.EdgeStructure(s1, r1)
	_, err = tf.Create(flow, nil, nil, &structure, nil, nil)
	require.NoError(t, err)

	view = tf.AsFrameView()
	ok, err = checker.CanConnect(flow.Name, s1, r1, view)
	require.NoError(t, err)
	assert.False(t, ok, "target already has an incoming Flow and incoming cardinality is one")
}

func TestValidateReportsStructuralIntegrityFirst(t *testing.T) {
	mm, stock, _, flow := buildMetamodel()
	idents := ident.NewManager()
	table := graph.NewSnapshotTable()
	tf := graph.NewTransientFrame(idents, mm, table)

	s1, err := tf.Create(stock, nil, nil, nil, map[string]value.Variant{"name": value.NewScalar(value.NewString("S1"))}, nil)
	require.NoError(t, err)
	structure := graph.EdgeStructure(s1, ident.ID(99999))
	_, err = tf.Create(flow, nil, nil, &structure, nil, nil)
	require.NoError(t, err)

	checker := NewConstraintChecker(mm)
	err = checker.Validate(tf)
	require.Error(t, err)
	var structErr *graph.StructuralIntegrityError
	assert.ErrorAs(t, err, &structErr)
}
