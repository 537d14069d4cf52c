package rawstore

import (
	"encoding/json"
	"testing"

	"github.com/moolen/poietic/internal/design"
	"github.com/moolen/poietic/internal/graph"
	"github.com/moolen/poietic/internal/ident"
	"github.com/moolen/poietic/internal/metamodel"
	"github.com/moolen/poietic/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildMetamodel() (*metamodel.Metamodel, *metamodel.ObjectType, *metamodel.ObjectType, *metamodel.ObjectType) {
	mm := metamodel.New("system-dynamics")
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

func buildSampleDesign(t *testing.T) (*design.Design, *metamodel.Metamodel) {
	t.Helper()
	mm, stock, rate, flow := buildMetamodel()
	d := design.New(mm, nil)

	tf, err := d.CreateFrame(nil)
	require.NoError(t, err)
	s1, err := tf.Create(stock, nil, nil, nil, map[string]value.Variant{"name": value.NewScalar(value.NewString("Water"))}, nil)
	require.NoError(t, err)
	r1, err := tf.Create(rate, nil, nil, nil, map[string]value.Variant{"name": value.NewScalar(value.NewString("Inflow"))}, nil)
	require.NoError(t, err)
	structure := graph.EdgeStructure(s1, r1)
	_, err = tf.Create(flow, nil, nil, &structure, nil, nil)
	require.NoError(t, err)
	frame1, err := d.Accept(tf)
	require.NoError(t, err)

	parent := frame1.ID()
	tf2, err := d.CreateFrame(&parent)
	require.NoError(t, err)
	_, err = tf2.Create(stock, nil, nil, nil, map[string]value.Variant{"name": value.NewScalar(value.NewString("Sediment"))}, nil)
	require.NoError(t, err)
	frame2, err := d.Accept(tf2)
	require.NoError(t, err)

	// Branch off frame1 so that frame2 leaves history; only a frame
	// outside undo/redo history and not current can be named.
	require.NoError(t, d.Undo(frame1.ID()))
	tf3, err := d.CreateFrame(&parent)
	require.NoError(t, err)
	_, err = d.Accept(tf3)
	require.NoError(t, err)

	require.NoError(t, d.NameFrame("main", frame2.ID()))

	return d, mm
}

// buildDivergedSampleDesign builds a design where the named frame has
// fallen out of both the undoable and redoable chains: it undoes past
// a frame and accepts a diverging frame, which drops that frame from
// history entirely (Accept clears redoableFrames on every successful
// accept), and then names it. The writer must still include such a
// frame in the store, since NamedFrames is not a subset of
// UndoableFrames+RedoableFrames.
func buildDivergedSampleDesign(t *testing.T) (*design.Design, *metamodel.Metamodel, ident.ID) {
	t.Helper()
	mm, stock, rate, flow := buildMetamodel()
	d := design.New(mm, nil)

	tf, err := d.CreateFrame(nil)
	require.NoError(t, err)
	s1, err := tf.Create(stock, nil, nil, nil, map[string]value.Variant{"name": value.NewScalar(value.NewString("Water"))}, nil)
	require.NoError(t, err)
	r1, err := tf.Create(rate, nil, nil, nil, map[string]value.Variant{"name": value.NewScalar(value.NewString("Inflow"))}, nil)
	require.NoError(t, err)
	structure := graph.EdgeStructure(s1, r1)
	_, err = tf.Create(flow, nil, nil, &structure, nil, nil)
	require.NoError(t, err)
	frame1, err := d.Accept(tf)
	require.NoError(t, err)

	parent := frame1.ID()
	tf2, err := d.CreateFrame(&parent)
	require.NoError(t, err)
	_, err = tf2.Create(stock, nil, nil, nil, map[string]value.Variant{"name": value.NewScalar(value.NewString("Sediment"))}, nil)
	require.NoError(t, err)
	frame2, err := d.Accept(tf2)
	require.NoError(t, err)

	require.NoError(t, d.Undo(frame1.ID()))
	require.Contains(t, d.RedoableFrames(), frame2.ID())

	tf3, err := d.CreateFrame(&parent)
	require.NoError(t, err)
	_, err = tf3.Create(stock, nil, nil, nil, map[string]value.Variant{"name": value.NewScalar(value.NewString("Silt"))}, nil)
	require.NoError(t, err)
	_, err = d.Accept(tf3)
	require.NoError(t, err)
	require.Empty(t, d.RedoableFrames())

	require.NoError(t, d.NameFrame("diverged", frame2.ID()))

	return d, mm, frame2.ID()
}

func TestWriterLoaderRoundTrip(t *testing.T) {
	d, mm := buildSampleDesign(t)

	data, err := NewWriter().Write(d)
	require.NoError(t, err)

	raw, err := NewReader().Read(data)
	require.NoError(t, err)

	target := design.New(mm, nil)
	require.NoError(t, NewLoader(target).Load(raw))

	assert.Equal(t, d.Stats(), target.Stats())

	origCurrent, ok := d.CurrentFrameID()
	require.True(t, ok)
	newCurrent, ok := target.CurrentFrameID()
	require.True(t, ok)
	assert.Equal(t, origCurrent, newCurrent)

	named, ok := target.FrameByName("main")
	require.True(t, ok)
	assert.True(t, target.ContainsFrame(named.ID()))
}

func TestWriterLoaderRoundTripDivergedNamedFrame(t *testing.T) {
	d, mm, namedID := buildDivergedSampleDesign(t)

	data, err := NewWriter().Write(d)
	require.NoError(t, err)

	raw, err := NewReader().Read(data)
	require.NoError(t, err)

	target := design.New(mm, nil)
	require.NoError(t, NewLoader(target).Load(raw))

	assert.Equal(t, d.Stats(), target.Stats())
	assert.NotContains(t, target.UndoableFrames(), namedID)
	assert.NotContains(t, target.RedoableFrames(), namedID)

	named, ok := target.FrameByName("diverged")
	require.True(t, ok)
	assert.Equal(t, namedID, named.ID())
	assert.True(t, target.ContainsFrame(named.ID()))
}

func TestReaderRejectsMissingStoreFormatVersion(t *testing.T) {
	_, err := NewReader().Read([]byte(`{"snapshots":[],"frames":[],"state":{}}`))
	require.Error(t, err)
	var missing *MissingPropertyError
	assert.ErrorAs(t, err, &missing)
}

func TestReaderRejectsUnsupportedVersion(t *testing.T) {
	_, err := NewReader().Read([]byte(`{"store_format_version":"99.0.0","snapshots":[],"frames":[],"state":{}}`))
	require.Error(t, err)
	var unsupported *UnsupportedFormatVersionError
	assert.ErrorAs(t, err, &unsupported)
}

func TestReaderRejectsMalformedJSON(t *testing.T) {
	_, err := NewReader().Read([]byte(`{not json`))
	require.Error(t, err)
	var corrupted *DataCorruptedError
	assert.ErrorAs(t, err, &corrupted)
}

func TestLoaderDetectsStructuralTypeMismatch(t *testing.T) {
	mm, _, _, _ := buildMetamodel()
	d := design.New(mm, nil)

	raw := &RawDesign{
		StoreFormatVersion: CurrentFormatVersion,
		Metamodel:          mm.Name,
		Snapshots: []RawSnapshot{
			{ID: 1.0, SnapshotID: 2.0, Type: "Stock", StructuralType: "edge"},
		},
	}
	err := NewLoader(d).Load(raw)
	require.Error(t, err)
	var mismatch *TypeMismatchError
	assert.ErrorAs(t, err, &mismatch)
}

func TestLoaderDetectsDuplicateFrame(t *testing.T) {
	mm, _, _, _ := buildMetamodel()
	d := design.New(mm, nil)

	raw := &RawDesign{
		StoreFormatVersion: CurrentFormatVersion,
		Metamodel:          mm.Name,
		Snapshots: []RawSnapshot{
			{ID: 1.0, SnapshotID: 10.0, Type: "Stock", StructuralType: "node",
				Attributes: map[string]json.RawMessage{"name": json.RawMessage(`{"type":"string","value":"S"}`)}},
		},
		Frames: []RawFrame{
			{ID: 2.0, Snapshots: []interface{}{10.0}},
			{ID: 2.0, Snapshots: []interface{}{10.0}},
		},
	}
	err := NewLoader(d).Load(raw)
	require.Error(t, err)
	var dup *DuplicateFrameError
	assert.ErrorAs(t, err, &dup)
}

func TestLoaderDetectsFrameValidationFailure(t *testing.T) {
	mm, _, _, _ := buildMetamodel()
	d := design.New(mm, nil)

	raw := &RawDesign{
		StoreFormatVersion: CurrentFormatVersion,
		Metamodel:          mm.Name,
		Snapshots: []RawSnapshot{
			{ID: 1.0, SnapshotID: 11.0, Type: "Stock", StructuralType: "node",
				Attributes: map[string]json.RawMessage{"name": json.RawMessage(`{"type":"string","value":"S"}`)}},
			{ID: 2.0, SnapshotID: 12.0, Type: "FlowRate", StructuralType: "node",
				Attributes: map[string]json.RawMessage{"name": json.RawMessage(`{"type":"string","value":"R"}`)}},
			{ID: 3.0, SnapshotID: 13.0, Type: "Flow", StructuralType: "edge", From: 1.0, To: 2.0},
			{ID: 4.0, SnapshotID: 14.0, Type: "Flow", StructuralType: "edge", From: 1.0, To: 2.0},
		},
		Frames: []RawFrame{
			{ID: 5.0, Snapshots: []interface{}{11.0, 12.0, 13.0, 14.0}},
		},
		State: RawState{
			UndoableFrames: []interface{}{5.0},
		},
	}
	err := NewLoader(d).Load(raw)
	require.Error(t, err)
	var failed *FrameValidationFailedError
	assert.ErrorAs(t, err, &failed)
}

func TestLoaderResolvesSymbolicNames(t *testing.T) {
	mm, _, _, _ := buildMetamodel()
	d := design.New(mm, nil)

	raw := &RawDesign{
		StoreFormatVersion: CurrentFormatVersion,
		Metamodel:          mm.Name,
		Snapshots: []RawSnapshot{
			{ID: "tank", SnapshotID: "tank@1", Type: "Stock", StructuralType: "node",
				Attributes: map[string]json.RawMessage{"name": json.RawMessage(`{"type":"string","value":"Tank"}`)}},
		},
		Frames: []RawFrame{
			{ID: "frame-1", Snapshots: []interface{}{"tank@1"}},
		},
		State: RawState{
			UndoableFrames: []interface{}{"frame-1"},
			CurrentFrame:   "frame-1",
		},
	}
	require.NoError(t, NewLoader(d).Load(raw))

	current, ok := d.CurrentFrameID()
	require.True(t, ok)
	frame, ok := d.Frame(current)
	require.True(t, ok)
	assert.Len(t, frame.SnapshotIDs(), 1)
}
