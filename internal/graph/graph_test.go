package graph

import (
	"testing"

	"github.com/moolen/poietic/internal/ident"
	"github.com/moolen/poietic/internal/metamodel"
	"github.com/moolen/poietic/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stockType() *metamodel.ObjectType {
	return &metamodel.ObjectType{Name: "Stock", Structural: metamodel.Node}
}

func flowType() *metamodel.ObjectType {
	return &metamodel.ObjectType{Name: "Flow", Structural: metamodel.Edge}
}

func TestSnapshotTableInsertAndRefcount(t *testing.T) {
	table := NewSnapshotTable()
	snap := NewSnapshot(1, 1, stockType(), NodeStructure(), nil, nil)

	require.NoError(t, table.Insert(snap))
	assert.Equal(t, 1, table.RefCount(1))

	err := table.Insert(snap)
	require.Error(t, err)
	var dup *DuplicateSnapshotError
	assert.ErrorAs(t, err, &dup)

	table.InsertOrRetain(snap)
	assert.Equal(t, 2, table.RefCount(1))

	removed, err := table.Release(1)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, 1, table.RefCount(1))

	removed, err = table.Release(1)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.False(t, table.Contains(1))
}

func TestFrameGraphQueries(t *testing.T) {
	table := NewSnapshotTable()
	s1 := NewSnapshot(1, 101, stockType(), NodeStructure(), map[string]value.Variant{"name": value.NewScalar(value.NewString("S1"))}, nil)
	s2 := NewSnapshot(2, 102, stockType(), NodeStructure(), nil, nil)
	e1 := NewSnapshot(3, 103, flowType(), EdgeStructure(1, 2), nil, nil)
	require.NoError(t, table.Insert(s1))
	require.NoError(t, table.Insert(s2))
	require.NoError(t, table.Insert(e1))

	frame := NewFrame(1000, table, []ident.ID{101, 102, 103})

	n, ok := frame.Node(1)
	require.True(t, ok)
	name, _ := n.Name()
	assert.Equal(t, "S1", name)

	_, ok = frame.Edge(1)
	assert.False(t, ok)

	edge, ok := frame.Edge(3)
	require.True(t, ok)
	origin, _ := edge.Origin()
	assert.Equal(t, ident.ID(1), origin)

	out := frame.Outgoing(1)
	require.Len(t, out, 1)
	assert.Equal(t, ident.ID(3), out[0].ObjectID())

	in := frame.Incoming(2)
	require.Len(t, in, 1)

	hood := frame.Hood(1, metamodel.Outgoing, nil)
	require.Len(t, hood, 1)
	assert.Equal(t, ident.ID(2), hood[0].ObjectID())
}

func TestTransientFrameCreateAndMutate(t *testing.T) {
	idents := ident.NewManager()
	mm := metamodel.New("test")
	table := NewSnapshotTable()

	tf := NewTransientFrame(idents, mm, table)
	assert.False(t, tf.HasChanges())

	oid, err := tf.Create(stockType(), nil, nil, nil, map[string]value.Variant{"name": value.NewScalar(value.NewString("S1"))}, nil)
	require.NoError(t, err)
	assert.True(t, tf.HasChanges())

	snap, ok := tf.Object(oid)
	require.True(t, ok)
	sid1 := snap.SnapshotID()

	mutated, err := tf.Mutate(oid)
	require.NoError(t, err)
	assert.NotEqual(t, sid1, mutated.SnapshotID())

	again, err := tf.Mutate(oid)
	require.NoError(t, err)
	assert.Equal(t, mutated.SnapshotID(), again.SnapshotID(), "mutate must be idempotent")
}

func TestTransientFrameDeriveSharesUnchangedSnapshots(t *testing.T) {
	idents := ident.NewManager()
	mm := metamodel.New("test")
	table := NewSnapshotTable()

	snap := NewSnapshot(1, 101, stockType(), NodeStructure(), nil, nil)
	require.NoError(t, idents.Use(1, ident.Object))
	require.NoError(t, idents.Use(101, ident.Snapshot))
	require.NoError(t, table.Insert(snap))
	frame := NewFrame(1000, table, []ident.ID{101})

	tf := DeriveTransientFrame(idents, mm, table, frame)
	assert.False(t, tf.HasChanges())
	assert.False(t, tf.Owned(1))

	got, ok := tf.Object(1)
	require.True(t, ok)
	assert.Equal(t, ident.ID(101), got.SnapshotID())
}

func TestRemoveCascadingRemovesChildrenAndIncidentEdges(t *testing.T) {
	idents := ident.NewManager()
	mm := metamodel.New("test")
	table := NewSnapshotTable()
	tf := NewTransientFrame(idents, mm, table)

	parent, err := tf.Create(stockType(), nil, nil, nil, nil, nil)
	require.NoError(t, err)
	child, err := tf.Create(stockType(), nil, nil, nil, nil, nil)
	require.NoError(t, err)
	other, err := tf.Create(stockType(), nil, nil, nil, nil, nil)
	require.NoError(t, err)
	require.NoError(t, tf.AddChild(child, parent))

	edge, err := tf.Create(flowType(), nil, nil, func() *Structure { s := EdgeStructure(child, other); return &s }(), nil, nil)
	require.NoError(t, err)

	removed := tf.RemoveCascading(parent)
	assert.Contains(t, removed, parent)
	assert.Contains(t, removed, child)
	assert.Contains(t, removed, edge)
	assert.NotContains(t, removed, other)

	assert.False(t, tf.Contains(parent))
	assert.False(t, tf.Contains(child))
	assert.False(t, tf.Contains(edge))
	assert.True(t, tf.Contains(other))
}

func TestBrokenReferencesDetectsDanglingEdge(t *testing.T) {
	idents := ident.NewManager()
	mm := metamodel.New("test")
	table := NewSnapshotTable()
	tf := NewTransientFrame(idents, mm, table)

	origin, err := tf.Create(stockType(), nil, nil, nil, nil, nil)
	require.NoError(t, err)

	missingTarget := ident.ID(9999)
	structure := EdgeStructure(origin, missingTarget)
	_, err = tf.Create(flowType(), nil, nil, &structure, nil, nil)
	require.NoError(t, err)

	errs := tf.BrokenReferences()
	require.NotEmpty(t, errs)
	assert.Equal(t, BrokenStructureReference, errs[0].Kind)
}
