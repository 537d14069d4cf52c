package ident

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReserveNewIsUniqueAndReserved(t *testing.T) {
	m := NewManager()
	a := m.ReserveNew(Object)
	b := m.ReserveNew(Object)
	assert.NotEqual(t, a, b)
	assert.True(t, m.IsReserved(a))
	assert.True(t, m.IsReserved(b))
	assert.False(t, m.IsUsed(a))
}

func TestReserveIdempotentSameType(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.Reserve(5, Object))
	require.NoError(t, m.Reserve(5, Object))
	assert.True(t, m.IsReserved(5))
}

func TestReserveRejectsTypeMismatch(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.Reserve(5, Object))
	err := m.Reserve(5, Snapshot)
	require.Error(t, err)
	var dup *DuplicateIDError
	assert.ErrorAs(t, err, &dup)
}

func TestReserveIfNeeded(t *testing.T) {
	m := NewManager()
	ok, err := m.ReserveIfNeeded(10, Object)
	require.NoError(t, err)
	assert.True(t, ok)

	// Same type: still reserved, no error.
	ok, err = m.ReserveIfNeeded(10, Object)
	require.NoError(t, err)
	assert.True(t, ok)

	// Different type: rejected.
	ok, err = m.ReserveIfNeeded(10, Snapshot)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestUseReservedRequiresPriorReservation(t *testing.T) {
	m := NewManager()
	err := m.UseReserved(42)
	require.Error(t, err)
	var unk *UnknownIDError
	assert.ErrorAs(t, err, &unk)

	require.NoError(t, m.Reserve(42, Object))
	require.NoError(t, m.UseReserved(42))
	assert.True(t, m.IsUsed(42))
	assert.False(t, m.IsReserved(42))
}

func TestReleaseOnlyLegalFromReserved(t *testing.T) {
	m := NewManager()
	err := m.Release(7)
	require.Error(t, err)

	require.NoError(t, m.Reserve(7, Object))
	require.NoError(t, m.Release(7))
	assert.False(t, m.Contains(7))

	require.NoError(t, m.Reserve(7, Object))
	require.NoError(t, m.UseReserved(7))
	err = m.Release(7)
	require.Error(t, err)
}

func TestUseDirect(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.Use(3, Snapshot))
	assert.True(t, m.IsUsed(3))
	typ, ok := m.TypeOf(3)
	assert.True(t, ok)
	assert.Equal(t, Snapshot, typ)

	err := m.Use(3, Snapshot)
	assert.Error(t, err)
}
