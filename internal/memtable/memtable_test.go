package memtable

import (
	"testing"

	"github.com/stretchr/testify/require"

	"lsmkv/internal/entry"
)

func TestPutGetOverwrite(t *testing.T) {
	m := New(10)

	m.Put(entry.NewPut("one", []byte("1"), 100, 1))
	m.Put(entry.NewPut("two", []byte("2"), 100, 2))
	require.Equal(t, 2, m.Size())

	got, found := m.Get("one")
	require.True(t, found)
	require.Equal(t, []byte("1"), got.Value)

	m.Put(entry.NewPut("one", []byte("1-updated"), 101, 3))
	require.Equal(t, 2, m.Size())
	got, found = m.Get("one")
	require.True(t, found)
	require.Equal(t, []byte("1-updated"), got.Value)
}

func TestDeleteInsertsTombstone(t *testing.T) {
	m := New(10)
	m.Put(entry.NewPut("k", []byte("v"), 1, 1))

	m.Delete(entry.NewTombstone("k", 2, 2))

	got, found := m.Get("k")
	require.True(t, found, "tombstones remain resident until flush")
	require.True(t, got.Deleted)
	require.Equal(t, 1, m.Size())
}

func TestIsFull(t *testing.T) {
	m := New(2)
	require.False(t, m.IsFull())

	m.Put(entry.NewPut("a", []byte("1"), 1, 1))
	require.False(t, m.IsFull())

	m.Put(entry.NewPut("b", []byte("2"), 1, 2))
	require.True(t, m.IsFull())
}

func TestDrainSortedOrdersAndEmpties(t *testing.T) {
	m := New(10)
	m.Put(entry.NewPut("charlie", []byte("3"), 1, 1))
	m.Put(entry.NewPut("alpha", []byte("1"), 1, 2))
	m.Put(entry.NewPut("bravo", []byte("2"), 1, 3))

	drained := m.DrainSorted()
	require.Len(t, drained, 3)
	require.Equal(t, "alpha", drained[0].Key)
	require.Equal(t, "bravo", drained[1].Key)
	require.Equal(t, "charlie", drained[2].Key)

	require.Equal(t, 0, m.Size())
	_, found := m.Get("alpha")
	require.False(t, found)
}

func TestRangeIsInclusiveAndDoesNotDrain(t *testing.T) {
	m := New(10)
	m.Put(entry.NewPut("a", []byte("1"), 1, 1))
	m.Put(entry.NewPut("b", []byte("2"), 1, 2))
	m.Put(entry.NewPut("c", []byte("3"), 1, 3))
	m.Put(entry.NewPut("d", []byte("4"), 1, 4))

	got := m.Range("b", "c")
	require.Len(t, got, 2)
	require.Equal(t, "b", got[0].Key)
	require.Equal(t, "c", got[1].Key)

	require.Equal(t, 4, m.Size(), "Range must not drain the memtable")
}
