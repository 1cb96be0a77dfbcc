// Package memtable implements the engine's in-memory sorted buffer of
// pending mutations: a thin, concrete wrapper over
// github.com/emirpasic/gods's red-black tree map. It only ever stores
// entry.Entry, so there is no generic or reflection-based type
// checking here, just a typed Put/Get/Range surface.
package memtable

import (
	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"

	"lsmkv/internal/entry"
)

// Memtable is an ordered map from key to the latest Entry written for
// that key. Overwriting an existing key does not increase Size().
type Memtable struct {
	tree     *treemap.Map
	capacity int
}

// New creates an empty Memtable with the given entry-count capacity.
func New(capacity int) *Memtable {
	return &Memtable{
		tree:     treemap.NewWith(utils.StringComparator),
		capacity: capacity,
	}
}

// Put inserts or overwrites e under e.Key.
func (m *Memtable) Put(e entry.Entry) {
	m.tree.Put(e.Key, e)
}

// Delete inserts a tombstone for key; it still counts toward capacity.
func (m *Memtable) Delete(e entry.Entry) {
	e.Deleted = true
	m.tree.Put(e.Key, e)
}

// Get returns the resident Entry for key, which may be a tombstone.
func (m *Memtable) Get(key string) (entry.Entry, bool) {
	v, found := m.tree.Get(key)
	if !found {
		return entry.Entry{}, false
	}
	return v.(entry.Entry), true
}

// Size returns the number of distinct keys currently held.
func (m *Memtable) Size() int {
	return m.tree.Size()
}

// IsFull reports whether Size has reached capacity.
func (m *Memtable) IsFull() bool {
	return m.tree.Size() >= m.capacity
}

// DrainSorted returns every entry in ascending key order and empties
// the memtable; the caller is expected to flush the result to an
// SSTable.
func (m *Memtable) DrainSorted() []entry.Entry {
	entries := make([]entry.Entry, 0, m.tree.Size())
	it := m.tree.Iterator()
	for it.Next() {
		entries = append(entries, it.Value().(entry.Entry))
	}
	m.tree.Clear()
	return entries
}

// Range returns every resident entry with key in [low, high], in
// ascending order, without draining the memtable. Used by the
// engine's Range merge path.
func (m *Memtable) Range(low, high string) []entry.Entry {
	var entries []entry.Entry
	it := m.tree.Iterator()
	for it.Next() {
		key := it.Key().(string)
		if key < low {
			continue
		}
		if key > high {
			break
		}
		entries = append(entries, it.Value().(entry.Entry))
	}
	return entries
}
