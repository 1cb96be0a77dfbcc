// Package compaction merges every table in a catalog into a smaller
// number of tables, dropping superseded entries and tombstones.
package compaction

import (
	"container/heap"
	"fmt"

	"lsmkv/constants"
	"lsmkv/internal/catalog"
	"lsmkv/internal/entry"
	"lsmkv/internal/sstable"
)

// mergeItem is one position in the k-way merge: the next unconsumed
// entry from a single source table, plus enough bookkeeping to break
// ties in favor of the most recently created source.
type mergeItem struct {
	entry      entry.Entry
	sourceRank int // higher rank == newer source table
	entries    []entry.Entry
	next       int
}

type mergeHeap []*mergeItem

func (h mergeHeap) Len() int { return len(h) }
func (h mergeHeap) Less(i, j int) bool {
	if h[i].entry.Key != h[j].entry.Key {
		return h[i].entry.Key < h[j].entry.Key
	}
	return h[i].sourceRank > h[j].sourceRank
}
func (h mergeHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *mergeHeap) Push(x any)        { *h = append(*h, x.(*mergeItem)) }
func (h *mergeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Run merges every table currently in cat into one or more new tables
// under "compact all", the policy chosen for this engine: all catalog
// tables are merged in a single pass, tombstones are dropped
// unconditionally (no older table can survive outside the merge set
// to need them), and output is split across multiple tables once
// entriesPerTable is reached.
func Run(cat *catalog.Catalog, entriesPerTable int, createdAt int64) error {
	sources := cat.List() // newest first
	if len(sources) < 2 {
		return nil
	}

	merged, err := mergeAll(sources)
	if err != nil {
		return fmt.Errorf("compaction: error merging: %w", err)
	}

	if len(merged) == 0 {
		// Every entry was a tombstone with nothing older to shadow; the
		// catalog simply loses all its tables.
		return cat.Replace(sources)
	}

	newTables, err := writeSplit(cat, merged, entriesPerTable, createdAt)
	if err != nil {
		return err
	}

	if err := cat.Replace(sources, newTables...); err != nil {
		return fmt.Errorf("compaction: error publishing merged tables: %w", err)
	}
	return nil
}

func mergeAll(sources []*sstable.SSTable) ([]entry.Entry, error) {
	h := &mergeHeap{}
	heap.Init(h)

	for rank, src := range sources {
		all, err := src.All()
		if err != nil {
			return nil, err
		}
		if len(all) == 0 {
			continue
		}
		// sources[0] is newest (catalog.List order); invert rank so the
		// newest source wins tie-breaks in the heap.
		heap.Push(h, &mergeItem{entry: all[0], sourceRank: len(sources) - rank, entries: all, next: 1})
	}

	var out []entry.Entry
	var lastKey string
	haveLast := false

	for h.Len() > 0 {
		top := heap.Pop(h).(*mergeItem)
		e := top.entry

		if top.next < len(top.entries) {
			top.entry = top.entries[top.next]
			top.next++
			heap.Push(h, top)
		}

		if haveLast && e.Key == lastKey {
			continue // a newer source for this key already won
		}
		lastKey = e.Key
		haveLast = true

		if e.Deleted {
			continue // compact-all: no surviving older table needs this tombstone
		}
		out = append(out, e)
	}

	return out, nil
}

func writeSplit(cat *catalog.Catalog, merged []entry.Entry, entriesPerTable int, createdAt int64) ([]*sstable.SSTable, error) {
	if entriesPerTable <= 0 {
		entriesPerTable = constants.DefaultSSTableCapacity
	}

	var tables []*sstable.SSTable
	for start := 0; start < len(merged); start += entriesPerTable {
		end := start + entriesPerTable
		if end > len(merged) {
			end = len(merged)
		}
		t, err := cat.StageTable(merged[start:end], createdAt)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}
