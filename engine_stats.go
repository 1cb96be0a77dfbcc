package lsmkv

import "lsmkv/internal/sstable"

// Stats reports the engine's current size and activity: total live
// keys, memtable and catalog size, per-table active/deleted entry
// counts, WAL size, and the last flush/compaction timestamps, plus an
// instance identifier distinguishing runs against the same data
// directory across restarts.
type Stats struct {
	EngineInstanceID string

	TotalKeys    int
	MemtableSize int
	TableCount   int
	Tables       []sstable.Stats

	WALSize int64

	LastFlushAt   int64
	LastCompactAt int64
}

// Stats returns a snapshot of the engine's current state. It holds
// the read lock only; a concurrent writer may change the counts
// between Stats returning and the caller reading them.
func (e *Engine) Stats() (Stats, error) {
	e.RLock()
	defer e.RUnlock()

	walSize, err := e.wal.Size()
	if err != nil {
		return Stats{}, err
	}

	tables := e.catalog.List()
	tableStats := make([]sstable.Stats, 0, len(tables))
	for _, t := range tables {
		ts, err := t.Stats()
		if err != nil {
			return Stats{}, err
		}
		tableStats = append(tableStats, ts)
	}

	// Total keys visible counts distinct live keys across the whole
	// store, not a raw sum of per-table entry counts, since the same
	// key can appear in several tables and the memtable.
	live, err := e.rangeLocked(lowestKey, highestKey)
	if err != nil {
		return Stats{}, err
	}

	return Stats{
		EngineInstanceID: e.instanceID.String(),
		TotalKeys:        len(live),
		MemtableSize:     e.memtable.Size(),
		TableCount:       len(tables),
		Tables:           tableStats,
		WALSize:          walSize,
		LastFlushAt:      e.lastFlushAt,
		LastCompactAt:    e.lastCompactAt,
	}, nil
}
