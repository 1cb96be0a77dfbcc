// Package lsmkv is an embedded, single-node, durable ordered
// key-value store built on a log-structured merge tree: a
// write-ahead log for durability, an in-memory memtable for recent
// writes, and a catalog of immutable SSTables merged by a
// background-triggered compactor.
package lsmkv

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"lsmkv/config"
	"lsmkv/constants"
	"lsmkv/internal/catalog"
	"lsmkv/internal/entry"
	"lsmkv/internal/lockfile"
	"lsmkv/internal/memtable"
	"lsmkv/internal/wal"
	"lsmkv/log"
)

// Engine is a single open data directory. It owns one exclusive
// mutation lock guarding the WAL, the memtable, and the catalog, and
// a separate shared lock admitting concurrent readers.
type Engine struct {
	sync.RWMutex

	opts     *config.Options
	wal      *wal.WAL
	memtable *memtable.Memtable
	catalog  *catalog.Catalog
	lockFile *os.File

	instanceID    uuid.UUID
	lastFlushAt   int64
	lastCompactAt int64

	stopCompaction chan struct{}
}

// Open opens (or creates) the store at the configured directory,
// acquiring the data directory lock, loading the catalog, opening the
// WAL, and replaying it into a fresh memtable before returning.
func Open(options ...config.Option) (*Engine, error) {
	opts := config.DefaultOptions()
	for _, opt := range options {
		opt(opts)
	}

	if err := os.MkdirAll(opts.Directory, 0755); err != nil {
		return nil, fmt.Errorf("lsmkv: error creating data directory %q: %w", opts.Directory, err)
	}

	lf, err := lockfile.Acquire(filepath.Join(opts.Directory, constants.LockFileName))
	if err != nil {
		return nil, err
	}

	cat, err := catalog.Open(opts.Directory)
	if err != nil {
		lockfile.Release(lf)
		return nil, err
	}

	walPath := opts.WALPath
	if walPath == "" {
		walPath = filepath.Join(opts.Directory, constants.WALFileName)
	}
	w, err := wal.Open(walPath)
	if err != nil {
		cat.Close()
		lockfile.Release(lf)
		return nil, err
	}

	e := &Engine{
		opts:       opts,
		wal:        w,
		catalog:    cat,
		lockFile:   lf,
		instanceID: uuid.New(),
	}

	if err := e.replayIntoFreshMemtable(); err != nil {
		w.Close()
		cat.Close()
		lockfile.Release(lf)
		return nil, err
	}

	if opts.CompactInterval > 0 {
		e.stopCompaction = make(chan struct{})
		go e.compactionLoop(opts.CompactInterval)
	}

	return e, nil
}

// compactionLoop periodically runs compaction in the background,
// independent of the size-triggered compaction maybeFlushAndCompactLocked
// runs inline after a flush. A failed run is logged and retried on the
// next tick.
func (e *Engine) compactionLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stopCompaction:
			return
		case <-ticker.C:
			if err := e.ForceCompact(); err != nil {
				log.Errorf("lsmkv: background compaction error (non-fatal): %v", err)
			}
		}
	}
}

// replayIntoFreshMemtable applies every WAL record to a new memtable,
// flushing to a new SSTable mid-replay if the memtable fills up, so
// the memtable capacity invariant holds even during recovery. The WAL
// itself is left intact afterward; it is truncated only at the next
// natural flush, never during replay.
func (e *Engine) replayIntoFreshMemtable() error {
	records, err := e.wal.Replay()
	if err != nil {
		return err
	}

	e.memtable = memtable.New(e.opts.MemtableCapacity)
	for _, rec := range records {
		if rec.Op == wal.OpDelete {
			e.memtable.Delete(entry.NewTombstone(rec.Key, rec.Timestamp, rec.Seq))
		} else {
			e.memtable.Put(entry.NewPut(rec.Key, rec.Value, rec.Timestamp, rec.Seq))
		}

		if e.memtable.IsFull() {
			if err := e.drainAndCreateLocked(rec.Timestamp); err != nil {
				return fmt.Errorf("lsmkv: error flushing during replay: %w", err)
			}
		}
	}
	return nil
}

// ClearAll wipes every live SSTable, resets the memtable, and
// truncates the WAL; distinct from Close, for test harnesses and
// maintenance tooling.
func (e *Engine) ClearAll() error {
	e.Lock()
	defer e.Unlock()

	if err := e.catalog.Replace(e.catalog.List()); err != nil {
		return err
	}
	e.memtable = memtable.New(e.opts.MemtableCapacity)
	log.Infof("lsmkv: cleared all data in %s", e.opts.Directory)
	return e.wal.Truncate()
}

// Close flushes nothing further (the WAL already durably holds
// everything) and releases the store's file handles and directory
// lock.
func (e *Engine) Close() error {
	if e.stopCompaction != nil {
		close(e.stopCompaction)
	}

	e.Lock()
	defer e.Unlock()

	var firstErr error
	if err := e.wal.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := e.catalog.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := lockfile.Release(e.lockFile); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
