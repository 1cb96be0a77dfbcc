package lsmkv

import (
	"regexp"
	"sort"

	"lsmkv/constants"
	"lsmkv/internal/compaction"
	"lsmkv/internal/entry"
	"lsmkv/internal/wal"
	"lsmkv/log"
)

// Put inserts or overwrites key with value. It appends to the WAL
// (fsyncing before returning) before applying the mutation to the
// memtable, so a crash can never lose an acknowledged write.
func (e *Engine) Put(key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if len(value) > constants.MaxValueSize {
		return constants.ErrValueTooBig
	}

	e.Lock()
	defer e.Unlock()

	ts := int64(e.wal.PeekNextSeq())
	seq, err := e.wal.Append(wal.OpPut, key, value, ts)
	if err != nil {
		return err
	}

	e.memtable.Put(entry.NewPut(key, value, ts, seq))
	return e.maybeFlushAndCompactLocked(ts)
}

// Delete inserts a tombstone for key.
func (e *Engine) Delete(key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	e.Lock()
	defer e.Unlock()

	ts := int64(e.wal.PeekNextSeq())
	seq, err := e.wal.Append(wal.OpDelete, key, nil, ts)
	if err != nil {
		return err
	}

	e.memtable.Delete(entry.NewTombstone(key, ts, seq))
	return e.maybeFlushAndCompactLocked(ts)
}

// BatchPut applies entries one at a time in ascending key order (a map
// carries no input order); each is logged and applied individually,
// with no all-or-nothing guarantee across the batch. A crash mid-batch
// may leave a prefix applied.
func (e *Engine) BatchPut(entries map[string][]byte) error {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys) // deterministic WAL ordering across runs with the same input

	for _, k := range keys {
		if err := e.Put(k, entries[k]); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the value for key, or ErrKeyNotFound if no live entry
// exists anywhere in the store. It consults the memtable first, then
// the catalog's tables youngest to oldest, short-circuiting on the
// first hit.
func (e *Engine) Get(key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	e.RLock()
	defer e.RUnlock()

	if mtEntry, found := e.memtable.Get(key); found {
		if mtEntry.Deleted {
			return nil, constants.ErrKeyNotFound
		}
		return mtEntry.Value, nil
	}

	for _, t := range e.catalog.List() {
		if key < t.MinKey() || key > t.MaxKey() {
			continue
		}
		got, found, err := t.Get(key)
		if err != nil {
			return nil, err
		}
		if found {
			if got.Deleted {
				return nil, constants.ErrKeyNotFound
			}
			return got.Value, nil
		}
	}

	return nil, constants.ErrKeyNotFound
}

// Range returns every live (non-tombstone) key/value pair with key in
// [low, high], merged across the memtable and every overlapping
// SSTable, reconciled by (timestamp, seq) recency per key.
func (e *Engine) Range(low, high string) ([]KV, error) {
	if err := validateRange(low, high); err != nil {
		return nil, err
	}

	e.RLock()
	defer e.RUnlock()
	return e.rangeLocked(low, high)
}

// rangeLocked is Range's implementation, callable with bounds that
// validateRange would reject (AllKeys/Keys use the full lowestKey/
// highestKey span, which is not a user-facing range request). The
// caller must hold at least the read lock.
func (e *Engine) rangeLocked(low, high string) ([]KV, error) {
	best := make(map[string]entry.Entry)
	merge := func(entries []entry.Entry) {
		for _, candidate := range entries {
			if cur, ok := best[candidate.Key]; !ok || entry.Newer(candidate, cur) {
				best[candidate.Key] = candidate
			}
		}
	}

	merge(e.memtable.Range(low, high))
	for _, t := range e.catalog.List() {
		if !t.Overlaps(low, high) {
			continue
		}
		entries, err := t.Range(low, high)
		if err != nil {
			return nil, err
		}
		merge(entries)
	}

	out := make([]KV, 0, len(best))
	for _, candidate := range best {
		if candidate.Deleted {
			continue
		}
		out = append(out, KV{Key: candidate.Key, Value: candidate.Value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// KV is one key/value pair returned by Range.
type KV struct {
	Key   string
	Value []byte
}

// AllKeys returns every live key in the store, in ascending order,
// built on top of Range rather than a separate index.
func (e *Engine) AllKeys() ([]string, error) {
	return e.Keys("")
}

// Keys returns every live key matching pattern (a regexp; an empty
// pattern matches everything).
func (e *Engine) Keys(pattern string) ([]string, error) {
	var re *regexp.Regexp
	if pattern != "" {
		compiled, err := regexp.Compile(pattern)
		if err != nil {
			return nil, err
		}
		re = compiled
	}

	e.RLock()
	kvs, err := e.rangeLocked(lowestKey, highestKey)
	e.RUnlock()
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(kvs))
	for _, kv := range kvs {
		if re == nil || re.MatchString(kv.Key) {
			keys = append(keys, kv.Key)
		}
	}
	return keys, nil
}

const (
	lowestKey  = ""
	highestKey = "\xff\xff\xff\xff\xff\xff\xff\xff\xff\xff\xff\xff\xff\xff\xff\xff"
)

// ForceFlush drains the memtable to a new SSTable even if it is not
// full, a no-op if the memtable is empty.
func (e *Engine) ForceFlush() error {
	e.Lock()
	defer e.Unlock()
	return e.flushLocked(0)
}

// ForceCompact runs compaction regardless of the catalog's current
// table count.
func (e *Engine) ForceCompact() error {
	e.Lock()
	defer e.Unlock()
	return e.compactLocked(0)
}

func (e *Engine) maybeFlushAndCompactLocked(ts int64) error {
	if e.memtable.IsFull() {
		if err := e.flushLocked(ts); err != nil {
			return err
		}
	}
	if e.catalog.TableCount() >= e.opts.CompactionThreshold {
		if err := e.compactLocked(ts); err != nil {
			// A failed compaction aborts without touching the catalog
			// and is not fatal to the engine.
			log.Errorf("lsmkv: compaction error (non-fatal): %v", err)
		}
	}
	return nil
}

// flushLocked implements the flush protocol: drain, create, truncate.
// The caller must hold the write lock.
func (e *Engine) flushLocked(ts int64) error {
	if err := e.drainAndCreateLocked(ts); err != nil {
		return err
	}
	return e.wal.Truncate()
}

// drainAndCreateLocked is the part of the flush protocol shared with
// replay-time recovery flushes: it never truncates the WAL, since
// recovery keeps the WAL fully intact until the first natural flush
// afterward (see DESIGN.md's deferred-truncation decision).
func (e *Engine) drainAndCreateLocked(ts int64) error {
	drained := e.memtable.DrainSorted()
	if len(drained) == 0 {
		return nil
	}

	if _, err := e.catalog.CreateFrom(drained, ts); err != nil {
		return err
	}
	e.lastFlushAt = ts
	log.Infof("lsmkv: flushed %d entries to a new sstable", len(drained))
	return nil
}

func (e *Engine) compactLocked(ts int64) error {
	if err := compaction.Run(e.catalog, e.opts.SSTableCapacity, ts); err != nil {
		return err
	}
	e.lastCompactAt = ts
	log.Infof("lsmkv: compacted catalog down to %d tables", e.catalog.TableCount())
	return nil
}

func validateKey(key string) error {
	if len(key) == 0 {
		return constants.ErrKeyIsEmpty
	}
	if len(key) > constants.MaxKeySize {
		return constants.ErrKeyTooBig
	}
	return nil
}

func validateRange(low, high string) error {
	if low == "" || high == "" {
		return constants.ErrEmptyRangeBound
	}
	if low > high {
		return constants.ErrInvertedRange
	}
	return nil
}
