// Package wal implements the append-only, fsync-before-ack durability
// log: every mutation visible through the read path has a
// corresponding WAL record that was fsynced before the mutation
// became visible.
package wal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"lsmkv/constants"
	"lsmkv/internal/utils/strictchecks"
	"lsmkv/log"
)

// WAL is an append-only sequence of Records backed by a single file.
// Appends are serialized by the engine's write lock, so the WAL itself
// holds only a light mutex to protect the file handle and sequence
// counter against misuse from outside that contract.
type WAL struct {
	mu   sync.Mutex
	path string
	file *os.File
	seq  uint64
}

// Open opens (creating if necessary) the WAL file at path, recovering
// the next sequence number from its current contents via a replay pass.
func Open(path string) (*WAL, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("error opening WAL file %q: %w", path, err)
	}

	w := &WAL{path: path, file: f}

	records, err := w.replayLocked()
	if err != nil {
		f.Close()
		return nil, err
	}
	if len(records) > 0 {
		w.seq = records[len(records)-1].Seq
	}

	return w, nil
}

// Append writes one mutation, fsyncing before it returns, and assigns
// it the next sequence number. A failure here means the mutation was
// never acknowledged: the engine must not apply it to the memtable.
func (w *WAL) Append(op Op, key string, value []byte, timestamp int64) (uint64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	seq := w.seq + 1
	rec := Record{Seq: seq, Op: op, Key: key, Value: value, Timestamp: timestamp}
	frame := encodeFrame(rec)

	n, err := w.file.Write(frame)
	if err != nil {
		return 0, fmt.Errorf("error appending to WAL: %w", err)
	}
	strictchecks.MustBeTrueOrPanic(n == len(frame), "wal: short write to %s: wrote %d of %d frame bytes", w.path, n, len(frame))
	if err := w.file.Sync(); err != nil {
		return 0, fmt.Errorf("error fsyncing WAL: %w", err)
	}

	w.seq = seq
	return seq, nil
}

// PeekNextSeq returns the sequence number the next Append will assign,
// without assigning it. Valid only under the engine's single-writer
// contract: the caller must be the sole thread that can call Append
// between this call and its own next Append.
func (w *WAL) PeekNextSeq() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.seq + 1
}

// Replay returns every well-formed record in append order. A malformed
// or torn trailing record is dropped silently; every preceding
// well-formed record is still returned.
func (w *WAL) Replay() ([]Record, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.replayLocked()
}

func (w *WAL) replayLocked() ([]Record, error) {
	if _, err := w.file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("error seeking WAL for replay: %w", err)
	}
	defer w.file.Seek(0, io.SeekEnd)

	var records []Record
	for {
		rec, err := decodeFrame(w.file)
		if err != nil {
			torn := errors.Is(err, constants.ErrWALRecordTorn) || errors.Is(err, constants.ErrWALChecksumMismatch)
			if err != io.EOF && !torn {
				return nil, fmt.Errorf("error replaying WAL: %w", err)
			}
			// EOF (clean end) or a torn/checksum-mismatched trailing frame:
			// both just stop replay here and keep whatever was read so far.
			// Neither sentinel escapes past this point.
			if torn {
				log.Warnf("wal: dropping torn trailing record in %s: %v", w.path, err)
			}
			break
		}
		records = append(records, rec)
	}
	return records, nil
}

// Truncate discards all records. The engine calls this only after a
// successful flush has made those records redundant.
func (w *WAL) Truncate() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.file.Truncate(0); err != nil {
		return fmt.Errorf("error truncating WAL: %w", err)
	}
	if _, err := w.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("error seeking WAL after truncate: %w", err)
	}
	return w.file.Sync()
}

// Size returns the current on-disk size of the WAL file.
func (w *WAL) Size() (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	info, err := w.file.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Close releases the underlying file handle.
func (w *WAL) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}
