// Package sstable implements the engine's immutable, sorted, on-disk
// table: the flush target for a full memtable and the merge target of
// compaction.
package sstable

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/golang/snappy"

	"lsmkv/constants"
	"lsmkv/internal/entry"
	"lsmkv/internal/utils/fileutils"
)

const magic uint32 = 0x53535442 // "SSTB"

// Header is the fixed-size portion of an SSTable file. It is followed
// on disk by the variable-length min/max key bounds and then the
// sorted entries themselves.
type Header struct {
	Magic      uint32
	Version    uint32
	EntryCount uint32
	CreatedAt  int64
}

const headerSize = 4 + 4 + 4 + 8

// sizedHeader is implemented by any on-disk header struct encoded
// directly via encoding/binary, checked by cmd/headercheck for
// fixed-size fields only.
type sizedHeader interface {
	headerLen() int
}

func (h Header) headerLen() int { return headerSize }

// SSTable is a read-only handle onto one on-disk table. Values are
// stored snappy-compressed; MinKey/MaxKey and per-key offsets are
// resident in memory so Get and Range never scan the whole file.
type SSTable struct {
	ID            uint64
	Path          string
	header        Header
	minKey        string
	maxKey        string
	keys          []string
	offsets       []int64
	entrySz       int64 // bytes of the entries region, for Range's tail bound
	deletedCount  int
	file          *os.File
}

// Stats reports a table's size and tombstone load: total entry count
// split into active and deleted, plus its key range and on-disk size.
type Stats struct {
	ID           uint64
	EntryCount   int
	DeletedCount int
	MinKey       string
	MaxKey       string
	CreatedAt    int64
	FileSize     int64
}

// Stats returns this table's current statistics, including its
// on-disk file size.
func (s *SSTable) Stats() (Stats, error) {
	info, err := s.file.Stat()
	if err != nil {
		return Stats{}, fmt.Errorf("sstable: error statting %q: %w", s.Path, err)
	}
	return Stats{
		ID:           s.ID,
		EntryCount:   len(s.keys),
		DeletedCount: s.deletedCount,
		MinKey:       s.minKey,
		MaxKey:       s.maxKey,
		CreatedAt:    s.header.CreatedAt,
		FileSize:     info.Size(),
	}, nil
}

// Write encodes entries (already sorted and deduplicated by the
// caller) to a new SSTable file at path, publishing it atomically via
// write-to-temp, fsync, rename.
func Write(id uint64, entries []entry.Entry, path string, createdAt int64) (*SSTable, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("sstable: refusing to write empty table")
	}
	if !sort.SliceIsSorted(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key }) {
		return nil, fmt.Errorf("sstable: entries must be sorted by key")
	}

	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("sstable: error creating temp file: %w", err)
	}

	hdr := Header{
		Magic:      magic,
		Version:    1,
		EntryCount: uint32(len(entries)),
		CreatedAt:  createdAt,
	}
	w := bufio.NewWriter(f)
	if err := binary.Write(w, binary.LittleEndian, hdr); err != nil {
		f.Close()
		return nil, fmt.Errorf("sstable: error writing header: %w", err)
	}

	minKey, maxKey := entries[0].Key, entries[len(entries)-1].Key
	if err := writeLenPrefixed(w, []byte(minKey)); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeLenPrefixed(w, []byte(maxKey)); err != nil {
		f.Close()
		return nil, err
	}

	offsets := make([]int64, len(entries))
	keys := make([]string, len(entries))
	offset := int64(headerSize) + 4 + int64(len(minKey)) + 4 + int64(len(maxKey))
	deletedCount := 0

	buf := &bytes.Buffer{}
	for i, e := range entries {
		if e.Deleted {
			deletedCount++
		}
		onDisk := e
		if !e.Deleted && len(e.Value) > 0 {
			onDisk.Value = snappy.Encode(nil, e.Value)
			onDisk.ValSize = int32(len(onDisk.Value))
		}

		buf.Reset()
		if err := onDisk.Encode(buf); err != nil {
			f.Close()
			return nil, fmt.Errorf("sstable: error encoding entry %q: %w", e.Key, err)
		}

		offsets[i] = offset
		keys[i] = e.Key
		n, err := w.Write(buf.Bytes())
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("sstable: error writing entry %q: %w", e.Key, err)
		}
		offset += int64(n)
	}

	if err := w.Flush(); err != nil {
		f.Close()
		return nil, fmt.Errorf("sstable: error flushing: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return nil, fmt.Errorf("sstable: error fsyncing: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("sstable: error closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return nil, fmt.Errorf("sstable: error publishing table: %w", err)
	}
	if err := fileutils.SyncFile(filepath.Dir(path)); err != nil {
		return nil, fmt.Errorf("sstable: error fsyncing directory: %w", err)
	}

	rf, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sstable: error reopening published table: %w", err)
	}

	return &SSTable{
		ID:           id,
		Path:         path,
		header:       hdr,
		minKey:       minKey,
		maxKey:       maxKey,
		keys:         keys,
		offsets:      offsets,
		entrySz:      offset - int64(headerSize) - 4 - int64(len(minKey)) - 4 - int64(len(maxKey)),
		deletedCount: deletedCount,
		file:         rf,
	}, nil
}

// Open loads an existing SSTable file at path, scanning it once to
// build the in-memory key/offset index used by Get and Range.
func Open(id uint64, path string) (*SSTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sstable: error opening %q: %w", path, err)
	}

	r := bufio.NewReader(f)
	var hdr Header
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		f.Close()
		return nil, fmt.Errorf("sstable: error reading header of %q: %w: %w", path, constants.ErrSSTableCorrupt, err)
	}
	if hdr.Magic != magic {
		f.Close()
		return nil, fmt.Errorf("sstable: bad magic in %q: %w", path, constants.ErrSSTableCorrupt)
	}

	minKeyB, err := readLenPrefixed(r)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("sstable: error reading min key of %q: %w: %w", path, constants.ErrSSTableCorrupt, err)
	}
	maxKeyB, err := readLenPrefixed(r)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("sstable: error reading max key of %q: %w: %w", path, constants.ErrSSTableCorrupt, err)
	}

	offset := int64(headerSize) + 4 + int64(len(minKeyB)) + 4 + int64(len(maxKeyB))
	keys := make([]string, 0, hdr.EntryCount)
	offsets := make([]int64, 0, hdr.EntryCount)
	deletedCount := 0

	for i := uint32(0); i < hdr.EntryCount; i++ {
		e, err := entry.Decode(r)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("sstable: error decoding entry %d of %q: %w: %w", i, path, constants.ErrSSTableCorrupt, err)
		}
		if e.Deleted {
			deletedCount++
		}
		keys = append(keys, e.Key)
		offsets = append(offsets, offset)
		offset += int64(e.EncodedLen())
	}

	return &SSTable{
		ID:           id,
		Path:         path,
		header:       hdr,
		minKey:       string(minKeyB),
		maxKey:       string(maxKeyB),
		keys:         keys,
		offsets:      offsets,
		entrySz:      offset - int64(headerSize) - 4 - int64(len(minKeyB)) - 4 - int64(len(maxKeyB)),
		deletedCount: deletedCount,
		file:         f,
	}, nil
}

// Close releases the underlying file handle.
func (s *SSTable) Close() error {
	return s.file.Close()
}

// Count returns the number of entries (including tombstones) stored.
func (s *SSTable) Count() int { return len(s.keys) }

// MinKey returns the smallest key present.
func (s *SSTable) MinKey() string { return s.minKey }

// MaxKey returns the largest key present.
func (s *SSTable) MaxKey() string { return s.maxKey }

// CreatedAt returns the flush/compaction timestamp recorded in the
// table's header.
func (s *SSTable) CreatedAt() int64 { return s.header.CreatedAt }

// Overlaps reports whether [low, high] intersects this table's key range.
func (s *SSTable) Overlaps(low, high string) bool {
	return low <= s.maxKey && high >= s.minKey
}

// Get returns the entry for key, which may be a tombstone, via binary
// search over the in-memory key index followed by a single pread.
func (s *SSTable) Get(key string) (entry.Entry, bool, error) {
	i := sort.SearchStrings(s.keys, key)
	if i >= len(s.keys) || s.keys[i] != key {
		return entry.Entry{}, false, nil
	}

	e, err := s.readAt(s.offsets[i])
	if err != nil {
		return entry.Entry{}, false, err
	}
	return e, true, nil
}

// Range returns every entry (tombstones included; the caller decides
// how to treat them) with key in [low, high], in ascending order.
func (s *SSTable) Range(low, high string) ([]entry.Entry, error) {
	start := sort.SearchStrings(s.keys, low)

	var out []entry.Entry
	for i := start; i < len(s.keys) && s.keys[i] <= high; i++ {
		e, err := s.readAt(s.offsets[i])
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// All returns every entry in ascending order, used by compaction's
// k-way merge.
func (s *SSTable) All() ([]entry.Entry, error) {
	out := make([]entry.Entry, 0, len(s.keys))
	for _, offset := range s.offsets {
		e, err := s.readAt(offset)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// readAt decodes the entry at offset using pread (io.ReaderAt) rather
// than Seek+Read, so concurrent callers sharing this table's file
// handle (Engine's RLock permits concurrent Get/Range) never race each
// other's cursor.
func (s *SSTable) readAt(offset int64) (entry.Entry, error) {
	e, err := entry.Decode(io.NewSectionReader(s.file, offset, math.MaxInt64-offset))
	if err != nil {
		return entry.Entry{}, fmt.Errorf("sstable: error decoding entry in %q: %w", s.Path, err)
	}
	if !e.Deleted && len(e.Value) > 0 {
		decoded, err := snappy.Decode(nil, e.Value)
		if err != nil {
			return entry.Entry{}, fmt.Errorf("sstable: error decompressing value in %q: %w", s.Path, err)
		}
		e.Value = decoded
		e.ValSize = int32(len(decoded))
	}
	return e, nil
}

func writeLenPrefixed(w io.Writer, b []byte) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func readLenPrefixed(r io.Reader) ([]byte, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}
