package sstable

import (
	"path/filepath"
	"testing"

	"lsmkv/internal/entry"
)

func buildEntries() []entry.Entry {
	return []entry.Entry{
		entry.NewPut("alpha", []byte("1"), 100, 1),
		entry.NewPut("bravo", []byte("2222222222"), 100, 2),
		entry.NewTombstone("charlie", 101, 3),
		entry.NewPut("delta", []byte(""), 100, 4),
	}
}

func TestWriteAndOpenRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sstable_0.dat")

	entries := buildEntries()
	sst, err := Write(0, entries, path, 12345)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	defer sst.Close()

	if sst.Count() != 4 {
		t.Fatalf("Count() = %d, want 4", sst.Count())
	}
	if sst.MinKey() != "alpha" || sst.MaxKey() != "delta" {
		t.Fatalf("MinKey/MaxKey = %q/%q, want alpha/delta", sst.MinKey(), sst.MaxKey())
	}

	reopened, err := Open(0, path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer reopened.Close()

	if reopened.Count() != 4 || reopened.MinKey() != "alpha" || reopened.MaxKey() != "delta" {
		t.Fatalf("reopened table metadata mismatch: count=%d min=%q max=%q",
			reopened.Count(), reopened.MinKey(), reopened.MaxKey())
	}
}

func TestGet(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sstable_0.dat")
	sst, err := Write(0, buildEntries(), path, 1)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	defer sst.Close()

	e, found, err := sst.Get("bravo")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found {
		t.Fatalf("Get(bravo) not found")
	}
	if string(e.Value) != "2222222222" {
		t.Errorf("Get(bravo).Value = %q, want %q (compression round trip)", e.Value, "2222222222")
	}

	tomb, found, err := sst.Get("charlie")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found || !tomb.Deleted {
		t.Fatalf("Get(charlie) = %+v, found=%v, want tombstone", tomb, found)
	}

	_, found, err = sst.Get("missing")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Fatalf("Get(missing) found = true, want false")
	}
}

func TestRangeInclusive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sstable_0.dat")
	sst, err := Write(0, buildEntries(), path, 1)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	defer sst.Close()

	got, err := sst.Range("bravo", "charlie")
	if err != nil {
		t.Fatalf("Range() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Range() returned %d entries, want 2", len(got))
	}
	if got[0].Key != "bravo" || got[1].Key != "charlie" {
		t.Errorf("Range() = %q, %q, want bravo, charlie", got[0].Key, got[1].Key)
	}
}

func TestOverlaps(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sstable_0.dat")
	sst, err := Write(0, buildEntries(), path, 1)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	defer sst.Close()

	if !sst.Overlaps("aaa", "b") {
		t.Errorf("expected overlap with [aaa, b]")
	}
	if sst.Overlaps("zzz", "zzzz") {
		t.Errorf("expected no overlap with [zzz, zzzz]")
	}
}

func TestAllReturnsEveryEntryDecompressed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sstable_0.dat")
	sst, err := Write(0, buildEntries(), path, 1)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	defer sst.Close()

	all, err := sst.All()
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("All() returned %d entries, want 4", len(all))
	}
	if string(all[1].Value) != "2222222222" {
		t.Errorf("All()[1].Value = %q, want decompressed value", all[1].Value)
	}
}
