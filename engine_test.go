package lsmkv

import (
	"errors"
	"testing"

	"lsmkv/config"
	"lsmkv/constants"
)

func openTestEngine(t *testing.T, opts ...config.Option) *Engine {
	t.Helper()
	dir := t.TempDir()
	all := append([]config.Option{config.WithDirectory(dir)}, opts...)
	e, err := Open(all...)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

func TestPutGetDelete(t *testing.T) {
	e := openTestEngine(t)

	if err := e.Put("a", []byte("1")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	got, err := e.Get("a")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != "1" {
		t.Errorf("Get() = %q, want %q", got, "1")
	}

	if err := e.Delete("a"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := e.Get("a"); !errors.Is(err, constants.ErrKeyNotFound) {
		t.Errorf("Get() after Delete() error = %v, want ErrKeyNotFound", err)
	}
}

func TestPutValidatesKey(t *testing.T) {
	e := openTestEngine(t)

	if err := e.Put("", []byte("1")); !errors.Is(err, constants.ErrKeyIsEmpty) {
		t.Errorf("Put(\"\") error = %v, want ErrKeyIsEmpty", err)
	}
}

func TestFlushAcrossMemtableCapacity(t *testing.T) {
	e := openTestEngine(t, config.WithMemtableCapacity(2), config.WithCompactionThreshold(100))

	for _, k := range []string{"a", "b", "c"} {
		if err := e.Put(k, []byte(k)); err != nil {
			t.Fatalf("Put(%q) error = %v", k, err)
		}
	}

	stats, err := e.Stats()
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.TableCount == 0 {
		t.Errorf("TableCount = 0, want at least one flushed table once the memtable exceeded capacity")
	}
	for _, k := range []string{"a", "b", "c"} {
		if _, err := e.Get(k); err != nil {
			t.Errorf("Get(%q) error = %v, want nil (value should survive flush)", k, err)
		}
	}
}

func TestCompactionTriggersAtThreshold(t *testing.T) {
	e := openTestEngine(t, config.WithMemtableCapacity(1), config.WithCompactionThreshold(2))

	for _, k := range []string{"a", "b", "c"} {
		if err := e.Put(k, []byte(k)); err != nil {
			t.Fatalf("Put(%q) error = %v", k, err)
		}
	}

	stats, err := e.Stats()
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.TableCount >= 2 {
		t.Errorf("TableCount = %d, want compaction to have kept it below the threshold", stats.TableCount)
	}
}

func TestRangeMergesMemtableAndSSTables(t *testing.T) {
	e := openTestEngine(t, config.WithMemtableCapacity(2), config.WithCompactionThreshold(100))

	e.Put("a", []byte("1"))
	e.Put("b", []byte("2")) // fills the memtable: a and b flushed to an sstable
	e.Put("c", []byte("3")) // stays in the memtable

	kvs, err := e.Range("b", "c")
	if err != nil {
		t.Fatalf("Range() error = %v", err)
	}
	if len(kvs) != 2 || kvs[0].Key != "b" || kvs[1].Key != "c" {
		t.Fatalf("Range(b, c) = %+v, want [b c]", kvs)
	}
}

func TestRangeRejectsEmptyBoundsAndInvertedRange(t *testing.T) {
	e := openTestEngine(t)

	if _, err := e.Range("", "z"); !errors.Is(err, constants.ErrEmptyRangeBound) {
		t.Errorf("Range(\"\", z) error = %v, want ErrEmptyRangeBound", err)
	}
	if _, err := e.Range("z", "a"); !errors.Is(err, constants.ErrInvertedRange) {
		t.Errorf("Range(z, a) error = %v, want ErrInvertedRange", err)
	}
}

func TestAllKeysAndKeysPattern(t *testing.T) {
	e := openTestEngine(t, config.WithMemtableCapacity(1), config.WithCompactionThreshold(100))

	e.Put("apple", []byte("1"))
	e.Put("banana", []byte("2"))
	e.Put("avocado", []byte("3"))

	all, err := e.AllKeys()
	if err != nil {
		t.Fatalf("AllKeys() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("AllKeys() = %v, want 3 keys", all)
	}

	matched, err := e.Keys("^a")
	if err != nil {
		t.Fatalf("Keys() error = %v", err)
	}
	if len(matched) != 2 {
		t.Fatalf("Keys(^a) = %v, want [apple avocado]", matched)
	}
}

func TestBatchPutAppliesEveryEntry(t *testing.T) {
	e := openTestEngine(t)

	if err := e.BatchPut(map[string][]byte{"a": []byte("1"), "b": []byte("2")}); err != nil {
		t.Fatalf("BatchPut() error = %v", err)
	}
	for k, want := range map[string]string{"a": "1", "b": "2"} {
		got, err := e.Get(k)
		if err != nil {
			t.Fatalf("Get(%q) error = %v", k, err)
		}
		if string(got) != want {
			t.Errorf("Get(%q) = %q, want %q", k, got, want)
		}
	}
}

func TestClearAllWipesEverything(t *testing.T) {
	e := openTestEngine(t, config.WithMemtableCapacity(1), config.WithCompactionThreshold(100))

	e.Put("a", []byte("1"))
	e.Put("b", []byte("2"))

	if err := e.ClearAll(); err != nil {
		t.Fatalf("ClearAll() error = %v", err)
	}

	if _, err := e.Get("a"); !errors.Is(err, constants.ErrKeyNotFound) {
		t.Errorf("Get(a) after ClearAll() error = %v, want ErrKeyNotFound", err)
	}
	stats, err := e.Stats()
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.TableCount != 0 || stats.TotalKeys != 0 {
		t.Errorf("Stats() after ClearAll() = %+v, want zeroed table count and key count", stats)
	}
}

func TestReopenRecoversFromWALAndCatalog(t *testing.T) {
	dir := t.TempDir()

	e, err := Open(config.WithDirectory(dir), config.WithMemtableCapacity(2), config.WithCompactionThreshold(100))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	e.Put("a", []byte("1"))
	e.ForceFlush()          // a flushed to an sstable
	e.Put("b", []byte("2")) // left in the WAL, unflushed
	if err := e.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := Open(config.WithDirectory(dir), config.WithMemtableCapacity(1), config.WithCompactionThreshold(100))
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	for k, want := range map[string]string{"a": "1", "b": "2"} {
		got, err := reopened.Get(k)
		if err != nil {
			t.Fatalf("Get(%q) after reopen error = %v", k, err)
		}
		if string(got) != want {
			t.Errorf("Get(%q) after reopen = %q, want %q", k, got, want)
		}
	}
}

func TestStatsReportsInstanceIDAndTables(t *testing.T) {
	e := openTestEngine(t, config.WithMemtableCapacity(1), config.WithCompactionThreshold(100))

	e.Put("a", []byte("1"))
	e.Put("b", []byte("2"))

	stats, err := e.Stats()
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.EngineInstanceID == "" {
		t.Error("Stats().EngineInstanceID is empty, want a uuid")
	}
	if stats.TableCount != len(stats.Tables) {
		t.Errorf("Stats().TableCount = %d, but len(Tables) = %d", stats.TableCount, len(stats.Tables))
	}
	if stats.TotalKeys != 2 {
		t.Errorf("Stats().TotalKeys = %d, want 2", stats.TotalKeys)
	}
}
