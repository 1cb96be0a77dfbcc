// Package entry defines the unit stored at every layer of the engine:
// the memtable, the WAL, and every SSTable.
package entry

// Header is the fixed-size portion of an encoded Entry, split out so
// it can be read, sized, and validated before the variable-size key
// and value that follow it.
type Header struct {
	Timestamp int64
	Seq       uint64
	KeySize   int32
	ValSize   int32
	Deleted   bool
}

// Entry is the unit of storage: a key, a value (ignored when Deleted),
// and the (Timestamp, Seq) pair that orders it against every other
// entry for the same key across the memtable and every SSTable.
type Entry struct {
	Header
	Key   string
	Value []byte
}

// NewPut builds a live entry.
func NewPut(key string, value []byte, ts int64, seq uint64) Entry {
	return Entry{
		Header: Header{
			Timestamp: ts,
			Seq:       seq,
			KeySize:   int32(len(key)),
			ValSize:   int32(len(value)),
			Deleted:   false,
		},
		Key:   key,
		Value: value,
	}
}

// NewTombstone builds a tombstone entry for key.
func NewTombstone(key string, ts int64, seq uint64) Entry {
	return Entry{
		Header: Header{
			Timestamp: ts,
			Seq:       seq,
			KeySize:   int32(len(key)),
			ValSize:   0,
			Deleted:   true,
		},
		Key: key,
	}
}

// Newer reports whether a is authoritative over b for the same key,
// by (Timestamp, Seq) recency. Ties on Timestamp are broken by Seq,
// which is itself unique per engine, so two entries are never equal.
func Newer(a, b Entry) bool {
	if a.Timestamp != b.Timestamp {
		return a.Timestamp > b.Timestamp
	}
	return a.Seq > b.Seq
}

// Less orders entries by key, for sorted storage and merge iteration.
func Less(a, b Entry) bool {
	return a.Key < b.Key
}
