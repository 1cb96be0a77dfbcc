package constants

import "errors"

var (
	// ErrKeyIsEmpty is returned when a key is empty
	ErrKeyIsEmpty = errors.New("key is empty")
	// ErrKeyTooBig is returned when a key is larger than MaxKeySize
	ErrKeyTooBig = errors.New("key is larger than the maximum allowed key size")
	// ErrValueTooBig is returned when a value is larger than MaxValueSize
	ErrValueTooBig = errors.New("value is larger than the maximum allowed value size")
	// ErrInvertedRange is returned when a range scan's low bound sorts after its high bound
	ErrInvertedRange = errors.New("range low bound is greater than high bound")
	// ErrEmptyRangeBound is returned when a range scan bound is an empty key
	ErrEmptyRangeBound = errors.New("range bound key is empty")

	// ErrKeyNotFound is returned when a key has no live entry anywhere in the store
	ErrKeyNotFound = errors.New("key not found")

	// ErrWALRecordTorn is an internal sentinel for a truncated trailing WAL frame;
	// it never escapes Replay, which treats it as a normal recovery condition
	ErrWALRecordTorn = errors.New("torn WAL record at tail")
	// ErrWALChecksumMismatch is returned internally when a WAL frame's checksum
	// doesn't match its payload; folded into torn-tail handling by Replay
	ErrWALChecksumMismatch = errors.New("WAL record checksum mismatch")

	// ErrSSTableCorrupt is returned when an SSTable's header or entry stream
	// fails to parse; fatal for that table, never silently dropped
	ErrSSTableCorrupt = errors.New("sstable is corrupt")
	// ErrManifestCorrupt is returned when the catalog manifest fails to parse
	ErrManifestCorrupt = errors.New("catalog manifest is corrupt")

	// ErrStoreClosed names the closed-store condition; no engine operation
	// checks for it or returns it, so calls made after Close are not
	// rejected up front
	ErrStoreClosed = errors.New("store is closed")
	// ErrLockHeld is returned when another process already holds the data directory lock
	ErrLockHeld = errors.New("data directory is locked by another process")
)
