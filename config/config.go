package config

import (
	"time"

	"lsmkv/constants"
)

// Options configures an Engine. Construct it with DefaultOptions and
// apply Option funcs on top of it.
type Options struct {
	// Directory holds the SSTable files and the catalog manifest.
	Directory string
	// WALPath is the path of the write-ahead log file.
	WALPath string

	// MemtableCapacity is the number of distinct keys the active
	// memtable may hold before it is sealed and flushed.
	MemtableCapacity int
	// SSTableCapacity is the maximum number of entries a single
	// SSTable may carry.
	SSTableCapacity int
	// CompactionThreshold is the catalog size that triggers compaction
	// after a flush.
	CompactionThreshold int

	// CompactInterval, if non-zero, drives a background compaction
	// loop in addition to the size-triggered one.
	CompactInterval time.Duration
	// SyncWriteInterval is accepted for config-surface parity; the WAL
	// fsyncs on every append regardless, since every acknowledged write
	// must already be durable.
	SyncWriteInterval time.Duration
}

// Option mutates an Options in place.
type Option func(*Options)

func DefaultOptions() *Options {
	return &Options{
		Directory:           ".",
		WALPath:             "",
		MemtableCapacity:    constants.DefaultMemtableCapacity,
		SSTableCapacity:     constants.DefaultSSTableCapacity,
		CompactionThreshold: constants.DefaultCompactionThreshold,
		CompactInterval:     0,
		SyncWriteInterval:   time.Second,
	}
}

// WithDirectory sets the data directory.
func WithDirectory(directory string) Option {
	return func(o *Options) {
		o.Directory = directory
	}
}

// WithWALPath overrides the WAL file location; defaults to
// <Directory>/wal.log when left empty.
func WithWALPath(path string) Option {
	return func(o *Options) {
		o.WALPath = path
	}
}

// WithMemtableCapacity overrides the memtable's entry budget.
func WithMemtableCapacity(n int) Option {
	return func(o *Options) {
		o.MemtableCapacity = n
	}
}

// WithSSTableCapacity overrides the per-SSTable entry budget.
func WithSSTableCapacity(n int) Option {
	return func(o *Options) {
		o.SSTableCapacity = n
	}
}

// WithCompactionThreshold overrides the catalog size that triggers compaction.
func WithCompactionThreshold(n int) Option {
	return func(o *Options) {
		o.CompactionThreshold = n
	}
}

// WithCompactInterval enables a periodic background compaction loop.
func WithCompactInterval(interval time.Duration) Option {
	return func(o *Options) {
		o.CompactInterval = interval
	}
}

// WithSyncWriteInterval sets SyncWriteInterval; see its doc comment.
func WithSyncWriteInterval(interval time.Duration) Option {
	return func(o *Options) {
		o.SyncWriteInterval = interval
	}
}
