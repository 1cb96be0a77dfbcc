package constants

const (
	KB = 1 << 10 // 1024 bytes
	MB = 1 << 20 // 1024 KB
	GB = 1 << 30 // 1024 MB

	// MaxKeySize is the maximum key size that is allowed
	MaxKeySize = 1 * GB
	// MaxValueSize is the maximum value size that is allowed
	MaxValueSize = 4 * GB

	// DefaultMemtableCapacity is the number of distinct keys a memtable
	// may hold before it is sealed and flushed to an SSTable.
	DefaultMemtableCapacity = 30
	// DefaultSSTableCapacity is the maximum number of entries a single
	// SSTable file may carry.
	DefaultSSTableCapacity = 30
	// DefaultCompactionThreshold is the catalog size at which a flush
	// triggers compaction.
	DefaultCompactionThreshold = 5

	// WALFileName is the name of the append-only log file inside the
	// data directory.
	WALFileName = "wal.log"
	// ManifestFileName is the name of the catalog manifest file.
	ManifestFileName = "MANIFEST"
	// LockFileName is the name of the advisory lock file.
	LockFileName = "store.lock"

	// SSTableFilePrefix and SSTableFileFormat name on-disk SSTable files.
	SSTableFilePrefix = "sstable_"
	SSTableFileFormat = "sstable_%d.dat"
)
