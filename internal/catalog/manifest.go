package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"lsmkv/constants"
	"lsmkv/internal/utils/fileutils"
)

// manifestEntry records one live SSTable's identity. The table's
// contents live in its own file; the manifest only tracks which files
// are currently live and in what id order.
type manifestEntry struct {
	ID       uint64 `json:"id"`
	FileName string `json:"file_name"`
}

type manifest struct {
	NextID uint64          `json:"next_id"`
	Tables []manifestEntry `json:"tables"`
}

// loadManifest reads the manifest file at path, returning a zero-value
// manifest (NextID 0, no tables) if it does not yet exist.
func loadManifest(path string) (manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return manifest{}, nil
		}
		return manifest{}, fmt.Errorf("catalog: error reading manifest %q: %w", path, err)
	}

	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return manifest{}, fmt.Errorf("catalog: error parsing manifest %q: %w: %w", path, constants.ErrManifestCorrupt, err)
	}
	return m, nil
}

// saveManifest persists m atomically: write to a temp file, fsync,
// rename over path, fsync the containing directory.
func saveManifest(path string, m manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("catalog: error encoding manifest: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("catalog: error writing manifest temp file: %w", err)
	}
	if err := fileutils.SyncFile(tmpPath); err != nil {
		return fmt.Errorf("catalog: error fsyncing manifest temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("catalog: error publishing manifest: %w", err)
	}
	return fileutils.SyncFile(filepath.Dir(path))
}
