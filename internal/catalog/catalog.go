// Package catalog tracks the set of live SSTables: their on-disk
// files, their creation order, and the manifest that makes that set
// durable and recoverable across restarts.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"lsmkv/constants"
	"lsmkv/internal/entry"
	"lsmkv/internal/sstable"
	"lsmkv/log"
)

// Catalog owns every live SSTable in a data directory and the
// manifest that names them: a registry supporting atomic replacement
// of many tables with any number of new ones (including none), as
// compaction requires.
type Catalog struct {
	dir          string
	manifestPath string
	nextID       uint64
	tables       map[uint64]*sstable.SSTable
}

// Open loads (or initializes) the catalog for dir, opening every live
// SSTable file named in the manifest.
func Open(dir string) (*Catalog, error) {
	manifestPath := filepath.Join(dir, constants.ManifestFileName)
	m, err := loadManifest(manifestPath)
	if err != nil {
		return nil, err
	}

	c := &Catalog{
		dir:          dir,
		manifestPath: manifestPath,
		nextID:       m.NextID,
		tables:       make(map[uint64]*sstable.SSTable),
	}

	for _, me := range m.Tables {
		path := filepath.Join(dir, me.FileName)
		sst, err := sstable.Open(me.ID, path)
		if err != nil {
			return nil, fmt.Errorf("catalog: error opening table %q from manifest: %w", path, err)
		}
		c.tables[me.ID] = sst
		log.Infof("catalog: loaded sstable id=%d path=%s entries=%d", me.ID, path, sst.Count())
	}

	if err := c.removeOrphans(m); err != nil {
		return nil, err
	}

	return c, nil
}

// removeOrphans deletes on-disk SSTable and temp files left behind by
// a compaction or flush that staged output but never reached Replace
// or CreateFrom's manifest rewrite: failed-write debris not named by
// m, the manifest Open just loaded.
func (c *Catalog) removeOrphans(m manifest) error {
	live := make(map[string]bool, len(m.Tables))
	for _, me := range m.Tables {
		live[me.FileName] = true
	}

	ents, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("catalog: error scanning data directory %q: %w", c.dir, err)
	}

	for _, ent := range ents {
		name := ent.Name()
		if ent.IsDir() {
			continue
		}
		isSSTable := strings.HasPrefix(name, constants.SSTableFilePrefix) && strings.HasSuffix(name, ".dat")
		isTempSSTable := strings.HasPrefix(name, constants.SSTableFilePrefix) && strings.HasSuffix(name, ".dat.tmp")
		if !isSSTable && !isTempSSTable {
			continue
		}
		if isSSTable && live[name] {
			continue
		}

		path := filepath.Join(c.dir, name)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("catalog: error removing orphan file %q: %w", path, err)
		}
		log.Warnf("catalog: removed orphan file %q (not in manifest)", path)
	}
	return nil
}

// CreateFrom flushes entries (already sorted by key) into a new
// SSTable, registers it in the catalog, and persists the manifest
// before returning. Used by the engine's flush path, which only ever
// adds a table and has no older set to retire atomically alongside it.
func (c *Catalog) CreateFrom(entries []entry.Entry, createdAt int64) (*sstable.SSTable, error) {
	sst, err := c.StageTable(entries, createdAt)
	if err != nil {
		return nil, err
	}

	c.tables[sst.ID] = sst
	if err := c.persist(); err != nil {
		return nil, err
	}
	return sst, nil
}

// StageTable writes entries to a new SSTable file under this
// catalog's directory and returns the handle without registering it
// in the manifest. It exists for callers, like compaction, that must
// produce several new tables and then swap them in for an old set in
// one atomic Replace: staging first means the manifest is never
// rewritten to list both the old and new tables at once. A staged
// table that never reaches Replace (a crash, or a later stage in the
// same batch failing) is orphan debris, cleaned up on the next Open.
func (c *Catalog) StageTable(entries []entry.Entry, createdAt int64) (*sstable.SSTable, error) {
	id := c.nextID
	c.nextID++

	fileName := fmt.Sprintf(constants.SSTableFileFormat, id)
	path := filepath.Join(c.dir, fileName)

	sst, err := sstable.Write(id, entries, path, createdAt)
	if err != nil {
		c.nextID--
		return nil, err
	}
	return sst, nil
}

// List returns every live table, newest first. Because an entry for a
// given key can only be superseded by a table created after it, the
// first match found while scanning in this order is already the most
// recent entry for that key.
func (c *Catalog) List() []*sstable.SSTable {
	out := make([]*sstable.SSTable, 0, len(c.tables))
	for _, t := range c.tables {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

// Replace atomically swaps oldTables out for newTables: the manifest
// is rewritten before any old file is removed, so a crash mid-replace
// leaves either the old set or the new tables durably registered,
// never neither.
func (c *Catalog) Replace(oldTables []*sstable.SSTable, newTables ...*sstable.SSTable) error {
	for _, t := range oldTables {
		delete(c.tables, t.ID)
	}
	for _, t := range newTables {
		c.tables[t.ID] = t
	}

	if err := c.persist(); err != nil {
		return err
	}

	for _, t := range oldTables {
		path := t.Path
		if err := t.Close(); err != nil {
			log.Warnf("catalog: error closing old table %q: %v", path, err)
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Warnf("catalog: error removing old table %q: %v", path, err)
		}
	}
	return nil
}

// TableCount returns how many live tables the catalog currently holds,
// the trigger the engine checks against the compaction threshold.
func (c *Catalog) TableCount() int { return len(c.tables) }

// Close releases every live table's file handle.
func (c *Catalog) Close() error {
	var firstErr error
	for _, t := range c.tables {
		if err := t.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (c *Catalog) persist() error {
	m := manifest{NextID: c.nextID}
	for id, t := range c.tables {
		m.Tables = append(m.Tables, manifestEntry{ID: id, FileName: filepath.Base(t.Path)})
	}
	sort.Slice(m.Tables, func(i, j int) bool { return m.Tables[i].ID < m.Tables[j].ID })
	return saveManifest(c.manifestPath, m)
}
