// Package store provides a directory-backed store of immutable column
// files. Each column is one CFile written in full on Put; reads go through
// cached CFile readers and per-call iterators.
package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/ksuid"

	"github.com/cfiledb/cfiledb/pkg/catalog"
	"github.com/cfiledb/cfiledb/pkg/cfile"
)

const columnsSubdir = "columns"

// ColumnStore provides the main column store interface
type ColumnStore struct {
	config  ColumnStoreConfig
	catalog *catalog.Catalog
	readers *readerManager
	mutex   sync.Mutex
	isOpen  bool
}

// NewColumnStore creates a new column store instance
func NewColumnStore(config ColumnStoreConfig) (*ColumnStore, error) {
	if err := os.MkdirAll(filepath.Join(config.DataDir, columnsSubdir), 0755); err != nil {
		return nil, err
	}

	return &ColumnStore{
		config:  config,
		readers: newReaderManager(),
	}, nil
}

// Open initializes the store and its catalog
func (cs *ColumnStore) Open() error {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	if cs.isOpen {
		return nil
	}

	cat, err := catalog.Open(filepath.Join(cs.config.DataDir, "catalog"))
	if err != nil {
		return err
	}

	cs.catalog = cat
	cs.isOpen = true
	return nil
}

// Close releases cached readers and the catalog
func (cs *ColumnStore) Close() error {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	if !cs.isOpen {
		return nil
	}

	cs.readers.closeAll()
	cs.isOpen = false
	return cs.catalog.Close()
}

// PutColumn writes values as a new immutable column file and registers it
// under name, replacing any previous file for that column.
func (cs *ColumnStore) PutColumn(name string, values []uint32) error {
	if err := validateName(name); err != nil {
		return err
	}

	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	if !cs.isOpen {
		return ErrStoreClosed
	}

	previous, err := cs.catalog.Get(name)
	hadPrevious := err == nil

	id := ksuid.New()
	fileName := id.String() + ".cfile"
	path := cs.columnPath(fileName)

	if err := cs.writeColumnFile(path, name, values); err != nil {
		os.Remove(path)
		return err
	}

	entry := catalog.Entry{
		ID:        id,
		File:      fileName,
		Rows:      uint64(len(values)),
		CreatedAt: time.Now().UTC(),
	}
	if err := cs.catalog.Put(name, entry); err != nil {
		os.Remove(path)
		return err
	}

	cs.readers.invalidate(name)
	if hadPrevious {
		// The old file is unreachable once the catalog points elsewhere.
		os.Remove(cs.columnPath(previous.File))
	}
	return nil
}

// DeleteColumn drops a column and its file
func (cs *ColumnStore) DeleteColumn(name string) error {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	if !cs.isOpen {
		return ErrStoreClosed
	}

	entry, err := cs.catalog.Get(name)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return ErrColumnNotFound
		}
		return err
	}

	if err := cs.catalog.Delete(name); err != nil {
		return err
	}

	cs.readers.invalidate(name)
	os.Remove(cs.columnPath(entry.File))
	return nil
}

// GetValue returns the value at ordinal within a column
func (cs *ColumnStore) GetValue(name string, ordinal uint32) (uint32, error) {
	it, err := cs.OpenIterator(name)
	if err != nil {
		return 0, err
	}

	if err := it.SeekToOrdinal(ordinal); err != nil {
		if errors.Is(err, cfile.ErrNotFound) {
			return 0, ErrOrdinalNotFound
		}
		return 0, err
	}

	return it.GetCurrentValue(), nil
}

// Scan returns the values in [start, end), clamped to the column's length.
func (cs *ColumnStore) Scan(name string, start, end uint32) ([]uint32, error) {
	info, err := cs.ColumnInfo(name)
	if err != nil {
		return nil, err
	}

	if uint64(end) > info.Rows {
		end = uint32(info.Rows)
	}
	if start >= end {
		return []uint32{}, nil
	}

	it, err := cs.OpenIterator(name)
	if err != nil {
		return nil, err
	}
	if err := it.SeekToOrdinal(start); err != nil {
		return nil, err
	}

	values := make([]uint32, 0, end-start)
	for {
		values = append(values, it.GetCurrentValue())
		if it.GetCurrentOrdinal()+1 >= end {
			return values, nil
		}
		if err := it.Next(); err != nil {
			return nil, err
		}
	}
}

// OpenIterator returns a fresh positional iterator over a column. The
// iterator must stay confined to the caller; the reader behind it is
// shared and cached.
func (cs *ColumnStore) OpenIterator(name string) (*cfile.Iterator, error) {
	reader, err := cs.readerFor(name)
	if err != nil {
		return nil, err
	}
	return reader.NewPositionalIterator()
}

// ColumnInfo returns catalog metadata for a column
func (cs *ColumnStore) ColumnInfo(name string) (ColumnInfo, error) {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	if !cs.isOpen {
		return ColumnInfo{}, ErrStoreClosed
	}

	entry, err := cs.catalog.Get(name)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return ColumnInfo{}, ErrColumnNotFound
		}
		return ColumnInfo{}, err
	}

	return ColumnInfo{
		Name:      name,
		Rows:      entry.Rows,
		File:      entry.File,
		CreatedAt: entry.CreatedAt,
	}, nil
}

// ListColumns returns the names of all stored columns
func (cs *ColumnStore) ListColumns() ([]string, error) {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	if !cs.isOpen {
		return nil, ErrStoreClosed
	}

	return cs.catalog.List()
}

// Stats summarizes the store contents
func (cs *ColumnStore) Stats() (*StoreStats, error) {
	names, err := cs.ListColumns()
	if err != nil {
		return nil, err
	}

	stats := &StoreStats{Columns: len(names)}
	for _, name := range names {
		info, err := cs.ColumnInfo(name)
		if err != nil {
			return nil, err
		}
		stats.TotalRows += info.Rows
	}
	return stats, nil
}

func (cs *ColumnStore) readerFor(name string) (*cfile.Reader, error) {
	if reader, ok := cs.readers.get(name); ok {
		return reader, nil
	}

	cs.mutex.Lock()
	if !cs.isOpen {
		cs.mutex.Unlock()
		return nil, ErrStoreClosed
	}
	entry, err := cs.catalog.Get(name)
	cs.mutex.Unlock()
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, ErrColumnNotFound
		}
		return nil, err
	}

	return cs.readers.open(name, cs.columnPath(entry.File))
}

func (cs *ColumnStore) writeColumnFile(path, name string, values []uint32) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	writer := cfile.NewWriter(file, cfile.WriterOptions{
		ColumnName:  name,
		BlockSize:   cs.config.BlockSize,
		IndexFanout: cs.config.IndexFanout,
	})
	if err := writer.AppendValues(values); err != nil {
		file.Close()
		return err
	}
	if err := writer.Finish(); err != nil {
		file.Close()
		return err
	}

	if err := file.Sync(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func (cs *ColumnStore) columnPath(fileName string) string {
	return filepath.Join(cs.config.DataDir, columnsSubdir, fileName)
}

func validateName(name string) error {
	if name == "" || strings.ContainsAny(name, "/\\") {
		return ErrInvalidName
	}
	return nil
}
