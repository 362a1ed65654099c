// Package catalog persists the column name -> CFile mapping for a column
// store. Entries live in an embedded Pebble database next to the column
// files themselves.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"
)

// ErrNotFound is returned when no entry exists for a column name.
var ErrNotFound = errors.New("column not found in catalog")

var keyPrefix = []byte("column/")

// Entry describes one registered column file.
type Entry struct {
	ID        ksuid.KSUID `json:"id"`
	File      string      `json:"file"`
	Rows      uint64      `json:"rows"`
	CreatedAt time.Time   `json:"created_at"`
}

// Catalog is a Pebble-backed column registry.
type Catalog struct {
	db *pebble.DB
}

// Open opens (or creates) the catalog database at path.
func Open(path string) (*Catalog, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	return &Catalog{db: db}, nil
}

// Put registers or replaces the entry for a column name.
func (c *Catalog) Put(name string, entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog entry: %w", err)
	}
	return c.db.Set(key(name), data, pebble.Sync)
}

// Get returns the entry for a column name, or ErrNotFound.
func (c *Catalog) Get(name string) (Entry, error) {
	data, closer, err := c.db.Get(key(name))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return Entry{}, fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		return Entry{}, err
	}
	defer closer.Close()

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return Entry{}, fmt.Errorf("failed to unmarshal catalog entry for %q: %w", name, err)
	}
	return entry, nil
}

// Delete removes the entry for a column name. Deleting an absent entry is
// not an error.
func (c *Catalog) Delete(name string) error {
	return c.db.Delete(key(name), pebble.Sync)
}

// List returns the names of all registered columns in lexical order.
func (c *Catalog) List() ([]string, error) {
	iter, err := c.db.NewIter(&pebble.IterOptions{
		LowerBound: keyPrefix,
		UpperBound: prefixUpperBound(keyPrefix),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var names []string
	for iter.First(); iter.Valid(); iter.Next() {
		names = append(names, string(iter.Key()[len(keyPrefix):]))
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	return names, nil
}

// Close closes the underlying database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

func key(name string) []byte {
	return append(append([]byte{}, keyPrefix...), name...)
}

func prefixUpperBound(prefix []byte) []byte {
	end := append([]byte{}, prefix...)
	end[len(end)-1]++
	return end
}
