package cfile

import (
	"errors"
	"fmt"

	"github.com/cfiledb/cfiledb/pkg/codec"
)

// searchDownward recursively descends the B-tree rooted at node until it
// reaches a leaf, returning the leaf entry covering the search key and the
// key it resolved to. Each step fetches and parses one index block; the
// recursion depth equals the tree height, and the tree is write-once so no
// cycle is possible.
func searchDownward[K any](r *Reader, keys codec.KeyCodec[K], searchKey K, node codec.BlockPointer) (codec.BlockPointer, K, error) {
	var zero K

	data, err := r.ReadBlock(node)
	if err != nil {
		return codec.BlockPointer{}, zero, err
	}

	idx := codec.NewIndexBlockReader(keys, data.Slice())
	if err := idx.Parse(); err != nil {
		return codec.BlockPointer{}, zero, fmt.Errorf("%w: index block at %v: %v", ErrCorruption, node, err)
	}

	result, resolvedKey, err := idx.Search(searchKey)
	if err != nil {
		if errors.Is(err, codec.ErrNoSuchEntry) {
			return codec.BlockPointer{}, zero, fmt.Errorf("%w: no index entry at or before key", ErrNotFound)
		}
		return codec.BlockPointer{}, zero, err
	}

	if idx.IsLeaf() {
		return result, resolvedKey, nil
	}

	// An internal node resolved to another index block. Follow it.
	return searchDownward(r, keys, searchKey, result)
}

// IndexTreeIterator is a cursor over one embedded B-tree. It resolves keys
// to leaf block pointers via searchDownward and remembers the position it
// landed on.
type IndexTreeIterator[K any] struct {
	reader *Reader
	keys   codec.KeyCodec[K]
	root   codec.BlockPointer

	cur    codec.BlockPointer
	curKey K
	valid  bool
}

// NewIndexTreeIterator creates an unpositioned cursor over the tree rooted
// at root.
func NewIndexTreeIterator[K any](reader *Reader, keys codec.KeyCodec[K], root codec.BlockPointer) *IndexTreeIterator[K] {
	return &IndexTreeIterator[K]{reader: reader, keys: keys, root: root}
}

// SeekAtOrBefore positions the cursor on the leaf entry with the greatest
// key at or before the search key. On failure the cursor is left
// unpositioned.
func (it *IndexTreeIterator[K]) SeekAtOrBefore(key K) error {
	it.valid = false

	ptr, resolvedKey, err := searchDownward(it.reader, it.keys, key, it.root)
	if err != nil {
		return err
	}

	it.cur = ptr
	it.curKey = resolvedKey
	it.valid = true
	return nil
}

// CurrentBlockPointer returns the target pointer of the entry the cursor
// is on.
func (it *IndexTreeIterator[K]) CurrentBlockPointer() codec.BlockPointer {
	if !it.valid {
		panic("cfile: index iterator not positioned")
	}
	return it.cur
}

// CurrentKey returns the key of the entry the cursor is on.
func (it *IndexTreeIterator[K]) CurrentKey() K {
	if !it.valid {
		panic("cfile: index iterator not positioned")
	}
	return it.curKey
}
