package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
)

// ErrNoSuchEntry is returned by Search when no entry has a key at or before
// the search key, e.g. an empty node or a key below the node's minimum.
var ErrNoSuchEntry = errors.New("no entry at or before key")

const (
	indexBlockHeaderSize = 5 // EntryCount(4) + Flags(1)
	indexEntryPtrSize    = 12
	leafFlag             = 0x01
)

// IndexBlockReader parses one B-tree node out of an index block. The reader
// borrows the data slice; the caller keeps the backing buffer alive for as
// long as the reader is used.
type IndexBlockReader[K any] struct {
	keys   KeyCodec[K]
	data   []byte
	count  int
	leaf   bool
	parsed bool
}

// NewIndexBlockReader creates a reader over a raw index block.
func NewIndexBlockReader[K any](keys KeyCodec[K], data []byte) *IndexBlockReader[K] {
	return &IndexBlockReader[K]{keys: keys, data: data}
}

// Parse validates the block layout. It must succeed before any other method
// is called.
func (r *IndexBlockReader[K]) Parse() error {
	if len(r.data) < indexBlockHeaderSize {
		return fmt.Errorf("index block too short: %d bytes", len(r.data))
	}

	count := int(binary.LittleEndian.Uint32(r.data[0:4]))
	flags := r.data[4]
	if flags&^byte(leafFlag) != 0 {
		return fmt.Errorf("unknown index block flags 0x%02x", flags)
	}

	entrySize := r.keys.Width() + indexEntryPtrSize
	want := indexBlockHeaderSize + count*entrySize
	if len(r.data) != want {
		return fmt.Errorf("index block size mismatch: got %d bytes, want %d for %d entries",
			len(r.data), want, count)
	}

	r.count = count
	r.leaf = flags&leafFlag != 0
	r.parsed = true
	return nil
}

// IsLeaf reports whether the node's entries point at data blocks rather
// than child index blocks.
func (r *IndexBlockReader[K]) IsLeaf() bool {
	if !r.parsed {
		panic("codec: index block not parsed")
	}
	return r.leaf
}

// Count returns the number of entries in the node.
func (r *IndexBlockReader[K]) Count() int {
	if !r.parsed {
		panic("codec: index block not parsed")
	}
	return r.count
}

// EntryAt returns the i-th entry in key order.
func (r *IndexBlockReader[K]) EntryAt(i int) (K, BlockPointer) {
	if !r.parsed {
		panic("codec: index block not parsed")
	}
	entrySize := r.keys.Width() + indexEntryPtrSize
	base := indexBlockHeaderSize + i*entrySize
	key := r.keys.Decode(r.data[base:])
	ptr := BlockPointer{
		Offset: binary.LittleEndian.Uint64(r.data[base+r.keys.Width():]),
		Size:   binary.LittleEndian.Uint32(r.data[base+r.keys.Width()+8:]),
	}
	return key, ptr
}

// Search finds the entry with the greatest key at or before the search key
// and returns its pointer together with the key it resolved to. It fails
// with ErrNoSuchEntry when every entry's key is greater than the search
// key, or when the node is empty.
func (r *IndexBlockReader[K]) Search(key K) (BlockPointer, K, error) {
	if !r.parsed {
		panic("codec: index block not parsed")
	}

	var zero K

	// First entry whose key is strictly greater than the search key; the
	// predecessor of that position covers the key.
	i := sort.Search(r.count, func(i int) bool {
		k, _ := r.EntryAt(i)
		return r.keys.Compare(k, key) > 0
	})
	if i == 0 {
		return BlockPointer{}, zero, ErrNoSuchEntry
	}

	k, ptr := r.EntryAt(i - 1)
	return ptr, k, nil
}

// IndexBlockBuilder serializes one B-tree node. Entries must be added in
// ascending key order.
type IndexBlockBuilder[K any] struct {
	keys KeyCodec[K]
	leaf bool
	ks   []K
	ptrs []BlockPointer
}

// NewIndexBlockBuilder creates a builder for a leaf or internal node.
func NewIndexBlockBuilder[K any](keys KeyCodec[K], leaf bool) *IndexBlockBuilder[K] {
	return &IndexBlockBuilder[K]{keys: keys, leaf: leaf}
}

// Add appends an entry mapping key to ptr.
func (b *IndexBlockBuilder[K]) Add(key K, ptr BlockPointer) {
	b.ks = append(b.ks, key)
	b.ptrs = append(b.ptrs, ptr)
}

// Count returns the number of entries added so far.
func (b *IndexBlockBuilder[K]) Count() int {
	return len(b.ks)
}

// Finish serializes the node.
func (b *IndexBlockBuilder[K]) Finish() []byte {
	entrySize := b.keys.Width() + indexEntryPtrSize
	buf := make([]byte, indexBlockHeaderSize+len(b.ks)*entrySize)

	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(b.ks)))
	if b.leaf {
		buf[4] = leafFlag
	}

	for i, k := range b.ks {
		base := indexBlockHeaderSize + i*entrySize
		b.keys.Encode(buf[base:], k)
		binary.LittleEndian.PutUint64(buf[base+b.keys.Width():], b.ptrs[i].Offset)
		binary.LittleEndian.PutUint32(buf[base+b.keys.Width()+8:], b.ptrs[i].Size)
	}

	return buf
}

// Reset clears the builder for reuse at the same level.
func (b *IndexBlockBuilder[K]) Reset() {
	b.ks = b.ks[:0]
	b.ptrs = b.ptrs[:0]
}
