package cfile

import (
	"encoding/binary"
	"fmt"
)

const intBlockHeaderSize = 8 // FirstOrdinal(4) + Count(4)

// IntBlockDecoder decodes a plain-encoded uint32 data block:
//
//	[FirstOrdinal(4)][Count(4)][Count x Value(4)]
//
// The decoder borrows the data slice; keep the owning BlockData alive for
// as long as the decoder is used.
type IntBlockDecoder struct {
	data         []byte
	firstOrdinal uint32
	count        uint32
	cur          uint32
	parsed       bool
}

var _ BlockDecoder = (*IntBlockDecoder)(nil)

// NewIntBlockDecoder creates a decoder over a raw data block.
func NewIntBlockDecoder(data []byte) *IntBlockDecoder {
	return &IntBlockDecoder{data: data}
}

// ParseHeader validates the block layout and positions the cursor at the
// first value.
func (d *IntBlockDecoder) ParseHeader() error {
	if len(d.data) < intBlockHeaderSize {
		return fmt.Errorf("%w: data block too short: %d bytes", ErrCorruption, len(d.data))
	}

	d.firstOrdinal = binary.LittleEndian.Uint32(d.data[0:4])
	d.count = binary.LittleEndian.Uint32(d.data[4:8])

	want := intBlockHeaderSize + int(d.count)*4
	if len(d.data) != want {
		return fmt.Errorf("%w: data block size mismatch: got %d bytes, want %d for %d values",
			ErrCorruption, len(d.data), want, d.count)
	}

	d.cur = 0
	d.parsed = true
	return nil
}

// OrdinalPos returns the ordinal of the value under the cursor.
func (d *IntBlockDecoder) OrdinalPos() uint32 {
	if !d.parsed {
		panic("cfile: data block header not parsed")
	}
	return d.firstOrdinal + d.cur
}

// FirstOrdinal returns the ordinal of the block's first value.
func (d *IntBlockDecoder) FirstOrdinal() uint32 {
	if !d.parsed {
		panic("cfile: data block header not parsed")
	}
	return d.firstOrdinal
}

// Count returns the number of values in the block.
func (d *IntBlockDecoder) Count() uint32 {
	if !d.parsed {
		panic("cfile: data block header not parsed")
	}
	return d.count
}

// SeekToPositionInBlock moves the cursor to pos within the block.
func (d *IntBlockDecoder) SeekToPositionInBlock(pos uint32) {
	if !d.parsed {
		panic("cfile: data block header not parsed")
	}
	if pos >= d.count {
		panic(fmt.Sprintf("cfile: position %d out of range for block of %d values", pos, d.count))
	}
	d.cur = pos
}

// CurrentValue returns the value under the cursor.
func (d *IntBlockDecoder) CurrentValue() uint32 {
	if !d.parsed {
		panic("cfile: data block header not parsed")
	}
	if d.cur >= d.count {
		panic("cfile: cursor past end of block")
	}
	base := intBlockHeaderSize + int(d.cur)*4
	return binary.LittleEndian.Uint32(d.data[base:])
}

// HasNext reports whether the cursor can advance within this block.
func (d *IntBlockDecoder) HasNext() bool {
	if !d.parsed {
		panic("cfile: data block header not parsed")
	}
	return d.cur+1 < d.count
}

// IntBlockBuilder encodes a plain uint32 data block.
type IntBlockBuilder struct {
	vals []uint32
}

// NewIntBlockBuilder creates an empty builder.
func NewIntBlockBuilder() *IntBlockBuilder {
	return &IntBlockBuilder{}
}

// Add appends a value to the block.
func (b *IntBlockBuilder) Add(v uint32) {
	b.vals = append(b.vals, v)
}

// Count returns the number of values added so far.
func (b *IntBlockBuilder) Count() int {
	return len(b.vals)
}

// Finish serializes the block with the given starting ordinal.
func (b *IntBlockBuilder) Finish(firstOrdinal uint32) []byte {
	buf := make([]byte, intBlockHeaderSize+len(b.vals)*4)
	binary.LittleEndian.PutUint32(buf[0:4], firstOrdinal)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(b.vals)))
	for i, v := range b.vals {
		binary.LittleEndian.PutUint32(buf[intBlockHeaderSize+i*4:], v)
	}
	return buf
}

// Reset clears the builder for the next block.
func (b *IntBlockBuilder) Reset() {
	b.vals = b.vals[:0]
}
