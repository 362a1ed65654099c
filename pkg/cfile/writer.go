package cfile

import (
	"fmt"
	"io"

	"github.com/cfiledb/cfiledb/pkg/codec"
)

const (
	// DefaultBlockSize is the number of values packed into one data block.
	DefaultBlockSize = 256

	// DefaultIndexFanout is the number of entries packed into one index
	// block.
	DefaultIndexFanout = 64
)

// WriterOptions configures a Writer.
type WriterOptions struct {
	ColumnName  string // Name recorded in the file header
	BlockSize   int    // Values per data block (DefaultBlockSize if <= 0)
	IndexFanout int    // Entries per index block (DefaultIndexFanout if < 2)
}

// Writer produces a CFile. Values are appended in ordinal order; Finish
// writes the positional index and footer and must be called exactly once.
// The resulting file is immutable.
type Writer struct {
	w    io.Writer
	opts WriterOptions

	off          uint64
	blk          *IntBlockBuilder
	firstOrdinal uint32
	valueCount   uint64
	leafEntries  []indexEntry

	started  bool
	finished bool
}

type indexEntry struct {
	key uint32
	ptr codec.BlockPointer
}

// NewWriter creates a Writer that emits the file to w.
func NewWriter(w io.Writer, opts WriterOptions) *Writer {
	if opts.BlockSize <= 0 {
		opts.BlockSize = DefaultBlockSize
	}
	if opts.IndexFanout < 2 {
		opts.IndexFanout = DefaultIndexFanout
	}

	return &Writer{
		w:    w,
		opts: opts,
		blk:  NewIntBlockBuilder(),
	}
}

// Append adds one value at the next ordinal.
func (w *Writer) Append(v uint32) error {
	if w.finished {
		panic("cfile: writer already finished")
	}
	if !w.started {
		if err := w.writeHeader(); err != nil {
			return err
		}
	}

	w.blk.Add(v)
	w.valueCount++

	if w.blk.Count() >= w.opts.BlockSize {
		return w.flushDataBlock()
	}
	return nil
}

// AppendValues adds values in order.
func (w *Writer) AppendValues(vals []uint32) error {
	for _, v := range vals {
		if err := w.Append(v); err != nil {
			return err
		}
	}
	return nil
}

// ValueCount returns the number of values appended so far.
func (w *Writer) ValueCount() uint64 {
	return w.valueCount
}

// Finish flushes the last data block, writes the positional index tree
// bottom-up, and closes the file with the framed footer.
func (w *Writer) Finish() error {
	if w.finished {
		panic("cfile: writer already finished")
	}
	if !w.started {
		if err := w.writeHeader(); err != nil {
			return err
		}
	}

	// An empty column still gets one empty data block so the index has a
	// leaf entry and the file is structurally complete.
	if w.blk.Count() > 0 || len(w.leafEntries) == 0 {
		if err := w.flushDataBlock(); err != nil {
			return err
		}
	}

	root, err := w.writeIndexTree()
	if err != nil {
		return err
	}

	footer := Footer{
		ValueCount: w.valueCount,
		BTrees: []BTreeInfo{
			{Identifier: PositionalIndexIdentifier, Root: root},
		},
	}
	payload, err := marshalMetadata(footer)
	if err != nil {
		return fmt.Errorf("failed to marshal footer: %w", err)
	}
	if len(payload) > codec.MaxMetadataSize {
		return fmt.Errorf("footer of %d bytes exceeds maximum metadata size", len(payload))
	}

	if _, err := w.writeChunk(payload); err != nil {
		return err
	}
	if _, err := w.writeChunk(codec.EncodeMagicAndLength(uint32(len(payload)))); err != nil {
		return err
	}

	w.finished = true
	return nil
}

func (w *Writer) writeHeader() error {
	header := Header{
		ColumnName: w.opts.ColumnName,
		ValueType:  ValueTypeUint32,
		Encoding:   EncodingPlain,
	}
	payload, err := marshalMetadata(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}
	if len(payload) > codec.MaxMetadataSize {
		return fmt.Errorf("header of %d bytes exceeds maximum metadata size", len(payload))
	}

	if _, err := w.writeChunk(codec.EncodeMagicAndLength(uint32(len(payload)))); err != nil {
		return err
	}
	if _, err := w.writeChunk(payload); err != nil {
		return err
	}

	w.started = true
	return nil
}

func (w *Writer) flushDataBlock() error {
	first := w.firstOrdinal
	count := uint32(w.blk.Count())

	ptr, err := w.writeChunk(w.blk.Finish(first))
	if err != nil {
		return err
	}

	w.leafEntries = append(w.leafEntries, indexEntry{key: first, ptr: ptr})
	w.firstOrdinal = first + count
	w.blk.Reset()
	return nil
}

// writeIndexTree writes the positional B-tree bottom-up: leaf index blocks
// over the data block entries, then internal levels over those, until a
// single root remains.
func (w *Writer) writeIndexTree() (codec.BlockPointer, error) {
	level := w.leafEntries
	leaf := true

	for {
		var next []indexEntry

		for start := 0; start < len(level); start += w.opts.IndexFanout {
			end := start + w.opts.IndexFanout
			if end > len(level) {
				end = len(level)
			}

			builder := codec.NewIndexBlockBuilder[uint32](codec.OrdinalKeyCodec{}, leaf)
			for _, e := range level[start:end] {
				builder.Add(e.key, e.ptr)
			}

			ptr, err := w.writeChunk(builder.Finish())
			if err != nil {
				return codec.BlockPointer{}, err
			}
			next = append(next, indexEntry{key: level[start].key, ptr: ptr})
		}

		if len(next) == 1 {
			return next[0].ptr, nil
		}
		level = next
		leaf = false
	}
}

// writeChunk writes data at the current offset and returns a pointer to it.
func (w *Writer) writeChunk(data []byte) (codec.BlockPointer, error) {
	n, err := w.w.Write(data)
	if err != nil {
		return codec.BlockPointer{}, err
	}
	if n != len(data) {
		return codec.BlockPointer{}, io.ErrShortWrite
	}

	ptr := codec.BlockPointer{Offset: w.off, Size: uint32(len(data))}
	w.off += uint64(len(data))
	return ptr, nil
}
