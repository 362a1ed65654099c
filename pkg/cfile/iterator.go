package cfile

import (
	"fmt"

	"github.com/cfiledb/cfiledb/pkg/codec"
)

// Iterator is a stateful cursor over a CFile's values, driven by the
// positional index. It is created unseeked; SeekToOrdinal positions it,
// and any failed seek leaves it unseeked again rather than on stale data.
// An Iterator carries mutable cursor state and must be confined to one
// caller at a time.
type Iterator struct {
	reader  *Reader
	idxIter *IndexTreeIterator[uint32]

	// The decoder borrows its view from dblkData; the two live and die
	// together.
	dblkData BlockData
	dblk     BlockDecoder
	seeked   bool
}

func newIterator(reader *Reader, posidxRoot codec.BlockPointer) *Iterator {
	return &Iterator{
		reader:  reader,
		idxIter: NewIndexTreeIterator[uint32](reader, codec.OrdinalKeyCodec{}, posidxRoot),
	}
}

// SeekToOrdinal positions the cursor on row ordinal ord. Seeking past the
// highest ordinal in the file fails with ErrNotFound.
func (it *Iterator) SeekToOrdinal(ord uint32) error {
	it.seeked = false

	if err := it.idxIter.SeekAtOrBefore(ord); err != nil {
		return err
	}

	dblkPtr := it.idxIter.CurrentBlockPointer()

	data, err := it.reader.ReadBlock(dblkPtr)
	if err != nil {
		return err
	}

	it.dblkData = data
	it.dblk = NewIntBlockDecoder(it.dblkData.Slice())
	if err := it.dblk.ParseHeader(); err != nil {
		return err
	}

	// The index always hands back the last block at or before ord, so if
	// that block ends before ord, the ordinal is past the end of the file.
	if ord >= it.dblk.OrdinalPos()+it.dblk.Count() {
		return fmt.Errorf("%w: trying to seek past highest ordinal in file", ErrNotFound)
	}

	it.dblk.SeekToPositionInBlock(ord - it.dblk.OrdinalPos())

	if got := it.dblk.OrdinalPos(); got != ord {
		panic(fmt.Sprintf("cfile: failed seek, aimed for %d got to %d", ord, got))
	}

	it.seeked = true
	return nil
}

// Next advances the cursor by one ordinal. Within a block it is a pure
// cursor move; at a block boundary it reseeks through the index. Advancing
// past the last ordinal fails with ErrNotFound and unseeks the iterator.
func (it *Iterator) Next() error {
	if !it.seeked {
		panic("cfile: iterator not seeked")
	}

	if it.dblk.HasNext() {
		it.dblk.SeekToPositionInBlock(it.dblk.OrdinalPos() - it.dblk.FirstOrdinal() + 1)
		return nil
	}

	return it.SeekToOrdinal(it.dblk.OrdinalPos() + 1)
}

// GetCurrentOrdinal returns the ordinal the cursor is positioned on.
// Calling it on an unseeked iterator is a programmer error and panics.
func (it *Iterator) GetCurrentOrdinal() uint32 {
	if !it.seeked {
		panic("cfile: iterator not seeked")
	}
	return it.dblk.OrdinalPos()
}

// GetCurrentValue returns the value the cursor is positioned on. Calling
// it on an unseeked iterator is a programmer error and panics.
func (it *Iterator) GetCurrentValue() uint32 {
	if !it.seeked {
		panic("cfile: iterator not seeked")
	}
	return it.dblk.CurrentValue()
}

// Seeked reports whether the iterator currently holds a valid position.
func (it *Iterator) Seeked() bool {
	return it.seeked
}
