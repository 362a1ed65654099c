package cfile

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cfiledb/cfiledb/pkg/codec"
)

func TestIndexTreeIterator_SeekAtOrBefore(t *testing.T) {
	raw := writeTestFile(t, seqValues(90), 10, 3)
	r := openTestReader(t, raw)

	root, err := r.GetIndexRootBlock(PositionalIndexIdentifier)
	require.NoError(t, err)

	it := NewIndexTreeIterator[uint32](r, codec.OrdinalKeyCodec{}, root)
	assert.Panics(t, func() { it.CurrentBlockPointer() })
	assert.Panics(t, func() { it.CurrentKey() })

	require.NoError(t, it.SeekAtOrBefore(47))
	assert.Equal(t, uint32(40), it.CurrentKey())

	ptr := it.CurrentBlockPointer()
	data, err := r.ReadBlock(ptr)
	require.NoError(t, err)

	d := NewIntBlockDecoder(data.Slice())
	require.NoError(t, d.ParseHeader())
	assert.Equal(t, uint32(40), d.OrdinalPos())
	assert.Equal(t, uint32(10), d.Count())
}

func TestIndexTreeIterator_FailedSeekInvalidates(t *testing.T) {
	raw := writeTestFile(t, seqValues(30), 10, 4)
	r := openTestReader(t, raw)

	root, err := r.GetIndexRootBlock(PositionalIndexIdentifier)
	require.NoError(t, err)

	it := NewIndexTreeIterator[uint32](r, codec.OrdinalKeyCodec{}, root)
	require.NoError(t, it.SeekAtOrBefore(15))

	// Corrupt index reads invalidate the cursor rather than leaving stale
	// position behind; simulate with a reader whose backing file shrank.
	trunc := NewReader(bytes.NewReader(raw[:20]), uint64(len(raw)))
	trunc.state = stateInitialized
	trunc.footer = r.footer
	trunc.header = r.header
	broken := NewIndexTreeIterator[uint32](trunc, codec.OrdinalKeyCodec{}, root)

	err = broken.SeekAtOrBefore(15)
	require.Error(t, err)
	assert.Panics(t, func() { broken.CurrentBlockPointer() })
}

func TestSearchDownward_CorruptIndexBlock(t *testing.T) {
	raw := writeTestFile(t, seqValues(30), 10, 4)
	r := openTestReader(t, raw)

	root, err := r.GetIndexRootBlock(PositionalIndexIdentifier)
	require.NoError(t, err)

	// Overwrite the root index block with garbage.
	for i := root.Offset; i < root.EndOffset(); i++ {
		raw[i] = 0xFF
	}

	r2 := openTestReader(t, raw)
	_, _, err = searchDownward[uint32](r2, codec.OrdinalKeyCodec{}, 5, root)
	assert.ErrorIs(t, err, ErrCorruption)
}
