package cfile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cfiledb/cfiledb/pkg/codec"
)

// writeTestFile builds a CFile in memory holding the given values.
func writeTestFile(t *testing.T, values []uint32, blockSize, fanout int) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := NewWriter(&buf, WriterOptions{
		ColumnName:  "test-column",
		BlockSize:   blockSize,
		IndexFanout: fanout,
	})
	require.NoError(t, w.AppendValues(values))
	require.NoError(t, w.Finish())

	return buf.Bytes()
}

// openTestReader initializes a Reader over raw file bytes.
func openTestReader(t *testing.T, raw []byte) *Reader {
	t.Helper()

	r := NewReader(bytes.NewReader(raw), uint64(len(raw)))
	require.NoError(t, r.Init())
	return r
}

// seqValues returns n values where value = ordinal * 7, so any (ordinal,
// value) pair can be cross-checked.
func seqValues(n int) []uint32 {
	vals := make([]uint32, n)
	for i := range vals {
		vals[i] = uint32(i) * 7
	}
	return vals
}

// countingFile wraps a ReadableFile and counts issued reads.
type countingFile struct {
	file  ReadableFile
	reads int
}

func (f *countingFile) ReadAt(p []byte, off int64) (int, error) {
	f.reads++
	return f.file.ReadAt(p, off)
}

func TestReader_InitParsesMetadata(t *testing.T) {
	raw := writeTestFile(t, seqValues(300), 100, 64)
	r := openTestReader(t, raw)

	header := r.Header()
	assert.Equal(t, "test-column", header.ColumnName)
	assert.Equal(t, ValueTypeUint32, header.ValueType)
	assert.Equal(t, EncodingPlain, header.Encoding)

	assert.Equal(t, uint64(300), r.ValueCount())
	require.Len(t, r.Footer().BTrees, 1)
	assert.Equal(t, PositionalIndexIdentifier, r.Footer().BTrees[0].Identifier)
}

func TestReader_InitTwicePanics(t *testing.T) {
	raw := writeTestFile(t, seqValues(10), 4, 4)
	r := openTestReader(t, raw)

	assert.Panics(t, func() { _ = r.Init() })
}

func TestReader_OperationsBeforeInitPanic(t *testing.T) {
	raw := writeTestFile(t, seqValues(10), 4, 4)
	r := NewReader(bytes.NewReader(raw), uint64(len(raw)))

	assert.Panics(t, func() { _, _ = r.ReadBlock(codec.BlockPointer{Offset: 12, Size: 8}) })
	assert.Panics(t, func() { _, _ = r.GetIndexRootBlock(PositionalIndexIdentifier) })
	assert.Panics(t, func() { _, _, _ = r.SearchPosition(0) })
}

func TestReader_TooShortFilePanics(t *testing.T) {
	for _, size := range []int{0, 12, 23, 24} {
		raw := make([]byte, size)
		r := NewReader(bytes.NewReader(raw), uint64(size))

		assert.Panics(t, func() { _ = r.readAndParseFooter() }, "size %d", size)
	}
}

func TestReader_CorruptHeaderMagic(t *testing.T) {
	raw := writeTestFile(t, seqValues(10), 4, 4)
	raw[0] ^= 0xFF

	r := NewReader(bytes.NewReader(raw), uint64(len(raw)))
	err := r.Init()
	assert.ErrorIs(t, err, ErrCorruption)
}

func TestReader_CorruptFooterMagicPropagates(t *testing.T) {
	raw := writeTestFile(t, seqValues(10), 4, 4)
	// Footer preamble occupies the last 12 bytes; break its magic. The
	// parse error must propagate out of Init rather than letting a garbage
	// length drive the footer read.
	raw[len(raw)-codec.PreambleSize] ^= 0xFF

	r := NewReader(bytes.NewReader(raw), uint64(len(raw)))
	err := r.Init()
	assert.ErrorIs(t, err, ErrCorruption)
}

func TestReader_FooterLengthBeyondFile(t *testing.T) {
	raw := writeTestFile(t, seqValues(10), 4, 4)
	// Declare a footer payload bigger than the whole file but still under
	// the metadata cap.
	binary.LittleEndian.PutUint32(raw[len(raw)-4:], uint32(len(raw))+100)

	r := NewReader(bytes.NewReader(raw), uint64(len(raw)))
	err := r.Init()
	assert.ErrorIs(t, err, ErrCorruption)
}

func TestReader_CorruptHeaderPayload(t *testing.T) {
	raw := writeTestFile(t, seqValues(10), 4, 4)
	// Scribble over the CBOR header record; the framing preamble stays
	// intact.
	for i := codec.PreambleSize; i < codec.PreambleSize+8; i++ {
		raw[i] = 0xFF
	}

	r := NewReader(bytes.NewReader(raw), uint64(len(raw)))
	err := r.Init()
	assert.ErrorIs(t, err, ErrCorruption)
}

func TestReader_TruncatedFileShortRead(t *testing.T) {
	raw := writeTestFile(t, seqValues(10), 4, 4)
	// Claim the full size but back the reader with a truncated file.
	r := NewReader(bytes.NewReader(raw[:len(raw)-6]), uint64(len(raw)))

	err := r.Init()
	assert.ErrorIs(t, err, ErrShortRead)
}

func TestReader_UnderlyingErrorPropagates(t *testing.T) {
	raw := writeTestFile(t, seqValues(10), 4, 4)
	wantErr := errors.New("disk on fire")
	r := NewReader(&failingFile{err: wantErr}, uint64(len(raw)))

	err := r.Init()
	assert.ErrorIs(t, err, wantErr)
}

type failingFile struct {
	err error
}

func (f *failingFile) ReadAt(p []byte, off int64) (int, error) {
	return 0, f.err
}

func TestReader_GetIndexRootBlock(t *testing.T) {
	raw := writeTestFile(t, seqValues(300), 100, 64)
	r := openTestReader(t, raw)

	first, err := r.GetIndexRootBlock(PositionalIndexIdentifier)
	require.NoError(t, err)

	// Same pointer regardless of call order or interleaved lookups.
	_, err = r.GetIndexRootBlock("no-such-index")
	assert.ErrorIs(t, err, ErrNotFound)

	second, err := r.GetIndexRootBlock(PositionalIndexIdentifier)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestReader_ReadBlockBadPointerPanics(t *testing.T) {
	raw := writeTestFile(t, seqValues(10), 4, 4)
	r := openTestReader(t, raw)

	testCases := []struct {
		name string
		ptr  codec.BlockPointer
	}{
		{name: "offset zero", ptr: codec.BlockPointer{Offset: 0, Size: 8}},
		{name: "past end", ptr: codec.BlockPointer{Offset: uint64(len(raw)), Size: 8}},
		{name: "straddles end", ptr: codec.BlockPointer{Offset: uint64(len(raw)) - 4, Size: 8}},
		{name: "ends at end", ptr: codec.BlockPointer{Offset: uint64(len(raw)) - 8, Size: 8}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Panics(t, func() { _, _ = r.ReadBlock(tc.ptr) })
		})
	}
}

func TestReader_ReadBlockReturnsOwnedBuffer(t *testing.T) {
	raw := writeTestFile(t, seqValues(300), 100, 64)
	r := openTestReader(t, raw)

	ptr, firstOrdinal, err := r.SearchPosition(100)
	require.NoError(t, err)
	assert.Equal(t, uint32(100), firstOrdinal)

	data, err := r.ReadBlock(ptr)
	require.NoError(t, err)
	assert.Equal(t, int(ptr.Size), data.Size())
	assert.Equal(t, data.Size(), len(data.Slice()))
}

func TestReader_SearchPosition(t *testing.T) {
	raw := writeTestFile(t, seqValues(300), 100, 64)
	r := openTestReader(t, raw)

	testCases := []struct {
		ord       uint32
		wantFirst uint32
	}{
		{ord: 0, wantFirst: 0},
		{ord: 99, wantFirst: 0},
		{ord: 100, wantFirst: 100},
		{ord: 150, wantFirst: 100},
		{ord: 299, wantFirst: 200},
		// Past the end still lands on the last block; the iterator layer
		// is what detects the overrun.
		{ord: 5000, wantFirst: 200},
	}

	for _, tc := range testCases {
		ptr, first, err := r.SearchPosition(tc.ord)
		require.NoError(t, err, "ord %d", tc.ord)
		assert.Equal(t, tc.wantFirst, first, "ord %d", tc.ord)
		assert.NotZero(t, ptr.Offset, "ord %d", tc.ord)
	}
}

func TestReader_DescentFetchesOneBlockPerLevel(t *testing.T) {
	// 9 data blocks with fan-out 3: one leaf index level of 3 blocks plus
	// a single internal root, so the tree height is 2.
	raw := writeTestFile(t, seqValues(90), 10, 3)

	cf := &countingFile{file: bytes.NewReader(raw)}
	r := NewReader(cf, uint64(len(raw)))
	require.NoError(t, r.Init())

	cf.reads = 0
	_, first, err := r.SearchPosition(47)
	require.NoError(t, err)
	assert.Equal(t, uint32(40), first)
	assert.Equal(t, 2, cf.reads, "descent should fetch exactly one index block per level")
}

func TestReader_SearchPositionFlatTree(t *testing.T) {
	// All data block entries fit in one leaf index block: height 1.
	raw := writeTestFile(t, seqValues(30), 10, 64)

	cf := &countingFile{file: bytes.NewReader(raw)}
	r := NewReader(cf, uint64(len(raw)))
	require.NoError(t, r.Init())

	cf.reads = 0
	_, first, err := r.SearchPosition(25)
	require.NoError(t, err)
	assert.Equal(t, uint32(20), first)
	assert.Equal(t, 1, cf.reads)
}

var _ io.ReaderAt = (*countingFile)(nil)
