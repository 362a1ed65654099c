package cfile

import "io"

// ReadableFile is the byte-range read primitive a Reader runs against.
// *os.File and *bytes.Reader both satisfy it.
type ReadableFile interface {
	io.ReaderAt
}

// BlockData owns a buffer of raw file bytes and exposes a view into it. The
// view returned by Slice is valid exactly as long as the BlockData is held;
// a decoder parsed from the view must be kept together with it.
type BlockData struct {
	buf []byte
}

// Slice returns the borrowed view over the owned buffer.
func (b BlockData) Slice() []byte {
	return b.buf
}

// Size returns the buffer length in bytes.
func (b BlockData) Size() int {
	return len(b.buf)
}

// BlockDecoder is the contract a per-type data block decoder must satisfy
// for the iterator to position it. The iterator depends only on this
// contract, not on any specific encoding.
type BlockDecoder interface {
	// ParseHeader parses the block header and positions the cursor at the
	// first value.
	ParseHeader() error

	// OrdinalPos returns the ordinal of the value under the cursor.
	OrdinalPos() uint32

	// Count returns the number of values in the block.
	Count() uint32

	// SeekToPositionInBlock moves the cursor to the given offset within the
	// block. The offset must be less than Count.
	SeekToPositionInBlock(pos uint32)

	// FirstOrdinal returns the ordinal of the block's first value.
	FirstOrdinal() uint32

	// CurrentValue returns the decoded value under the cursor.
	CurrentValue() uint32

	// HasNext reports whether the cursor can advance within the block.
	HasNext() bool
}

// Errors
var (
	ErrCorruption = &CFileError{"corruption detected"}
	ErrNotFound   = &CFileError{"not found"}
	ErrShortRead  = &CFileError{"short read"}
)

// CFileError represents a CFile read-path error
type CFileError struct {
	Message string
}

func (e *CFileError) Error() string {
	return e.Message
}
