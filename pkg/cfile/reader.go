// Package cfile implements the read and write paths of the CFile format:
// a self-describing, immutable columnar block file holding encoded column
// values plus embedded B-tree indexes, delimited by framed header and
// footer metadata records.
package cfile

import (
	"errors"
	"fmt"
	"io"

	"github.com/cfiledb/cfiledb/pkg/codec"
)

type readerState int

const (
	stateUninitialized readerState = iota
	stateInitialized
)

// Reader provides access to a single CFile. It is constructed against a
// readable file and its size, initialized exactly once with Init, and
// read-only afterward, so an initialized Reader is safe for concurrent use
// by any number of iterators.
type Reader struct {
	file     ReadableFile
	fileSize uint64
	state    readerState

	header *Header
	footer *Footer
}

// NewReader creates a Reader over file, which must be fileSize bytes long.
// Init must be called before any other operation.
func NewReader(file ReadableFile, fileSize uint64) *Reader {
	return &Reader{
		file:     file,
		fileSize: fileSize,
		state:    stateUninitialized,
	}
}

// Init reads and parses the header and footer metadata. It must be called
// exactly once; calling any other operation first, or Init twice, is a
// programmer error and panics.
func (r *Reader) Init() error {
	if r.state != stateUninitialized {
		panic("cfile: reader already initialized")
	}

	if err := r.readAndParseHeader(); err != nil {
		return err
	}

	if err := r.readAndParseFooter(); err != nil {
		return err
	}

	r.state = stateInitialized
	return nil
}

// Header returns the parsed header metadata.
func (r *Reader) Header() *Header {
	r.checkInitialized()
	return r.header
}

// Footer returns the parsed footer metadata.
func (r *Reader) Footer() *Footer {
	r.checkInitialized()
	return r.footer
}

// FileSize returns the size of the underlying file in bytes.
func (r *Reader) FileSize() uint64 {
	return r.fileSize
}

// ValueCount returns the total number of values stored in the file.
func (r *Reader) ValueCount() uint64 {
	r.checkInitialized()
	return r.footer.ValueCount
}

// ReadBlock fetches the block identified by ptr. The pointer must come
// from already-parsed index or footer structures; a pointer outside the
// file indicates internal corruption and panics.
func (r *Reader) ReadBlock(ptr codec.BlockPointer) (BlockData, error) {
	r.checkInitialized()
	if ptr.Offset == 0 || ptr.EndOffset() >= r.fileSize {
		panic(fmt.Sprintf("cfile: bad block pointer %v in file of size %d", ptr, r.fileSize))
	}

	return r.readRange(ptr.Offset, ptr.Size)
}

// GetIndexRootBlock returns the root block pointer of the embedded index
// tree with the given identifier, or ErrNotFound if the footer lists no
// such tree.
func (r *Reader) GetIndexRootBlock(identifier string) (codec.BlockPointer, error) {
	r.checkInitialized()

	for _, info := range r.footer.BTrees {
		if info.Identifier == identifier {
			return info.Root, nil
		}
	}

	return codec.BlockPointer{}, fmt.Errorf("%w: no index tree %q", ErrNotFound, identifier)
}

// SearchPosition resolves a row ordinal through the positional index to
// the data block covering it, returning the block pointer and the first
// ordinal the block holds.
func (r *Reader) SearchPosition(ord uint32) (codec.BlockPointer, uint32, error) {
	r.checkInitialized()

	root, err := r.GetIndexRootBlock(PositionalIndexIdentifier)
	if err != nil {
		return codec.BlockPointer{}, 0, err
	}

	return searchDownward[uint32](r, codec.OrdinalKeyCodec{}, ord, root)
}

// NewPositionalIterator creates an iterator bound to the file's positional
// index. The iterator starts unseeked and must not be shared between
// callers; the Reader itself may back any number of iterators.
func (r *Reader) NewPositionalIterator() (*Iterator, error) {
	root, err := r.GetIndexRootBlock(PositionalIndexIdentifier)
	if err != nil {
		return nil, err
	}

	return newIterator(r, root), nil
}

func (r *Reader) checkInitialized() {
	if r.state != stateInitialized {
		panic("cfile: reader not initialized")
	}
}

// readRange issues exactly one read for [off, off+length). A read that
// comes back shorter than requested means the file is truncated or was
// mutated underneath us; both violate the format's immutability and are
// reported as ErrShortRead. Other I/O errors propagate unchanged.
func (r *Reader) readRange(off uint64, length uint32) (BlockData, error) {
	buf := make([]byte, length)
	n, err := r.file.ReadAt(buf, int64(off))
	if n == int(length) {
		// ReadAt may legitimately return io.EOF alongside a full read at
		// the end of the file.
		return BlockData{buf: buf}, nil
	}
	if err == nil || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return BlockData{}, fmt.Errorf("%w: got %d of %d bytes at offset %d", ErrShortRead, n, length, off)
	}
	return BlockData{}, err
}

// readMagicAndLength reads and parses the framing preamble at off.
func (r *Reader) readMagicAndLength(off uint64) (uint32, error) {
	data, err := r.readRange(off, codec.PreambleSize)
	if err != nil {
		return 0, err
	}

	length, err := codec.ParseMagicAndLength(data.Slice())
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrCorruption, err)
	}
	return length, nil
}

func (r *Reader) readAndParseHeader() error {
	if r.state != stateUninitialized {
		panic("cfile: bad reader state")
	}

	// The preamble tells us this is a CFile at all and how long the real
	// header record is.
	headerSize, err := r.readMagicAndLength(0)
	if err != nil {
		return err
	}

	data, err := r.readRange(codec.PreambleSize, headerSize)
	if err != nil {
		return err
	}

	header := &Header{}
	if err := unmarshalMetadata(data.Slice(), header); err != nil {
		return fmt.Errorf("%w: invalid cfile header: %v", ErrCorruption, err)
	}

	r.header = header
	return nil
}

func (r *Reader) readAndParseFooter() error {
	if r.state != stateUninitialized {
		panic("cfile: bad reader state")
	}
	if r.fileSize <= codec.PreambleSize*2 {
		panic(fmt.Sprintf("cfile: file too short: %d bytes", r.fileSize))
	}

	footerSize, err := r.readMagicAndLength(r.fileSize - codec.PreambleSize)
	if err != nil {
		return err
	}

	if uint64(footerSize)+codec.PreambleSize*2 > r.fileSize {
		return fmt.Errorf("%w: footer of %d bytes cannot fit in file of %d bytes",
			ErrCorruption, footerSize, r.fileSize)
	}

	off := r.fileSize - codec.PreambleSize - uint64(footerSize)
	data, err := r.readRange(off, footerSize)
	if err != nil {
		return err
	}

	footer := &Footer{}
	if err := unmarshalMetadata(data.Slice(), footer); err != nil {
		return fmt.Errorf("%w: invalid cfile footer: %v", ErrCorruption, err)
	}

	r.footer = footer
	return nil
}
