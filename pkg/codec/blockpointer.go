package codec

import "fmt"

// BlockPointer identifies a contiguous byte range within a CFile. Offset 0
// is reserved for the file preamble, so a valid pointer always has a
// positive offset.
type BlockPointer struct {
	Offset uint64 `cbor:"offset" json:"offset"`
	Size   uint32 `cbor:"size" json:"size"`
}

func (p BlockPointer) String() string {
	return fmt.Sprintf("offset=%d size=%d", p.Offset, p.Size)
}

// EndOffset returns the first byte offset past the block.
func (p BlockPointer) EndOffset() uint64 {
	return p.Offset + uint64(p.Size)
}
