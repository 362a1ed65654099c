package codec

import "encoding/binary"

// KeyCodec describes an index key type: fixed-width binary encoding plus a
// total order. Index blocks are generic over the key type through this
// interface, so each index kind (positional, value-based) supplies its own
// concrete codec.
type KeyCodec[K any] interface {
	// Width returns the encoded size of a key in bytes.
	Width() int

	// Encode writes the key into dst, which must be at least Width() bytes.
	Encode(dst []byte, key K)

	// Decode reads a key from src, which must be at least Width() bytes.
	Decode(src []byte) K

	// Compare orders two keys: negative if a < b, zero if equal, positive
	// if a > b.
	Compare(a, b K) int
}

// OrdinalKeyCodec is the KeyCodec for uint32 row ordinals, used by the
// positional index.
type OrdinalKeyCodec struct{}

func (OrdinalKeyCodec) Width() int { return 4 }

func (OrdinalKeyCodec) Encode(dst []byte, key uint32) {
	binary.LittleEndian.PutUint32(dst, key)
}

func (OrdinalKeyCodec) Decode(src []byte) uint32 {
	return binary.LittleEndian.Uint32(src)
}

func (OrdinalKeyCodec) Compare(a, b uint32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
