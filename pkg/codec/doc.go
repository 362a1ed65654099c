// Package codec implements the low-level binary formats of a CFile.
//
// A CFile is a self-describing, immutable columnar block file. Every
// serialized metadata record in the file is preceded (header) or followed
// (footer) by a fixed 12-byte framing preamble:
//
//	[Magic(8)][PayloadLength(4)]
//
// Fields:
//   - Magic: the 8-byte constant "cfiledb1"
//   - PayloadLength: 32-bit unsigned payload length in bytes (little-endian)
//
// A payload length of zero, or one larger than MaxMetadataSize, is rejected
// before any allocation happens, so a truncated or malformed file can never
// drive an unbounded read.
//
// # Index blocks
//
// Embedded B-tree indexes are stored as index blocks. Each block encodes one
// tree node:
//
//	[EntryCount(4)][Flags(1)][Entry...]
//
// Flags bit 0 marks a leaf node. Each entry is fixed width:
//
//	[Key(W)][Offset(8)][Size(4)]
//
// where W is the width of the node's key type. Leaf entries point at data
// blocks; internal entries point at child index blocks. Entries are ordered
// by key, and Search resolves a key to the entry with the greatest key at or
// before it, because the tree indexes ranges rather than exact points.
//
// Key types are pluggable through KeyCodec, which requires a fixed-width
// encoding and a total order. OrdinalKeyCodec is the instantiation used by
// the positional index (uint32 row ordinals).
//
// All integers in the format are little-endian.
package codec
