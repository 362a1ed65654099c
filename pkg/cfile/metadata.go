package cfile

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/cfiledb/cfiledb/pkg/codec"
)

// PositionalIndexIdentifier names the B-tree that maps row ordinals to the
// data block holding them. Every CFile carries one.
const PositionalIndexIdentifier = "poskey"

// Value encodings understood by this package.
const (
	ValueTypeUint32 = "uint32"
	EncodingPlain   = "plain"
)

// Header describes the column a CFile stores. It is read once at Init and
// immutable afterward.
type Header struct {
	ColumnName string `cbor:"column_name"`
	ValueType  string `cbor:"value_type"`
	Encoding   string `cbor:"encoding"`
}

// BTreeInfo locates one embedded index tree.
type BTreeInfo struct {
	Identifier string             `cbor:"identifier"`
	Root       codec.BlockPointer `cbor:"root"`
}

// Footer closes a CFile: the total row count and the embedded index trees.
type Footer struct {
	ValueCount uint64      `cbor:"value_count"`
	BTrees     []BTreeInfo `cbor:"btrees"`
}

// Metadata records are CBOR with deterministic field ordering, so the same
// logical record always serializes to the same bytes.
var cborEnc cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	cborEnc = em
}

func marshalMetadata(v interface{}) ([]byte, error) {
	return cborEnc.Marshal(v)
}

func unmarshalMetadata(data []byte, v interface{}) error {
	return cbor.Unmarshal(data, v)
}
