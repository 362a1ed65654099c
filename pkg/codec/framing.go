package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Magic is the 8-byte signature that opens every framing preamble.
var Magic = []byte("cfiledb1")

const (
	// PreambleSize is the fixed size of the magic+length framing preamble.
	PreambleSize = 12

	// MaxMetadataSize bounds the length field of a preamble. Header and
	// footer payloads larger than this are treated as corruption.
	MaxMetadataSize = 64 * 1024
)

// ParseMagicAndLength validates a framing preamble and returns the payload
// length it declares. The input span must be exactly PreambleSize bytes.
func ParseMagicAndLength(data []byte) (uint32, error) {
	if len(data) != PreambleSize {
		return 0, fmt.Errorf("bad preamble size: got %d bytes, want %d", len(data), PreambleSize)
	}

	if !bytes.Equal(data[:len(Magic)], Magic) {
		return 0, fmt.Errorf("bad magic %q", data[:len(Magic)])
	}

	length := binary.LittleEndian.Uint32(data[len(Magic):])
	if length == 0 || length > MaxMetadataSize {
		return 0, fmt.Errorf("invalid metadata length %d", length)
	}

	return length, nil
}

// EncodeMagicAndLength serializes a framing preamble for a payload of the
// given length.
func EncodeMagicAndLength(length uint32) []byte {
	buf := make([]byte, PreambleSize)
	copy(buf, Magic)
	binary.LittleEndian.PutUint32(buf[len(Magic):], length)
	return buf
}
