package ecat

import (
	"encoding/binary"
	"fmt"
	"math"
)

// flipBytes returns a copy of b with its byte order reversed. Multi-byte
// wire fields are byte-swapped relative to how the frame templates are
// authored, so both the encode and decode paths funnel through this helper.
//
// The length of b must be even; an odd length is a template bug.
func flipBytes(b []byte) ([]byte, error) {
	if len(b)%2 != 0 {
		return nil, fmt.Errorf("%w: length %d", ErrOddLength, len(b))
	}
	flipped := make([]byte, len(b))
	for i, v := range b {
		flipped[len(b)-1-i] = v
	}
	return flipped, nil
}

// packF32LE encodes v as a 4-byte IEEE 754 float in little-endian order.
// Outbound setpoints are packed this way.
func packF32LE(v float32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
	return buf
}

// unpackF32BE decodes a 4-byte IEEE 754 float in big-endian order.
//
// Inbound flow values are read big-endian after the frame's byte-reversal
// convention has been applied. The asymmetry with packF32LE is a firmware
// quirk; both sides must be preserved exactly.
func unpackF32BE(b []byte) (float32, error) {
	if len(b) != 4 {
		return 0, fmt.Errorf("ecat: unpack float: need 4 bytes, got %d", len(b))
	}
	return math.Float32frombits(binary.BigEndian.Uint32(b)), nil
}

// zeroPad returns b extended with zero bytes to total length.
func zeroPad(b []byte, total int) ([]byte, error) {
	if len(b) > total {
		return nil, fmt.Errorf("%w: %d bytes, frame holds %d", ErrOversizePayload, len(b), total)
	}
	padded := make([]byte, total)
	copy(padded, b)
	return padded, nil
}
