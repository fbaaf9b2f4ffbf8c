package common

import (
	"encoding/binary"
	"math"
)

// Float32sToBytes encodes float32 values as little-endian bytes for GPU upload.
//
// Parameters:
//   - values: the floats to encode
//
// Returns:
//   - []byte: 4*len(values) bytes
func Float32sToBytes(values []float32) []byte {
	buf := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// Uint16sToBytes encodes uint16 values as little-endian bytes for GPU upload.
// The result is zero padded to a multiple of 4 bytes because queue writes
// must be 4-byte aligned in size.
//
// Parameters:
//   - values: the integers to encode
//
// Returns:
//   - []byte: the encoded and padded bytes
func Uint16sToBytes(values []uint16) []byte {
	size := AlignTo4(uint64(len(values) * 2))
	buf := make([]byte, size)
	for i, v := range values {
		binary.LittleEndian.PutUint16(buf[i*2:], v)
	}
	return buf
}

// AlignTo4 rounds n up to the next multiple of 4.
func AlignTo4(n uint64) uint64 {
	return (n + 3) &^ 3
}
