// ABOUTME: Binary codec between float32 vectors and SQLite BLOB columns
// ABOUTME: Raw little-endian IEEE-754 32-bit values, 4 bytes per dimension
package vector

import (
	"encoding/binary"
	"fmt"
	"math"
)

// ToBlob serializes a vector as raw little-endian float32 bytes.
// The byte length is always 4 * len(v). An empty vector serializes to
// nil, which stores as NULL.
func ToBlob(v []float32) []byte {
	if len(v) == 0 {
		return nil
	}
	blob := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(blob[i*4:], math.Float32bits(f))
	}
	return blob
}

// FromBlob deserializes raw little-endian float32 bytes back into a vector.
// The blob length must be a multiple of 4.
func FromBlob(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("invalid vector blob length %d: must be a multiple of 4", len(blob))
	}
	v := make([]float32, len(blob)/4)
	for i := range v {
		bits := binary.LittleEndian.Uint32(blob[i*4:])
		v[i] = math.Float32frombits(bits)
	}
	return v, nil
}
