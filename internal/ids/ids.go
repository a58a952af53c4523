// Package ids generates the random 64-bit identities fsm.State values
// use. Generation never consults the engine — two states constructed
// independently are expected to collide only as often as an 8-byte hash
// does, a probability the spec accepts as negligible.
package ids

import (
	"encoding/binary"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

// New returns a non-zero random 64-bit identity. Zero is reserved as
// the "unset" sentinel, so the vanishingly unlikely zero hash is
// resampled rather than special-cased downstream.
func New() uint64 {
	for {
		raw := uuid.New() // v4: 16 bytes, 122 of the bits cryptographically random
		sum := blake2b.Sum512(raw[:])
		id := binary.BigEndian.Uint64(sum[:8])
		if id != 0 {
			return id
		}
	}
}
