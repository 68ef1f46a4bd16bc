package pow

import (
	"encoding/binary"
	"encoding/hex"
)

// Hash is a 256-bit hash value, stored as four little-endian 64-bit words.
type Hash struct {
	words [4]uint64
}

// NewHash creates a Hash from the given little-endian words.
func NewHash(words [4]uint64) Hash {
	return Hash{words: words}
}

// HashFromLEBytes creates a Hash from a little-endian byte representation.
func HashFromLEBytes(leBytes [32]byte) Hash {
	var words [4]uint64
	for i := range words {
		words[i] = binary.LittleEndian.Uint64(leBytes[i*8 : (i+1)*8])
	}
	return Hash{words: words}
}

// ToLEBytes returns the little-endian byte representation of the hash.
func (h Hash) ToLEBytes() [32]byte {
	var leBytes [32]byte
	for i, word := range h.words {
		binary.LittleEndian.PutUint64(leBytes[i*8:(i+1)*8], word)
	}
	return leBytes
}

// Equal returns whether h equals other.
func (h Hash) Equal(other Hash) bool {
	return h.words == other.words
}

func (h Hash) String() string {
	leBytes := h.ToLEBytes()
	return hex.EncodeToString(leBytes[:])
}
