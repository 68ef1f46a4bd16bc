package pow

import (
	"encoding/binary"

	"lukechampine.com/blake3"
)

// blockHashDomain is the key used to domain-separate block hashes from any
// other use of blake3 on the network. It must be exactly 32 bytes.
var blockHashDomain = [32]byte{'B', 'l', 'o', 'c', 'k', 'H', 'a', 's', 'h'}

// headerHasher computes the canonical hash of a serialized block header
// using blake3 keyed with the block-hash domain.
type headerHasher struct {
	inner *blake3.Hasher
}

func newHeaderHasher() *headerHasher {
	return &headerHasher{inner: blake3.New(32, blockHashDomain[:])}
}

// writeAll absorbs the given bytes into the hash state. blake3's Write
// never returns an error.
func (h *headerHasher) writeAll(data []byte) {
	h.inner.Write(data)
}

func (h *headerHasher) finalize() Hash {
	var sum [32]byte
	copy(sum[:], h.inner.Sum(sum[:0]))
	return HashFromLEBytes(sum)
}

// powHasher holds a blake3 state pre-loaded with
// PRE_POW_HASH || TIMESTAMP || 32 zero bytes. The prefix is absorbed once
// per block template; every nonce trial clones the state and absorbs only
// the 8 nonce bytes, so the per-nonce cost is independent of header size.
type powHasher struct {
	inner blake3.Hasher
}

func newPowHasher(prePowHash Hash, timestamp uint64) *powHasher {
	hasher := blake3.New(32, nil)
	prePowBytes := prePowHash.ToLEBytes()
	hasher.Write(prePowBytes[:])
	var timestampBytes [8]byte
	binary.LittleEndian.PutUint64(timestampBytes[:], timestamp)
	hasher.Write(timestampBytes[:])
	var padding [32]byte
	hasher.Write(padding[:])
	return &powHasher{inner: *hasher}
}

// finalizeWithNonce absorbs the nonce into a copy of the seeded state and
// squeezes 32 bytes of extended output. The receiver is left untouched, so
// it is safe to call repeatedly and from independent clones.
// blake3.Hasher contains no pointers, so a struct copy is a full clone.
func (h *powHasher) finalizeWithNonce(nonce uint64) Hash {
	hasher := h.inner
	var nonceBytes [8]byte
	binary.LittleEndian.PutUint64(nonceBytes[:], nonce)
	hasher.Write(nonceBytes[:])
	var out [32]byte
	hasher.XOF().Read(out[:])
	return HashFromLEBytes(out)
}

// heavyHash runs a single unkeyed blake3 pass over the hash, squeezing the
// result from the extended output stream.
func heavyHash(inHash Hash) Hash {
	hasher := blake3.New(32, nil)
	inBytes := inHash.ToLEBytes()
	hasher.Write(inBytes[:])
	var out [32]byte
	hasher.XOF().Read(out[:])
	return HashFromLEBytes(out)
}
