package pow

import (
	"math/bits"
)

const (
	// memHashWords is the scratchpad size in 64-bit words (32 KiB). It must
	// be a power of two because indices are reduced with a mask.
	memHashWords = 4096

	// memHashRounds is the number of data-dependent passes over the
	// scratchpad state.
	memHashRounds = 64
)

// memHash is the memory-hard finalization stage of the PoW pipeline. It
// seeds a xoshiro256++ generator from the mixed hash, the timestamp and
// the nonce, fills a 32 KiB scratchpad from the generator, walks the
// scratchpad with reads and writes whose addresses depend on the evolving
// state, and folds the result through a final blake3 pass.
//
// memHash is a pure function of its inputs; for fixed inputs the output is
// bit-identical across invocations and across machines.
func memHash(mixedHash Hash, timestamp uint64, nonce uint64) Hash {
	generator := &xoShiRo256PlusPlus{
		s0: mixedHash.words[0] ^ timestamp,
		s1: mixedHash.words[1] ^ nonce,
		s2: mixedHash.words[2],
		s3: mixedHash.words[3],
	}

	var scratchpad [memHashWords]uint64
	for i := range scratchpad {
		scratchpad[i] = generator.Uint64()
	}

	state := mixedHash.words
	for round := 0; round < memHashRounds; round++ {
		for i := range state {
			readIndex := state[(i+3)%4] & (memHashWords - 1)
			state[i] = bits.RotateLeft64(state[i]^scratchpad[readIndex], 29)
			state[i] += scratchpad[(state[i]^uint64(round))&(memHashWords-1)]
			// The write back makes the access pattern depend on the state
			// in both directions, so the scratchpad cannot be precomputed.
			scratchpad[state[i]&(memHashWords-1)] ^= state[i]
		}
	}

	return heavyHash(NewHash(state))
}
