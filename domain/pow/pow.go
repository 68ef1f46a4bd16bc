package pow

import (
	"encoding/binary"

	"github.com/kaspanet/kaspad/app/appmessage"
	"github.com/pkg/errors"
	"lukechampine.com/blake3"

	"github.com/vecno-foundation/vecnominer/util/uint256"
)

// powAlgorithm is the nonce-dependent tail of the PoW pipeline: it turns
// the seeded hash output into the final 256-bit work value. Implementations
// must be pure functions of their inputs. It is an interface so the network
// can roll the mixing schedule without touching State or the header
// serialization.
type powAlgorithm interface {
	calculateProofOfWorkValue(powHash Hash, rounds int, timestamp uint64, nonce uint64) Hash
}

// diffusionAlgorithm is the active pipeline: two diffusion chains over the
// seeded hash output, a bytewise mix of the chain results, and the
// memory-hard finalizer.
type diffusionAlgorithm struct{}

var defaultAlgorithm powAlgorithm = diffusionAlgorithm{}

func (diffusionAlgorithm) calculateProofOfWorkValue(
	powHash Hash, rounds int, timestamp uint64, nonce uint64) Hash {

	hashBytes := powHash.ToLEBytes()
	for i := 0; i < rounds; i++ {
		hashBytes = blake3.Sum256(hashBytes[:])
		bitManipulations(&hashBytes)
	}
	firstChain := hashBytes

	// The second chain continues from where the first one ended.
	for i := 0; i < rounds; i++ {
		hashBytes = blake3.Sum256(hashBytes[:])
		bitManipulations(&hashBytes)
	}

	mixedHash := byteMixing(&hashBytes, &firstChain)
	return memHash(HashFromLEBytes(mixedHash), timestamp, nonce)
}

// calculateRounds derives the number of diffusion rounds (1-4) from the
// pre-PoW hash and the timestamp. The nonce is deliberately not an input:
// the round count must not be grindable by nonce selection.
func calculateRounds(prePowHash Hash, timestamp uint64) int {
	hasher := blake3.New(32, nil)
	prePowBytes := prePowHash.ToLEBytes()
	hasher.Write(prePowBytes[:])
	var timestampBytes [8]byte
	binary.LittleEndian.PutUint64(timestampBytes[:], timestamp)
	hasher.Write(timestampBytes[:])
	var sum [32]byte
	copy(sum[:], hasher.Sum(sum[:0]))
	return int(binary.LittleEndian.Uint32(sum[:4])%4 + 1)
}

// bitManipulations XORs adjacent bytes within every 4-byte lane in place,
// diffusing each blake3 output before the next round.
func bitManipulations(data *[32]byte) {
	for i := 0; i < 32; i += 4 {
		data[i] ^= data[i+1]
		data[i+2] ^= data[i+3]
	}
}

// byteMixing combines the two diffusion chains with a bytewise XOR.
func byteMixing(firstHash, secondHash *[32]byte) [32]byte {
	var mixed [32]byte
	for i := range mixed {
		mixed[i] = firstHash[i] ^ secondHash[i]
	}
	return mixed
}

// State is the PoW context for a single block template. It is built once
// per template and then queried with varying nonces. A State must not be
// shared between goroutines; use Clone to fan a template out to parallel
// nonce searches.
type State struct {
	// ID identifies the template this state was built for.
	ID    uint64
	Nonce uint64

	target     uint256.Uint256
	block      *appmessage.RPCBlock
	hasher     *powHasher
	prePowHash Hash
	timestamp  uint64
	rounds     int
	algorithm  powAlgorithm
}

// NewState builds the PoW context for the given block template: it decodes
// the compact difficulty target, computes the pre-PoW hash (the header with
// nonce and timestamp zeroed), seeds the per-nonce hasher with it and
// derives the diffusion round count. The nonce starts at zero.
func NewState(id uint64, block *appmessage.RPCBlock) (*State, error) {
	if block == nil || block.Header == nil {
		return nil, errors.New("block template has no header")
	}
	header := block.Header
	timestamp := uint64(header.Timestamp)

	headerHasher := newHeaderHasher()
	err := serializeHeader(headerHasher, header, true)
	if err != nil {
		return nil, errors.Wrap(err, "error serializing the template header")
	}
	prePowHash := headerHasher.finalize()

	return &State{
		ID:         id,
		Nonce:      0,
		target:     uint256.FromCompactTarget(header.Bits),
		block:      block,
		hasher:     newPowHasher(prePowHash, timestamp),
		prePowHash: prePowHash,
		timestamp:  timestamp,
		rounds:     calculateRounds(prePowHash, timestamp),
		algorithm:  defaultAlgorithm,
	}, nil
}

// Clone returns a state that can search a different nonce stream in
// parallel with the receiver. The seeded hasher is copied, not recomputed,
// and the underlying block template is shared read-only.
func (s *State) Clone() *State {
	clone := *s
	hasherCopy := *s.hasher
	clone.hasher = &hasherCopy
	return &clone
}

// CalculateProofOfWorkValue computes the work value for the current nonce.
// It does not mutate the state, so it is safe to call concurrently on
// independent clones.
func (s *State) CalculateProofOfWorkValue() uint256.Uint256 {
	powHash := s.hasher.finalizeWithNonce(s.Nonce)
	finalHash := s.algorithm.calculateProofOfWorkValue(powHash, s.rounds, s.timestamp, s.Nonce)
	return uint256.FromLEBytes(finalHash.ToLEBytes())
}

// CheckProofOfWork returns whether the current nonce satisfies the
// template's difficulty target. Lower work values are better: the nonce is
// valid iff the work value does not exceed the target.
func (s *State) CheckProofOfWork() bool {
	return s.CalculateProofOfWorkValue().Cmp(s.target) <= 0
}

// GenerateBlockIfProofOfWork returns a copy of the template carrying the
// current nonce if that nonce satisfies the target, and nil otherwise. The
// template held by the state is left unmodified.
func (s *State) GenerateBlockIfProofOfWork() *appmessage.RPCBlock {
	if !s.CheckProofOfWork() {
		return nil
	}
	block := *s.block
	header := *s.block.Header
	header.Nonce = s.Nonce
	block.Header = &header
	return &block
}

// BlockHash returns the canonical hash of the given RPC block.
func BlockHash(block *appmessage.RPCBlock) (Hash, error) {
	if block == nil || block.Header == nil {
		return Hash{}, errors.New("block has no header")
	}
	headerHasher := newHeaderHasher()
	err := serializeHeader(headerHasher, block.Header, false)
	if err != nil {
		return Hash{}, errors.Wrap(err, "error serializing the block header")
	}
	return headerHasher.finalize(), nil
}
