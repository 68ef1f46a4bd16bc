package pow

import (
	"encoding/hex"
	"testing"

	"github.com/kaspanet/kaspad/app/appmessage"

	"github.com/vecno-foundation/vecnominer/util/uint256"
)

func testBlock() *appmessage.RPCBlock {
	return &appmessage.RPCBlock{Header: testHeader()}
}

func TestNewStateRequiresHeader(t *testing.T) {
	_, err := NewState(1, nil)
	if err == nil {
		t.Error("expected an error for a nil block")
	}

	_, err = NewState(1, &appmessage.RPCBlock{})
	if err == nil {
		t.Error("expected an error for a block with no header")
	}
}

func TestCalculateRounds(t *testing.T) {
	prePowHash := HashFromLEBytes([32]byte{9, 8, 7, 6})

	rounds := calculateRounds(prePowHash, 12345)
	if rounds < 1 || rounds > 4 {
		t.Fatalf("rounds = %d, want a value in [1, 4]", rounds)
	}
	if again := calculateRounds(prePowHash, 12345); again != rounds {
		t.Errorf("calculateRounds is not deterministic: %d != %d", rounds, again)
	}

	// Different timestamps should eventually produce different round counts.
	// With 4 possible values, 64 timestamps failing to diverge means the
	// derivation is broken.
	diverged := false
	for timestamp := uint64(0); timestamp < 64; timestamp++ {
		if calculateRounds(prePowHash, timestamp) != rounds {
			diverged = true
			break
		}
	}
	if !diverged {
		t.Error("calculateRounds ignored the timestamp input")
	}
}

func TestCalculateProofOfWorkValue(t *testing.T) {
	state, err := NewState(1, testBlock())
	if err != nil {
		t.Fatalf("NewState failed: %s", err)
	}

	state.Nonce = 42
	first := state.CalculateProofOfWorkValue()
	second := state.CalculateProofOfWorkValue()
	if first != second {
		t.Errorf("work value is not deterministic: %s != %s", first, second)
	}

	state.Nonce = 43
	if state.CalculateProofOfWorkValue() == first {
		t.Error("changing the nonce did not change the work value")
	}
}

func TestCloneSearchesIndependently(t *testing.T) {
	state, err := NewState(1, testBlock())
	if err != nil {
		t.Fatalf("NewState failed: %s", err)
	}
	state.Nonce = 7

	clone := state.Clone()
	if clone.Nonce != 7 {
		t.Errorf("clone nonce = %d, want 7", clone.Nonce)
	}
	if clone.CalculateProofOfWorkValue() != state.CalculateProofOfWorkValue() {
		t.Error("clone computes a different work value for the same nonce")
	}

	clone.Nonce = 8
	if state.Nonce != 7 {
		t.Error("mutating the clone's nonce changed the original")
	}
	if clone.CalculateProofOfWorkValue() == state.CalculateProofOfWorkValue() {
		t.Error("clone with a different nonce computed the same work value")
	}
}

func TestCheckProofOfWorkMatchesWorkValue(t *testing.T) {
	state, err := NewState(1, testBlock())
	if err != nil {
		t.Fatalf("NewState failed: %s", err)
	}

	for nonce := uint64(0); nonce < 16; nonce++ {
		state.Nonce = nonce
		expected := state.CalculateProofOfWorkValue().Cmp(state.target) <= 0
		if state.CheckProofOfWork() != expected {
			t.Errorf("CheckProofOfWork disagrees with the work value for nonce %d", nonce)
		}
	}
}

func TestGenerateBlockIfProofOfWork(t *testing.T) {
	// A compact target of 0x01010000 decodes to 1, which practically no
	// work value satisfies.
	hardBlock := testBlock()
	hardBlock.Header.Bits = 0x01010000
	hardState, err := NewState(1, hardBlock)
	if err != nil {
		t.Fatalf("NewState failed: %s", err)
	}
	hardState.Nonce = 12345
	if block := hardState.GenerateBlockIfProofOfWork(); block != nil {
		t.Error("got a block for a target of 1")
	}

	// 0x217fffff decodes to 0xffff << 240, so a uniformly distributed work
	// value misses it with probability ~2^-16. A thousand nonces failing
	// is not plausible for a correct implementation.
	easyBlock := testBlock()
	easyBlock.Header.Bits = 0x217fffff
	easyState, err := NewState(2, easyBlock)
	if err != nil {
		t.Fatalf("NewState failed: %s", err)
	}

	var found *appmessage.RPCBlock
	for nonce := uint64(1); nonce <= 1000; nonce++ {
		easyState.Nonce = nonce
		found = easyState.GenerateBlockIfProofOfWork()
		if found != nil {
			break
		}
	}
	if found == nil {
		t.Fatal("no nonce out of 1000 satisfied a near-maximal target")
	}
	if found.Header.Nonce != easyState.Nonce {
		t.Errorf("found block carries nonce %d, want %d", found.Header.Nonce, easyState.Nonce)
	}
	if easyBlock.Header.Nonce != testHeader().Nonce {
		t.Error("generating a block mutated the template header")
	}
}

func TestWorkValueRespectsTargetOrdering(t *testing.T) {
	// The zero target accepts only the all-zero work value; the all-ones
	// target accepts everything.
	block := testBlock()
	state, err := NewState(1, block)
	if err != nil {
		t.Fatalf("NewState failed: %s", err)
	}
	state.Nonce = 99
	workValue := state.CalculateProofOfWorkValue()

	if workValue.Cmp(uint256.Uint256{}) <= 0 {
		t.Error("work value unexpectedly compares below the zero target")
	}
	maxTarget := uint256.Uint256{^uint64(0), ^uint64(0), ^uint64(0), ^uint64(0)}
	if workValue.Cmp(maxTarget) > 0 {
		t.Error("work value compares above the all-ones target")
	}
}

func TestBlockHash(t *testing.T) {
	block := testBlock()
	original, err := BlockHash(block)
	if err != nil {
		t.Fatalf("BlockHash failed: %s", err)
	}

	again, err := BlockHash(block)
	if err != nil {
		t.Fatalf("BlockHash failed: %s", err)
	}
	if !original.Equal(again) {
		t.Error("hashing the same block twice produced different hashes")
	}

	mutations := []struct {
		name   string
		mutate func(header *appmessage.RPCBlockHeader)
	}{
		{"version", func(h *appmessage.RPCBlockHeader) { h.Version = 2 }},
		{"parent hash", func(h *appmessage.RPCBlockHeader) {
			h.Parents[0].ParentHashes[0] = hex.EncodeToString(repeatByte(0x99))
		}},
		{"hashMerkleRoot", func(h *appmessage.RPCBlockHeader) {
			h.HashMerkleRoot = hex.EncodeToString(repeatByte(0x99))
		}},
		{"acceptedIDMerkleRoot", func(h *appmessage.RPCBlockHeader) {
			h.AcceptedIDMerkleRoot = hex.EncodeToString(repeatByte(0x99))
		}},
		{"utxoCommitment", func(h *appmessage.RPCBlockHeader) {
			h.UTXOCommitment = hex.EncodeToString(repeatByte(0x99))
		}},
		{"timestamp", func(h *appmessage.RPCBlockHeader) { h.Timestamp++ }},
		{"bits", func(h *appmessage.RPCBlockHeader) { h.Bits++ }},
		{"nonce", func(h *appmessage.RPCBlockHeader) { h.Nonce++ }},
		{"daaScore", func(h *appmessage.RPCBlockHeader) { h.DAAScore++ }},
		{"blueScore", func(h *appmessage.RPCBlockHeader) { h.BlueScore++ }},
		{"blueWork", func(h *appmessage.RPCBlockHeader) { h.BlueWork = "ff" }},
		{"pruningPoint", func(h *appmessage.RPCBlockHeader) {
			h.PruningPoint = hex.EncodeToString(repeatByte(0x99))
		}},
	}

	for _, mutation := range mutations {
		mutated := testBlock()
		mutation.mutate(mutated.Header)
		mutatedHash, err := BlockHash(mutated)
		if err != nil {
			t.Fatalf("%s: BlockHash failed: %s", mutation.name, err)
		}
		if mutatedHash.Equal(original) {
			t.Errorf("changing %s did not change the block hash", mutation.name)
		}
	}
}

func TestPrePowHashIgnoresNonceAndTimestamp(t *testing.T) {
	blockA := testBlock()
	blockB := testBlock()
	blockB.Header.Nonce = blockA.Header.Nonce + 1
	blockB.Header.Timestamp = blockA.Header.Timestamp + 1

	stateA, err := NewState(1, blockA)
	if err != nil {
		t.Fatalf("NewState failed: %s", err)
	}
	stateB, err := NewState(2, blockB)
	if err != nil {
		t.Fatalf("NewState failed: %s", err)
	}

	if !stateA.prePowHash.Equal(stateB.prePowHash) {
		t.Error("pre-PoW hash depends on the nonce or the timestamp")
	}
}
