package pow

import (
	"encoding/binary"
	"math"

	"github.com/kaspanet/kaspad/app/appmessage"
	"github.com/pkg/errors"
)

// hashWriter accumulates canonical header bytes into a hash state.
type hashWriter interface {
	writeAll(data []byte)
}

// serializeHeader writes the canonical byte representation of the given
// header into w. When forPrePow is set, the nonce and the timestamp are
// forced to zero so that the result commits only to nonce-independent
// header material.
//
// The field order is consensus-critical: any deviation produces a
// different block identity.
func serializeHeader(w hashWriter, header *appmessage.RPCBlockHeader, forPrePow bool) error {
	timestamp, nonce := uint64(header.Timestamp), header.Nonce
	if forPrePow {
		timestamp, nonce = 0, 0
	}

	if header.Version > math.MaxUint16 {
		return errors.Errorf("header version %d doesn't fit in 16 bits", header.Version)
	}
	writeUint16(w, uint16(header.Version))
	writeUint64(w, uint64(len(header.Parents)))

	var hashBuffer [32]byte
	for _, level := range header.Parents {
		writeUint64(w, uint64(len(level.ParentHashes)))
		for _, parentHash := range level.ParentHashes {
			if err := decodeToSlice(parentHash, hashBuffer[:]); err != nil {
				return errors.Wrap(err, "error decoding parent hash")
			}
			w.writeAll(hashBuffer[:])
		}
	}

	if err := decodeToSlice(header.HashMerkleRoot, hashBuffer[:]); err != nil {
		return errors.Wrap(err, "error decoding hashMerkleRoot")
	}
	w.writeAll(hashBuffer[:])

	if err := decodeToSlice(header.AcceptedIDMerkleRoot, hashBuffer[:]); err != nil {
		return errors.Wrap(err, "error decoding acceptedIDMerkleRoot")
	}
	w.writeAll(hashBuffer[:])

	if err := decodeToSlice(header.UTXOCommitment, hashBuffer[:]); err != nil {
		return errors.Wrap(err, "error decoding utxoCommitment")
	}
	w.writeAll(hashBuffer[:])

	writeUint64(w, timestamp)
	writeUint32(w, header.Bits)
	writeUint64(w, nonce)
	writeUint64(w, header.DAAScore)
	writeUint64(w, header.BlueScore)

	// Blue work is the only variable-width field: a hex string of odd
	// length is logically left-padded with a zero nibble, and the decoded
	// byte count is serialized ahead of the bytes.
	blueWork := header.BlueWork
	if len(blueWork)%2 != 0 {
		blueWork = "0" + blueWork
	}
	blueWorkBytes := make([]byte, len(blueWork)/2)
	if err := decodeToSlice(blueWork, blueWorkBytes); err != nil {
		return errors.Wrap(err, "error decoding blueWork")
	}
	writeUint64(w, uint64(len(blueWorkBytes)))
	w.writeAll(blueWorkBytes)

	if err := decodeToSlice(header.PruningPoint, hashBuffer[:]); err != nil {
		return errors.Wrap(err, "error decoding pruningPoint")
	}
	w.writeAll(hashBuffer[:])

	return nil
}

func writeUint16(w hashWriter, value uint16) {
	var buffer [2]byte
	binary.LittleEndian.PutUint16(buffer[:], value)
	w.writeAll(buffer[:])
}

func writeUint32(w hashWriter, value uint32) {
	var buffer [4]byte
	binary.LittleEndian.PutUint32(buffer[:], value)
	w.writeAll(buffer[:])
}

func writeUint64(w hashWriter, value uint64) {
	var buffer [8]byte
	binary.LittleEndian.PutUint64(buffer[:], value)
	w.writeAll(buffer[:])
}

// decodeToSlice decodes a hex string into out. Unlike encoding/hex it
// reports the offending character and its index, so a corrupt template
// field can be diagnosed at the RPC boundary.
func decodeToSlice(data string, out []byte) error {
	if len(data)%2 != 0 {
		return errors.New("hex string has odd length")
	}
	if len(data)/2 != len(out) {
		return errors.Errorf("hex string length is %d, while it should be %d", len(data), len(out)*2)
	}
	for i := range out {
		hi, err := hexValue(data[2*i], 2*i)
		if err != nil {
			return err
		}
		lo, err := hexValue(data[2*i+1], 2*i+1)
		if err != nil {
			return err
		}
		out[i] = hi<<4 | lo
	}
	return nil
}

func hexValue(character byte, index int) (byte, error) {
	switch {
	case character >= '0' && character <= '9':
		return character - '0', nil
	case character >= 'a' && character <= 'f':
		return character - 'a' + 10, nil
	case character >= 'A' && character <= 'F':
		return character - 'A' + 10, nil
	}
	return 0, errors.Errorf("invalid hex character '%c' at index %d", character, index)
}
