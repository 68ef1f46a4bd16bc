package uint256

import (
	"fmt"
	"math/bits"
	"strings"
)

// Uint256 is a little-endian 256-bit unsigned integer: word 0 holds the
// least significant 64 bits.
type Uint256 [4]uint64

// FromUint64 returns a Uint256 holding the given unsigned 64-bit integer.
func FromUint64(value uint64) Uint256 {
	return Uint256{value, 0, 0, 0}
}

// FromCompactTarget decodes the compact ("bits") representation of a
// difficulty target. This is a floating-point encoding originally used by
// OpenSSL that satoshi put into consensus code, so we're stuck with it.
// The exponent is biased by 3, hence the goofy decoding below.
func FromCompactTarget(compact uint32) Uint256 {
	mantissa := compact & 0xFFFFFF
	exponent := compact >> 24

	var shift uint
	if exponent <= 3 {
		mantissa >>= 8 * (3 - exponent)
	} else {
		shift = uint(8 * (exponent - 3))
	}

	// The mantissa is signed but may not be negative. A negative target is
	// meaningless, so it decodes to zero, which no work value satisfies.
	if mantissa > 0x7FFFFF {
		return Uint256{}
	}
	return FromUint64(uint64(mantissa)).Lsh(shift)
}

// FromLEBytes interprets the given bytes as a little-endian 256-bit integer.
func FromLEBytes(leBytes [32]byte) Uint256 {
	var result Uint256
	for i := range result {
		for j := 7; j >= 0; j-- {
			result[i] = result[i]<<8 | uint64(leBytes[i*8+j])
		}
	}
	return result
}

// ToLEBytes returns the little-endian byte representation of u.
func (u Uint256) ToLEBytes() [32]byte {
	var result [32]byte
	for i, word := range u {
		for j := 0; j < 8; j++ {
			result[i*8+j] = byte(word >> (8 * j))
		}
	}
	return result
}

// Cmp compares u and other and returns:
//
//	-1 if u <  other
//	 0 if u == other
//	+1 if u >  other
//
// Words are compared from most significant to least significant.
func (u Uint256) Cmp(other Uint256) int {
	for i := len(u) - 1; i >= 0; i-- {
		switch {
		case u[i] < other[i]:
			return -1
		case u[i] > other[i]:
			return 1
		}
	}
	return 0
}

// Lsh returns u shifted left by the given amount of bits. Bits shifted
// beyond the 256-bit width are silently dropped.
func (u Uint256) Lsh(shift uint) Uint256 {
	var result Uint256
	wordShift := int(shift / 64)
	bitShift := shift % 64
	for i := 0; i < len(u); i++ {
		if i+wordShift < len(u) {
			result[i+wordShift] += u[i] << bitShift
		}
		if bitShift > 0 && i+wordShift+1 < len(u) {
			result[i+wordShift+1] += u[i] >> (64 - bitShift)
		}
	}
	return result
}

// Add returns u + other with wraparound semantics: a carry out of the most
// significant word is dropped.
func (u Uint256) Add(other Uint256) Uint256 {
	var result Uint256
	var carry uint64
	for i := range u {
		result[i], carry = bits.Add64(u[i], other[i], carry)
	}
	return result
}

// Bits returns the number of significant bits in u, i.e. the position of
// the most significant set bit. Zero has zero significant bits.
func (u Uint256) Bits() uint32 {
	for i := len(u) - 1; i >= 0; i-- {
		if u[i] != 0 {
			return uint32(i*64 + bits.Len64(u[i]))
		}
	}
	return 0
}

// String returns the hexadecimal representation of the little-endian bytes
// of u, matching the display format the node uses for work values.
func (u Uint256) String() string {
	leBytes := u.ToLEBytes()
	var builder strings.Builder
	for _, b := range leBytes {
		fmt.Fprintf(&builder, "%02x", b)
	}
	return builder.String()
}
