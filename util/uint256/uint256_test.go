package uint256

import (
	"testing"
)

func TestFromCompactTarget(t *testing.T) {
	tests := []struct {
		name     string
		compact  uint32
		expected Uint256
	}{
		{"zero", 0x00000000, Uint256{}},
		{"one", 0x01010000, Uint256{1, 0, 0, 0}},
		{"two byte mantissa", 0x02123456, Uint256{0x1234, 0, 0, 0}},
		{"three byte mantissa", 0x03123456, Uint256{0x123456, 0, 0, 0}},
		{"exponent above bias", 0x04123456, Uint256{0x12345600, 0, 0, 0}},
		{"sign bit with small exponent", 0x04800000, Uint256{}},
		{"sign bit with large exponent", 0x20800000, Uint256{}},
		{"mantissa truncated by small exponent", 0x01123456, Uint256{0x12, 0, 0, 0}},
		{"testnet style target", 0x207fffff, Uint256{0, 0, 0, 0x7FFFFF0000000000}},
		// 0x21 = 33, so the mantissa is shifted left by 8*(33-3) = 240 bits
		// and its top 7 bits overflow past bit 255.
		{"mantissa partially overflows", 0x217fffff, Uint256{0, 0, 0, 0xFFFF000000000000}},
	}

	for _, test := range tests {
		result := FromCompactTarget(test.compact)
		if result != test.expected {
			t.Errorf("%s: FromCompactTarget(%#08x) = %v, want %v",
				test.name, test.compact, result, test.expected)
		}
	}
}

func TestLsh(t *testing.T) {
	tests := []struct {
		name     string
		value    Uint256
		shift    uint
		expected Uint256
	}{
		{"zero shift", Uint256{1, 2, 3, 4}, 0, Uint256{1, 2, 3, 4}},
		{"single bit", Uint256{1, 0, 0, 0}, 1, Uint256{2, 0, 0, 0}},
		{"whole word", Uint256{1, 0, 0, 0}, 64, Uint256{0, 1, 0, 0}},
		{"cross word carry", Uint256{1 << 63, 0, 0, 0}, 1, Uint256{0, 1, 0, 0}},
		{"word plus bits", Uint256{0xFF, 0, 0, 0}, 68, Uint256{0, 0xFF0, 0, 0}},
		{"overflow dropped", Uint256{1, 0, 0, 0}, 300, Uint256{}},
		{"high word overflow", Uint256{0, 0, 0, 1}, 64, Uint256{}},
	}

	for _, test := range tests {
		result := test.value.Lsh(test.shift)
		if result != test.expected {
			t.Errorf("%s: %v.Lsh(%d) = %v, want %v",
				test.name, test.value, test.shift, result, test.expected)
		}
	}
}

func TestAdd(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Uint256
		expected Uint256
	}{
		{"no carry", Uint256{1, 0, 0, 0}, Uint256{2, 0, 0, 0}, Uint256{3, 0, 0, 0}},
		{"carry chain", Uint256{^uint64(0), ^uint64(0), 0, 0}, Uint256{1, 0, 0, 0}, Uint256{0, 0, 1, 0}},
		{"wraparound", Uint256{^uint64(0), ^uint64(0), ^uint64(0), ^uint64(0)}, Uint256{1, 0, 0, 0}, Uint256{}},
	}

	for _, test := range tests {
		result := test.a.Add(test.b)
		if result != test.expected {
			t.Errorf("%s: %v.Add(%v) = %v, want %v",
				test.name, test.a, test.b, result, test.expected)
		}
	}
}

func TestCmp(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Uint256
		expected int
	}{
		{"equal", Uint256{1, 2, 3, 4}, Uint256{1, 2, 3, 4}, 0},
		{"less in low word", Uint256{1, 0, 0, 0}, Uint256{2, 0, 0, 0}, -1},
		{"greater in low word", Uint256{3, 0, 0, 0}, Uint256{2, 0, 0, 0}, 1},
		{"high word dominates", Uint256{^uint64(0), ^uint64(0), ^uint64(0), 0}, Uint256{0, 0, 0, 1}, -1},
		{"zero vs zero", Uint256{}, Uint256{}, 0},
	}

	for _, test := range tests {
		result := test.a.Cmp(test.b)
		if result != test.expected {
			t.Errorf("%s: %v.Cmp(%v) = %d, want %d",
				test.name, test.a, test.b, result, test.expected)
		}
	}
}

func TestLEBytesRoundTrip(t *testing.T) {
	value := Uint256{0x0123456789ABCDEF, 0xFEDCBA9876543210, 0xDEADBEEFCAFEBABE, 0x1122334455667788}
	leBytes := value.ToLEBytes()

	if leBytes[0] != 0xEF || leBytes[7] != 0x01 {
		t.Errorf("ToLEBytes produced wrong byte order in the first word: % x", leBytes[:8])
	}

	roundTripped := FromLEBytes(leBytes)
	if roundTripped != value {
		t.Errorf("round trip mismatch: got %v, want %v", roundTripped, value)
	}
}

func TestBits(t *testing.T) {
	tests := []struct {
		value    Uint256
		expected uint32
	}{
		{Uint256{}, 0},
		{Uint256{1, 0, 0, 0}, 1},
		{Uint256{0xFF, 0, 0, 0}, 8},
		{Uint256{0, 1, 0, 0}, 65},
		{Uint256{0, 0, 0, 1 << 63}, 256},
	}

	for _, test := range tests {
		result := test.value.Bits()
		if result != test.expected {
			t.Errorf("%v.Bits() = %d, want %d", test.value, result, test.expected)
		}
	}
}
