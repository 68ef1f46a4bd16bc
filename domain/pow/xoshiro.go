package pow

import (
	"math/bits"
)

type xoShiRo256PlusPlus struct {
	s0 uint64
	s1 uint64
	s2 uint64
	s3 uint64
}

func (x *xoShiRo256PlusPlus) Uint64() uint64 {
	res := bits.RotateLeft64(x.s0+x.s3, 23) + x.s0
	t := x.s1 << 17
	x.s2 ^= x.s0
	x.s3 ^= x.s1
	x.s1 ^= x.s2
	x.s0 ^= x.s3

	x.s2 ^= t
	x.s3 = bits.RotateLeft64(x.s3, 45)
	return res
}
