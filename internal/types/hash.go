package types

import (
	"math/bits"
)

// 0x53c5ca59 and 0x74743c1b are magic numbers from wyhash32(see https://github.com/wangyi-fudan/wyhash/blob/master/wyhash32.h)
const (
	mixSeed uint64 = 0x53c5ca59
	mixMul  uint64 = 0x74743c1b<<32 | 0x53c5ca59
)

// Mix64 mixes two uint64 into one
func Mix64(x, y uint64) uint64 {
	hi, lo := bits.Mul64(x, y)
	return hi ^ lo
}

// MixAll folds hs into a single hash, order sensitive
func MixAll(hs ...uint64) uint64 {
	ret := mixSeed
	for _, h := range hs {
		ret = Mix64(ret^h, mixMul) ^ h
	}
	return ret
}
