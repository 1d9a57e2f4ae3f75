// Package xor combines buffers with fixed and repeating keys.
package xor

import (
	"crypto/cipher"
	"math/bits"
)

// XORSingleByte produces the XOR combination of a buffer with a single byte.
func XORSingleByte(dst, src []byte, b byte) {
	// Panic if dst is smaller than src.
	for i := range src {
		dst[i] = src[i] ^ b
	}
}

// XORBytes produces the XOR combination of two buffers,
// and returns the number of bytes written.
func XORBytes(dst, b1, b2 []byte) int {
	n := minimum(len(b1), len(b2))
	for i := 0; i < n; i++ {
		dst[i] = b1[i] ^ b2[i]
	}
	return n
}

// SingleByte returns a copy of buf combined with b.
func SingleByte(buf []byte, b byte) []byte {
	res := make([]byte, len(buf))
	XORSingleByte(res, buf, b)
	return res
}

// Repeating returns a copy of buf combined with the key, cycled.
func Repeating(buf, key []byte) []byte {
	res := make([]byte, len(buf))
	NewXORCipher(key).XORKeyStream(res, buf)
	return res
}

// xorCipher represents a repeating XOR stream cipher.
type xorCipher struct {
	key []byte
	pos int
}

// NewXORCipher creates a new repeating XOR cipher.
func NewXORCipher(key []byte) cipher.Stream {
	if len(key) == 0 {
		panic("NewXORCipher: empty key")
	}
	return &xorCipher{key: append([]byte{}, key...)}
}

// XORKeyStream encrypts a buffer with repeating XOR.
func (x *xorCipher) XORKeyStream(dst, src []byte) {
	// Panic if dst is smaller than src.
	for i := range src {
		dst[i] = src[i] ^ x.key[x.pos]
		x.pos++
		if x.pos == len(x.key) {
			x.pos = 0
		}
	}
}

// HammingDistance returns the number of differing bits between two buffers.
// Each byte of the longer buffer past the end of the shorter one counts as 8.
func HammingDistance(b1, b2 []byte) int {
	var short, long []byte
	if len(b1) < len(b2) {
		short, long = b1, b2
	} else {
		short, long = b2, b1
	}
	var n int
	for i := range short {
		n += bits.OnesCount8(short[i] ^ long[i])
	}
	n += 8 * (len(long) - len(short))

	return n
}

func minimum(n int, nums ...int) int {
	for _, m := range nums {
		if m < n {
			n = m
		}
	}
	return n
}
