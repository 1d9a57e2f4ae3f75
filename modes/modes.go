// Package modes implements the ECB and CBC block modes, PKCS#7 padding,
// and the random sources the oracles draw keys from.
package modes

import (
	"bytes"
	"crypto/cipher"
	"crypto/rand"
	weak "math/rand"

	"github.com/pkg/errors"
)

// Mode identifies a block cipher mode of operation.
type Mode int

const (
	ECB Mode = iota
	CBC
)

func (m Mode) String() string {
	switch m {
	case ECB:
		return "ECB"
	case CBC:
		return "CBC"
	default:
		return "unknown"
	}
}

// ErrInvalidPadding is returned by PKCS7Unpad for malformed padding.
var ErrInvalidPadding = errors.New("PKCS7Unpad: invalid padding")

// ecbEncrypter represents an ECB encryption block mode.
type ecbEncrypter struct{ cipher.Block }

// NewECBEncrypter returns a block mode for ECB encryption.
func NewECBEncrypter(c cipher.Block) cipher.BlockMode {
	return ecbEncrypter{c}
}

// CryptBlocks encrypts a buffer in ECB mode.
func (x ecbEncrypter) CryptBlocks(dst, src []byte) {
	// The src buffer length must be a multiple of the block size,
	// and the dst buffer must be at least the length of src.
	for n := x.BlockSize(); len(src) > 0; {
		x.Encrypt(dst[:n], src[:n])
		dst, src = dst[n:], src[n:]
	}
}

// ecbDecrypter represents an ECB decryption block mode.
type ecbDecrypter struct{ cipher.Block }

// NewECBDecrypter returns a block mode for ECB decryption.
func NewECBDecrypter(c cipher.Block) cipher.BlockMode {
	return ecbDecrypter{c}
}

// CryptBlocks decrypts a buffer in ECB mode.
func (x ecbDecrypter) CryptBlocks(dst, src []byte) {
	for n := x.BlockSize(); len(src) > 0; {
		x.Decrypt(dst[:n], src[:n])
		dst, src = dst[n:], src[n:]
	}
}

// cbc represents a generic CBC block mode.
type cbc struct {
	cipher.Block
	iv []byte
}

// cbcEncrypter represents a CBC encryption block mode.
type cbcEncrypter struct{ cbc }

// NewCBCEncrypter returns a block mode for CBC encryption.
func NewCBCEncrypter(c cipher.Block, iv []byte) cipher.BlockMode {
	if c.BlockSize() != len(iv) {
		panic("NewCBCEncrypter: initialization vector length must equal block size")
	}
	return cbcEncrypter{cbc{c, dup(iv)}}
}

// CryptBlocks encrypts a buffer in CBC mode.
func (x cbcEncrypter) CryptBlocks(dst, src []byte) {
	for n := x.BlockSize(); len(src) > 0; {
		XORBlock(dst[:n], src[:n], x.iv)
		x.Encrypt(dst[:n], dst[:n])
		copy(x.iv, dst[:n])
		dst, src = dst[n:], src[n:]
	}
}

// cbcDecrypter represents a CBC decryption block mode.
type cbcDecrypter struct{ cbc }

// NewCBCDecrypter returns a block mode for CBC decryption.
func NewCBCDecrypter(c cipher.Block, iv []byte) cipher.BlockMode {
	if c.BlockSize() != len(iv) {
		panic("NewCBCDecrypter: initialization vector length must equal block size")
	}
	return cbcDecrypter{cbc{c, dup(iv)}}
}

// CryptBlocks decrypts a buffer in CBC mode.
func (x cbcDecrypter) CryptBlocks(dst, src []byte) {
	n := x.BlockSize()
	tmp := make([]byte, n)

	for len(src) > 0 {
		// Save the ciphertext as the new initialization vector.
		copy(tmp, src[:n])
		x.Decrypt(dst[:n], src[:n])
		XORBlock(dst[:n], dst[:n], x.iv)
		copy(x.iv, tmp)
		dst, src = dst[n:], src[n:]
	}
}

// XORBlock combines two equal-length blocks.
func XORBlock(dst, b1, b2 []byte) {
	for i := range b1 {
		dst[i] = b1[i] ^ b2[i]
	}
}

// PKCS7Pad returns a buffer with PKCS#7 padding added.
func PKCS7Pad(buf []byte, blockSize int) []byte {
	if blockSize <= 0 || blockSize > 0xff {
		panic("PKCS7Pad: invalid block size")
	}
	// Find the number (and value) of padding bytes.
	n := blockSize - (len(buf) % blockSize)

	return append(dup(buf), bytes.Repeat([]byte{byte(n)}, n)...)
}

// PKCS7Unpad returns a buffer with PKCS#7 padding removed.
func PKCS7Unpad(buf []byte, blockSize int) ([]byte, error) {
	if len(buf) < blockSize || len(buf)%blockSize != 0 {
		return nil, ErrInvalidPadding
	}
	// Examine the value of the last byte.
	b := buf[len(buf)-1]
	n := len(buf) - int(b)
	if int(b) == 0 || int(b) > blockSize ||
		!bytes.Equal(bytes.Repeat([]byte{b}, int(b)), buf[n:]) {
		return nil, ErrInvalidPadding
	}
	return dup(buf[:n]), nil
}

// Blocks divides a buffer into blocks, dropping any partial block.
func Blocks(buf []byte, n int) [][]byte {
	if n <= 0 {
		panic("Blocks: size must be positive")
	}
	var res [][]byte
	for len(buf) >= n {
		// Return pointers, not copies.
		res = append(res, buf[:n])
		buf = buf[n:]
	}
	return res
}

// RandomBytes returns a random buffer of the desired length.
func RandomBytes(n int) []byte {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return buf
}

// RandomInRange returns a pseudo-random non-negative integer in [lo, hi].
// The output should not be used in a security-sensitive context.
func RandomInRange(lo, hi int) int {
	if lo < 0 || lo > hi {
		panic("RandomInRange: invalid range")
	}
	return lo + weak.Intn(hi-lo+1)
}

// dup returns a copy of a buffer.
func dup(buf []byte) []byte {
	return append([]byte{}, buf...)
}
