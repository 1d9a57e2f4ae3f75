package modes

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModeString(t *testing.T) {
	assert.Equal(t, "ECB", ECB.String())
	assert.Equal(t, "CBC", CBC.String())
	assert.Equal(t, "unknown", Mode(7).String())
}

func TestPKCS7Pad(t *testing.T) {
	cases := []struct {
		buf       []byte
		blockSize int
		want      []byte
	}{
		{
			[]byte{0},
			3,
			[]byte{0, 2, 2},
		},
		{
			[]byte{0, 0},
			3,
			[]byte{0, 0, 1},
		},
		{
			[]byte{0, 0, 0},
			3,
			[]byte{0, 0, 0, 3, 3, 3},
		},
		{
			[]byte("YELLOW SUBMARINE"),
			20,
			[]byte("YELLOW SUBMARINE\x04\x04\x04\x04"),
		},
		{
			nil,
			4,
			[]byte{4, 4, 4, 4},
		},
	}
	for _, c := range cases {
		got := PKCS7Pad(c.buf, c.blockSize)
		if !bytes.Equal(got, c.want) {
			t.Errorf("got %v, want %v", got, c.want)
		}
	}
}

func TestPKCS7PadCopies(t *testing.T) {
	buf := make([]byte, 2, 16)
	PKCS7Pad(buf, 4)
	assert.Equal(t, []byte{0, 0, 0, 0}, buf[:4])
}

func TestPKCS7Unpad(t *testing.T) {
	cases := []struct {
		buf       []byte
		blockSize int
		want      []byte
		err       error
	}{
		{
			[]byte{0, 2, 2},
			3,
			[]byte{0},
			nil,
		},
		{
			[]byte{0, 0, 1},
			3,
			[]byte{0, 0},
			nil,
		},
		{
			[]byte{0, 0, 0, 3, 3, 3},
			3,
			[]byte{0, 0, 0},
			nil,
		},
		{
			[]byte("ICE ICE BABY\x04\x04\x04\x04"),
			16,
			[]byte("ICE ICE BABY"),
			nil,
		},
		{
			[]byte("ICE ICE BABY\x05\x05\x05\x05"),
			16,
			nil,
			ErrInvalidPadding,
		},
		{
			[]byte("ICE ICE BABY\x01\x02\x03\x04"),
			16,
			nil,
			ErrInvalidPadding,
		},
		{
			[]byte{0, 0, 0},
			3,
			nil,
			ErrInvalidPadding,
		},
		{
			[]byte{1},
			3,
			nil,
			ErrInvalidPadding,
		},
	}
	for _, c := range cases {
		got, err := PKCS7Unpad(c.buf, c.blockSize)
		assert.ErrorIs(t, err, c.err)
		if !bytes.Equal(got, c.want) {
			t.Errorf("got %v, want %v", got, c.want)
		}
	}
}

func TestBlocks(t *testing.T) {
	cases := []struct {
		buf  []byte
		n    int
		want [][]byte
	}{
		{
			[]byte{1, 2},
			3,
			nil,
		},
		{
			[]byte{1, 2, 3, 4, 5, 6},
			3,
			[][]byte{
				{1, 2, 3},
				{4, 5, 6},
			},
		},
		{
			[]byte{1, 2, 3, 4, 5, 6, 7},
			2,
			[][]byte{
				{1, 2},
				{3, 4},
				{5, 6},
			},
		},
	}
	for _, c := range cases {
		got := Blocks(c.buf, c.n)
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("got %v, want %v", got, c.want)
		}
	}
}

func TestBlocksInvalidSize(t *testing.T) {
	for _, n := range []int{0, -1} {
		assert.Panics(t, func() { Blocks([]byte("abcd"), n) }, "size %d", n)
	}
}

func newAES(t *testing.T) cipher.Block {
	c, err := aes.NewCipher([]byte("YELLOW SUBMARINE"))
	require.NoError(t, err)
	return c
}

func TestECB(t *testing.T) {
	c := newAES(t)
	plaintext := PKCS7Pad([]byte("the same 16 byte plaintext block will always produce the same ciphertext"), aes.BlockSize)

	ciphertext := make([]byte, len(plaintext))
	NewECBEncrypter(c).CryptBlocks(ciphertext, plaintext)
	for i, block := range Blocks(ciphertext, aes.BlockSize) {
		want := make([]byte, aes.BlockSize)
		c.Encrypt(want, plaintext[i*aes.BlockSize:])
		assert.Equal(t, want, block, "block %d", i)
	}

	got := make([]byte, len(ciphertext))
	NewECBDecrypter(c).CryptBlocks(got, ciphertext)
	assert.Equal(t, plaintext, got)
}

func TestCBCMatchesStandardLibrary(t *testing.T) {
	c := newAES(t)
	iv := RandomBytes(aes.BlockSize)
	plaintext := PKCS7Pad([]byte("I'm back and I'm ringin' the bell \nA rockin' on the mike while the fly girls yell"), aes.BlockSize)

	got := make([]byte, len(plaintext))
	NewCBCEncrypter(c, iv).CryptBlocks(got, plaintext)
	want := make([]byte, len(plaintext))
	cipher.NewCBCEncrypter(c, iv).CryptBlocks(want, plaintext)
	require.Equal(t, want, got)

	dec := make([]byte, len(got))
	NewCBCDecrypter(c, iv).CryptBlocks(dec, got)
	assert.Equal(t, plaintext, dec)
}

func TestCBCInPlace(t *testing.T) {
	c := newAES(t)
	iv := make([]byte, aes.BlockSize)
	plaintext := PKCS7Pad(bytes.Repeat([]byte{'a'}, 3*aes.BlockSize), aes.BlockSize)

	buf := dup(plaintext)
	NewCBCEncrypter(c, iv).CryptBlocks(buf, buf)
	blocks := Blocks(buf, aes.BlockSize)
	for i := range blocks {
		for j := 0; j < i; j++ {
			assert.NotEqual(t, blocks[j], blocks[i])
		}
	}
	NewCBCDecrypter(c, iv).CryptBlocks(buf, buf)
	assert.Equal(t, plaintext, buf)
	assert.Equal(t, make([]byte, aes.BlockSize), iv)
}

func TestRandomBytes(t *testing.T) {
	var bufs [][]byte
	for i := 0; i < 5; i++ {
		bufs = append(bufs, RandomBytes(16))
		for j := 0; j < i; j++ {
			if bytes.Equal(bufs[i], bufs[j]) {
				t.Errorf("identical buffers %v and %v", bufs[i], bufs[j])
			}
		}
	}
}

func TestRandomInRange(t *testing.T) {
	cases := []struct {
		lo, hi int
	}{
		{0, 0},
		{5, 10},
		{20, 30},
	}
	for _, c := range cases {
		for i := 0; i < 100; i++ {
			n := RandomInRange(c.lo, c.hi)
			if n < c.lo || n > c.hi {
				t.Errorf("RandomInRange(%v, %v) == %v, out of range", c.lo, c.hi, n)
			}
		}
	}
	assert.Panics(t, func() { RandomInRange(3, 2) })
}
