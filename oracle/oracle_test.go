package oracle

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmaddams/cryptanalysis/modes"
)

func TestFunc(t *testing.T) {
	var o Oracle = Func(func(buf []byte) ([]byte, error) {
		return append([]byte("x"), buf...), nil
	})
	got, err := o.Advise([]byte("yz"))
	require.NoError(t, err)
	assert.Equal(t, []byte("xyz"), got)
}

func TestParseCipher(t *testing.T) {
	for _, c := range []Cipher{AES, Blowfish} {
		got, err := ParseCipher(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
	_, err := ParseCipher("rot13")
	assert.Error(t, err)
}

func TestNewRejectsUnknownMode(t *testing.T) {
	_, err := New(modes.Mode(9), nil)
	assert.Error(t, err)
}

func TestAdviseLength(t *testing.T) {
	secret := []byte("Rollin' in my 5.0")
	cases := []struct {
		c         Cipher
		blockSize int
	}{
		{AES, 16},
		{Blowfish, 8},
	}
	for _, c := range cases {
		for _, mode := range []modes.Mode{modes.ECB, modes.CBC} {
			s, err := New(mode, secret, WithCipher(c.c))
			require.NoError(t, err)
			require.Equal(t, c.blockSize, c.c.BlockSize())
			for n := 0; n < 3*c.blockSize; n++ {
				buf, err := s.Advise(make([]byte, n))
				require.NoError(t, err)
				want := (n + len(secret) + c.blockSize) / c.blockSize * c.blockSize
				assert.Equal(t, want, len(buf), "%v %v input %d", c.c, mode, n)
			}
		}
	}
}

func TestAdviseDeterministic(t *testing.T) {
	for _, mode := range []modes.Mode{modes.ECB, modes.CBC} {
		s, err := New(mode, []byte("secret"), WithNoise())
		require.NoError(t, err)
		in := []byte("the same input twice")
		b1, err := s.Advise(in)
		require.NoError(t, err)
		b2, err := s.Advise(in)
		require.NoError(t, err)
		assert.Equal(t, b1, b2, "%v", mode)
	}
}

func TestAdviseDoesNotModifyInput(t *testing.T) {
	s, err := New(modes.ECB, []byte("secret"))
	require.NoError(t, err)
	in := bytes.Repeat([]byte{'A'}, 32)
	_, err = s.Advise(in)
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte{'A'}, 32), in)
}

func TestRepeatedBlocks(t *testing.T) {
	in := bytes.Repeat([]byte{'A'}, 48)
	for _, mode := range []modes.Mode{modes.ECB, modes.CBC} {
		s, err := New(mode, nil)
		require.NoError(t, err)
		buf, err := s.Advise(in)
		require.NoError(t, err)
		blocks := modes.Blocks(buf, 16)
		if mode == modes.ECB {
			assert.Equal(t, blocks[0], blocks[1])
			assert.Equal(t, blocks[1], blocks[2])
		} else {
			assert.NotEqual(t, blocks[0], blocks[1])
			assert.NotEqual(t, blocks[1], blocks[2])
		}
	}
}

func TestWithSeed(t *testing.T) {
	seed := []byte("seed")
	for _, c := range []Cipher{AES, Blowfish} {
		s1, err := New(modes.CBC, []byte("secret"), WithSeed(seed), WithCipher(c), WithNoise())
		require.NoError(t, err)
		s2, err := New(modes.CBC, []byte("secret"), WithSeed(seed), WithCipher(c), WithNoise())
		require.NoError(t, err)
		s3, err := New(modes.CBC, []byte("secret"), WithSeed([]byte("other")), WithCipher(c), WithNoise())
		require.NoError(t, err)

		b1, err := s1.Advise([]byte("input"))
		require.NoError(t, err)
		b2, err := s2.Advise([]byte("input"))
		require.NoError(t, err)
		b3, err := s3.Advise([]byte("input"))
		require.NoError(t, err)
		assert.Equal(t, b1, b2)
		assert.NotEqual(t, b1, b3)
	}
}

func TestWithNoise(t *testing.T) {
	s, err := New(modes.ECB, nil, WithNoise())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(s.prefix), minNoise)
	assert.LessOrEqual(t, len(s.prefix), maxNoise)
	assert.GreaterOrEqual(t, len(s.suffix), minNoise)
	assert.LessOrEqual(t, len(s.suffix), maxNoise)

	quiet, err := New(modes.ECB, nil)
	require.NoError(t, err)
	assert.Empty(t, quiet.prefix)
	assert.Empty(t, quiet.suffix)
}

func TestNewRandom(t *testing.T) {
	seen := make(map[modes.Mode]bool)
	for i := 0; i < 100; i++ {
		s, mode, err := NewRandom([]byte("secret"))
		require.NoError(t, err)
		assert.Equal(t, mode, s.mode)
		seen[mode] = true
	}
	assert.True(t, seen[modes.ECB])
	assert.True(t, seen[modes.CBC])
}

func TestDecryptsToInput(t *testing.T) {
	secret := []byte("Did you stop? No, I just drove by")
	s, err := New(modes.CBC, secret, WithCipher(Blowfish))
	require.NoError(t, err)
	buf, err := s.Advise([]byte("hi "))
	require.NoError(t, err)

	modes.NewCBCDecrypter(s.block, s.iv).CryptBlocks(buf, buf)
	got, err := modes.PKCS7Unpad(buf, s.block.BlockSize())
	require.NoError(t, err)
	assert.Equal(t, append([]byte("hi "), secret...), got)
}
