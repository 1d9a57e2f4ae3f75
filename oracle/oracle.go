// Package oracle provides encryption oracles: sessions holding an unknown
// key and secret that encrypt attacker input followed by the secret.
package oracle

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"io"

	"github.com/pkg/errors"
	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blowfish"

	"github.com/pmaddams/cryptanalysis/modes"
)

// Oracle encrypts attacker input under a fixed unknown key.
// Advise must return the same output for the same input.
type Oracle interface {
	Advise(prefix []byte) ([]byte, error)
}

// Func adapts an ordinary function to the Oracle interface.
type Func func([]byte) ([]byte, error)

// Advise calls f(prefix).
func (f Func) Advise(prefix []byte) ([]byte, error) {
	return f(prefix)
}

// Cipher selects the block cipher used by a session.
type Cipher int

const (
	AES Cipher = iota
	Blowfish
)

func (c Cipher) String() string {
	switch c {
	case AES:
		return "aes"
	case Blowfish:
		return "blowfish"
	default:
		return "unknown"
	}
}

// ParseCipher returns the cipher with the given name.
func ParseCipher(name string) (Cipher, error) {
	switch name {
	case "aes":
		return AES, nil
	case "blowfish":
		return Blowfish, nil
	}
	return 0, errors.Errorf("ParseCipher: unknown cipher %q", name)
}

// KeySize returns the key length used for the cipher, in bytes.
func (c Cipher) KeySize() int {
	return 16
}

// BlockSize returns the block size of the cipher, in bytes.
func (c Cipher) BlockSize() int {
	if c == Blowfish {
		return blowfish.BlockSize
	}
	return aes.BlockSize
}

// NewBlock returns a block cipher for the key.
func (c Cipher) NewBlock(key []byte) (cipher.Block, error) {
	switch c {
	case AES:
		return aes.NewCipher(key)
	case Blowfish:
		return blowfish.NewCipher(key)
	}
	return nil, errors.Errorf("NewBlock: unknown cipher %d", int(c))
}

// Noise bounds, in bytes, for sessions created with WithNoise.
const (
	minNoise = 5
	maxNoise = 10
)

type config struct {
	cipher Cipher
	seed   []byte
	noise  bool
}

// Option configures a session.
type Option func(*config)

// WithCipher selects the block cipher. The default is AES.
func WithCipher(c Cipher) Option {
	return func(cfg *config) { cfg.cipher = c }
}

// WithSeed derives the session key, IV and noise from a seed instead of
// drawing them at random, so that sessions can be reproduced.
func WithSeed(seed []byte) Option {
	return func(cfg *config) { cfg.seed = append([]byte{}, seed...) }
}

// WithNoise surrounds the input with 5 to 10 unknown bytes on each side.
// The bytes are chosen once per session.
func WithNoise() Option {
	return func(cfg *config) { cfg.noise = true }
}

// Session is an oracle with a fixed key, IV and secret.
type Session struct {
	mode   modes.Mode
	block  cipher.Block
	iv     []byte
	prefix []byte
	secret []byte
	suffix []byte
}

// New returns a session that encrypts input || secret in the given mode.
func New(mode modes.Mode, secret []byte, opts ...Option) (*Session, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	if mode != modes.ECB && mode != modes.CBC {
		return nil, errors.Errorf("New: unsupported mode %v", mode)
	}

	var src io.Reader = rand.Reader
	if cfg.seed != nil {
		h := blake3.New()
		h.Write(cfg.seed)
		src = h.Digest()
	}
	key, err := read(src, cfg.cipher.KeySize())
	if err != nil {
		return nil, err
	}
	block, err := cfg.cipher.NewBlock(key)
	if err != nil {
		return nil, errors.Wrap(err, "New")
	}
	iv, err := read(src, block.BlockSize())
	if err != nil {
		return nil, err
	}
	s := &Session{
		mode:   mode,
		block:  block,
		iv:     iv,
		secret: append([]byte{}, secret...),
	}
	if cfg.noise {
		if s.prefix, err = noise(src); err != nil {
			return nil, err
		}
		if s.suffix, err = noise(src); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// NewRandom returns a session in either ECB or CBC mode, chosen at random,
// along with the mode.
func NewRandom(secret []byte, opts ...Option) (*Session, modes.Mode, error) {
	mode := modes.ECB
	if modes.RandomInRange(0, 1) == 1 {
		mode = modes.CBC
	}
	s, err := New(mode, secret, opts...)
	if err != nil {
		return nil, 0, err
	}
	return s, mode, nil
}

// Advise returns the encryption of prefix || secret, PKCS#7 padded.
func (s *Session) Advise(prefix []byte) ([]byte, error) {
	buf := make([]byte, 0, len(s.prefix)+len(prefix)+len(s.secret)+len(s.suffix))
	buf = append(buf, s.prefix...)
	buf = append(buf, prefix...)
	buf = append(buf, s.secret...)
	buf = append(buf, s.suffix...)
	buf = modes.PKCS7Pad(buf, s.block.BlockSize())

	s.encrypter().CryptBlocks(buf, buf)
	return buf, nil
}

// encrypter returns a fresh block mode, so that every call starts from
// the session IV.
func (s *Session) encrypter() cipher.BlockMode {
	if s.mode == modes.CBC {
		return modes.NewCBCEncrypter(s.block, s.iv)
	}
	return modes.NewECBEncrypter(s.block)
}

func read(src io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(src, buf); err != nil {
		return nil, errors.Wrap(err, "oracle: reading key material")
	}
	return buf, nil
}

func noise(src io.Reader) ([]byte, error) {
	n, err := read(src, 1)
	if err != nil {
		return nil, err
	}
	return read(src, minNoise+int(n[0])%(maxNoise-minNoise+1))
}
