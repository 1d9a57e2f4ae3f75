// Package attack implements active attacks against encryption oracles:
// distinguishing ECB from CBC, and recovering the secret appended by an
// ECB oracle one byte at a time.
package attack

import (
	"bytes"
	"io"
	"log"

	"github.com/pkg/errors"

	"github.com/pmaddams/cryptanalysis/freq"
	"github.com/pmaddams/cryptanalysis/modes"
	"github.com/pmaddams/cryptanalysis/oracle"
)

var (
	// ErrNoPeriodicity is returned when the ciphertext length never
	// changes as the input grows, so no block size can be found.
	ErrNoPeriodicity = errors.New("attack: no block size detected")

	// ErrNotECB is returned when the oracle does not leak repeated blocks.
	ErrNotECB = errors.New("attack: ECB mode not detected")

	// ErrNoByteSatisfiesProphecy is returned when no candidate byte
	// reproduces the reference block.
	ErrNoByteSatisfiesProphecy = errors.New("attack: no byte matches reference block")

	// ErrValidationFailed is returned when the recovered secret does not
	// encrypt to the oracle's own ciphertext.
	ErrValidationFailed = errors.New("attack: recovered secret does not validate")
)

// maxProbe bounds the input length tried while looking for the block size.
const maxProbe = 64

const defaultFiller = 'A'

// DetectMode feeds the oracle three blocks of identical input and reports
// ECB if any ciphertext block repeats, CBC otherwise.
func DetectMode(o oracle.Oracle, blockSize int) (modes.Mode, error) {
	return detectMode(o, blockSize, defaultFiller)
}

func detectMode(o oracle.Oracle, blockSize int, filler byte) (modes.Mode, error) {
	if blockSize <= 0 {
		panic("DetectMode: invalid block size")
	}
	buf, err := o.Advise(bytes.Repeat([]byte{filler}, 3*blockSize))
	if err != nil {
		return 0, errors.Wrap(err, "DetectMode")
	}
	if HasRepeatedBlocks(buf, blockSize) {
		return modes.ECB, nil
	}
	return modes.CBC, nil
}

// HasRepeatedBlocks returns true if any block in the buffer appears more than once.
func HasRepeatedBlocks(buf []byte, blockSize int) bool {
	var blocks []string
	for _, block := range modes.Blocks(buf, blockSize) {
		blocks = append(blocks, string(block))
	}
	counts := freq.New(blocks).SortedCounts()
	return len(counts) > 0 && counts[0] > 1
}

// State is the progress of a Breaker.
type State int

const (
	Init State = iota
	BlockSizeDetected
	ModeConfirmed
	Recovering
	Validated
	Failed
)

func (s State) String() string {
	switch s {
	case Init:
		return "init"
	case BlockSizeDetected:
		return "block size detected"
	case ModeConfirmed:
		return "mode confirmed"
	case Recovering:
		return "recovering"
	case Validated:
		return "validated"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Option configures a Breaker.
type Option func(*Breaker)

// WithFiller sets the byte used to pad attacker input.
func WithFiller(b byte) Option {
	return func(x *Breaker) { x.filler = b }
}

// WithLogger traces each stage of the attack. A nil logger is silent.
func WithLogger(l *log.Logger) Option {
	return func(x *Breaker) {
		if l != nil {
			x.logger = l
		}
	}
}

// Breaker contains state for attacking an ECB encryption oracle that
// appends an unknown secret to its input.
type Breaker struct {
	oracle    oracle.Oracle
	filler    byte
	logger    *log.Logger
	state     State
	baseline  []byte
	blockSize int
	secretLen int
	recovered []byte
}

// NewBreaker takes an encryption oracle and returns a breaker.
func NewBreaker(o oracle.Oracle, opts ...Option) *Breaker {
	x := &Breaker{
		oracle: o,
		filler: defaultFiller,
		logger: log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// State returns the current stage of the attack.
func (x *Breaker) State() State {
	return x.state
}

// BlockSize returns the detected block size, or 0.
func (x *Breaker) BlockSize() int {
	return x.blockSize
}

// SecretLen returns the detected secret length.
func (x *Breaker) SecretLen() int {
	return x.secretLen
}

// Secret returns the recovered secret once it has been validated, and nil
// otherwise.
func (x *Breaker) Secret() []byte {
	if x.state != Validated {
		return nil
	}
	return append([]byte{}, x.recovered...)
}

func (x *Breaker) fail(err error) error {
	x.state = Failed
	x.logger.Printf("failed: %v", err)
	return err
}

func (x *Breaker) expect(s State, op string) error {
	if x.state != s {
		return errors.Errorf("%s: breaker is %v, want %v", op, x.state, s)
	}
	return nil
}

func (x *Breaker) advise(buf []byte) ([]byte, error) {
	res, err := x.oracle.Advise(buf)
	if err != nil {
		return nil, errors.Wrapf(err, "oracle failed on %d byte input", len(buf))
	}
	return res, nil
}

func (x *Breaker) probe(n int) []byte {
	return bytes.Repeat([]byte{x.filler}, n)
}

// DetectParams detects the block size and secret length.
func (x *Breaker) DetectParams() error {
	if err := x.expect(Init, "DetectParams"); err != nil {
		return err
	}
	baseline, err := x.advise(nil)
	if err != nil {
		return x.fail(errors.Wrap(err, "DetectParams"))
	}
	for n := 1; n <= maxProbe; n++ {
		buf, err := x.advise(x.probe(n))
		if err != nil {
			return x.fail(errors.Wrap(err, "DetectParams"))
		}
		if len(buf) == len(baseline) {
			continue
		}
		if len(buf) < len(baseline) {
			break
		}
		x.baseline = baseline
		x.blockSize = len(buf) - len(baseline)
		x.secretLen = len(baseline) - n
		x.state = BlockSizeDetected
		x.logger.Printf("block size %d, secret length %d", x.blockSize, x.secretLen)
		return nil
	}
	return x.fail(errors.Wrapf(ErrNoPeriodicity, "DetectParams: after %d probes", maxProbe))
}

// ConfirmECB returns an error if the encryption oracle is not using ECB mode.
func (x *Breaker) ConfirmECB() error {
	if err := x.expect(BlockSizeDetected, "ConfirmECB"); err != nil {
		return err
	}
	mode, err := detectMode(x.oracle, x.blockSize, x.filler)
	if err != nil {
		return x.fail(errors.Wrap(err, "ConfirmECB"))
	}
	if mode != modes.ECB {
		return x.fail(errors.Wrapf(ErrNotECB, "ConfirmECB: block size %d", x.blockSize))
	}
	x.state = ModeConfirmed
	x.logger.Print("ECB mode confirmed")
	return nil
}

// Recover decrypts the secret one byte at a time. Byte i is pushed to the
// end of a block by padLen bytes of filler, and every candidate for it is
// encrypted in a single query behind the bytes already known.
func (x *Breaker) Recover() error {
	if err := x.expect(ModeConfirmed, "Recover"); err != nil {
		return err
	}
	x.state = Recovering
	bs := x.blockSize
	refs := make(map[int][]byte, bs)
	x.recovered = make([]byte, 0, x.secretLen)

	for i := 0; i < x.secretLen; i++ {
		padLen := bs - 1 - i%bs
		target := i / bs

		ref, ok := refs[padLen]
		if !ok {
			buf, err := x.advise(x.probe(padLen))
			if err != nil {
				return x.fail(errors.Wrapf(err, "Recover: byte %d", i))
			}
			refs[padLen], ref = buf, buf
		}
		if len(ref) < (target+1)*bs {
			return x.fail(errors.Wrapf(ErrNoByteSatisfiesProphecy,
				"Recover: byte %d: short reference ciphertext", i))
		}
		block := ref[target*bs : (target+1)*bs]

		b, err := x.breakByte(padLen, block)
		if err != nil {
			return x.fail(errors.Wrapf(err, "Recover: byte %d", i))
		}
		x.recovered = append(x.recovered, b)
		if (i+1)%bs == 0 || i+1 == x.secretLen {
			x.logger.Printf("recovered %d/%d bytes", i+1, x.secretLen)
		}
	}
	return nil
}

// breakByte returns the byte that produces the given encrypted block.
func (x *Breaker) breakByte(padLen int, block []byte) (byte, error) {
	bs := x.blockSize
	known := append(x.probe(padLen), x.recovered...)
	window := known[len(known)-(bs-1):]

	// One query carries all 256 candidates. This assumes the oracle adds
	// no prefix and accepts inputs of 256 blocks.
	query := make([]byte, 0, 256*bs)
	for c := 0; c <= 0xff; c++ {
		query = append(query, window...)
		query = append(query, byte(c))
	}
	buf, err := x.advise(query)
	if err != nil {
		return 0, err
	}
	for c, candidate := range modes.Blocks(buf, bs) {
		if c > 0xff {
			break
		}
		if bytes.Equal(candidate, block) {
			return byte(c), nil
		}
	}
	return 0, ErrNoByteSatisfiesProphecy
}

// Validate checks that the padded secret encrypts to the oracle's
// ciphertext for empty input.
func (x *Breaker) Validate() error {
	if err := x.expect(Recovering, "Validate"); err != nil {
		return err
	}
	buf, err := x.advise(modes.PKCS7Pad(x.recovered, x.blockSize))
	if err != nil {
		return x.fail(errors.Wrap(err, "Validate"))
	}
	if len(buf) < len(x.baseline) || !bytes.Equal(buf[:len(x.baseline)], x.baseline) {
		return x.fail(errors.WithStack(ErrValidationFailed))
	}
	x.state = Validated
	x.logger.Print("secret validated")
	return nil
}

// RecoverSecret runs every stage of the attack and returns the validated
// secret. A partial recovery is never returned.
func RecoverSecret(o oracle.Oracle, opts ...Option) ([]byte, error) {
	x := NewBreaker(o, opts...)
	for _, step := range []func() error{
		x.DetectParams,
		x.ConfirmECB,
		x.Recover,
		x.Validate,
	} {
		if err := step(); err != nil {
			return nil, err
		}
	}
	return x.Secret(), nil
}
