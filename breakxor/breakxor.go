// Package breakxor recovers single-byte and repeating XOR keys from
// ciphertext whose plaintext is English.
package breakxor

import (
	"slices"

	"github.com/pkg/errors"

	"github.com/pmaddams/cryptanalysis/freq"
	"github.com/pmaddams/cryptanalysis/modes"
	"github.com/pmaddams/cryptanalysis/xor"
)

var (
	// ErrEmptyInput is returned when there is no ciphertext to analyze.
	ErrEmptyInput = errors.New("breakxor: empty input")

	// ErrShortInput is returned when the ciphertext is too short
	// to compare two blocks of any candidate key size.
	ErrShortInput = errors.New("breakxor: input too short to find key size")
)

// Key size bounds for repeating XOR.
const (
	MinKeySize = 2
	MaxKeySize = 40
)

// keySizeTolerance is how far above the best normalized distance a smaller
// key size may score and still be preferred. Multiples of the true key size
// score about as well as the key size itself.
const keySizeTolerance = 0.1

// BreakSingleXOR tries every single-byte key and returns the plaintext
// that scores closest to English. Ties go to the lowest key.
func BreakSingleXOR(buf []byte) (score int, plaintext []byte, key byte) {
	tmp := make([]byte, len(buf))
	for i := 0; i <= 0xff; i++ {
		xor.XORSingleByte(tmp, buf, byte(i))
		if n := freq.EnglishScore(tmp); i == 0 || n < score {
			score = n
			key = byte(i)
		}
	}
	return score, xor.SingleByte(buf, key), key
}

// GuessSingleXOR only tries the keys that map one of the most frequent
// ciphertext bytes to the most frequent English byte. threshold widens the
// set of frequent bytes considered. ok is false for an empty buffer.
func GuessSingleXOR(buf []byte, threshold int) (score int, key byte, ok bool) {
	return freq.NewBytes(buf).MostCongruentItem(freq.English, freq.EnglishPenalties, threshold,
		func(a, b byte) byte { return a ^ b })
}

// DetectSingleXOR finds the line most likely to be English encrypted with
// single-byte XOR, and returns its index, score, plaintext and key.
func DetectSingleXOR(lines [][]byte) (index, score int, plaintext []byte, key byte, err error) {
	if len(lines) == 0 {
		return 0, 0, nil, 0, ErrEmptyInput
	}
	for i, line := range lines {
		n, p, k := BreakSingleXOR(line)
		if i == 0 || n < score {
			index, score, plaintext, key = i, n, p, k
		}
	}
	return index, score, plaintext, key, nil
}

// RankByShape orders line indexes by how closely the shape of each line's
// byte distribution matches English, best first. No key is needed, since
// XOR with a single byte permutes symbols without changing the shape.
func RankByShape(lines [][]byte) []int {
	scores := make([]int, len(lines))
	res := make([]int, len(lines))
	for i, line := range lines {
		scores[i] = freq.NewBytes(line).IsomorphScore(freq.English)
		res[i] = i
	}
	slices.SortStableFunc(res, func(a, b int) int {
		return scores[a] - scores[b]
	})
	return res
}

// BreakRepeatingXOR finds the key size and key used to encrypt a buffer
// with repeating XOR, and returns them with the plaintext.
func BreakRepeatingXOR(buf []byte) (size int, key, plaintext []byte, err error) {
	if len(buf) == 0 {
		return 0, nil, nil, ErrEmptyInput
	}
	size, err = KeySize(buf)
	if err != nil {
		return 0, nil, nil, err
	}
	key = RecoverKey(buf, size)
	return size, key, xor.Repeating(buf, key), nil
}

// KeySize returns the most likely key size of a buffer encrypted
// with repeating XOR.
func KeySize(buf []byte) (int, error) {
	type candidate struct {
		size     int
		distance float64
	}
	var cands []candidate
	for size := MinKeySize; size <= MaxKeySize; size++ {
		// If the key size is too large, stop.
		distance, err := AverageDistance(buf, size)
		if err != nil {
			break
		}
		cands = append(cands, candidate{size, distance})
	}
	if len(cands) == 0 {
		return 0, ErrShortInput
	}
	best := cands[0].distance
	for _, c := range cands {
		if c.distance < best {
			best = c.distance
		}
	}
	for _, c := range cands {
		if c.distance <= best*(1+keySizeTolerance) {
			return c.size, nil
		}
	}
	panic("KeySize: no candidate within tolerance")
}

// AverageDistance returns the average Hamming distance between adjacent
// blocks, divided by the block size.
func AverageDistance(buf []byte, blockSize int) (float64, error) {
	blocks := modes.Blocks(buf, blockSize)
	if len(blocks) < 2 {
		return 0, errors.New("AverageDistance: need 2 or more blocks")
	}
	var n int
	for i := 0; i < len(blocks)-1; i++ {
		n += xor.HammingDistance(blocks[i], blocks[i+1])
	}
	return float64(n) / float64(len(blocks)-1) / float64(blockSize), nil
}

// RecoverKey breaks each column of a buffer encrypted with a repeating
// key of the given size.
func RecoverKey(buf []byte, size int) []byte {
	key := make([]byte, size)
	for i, col := range Columns(buf, size) {
		_, _, key[i] = BreakSingleXOR(col)
	}
	return key
}

// Columns returns, for each offset below size, the bytes of the buffer at
// positions congruent to that offset. The last block may be partial.
func Columns(buf []byte, size int) [][]byte {
	if size <= 0 {
		panic("Columns: size must be positive")
	}
	res := make([][]byte, size)
	for i, b := range buf {
		res[i%size] = append(res[i%size], b)
	}
	return res
}
