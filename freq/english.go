package freq

// English holds per mille frequencies of common bytes in English text.
// Letters are counted without regard to case, so both cases carry the
// full weight and the entries sum to more than the total.
var English = Table(englishFreqs(), 1000)

// EnglishPenalties punishes bytes that rarely occur in English text:
// heavily for control characters, less for bytes with the high bit set.
var EnglishPenalties = NewPenalizer(englishPenalties())

func englishFreqs() map[byte]int {
	m := map[byte]int{
		' ':  130,
		'\n': 75,
		'\t': 75,
		'\r': 75,
	}
	for _, f := range []struct {
		letter byte
		n      int
	}{
		{'e', 127}, {'t', 90}, {'a', 81}, {'o', 75},
		{'i', 69}, {'n', 67}, {'s', 63}, {'h', 60},
		{'r', 59}, {'d', 42}, {'l', 40}, {'c', 27},
		{'u', 27},
	} {
		m[f.letter] = f.n
		m[f.letter-'a'+'A'] = f.n
	}
	return m
}

func englishPenalties() map[byte]int {
	m := make(map[byte]int)
	for b := 0x00; b <= 0x08; b++ {
		m[byte(b)] = 100
	}
	for b := 0x0e; b <= 0x1f; b++ {
		m[byte(b)] = 100
	}
	m[0x7f] = 100
	for b := 0x80; b <= 0xa5; b++ {
		m[byte(b)] = 5
	}
	for b := 0xa6; b <= 0xff; b++ {
		m[byte(b)] = 15
	}
	return m
}

// EnglishScore returns how far a buffer is from English text.
// Lower is better; an empty buffer scores 0.
func EnglishScore(buf []byte) int {
	c := NewBytes(buf)
	return c.CongruenceScore(English) + c.Penalty(EnglishPenalties)
}
