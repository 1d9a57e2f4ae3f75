// Package freq compares symbol frequency distributions.
//
// A Counts value is a histogram of a sample. Scores are chi-square style
// divergences scaled by 100 and truncated, so lower means closer to the
// reference distribution. Scoring never fails: an empty sample or reference
// scores 0.
package freq

import (
	"cmp"
	"slices"
)

// Counts maps each symbol to the number of times it was observed.
type Counts[T cmp.Ordered] struct {
	counts map[T]int
	total  int
}

// New counts the symbols in a sample.
func New[T cmp.Ordered](symbols []T) *Counts[T] {
	m := make(map[T]int)
	for _, s := range symbols {
		m[s]++
	}
	return &Counts[T]{counts: m, total: len(symbols)}
}

// NewBytes counts the bytes in a buffer.
func NewBytes(buf []byte) *Counts[byte] {
	return New(buf)
}

// Table returns reference counts with an explicit total, which need not
// equal the sum of the counts.
func Table[T cmp.Ordered](m map[T]int, total int) *Counts[T] {
	counts := make(map[T]int, len(m))
	for k, v := range m {
		counts[k] = v
	}
	return &Counts[T]{counts: counts, total: total}
}

func fromMap[T cmp.Ordered](m map[T]int) *Counts[T] {
	var total int
	for _, v := range m {
		total += v
	}
	return &Counts[T]{counts: m, total: total}
}

// Get returns the count for a symbol, or 0 if it was never observed.
func (c *Counts[T]) Get(key T) int {
	return c.counts[key]
}

// Len returns the number of distinct symbols.
func (c *Counts[T]) Len() int {
	return len(c.counts)
}

// Total returns the number of observations.
func (c *Counts[T]) Total() int {
	return c.total
}

// Keys returns the symbols in ascending order.
func (c *Counts[T]) Keys() []T {
	keys := make([]T, 0, len(c.counts))
	for k := range c.counts {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Values returns the counts in ascending symbol order.
func (c *Counts[T]) Values() []int {
	keys := c.Keys()
	res := make([]int, len(keys))
	for i, k := range keys {
		res[i] = c.counts[k]
	}
	return res
}

// SortedCounts returns the counts in descending order.
func (c *Counts[T]) SortedCounts() []int {
	res := c.Values()
	slices.SortFunc(res, func(a, b int) int { return cmp.Compare(b, a) })
	return res
}

// CongruentTo restricts the counts to the symbols present in like.
func (c *Counts[T]) CongruentTo(like *Counts[T]) *Counts[T] {
	m := make(map[T]int, len(like.counts))
	for k := range like.counts {
		m[k] = c.counts[k]
	}
	return fromMap(m)
}

// Transformed maps every symbol through f. Counts of symbols that f
// sends to the same value are added together.
func (c *Counts[T]) Transformed(f func(T) T) *Counts[T] {
	m := make(map[T]int, len(c.counts))
	for k, v := range c.counts {
		m[f(k)] += v
	}
	return &Counts[T]{counts: m, total: c.total}
}

// CongruenceScore compares the distribution against a reference,
// symbol by symbol, over the reference's symbols.
func (c *Counts[T]) CongruenceScore(ref *Counts[T]) int {
	return chiSquare(c.CongruentTo(ref).Values(), c.total, ref.Values(), ref.total)
}

// IsomorphScore compares the shape of the distribution against a reference,
// ignoring which symbol produced which count.
func (c *Counts[T]) IsomorphScore(ref *Counts[T]) int {
	size := c.Len()
	if size == 0 {
		return 0
	}
	expected := ref.SortedCounts()
	if len(expected) > size {
		expected = expected[:size]
	}
	raw := chiSquare(c.SortedCounts(), c.total, expected, ref.total)
	return int(float64(raw) * 100 / float64(size))
}

// Penalty weighs every observation by the penalty of its symbol.
func (c *Counts[T]) Penalty(p *Penalizer[T]) int {
	var n int
	for k, v := range c.counts {
		n += p.Applied(k) * v
	}
	return n
}

// MostFrequent returns the symbols whose count is within threshold of the
// largest count, most frequent first. Ties are in ascending symbol order.
func (c *Counts[T]) MostFrequent(threshold int) []T {
	keys := c.Keys()
	if len(keys) == 0 {
		return nil
	}
	slices.SortStableFunc(keys, func(a, b T) int {
		return cmp.Compare(c.counts[b], c.counts[a])
	})
	top := c.counts[keys[0]]
	var res []T
	for _, k := range keys {
		if top-c.counts[k] > threshold {
			break
		}
		res = append(res, k)
	}
	return res
}

// MostCongruentItem searches for the key that best aligns the sample with a
// reference. Each symbol among the sample's most frequent is assumed to
// stand for the reference's most frequent symbol; the key implied by
// combine(symbol, anchor) is applied to every symbol and the result scored
// against the reference with penalties added. The first lowest score wins.
// ok is false if either distribution is empty.
func (c *Counts[T]) MostCongruentItem(ref *Counts[T], penalties *Penalizer[T], threshold int,
	combine func(T, T) T) (score int, key T, ok bool) {
	anchors := ref.MostFrequent(0)
	if len(anchors) == 0 {
		return 0, key, false
	}
	anchor := anchors[0]
	for _, sym := range c.MostFrequent(threshold) {
		proposed := combine(sym, anchor)
		x := c.Transformed(func(v T) T { return combine(v, proposed) })
		n := x.CongruenceScore(ref) + x.Penalty(penalties)
		if !ok || n < score {
			score, key, ok = n, proposed, true
		}
	}
	return score, key, ok
}

// chiSquare returns 100 times the sum of (o-e)^2/e, where each expected
// count is scaled by obtot/extot and missing observations count as 0.
func chiSquare(observed []int, obtot int, expected []int, extot int) int {
	if extot == 0 {
		return 0
	}
	factor := float64(obtot) / float64(extot)
	var sum float64
	for i, e := range expected {
		ex := float64(e) * factor
		if ex == 0 {
			continue
		}
		var ob float64
		if i < len(observed) {
			ob = float64(observed[i])
		}
		d := ob - ex
		sum += d * d / ex
	}
	return int(sum * 100)
}

// Penalizer maps symbols to penalty weights.
type Penalizer[T cmp.Ordered] struct {
	penalties map[T]int
}

// NewPenalizer returns a penalizer with the given weights.
func NewPenalizer[T cmp.Ordered](m map[T]int) *Penalizer[T] {
	p := make(map[T]int, len(m))
	for k, v := range m {
		p[k] = v
	}
	return &Penalizer[T]{penalties: p}
}

// Applied returns the penalty for a symbol, 0 if it has none.
func (p *Penalizer[T]) Applied(key T) int {
	return p.penalties[key]
}
