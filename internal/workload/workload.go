// Package workload generates deterministic encode workloads for the
// evaluation tool and the integration tests: seeded message sources and
// jittered rate-match requests.
package workload

import "math/rand"

// Pattern selects how message bits are generated.
type Pattern uint8

const (
	PatternRandom Pattern = iota
	PatternZeros
	PatternOnes
	PatternAlternating
	PatternBursty
)

func (p Pattern) String() string {
	switch p {
	case PatternRandom:
		return "random"
	case PatternZeros:
		return "zeros"
	case PatternOnes:
		return "ones"
	case PatternAlternating:
		return "alternating"
	case PatternBursty:
		return "bursty"
	}
	return "unknown"
}

// ParsePattern maps a flag value to a Pattern.
func ParsePattern(s string) (Pattern, bool) {
	for _, p := range []Pattern{PatternRandom, PatternZeros, PatternOnes, PatternAlternating, PatternBursty} {
		if p.String() == s {
			return p, true
		}
	}
	return 0, false
}

// Source produces message blocks of a fixed bit length, one bit per byte.
type Source struct {
	pattern Pattern
	rng     *rand.Rand
	buf     []byte
}

func NewSource(pattern Pattern, bits int, seed int64) *Source {
	return &Source{
		pattern: pattern,
		rng:     rand.New(rand.NewSource(seed)),
		buf:     make([]byte, bits),
	}
}

// Next fills and returns the next message. The slice is reused between
// calls.
func (s *Source) Next() []byte {
	switch s.pattern {
	case PatternZeros:
		for i := range s.buf {
			s.buf[i] = 0
		}
	case PatternOnes:
		for i := range s.buf {
			s.buf[i] = 1
		}
	case PatternAlternating:
		for i := range s.buf {
			s.buf[i] = byte(i & 1)
		}
	case PatternBursty:
		// Runs of equal bits with geometric length, mean 8.
		bit := byte(s.rng.Intn(2))
		for i := range s.buf {
			if s.rng.Intn(8) == 0 {
				bit ^= 1
			}
			s.buf[i] = bit
		}
	default:
		for i := range s.buf {
			s.buf[i] = byte(s.rng.Intn(2))
		}
	}
	return s.buf
}

// Bernoulli implements a simple u<p decision.
type Bernoulli struct {
	p   float64
	rng *rand.Rand
}

func NewBernoulli(p float64, rng *rand.Rand) *Bernoulli { return &Bernoulli{p: p, rng: rng} }

func (b *Bernoulli) Hit() bool {
	if b.p <= 0 {
		return false
	}
	if b.p >= 1 {
		return true
	}
	return b.rng.Float64() < b.p
}

// LengthJitter draws requested rate-matched lengths: with probability p a
// request is shortened to a uniform value in [floor, max], possibly
// unaligned; otherwise it asks for the full-rate codeword.
type LengthJitter struct {
	bern *Bernoulli
	rng  *rand.Rand
}

func NewLengthJitter(p float64, rng *rand.Rand) *LengthJitter {
	return &LengthJitter{bern: NewBernoulli(p, rng), rng: rng}
}

func (j *LengthJitter) Request(floor, max int) int {
	if max <= floor || !j.bern.Hit() {
		return max
	}
	return floor + j.rng.Intn(max-floor+1)
}
