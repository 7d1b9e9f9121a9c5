// Package chaos corrupts valid type text so tests can check that parsers and
// classifiers reject malformed names without panicking.
package chaos

import (
	"math/rand"
	"strings"
)

// Mutation is one kind of corruption.
type Mutation int

const (
	ByteFlip Mutation = iota
	ByteDelete
	ByteInsert
	Truncation
	BracketDrop
	PunctInsert
	CaseFlip
	InvalidUTF8

	mutationCount
)

// punct is drawn from the characters type text gives meaning to.
const punct = "[](),' \"<>|*μ"

// Corruptor applies seeded, reproducible mutations.
type Corruptor struct {
	rng *rand.Rand
}

// NewCorruptor creates a new Corruptor with the given seed.
func NewCorruptor(seed int64) *Corruptor {
	return &Corruptor{rng: rand.New(rand.NewSource(seed))}
}

// Corrupt applies one random mutation to text.
func (c *Corruptor) Corrupt(text string) string {
	if text == "" {
		return string(punct[c.rng.Intn(len(punct))])
	}
	b := []byte(text)
	switch Mutation(c.rng.Intn(int(mutationCount))) {
	case ByteFlip:
		b[c.rng.Intn(len(b))] ^= byte(1 << c.rng.Intn(8))
	case ByteDelete:
		idx := c.rng.Intn(len(b))
		b = append(b[:idx], b[idx+1:]...)
	case ByteInsert:
		idx := c.rng.Intn(len(b) + 1)
		b = append(b[:idx], append([]byte{byte(c.rng.Intn(256))}, b[idx:]...)...)
	case Truncation:
		b = b[:c.rng.Intn(len(b))]
	case BracketDrop:
		if i := strings.LastIndexAny(text, "[]()"); i >= 0 {
			b = append(b[:i], b[i+1:]...)
		}
	case PunctInsert:
		idx := c.rng.Intn(len(b) + 1)
		p := []byte(string(punct[c.rng.Intn(len(punct))]))
		b = append(b[:idx], append(p, b[idx:]...)...)
	case CaseFlip:
		idx := c.rng.Intn(len(b))
		switch ch := b[idx]; {
		case ch >= 'a' && ch <= 'z':
			b[idx] = ch - 'a' + 'A'
		case ch >= 'A' && ch <= 'Z':
			b[idx] = ch - 'A' + 'a'
		}
	case InvalidUTF8:
		b[c.rng.Intn(len(b))] = 0xC0 | byte(c.rng.Intn(0x20))
	}
	return string(b)
}

// CorruptN applies n random corruptions to text.
func (c *Corruptor) CorruptN(text string, n int) string {
	for range n {
		text = c.Corrupt(text)
	}
	return text
}

// GenerateCorpus derives count corrupted variants of each valid input,
// varying the corruption intensity.
func (c *Corruptor) GenerateCorpus(valid []string, count int) []string {
	corpus := make([]string, 0, len(valid)*count)
	for _, v := range valid {
		for range count {
			corpus = append(corpus, c.CorruptN(v, c.rng.Intn(4)+1))
		}
	}
	return corpus
}
