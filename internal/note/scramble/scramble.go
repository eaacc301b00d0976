// Package scramble obfuscates note content on write by shuffling the inner
// letters of every word. The transformation is one-way and random.
package scramble

import (
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/AlibekovAA/no-tion/internal/common/constants"
)

type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

type globalShuffler struct{}

func (globalShuffler) Shuffle(n int, swap func(i, j int)) {
	rand.Shuffle(n, swap)
}

// Scrambler applies the transformation with a pluggable random source.
type Scrambler struct {
	mu  sync.Mutex
	rng Shuffler
}

// New returns a scrambler backed by the process-wide random generator.
func New() *Scrambler {
	return &Scrambler{rng: globalShuffler{}}
}

// NewWithSource is meant for tests that need a reproducible sequence.
func NewWithSource(src rand.Source) *Scrambler {
	return &Scrambler{rng: rand.New(src)}
}

// Scramble splits content on whitespace, shuffles the interior runes of
// every word of at least four runes and joins the words with single spaces.
func (s *Scrambler) Scramble(content string) string {
	words := strings.Fields(content)
	for i, w := range words {
		words[i] = s.word(w)
	}
	return strings.Join(words, " ")
}

func (s *Scrambler) word(w string) string {
	runes := []rune(w)
	if len(runes) < constants.MinScrambleLength {
		return w
	}

	inner := runes[1 : len(runes)-1]

	s.mu.Lock()
	s.rng.Shuffle(len(inner), func(i, j int) {
		inner[i], inner[j] = inner[j], inner[i]
	})
	s.mu.Unlock()

	return string(runes)
}
