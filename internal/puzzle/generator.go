package puzzle

import (
	"math/rand"
	"time"
)

// Generator produces randomized challenges.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewWithSeed(time.Now().UnixNano())
}

// NewWithSeed returns a Generator with a fixed seed.
func NewWithSeed(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Generate draws four distinct digits from [1,9] by rejection sampling.
func (g *Generator) Generate() Challenge {
	var c Challenge
	seen := make(map[int]struct{}, Size)
	for len(seen) < Size {
		d := minDigit + g.rnd.Intn(maxDigit-minDigit+1)
		if _, ok := seen[d]; ok {
			continue
		}
		c[len(seen)] = d
		seen[d] = struct{}{}
	}
	return c
}
