// Package puzzle defines round challenges and their generator.
package puzzle

import (
	"strconv"
	"strings"
)

// Size is the number of digits in a challenge.
const Size = 4

// Target is the value every expression has to reach.
const Target = 10

const (
	minDigit = 1
	maxDigit = 9
)

// Challenge holds the digits a round must be solved with.
type Challenge [Size]int

// Digits returns the digits as a fresh slice.
func (c Challenge) Digits() []int {
	out := make([]int, Size)
	copy(out, c[:])
	return out
}

// Count reports how many times d appears in the challenge.
func (c Challenge) Count(d int) int {
	n := 0
	for _, v := range c {
		if v == d {
			n++
		}
	}
	return n
}

// Contains reports whether d appears in the challenge.
func (c Challenge) Contains(d int) bool {
	return c.Count(d) > 0
}

// Valid reports whether the challenge holds pairwise-distinct digits in [1,9].
func (c Challenge) Valid() bool {
	seen := map[int]struct{}{}
	for _, v := range c {
		if v < minDigit || v > maxDigit {
			return false
		}
		if _, ok := seen[v]; ok {
			return false
		}
		seen[v] = struct{}{}
	}
	return true
}

// String renders the digits separated by spaces.
func (c Challenge) String() string {
	parts := make([]string, 0, Size)
	for _, v := range c {
		parts = append(parts, strconv.Itoa(v))
	}
	return strings.Join(parts, " ")
}
