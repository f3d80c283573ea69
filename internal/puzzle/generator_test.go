package puzzle

import "testing"

func TestGenerateDistinctInRange(t *testing.T) {
	g := NewWithSeed(42)
	for i := 0; i < 2000; i++ {
		c := g.Generate()
		if !c.Valid() {
			t.Fatalf("invalid challenge %v", c)
		}
	}
}

func TestGenerateSeedIsReproducible(t *testing.T) {
	a := NewWithSeed(7)
	b := NewWithSeed(7)
	for i := 0; i < 20; i++ {
		ca, cb := a.Generate(), b.Generate()
		if ca != cb {
			t.Fatalf("expected equal challenges at %d, got %v and %v", i, ca, cb)
		}
	}
}

func TestGenerateCoversAllDigits(t *testing.T) {
	g := NewWithSeed(1)
	seen := map[int]bool{}
	for i := 0; i < 500; i++ {
		for _, d := range g.Generate() {
			seen[d] = true
		}
	}
	for d := 1; d <= 9; d++ {
		if !seen[d] {
			t.Fatalf("digit %d never generated", d)
		}
	}
}

func TestChallengeHelpers(t *testing.T) {
	c := Challenge{2, 3, 4, 5}
	if !c.Contains(4) || c.Contains(9) {
		t.Fatalf("unexpected Contains result for %v", c)
	}
	if c.Count(2) != 1 {
		t.Fatalf("expected count 1, got %d", c.Count(2))
	}
	if c.String() != "2 3 4 5" {
		t.Fatalf("unexpected string %q", c.String())
	}
	if (Challenge{1, 1, 2, 3}).Valid() {
		t.Fatalf("expected repeated digits to be invalid")
	}
	if (Challenge{0, 1, 2, 3}).Valid() {
		t.Fatalf("expected 0 to be invalid")
	}
	digits := c.Digits()
	digits[0] = 9
	if c[0] != 2 {
		t.Fatalf("Digits must return a copy")
	}
}
