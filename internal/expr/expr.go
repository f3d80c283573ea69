// Package expr validates and evaluates player expressions against a challenge.
package expr

import (
	"errors"
	"fmt"
	"math"

	"github.com/verte-zerg/quickten/internal/puzzle"
)

// Validation errors. Returned errors wrap one of these with detail.
var (
	ErrWrongDigits = errors.New("use each challenge digit exactly once")
	ErrSyntax      = errors.New("malformed expression")
	ErrArithmetic  = errors.New("division by zero")
)

const tolerance = 1e-9

// Result is the outcome of a well-formed expression.
type Result struct {
	Value   float64
	Correct bool
}

// Validate checks digit usage and syntax, then evaluates the expression.
// An expression that evaluates to something other than the target is not an
// error: it yields a Result with Correct set to false.
func Validate(expression string, challenge puzzle.Challenge) (Result, error) {
	if err := checkUsage(expression, challenge); err != nil {
		return Result{}, err
	}
	if err := checkAlphabet(expression); err != nil {
		return Result{}, err
	}
	value, err := Evaluate(expression)
	if err != nil {
		return Result{}, err
	}
	return Result{Value: value, Correct: isTarget(value)}, nil
}

// Digits extracts the digit characters of an expression in order.
func Digits(expression string) []int {
	var out []int
	for i := 0; i < len(expression); i++ {
		if isDigit(expression[i]) {
			out = append(out, int(expression[i]-'0'))
		}
	}
	return out
}

func checkUsage(expression string, challenge puzzle.Challenge) error {
	used := Digits(expression)
	if len(used) != puzzle.Size {
		return fmt.Errorf("%w: found %d digits, need %d", ErrWrongDigits, len(used), puzzle.Size)
	}
	pool := challenge.Digits()
	for _, d := range used {
		idx := -1
		for i, v := range pool {
			if v == d {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("%w: %d is not available", ErrWrongDigits, d)
		}
		pool = append(pool[:idx], pool[idx+1:]...)
	}
	return nil
}

func checkAlphabet(expression string) error {
	for i, r := range expression {
		if r > 0x7f || !isAllowed(byte(r)) {
			return fmt.Errorf("%w: unexpected %q at %d", ErrSyntax, r, i+1)
		}
	}
	return nil
}

func isTarget(v float64) bool {
	return math.Abs(v-puzzle.Target) < tolerance
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isAllowed(b byte) bool {
	if isDigit(b) {
		return true
	}
	switch b {
	case '+', '-', '*', '/', '(', ')', ' ':
		return true
	}
	return false
}
