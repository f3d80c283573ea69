package score

import (
	"errors"
	"fmt"
)

// Synchronization errors.
var (
	ErrNotAuthenticated = errors.New("no player identity available")
	ErrInvalidScore     = errors.New("score must be >= 0")
)

// StoreError reports a transport or storage failure. Callers may retry.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("score store %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsStoreError reports whether err is a StoreError.
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
