// Package assert holds invariant checks for depot's storage internals.
//
// A failed check is an implementation bug, not bad input, so it panics.
package assert

import "fmt"

// Error is the panic value of a failed invariant check.
type Error struct {
	Msg string
}

func (e Error) Error() string {
	return "depot: invariant violated: " + e.Msg
}

// That panics with an Error when cond is false.
func That(cond bool, format string, args ...any) {
	if cond {
		return
	}
	if len(args) == 0 {
		panic(Error{Msg: format})
	}
	panic(Error{Msg: fmt.Sprintf(format, args...)})
}

// InBounds panics when row is outside [0, length).
func InBounds(row, length int) {
	if row < 0 || row >= length {
		panic(Error{Msg: fmt.Sprintf("row %d out of bounds for length %d", row, length)})
	}
}
