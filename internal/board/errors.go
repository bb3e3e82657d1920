package board

import "errors"

// Sentinel errors, wrapped with context by the functions that return them.
var (
	// ErrInvalidFEN is returned for position descriptions that cannot be parsed
	// or that describe an impossible position.
	ErrInvalidFEN = errors.New("invalid FEN")

	// ErrInvalidMove is returned for move text that is not in square-pair
	// notation.
	ErrInvalidMove = errors.New("invalid move notation")

	// ErrIllegalMove is returned for well-formed moves that are not legal in
	// the current position.
	ErrIllegalMove = errors.New("illegal move")

	// ErrCorruptPosition reports a broken internal invariant: overlapping
	// occupancy sets, stale aggregates or a missing king.
	ErrCorruptPosition = errors.New("corrupt position")
)
