package engine

import "errors"

var (
	// ErrInvalidMove reports a move whose precondition does not hold.
	ErrInvalidMove = errors.New("invalid move")
	// ErrEmptyPile reports a pop on an empty pile.
	ErrEmptyPile = errors.New("empty pile")
	// ErrUnknownMoveType reports a move descriptor with an unrecognised tag.
	ErrUnknownMoveType = errors.New("unknown move type")
	// ErrNoHistory reports undo or redo with nothing to restore.
	ErrNoHistory = errors.New("no history")
	// ErrMalformedSnapshot reports a snapshot with missing or invalid fields.
	ErrMalformedSnapshot = errors.New("malformed snapshot")
	// ErrInvalidConfig reports game settings outside the supported range.
	ErrInvalidConfig = errors.New("invalid config")
)
