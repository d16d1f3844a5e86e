package engine

import "errors"

var (
	// ErrConfiguration is returned when difficulty parameters cannot produce a board.
	ErrConfiguration = errors.New("invalid difficulty configuration")
	// ErrGeneration is returned when no word could be placed on a board.
	ErrGeneration = errors.New("board generation failed")
	// ErrSessionClosed is returned for input received after the game ended.
	ErrSessionClosed = errors.New("session is closed")
	// ErrInvalidPlacement is returned by Board when a word or mine cannot go where requested.
	ErrInvalidPlacement = errors.New("invalid placement")
)
