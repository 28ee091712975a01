package game

import "errors"

var (
	// ErrInvalidLog means the move log text is malformed or describes an
	// impossible or already finished game.
	ErrInvalidLog = errors.New("invalid move log")

	// ErrIllegalMove means the chosen column is out of range or full.
	ErrIllegalMove = errors.New("illegal move")

	// ErrEngineUnavailable means the engine or its opening book could not be loaded.
	ErrEngineUnavailable = errors.New("engine unavailable")

	// ErrInconsistentClassification means a score and ply count do not map to
	// any game status. It indicates an engine contract violation, not bad input.
	ErrInconsistentClassification = errors.New("inconsistent classification")
)
