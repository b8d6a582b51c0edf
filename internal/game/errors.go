package game

import "errors"

// Typed failures surfaced to callers. A failed operation leaves the
// instance in its prior state.
var (
	ErrRoundAlreadyActive = errors.New("round already active")
	ErrNoActiveRound      = errors.New("no active round")
	ErrUnknownPlayer      = errors.New("unknown player")
	ErrWrongPhase         = errors.New("operation not valid in current phase")
	ErrNoAtRiskPlayers    = errors.New("no players at risk")

	ErrAlreadyQueued     = errors.New("player already in waitlist")
	ErrAlreadyInInstance = errors.New("player already in an instance")
	ErrInstanceNotFound  = errors.New("instance not found")
)
