package errors

// Error codes for standardized error responses
const (
	// Authentication errors
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeInvalidToken = "invalid_token"
	ErrCodeTokenExpired = "token_expired"

	// Validation errors
	ErrCodeInvalidRequest = "invalid_request"
	ErrCodeMissingField   = "missing_field"

	// Waitlist errors
	ErrCodeAlreadyQueued     = "already_queued"
	ErrCodeAlreadyInInstance = "already_in_instance"

	// Instance errors
	ErrCodeInstanceNotFound    = "instance_not_found"
	ErrCodeUnknownPlayer       = "unknown_player"
	ErrCodeWrongPhase          = "wrong_phase"
	ErrCodeRoundAlreadyActive  = "round_already_active"
	ErrCodeNoActiveRound       = "no_active_round"
	ErrCodeNoAtRiskPlayers     = "no_at_risk_players"
	ErrCodeUnsupportedGameType = "unsupported_game_type"

	// Leaderboard errors
	ErrCodeUnknownWindow          = "unknown_leaderboard_window"
	ErrCodeLeaderboardFetchFailed = "leaderboard_fetch_failed"

	// Server errors
	ErrCodeInternalError      = "internal_error"
	ErrCodeServiceUnavailable = "service_unavailable"
	ErrCodeUpstreamError      = "upstream_error"
)
