package game

import (
	"time"

	"github.com/voyagerhq/gameshow/internal/game/answer"
	"github.com/voyagerhq/gameshow/internal/game/challenge"
)

// Phase of the instance state machine.
const (
	PhaseIntro       = "intro"
	PhaseMainRound   = "main_round"
	PhaseElimination = "elimination"
	PhaseOutro       = "outro"
)

// PlayerStatus within an instance. Transitions happen only inside
// EvaluateRound.
const (
	PlayerActive     = "active"
	PlayerAtRisk     = "at_risk"
	PlayerEliminated = "eliminated"
	PlayerWinner     = "winner"
)

// Player tracks one roster entry. Score never decreases.
type Player struct {
	ID          string
	DisplayName string
	Score       int
	Status      string

	arrival        int
	missStreak     int
	firstCorrectAt time.Time
}

// Seat names a player being assigned to a new instance.
type Seat struct {
	ID          string
	DisplayName string
}

// Config holds gameplay knobs. Zero values fall back to defaults from
// the party-game ruleset.
type Config struct {
	MinPlayers int
	MaxPlayers int

	// Round budget by party size.
	TwoPlayerRounds int
	PartyRounds     int

	// EliminationMisses is how many failed rounds a player survives while
	// at risk before being eliminated.
	EliminationMisses int

	// Score weights.
	CorrectPoints        int
	SpeedBonusPoints     int
	FirstAnswerPoints    int
	SpeedNonWinnerPoints int
}

// DefaultConfig returns the standard ruleset.
func DefaultConfig() Config {
	return Config{
		MinPlayers:           2,
		MaxPlayers:           8,
		TwoPlayerRounds:      15,
		PartyRounds:          20,
		EliminationMisses:    1,
		CorrectPoints:        10,
		SpeedBonusPoints:     5,
		FirstAnswerPoints:    3,
		SpeedNonWinnerPoints: 5,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MinPlayers <= 0 {
		c.MinPlayers = d.MinPlayers
	}
	if c.MaxPlayers <= 0 {
		c.MaxPlayers = d.MaxPlayers
	}
	if c.TwoPlayerRounds <= 0 {
		c.TwoPlayerRounds = d.TwoPlayerRounds
	}
	if c.PartyRounds <= 0 {
		c.PartyRounds = d.PartyRounds
	}
	if c.EliminationMisses <= 0 {
		c.EliminationMisses = d.EliminationMisses
	}
	if c.CorrectPoints <= 0 {
		c.CorrectPoints = d.CorrectPoints
	}
	if c.SpeedBonusPoints <= 0 {
		c.SpeedBonusPoints = d.SpeedBonusPoints
	}
	if c.FirstAnswerPoints <= 0 {
		c.FirstAnswerPoints = d.FirstAnswerPoints
	}
	if c.SpeedNonWinnerPoints <= 0 {
		c.SpeedNonWinnerPoints = d.SpeedNonWinnerPoints
	}
	return c
}

// RoundResult is the outcome of one EvaluateRound call, shaped for the
// transport layer to render.
type RoundResult struct {
	Round    int                `json:"round"`
	Phase    string             `json:"phase"`
	GameType challenge.GameType `json:"game_type"`

	Verdicts    map[string]answer.Verdict `json:"verdicts"`
	ScoreDeltas map[string]int            `json:"score_deltas"`

	// SpeedWinner is set for speed rounds: the earliest correct submitter.
	SpeedWinner string `json:"speed_winner,omitempty"`

	Correct    []string `json:"correct,omitempty"`
	AtRisk     []string `json:"at_risk,omitempty"`
	Eliminated []string `json:"eliminated,omitempty"`
	Recovered  []string `json:"recovered,omitempty"`

	// NewLeader is set when the top of the leaderboard changed this round.
	NewLeader string `json:"new_leader,omitempty"`

	// Finished is true when the instance transitioned to OUTRO; Winners
	// then holds the winning player IDs.
	Finished bool     `json:"finished"`
	Winners  []string `json:"winners,omitempty"`
}

// ChallengeView is the player-visible slice of a challenge. It never
// carries the answer key.
type ChallengeView struct {
	Type      challenge.GameType `json:"type"`
	Question  string             `json:"question"`
	TimeLimit time.Duration      `json:"time_limit"`
}

// PlayerView is a roster entry for rendering.
type PlayerView struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Score       int    `json:"score"`
	Status      string `json:"status"`
}

// Snapshot is a read-only view of instance state.
type Snapshot struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Phase           string         `json:"phase"`
	Round           int            `json:"round"`
	RoundBudget     int            `json:"round_budget"`
	Players         []PlayerView   `json:"players"`
	Challenge       *ChallengeView `json:"challenge,omitempty"`
	SubmissionCount int            `json:"submission_count"`
	AllSubmitted    bool           `json:"all_submitted"`
}
