package challenge

import (
	"errors"
	"time"
)

// GameType identifies a mini-game family. Adding a new family means
// registering one generator; nothing else in the engine changes.
type GameType string

const (
	TypeQuickMath     GameType = "quick_math"
	TypeTrivia        GameType = "trivia"
	TypeSpeed         GameType = "speed_challenge"
	TypeTextMod       GameType = "text_mod"
	TypeMemory        GameType = "memory_game"
	TypeEmoji         GameType = "emoji_challenge"
	TypeRiddle        GameType = "riddle"
	TypeCollaborative GameType = "collaborative"
)

// ErrUnsupportedGameType is returned when a generator for the requested
// type has not been registered.
var ErrUnsupportedGameType = errors.New("unsupported game type")

// Challenge is an immutable round prompt. Answers holds every accepted
// form; the evaluator applies normalization on top of it.
type Challenge struct {
	Type      GameType
	Question  string
	Answers   []string
	TimeLimit time.Duration

	// SpeedBased rounds award the win to the earliest correct submission.
	SpeedBased bool
	// FreeText rounds may consult the judge oracle for near-miss answers.
	FreeText bool
	// MatchAll rounds require every answer token to appear in the
	// submission, in any order (emoji rounds).
	MatchAll bool
	// CaseSensitive disables case folding during evaluation; used when
	// the casing itself is the puzzle.
	CaseSensitive bool
}
