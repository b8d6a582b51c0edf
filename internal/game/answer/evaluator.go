package answer

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/voyagerhq/gameshow/internal/game/challenge"
	"github.com/voyagerhq/gameshow/internal/metrics"
)

// Verdict classifies one player's round outcome.
type Verdict string

const (
	VerdictCorrect   Verdict = "correct"
	VerdictIncorrect Verdict = "incorrect"
	VerdictNoAnswer  Verdict = "no_answer"
)

// Submission is a player's answer for the current round. One submission
// counts per player; the instance applies last-write-wins before handing
// them to the evaluator.
type Submission struct {
	PlayerID    string
	Text        string
	SubmittedAt time.Time
}

// Judge is the external equivalence oracle for free-text answers. It is
// best-effort: any error or timeout falls back to the exact-match verdict.
type Judge interface {
	Judge(ctx context.Context, question string, accepted []string, candidate string) (bool, error)
}

// Result maps players to verdicts. Winner is set for speed rounds only
// and names the earliest correct submitter; later correct submissions
// stay VerdictCorrect but do not win.
type Result struct {
	Verdicts map[string]Verdict
	Winner   string
}

// Evaluator scores collected submissions against a challenge.
type Evaluator struct {
	judge        Judge
	judgeTimeout time.Duration
	logger       zerolog.Logger
}

const defaultJudgeTimeout = 5 * time.Second

// NewEvaluator builds an evaluator. judge may be nil, in which case only
// exact matching applies.
func NewEvaluator(judge Judge, judgeTimeout time.Duration, logger zerolog.Logger) *Evaluator {
	if judgeTimeout <= 0 {
		judgeTimeout = defaultJudgeTimeout
	}
	return &Evaluator{
		judge:        judge,
		judgeTimeout: judgeTimeout,
		logger:       logger.With().Str("component", "evaluator").Logger(),
	}
}

// Evaluate produces a verdict for every participant. Participants with no
// submission get VerdictNoAnswer. The caller must not hold instance locks:
// free-text rounds may consult the oracle over the network.
func (e *Evaluator) Evaluate(ctx context.Context, ch challenge.Challenge, participants []string, subs []Submission) Result {
	verdicts := make(map[string]Verdict, len(participants))
	for _, id := range participants {
		verdicts[id] = VerdictNoAnswer
	}

	// One deadline bounds every judge call in the round, so a slow oracle
	// cannot stack a full timeout per submission.
	judgeCtx := ctx
	if ch.FreeText && e.judge != nil {
		var cancel context.CancelFunc
		judgeCtx, cancel = context.WithTimeout(ctx, e.judgeTimeout)
		defer cancel()
	}

	var winner string
	var winnerAt time.Time
	for _, sub := range subs {
		if _, ok := verdicts[sub.PlayerID]; !ok {
			continue
		}

		correct := Matches(ch, sub.Text)
		if !correct && ch.FreeText && e.judge != nil && strings.TrimSpace(sub.Text) != "" {
			correct = e.consultJudge(judgeCtx, ch, sub.Text)
		}

		if correct {
			verdicts[sub.PlayerID] = VerdictCorrect
			if ch.SpeedBased && (winner == "" || sub.SubmittedAt.Before(winnerAt)) {
				winner = sub.PlayerID
				winnerAt = sub.SubmittedAt
			}
		} else {
			verdicts[sub.PlayerID] = VerdictIncorrect
		}
	}

	return Result{Verdicts: verdicts, Winner: winner}
}

func (e *Evaluator) consultJudge(ctx context.Context, ch challenge.Challenge, candidate string) bool {
	ok, err := e.judge.Judge(ctx, ch.Question, ch.Answers, candidate)
	if err != nil {
		// Fail open to the exact-match verdict; the oracle is
		// non-authoritative.
		metrics.OracleFailures.Inc()
		e.logger.Warn().Err(err).Str("game_type", string(ch.Type)).Msg("judge oracle unavailable")
		return false
	}
	return ok
}

// Matches reports whether text is an accepted answer under the
// challenge's matching rules, with no oracle involved.
func Matches(ch challenge.Challenge, text string) bool {
	if ch.MatchAll {
		return containsAll(ch, text)
	}
	for _, accepted := range ch.Answers {
		if equivalent(accepted, text, ch.CaseSensitive) {
			return true
		}
	}
	return false
}

func containsAll(ch challenge.Challenge, text string) bool {
	normalized := normalize(text, ch.CaseSensitive)
	for _, accepted := range ch.Answers {
		if !strings.Contains(normalized, normalize(accepted, ch.CaseSensitive)) {
			return false
		}
	}
	return true
}

// equivalent applies trim + case folding, then numeric equivalence so
// "130" accepts "130.0".
func equivalent(accepted, candidate string, caseSensitive bool) bool {
	a := normalize(accepted, caseSensitive)
	c := normalize(candidate, caseSensitive)
	if a == c {
		return true
	}

	an, aerr := strconv.ParseFloat(a, 64)
	cn, cerr := strconv.ParseFloat(c, 64)
	if aerr == nil && cerr == nil {
		return an == cn
	}
	return false
}

func normalize(s string, caseSensitive bool) string {
	s = strings.TrimSpace(s)
	if !caseSensitive {
		s = strings.ToLower(s)
	}
	return s
}
