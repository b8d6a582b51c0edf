package game

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyagerhq/gameshow/internal/game/answer"
	"github.com/voyagerhq/gameshow/internal/game/challenge"
)

const fixedType = challenge.GameType("fixed")

// testRegistry registers a deterministic challenge so round outcomes
// depend only on what players submit.
func testRegistry(speedBased bool) *challenge.Registry {
	r := challenge.NewRegistry(challenge.Options{})
	r.Register(fixedType, func() challenge.Challenge {
		return challenge.Challenge{
			Type:       fixedType,
			Question:   "What's 6 + 7?",
			Answers:    []string{"13"},
			TimeLimit:  8 * time.Second,
			SpeedBased: speedBased,
		}
	})
	return r
}

func testInstance(t *testing.T, cfg Config, speedBased bool, playerIDs ...string) *Instance {
	t.Helper()
	seats := make([]Seat, len(playerIDs))
	for i, id := range playerIDs {
		seats[i] = Seat{ID: id, DisplayName: strings.ToUpper(id)}
	}
	evaluator := answer.NewEvaluator(nil, time.Second, zerolog.Nop())
	return NewInstance("inst-1", "Test Night", seats, cfg, testRegistry(speedBased), evaluator, zerolog.Nop())
}

func startedInstance(t *testing.T, cfg Config, playerIDs ...string) *Instance {
	t.Helper()
	inst := testInstance(t, cfg, false, playerIDs...)
	require.NoError(t, inst.Start())
	return inst
}

// playRound runs one full round where each listed player submits the
// given text; missing players submit nothing.
func playRound(t *testing.T, inst *Instance, elimination bool, answers map[string]string) *RoundResult {
	t.Helper()

	var err error
	if elimination {
		_, err = inst.RequestElimination(fixedType)
	} else {
		_, err = inst.BeginRound(fixedType)
	}
	require.NoError(t, err)

	// Submission order is map-random; the sleep keeps timestamps distinct
	// without affecting which rounds they land in.
	for id, text := range answers {
		require.NoError(t, inst.SubmitAnswer(id, text))
		time.Sleep(time.Millisecond)
	}

	result, err := inst.EvaluateRound(context.Background())
	require.NoError(t, err)
	return result
}

func playerByID(snap Snapshot, id string) PlayerView {
	for _, p := range snap.Players {
		if p.ID == id {
			return p
		}
	}
	return PlayerView{}
}

func TestStartSetsBudgetBySize(t *testing.T) {
	duel := testInstance(t, Config{}, false, "alice", "bob")
	require.NoError(t, duel.Start())
	assert.Equal(t, 15, duel.Snapshot().RoundBudget)

	party := testInstance(t, Config{}, false, "alice", "bob", "carol")
	require.NoError(t, party.Start())
	assert.Equal(t, 20, party.Snapshot().RoundBudget)
}

func TestStartRequiresIntro(t *testing.T) {
	inst := startedInstance(t, Config{}, "alice", "bob")

	err := inst.Start()
	assert.True(t, errors.Is(err, ErrWrongPhase))
}

func TestBeginRoundBeforeStart(t *testing.T) {
	inst := testInstance(t, Config{}, false, "alice", "bob")

	_, err := inst.BeginRound(fixedType)
	assert.True(t, errors.Is(err, ErrWrongPhase))
}

func TestBeginRoundWhileActive(t *testing.T) {
	inst := startedInstance(t, Config{}, "alice", "bob")

	_, err := inst.BeginRound(fixedType)
	require.NoError(t, err)

	_, err = inst.BeginRound(fixedType)
	assert.True(t, errors.Is(err, ErrRoundAlreadyActive))
}

func TestSubmitAnswerRules(t *testing.T) {
	inst := startedInstance(t, Config{}, "alice", "bob")

	err := inst.SubmitAnswer("alice", "13")
	assert.True(t, errors.Is(err, ErrNoActiveRound))

	_, err = inst.BeginRound(fixedType)
	require.NoError(t, err)

	err = inst.SubmitAnswer("mallory", "13")
	assert.True(t, errors.Is(err, ErrUnknownPlayer))

	require.NoError(t, inst.SubmitAnswer("alice", "13"))
}

func TestSubmitAnswerOverwrites(t *testing.T) {
	inst := startedInstance(t, Config{}, "alice", "bob")

	_, err := inst.BeginRound(fixedType)
	require.NoError(t, err)

	require.NoError(t, inst.SubmitAnswer("alice", "99"))
	require.NoError(t, inst.SubmitAnswer("alice", "13"))
	require.NoError(t, inst.SubmitAnswer("bob", "99"))

	result, err := inst.EvaluateRound(context.Background())
	require.NoError(t, err)
	assert.Equal(t, answer.VerdictCorrect, result.Verdicts["alice"], "last submission counts")
	assert.Equal(t, answer.VerdictIncorrect, result.Verdicts["bob"])
}

func TestEvaluateRoundExactlyOnce(t *testing.T) {
	inst := startedInstance(t, Config{}, "alice", "bob")

	result := playRound(t, inst, false, map[string]string{"alice": "13", "bob": "13"})
	require.NotNil(t, result)

	scoreBefore := playerByID(inst.Snapshot(), "alice").Score
	require.Positive(t, scoreBefore)

	_, err := inst.EvaluateRound(context.Background())
	assert.True(t, errors.Is(err, ErrNoActiveRound), "second evaluation must fail")
	assert.Equal(t, scoreBefore, playerByID(inst.Snapshot(), "alice").Score, "no double scoring")
}

func TestScoringWithFirstAnswerBonus(t *testing.T) {
	inst := startedInstance(t, Config{}, "alice", "bob")

	_, err := inst.BeginRound(fixedType)
	require.NoError(t, err)
	require.NoError(t, inst.SubmitAnswer("alice", "13"))
	time.Sleep(time.Millisecond)
	require.NoError(t, inst.SubmitAnswer("bob", "13"))

	result, err := inst.EvaluateRound(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 13, result.ScoreDeltas["alice"], "correct + first-answer bonus")
	assert.Equal(t, 10, result.ScoreDeltas["bob"])

	snap := inst.Snapshot()
	assert.Equal(t, 13, playerByID(snap, "alice").Score)
	assert.Equal(t, 10, playerByID(snap, "bob").Score)
}

func TestSpeedRoundScoring(t *testing.T) {
	inst := testInstance(t, Config{}, true, "alice", "bob")
	require.NoError(t, inst.Start())

	_, err := inst.BeginRound(fixedType)
	require.NoError(t, err)
	require.NoError(t, inst.SubmitAnswer("alice", "13"))
	time.Sleep(time.Millisecond)
	require.NoError(t, inst.SubmitAnswer("bob", "13"))

	result, err := inst.EvaluateRound(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "alice", result.SpeedWinner)
	assert.Equal(t, 18, result.ScoreDeltas["alice"], "correct + speed bonus + first-answer bonus")
	assert.Equal(t, 5, result.ScoreDeltas["bob"], "consolation points for later correct answers")
}

func TestScoresNeverDecrease(t *testing.T) {
	inst := startedInstance(t, Config{}, "alice", "bob", "carol")

	last := map[string]int{}
	for round := 0; round < 5; round++ {
		playRound(t, inst, false, map[string]string{"alice": "13", "bob": "wrong", "carol": "13"})
		snap := inst.Snapshot()
		for _, p := range snap.Players {
			assert.GreaterOrEqual(t, p.Score, last[p.ID], "score of %s decreased", p.ID)
			last[p.ID] = p.Score
		}
		if snap.Phase == PhaseOutro {
			break
		}
	}
}

func TestMissProgressionToElimination(t *testing.T) {
	inst := startedInstance(t, Config{}, "alice", "bob", "carol")

	// First miss: active players drop to at-risk.
	result := playRound(t, inst, false, map[string]string{"alice": "13", "bob": "wrong"})
	assert.ElementsMatch(t, []string{"bob", "carol"}, result.AtRisk, "wrong answer and no answer both count as a miss")

	snap := inst.Snapshot()
	assert.Equal(t, PlayerAtRisk, playerByID(snap, "bob").Status)
	assert.Equal(t, PlayerAtRisk, playerByID(snap, "carol").Status)

	// Second consecutive miss eliminates; a correct answer recovers.
	result = playRound(t, inst, false, map[string]string{"alice": "13", "bob": "wrong", "carol": "13"})
	assert.Contains(t, result.Eliminated, "bob")
	assert.Contains(t, result.Recovered, "carol")

	snap = inst.Snapshot()
	assert.Equal(t, PlayerEliminated, playerByID(snap, "bob").Status)
	assert.Equal(t, PlayerActive, playerByID(snap, "carol").Status)
}

func TestEliminationRound(t *testing.T) {
	inst := startedInstance(t, Config{}, "alice", "bob", "carol")

	// Nobody at risk yet.
	_, err := inst.RequestElimination(fixedType)
	assert.True(t, errors.Is(err, ErrNoAtRiskPlayers))

	playRound(t, inst, false, map[string]string{"alice": "13", "carol": "13"})
	require.Equal(t, PlayerAtRisk, playerByID(inst.Snapshot(), "bob").Status)

	start, err := inst.RequestElimination(fixedType)
	require.NoError(t, err)
	assert.Equal(t, PhaseElimination, start.Phase)

	// Safe players are not part of the elimination round.
	require.NoError(t, inst.SubmitAnswer("alice", "13"))

	result, err := inst.EvaluateRound(context.Background())
	require.NoError(t, err)

	assert.Equal(t, answer.VerdictNoAnswer, result.Verdicts["bob"])
	_, ok := result.Verdicts["alice"]
	assert.False(t, ok, "non-participant submissions are dropped silently")
	assert.Contains(t, result.Eliminated, "bob")
	assert.Equal(t, PhaseMainRound, inst.Phase(), "elimination returns to the main round")
	assert.Empty(t, result.ScoreDeltas["alice"], "dropped submission never scores")
}

func TestEliminationRoundRecovery(t *testing.T) {
	inst := startedInstance(t, Config{}, "alice", "bob", "carol")

	playRound(t, inst, false, map[string]string{"alice": "13", "carol": "13"})
	require.Equal(t, PlayerAtRisk, playerByID(inst.Snapshot(), "bob").Status)

	result := playRound(t, inst, true, map[string]string{"bob": "13"})
	assert.Contains(t, result.Recovered, "bob")
	assert.Equal(t, PlayerActive, playerByID(inst.Snapshot(), "bob").Status)
}

func TestLastPlayerStandingWinsEarly(t *testing.T) {
	inst := startedInstance(t, Config{}, "alice", "bob")

	playRound(t, inst, false, map[string]string{"alice": "13"})
	result := playRound(t, inst, true, map[string]string{})

	assert.True(t, result.Finished, "one contender left ends the game before the budget")
	assert.Equal(t, []string{"alice"}, result.Winners)

	snap := inst.Snapshot()
	assert.Equal(t, PhaseOutro, snap.Phase)
	assert.Equal(t, PlayerWinner, playerByID(snap, "alice").Status)
}

func TestBudgetExhaustionCrownsTopScore(t *testing.T) {
	inst := startedInstance(t, Config{TwoPlayerRounds: 1}, "alice", "bob")

	_, err := inst.BeginRound(fixedType)
	require.NoError(t, err)
	require.NoError(t, inst.SubmitAnswer("alice", "13"))
	time.Sleep(time.Millisecond)
	require.NoError(t, inst.SubmitAnswer("bob", "13"))

	result, err := inst.EvaluateRound(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Finished)
	assert.Equal(t, []string{"alice"}, result.Winners, "first-answer bonus breaks the score")
}

func TestTieBreakByEarliestFirstCorrect(t *testing.T) {
	inst := startedInstance(t, Config{TwoPlayerRounds: 2}, "alice", "bob")

	// Round 1: only alice scores. Round 2: only bob scores the same
	// total. Earliest first correct answer wins the tie.
	playRound(t, inst, false, map[string]string{"alice": "13", "bob": "wrong"})
	result := playRound(t, inst, false, map[string]string{"alice": "wrong", "bob": "13"})

	require.True(t, result.Finished)

	snap := inst.Snapshot()
	assert.Equal(t, playerByID(snap, "alice").Score, playerByID(snap, "bob").Score)
	assert.Equal(t, []string{"alice"}, result.Winners)
}

func TestEveryoneEliminatedSameRound(t *testing.T) {
	inst := startedInstance(t, Config{}, "alice", "bob")

	playRound(t, inst, false, map[string]string{})
	result := playRound(t, inst, false, map[string]string{})

	assert.True(t, result.Finished, "a fully eliminated roster still produces a winner")
	assert.Equal(t, []string{"alice"}, result.Winners, "arrival order breaks a dead-even tie")
}

func TestAllSubmitted(t *testing.T) {
	inst := startedInstance(t, Config{}, "alice", "bob")

	assert.False(t, inst.AllSubmitted(), "no active round")

	_, err := inst.BeginRound(fixedType)
	require.NoError(t, err)
	assert.False(t, inst.AllSubmitted())

	require.NoError(t, inst.SubmitAnswer("alice", "13"))
	assert.False(t, inst.AllSubmitted())

	require.NoError(t, inst.SubmitAnswer("bob", "wrong"))
	assert.True(t, inst.AllSubmitted(), "wrong answers still count as submitted")
}

func TestSnapshotNeverLeaksAnswers(t *testing.T) {
	inst := startedInstance(t, Config{}, "alice", "bob")

	_, err := inst.BeginRound(fixedType)
	require.NoError(t, err)

	snap := inst.Snapshot()
	require.NotNil(t, snap.Challenge)
	assert.Equal(t, "What's 6 + 7?", snap.Challenge.Question)

	raw, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "13", "answer key must not be serialized")
}

// gateJudge blocks inside the oracle consultation until released, so a
// test can observe the instance mid-evaluation.
type gateJudge struct {
	entered chan struct{}
	release chan struct{}
}

func (j *gateJudge) Judge(_ context.Context, _ string, _ []string, _ string) (bool, error) {
	j.entered <- struct{}{}
	<-j.release
	return true, nil
}

func TestNoNewRoundWhileEvaluationInFlight(t *testing.T) {
	judge := &gateJudge{entered: make(chan struct{}, 1), release: make(chan struct{})}

	r := challenge.NewRegistry(challenge.Options{})
	r.Register(fixedType, func() challenge.Challenge {
		return challenge.Challenge{
			Type:      fixedType,
			Question:  "What gets wetter as it dries?",
			Answers:   []string{"towel"},
			TimeLimit: 8 * time.Second,
			FreeText:  true,
		}
	})
	evaluator := answer.NewEvaluator(judge, time.Second, zerolog.Nop())
	seats := []Seat{{ID: "alice", DisplayName: "ALICE"}, {ID: "bob", DisplayName: "BOB"}}
	inst := NewInstance("inst-1", "Test Night", seats, Config{}, r, evaluator, zerolog.Nop())
	require.NoError(t, inst.Start())

	_, err := inst.BeginRound(fixedType)
	require.NoError(t, err)
	require.NoError(t, inst.SubmitAnswer("alice", "a towel, probably"))

	type evalOut struct {
		result *RoundResult
		err    error
	}
	done := make(chan evalOut, 1)
	go func() {
		result, err := inst.EvaluateRound(context.Background())
		done <- evalOut{result, err}
	}()

	<-judge.entered

	// The round is being resolved; nothing may open or close another one.
	_, err = inst.BeginRound(fixedType)
	assert.True(t, errors.Is(err, ErrRoundAlreadyActive), "no round may open mid-evaluation")
	_, err = inst.RequestElimination(fixedType)
	assert.True(t, errors.Is(err, ErrRoundAlreadyActive))
	_, err = inst.EvaluateRound(context.Background())
	assert.True(t, errors.Is(err, ErrNoActiveRound))

	close(judge.release)
	out := <-done
	require.NoError(t, out.err)
	assert.Equal(t, answer.VerdictCorrect, out.result.Verdicts["alice"])
	assert.Equal(t, PhaseMainRound, inst.Phase())

	_, err = inst.BeginRound(fixedType)
	require.NoError(t, err, "rounds reopen once the outcome is applied")
}

func TestSnapshotLeaderboardOrder(t *testing.T) {
	inst := startedInstance(t, Config{}, "alice", "bob", "carol")

	playRound(t, inst, false, map[string]string{"bob": "13"})

	snap := inst.Snapshot()
	require.Len(t, snap.Players, 3)
	assert.Equal(t, "bob", snap.Players[0].ID, "players are ordered best-first")
}
