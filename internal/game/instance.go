package game

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/voyagerhq/gameshow/internal/game/answer"
	"github.com/voyagerhq/gameshow/internal/game/challenge"
)

// Instance is one running game session. Every mutating operation holds
// the instance mutex; the oracle round-trip inside EvaluateRound happens
// with the lock released.
type Instance struct {
	mu sync.Mutex

	id     string
	name   string
	cfg    Config
	logger zerolog.Logger

	generator *challenge.Registry
	evaluator *answer.Evaluator

	phase        string
	roster       map[string]*Player
	arrivalSeq   int
	roundNumber  int
	roundBudget  int
	current      *challenge.Challenge
	submissions  map[string]answer.Submission
	participants map[string]bool
	leader       string

	// evaluating is set while EvaluateRound has consumed the round but not
	// yet applied its outcome. No new round may open in that window.
	evaluating bool

	createdAt time.Time
	startedAt time.Time
}

// RoundStart announces a freshly begun round.
type RoundStart struct {
	Round     int           `json:"round"`
	Phase     string        `json:"phase"`
	Challenge ChallengeView `json:"challenge"`
}

// NewInstance builds an instance in INTRO with all seats filled.
func NewInstance(id, name string, seats []Seat, cfg Config, generator *challenge.Registry, evaluator *answer.Evaluator, logger zerolog.Logger) *Instance {
	inst := &Instance{
		id:          id,
		name:        name,
		cfg:         cfg.withDefaults(),
		logger:      logger.With().Str("component", "instance").Str("instance_id", id).Logger(),
		generator:   generator,
		evaluator:   evaluator,
		phase:       PhaseIntro,
		roster:      make(map[string]*Player, len(seats)),
		submissions: make(map[string]answer.Submission),
		createdAt:   time.Now(),
	}
	for _, seat := range seats {
		inst.addPlayerLocked(seat)
	}
	return inst
}

func (i *Instance) addPlayerLocked(seat Seat) {
	if _, ok := i.roster[seat.ID]; ok {
		return
	}
	i.roster[seat.ID] = &Player{
		ID:          seat.ID,
		DisplayName: seat.DisplayName,
		Status:      PlayerActive,
		arrival:     i.arrivalSeq,
	}
	i.arrivalSeq++
}

// ID returns the instance identifier.
func (i *Instance) ID() string { return i.id }

// Name returns the instance display name.
func (i *Instance) Name() string { return i.name }

// HasPlayer reports roster membership.
func (i *Instance) HasPlayer(playerID string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	_, ok := i.roster[playerID]
	return ok
}

// Phase returns the current lifecycle phase.
func (i *Instance) Phase() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.phase
}

// Start moves the instance from INTRO into MAIN_ROUND. The round budget
// depends on party size: duels get a shorter game than full parties.
func (i *Instance) Start() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.phase != PhaseIntro {
		return fmt.Errorf("%w: start requires intro, got %s", ErrWrongPhase, i.phase)
	}

	i.roundNumber = 0
	i.roundBudget = i.cfg.PartyRounds
	if len(i.roster) <= 2 {
		i.roundBudget = i.cfg.TwoPlayerRounds
	}
	for _, p := range i.roster {
		p.Status = PlayerActive
		p.missStreak = 0
	}
	i.phase = PhaseMainRound
	i.startedAt = time.Now()

	i.logger.Info().Int("players", len(i.roster)).Int("round_budget", i.roundBudget).Msg("game started")
	return nil
}

// BeginRound generates a challenge and opens submissions. An empty
// gameType picks a registered type uniformly at random.
func (i *Instance) BeginRound(gameType challenge.GameType) (*RoundStart, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.phase != PhaseMainRound && i.phase != PhaseElimination {
		return nil, fmt.Errorf("%w: begin round requires main_round or elimination, got %s", ErrWrongPhase, i.phase)
	}
	return i.beginRoundLocked(gameType)
}

// RequestElimination opens an elimination round restricted to AT_RISK
// players.
func (i *Instance) RequestElimination(gameType challenge.GameType) (*RoundStart, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.phase != PhaseMainRound && i.phase != PhaseElimination {
		return nil, fmt.Errorf("%w: elimination requires main_round, got %s", ErrWrongPhase, i.phase)
	}
	if i.current != nil || i.evaluating {
		return nil, ErrRoundAlreadyActive
	}
	if i.countStatusLocked(PlayerAtRisk) == 0 {
		return nil, ErrNoAtRiskPlayers
	}

	i.phase = PhaseElimination
	return i.beginRoundLocked(gameType)
}

func (i *Instance) beginRoundLocked(gameType challenge.GameType) (*RoundStart, error) {
	if i.current != nil || i.evaluating {
		return nil, ErrRoundAlreadyActive
	}

	if gameType == "" {
		gameType = i.generator.RandomType()
	}
	ch, err := i.generator.Generate(gameType)
	if err != nil {
		return nil, err
	}

	participants := make(map[string]bool)
	for id, p := range i.roster {
		switch i.phase {
		case PhaseElimination:
			if p.Status == PlayerAtRisk {
				participants[id] = true
			}
		default:
			if p.Status == PlayerActive || p.Status == PlayerAtRisk {
				participants[id] = true
			}
		}
	}

	i.current = &ch
	i.submissions = make(map[string]answer.Submission)
	i.participants = participants
	i.roundNumber++

	i.logger.Info().
		Int("round", i.roundNumber).
		Str("phase", i.phase).
		Str("game_type", string(ch.Type)).
		Int("participants", len(participants)).
		Msg("round started")

	return &RoundStart{
		Round: i.roundNumber,
		Phase: i.phase,
		Challenge: ChallengeView{
			Type:      ch.Type,
			Question:  ch.Question,
			TimeLimit: ch.TimeLimit,
		},
	}, nil
}

// SubmitAnswer records a player's answer, overwriting any earlier one
// this round. Submissions from players who are not part of the round are
// dropped without error so a late double-click never surfaces a failure.
func (i *Instance) SubmitAnswer(playerID, text string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.current == nil {
		return ErrNoActiveRound
	}
	if _, ok := i.roster[playerID]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPlayer, playerID)
	}
	if !i.participants[playerID] {
		return nil
	}

	i.submissions[playerID] = answer.Submission{
		PlayerID:    playerID,
		Text:        text,
		SubmittedAt: time.Now(),
	}
	return nil
}

// AllSubmitted reports whether every round participant has answered, so
// the scheduler can advance before the time limit.
func (i *Instance) AllSubmitted() bool {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.current == nil || len(i.participants) == 0 {
		return false
	}
	for id := range i.participants {
		if _, ok := i.submissions[id]; !ok {
			return false
		}
	}
	return true
}

// EvaluateRound closes the round, scores submissions and applies status
// transitions atomically. The round is consumed up front, so a second
// call without an intervening BeginRound fails with ErrNoActiveRound and
// scores can never double-increment.
func (i *Instance) EvaluateRound(ctx context.Context) (*RoundResult, error) {
	i.mu.Lock()
	if i.current == nil {
		i.mu.Unlock()
		return nil, ErrNoActiveRound
	}

	ch := *i.current
	roundPhase := i.phase
	round := i.roundNumber
	participants := make([]string, 0, len(i.participants))
	for id := range i.participants {
		participants = append(participants, id)
	}
	sort.Strings(participants)
	subs := make([]answer.Submission, 0, len(i.submissions))
	for _, sub := range i.submissions {
		subs = append(subs, sub)
	}

	i.current = nil
	i.submissions = make(map[string]answer.Submission)
	i.participants = nil
	i.evaluating = true
	i.mu.Unlock()

	// Oracle consultation (free-text rounds) happens here, outside the
	// instance lock.
	res := i.evaluator.Evaluate(ctx, ch, participants, subs)

	i.mu.Lock()
	defer i.mu.Unlock()
	i.evaluating = false

	result := &RoundResult{
		Round:       round,
		Phase:       roundPhase,
		GameType:    ch.Type,
		Verdicts:    res.Verdicts,
		ScoreDeltas: make(map[string]int),
		SpeedWinner: res.Winner,
	}

	i.applyScoresLocked(ch, res, subs, result)
	i.applyStatusLocked(roundPhase, res, result)

	if roundPhase == PhaseElimination {
		i.phase = PhaseMainRound
	}

	i.finishIfDoneLocked(result)
	i.trackLeaderLocked(result)

	i.logger.Info().
		Int("round", round).
		Str("phase", roundPhase).
		Int("correct", len(result.Correct)).
		Int("eliminated", len(result.Eliminated)).
		Bool("finished", result.Finished).
		Msg("round evaluated")

	return result, nil
}

func (i *Instance) applyScoresLocked(ch challenge.Challenge, res answer.Result, subs []answer.Submission, result *RoundResult) {
	// Earliest correct submission earns the first-answer bonus.
	firstCorrect := ""
	var firstAt time.Time
	for _, sub := range subs {
		if res.Verdicts[sub.PlayerID] != answer.VerdictCorrect {
			continue
		}
		if firstCorrect == "" || sub.SubmittedAt.Before(firstAt) {
			firstCorrect = sub.PlayerID
			firstAt = sub.SubmittedAt
		}
	}

	submittedAt := make(map[string]time.Time, len(subs))
	for _, sub := range subs {
		submittedAt[sub.PlayerID] = sub.SubmittedAt
	}

	for playerID, verdict := range res.Verdicts {
		if verdict != answer.VerdictCorrect {
			continue
		}
		p, ok := i.roster[playerID]
		if !ok {
			continue
		}

		delta := i.cfg.CorrectPoints
		if ch.SpeedBased {
			if playerID == res.Winner {
				delta = i.cfg.CorrectPoints + i.cfg.SpeedBonusPoints
			} else {
				delta = i.cfg.SpeedNonWinnerPoints
			}
		}
		if playerID == firstCorrect {
			delta += i.cfg.FirstAnswerPoints
		}

		p.Score += delta
		result.ScoreDeltas[playerID] = delta
		result.Correct = append(result.Correct, playerID)
		if p.firstCorrectAt.IsZero() {
			p.firstCorrectAt = submittedAt[playerID]
		}
	}
	sort.Strings(result.Correct)
}

func (i *Instance) applyStatusLocked(roundPhase string, res answer.Result, result *RoundResult) {
	ids := make([]string, 0, len(res.Verdicts))
	for id := range res.Verdicts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		p, ok := i.roster[id]
		if !ok {
			continue
		}
		correct := res.Verdicts[id] == answer.VerdictCorrect

		if correct {
			if p.Status == PlayerAtRisk {
				p.Status = PlayerActive
				result.Recovered = append(result.Recovered, id)
			}
			p.missStreak = 0
			continue
		}

		switch roundPhase {
		case PhaseElimination:
			p.Status = PlayerEliminated
			result.Eliminated = append(result.Eliminated, id)
		default:
			if p.Status == PlayerActive {
				p.Status = PlayerAtRisk
				p.missStreak = 0
				result.AtRisk = append(result.AtRisk, id)
			} else if p.Status == PlayerAtRisk {
				p.missStreak++
				if p.missStreak >= i.cfg.EliminationMisses {
					p.Status = PlayerEliminated
					result.Eliminated = append(result.Eliminated, id)
				}
			}
		}
	}
}

// finishIfDoneLocked transitions to OUTRO when one contender remains or
// the round budget is exhausted, and crowns the winner.
func (i *Instance) finishIfDoneLocked(result *RoundResult) {
	remaining := make([]string, 0, len(i.roster))
	for id, p := range i.roster {
		if p.Status != PlayerEliminated {
			remaining = append(remaining, id)
		}
	}

	switch {
	case len(remaining) == 1:
		// Last player standing wins regardless of round budget.
	case len(remaining) == 0:
		// Everyone fell in the same round; the best score takes it.
		for id := range i.roster {
			remaining = append(remaining, id)
		}
	case i.roundNumber >= i.roundBudget:
		// Budget exhausted; highest score wins.
	default:
		return
	}

	i.rankLocked(remaining)
	winner := remaining[0]
	i.roster[winner].Status = PlayerWinner
	i.phase = PhaseOutro

	result.Finished = true
	result.Winners = []string{winner}

	i.logger.Info().Str("winner", winner).Int("rounds", i.roundNumber).Msg("game finished")
}

// rankLocked sorts player IDs best-first: score descending, earliest
// first-correct timestamp, then arrival order. Deterministic so outcomes
// are reproducible.
func (i *Instance) rankLocked(ids []string) {
	sort.Slice(ids, func(a, b int) bool {
		pa, pb := i.roster[ids[a]], i.roster[ids[b]]
		if pa.Score != pb.Score {
			return pa.Score > pb.Score
		}
		at, bt := pa.firstCorrectAt, pb.firstCorrectAt
		if !at.Equal(bt) {
			if at.IsZero() {
				return false
			}
			if bt.IsZero() {
				return true
			}
			return at.Before(bt)
		}
		return pa.arrival < pb.arrival
	})
}

func (i *Instance) trackLeaderLocked(result *RoundResult) {
	contenders := make([]string, 0, len(i.roster))
	for id, p := range i.roster {
		if p.Status != PlayerEliminated {
			contenders = append(contenders, id)
		}
	}
	if len(contenders) == 0 {
		return
	}
	i.rankLocked(contenders)

	leader := contenders[0]
	if i.leader != "" && leader != i.leader {
		result.NewLeader = leader
	}
	i.leader = leader
}

// AtRiskCount reports how many players are currently at risk.
func (i *Instance) AtRiskCount() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.countStatusLocked(PlayerAtRisk)
}

func (i *Instance) countStatusLocked(status string) int {
	n := 0
	for _, p := range i.roster {
		if p.Status == status {
			n++
		}
	}
	return n
}

// Snapshot returns a read-only view for rendering. The challenge view
// never includes the answer key.
func (i *Instance) Snapshot() Snapshot {
	i.mu.Lock()
	defer i.mu.Unlock()

	ids := make([]string, 0, len(i.roster))
	for id := range i.roster {
		ids = append(ids, id)
	}
	i.rankLocked(ids)

	players := make([]PlayerView, 0, len(ids))
	for _, id := range ids {
		p := i.roster[id]
		players = append(players, PlayerView{
			ID:          p.ID,
			DisplayName: p.DisplayName,
			Score:       p.Score,
			Status:      p.Status,
		})
	}

	snap := Snapshot{
		ID:              i.id,
		Name:            i.name,
		Phase:           i.phase,
		Round:           i.roundNumber,
		RoundBudget:     i.roundBudget,
		Players:         players,
		SubmissionCount: len(i.submissions),
	}

	if i.current != nil {
		snap.Challenge = &ChallengeView{
			Type:      i.current.Type,
			Question:  i.current.Question,
			TimeLimit: i.current.TimeLimit,
		}
		snap.AllSubmitted = len(i.participants) > 0 && len(i.submissions) >= len(i.participants)
		for id := range i.participants {
			if _, ok := i.submissions[id]; !ok {
				snap.AllSubmitted = false
				break
			}
		}
	}

	return snap
}
