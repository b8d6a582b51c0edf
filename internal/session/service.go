package session

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/voyagerhq/gameshow/internal/game"
	"github.com/voyagerhq/gameshow/internal/game/challenge"
	"github.com/voyagerhq/gameshow/internal/leaderboard"
	"github.com/voyagerhq/gameshow/internal/metrics"
	"github.com/voyagerhq/gameshow/pkg/realtime"
)

// ErrWaitlistEmpty is returned when a forced instance creation finds
// nobody waiting.
var ErrWaitlistEmpty = errors.New("waitlist is empty")

// Notifier is the slice of the realtime hub the service needs. The hub
// satisfies it; tests substitute a recorder.
type Notifier interface {
	BroadcastToInstance(instanceID string, msg realtime.Message) error
	BroadcastAll(msg realtime.Message) error
	JoinInstance(instanceID, playerID string)
	DropInstance(instanceID string)
}

// Ranker records final scores and serves leaderboards. Satisfied by
// *leaderboard.Service; nil disables recording.
type Ranker interface {
	RecordResult(ctx context.Context, req leaderboard.RecordRequest) error
	Top(ctx context.Context, window string, n int) ([]leaderboard.Entry, error)
}

// Options tune the orchestrator.
type Options struct {
	Game game.Config

	// RoundGap is the pause between a round result and the next round.
	RoundGap time.Duration
}

// Service drives the show: it assigns waitlisted players to instances,
// paces rounds on timers, fans results out over the hub and records
// final scores. The game engine itself stays timer-free; all deadlines
// live here.
type Service struct {
	registry  *game.Registry
	waitlist  *game.Waitlist
	scheduler *Scheduler
	notifier  Notifier
	ranker    Ranker
	opts      Options
	logger    zerolog.Logger

	nameSeq atomic.Int64
}

// NewService wires the orchestrator.
func NewService(registry *game.Registry, waitlist *game.Waitlist, scheduler *Scheduler, notifier Notifier, ranker Ranker, opts Options, logger zerolog.Logger) *Service {
	if opts.RoundGap <= 0 {
		opts.RoundGap = 4 * time.Second
	}
	return &Service{
		registry:  registry,
		waitlist:  waitlist,
		scheduler: scheduler,
		notifier:  notifier,
		ranker:    ranker,
		opts:      opts,
		logger:    logger.With().Str("component", "session").Logger(),
	}
}

// JoinResult reports the outcome of a waitlist join.
type JoinResult struct {
	Waiting    int    `json:"waiting"`
	InstanceID string `json:"instance_id,omitempty"`
}

// JoinWaitlist queues a player and forms an instance the moment enough
// players are waiting.
func (s *Service) JoinWaitlist(playerID, displayName string) (*JoinResult, error) {
	if err := s.waitlist.Join(playerID, displayName); err != nil {
		return nil, err
	}
	metrics.WaitlistDepth.Set(float64(s.waitlist.Len()))

	res := &JoinResult{Waiting: s.waitlist.Len()}

	inst := s.waitlist.TryFormInstance(s.nextName(), s.opts.Game.MinPlayers, s.opts.Game.MaxPlayers)
	if inst != nil {
		s.announceFormed(inst)
		res.InstanceID = inst.ID()
		res.Waiting = s.waitlist.Len()
	}

	s.notifier.BroadcastAll(realtime.NewMessage(realtime.TypeWaitlistUpdate, "", realtime.WaitlistUpdatePayload{
		Waiting: s.waitlist.Len(),
	}))
	return res, nil
}

// LeaveWaitlist removes a queued player.
func (s *Service) LeaveWaitlist(playerID string) bool {
	ok := s.waitlist.Leave(playerID)
	if ok {
		metrics.WaitlistDepth.Set(float64(s.waitlist.Len()))
	}
	return ok
}

// CreateInstance force-forms an instance from whoever is waiting, even
// below the usual minimum. Admin capability only.
func (s *Service) CreateInstance(name string) (game.Snapshot, error) {
	if name == "" {
		name = s.nextName()
	}
	inst := s.waitlist.TryFormInstance(name, 1, s.opts.Game.MaxPlayers)
	if inst == nil {
		return game.Snapshot{}, ErrWaitlistEmpty
	}
	s.announceFormed(inst)
	return inst.Snapshot(), nil
}

func (s *Service) announceFormed(inst *game.Instance) {
	snap := inst.Snapshot()
	ids := make([]string, 0, len(snap.Players))
	for _, p := range snap.Players {
		s.notifier.JoinInstance(inst.ID(), p.ID)
		ids = append(ids, p.ID)
	}
	metrics.InstancesActive.Set(float64(s.registry.Len()))
	metrics.WaitlistDepth.Set(float64(s.waitlist.Len()))

	s.notifier.BroadcastToInstance(inst.ID(), realtime.NewMessage(realtime.TypeInstanceFormed, inst.ID(), realtime.InstanceFormedPayload{
		InstanceID: inst.ID(),
		Name:       inst.Name(),
		PlayerIDs:  ids,
	}))
	s.hostLine(inst.ID(), pickLine(introLines))
}

// StartInstance moves an instance out of its intro and begins the first
// round.
func (s *Service) StartInstance(ctx context.Context, instanceID string) (game.Snapshot, error) {
	inst, ok := s.registry.Get(instanceID)
	if !ok {
		return game.Snapshot{}, game.ErrInstanceNotFound
	}
	if err := inst.Start(); err != nil {
		return game.Snapshot{}, err
	}

	if _, err := s.beginRound(inst, "", false); err != nil {
		return game.Snapshot{}, err
	}
	return inst.Snapshot(), nil
}

// BeginRound opens the next round by hand. An empty game type lets the
// generator choose.
func (s *Service) BeginRound(instanceID string, gameType challenge.GameType) (*game.RoundStart, error) {
	inst, ok := s.registry.Get(instanceID)
	if !ok {
		return nil, game.ErrInstanceNotFound
	}
	return s.beginRound(inst, gameType, false)
}

// RequestElimination opens an elimination round for the at-risk
// players.
func (s *Service) RequestElimination(instanceID string, gameType challenge.GameType) (*game.RoundStart, error) {
	inst, ok := s.registry.Get(instanceID)
	if !ok {
		return nil, game.ErrInstanceNotFound
	}
	return s.beginRound(inst, gameType, true)
}

func (s *Service) beginRound(inst *game.Instance, gameType challenge.GameType, elimination bool) (*game.RoundStart, error) {
	var (
		start *game.RoundStart
		err   error
	)
	if elimination {
		start, err = inst.RequestElimination(gameType)
	} else {
		start, err = inst.BeginRound(gameType)
	}
	if err != nil {
		return nil, err
	}

	metrics.RoundsStarted.WithLabelValues(string(start.Challenge.Type)).Inc()

	msgType := realtime.TypeRoundStarted
	if start.Phase == game.PhaseElimination {
		msgType = realtime.TypeEliminationStarted
		s.hostLine(inst.ID(), pickLine(eliminationLines))
	} else {
		s.hostLine(inst.ID(), pickLinef(roundLines, string(start.Challenge.Type)))
	}
	s.notifier.BroadcastToInstance(inst.ID(), realtime.NewMessage(msgType, inst.ID(), start))

	instanceID := inst.ID()
	s.scheduler.Schedule(instanceID, start.Challenge.TimeLimit, func() {
		if _, err := s.EvaluateRound(context.Background(), instanceID); err != nil {
			s.logger.Warn().Err(err).Str("instance_id", instanceID).Msg("scheduled evaluation failed")
		}
	})
	return start, nil
}

// SubmitAnswer records a player's answer and closes the round early
// once everyone has answered.
func (s *Service) SubmitAnswer(instanceID, playerID, text string) error {
	inst, ok := s.registry.Get(instanceID)
	if !ok {
		return game.ErrInstanceNotFound
	}
	if err := inst.SubmitAnswer(playerID, text); err != nil {
		return err
	}
	metrics.SubmissionsReceived.Inc()

	if inst.AllSubmitted() {
		s.scheduler.Fire(instanceID)
	}
	return nil
}

// EvaluateRound closes and scores the current round, then paces the
// next one (or wraps the show up).
func (s *Service) EvaluateRound(ctx context.Context, instanceID string) (*game.RoundResult, error) {
	inst, ok := s.registry.Get(instanceID)
	if !ok {
		return nil, game.ErrInstanceNotFound
	}

	s.scheduler.Cancel(instanceID)
	result, err := inst.EvaluateRound(ctx)
	if err != nil {
		return nil, err
	}

	metrics.EliminationsTotal.Add(float64(len(result.Eliminated)))

	s.notifier.BroadcastToInstance(instanceID, realtime.NewMessage(realtime.TypeRoundResult, instanceID, result))

	names := s.displayNames(inst)
	for _, id := range result.Eliminated {
		s.hostLine(instanceID, pickLinef(eliminatedLines, names[id]))
	}
	if result.NewLeader != "" && !result.Finished {
		s.hostLine(instanceID, pickLinef(leaderLines, names[result.NewLeader]))
		s.notifier.BroadcastToInstance(instanceID, realtime.NewMessage(realtime.TypeLeaderChange, instanceID, struct {
			PlayerID string `json:"player_id"`
		}{result.NewLeader}))
	}

	if result.Finished {
		s.finish(ctx, inst, result)
		return result, nil
	}

	// Pace the next round. While anyone is still at risk, including
	// survivors of earlier strikes, their elimination round comes first.
	atRisk := inst.AtRiskCount() > 0
	s.scheduler.Schedule(instanceID, s.opts.RoundGap, func() {
		if _, err := s.beginRound(inst, "", atRisk); err != nil {
			s.logger.Warn().Err(err).Str("instance_id", instanceID).Msg("auto round start failed")
		}
	})
	return result, nil
}

func (s *Service) finish(ctx context.Context, inst *game.Instance, result *game.RoundResult) {
	instanceID := inst.ID()
	snap := inst.Snapshot()
	names := s.displayNames(inst)

	for _, winner := range result.Winners {
		s.hostLine(instanceID, pickLinef(outroLines, names[winner]))
	}
	s.notifier.BroadcastToInstance(instanceID, realtime.NewMessage(realtime.TypeInstanceFinished, instanceID, snap))

	if s.ranker != nil {
		won := make(map[string]bool, len(result.Winners))
		for _, id := range result.Winners {
			won[id] = true
		}
		for _, p := range snap.Players {
			err := s.ranker.RecordResult(ctx, leaderboard.RecordRequest{
				PlayerID:    p.ID,
				DisplayName: p.DisplayName,
				Score:       p.Score,
				Won:         won[p.ID],
				InstanceID:  instanceID,
			})
			if err != nil {
				s.logger.Warn().Err(err).Str("player_id", p.ID).Msg("leaderboard record failed")
			}
		}
		if top, err := s.ranker.Top(ctx, leaderboard.WindowDaily, 0); err == nil {
			s.notifier.BroadcastAll(realtime.NewMessage(realtime.TypeLeaderboardUpdate, "", top))
		}
	}

	s.teardown(instanceID)
	metrics.InstancesFinished.Inc()
}

// Teardown force-removes an instance. Admin capability only.
func (s *Service) Teardown(instanceID string) error {
	if _, ok := s.registry.Get(instanceID); !ok {
		return game.ErrInstanceNotFound
	}
	s.teardown(instanceID)
	s.logger.Info().Str("instance_id", instanceID).Msg("instance torn down")
	return nil
}

func (s *Service) teardown(instanceID string) {
	s.scheduler.Cancel(instanceID)
	s.registry.Remove(instanceID)
	s.notifier.DropInstance(instanceID)
	metrics.InstancesActive.Set(float64(s.registry.Len()))
}

// Snapshot returns the render view of an instance.
func (s *Service) Snapshot(instanceID string) (game.Snapshot, error) {
	inst, ok := s.registry.Get(instanceID)
	if !ok {
		return game.Snapshot{}, game.ErrInstanceNotFound
	}
	return inst.Snapshot(), nil
}

// Instances lists snapshots of every live instance.
func (s *Service) Instances() []game.Snapshot {
	insts := s.registry.List()
	out := make([]game.Snapshot, 0, len(insts))
	for _, inst := range insts {
		out = append(out, inst.Snapshot())
	}
	return out
}

// Status summarizes the service for the status endpoint.
type Status struct {
	Instances int `json:"instances"`
	Waiting   int `json:"waiting"`
}

func (s *Service) Status() Status {
	return Status{
		Instances: s.registry.Len(),
		Waiting:   s.waitlist.Len(),
	}
}

// Leaderboard returns the top entries for a window.
func (s *Service) Leaderboard(ctx context.Context, window string, n int) ([]leaderboard.Entry, error) {
	if s.ranker == nil {
		return []leaderboard.Entry{}, nil
	}
	return s.ranker.Top(ctx, window, n)
}

func (s *Service) displayNames(inst *game.Instance) map[string]string {
	snap := inst.Snapshot()
	names := make(map[string]string, len(snap.Players))
	for _, p := range snap.Players {
		names[p.ID] = p.DisplayName
	}
	return names
}

func (s *Service) hostLine(instanceID, text string) {
	s.notifier.BroadcastToInstance(instanceID, realtime.NewMessage(realtime.TypeHostLine, instanceID, realtime.HostLinePayload{Text: text}))
}

func (s *Service) nextName() string {
	return fmt.Sprintf("Game Night #%d", s.nameSeq.Add(1))
}
