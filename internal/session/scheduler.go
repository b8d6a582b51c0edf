package session

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Scheduler owns the per-instance round timers. Each instance has at
// most one pending action; scheduling a new one supersedes the old, and
// a generation counter keeps a stopped timer's late fire from running a
// stale action.
type Scheduler struct {
	mu      sync.Mutex
	gen     uint64
	pending map[string]*pendingAction
	logger  zerolog.Logger
}

type pendingAction struct {
	gen   uint64
	timer *time.Timer
	fn    func()
}

func NewScheduler(logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		pending: make(map[string]*pendingAction),
		logger:  logger.With().Str("component", "scheduler").Logger(),
	}
}

// Schedule arms fn to run after d, replacing any pending action for the
// instance.
func (s *Scheduler) Schedule(instanceID string, d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.pending[instanceID]; ok {
		old.timer.Stop()
	}

	s.gen++
	gen := s.gen
	act := &pendingAction{gen: gen, fn: fn}
	act.timer = time.AfterFunc(d, func() { s.fire(instanceID, gen) })
	s.pending[instanceID] = act
}

func (s *Scheduler) fire(instanceID string, gen uint64) {
	s.mu.Lock()
	act, ok := s.pending[instanceID]
	if !ok || act.gen != gen {
		s.mu.Unlock()
		return
	}
	delete(s.pending, instanceID)
	s.mu.Unlock()

	act.fn()
}

// Fire runs the pending action now instead of at its deadline. Used to
// advance a round as soon as every participant has answered.
func (s *Scheduler) Fire(instanceID string) bool {
	s.mu.Lock()
	act, ok := s.pending[instanceID]
	if ok {
		delete(s.pending, instanceID)
		act.timer.Stop()
	}
	s.mu.Unlock()

	if !ok {
		return false
	}
	act.fn()
	return true
}

// Cancel drops any pending action for the instance.
func (s *Scheduler) Cancel(instanceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if act, ok := s.pending[instanceID]; ok {
		act.timer.Stop()
		delete(s.pending, instanceID)
	}
}

// Stop cancels everything; called on shutdown.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, act := range s.pending {
		act.timer.Stop()
		delete(s.pending, id)
	}
	s.logger.Info().Msg("scheduler stopped")
}
