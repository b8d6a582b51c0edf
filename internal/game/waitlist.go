package game

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// WaitingPlayer is a queued player awaiting assignment.
type WaitingPlayer struct {
	ID          string
	DisplayName string
	QueuedAt    time.Time
}

// Waitlist is the FIFO assignment queue. No player appears twice, and a
// player already seated in a live instance cannot queue.
type Waitlist struct {
	mu       sync.Mutex
	queue    []WaitingPlayer
	queued   map[string]bool
	registry *Registry
	logger   zerolog.Logger
}

// NewWaitlist creates a queue bound to the registry used for the
// already-in-instance check and for instance creation.
func NewWaitlist(registry *Registry, logger zerolog.Logger) *Waitlist {
	return &Waitlist{
		queued:   make(map[string]bool),
		registry: registry,
		logger:   logger.With().Str("component", "waitlist").Logger(),
	}
}

// Join appends a player to the back of the queue.
func (w *Waitlist) Join(playerID, displayName string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.queued[playerID] {
		return fmt.Errorf("%w: %s", ErrAlreadyQueued, playerID)
	}
	if inst, ok := w.registry.PlayerInstance(playerID); ok {
		return fmt.Errorf("%w: %s is in %q", ErrAlreadyInInstance, playerID, inst.Name())
	}

	w.queue = append(w.queue, WaitingPlayer{
		ID:          playerID,
		DisplayName: displayName,
		QueuedAt:    time.Now(),
	})
	w.queued[playerID] = true

	w.logger.Info().Str("player_id", playerID).Int("queue_len", len(w.queue)).Msg("player queued")
	return nil
}

// Leave removes a player from the queue.
func (w *Waitlist) Leave(playerID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.queued[playerID] {
		return false
	}
	for idx, p := range w.queue {
		if p.ID == playerID {
			w.queue = append(w.queue[:idx], w.queue[idx+1:]...)
			break
		}
	}
	delete(w.queued, playerID)
	return true
}

// Len reports the number of waiting players.
func (w *Waitlist) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.queue)
}

// Waiting returns queued player IDs in FIFO order.
func (w *Waitlist) Waiting() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	ids := make([]string, len(w.queue))
	for i, p := range w.queue {
		ids[i] = p.ID
	}
	return ids
}

// TryFormInstance drains up to maxPlayers from the front of the queue
// once minPlayers are waiting, and creates an instance for them. This is
// the only path that creates instances. Returns nil when the queue is
// below the threshold.
func (w *Waitlist) TryFormInstance(name string, minPlayers, maxPlayers int) *Instance {
	w.mu.Lock()
	defer w.mu.Unlock()

	if minPlayers <= 0 {
		minPlayers = 1
	}
	if maxPlayers < minPlayers {
		maxPlayers = minPlayers
	}
	if len(w.queue) < minPlayers {
		return nil
	}

	take := len(w.queue)
	if take > maxPlayers {
		take = maxPlayers
	}

	seats := make([]Seat, take)
	for i, p := range w.queue[:take] {
		seats[i] = Seat{ID: p.ID, DisplayName: p.DisplayName}
		delete(w.queued, p.ID)
	}
	w.queue = append([]WaitingPlayer(nil), w.queue[take:]...)

	inst := w.registry.Create(name, seats)
	w.logger.Info().
		Str("instance_id", inst.ID()).
		Int("assigned", take).
		Int("still_waiting", len(w.queue)).
		Msg("batch assigned to instance")
	return inst
}
