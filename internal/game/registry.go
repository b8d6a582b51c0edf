package game

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/voyagerhq/gameshow/internal/game/answer"
	"github.com/voyagerhq/gameshow/internal/game/challenge"
)

// Registry is the process-wide store of live instances. It is injected
// where needed rather than held as a package global so tests can run
// isolated registries.
type Registry struct {
	mu        sync.RWMutex
	instances map[string]*Instance

	cfg       Config
	generator *challenge.Registry
	evaluator *answer.Evaluator
	logger    zerolog.Logger
}

// NewRegistry creates an empty instance registry sharing one generator
// and evaluator across instances.
func NewRegistry(cfg Config, generator *challenge.Registry, evaluator *answer.Evaluator, logger zerolog.Logger) *Registry {
	return &Registry{
		instances: make(map[string]*Instance),
		cfg:       cfg.withDefaults(),
		generator: generator,
		evaluator: evaluator,
		logger:    logger,
	}
}

// Create builds a new instance with a unique ID and registers it.
func (r *Registry) Create(name string, seats []Seat) *Instance {
	id := uuid.NewString()
	inst := NewInstance(id, name, seats, r.cfg, r.generator, r.evaluator, r.logger)

	r.mu.Lock()
	r.instances[id] = inst
	r.mu.Unlock()

	r.logger.Info().Str("instance_id", id).Str("name", name).Int("players", len(seats)).Msg("instance created")
	return inst
}

// Get looks up an instance by ID.
func (r *Registry) Get(id string) (*Instance, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, ok := r.instances[id]
	return inst, ok
}

// Remove tears down an instance.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.instances, id)
}

// List returns all live instances.
func (r *Registry) List() []*Instance {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Instance, 0, len(r.instances))
	for _, inst := range r.instances {
		out = append(out, inst)
	}
	return out
}

// Len reports the number of live instances.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.instances)
}

// PlayerInstance finds the live instance a player belongs to, if any.
func (r *Registry) PlayerInstance(playerID string) (*Instance, bool) {
	for _, inst := range r.List() {
		if inst.HasPlayer(playerID) {
			return inst, true
		}
	}
	return nil, false
}
