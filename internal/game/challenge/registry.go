package challenge

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
)

// GeneratorFunc produces a fresh challenge for one game type. Generators
// must not block; anything that needs the network feeds a pool instead.
type GeneratorFunc func() Challenge

// QASource supplies pre-authored question/answer pairs (trivia, riddles).
type QASource interface {
	Pick() (question string, answers []string)
}

// Registry maps game types to their generators.
type Registry struct {
	mu         sync.RWMutex
	generators map[GameType]GeneratorFunc
}

// Options configures content sources for the built-in generators.
type Options struct {
	Trivia  QASource
	Riddles QASource
}

// NewRegistry returns a registry with every built-in game type wired.
func NewRegistry(opts Options) *Registry {
	trivia := opts.Trivia
	if trivia == nil {
		trivia = fallbackTrivia
	}
	riddles := opts.Riddles
	if riddles == nil {
		riddles = fallbackRiddles
	}

	r := &Registry{generators: make(map[GameType]GeneratorFunc)}
	r.Register(TypeQuickMath, generateQuickMath)
	r.Register(TypeSpeed, generateSpeed)
	r.Register(TypeTextMod, generateTextMod)
	r.Register(TypeMemory, generateMemory)
	r.Register(TypeEmoji, generateEmoji)
	r.Register(TypeCollaborative, generateCollaborative)
	r.Register(TypeTrivia, qaGenerator(TypeTrivia, trivia, triviaTimeLimit, false))
	r.Register(TypeRiddle, qaGenerator(TypeRiddle, riddles, riddleTimeLimit, true))
	return r
}

// Register installs or replaces the generator for a game type.
func (r *Registry) Register(t GameType, fn GeneratorFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generators[t] = fn
}

// Generate produces a challenge for the requested type.
func (r *Registry) Generate(t GameType) (Challenge, error) {
	r.mu.RLock()
	fn, ok := r.generators[t]
	r.mu.RUnlock()
	if !ok {
		return Challenge{}, fmt.Errorf("%w: %q", ErrUnsupportedGameType, t)
	}
	return fn(), nil
}

// Supports reports whether a generator exists for the type.
func (r *Registry) Supports(t GameType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.generators[t]
	return ok
}

// Types lists registered game types in stable order.
func (r *Registry) Types() []GameType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]GameType, 0, len(r.generators))
	for t := range r.generators {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// RandomType picks a registered type uniformly at random.
func (r *Registry) RandomType() GameType {
	types := r.Types()
	return types[rand.Intn(len(types))]
}
