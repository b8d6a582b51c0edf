package game

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyagerhq/gameshow/internal/game/answer"
)

func testWaitlist(t *testing.T) (*Waitlist, *Registry) {
	t.Helper()
	evaluator := answer.NewEvaluator(nil, time.Second, zerolog.Nop())
	registry := NewRegistry(Config{}, testRegistry(false), evaluator, zerolog.Nop())
	return NewWaitlist(registry, zerolog.Nop()), registry
}

func TestWaitlistJoinDuplicate(t *testing.T) {
	w, _ := testWaitlist(t)

	require.NoError(t, w.Join("alice", "Alice"))
	err := w.Join("alice", "Alice")
	assert.True(t, errors.Is(err, ErrAlreadyQueued))
	assert.Equal(t, 1, w.Len())
}

func TestWaitlistJoinWhileInInstance(t *testing.T) {
	w, _ := testWaitlist(t)

	require.NoError(t, w.Join("alice", "Alice"))
	require.NoError(t, w.Join("bob", "Bob"))
	require.NotNil(t, w.TryFormInstance("Night 1", 2, 8))

	err := w.Join("alice", "Alice")
	assert.True(t, errors.Is(err, ErrAlreadyInInstance))
}

func TestWaitlistLeave(t *testing.T) {
	w, _ := testWaitlist(t)

	require.NoError(t, w.Join("alice", "Alice"))
	assert.True(t, w.Leave("alice"))
	assert.False(t, w.Leave("alice"))
	assert.Equal(t, 0, w.Len())

	// Leaving frees the slot for a re-join.
	assert.NoError(t, w.Join("alice", "Alice"))
}

func TestTryFormInstanceBelowMinimum(t *testing.T) {
	w, registry := testWaitlist(t)

	require.NoError(t, w.Join("alice", "Alice"))
	require.NoError(t, w.Join("bob", "Bob"))
	require.NoError(t, w.Join("carol", "Carol"))

	assert.Nil(t, w.TryFormInstance("Night 1", 4, 6))
	assert.Equal(t, 3, w.Len(), "queue untouched below the threshold")
	assert.Equal(t, 0, registry.Len())
}

func TestTryFormInstanceDrainsFIFO(t *testing.T) {
	w, registry := testWaitlist(t)

	ids := []string{"p1", "p2", "p3", "p4"}
	for _, id := range ids {
		require.NoError(t, w.Join(id, id))
	}

	inst := w.TryFormInstance("Night 1", 4, 6)
	require.NotNil(t, inst)
	assert.Equal(t, 0, w.Len(), "all four waiting players are assigned together")
	assert.Equal(t, 1, registry.Len())

	snap := inst.Snapshot()
	require.Len(t, snap.Players, 4)
	got := make([]string, len(snap.Players))
	for i, p := range snap.Players {
		got[i] = p.ID
	}
	assert.Equal(t, ids, got, "seating preserves queue order")
}

func TestTryFormInstanceRespectsMax(t *testing.T) {
	w, _ := testWaitlist(t)

	for i := 0; i < 7; i++ {
		require.NoError(t, w.Join(fmt.Sprintf("p%d", i), "P"))
	}

	inst := w.TryFormInstance("Night 1", 2, 6)
	require.NotNil(t, inst)
	assert.True(t, inst.HasPlayer("p0"))
	assert.False(t, inst.HasPlayer("p6"), "overflow stays queued")
	assert.Equal(t, []string{"p6"}, w.Waiting())
}

func TestRegistryLifecycle(t *testing.T) {
	_, registry := testWaitlist(t)

	inst := registry.Create("Night 1", []Seat{{ID: "alice", DisplayName: "Alice"}})
	require.NotEmpty(t, inst.ID())

	got, ok := registry.Get(inst.ID())
	require.True(t, ok)
	assert.Same(t, inst, got)

	byPlayer, ok := registry.PlayerInstance("alice")
	require.True(t, ok)
	assert.Same(t, inst, byPlayer)

	_, ok = registry.PlayerInstance("mallory")
	assert.False(t, ok)

	registry.Remove(inst.ID())
	_, ok = registry.Get(inst.ID())
	assert.False(t, ok)
	assert.Equal(t, 0, registry.Len())
}
