package runner

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specrun/specrun/types"
)

func TestExecuteUnits_AllUnitsCompleteUnderParallelism(t *testing.T) {
	var mu sync.Mutex
	ran := make(map[string]int)

	defs := make([]*types.SpecDefinition, 0, 8)
	for _, name := range []string{"p1", "p2", "p3", "p4", "p5", "p6", "p7", "p8"} {
		defs = append(defs, scriptedDef(name, types.SharedInstance, []string{"only"}, func(string) error {
			mu.Lock()
			ran[name]++
			mu.Unlock()
			return nil
		}))
	}

	s, _, tree := setupScheduler(t, defs...)
	result, err := s.Run(context.Background(), tree, &types.RunContext{Parallelism: 4})
	require.NoError(t, err)

	assert.Equal(t, 8, result.Stats.Total)
	assert.Equal(t, 8, result.Stats.Passed)
	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, ran, 8, "every spec executed exactly once")
	for name, count := range ran {
		assert.Equal(t, 1, count, "spec %s", name)
	}
}

func TestExecuteUnits_UnitsRunConcurrently(t *testing.T) {
	// Two specs rendezvous with each other; the run only completes if both
	// are in flight at the same time.
	aArrived := make(chan struct{})
	bArrived := make(chan struct{})

	rendezvous := func(announce chan<- struct{}, await <-chan struct{}) error {
		close(announce)
		select {
		case <-await:
			return nil
		case <-time.After(5 * time.Second):
			t.Error("peer never arrived; units did not overlap")
			return nil
		}
	}

	a := scriptedDef("meet-a", types.SharedInstance, []string{"only"}, func(string) error {
		return rendezvous(aArrived, bArrived)
	})
	b := scriptedDef("meet-b", types.SharedInstance, []string{"only"}, func(string) error {
		return rendezvous(bArrived, aArrived)
	})

	s, _, tree := setupScheduler(t, a, b)
	result, err := s.Run(context.Background(), tree, &types.RunContext{Parallelism: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Stats.Passed)
}

func TestExecuteUnits_ParallelismClampedToOne(t *testing.T) {
	rc := &types.RunContext{Parallelism: 0}
	assert.Equal(t, 1, rc.EffectiveParallelism())

	rc.Parallelism = -3
	assert.Equal(t, 1, rc.EffectiveParallelism())

	rc.Parallelism = 6
	assert.Equal(t, 6, rc.EffectiveParallelism())
}

func TestExecuteUnits_EmptyTreeFinishesCleanly(t *testing.T) {
	s, _, tree := setupScheduler(t)

	result, err := s.Run(context.Background(), tree, &types.RunContext{Parallelism: 2})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Stats.Total)
	assert.Equal(t, types.OutcomeSkip, result.Status)
}
