package runner

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/specrun/specrun/registry"
	"github.com/specrun/specrun/types"
)

// recordingListener captures the event stream for assertions.
type recordingListener struct {
	mu     sync.Mutex
	events []string
}

func (l *recordingListener) Started(nodeID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, "start:"+nodeID)
}

func (l *recordingListener) Finished(nodeID string, outcome types.Outcome) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, fmt.Sprintf("finish:%s:%s", nodeID, outcome.Status))
}

func (l *recordingListener) Events() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.events))
	copy(out, l.events)
	return out
}

// countingInterceptor counts enters and exits around whatever it wraps.
type countingInterceptor struct {
	mu     sync.Mutex
	enters int
	exits  int
}

func (c *countingInterceptor) wrap() types.Interceptor {
	return func(next func() error) error {
		c.mu.Lock()
		c.enters++
		c.mu.Unlock()
		err := next()
		c.mu.Lock()
		c.exits++
		c.mu.Unlock()
		return err
	}
}

// scriptedSpec declares one flat spec whose case bodies come from a shared
// script table, so tests can make individual cases pass, fail or panic.
type scriptedSpec struct {
	cases []string
	body  func(name string) error
}

func (s *scriptedSpec) Define(b *types.SpecBuilder) {
	for _, name := range s.cases {
		caseName := name
		b.Case(caseName, func(ctx context.Context) error {
			return s.body(caseName)
		})
	}
}

func scriptedDef(name string, policy types.InstancePolicy, cases []string, body func(string) error) *types.SpecDefinition {
	if body == nil {
		body = func(string) error { return nil }
	}
	return &types.SpecDefinition{
		Name:   name,
		Policy: policy,
		New: func() types.SpecObject {
			return &scriptedSpec{cases: cases, body: body}
		},
	}
}

func setupScheduler(t *testing.T, defs ...*types.SpecDefinition) (*Scheduler, *registry.Registry, *types.Tree) {
	t.Helper()

	reg, err := registry.NewRegistry(registry.Config{})
	require.NoError(t, err)
	for _, def := range defs {
		require.NoError(t, reg.Register(def))
	}

	tree, err := reg.Discover(registry.DiscoveryRequest{All: true})
	require.NoError(t, err)

	s, err := NewScheduler(Config{Discovery: reg})
	require.NoError(t, err)
	return s, reg, tree
}
