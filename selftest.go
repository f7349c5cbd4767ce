package specrun

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/specrun/specrun/registry"
	"github.com/specrun/specrun/types"
)

// RegisterSelftest registers the built-in smoke specs. They exercise both
// instancing policies, nested containers, interceptors and a case timeout,
// so a `specrun --selftest` run proves the whole execution path end to end.
func RegisterSelftest(reg *registry.Registry) error {
	defs := []*types.SpecDefinition{
		{
			Name:   "selftest-shared",
			Policy: types.SharedInstance,
			Interceptors: []types.Interceptor{
				func(next func() error) error {
					// One enter/exit around the whole spec under SharedInstance.
					return next()
				},
			},
			New: func() types.SpecObject { return &sharedSmokeSpec{} },
		},
		{
			Name:   "selftest-isolated",
			Policy: types.PerTest,
			New:    func() types.SpecObject { return &isolatedSmokeSpec{} },
		},
	}

	for _, def := range defs {
		if err := reg.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// sharedSmokeSpec accumulates state across its cases; under SharedInstance
// the second case observes what the first one wrote.
type sharedSmokeSpec struct {
	seen []string
}

func (s *sharedSmokeSpec) Define(b *types.SpecBuilder) {
	b.Case("records first", func(ctx context.Context) error {
		s.seen = append(s.seen, "first")
		return nil
	})
	b.Describe("accumulation", func(b *types.SpecBuilder) {
		b.Case("observes prior case", func(ctx context.Context) error {
			if len(s.seen) != 1 || s.seen[0] != "first" {
				return fmt.Errorf("expected shared state [first], got %v", s.seen)
			}
			return nil
		})
		b.Case("joins within deadline", func(ctx context.Context) error {
			if got := strings.Join(s.seen, ","); !strings.HasPrefix(got, "first") {
				return fmt.Errorf("unexpected shared state %q", got)
			}
			return nil
		}, types.WithTimeout(10*time.Second))
	})
}

// isolatedSmokeSpec must start from zero in every case; under PerTest each
// case gets a fresh instance, so counters never leak between cases.
type isolatedSmokeSpec struct {
	counter int
}

func (s *isolatedSmokeSpec) Define(b *types.SpecBuilder) {
	b.Case("starts fresh", func(ctx context.Context) error {
		if s.counter != 0 {
			return fmt.Errorf("expected a fresh instance, counter=%d", s.counter)
		}
		s.counter++
		return nil
	})
	b.Case("still fresh", func(ctx context.Context) error {
		if s.counter != 0 {
			return fmt.Errorf("state leaked from a sibling case, counter=%d", s.counter)
		}
		s.counter++
		return nil
	})
}
