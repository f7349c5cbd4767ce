package runner

import (
	"context"

	"github.com/specrun/specrun/types"
)

// Rediscoverer re-runs discovery for a single spec definition against a
// fresh instance. Discovery is assumed deterministic and side-effect-free;
// the per-test path depends on two discoveries of the same definition
// yielding the same case names.
type Rediscoverer interface {
	DiscoverSpec(def *types.SpecDefinition) (*types.Tree, error)
}

// RunIsolated produces one isolated execution of a single case belonging to
// a per-test spec: fresh instance, fresh tree, fresh interceptor chain,
// terminal running exactly this one case. It is a pure function of its
// arguments; each invocation is independent, so N cases under one spec mean
// N separate chain constructions.
//
// The case is correlated into the rediscovered tree by display name alone.
// No match means the tree drifted between discoveries, which fails this
// case with a LifecycleConsistencyError rather than silently skipping it.
func RunIsolated(ctx context.Context, disc Rediscoverer, cases CaseRunner, def *types.SpecDefinition, caseName string, global []types.Interceptor) types.Outcome {
	fresh, err := disc.DiscoverSpec(def)
	if err != nil {
		return types.Failed(err)
	}

	h, ok := fresh.FindCaseByName(fresh.Root(), caseName)
	if !ok {
		return types.Failed(&types.LifecycleConsistencyError{Spec: def.Name, Case: caseName})
	}
	node := fresh.Node(h)

	var out types.Outcome
	chain := BuildChain(chainInterceptors(def.Interceptors, global), func() error {
		out = cases.Run(ctx, node)
		return out.Err
	})

	if err := chain.Invoke(); err != nil {
		return types.Failed(err)
	}
	if !chain.TerminalRan() {
		return types.Skipped()
	}
	return out
}
