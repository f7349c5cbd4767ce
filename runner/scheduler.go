package runner

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/specrun/specrun/types"
)

// Scheduler walks a discovered spec tree and runs it to completion. Each
// direct child of the root is an independent unit of work dispatched to the
// worker pool; everything beneath a unit executes synchronously within the
// worker that claimed it, so concurrency stays flat and ordering inside a
// unit is pre-order tree order.
type Scheduler struct {
	log       log.Logger
	discovery Rediscoverer
	cases     CaseRunner
	tracer    trace.Tracer
}

// Config holds configuration for creating a new scheduler.
type Config struct {
	Log       log.Logger
	Discovery Rediscoverer // Used by the per-test instancing path
	Cases     CaseRunner   // Terminal action for case nodes
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(cfg Config) (*Scheduler, error) {
	if cfg.Discovery == nil {
		return nil, fmt.Errorf("discovery service is required")
	}
	if cfg.Log == nil {
		cfg.Log = log.New()
		cfg.Log.Error("No logger provided, using default")
	}
	if cfg.Cases == nil {
		cfg.Cases = NewCaseRunner(CaseRunnerConfig{Log: cfg.Log})
	}

	return &Scheduler{
		log:       cfg.Log,
		discovery: cfg.Discovery,
		cases:     cfg.Cases,
		tracer:    otel.Tracer("spec scheduler"),
	}, nil
}

// Run executes every node under the tree's root and blocks until each one
// has reported a finish event and the global teardown has run. Per-node
// failures are isolated and reported through the run context's listener;
// only whole-run-fatal conditions (setup, teardown, pool abandonment) are
// returned as an error, and teardown is attempted on every exit path.
func (s *Scheduler) Run(ctx context.Context, tree *types.Tree, rc *types.RunContext) (*RunResult, error) {
	runID := uuid.New().String()
	reporter := NewReporter(rc.ListenerOrNoop(), runID, s.log, func(nodeID string) int {
		if h, ok := tree.Lookup(nodeID); ok {
			return tree.Depth(h)
		}
		return 0
	})

	ctx, span := s.tracer.Start(ctx, "spec run")
	defer span.End()

	s.log.Info("Starting run", "run_id", runID,
		"units", len(tree.Node(tree.Root()).Children),
		"cases", tree.CountCases(tree.Root()),
		"parallelism", rc.EffectiveParallelism())

	var fatal error
	if rc.Setup != nil {
		if err := rc.Setup(); err != nil {
			fatal = &types.RunFatalError{Stage: "setup", Err: err}
			s.log.Error("Global setup failed, aborting dispatch", "error", err)
		}
	}

	if fatal == nil {
		units := tree.Node(tree.Root()).Children
		if err := s.executeUnits(ctx, tree, units, reporter, rc); err != nil {
			fatal = err
		}
	}

	// Teardown runs on every exit path. Its own failure is recorded, and
	// becomes the run error only if nothing failed earlier.
	if rc.Teardown != nil {
		if err := rc.Teardown(); err != nil {
			s.log.Error("Global teardown failed", "error", err)
			if fatal == nil {
				fatal = &types.RunFatalError{Stage: "teardown", Err: err}
			}
		}
	}

	result := reporter.Result()
	s.log.Info("Run complete", "run_id", runID, "status", result.Status,
		"total", result.Stats.Total, "passed", result.Stats.Passed,
		"failed", result.Stats.Failed, "skipped", result.Stats.Skipped)

	if fatal != nil {
		return result, fatal
	}
	return result, nil
}

// executeNode reports start, runs the node according to its kind, and
// reports finish exactly once. Failures raised while executing the node are
// converted into a failure outcome attached to this node only; siblings and
// cousins proceed independently.
func (s *Scheduler) executeNode(ctx context.Context, tree *types.Tree, h types.NodeID, reporter *Reporter, rc *types.RunContext) {
	node := tree.Node(h)
	reporter.Start(node)
	outcome := s.runNode(ctx, tree, node, reporter, rc)
	reporter.Finish(node, outcome)
}

func (s *Scheduler) runNode(ctx context.Context, tree *types.Tree, node *types.TestNode, reporter *Reporter, rc *types.RunContext) (out types.Outcome) {
	defer func() {
		if p := recover(); p != nil {
			s.log.Error("Node execution panicked", "node", node.ID, "panic", p)
			out = types.Failed(&types.CaseFailureError{Case: node.Name, Err: fmt.Errorf("%v", p), Panicked: true})
		}
	}()

	switch node.Kind {
	case types.KindContainer:
		return s.runContainer(ctx, tree, node, reporter, rc)
	case types.KindCase:
		return s.runCase(ctx, node, rc)
	default:
		return types.Failed(fmt.Errorf("node %q has unknown kind %q", node.ID, node.Kind))
	}
}

// runContainer recurses into children. A shared-instance spec root is the
// one container scope that gets an interceptor chain: it is built and
// invoked exactly once, with a terminal executing every child in order.
// Other containers, including per-test spec roots whose chains are deferred
// to leaf time, recurse directly.
func (s *Scheduler) runContainer(ctx context.Context, tree *types.Tree, node *types.TestNode, reporter *Reporter, rc *types.RunContext) types.Outcome {
	if tree.IsSpecRoot(node.Handle) && node.Spec.Policy == types.SharedInstance {
		chain := BuildChain(chainInterceptors(node.Spec.Interceptors, rc.GlobalInterceptors), func() error {
			for _, child := range node.Children {
				s.executeNode(ctx, tree, child, reporter, rc)
			}
			return nil
		})
		if err := chain.Invoke(); err != nil {
			if !chain.TerminalRan() {
				// The children never executed; they still owe the listener
				// their start/finish pairs.
				s.reportSkipped(tree, node.Children, reporter)
			}
			return types.Failed(err)
		}
		if !chain.TerminalRan() {
			s.reportSkipped(tree, node.Children, reporter)
			return types.Skipped()
		}
		return types.Passed()
	}

	for _, child := range node.Children {
		s.executeNode(ctx, tree, child, reporter, rc)
	}
	return types.Passed()
}

// runCase executes a leaf. Shared-instance cases run directly against the
// already-built instance their bodies close over; per-test cases delegate
// to the instance lifecycle path for a fresh instance, tree and chain.
func (s *Scheduler) runCase(ctx context.Context, node *types.TestNode, rc *types.RunContext) types.Outcome {
	if node.Spec != nil && node.Spec.Policy == types.PerTest {
		return RunIsolated(ctx, s.discovery, s.cases, node.Spec, node.Name, rc.GlobalInterceptors)
	}
	return s.cases.Run(ctx, node)
}

// reportSkipped emits the start/finish pair with a skipped outcome for every
// node in the given subtrees. Used when a chain short-circuited and the
// enclosed nodes never executed, so the one-start-one-finish invariant still
// holds for them.
func (s *Scheduler) reportSkipped(tree *types.Tree, subtrees []types.NodeID, reporter *Reporter) {
	for _, h := range subtrees {
		tree.Walk(h, func(n *types.TestNode) bool {
			reporter.Start(n)
			reporter.Finish(n, types.Skipped())
			return true
		})
	}
}
