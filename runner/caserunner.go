package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/log"

	"github.com/specrun/specrun/types"
)

// CaseRunner executes the body of a single case and converts its result,
// including recovered panics, into an outcome. It is the terminal action
// wrapped by interceptor chains.
type CaseRunner interface {
	Run(ctx context.Context, node *types.TestNode) types.Outcome
}

type caseRunner struct {
	log            log.Logger
	defaultTimeout time.Duration
}

// CaseRunnerConfig holds configuration for the default case runner.
type CaseRunnerConfig struct {
	Log log.Logger
	// DefaultTimeout applies to cases without a timeout of their own.
	// Zero means no deadline.
	DefaultTimeout time.Duration
}

// NewCaseRunner creates the default case runner.
func NewCaseRunner(cfg CaseRunnerConfig) CaseRunner {
	if cfg.Log == nil {
		cfg.Log = log.New()
	}
	return &caseRunner{log: cfg.Log, defaultTimeout: cfg.DefaultTimeout}
}

// Run executes node's body synchronously and never lets a failure escape as
// a panic or error: everything becomes an outcome.
func (r *caseRunner) Run(ctx context.Context, node *types.TestNode) types.Outcome {
	if node == nil || node.Kind != types.KindCase || node.Run == nil {
		return types.Failed(&types.CaseFailureError{Case: nodeName(node), Err: fmt.Errorf("node is not an executable case")})
	}

	timeout := node.Timeout
	if timeout == 0 {
		timeout = r.defaultTimeout
	}

	start := time.Now()
	r.log.Debug("Case starting", "case", node.Name, "id", node.ID, "timeout", timeout)

	var err error
	if timeout > 0 {
		err = r.runWithDeadline(ctx, node, timeout)
	} else {
		err = runBody(ctx, node)
	}

	r.log.Debug("Case finished", "case", node.Name, "duration", time.Since(start), "error", err)

	if err != nil {
		return types.Failed(err)
	}
	return types.Passed()
}

// runWithDeadline runs the body under a deadline. A body that outlives its
// deadline is abandoned, not killed; its goroutine drains into a buffered
// channel.
func (r *caseRunner) runWithDeadline(ctx context.Context, node *types.TestNode, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- runBody(ctx, node)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		r.log.Warn("Case exceeded its deadline", "case", node.Name, "timeout", timeout)
		return &types.CaseFailureError{Case: node.Name, Err: fmt.Errorf("case did not finish within %v", timeout)}
	}
}

// runBody invokes the case function, converting panics and plain errors
// into CaseFailureError.
func runBody(ctx context.Context, node *types.TestNode) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &types.CaseFailureError{Case: node.Name, Err: fmt.Errorf("%v", p), Panicked: true}
		}
	}()

	if runErr := node.Run(ctx); runErr != nil {
		return &types.CaseFailureError{Case: node.Name, Err: runErr}
	}
	return nil
}

func nodeName(node *types.TestNode) string {
	if node == nil {
		return "<nil>"
	}
	return node.Name
}
