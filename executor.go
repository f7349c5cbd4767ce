package specrun

import (
	"context"

	"github.com/ethereum/go-ethereum/log"

	"github.com/specrun/specrun/registry"
	"github.com/specrun/specrun/runner"
	"github.com/specrun/specrun/types"
)

// RunExecutor is responsible for executing one full spec run.
type RunExecutor interface {
	RunAll(ctx context.Context, rc *types.RunContext) (*runner.RunResult, error)
}

// DefaultRunExecutor implements the RunExecutor interface.
type DefaultRunExecutor struct {
	engine  *Engine
	request registry.DiscoveryRequest
	logger  log.Logger
}

// NewDefaultRunExecutor creates a new DefaultRunExecutor.
func NewDefaultRunExecutor(engine *Engine, request registry.DiscoveryRequest, logger log.Logger) *DefaultRunExecutor {
	return &DefaultRunExecutor{
		engine:  engine,
		request: request,
		logger:  logger,
	}
}

// RunAll discovers the requested specs and executes the resulting tree.
// Discovery is repeated on every run so continuous mode picks up a fresh
// tree each interval.
func (e *DefaultRunExecutor) RunAll(ctx context.Context, rc *types.RunContext) (*runner.RunResult, error) {
	e.logger.Info("Running all specs...")

	tree, err := e.engine.Discover(e.request)
	if err != nil {
		e.logger.Error("Error discovering specs", "error", err)
		return nil, err
	}

	result, err := e.engine.Execute(ctx, tree, rc)
	if err != nil {
		e.logger.Error("Error executing run", "error", err)
		return result, err
	}

	e.logger.Info("Run completed", "run_id", result.RunID, "status", result.Status)
	return result, nil
}
