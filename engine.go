// Package specrun is the engine facade and service harness for running
// registered specs: it discovers node trees from the registry, executes them
// through the runner's scheduler, and packages the results for the console,
// file logs and metrics.
package specrun

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/log"

	"github.com/specrun/specrun/registry"
	"github.com/specrun/specrun/runner"
	"github.com/specrun/specrun/types"
)

// EngineIdentity is the stable token identifying this engine implementation.
const EngineIdentity = "specrun-engine"

// Engine ties the registry's discovery service to the runner's scheduler.
// It is the single entry point embedders use: register specs, discover a
// tree, execute it.
type Engine struct {
	log       log.Logger
	registry  *registry.Registry
	scheduler *runner.Scheduler
}

// EngineConfig holds configuration for creating an engine.
type EngineConfig struct {
	Log      log.Logger
	Registry *registry.Registry
	// DefaultTimeout applies to cases that declare no timeout of their own.
	DefaultTimeout time.Duration
}

// NewEngine creates an engine around an existing registry.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.Registry == nil {
		return nil, errors.New("registry is required")
	}
	if cfg.Log == nil {
		cfg.Log = log.New()
	}

	timeout := cfg.DefaultTimeout
	if timeout == 0 {
		timeout = cfg.Registry.Profile().DefaultTimeout
	}

	sched, err := runner.NewScheduler(runner.Config{
		Log:       cfg.Log,
		Discovery: cfg.Registry,
		Cases:     runner.NewCaseRunner(runner.CaseRunnerConfig{Log: cfg.Log, DefaultTimeout: timeout}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Engine{
		log:       cfg.Log,
		registry:  cfg.Registry,
		scheduler: sched,
	}, nil
}

// Identity returns the stable engine token.
func (e *Engine) Identity() string {
	return EngineIdentity
}

// Registry exposes the engine's registry for spec registration.
func (e *Engine) Registry() *registry.Registry {
	return e.registry
}

// Discover builds a sealed run tree for the requested specs. Explicit names
// are unioned with the run profile's include list; an empty request selects
// every registered spec.
func (e *Engine) Discover(req registry.DiscoveryRequest) (*types.Tree, error) {
	return e.registry.Discover(req)
}

// Execute runs the tree to completion. Per-node failures surface through the
// run context's listener and the returned result; the error return is
// reserved for whole-run-fatal conditions, raised only after best-effort
// cleanup.
func (e *Engine) Execute(ctx context.Context, tree *types.Tree, rc *types.RunContext) (*runner.RunResult, error) {
	if tree == nil {
		return nil, errors.New("tree is required")
	}
	if rc == nil {
		rc = &types.RunContext{}
	}
	return e.scheduler.Run(ctx, tree, rc)
}
