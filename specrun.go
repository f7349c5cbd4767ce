package specrun

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/log"

	"github.com/specrun/specrun/exitcodes"
	"github.com/specrun/specrun/logging"
	"github.com/specrun/specrun/registry"
	"github.com/specrun/specrun/runner"
	"github.com/specrun/specrun/types"
)

// App is the long-running specrun service: it owns the engine, executes runs
// either once or on an interval, prints and persists results, and reports
// metrics.
type App struct {
	ctx     context.Context
	config  *Config
	version string
	engine  *Engine
	result  *runner.RunResult

	executor  RunExecutor
	formatter ResultFormatter
	metrics   MetricsReporter
	scheduler RunScheduler

	running atomic.Bool

	shutdownCallback func(error) // Callback to signal application shutdown
}

// New creates the specrun service from its configuration. Specs registered
// through the returned app's engine before Start are included in every run.
func New(ctx context.Context, config *Config, version string, shutdownCallback func(error)) (*App, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}

	config.Log.Debug("Creating specrun service with config",
		"profileFile", config.ProfileFile,
		"specs", config.Specs,
		"runInterval", config.RunInterval,
		"runOnce", config.RunOnce,
		"parallelism", config.Parallelism)

	reg, err := registry.NewRegistry(registry.Config{
		Log:         config.Log,
		ProfileFile: config.ProfileFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create registry: %w", err)
	}

	if config.Selftest {
		if err := RegisterSelftest(reg); err != nil {
			return nil, fmt.Errorf("failed to register selftest specs: %w", err)
		}
	}

	engine, err := NewEngine(EngineConfig{
		Log:            config.Log,
		Registry:       reg,
		DefaultTimeout: config.DefaultTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	config.Log.Info("specrun.New: created registry and engine", "identity", engine.Identity())

	return &App{
		ctx:     ctx,
		config:  config,
		version: version,
		engine:  engine,

		executor:  NewDefaultRunExecutor(engine, registry.DiscoveryRequest{Specs: config.Specs}, config.Log),
		formatter: NewConsoleResultFormatter(config.Log),
		metrics:   NewDefaultMetricsReporter(),
		scheduler: NewDefaultRunScheduler(config.RunInterval, config.RunOnce, config.Log),

		shutdownCallback: shutdownCallback,
	}, nil
}

// Engine exposes the app's engine so embedders can register specs.
func (a *App) Engine() *Engine {
	return a.engine
}

// Result returns the most recent run result.
func (a *App) Result() *runner.RunResult {
	return a.result
}

// Start runs the specs once immediately and, unless in run-once mode, keeps
// running them at the configured interval.
func (a *App) Start(ctx context.Context) error {
	// Panic here means a broken service wiring, not a failing case; exit
	// with the runtime error code.
	defer func() {
		if r := recover(); r != nil {
			a.config.Log.Error("Runtime error occurred", "error", r)
			os.Exit(exitcodes.RuntimeErr)
		}
	}()

	a.ctx = ctx
	a.running.Store(true)

	if a.config.RunOnce {
		a.config.Log.Info("Starting specrun in run-once mode", "version", a.version)
	} else {
		a.config.Log.Info("Starting specrun in continuous mode", "version", a.version, "interval", a.config.RunInterval)
	}

	a.scheduler.RegisterCallback(a.runSpecs)
	if err := a.scheduler.Start(ctx); err != nil {
		a.config.Log.Error("Runtime error running specs", "error", err)
		return NewRuntimeError(err)
	}

	if a.config.RunOnce {
		a.config.Log.Info("Run completed, exiting (run-once mode)")

		if a.result != nil && a.result.Status == types.OutcomeFail {
			a.config.Log.Warn("Run-once completed with failures, returning exit code 1")
			return NewRunFailureError(a.result.String())
		}

		// Only needed in run-once mode when every case passed.
		go func() {
			a.shutdownCallback(nil)
		}()
		return nil
	}

	a.config.Log.Debug("specrun started successfully")
	return nil
}

// runSpecs runs one full spec run and processes the results.
func (a *App) runSpecs() error {
	rc := &types.RunContext{
		Listener:    &logListener{log: a.config.Log},
		Parallelism: a.effectiveParallelism(),
	}

	result, err := a.executor.RunAll(a.ctx, rc)
	if err != nil {
		// Whole-run-fatal condition, not a case failure
		a.config.Log.Error("Runtime error running specs", "error", err)
		return err
	}
	a.result = result

	if err := a.formatter.FormatResults(result); err != nil {
		a.config.Log.Error("Error formatting results", "error", err)
	}
	a.metrics.ReportResults(result)
	a.persistResults(result)

	a.config.Log.Info("Run completed", "run_id", result.RunID, "status", result.Status)
	return nil
}

// persistResults writes the run's file logs. Failure to log is reported but
// never fails the run.
func (a *App) persistResults(result *runner.RunResult) {
	if a.config.LogDir == "" {
		return
	}

	fl, err := logging.NewFileLogger(a.config.LogDir, result.RunID)
	if err != nil {
		a.config.Log.Error("Error creating file logger", "error", err)
		return
	}
	if err := fl.LogResults(result); err != nil {
		a.config.Log.Error("Error writing run logs", "error", err)
		return
	}
	a.config.Log.Info("Run logs written", "dir", fl.LogDir())
}

// effectiveParallelism prefers the CLI value, falling back to the profile.
func (a *App) effectiveParallelism() int {
	if a.config.Parallelism > 0 {
		return a.config.Parallelism
	}
	return a.engine.Registry().Profile().Parallelism
}

// Stop stops the specrun service.
func (a *App) Stop(ctx context.Context) error {
	a.config.Log.Info("Stopping specrun")

	if !a.running.Load() {
		a.config.Log.Debug("Service already stopped, nothing to do")
		return nil
	}
	a.running.Store(false)

	if err := a.scheduler.Stop(); err != nil {
		return err
	}

	a.config.Log.Info("specrun stopped successfully")
	return nil
}

// Stopped returns true if the specrun service is stopped.
func (a *App) Stopped() bool {
	return !a.running.Load()
}

// WaitForShutdown blocks until all goroutines have terminated.
// This is useful in tests to ensure complete cleanup before moving on.
func (a *App) WaitForShutdown(ctx context.Context) error {
	return a.scheduler.WaitForShutdown(ctx)
}

// logListener forwards start/finish events to the structured log.
type logListener struct {
	log log.Logger
}

func (l *logListener) Started(nodeID string) {
	l.log.Debug("Node started", "node", nodeID)
}

func (l *logListener) Finished(nodeID string, outcome types.Outcome) {
	l.log.Debug("Node finished", "node", nodeID, "status", outcome.Status, "error", outcome.Err)
}
