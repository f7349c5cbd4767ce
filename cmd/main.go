package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/log"
	"github.com/honeycombio/otel-config-go/otelconfig"
	"github.com/urfave/cli/v2"

	specrun "github.com/specrun/specrun"
	"github.com/specrun/specrun/flags"
	"github.com/specrun/specrun/service"
)

var (
	Version   = "v0.1.0"
	GitCommit = ""
	GitDate   = ""
)

func main() {
	app := cli.NewApp()
	app.Version = fmt.Sprintf("%s-%s-%s", Version, GitCommit, GitDate)
	app.Name = "specrun"
	app.Usage = "Spec Execution Engine Service"
	app.Description = "specrun discovers registered specs and runs them"
	app.Flags = flags.Flags
	app.Action = run
	app.ExitErrHandler = func(c *cli.Context, err error) {
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			// Use the exit code from the ExitCoder
			cli.HandleExitCoder(exitErr)
		} else if err != nil {
			// Check for typed runtime errors
			if specrun.IsRuntimeError(err) {
				// For runtime errors, use exit code 2
				cli.HandleExitCoder(cli.Exit(err.Error(), 2))
			} else if specrun.IsRunFailureError(err) {
				// For case failures, use exit code 1
				cli.HandleExitCoder(cli.Exit(err.Error(), 1))
			} else {
				// For other unspecified errors, default to exit code 1
				cli.HandleExitCoder(cli.Exit(err.Error(), 1))
			}
		}
	}

	// Start telemetry
	otelShutdown, err := otelconfig.ConfigureOpenTelemetry(
		otelconfig.WithServiceName(app.Name),
		otelconfig.WithServiceVersion(app.Version),
	)
	if err != nil {
		log.Crit("Failed to setup open telemetry", "message", err)
	}
	defer otelShutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start sidecar servers
	svc := service.New()
	svc.Start(ctx)
	defer svc.Shutdown()

	// Start CLI
	err = app.RunContext(ctx, os.Args)
	if err != nil {
		log.Crit("Application failed", "message", err)
	}
}

func run(cliCtx *cli.Context) error {
	logger, err := newLogger(cliCtx.String(flags.LogLevel.Name))
	if err != nil {
		return specrun.NewRuntimeError(err)
	}
	log.SetDefault(logger)

	cfg, err := specrun.NewConfig(cliCtx, logger)
	if err != nil {
		// Wrap in RuntimeError to signal this should exit with code 2
		return specrun.NewRuntimeError(fmt.Errorf("failed to create config: %w", err))
	}

	cfg.Log.Debug("Config", "config", cfg)

	ctx, cancel := context.WithCancel(cliCtx.Context)
	defer cancel()

	// The shutdown callback ends the run context so the wait below returns.
	app, err := specrun.New(ctx, cfg, Version, func(error) { cancel() })
	if err != nil {
		return specrun.NewRuntimeError(fmt.Errorf("failed to create specrun: %w", err))
	}

	if err := app.Start(ctx); err != nil {
		return err
	}

	if cfg.RunOnce {
		return nil
	}

	// Continuous mode: block until interrupted, then drain.
	<-ctx.Done()
	if err := app.Stop(context.Background()); err != nil {
		logger.Error("Error stopping specrun", "error", err)
	}
	return app.WaitForShutdown(context.Background())
}

func newLogger(level string) (log.Logger, error) {
	lvl, err := log.LvlFromString(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return log.NewLogger(log.NewTerminalHandlerWithLevel(os.Stderr, lvl, true)), nil
}
