package specrun

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	"github.com/specrun/specrun/flags"
)

// Config holds the application configuration
type Config struct {
	ProfileFile    string        // Path to the YAML run profile, empty for defaults
	Specs          []string      // Explicit spec names to run; empty means all registered
	RunInterval    time.Duration // Interval between runs
	RunOnce        bool          // Indicates if the service should exit after one run
	Parallelism    int           // Worker pool size for top-level units (0 = profile value)
	DefaultTimeout time.Duration // Default timeout for individual cases, overridable per case
	LogDir         string        // Directory to store run logs
	Selftest       bool          // Register the built-in smoke specs
	Log            log.Logger
}

// NewConfig creates a new Config from cli context
func NewConfig(ctx *cli.Context, log log.Logger) (*Config, error) {
	if err := flags.CheckRequired(ctx); err != nil {
		return nil, fmt.Errorf("missing required flags: %w", err)
	}

	var absProfile string
	if profile := ctx.String(flags.Profile.Name); profile != "" {
		var err error
		absProfile, err = filepath.Abs(profile)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve absolute path for profile '%s': %w", profile, err)
		}
	}

	runInterval := ctx.Duration(flags.RunInterval.Name)
	runOnce := runInterval == 0

	// Get log directory, default to "logs" if not specified
	logDir := ctx.String(flags.LogDir.Name)
	if logDir == "" {
		logDir = "logs"
	}
	logDir, err := filepath.Abs(logDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for log directory '%s': %w", logDir, err)
	}

	parallelism := ctx.Int(flags.Parallelism.Name)
	if parallelism < 0 {
		return nil, fmt.Errorf("parallelism must not be negative, got %d", parallelism)
	}

	return &Config{
		ProfileFile:    absProfile,
		Specs:          ctx.StringSlice(flags.Specs.Name),
		RunInterval:    runInterval,
		RunOnce:        runOnce,
		Parallelism:    parallelism,
		DefaultTimeout: ctx.Duration(flags.DefaultTimeout.Name),
		LogDir:         logDir,
		Selftest:       ctx.Bool(flags.Selftest.Name),
		Log:            log,
	}, nil
}
