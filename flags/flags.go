// Package flags defines the CLI flags for the specrun service.
package flags

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

const EnvVarPrefix = "SPECRUN"

func prefixEnvVars(name string) []string {
	return []string{EnvVarPrefix + "_" + name}
}

var (
	Profile = &cli.StringFlag{
		Name:    "profile",
		Value:   "",
		EnvVars: prefixEnvVars("PROFILE"),
		Usage:   "Path to run profile file (eg. 'profile.yaml')",
	}
	Specs = &cli.StringSliceFlag{
		Name:    "spec",
		EnvVars: prefixEnvVars("SPECS"),
		Usage:   "Spec to run; repeatable. Omit to run every registered spec.",
	}
	RunInterval = &cli.DurationFlag{
		Name:    "run-interval",
		Value:   0,
		EnvVars: prefixEnvVars("RUN_INTERVAL"),
		Usage:   "Interval between runs (e.g. '1h', '30m'). Set to 0 or omit for run-once mode.",
	}
	Parallelism = &cli.IntFlag{
		Name:    "parallelism",
		Value:   0,
		EnvVars: prefixEnvVars("PARALLELISM"),
		Usage:   "Worker pool size for top-level units. 0 uses the profile value, defaulting to serial.",
	}
	DefaultTimeout = &cli.DurationFlag{
		Name:    "default-timeout",
		Value:   0,
		EnvVars: prefixEnvVars("DEFAULT_TIMEOUT"),
		Usage:   "Default timeout for individual cases. 0 disables the deadline.",
	}
	LogDir = &cli.StringFlag{
		Name:    "logdir",
		Value:   "logs",
		EnvVars: prefixEnvVars("LOGDIR"),
		Usage:   "Directory to store run logs",
	}
	Selftest = &cli.BoolFlag{
		Name:    "selftest",
		Value:   false,
		EnvVars: prefixEnvVars("SELFTEST"),
		Usage:   "Register the built-in smoke specs before running",
	}
	LogLevel = &cli.StringFlag{
		Name:    "log-level",
		Value:   "info",
		EnvVars: prefixEnvVars("LOG_LEVEL"),
		Usage:   "Log level: trace, debug, info, warn, error",
	}
)

var requiredFlags = []cli.Flag{}

var optionalFlags = []cli.Flag{
	Profile,
	Specs,
	RunInterval,
	Parallelism,
	DefaultTimeout,
	LogDir,
	Selftest,
	LogLevel,
}

var Flags []cli.Flag

func init() {
	Flags = append(requiredFlags, optionalFlags...)
}

func CheckRequired(ctx *cli.Context) error {
	for _, f := range requiredFlags {
		if !ctx.IsSet(f.Names()[0]) {
			return fmt.Errorf("flag %s is required", f.Names()[0])
		}
	}
	return nil
}
