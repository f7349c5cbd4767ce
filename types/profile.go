package types

import "time"

// RunProfile is the YAML run configuration loaded by the registry. It scopes
// a run to a subset of registered specs and sets execution defaults.
type RunProfile struct {
	// Parallelism is the default worker pool size for top-level units.
	Parallelism int `yaml:"parallelism,omitempty"`

	// Specs lists the spec names to include. Empty means all registered.
	Specs []string `yaml:"specs,omitempty"`

	// DefaultTimeout applies to cases that declare no timeout of their own.
	DefaultTimeout time.Duration `yaml:"default_timeout,omitempty"`
}
