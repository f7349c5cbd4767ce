package types

// RunContext carries the per-run state handed to the engine: the external
// listener, concurrency, globally configured interceptors and the run-wide
// setup/teardown hooks. It is built once per run and passed explicitly
// rather than living in package globals.
type RunContext struct {
	// Listener receives the paired start/finish events. Nil means discard.
	Listener Listener

	// Parallelism is the worker pool size for top-level units. Values below
	// one are treated as one (serial execution).
	Parallelism int

	// GlobalInterceptors wrap every spec chain after the spec's own
	// interceptors, so spec-declared behavior wraps tighter around the
	// terminal.
	GlobalInterceptors []Interceptor

	// Setup runs once before any unit is dispatched. A failure is fatal for
	// the run but Teardown still runs.
	Setup func() error

	// Teardown runs once on every exit path, after all dispatched work has
	// completed or the run has been abandoned.
	Teardown func() error
}

// EffectiveParallelism returns the pool size to use, clamped to at least one.
func (rc *RunContext) EffectiveParallelism() int {
	if rc.Parallelism < 1 {
		return 1
	}
	return rc.Parallelism
}

// ListenerOrNoop returns the configured listener, or a discarding one.
func (rc *RunContext) ListenerOrNoop() Listener {
	if rc.Listener == nil {
		return NoopListener{}
	}
	return rc.Listener
}
