package runner

import "github.com/specrun/specrun/types"

// Chain is a compiled interceptor stack around one terminal action. A chain
// is built once per required scope and invoked once; it remembers whether
// the terminal actually ran so callers can tell a short-circuit apart from a
// completed invocation.
type Chain struct {
	invoke      func() error
	terminalRan bool
}

// BuildChain composes the ordered wrappers around terminal. The first
// wrapper is outermost: it receives a proceed callback that runs the next
// wrapper and, eventually, the terminal. A wrapper that never calls proceed
// short-circuits every enclosed wrapper and the terminal.
//
// With zero wrappers the terminal is invoked directly.
func BuildChain(wrappers []types.Interceptor, terminal func() error) *Chain {
	c := &Chain{}
	next := func() error {
		c.terminalRan = true
		return terminal()
	}
	for i := len(wrappers) - 1; i >= 0; i-- {
		wrapper := wrappers[i]
		inner := next
		next = func() error {
			return wrapper(inner)
		}
	}
	c.invoke = next
	return c
}

// Invoke runs the chain. Safe to call exactly once per construction.
func (c *Chain) Invoke() error {
	return c.invoke()
}

// TerminalRan reports whether the terminal action executed during Invoke.
func (c *Chain) TerminalRan() bool {
	return c.terminalRan
}

// chainInterceptors concatenates spec-declared wrappers with the globally
// configured ones. Spec wrappers are listed first and are therefore
// outermost.
func chainInterceptors(spec, global []types.Interceptor) []types.Interceptor {
	if len(spec) == 0 {
		return global
	}
	out := make([]types.Interceptor, 0, len(spec)+len(global))
	out = append(out, spec...)
	out = append(out, global...)
	return out
}
