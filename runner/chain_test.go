package runner

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specrun/specrun/types"
)

func namedInterceptor(name string, trace *[]string) types.Interceptor {
	return func(next func() error) error {
		*trace = append(*trace, name+"-enter")
		err := next()
		*trace = append(*trace, name+"-exit")
		return err
	}
}

func TestBuildChain_WrapOrder(t *testing.T) {
	var trace []string

	chain := BuildChain([]types.Interceptor{
		namedInterceptor("A", &trace),
		namedInterceptor("B", &trace),
	}, func() error {
		trace = append(trace, "T")
		return nil
	})

	require.NoError(t, chain.Invoke())
	assert.Equal(t, []string{"A-enter", "B-enter", "T", "B-exit", "A-exit"}, trace)
	assert.True(t, chain.TerminalRan())
}

func TestBuildChain_ZeroWrappers(t *testing.T) {
	calls := 0
	chain := BuildChain(nil, func() error {
		calls++
		return nil
	})

	require.NoError(t, chain.Invoke())
	assert.Equal(t, 1, calls)
	assert.True(t, chain.TerminalRan())
}

func TestBuildChain_ShortCircuit(t *testing.T) {
	var trace []string

	skipAll := func(next func() error) error {
		trace = append(trace, "skip")
		return nil // never proceeds
	}

	chain := BuildChain([]types.Interceptor{
		namedInterceptor("A", &trace),
		skipAll,
		namedInterceptor("B", &trace),
	}, func() error {
		trace = append(trace, "T")
		return nil
	})

	require.NoError(t, chain.Invoke())
	assert.Equal(t, []string{"A-enter", "skip", "A-exit"}, trace)
	assert.False(t, chain.TerminalRan())
}

func TestBuildChain_TerminalErrorPropagates(t *testing.T) {
	terminalErr := errors.New("boom")
	var seen error

	observer := func(next func() error) error {
		seen = next()
		return seen
	}

	chain := BuildChain([]types.Interceptor{observer}, func() error {
		return terminalErr
	})

	err := chain.Invoke()
	require.ErrorIs(t, err, terminalErr)
	assert.ErrorIs(t, seen, terminalErr)
	assert.True(t, chain.TerminalRan())
}

func TestChainInterceptors_SpecBeforeGlobal(t *testing.T) {
	var trace []string
	spec := []types.Interceptor{namedInterceptor("spec", &trace)}
	global := []types.Interceptor{namedInterceptor("global", &trace)}

	chain := BuildChain(chainInterceptors(spec, global), func() error {
		trace = append(trace, "T")
		return nil
	})
	require.NoError(t, chain.Invoke())

	assert.Equal(t, []string{"spec-enter", "global-enter", "T", "global-exit", "spec-exit"}, trace)
}
