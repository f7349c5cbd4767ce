package specrun

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunScheduler_RequiresCallback(t *testing.T) {
	s := NewDefaultRunScheduler(time.Minute, true, log.New())
	err := s.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "callback")
}

func TestRunScheduler_RunOnceInvokesCallbackOnce(t *testing.T) {
	s := NewDefaultRunScheduler(0, true, log.New())

	calls := 0
	s.RegisterCallback(func() error {
		calls++
		return nil
	})

	require.NoError(t, s.Start(context.Background()))
	assert.Equal(t, 1, calls)
}

func TestRunScheduler_RunOncePropagatesCallbackError(t *testing.T) {
	s := NewDefaultRunScheduler(0, true, log.New())

	callbackErr := errors.New("discovery broke")
	s.RegisterCallback(func() error { return callbackErr })

	err := s.Start(context.Background())
	assert.ErrorIs(t, err, callbackErr)
}

func TestRunScheduler_ContinuousModeRunsPeriodically(t *testing.T) {
	s := NewDefaultRunScheduler(10*time.Millisecond, false, log.New())

	var calls atomic.Int32
	s.RegisterCallback(func() error {
		calls.Add(1)
		return nil
	})

	require.NoError(t, s.Start(context.Background()))
	defer func() {
		require.NoError(t, s.Stop())
		require.NoError(t, s.WaitForShutdown(context.Background()))
	}()

	require.Eventually(t, func() bool {
		return calls.Load() >= 2
	}, 5*time.Second, 5*time.Millisecond, "expected the immediate run plus at least one periodic run")

	assert.False(t, s.Stopped())
}

func TestRunScheduler_StopIsIdempotent(t *testing.T) {
	s := NewDefaultRunScheduler(time.Hour, false, log.New())
	s.RegisterCallback(func() error { return nil })

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Stop())
	require.NoError(t, s.Stop())
	assert.True(t, s.Stopped())

	require.NoError(t, s.WaitForShutdown(context.Background()))
}

func TestRunScheduler_ContextCancelStopsLoop(t *testing.T) {
	s := NewDefaultRunScheduler(5*time.Millisecond, false, log.New())
	s.RegisterCallback(func() error { return nil })

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	cancel()

	require.NoError(t, s.WaitForShutdown(context.Background()))
	assert.Eventually(t, s.Stopped, time.Second, 5*time.Millisecond)
}
