package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBackend = errors.New("backend down")

func failingCalls(cb *CircuitBreaker, n int) {
	for i := 0; i < n; i++ {
		cb.Execute(context.Background(), func() error { return errBackend })
	}
}

func TestBreakerOpensAfterThreshold(t *testing.T) {
	cb := New("test", Config{FailureThreshold: 3, Timeout: time.Minute})

	failingCalls(cb, 2)
	assert.Equal(t, StateClosed, cb.State())

	failingCalls(cb, 1)
	assert.Equal(t, StateOpen, cb.State())
}

func TestBreakerRejectsWhileOpen(t *testing.T) {
	cb := New("test", Config{FailureThreshold: 1, Timeout: time.Minute})

	failingCalls(cb, 1)
	require.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Execute(context.Background(), func() error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestBreakerRecoversThroughHalfOpen(t *testing.T) {
	cb := New("test", Config{
		MaxRequests:      2,
		FailureThreshold: 1,
		SuccessThreshold: 2,
		Timeout:          10 * time.Millisecond,
	})

	failingCalls(cb, 1)
	require.Equal(t, StateOpen, cb.State())

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, StateHalfOpen, cb.State())

	for i := 0; i < 2; i++ {
		err := cb.Execute(context.Background(), func() error { return nil })
		require.NoError(t, err)
	}

	assert.Equal(t, StateClosed, cb.State())
}

func TestBreakerReopensOnHalfOpenFailure(t *testing.T) {
	cb := New("test", Config{
		FailureThreshold: 1,
		SuccessThreshold: 2,
		Timeout:          10 * time.Millisecond,
	})

	failingCalls(cb, 1)
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, StateHalfOpen, cb.State())

	failingCalls(cb, 1)
	assert.Equal(t, StateOpen, cb.State())
}

func TestBreakerCounts(t *testing.T) {
	cb := New("test", Config{FailureThreshold: 10})

	cb.Execute(context.Background(), func() error { return nil })
	cb.Execute(context.Background(), func() error { return errBackend })

	counts := cb.Counts()
	assert.Equal(t, uint32(2), counts.Requests)
	assert.Equal(t, uint32(1), counts.TotalSuccesses)
	assert.Equal(t, uint32(1), counts.TotalFailures)
}
