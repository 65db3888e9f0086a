package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPolicy(attempts int) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: attempts,
		BaseDelay:   time.Millisecond,
		MaxDelay:    2 * time.Millisecond,
		Classify:    IsTransient,
	}
}

func transientError() error {
	return errbuilder.New().
		WithCode(errbuilder.CodeUnavailable).
		WithMsg("temporary outage")
}

func TestRetryPolicySucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := testPolicy(3).Do(t.Context(), func() error {
		calls++
		if calls < 3 {
			return transientError()
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryPolicyDoesNotRetryTerminalErrors(t *testing.T) {
	calls := 0
	terminal := errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg("artifact not found")
	err := testPolicy(3).Do(t.Context(), func() error {
		calls++
		return terminal
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
}

func TestRetryPolicyExhaustsAttempts(t *testing.T) {
	calls := 0
	err := testPolicy(3).Do(t.Context(), func() error {
		calls++
		return transientError()
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, errbuilder.CodeUnavailable, errbuilder.CodeOf(err))
}

func TestRetryPolicyHonorsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	err := testPolicy(3).Do(ctx, func() error {
		calls++
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, 0, calls)
	assert.Equal(t, errbuilder.CodeCanceled, errbuilder.CodeOf(err))
}

func TestNewRetryPolicyDefaults(t *testing.T) {
	policy := NewRetryPolicy(0, 0)
	assert.Equal(t, defaultRetryAttempts, policy.MaxAttempts)
	assert.Equal(t, defaultRetryBaseDelay, policy.BaseDelay)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(transientError()))
	assert.True(t, IsTransient(errbuilder.New().
		WithCode(errbuilder.CodeDataLoss).
		WithMsg("size mismatch")))
	assert.False(t, IsTransient(errbuilder.New().
		WithCode(errbuilder.CodeUnauthenticated).
		WithMsg("bad credentials")))
	assert.False(t, IsTransient(errors.New("plain error")))
}
