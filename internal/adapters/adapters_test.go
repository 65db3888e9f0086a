package adapters

import (
	"context"
	"sync"
	"time"

	"anypoint-export/internal/core"
)

// fakeTokens hands out a configurable token and records invalidations.
type fakeTokens struct {
	mu          sync.Mutex
	current     string
	next        string
	err         error
	invalidated int
}

func (f *fakeTokens) Token(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return f.current, nil
}

func (f *fakeTokens) Invalidate() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated++
	if f.next != "" {
		f.current = f.next
	}
}

func fastRetry(attempts int) core.RetryPolicy {
	return core.RetryPolicy{
		MaxAttempts: attempts,
		BaseDelay:   time.Millisecond,
		MaxDelay:    2 * time.Millisecond,
		Classify:    core.IsTransient,
	}
}
