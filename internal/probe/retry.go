package probe

import (
	"context"
	"time"
)

// RetryChecker repeats Inner up to opts.Retries times with the same timeout.
// It stops at the first result that another attempt would not change.
type RetryChecker struct {
	Inner Checker
}

func NewRetryChecker(inner Checker) *RetryChecker {
	return &RetryChecker{Inner: inner}
}

func (r *RetryChecker) Check(ctx context.Context, target string, opts Options) Result {
	attempts := opts.Retries
	if attempts < 1 {
		attempts = 1
	}
	var last Result
	for i := 0; i < attempts; i++ {
		last = r.Inner.Check(ctx, target, opts)
		last.Attempts = i + 1
		if !last.Retryable() {
			return last
		}
		if i < attempts-1 && !wait(ctx, opts.RetryBackoff) {
			return last
		}
	}
	return last
}

// wait pauses for d and reports false if ctx ended first.
func wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
