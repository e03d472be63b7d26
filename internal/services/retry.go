package services

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/zerify/zerify/internal/zerify"
)

// Retry runs call with bounded exponential-backoff retry for transient
// failures. Classification is a type-level match on the AgentError kind
// set at the agent boundary. When every attempt fails with a retryable
// error the deterministic fallback is returned instead of an error, so
// the stage completes with a degraded but structurally valid result. A
// nil fallback propagates the final error instead. Non-retryable errors
// propagate immediately, with zero delay.
func Retry[T any](ctx context.Context, policy zerify.RetryPolicy, call func(context.Context) (T, error), fallback func() T) (T, error) {
	var zero T

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		result, err := call(ctx)
		if err == nil {
			return result, nil
		}
		if !zerify.IsRetryable(err) {
			return zero, err
		}
		if attempt == policy.MaxAttempts {
			if fallback == nil {
				return zero, err
			}
			slog.Warn("retry: attempts exhausted, using fallback", "attempts", attempt, "err", err)
			return fallback(), nil
		}
		if err := sleepWithBackoff(ctx, policy, attempt); err != nil {
			return zero, err
		}
	}
	return zero, nil
}

// sleepWithBackoff waits for the backoff duration, respecting context
// cancellation.
func sleepWithBackoff(ctx context.Context, policy zerify.RetryPolicy, attempt int) error {
	delay := calculateBackoff(policy, attempt)
	slog.Info("retry: backing off", "attempt", attempt, "delay", delay)

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// calculateBackoff computes the delay after the given 1-indexed attempt
// using exponential backoff: InitialDelay, then doubled per attempt under
// the default policy (2s, 4s), capped at MaxDelay.
func calculateBackoff(policy zerify.RetryPolicy, attempt int) time.Duration {
	delay := float64(policy.InitialDelay) * math.Pow(policy.BackoffFactor, float64(attempt-1))
	if time.Duration(delay) > policy.MaxDelay {
		return policy.MaxDelay
	}
	return time.Duration(delay)
}
