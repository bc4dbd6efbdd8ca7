package providers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	defaultRetryAttempts = 5
	defaultRetryBase     = 2 * time.Second
	maxRetryInterval     = time.Hour
)

// Retrier retries upstream calls with exponential backoff: the first retry
// waits BaseDelay and each later one doubles it. A RateLimitError's
// Retry-After replaces the computed delay when it is longer.
type Retrier struct {
	maxAttempts int
	baseDelay   time.Duration
	logger      *slog.Logger
}

// NewRetrier builds a retrier. Non-positive values fall back to 5 attempts and a 2s base.
func NewRetrier(maxAttempts int, baseDelay time.Duration, logger *slog.Logger) *Retrier {
	if maxAttempts <= 0 {
		maxAttempts = defaultRetryAttempts
	}
	if baseDelay <= 0 {
		baseDelay = defaultRetryBase
	}
	return &Retrier{maxAttempts: maxAttempts, baseDelay: baseDelay, logger: logger}
}

// MaxAttempts is the total number of calls made before giving up.
func (r *Retrier) MaxAttempts() int {
	if r == nil {
		return 1
	}
	return r.maxAttempts
}

func (r *Retrier) newBackOff(ctx context.Context, hint *time.Duration) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = r.baseDelay
	exp.Multiplier = 2
	exp.RandomizationFactor = 0
	exp.MaxInterval = maxRetryInterval
	if r.baseDelay > exp.MaxInterval {
		exp.MaxInterval = r.baseDelay
	}
	exp.MaxElapsedTime = 0

	bounded := backoff.WithMaxRetries(exp, uint64(r.maxAttempts-1))
	return backoff.WithContext(&retryAfterBackOff{BackOff: bounded, hint: hint}, ctx)
}

// Retry runs fn until it succeeds, the attempts are exhausted, or ctx ends.
// Exhaustion returns a *TransientUpstreamError wrapping the last failure.
// A nil Retrier makes a single attempt.
func Retry[T any](ctx context.Context, r *Retrier, op string, fn func(context.Context) (T, error)) (T, error) {
	if r == nil {
		return fn(ctx)
	}

	var (
		attempts int
		lastErr  error
		hint     time.Duration
	)
	call := func() (T, error) {
		attempts++
		res, err := fn(ctx)
		if err == nil {
			return res, nil
		}
		lastErr = err
		if errors.Is(err, ErrProviderUnavailable) || ctx.Err() != nil {
			return res, backoff.Permanent(err)
		}
		if rl, ok := AsRateLimitError(err); ok {
			hint = rl.RetryAfter
		}
		return res, err
	}
	notify := func(err error, wait time.Duration) {
		logUpstream(ctx, r.logger, slog.LevelWarn, op, "upstream call failed, retrying",
			slog.Int("attempt", attempts),
			slog.Int("max_attempts", r.maxAttempts),
			slog.Duration("wait", wait),
			slog.Any("error", err),
		)
	}

	res, err := backoff.RetryNotifyWithData(call, r.newBackOff(ctx, &hint), notify)
	if err == nil {
		return res, nil
	}

	var zero T
	if ctxErr := ctx.Err(); ctxErr != nil {
		return zero, fmt.Errorf("%s: %w", op, ctxErr)
	}
	if errors.Is(err, ErrProviderUnavailable) {
		return zero, fmt.Errorf("%s: %w", op, err)
	}
	logUpstream(ctx, r.logger, slog.LevelWarn, op, "upstream call exhausted retries",
		slog.Int("attempts", attempts),
		slog.Any("error", lastErr),
	)
	return zero, &TransientUpstreamError{Op: op, Attempts: attempts, Err: lastErr}
}

// retryAfterBackOff stretches the next delay to honour an upstream Retry-After.
type retryAfterBackOff struct {
	backoff.BackOff
	hint *time.Duration
}

func (b *retryAfterBackOff) NextBackOff() time.Duration {
	next := b.BackOff.NextBackOff()
	if next == backoff.Stop {
		return next
	}
	if b.hint != nil && *b.hint > next {
		next = *b.hint
	}
	if b.hint != nil {
		*b.hint = 0
	}
	return next
}
