package microsoft

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// Invoker executes remote operations, absorbing throttling rejections by
// sleeping and re-attempting up to a fixed attempt budget. The delay is the
// server-suggested Retry-After when present and DefaultBackoff otherwise;
// there is deliberately no exponential growth or jitter, as the server's
// own suggestion is the primary signal.
//
// Any failure other than throttling propagates immediately.
type Invoker struct {
	// MaxAttempts is the total attempt budget, including the first try.
	MaxAttempts int
	// DefaultBackoff is the wait used when a throttling rejection carries
	// no Retry-After duration.
	DefaultBackoff time.Duration

	log zerolog.Logger

	// sleep is replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// Default invoker settings.
const (
	DefaultMaxAttempts = 5
	DefaultBackoffWait = 10 * time.Second
)

// NewInvoker creates an invoker with the given attempt budget and default
// backoff. Zero or negative values fall back to the package defaults.
func NewInvoker(maxAttempts int, defaultBackoff time.Duration, log zerolog.Logger) *Invoker {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if defaultBackoff <= 0 {
		defaultBackoff = DefaultBackoffWait
	}
	return &Invoker{
		MaxAttempts:    maxAttempts,
		DefaultBackoff: defaultBackoff,
		log:            log,
		sleep:          sleepCtx,
	}
}

// Do executes an error-only operation with retry on throttling.
func (inv *Invoker) Do(ctx context.Context, name string, op func(ctx context.Context) error) error {
	_, err := Invoke(ctx, inv, name, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// Invoke executes an operation producing a value, retrying on throttling.
// Exhausting the attempt budget returns a RetryExhaustedError wrapping the
// last throttling rejection.
func Invoke[T any](ctx context.Context, inv *Invoker, name string, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	sleep := inv.sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	for attempt := 1; attempt <= inv.MaxAttempts; attempt++ {
		val, err := op(ctx)
		if err == nil {
			return val, nil
		}
		if !IsRateLimited(err) {
			return zero, err
		}
		lastErr = err

		if attempt == inv.MaxAttempts {
			break
		}

		wait := inv.DefaultBackoff
		var rle *RateLimitError
		if errors.As(err, &rle) && rle.RetryAfter > 0 {
			wait = rle.RetryAfter
		}

		inv.log.Warn().
			Str("operation", name).
			Int("attempt", attempt).
			Dur("wait", wait).
			Msg("throttled, backing off")

		if err := sleep(ctx, wait); err != nil {
			return zero, err
		}
	}

	return zero, &RetryExhaustedError{Operation: name, Attempts: inv.MaxAttempts, Last: lastErr}
}

// sleepCtx blocks for d or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
