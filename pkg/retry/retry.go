// Package retry runs calls to services outside the admission core
// (identity tickets, notification gateway, database) under an exponential
// backoff policy. Errors are final unless the call marks them Retryable.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// Retryable marks err as transient. Do unwraps it before returning.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &retryableError{err: err}
}

// IsRetryable reports whether err was marked transient.
func IsRetryable(err error) bool {
	var r *retryableError
	return errors.As(err, &r)
}

// Policy bounds the attempts made against one service.
type Policy struct {
	// Attempts counts the first call. Zero means a single call.
	Attempts   uint64
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
	// Jitter is the randomization factor applied to each wait, in [0, 1].
	Jitter float64
}

// Policies of the services the core calls.
var (
	// Tickets covers the identity ticket service, slow under load.
	Tickets = Policy{Attempts: 4, Initial: 500 * time.Millisecond, Max: 10 * time.Second, Multiplier: 2, Jitter: 0.2}
	// Notifications covers the notification gateway.
	Notifications = Policy{Attempts: 5, Initial: 100 * time.Millisecond, Max: 5 * time.Second, Multiplier: 1.5, Jitter: 0.1}
	// Database covers the connection to PostgreSQL while it starts.
	Database = Policy{Attempts: 3, Initial: 50 * time.Millisecond, Max: time.Second, Multiplier: 2, Jitter: 0.05}
)

func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.Initial
	b.MaxInterval = p.Max
	b.Multiplier = p.Multiplier
	b.RandomizationFactor = p.Jitter
	b.MaxElapsedTime = 0
	if b.Multiplier < 1 {
		b.Multiplier = 1
	}
	retries := uint64(0)
	if p.Attempts > 1 {
		retries = p.Attempts - 1
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, retries), ctx)
}

// Retrier runs calls under one policy.
type Retrier struct {
	policy  Policy
	onRetry func(err error, wait time.Duration)
}

// New creates a Retrier.
func New(p Policy) *Retrier {
	return &Retrier{policy: p}
}

// OnRetry sets a callback run before each wait, typically to log.
func (r *Retrier) OnRetry(fn func(err error, wait time.Duration)) *Retrier {
	r.onRetry = fn
	return r
}

// Do calls op until it succeeds, returns an error not marked Retryable, the
// policy is exhausted or ctx is done.
func (r *Retrier) Do(ctx context.Context, op func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	operation := func() error {
		err := op(ctx)
		var transient *retryableError
		if errors.As(err, &transient) {
			return transient.err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}
	var notify backoff.Notify
	if r.onRetry != nil {
		notify = r.onRetry
	}
	return backoff.RetryNotify(operation, r.policy.backOff(ctx), notify)
}

// DoWithData is Do for calls returning a value.
func DoWithData[T any](ctx context.Context, r *Retrier, op func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := r.Do(ctx, func(ctx context.Context) error {
		var err error
		result, err = op(ctx)
		return err
	})
	return result, err
}
