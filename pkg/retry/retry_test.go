package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFlaky = errors.New("flaky")

func fast(attempts uint64) *Retrier {
	return New(Policy{Attempts: attempts, Initial: time.Millisecond, Max: time.Millisecond, Multiplier: 2})
}

func TestDo_RetriesRetryableErrors(t *testing.T) {
	calls := 0
	err := fast(5).Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return Retryable(errFlaky)
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_UnwrapsAfterLastAttempt(t *testing.T) {
	calls := 0
	err := fast(2).Do(context.Background(), func(context.Context) error {
		calls++
		return Retryable(errFlaky)
	})

	assert.Equal(t, 2, calls)
	assert.Equal(t, errFlaky, err)
	assert.False(t, IsRetryable(err))
}

func TestDo_StopsOnUnmarkedErrors(t *testing.T) {
	calls := 0
	err := fast(5).Do(context.Background(), func(context.Context) error {
		calls++
		return errFlaky
	})

	assert.Equal(t, 1, calls)
	assert.Equal(t, errFlaky, err)
}

func TestDo_OnRetry(t *testing.T) {
	var waits []time.Duration
	r := fast(3).OnRetry(func(_ error, wait time.Duration) { waits = append(waits, wait) })

	err := r.Do(context.Background(), func(context.Context) error { return Retryable(errFlaky) })

	assert.ErrorIs(t, err, errFlaky)
	assert.Equal(t, []time.Duration{time.Millisecond, time.Millisecond}, waits)
}

func TestDoWithData(t *testing.T) {
	calls := 0
	got, err := DoWithData(context.Background(), fast(3), func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", Retryable(errFlaky)
		}
		return "ticket", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ticket", got)
}

func TestDo_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := New(Database).Do(ctx, func(context.Context) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPolicies(t *testing.T) {
	for name, p := range map[string]Policy{"tickets": Tickets, "notifications": Notifications, "database": Database} {
		t.Run(name, func(t *testing.T) {
			assert.Greater(t, p.Attempts, uint64(1))
			assert.LessOrEqual(t, p.Initial, p.Max)
			assert.GreaterOrEqual(t, p.Multiplier, 1.0)
		})
	}
}
