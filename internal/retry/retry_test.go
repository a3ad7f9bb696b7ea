package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSleeper struct {
	waits []time.Duration
}

func (r *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return ctx.Err()
}

func TestPolicyBackoff(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, 3, p.MaxAttempts)
	assert.Equal(t, 2*time.Second, p.Backoff(1))
	assert.Equal(t, 4*time.Second, p.Backoff(2))
	assert.Equal(t, 8*time.Second, p.Backoff(3))

	capped := Policy{InitialBackoff: time.Second, MaxBackoff: 3 * time.Second}
	assert.Equal(t, 3*time.Second, capped.Backoff(5))
}

func TestPolicyBackoff_Jitter(t *testing.T) {
	p := Policy{InitialBackoff: time.Second, JitterFraction: 0.5}
	for i := 0; i < 20; i++ {
		wait := p.Backoff(1)
		assert.GreaterOrEqual(t, wait, time.Second)
		assert.LessOrEqual(t, wait, 1500*time.Millisecond)
	}
}

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	sleeper := &recordingSleeper{}
	calls := 0

	err := Do(context.Background(), DefaultPolicy(), func(_ context.Context, attempt int) error {
		calls++
		assert.Equal(t, calls, attempt)
		if attempt < 3 {
			return errors.New("transient")
		}
		return nil
	}, WithSleep(sleeper.sleep))

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, sleeper.waits)
}

func TestDo_Exhausted(t *testing.T) {
	sleeper := &recordingSleeper{}
	boom := errors.New("boom")
	var retried []int

	err := Do(context.Background(), DefaultPolicy(), func(context.Context, int) error {
		return boom
	}, WithSleep(sleeper.sleep), WithOnRetry(func(attempt int, err error, wait time.Duration) {
		retried = append(retried, attempt)
		assert.ErrorIs(t, err, boom)
	}))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExhausted)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []int{1, 2}, retried)
	assert.Len(t, sleeper.waits, 2)
}

func TestDo_NonRetryable(t *testing.T) {
	fatal := errors.New("fatal")
	calls := 0

	err := Do(context.Background(), DefaultPolicy(), func(context.Context, int) error {
		calls++
		return fatal
	}, WithRetryable(func(err error) bool { return !errors.Is(err, fatal) }))

	assert.Equal(t, fatal, err)
	assert.Equal(t, 1, calls)
}

func TestDo_ContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	err := Do(ctx, DefaultPolicy(), func(context.Context, int) error {
		calls++
		cancel()
		return errors.New("transient")
	}, WithSleep(Sleep))

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestSleep(t *testing.T) {
	require.NoError(t, Sleep(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Sleep(ctx, time.Hour), context.Canceled)
}
