package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func fail(context.Context) error { return errBoom }
func pass(context.Context) error { return nil }

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestBreaker(cfg BreakerConfig) (*Breaker, *clock) {
	c := &clock{t: time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)}
	b := NewBreaker("test", cfg)
	b.now = c.now
	return b, c
}

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	b, _ := newTestBreaker(BreakerConfig{FailureThreshold: 3, Cooldown: time.Minute})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, b.Do(ctx, fail), errBoom)
	}
	assert.Equal(t, StateOpen, b.State())

	called := false
	err := b.Do(ctx, func(context.Context) error { called = true; return nil })
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called, "open circuit must not call through")

	s := b.Stats()
	assert.Equal(t, int64(3), s.Calls)
	assert.Equal(t, int64(3), s.Failures)
	assert.Equal(t, int64(1), s.Rejected)
}

func TestBreaker_SuccessResetsCount(t *testing.T) {
	b, _ := newTestBreaker(BreakerConfig{FailureThreshold: 2})
	ctx := context.Background()

	_ = b.Do(ctx, fail)
	require.NoError(t, b.Do(ctx, pass))
	_ = b.Do(ctx, fail)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_HalfOpenProbe(t *testing.T) {
	b, clk := newTestBreaker(BreakerConfig{FailureThreshold: 1, SuccessThreshold: 1, Cooldown: time.Minute})
	ctx := context.Background()

	_ = b.Do(ctx, fail)
	require.Equal(t, StateOpen, b.State())

	clk.t = clk.t.Add(time.Minute)
	_ = b.Do(ctx, fail)
	assert.Equal(t, StateOpen, b.State(), "failed probe reopens")
	assert.ErrorIs(t, b.Do(ctx, pass), ErrOpen, "cooldown restarts after failed probe")

	clk.t = clk.t.Add(time.Minute)
	require.NoError(t, b.Do(ctx, pass))
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_IsFailureFilter(t *testing.T) {
	ignored := errors.New("not the service's fault")
	b, _ := newTestBreaker(BreakerConfig{
		FailureThreshold: 1,
		IsFailure:        func(err error) bool { return !errors.Is(err, ignored) },
	})

	err := b.Do(context.Background(), func(context.Context) error { return ignored })
	assert.ErrorIs(t, err, ignored)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_CancelledContextIsNotAFailure(t *testing.T) {
	b, _ := newTestBreaker(BreakerConfig{FailureThreshold: 1})
	ctx, cancel := context.WithCancel(context.Background())

	err := b.Do(ctx, func(ctx context.Context) error {
		cancel()
		return ctx.Err()
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateClosed, b.State())

	assert.ErrorIs(t, b.Do(ctx, pass), context.Canceled)
}

func TestCall(t *testing.T) {
	b := NewBreaker("call", BreakerConfig{})
	v, err := Call(context.Background(), b, func(context.Context) (int, error) { return 42, nil })
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	v, err = Call(context.Background(), b, func(context.Context) (int, error) { return 7, errBoom })
	assert.ErrorIs(t, err, errBoom)
	assert.Zero(t, v)
}

// A closed breaker opens exactly when the run of trailing failures reaches
// the threshold.
func TestProperty_BreakerOpensOnConsecutiveFailures(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("state follows the failure run", prop.ForAll(
		func(outcomes []bool, threshold int) bool {
			b, _ := newTestBreaker(BreakerConfig{FailureThreshold: threshold, Cooldown: time.Hour})
			ctx := context.Background()

			run := 0
			for _, ok := range outcomes {
				if b.State() == StateOpen {
					return b.Do(ctx, pass) == ErrOpen
				}
				if ok {
					_ = b.Do(ctx, pass)
					run = 0
				} else {
					_ = b.Do(ctx, fail)
					run++
				}
				if (run >= threshold) != (b.State() == StateOpen) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Bool()),
		gen.IntRange(1, 5),
	))

	properties.TestingRun(t)
}
