package circuitbreaker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/epis-academic/academic-records/pkg/circuitbreaker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDown = errors.New("connection refused")

func fail(context.Context) error    { return errDown }
func succeed(context.Context) error { return nil }

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	var transitions []string
	cb := circuitbreaker.New("cache",
		circuitbreaker.WithFailureThreshold(2),
		circuitbreaker.WithOpenFor(time.Hour),
		circuitbreaker.WithOnStateChange(func(name string, from, to circuitbreaker.State) {
			transitions = append(transitions, name+":"+from.String()+"->"+to.String())
		}),
	)
	ctx := context.Background()

	assert.ErrorIs(t, cb.Execute(ctx, fail), errDown)
	assert.Equal(t, circuitbreaker.StateClosed, cb.State())
	assert.ErrorIs(t, cb.Execute(ctx, fail), errDown)
	assert.Equal(t, circuitbreaker.StateOpen, cb.State())

	called := false
	err := cb.Execute(ctx, func(context.Context) error { called = true; return nil })
	assert.ErrorIs(t, err, circuitbreaker.ErrCircuitOpen)
	assert.False(t, called, "an open circuit does not call through")

	assert.Equal(t, []string{"cache:closed->open"}, transitions)
}

func TestCircuitBreaker_SuccessResetsConsecutiveFailures(t *testing.T) {
	cb := circuitbreaker.New("cache", circuitbreaker.WithFailureThreshold(2))
	ctx := context.Background()

	_ = cb.Execute(ctx, fail)
	require.NoError(t, cb.Execute(ctx, succeed))
	_ = cb.Execute(ctx, fail)

	assert.Equal(t, circuitbreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_HalfOpen(t *testing.T) {
	newOpen := func(t *testing.T, successes int) *circuitbreaker.CircuitBreaker {
		cb := circuitbreaker.New("cache",
			circuitbreaker.WithFailureThreshold(1),
			circuitbreaker.WithSuccessThreshold(successes),
			circuitbreaker.WithOpenFor(time.Millisecond),
		)
		_ = cb.Execute(context.Background(), fail)
		require.Equal(t, circuitbreaker.StateOpen, cb.State())
		time.Sleep(5 * time.Millisecond)
		return cb
	}

	t.Run("trial call succeeds", func(t *testing.T) {
		cb := newOpen(t, 1)
		require.NoError(t, cb.Execute(context.Background(), succeed))
		assert.Equal(t, circuitbreaker.StateClosed, cb.State())
	})

	t.Run("trial call fails", func(t *testing.T) {
		cb := newOpen(t, 1)
		assert.ErrorIs(t, cb.Execute(context.Background(), fail), errDown)
		assert.Equal(t, circuitbreaker.StateOpen, cb.State())
	})

	t.Run("needs consecutive successes", func(t *testing.T) {
		cb := newOpen(t, 2)
		require.NoError(t, cb.Execute(context.Background(), succeed))
		assert.Equal(t, circuitbreaker.StateHalfOpen, cb.State())
		require.NoError(t, cb.Execute(context.Background(), succeed))
		assert.Equal(t, circuitbreaker.StateClosed, cb.State())
	})

	t.Run("one trial at a time", func(t *testing.T) {
		cb := newOpen(t, 1)
		entered, release := make(chan struct{}), make(chan struct{})

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = cb.Execute(context.Background(), func(context.Context) error {
				close(entered)
				<-release
				return nil
			})
		}()
		<-entered

		assert.ErrorIs(t, cb.Execute(context.Background(), succeed), circuitbreaker.ErrCircuitOpen)
		close(release)
		wg.Wait()
		assert.Equal(t, circuitbreaker.StateClosed, cb.State())
	})
}

func TestCircuitBreaker_IsFailure(t *testing.T) {
	notFound := errors.New("redis: nil")
	cb := circuitbreaker.New("cache",
		circuitbreaker.WithFailureThreshold(1),
		circuitbreaker.WithIsFailure(func(err error) bool { return !errors.Is(err, notFound) }),
	)
	ctx := context.Background()

	assert.ErrorIs(t, cb.Execute(ctx, func(context.Context) error { return notFound }), notFound)
	assert.Equal(t, circuitbreaker.StateClosed, cb.State(), "misses are not failures")

	_ = cb.Execute(ctx, fail)
	assert.Equal(t, circuitbreaker.StateOpen, cb.State())
}

func TestCacheBreaker(t *testing.T) {
	var names []string
	cb := circuitbreaker.CacheBreaker(nil, func(name string, _, _ circuitbreaker.State) {
		names = append(names, name)
	})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_ = cb.Execute(ctx, fail)
	}
	assert.Equal(t, circuitbreaker.StateClosed, cb.State())
	_ = cb.Execute(ctx, fail)
	assert.Equal(t, circuitbreaker.StateOpen, cb.State())
	assert.Equal(t, []string{"redis-cache"}, names)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "closed", circuitbreaker.StateClosed.String())
	assert.Equal(t, "open", circuitbreaker.StateOpen.String())
	assert.Equal(t, "half-open", circuitbreaker.StateHalfOpen.String())
	assert.Equal(t, "unknown", circuitbreaker.State(9).String())
}
