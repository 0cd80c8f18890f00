package retry

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyentantai21042004/meeting-digest/internal/apperror"
)

// newTestEngine records sleeps instead of waiting.
func newTestEngine() (*implEngine, *[]time.Duration) {
	var slept []time.Duration
	e := New(nil, nil).(*implEngine)
	e.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return ctx.Err()
	}
	e.rand = func() float64 { return 0.5 }
	return e, &slept
}

func failing(times int, err error) (Operation, *int) {
	calls := 0
	return func(context.Context) error {
		calls++
		if calls <= times {
			return err
		}
		return nil
	}, &calls
}

func TestRun_RetryLaw(t *testing.T) {
	cfg := Config{MaxRetries: 5, InitialDelay: time.Second, MaxDelay: time.Minute}

	for k := 0; k < cfg.MaxRetries; k++ {
		e, _ := newTestEngine()
		op, calls := failing(k, &apperror.StatusError{Code: 503})

		var attempts []int
		err := e.Run(context.Background(), cfg, op, func(u Update) {
			attempts = append(attempts, u.Attempt)
		})

		require.NoError(t, err)
		assert.Equal(t, k+1, *calls)
		require.Len(t, attempts, k)
		for i, a := range attempts {
			assert.Equal(t, i+1, a)
		}
	}
}

func TestRun_RateLimitedExhausts(t *testing.T) {
	e, slept := newTestEngine()
	op, calls := failing(100, &apperror.StatusError{Code: 429, Message: "slow down"})

	cfg := Config{MaxRetries: 3, InitialDelay: time.Second, MaxDelay: 30 * time.Second, BackoffFactor: 2}
	err := e.Run(context.Background(), cfg, op, nil)

	var re *Error
	require.ErrorAs(t, err, &re)
	assert.Equal(t, 4, re.Attempts)
	assert.Equal(t, 4, *calls)
	assert.Equal(t, apperror.TypeAPIRateLimited, re.Cause.Type())
	assert.Equal(t, 4, re.Cause.Context()["attempts"])
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, *slept)

	var appErr *apperror.Error
	assert.ErrorAs(t, err, &appErr)

	snap := e.Stats().Snapshot()
	assert.Equal(t, 4, snap.ErrorsByType[apperror.TypeAPIRateLimited])
	assert.Equal(t, 4, snap.ErrorsByCategory[apperror.CategoryAPI])
	assert.Equal(t, 1, snap.Exhausted)
	assert.Zero(t, snap.SuccessfulRetries)
}

func TestRun_NonRetryableFailsFast(t *testing.T) {
	e, slept := newTestEngine()
	op, calls := failing(100, &apperror.StatusError{Code: 401})

	var updates int
	err := e.Run(context.Background(), DefaultConfig(), op, func(Update) { updates++ })

	var re *Error
	require.ErrorAs(t, err, &re)
	assert.Equal(t, 1, re.Attempts)
	assert.Equal(t, 1, *calls)
	assert.Zero(t, updates)
	assert.Empty(t, *slept)
	assert.Equal(t, apperror.TypeAuthExpired, re.Cause.Type())
	assert.Zero(t, e.Stats().Snapshot().Exhausted)
}

func TestRun_CountsRecoveries(t *testing.T) {
	e, _ := newTestEngine()
	op, _ := failing(2, errors.New("fetch failed"))

	require.NoError(t, e.Run(context.Background(), Config{MaxRetries: 3}, op, nil))
	assert.Equal(t, 1, e.Stats().Snapshot().SuccessfulRetries)
	assert.Equal(t, 2, e.Stats().Snapshot().ErrorsByType[apperror.TypeNetworkConnection])

	e.Stats().Reset()
	assert.Zero(t, e.Stats().Snapshot().SuccessfulRetries)
	assert.Empty(t, e.Stats().Snapshot().ErrorsByType)
}

func TestRun_Cancellation(t *testing.T) {
	t.Run("before the first attempt", func(t *testing.T) {
		e, _ := newTestEngine()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		op, calls := failing(0, nil)
		assert.ErrorIs(t, e.Run(ctx, DefaultConfig(), op, nil), context.Canceled)
		assert.Zero(t, *calls)
	})

	t.Run("during the retry sleep", func(t *testing.T) {
		e := New(nil, nil).(*implEngine)
		ctx, cancel := context.WithCancel(context.Background())

		op, calls := failing(100, &apperror.StatusError{Code: 503})
		err := e.Run(ctx, Config{MaxRetries: 5, InitialDelay: time.Hour}, op, func(Update) { cancel() })

		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, *calls)
	})

	t.Run("operation observes cancellation", func(t *testing.T) {
		e, _ := newTestEngine()
		ctx, cancel := context.WithCancel(context.Background())

		err := e.Run(ctx, DefaultConfig(), func(ctx context.Context) error {
			cancel()
			return ctx.Err()
		}, nil)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, e.Stats().Snapshot().ErrorsByType)
	})
}

func TestDo(t *testing.T) {
	e, _ := newTestEngine()
	calls := 0
	got, err := Do(context.Background(), e, Config{MaxRetries: 2}, func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("request timed out")
		}
		return "summary", nil
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, "summary", got)
}

func TestConfig_Delay(t *testing.T) {
	cfg := Config{InitialDelay: time.Second, MaxDelay: 10 * time.Second, BackoffFactor: 2}

	assert.Equal(t, time.Second, cfg.Delay(0, nil))
	assert.Equal(t, 2*time.Second, cfg.Delay(1, nil))
	assert.Equal(t, 8*time.Second, cfg.Delay(3, nil))
	assert.Equal(t, 10*time.Second, cfg.Delay(4, nil))

	cfg.Jitter = true
	cfg.JitterFraction = 0.1
	assert.Equal(t, 900*time.Millisecond, cfg.Delay(0, func() float64 { return 0 }))
	assert.Equal(t, time.Second, cfg.Delay(0, func() float64 { return 0.5 }))

	// no random source, no jitter
	assert.Equal(t, 4*time.Second, DefaultConfig().Delay(2, nil))
}

func TestStats_Collector(t *testing.T) {
	s := NewStats()
	s.recordError(apperror.New(apperror.TypeAPIRateLimited, "", nil))
	s.recordError(apperror.New(apperror.TypeAPIRateLimited, "", nil))
	s.recordRecovered()

	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(s))

	expected := `
# HELP meetdigest_errors_total Classified failures seen by the retry engine.
# TYPE meetdigest_errors_total counter
meetdigest_errors_total{category="API",type="API_RATE_LIMITED"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "meetdigest_errors_total"))
	assert.Equal(t, 3, testutil.CollectAndCount(s))
}

func TestStats_ResetKeepsExportedCounters(t *testing.T) {
	s := NewStats()
	s.recordError(apperror.New(apperror.TypeNetworkTimeout, "", nil))
	s.recordRecovered()
	s.Reset()
	s.recordRecovered()

	assert.Equal(t, 1, s.Snapshot().SuccessfulRetries)
	assert.Empty(t, s.Snapshot().ErrorsByType)

	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(s))

	expected := `
# HELP meetdigest_retry_recovered_total Operations that succeeded after at least one retry.
# TYPE meetdigest_retry_recovered_total counter
meetdigest_retry_recovered_total 2
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "meetdigest_retry_recovered_total"))
	assert.Equal(t, 3, testutil.CollectAndCount(s))
}
