package retry

import (
	"context"
	"errors"
	"time"

	"github.com/nguyentantai21042004/meeting-digest/internal/apperror"
	"github.com/nguyentantai21042004/meeting-digest/internal/logger"
)

type implEngine struct {
	stats    *Stats
	logger   logger.Logger
	classify func(error) *apperror.Error
	sleep    func(ctx context.Context, d time.Duration) error
	rand     func() float64
}

func (e *implEngine) Stats() *Stats {
	return e.stats
}

func (e *implEngine) Run(ctx context.Context, cfg Config, op Operation, progress ProgressFunc) error {
	cfg = cfg.normalized()

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := op(ctx)
		if err == nil {
			if attempt > 0 {
				e.stats.recordRecovered()
				e.logger.Info(ctx, "Succeeded after %d retries", attempt)
			}
			return nil
		}

		// the caller gave up; nothing to classify
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return err
		}

		classified := e.classify(err)
		e.stats.recordError(classified)

		if !classified.Retryable() || attempt >= cfg.MaxRetries {
			if classified.Retryable() {
				e.stats.recordExhausted()
			}
			return &Error{
				Attempts: attempt + 1,
				Cause:    classified.WithContext("attempts", attempt+1),
			}
		}

		delay := cfg.Delay(attempt, e.rand)
		e.logger.Warn(ctx, "Attempt %d/%d failed (%s), retrying in %s", attempt+1, cfg.MaxRetries+1, classified.Type(), delay)

		if progress != nil {
			progress(Update{
				Attempt:    attempt + 1,
				MaxRetries: cfg.MaxRetries,
				Delay:      delay,
				Err:        classified,
			})
		}

		if err := e.sleep(ctx, delay); err != nil {
			return err
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
