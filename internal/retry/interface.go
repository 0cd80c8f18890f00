package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/nguyentantai21042004/meeting-digest/internal/apperror"
)

// Operation is one attempt of a retried call.
type Operation func(ctx context.Context) error

// Update is sent to the progress callback before each retry sleep.
type Update struct {
	Attempt    int // 1-based retry number
	MaxRetries int
	Delay      time.Duration
	Err        *apperror.Error
}

// ProgressFunc receives retry updates. It runs synchronously.
type ProgressFunc func(Update)

// Engine runs operations with exponential backoff.
type Engine interface {
	// Run calls op until it succeeds, fails with a non-retryable error or
	// runs out of retries. Terminal failures are returned as *Error. A
	// cancelled ctx is returned as ctx.Err() without classification.
	Run(ctx context.Context, cfg Config, op Operation, progress ProgressFunc) error
	Stats() *Stats
}

// Error is returned once retrying stops.
type Error struct {
	Attempts int
	Cause    *apperror.Error
}

func (e *Error) Error() string {
	return fmt.Sprintf("failed after %d attempt(s): %v", e.Attempts, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Do is Run for operations that produce a value.
func Do[T any](ctx context.Context, e Engine, cfg Config, op func(context.Context) (T, error), progress ProgressFunc) (T, error) {
	var out T
	err := e.Run(ctx, cfg, func(ctx context.Context) error {
		v, err := op(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	}, progress)
	return out, err
}
