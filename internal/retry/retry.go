// Package retry runs an operation until a success predicate holds or the
// attempt budget is spent. Attempts run strictly one after another.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/whaaaley/cynthia/common/logger"
)

var (
	// ErrValidationFailed is the attempt error when the operation returned
	// but its result did not satisfy IsSuccess.
	ErrValidationFailed = errors.New("validation failed")
	// ErrExhausted wraps the last attempt error once the budget is spent.
	ErrExhausted = errors.New("retries exhausted")
)

type Options[T any] struct {
	// Name appears in logs and in the terminal error, e.g. "generation".
	Name      string
	Operation func(ctx context.Context, attempt int) (T, error)
	// IsSuccess defaults to accepting every result that came without error.
	IsSuccess func(T) bool
	// Retryable reports whether an attempt error is worth another attempt.
	// A false answer ends the loop with that error unchanged. Nil retries
	// every error.
	Retryable  func(error) bool
	MaxRetries int
}

// Do makes at most MaxRetries+1 attempts, fewer when Retryable rejects an
// error. The attempt number passed to
// Operation starts at 0. Context cancellation stops the loop between
// attempts and is returned as is.
func Do[T any](ctx context.Context, opts Options[T]) (T, error) {
	var zero T
	if opts.Operation == nil {
		return zero, errors.New("retry: nil operation")
	}
	maxRetries := max(opts.MaxRetries, 0)
	total := maxRetries + 1

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		attemptCtx := logger.WithLogFields(ctx, logger.LogFields{Attempt: logger.Ptr(attempt + 1)})
		start := time.Now()

		result, err := opts.Operation(attemptCtx, attempt)
		if err == nil && opts.IsSuccess != nil && !opts.IsSuccess(result) {
			err = ErrValidationFailed
		}

		if err == nil {
			slog.InfoContext(attemptCtx, "attempt succeeded",
				"operation", opts.Name,
				"attempt", attempt+1,
				"total", total,
				"duration_ms", time.Since(start).Milliseconds())
			return result, nil
		}

		lastErr = err
		slog.WarnContext(attemptCtx, "attempt failed",
			"operation", opts.Name,
			"attempt", attempt+1,
			"total", total,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err)

		if opts.Retryable != nil && !opts.Retryable(err) {
			slog.ErrorContext(attemptCtx, "attempt error not retryable, giving up",
				"operation", opts.Name,
				"attempt", attempt+1)
			return zero, err
		}
	}

	return zero, fmt.Errorf("%w: failed %s after %d attempts: %w",
		ErrExhausted, strings.ToLower(opts.Name), total, lastErr)
}
