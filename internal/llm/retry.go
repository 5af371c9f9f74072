package llm

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"

	"researchengine/internal/errs"
)

// WithRetry wraps an ask_llm attempt with the pipeline's retry policy:
// exponential backoff starting at one second, doubling per attempt, up to
// maxRetries attempts total. A *errs.ValidationError returned by fn is
// retried; any other error is returned immediately (it is not a shape
// problem a retry can fix).
func WithRetry(ctx context.Context, maxRetries int, fn func(attempt int) (any, error)) (any, error) {
	attempt := 0
	op := func() (any, error) {
		attempt++
		result, err := fn(attempt)
		if err == nil {
			return result, nil
		}
		var verr *errs.ValidationError
		if errors.As(err, &verr) {
			return nil, err
		}
		return nil, backoff.Permanent(err)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.Multiplier = 2

	return backoff.Retry(ctx, op,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(maxRetries)),
	)
}
