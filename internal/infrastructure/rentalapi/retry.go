package rentalapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/carrental/storefront/internal/api/metrics"
	"github.com/carrental/storefront/internal/infrastructure/httpclient"
)

// RetryPolicy bounds the retry helper. Attempts counts the first call.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
}

// NoRetry issues exactly one attempt.
var NoRetry = RetryPolicy{Attempts: 1}

// Retry calls fn until it succeeds, a non-retryable error occurs or the
// attempts are exhausted, waiting Delay*(i+1) after the i-th failure.
// Only wrap idempotent operations; mutations must opt in explicitly.
func Retry[T any](ctx context.Context, p RetryPolicy, fn func(context.Context) (T, error)) (T, error) {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var zero T
	var lastErr error
	for i := 0; i < attempts; i++ {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err
		if i == attempts-1 || !retryable(err) {
			break
		}

		metrics.BackendRetriesTotal.Inc()
		timer := time.NewTimer(p.Delay * time.Duration(i+1))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, errors.Join(lastErr, ctx.Err())
		case <-timer.C:
		}
	}
	return zero, lastErr
}

// retryable rejects failures a second attempt cannot fix: client-side
// validation, cancellation and 4xx answers other than 408/429.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return false
	}

	status := 0
	var apiErr *APIError
	var se *httpclient.ServerError
	switch {
	case errors.As(err, &apiErr):
		if apiErr.Kind == KindValidation {
			return false
		}
		if apiErr.Kind == KindServer {
			status = apiErr.Status
		}
	case errors.As(err, &se):
		status = se.Status
	}
	if status >= 400 && status < 500 {
		return status == http.StatusRequestTimeout || status == http.StatusTooManyRequests
	}
	return true
}
