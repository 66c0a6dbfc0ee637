package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/quocvuong92/leafify/internal/logging"
)

// RetryPolicy controls retries of follow-up chat requests. Identification
// is never retried.
type RetryPolicy struct {
	Attempts   int
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
}

// DefaultRetryPolicy is used unless a client is given another one
var DefaultRetryPolicy = RetryPolicy{
	Attempts:   3,
	Initial:    500 * time.Millisecond,
	Max:        5 * time.Second,
	Multiplier: 2.0,
}

// retryableStatus lists the transient HTTP statuses
var retryableStatus = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// IsRetryable reports whether err is a transport error with a transient
// status. Network failures without a status and application errors are not
// retried.
func IsRetryable(err error) bool {
	var transportErr *TransportError
	return errors.As(err, &transportErr) && retryableStatus[transportErr.StatusCode]
}

// Backoff returns the wait before retry number attempt (0-based)
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	backoff := p.Initial
	for i := 0; i < attempt && backoff < p.Max; i++ {
		backoff = time.Duration(float64(backoff) * p.Multiplier)
	}
	if backoff > p.Max {
		backoff = p.Max
	}
	return backoff
}

// WithRetry runs fn until it succeeds, fails with a non-retryable error, or
// the policy's attempts are used up.
func WithRetry[T any](ctx context.Context, p RetryPolicy, log *logging.FieldLogger, fn func() (T, error)) (T, error) {
	var zero T
	attempts := max(p.Attempts, 1)

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, fmt.Errorf("operation cancelled: %w", err)
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		if !IsRetryable(err) {
			return zero, err
		}
		lastErr = err

		if attempt == attempts-1 {
			break
		}
		wait := p.Backoff(attempt)
		if log != nil {
			log.Debug("retrying request", logging.Fields{
				"attempt": attempt + 1,
				"wait_ms": wait.Milliseconds(),
				"error":   err.Error(),
			})
		}
		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("operation cancelled: %w", ctx.Err())
		case <-time.After(wait):
		}
	}

	return zero, fmt.Errorf("gave up after %d attempts: %w", attempts, lastErr)
}
