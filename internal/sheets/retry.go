package sheets

import (
	"context"
	"errors"
	"net/http"
	"time"

	"sheet_manager/internal/config"

	"github.com/rs/zerolog/log"
	"google.golang.org/api/googleapi"
)

// isRetryable reports whether a Sheets API failure is worth another attempt.
// 403 only counts when Google tags it as a rate limit.
func isRetryable(err error) bool {
	var gErr *googleapi.Error
	if !errors.As(err, &gErr) {
		return false
	}

	switch gErr.Code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable:
		return true
	case http.StatusForbidden:
		for _, item := range gErr.Errors {
			if item.Reason == "rateLimitExceeded" || item.Reason == "userRateLimitExceeded" {
				return true
			}
		}
	}
	return false
}

// withRetry runs fn until it succeeds, fails with a non-retryable error,
// or the attempts in cfg are exhausted. Each attempt gets its own timeout.
func withRetry(ctx context.Context, cfg config.RetryConfig, operation string, fn func(ctx context.Context) error) error {
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		attemptCtx, cancel := ctx, context.CancelFunc(func() {})
		if cfg.Timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		}
		err = fn(attemptCtx)
		cancel()

		if err == nil {
			return nil
		}
		if !isRetryable(err) || attempt == attempts-1 {
			return err
		}

		wait := cfg.Backoff(attempt)
		log.Warn().
			Err(err).
			Str("operation", operation).
			Int("attempt", attempt+1).
			Dur("backoff", wait).
			Msg("Sheets API request failed, retrying")

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return err
}
