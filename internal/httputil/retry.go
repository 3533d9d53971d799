// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"time"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// HTTP 429 responses. Tests override this to avoid real sleeps.
var RetryBaseDelay = 10 * time.Second

const defaultMaxRetries = 5

// StatusCoder is implemented by errors that carry the HTTP status of the
// response that caused them.
type StatusCoder interface {
	StatusCode() int
}

// IsRateLimited reports whether err, or any error it wraps, carries HTTP 429.
func IsRateLimited(err error) bool {
	var sc StatusCoder
	return errors.As(err, &sc) && sc.StatusCode() == http.StatusTooManyRequests
}

// RetryRateLimited calls fn and calls it again while it fails with a
// rate-limited error, backing off exponentially: RetryBaseDelay, then
// double each attempt (10 s, 20 s, 40 s, ...).
//
// This is a caller-side policy; the pipeline stages never retry on their
// own. When maxRetries is 0 the default (5) is used; a negative value
// disables retry. Any other error is returned immediately. If the context is
// cancelled during a backoff wait the function returns ctx.Err(). After
// exhausting retries the last error is returned.
func RetryRateLimited(ctx context.Context, maxRetries int, logger *slog.Logger, fn func(context.Context) error) error {
	if maxRetries == 0 {
		maxRetries = defaultMaxRetries
	}
	if logger == nil {
		logger = slog.Default()
	}

	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil || !IsRateLimited(err) {
			return err
		}

		if attempt >= maxRetries {
			return err
		}

		backoff := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
		logger.Warn("rate limited, retrying", "backoff", backoff, "attempt", attempt+1, "max_retries", maxRetries)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
}
