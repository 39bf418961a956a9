package jobs

import (
	"context"
	"errors"
	"math/rand"
	"net"
	"time"

	"certlife-backend/internal/notifications"
)

// IsTransient classifies an error as retryable. Timeout-class failures and
// email delivery failures are retried; everything else (missing consultant,
// validation, caller bugs) is permanent.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, notifications.ErrDeliveryFailed) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}

// Backoff returns the delay before retry number attempt+1: exponential in the
// completed attempt count, plus up to one base interval of jitter.
func Backoff(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = time.Second
	}
	if attempt > 16 {
		attempt = 16
	}
	delay := base << uint(attempt)
	jitter := time.Duration(rand.Int63n(int64(base)))
	return delay + jitter
}
