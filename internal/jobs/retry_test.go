package jobs

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"certlife-backend/internal/notifications"

	"github.com/stretchr/testify/assert"
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestIsTransient(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.False(t, IsTransient(errors.New("consultant not found")))
	assert.False(t, IsTransient(notifications.ErrUnsupportedEvent))

	assert.True(t, IsTransient(notifications.ErrDeliveryFailed))
	assert.True(t, IsTransient(fmt.Errorf("%w: smtp unavailable", notifications.ErrDeliveryFailed)))
	assert.True(t, IsTransient(context.DeadlineExceeded))
	assert.True(t, IsTransient(timeoutError{}))
	assert.True(t, IsTransient(fmt.Errorf("dial redis: %w", timeoutError{})))
}

func TestBackoff_GrowsExponentially(t *testing.T) {
	base := 100 * time.Millisecond
	for attempt := 0; attempt < 5; attempt++ {
		delay := Backoff(base, attempt)
		floor := base << uint(attempt)
		assert.GreaterOrEqual(t, delay, floor, "attempt %d", attempt)
		assert.Less(t, delay, floor+base, "attempt %d", attempt)
	}
}

func TestBackoff_CapsShiftAndDefaultsBase(t *testing.T) {
	// A huge attempt count must not overflow the shift.
	assert.Greater(t, Backoff(time.Millisecond, 1000), time.Duration(0))
	// Non-positive base falls back to one second.
	assert.GreaterOrEqual(t, Backoff(0, 0), time.Second)
}
