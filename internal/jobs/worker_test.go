package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"certlife-backend/internal/notifications"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWorker(t *testing.T, queue *RedisQueue) *Worker {
	worker := NewWorker(queue)
	worker.BackoffBase = time.Millisecond
	t.Cleanup(worker.Stop)
	return worker
}

func TestWorker_RunsRegisteredHandler(t *testing.T) {
	queue := setupRedisQueue(t)
	worker := startWorker(t, queue)

	var got atomic.Value
	worker.Register("test.echo", func(_ context.Context, payload json.RawMessage) error {
		got.Store(string(payload))
		return nil
	})
	worker.Start()

	payload := json.RawMessage(`{"hello":"world"}`)
	require.NoError(t, queue.Enqueue(context.Background(), Job{Name: "test.echo", Payload: payload}))

	require.Eventually(t, func() bool {
		v, _ := got.Load().(string)
		return v == `{"hello":"world"}`
	}, 5*time.Second, 10*time.Millisecond)
}

func TestWorker_RetriesTransientFailures(t *testing.T) {
	queue := setupRedisQueue(t)
	worker := startWorker(t, queue)

	var calls atomic.Int32
	worker.Register("test.flaky", func(context.Context, json.RawMessage) error {
		if calls.Add(1) < 3 {
			return fmt.Errorf("%w: transient", notifications.ErrDeliveryFailed)
		}
		return nil
	})
	worker.Start()

	require.NoError(t, queue.Enqueue(context.Background(), Job{Name: "test.flaky"}))

	require.Eventually(t, func() bool {
		return calls.Load() == 3
	}, 5*time.Second, 10*time.Millisecond)
}

func TestWorker_DropsPermanentFailures(t *testing.T) {
	queue := setupRedisQueue(t)
	worker := startWorker(t, queue)

	var calls atomic.Int32
	worker.Register("test.broken", func(context.Context, json.RawMessage) error {
		calls.Add(1)
		return errors.New("validation failed")
	})
	worker.Start()

	require.NoError(t, queue.Enqueue(context.Background(), Job{Name: "test.broken"}))

	require.Eventually(t, func() bool {
		return calls.Load() == 1
	}, 5*time.Second, 10*time.Millisecond)
	// No retry ever lands.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWorker_StopsRetryingAfterMaxAttempts(t *testing.T) {
	queue := setupRedisQueue(t)
	worker := startWorker(t, queue)
	worker.MaxAttempts = 2

	var calls atomic.Int32
	worker.Register("test.doomed", func(context.Context, json.RawMessage) error {
		calls.Add(1)
		return fmt.Errorf("%w: still down", notifications.ErrDeliveryFailed)
	})
	worker.Start()

	require.NoError(t, queue.Enqueue(context.Background(), Job{Name: "test.doomed"}))

	require.Eventually(t, func() bool {
		return calls.Load() == 2
	}, 5*time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(2), calls.Load())
}
