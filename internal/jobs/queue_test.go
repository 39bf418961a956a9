package jobs

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisQueue(t *testing.T) *RedisQueue {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return &RedisQueue{Client: client, Key: "test:jobs"}
}

func TestRedisQueue_EnqueueDequeueRoundTrip(t *testing.T) {
	queue := setupRedisQueue(t)
	ctx := context.Background()

	payload, err := json.Marshal(map[string]string{"consultant": "5", "reason": "compliance"})
	require.NoError(t, err)
	require.NoError(t, queue.Enqueue(ctx, Job{Name: JobRevoke, Payload: payload}))

	job, err := queue.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, JobRevoke, job.Name)
	assert.Equal(t, 0, job.Attempt)
	assert.JSONEq(t, string(payload), string(job.Payload))
}

func TestRedisQueue_DequeueOrderIsFIFO(t *testing.T) {
	queue := setupRedisQueue(t)
	ctx := context.Background()

	require.NoError(t, queue.Enqueue(ctx, Job{Name: JobRevoke}))
	require.NoError(t, queue.Enqueue(ctx, Job{Name: JobReissue}))

	first, err := queue.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	second, err := queue.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, JobRevoke, first.Name)
	assert.Equal(t, JobReissue, second.Name)
}

func TestRedisQueue_DequeueEmptyTimesOut(t *testing.T) {
	queue := setupRedisQueue(t)

	job, err := queue.Dequeue(context.Background(), 50*time.Millisecond)
	require.NoError(t, err)
	assert.Nil(t, job)
}

func TestMemoryQueue_Drain(t *testing.T) {
	queue := &MemoryQueue{}
	ctx := context.Background()

	require.NoError(t, queue.Enqueue(ctx, Job{Name: JobNotify}))
	require.NoError(t, queue.Enqueue(ctx, Job{Name: JobRevoke}))

	jobs := queue.Drain()
	require.Len(t, jobs, 2)
	assert.Equal(t, JobNotify, jobs[0].Name)
	assert.Empty(t, queue.Drain())
}
