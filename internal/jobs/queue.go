// Package jobs runs the certificate lifecycle off the request path: a
// Redis-backed job queue, a worker loop with bounded retries, and the
// revoke/reissue/issue orchestration itself.
package jobs

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Job names routed by the worker.
const (
	JobRevoke  = "certificate.revoke"
	JobReissue = "certificate.reissue"
	JobNotify  = "certificate.notification"
)

const defaultQueueKey = "certlife:jobs"

// Job is one unit of background work. Attempt counts completed tries, so a
// freshly enqueued job carries zero.
type Job struct {
	Name    string          `json:"name"`
	Payload json.RawMessage `json:"payload"`
	Attempt int             `json:"attempt"`
}

// Queue hands jobs to the worker pool. The engine depends only on this
// capability, not on a concrete broker.
type Queue interface {
	Enqueue(ctx context.Context, job Job) error
}

// RedisQueue is the production queue: a Redis list pushed from the request
// side and popped by worker processes.
type RedisQueue struct {
	Client *redis.Client
	Key    string
}

func (q *RedisQueue) key() string {
	if q.Key != "" {
		return q.Key
	}
	return defaultQueueKey
}

func (q *RedisQueue) Enqueue(ctx context.Context, job Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return q.Client.LPush(ctx, q.key(), encoded).Err()
}

// Dequeue blocks up to timeout for the next job. Returns (nil, nil) when the
// wait times out with nothing to do.
func (q *RedisQueue) Dequeue(ctx context.Context, timeout time.Duration) (*Job, error) {
	res, err := q.Client.BRPop(ctx, timeout, q.key()).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	// BRPOP returns [key, value].
	var job Job
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// MemoryQueue collects jobs in process. Used by tests and by synchronous
// call sites that drain the queue themselves.
type MemoryQueue struct {
	mu   sync.Mutex
	jobs []Job
}

func (q *MemoryQueue) Enqueue(_ context.Context, job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	return nil
}

// Drain returns and clears the queued jobs.
func (q *MemoryQueue) Drain() []Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	jobs := q.jobs
	q.jobs = nil
	return jobs
}
