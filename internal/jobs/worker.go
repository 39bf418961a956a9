package jobs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	defaultMaxAttempts = 5
	defaultBackoffBase = 5 * time.Second
	dequeueWait        = 2 * time.Second
)

// Handler executes one job payload. Returning a transient error (see
// IsTransient) re-enqueues the job with backoff; any other error drops it.
type Handler func(ctx context.Context, payload json.RawMessage) error

// Worker pops jobs from the Redis queue and runs them one at a time. Failed
// transient jobs are re-enqueued after an exponential backoff with jitter,
// up to MaxAttempts tries.
type Worker struct {
	Queue       *RedisQueue
	MaxAttempts int
	BackoffBase time.Duration

	handlers    map[string]Handler
	stopChan    chan struct{}
	stoppedChan chan struct{}
}

func NewWorker(queue *RedisQueue) *Worker {
	return &Worker{
		Queue:       queue,
		MaxAttempts: defaultMaxAttempts,
		BackoffBase: defaultBackoffBase,
		handlers:    make(map[string]Handler),
		stopChan:    make(chan struct{}),
		stoppedChan: make(chan struct{}),
	}
}

// Register binds a handler to a job name. Not safe to call after Start.
func (w *Worker) Register(name string, h Handler) {
	w.handlers[name] = h
}

func (w *Worker) Start() {
	log.Info().Int("max_attempts", w.MaxAttempts).Msg("Job worker starting")
	go w.run()
}

func (w *Worker) Stop() {
	close(w.stopChan)
	<-w.stoppedChan
	log.Info().Msg("Job worker stopped")
}

func (w *Worker) run() {
	defer close(w.stoppedChan)
	ctx := context.Background()

	for {
		select {
		case <-w.stopChan:
			return
		default:
		}

		job, err := w.Queue.Dequeue(ctx, dequeueWait)
		if err != nil {
			log.Error().Err(err).Msg("Failed to dequeue job")
			time.Sleep(dequeueWait)
			continue
		}
		if job == nil {
			continue
		}
		w.process(ctx, *job)
	}
}

func (w *Worker) process(ctx context.Context, job Job) {
	handler, ok := w.handlers[job.Name]
	if !ok {
		log.Error().Str("job", job.Name).Msg("No handler registered for job")
		return
	}

	err := handler(ctx, job.Payload)
	if err == nil {
		return
	}

	if !IsTransient(err) {
		log.Error().Err(err).Str("job", job.Name).Int("attempt", job.Attempt).
			Msg("Job failed permanently")
		return
	}

	attempts := job.Attempt + 1
	if attempts >= w.maxAttempts() {
		log.Error().Err(err).Str("job", job.Name).Int("attempts", attempts).
			Msg("Job exhausted retries")
		return
	}

	delay := Backoff(w.backoffBase(), job.Attempt)
	log.Warn().Err(err).Str("job", job.Name).Int("attempt", attempts).
		Dur("retry_in", delay).Msg("Job failed, scheduling retry")

	retry := job
	retry.Attempt = attempts
	time.AfterFunc(delay, func() {
		if err := w.Queue.Enqueue(context.Background(), retry); err != nil {
			log.Error().Err(err).Str("job", retry.Name).Msg("Failed to re-enqueue job")
		}
	})
}

func (w *Worker) maxAttempts() int {
	if w.MaxAttempts > 0 {
		return w.MaxAttempts
	}
	return defaultMaxAttempts
}

func (w *Worker) backoffBase() time.Duration {
	if w.BackoffBase > 0 {
		return w.BackoffBase
	}
	return defaultBackoffBase
}
