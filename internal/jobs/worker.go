package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"inkpress/internal/middleware"
	"inkpress/internal/observability"

	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"
)

// maxRetries is how many times a failed one-shot job is re-run.
const maxRetries = 3

// Handler runs one job occurrence.
type Handler func(ctx context.Context, payload json.RawMessage) error

// Worker polls a Queue and runs due jobs on a bounded goroutine pool.
type Worker struct {
	queue       *Queue
	handlers    map[string]Handler
	concurrency int
	poll        time.Duration
	backoff     func(attempt int) time.Duration
}

// NewWorker returns a worker for q.
func NewWorker(q *Queue, concurrency int, poll time.Duration) *Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	if poll <= 0 {
		poll = time.Second
	}
	return &Worker{
		queue:       q,
		handlers:    make(map[string]Handler),
		concurrency: concurrency,
		poll:        poll,
		backoff:     defaultBackoff,
	}
}

func defaultBackoff(attempt int) time.Duration {
	return time.Duration(attempt*attempt) * 30 * time.Second
}

// Handle registers h for jobs named name. It must be called before Run.
func (w *Worker) Handle(name string, h Handler) {
	w.handlers[name] = h
}

// Run polls until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	middleware.Logger.Info("job worker started",
		"concurrency", w.concurrency, "poll", w.poll.String())

	ticker := time.NewTicker(w.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			middleware.Logger.Info("job worker stopped")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce claims the currently due jobs, runs them and returns how many ran.
func (w *Worker) RunOnce(ctx context.Context) int {
	envs, err := w.queue.Claim(ctx, w.concurrency*4)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "job claim failed", "error", err)
	}
	if len(envs) == 0 {
		return 0
	}

	p := pool.New().WithMaxGoroutines(w.concurrency)
	for _, env := range envs {
		env := env
		p.Go(func() { w.process(ctx, env) })
	}
	p.Wait()
	return len(envs)
}

func (w *Worker) process(ctx context.Context, env Envelope) {
	h, ok := w.handlers[env.Name]
	if !ok {
		middleware.Logger.WarnContext(ctx, "no handler for job", "job", env.Name, "id", env.ID)
		observability.JobsProcessed.WithLabelValues(env.Name, "unknown").Inc()
		return
	}

	err := w.invoke(ctx, h, env)

	if env.Every > 0 {
		next := env
		next.Attempts = 0
		if rerr := w.queue.enqueue(ctx, next, w.queue.now().Add(env.Every)); rerr != nil {
			middleware.Logger.ErrorContext(ctx, "failed to reschedule recurring job",
				"job", env.Name, "id", env.ID, "error", rerr)
		}
	}

	if err == nil {
		observability.JobsProcessed.WithLabelValues(env.Name, "ok").Inc()
		return
	}

	if env.Every == 0 && env.Attempts < maxRetries {
		retry := env
		retry.Attempts++
		if rerr := w.queue.enqueue(ctx, retry, w.queue.now().Add(w.backoff(retry.Attempts))); rerr == nil {
			observability.JobsProcessed.WithLabelValues(env.Name, "retried").Inc()
			middleware.Logger.WarnContext(ctx, "job failed, retry scheduled",
				"job", env.Name, "id", env.ID, "attempt", retry.Attempts, "error", err)
			return
		}
	}

	observability.JobsProcessed.WithLabelValues(env.Name, "failed").Inc()
	middleware.Logger.ErrorContext(ctx, "job failed",
		"job", env.Name, "id", env.ID, "attempts", env.Attempts+1, "error", err)
}

func (w *Worker) invoke(ctx context.Context, h Handler, env Envelope) (err error) {
	ctx, span := observability.StartSpan(ctx, "job "+env.Name,
		attribute.String("job.id", env.ID),
		attribute.Int("job.attempt", env.Attempts))
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
		observability.EndSpan(span, err)
	}()
	return h(ctx, env.Payload)
}
