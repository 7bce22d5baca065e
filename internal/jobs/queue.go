// Package jobs schedules background work in Redis and runs it on a bounded worker pool.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"inkpress/internal/middleware"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Job names.
const (
	EmailWelcome    = "email.welcome"
	EmailLoginAlert = "email.login_alert"
	EmailNewPost    = "email.new_post"
	DigestWeekly    = "digest.weekly"
)

const scheduledKey = "jobs:scheduled"

// ErrQueueUnavailable is returned when the queue has no Redis client.
var ErrQueueUnavailable = errors.New("job queue unavailable")

// Schedule says when a submitted job first runs and whether it repeats.
type Schedule struct {
	delay time.Duration
	every time.Duration
}

// Now runs the job as soon as a worker polls.
func Now() Schedule { return Schedule{} }

// After runs the job once, d from now.
func After(d time.Duration) Schedule { return Schedule{delay: d} }

// Every runs the job every d, starting d from now.
func Every(d time.Duration) Schedule { return Schedule{delay: d, every: d} }

// Envelope is the stored form of a scheduled job.
type Envelope struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Payload  json.RawMessage `json:"payload,omitempty"`
	Every    time.Duration   `json:"every,omitempty"`
	Attempts int             `json:"attempts,omitempty"`
}

// Queue keeps scheduled jobs in a Redis sorted set scored by due time in milliseconds.
type Queue struct {
	rdb *redis.Client
	key string
	now func() time.Time
}

// NewQueue returns a queue on rdb.
func NewQueue(rdb *redis.Client) *Queue {
	return &Queue{rdb: rdb, key: scheduledKey, now: time.Now}
}

// Submit schedules name with payload.
func (q *Queue) Submit(ctx context.Context, name string, payload interface{}, when Schedule) error {
	if q == nil || q.rdb == nil {
		return ErrQueueUnavailable
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", name, err)
	}
	env := Envelope{
		ID:      uuid.NewString(),
		Name:    name,
		Payload: raw,
		Every:   when.every,
	}
	return q.enqueue(ctx, env, q.now().Add(when.delay))
}

func (q *Queue) enqueue(ctx context.Context, env Envelope, due time.Time) error {
	member, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode job %s: %w", env.Name, err)
	}
	return q.rdb.ZAdd(ctx, q.key, redis.Z{
		Score:  float64(due.UnixMilli()),
		Member: member,
	}).Err()
}

// EnsureRecurring schedules a recurring job unless one with the same name is
// already queued. It reports whether a new job was added.
func (q *Queue) EnsureRecurring(ctx context.Context, name string, payload interface{}, every time.Duration) (bool, error) {
	if q == nil || q.rdb == nil {
		return false, ErrQueueUnavailable
	}
	members, err := q.rdb.ZRange(ctx, q.key, 0, -1).Result()
	if err != nil {
		return false, err
	}
	for _, m := range members {
		var env Envelope
		if json.Unmarshal([]byte(m), &env) == nil && env.Name == name && env.Every > 0 {
			return false, nil
		}
	}
	if err := q.Submit(ctx, name, payload, Every(every)); err != nil {
		return false, err
	}
	return true, nil
}

// Claim removes and returns up to limit due jobs. A job is owned by whichever
// caller's ZREM succeeds, so concurrent workers never run the same occurrence.
func (q *Queue) Claim(ctx context.Context, limit int) ([]Envelope, error) {
	if q == nil || q.rdb == nil {
		return nil, ErrQueueUnavailable
	}
	members, err := q.rdb.ZRangeByScore(ctx, q.key, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(q.now().UnixMilli(), 10),
		Count: int64(limit),
	}).Result()
	if err != nil {
		return nil, err
	}

	claimed := make([]Envelope, 0, len(members))
	for _, m := range members {
		removed, err := q.rdb.ZRem(ctx, q.key, m).Result()
		if err != nil {
			return claimed, err
		}
		if removed == 0 {
			continue
		}
		var env Envelope
		if err := json.Unmarshal([]byte(m), &env); err != nil {
			middleware.Logger.WarnContext(ctx, "dropping undecodable job", "error", err)
			continue
		}
		claimed = append(claimed, env)
	}
	return claimed, nil
}

// Pending returns the number of scheduled jobs, due or not.
func (q *Queue) Pending(ctx context.Context) (int64, error) {
	if q == nil || q.rdb == nil {
		return 0, ErrQueueUnavailable
	}
	return q.rdb.ZCard(ctx, q.key).Result()
}
