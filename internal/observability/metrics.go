package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkpress_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// PostsCreated counts posts created, split by draft state.
	PostsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkpress_posts_created_total",
		Help: "Total number of posts created",
	}, []string{"status"})

	// LikesRecorded counts like and unlike operations that changed state.
	LikesRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkpress_likes_recorded_total",
		Help: "Total number of like state changes",
	}, []string{"action"})

	// JobsProcessed counts background job runs by job name and outcome.
	JobsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkpress_jobs_processed_total",
		Help: "Total number of background job runs",
	}, []string{"job", "outcome"})

	// AIRateLimited counts generation requests the provider rejected with 429.
	AIRateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inkpress_ai_rate_limited_total",
		Help: "Total number of AI provider rate limit responses",
	})
)
