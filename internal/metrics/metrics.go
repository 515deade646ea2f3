package metrics

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	FeedRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alelysee_feed_requests_total",
			Help: "Feed requests, by outcome (ok, empty, error).",
		},
		[]string{"outcome"},
	)

	FeedResets = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "alelysee_feed_view_resets_total",
			Help: "Times a user's view history was cleared because the feed was exhausted.",
		},
	)

	FeedLength = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "alelysee_feed_merged_length",
			Help:    "Number of videos in the merged feed before pagination.",
			Buckets: []float64{0, 5, 10, 20, 30, 40, 50},
		},
	)

	SourceDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "alelysee_feed_source_duration_seconds",
			Help:    "Candidate source query duration, by source.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	SourceCandidates = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "alelysee_feed_source_candidates",
			Help:    "Candidates returned per query, by source.",
			Buckets: []float64{0, 1, 5, 10, 15, 20},
		},
		[]string{"source"},
	)

	ViewsRecorded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "alelysee_views_recorded_total",
			Help: "Mark-viewed calls accepted.",
		},
	)

	BookmarkToggles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alelysee_bookmark_toggles_total",
			Help: "Bookmark toggles, by resulting state.",
		},
		[]string{"state"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "alelysee_api_request_duration_seconds",
			Help:    "HTTP request duration in seconds, by endpoint and method.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	RequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "alelysee_requests_in_flight",
			Help: "Number of HTTP requests currently being served.",
		},
	)

	CacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "alelysee_cache_hits_total",
			Help: "Total Redis cache hits.",
		},
	)

	CacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "alelysee_cache_misses_total",
			Help: "Total Redis cache misses.",
		},
	)

	CacheInvalidations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "alelysee_cache_invalidations_total",
			Help: "Target pages dropped from cache after vote or video changes.",
		},
	)

	BreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "alelysee_store_breaker_state",
			Help: "Store circuit breaker state (0=closed, 1=half-open, 2=open).",
		},
		[]string{"name"},
	)
)

// Register registers every collector with the default registry. Call once at
// startup. pool may be nil when the store is not Postgres.
func Register(pool *pgxpool.Pool) {
	prometheus.MustRegister(
		FeedRequests,
		FeedResets,
		FeedLength,
		SourceDuration,
		SourceCandidates,
		ViewsRecorded,
		BookmarkToggles,
		RequestDuration,
		RequestsInFlight,
		CacheHits,
		CacheMisses,
		CacheInvalidations,
		BreakerState,
	)

	// DB pool gauges read live stats from pgxpool
	if pool != nil {
		prometheus.MustRegister(
			prometheus.NewGaugeFunc(
				prometheus.GaugeOpts{
					Name: "alelysee_db_connection_pool_active",
					Help: "Number of active database connections.",
				},
				func() float64 { return float64(pool.Stat().AcquiredConns()) },
			),
			prometheus.NewGaugeFunc(
				prometheus.GaugeOpts{
					Name: "alelysee_db_connection_pool_idle",
					Help: "Number of idle database connections.",
				},
				func() float64 { return float64(pool.Stat().IdleConns()) },
			),
		)
	}
}
