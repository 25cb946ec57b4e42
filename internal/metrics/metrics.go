package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chat_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Business metrics
	UsersRegistered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_users_registered_total",
			Help: "Total users created through signup",
		},
	)

	MessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_sent_total",
			Help: "Total messages appended",
		},
		[]string{"room_type"}, // "channel", "private" or "adhoc"
	)

	SearchQueries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_search_queries_total",
			Help: "Total search queries",
		},
	)

	AssistantReplies = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_assistant_replies_total",
			Help: "Assistant replies by result",
		},
		[]string{"result"}, // "ok", "empty", "error"
	)

	SnapshotSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_snapshot_subscribers",
			Help: "Open websocket snapshot streams",
		},
	)

	SnapshotsCoalesced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_snapshots_coalesced_total",
			Help: "Snapshots replaced by a newer one before a stream sent them",
		},
	)

	// Rate limit metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_rate_limit_hits_total",
			Help: "Total rate limit hits",
		},
		[]string{"endpoint"},
	)

	BlockedRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_blocked_requests_total",
			Help: "Total blocked requests",
		},
		[]string{"reason"},
	)

	// Storage metrics
	StoreWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_store_writes_total",
			Help: "Durable writes by outcome",
		},
		[]string{"outcome"},
	)

	StoreLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chat_store_latency_seconds",
			Help:    "Key-value store operation latency",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
		},
		[]string{"op"},
	)

	PruneRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_prune_runs_total",
			Help: "Times media pruning ran after a quota failure",
		},
	)

	PrunedMessages = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_pruned_messages_total",
			Help: "Media messages discarded by pruning",
		},
	)

	StoreBytesUsed = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_store_bytes_used",
			Help: "Bytes accounted against the storage budget",
		},
	)
)
