// Package metrics 定义服务的 Prometheus 指标
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nextflix_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nextflix_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nextflix_recommendations_total",
			Help: "Recommendation requests by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	CandidatesScanned = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nextflix_recommendation_candidates",
			Help:    "Number of candidates scored per recommendation request",
			Buckets: []float64{0, 10, 50, 100, 250, 500, 1000},
		},
		[]string{"kind"},
	)

	EnrichmentRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nextflix_enrichment_requests_total",
			Help: "External enrichment lookups by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	EnrichmentCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nextflix_enrichment_cache_hits_total",
			Help: "Enrichment results served from the LRU cache",
		},
		[]string{"provider"},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nextflix_events_published_total",
			Help: "Domain events handed to the message bus",
		},
		[]string{"topic", "outcome"},
	)

	MoviesImported = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nextflix_movies_imported_total",
			Help: "Movies inserted through CSV import",
		},
	)
)

// ObserveHTTP 记录一次 HTTP 请求
func ObserveHTTP(method, route, status string, latency time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(latency.Seconds())
}

// RecordRecommendation 记录一次推荐请求
func RecordRecommendation(kind, outcome string, candidates int) {
	RecommendationsTotal.WithLabelValues(kind, outcome).Inc()
	if outcome == "ok" {
		CandidatesScanned.WithLabelValues(kind).Observe(float64(candidates))
	}
}

// RecordEnrichment outcome 取值 ok | miss | error
func RecordEnrichment(provider, outcome string) {
	EnrichmentRequests.WithLabelValues(provider, outcome).Inc()
}

func RecordEvent(topic string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	EventsPublished.WithLabelValues(topic, outcome).Inc()
}
