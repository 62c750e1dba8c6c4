package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront_ingest"

// Metrics records ingestion counters and page latencies in a dedicated registry
type Metrics struct {
	registry      *prometheus.Registry
	upserts       *prometheus.CounterVec
	brandSyncs    *prometheus.CounterVec
	brandDuration *prometheus.HistogramVec
	socialPosts   prometheus.Counter
	pageDuration  *prometheus.HistogramVec
	pageErrors    *prometheus.CounterVec
}

// New creates and registers the ingestion metrics
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		upserts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upserts_total",
			Help:      "Catalog upserts by record kind and outcome.",
		}, []string{"kind", "outcome"}),
		brandSyncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "brand_syncs_total",
			Help:      "Brand syncs by outcome.",
		}, []string{"outcome"}),
		brandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "brand_sync_duration_seconds",
			Help:      "Duration of a single brand sync.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12),
		}, []string{"outcome"}),
		socialPosts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "social_posts_total",
			Help:      "Social posts upserted.",
		}),
		pageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "page_fetch_duration_seconds",
			Help:      "Latency of storefront catalog page requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		pageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_fetch_errors_total",
			Help:      "Failed storefront catalog page requests.",
		}, []string{"endpoint"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.upserts,
		m.brandSyncs,
		m.brandDuration,
		m.socialPosts,
		m.pageDuration,
		m.pageErrors,
	)
	return m
}

// RecordUpsert counts one collection or item upsert
func (m *Metrics) RecordUpsert(kind string, created bool) {
	outcome := "updated"
	if created {
		outcome = "added"
	}
	m.upserts.WithLabelValues(kind, outcome).Inc()
}

// RecordBrandSync counts a finished brand sync
func (m *Metrics) RecordBrandSync(outcome string, duration time.Duration) {
	m.brandSyncs.WithLabelValues(outcome).Inc()
	m.brandDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordSocialPosts counts upserted social posts
func (m *Metrics) RecordSocialPosts(count int) {
	m.socialPosts.Add(float64(count))
}

// ObservePage records a catalog page request
func (m *Metrics) ObservePage(endpoint string, duration time.Duration, err error) {
	m.pageDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
	if err != nil {
		m.pageErrors.WithLabelValues(endpoint).Inc()
	}
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
