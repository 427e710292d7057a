package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rfpwatch"

// Metrics owns a private registry so tests can build as many as they like.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	sourceFragments *prometheus.CounterVec
	sourceFailures  *prometheus.CounterVec
	sourceDuration  *prometheus.HistogramVec
	ingestRuns      *prometheus.CounterVec
	generationSize  prometheus.Gauge
	lastSuccess     prometheus.Gauge
	httpRequests    *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{Registry: prometheus.NewRegistry()}

	m.sourceFragments = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "source_fragments_total",
		Help:      "Raw fragments returned by each source.",
	}, []string{"source"})
	m.sourceFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "source_failures_total",
		Help:      "Source fetches that failed.",
	}, []string{"source"})
	m.sourceDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "source_fetch_seconds",
		Help:      "Source fetch latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"source"})
	m.ingestRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ingest_runs_total",
		Help:      "Ingestion runs by result.",
	}, []string{"result"})
	m.generationSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "generation_opportunities",
		Help:      "Opportunities in the most recently persisted generation.",
	})
	m.lastSuccess = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix time of the last successful ingestion run.",
	})
	m.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	m.cacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "response_cache_lookups_total",
		Help:      "Response cache lookups by outcome.",
	}, []string{"outcome"})

	m.Registry.MustRegister(
		m.sourceFragments,
		m.sourceFailures,
		m.sourceDuration,
		m.ingestRuns,
		m.generationSize,
		m.lastSuccess,
		m.httpRequests,
		m.cacheLookups,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) ObserveSource(source string, fragments int, dur time.Duration, failed bool) {
	if m == nil {
		return
	}
	m.sourceFragments.WithLabelValues(source).Add(float64(fragments))
	m.sourceDuration.WithLabelValues(source).Observe(dur.Seconds())
	if failed {
		m.sourceFailures.WithLabelValues(source).Inc()
	}
}

// ObserveIngest records a finished run. result is "ok", "kept_previous" or "error".
func (m *Metrics) ObserveIngest(result string, persisted int) {
	if m == nil {
		return
	}
	m.ingestRuns.WithLabelValues(result).Inc()
	if result == "ok" {
		m.generationSize.Set(float64(persisted))
		m.lastSuccess.SetToCurrentTime()
	}
}

func (m *Metrics) ObserveHTTP(route string, code int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.cacheLookups.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
