// Package metrics exposes Prometheus metrics for the generation service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonathan/salon-copy/internal/featured"
)

const namespace = "salon_copy"

// Metrics holds the service collectors and the registry they live in.
type Metrics struct {
	registry *prometheus.Registry

	Generations     *prometheus.CounterVec
	Classifications *prometheus.CounterVec
	StageDuration   *prometheus.HistogramVec
	ScrapedTitles   prometheus.Histogram
	ItemsRejected   prometheus.Counter
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	RegistryReloads *prometheus.CounterVec
}

// New creates a Metrics with its own registry. When reg is non-nil its
// state is exported on every scrape.
func New(reg *featured.Registry) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Generation requests by outcome and keyword type.",
		}, []string{"outcome", "keyword_type"}),
		Classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifications_total",
			Help:      "Keyword classifications by keyword type.",
		}, []string{"keyword_type"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"stage"}),
		ScrapedTitles: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scraped_titles",
			Help:      "Number of candidate titles per request.",
			Buckets:   prometheus.LinearBuckets(0, 10, 10),
		}),
		ItemsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_rejected_total",
			Help:      "Generated items dropped by output validation.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		RegistryReloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "featured_registry_reloads_total",
			Help:      "Featured keyword registry reloads by result.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Generations,
		m.Classifications,
		m.StageDuration,
		m.ScrapedTitles,
		m.ItemsRejected,
		m.HTTPRequests,
		m.HTTPDuration,
		m.RegistryReloads,
	)
	if reg != nil {
		m.registry.MustRegister(&RegistryCollector{registry: reg})
	}
	return m
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Gatherer exposes the underlying registry, mainly for tests.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// ObserveStage records how long a pipeline stage took.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordGeneration counts a finished generation request.
func (m *Metrics) RecordGeneration(outcome, keywordType string) {
	if m == nil {
		return
	}
	m.Generations.WithLabelValues(outcome, keywordType).Inc()
}

// RecordClassification counts a classification result.
func (m *Metrics) RecordClassification(keywordType string) {
	if m == nil {
		return
	}
	m.Classifications.WithLabelValues(keywordType).Inc()
}

// RecordRejected counts generated items dropped by output validation.
func (m *Metrics) RecordRejected(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ItemsRejected.Add(float64(n))
}

// RecordReload counts a registry reload attempt.
func (m *Metrics) RecordReload(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "failed"
	}
	m.RegistryReloads.WithLabelValues(result).Inc()
}
