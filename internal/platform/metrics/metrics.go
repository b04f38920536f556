// Package metrics exposes Prometheus instruments for reviews, card
// selection and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "scry"

// Metrics holds every instrument the service records.
type Metrics struct {
	reviews           *prometheus.CounterVec
	gradeDuration     *prometheus.HistogramVec
	selections        *prometheus.CounterVec
	noCandidates      prometheus.Counter
	recomputeFailures prometheus.Counter
	httpDuration      *prometheus.HistogramVec
}

// New registers the instruments with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		reviews: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reviews_total",
				Help:      "Recorded reviews by card type and score",
			},
			[]string{"card_type", "score"},
		),
		gradeDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "grade_duration_seconds",
				Help:      "Time spent grading an answer",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"card_type"},
		),
		selections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "selections_total",
				Help:      "Selected cards by candidate pool",
			},
			[]string{"stage", "struggling"},
		),
		noCandidates: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "selections_empty_total",
				Help:      "Selections that found no card",
			},
		),
		recomputeFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "topic_recompute_failures_total",
				Help:      "Topic aggregate recomputations that failed after a review",
			},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by route and status",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
	}
}

// ObserveReview counts a recorded review and its grading latency.
func (m *Metrics) ObserveReview(cardType string, score int, grading time.Duration) {
	m.reviews.WithLabelValues(cardType, strconv.Itoa(score)).Inc()
	m.gradeDuration.WithLabelValues(cardType).Observe(grading.Seconds())
}

// ObserveSelection counts a selected card.
func (m *Metrics) ObserveSelection(stage string, struggling bool) {
	m.selections.WithLabelValues(stage, strconv.FormatBool(struggling)).Inc()
}

// ObserveNoCandidates counts an empty selection.
func (m *Metrics) ObserveNoCandidates() {
	m.noCandidates.Inc()
}

// ObserveRecomputeFailure counts a failed topic recomputation.
func (m *Metrics) ObserveRecomputeFailure() {
	m.recomputeFailures.Inc()
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
