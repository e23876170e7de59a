package metrics

import (
	"SentimentOracle/internal/domain/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	cycles         *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	lastPrice      *prometheus.GaugeVec
	sentimentScore prometheus.Gauge
	signals        *prometheus.CounterVec
	latency        *prometheus.HistogramVec
}

// New creates a Prometheus recorder registered on reg (the default registry when nil).
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		cycles: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentiment_refresh_cycles_total",
				Help: "Refresh cycles by outcome",
			},
			[]string{"status"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentiment_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sentiment_last_price",
				Help: "Last close price seen for a symbol",
			},
			[]string{"symbol"},
		),
		sentimentScore: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "sentiment_score",
				Help: "Latest aggregated sentiment score in [-1, 1]",
			},
		),
		signals: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentiment_signals_total",
				Help: "Signals emitted by value",
			},
			[]string{"signal"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sentiment_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordCycle counts a finished refresh cycle.
func (r *Recorder) RecordCycle(status string) {
	r.cycles.WithLabelValues(status).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordSentiment stores the latest score and counts the signal.
func (r *Recorder) RecordSentiment(score float64, signal models.Signal) {
	r.sentimentScore.Set(score)
	r.signals.WithLabelValues(string(signal)).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// Noop discards all measurements.
type Noop struct{}

func (Noop) RecordCycle(string)                     {}
func (Noop) RecordError(string)                     {}
func (Noop) RecordLastPrice(string, float64)        {}
func (Noop) RecordSentiment(float64, models.Signal) {}
func (Noop) RecordLatency(string, float64)          {}
