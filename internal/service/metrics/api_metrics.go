package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	APILatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sentiment",
			Subsystem: "api",
			Name:      "latency_seconds",
			Help:      "Latency of dashboard API endpoints",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	APIErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sentiment",
			Subsystem: "api",
			Name:      "errors_total",
			Help:      "Errors by dashboard API endpoint",
		},
		[]string{"endpoint"},
	)

	WSClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "sentiment",
			Subsystem: "ws",
			Name:      "clients",
			Help:      "Connected dashboard websocket clients",
		},
	)
)

// Register adds the API collectors to the default registry once.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(APILatency, APIErrors, WSClients)
	})
}
