package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	metricsNamespace = "emission"
)

var (
	mintTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "mint_total",
			Help:      "Total number of mint calls by outcome",
		},
		[]string{"outcome"}, // outcome: "paid", "noop", "error"
	)

	rpcRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "rpc_requests_total",
			Help:      "Total number of RPC requests by method and status",
		},
		[]string{"method", "status"},
	)

	rpcRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "rpc_request_duration_seconds",
			Help:      "Time taken to serve an RPC request",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	checkpointSweepGauges = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "checkpoint_sweep_gauges",
		Help:      "Number of gauges visited by the last checkpoint sweep",
	})

	checkpointSweepFailed = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "checkpoint_sweep_failed",
		Help:      "Number of gauges that failed in the last checkpoint sweep",
	})

	checkpointSweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "checkpoint_sweep_duration_seconds",
		Help:      "Time taken by a full checkpoint sweep",
		Buckets:   prometheus.DefBuckets,
	})

	wsClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "ws_clients",
		Help:      "Number of connected websocket clients",
	})
)

// Handler returns the scrape endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// IncMint counts one mint call. outcome is "paid", "noop" or "error".
func IncMint(outcome string) {
	mintTotal.WithLabelValues(outcome).Inc()
}

// ObserveRPCRequest counts one served RPC request.
func ObserveRPCRequest(method string, status string, took time.Duration) {
	rpcRequestsTotal.WithLabelValues(method, status).Inc()
	rpcRequestDuration.WithLabelValues(method).Observe(took.Seconds())
}

// ObserveCheckpointSweep records the result of a full checkpoint sweep.
func ObserveCheckpointSweep(gauges int, failed int, took time.Duration) {
	checkpointSweepGauges.Set(float64(gauges))
	checkpointSweepFailed.Set(float64(failed))
	checkpointSweepDuration.Observe(took.Seconds())
}

// WSClientConnected and WSClientDisconnected track the websocket client count.
func WSClientConnected() {
	wsClients.Inc()
}

func WSClientDisconnected() {
	wsClients.Dec()
}
