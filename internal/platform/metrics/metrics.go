package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the claim registry.
type Metrics struct {
	ClaimsCreated     prometheus.Counter
	ClaimsRevoked     prometheus.Counter
	ClaimsTransferred prometheus.Counter
	OpsRejected       *prometheus.CounterVec
	OpDurationMs      *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		ClaimsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "claimd_claims_created_total",
			Help: "Total number of claims successfully created",
		}),
		ClaimsRevoked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "claimd_claims_revoked_total",
			Help: "Total number of claims successfully revoked",
		}),
		ClaimsTransferred: promauto.NewCounter(prometheus.CounterOpts{
			Name: "claimd_claims_transferred_total",
			Help: "Total number of claims successfully transferred",
		}),
		OpsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "claimd_ops_rejected_total",
			Help: "Claim operations rejected by a precondition, labeled by error code",
		}, []string{"op", "code"}),
		OpDurationMs: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "claimd_op_duration_ms",
			Help:    "Latency of claim operations in milliseconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
		}, []string{"op"}),
	}
}
