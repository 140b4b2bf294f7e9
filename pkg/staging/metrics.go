package staging

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var (
	// clustersStaged counts staged clusters by result.
	// Labels: "success", "partial", "error"
	clustersStaged = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "valence_clusters_staged_total",
		Help: "Total clusters staged by result",
	}, []string{"result"})

	// slotOutcomes counts slots by final state.
	// Labels: "resolved", "unsolvable", "boundary"
	slotOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "valence_slot_outcomes_total",
		Help: "Total solved slots by outcome",
	}, []string{"outcome"})

	solveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "valence_solve_duration_seconds",
		Help:    "Duration of a single cluster solve",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
	})
)

var (
	tracerOnce    sync.Once
	stagingTracer trace.Tracer
)

// getTracer returns the OTel tracer, initializing it lazily so a process
// without a configured provider gets the no-op tracer.
func getTracer() trace.Tracer {
	tracerOnce.Do(func() {
		stagingTracer = otel.Tracer("valence/staging")
	})
	return stagingTracer
}
