package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace"
)

var (
	sanctionsIssuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sanctions_issued_total",
			Help: "Total number of sanctions issued, by kind",
		},
		[]string{"kind"},
	)

	casesRecordedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cases_recorded_total",
			Help: "Total number of case ledger entries written",
		},
	)

	reconcileCyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconcile_cycles_total",
			Help: "Total number of reconciliation cycles, by outcome",
		},
		[]string{"status"},
	)

	reversalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sanction_reversals_total",
			Help: "Expired sanctions reversed by the reconciler, by kind and outcome",
		},
		[]string{"kind", "status"},
	)

	storeCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_call_duration_seconds",
			Help:    "Time spent in key-value store calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)
)

// Init registers the moderation metrics, installs a tracer provider and
// serves /metrics on addr.
func Init(addr string) error {
	prometheus.MustRegister(sanctionsIssuedTotal)
	prometheus.MustRegister(casesRecordedTotal)
	prometheus.MustRegister(reconcileCyclesTotal)
	prometheus.MustRegister(reversalsTotal)
	prometheus.MustRegister(storeCallDuration)

	tp := trace.NewTracerProvider()
	otel.SetTracerProvider(tp)

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.WithError(err).Error("metrics server failed")
		}
	}()

	return nil
}

// RecordSanctionIssued records one issued sanction of the given kind.
func RecordSanctionIssued(kind string) {
	sanctionsIssuedTotal.WithLabelValues(kind).Inc()
}

// RecordCaseWritten records one case ledger write.
func RecordCaseWritten() {
	casesRecordedTotal.Inc()
}

// RecordReconcileCycle records the outcome of one reconciliation cycle.
func RecordReconcileCycle(status string) {
	reconcileCyclesTotal.WithLabelValues(status).Inc()
}

// RecordReversal records a reversal attempt for an expired sanction.
func RecordReversal(kind, status string) {
	reversalsTotal.WithLabelValues(kind, status).Inc()
}

// TimeStoreCall returns a function that records the duration of one store
// call when invoked.
func TimeStoreCall(op string) func() {
	timer := prometheus.NewTimer(storeCallDuration.WithLabelValues(op))
	return func() { timer.ObserveDuration() }
}
