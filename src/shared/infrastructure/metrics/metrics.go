package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry agrupa las métricas Prometheus del subsistema de ventas offline.
// Lado servidor: commits; lado terminal: pasadas de sincronización.
type Registry struct {
	reg *prometheus.Registry

	SalesCommitted   prometheus.Counter
	SalesDuplicate   prometheus.Counter
	SalesRejected    *prometheus.CounterVec
	CommitLatencySec prometheus.Histogram

	SyncPasses    prometheus.Counter
	SyncConfirmed prometheus.Counter
	SyncRejected  prometheus.Counter
	SyncTransient prometheus.Counter
}

// NewRegistry crea y registra las métricas del subsistema POS
func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	committed := prometheus.NewCounter(prometheus.CounterOpts{Name: "pos_sales_committed_total"})
	duplicate := prometheus.NewCounter(prometheus.CounterOpts{Name: "pos_sales_duplicate_replay_total"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "pos_sales_rejected_total"}, []string{"reason"})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pos_commit_latency_seconds",
		Buckets: prometheus.DefBuckets,
	})

	syncPasses := prometheus.NewCounter(prometheus.CounterOpts{Name: "pos_sync_passes_total"})
	syncConfirmed := prometheus.NewCounter(prometheus.CounterOpts{Name: "pos_sync_confirmed_total"})
	syncRejected := prometheus.NewCounter(prometheus.CounterOpts{Name: "pos_sync_needs_attention_total"})
	syncTransient := prometheus.NewCounter(prometheus.CounterOpts{Name: "pos_sync_transient_failures_total"})

	r.MustRegister(committed, duplicate, rejected, latency, syncPasses, syncConfirmed, syncRejected, syncTransient)

	return &Registry{
		reg:              r,
		SalesCommitted:   committed,
		SalesDuplicate:   duplicate,
		SalesRejected:    rejected,
		CommitLatencySec: latency,
		SyncPasses:       syncPasses,
		SyncConfirmed:    syncConfirmed,
		SyncRejected:     syncRejected,
		SyncTransient:    syncTransient,
	}
}

// Handler expone el registro para el endpoint /metrics
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
