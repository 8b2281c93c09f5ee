// Package metrics exposes backend sync outcomes to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/iota-uz/suggestion-admin/pkg/eventbus"
	"github.com/iota-uz/suggestion-admin/pkg/tablectl"
)

// SyncRecorder turns tablectl sync events into counters and latencies.
type SyncRecorder struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	rows     *prometheus.CounterVec
}

func NewSyncRecorder(reg prometheus.Registerer) (*SyncRecorder, error) {
	r := &SyncRecorder{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "suggestion_admin",
			Name:      "sync_calls_total",
			Help:      "Backend calls by table, operation, and outcome.",
		}, []string{"table", "op", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "suggestion_admin",
			Name:      "sync_duration_seconds",
			Help:      "Backend call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"table", "op"}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "suggestion_admin",
			Name:      "sync_rows_total",
			Help:      "Rows carried by successful backend calls.",
		}, []string{"table", "op"}),
	}
	for _, c := range []prometheus.Collector{r.calls, r.duration, r.rows} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *SyncRecorder) Observe(e *tablectl.SyncEvent) {
	outcome := "ok"
	if e.Err != nil {
		outcome = "error"
	}
	op := string(e.Op)
	r.calls.WithLabelValues(e.Table, op, outcome).Inc()
	r.duration.WithLabelValues(e.Table, op).Observe(e.Duration.Seconds())
	if e.Err == nil {
		r.rows.WithLabelValues(e.Table, op).Add(float64(e.Rows))
	}
}

// Subscribe attaches the recorder to bus.
func (r *SyncRecorder) Subscribe(bus eventbus.EventBus) {
	bus.Subscribe(r.Observe)
}
