package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pieceflow/dealbridge/internal/domain"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	QueueAdds        *prometheus.CounterVec
	QueueAddLatency  *prometheus.HistogramVec
	DealViewReads    *prometheus.CounterVec
	DealViewRowsRead *prometheus.HistogramVec
}

// New registers all instruments with the given Prometheus registerer and
// returns the populated Metrics struct.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		QueueAdds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "piece_queue_add_total",
			Help: "Piece messages offered to the queue, by outcome.",
		}, []string{"outcome"}),

		QueueAddLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "piece_queue_add_seconds",
			Help:    "Time spent in Add, from encoding to transport response.",
			Buckets: prometheus.DefBuckets,
		}, []string{"outcome"}),

		DealViewReads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "deal_view_reads_total",
			Help: "Deal stage view reads, by stage and outcome.",
		}, []string{"stage", "outcome"}),

		DealViewRowsRead: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "deal_view_rows_returned",
			Help:    "Rows returned per successful deal stage read.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 6),
		}, []string{"stage"}),
	}

	reg.MustRegister(
		m.QueueAdds,
		m.QueueAddLatency,
		m.DealViewReads,
		m.DealViewRowsRead,
	)

	return m
}

// QueueHook returns the callback expected by queue.ClientConfig.OnResult.
func (m *Metrics) QueueHook() func(outcome string, latency time.Duration) {
	return func(outcome string, latency time.Duration) {
		m.QueueAdds.WithLabelValues(outcome).Inc()
		m.QueueAddLatency.WithLabelValues(outcome).Observe(latency.Seconds())
	}
}

// DealViewHook returns the read callback expected by service.NewDealView.
// Centralises the prometheus calls so the service package stays import-free.
func (m *Metrics) DealViewHook() func(stage domain.Stage, outcome string, rows int) {
	return func(stage domain.Stage, outcome string, rows int) {
		m.DealViewReads.WithLabelValues(string(stage), outcome).Inc()
		if outcome == domain.OutcomeOK {
			m.DealViewRowsRead.WithLabelValues(string(stage)).Observe(float64(rows))
		}
	}
}
