package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the counters of the messaging core.
// A nil *Metrics is valid and records nothing, which keeps tests free of
// registry plumbing.
type Metrics struct {
	Registry *prometheus.Registry

	AdmissionsTotal      *prometheus.CounterVec
	EventsPublished      *prometheus.CounterVec
	EventsDelivered      *prometheus.CounterVec
	SinkFailures         *prometheus.CounterVec
	EditRecordsTotal     prometheus.Counter
	NotificationsTotal   prometheus.Counter
	TransactionRetries   prometheus.Counter
	ThreadNodesAssembled prometheus.Histogram
	QueueLength          *prometheus.GaugeVec
	QueueCapacity        *prometheus.GaugeVec
	EventsRelayed        *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		AdmissionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chat_rate_limit_decisions_total",
				Help: "Rate limiter decisions by outcome",
			},
			[]string{"outcome"},
		),
		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chat_events_published_total",
				Help: "Committed events handed to the post-commit bus",
			},
			[]string{"type"},
		),
		EventsDelivered: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chat_events_delivered_total",
				Help: "Events acknowledged after every sink consumed them",
			},
			[]string{"type"},
		),
		SinkFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chat_sink_failures_total",
				Help: "Post-commit sink failures, event left in the outbox",
			},
			[]string{"type"},
		),
		EditRecordsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "chat_edit_records_total",
			Help: "Edit records written",
		}),
		NotificationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "chat_notifications_total",
			Help: "Notifications created",
		}),
		TransactionRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "chat_transaction_retries_total",
			Help: "Badger transactions retried after a conflict",
		}),
		ThreadNodesAssembled: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "chat_thread_nodes",
			Help:    "Number of nodes per assembled thread",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
		QueueLength: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "chat_event_queue_length",
				Help: "Events waiting in a delivery shard",
			},
			[]string{"queue"},
		),
		QueueCapacity: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "chat_event_queue_capacity",
				Help: "Buffer size of a delivery shard",
			},
			[]string{"queue"},
		),
		EventsRelayed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chat_events_relayed_total",
				Help: "Pending outbox events handed back to the bus",
			},
			[]string{"type"},
		),
	}
}

func (m *Metrics) Admission(admitted bool) {
	if m == nil {
		return
	}
	outcome := "rejected"
	if admitted {
		outcome = "admitted"
	}
	m.AdmissionsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Published(eventType string) {
	if m == nil {
		return
	}
	m.EventsPublished.WithLabelValues(eventType).Inc()
}

func (m *Metrics) Delivered(eventType string) {
	if m == nil {
		return
	}
	m.EventsDelivered.WithLabelValues(eventType).Inc()
}

func (m *Metrics) SinkFailed(eventType string) {
	if m == nil {
		return
	}
	m.SinkFailures.WithLabelValues(eventType).Inc()
}

func (m *Metrics) EditRecorded() {
	if m == nil {
		return
	}
	m.EditRecordsTotal.Inc()
}

func (m *Metrics) NotificationCreated() {
	if m == nil {
		return
	}
	m.NotificationsTotal.Inc()
}

func (m *Metrics) TransactionRetried() {
	if m == nil {
		return
	}
	m.TransactionRetries.Inc()
}

func (m *Metrics) ThreadAssembled(nodes int) {
	if m == nil {
		return
	}
	m.ThreadNodesAssembled.Observe(float64(nodes))
}

func (m *Metrics) QueueSampled(name string, length, capacity int) {
	if m == nil {
		return
	}
	m.QueueLength.WithLabelValues(name).Set(float64(length))
	m.QueueCapacity.WithLabelValues(name).Set(float64(capacity))
}

func (m *Metrics) Relayed(eventType string) {
	if m == nil {
		return
	}
	m.EventsRelayed.WithLabelValues(eventType).Inc()
}
