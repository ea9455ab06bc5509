// Package metrics exposes Prometheus metrics for the command bus, the event
// bus and the scheduler.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/uclouvain/admission-core/internal/domain/shared"
)

// Metrics implements bus.Recorder, messaging.Observer and
// scheduler.Observer. A nil *Metrics records nothing.
type Metrics struct {
	// Commands by name and outcome
	CommandsTotal *prometheus.CounterVec

	CommandDuration *prometheus.HistogramVec

	EventsPublished *prometheus.CounterVec

	// Handler executions by event type and result (ok, error)
	EventHandlersTotal *prometheus.CounterVec

	EventHandlerDuration *prometheus.HistogramVec

	// Scheduled job runs by job and result (ok, error)
	JobsTotal *prometheus.CounterVec

	JobDuration *prometheus.HistogramVec
}

// New registers every metric on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CommandsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "admission_commands_total",
			Help: "Total commands handled by name and outcome",
		}, []string{"command", "outcome"}),

		CommandDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "admission_command_duration_seconds",
			Help:    "Duration of command handling",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"command"}),

		EventsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "admission_events_published_total",
			Help: "Total domain events published by type",
		}, []string{"event_type"}),

		EventHandlersTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "admission_event_handlers_total",
			Help: "Total event handler executions by event type and result",
		}, []string{"event_type", "result"}),

		EventHandlerDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "admission_event_handler_duration_seconds",
			Help:    "Duration of event handler executions",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		}, []string{"event_type"}),

		JobsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "admission_jobs_total",
			Help: "Total scheduled job runs by job and result",
		}, []string{"job", "result"}),

		JobDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "admission_job_duration_seconds",
			Help:    "Duration of scheduled job runs",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 30, 120, 600},
		}, []string{"job"}),
	}
}

// ObserveCommand implements bus.Recorder.
func (m *Metrics) ObserveCommand(name, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.CommandsTotal.WithLabelValues(name, outcome).Inc()
	m.CommandDuration.WithLabelValues(name).Observe(d.Seconds())
}

// EventPublished implements messaging.Observer.
func (m *Metrics) EventPublished(eventType shared.EventType) {
	if m != nil {
		m.EventsPublished.WithLabelValues(string(eventType)).Inc()
	}
}

// HandlerExecuted implements messaging.Observer.
func (m *Metrics) HandlerExecuted(eventType shared.EventType, d time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.EventHandlersTotal.WithLabelValues(string(eventType), result).Inc()
	m.EventHandlerDuration.WithLabelValues(string(eventType)).Observe(d.Seconds())
}

// JobExecuted implements scheduler.Observer.
func (m *Metrics) JobExecuted(name string, d time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.JobsTotal.WithLabelValues(name, result).Inc()
	m.JobDuration.WithLabelValues(name).Observe(d.Seconds())
}
