package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	EventsRecorded     *prometheus.CounterVec
	EventWriteFailures prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		EventsRecorded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vigil_auth_events_recorded_total",
			Help: "Total number of authentication events recorded",
		}, []string{"event_type", "success"}),
		EventWriteFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vigil_auth_event_write_failures_total",
			Help: "Authentication event writes swallowed after a persistence failure",
		}),
	}
}
