// Package metrics exposes Prometheus metrics for suspicious-activity detection.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds detection counters.
type Metrics struct {
	AlertsDetected *prometheus.CounterVec
	ScansRun       prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		AlertsDetected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vigil_suspicious_alerts_total",
			Help: "Suspicious-activity alerts produced, by activity type and severity.",
		}, []string{"activity_type", "severity"}),
		ScansRun: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vigil_suspicious_scans_total",
			Help: "Suspicious-activity scans executed.",
		}),
	}
}
