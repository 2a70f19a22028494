package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	ActionsLogged    *prometheus.CounterVec
	LogWriteFailures prometheus.Counter
	LogsPurged       prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		ActionsLogged: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vigil_admin_actions_logged_total",
			Help: "Total number of admin audit logs written",
		}, []string{"action", "success"}),
		LogWriteFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vigil_admin_audit_write_failures_total",
			Help: "Admin audit writes that failed and were surfaced to the caller",
		}),
		LogsPurged: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vigil_admin_audit_logs_purged_total",
			Help: "Admin audit logs deleted by the retention purge",
		}),
	}
}
