package fanout

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Suppression reasons
const (
	reasonSelf         = "self"
	reasonNotFound     = "not_found"
	reasonNoRecipients = "no_recipients"
)

var (
	notificationsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "insyd",
		Subsystem: "fanout",
		Name:      "notifications_total",
		Help:      "Notification records appended to the log, by verb.",
	}, []string{"verb"})

	fanOutFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "insyd",
		Subsystem: "fanout",
		Name:      "failures_total",
		Help:      "Fan-out operations that failed to write their batch, by verb.",
	}, []string{"verb"})

	fanOutSuppressed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "insyd",
		Subsystem: "fanout",
		Name:      "suppressed_total",
		Help:      "Fan-out operations that produced no records, by verb and reason.",
	}, []string{"verb", "reason"})
)
