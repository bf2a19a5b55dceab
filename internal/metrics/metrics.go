package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeOK        = "ok"
	OutcomeFailed    = "failed"
	OutcomeDiscarded = "discarded"
	OutcomeInvalid   = "invalid"
)

var (
	PollCycles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "support_console_poll_cycles_total",
		Help: "Poll cycles by loop and outcome",
	}, []string{"loop", "outcome"})

	PollDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "support_console_poll_duration_seconds",
		Help:    "Latency of poll fetches",
		Buckets: prometheus.DefBuckets,
	}, []string{"loop"})

	Commands = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "support_console_commands_total",
		Help: "Admin commands by name and outcome",
	}, []string{"command", "outcome"})

	TicketsVisible = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "support_console_tickets_visible",
		Help: "Tickets in the local store after the last list replacement",
	})

	SessionExpirations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "support_console_session_expirations_total",
		Help: "Sessions torn down after an unauthorized response",
	})
)
