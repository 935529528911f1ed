package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	UpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_updates_total",
			Help: "Total telegram updates received, by update kind",
		},
		[]string{"kind"},
	)
	ConfirmationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_confirmations_total",
			Help: "Total admin verdicts on submitted proofs, by result",
		},
		[]string{"result"},
	)
	ProofsSubmittedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_proofs_submitted_total",
			Help: "Total proof photos forwarded to admins",
		},
	)
	RosterUploadsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_roster_uploads_total",
			Help: "Total successfully applied roster uploads",
		},
	)
	RateLimitedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_rate_limited_total",
			Help: "Total commands dropped by the rate limiter",
		},
	)
)

func init() {
	prometheus.MustRegister(
		UpdatesTotal,
		ConfirmationsTotal,
		ProofsSubmittedTotal,
		RosterUploadsTotal,
		RateLimitedTotal,
	)
}
