package challenges

import "github.com/prometheus/client_golang/prometheus"

var (
	submissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "challenge_submissions_total",
			Help: "Total number of daily progress submissions",
		},
		[]string{"result"},
	)
	skippedEntriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "challenge_skipped_entries_total",
			Help: "Submitted entries skipped because the challenge was already completed today",
		},
	)
	rewardsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "challenge_rewards_total",
			Help: "Milestone rewards granted",
		},
		[]string{"tier"},
	)
	activeStreaks = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "challenge_active_streaks",
			Help: "Users whose streak is still alive (completed today or yesterday)",
		},
	)
)

// RegisterMetrics регистрирует метрики челленджей. Вызывается один раз из app.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(submissionsTotal, skippedEntriesTotal, rewardsTotal, activeStreaks)
}
