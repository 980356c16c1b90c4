package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	activityCreatedGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "club_service",
		Subsystem: "registry",
		Name:      "last_activity_created_timestamp_seconds",
		Help:      "Unix timestamp of the most recent activity persisted.",
	})
	checkInsSubmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "club_service",
		Subsystem: "ledger",
		Name:      "checkins_submitted_total",
		Help:      "Number of check-ins recorded.",
	})
	checkInsDecided = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "club_service",
		Subsystem: "ledger",
		Name:      "checkins_decided_total",
		Help:      "Number of check-in review decisions, labeled by decision.",
	}, []string{"decision"})
	gemsCredited = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "club_service",
		Subsystem: "ledger",
		Name:      "gems_credited_total",
		Help:      "Total gems credited to member balances.",
	})
)

func init() {
	prometheus.MustRegister(activityCreatedGauge, checkInsSubmitted, checkInsDecided, gemsCredited)
}

// RecordActivityCreated updates the registry watermark gauge.
func RecordActivityCreated(ts time.Time) {
	if ts.IsZero() {
		return
	}
	activityCreatedGauge.Set(float64(ts.Unix()))
}

// RecordCheckInSubmitted increments the submission counter.
func RecordCheckInSubmitted() {
	checkInsSubmitted.Inc()
}

// RecordCheckInDecided increments the decision counter for the given outcome.
func RecordCheckInDecided(decision string) {
	checkInsDecided.WithLabelValues(decision).Inc()
}

// RecordGemsCredited adds the credited amount to the gem counter.
func RecordGemsCredited(amount int) {
	gemsCredited.Add(float64(amount))
}
