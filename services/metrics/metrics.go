// Package metrics provides Prometheus metrics for the kiosk session core.
// Labels are bounded enums only: no session, request or transaction ids.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TransitionsTotal counts applied events by origin screen, event and destination screen.
	TransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "visionvend_session_transitions_total",
		Help: "Total number of applied session events, by from screen, event and to screen.",
	}, []string{"from", "event", "to"})

	// RejectedEventsTotal counts events that did not change state, by reason.
	RejectedEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "visionvend_session_rejected_events_total",
		Help: "Total number of rejected or discarded session events, by event and reason.",
	}, []string{"event", "reason"})

	// UnlockOutcomesTotal counts resolved unlock requests.
	UnlockOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "visionvend_unlock_outcomes_total",
		Help: "Total number of unlock outcomes applied to a session, by status.",
	}, []string{"status"})

	// PaymentOutcomesTotal counts payment setup outcomes.
	PaymentOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "visionvend_payment_outcomes_total",
		Help: "Total number of payment setup outcomes, by stage and status.",
	}, []string{"stage", "status"})

	// CurrentScreen is 1 for the screen currently displayed and 0 for the rest.
	CurrentScreen = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "visionvend_session_screen",
		Help: "Currently displayed kiosk screen (1 = active).",
	}, []string{"screen"})

	// SnapshotPublishFailuresTotal counts snapshot writes the read model could not store.
	SnapshotPublishFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "visionvend_snapshot_publish_failures_total",
		Help: "Total number of snapshot publish failures.",
	})
)

// Rejection reasons.
const (
	ReasonAlreadyPending    = "already_pending"
	ReasonGuard             = "guard"
	ReasonSuperseded        = "superseded"
	ReasonInvalidTransition = "invalid_transition"
)

// SetScreen marks screen as the active one.
func SetScreen(active string, all []string) {
	for _, s := range all {
		v := 0.0
		if s == active {
			v = 1
		}
		CurrentScreen.WithLabelValues(s).Set(v)
	}
}
