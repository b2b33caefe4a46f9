// Package metrics defines the Prometheus instruments for the valuation
// conversation engine and exposes the scrape handler.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for processed conversation steps.
const (
	OutcomeAccepted  = "accepted"
	OutcomeRejected  = "rejected"
	OutcomeCompleted = "completed"
)

var (
	// SessionsStarted counts started valuation conversations.
	SessionsStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "valuation_sessions_started_total",
		Help: "Total number of valuation conversations started",
	})

	// StepsProcessed counts processed conversation steps by outcome.
	StepsProcessed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "valuation_steps_processed_total",
		Help: "Total number of conversation steps processed",
	}, []string{"outcome"})

	// ValuationsCompleted counts completed valuations.
	ValuationsCompleted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "valuation_completed_total",
		Help: "Total number of completed valuations",
	})

	// StepDuration observes how long a conversation step takes to process.
	StepDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name: "valuation_step_duration_seconds",
		Help: "Duration of conversation step processing",
	})
)

func init() {
	prometheus.MustRegister(SessionsStarted, StepsProcessed, ValuationsCompleted, StepDuration)
}

// Handler returns the HTTP handler serving the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
