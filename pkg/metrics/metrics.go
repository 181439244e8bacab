// Package metrics defines the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// NudgesGenerated counts composed nudges by trigger and priority.
	NudgesGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retention_nudges_generated_total",
			Help: "Total number of nudge messages generated",
		},
		[]string{"trigger", "priority"},
	)

	// NudgeChecks counts check requests by outcome (nudge, none, error).
	NudgeChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retention_nudge_checks_total",
			Help: "Total number of nudge check requests by outcome",
		},
		[]string{"outcome"},
	)

	// NudgeInteractions counts recorded interactions by action.
	NudgeInteractions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retention_nudge_interactions_total",
			Help: "Total number of recorded nudge interactions",
		},
		[]string{"action"},
	)

	// RiskAssessments counts assessments by resulting level.
	RiskAssessments = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retention_risk_assessments_total",
			Help: "Total number of churn risk assessments by level",
		},
		[]string{"level"},
	)

	// CheckDuration observes nudge check handling latency.
	CheckDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "retention_nudge_check_duration_seconds",
			Help:    "Latency of nudge check handling",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// Register registers all service collectors with the given registry.
func Register(registry *prometheus.Registry) {
	registry.MustRegister(
		NudgesGenerated,
		NudgeChecks,
		NudgeInteractions,
		RiskAssessments,
		CheckDuration,
	)
}
