// Package metrics exposes Prometheus metrics for the capacity engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the custom registry served on /metrics.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

// UtilizationRecordsTotal counts historical utilization rows upserted.
var UtilizationRecordsTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "resourcepro",
	Name:      "utilization_records_total",
	Help:      "Historical utilization records written by the daily aggregation",
})

// OverAllocatedResources is the number of resources above 100% in the last aggregation.
var OverAllocatedResources = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "resourcepro",
	Name:      "overallocated_resources",
	Help:      "Resources whose utilization exceeded 100% on the last recorded day",
})

// ForecastsTotal counts persisted demand forecasts by method.
var ForecastsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "resourcepro",
	Name:      "forecasts_total",
	Help:      "Demand forecast records generated, by method",
}, []string{"method"})

// ForecastRunsTotal counts forecast runs by outcome status.
var ForecastRunsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "resourcepro",
	Name:      "forecast_runs_total",
	Help:      "Forecast generation runs, by result status",
}, []string{"status"})

// EnhancerFailuresTotal counts failed forecast enhancement calls.
var EnhancerFailuresTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "resourcepro",
	Name:      "enhancer_failures_total",
	Help:      "Forecast enhancement calls that failed and degraded the result",
})

// SkillShortages is the number of skills at the demand score cap in the last analysis.
var SkillShortages = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "resourcepro",
	Name:      "skill_shortages",
	Help:      "Skills with demand but no available resources in the last analysis",
})

// JobDurationSeconds tracks daemon job duration.
var JobDurationSeconds = factory.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "resourcepro",
	Name:      "job_duration_seconds",
	Help:      "Time taken by scheduled jobs",
	Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
}, []string{"job"})

// NotificationsTotal counts digests sent by platform and outcome.
var NotificationsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "resourcepro",
	Name:      "notifications_total",
	Help:      "Digest notifications sent, by platform and outcome",
}, []string{"platform", "outcome"})
