// Package metrics records pipeline counters with Prometheus and exports them
// to a node-exporter textfile for one-shot CLI invocations.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Stage result labels.
const (
	ResultSucceeded = "succeeded"
	ResultFailed    = "failed"
	ResultRejected  = "rejected"
	ResultSkipped   = "skipped"
)

// Recorder holds the pipeline collectors on a private registry.
type Recorder struct {
	registry *prometheus.Registry

	StageTransitions     *prometheus.CounterVec
	StageDuration        *prometheus.HistogramVec
	DistributionOutcomes *prometheus.CounterVec
	ExternalCalls        *prometheus.CounterVec
}

// New creates a recorder with all pipeline collectors registered.
func New() *Recorder {
	r := &Recorder{registry: prometheus.NewRegistry()}

	r.StageTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sanchaar_stage_transitions_total",
			Help: "Stage executions by stage and result",
		},
		[]string{"stage", "result"},
	)
	r.StageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sanchaar_stage_duration_seconds",
			Help:    "Stage execution time in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)
	r.DistributionOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sanchaar_distribution_outcomes_total",
			Help: "Publish attempts by platform and result",
		},
		[]string{"platform", "result", "error_kind"},
	)
	r.ExternalCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sanchaar_external_calls_total",
			Help: "Calls to external collaborators by service and result",
		},
		[]string{"service", "result"},
	)

	r.registry.MustRegister(r.StageTransitions, r.StageDuration, r.DistributionOutcomes, r.ExternalCalls)
	return r
}

// ObserveStage records one stage execution.
func (r *Recorder) ObserveStage(stage, result string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.StageTransitions.WithLabelValues(stage, result).Inc()
	r.StageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
}

// ObserveOutcome records one (platform, variant) publish attempt.
func (r *Recorder) ObserveOutcome(platform string, succeeded bool, errorKind string) {
	if r == nil {
		return
	}
	result := ResultSucceeded
	if !succeeded {
		result = ResultFailed
	}
	r.DistributionOutcomes.WithLabelValues(platform, result, errorKind).Inc()
}

// ObserveCall records one external collaborator call.
func (r *Recorder) ObserveCall(service string, err error) {
	if r == nil {
		return
	}
	result := ResultSucceeded
	if err != nil {
		result = ResultFailed
	}
	r.ExternalCalls.WithLabelValues(service, result).Inc()
}

// Gatherer exposes the private registry.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.registry
}

// WriteTextfile writes the current metric values in the text exposition
// format. The file is replaced atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
