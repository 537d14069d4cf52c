// Package metrics declares the Prometheus instrumentation surfaced by
// the design graph core, following the teacher's client_golang wiring
// convention: a Recorder of metrics constructed once, registered against
// a caller-supplied prometheus.Registerer, and passed by reference into
// the components that record against it.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder bundles every metric the core emits. A nil *Recorder is
// valid and turns every recording call into a no-op, so components can
// accept one unconditionally.
type Recorder struct {
	FramesAccepted      prometheus.Counter
	FramesDiscarded     prometheus.Counter
	ValidationErrors    *prometheus.CounterVec
	SnapshotTableSize   prometheus.Gauge
	DesignLoadDuration  prometheus.Histogram
	DesignSaveDuration  prometheus.Histogram
}

// NewRecorder constructs and registers every metric against reg. Pass
// prometheus.NewRegistry() for an isolated registry (tests, multiple
// designs in one process), or prometheus.DefaultRegisterer for the
// process-wide default.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		FramesAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "poietic_frames_accepted_total",
			Help: "Number of transient frames successfully accepted into history.",
		}),
		FramesDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "poietic_frames_discarded_total",
			Help: "Number of transient frames discarded without being accepted.",
		}),
		ValidationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "poietic_validation_errors_total",
			Help: "Number of validation failures encountered during accept, by phase.",
		}, []string{"phase"}),
		SnapshotTableSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "poietic_snapshot_table_size",
			Help: "Current number of live entries in the snapshot table.",
		}),
		DesignLoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "poietic_design_load_duration_seconds",
			Help:    "Time taken to load a design from its raw store representation.",
			Buckets: prometheus.DefBuckets,
		}),
		DesignSaveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "poietic_design_save_duration_seconds",
			Help:    "Time taken to write a design to its raw store representation.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(r.FramesAccepted, r.FramesDiscarded, r.ValidationErrors, r.SnapshotTableSize, r.DesignLoadDuration, r.DesignSaveDuration)
	}
	return r
}

func (r *Recorder) recordFrameAccepted() {
	if r == nil {
		return
	}
	r.FramesAccepted.Inc()
}

func (r *Recorder) recordFrameDiscarded() {
	if r == nil {
		return
	}
	r.FramesDiscarded.Inc()
}

func (r *Recorder) recordValidationError(phase string) {
	if r == nil {
		return
	}
	r.ValidationErrors.WithLabelValues(phase).Inc()
}

func (r *Recorder) setSnapshotTableSize(n int) {
	if r == nil {
		return
	}
	r.SnapshotTableSize.Set(float64(n))
}

// RecordFrameAccepted increments the accepted-frame counter.
func (r *Recorder) RecordFrameAccepted() { r.recordFrameAccepted() }

// RecordFrameDiscarded increments the discarded-frame counter.
func (r *Recorder) RecordFrameDiscarded() { r.recordFrameDiscarded() }

// RecordValidationError increments the validation-error counter for
// the given phase ("structural", "type", "edge", "constraint").
func (r *Recorder) RecordValidationError(phase string) { r.recordValidationError(phase) }

// SetSnapshotTableSize updates the snapshot table size gauge.
func (r *Recorder) SetSnapshotTableSize(n int) { r.setSnapshotTableSize(n) }
