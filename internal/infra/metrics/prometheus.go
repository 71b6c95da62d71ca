package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "segmenter_runs_total",
		Help: "Total number of segmentation runs, by status",
	}, []string{"status"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "segmenter_stage_duration_seconds",
		Help:    "Duration of pipeline stages",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
	}, []string{"stage"})

	MasksAcceptedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "segmenter_masks_accepted_total",
		Help: "Total number of accepted keyword masks",
	})

	KeywordsAbandonedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "segmenter_keywords_abandoned_total",
		Help: "Total number of abandoned keywords, by reason",
	}, []string{"reason"})

	FramesExtractedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "segmenter_frames_extracted_total",
		Help: "Total number of frames extracted from source videos",
	})

	FramesSkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "segmenter_frames_skipped_total",
		Help: "Total number of unreadable frames skipped during generation",
	})

	ArtifactsWrittenTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "segmenter_artifacts_written_total",
		Help: "Total number of combination artifacts written, by kind",
	}, []string{"kind"})

	ArtifactFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "segmenter_artifact_failures_total",
		Help: "Total number of combination artifacts that failed, by kind",
	}, []string{"kind"})

	ActiveRenderWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "segmenter_active_render_workers",
		Help: "Number of currently active variant render workers",
	})
)
