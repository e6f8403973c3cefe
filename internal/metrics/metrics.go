// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PromptCompilesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prism_prompt_compiles_total",
		Help: "Prompts compiled, by domain.",
	}, []string{"domain"})

	CompileDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "prism_compile_duration_seconds",
		Help:    "Time spent compiling a workspace into a prompt.",
		Buckets: []float64{0.00001, 0.0001, 0.0005, 0.001, 0.005, 0.01},
	})

	WorkspaceMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prism_workspace_mutations_total",
		Help: "Workspace state changes, by operation.",
	}, []string{"op"})

	ExportsRecordedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "prism_exports_recorded_total",
		Help: "Export rows successfully written to the database.",
	})

	ExportsRecordErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "prism_exports_record_errors_total",
		Help: "Export insert failures.",
	})

	ExportsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "prism_exports_dropped_total",
		Help: "Export events dropped because the writer queue was full.",
	})

	ImageRendersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prism_image_renders_total",
		Help: "Image render attempts, by result (ok, cached, error, limited).",
	}, []string{"result"})

	ImageRenderDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "prism_image_render_duration_seconds",
		Help:    "Latency of upstream image generation calls.",
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 8),
	})
)

// ObserveCompile records one compile of domain that began at start.
func ObserveCompile(domain string, start time.Time) {
	PromptCompilesTotal.WithLabelValues(domain).Inc()
	CompileDuration.Observe(time.Since(start).Seconds())
}
