package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	stepsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "parrotctl",
			Subsystem: "pipeline",
			Name:      "steps_total",
			Help:      "Total number of executed pipeline steps by result",
		},
		[]string{"pipeline", "step", "result"},
	)

	stepDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "parrotctl",
			Subsystem: "pipeline",
			Name:      "step_duration_seconds",
			Help:      "Duration of pipeline steps in seconds",
			// steps range from a stat probe to a multi-minute pip install
			Buckets: []float64{0.01, 0.1, 1, 10, 60, 300, 1800, 7200},
		},
		[]string{"pipeline", "step"},
	)
)

func init() {
	prometheus.MustRegister(stepsTotal, stepDuration)
}

func observeStep(pipeline, step, result string, d time.Duration) {
	stepsTotal.WithLabelValues(pipeline, step, result).Inc()
	stepDuration.WithLabelValues(pipeline, step).Observe(d.Seconds())
}
