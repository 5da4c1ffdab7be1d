package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"ngsutils/internal/domain"
)

// TextfileMetrics reports the last dispatch in the node_exporter textfile
// format. Every dispatch is a separate process, so only last-run gauges make
// sense here.
type TextfileMetrics struct {
	path     string
	registry *prometheus.Registry

	lastExit      *prometheus.GaugeVec
	lastDuration  *prometheus.GaugeVec
	lastTimestamp *prometheus.GaugeVec
}

func NewTextfileMetrics(path string, registry *prometheus.Registry) *TextfileMetrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	factory := promauto.With(registry)
	labels := []string{"family", "command", "mode"}

	return &TextfileMetrics{
		path:     path,
		registry: registry,
		lastExit: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ngsutils_dispatch_last_exit_code",
				Help: "Exit status of the last dispatched command",
			},
			labels,
		),
		lastDuration: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ngsutils_dispatch_last_duration_seconds",
				Help: "Wall-clock duration of the last dispatched command in seconds",
			},
			labels,
		),
		lastTimestamp: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ngsutils_dispatch_last_timestamp_seconds",
				Help: "Unix time the last dispatched command finished",
			},
			labels,
		),
	}
}

func (m *TextfileMetrics) ObserveDispatch(metric domain.DispatchMetric) {
	labels := prometheus.Labels{
		"family":  metric.Family,
		"command": metric.Command,
		"mode":    string(metric.Mode),
	}
	m.lastExit.With(labels).Set(float64(metric.ExitCode))
	m.lastDuration.With(labels).Set(metric.Duration.Seconds())
	m.lastTimestamp.With(labels).Set(float64(metric.Finished.UnixNano()) / 1e9)
}

// Flush writes the registry atomically to the configured file.
func (m *TextfileMetrics) Flush() error {
	if m.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("ensure metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(m.path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// NewMetrics returns textfile metrics when a path is configured.
func NewMetrics(textfile string) domain.Metrics {
	if textfile == "" {
		return domain.NoopMetrics{}
	}
	return NewTextfileMetrics(textfile, nil)
}
