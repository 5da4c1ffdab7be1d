package domain

import "time"

// DispatchMetric describes one finished dispatch.
type DispatchMetric struct {
	Family   string
	Command  string
	Mode     Mode
	ExitCode int
	Duration time.Duration
	Finished time.Time
}

// Metrics records dispatch outcomes.
type Metrics interface {
	ObserveDispatch(metric DispatchMetric)
	Flush() error
}

// NoopMetrics discards everything.
type NoopMetrics struct{}

func (NoopMetrics) ObserveDispatch(DispatchMetric) {}

func (NoopMetrics) Flush() error { return nil }
