// Package metrics defines the small instrumentation surface the core
// packages emit through, so backends (Prometheus, StatsD, ...) stay
// pluggable without coupling the core to any client library.
package metrics

// Counter is a monotonically increasing metric.
type Counter interface {
	Inc()
	// Add increments the counter by delta. delta must be >= 0.
	Add(delta float64)
}

// Gauge is a metric that can go up and down.
type Gauge interface {
	Set(value float64)
	Inc()
	Dec()
}

// Timer measures the duration of one operation. Create it when the
// operation begins, call ObserveDuration when it completes:
//
//	defer m.DeployDuration().ObserveDuration()
type Timer interface {
	ObserveDuration()
}
