package runtime

import "github.com/codewandler/vrtx-go/core/metrics"

// Metrics defines instrumentation hooks for the deployment manager.
// All methods must be safe for concurrent use.
type Metrics interface {
	DeployDuration() metrics.Timer
	DeployCompleted(success bool)

	UndeployDuration() metrics.Timer
	UndeployCompleted(success bool)

	// DeploymentsActive reports the current number of live deployments.
	DeploymentsActive(n int)
	// InstancesActive reports the current number of running instances
	// across all deployments.
	InstancesActive(n int)
}

type nopMetrics struct{}

func (nopMetrics) DeployDuration() metrics.Timer   { return metrics.NopTimer() }
func (nopMetrics) DeployCompleted(bool)            {}
func (nopMetrics) UndeployDuration() metrics.Timer { return metrics.NopTimer() }
func (nopMetrics) UndeployCompleted(bool)          {}
func (nopMetrics) DeploymentsActive(int)           {}
func (nopMetrics) InstancesActive(int)             {}

// NopMetrics returns a no-op Metrics implementation.
func NopMetrics() Metrics { return nopMetrics{} }
