package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/codewandler/vrtx-go/core/metrics"
	"github.com/codewandler/vrtx-go/core/runtime"
)

// runtimeMetrics implements runtime.Metrics using Prometheus.
type runtimeMetrics struct {
	deployDuration    prometheus.Histogram
	deploysTotal      *prometheus.CounterVec
	undeployDuration  prometheus.Histogram
	undeploysTotal    *prometheus.CounterVec
	deploymentsActive prometheus.Gauge
	instancesActive   prometheus.Gauge
}

// NewRuntimeMetrics creates a Prometheus implementation of runtime.Metrics.
func NewRuntimeMetrics(reg prometheus.Registerer) runtime.Metrics {
	m := &runtimeMetrics{
		deployDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "vrtx_deploy_duration_seconds",
			Help:    "Time from deploy request to all instances running",
			Buckets: defaultBuckets,
		}),

		deploysTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vrtx_deploys_total",
			Help: "Total number of completed deploys",
		}, []string{"success"}),

		undeployDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "vrtx_undeploy_duration_seconds",
			Help:    "Time from undeploy request to all instances stopped",
			Buckets: defaultBuckets,
		}),

		undeploysTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vrtx_undeploys_total",
			Help: "Total number of completed undeploys",
		}, []string{"success"}),

		deploymentsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vrtx_deployments_active",
			Help: "Number of live deployments",
		}),

		instancesActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vrtx_instances_active",
			Help: "Number of running verticle instances",
		}),
	}

	reg.MustRegister(
		m.deployDuration,
		m.deploysTotal,
		m.undeployDuration,
		m.undeploysTotal,
		m.deploymentsActive,
		m.instancesActive,
	)

	return m
}

func (m *runtimeMetrics) DeployDuration() metrics.Timer {
	return newTimer(m.deployDuration)
}

func (m *runtimeMetrics) DeployCompleted(success bool) {
	m.deploysTotal.WithLabelValues(boolToStr(success)).Inc()
}

func (m *runtimeMetrics) UndeployDuration() metrics.Timer {
	return newTimer(m.undeployDuration)
}

func (m *runtimeMetrics) UndeployCompleted(success bool) {
	m.undeploysTotal.WithLabelValues(boolToStr(success)).Inc()
}

func (m *runtimeMetrics) DeploymentsActive(n int) {
	m.deploymentsActive.Set(float64(n))
}

func (m *runtimeMetrics) InstancesActive(n int) {
	m.instancesActive.Set(float64(n))
}

var _ runtime.Metrics = (*runtimeMetrics)(nil)
