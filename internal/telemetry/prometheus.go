package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type PrometheusMetrics struct {
	toolsetEnables        *prometheus.CounterVec
	toolsetDisables       *prometheus.CounterVec
	toolRegistrations     *prometheus.CounterVec
	moduleLoadFailures    *prometheus.CounterVec
	permissionResolutions *prometheus.CounterVec
	sessionEvictions      prometheus.Counter
}

func NewPrometheusMetrics(registerer prometheus.Registerer) *PrometheusMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &PrometheusMetrics{
		toolsetEnables: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toolgate_toolset_enables_total",
				Help: "Total number of toolset enable operations",
			},
			[]string{"toolset", "status"},
		),
		toolsetDisables: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toolgate_toolset_disables_total",
				Help: "Total number of toolset disable operations",
			},
			[]string{"toolset"},
		),
		toolRegistrations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toolgate_tool_registrations_total",
				Help: "Total number of tools registered on the surface",
			},
			[]string{"toolset"},
		),
		moduleLoadFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toolgate_module_load_failures_total",
				Help: "Total number of failed module loads",
			},
			[]string{"toolset", "module"},
		),
		permissionResolutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toolgate_permission_resolutions_total",
				Help: "Total number of uncached permission resolutions",
			},
			[]string{"source"},
		),
		sessionEvictions: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "toolgate_session_evictions_total",
				Help: "Total number of client sessions evicted from the cache",
			},
		),
	}
}

func (p *PrometheusMetrics) ObserveToolsetEnable(toolset string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	p.toolsetEnables.WithLabelValues(toolset, status).Inc()
}

func (p *PrometheusMetrics) ObserveToolsetDisable(toolset string) {
	p.toolsetDisables.WithLabelValues(toolset).Inc()
}

func (p *PrometheusMetrics) ObserveToolRegistration(toolset string) {
	p.toolRegistrations.WithLabelValues(toolset).Inc()
}

func (p *PrometheusMetrics) ObserveModuleLoadFailure(toolset, module string) {
	p.moduleLoadFailures.WithLabelValues(toolset, module).Inc()
}

func (p *PrometheusMetrics) ObservePermissionResolution(source string) {
	p.permissionResolutions.WithLabelValues(source).Inc()
}

func (p *PrometheusMetrics) ObserveSessionEviction() {
	p.sessionEvictions.Inc()
}

var _ Metrics = (*PrometheusMetrics)(nil)
