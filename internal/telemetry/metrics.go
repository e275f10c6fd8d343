package telemetry

type Metrics interface {
	ObserveToolsetEnable(toolset string, err error)
	ObserveToolsetDisable(toolset string)
	ObserveToolRegistration(toolset string)
	ObserveModuleLoadFailure(toolset, module string)
	ObservePermissionResolution(source string)
	ObserveSessionEviction()
}

type NoopMetrics struct{}

func NewNoopMetrics() *NoopMetrics {
	return &NoopMetrics{}
}

func (n *NoopMetrics) ObserveToolsetEnable(_ string, _ error) {}

func (n *NoopMetrics) ObserveToolsetDisable(_ string) {}

func (n *NoopMetrics) ObserveToolRegistration(_ string) {}

func (n *NoopMetrics) ObserveModuleLoadFailure(_, _ string) {}

func (n *NoopMetrics) ObservePermissionResolution(_ string) {}

func (n *NoopMetrics) ObserveSessionEviction() {}

var _ Metrics = (*NoopMetrics)(nil)
