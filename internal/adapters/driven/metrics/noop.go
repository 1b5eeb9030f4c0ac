package metrics

import (
	"github.com/dgsspa/spid-sp/internal/core/ports"
)

// NoopMetricsRecorder is a no-op implementation for when metrics are disabled.
// All methods are safe to call and do nothing.
type NoopMetricsRecorder struct{}

// NewNoopMetricsRecorder creates a new no-op metrics recorder.
func NewNoopMetricsRecorder() *NoopMetricsRecorder {
	return &NoopMetricsRecorder{}
}

// RecordSSOOutcome is a no-op.
func (n *NoopMetricsRecorder) RecordSSOOutcome(idpEntityID string, valid bool) {}

// RecordSLOOutcome is a no-op.
func (n *NoopMetricsRecorder) RecordSLOOutcome(idpEntityID string, valid bool) {}

// RecordRequestBuilt is a no-op.
func (n *NoopMetricsRecorder) RecordRequestBuilt(kind string) {}

// RecordRegistryLoad is a no-op.
func (n *NoopMetricsRecorder) RecordRegistryLoad(idpCount, fileErrors int) {}

// Ensure NoopMetricsRecorder implements ports.MetricsRecorder
var _ ports.MetricsRecorder = (*NoopMetricsRecorder)(nil)
