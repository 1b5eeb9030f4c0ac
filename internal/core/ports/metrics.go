package ports

// MetricsRecorder is the port interface for recording metrics.
// Implementations are adapters (PrometheusMetricsRecorder for production,
// NoopMetricsRecorder for disabled/testing).
type MetricsRecorder interface {
	// RecordSSOOutcome records one SSO response validation.
	RecordSSOOutcome(idpEntityID string, valid bool)

	// RecordSLOOutcome records one SLO response or request validation.
	RecordSLOOutcome(idpEntityID string, valid bool)

	// RecordRequestBuilt records an outbound AuthnRequest or LogoutRequest.
	RecordRequestBuilt(kind string)

	// RecordRegistryLoad records an IdP metadata registry load.
	RecordRegistryLoad(idpCount int, fileErrors int)
}
