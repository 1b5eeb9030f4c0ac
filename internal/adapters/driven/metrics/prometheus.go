package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetricsRecorder records metrics using Prometheus.
type PrometheusMetricsRecorder struct {
	ssoValidationsTotal *prometheus.CounterVec
	sloValidationsTotal *prometheus.CounterVec
	requestsBuiltTotal  *prometheus.CounterVec
	registryLoadsTotal  *prometheus.CounterVec
	registryIdpCount    prometheus.Gauge
}

// NewPrometheusMetricsRecorder creates a new Prometheus metrics recorder
// using the default Prometheus registry.
func NewPrometheusMetricsRecorder() *PrometheusMetricsRecorder {
	return NewPrometheusMetricsRecorderWithRegistry(prometheus.DefaultRegisterer)
}

// NewPrometheusMetricsRecorderWithRegistry creates a new Prometheus metrics
// recorder with a custom registry. Use this for testing.
func NewPrometheusMetricsRecorderWithRegistry(reg prometheus.Registerer) *PrometheusMetricsRecorder {
	ssoValidationsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "spid_sp_sso_validations_total",
		Help: "Total SSO response validations",
	}, []string{"idp_entity_id", "result"})

	sloValidationsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "spid_sp_slo_validations_total",
		Help: "Total SLO message validations",
	}, []string{"idp_entity_id", "result"})

	requestsBuiltTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "spid_sp_requests_built_total",
		Help: "Total outbound SAML requests built",
	}, []string{"kind"})

	registryLoadsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "spid_sp_registry_loads_total",
		Help: "Total IdP metadata registry loads",
	}, []string{"file_errors"})

	registryIdpCount := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "spid_sp_registry_idp_count",
		Help: "Current number of loaded identity providers",
	})

	reg.MustRegister(
		ssoValidationsTotal,
		sloValidationsTotal,
		requestsBuiltTotal,
		registryLoadsTotal,
		registryIdpCount,
	)

	return &PrometheusMetricsRecorder{
		ssoValidationsTotal: ssoValidationsTotal,
		sloValidationsTotal: sloValidationsTotal,
		requestsBuiltTotal:  requestsBuiltTotal,
		registryLoadsTotal:  registryLoadsTotal,
		registryIdpCount:    registryIdpCount,
	}
}

// RecordSSOOutcome records one SSO response validation.
func (p *PrometheusMetricsRecorder) RecordSSOOutcome(idpEntityID string, valid bool) {
	p.ssoValidationsTotal.WithLabelValues(idpEntityID, outcome(valid)).Inc()
}

// RecordSLOOutcome records one SLO response or request validation.
func (p *PrometheusMetricsRecorder) RecordSLOOutcome(idpEntityID string, valid bool) {
	p.sloValidationsTotal.WithLabelValues(idpEntityID, outcome(valid)).Inc()
}

// RecordRequestBuilt records an outbound AuthnRequest or LogoutRequest.
func (p *PrometheusMetricsRecorder) RecordRequestBuilt(kind string) {
	p.requestsBuiltTotal.WithLabelValues(kind).Inc()
}

// RecordRegistryLoad records an IdP metadata registry load.
func (p *PrometheusMetricsRecorder) RecordRegistryLoad(idpCount, fileErrors int) {
	p.registryLoadsTotal.WithLabelValues(strconv.Itoa(fileErrors)).Inc()
	p.registryIdpCount.Set(float64(idpCount))
}

func outcome(valid bool) string {
	if valid {
		return "valid"
	}
	return "invalid"
}
