package spidsp

import (
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/dgsspa/spid-sp/internal/adapters/driven/metrics"
	"github.com/dgsspa/spid-sp/internal/adapters/driven/registry"
	"github.com/dgsspa/spid-sp/internal/adapters/driven/session"
	"github.com/dgsspa/spid-sp/internal/core/domain"
	"github.com/dgsspa/spid-sp/internal/core/ports"
	"github.com/dgsspa/spid-sp/internal/saml2"
)

// requestExpiry bounds how long an outbound request id stays valid for
// matching the IdP answer.
const requestExpiry = 5 * time.Minute

// ServiceProvider is the entry point of the toolkit. It holds the
// validated SP configuration, the trusted IdP registry and the stores, and
// exposes one method per protocol operation.
type ServiceProvider struct {
	sp       *saml2.ServiceProvider
	registry ports.IdPRegistry
	sessions ports.SessionStore
	requests ports.RequestStore
	metrics  ports.MetricsRecorder
	logger   *zap.Logger
	clock    clockwork.Clock

	defaultOpts []RequestOption
}

type Option func(*ServiceProvider)

func WithLogger(logger *zap.Logger) Option {
	return func(s *ServiceProvider) { s.logger = logger }
}

func WithClock(clock clockwork.Clock) Option {
	return func(s *ServiceProvider) { s.clock = clock }
}

func WithIdPRegistry(r ports.IdPRegistry) Option {
	return func(s *ServiceProvider) { s.registry = r }
}

func WithSessionStore(store ports.SessionStore) Option {
	return func(s *ServiceProvider) { s.sessions = store }
}

func WithRequestStore(store ports.RequestStore) Option {
	return func(s *ServiceProvider) { s.requests = store }
}

func WithMetricsRecorder(recorder ports.MetricsRecorder) Option {
	return func(s *ServiceProvider) { s.metrics = recorder }
}

// NewServiceProvider builds a ServiceProvider from a configuration.
// Construction fails on any invalid configuration value; a constructed
// value is safe for concurrent use.
func NewServiceProvider(cfg *Config, opts ...Option) (*ServiceProvider, error) {
	sp, err := cfg.serviceProvider()
	if err != nil {
		return nil, err
	}

	s := &ServiceProvider{
		sp:     sp,
		logger: zap.NewNop(),
		clock:  clockwork.NewRealClock(),
	}
	if cfg.AuthnContext != "" {
		s.defaultOpts = append(s.defaultOpts, saml2.WithAuthnContext(cfg.AuthnContext))
	}
	if cfg.AuthnComparison != "" {
		s.defaultOpts = append(s.defaultOpts, saml2.WithComparison(domain.Comparison(cfg.AuthnComparison)))
	}
	if cfg.AttributeIndex != 0 {
		s.defaultOpts = append(s.defaultOpts, saml2.WithAttributeIndex(cfg.AttributeIndex))
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.metrics == nil {
		if cfg.MetricsEnabled {
			s.metrics = metrics.NewPrometheusMetricsRecorder()
		} else {
			s.metrics = metrics.NewNoopMetricsRecorder()
		}
	}
	if s.registry == nil {
		if cfg.IdPMetadataDirPath == "" {
			return nil, domain.ConfigError("idp_metadata_dir_path is required")
		}
		s.registry = registry.NewDirectoryRegistry(cfg.IdPMetadataDirPath,
			registry.WithLogger(s.logger),
			registry.WithMetricsRecorder(s.metrics),
		)
	}
	if s.sessions == nil {
		duration, err := cfg.sessionDuration()
		if err != nil {
			return nil, err
		}
		s.sessions = session.NewJWTSessionStore(sp.PrivateKey(), duration)
	}
	if s.requests == nil {
		s.requests = session.NewInMemoryRequestStore()
	}

	// Validate authn options eagerly so a bad configured context fails
	// at construction, not on the first SSO.
	if _, err := saml2.NewSettings(sp, nil, s.defaultOpts...); err != nil {
		return nil, err
	}

	return s, nil
}

// IdentityProviders returns the registry content.
func (s *ServiceProvider) IdentityProviders() []*domain.IdentityProvider {
	return s.registry.All()
}

// Metadata returns the signed SPID metadata document.
func (s *ServiceProvider) Metadata() ([]byte, error) {
	settings, err := saml2.NewSettings(s.sp, nil, s.defaultOpts...)
	if err != nil {
		return nil, err
	}
	md, err := saml2.NewSPMetadata(settings)
	if err != nil {
		return nil, err
	}
	return md.Build()
}

// CieMetadata returns the signed CIE metadata document.
func (s *ServiceProvider) CieMetadata() ([]byte, error) {
	settings, err := saml2.NewSettings(s.sp, nil, s.defaultOpts...)
	if err != nil {
		return nil, err
	}
	md, err := saml2.NewCieMetadata(settings)
	if err != nil {
		return nil, err
	}
	return md.Build()
}

// RedirectRequest is an outbound redirect-binding request: the full URL to
// send the user agent to and the request id to match the answer with.
type RedirectRequest struct {
	URL       string
	RequestID string
}

// InitiateSSO builds a signed AuthnRequest redirect URL for the given IdP.
func (s *ServiceProvider) InitiateSSO(idpEntityID, relayState string, opts ...RequestOption) (*RedirectRequest, error) {
	settings, err := s.settingsFor(idpEntityID, opts...)
	if err != nil {
		return nil, err
	}

	req := saml2.NewAuthnRequest(settings, s.clock.Now())
	message, err := req.Marshal()
	if err != nil {
		return nil, err
	}

	redirect, err := s.redirectTo(settings.IdPSSOTargetURL(), message, relayState, req.ID())
	if err != nil {
		return nil, err
	}

	s.metrics.RecordRequestBuilt("authn_request")
	s.logger.Debug("authn request built",
		zap.String("idp_entity_id", idpEntityID),
		zap.String("request_id", req.ID()),
	)
	return redirect, nil
}

// AuthResult is the outcome of consuming an SSO response. Validation
// failures are collected in Validation, never returned as errors.
type AuthResult struct {
	Valid      bool
	Validation *domain.ValidationResult

	// Session and Token are set only when Valid is true.
	Session *domain.Session
	Token   string
}

// ConsumeResponse parses and validates an inbound SSO response body as
// delivered by the ACS binding. A parse failure is an error; a response
// that parses but fails validation yields Valid=false with the collected
// check messages.
func (s *ServiceProvider) ConsumeResponse(body string) (*AuthResult, error) {
	response, err := saml2.ParseResponse(body)
	if err != nil {
		return nil, err
	}

	idp := s.registry.FindByEntityID(response.Issuer())
	settings, err := saml2.NewSettings(s.sp, idp, s.defaultOpts...)
	if err != nil {
		return nil, err
	}

	requestID := ""
	if s.requests.Valid(response.InResponseTo()) {
		requestID = response.InResponseTo()
	}

	validator := saml2.NewResponseValidator(response, settings, requestID, s.clock, nil)
	valid := validator.Validate()

	result := &AuthResult{
		Valid:      valid,
		Validation: validator.Result(),
	}
	s.metrics.RecordSSOOutcome(response.Issuer(), valid)

	if !valid {
		s.logger.Info("sso response rejected",
			zap.String("idp_entity_id", response.Issuer()),
			zap.Strings("failed_checks", validator.Result().Keys()),
		)
		return result, nil
	}

	now := s.clock.Now()
	sess := &domain.Session{
		RequestID:    requestID,
		IdPEntityID:  response.Issuer(),
		SessionIndex: response.SessionIndex(),
		Attributes:   response.Attributes(),
		IssuedAt:     now,
	}
	token, err := s.sessions.Create(sess)
	if err != nil {
		return nil, err
	}
	result.Session = sess
	result.Token = token

	s.logger.Info("sso response accepted",
		zap.String("idp_entity_id", response.Issuer()),
		zap.String("session_index", response.SessionIndex()),
	)
	return result, nil
}

// CurrentSession resolves a session token issued by ConsumeResponse.
func (s *ServiceProvider) CurrentSession(token string) (*domain.Session, error) {
	return s.sessions.Get(token)
}

// InitiateSLO builds a signed LogoutRequest redirect URL terminating the
// IdP session identified by sessionIndex.
func (s *ServiceProvider) InitiateSLO(idpEntityID, sessionIndex, relayState string) (*RedirectRequest, error) {
	settings, err := s.settingsFor(idpEntityID)
	if err != nil {
		return nil, err
	}

	req := saml2.NewLogoutRequest(settings, sessionIndex, s.clock.Now())
	message, err := req.Marshal()
	if err != nil {
		return nil, err
	}

	redirect, err := s.redirectTo(settings.IdPSLOTargetURL(), message, relayState, req.ID())
	if err != nil {
		return nil, err
	}

	s.metrics.RecordRequestBuilt("logout_request")
	return redirect, nil
}

// LogoutResult is the outcome of consuming an SLO response.
type LogoutResult struct {
	Valid      bool
	Validation *domain.ValidationResult
}

// ConsumeLogoutResponse parses and validates the IdP answer to an
// SP-initiated logout.
func (s *ServiceProvider) ConsumeLogoutResponse(body string) (*LogoutResult, error) {
	response, err := saml2.ParseLogoutResponse(body)
	if err != nil {
		return nil, err
	}

	idp := s.registry.FindByEntityID(response.Issuer())
	settings, err := saml2.NewSettings(s.sp, idp, s.defaultOpts...)
	if err != nil {
		return nil, err
	}

	requestID := ""
	if s.requests.Valid(response.InResponseTo()) {
		requestID = response.InResponseTo()
	}

	validator := saml2.NewLogoutResponseValidator(response, settings, requestID, nil)
	valid := validator.Validate()
	s.metrics.RecordSLOOutcome(response.Issuer(), valid)

	return &LogoutResult{
		Valid:      valid,
		Validation: validator.Result(),
	}, nil
}

// IdPLogoutResult is the outcome of handling an IdP-initiated logout
// request. ResponseXML holds the signed LogoutResponse to return to the
// IdP when the request was accepted.
type IdPLogoutResult struct {
	Valid      bool
	Validation *domain.ValidationResult

	SessionIndex string
	ResponseXML  []byte
}

// HandleIdPLogoutRequest parses and validates an IdP-initiated logout
// request and, when valid, produces the signed success LogoutResponse.
// The caller terminates its local session for the returned session index.
func (s *ServiceProvider) HandleIdPLogoutRequest(body string) (*IdPLogoutResult, error) {
	request, err := saml2.ParseIdPLogoutRequest(body)
	if err != nil {
		return nil, err
	}

	idp := s.registry.FindByEntityID(request.Issuer())
	settings, err := saml2.NewSettings(s.sp, idp, s.defaultOpts...)
	if err != nil {
		return nil, err
	}

	validator := saml2.NewIdPLogoutRequestValidator(request, settings)
	valid := validator.Validate()
	s.metrics.RecordSLOOutcome(request.Issuer(), valid)

	result := &IdPLogoutResult{
		Valid:        valid,
		Validation:   validator.Result(),
		SessionIndex: request.SessionIndex(),
	}
	if !valid {
		return result, nil
	}

	response := saml2.NewIdPLogoutResponse(settings, request.ID(), s.clock.Now())
	xml, err := response.MarshalSigned()
	if err != nil {
		return nil, err
	}
	result.ResponseXML = xml
	return result, nil
}

func (s *ServiceProvider) settingsFor(idpEntityID string, opts ...RequestOption) (*saml2.Settings, error) {
	idp := s.registry.FindByEntityID(idpEntityID)
	if idp == nil {
		return nil, domain.IdPNotFoundError(idpEntityID)
	}
	all := make([]RequestOption, 0, len(s.defaultOpts)+len(opts))
	all = append(all, s.defaultOpts...)
	all = append(all, opts...)
	return saml2.NewSettings(s.sp, idp, all...)
}

func (s *ServiceProvider) redirectTo(target, message, relayState, requestID string) (*RedirectRequest, error) {
	signer, err := saml2.NewQueryParamsSigner(message, s.sp.PrivateKey(), s.sp.SignatureMethod(), relayState)
	if err != nil {
		return nil, err
	}
	query, err := signer.QueryString()
	if err != nil {
		return nil, err
	}
	if err := s.requests.Store(requestID, s.clock.Now().Add(requestExpiry)); err != nil {
		return nil, err
	}
	return &RedirectRequest{
		URL:       target + "?" + query,
		RequestID: requestID,
	}, nil
}
