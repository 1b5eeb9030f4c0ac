package saml2

import (
	"github.com/dgsspa/spid-sp/internal/core/domain"
)

// Settings is the read-only composition of the service provider
// configuration, one resolved identity provider, and call-scoped
// parameters. A Settings value is created per SSO/SLO operation and never
// mutated after construction.
type Settings struct {
	sp  *ServiceProvider
	idp *domain.IdentityProvider

	authnContext string
	comparison   domain.Comparison
	attrIndex    int
}

// SettingsOption customizes call-scoped parameters.
type SettingsOption func(*Settings)

// WithAuthnContext sets the requested authentication context class
// (SpidL1/L2/L3).
func WithAuthnContext(context string) SettingsOption {
	return func(s *Settings) { s.authnContext = context }
}

// WithComparison sets the RequestedAuthnContext comparison method.
func WithComparison(c domain.Comparison) SettingsOption {
	return func(s *Settings) { s.comparison = c }
}

// WithAttributeIndex selects which AttributeConsumingService the request
// references.
func WithAttributeIndex(index int) SettingsOption {
	return func(s *Settings) { s.attrIndex = index }
}

// NewSettings composes SP config, IdP and per-call parameters, validating
// that the authentication context and comparison method are allowed.
func NewSettings(sp *ServiceProvider, idp *domain.IdentityProvider, opts ...SettingsOption) (*Settings, error) {
	s := &Settings{
		sp:           sp,
		idp:          idp,
		authnContext: domain.SpidL1,
		comparison:   domain.ComparisonExact,
	}
	for _, opt := range opts {
		opt(s)
	}
	if !domain.ValidAuthnContext(s.authnContext) {
		return nil, domain.UnknownAuthnContextError(s.authnContext)
	}
	if !s.comparison.Valid() {
		return nil, domain.UnknownAuthnComparisonError(string(s.comparison))
	}
	return s, nil
}

// SP returns the service provider configuration.
func (s *Settings) SP() *ServiceProvider { return s.sp }

// IdP returns the resolved identity provider, nil when the operation does
// not involve one.
func (s *Settings) IdP() *domain.IdentityProvider { return s.idp }

// IdPEntityID returns the IdP entity id, or "".
func (s *Settings) IdPEntityID() string {
	if s.idp == nil {
		return ""
	}
	return s.idp.EntityID
}

// IdPSSOTargetURL returns the IdP single sign-on redirect URL, or "".
func (s *Settings) IdPSSOTargetURL() string {
	if s.idp == nil {
		return ""
	}
	return s.idp.SSOTargetURL
}

// IdPSLOTargetURL returns the IdP single logout redirect URL, or "".
func (s *Settings) IdPSLOTargetURL() string {
	if s.idp == nil {
		return ""
	}
	return s.idp.SLOTargetURL
}

// AuthnContext returns the requested authentication context class.
func (s *Settings) AuthnContext() string { return s.authnContext }

// Comparison returns the comparison method.
func (s *Settings) Comparison() domain.Comparison { return s.comparison }

// AttributeIndex returns the selected AttributeConsumingService index.
func (s *Settings) AttributeIndex() int { return s.attrIndex }
