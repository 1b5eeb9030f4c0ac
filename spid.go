// Package spidsp implements a SAML2 Service Provider for the Italian
// SPID and CIE identity systems: signed metadata and request builders,
// redirect-binding signing, response validation and an identity provider
// registry backed by a metadata directory.
package spidsp

import (
	"github.com/dgsspa/spid-sp/internal/core/domain"
	"github.com/dgsspa/spid-sp/internal/core/ports"
	"github.com/dgsspa/spid-sp/internal/saml2"
)

// Re-export protocol constants from domain
const (
	BindingHTTPPost     = domain.BindingHTTPPost
	BindingHTTPRedirect = domain.BindingHTTPRedirect

	SHA256 = domain.SHA256
	SHA384 = domain.SHA384
	SHA512 = domain.SHA512

	RSASHA256 = domain.RSASHA256
	RSASHA384 = domain.RSASHA384
	RSASHA512 = domain.RSASHA512

	SpidL1 = domain.SpidL1
	SpidL2 = domain.SpidL2
	SpidL3 = domain.SpidL3

	StatusSuccess = domain.StatusSuccess
)

// Re-export comparison values
const (
	ComparisonExact   = domain.ComparisonExact
	ComparisonMinimum = domain.ComparisonMinimum
	ComparisonBetter  = domain.ComparisonBetter
	ComparisonMaximum = domain.ComparisonMaximum
)

// Re-export domain types
type Comparison = domain.Comparison
type AttributeField = domain.AttributeField
type AttributeService = domain.AttributeService
type IdentityProvider = domain.IdentityProvider
type Session = domain.Session
type ValidationResult = domain.ValidationResult
type StatusFailure = domain.StatusFailure

// Re-export port interfaces for callers that swap adapters
type IdPRegistry = ports.IdPRegistry
type SessionStore = ports.SessionStore
type RequestStore = ports.RequestStore
type MetricsRecorder = ports.MetricsRecorder
type DocumentSigner = ports.DocumentSigner
type DocumentVerifier = ports.DocumentVerifier

// Re-export attribute helpers
var (
	AttributeFields        = domain.AttributeFields
	NormalizeAttributeName = domain.NormalizeAttributeName
	ValidDigestMethod      = domain.ValidDigestMethod
	ValidSignatureMethod   = domain.ValidSignatureMethod
	ValidAuthnContext      = domain.ValidAuthnContext
)

// Re-export SP configuration types from the protocol layer
type Organization = saml2.Organization
type ContactPerson = saml2.ContactPerson

// Request options for SSO initiation
type RequestOption = saml2.SettingsOption

var (
	WithAuthnContext   = saml2.WithAuthnContext
	WithComparison     = saml2.WithComparison
	WithAttributeIndex = saml2.WithAttributeIndex
)
