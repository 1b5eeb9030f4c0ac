package domain

import "crypto/x509"

// IdentityProvider is the read-only view of one trusted IdP, derived from
// a single EntityDescriptor of its metadata. Instances are long-lived and
// held in the registry.
type IdentityProvider struct {
	// EntityID is the unique identifier of the IdP.
	EntityID string

	// SSOTargetURL is the HTTP-Redirect SingleSignOnService location.
	SSOTargetURL string

	// SLOTargetURL is the HTTP-Redirect SingleLogoutService location.
	SLOTargetURL string

	// Certificate is the IdP signing certificate.
	Certificate *x509.Certificate
}
