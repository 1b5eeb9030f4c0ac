package domain

import "time"

// Session is the SP-side state of one SPID authentication round-trip:
// the outbound request id waiting for its response, and after login the
// session index needed for Single Logout.
type Session struct {
	// RequestID is the id of the outbound AuthnRequest or LogoutRequest,
	// matched against InResponseTo on the way back.
	RequestID string

	// IdPEntityID is the entity id of the IdP the request was sent to.
	IdPEntityID string

	// SessionIndex is the IdP session handle obtained at login.
	SessionIndex string

	// Attributes holds the normalized attribute map after a valid login.
	Attributes map[string]string

	// IssuedAt and ExpiresAt bound the session lifetime.
	IssuedAt  time.Time
	ExpiresAt time.Time
}
