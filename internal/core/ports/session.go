package ports

import (
	"errors"
	"time"

	"github.com/dgsspa/spid-sp/internal/core/domain"
)

// SessionStore is the port interface for session management. The core
// protocol layer only reads and writes through it; storage belongs to the
// caller.
type SessionStore interface {
	// Create stores a session and returns a token.
	Create(session *domain.Session) (string, error)

	// Get retrieves a session by token. Returns ErrSessionNotFound if
	// the token is invalid, expired, or unknown.
	Get(token string) (*domain.Session, error)

	// Delete removes a session. Stateless implementations may no-op.
	Delete(token string) error
}

// RequestStore tracks outbound SAML request IDs so responses can be
// matched and replayed responses rejected. Implementations must be safe
// for concurrent use.
type RequestStore interface {
	// Store saves a request ID with its expiry time.
	Store(requestID string, expiry time.Time) error

	// Valid checks if a request ID exists and is not expired.
	// Returns true only once per ID (single-use).
	Valid(requestID string) bool

	// GetAll returns all non-expired request IDs.
	GetAll() []string
}

// ErrSessionNotFound is returned when a session cannot be found or is invalid.
var ErrSessionNotFound = errors.New("session not found")
