package ports

import "github.com/dgsspa/spid-sp/internal/core/domain"

// IdPRegistry is the port interface for looking up trusted identity
// providers. Implementations must be safe for concurrent readers once
// populated.
type IdPRegistry interface {
	// FindByEntityID returns the first provider with the given entity id,
	// or nil when no provider matches.
	FindByEntityID(entityID string) *domain.IdentityProvider

	// All returns every loaded provider.
	All() []*domain.IdentityProvider
}
