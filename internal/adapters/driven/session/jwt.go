// Package session provides stores for SP sessions and outbound request ids.
package session

import (
	"crypto/rsa"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dgsspa/spid-sp/internal/core/domain"
	"github.com/dgsspa/spid-sp/internal/core/ports"
)

// JWTSessionStore implements SessionStore using stateless JWT tokens
// signed with the SP's RSA key (RS256).
type JWTSessionStore struct {
	privateKey *rsa.PrivateKey
	duration   time.Duration
}

// sessionClaims defines the JWT claims structure for sessions.
type sessionClaims struct {
	jwt.RegisteredClaims
	RequestID    string            `json:"request_id,omitempty"`
	IdPEntityID  string            `json:"idp"`
	SessionIndex string            `json:"session_index,omitempty"`
	Attributes   map[string]string `json:"attrs,omitempty"`
}

func NewJWTSessionStore(privateKey *rsa.PrivateKey, duration time.Duration) *JWTSessionStore {
	return &JWTSessionStore{
		privateKey: privateKey,
		duration:   duration,
	}
}

// Create generates a signed JWT token from the session.
func (s *JWTSessionStore) Create(session *domain.Session) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.duration)),
		},
		RequestID:    session.RequestID,
		IdPEntityID:  session.IdPEntityID,
		SessionIndex: session.SessionIndex,
		Attributes:   session.Attributes,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(s.privateKey)
}

// Get validates a JWT token and returns the session.
func (s *JWTSessionStore) Get(token string) (*domain.Session, error) {
	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return &s.privateKey.PublicKey, nil
	})
	if err != nil {
		return nil, ports.ErrSessionNotFound
	}

	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid {
		return nil, ports.ErrSessionNotFound
	}

	return &domain.Session{
		RequestID:    claims.RequestID,
		IdPEntityID:  claims.IdPEntityID,
		SessionIndex: claims.SessionIndex,
		Attributes:   claims.Attributes,
		IssuedAt:     claims.IssuedAt.Time,
		ExpiresAt:    claims.ExpiresAt.Time,
	}, nil
}

// Delete is a no-op for stateless JWT sessions. Actual cookie removal
// happens at the transport layer.
func (s *JWTSessionStore) Delete(token string) error {
	return nil
}
