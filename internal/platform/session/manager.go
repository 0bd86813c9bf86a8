package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/oklog/ulid/v2"
)

const defaultTokenTTL = 24 * time.Hour

var (
	// ErrTokenExpired signals that the provided session token has expired.
	ErrTokenExpired = errors.New("session: token expired")
	// ErrTokenInvalid signals that the provided session token is invalid for other reasons.
	ErrTokenInvalid = errors.New("session: token invalid")

	errSecretRequired = errors.New("session: signing secret is required")
)

// Manager issues and verifies signed session tokens for anonymous shoppers.
type Manager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
	newID  func() string
}

// ManagerOption customises Manager behaviour.
type ManagerOption func(*Manager)

// WithTokenTTL overrides the session token lifetime.
func WithTokenTTL(ttl time.Duration) ManagerOption {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithClock overrides the time source used for issuing and verifying tokens.
func WithClock(clock func() time.Time) ManagerOption {
	return func(m *Manager) {
		if clock != nil {
			m.now = func() time.Time { return clock().UTC() }
		}
	}
}

// WithIDGenerator overrides the session ID generator.
func WithIDGenerator(gen func() string) ManagerOption {
	return func(m *Manager) {
		if gen != nil {
			m.newID = gen
		}
	}
}

// NewManager constructs a Manager signing tokens with the provided HMAC secret.
func NewManager(secret, issuer string, opts ...ManagerOption) (*Manager, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errSecretRequired
	}
	issuer = strings.TrimSpace(issuer)
	if issuer == "" {
		issuer = "quickbasket"
	}

	m := &Manager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    defaultTokenTTL,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  func() string { return ulid.Make().String() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m, nil
}

// Issue creates a fresh session and returns the identity alongside its signed token.
func (m *Manager) Issue() (*Identity, string, error) {
	if m == nil {
		return nil, "", ErrTokenInvalid
	}

	now := m.now()
	identity := &Identity{
		SessionID: m.newID(),
		IssuedAt:  now,
		ExpiresAt: now.Add(m.ttl),
	}

	claims := jwt.RegisteredClaims{
		Subject:   identity.SessionID,
		Issuer:    m.issuer,
		IssuedAt:  jwt.NewNumericDate(identity.IssuedAt),
		ExpiresAt: jwt.NewNumericDate(identity.ExpiresAt),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return nil, "", fmt.Errorf("session: sign token: %w", err)
	}
	return identity, signed, nil
}

// Verify parses the signed token and returns the session identity it carries.
func (m *Manager) Verify(tokenStr string) (*Identity, error) {
	if m == nil {
		return nil, ErrTokenInvalid
	}
	tokenStr = strings.TrimSpace(tokenStr)
	if tokenStr == "" {
		return nil, ErrTokenInvalid
	}

	// Claims validation is disabled at parse time so expiry can be checked
	// against the manager's clock rather than the package time source.
	claims := &jwt.RegisteredClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	_, err := parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, ErrTokenInvalid
	}

	if claims.Issuer != m.issuer || strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrTokenInvalid
	}

	now := m.now()
	if claims.ExpiresAt == nil || !now.Before(claims.ExpiresAt.Time) {
		return nil, ErrTokenExpired
	}
	if claims.IssuedAt != nil && claims.IssuedAt.Time.After(now) {
		return nil, ErrTokenInvalid
	}

	identity := &Identity{SessionID: claims.Subject}
	if claims.IssuedAt != nil {
		identity.IssuedAt = claims.IssuedAt.Time.UTC()
	}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	return identity, nil
}
