package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrInvalidToken is returned when a presented session token fails
// validation. This is a setup error surfaced to the caller.
var ErrInvalidToken = errors.New("invalid session token")

// Manager is the anonymous identity provider. Each session gets a
// stable opaque identifier wrapped in a signed token; presenting the
// token on reconnect yields the same identifier, which is what lets a
// player re-use their seat.
type Manager struct {
	secret []byte
	ttl    time.Duration
	logger *zap.Logger
}

// NewManager creates a session manager signing tokens with the given secret.
func NewManager(secret string, ttl time.Duration, logger *zap.Logger) *Manager {
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		logger: logger,
	}
}

// Issue mints a fresh anonymous session.
func (m *Manager) Issue() (uid, token string, err error) {
	uid = uuid.NewString()
	token, err = m.TokenFor(uid)
	if err != nil {
		return "", "", err
	}
	if m.logger != nil {
		m.logger.Debug("issued anonymous session", zap.String("uid", uid))
	}
	return uid, token, nil
}

// TokenFor signs a token carrying the given session identifier.
func (m *Manager) TokenFor(uid string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   uid,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Validate checks a token and returns the session identifier it carries.
func (m *Manager) Validate(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			return m.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
