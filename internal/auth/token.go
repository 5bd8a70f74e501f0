package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrRevokedToken = errors.New("token has been revoked")
)

// Identity is the authenticated principal resolved from a credential.
type Identity struct {
	UserID      int64
	Email       string
	DisplayName string
}

// TokenStore is the persisted token record lookup. A JWT that verifies
// cryptographically is still rejected unless its record exists and has
// not expired, so logout revokes access immediately.
type TokenStore interface {
	Lookup(ctx context.Context, token string) (Identity, error)
}

// AppClaims is the JWT claim set issued at login.
type AppClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// Manager mints and validates access tokens.
type Manager struct {
	secret []byte
	ttl    time.Duration
	store  TokenStore
}

func NewManager(secret string, ttl time.Duration, store TokenStore) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl, store: store}
}

// TTL returns the configured token lifetime.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Mint signs a new access token for the identity.
func (m *Manager) Mint(id Identity) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(m.ttl)

	claims := AppClaims{
		Email: id.Email,
		Name:  id.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(id.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, expiresAt, nil
}

// Validate verifies the JWT signature and time claims, then confirms
// the token record still exists in the store. The identity returned is
// the one persisted with the token record.
func (m *Manager) Validate(ctx context.Context, tokenString string) (Identity, error) {
	if tokenString == "" {
		return Identity{}, ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &AppClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(*AppClaims)
	if !ok || claims.Subject == "" {
		return Identity{}, ErrInvalidToken
	}

	id, err := m.store.Lookup(ctx, tokenString)
	if err != nil {
		return Identity{}, ErrRevokedToken
	}
	return id, nil
}
