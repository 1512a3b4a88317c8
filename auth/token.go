// Package auth resolves caller tokens into principals.
package auth

import (
	"chat-core/contract"
	"chat-core/domain"
	"chat-core/errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var _ contract.IdentityResolver = (*TokenIdentity)(nil)

// CustomClaims defines the data stored inside the JWT.
type CustomClaims struct {
	UserID string   `json:"user_id"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}

// TokenIdentity issues and verifies HS256 tokens signed with a shared secret.
type TokenIdentity struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIdentity(secret, issuer string, ttl time.Duration) *TokenIdentity {
	return &TokenIdentity{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}
}

func (t *TokenIdentity) WithClock(now func() time.Time) *TokenIdentity {
	t.now = now
	return t
}

// GenerateToken creates a signed JWT for userID.
func (t *TokenIdentity) GenerateToken(userID string, roles []string) (string, error) {
	now := t.now()
	claims := &CustomClaims{
		UserID: userID,
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    t.issuer,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Resolve validates signature, issuer and expiry of token.
// Every failure is reported as ErrUnauthenticated.
func (t *TokenIdentity) Resolve(token string) (domain.Principal, error) {
	if token == "" {
		return domain.Principal{}, fmt.Errorf("%w: missing token", errors.ErrUnauthenticated)
	}
	parsed, err := jwt.ParseWithClaims(token, &CustomClaims{},
		func(token *jwt.Token) (interface{}, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%w: %v", errors.ErrUnauthenticated, err)
	}
	claims, ok := parsed.Claims.(*CustomClaims)
	if !ok || !parsed.Valid || claims.UserID == "" {
		return domain.Principal{}, fmt.Errorf("%w: invalid claims", errors.ErrUnauthenticated)
	}
	return domain.Principal{UserID: claims.UserID, Roles: claims.Roles}, nil
}
