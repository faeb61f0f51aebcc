package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims extends JWT registered claims with the account's username.
// The subject carries the account ID.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

// TokenService issues and verifies signed session tokens.
//
// Tokens are stateless: verification is purely a function of the secret,
// the token, and the clock. There is no revocation list; a token is valid
// until its expiry.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService with the given HMAC secret and
// token lifetime. The secret is injected at construction rather than read
// from ambient state, so independent instances (e.g. in tests) cannot
// cross-contaminate.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

// Issue creates a signed HS256 token for the identity, expiring after the
// configured lifetime.
func (t *TokenService) Issue(identity Identity) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.AccountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			ID:        uuid.NewString(),
		},
		Username: identity.Username,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify validates a session token and returns the embedded identity.
//
// Failure modes:
//   - ErrTokenExpired: the token is past its expiry
//   - ErrTokenSignature: the signature does not match the secret
//   - ErrTokenMalformed: the token cannot be parsed, or its claims are
//     incomplete
func (t *TokenService) Verify(tokenString string) (Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(_ *jwt.Token) (any, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Identity{}, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Identity{}, ErrTokenSignature
		default:
			return Identity{}, fmt.Errorf("%w: %w", ErrTokenMalformed, err)
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Identity{}, ErrTokenMalformed
	}

	if claims.Subject == "" || claims.Username == "" {
		return Identity{}, fmt.Errorf("%w: missing identity claims", ErrTokenMalformed)
	}

	return Identity{AccountID: claims.Subject, Username: claims.Username}, nil
}
