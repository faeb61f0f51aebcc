package auth

import (
	"context"
	"net/http"
	"strings"
)

// OwnerResolver resolves the owning account of a device.
//
// Implementations return ok=false when the device identifier is not
// registered; err is reserved for store failures.
type OwnerResolver interface {
	OwnerOf(ctx context.Context, deviceID string) (ownerID string, ok bool, err error)
}

// Guard is the authorisation boundary for resource access.
//
// All device and sensor-reading operations must pass through
// AuthorizeDevice before reading or mutating data; ownership is the only
// access model and there are no row-level checks elsewhere.
type Guard struct {
	tokens *TokenService
	owners OwnerResolver
}

// NewGuard creates a Guard over the given token service and owner resolver.
func NewGuard(tokens *TokenService, owners OwnerResolver) *Guard {
	return &Guard{tokens: tokens, owners: owners}
}

// Authenticate extracts and verifies the bearer token from a request.
//
// Failure modes: ErrMissingToken (no Authorization header or not a Bearer
// scheme), plus the TokenService.Verify taxonomy (ErrTokenMalformed,
// ErrTokenSignature, ErrTokenExpired).
func (g *Guard) Authenticate(r *http.Request) (Identity, error) {
	token, err := bearerToken(r)
	if err != nil {
		return Identity{}, err
	}
	return g.tokens.Verify(token)
}

// AuthorizeDevice checks that identity owns the device.
//
// Returns nil when the device's registered owner equals the identity,
// ErrDeviceNotFound for an unregistered device identifier, and
// ErrForbidden when the device exists but belongs to another account.
func (g *Guard) AuthorizeDevice(ctx context.Context, identity Identity, deviceID string) error {
	ownerID, ok, err := g.owners.OwnerOf(ctx, deviceID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrDeviceNotFound
	}
	if ownerID != identity.AccountID {
		return ErrForbidden
	}
	return nil
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrMissingToken
	}

	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", ErrMissingToken
	}

	token := strings.TrimSpace(header[len(prefix):])
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}
