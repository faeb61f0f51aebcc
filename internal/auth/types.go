package auth

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"time"
)

// usernamePattern defines the valid format for usernames:
// alphanumeric, dots, hyphens, underscores, 1-64 characters.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,64}$`)

// Credential limits.
const (
	// maxUsernameLength is the maximum allowed username length.
	maxUsernameLength = 64

	// minPasswordLength is the minimum allowed password length.
	minPasswordLength = 8

	// maxPasswordLength caps password input; bcrypt only uses the first
	// 72 bytes, so longer inputs are rejected rather than silently truncated.
	maxPasswordLength = 72
)

// IsValidUsername checks if a username meets format requirements.
// Usernames must be 1-64 characters, alphanumeric with dots, hyphens, underscores.
func IsValidUsername(username string) bool {
	return len(username) <= maxUsernameLength && usernamePattern.MatchString(username)
}

// IsValidEmail checks that an email address parses per RFC 5322.
func IsValidEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// Account represents a registered user account.
//
// FailedAttempts and Locked together form the lockout state: Locked is
// true iff FailedAttempts reached the lockout threshold since the last
// successful login. The counter resets to zero on every successful
// authentication.
type Account struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"` // never serialised
	FailedAttempts int       `json:"-"`
	Locked         bool      `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// State returns the account's lockout state.
func (a *Account) State() AccountState {
	return AccountState{FailedAttempts: a.FailedAttempts, Locked: a.Locked}
}

// Identity is the authenticated subject extracted from a verified token.
type Identity struct {
	AccountID string `json:"account_id"`
	Username  string `json:"username"`
}

// Session is the result of a successful registration or login.
type Session struct {
	Identity Identity
	Token    string
}

// Sentinel errors for auth operations.
var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrUsernameExists     = errors.New("username already exists")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account is locked")

	ErrMissingToken   = errors.New("missing bearer token")
	ErrTokenMalformed = errors.New("malformed token")
	ErrTokenSignature = errors.New("invalid token signature")
	ErrTokenExpired   = errors.New("token has expired")

	ErrForbidden      = errors.New("insufficient permissions")
	ErrDeviceNotFound = errors.New("device not found")
)

// ValidationError describes rejected registration input. The field name is
// safe to surface to callers; it never echoes the submitted value.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// CredentialsError is returned on a failed login while the account is still
// active. Remaining is the number of attempts left before lockout.
//
// It unwraps to ErrInvalidCredentials so callers can match with errors.Is
// without caring about the counter.
type CredentialsError struct {
	Remaining int
}

func (e *CredentialsError) Error() string {
	return "invalid credentials"
}

func (e *CredentialsError) Unwrap() error {
	return ErrInvalidCredentials
}
