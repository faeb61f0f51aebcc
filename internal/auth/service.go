package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/avollmer/sentra/internal/infrastructure/logging"
)

// Service implements the authentication boundary: registration, login with
// progressive lockout, and identity resolution from session tokens.
type Service struct {
	accounts AccountRepository
	hasher   *Hasher
	tokens   *TokenService
	logger   *logging.Logger

	// locks serialises lockout bookkeeping per account. The read-modify-write
	// of the failure counter (read counter, decide outcome, write counter and
	// lock flag) must be atomic per account, otherwise a failed attempt
	// interleaved with a successful one can lose an update. Attempts against
	// different accounts proceed independently.
	locks keyedLocks
}

// NewService constructs the auth service. The hasher and token service carry
// their own configuration (bcrypt cost, signing secret, token lifetime).
func NewService(accounts AccountRepository, hasher *Hasher, tokens *TokenService, logger *logging.Logger) *Service {
	return &Service{
		accounts: accounts,
		hasher:   hasher,
		tokens:   tokens,
		logger:   logger.With("component", "auth"),
	}
}

// Register creates a new account and returns a session for it.
//
// Input is validated first (username format, email format, password length).
// Duplicate usernames or emails surface as ErrUsernameExists / ErrEmailExists.
func (s *Service) Register(ctx context.Context, username, email, password string) (*Session, error) {
	if err := validateRegistration(username, email, password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	account := &Account{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info("account registered", "account_id", account.ID, "username", username)

	return s.newSession(account)
}

// Login verifies credentials for the account registered under email and
// drives the lockout state machine.
//
// Failure modes:
//   - ErrAccountNotFound: no account for the email. The HTTP layer maps
//     this to the same generic response as wrong credentials.
//   - ErrAccountLocked: the account is locked; the password is not
//     evaluated and the state does not change.
//   - *CredentialsError: wrong password; Remaining carries the attempts
//     left before lockout (zero when this attempt locked the account, in
//     which case ErrAccountLocked is returned instead).
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	// Serialise per login key. The account is re-read under the lock so two
	// concurrent attempts cannot both observe the same counter value.
	unlock := s.locks.lock(email)
	defer unlock()

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if account.Locked {
		s.logger.Warn("login attempt on locked account", "account_id", account.ID)
		return nil, ErrAccountLocked
	}

	passwordOK := s.hasher.Verify(password, account.PasswordHash)
	outcome := Advance(account.State(), passwordOK)

	if outcome.State != account.State() {
		if err := s.accounts.UpdateLoginState(ctx, account.ID, outcome.State.FailedAttempts, outcome.State.Locked); err != nil {
			return nil, fmt.Errorf("persisting login state: %w", err)
		}
	}

	if !outcome.Allowed {
		if outcome.State.Locked {
			s.logger.Warn("account locked after repeated failures", "account_id", account.ID)
			return nil, ErrAccountLocked
		}
		s.logger.Info("failed login attempt",
			"account_id", account.ID,
			"remaining", outcome.Remaining,
		)
		return nil, &CredentialsError{Remaining: outcome.Remaining}
	}

	return s.newSession(account)
}

// CurrentIdentity resolves the identity embedded in a session token.
// Verification is stateless; no store access occurs.
func (s *Service) CurrentIdentity(token string) (Identity, error) {
	return s.tokens.Verify(token)
}

// newSession issues a token for the account.
func (s *Service) newSession(account *Account) (*Session, error) {
	identity := Identity{AccountID: account.ID, Username: account.Username}
	token, err := s.tokens.Issue(identity)
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}
	return &Session{Identity: identity, Token: token}, nil
}

// validateRegistration checks registration input.
func validateRegistration(username, email, password string) error {
	if !IsValidUsername(username) {
		return &ValidationError{Field: "username", Reason: "must be 1-64 characters: letters, digits, dots, hyphens, underscores"}
	}
	if !IsValidEmail(email) {
		return &ValidationError{Field: "email", Reason: "must be a valid email address"}
	}
	if len(password) < minPasswordLength {
		return &ValidationError{Field: "password", Reason: fmt.Sprintf("must be at least %d characters", minPasswordLength)}
	}
	if len(password) > maxPasswordLength {
		return &ValidationError{Field: "password", Reason: fmt.Sprintf("must be at most %d characters", maxPasswordLength)}
	}
	return nil
}

// IsAuthFailure reports whether err is a credential-level failure, as
// opposed to a store or internal error.
func IsAuthFailure(err error) bool {
	return errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrAccountLocked)
}

// keyedLocks provides one mutex per key. Entries are created on demand and
// kept for the process lifetime; the key space is bounded by the number of
// accounts that attempt to log in.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// lock acquires the mutex for key and returns its unlock function.
func (k *keyedLocks) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
