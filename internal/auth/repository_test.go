package auth

import (
	"context"
	"errors"
	"testing"
)

func TestAccountRepository_CreateAndGet(t *testing.T) {
	repo := NewAccountRepository(testDB(t))
	ctx := context.Background()

	account := &Account{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "$2a$10$fakehash",
	}
	if err := repo.Create(ctx, account); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if account.ID == "" {
		t.Fatal("Create() should generate an ID")
	}

	byEmail, err := repo.GetByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if byEmail.Username != "alice" || byEmail.ID != account.ID {
		t.Errorf("GetByEmail() = %+v", byEmail)
	}
	if byEmail.FailedAttempts != 0 || byEmail.Locked {
		t.Errorf("new account should start Active(0), got %+v", byEmail.State())
	}

	byID, err := repo.GetByID(ctx, account.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if byID.Email != "alice@example.com" {
		t.Errorf("GetByID() email = %q", byID.Email)
	}
}

func TestAccountRepository_NotFound(t *testing.T) {
	repo := NewAccountRepository(testDB(t))
	ctx := context.Background()

	if _, err := repo.GetByEmail(ctx, "missing@example.com"); !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("GetByEmail() error = %v, want ErrAccountNotFound", err)
	}
	if _, err := repo.GetByID(ctx, "acc-missing"); !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("GetByID() error = %v, want ErrAccountNotFound", err)
	}
}

func TestAccountRepository_DuplicateUsername(t *testing.T) {
	repo := NewAccountRepository(testDB(t))
	ctx := context.Background()

	first := &Account{Username: "alice", Email: "alice@example.com", PasswordHash: "h"}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	dup := &Account{Username: "alice", Email: "other@example.com", PasswordHash: "h"}
	if err := repo.Create(ctx, dup); !errors.Is(err, ErrUsernameExists) {
		t.Errorf("Create() error = %v, want ErrUsernameExists", err)
	}
}

func TestAccountRepository_DuplicateEmail(t *testing.T) {
	repo := NewAccountRepository(testDB(t))
	ctx := context.Background()

	first := &Account{Username: "alice", Email: "alice@example.com", PasswordHash: "h"}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	dup := &Account{Username: "alice2", Email: "alice@example.com", PasswordHash: "h"}
	if err := repo.Create(ctx, dup); !errors.Is(err, ErrEmailExists) {
		t.Errorf("Create() error = %v, want ErrEmailExists", err)
	}
}

func TestAccountRepository_UpdateLoginState(t *testing.T) {
	repo := NewAccountRepository(testDB(t))
	ctx := context.Background()

	account := &Account{Username: "alice", Email: "alice@example.com", PasswordHash: "h"}
	if err := repo.Create(ctx, account); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := repo.UpdateLoginState(ctx, account.ID, 3, true); err != nil {
		t.Fatalf("UpdateLoginState() error = %v", err)
	}

	got, err := repo.GetByID(ctx, account.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.FailedAttempts != 3 || !got.Locked {
		t.Errorf("state = %+v, want Locked(3)", got.State())
	}

	// Reset back to active.
	if err := repo.UpdateLoginState(ctx, account.ID, 0, false); err != nil {
		t.Fatalf("UpdateLoginState() reset error = %v", err)
	}
	got, _ = repo.GetByID(ctx, account.ID)
	if got.FailedAttempts != 0 || got.Locked {
		t.Errorf("state after reset = %+v, want Active(0)", got.State())
	}
}

func TestAccountRepository_UpdateLoginStateMissing(t *testing.T) {
	repo := NewAccountRepository(testDB(t))

	err := repo.UpdateLoginState(context.Background(), "acc-missing", 1, false)
	if !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("UpdateLoginState() error = %v, want ErrAccountNotFound", err)
	}
}

func TestAccountRepository_Count(t *testing.T) {
	repo := NewAccountRepository(testDB(t))
	ctx := context.Background()

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 0 {
		t.Errorf("Count() = %d, want 0", count)
	}

	if err := repo.Create(ctx, &Account{Username: "alice", Email: "a@example.com", PasswordHash: "h"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	count, _ = repo.Count(ctx)
	if count != 1 {
		t.Errorf("Count() = %d, want 1", count)
	}
}
