package api

import (
	"net/http"
	"testing"
)

func TestRegisterLoginMeRoundTrip(t *testing.T) {
	handler := testServer(t)

	token := registerAccount(t, handler, "alice", "alice@example.com", "correct horse battery")

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/auth/me", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /auth/me status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var me accountResponse
	decodeBody(t, rec, &me)
	if me.Username != "alice" {
		t.Errorf("Username = %q, want alice", me.Username)
	}
	if me.ID == "" {
		t.Error("ID should not be empty")
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "correct horse battery",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var session sessionResponse
	decodeBody(t, rec, &session)
	if session.AccessToken == "" {
		t.Error("login should return an access token")
	}
	if session.TokenType != "Bearer" {
		t.Errorf("TokenType = %q, want Bearer", session.TokenType)
	}
	if session.Account.Username != "alice" {
		t.Errorf("Account.Username = %q, want alice", session.Account.Username)
	}
}

func TestRegisterValidationAndConflicts(t *testing.T) {
	handler := testServer(t)

	registerAccount(t, handler, "alice", "alice@example.com", "password-one")

	tests := []struct {
		name       string
		body       map[string]string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "short password",
			body:       map[string]string{"username": "bob", "email": "bob@example.com", "password": "short"},
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrCodeBadRequest,
		},
		{
			name:       "bad email",
			body:       map[string]string{"username": "bob", "email": "not-an-email", "password": "password-two"},
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrCodeBadRequest,
		},
		{
			name:       "missing username",
			body:       map[string]string{"email": "bob@example.com", "password": "password-two"},
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrCodeBadRequest,
		},
		{
			name:       "duplicate username",
			body:       map[string]string{"username": "alice", "email": "other@example.com", "password": "password-two"},
			wantStatus: http.StatusConflict,
			wantCode:   ErrCodeConflict,
		},
		{
			name:       "duplicate email",
			body:       map[string]string{"username": "bob", "email": "alice@example.com", "password": "password-two"},
			wantStatus: http.StatusConflict,
			wantCode:   ErrCodeConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, handler, http.MethodPost, "/api/v1/auth/register", "", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d, body = %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			var apiErr Error
			decodeBody(t, rec, &apiErr)
			if apiErr.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", apiErr.Code, tt.wantCode)
			}
		})
	}
}

func TestLoginFailuresCountDownThenLock(t *testing.T) {
	handler := testServer(t)
	registerAccount(t, handler, "alice", "alice@example.com", "password-one")

	// First two failures report how many attempts remain.
	for attempt, wantRemaining := range []int{2, 1} {
		rec := doJSON(t, handler, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"email":    "alice@example.com",
			"password": "wrong-password",
		})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: status = %d, want 401", attempt+1, rec.Code)
		}
		var apiErr Error
		decodeBody(t, rec, &apiErr)
		if apiErr.RemainingAttempts == nil || *apiErr.RemainingAttempts != wantRemaining {
			t.Fatalf("attempt %d: remaining_attempts = %v, want %d", attempt+1, apiErr.RemainingAttempts, wantRemaining)
		}
		if apiErr.Message != "invalid credentials" {
			t.Errorf("attempt %d: message = %q, want generic message", attempt+1, apiErr.Message)
		}
	}

	// The third failure locks the account.
	rec := doJSON(t, handler, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("third failure: status = %d, want 403, body = %s", rec.Code, rec.Body.String())
	}
	var apiErr Error
	decodeBody(t, rec, &apiErr)
	if apiErr.Code != ErrCodeAccountLocked {
		t.Errorf("code = %q, want %q", apiErr.Code, ErrCodeAccountLocked)
	}

	// The correct password no longer helps.
	rec = doJSON(t, handler, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "password-one",
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("after lock: status = %d, want 403", rec.Code)
	}
	decodeBody(t, rec, &apiErr)
	if apiErr.Code != ErrCodeAccountLocked {
		t.Errorf("after lock: code = %q, want %q", apiErr.Code, ErrCodeAccountLocked)
	}
}

func TestLoginSuccessResetsFailureCount(t *testing.T) {
	handler := testServer(t)
	registerAccount(t, handler, "alice", "alice@example.com", "password-one")

	for i := 0; i < 2; i++ {
		rec := doJSON(t, handler, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"email":    "alice@example.com",
			"password": "wrong-password",
		})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("failure %d: status = %d, want 401", i+1, rec.Code)
		}
	}

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "password-one",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("correct login: status = %d, want 200", rec.Code)
	}

	// The counter restarted, so a failure reports two attempts left again.
	rec = doJSON(t, handler, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("post-reset failure: status = %d, want 401", rec.Code)
	}
	var apiErr Error
	decodeBody(t, rec, &apiErr)
	if apiErr.RemainingAttempts == nil || *apiErr.RemainingAttempts != 2 {
		t.Errorf("remaining_attempts = %v, want 2", apiErr.RemainingAttempts)
	}
}

func TestLoginUnknownEmailIsGeneric(t *testing.T) {
	handler := testServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "nobody@example.com",
		"password": "whatever-password",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	var apiErr Error
	decodeBody(t, rec, &apiErr)
	if apiErr.Message != "invalid credentials" {
		t.Errorf("message = %q, should not reveal whether the account exists", apiErr.Message)
	}
	if apiErr.RemainingAttempts != nil {
		t.Errorf("remaining_attempts = %v, want absent for unknown accounts", apiErr.RemainingAttempts)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	handler := testServer(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/auth/me"},
		{http.MethodGet, "/api/v1/devices"},
		{http.MethodPost, "/api/v1/devices"},
		{http.MethodGet, "/api/v1/devices/dev-x/readings"},
	}

	for _, p := range paths {
		rec := doJSON(t, handler, p.method, p.path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: status = %d, want 401", p.method, p.path, rec.Code)
		}
	}

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/auth/me", "not-a-valid-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("garbage token: status = %d, want 401", rec.Code)
	}
}

func TestHealthIsPublic(t *testing.T) {
	handler := testServer(t)

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]any
	decodeBody(t, rec, &body)
	if body["status"] != "ok" {
		t.Errorf("status = %v, want ok", body["status"])
	}
}
