package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/avollmer/sentra/internal/auth"
)

// registerRequest is the request body for POST /auth/register.
type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginRequest is the request body for POST /auth/login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// sessionResponse is the response body for successful register and login.
type sessionResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresIn   int             `json:"expires_in"`
	Account     accountResponse `json:"account"`
}

// accountResponse is the public view of an account identity.
type accountResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// handleRegister creates a new account and returns a session token.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	session, err := s.auth.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		var verr *auth.ValidationError
		switch {
		case errors.As(err, &verr):
			writeBadRequest(w, verr.Error())
		case errors.Is(err, auth.ErrUsernameExists):
			writeConflict(w, "username already taken")
		case errors.Is(err, auth.ErrEmailExists):
			writeConflict(w, "email already registered")
		default:
			s.logger.Error("registration failed", "error", err)
			writeInternalError(w, "registration failed")
		}
		return
	}

	writeJSON(w, http.StatusCreated, s.sessionResponse(session))
}

// handleLogin verifies credentials and returns a session token.
//
// Wrong password and unknown email produce the same generic 401; the body
// carries remaining_attempts while the account still has attempts left. A
// locked account is a distinct 403 so callers can stop retrying.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	session, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		var cerr *auth.CredentialsError
		switch {
		case errors.Is(err, auth.ErrAccountLocked):
			writeError(w, http.StatusForbidden, ErrCodeAccountLocked,
				"account locked due to repeated failed login attempts")
		case errors.As(err, &cerr):
			writeJSON(w, http.StatusUnauthorized, Error{
				Status:            http.StatusUnauthorized,
				Code:              ErrCodeUnauthorized,
				Message:           "invalid credentials",
				RemainingAttempts: &cerr.Remaining,
			})
		case errors.Is(err, auth.ErrAccountNotFound):
			// Indistinguishable from a wrong password.
			writeUnauthorized(w, "invalid credentials")
		default:
			s.logger.Error("login failed", "error", err)
			writeInternalError(w, "login failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, s.sessionResponse(session))
}

// handleMe returns the identity of the authenticated caller.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r)
	if !ok {
		writeUnauthorized(w, "authentication required")
		return
	}

	writeJSON(w, http.StatusOK, accountResponse{
		ID:       identity.AccountID,
		Username: identity.Username,
	})
}

// sessionResponse builds the response body for an issued session.
func (s *Server) sessionResponse(session *auth.Session) sessionResponse {
	return sessionResponse{
		AccessToken: session.Token,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.tokenTTL.Seconds()),
		Account: accountResponse{
			ID:       session.Identity.AccountID,
			Username: session.Identity.Username,
		},
	}
}
