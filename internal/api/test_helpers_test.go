package api

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/avollmer/sentra/internal/auth"
	"github.com/avollmer/sentra/internal/device"
	"github.com/avollmer/sentra/internal/infrastructure/config"
	"github.com/avollmer/sentra/internal/infrastructure/logging"
	"github.com/avollmer/sentra/internal/sensor"
)

const testJWTSecret = "api-test-secret-0123456789abcdef-xyz"

// testServer builds a full API server over a temp SQLite database and
// returns its router for httptest-driven requests.
func testServer(t *testing.T) http.Handler {
	t.Helper()

	db := apiTestDB(t)

	logger := logging.New(config.Logging{Level: "error", Format: "text"}, "test")
	tokens := auth.NewTokenService(testJWTSecret, time.Hour)
	accounts := auth.NewAccountRepository(db)
	devices := device.NewRepository(db)
	readings := sensor.NewRepository(db)

	authSvc := auth.NewService(accounts, auth.NewHasher(4), tokens, logger)
	guard := auth.NewGuard(tokens, devices)
	recorder := sensor.NewRecorder(readings, nil, logger)

	server, err := New(Deps{
		Config:    config.API{Host: "127.0.0.1", Port: 8080},
		TokenTTL:  time.Hour,
		Logger:    logger,
		Auth:      authSvc,
		Guard:     guard,
		Devices:   devices,
		Readings:  readings,
		Recorder:  recorder,
		Generator: sensor.NewGenerator(1),
		Version:   "test",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	return server.buildRouter()
}

// apiTestDB creates a temp SQLite database with the full schema.
func apiTestDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp("", "api-test-*.db")
	if err != nil {
		t.Fatalf("creating temp db: %v", err)
	}
	dbPath := f.Name()
	f.Close()
	t.Cleanup(func() { os.Remove(dbPath) })

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schema := `
		CREATE TABLE accounts (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			failed_attempts INTEGER NOT NULL DEFAULT 0,
			locked INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		) STRICT;

		CREATE TABLE devices (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			name TEXT NOT NULL,
			kind TEXT NOT NULL,
			location TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			FOREIGN KEY (owner_id) REFERENCES accounts(id) ON DELETE CASCADE
		) STRICT;

		CREATE TABLE sensor_readings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			device_id TEXT NOT NULL,
			metric TEXT NOT NULL,
			value REAL NOT NULL,
			unit TEXT NOT NULL DEFAULT '',
			recorded_at TEXT NOT NULL,
			FOREIGN KEY (device_id) REFERENCES devices(id) ON DELETE CASCADE
		) STRICT;
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("creating schema: %v", err)
	}

	return db
}

// doJSON performs a request with a JSON body and optional bearer token.
func doJSON(t *testing.T, handler http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshalling request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// decodeBody unmarshals a recorded JSON response body.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()

	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
}

// registerAccount registers a user through the API and returns the session token.
func registerAccount(t *testing.T, handler http.Handler, username, email, password string) string {
	t.Helper()

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: status = %d, body = %s", username, rec.Code, rec.Body.String())
	}

	var resp sessionResponse
	decodeBody(t, rec, &resp)
	if resp.AccessToken == "" {
		t.Fatal("register should return an access token")
	}
	return resp.AccessToken
}

// createTestDevice creates a device through the API and returns its ID.
func createTestDevice(t *testing.T, handler http.Handler, token, name, kind string) string {
	t.Helper()

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/devices", token, map[string]string{
		"name": name,
		"kind": kind,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create device %s: status = %d, body = %s", name, rec.Code, rec.Body.String())
	}

	var created device.Device
	decodeBody(t, rec, &created)
	return created.ID
}
