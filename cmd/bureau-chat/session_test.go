// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/bureau-chat/lib/config"
	"github.com/bureau-foundation/bureau-chat/lib/secret"
	"github.com/bureau-foundation/bureau-chat/messaging"
)

// newHomeserver serves the endpoints openSession touches. Tokens map
// to their owners; "hunter2" is the only accepted password.
func newHomeserver(t *testing.T) *httptest.Server {
	t.Helper()
	owners := map[string]string{
		"alice-token": "@alice:local",
		"bob-token":   "@bob:local",
	}

	writeError := func(w http.ResponseWriter, status int, code string) {
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]string{"errcode": code, "error": code})
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /_matrix/client/versions", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"versions": []string{"v1.11"}})
	})
	mux.HandleFunc("GET /_matrix/client/v3/account/whoami", func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		owner, ok := owners[token]
		if !ok {
			writeError(w, http.StatusUnauthorized, messaging.ErrCodeUnknownToken)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"user_id": owner})
	})
	mux.HandleFunc("POST /_matrix/client/v3/login", func(w http.ResponseWriter, r *http.Request) {
		var request messaging.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			writeError(w, http.StatusBadRequest, messaging.ErrCodeInvalidParam)
			return
		}
		if request.Password != "hunter2" {
			writeError(w, http.StatusForbidden, messaging.ErrCodeForbidden)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{
			"user_id":      request.Identifier.User,
			"access_token": "fresh-token",
			"device_id":    "DEVICE1",
		})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func testConfig(homeserverURL string) *config.Config {
	cfg := config.Default()
	cfg.HomeserverURL = homeserverURL
	cfg.UserID = "@alice:local"
	return cfg
}

func writeSecretFile(t *testing.T, value string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "secret")
	if err := os.WriteFile(path, []byte(value+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func requireCategory(t *testing.T, err error, want errorCategory) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected a %s error, got nil", want)
	}
	var cliErr *cliError
	if !errors.As(err, &cliErr) {
		t.Fatalf("error %v is not a *cliError", err)
	}
	if cliErr.Category != want {
		t.Errorf("category = %s, want %s (error: %v)", cliErr.Category, want, err)
	}
}

func TestOpenSessionWithTokenFile(t *testing.T) {
	server := newHomeserver(t)

	t.Run("valid token", func(t *testing.T) {
		cfg := testConfig(server.URL)
		cfg.AccessTokenFile = writeSecretFile(t, "alice-token")

		client, session, err := openSession(t.Context(), cfg, credentials{}, discardLogger())
		if err != nil {
			t.Fatalf("openSession: %v", err)
		}
		defer client.CloseIdleConnections()
		defer session.Close()
		if session.UserID().String() != "@alice:local" {
			t.Errorf("UserID = %s", session.UserID())
		}
	})

	t.Run("token for another user", func(t *testing.T) {
		cfg := testConfig(server.URL)
		cfg.AccessTokenFile = writeSecretFile(t, "bob-token")

		_, _, err := openSession(t.Context(), cfg, credentials{}, discardLogger())
		requireCategory(t, err, categoryValidation)
		if err != nil && !strings.Contains(err.Error(), "belongs to @bob:local") {
			t.Errorf("error = %q, want owner mismatch", err)
		}
	})

	t.Run("revoked token", func(t *testing.T) {
		cfg := testConfig(server.URL)
		cfg.AccessTokenFile = writeSecretFile(t, "stale-token")

		_, _, err := openSession(t.Context(), cfg, credentials{}, discardLogger())
		requireCategory(t, err, categoryForbidden)
	})

	t.Run("missing token file", func(t *testing.T) {
		cfg := testConfig(server.URL)
		cfg.AccessTokenFile = filepath.Join(t.TempDir(), "absent")

		_, _, err := openSession(t.Context(), cfg, credentials{}, discardLogger())
		requireCategory(t, err, categoryValidation)
	})
}

func TestOpenSessionWithPassword(t *testing.T) {
	server := newHomeserver(t)

	t.Run("password file", func(t *testing.T) {
		creds := credentials{passwordFile: writeSecretFile(t, "hunter2")}
		client, session, err := openSession(t.Context(), testConfig(server.URL), creds, discardLogger())
		if err != nil {
			t.Fatalf("openSession: %v", err)
		}
		defer client.CloseIdleConnections()
		defer session.Close()
		if session.DeviceID() != "DEVICE1" {
			t.Errorf("DeviceID = %q", session.DeviceID())
		}
	})

	t.Run("prompt", func(t *testing.T) {
		prompted := false
		creds := credentials{prompt: func() (*secret.Buffer, error) {
			prompted = true
			return secret.NewFromBytes([]byte("hunter2"))
		}}
		_, session, err := openSession(t.Context(), testConfig(server.URL), creds, discardLogger())
		if err != nil {
			t.Fatalf("openSession: %v", err)
		}
		defer session.Close()
		if !prompted {
			t.Error("prompt was not called")
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		creds := credentials{passwordFile: writeSecretFile(t, "guess")}
		_, _, err := openSession(t.Context(), testConfig(server.URL), creds, discardLogger())
		requireCategory(t, err, categoryForbidden)
	})

	t.Run("no way to get a password", func(t *testing.T) {
		_, _, err := openSession(t.Context(), testConfig(server.URL), credentials{}, discardLogger())
		requireCategory(t, err, categoryValidation)
	})
}

func TestOpenSessionUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, _, err := openSession(t.Context(), testConfig(url), credentials{}, discardLogger())
	requireCategory(t, err, categoryTransient)
	if err != nil && !strings.Contains(err.Error(), "hint: Check homeserver_url") {
		t.Errorf("error = %q, want the homeserver_url hint", err)
	}
}

func TestOpenSessionInvalidUserID(t *testing.T) {
	cfg := testConfig("http://localhost:1")
	cfg.UserID = "alice"
	_, _, err := openSession(t.Context(), cfg, credentials{}, discardLogger())
	requireCategory(t, err, categoryValidation)
}
