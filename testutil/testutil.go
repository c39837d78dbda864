// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielhkuo/votegate/cliparse"
	"github.com/danielhkuo/votegate/db"
	"github.com/danielhkuo/votegate/ledger"
	"github.com/danielhkuo/votegate/models"
)

// TestAdminPIN is the PIN in GetTestConfig
const TestAdminPIN = "45644779"

// SetupTestLedger opens a fresh SQLite ledger in a temporary directory.
// The ledger is closed when the test finishes.
func SetupTestLedger(t *testing.T) *ledger.Store {
	t.Helper()

	store, err := ledger.Open(db.SQLite, filepath.Join(t.TempDir(), "votes.db"), 5*time.Second)
	if err != nil {
		t.Fatalf("Failed to open test ledger: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

// GetTestConfig returns a standard test configuration with voting open
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:               3001,
		DatabaseURL:        ":memory:",
		DatabaseType:       "sqlite",
		AdminPIN:           TestAdminPIN,
		SessionSalt:        "test-session-salt",
		MaxVotesPerNetwork: 3,
		StartOpen:          true,
		RateLimit:          1000,
		RateWindow:         time.Minute,
		QueryTimeout:       5 * time.Second,
		TrustProxy:         true,
	}
}

// VoteBody builds a vote request body with a collector-style hardware profile
func VoteBody(candidateID, categoryID, voterToken, hardwareProfile string) models.VoteRequest {
	return models.VoteRequest{
		CandidateID:       candidateID,
		CategoryID:        categoryID,
		VoterToken:        voterToken,
		HardwareProfile:   hardwareProfile,
		DeviceFingerprint: "fp-" + voterToken,
	}
}

// CountVotes returns the number of votes in the ledger
func CountVotes(t *testing.T, store *ledger.Store) int {
	t.Helper()

	n, err := store.Count(context.Background())
	if err != nil {
		t.Fatalf("Failed to count votes: %v", err)
	}
	return n
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// FromAddress sets the client address a request appears to come from
func FromAddress(req *http.Request, ip string) *http.Request {
	req.Header.Set("X-Forwarded-For", ip)
	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
