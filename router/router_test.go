// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/votegate/models"
	"github.com/danielhkuo/votegate/testutil"
)

const profile = "390x844|iOS|Asia/Yangon|6"

func TestHealthEndpoint(t *testing.T) {
	store := testutil.SetupTestLedger(t)

	cfg := testutil.GetTestConfig()
	mux := NewRouter(store, cfg)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	if w.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got '%s'", w.Body.String())
	}
}

func TestRootEndpoint(t *testing.T) {
	store := testutil.SetupTestLedger(t)

	cfg := testutil.GetTestConfig()
	mux := NewRouter(store, cfg)

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	expected := "votegate API v1"
	if w.Body.String() != expected {
		t.Errorf("Expected body '%s', got '%s'", expected, w.Body.String())
	}
}

func TestRouteExistence(t *testing.T) {
	store := testutil.SetupTestLedger(t)

	cfg := testutil.GetTestConfig()
	mux := NewRouter(store, cfg)

	// 400 and 401 are valid responses for empty bodies
	testCases := []struct {
		method string
		path   string
	}{
		{"GET", "/health"},
		{"GET", "/metrics"},
		{"GET", "/"},
		{"POST", "/api/vote"},
		{"GET", "/api/stats"},
		{"POST", "/api/reset"},
		{"POST", "/api/admin-auth"},
		{"GET", "/api/system-status"},
		{"POST", "/api/system-status"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code == http.StatusMethodNotAllowed || w.Code == http.StatusNotFound {
				t.Errorf("Route %s %s returned %d, expected route handler to exist", tc.method, tc.path, w.Code)
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	store := testutil.SetupTestLedger(t)

	cfg := testutil.GetTestConfig()
	mux := NewRouter(store, cfg)

	testCases := []struct {
		method string
		path   string
	}{
		// GET requests fall through to the root handler
		{"POST", "/health"},
		{"POST", "/api/stats"},
		{"DELETE", "/api/stats"},
		{"PUT", "/api/system-status"},
		{"DELETE", "/api/vote"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("Expected 405 for %s %s, got %d", tc.method, tc.path, w.Code)
			}
		})
	}
}

func TestVoteRateLimited(t *testing.T) {
	store := testutil.SetupTestLedger(t)

	cfg := testutil.GetTestConfig()
	cfg.RateLimit = 2
	mux := NewRouter(store, cfg)

	vote := func(voter, ip string) *httptest.ResponseRecorder {
		req := testutil.FromAddress(testutil.MakeRequest("POST", "/api/vote", testutil.VoteBody("k1", "KING", voter, profile), nil), ip)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)
		return w
	}

	testutil.AssertStatus(t, vote("v1", "10.0.0.1"), http.StatusOK)
	testutil.AssertStatus(t, vote("v1", "10.0.0.1"), http.StatusForbidden)

	w := vote("v2", "10.0.0.1")
	testutil.AssertStatus(t, w, http.StatusTooManyRequests)
	if w.Header().Get("Retry-After") == "" {
		t.Error("Expected a Retry-After header")
	}

	var resp models.VoteResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Error != models.ReasonRateLimited {
		t.Errorf("Expected RATE_LIMITED, got %s", resp.Error)
	}

	// Other addresses keep their own budget
	testutil.AssertStatus(t, vote("v2", "10.0.0.2"), http.StatusOK)

	if n := testutil.CountVotes(t, store); n != 2 {
		t.Errorf("Expected 2 votes, got %d", n)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	store := testutil.SetupTestLedger(t)

	cfg := testutil.GetTestConfig()
	mux := NewRouter(store, cfg)

	for _, voter := range []string{"v1", "v1"} {
		req := testutil.FromAddress(testutil.MakeRequest("POST", "/api/vote", testutil.VoteBody("k1", "KING", voter, profile), nil), "10.0.0.1")
		mux.ServeHTTP(httptest.NewRecorder(), req)
	}

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	body := w.Body.String()
	for _, want := range []string{
		"votegate_votes_admitted_total 1",
		`votegate_votes_rejected_total{reason="ALREADY_VOTED"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected metrics to contain %q", want)
		}
	}
}

func TestPolicyToggles(t *testing.T) {
	store := testutil.SetupTestLedger(t)

	cfg := testutil.GetTestConfig()
	cfg.DisableDeviceCheck = true
	cfg.MaxVotesPerNetwork = 1
	cfg.DisableNetworkLimit = true
	mux := NewRouter(store, cfg)

	// Same device and network, different tokens: all accepted
	for _, voter := range []string{"v1", "v2", "v3"} {
		req := testutil.FromAddress(testutil.MakeRequest("POST", "/api/vote", testutil.VoteBody("k1", "KING", voter, profile), nil), "10.0.0.1")
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)
		testutil.AssertStatus(t, w, http.StatusOK)
	}
}

func TestSystemStatusStartsFromConfig(t *testing.T) {
	store := testutil.SetupTestLedger(t)

	cfg := testutil.GetTestConfig()
	cfg.StartOpen = false
	cfg.MaxVotesPerNetwork = 7
	mux := NewRouter(store, cfg)

	req := httptest.NewRequest("GET", "/api/system-status", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	var resp models.SystemStatusResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.IsOpen || resp.MaxVotesPerNetwork != 7 {
		t.Errorf("Expected closed with limit 7, got %+v", resp)
	}
}
