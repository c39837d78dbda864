// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/votegate/admission"
	"github.com/danielhkuo/votegate/identity"
	"github.com/danielhkuo/votegate/models"
	"github.com/danielhkuo/votegate/testutil"
)

// TestFullEventWorkflow runs one voting event end to end:
// 1. Admin signs in and opens voting
// 2. Students vote, some are turned away
// 3. Admin raises the network quota mid-event
// 4. Stats reflect only accepted votes
// 5. Admin closes voting and resets the ledger
func TestFullEventWorkflow(t *testing.T) {
	store := testutil.SetupTestLedger(t)
	cfg := testutil.GetTestConfig()
	system := admission.NewSystemConfig(false, 2)
	votingHandler := NewVotingHandler(admission.NewController(store, system), identity.RequestExtractor{TrustProxy: true})
	resultsHandler := NewResultsHandler(store)
	adminHandler := NewAdminHandler(store, system, cfg)

	// Step 1: sign in, then open voting with the session cookie
	req := testutil.MakeRequest("POST", "/api/admin-auth", models.AdminRequest{PIN: testutil.TestAdminPIN}, nil)
	w := httptest.NewRecorder()
	adminHandler.Authenticate(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var session *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookie {
			session = c
		}
	}
	if session == nil {
		t.Fatal("Step 1 - no session cookie")
	}

	// Voting before the event opens is refused
	w = castVote(votingHandler, testutil.VoteBody("k1", "KING", "early", iphoneProfile), "192.0.2.1")
	testutil.AssertStatus(t, w, http.StatusForbidden)

	req = testutil.MakeRequest("POST", "/api/system-status", models.UpdateSystemStatusRequest{IsOpen: boolPtr(true)}, nil)
	req.AddCookie(session)
	w = httptest.NewRecorder()
	adminHandler.UpdateSystemStatus(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)
	t.Log("Step 1 - voting opened")

	// Step 2: three students share a dorm network with a quota of 2
	dorm := "198.51.100.20"
	steps := []struct {
		voter, hardware string
		status          int
	}{
		{"alice", "390x844|iOS|Asia/Yangon|6", http.StatusOK},
		{"alice", "390x844|iOS|Asia/Yangon|6", http.StatusForbidden},
		{"alice-incognito", "390x844|iOS|Asia/Yangon|6", http.StatusForbidden},
		{"bob", "412x915|Android|Asia/Yangon|8", http.StatusOK},
		{"carol", "1920x1080|Windows|Asia/Yangon|12", http.StatusForbidden},
	}
	for i, s := range steps {
		w = castVote(votingHandler, testutil.VoteBody("k1", "KING", s.voter, s.hardware), dorm)
		if w.Code != s.status {
			t.Fatalf("Step 2.%d - %s: expected %d, got %d: %s", i, s.voter, s.status, w.Code, w.Body.String())
		}
	}

	// Step 3: raise the quota so carol can vote
	req = testutil.MakeRequest("POST", "/api/system-status", models.UpdateSystemStatusRequest{
		PIN:                testutil.TestAdminPIN,
		MaxVotesPerNetwork: intPtr(3),
	}, nil)
	w = httptest.NewRecorder()
	adminHandler.UpdateSystemStatus(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	w = castVote(votingHandler, testutil.VoteBody("k2", "KING", "carol", "1920x1080|Windows|Asia/Yangon|12"), dorm)
	testutil.AssertStatus(t, w, http.StatusOK)

	// Step 4: stats
	req = httptest.NewRequest("GET", "/api/stats", nil)
	w = httptest.NewRecorder()
	resultsHandler.GetStats(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var tally models.Tally
	testutil.AssertJSON(t, w, &tally)
	if tally["k1"] != 2 || tally["k2"] != 1 || len(tally) != 2 {
		t.Errorf("Step 4 - unexpected tally %v", tally)
	}

	// Step 5: close and reset
	req = testutil.MakeRequest("POST", "/api/system-status", models.UpdateSystemStatusRequest{IsOpen: boolPtr(false)}, nil)
	req.AddCookie(session)
	w = httptest.NewRecorder()
	adminHandler.UpdateSystemStatus(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	w = castVote(votingHandler, testutil.VoteBody("k1", "KING", "dave", "360x800|Android|UTC|4"), "203.0.113.9")
	testutil.AssertStatus(t, w, http.StatusForbidden)

	req = httptest.NewRequest("POST", "/api/reset", nil)
	req.AddCookie(session)
	w = httptest.NewRecorder()
	adminHandler.Reset(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var reset models.ResetResponse
	testutil.AssertJSON(t, w, &reset)
	if reset.Deleted != 3 {
		t.Errorf("Step 5 - expected 3 deleted, got %d", reset.Deleted)
	}
	if n := testutil.CountVotes(t, store); n != 0 {
		t.Errorf("Step 5 - expected empty ledger, got %d", n)
	}
}

// TestRejectedVotesNotCounted checks that no rejection path writes to the
// ledger
func TestRejectedVotesNotCounted(t *testing.T) {
	handler, _, store := newTestVotingHandler(t)

	w := castVote(handler, testutil.VoteBody("k1", "KING", "v1", iphoneProfile), "10.9.0.1")
	testutil.AssertStatus(t, w, http.StatusOK)

	rejected := []models.VoteRequest{
		testutil.VoteBody("k1", "KING", "v1", iphoneProfile),
		testutil.VoteBody("k1", "KING", "v2", iphoneProfile),
		testutil.VoteBody("k1", "KING", "", iphoneProfile),
		testutil.VoteBody("k1", "", "v3", iphoneProfile),
	}
	for _, body := range rejected {
		w := castVote(handler, body, "10.9.0.1")
		if w.Code == http.StatusOK {
			t.Errorf("Expected %+v to be rejected", body)
		}
	}

	if n := testutil.CountVotes(t, store); n != 1 {
		t.Errorf("Expected 1 vote, got %d", n)
	}
}
