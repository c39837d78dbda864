// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the votegate API.

# Handler Types

Each handler is a struct holding the dependencies it needs:

  - VotingHandler: vote submission through the admission controller
  - ResultsHandler: live tallies
  - AdminHandler: PIN sign-in, ledger reset and system status

	votingHandler := handlers.NewVotingHandler(controller, extractor)

# Voting

	POST /api/vote → CastVote

The body carries candidateId, categoryId, voterToken, hardwareProfile and an
optional deviceFingerprint. The older voterId, hardwareId and fingerprint
names are still accepted. Every response is a VoteResponse:

	200  {"success":true,"id":"..."}
	400  MALFORMED_INPUT
	403  SYSTEM_CLOSED, ALREADY_VOTED, DEVICE_ALREADY_VOTED, NETWORK_LIMIT_REACHED
	429  RATE_LIMITED (from middleware.WithRateLimit)
	500  SERVER_ERROR

# Stats

	GET /api/stats              → candidateId -> count over all categories
	GET /api/stats?category=ID  → the same for one category

# Administration

	POST /api/admin-auth     → Authenticate (sets the admin_session cookie)
	POST /api/reset          → Reset
	GET  /api/system-status  → GetSystemStatus (public)
	POST /api/system-status  → UpdateSystemStatus

Admin operations accept either "pin" in the JSON body or a valid
admin_session cookie.
*/
package handlers
