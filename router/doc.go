// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the votegate API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(store, cfg)

# Endpoints

Operational:

	GET /health   - Liveness
	GET /metrics  - Prometheus metrics

Voting (public, rate limited per network address):

	POST /api/vote   - Submit one vote
	GET  /api/stats  - Live tally, optionally ?category=

Administration (PIN or admin_session cookie):

	POST /api/admin-auth     - Exchange the PIN for a session cookie
	POST /api/reset          - Delete every vote
	GET  /api/system-status  - Current open flag and network quota (public)
	POST /api/system-status  - Change them

# Wiring

The router owns the process-wide admission state:

	system := admission.NewSystemConfig(cfg.StartOpen, cfg.MaxVotesPerNetwork)
	controller := admission.NewController(store, system, ...)

The same SystemConfig is shared by the voting and admin handlers, so an
update is visible to the next vote attempt. Decisions are recorded by a
metrics.Collector and vote requests pass through a ratelimit.SlidingWindow
before reaching the controller.
*/
package router
