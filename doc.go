// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the votegate API server.

votegate admits or rejects votes for a student poll (King, Queen and similar
categories). It records at most one vote per voter per category and uses
weak identity signals (network address, hardware profile, voter token) to
turn away obvious repeat voting from the same device or network.

# Starting the Server

The server reads CLI flags, then environment variables, then a .env file:

	ADMIN_PIN=1234 ADMIN_SESSION_SALT=... go run .

Or with flags:

	go run . -p 3001 -d votes.db -admin-pin 1234 -session-salt ... -open

# Configuration

Required settings:

  - ADMIN_PIN (-admin-pin): PIN for reset and system-status changes
  - ADMIN_SESSION_SALT (-session-salt): Secret for admin session cookies

Optional settings:

  - PORT (-p): Server port (default: 3001)
  - DATABASE_URL (-d): SQLite path or Postgres URL (default: votes.db)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - SYSTEM_OPEN (-open): Start with voting open (default: false)
  - MAX_VOTES_PER_NETWORK (-max-per-network): Network quota (default: 3)

See package cliparse for the full list.

# Architecture

  - admission: The policy chain that decides every vote
  - ledger: Append-only vote store with transactional checks
  - identity: Identity signal extraction and hardware profiles
  - ratelimit: Sliding-window limiter per network address
  - metrics: Prometheus counters for decisions
  - handlers: HTTP request handlers (vote, stats, admin)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, rate limiting, JSON helpers
  - models: Request/response and record types
  - auth: Admin PIN and session tokens
  - db: Connection pools and schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
