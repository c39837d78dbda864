// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# CLI Flags and Environment Variables

Flags fall back to environment variables, then to defaults:

	-p                 PORT                   Server port (3001)
	-d                 DATABASE_URL           SQLite path or Postgres URL (votes.db)
	-t                 DATABASE_TYPE          sqlite | postgres (sqlite)
	-admin-pin         ADMIN_PIN              Admin PIN (required)
	-session-salt      ADMIN_SESSION_SALT     Admin cookie signing salt (required)
	-address-salt      ADDRESS_SALT           Store hashed client addresses
	-max-per-network   MAX_VOTES_PER_NETWORK  Initial network quota (3)
	-open              SYSTEM_OPEN            Start with voting open (false)
	-no-device-check   DISABLE_DEVICE_CHECK   Skip the same-device check
	-no-network-limit  DISABLE_NETWORK_LIMIT  Skip the network quota
	-rate-limit        RATE_LIMIT             Vote requests per address per window (100)
	-rate-window       RATE_WINDOW            Rate limit window (1m)
	-query-timeout     QUERY_TIMEOUT          Ledger operation timeout (5s)
	-trust-proxy       TRUST_PROXY            Honour X-Forwarded-For (true)

CLI flags take precedence over environment variables.

# Env File

Before falling back to the environment, ParseFlags loads -env-file
(default ".env") with godotenv if it exists. Variables already present in
the environment are never overridden by the file.

# Validation

ParseFlags returns an error if:

  - ADMIN_PIN or ADMIN_SESSION_SALT is missing
  - a numeric, boolean or duration value does not parse
  - MAX_VOTES_PER_NETWORK is below 1
*/
package cliparse
