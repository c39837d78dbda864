// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connections and schema creation.

# Opening

Open connects, pings and creates the schema:

	conn, err := db.Open(db.SQLite, "votes.db")

SQLite (modernc.org/sqlite, no cgo) is the default. The file is opened in
WAL mode with a 5 second busy timeout. Writes go through a pool capped at
one connection; reads use a second pool so tally queries never wait on
vote admission.

Postgres (lib/pq) is also supported:

	conn, err := db.Open(db.Postgres, "postgres://...")

# Schema Creation

CreateSchema is safe to call multiple times - uses IF NOT EXISTS for all
tables and indexes.

# Tables

  - votes: one row per accepted vote

# Indexes

  - UNIQUE (category_id, voter_token)
  - votes.candidate_id (tally)
  - votes.(category_id, network_address) (network quota)
  - votes.(network_address, hardware_profile, category_id) (device reuse)
*/
package db
