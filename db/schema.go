// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// The (category_id, voter_token) uniqueness is the last line of defence
// against two concurrent submissions from the same voter.
const schema = `
-- Votes (append-only ledger)
CREATE TABLE IF NOT EXISTS votes (
    id TEXT PRIMARY KEY,
    candidate_id TEXT NOT NULL,
    category_id TEXT NOT NULL,
    network_address TEXT NOT NULL,
    device_fingerprint TEXT,
    voter_token TEXT NOT NULL,
    hardware_profile TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    UNIQUE (category_id, voter_token)
);

CREATE INDEX IF NOT EXISTS idx_votes_candidate ON votes(candidate_id);
CREATE INDEX IF NOT EXISTS idx_votes_category_network ON votes(category_id, network_address);
CREATE INDEX IF NOT EXISTS idx_votes_network_hardware ON votes(network_address, hardware_profile, category_id);
`
