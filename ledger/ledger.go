// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/danielhkuo/votegate/db"
	"github.com/danielhkuo/votegate/models"
)

var (
	// ErrDuplicateVoter is returned by Append when the voter token already
	// has a record in the category.
	ErrDuplicateVoter = errors.New("voter already recorded in category")
)

// DefaultTimeout bounds every ledger operation when the caller does not
// configure one.
const DefaultTimeout = 5 * time.Second

const maxSerializationRetries = 3

// Tx is the view of the ledger available inside an admission transaction.
type Tx interface {
	VoterExists(ctx context.Context, categoryID, voterToken string) (bool, error)
	DeviceExists(ctx context.Context, categoryID, networkAddress, hardwareProfile string) (bool, error)
	CountByNetwork(ctx context.Context, categoryID, networkAddress string) (int, error)
	Append(ctx context.Context, rec models.VoteRecord) error
}

// Store is the durable vote ledger.
type Store struct {
	conn    *db.Conn
	timeout time.Duration
}

// Open connects to the database and returns a ready ledger.
func Open(dialect db.Dialect, url string, timeout time.Duration) (*Store, error) {
	conn, err := db.Open(dialect, url)
	if err != nil {
		return nil, err
	}
	return New(conn, timeout), nil
}

// New wraps existing connection pools. The schema must already exist.
func New(conn *db.Conn, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Store{conn: conn, timeout: timeout}
}

// Close releases the underlying pools
func (s *Store) Close() error {
	return s.conn.Close()
}

// InTx runs fn inside a single write transaction. The transaction commits
// only if fn returns nil; any error from fn is returned unchanged after
// rollback. On Postgres a serialization failure reruns fn, up to
// maxSerializationRetries times.
func (s *Store) InTx(ctx context.Context, fn func(Tx) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var err error
	for attempt := 0; attempt <= maxSerializationRetries; attempt++ {
		err = s.runTx(ctx, fn)
		if !isSerializationFailure(err) {
			return err
		}
		slog.Debug("retrying serialization failure", "attempt", attempt+1)
	}
	return err
}

func (s *Store) runTx(ctx context.Context, fn func(Tx) error) error {
	var opts *sql.TxOptions
	if s.conn.Dialect == db.Postgres {
		opts = &sql.TxOptions{Isolation: sql.LevelSerializable}
	}

	tx, err := s.conn.Writer.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&sqlTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateVoter
		}
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Tally groups votes by candidate. An empty categoryID counts every
// category.
func (s *Store) Tally(ctx context.Context, categoryID string) (models.Tally, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var (
		rows *sql.Rows
		err  error
	)
	if categoryID == "" {
		rows, err = s.conn.Reader.QueryContext(ctx, `
			SELECT candidate_id, COUNT(*) FROM votes GROUP BY candidate_id
		`)
	} else {
		rows, err = s.conn.Reader.QueryContext(ctx, `
			SELECT candidate_id, COUNT(*) FROM votes
			WHERE category_id = $1
			GROUP BY candidate_id
		`, categoryID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query tally: %w", err)
	}
	defer rows.Close()

	tally := make(models.Tally)
	for rows.Next() {
		var candidateID string
		var count int
		if err := rows.Scan(&candidateID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan tally row: %w", err)
		}
		tally[candidateID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tally: %w", err)
	}

	return tally, nil
}

// Count returns the total number of recorded votes
func (s *Store) Count(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var n int
	if err := s.conn.Reader.QueryRowContext(ctx, `SELECT COUNT(*) FROM votes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count votes: %w", err)
	}
	return n, nil
}

// Reset deletes every vote and returns how many were removed. On SQLite the
// file is vacuumed afterwards; a vacuum failure is logged but not returned
// because the delete has already committed.
func (s *Store) Reset(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.conn.Writer.ExecContext(ctx, `DELETE FROM votes`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete votes: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read deleted count: %w", err)
	}

	if s.conn.Dialect == db.SQLite {
		if _, err := s.conn.Writer.ExecContext(ctx, `VACUUM`); err != nil {
			slog.Warn("vacuum after reset failed", "error", err)
		}
	}

	return deleted, nil
}

type sqlTx struct {
	tx *sql.Tx
}

func (t *sqlTx) VoterExists(ctx context.Context, categoryID, voterToken string) (bool, error) {
	var exists bool
	err := t.tx.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM votes WHERE category_id = $1 AND voter_token = $2
		)
	`, categoryID, voterToken).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to look up voter: %w", err)
	}
	return exists, nil
}

func (t *sqlTx) DeviceExists(ctx context.Context, categoryID, networkAddress, hardwareProfile string) (bool, error) {
	var exists bool
	err := t.tx.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM votes
			WHERE network_address = $1 AND hardware_profile = $2 AND category_id = $3
		)
	`, networkAddress, hardwareProfile, categoryID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to look up device: %w", err)
	}
	return exists, nil
}

func (t *sqlTx) CountByNetwork(ctx context.Context, categoryID, networkAddress string) (int, error) {
	var n int
	err := t.tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM votes WHERE category_id = $1 AND network_address = $2
	`, categoryID, networkAddress).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count network votes: %w", err)
	}
	return n, nil
}

func (t *sqlTx) Append(ctx context.Context, rec models.VoteRecord) error {
	var fingerprint *string
	if rec.DeviceFingerprint != "" {
		fingerprint = &rec.DeviceFingerprint
	}

	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO votes (id, candidate_id, category_id, network_address, device_fingerprint, voter_token, hardware_profile, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, rec.ID, rec.CandidateID, rec.CategoryID, rec.NetworkAddress, fingerprint, rec.VoterToken, rec.HardwareProfile, rec.Timestamp)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateVoter
		}
		return fmt.Errorf("failed to insert vote: %w", err)
	}
	return nil
}

// isSerializationFailure reports a Postgres serialization_failure, which
// SERIALIZABLE transactions raise when concurrent admissions conflict.
func isSerializationFailure(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "40001"
}

// isUniqueViolation recognises a uniqueness constraint failure from either
// supported driver.
func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
