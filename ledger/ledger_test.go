// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/votegate/db"
	"github.com/danielhkuo/votegate/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(db.SQLite, filepath.Join(t.TempDir(), "votes.db"), time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func record(candidate, category, network, token, hardware string) models.VoteRecord {
	return models.VoteRecord{
		ID:              uuid.NewString(),
		CandidateID:     candidate,
		CategoryID:      category,
		NetworkAddress:  network,
		VoterToken:      token,
		HardwareProfile: hardware,
		Timestamp:       time.Now().UTC(),
	}
}

func appendRecord(t *testing.T, store *Store, rec models.VoteRecord) error {
	t.Helper()
	return store.InTx(context.Background(), func(tx Tx) error {
		return tx.Append(context.Background(), rec)
	})
}

func TestAppendAndLookups(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, appendRecord(t, store, record("k1", "KING", "1.2.3.4", "a", "h1")))
	require.NoError(t, appendRecord(t, store, record("k2", "KING", "1.2.3.4", "b", "h2")))
	require.NoError(t, appendRecord(t, store, record("q1", "QUEEN", "1.2.3.4", "a", "h1")))

	err := store.InTx(ctx, func(tx Tx) error {
		exists, err := tx.VoterExists(ctx, "KING", "a")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = tx.VoterExists(ctx, "MISS", "a")
		require.NoError(t, err)
		assert.False(t, exists, "voter lookups are scoped to the category")

		exists, err = tx.DeviceExists(ctx, "KING", "1.2.3.4", "h2")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = tx.DeviceExists(ctx, "KING", "5.6.7.8", "h2")
		require.NoError(t, err)
		assert.False(t, exists, "device lookups require the same network")

		n, err := tx.CountByNetwork(ctx, "KING", "1.2.3.4")
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		n, err = tx.CountByNetwork(ctx, "QUEEN", "1.2.3.4")
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		return nil
	})
	require.NoError(t, err)
}

func TestAppendDuplicateVoter(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, appendRecord(t, store, record("k1", "KING", "1.2.3.4", "a", "h1")))
	err := appendRecord(t, store, record("k2", "KING", "9.9.9.9", "a", "h9"))
	assert.ErrorIs(t, err, ErrDuplicateVoter)

	n, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestInTxRollsBackOnError(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	boom := errors.New("rejected")

	err := store.InTx(ctx, func(tx Tx) error {
		require.NoError(t, tx.Append(ctx, record("k1", "KING", "1.2.3.4", "a", "h1")))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "nothing should be persisted after a failed transaction")
}

func TestTally(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, appendRecord(t, store, record("k1", "KING", "1.1.1.1", "a", "h1")))
	require.NoError(t, appendRecord(t, store, record("k1", "KING", "2.2.2.2", "b", "h2")))
	require.NoError(t, appendRecord(t, store, record("q1", "QUEEN", "1.1.1.1", "a", "h1")))

	tally, err := store.Tally(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, models.Tally{"k1": 2, "q1": 1}, tally)

	tally, err = store.Tally(ctx, "QUEEN")
	require.NoError(t, err)
	assert.Equal(t, models.Tally{"q1": 1}, tally)

	tally, err = store.Tally(ctx, "MISS")
	require.NoError(t, err)
	assert.Empty(t, tally)
}

func TestReset(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, appendRecord(t, store, record("k1", "KING", "1.1.1.1", "a", "h1")))
	require.NoError(t, appendRecord(t, store, record("k2", "KING", "2.2.2.2", "b", "h2")))

	deleted, err := store.Reset(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)

	tally, err := store.Tally(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, tally)

	// The same voter can vote again once the ledger is cleared
	require.NoError(t, appendRecord(t, store, record("k1", "KING", "1.1.1.1", "a", "h1")))
}

func TestAppendMapsPostgresUniqueViolation(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	store := New(&db.Conn{Writer: mockDB, Reader: mockDB, Dialect: db.SQLite}, time.Second)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO votes")).
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	err = appendRecord(t, store, record("k1", "KING", "1.2.3.4", "a", "h1"))
	assert.ErrorIs(t, err, ErrDuplicateVoter)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorageFailureIsNotDuplicate(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	store := New(&db.Conn{Writer: mockDB, Reader: mockDB, Dialect: db.SQLite}, time.Second)

	mock.ExpectBegin().WillReturnError(errors.New("disk I/O error"))

	err = appendRecord(t, store, record("k1", "KING", "1.2.3.4", "a", "h1"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicateVoter)
	assert.Contains(t, err.Error(), "disk I/O error")
}

func TestTallyQueryFailure(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	store := New(&db.Conn{Writer: mockDB, Reader: mockDB, Dialect: db.SQLite}, time.Second)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT candidate_id, COUNT(*) FROM votes")).
		WillReturnError(errors.New("database is locked"))

	_, err = store.Tally(context.Background(), "")
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInTxRetriesSerializationFailure(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	store := New(&db.Conn{Writer: mockDB, Reader: mockDB, Dialect: db.Postgres}, time.Second)

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(&pq.Error{Code: "40001"})
	mock.ExpectBegin()
	mock.ExpectCommit()

	calls := 0
	err = store.InTx(context.Background(), func(Tx) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}
