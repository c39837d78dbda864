// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect names a supported database backend
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// ParseDialect validates a DATABASE_TYPE value
func ParseDialect(s string) (Dialect, error) {
	switch Dialect(strings.ToLower(s)) {
	case SQLite, "":
		return SQLite, nil
	case Postgres, "postgresql":
		return Postgres, nil
	}
	return "", fmt.Errorf("unsupported database type %q", s)
}

// Conn holds the connection pools for one database.
//
// For SQLite the writer pool is limited to a single connection so every
// write transaction is serialized, while the reader pool reads under WAL
// without waiting on writers. For Postgres (and in-memory SQLite) both
// fields point at the same pool.
type Conn struct {
	Writer  *sql.DB
	Reader  *sql.DB
	Dialect Dialect
}

// Open connects to the database, verifies the connection and creates the
// schema.
func Open(dialect Dialect, url string) (*Conn, error) {
	switch dialect {
	case Postgres:
		pool, err := openPool("postgres", url)
		if err != nil {
			return nil, err
		}
		if err := CreateSchema(pool); err != nil {
			pool.Close()
			return nil, err
		}
		return &Conn{Writer: pool, Reader: pool, Dialect: Postgres}, nil

	case SQLite:
		dsn := sqliteDSN(url)
		writer, err := openPool("sqlite", dsn)
		if err != nil {
			return nil, err
		}
		// SQLite only supports one writer at a time
		writer.SetMaxOpenConns(1)
		writer.SetMaxIdleConns(1)

		if err := CreateSchema(writer); err != nil {
			writer.Close()
			return nil, err
		}

		// Each in-memory connection is its own database
		if isMemory(url) {
			return &Conn{Writer: writer, Reader: writer, Dialect: SQLite}, nil
		}

		reader, err := openPool("sqlite", dsn)
		if err != nil {
			writer.Close()
			return nil, err
		}
		return &Conn{Writer: writer, Reader: reader, Dialect: SQLite}, nil
	}

	return nil, fmt.Errorf("unsupported database type %q", dialect)
}

// Close closes both pools
func (c *Conn) Close() error {
	err := c.Writer.Close()
	if c.Reader != c.Writer {
		if rerr := c.Reader.Close(); err == nil {
			err = rerr
		}
	}
	return err
}

func openPool(driver, dsn string) (*sql.DB, error) {
	pool, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := pool.Ping(); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return pool, nil
}

// sqliteDSN appends the pragmas the ledger relies on unless the caller
// already supplied their own.
func sqliteDSN(url string) string {
	if strings.Contains(url, "_pragma=") {
		return url
	}
	pragmas := "_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	if !isMemory(url) {
		pragmas = "_pragma=journal_mode(WAL)&" + pragmas
	}
	if strings.Contains(url, "?") {
		return url + "&" + pragmas
	}
	return url + "?" + pragmas
}

func isMemory(url string) bool {
	return strings.HasPrefix(url, ":memory:") || strings.Contains(url, "mode=memory")
}
