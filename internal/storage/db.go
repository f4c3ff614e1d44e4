// Package storage provides SQLite persistence for the font catalog, canned
// responses, moderation state and the game leaderboard.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver for database/sql

	"github.com/nvnfont/nvnfont-bot-go/internal/config"
)

// DB wraps a single-writer connection and a pooled reader.
// For in-memory databases both point to the same single connection.
type DB struct {
	writer *sql.DB
	reader *sql.DB
	path   string
}

// New opens the database at dbPath and initializes the schema.
func New(ctx context.Context, dbPath string) (*DB, error) {
	memory := dbPath == ":memory:"
	if !memory {
		if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	writer, err := open(ctx, dbPath, true)
	if err != nil {
		return nil, err
	}
	db := &DB{writer: writer, reader: writer, path: dbPath}

	if !memory {
		reader, err := open(ctx, dbPath, false)
		if err != nil {
			_ = writer.Close()
			return nil, err
		}
		db.reader = reader
	}

	if err := InitSchema(ctx, db.writer); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return db, nil
}

// NewTestDB creates an in-memory database for testing.
func NewTestDB() (*DB, error) {
	return New(context.Background(), ":memory:")
}

func dsn(dbPath string, writer bool) string {
	params := url.Values{}
	params.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", config.DatabaseBusyTimeout.Milliseconds()))
	params.Add("_pragma", "foreign_keys(1)")
	params.Add("_pragma", "synchronous(NORMAL)")
	if dbPath != ":memory:" {
		params.Add("_pragma", "journal_mode(WAL)")
	}
	if writer {
		params.Set("_txlock", "immediate")
	}
	if dbPath == ":memory:" {
		return "file::memory:?" + params.Encode()
	}
	return "file:" + dbPath + "?" + params.Encode()
}

func open(ctx context.Context, dbPath string, writer bool) (*sql.DB, error) {
	conn, err := sql.Open("sqlite", dsn(dbPath, writer))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if writer {
		conn.SetMaxOpenConns(1)
		conn.SetMaxIdleConns(1)
	} else {
		conn.SetMaxOpenConns(8)
		conn.SetMaxIdleConns(4)
	}
	if dbPath != ":memory:" {
		conn.SetConnMaxLifetime(config.DatabaseConnMaxLifetime)
	}

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return conn, nil
}

// Close closes both connections.
func (db *DB) Close() error {
	var err error
	if db.reader != nil && db.reader != db.writer {
		err = db.reader.Close()
	}
	if db.writer != nil {
		if werr := db.writer.Close(); werr != nil {
			err = werr
		}
	}
	return err
}

// Path returns the database file path
func (db *DB) Path() string {
	return db.path
}

// Ping verifies the reader connection.
func (db *DB) Ping(ctx context.Context) error {
	return db.reader.PingContext(ctx)
}

// ExecBatchContext runs fn with a prepared statement inside one transaction.
func (db *DB) ExecBatchContext(ctx context.Context, query string, fn func(*sql.Stmt) error) error {
	tx, err := db.writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare batch: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	if err := fn(stmt); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// withTx runs fn inside a write transaction.
func (db *DB) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := db.writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// SnapshotTo writes a consistent copy of the database to dest using
// VACUUM INTO. dest must not exist.
func (db *DB) SnapshotTo(ctx context.Context, dest string) error {
	start := time.Now()
	if _, err := db.writer.ExecContext(ctx, "VACUUM INTO ?", dest); err != nil {
		return fmt.Errorf("vacuum into %s: %w", dest, err)
	}
	if d := time.Since(start); d > time.Second {
		logSlow(ctx, "SnapshotTo", d)
	}
	return nil
}
