// Package db provides PostgreSQL storage for the report archive.
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver

	"github.com/jonathan/presence-audit/internal/reports"
	"github.com/jonathan/presence-audit/internal/types"
)

// Schema creates the reports table when it does not exist.
const Schema = `CREATE TABLE IF NOT EXISTS audit_reports (
	id            UUID PRIMARY KEY,
	session       TEXT NOT NULL DEFAULT '',
	business_name TEXT NOT NULL,
	request       JSONB NOT NULL,
	currency      TEXT NOT NULL,
	title         TEXT NOT NULL DEFAULT '',
	fragment      TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// migrations run after Schema, in order. Each is idempotent.
var migrations = []string{
	`ALTER TABLE audit_reports ADD COLUMN IF NOT EXISTS session TEXT NOT NULL DEFAULT ''`,
	`CREATE INDEX IF NOT EXISTS audit_reports_session_created_idx ON audit_reports (session, created_at DESC)`,
}

// DB wraps a PostgreSQL connection pool
type DB struct {
	sql *sql.DB
}

var _ reports.Store = (*DB)(nil)

// Connect opens a pool through the pgx driver and verifies the connection
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	conn, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	conn.SetMaxOpenConns(10)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{sql: conn}, nil
}

// New wraps an already opened handle.
func New(conn *sql.DB) *DB {
	return &DB{sql: conn}
}

// Close closes the connection pool
func (db *DB) Close() error {
	if db.sql != nil {
		return db.sql.Close()
	}
	return nil
}

// EnsureSchema creates the tables this package needs
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.sql.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	for _, stmt := range migrations {
		if _, err := db.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
	}
	return nil
}

// Save inserts or replaces a report
func (db *DB) Save(ctx context.Context, report types.Report) error {
	request, err := json.Marshal(report.Request)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	_, err = db.sql.ExecContext(ctx,
		`INSERT INTO audit_reports (id, business_name, request, currency, title, fragment, created_at, session)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (id) DO UPDATE SET title = $5, fragment = $6`,
		report.ID, report.Request.BusinessName, request, report.Currency, report.Title, report.Fragment, report.CreatedAt, report.Session,
	)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// Get retrieves one of session's reports by ID; it returns reports.ErrNotFound
// when absent or owned by another session
func (db *DB) Get(ctx context.Context, session string, id uuid.UUID) (types.Report, error) {
	row := db.sql.QueryRowContext(ctx,
		`SELECT id, request, currency, title, fragment, created_at, session
		 FROM audit_reports WHERE id = $1 AND session = $2`,
		id, session,
	)
	report, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Report{}, reports.ErrNotFound
	}
	if err != nil {
		return types.Report{}, fmt.Errorf("failed to get report: %w", err)
	}
	return report, nil
}

// List returns up to limit of session's reports, newest first
func (db *DB) List(ctx context.Context, session string, limit int) ([]types.Report, error) {
	if limit <= 0 {
		limit = reports.DefaultCapacity
	}
	rows, err := db.sql.QueryContext(ctx,
		`SELECT id, request, currency, title, fragment, created_at, session
		 FROM audit_reports WHERE session = $1 ORDER BY created_at DESC LIMIT $2`,
		session, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []types.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reports: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReport(s scanner) (types.Report, error) {
	var (
		r       types.Report
		request []byte
	)
	if err := s.Scan(&r.ID, &request, &r.Currency, &r.Title, &r.Fragment, &r.CreatedAt, &r.Session); err != nil {
		return types.Report{}, err
	}
	if err := json.Unmarshal(request, &r.Request); err != nil {
		return types.Report{}, fmt.Errorf("failed to unmarshal request: %w", err)
	}
	return r, nil
}
