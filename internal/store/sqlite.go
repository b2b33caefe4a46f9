// Package store provides storage backends for the valuation engine.
//
// This file implements an SQLite-backed session store.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "embed"

	"github.com/UpswitchEU/upswitch-valuation-tester/internal/models"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Constants for SQLite store configuration
const (
	// DefaultDirPermissions defines the default permissions for database directories
	DefaultDirPermissions = 0755
)

//go:embed migrations_sqlite.sql
var sqliteMigrations string

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	// Apply options
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.SQLiteDSN != "")

	dsn := cfg.SQLiteDSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	// Ensure the directory exists
	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	slog.Debug("Opening SQLite database connection", "db_path", dsn)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}

	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	// Run migrations to ensure the sessions table exists
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run SQLite migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) CreateSession(companyID string) (*models.Session, error) {
	sess := models.Session{
		ID:        uuid.NewString(),
		CompanyID: companyID,
		Step:      0,
		Data:      make(map[string]any),
		StartedAt: time.Now().UTC(),
	}
	dataJSON, err := json.Marshal(sess.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session data: %w", err)
	}

	_, err = s.db.Exec(`INSERT INTO sessions (id, company_id, step, data, started_at) VALUES (?, ?, ?, ?, ?)`,
		sess.ID, sess.CompanyID, sess.Step, string(dataJSON), sess.StartedAt)
	if err != nil {
		slog.Error("SQLiteStore CreateSession failed", "error", err, "companyID", companyID)
		return nil, fmt.Errorf("failed to insert session for %s: %w", companyID, err)
	}
	slog.Debug("SQLiteStore CreateSession succeeded", "sessionID", sess.ID, "companyID", companyID)
	return &sess, nil
}

func (s *SQLiteStore) GetSession(id string) (*models.Session, error) {
	row := s.db.QueryRow(`SELECT id, company_id, step, data, started_at FROM sessions WHERE id = ?`, id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		slog.Debug("SQLiteStore GetSession not found", "sessionID", id)
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetSession failed", "error", err, "sessionID", id)
		return nil, fmt.Errorf("failed to query session %s: %w", id, err)
	}
	return sess, nil
}

func (s *SQLiteStore) SaveSession(sess models.Session) error {
	dataJSON, err := json.Marshal(sess.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal session data: %w", err)
	}

	// Update only: an insert here could resurrect a concurrently deleted session.
	res, err := s.db.Exec(`UPDATE sessions SET step = ?, data = ? WHERE id = ?`,
		sess.Step, string(dataJSON), sess.ID)
	if err != nil {
		slog.Error("SQLiteStore SaveSession failed", "error", err, "sessionID", sess.ID)
		return fmt.Errorf("failed to save session %s: %w", sess.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to save session %s: %w", sess.ID, err)
	}
	if affected == 0 {
		slog.Debug("SQLiteStore SaveSession not found", "sessionID", sess.ID)
		return models.ErrSessionNotFound
	}
	slog.Debug("SQLiteStore SaveSession succeeded", "sessionID", sess.ID, "step", sess.Step)
	return nil
}

func (s *SQLiteStore) ListSessions() ([]models.Session, error) {
	rows, err := s.db.Query(`SELECT id, company_id, step, data, started_at FROM sessions`)
	if err != nil {
		slog.Error("SQLiteStore ListSessions query failed", "error", err)
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		sess, err := scanSessionRows(rows)
		if err != nil {
			slog.Error("SQLiteStore ListSessions scan failed", "error", err)
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		sessions = append(sessions, *sess)
	}
	if err := rows.Err(); err != nil {
		slog.Error("SQLiteStore ListSessions rows iteration failed", "error", err)
		return nil, fmt.Errorf("failed to iterate session rows: %w", err)
	}
	slog.Debug("SQLiteStore ListSessions succeeded", "count", len(sessions))
	return sessions, nil
}

func (s *SQLiteStore) DeleteSession(id string) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		slog.Error("SQLiteStore DeleteSession failed", "error", err, "sessionID", id)
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	slog.Debug("SQLiteStore DeleteSession succeeded", "sessionID", id)
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
