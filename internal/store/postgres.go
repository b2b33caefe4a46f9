// Package store provides storage backends for the valuation engine.
//
// This file implements a PostgreSQL-backed session store.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/UpswitchEU/upswitch-valuation-tester/internal/models"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

//go:embed migrations_postgres.sql
var postgresMigrations string

type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL store with the given DSN.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	// Apply options
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewPostgresStore invoked", "DSN_set", cfg.PostgresDSN != "")

	dsn := cfg.PostgresDSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}

	// Run migrations to ensure the sessions table exists
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run Postgres migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Postgres migrations applied successfully")

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) CreateSession(companyID string) (*models.Session, error) {
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

	_, err = s.db.Exec(`INSERT INTO sessions (id, company_id, step, data, started_at) VALUES ($1, $2, $3, $4, $5)`,
		sess.ID, sess.CompanyID, sess.Step, string(dataJSON), sess.StartedAt)
	if err != nil {
		slog.Error("PostgresStore CreateSession failed", "error", err, "companyID", companyID)
		return nil, fmt.Errorf("failed to insert session for %s: %w", companyID, err)
	}
	slog.Debug("PostgresStore CreateSession succeeded", "sessionID", sess.ID, "companyID", companyID)
	return &sess, nil
}

func (s *PostgresStore) GetSession(id string) (*models.Session, error) {
	row := s.db.QueryRow(`SELECT id, company_id, step, data, started_at FROM sessions WHERE id = $1`, id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		slog.Debug("PostgresStore GetSession not found", "sessionID", id)
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore GetSession failed", "error", err, "sessionID", id)
		return nil, fmt.Errorf("failed to query session %s: %w", id, err)
	}
	return sess, nil
}

func (s *PostgresStore) SaveSession(sess models.Session) error {
	dataJSON, err := json.Marshal(sess.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal session data: %w", err)
	}

	// Update only: an insert here could resurrect a concurrently deleted session.
	res, err := s.db.Exec(`UPDATE sessions SET step = $1, data = $2 WHERE id = $3`,
		sess.Step, string(dataJSON), sess.ID)
	if err != nil {
		slog.Error("PostgresStore SaveSession failed", "error", err, "sessionID", sess.ID)
		return fmt.Errorf("failed to save session %s: %w", sess.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to save session %s: %w", sess.ID, err)
	}
	if affected == 0 {
		slog.Debug("PostgresStore SaveSession not found", "sessionID", sess.ID)
		return models.ErrSessionNotFound
	}
	slog.Debug("PostgresStore SaveSession succeeded", "sessionID", sess.ID, "step", sess.Step)
	return nil
}

func (s *PostgresStore) ListSessions() ([]models.Session, error) {
	rows, err := s.db.Query(`SELECT id, company_id, step, data, started_at FROM sessions`)
	if err != nil {
		slog.Error("PostgresStore ListSessions query failed", "error", err)
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		sess, err := scanSessionRows(rows)
		if err != nil {
			slog.Error("PostgresStore ListSessions scan failed", "error", err)
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		sessions = append(sessions, *sess)
	}
	if err := rows.Err(); err != nil {
		slog.Error("PostgresStore ListSessions rows iteration failed", "error", err)
		return nil, fmt.Errorf("failed to iterate session rows: %w", err)
	}
	slog.Debug("PostgresStore ListSessions succeeded", "count", len(sessions))
	return sessions, nil
}

func (s *PostgresStore) DeleteSession(id string) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		slog.Error("PostgresStore DeleteSession failed", "error", err, "sessionID", id)
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	slog.Debug("PostgresStore DeleteSession succeeded", "sessionID", id)
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
