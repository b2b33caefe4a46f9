// Package store provides session storage backends for the valuation engine.
//
// It includes an in-memory store for development and tests, plus SQLite and
// PostgreSQL backends selected by DSN. All backends implement the Store
// interface so the flow engine never depends on a concrete backend.
package store

import (
	"log/slog"
	"strings"

	"github.com/UpswitchEU/upswitch-valuation-tester/internal/models"
)

// Store defines the persistence contract for conversation sessions.
//
// GetSession returns (nil, nil) for an unknown identifier; translating that
// into models.ErrSessionNotFound is the caller's concern.
type Store interface {
	// CreateSession allocates a new session for the given company with a
	// fresh unique identifier, step ordinal 0 and an empty answer map.
	CreateSession(companyID string) (*models.Session, error)
	// GetSession retrieves a session by identifier.
	GetSession(id string) (*models.Session, error)
	// SaveSession commits the session's current step ordinal and answers.
	// Only existing sessions can be saved; returns models.ErrSessionNotFound
	// when the session was deleted in the meantime, so a save racing a
	// delete cannot resurrect the session.
	SaveSession(s models.Session) error
	// ListSessions returns all known sessions.
	ListSessions() ([]models.Session, error)
	// DeleteSession removes a session. Deleting an unknown identifier is a no-op.
	DeleteSession(id string) error
	// Close releases any resources held by the backend.
	Close() error
}

// Opts holds configuration options for store backends.
type Opts struct {
	// PostgresDSN is the PostgreSQL connection string.
	PostgresDSN string
	// SQLiteDSN is the file path to the SQLite database.
	SQLiteDSN string
}

// Option configures store creation.
type Option func(*Opts)

// WithPostgresDSN sets the PostgreSQL connection string.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) {
		o.PostgresDSN = dsn
	}
}

// WithSQLiteDSN sets the SQLite database file path.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) {
		o.SQLiteDSN = dsn
	}
}

// DetectDSNType classifies a DSN as "postgres" or "sqlite".
// PostgreSQL DSNs use URL or key=value form; anything else is treated as a
// SQLite file path.
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite"
}

// NewStore creates a store backend based on the provided options.
// Postgres wins if both DSNs are set; with no DSN at all the in-memory
// store is used.
func NewStore(opts ...Option) (Store, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	switch {
	case cfg.PostgresDSN != "":
		slog.Debug("NewStore selecting Postgres backend", "dsn_set", true)
		return NewPostgresStore(opts...)
	case cfg.SQLiteDSN != "":
		slog.Debug("NewStore selecting SQLite backend", "db_path", cfg.SQLiteDSN)
		return NewSQLiteStore(opts...)
	default:
		slog.Debug("NewStore selecting in-memory backend")
		return NewInMemoryStore(), nil
	}
}
