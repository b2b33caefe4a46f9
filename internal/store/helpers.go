package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/UpswitchEU/upswitch-valuation-tester/internal/models"
)

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanSession scans a session row including its JSON answer map.
func scanSession(row rowScanner) (*models.Session, error) {
	var sess models.Session
	var dataJSON string
	if err := row.Scan(&sess.ID, &sess.CompanyID, &sess.Step, &dataJSON, &sess.StartedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(dataJSON), &sess.Data); err != nil {
		return nil, fmt.Errorf("failed to decode session data: %w", err)
	}
	if sess.Data == nil {
		sess.Data = make(map[string]any)
	}
	return &sess, nil
}

// scanSessionRows scans a session from sql.Rows.
func scanSessionRows(rows *sql.Rows) (*models.Session, error) {
	return scanSession(rows)
}
