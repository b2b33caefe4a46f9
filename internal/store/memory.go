// Package store provides storage backends for the valuation engine.
//
// This file implements the in-memory session store.
package store

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/UpswitchEU/upswitch-valuation-tester/internal/models"
	"github.com/google/uuid"
)

// InMemoryStore keeps sessions in a mutex-guarded map. Sessions are copied
// on the way in and out so callers never alias store-owned state.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]models.Session
}

// NewInMemoryStore creates an empty in-memory session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]models.Session)}
}

// CreateSession allocates a new session with a random 128-bit identifier.
func (s *InMemoryStore) CreateSession(companyID string) (*models.Session, error) {
	sess := models.Session{
		ID:        uuid.NewString(),
		CompanyID: companyID,
		Step:      0,
		Data:      make(map[string]any),
		StartedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	slog.Debug("InMemoryStore CreateSession succeeded", "sessionID", sess.ID, "companyID", companyID)
	return copySession(sess), nil
}

// GetSession retrieves a session by identifier, or (nil, nil) if unknown.
func (s *InMemoryStore) GetSession(id string) (*models.Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		slog.Debug("InMemoryStore GetSession not found", "sessionID", id)
		return nil, nil
	}
	return copySession(sess), nil
}

// SaveSession commits an updated session. Unknown identifiers are rejected
// so a save racing a DeleteSession cannot resurrect the session.
func (s *InMemoryStore) SaveSession(sess models.Session) error {
	if sess.ID == "" {
		return fmt.Errorf("cannot save session without an identifier")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sess.ID]; !ok {
		slog.Debug("InMemoryStore SaveSession not found", "sessionID", sess.ID)
		return models.ErrSessionNotFound
	}
	s.sessions[sess.ID] = *copySession(sess)

	slog.Debug("InMemoryStore SaveSession succeeded", "sessionID", sess.ID, "step", sess.Step)
	return nil
}

// ListSessions returns all known sessions.
func (s *InMemoryStore) ListSessions() ([]models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]models.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, *copySession(sess))
	}
	return sessions, nil
}

// DeleteSession removes a session. Unknown identifiers are a no-op.
func (s *InMemoryStore) DeleteSession(id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()

	slog.Debug("InMemoryStore DeleteSession succeeded", "sessionID", id)
	return nil
}

// Close releases the store. No-op for the in-memory backend.
func (s *InMemoryStore) Close() error {
	return nil
}

// copySession returns a deep copy of the session so the answer map is not
// shared between the store and its callers.
func copySession(sess models.Session) *models.Session {
	out := sess
	out.Data = make(map[string]any, len(sess.Data))
	for k, v := range sess.Data {
		out.Data[k] = v
	}
	return &out
}
