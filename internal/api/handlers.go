// Package api provides HTTP handlers for the valuation engine endpoints.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/UpswitchEU/upswitch-valuation-tester/internal/models"
)

// startConversationHandler handles POST /api/valuation/conversation/start.
func (s *Server) startConversationHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.startConversationHandler: processing start request", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		slog.Warn("Server.startConversationHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req models.StartConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.startConversationHandler: failed to decode JSON", "error", err)
		writeJSONError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	if err := req.Validate(); err != nil {
		slog.Warn("Server.startConversationHandler: validation failed", "error", err)
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := s.engine.Start(r.Context(), req.CompanyID)
	if err != nil {
		slog.Error("Server.startConversationHandler: failed to start conversation", "error", err, "companyID", req.CompanyID)
		writeJSONError(w, http.StatusInternalServerError, "Failed to start conversation")
		return
	}

	slog.Info("Server.startConversationHandler: conversation started", "sessionID", resp.SessionID, "companyID", req.CompanyID)
	writeJSONResponse(w, http.StatusOK, resp)
}

// conversationStepHandler handles POST /api/valuation/conversation/step.
func (s *Server) conversationStepHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.conversationStepHandler: processing step request", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		slog.Warn("Server.conversationStepHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req models.ConversationStepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.conversationStepHandler: failed to decode JSON", "error", err)
		writeJSONError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	if err := req.Validate(); err != nil {
		slog.Warn("Server.conversationStepHandler: validation failed", "error", err)
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := s.engine.Step(r.Context(), req)
	if err != nil {
		s.writeStepError(w, req, err)
		return
	}

	slog.Debug("Server.conversationStepHandler: step processed", "sessionID", req.SessionID, "step", req.Step, "complete", resp.Complete)
	writeJSONResponse(w, http.StatusOK, resp)
}

// writeStepError maps engine errors onto HTTP status codes. Client errors
// keep their descriptive messages; everything else is an internal error.
func (s *Server) writeStepError(w http.ResponseWriter, req models.ConversationStepRequest, err error) {
	var vErr *models.ValidationError
	var fmErr *models.FieldMismatchError
	var soErr *models.StepOutOfSyncError

	switch {
	case errors.Is(err, models.ErrSessionNotFound):
		slog.Warn("Server.conversationStepHandler: unknown session", "sessionID", req.SessionID)
		writeJSONError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrSessionComplete):
		slog.Warn("Server.conversationStepHandler: session already complete", "sessionID", req.SessionID)
		writeJSONError(w, http.StatusConflict, err.Error())
	case errors.As(err, &vErr), errors.As(err, &fmErr), errors.As(err, &soErr), errors.Is(err, models.ErrUnknownStep):
		slog.Warn("Server.conversationStepHandler: submission rejected", "error", err, "sessionID", req.SessionID, "step", req.Step)
		writeJSONError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("Server.conversationStepHandler: step failed", "error", err, "sessionID", req.SessionID)
		writeJSONError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// sessionsHandler routes the session administration endpoints
// (GET /api/valuation/sessions, GET|DELETE /api/valuation/sessions/{id}).
func (s *Server) sessionsHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("Server.sessionsHandler invoked", "method", r.Method, "path", r.URL.Path)

	path := strings.TrimPrefix(r.URL.Path, "/api/valuation/sessions")
	path = strings.TrimPrefix(path, "/")
	segments := strings.Split(path, "/")

	if len(segments) == 0 || segments[0] == "" {
		switch r.Method {
		case http.MethodGet:
			s.listSessionsHandler(w, r)
		default:
			w.Header().Set("Allow", http.MethodGet)
			writeJSONResponse(w, http.StatusMethodNotAllowed, models.Error("Method not allowed"))
		}
		return
	}

	sessionID := segments[0]
	if len(segments) == 1 {
		switch r.Method {
		case http.MethodGet:
			s.getSessionHandler(w, r, sessionID)
		case http.MethodDelete:
			s.deleteSessionHandler(w, r, sessionID)
		default:
			w.Header().Set("Allow", "GET, DELETE")
			writeJSONResponse(w, http.StatusMethodNotAllowed, models.Error("Method not allowed"))
		}
		return
	}

	writeJSONResponse(w, http.StatusNotFound, models.Error("Unknown session endpoint"))
}

// listSessionsHandler handles GET /api/valuation/sessions.
func (s *Server) listSessionsHandler(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.st.ListSessions()
	if err != nil {
		slog.Error("Server.listSessionsHandler failed", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to list sessions"))
		return
	}
	slog.Debug("Server.listSessionsHandler succeeded", "count", len(sessions))
	writeJSONResponse(w, http.StatusOK, models.Success(sessions))
}

// getSessionHandler handles GET /api/valuation/sessions/{id}.
func (s *Server) getSessionHandler(w http.ResponseWriter, r *http.Request, sessionID string) {
	sess, err := s.st.GetSession(sessionID)
	if err != nil {
		slog.Error("Server.getSessionHandler failed", "error", err, "sessionID", sessionID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to get session"))
		return
	}
	if sess == nil {
		slog.Debug("Server.getSessionHandler not found", "sessionID", sessionID)
		writeJSONResponse(w, http.StatusNotFound, models.Error("Session not found"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(sess))
}

// deleteSessionHandler handles DELETE /api/valuation/sessions/{id}.
func (s *Server) deleteSessionHandler(w http.ResponseWriter, r *http.Request, sessionID string) {
	sess, err := s.st.GetSession(sessionID)
	if err != nil {
		slog.Error("Server.deleteSessionHandler check failed", "error", err, "sessionID", sessionID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to check session"))
		return
	}
	if sess == nil {
		slog.Debug("Server.deleteSessionHandler not found", "sessionID", sessionID)
		writeJSONResponse(w, http.StatusNotFound, models.Error("Session not found"))
		return
	}

	if err := s.st.DeleteSession(sessionID); err != nil {
		slog.Error("Server.deleteSessionHandler delete failed", "error", err, "sessionID", sessionID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to delete session"))
		return
	}

	slog.Info("Session deleted", "sessionID", sessionID)
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Session deleted successfully", nil))
}

// healthHandler provides a health check endpoint for monitoring and load balancing.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	healthData := map[string]interface{}{
		"status":      "healthy",
		"service":     ServiceName,
		"version":     ServiceVersion,
		"environment": s.environment,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	}

	writeJSONResponse(w, http.StatusOK, healthData)
}
