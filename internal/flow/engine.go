// Package flow provides the session engine driving the valuation conversation.
package flow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/UpswitchEU/upswitch-valuation-tester/internal/metrics"
	"github.com/UpswitchEU/upswitch-valuation-tester/internal/models"
	"github.com/UpswitchEU/upswitch-valuation-tester/internal/store"
)

// completionMessage is the static closing line used when no summarizer is
// configured or summarization fails.
const completionMessage = "Perfect! I have all the information I need. Your business valuation is complete."

// CompanyDirectory supplies opaque display information for the company a
// session refers to.
type CompanyDirectory interface {
	CompanyInfo(ctx context.Context, companyID string) (models.CompanyInfo, error)
}

// Summarizer generates a conversational wrap-up for a completed valuation.
// Implementations may call external services; failures are logged and fall
// back to the static completion message.
type Summarizer interface {
	SummarizeValuation(ctx context.Context, result models.ValuationResult) (string, error)
}

// StaticCompanyDirectory returns a fixed demo company profile for every
// identifier. Stands in until a real company registry is wired up.
type StaticCompanyDirectory struct{}

// CompanyInfo implements CompanyDirectory.
func (StaticCompanyDirectory) CompanyInfo(ctx context.Context, companyID string) (models.CompanyInfo, error) {
	return models.CompanyInfo{
		CompanyName: "Demo Company",
		Industry:    "Technology",
		Country:     "Belgium",
	}, nil
}

// Engine validates answers against the step catalog, records them on the
// session, advances the step cursor and derives the valuation on completion.
type Engine struct {
	st         store.Store
	catalog    *Catalog
	directory  CompanyDirectory
	summarizer Summarizer

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithCompanyDirectory sets the company display-info collaborator.
func WithCompanyDirectory(d CompanyDirectory) Option {
	return func(e *Engine) {
		e.directory = d
	}
}

// WithSummarizer sets the optional completion summarizer.
func WithSummarizer(s Summarizer) Option {
	return func(e *Engine) {
		e.summarizer = s
	}
}

// NewEngine creates a session engine over the given store and catalog.
func NewEngine(st store.Store, catalog *Catalog, opts ...Option) *Engine {
	e := &Engine{
		st:        st,
		catalog:   catalog,
		directory: StaticCompanyDirectory{},
		locks:     make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// sessionLock returns the exclusive lock serializing Step calls for one
// session identifier. Different sessions proceed in parallel.
func (e *Engine) sessionLock(sessionID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	lock, ok := e.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[sessionID] = lock
	}
	return lock
}

// Start creates a new session and returns the first step's prompt material.
func (e *Engine) Start(ctx context.Context, companyID string) (*models.StartConversationResponse, error) {
	slog.Debug("Engine.Start: creating session", "companyID", companyID)

	sess, err := e.st.CreateSession(companyID)
	if err != nil {
		slog.Error("Engine.Start: session creation failed", "error", err, "companyID", companyID)
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	info, err := e.directory.CompanyInfo(ctx, companyID)
	if err != nil {
		slog.Error("Engine.Start: company lookup failed", "error", err, "companyID", companyID)
		return nil, fmt.Errorf("failed to look up company %s: %w", companyID, err)
	}

	first := e.catalog.FirstStep()
	metrics.SessionsStarted.Inc()
	slog.Info("Engine.Start: session created", "sessionID", sess.ID, "companyID", companyID)

	return &models.StartConversationResponse{
		SessionID:   sess.ID,
		CompanyInfo: info,
		AIMessage:   first.Prompt,
		Step:        first.Ordinal,
		NextField:   first.Field,
		InputType:   first.Kind,
		HelpText:    first.HelpText,
		Validation:  first.Rule.Bounds(),
	}, nil
}

// Step processes one answer submission: it validates the declared step and
// field against the session and the catalog, validates the value, records
// it, advances the step cursor and, on the final step, derives the
// valuation. Rejections leave the session untouched so the caller can retry
// the same step with a corrected value.
func (e *Engine) Step(ctx context.Context, req models.ConversationStepRequest) (*models.ConversationStepResponse, error) {
	start := time.Now()
	defer func() {
		metrics.StepDuration.Observe(time.Since(start).Seconds())
	}()

	lock := e.sessionLock(req.SessionID)
	lock.Lock()
	defer lock.Unlock()

	slog.Debug("Engine.Step: processing submission", "sessionID", req.SessionID, "step", req.Step, "field", req.Field)

	sess, err := e.st.GetSession(req.SessionID)
	if err != nil {
		slog.Error("Engine.Step: session lookup failed", "error", err, "sessionID", req.SessionID)
		return nil, fmt.Errorf("failed to load session %s: %w", req.SessionID, err)
	}
	if sess == nil {
		slog.Warn("Engine.Step: unknown session", "sessionID", req.SessionID)
		metrics.StepsProcessed.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, models.ErrSessionNotFound
	}
	if sess.Step >= e.catalog.StepCount() {
		slog.Warn("Engine.Step: session already complete", "sessionID", req.SessionID, "step", sess.Step)
		metrics.StepsProcessed.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, models.ErrSessionComplete
	}
	if req.Step != sess.Step {
		slog.Warn("Engine.Step: declared step out of sync", "sessionID", req.SessionID, "declared", req.Step, "current", sess.Step)
		metrics.StepsProcessed.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, &models.StepOutOfSyncError{Declared: req.Step, Current: sess.Step}
	}

	step, err := e.catalog.StepAt(req.Step)
	if err != nil {
		slog.Error("Engine.Step: step lookup failed", "error", err, "step", req.Step)
		return nil, err
	}
	if req.Field != step.Field {
		slog.Warn("Engine.Step: field mismatch", "sessionID", req.SessionID, "expected", step.Field, "got", req.Field)
		metrics.StepsProcessed.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, &models.FieldMismatchError{Step: req.Step, Expected: step.Field, Got: req.Field}
	}

	value, err := step.CheckValue(req.Value)
	if err != nil {
		slog.Warn("Engine.Step: value rejected", "sessionID", req.SessionID, "field", step.Field, "error", err)
		metrics.StepsProcessed.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, err
	}

	sess.Data[step.Field] = value
	sess.Step = req.Step + 1
	if err := e.st.SaveSession(*sess); err != nil {
		slog.Error("Engine.Step: session save failed", "error", err, "sessionID", req.SessionID)
		return nil, fmt.Errorf("failed to save session %s: %w", req.SessionID, err)
	}

	// Completion test: the last ordinal just received its answer.
	if req.Step == e.catalog.StepCount()-1 {
		return e.complete(ctx, sess)
	}

	next, err := e.catalog.StepAt(req.Step + 1)
	if err != nil {
		return nil, err
	}
	metrics.StepsProcessed.WithLabelValues(metrics.OutcomeAccepted).Inc()
	slog.Debug("Engine.Step: advanced", "sessionID", sess.ID, "step", sess.Step, "nextField", next.Field)

	bounds := next.Rule.Bounds()
	return &models.ConversationStepResponse{
		Complete:   false,
		AIMessage:  next.Prompt,
		Step:       next.Ordinal,
		NextField:  next.Field,
		InputType:  next.Kind,
		HelpText:   next.HelpText,
		Validation: &bounds,
	}, nil
}

// complete derives the valuation from the fully answered session.
func (e *Engine) complete(ctx context.Context, sess *models.Session) (*models.ConversationStepResponse, error) {
	info, err := e.directory.CompanyInfo(ctx, sess.CompanyID)
	if err != nil {
		slog.Error("Engine.complete: company lookup failed", "error", err, "companyID", sess.CompanyID)
		return nil, fmt.Errorf("failed to look up company %s: %w", sess.CompanyID, err)
	}

	result := DeriveValuation(sess.Data, info)

	message := completionMessage
	if e.summarizer != nil {
		summary, err := e.summarizer.SummarizeValuation(ctx, result)
		if err != nil {
			slog.Warn("Engine.complete: summarizer failed, using static message", "error", err, "sessionID", sess.ID)
		} else if summary != "" {
			message = summary
		}
	}

	metrics.StepsProcessed.WithLabelValues(metrics.OutcomeCompleted).Inc()
	metrics.ValuationsCompleted.Inc()
	slog.Info("Engine.complete: valuation derived", "sessionID", sess.ID, "valuationID", result.ValuationID, "equityValue", result.EquityValue)

	return &models.ConversationStepResponse{
		Complete:        true,
		AIMessage:       message,
		ValuationResult: &result,
	}, nil
}
