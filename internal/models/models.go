// Package models defines the core data structures for the valuation engine.
//
// It includes the session and flow types shared across modules, the wire
// request/response shapes consumed by the conversation API, and the error
// taxonomy surfaced at the request boundary.
package models

import (
	"errors"
	"fmt"
	"time"
)

// InputKind defines how a submitted value for a flow step is interpreted.
type InputKind string

const (
	// InputKindNumber expects a numeric value validated against a [min,max] range.
	InputKindNumber InputKind = "number"
	// InputKindText expects a text value whose length is validated against a [min,max] range.
	InputKindText InputKind = "text"
)

// IsValidInputKind checks if the given input kind is supported.
func IsValidInputKind(k InputKind) bool {
	switch k {
	case InputKindNumber, InputKindText:
		return true
	default:
		return false
	}
}

// Error variables for better error handling and testability
var (
	ErrEmptyCompanyID  = errors.New("company_id cannot be empty")
	ErrEmptySessionID  = errors.New("session_id cannot be empty")
	ErrEmptyField      = errors.New("field cannot be empty")
	ErrNegativeStep    = errors.New("step cannot be negative")
	ErrMissingValue    = errors.New("value is required")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionComplete = errors.New("session is already complete")
	ErrUnknownStep     = errors.New("unknown step ordinal")
)

// ValidationError reports a submitted value that violates the declared
// bounds for a flow field. Bound names the violated constraint ("min",
// "max", or "type") and Limit carries the violated limit where applicable.
type ValidationError struct {
	Field  string
	Bound  string
	Limit  float64
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Detail)
}

// FieldMismatchError reports a declared field name that does not match the
// flow's expected field at the declared step ordinal.
type FieldMismatchError struct {
	Step     int
	Expected string
	Got      string
}

func (e *FieldMismatchError) Error() string {
	return fmt.Sprintf("step %d expects field %q, got %q", e.Step, e.Expected, e.Got)
}

// StepOutOfSyncError reports a declared step ordinal that does not match
// the session's current step ordinal.
type StepOutOfSyncError struct {
	Declared int
	Current  int
}

func (e *StepOutOfSyncError) Error() string {
	return fmt.Sprintf("declared step %d does not match current step %d", e.Declared, e.Current)
}

// Session represents one in-progress or completed conversational
// data-collection instance. Mutated only by the flow engine and owned by
// the store.
type Session struct {
	ID        string         `json:"id"`
	CompanyID string         `json:"company_id"`
	Step      int            `json:"step"`
	Data      map[string]any `json:"data"`
	StartedAt time.Time      `json:"started_at"`
}

// CompanyInfo carries opaque display information about the company a
// session refers to. Supplied by an external directory collaborator.
type CompanyInfo struct {
	CompanyName string `json:"company_name"`
	Industry    string `json:"industry"`
	Country     string `json:"country"`
}

// ValidationBounds is the inclusive [min,max] range advertised for a step.
// For number fields the bounds apply to the value itself, for text fields
// to its length in characters.
type ValidationBounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ValuationRange is the [min,max] band around the point estimate.
type ValuationRange struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// ValuationResult is the final output computed when a conversation
// completes. Never mutated after construction.
type ValuationResult struct {
	ValuationID     string         `json:"valuation_id"`
	EquityValue     int64          `json:"equity_value"`
	ValuationRange  ValuationRange `json:"valuation_range"`
	ConfidenceScore float64        `json:"confidence_score"`
	Methodology     string         `json:"methodology"`
	CompanyName     string         `json:"company_name"`
	Revenue         float64        `json:"revenue"`
	EBITDA          float64        `json:"ebitda"`
	Employees       float64        `json:"employees"`
	Industry        string         `json:"industry"`
	Country         string         `json:"country"`
	GrowthRate      float64        `json:"growth_rate"`
}

// StartConversationRequest is the payload for starting a valuation conversation.
type StartConversationRequest struct {
	CompanyID string `json:"company_id"`
}

// Validate validates a StartConversationRequest.
func (r *StartConversationRequest) Validate() error {
	if r.CompanyID == "" {
		return ErrEmptyCompanyID
	}
	return nil
}

// StartConversationResponse carries the new session and the first step's
// prompt material.
type StartConversationResponse struct {
	SessionID   string           `json:"session_id"`
	CompanyInfo CompanyInfo      `json:"company_info"`
	AIMessage   string           `json:"ai_message"`
	Step        int              `json:"step"`
	NextField   string           `json:"next_field"`
	InputType   InputKind        `json:"input_type"`
	HelpText    string           `json:"help_text"`
	Validation  ValidationBounds `json:"validation"`
}

// ConversationStepRequest is the payload for answering the current step of
// a conversation. Value is numeric or text per the step's input kind.
type ConversationStepRequest struct {
	CompanyID string `json:"company_id,omitempty"`
	SessionID string `json:"session_id"`
	Step      int    `json:"step"`
	Field     string `json:"field"`
	Value     any    `json:"value"`
}

// Validate validates a ConversationStepRequest.
func (r *ConversationStepRequest) Validate() error {
	if r.SessionID == "" {
		return ErrEmptySessionID
	}
	if r.Step < 0 {
		return ErrNegativeStep
	}
	if r.Field == "" {
		return ErrEmptyField
	}
	if r.Value == nil {
		return ErrMissingValue
	}
	return nil
}

// ConversationStepResponse is either an in-progress prompt for the next
// step or, on completion, the computed valuation result.
type ConversationStepResponse struct {
	Complete        bool              `json:"complete"`
	AIMessage       string            `json:"ai_message"`
	Step            int               `json:"step,omitempty"`
	NextField       string            `json:"next_field,omitempty"`
	InputType       InputKind         `json:"input_type,omitempty"`
	HelpText        string            `json:"help_text,omitempty"`
	Validation      *ValidationBounds `json:"validation,omitempty"`
	ValuationResult *ValuationResult  `json:"valuation_result,omitempty"`
}
