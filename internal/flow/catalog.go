// Package flow implements the conversational valuation engine: the fixed
// question catalog, the session engine that validates and records answers,
// and the valuation derived from a completed conversation.
package flow

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/UpswitchEU/upswitch-valuation-tester/internal/models"
)

// RuleKind tags the validation rule variant attached to a flow step.
type RuleKind string

const (
	// RuleNumericRange validates a numeric value against [Min,Max] inclusive.
	RuleNumericRange RuleKind = "numeric_range"
	// RuleTextLength validates a text value's character count against [Min,Max] inclusive.
	RuleTextLength RuleKind = "text_length"
)

// ValidationRule is the tagged-variant validation rule for one step.
type ValidationRule struct {
	Kind RuleKind
	Min  float64
	Max  float64
}

// Bounds returns the rule's [min,max] range in wire form.
func (r ValidationRule) Bounds() models.ValidationBounds {
	return models.ValidationBounds{Min: r.Min, Max: r.Max}
}

// FlowStep is one ordinal position in the fixed question sequence.
// Constructed once at startup and never mutated.
type FlowStep struct {
	Ordinal  int
	Field    string
	Kind     models.InputKind
	Prompt   string
	HelpText string
	Rule     ValidationRule
}

// CheckValue validates a submitted raw value against the step's input kind
// and validation rule. It returns the normalized value to record (float64
// for number fields, string for text fields), or a *models.ValidationError
// naming the field and the violated bound.
func (s FlowStep) CheckValue(raw any) (any, error) {
	switch s.Kind {
	case models.InputKindNumber:
		num, ok := toNumber(raw)
		if !ok {
			return nil, &models.ValidationError{
				Field:  s.Field,
				Bound:  "type",
				Detail: "expected a numeric value",
			}
		}
		if num < s.Rule.Min {
			return nil, &models.ValidationError{
				Field:  s.Field,
				Bound:  "min",
				Limit:  s.Rule.Min,
				Detail: fmt.Sprintf("value %v is below the minimum %v", num, s.Rule.Min),
			}
		}
		if num > s.Rule.Max {
			return nil, &models.ValidationError{
				Field:  s.Field,
				Bound:  "max",
				Limit:  s.Rule.Max,
				Detail: fmt.Sprintf("value %v is above the maximum %v", num, s.Rule.Max),
			}
		}
		return num, nil
	case models.InputKindText:
		text, ok := raw.(string)
		if !ok {
			return nil, &models.ValidationError{
				Field:  s.Field,
				Bound:  "type",
				Detail: "expected a text value",
			}
		}
		length := utf8.RuneCountInString(text)
		if float64(length) < s.Rule.Min {
			return nil, &models.ValidationError{
				Field:  s.Field,
				Bound:  "min",
				Limit:  s.Rule.Min,
				Detail: fmt.Sprintf("text length %d is below the minimum %v characters", length, s.Rule.Min),
			}
		}
		if float64(length) > s.Rule.Max {
			return nil, &models.ValidationError{
				Field:  s.Field,
				Bound:  "max",
				Limit:  s.Rule.Max,
				Detail: fmt.Sprintf("text length %d is above the maximum %v characters", length, s.Rule.Max),
			}
		}
		return text, nil
	}
	return nil, fmt.Errorf("unsupported input kind %q", s.Kind)
}

// toNumber normalizes the numeric representations a JSON decoder or caller
// may hand us. Numeric strings are accepted the way the original API
// coerced them.
func toNumber(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		num, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return num, true
	default:
		return 0, false
	}
}

// Catalog is the ordered, immutable step catalog for a conversation flow.
type Catalog struct {
	steps []FlowStep
}

// NewCatalog validates the step definitions once at construction: ordinals
// must be contiguous from zero, field names unique, prompt and help text
// non-empty, and every rule must carry a known kind with min <= max.
func NewCatalog(steps []FlowStep) (*Catalog, error) {
	if len(steps) == 0 {
		return nil, fmt.Errorf("catalog requires at least one step")
	}
	fields := make(map[string]bool, len(steps))
	for i, step := range steps {
		if step.Ordinal != i {
			return nil, fmt.Errorf("step %d has ordinal %d, ordinals must be contiguous from zero", i, step.Ordinal)
		}
		if step.Field == "" {
			return nil, fmt.Errorf("step %d has no field name", i)
		}
		if fields[step.Field] {
			return nil, fmt.Errorf("duplicate field name %q", step.Field)
		}
		fields[step.Field] = true
		if !models.IsValidInputKind(step.Kind) {
			return nil, fmt.Errorf("step %d field %q has unsupported input kind %q", i, step.Field, step.Kind)
		}
		if step.Prompt == "" || step.HelpText == "" {
			return nil, fmt.Errorf("step %d field %q must have prompt and help text", i, step.Field)
		}
		switch step.Rule.Kind {
		case RuleNumericRange, RuleTextLength:
		default:
			return nil, fmt.Errorf("step %d field %q has unsupported rule kind %q", i, step.Field, step.Rule.Kind)
		}
		if step.Rule.Min > step.Rule.Max {
			return nil, fmt.Errorf("step %d field %q has min %v greater than max %v", i, step.Field, step.Rule.Min, step.Rule.Max)
		}
	}
	catalog := &Catalog{steps: make([]FlowStep, len(steps))}
	copy(catalog.steps, steps)
	return catalog, nil
}

// StepAt retrieves the step at the given ordinal.
func (c *Catalog) StepAt(ordinal int) (FlowStep, error) {
	if ordinal < 0 || ordinal >= len(c.steps) {
		return FlowStep{}, fmt.Errorf("%w: %d", models.ErrUnknownStep, ordinal)
	}
	return c.steps[ordinal], nil
}

// StepCount returns the number of steps in the catalog.
func (c *Catalog) StepCount() int {
	return len(c.steps)
}

// FirstStep returns the step at ordinal zero.
func (c *Catalog) FirstStep() FlowStep {
	return c.steps[0]
}

// defaultSteps is the canonical six-field valuation flow.
var defaultSteps = []FlowStep{
	{
		Ordinal:  0,
		Field:    "revenue",
		Kind:     models.InputKindNumber,
		Prompt:   "Hi! I'll help you get a quick business valuation. Let's start with your annual revenue - what was your total revenue last year?",
		HelpText: "Enter your annual revenue in euros",
		Rule:     ValidationRule{Kind: RuleNumericRange, Min: 10000, Max: 1000000000},
	},
	{
		Ordinal:  1,
		Field:    "ebitda",
		Kind:     models.InputKindNumber,
		Prompt:   "Great! Now, what was your EBITDA (earnings before interest, taxes, depreciation, and amortization) last year?",
		HelpText: "Enter your EBITDA (earnings before interest, taxes, depreciation, and amortization)",
		Rule:     ValidationRule{Kind: RuleNumericRange, Min: 0, Max: 500000000},
	},
	{
		Ordinal:  2,
		Field:    "employees",
		Kind:     models.InputKindNumber,
		Prompt:   "Thanks! How many employees does your company have?",
		HelpText: "How many employees does your company have?",
		Rule:     ValidationRule{Kind: RuleNumericRange, Min: 1, Max: 10000},
	},
	{
		Ordinal:  3,
		Field:    "industry",
		Kind:     models.InputKindText,
		Prompt:   "What industry is your company in? (e.g., Technology, Manufacturing, Services)",
		HelpText: "What industry is your company in?",
		Rule:     ValidationRule{Kind: RuleTextLength, Min: 2, Max: 100},
	},
	{
		Ordinal:  4,
		Field:    "growth_rate",
		Kind:     models.InputKindNumber,
		Prompt:   "What's your expected annual growth rate for the next few years? (as a percentage, e.g., 15 for 15%)",
		HelpText: "What's your expected annual growth rate?",
		Rule:     ValidationRule{Kind: RuleNumericRange, Min: -50, Max: 200},
	},
	{
		Ordinal:  5,
		Field:    "country",
		Kind:     models.InputKindText,
		Prompt:   "Finally, what country is your company based in?",
		HelpText: "What country is your company based in?",
		Rule:     ValidationRule{Kind: RuleTextLength, Min: 2, Max: 50},
	},
}

// DefaultCatalog returns the canonical valuation flow catalog.
func DefaultCatalog() *Catalog {
	catalog, err := NewCatalog(defaultSteps)
	if err != nil {
		// The built-in catalog is validated by tests; failing here means a
		// broken build, not a runtime condition.
		panic(fmt.Sprintf("invalid default catalog: %v", err))
	}
	return catalog
}
