package flow

import (
	"errors"
	"testing"

	"github.com/UpswitchEU/upswitch-valuation-tester/internal/models"
)

func TestDefaultCatalogShape(t *testing.T) {
	catalog := DefaultCatalog()

	if catalog.StepCount() != 6 {
		t.Fatalf("expected 6 steps, got %d", catalog.StepCount())
	}

	wantFields := []string{"revenue", "ebitda", "employees", "industry", "growth_rate", "country"}
	for i, field := range wantFields {
		step, err := catalog.StepAt(i)
		if err != nil {
			t.Fatalf("unexpected error at ordinal %d: %v", i, err)
		}
		if step.Field != field {
			t.Errorf("ordinal %d: expected field %q, got %q", i, field, step.Field)
		}
		if step.Ordinal != i {
			t.Errorf("ordinal %d: step carries ordinal %d", i, step.Ordinal)
		}
		if step.Prompt == "" || step.HelpText == "" {
			t.Errorf("ordinal %d: prompt and help text must be non-empty", i)
		}
	}

	first := catalog.FirstStep()
	if first.Field != "revenue" || first.Kind != models.InputKindNumber {
		t.Errorf("unexpected first step: %+v", first)
	}
	if first.Rule.Min != 10000 || first.Rule.Max != 1000000000 {
		t.Errorf("unexpected revenue bounds: %+v", first.Rule)
	}
}

func TestCatalogStepAtOutOfRange(t *testing.T) {
	catalog := DefaultCatalog()
	for _, ordinal := range []int{-1, 6, 100} {
		if _, err := catalog.StepAt(ordinal); !errors.Is(err, models.ErrUnknownStep) {
			t.Errorf("StepAt(%d): expected ErrUnknownStep, got %v", ordinal, err)
		}
	}
}

func TestNewCatalogRejectsInvalidDefinitions(t *testing.T) {
	valid := FlowStep{
		Ordinal:  0,
		Field:    "revenue",
		Kind:     models.InputKindNumber,
		Prompt:   "What was your revenue?",
		HelpText: "Annual revenue in euros",
		Rule:     ValidationRule{Kind: RuleNumericRange, Min: 0, Max: 100},
	}

	cases := []struct {
		name  string
		steps []FlowStep
	}{
		{"empty catalog", nil},
		{"non-contiguous ordinal", []FlowStep{{Ordinal: 1, Field: "revenue", Kind: models.InputKindNumber, Prompt: "p", HelpText: "h", Rule: ValidationRule{Kind: RuleNumericRange, Min: 0, Max: 1}}}},
		{"missing field name", []FlowStep{{Ordinal: 0, Kind: models.InputKindNumber, Prompt: "p", HelpText: "h", Rule: ValidationRule{Kind: RuleNumericRange, Min: 0, Max: 1}}}},
		{"duplicate field", []FlowStep{valid, {Ordinal: 1, Field: "revenue", Kind: models.InputKindNumber, Prompt: "p", HelpText: "h", Rule: ValidationRule{Kind: RuleNumericRange, Min: 0, Max: 1}}}},
		{"unknown input kind", []FlowStep{{Ordinal: 0, Field: "revenue", Kind: "boolean", Prompt: "p", HelpText: "h", Rule: ValidationRule{Kind: RuleNumericRange, Min: 0, Max: 1}}}},
		{"empty prompt", []FlowStep{{Ordinal: 0, Field: "revenue", Kind: models.InputKindNumber, HelpText: "h", Rule: ValidationRule{Kind: RuleNumericRange, Min: 0, Max: 1}}}},
		{"unknown rule kind", []FlowStep{{Ordinal: 0, Field: "revenue", Kind: models.InputKindNumber, Prompt: "p", HelpText: "h", Rule: ValidationRule{Kind: "regex", Min: 0, Max: 1}}}},
		{"min above max", []FlowStep{{Ordinal: 0, Field: "revenue", Kind: models.InputKindNumber, Prompt: "p", HelpText: "h", Rule: ValidationRule{Kind: RuleNumericRange, Min: 10, Max: 1}}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewCatalog(tc.steps); err == nil {
				t.Error("expected construction to fail")
			}
		})
	}

	if _, err := NewCatalog([]FlowStep{valid}); err != nil {
		t.Errorf("valid single-step catalog rejected: %v", err)
	}
}

func TestCheckValueNumber(t *testing.T) {
	step := FlowStep{
		Field: "revenue",
		Kind:  models.InputKindNumber,
		Rule:  ValidationRule{Kind: RuleNumericRange, Min: 10000, Max: 1000000000},
	}

	got, err := step.CheckValue(2000000.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 2000000.0 {
		t.Errorf("expected normalized 2000000, got %v", got)
	}

	// Numeric strings are coerced like the upstream API did.
	got, err = step.CheckValue("2000000")
	if err != nil {
		t.Fatalf("unexpected error for numeric string: %v", err)
	}
	if got != 2000000.0 {
		t.Errorf("expected coerced 2000000, got %v", got)
	}

	// Bounds are inclusive.
	if _, err := step.CheckValue(10000.0); err != nil {
		t.Errorf("min bound should be accepted: %v", err)
	}
	if _, err := step.CheckValue(1000000000.0); err != nil {
		t.Errorf("max bound should be accepted: %v", err)
	}

	var vErr *models.ValidationError
	_, err = step.CheckValue(500.0)
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if vErr.Field != "revenue" || vErr.Bound != "min" || vErr.Limit != 10000 {
		t.Errorf("rejection should reference min=10000 for revenue, got %+v", vErr)
	}

	_, err = step.CheckValue(2000000000.0)
	if !errors.As(err, &vErr) || vErr.Bound != "max" {
		t.Errorf("expected max bound rejection, got %v", err)
	}

	_, err = step.CheckValue("not a number")
	if !errors.As(err, &vErr) || vErr.Bound != "type" {
		t.Errorf("expected type rejection, got %v", err)
	}
}

func TestCheckValueText(t *testing.T) {
	step := FlowStep{
		Field: "country",
		Kind:  models.InputKindText,
		Rule:  ValidationRule{Kind: RuleTextLength, Min: 2, Max: 50},
	}

	got, err := step.CheckValue("Belgium")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Belgium" {
		t.Errorf("expected normalized text, got %v", got)
	}

	var vErr *models.ValidationError
	_, err = step.CheckValue("B")
	if !errors.As(err, &vErr) || vErr.Bound != "min" {
		t.Errorf("expected min length rejection, got %v", err)
	}

	_, err = step.CheckValue(42.0)
	if !errors.As(err, &vErr) || vErr.Bound != "type" {
		t.Errorf("expected type rejection for numeric value on text field, got %v", err)
	}

	// Length is measured in characters, not bytes.
	if _, err := step.CheckValue("Österreich"); err != nil {
		t.Errorf("multibyte country name rejected: %v", err)
	}
}
