package flow

import (
	"strings"
	"testing"

	"github.com/UpswitchEU/upswitch-valuation-tester/internal/models"
)

var demoCompany = models.CompanyInfo{CompanyName: "Demo Company", Industry: "Technology", Country: "Belgium"}

func fullAnswers() map[string]any {
	return map[string]any{
		"revenue":     2000000.0,
		"ebitda":      400000.0,
		"employees":   25.0,
		"industry":    "Technology",
		"growth_rate": 15.0,
		"country":     "Belgium",
	}
}

func TestDeriveValuationDeterminism(t *testing.T) {
	a := DeriveValuation(fullAnswers(), demoCompany)
	b := DeriveValuation(fullAnswers(), demoCompany)

	if a.EquityValue != b.EquityValue || a.ValuationRange != b.ValuationRange || a.ConfidenceScore != b.ConfidenceScore {
		t.Errorf("derivation is not deterministic: %+v vs %+v", a, b)
	}
}

func TestDeriveValuationMath(t *testing.T) {
	result := DeriveValuation(fullAnswers(), demoCompany)

	if result.EquityValue != 5000000 {
		t.Errorf("estimate = %d, want 5000000 (revenue x 2.5)", result.EquityValue)
	}
	if result.ValuationRange.Min != 4000000 {
		t.Errorf("range min = %d, want 4000000 (estimate x 0.8)", result.ValuationRange.Min)
	}
	if result.ValuationRange.Max != 6000000 {
		t.Errorf("range max = %d, want 6000000 (estimate x 1.2)", result.ValuationRange.Max)
	}
	if result.ConfidenceScore != 0.85 {
		t.Errorf("confidence = %v, want 0.85", result.ConfidenceScore)
	}
	if result.Methodology != "DCF + Market Multiples" {
		t.Errorf("methodology = %q", result.Methodology)
	}
	if result.CompanyName != "Demo Company" {
		t.Errorf("company name = %q", result.CompanyName)
	}
}

func TestDeriveValuationRounding(t *testing.T) {
	data := fullAnswers()
	data["revenue"] = 333333.0
	result := DeriveValuation(data, demoCompany)

	// 333333 * 2.5 = 833332.5, rounds to 833333.
	if result.EquityValue != 833333 {
		t.Errorf("estimate = %d, want 833333", result.EquityValue)
	}
	// 833333 * 0.8 = 666666.4 -> 666666; 833333 * 1.2 = 999999.6 -> 1000000.
	if result.ValuationRange.Min != 666666 || result.ValuationRange.Max != 1000000 {
		t.Errorf("range = %+v, want [666666,1000000]", result.ValuationRange)
	}
}

func TestDeriveValuationDefaults(t *testing.T) {
	// Defensive fallback path: in normal operation the engine guarantees a
	// full answer map before derivation.
	result := DeriveValuation(map[string]any{}, demoCompany)

	if result.Revenue != 1000000 {
		t.Errorf("default revenue = %v, want 1000000", result.Revenue)
	}
	if result.EBITDA != 200000 {
		t.Errorf("default ebitda = %v, want revenue x 0.2 = 200000", result.EBITDA)
	}
	if result.Employees != 10 || result.Industry != "Technology" || result.Country != "Belgium" || result.GrowthRate != 15 {
		t.Errorf("unexpected context defaults: %+v", result)
	}
	if result.EquityValue != 2500000 {
		t.Errorf("default estimate = %d, want 2500000", result.EquityValue)
	}
}

func TestDeriveValuationEBITDADefaultTracksRevenue(t *testing.T) {
	data := map[string]any{"revenue": 2000000.0}
	result := DeriveValuation(data, demoCompany)
	if result.EBITDA != 400000 {
		t.Errorf("ebitda default = %v, want revenue x 0.2 = 400000", result.EBITDA)
	}
}

func TestDeriveValuationIDFormat(t *testing.T) {
	result := DeriveValuation(fullAnswers(), demoCompany)
	if !strings.HasPrefix(result.ValuationID, "val_") {
		t.Errorf("valuation id = %q, want val_ prefix", result.ValuationID)
	}
}
