// Package flow derives the final valuation from a completed conversation.
package flow

import (
	"math"

	"github.com/UpswitchEU/upswitch-valuation-tester/internal/models"
	"github.com/UpswitchEU/upswitch-valuation-tester/internal/util"
)

// Valuation business rule constants.
const (
	// ValuationMethodology labels how the estimate was derived.
	ValuationMethodology = "DCF + Market Multiples"
	// ConfidenceScore is the fixed confidence reported with every estimate.
	ConfidenceScore = 0.85
	// revenueMultiple turns annual revenue into the point estimate.
	revenueMultiple = 2.5
	// rangeLowFactor and rangeHighFactor bound the range around the estimate.
	rangeLowFactor  = 0.8
	rangeHighFactor = 1.2
)

// Defensive defaults for context fields. The engine guarantees every field
// is answered before completion, so these only matter for callers deriving
// a valuation from a partial answer map.
const (
	defaultRevenue    = 1000000.0
	defaultEBITDARate = 0.2
	defaultEmployees  = 10.0
	defaultIndustry   = "Technology"
	defaultCountry    = "Belgium"
	defaultGrowthRate = 15.0
)

// DeriveValuation computes the valuation result from the accumulated
// answers. The numbers are deterministic given the answer map; only the
// valuation identifier is time-derived.
func DeriveValuation(data map[string]any, company models.CompanyInfo) models.ValuationResult {
	revenue := numberOr(data, "revenue", defaultRevenue)
	ebitda := numberOr(data, "ebitda", revenue*defaultEBITDARate)
	employees := numberOr(data, "employees", defaultEmployees)
	industry := textOr(data, "industry", defaultIndustry)
	country := textOr(data, "country", defaultCountry)
	growthRate := numberOr(data, "growth_rate", defaultGrowthRate)

	estimate := int64(math.Round(revenue * revenueMultiple))
	low := int64(math.Round(float64(estimate) * rangeLowFactor))
	high := int64(math.Round(float64(estimate) * rangeHighFactor))

	return models.ValuationResult{
		ValuationID:     util.GenerateValuationID(),
		EquityValue:     estimate,
		ValuationRange:  models.ValuationRange{Min: low, Max: high},
		ConfidenceScore: ConfidenceScore,
		Methodology:     ValuationMethodology,
		CompanyName:     company.CompanyName,
		Revenue:         revenue,
		EBITDA:          ebitda,
		Employees:       employees,
		Industry:        industry,
		Country:         country,
		GrowthRate:      growthRate,
	}
}

// numberOr reads a numeric answer, falling back to def when absent or not
// numeric.
func numberOr(data map[string]any, field string, def float64) float64 {
	if raw, ok := data[field]; ok {
		if num, ok := toNumber(raw); ok {
			return num
		}
	}
	return def
}

// textOr reads a text answer, falling back to def when absent or not text.
func textOr(data map[string]any, field string, def string) string {
	if raw, ok := data[field]; ok {
		if text, ok := raw.(string); ok && text != "" {
			return text
		}
	}
	return def
}
