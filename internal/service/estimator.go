package service

import "github.com/aas-risk-engine/internal/domain"

// fallbackEventAge is used for domains with no entry in the average
// event age table.
const fallbackEventAge = 65

// EventFreeYears converts an absolute risk reduction for one domain
// into expected event-free years over the remaining horizon:
//
//	EFY = ARR x (horizonRemaining - avgEventAgeOffset)
//
// where horizonRemaining is the span from the current age to the
// horizon and avgEventAgeOffset is the span from the current age to the
// domain's typical first-event age, both floored at zero. The result is
// symmetric: a risk increase yields negative event-free years.
func EventFreeYears(d domain.Domain, arr float64, currentAge, horizonAge int) float64 {
	if horizonAge <= 0 {
		horizonAge = domain.DefaultHorizonAge
	}
	avgEventAge, ok := domain.AverageEventAge[d]
	if !ok {
		avgEventAge = fallbackEventAge
	}

	horizonRemaining := horizonAge - currentAge
	if horizonRemaining < 0 {
		horizonRemaining = 0
	}
	offset := avgEventAge - currentAge
	if offset < 0 {
		offset = 0
	}

	return arr * float64(horizonRemaining-offset)
}
