// Package exposure derives secondary exposure metrics from a normalized
// regimen timeline: weekly-equivalent totals, recovery ratio, oral weeks,
// and lab-derived flags.
package exposure

import (
	"math"

	"github.com/aas-risk-engine/internal/domain"
	"github.com/aas-risk-engine/internal/potency"
)

// BuildProfile computes an ExposureProfile for a normalized regimen over
// the 52-week observation window. All cutoffs come from the caller-supplied
// thresholds, never from literals here.
//
// An empty regimen yields an all-zero profile with recovery ratio 1.0,
// representing a pure-baseline scenario; it never fails.
func BuildProfile(doses []potency.NormalizedDose, labs domain.LabPanel, t domain.Thresholds) domain.ExposureProfile {
	profile := domain.ExposureProfile{RecoveryRatio: 1.0}

	var weeklyTE [domain.ObservationWeeks]float64
	var weeklyOralMg [domain.ObservationWeeks]float64
	var weeklyOral17aa [domain.ObservationWeeks]bool

	for _, d := range doses {
		if d.Heavy {
			profile.HasHeavyCompounds = true
		}
		if d.DHTDerived {
			profile.HasDHTCompounds = true
		}

		start := d.StartWeek - 1
		if start < 0 {
			start = 0
		}
		end := start + d.DurationWeeks
		if end > domain.ObservationWeeks {
			end = domain.ObservationWeeks
		}
		if (d.Oral || d.Oral17aa) && end > start {
			profile.OralWeeks += float64(end - start)
		}
		for week := start; week < end; week++ {
			weeklyTE[week] += d.WeeklyEquivalent
			if d.Oral || d.Oral17aa {
				weeklyOralMg[week] += d.WeeklyMg
				if d.Oral17aa {
					weeklyOral17aa[week] = true
				}
			}
		}
	}

	var activeWeeks, supraWeeks, streak int
	var sumTE float64
	for _, te := range weeklyTE {
		if te > 0 {
			activeWeeks++
			sumTE += te
		}
		if te > t.PhysiologicWeeklyMg {
			supraWeeks++
			streak++
			if streak > profile.LongestSupraStreak {
				profile.LongestSupraStreak = streak
			}
		} else {
			streak = 0
		}
		if te > profile.PeakWeeklyEquivalent {
			profile.PeakWeeklyEquivalent = te
		}
	}

	if activeWeeks > 0 {
		profile.WeeklyEquivalentTotal = sumTE / float64(activeWeeks)
	}
	profile.SupraWeeks = supraWeeks
	// Recovery ratio is the fraction of the window spent at or below the
	// physiologic threshold.
	profile.RecoveryRatio = float64(domain.ObservationWeeks-supraWeeks) / float64(domain.ObservationWeeks)

	for week := 0; week < domain.ObservationWeeks; week++ {
		if weeklyOral17aa[week] && weeklyOralMg[week] >= t.OralHighDoseMg*7 {
			profile.OralHighDoseWeeks++
		}
	}

	profile.HDLNadir = estimateHDLNadir(labs.HDL, profile, t)
	profile.HematocritHigh = labs.Hematocrit > t.HematocritPct
	profile.HDLNadirLow = profile.HDLNadir < t.HDLNadirMgDL

	return profile
}

// estimateHDLNadir projects the on-cycle HDL low point from the baseline
// HDL and the supra-physiologic exposure. Oral 17aa use deepens the drop.
func estimateHDLNadir(baselineHDL float64, p domain.ExposureProfile, t domain.Thresholds) float64 {
	if baselineHDL <= 0 {
		baselineHDL = 50
	}

	excess := math.Max(0, p.WeeklyEquivalentTotal-t.PhysiologicWeeklyMg)
	dropFraction := math.Min(0.5, excess/300)

	oralFactor := 1.0
	if p.OralWeeks > 0 {
		oralFactor = 1.2
		if p.OralHighDoseWeeks > 4 {
			oralFactor = 1.5
		}
	}

	drop := baselineHDL * dropFraction * oralFactor
	if p.OralHighDoseWeeks > 8 {
		drop += 10
	}

	return math.Max(15, baselineHDL-drop)
}

// CategoryFor labels an exposure profile. The label is a pure function of
// the profile; when several conditions match, the most severe label wins.
func CategoryFor(p domain.ExposureProfile, t domain.Thresholds) domain.RiskCategory {
	if p.WeeklyEquivalentTotal > t.ModerateWeeklyMg ||
		p.OralWeeks > t.OralWeeksHighRisk ||
		p.RecoveryRatio < t.RecoveryHighRisk ||
		p.HematocritHigh {
		return domain.CategoryHighRisk
	}
	if p.WeeklyEquivalentTotal > t.PhysiologicWeeklyMg || p.OralWeeks > 0 {
		return domain.CategoryModerate
	}
	return domain.CategoryPhysiologic
}
