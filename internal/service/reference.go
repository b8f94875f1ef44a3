package service

import "github.com/aas-risk-engine/internal/domain"

// PhysiologicReferenceInput returns the canonical physiologic TRT
// scenario: 140 mg/week testosterone year-round with unremarkable labs.
func PhysiologicReferenceInput() *domain.InputRecord {
	nonSmoker := false
	return &domain.InputRecord{
		Regimen: domain.Regimen{Compounds: []domain.CompoundDose{
			{Compound: "testosterone", WeeklyMg: 140, StartWeek: 1, DurationWeeks: 52},
		}},
		Demographics: domain.Demographics{Age: 45, Sex: "male"},
		Labs:         domain.LabPanel{HDL: 45, LDL: 90, Hematocrit: 48},
		Lifestyle: domain.Lifestyle{
			MediterraneanAdherence: 6,
			OSAStatus:              domain.OSANone,
			Smoking:                &nonSmoker,
		},
		Performance:     domain.Performance{VO2Max: 42},
		Anthropometrics: domain.Anthropometrics{BodyFatPct: 18},
	}
}

// HighRiskReferenceInput returns the canonical high-risk scenario: a
// heavy injectable stack with a high-dose oral and elevated hematocrit.
func HighRiskReferenceInput() *domain.InputRecord {
	nonSmoker := false
	return &domain.InputRecord{
		Regimen: domain.Regimen{Compounds: []domain.CompoundDose{
			{Compound: "testosterone", WeeklyMg: 500, StartWeek: 1, DurationWeeks: 20},
			{Compound: "trenbolone", WeeklyMg: 300, StartWeek: 1, DurationWeeks: 16},
			{Compound: "anadrol", WeeklyMg: 350, StartWeek: 1, DurationWeeks: 8, Oral: true},
		}},
		Demographics: domain.Demographics{Age: 30, Sex: "male"},
		Labs:         domain.LabPanel{HDL: 35, LDL: 120, Hematocrit: 55},
		Lifestyle: domain.Lifestyle{
			MediterraneanAdherence: 4,
			OSAStatus:              domain.OSAUntreated,
			Smoking:                &nonSmoker,
		},
		Performance:     domain.Performance{VO2Max: 38},
		Anthropometrics: domain.Anthropometrics{BodyFatPct: 22},
	}
}
