// Package domain contains core business entities and types for lifetime
// health-risk estimation under exogenous androgen exposure.
//
// Risk figures are expressed as lifetime absolute probabilities per health
// domain, composed multiplicatively from a preset coefficient table.
package domain

import "fmt"

// Domain identifies a physiological risk domain tracked by the engine.
type Domain string

const (
	DomainASCVD             Domain = "ascvd"
	DomainHeartFailure      Domain = "hf"
	DomainThrombosis        Domain = "thrombosis"
	DomainIschemicStroke    Domain = "ischemic_stroke"
	DomainHemorrhagicStroke Domain = "hemorrhagic_stroke"
	DomainHepatic           Domain = "hepatic"
	DomainRenal             Domain = "renal"
	DomainNeuro             Domain = "neuro"
	DomainDiabetes          Domain = "diabetes"
	DomainDementia          Domain = "dementia"
	DomainCancerColorectal  Domain = "cancer_colorectal"
	DomainCancerProstate    Domain = "cancer_prostate"
	DomainEndocrine         Domain = "endocrine"
	DomainDermatologic      Domain = "dermatologic"
)

// AllDomains lists every tracked domain in canonical order.
var AllDomains = []Domain{
	DomainASCVD,
	DomainHeartFailure,
	DomainThrombosis,
	DomainIschemicStroke,
	DomainHemorrhagicStroke,
	DomainHepatic,
	DomainRenal,
	DomainNeuro,
	DomainDiabetes,
	DomainDementia,
	DomainCancerColorectal,
	DomainCancerProstate,
	DomainEndocrine,
	DomainDermatologic,
}

// IsValid reports whether d is a known risk domain.
func (d Domain) IsValid() bool {
	_, ok := domainDisplayNames[d]
	return ok
}

// String returns the wire representation of the domain.
func (d Domain) String() string {
	return string(d)
}

// DisplayName returns a human-readable label for the domain.
func (d Domain) DisplayName() string {
	if name, ok := domainDisplayNames[d]; ok {
		return name
	}
	return string(d)
}

var domainDisplayNames = map[Domain]string{
	DomainASCVD:             "ASCVD",
	DomainHeartFailure:      "Heart Failure",
	DomainThrombosis:        "Thrombosis",
	DomainIschemicStroke:    "Ischemic Stroke",
	DomainHemorrhagicStroke: "Hemorrhagic Stroke",
	DomainHepatic:           "Hepatic Injury",
	DomainRenal:             "Renal Injury",
	DomainNeuro:             "Neuro/Psychiatric",
	DomainDiabetes:          "Type 2 Diabetes",
	DomainDementia:          "Dementia",
	DomainCancerColorectal:  "Colorectal Cancer",
	DomainCancerProstate:    "Prostate Cancer",
	DomainEndocrine:         "Endocrine Suppression",
	DomainDermatologic:      "Dermatologic",
}

// AverageEventAge maps each domain to the typical age of first event,
// used by the event-free-years estimator.
var AverageEventAge = map[Domain]int{
	DomainASCVD:             65,
	DomainHeartFailure:      70,
	DomainThrombosis:        60,
	DomainIschemicStroke:    70,
	DomainHemorrhagicStroke: 65,
	DomainHepatic:           55,
	DomainRenal:             60,
	DomainNeuro:             45,
	DomainDiabetes:          55,
	DomainDementia:          75,
	DomainCancerColorectal:  65,
	DomainCancerProstate:    65,
	DomainEndocrine:         35,
	DomainDermatologic:      30,
}

// DefaultHorizonAge is the life-expectancy horizon for event-free-years
// estimation when the caller does not configure one.
const DefaultHorizonAge = 80

// RiskCategory is the categorical exposure label attached to a calculation.
type RiskCategory string

const (
	CategoryPhysiologic RiskCategory = "physiologic"
	CategoryModerate    RiskCategory = "moderate"
	CategoryHighRisk    RiskCategory = "high_risk"
)

// IsValid reports whether c is a known risk category.
func (c RiskCategory) IsValid() bool {
	switch c {
	case CategoryPhysiologic, CategoryModerate, CategoryHighRisk:
		return true
	default:
		return false
	}
}

// String returns the wire representation of the category.
func (c RiskCategory) String() string {
	return string(c)
}

// Severity orders categories from least to most severe. Used for the
// most-severe-wins tie break when multiple conditions match.
func (c RiskCategory) Severity() int {
	switch c {
	case CategoryPhysiologic:
		return 0
	case CategoryModerate:
		return 1
	case CategoryHighRisk:
		return 2
	default:
		return -1
	}
}

// Multiplier table keys understood by the resolver. Each key names a
// domain->value table inside a coefficient preset file.
const (
	KeyBaseline = "physiologic_t_base"

	// Exposure-driven multipliers.
	KeyPer100mgOver150 = "per_100mg_wte_over_150mg_26wks"
	KeyStack300        = "stack_300mg_20wks"
	KeyOral17aaModest  = "oral_17aa_10wks_moderate"
	KeyOral17aaHigh    = "oral_17aa_10wks_high"
	KeyHDLNadirLow     = "hdl_nadir_lt25"
	KeyHematocritHigh  = "hematocrit_gt54"
	KeyRecoveryLow     = "recovery_ratio_lt_0_5"

	// Protective lifestyle and training multipliers.
	KeyVO2Plus5           = "vo2_plus5"
	KeyAdditionalVO2Plus5 = "additional_vo2_plus5"
	KeyBodyfatMinus5      = "bodyfat_minus5pts"
	KeyMedDietHigh        = "med_diet_high"
	KeyOSATreated         = "osa_treated"
	KeyReplaceHeavyMild   = "replace_heavy_with_mild"

	// Medication and protocol multipliers.
	KeyStatinLow         = "statin_low_intensity"
	KeyStatinModerate    = "statin_moderate"
	KeyStatinHigh        = "statin_high"
	KeyEzetimibe         = "ezetimibe_addon"
	KeyPCSK9             = "pcsk9_inhibitor"
	KeyOmega3            = "omega3_high_purity"
	KeyGLP1              = "glp1_gip"
	KeyMetformin         = "metformin"
	KeyPDE5Daily         = "pde5_daily"
	KeyFinasteride       = "finasteride_dutasteride"
	KeyAIExcess          = "ai_excess_use"
	KeySERMPostCycle     = "serm_post_cycle"
	KeyHCGSupport        = "hcg_support"
	KeyDoseReductionHct  = "dose_reduction_for_hct"
	KeyBloodDonationOnly = "blood_donation_only_without_dose_reduction"
)

// StatinIntensity is the caller-reported statin regimen tier.
type StatinIntensity string

const (
	StatinNone     StatinIntensity = "none"
	StatinLow      StatinIntensity = "low"
	StatinModerate StatinIntensity = "moderate"
	StatinHigh     StatinIntensity = "high"
)

// IsValid reports whether s is a recognized statin tier.
func (s StatinIntensity) IsValid() bool {
	switch s {
	case StatinNone, StatinLow, StatinModerate, StatinHigh, "":
		return true
	default:
		return false
	}
}

// OSAStatus is the caller-reported obstructive sleep apnea state.
type OSAStatus string

const (
	OSANone      OSAStatus = "none"
	OSAUntreated OSAStatus = "untreated"
	OSATreated   OSAStatus = "treated"
)

// ProtectiveAdjustments personalizes the population baseline for favourable
// labs, fitness, and lifestyle before any exposure multiplier applies.
// These factors are shared across presets.
var ProtectiveAdjustments = map[string]map[Domain]float64{
	"ldl_optimal":      {DomainASCVD: 0.75, DomainIschemicStroke: 0.80},
	"vo2max_excellent": {DomainASCVD: 0.80, DomainHeartFailure: 0.75, DomainDiabetes: 0.70},
	"bodyfat_optimal":  {DomainASCVD: 0.85, DomainDiabetes: 0.65, DomainHeartFailure: 0.85},
	"diet_excellent":   {DomainASCVD: 0.85, DomainCancerColorectal: 0.80, DomainDementia: 0.85},
	"non_smoker":       {DomainASCVD: 0.90, DomainCancerColorectal: 0.90, DomainDementia: 0.95},
	"osa_treated":      {DomainASCVD: 0.90, DomainHeartFailure: 0.85, DomainDiabetes: 0.90},
}

// Warning is a non-fatal problem attached to a calculation result, most
// commonly a dropped plugin contribution.
type Warning struct {
	Source  string `json:"source"`
	Message string `json:"message"`
}

// String renders the warning for logs.
func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Source, w.Message)
}
