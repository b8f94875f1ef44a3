package domain

// ObservationWeeks is the length of the regimen observation window. All
// exposure metrics are computed over one year of weekly buckets.
const ObservationWeeks = 52

// CompoundDose is one compound within a regimen. Immutable once part of a
// submitted regimen.
type CompoundDose struct {
	Compound      string  `json:"compound"`
	WeeklyMg      float64 `json:"weekly_mg"`
	StartWeek     int     `json:"start_week,omitempty"` // 1-based; 0 means week 1
	DurationWeeks int     `json:"duration_weeks"`
	Oral          bool    `json:"is_oral,omitempty"`
}

// Regimen is an ordered set of compound doses.
type Regimen struct {
	Compounds []CompoundDose `json:"compounds"`
}

// Empty reports whether the regimen contains no compounds. An empty regimen
// is a valid pure-baseline scenario, not an error.
func (r Regimen) Empty() bool {
	return len(r.Compounds) == 0
}

// Validate checks the regimen invariants: durations strictly positive,
// weekly mass non-negative, compound named.
func (r Regimen) Validate() error {
	for i, d := range r.Compounds {
		if d.Compound == "" {
			return NewValidationError("compounds", "compound name is required", i)
		}
		if d.DurationWeeks <= 0 {
			return NewValidationError("duration_weeks", "duration must be positive", d.DurationWeeks)
		}
		if d.WeeklyMg < 0 {
			return NewValidationError("weekly_mg", "weekly mass cannot be negative", d.WeeklyMg)
		}
	}
	return nil
}

// Demographics carries the caller-reported subject attributes used by the
// estimator and plugins.
type Demographics struct {
	Age int    `json:"age"`
	Sex string `json:"sex,omitempty"`
}

// LabPanel carries the lab values consulted by the resolver and aggregator.
type LabPanel struct {
	HDL        float64 `json:"hdl,omitempty"`
	LDL        float64 `json:"ldl,omitempty"`
	Hematocrit float64 `json:"hematocrit,omitempty"`
}

// Lifestyle carries self-reported lifestyle factors. Smoking is a
// pointer so an unreported status is distinguishable from a reported
// non-smoker; only the latter earns the protective adjustment.
type Lifestyle struct {
	MediterraneanAdherence int       `json:"mediterranean_adherence,omitempty"` // 0-10 scale
	OSAStatus              OSAStatus `json:"osa_status,omitempty"`
	Smoking                *bool     `json:"smoking,omitempty"`
	SleepHours             float64   `json:"sleep_hours,omitempty"`
	AlcoholOccasionsMonth  int       `json:"alcohol_occasions_month,omitempty"`
}

// Performance carries fitness metrics used for baseline personalization.
type Performance struct {
	VO2Max float64 `json:"vo2max,omitempty"`
}

// Anthropometrics carries body composition metrics.
type Anthropometrics struct {
	BodyFatPct float64 `json:"body_fat_pct,omitempty"`
}

// Interventions carries the mitigation flags set by the caller. Each flag
// maps to a fixed categorical multiplier in the active preset.
type Interventions struct {
	StatinIntensity   StatinIntensity `json:"statin_intensity,omitempty"`
	Ezetimibe         bool            `json:"ezetimibe,omitempty"`
	PCSK9             bool            `json:"pcsk9,omitempty"`
	Omega3            bool            `json:"omega3,omitempty"`
	GLP1Agonist       bool            `json:"glp1_agonist,omitempty"`
	Metformin         bool            `json:"metformin,omitempty"`
	PDE5Daily         bool            `json:"pde5_daily,omitempty"`
	Finasteride       bool            `json:"finasteride,omitempty"`
	AIExcess          bool            `json:"ai_excess,omitempty"`
	SERMPostCycle     bool            `json:"serm_pct,omitempty"`
	HCG               bool            `json:"hcg,omitempty"`
	VO2MaxImprovement float64         `json:"vo2max_improvement,omitempty"` // mL/kg/min gained
	BodyfatReduction  float64         `json:"bodyfat_reduction,omitempty"`  // percentage points lost
	EliminateOrals    bool            `json:"eliminate_orals,omitempty"`
	ReplaceHeavyMild  bool            `json:"replace_heavy_mild,omitempty"`
	DoseReductionHct  bool            `json:"dose_reduction_hct,omitempty"`
	BloodDonationOnly bool            `json:"blood_donation_only,omitempty"`
}

// InputRecord is the full structured input to one risk calculation. The
// active preset and plugin set are explicit here; the engine reads no
// ambient configuration during a calculation.
type InputRecord struct {
	Regimen          Regimen            `json:"regimen"`
	Demographics     Demographics       `json:"demographics"`
	Labs             LabPanel           `json:"labs"`
	Lifestyle        Lifestyle          `json:"lifestyle"`
	Performance      Performance        `json:"performance"`
	Anthropometrics  Anthropometrics    `json:"anthropometrics"`
	Interventions    Interventions      `json:"interventions"`
	Preset           string             `json:"preset"`
	PotencyOverrides map[string]float64 `json:"potency_overrides,omitempty"` // compound -> factor, for custom compounds
	Plugins          []string           `json:"plugins,omitempty"`           // active plugin names; empty means none
}

// ExposureProfile holds the derived exposure metrics for one regimen.
// Computed fresh per calculation and never persisted independently.
type ExposureProfile struct {
	WeeklyEquivalentTotal float64 `json:"weekly_equivalent_total"` // mean mg TE over active weeks
	PeakWeeklyEquivalent  float64 `json:"peak_weekly_equivalent"`
	SupraWeeks            int     `json:"supra_weeks"` // weeks above the physiologic threshold
	LongestSupraStreak    int     `json:"longest_supra_streak"`
	RecoveryRatio         float64 `json:"recovery_ratio"` // weeks at/below threshold / total weeks, in [0,1]
	OralWeeks             float64 `json:"oral_weeks"` // sum of oral dose durations inside the window
	OralHighDoseWeeks     float64 `json:"oral_high_dose_weeks"`
	HDLNadir              float64 `json:"hdl_nadir"`
	HasHeavyCompounds     bool    `json:"has_heavy_compounds"`
	HasDHTCompounds       bool    `json:"has_dht_compounds"`
	HematocritHigh        bool    `json:"hematocrit_high"`
	HDLNadirLow           bool    `json:"hdl_nadir_low"`
}

// Thresholds are the clinical and exposure cutoffs read from the active
// preset. They are configuration, never hardcoded in the calculation path.
type Thresholds struct {
	PhysiologicWeeklyMg float64 `mapstructure:"physiologic_weekly_mg" json:"physiologic_weekly_mg"`
	ScalableStepMg      float64 `mapstructure:"scalable_step_mg" json:"scalable_step_mg"`
	ScalableMinWeeks    int     `mapstructure:"scalable_min_weeks" json:"scalable_min_weeks"`
	StackWeeklyMg       float64 `mapstructure:"stack_weekly_mg" json:"stack_weekly_mg"`
	StackMinWeeks       int     `mapstructure:"stack_min_weeks" json:"stack_min_weeks"`
	HematocritPct       float64 `mapstructure:"hematocrit_pct" json:"hematocrit_pct"`
	HDLNadirMgDL        float64 `mapstructure:"hdl_nadir_mg_dl" json:"hdl_nadir_mg_dl"`
	OralHighDoseMg      float64 `mapstructure:"oral_high_dose_mg" json:"oral_high_dose_mg"`
	OralHighTierWeeks   float64 `mapstructure:"oral_high_tier_weeks" json:"oral_high_tier_weeks"`
	RecoveryCategorical float64 `mapstructure:"recovery_categorical" json:"recovery_categorical"`
	RecoveryHighRisk    float64 `mapstructure:"recovery_high_risk" json:"recovery_high_risk"`
	ModerateWeeklyMg    float64 `mapstructure:"moderate_weekly_mg" json:"moderate_weekly_mg"`
	OralWeeksHighRisk   float64 `mapstructure:"oral_weeks_high_risk" json:"oral_weeks_high_risk"`
}

// DefaultThresholds returns the shared baseline cutoffs used when a preset
// file does not override them.
func DefaultThresholds() Thresholds {
	return Thresholds{
		PhysiologicWeeklyMg: 150,
		ScalableStepMg:      100,
		ScalableMinWeeks:    26,
		StackWeeklyMg:       300,
		StackMinWeeks:       20,
		HematocritPct:       54,
		HDLNadirMgDL:        25,
		OralHighDoseMg:      50,
		OralHighTierWeeks:   5,
		RecoveryCategorical: 0.5,
		RecoveryHighRisk:    0.75,
		ModerateWeeklyMg:    300,
		OralWeeksHighRisk:   8,
	}
}

// Preset is a named, versioned coefficient universe: per-domain baseline
// lifetime risks plus multiplier tables keyed by condition. Presets are
// immutable once loaded.
type Preset struct {
	Name        string                        `json:"name"`
	Version     string                        `json:"version"`
	Baselines   map[Domain]float64            `json:"baselines"`
	Multipliers map[string]map[Domain]float64 `json:"multipliers"`
	Thresholds  Thresholds                    `json:"thresholds"`
}

// Multiplier returns the per-domain value for a multiplier key, with ok
// reporting whether the key defines a value for that domain.
func (p *Preset) Multiplier(key string, d Domain) (float64, bool) {
	table, ok := p.Multipliers[key]
	if !ok {
		return 0, false
	}
	v, ok := table[d]
	return v, ok
}

// PluginContribution is one plugin's output for a calculation: extra
// multiplier values per domain, merged after built-in resolution. It lives
// only for the duration of one calculation.
type PluginContribution struct {
	Plugin      string               `json:"plugin"`
	Multipliers map[Domain][]float64 `json:"multipliers"`
}

// DomainRisk is the per-domain slice of an output record.
type DomainRisk struct {
	Baseline       float64      `json:"baseline"`
	AbsoluteRisk   float64      `json:"absolute_risk"` // probability, clamped to [0,1]
	RelativeRisk   float64      `json:"relative_risk"` // vs fixed population baseline
	EventFreeYears float64      `json:"event_free_years"`
	Category       RiskCategory `json:"category"`
	Saturated      bool         `json:"saturated"`
	Multipliers    []float64    `json:"multipliers,omitempty"` // composed chain, in application order
}

// RiskRecord is the output of one calculation. It carries no timestamps so
// repeated calculations over identical inputs are byte-identical.
type RiskRecord struct {
	Preset       string                `json:"preset"`
	ModelVersion string                `json:"model_version"`
	Category     RiskCategory          `json:"category"`
	Exposure     ExposureProfile       `json:"exposure"`
	Domains      map[Domain]DomainRisk `json:"domains"`
	Warnings     []Warning             `json:"warnings,omitempty"`
}

// DomainImpact quantifies the per-domain effect of moving from one scenario
// to another (typically without vs with an intervention).
type DomainImpact struct {
	AbsoluteRiskReduction float64 `json:"absolute_risk_reduction"`
	RelativeRiskReduction float64 `json:"relative_risk_reduction"`
	RiskRatio             float64 `json:"risk_ratio"`
	EventFreeYearsGained  float64 `json:"event_free_years_gained"`
}
