package plugin

import (
	"math"

	"github.com/aas-risk-engine/internal/domain"
)

// FertilityPluginName is the registration name of the built-in fertility
// contributor.
const FertilityPluginName = "fertility"

// FertilityContributor estimates the extra endocrine suppression risk of
// a regimen: HPG-axis recovery worsens with total weekly mass, cycle
// length, and age, and improves with HCG or SERM support.
type FertilityContributor struct{}

// DeclareInputs implements Contributor.
func (c *FertilityContributor) DeclareInputs() []InputField {
	return []InputField{
		{Name: "regimen", Description: "compound doses with weekly mass and duration", Required: true},
		{Name: "demographics.age", Description: "subject age in years", Required: false},
		{Name: "interventions.hcg", Description: "HCG support during the cycle", Required: false},
		{Name: "interventions.serm_pct", Description: "SERM-based post-cycle therapy", Required: false},
	}
}

// ContributeMultipliers implements Contributor. A physiologic regimen
// contributes nothing.
func (c *FertilityContributor) ContributeMultipliers(input *domain.InputRecord) (map[domain.Domain][]float64, error) {
	var totalWeeklyMg float64
	var longestWeeks int
	for _, d := range input.Regimen.Compounds {
		totalWeeklyMg += d.WeeklyMg
		if d.DurationWeeks > longestWeeks {
			longestWeeks = d.DurationWeeks
		}
	}
	if totalWeeklyMg <= 150 {
		return nil, nil
	}

	// Suppression deepens with excess mass, up to a ceiling.
	m := 1 + math.Min(1, (totalWeeklyMg-150)/500)*0.8
	if longestWeeks > 20 {
		m *= 1.15
	}
	if input.Demographics.Age > 35 {
		m *= 1.1
	}
	if input.Interventions.HCG {
		m *= 0.7
	}
	if input.Interventions.SERMPostCycle {
		m *= 0.85
	}

	return map[domain.Domain][]float64{
		domain.DomainEndocrine: {m},
	}, nil
}
