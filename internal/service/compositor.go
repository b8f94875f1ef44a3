package service

import "github.com/aas-risk-engine/internal/domain"

// Compositor turns resolved multiplier chains into per-domain risk
// figures. Relative risk always divides by the fixed reference
// baselines, independent of the preset being calculated, so relative
// figures stay comparable across presets.
type Compositor struct {
	reference map[domain.Domain]float64
}

// NewCompositor creates a Compositor against the given reference
// baselines, conventionally the moderate preset's.
func NewCompositor(reference map[domain.Domain]float64) *Compositor {
	return &Compositor{reference: reference}
}

// Compose computes the per-domain risks: absolute risk is the preset
// baseline times the protective chain times the multiplier chain,
// clamped to [0,1] with a saturation flag when clamping changed the
// value. Event-free years are filled in by the engine afterwards.
func (c *Compositor) Compose(preset *domain.Preset, res *Resolution, category domain.RiskCategory) map[domain.Domain]domain.DomainRisk {
	domains := make(map[domain.Domain]domain.DomainRisk, len(preset.Baselines))

	for _, d := range domain.AllDomains {
		baseline, ok := preset.Baselines[d]
		if !ok {
			continue
		}

		chain := make([]float64, 0, len(res.Protective[d])+len(res.Multipliers[d]))
		chain = append(chain, res.Protective[d]...)
		chain = append(chain, res.Multipliers[d]...)

		absolute := baseline
		for _, m := range chain {
			absolute *= m
		}

		saturated := false
		if absolute > 1 {
			absolute = 1
			saturated = true
		} else if absolute < 0 {
			absolute = 0
			saturated = true
		}

		relative := 1.0
		if ref, ok := c.reference[d]; ok && ref > 0 {
			relative = absolute / ref
		}

		domains[d] = domain.DomainRisk{
			Baseline:     baseline,
			AbsoluteRisk: absolute,
			RelativeRisk: relative,
			Category:     category,
			Saturated:    saturated,
			Multipliers:  chain,
		}
	}

	return domains
}

// Reference returns the fixed baseline used as the relative-risk
// denominator for a domain.
func (c *Compositor) Reference(d domain.Domain) (float64, bool) {
	v, ok := c.reference[d]
	return v, ok
}
