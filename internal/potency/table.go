// Package potency normalizes heterogeneous compound doses into a single
// comparable exposure unit: the weekly testosterone-equivalent dose.
package potency

import (
	"strings"

	"github.com/aas-risk-engine/internal/domain"
)

// ReferenceFactor is the potency of the reference compound (testosterone).
const ReferenceFactor = 1.0

// factors maps normalized compound names to potency relative to
// testosterone. A factor of 1.0 defines the reference compound.
var factors = map[string]float64{
	// Injectable esters of the reference compound.
	"testosterone":             1.0,
	"testosterone_enanthate":   1.0,
	"testosterone_cypionate":   1.0,
	"testosterone_propionate":  1.0,
	"testosterone_undecanoate": 1.0,
	"sustanon":                 1.0,

	// High potency injectables.
	"trenbolone":           2.0,
	"trenbolone_acetate":   2.0,
	"trenbolone_enanthate": 2.0,

	// Moderate potency injectables.
	"nandrolone":                  1.2,
	"nandrolone_decanoate":        1.2,
	"nandrolone_phenylpropionate": 1.2,
	"boldenone":                   1.1,
	"boldenone_undecylenate":      1.1,
	"masteron":                    1.1,
	"drostanolone_propionate":     1.1,
	"drostanolone_enanthate":      1.1,

	// Mild injectables.
	"primobolan":            0.8,
	"methenolone_enanthate": 0.8,
	"methenolone_acetate":   0.8,

	// Orals.
	"oxandrolone":        0.9,
	"anavar":             0.9,
	"winstrol":           1.0,
	"stanozolol":         1.0,
	"anadrol":            1.5,
	"oxymetholone":       1.5,
	"dianabol":           1.3,
	"methandrostenolone": 1.3,
	"turinabol":          1.0,
	"halotestin":         2.5,
	"fluoxymesterone":    2.5,
	"superdrol":          2.0,
	"methyldrostanolone": 2.0,
}

// oral17aa contains the oral 17-alpha-alkylated compounds, which carry
// hepatic and lipid risk beyond their potency factor.
var oral17aa = map[string]bool{
	"oxandrolone": true, "anavar": true, "winstrol": true, "stanozolol": true,
	"anadrol": true, "oxymetholone": true, "dianabol": true,
	"methandrostenolone": true, "turinabol": true, "halotestin": true,
	"fluoxymesterone": true, "superdrol": true, "methyldrostanolone": true,
}

// dhtDerived contains DHT-derived compounds, relevant to dermatologic risk.
var dhtDerived = map[string]bool{
	"masteron": true, "drostanolone_propionate": true, "drostanolone_enanthate": true,
	"primobolan": true, "methenolone_enanthate": true, "methenolone_acetate": true,
	"winstrol": true, "stanozolol": true, "anavar": true, "oxandrolone": true,
	"halotestin": true, "fluoxymesterone": true,
}

// heavy contains the compounds considered heavy for replacement strategies.
var heavy = map[string]bool{
	"trenbolone": true, "trenbolone_acetate": true, "trenbolone_enanthate": true,
	"anadrol": true, "oxymetholone": true, "halotestin": true,
	"fluoxymesterone": true, "superdrol": true, "methyldrostanolone": true,
}

// mild contains the compounds considered mild for replacement strategies.
var mild = map[string]bool{
	"primobolan": true, "methenolone_enanthate": true, "methenolone_acetate": true,
	"oxandrolone": true, "anavar": true, "boldenone": true, "boldenone_undecylenate": true,
}

// NormalizeName canonicalizes a compound name for table lookup:
// lowercased, spaces and dashes folded to underscores.
func NormalizeName(compound string) string {
	name := strings.ToLower(strings.TrimSpace(compound))
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "-", "_")
	return name
}

// Factor returns the potency factor for a compound. Overrides take
// precedence over the built-in table, supporting custom compounds. Unknown
// compounds without an override fail with an UnknownCompoundError.
func Factor(compound string, overrides map[string]float64) (float64, error) {
	name := NormalizeName(compound)
	if overrides != nil {
		if f, ok := overrides[name]; ok && f > 0 {
			return f, nil
		}
	}
	if f, ok := factors[name]; ok {
		return f, nil
	}
	return 0, &domain.UnknownCompoundError{Compound: compound}
}

// IsOral17aa reports whether a compound is oral 17-alpha-alkylated.
func IsOral17aa(compound string) bool {
	return oral17aa[NormalizeName(compound)]
}

// IsDHTDerived reports whether a compound is DHT-derived.
func IsDHTDerived(compound string) bool {
	return dhtDerived[NormalizeName(compound)]
}

// IsHeavy reports whether a compound is considered heavy.
func IsHeavy(compound string) bool {
	return heavy[NormalizeName(compound)]
}

// IsMild reports whether a compound is considered mild.
func IsMild(compound string) bool {
	return mild[NormalizeName(compound)]
}

// NormalizedDose pairs a compound dose with its weekly-equivalent dose and
// classification flags.
type NormalizedDose struct {
	domain.CompoundDose
	WeeklyEquivalent float64
	Oral17aa         bool
	DHTDerived       bool
	Heavy            bool
}

// Normalize converts one compound dose into its weekly testosterone
// equivalent: weekly mass times potency factor. No side effects.
func Normalize(dose domain.CompoundDose, overrides map[string]float64) (NormalizedDose, error) {
	f, err := Factor(dose.Compound, overrides)
	if err != nil {
		return NormalizedDose{}, err
	}
	return NormalizedDose{
		CompoundDose:     dose,
		WeeklyEquivalent: dose.WeeklyMg * f,
		Oral17aa:         IsOral17aa(dose.Compound),
		DHTDerived:       IsDHTDerived(dose.Compound),
		Heavy:            IsHeavy(dose.Compound),
	}, nil
}

// NormalizeRegimen normalizes every dose in a regimen. The first unknown
// compound aborts the whole normalization.
func NormalizeRegimen(r domain.Regimen, overrides map[string]float64) ([]NormalizedDose, error) {
	normalized := make([]NormalizedDose, 0, len(r.Compounds))
	for _, dose := range r.Compounds {
		nd, err := Normalize(dose, overrides)
		if err != nil {
			return nil, err
		}
		normalized = append(normalized, nd)
	}
	return normalized, nil
}
