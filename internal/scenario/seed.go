package scenario

import (
	"context"

	"github.com/aas-risk-engine/internal/service"
)

// Reference scenario names, stable across restarts so the UI can link
// to them.
const (
	ReferencePhysiologicName = "physiologic-trt"
	ReferenceHighRiskName    = "high-risk-stack"
)

// SeedReferences ensures the canonical reference scenarios exist in the
// store. Existing entries are left untouched, so user edits survive
// restarts.
func SeedReferences(ctx context.Context, store Store) error {
	refs := []*Scenario{
		{
			Name:        ReferencePhysiologicName,
			Description: "Physiologic TRT reference: 140 mg/week testosterone year-round",
			Input:       service.PhysiologicReferenceInput(),
		},
		{
			Name:        ReferenceHighRiskName,
			Description: "High-risk reference: heavy injectable stack with a high-dose oral",
			Input:       service.HighRiskReferenceInput(),
		},
	}

	for _, ref := range refs {
		existing, err := store.GetByName(ctx, ref.Name)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		if err := store.Save(ctx, ref); err != nil {
			return err
		}
	}
	return nil
}
