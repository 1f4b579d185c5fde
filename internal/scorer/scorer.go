// Package scorer computes the completion heuristic and derives brief status
// from the canonical extraction record. All functions are pure.
package scorer

import (
	"math"

	"github.com/collabops/brief-cli/internal/model"
)

// checkpointCount is the number of independent completion checkpoints.
const checkpointCount = 10

// CompletionPercentage scores how fully a brief's extraction has been
// populated: ten independent boolean checkpoints, rounded percentage of
// those that hold.
func CompletionPercentage(b *model.Brief) int {
	e := &b.AIExtraction

	checks := []bool{
		e.Status == model.ExtractionCompleted,
		e.BrandInfo.Name != "",
		len(e.Deliverables) > 0,
		e.Timeline.ContentDeadline != nil,
		e.Budget.Mentioned,
		len(e.BrandGuidelines.Hashtags) > 0,
		e.UsageRights.Duration != "",
		len(e.CriticalMissing()) == 0,
		e.RiskAssessment.OverallRisk != "",
		b.CreatorNotes != "",
	}

	hold := 0
	for _, c := range checks {
		if c {
			hold++
		}
	}
	return int(math.Round(100 * float64(hold) / checkpointCount))
}

// EstimatedValue sums the estimated value of all deliverables. Returns 0
// for an empty deliverable list.
func EstimatedValue(b *model.Brief) float64 {
	var total float64
	for _, d := range b.AIExtraction.Deliverables {
		total += d.EstimatedValue
	}
	return total
}

// DeriveStatus computes the brief status immediately after a completed
// extraction: ready_for_deal iff no critical missing-info entry remains,
// needs_clarification otherwise.
func DeriveStatus(e *model.AIExtraction) model.BriefStatus {
	if len(e.CriticalMissing()) == 0 {
		return model.BriefStatusReadyForDeal
	}
	return model.BriefStatusNeedsClarification
}

// IsReadyForDeal is the conversion gate: extraction completed, at least one
// deliverable, zero critical gaps, and the brief currently in
// ready_for_deal.
func IsReadyForDeal(b *model.Brief) bool {
	e := &b.AIExtraction
	return e.Status == model.ExtractionCompleted &&
		len(e.Deliverables) > 0 &&
		len(e.CriticalMissing()) == 0 &&
		b.Status == model.BriefStatusReadyForDeal
}
