package scorer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/collabops/brief-cli/internal/model"
)

func fullBrief() *model.Brief {
	deadline := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	return &model.Brief{
		Status:       model.BriefStatusReadyForDeal,
		CreatorNotes: "good brand fit",
		AIExtraction: model.AIExtraction{
			Status:    model.ExtractionCompleted,
			BrandInfo: model.BrandInfo{Name: "GlowCo"},
			Deliverables: []model.Deliverable{
				{Type: "instagram_reel", Quantity: 2, EstimatedValue: 25000},
				{Type: "youtube_video", Quantity: 1, EstimatedValue: 40000},
			},
			Timeline:        model.Timeline{ContentDeadline: &deadline},
			Budget:          model.Budget{Mentioned: true, Amount: 65000},
			BrandGuidelines: model.BrandGuidelines{Hashtags: []string{"#glow"}},
			UsageRights:     model.UsageRights{Duration: "6 months"},
			RiskAssessment:  model.RiskAssessment{OverallRisk: model.RiskLow},
		},
	}
}

func TestCompletionPercentage_AllCheckpoints(t *testing.T) {
	assert.Equal(t, 100, CompletionPercentage(fullBrief()))
}

func TestCompletionPercentage_EmptyBrief(t *testing.T) {
	assert.Equal(t, 0, CompletionPercentage(&model.Brief{}))
}

func TestCompletionPercentage_Partial(t *testing.T) {
	b := fullBrief()
	b.CreatorNotes = ""
	b.AIExtraction.BrandGuidelines.Hashtags = nil
	b.AIExtraction.UsageRights.Duration = ""
	assert.Equal(t, 70, CompletionPercentage(b))
}

func TestCompletionPercentage_CriticalMissingFailsCheckpoint(t *testing.T) {
	b := fullBrief()
	b.AIExtraction.MissingInfo = []model.MissingInfoItem{
		{Category: model.CategoryBudget, Importance: model.ImportanceCritical},
	}
	assert.Equal(t, 90, CompletionPercentage(b))

	// Non-critical gaps do not cost the checkpoint.
	b.AIExtraction.MissingInfo[0].Importance = model.ImportanceImportant
	assert.Equal(t, 100, CompletionPercentage(b))
}

func TestEstimatedValue(t *testing.T) {
	assert.Equal(t, 65000.0, EstimatedValue(fullBrief()))
	assert.Equal(t, 0.0, EstimatedValue(&model.Brief{}))
}

func TestDeriveStatus(t *testing.T) {
	e := &model.AIExtraction{Status: model.ExtractionCompleted}
	assert.Equal(t, model.BriefStatusReadyForDeal, DeriveStatus(e))

	e.MissingInfo = []model.MissingInfoItem{
		{Category: model.CategoryBudget, Importance: model.ImportanceCritical},
	}
	assert.Equal(t, model.BriefStatusNeedsClarification, DeriveStatus(e))

	e.MissingInfo[0].Importance = model.ImportanceNiceToHave
	assert.Equal(t, model.BriefStatusReadyForDeal, DeriveStatus(e))
}

func TestIsReadyForDeal(t *testing.T) {
	assert.True(t, IsReadyForDeal(fullBrief()))

	b := fullBrief()
	b.AIExtraction.Deliverables = nil
	assert.False(t, IsReadyForDeal(b))

	b = fullBrief()
	b.AIExtraction.Status = model.ExtractionProcessing
	assert.False(t, IsReadyForDeal(b))

	b = fullBrief()
	b.AIExtraction.MissingInfo = []model.MissingInfoItem{
		{Category: model.CategoryTimeline, Importance: model.ImportanceCritical},
	}
	assert.False(t, IsReadyForDeal(b))

	b = fullBrief()
	b.Status = model.BriefStatusNeedsClarification
	assert.False(t, IsReadyForDeal(b))
}
