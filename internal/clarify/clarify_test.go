package clarify

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collabops/brief-cli/internal/model"
)

func TestBuildQuestions_PerEntryPlusStandards(t *testing.T) {
	missing := []model.MissingInfoItem{
		{Category: model.CategoryBudget, Importance: model.ImportanceCritical},
		{Category: model.CategoryUsageRights, Importance: model.ImportanceImportant},
		{Category: model.CategoryTimeline, Importance: model.ImportanceCritical},
	}

	questions := BuildQuestions(missing)
	require.Len(t, questions, 5)

	assert.Equal(t, model.CategoryBudget, questions[0].Category)
	assert.Equal(t, "high", questions[0].Priority)
	assert.Equal(t, questionTemplates[model.CategoryBudget], questions[0].Question)

	assert.Equal(t, model.CategoryUsageRights, questions[1].Category)
	assert.Equal(t, "medium", questions[1].Priority)

	assert.Equal(t, model.CategoryTimeline, questions[2].Category)
	assert.Equal(t, "high", questions[2].Priority)

	assert.Equal(t, standardRevisionQuestion, questions[3].Question)
	assert.Equal(t, standardExclusivityQuestion, questions[4].Question)

	for _, q := range questions {
		assert.NotEmpty(t, q.ID)
		assert.False(t, q.IsAnswered)
	}
}

func TestBuildQuestions_EmptyMissingStillAsksStandards(t *testing.T) {
	questions := BuildQuestions(nil)
	require.Len(t, questions, 2)
	assert.Equal(t, standardRevisionQuestion, questions[0].Question)
	assert.Equal(t, standardExclusivityQuestion, questions[1].Question)
}

func TestBuildEmail(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	b := &model.Brief{
		CreatorID: "creator-1",
		AIExtraction: model.AIExtraction{
			Status:    model.ExtractionCompleted,
			BrandInfo: model.BrandInfo{Name: "GlowCo"},
			Budget:    model.Budget{Currency: "INR"},
			Deliverables: []model.Deliverable{
				{Type: "instagram_reel", Quantity: 1, EstimatedValue: 125000},
			},
		},
	}
	b.Clarifications.SuggestedQuestions = BuildQuestions([]model.MissingInfoItem{
		{Category: model.CategoryBudget, Importance: model.ImportanceCritical},
	})

	email := BuildEmail(b, "Asha", now)
	require.NotNil(t, email)

	assert.Equal(t, "Collaboration Clarifications - GlowCo", email.Subject)
	assert.Equal(t, now, email.GeneratedAt)
	assert.Contains(t, email.Body, "Hi GlowCo team,")
	assert.Contains(t, email.Body, "1. "+questionTemplates[model.CategoryBudget])
	assert.Contains(t, email.Body, "3. "+standardExclusivityQuestion)
	assert.Contains(t, email.Body, "INR 125,000")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(email.Body), "Asha"))

	// The rendered email is persisted on the brief.
	assert.Equal(t, email, b.Clarifications.Email)
}

func TestBuildEmail_NoOpenQuestions(t *testing.T) {
	now := time.Now().UTC()

	b := &model.Brief{CreatorID: "creator-1"}
	assert.Nil(t, BuildEmail(b, "Asha", now))

	b.Clarifications.SuggestedQuestions = []model.ClarificationQuestion{
		{ID: "q1", Question: "answered already", IsAnswered: true},
	}
	assert.Nil(t, BuildEmail(b, "Asha", now))
	assert.Nil(t, b.Clarifications.Email)
}

func TestBuildEmail_Defaults(t *testing.T) {
	b := &model.Brief{CreatorID: "creator-7"}
	b.Clarifications.SuggestedQuestions = BuildQuestions(nil)

	email := BuildEmail(b, "", time.Now().UTC())
	require.NotNil(t, email)
	assert.Equal(t, "Collaboration Clarifications - Brand", email.Subject)
	assert.Contains(t, email.Body, "creator-7")
}
