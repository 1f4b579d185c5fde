package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/collabops/brief-cli/internal/model"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to model.BriefStatus
		want     bool
	}{
		{model.BriefStatusDraft, model.BriefStatusAnalyzed, true},
		{model.BriefStatusDraft, model.BriefStatusReadyForDeal, true},
		{model.BriefStatusDraft, model.BriefStatusConverted, false},
		{model.BriefStatusAnalyzed, model.BriefStatusNeedsClarification, true},
		{model.BriefStatusAnalyzed, model.BriefStatusDraft, false},
		{model.BriefStatusNeedsClarification, model.BriefStatusReadyForDeal, true},
		{model.BriefStatusNeedsClarification, model.BriefStatusConverted, false},
		{model.BriefStatusReadyForDeal, model.BriefStatusConverted, true},
		// Answered clarifications can knock a ready brief back.
		{model.BriefStatusReadyForDeal, model.BriefStatusNeedsClarification, true},
		{model.BriefStatusConverted, model.BriefStatusArchived, true},
		{model.BriefStatusConverted, model.BriefStatusDraft, false},
		{model.BriefStatusArchived, model.BriefStatusReadyForDeal, true},
		{model.BriefStatusArchived, model.BriefStatusConverted, false},
		// No-op transitions are always fine.
		{model.BriefStatusConverted, model.BriefStatusConverted, true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestApply(t *testing.T) {
	b := &model.Brief{Status: model.BriefStatusDraft}
	assert.NoError(t, Apply(b, model.BriefStatusAnalyzed))
	assert.Equal(t, model.BriefStatusAnalyzed, b.Status)

	err := Apply(b, model.BriefStatusConverted)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, model.BriefStatusAnalyzed, b.Status)
}
