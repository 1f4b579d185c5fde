// Package lifecycle validates brief status transitions. Statuses mostly move
// forward; the two-way edge between needs_clarification and ready_for_deal
// exists because answered clarifications are re-scored.
package lifecycle

import (
	"github.com/rotisserie/eris"

	"github.com/collabops/brief-cli/internal/model"
)

// ErrInvalidTransition is returned for a status change the table forbids.
var ErrInvalidTransition = eris.New("lifecycle: invalid status transition")

var transitions = map[model.BriefStatus][]model.BriefStatus{
	model.BriefStatusDraft: {
		model.BriefStatusAnalyzed,
		model.BriefStatusNeedsClarification,
		model.BriefStatusReadyForDeal,
		model.BriefStatusArchived,
	},
	model.BriefStatusAnalyzed: {
		model.BriefStatusNeedsClarification,
		model.BriefStatusReadyForDeal,
		model.BriefStatusArchived,
	},
	model.BriefStatusNeedsClarification: {
		model.BriefStatusReadyForDeal,
		model.BriefStatusArchived,
	},
	model.BriefStatusReadyForDeal: {
		model.BriefStatusNeedsClarification,
		model.BriefStatusConverted,
		model.BriefStatusArchived,
	},
	model.BriefStatusConverted: {
		model.BriefStatusArchived,
	},
	model.BriefStatusArchived: {
		model.BriefStatusDraft,
		model.BriefStatusAnalyzed,
		model.BriefStatusNeedsClarification,
		model.BriefStatusReadyForDeal,
	},
}

// CanTransition reports whether a brief may move from one status to another.
// A no-op transition is always allowed.
func CanTransition(from, to model.BriefStatus) bool {
	if from == to {
		return true
	}
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Apply sets the brief's status after validating the transition.
func Apply(b *model.Brief, to model.BriefStatus) error {
	if !CanTransition(b.Status, to) {
		return eris.Wrapf(ErrInvalidTransition, "%s -> %s", b.Status, to)
	}
	b.Status = to
	return nil
}
