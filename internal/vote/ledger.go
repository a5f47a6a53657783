// Package vote holds the tri-state vote resolution shared by every
// store adapter. The store is responsible for applying the outcome
// atomically; this package only decides what the outcome is.
package vote

import (
	"hivemind/internal/models"
	"hivemind/internal/utils"
)

// Outcome is the resolved effect of a vote request against the
// voter's existing ledger row.
type Outcome struct {
	Action models.VoteAction
	// Delta is the signed adjustment to the subject's upvotes counter.
	Delta int
	// Next is the vote type that should be stored, or nil when the
	// row must be deleted (toggle-off).
	Next *models.VoteType
}

// Resolve computes the ledger transition for a requested vote.
//
// No existing row: create the row, counter moves by the vote value.
// Same vote repeated: remove the row (toggle-off), counter moves back.
// Opposite vote: flip the row, counter moves by twice the new value.
func Resolve(existing *models.VoteType, requested models.VoteType) (Outcome, error) {
	if !requested.Valid() {
		return Outcome{}, utils.NewAppError(utils.ErrInvalidInput, "vote type must be 1 or -1", nil)
	}

	if existing == nil {
		next := requested
		return Outcome{
			Action: models.VoteCreated,
			Delta:  int(requested),
			Next:   &next,
		}, nil
	}

	if *existing == requested {
		return Outcome{
			Action: models.VoteRemoved,
			Delta:  -int(requested),
			Next:   nil,
		}, nil
	}

	next := requested
	return Outcome{
		Action: models.VoteUpdated,
		Delta:  int(requested) - int(*existing),
		Next:   &next,
	}, nil
}
