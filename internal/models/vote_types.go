package models

import (
	"time"

	"github.com/google/uuid"
)

// VoteSubjectType represents the kind of resource being voted on.
type VoteSubjectType string

const (
	IdeaVote           VoteSubjectType = "idea"
	PostVote           VoteSubjectType = "post"
	FeatureRequestVote VoteSubjectType = "feature_request"
)

// VoteType is the signed vote value. Only +1 and -1 are valid on the
// wire; absence of a vote row means "no vote".
type VoteType int

const (
	VoteUp   VoteType = 1
	VoteDown VoteType = -1
)

// Valid reports whether t is one of the two accepted vote values.
func (t VoteType) Valid() bool {
	return t == VoteUp || t == VoteDown
}

// VoteAction describes what applying a vote did to the ledger.
type VoteAction string

const (
	VoteCreated VoteAction = "created"
	VoteUpdated VoteAction = "updated"
	VoteRemoved VoteAction = "removed"
)

// Vote is one ledger row. At most one row exists per
// (subject, subject type, voter).
type Vote struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	VoterID     uuid.UUID       `json:"voterId" db:"voter_id"`
	SubjectID   uuid.UUID       `json:"subjectId" db:"subject_id"`
	SubjectType VoteSubjectType `json:"subjectType" db:"subject_type"`
	VoteType    VoteType        `json:"voteType" db:"vote_type"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
}

// VoteResult is returned by the store after atomically applying a
// vote and its counter delta.
type VoteResult struct {
	Action  VoteAction `json:"action"`
	Upvotes int        `json:"upvotes"`
}
