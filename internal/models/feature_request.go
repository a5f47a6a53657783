package models

import (
	"time"

	"github.com/google/uuid"
)

// FeatureRequestStatus transitions are owner-only: open -> planned ->
// done or declined.
type FeatureRequestStatus string

const (
	FeatureOpen     FeatureRequestStatus = "open"
	FeaturePlanned  FeatureRequestStatus = "planned"
	FeatureDone     FeatureRequestStatus = "done"
	FeatureDeclined FeatureRequestStatus = "declined"
)

type FeatureRequest struct {
	ID              uuid.UUID            `json:"id" db:"id"`
	Title           string               `json:"title" db:"title"`
	Description     string               `json:"description" db:"description"`
	CreatorID       uuid.UUID            `json:"creatorId" db:"creator_id"`
	CreatorUsername string               `json:"creatorUsername,omitempty" db:"creator_username"`
	Status          FeatureRequestStatus `json:"status" db:"status"`
	Upvotes         int                  `json:"upvotes" db:"upvotes"`
	CreatedAt       time.Time            `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time            `json:"updatedAt" db:"updated_at"`
	CurrentUserVote *int                 `json:"currentUserVote,omitempty" db:"current_user_vote"`
}

// ValidFeatureStatus reports whether s is a known status value.
func ValidFeatureStatus(s FeatureRequestStatus) bool {
	switch s {
	case FeatureOpen, FeaturePlanned, FeatureDone, FeatureDeclined:
		return true
	}
	return false
}
