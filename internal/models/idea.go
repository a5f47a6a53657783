package models

import (
	"time"

	"github.com/google/uuid"
)

// IdeaStatus tracks where an idea is in its lifecycle.
type IdeaStatus string

const (
	IdeaOpen       IdeaStatus = "open"
	IdeaInProgress IdeaStatus = "in_progress"
	IdeaDone       IdeaStatus = "done"
	IdeaArchived   IdeaStatus = "archived"
)

type Idea struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	Title           string     `json:"title" db:"title"`
	Description     string     `json:"description" db:"description"`
	CreatorID       uuid.UUID  `json:"creatorId" db:"creator_id"`
	CreatorUsername string     `json:"creatorUsername,omitempty" db:"creator_username"`
	IsPublic        bool       `json:"isPublic" db:"is_public"`
	Status          IdeaStatus `json:"status" db:"status"`
	Upvotes         int        `json:"upvotes" db:"upvotes"`
	CreatedAt       time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time  `json:"updatedAt" db:"updated_at"`
	CurrentUserVote *int       `json:"currentUserVote,omitempty" db:"current_user_vote"`
}
