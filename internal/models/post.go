package models

import (
	"time"

	"github.com/google/uuid"
)

type Post struct {
	ID              uuid.UUID `json:"id" db:"id"`
	Title           string    `json:"title" db:"title"`
	Content         string    `json:"content" db:"content"`
	CreatorID       uuid.UUID `json:"creatorId" db:"creator_id"`
	CreatorUsername string    `json:"creatorUsername,omitempty" db:"creator_username"`
	IsPublic        bool      `json:"isPublic" db:"is_public"`
	Upvotes         int       `json:"upvotes" db:"upvotes"`
	CommentCount    int       `json:"commentCount" db:"comment_count"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
	CurrentUserVote *int      `json:"currentUserVote,omitempty" db:"current_user_vote"`
}
