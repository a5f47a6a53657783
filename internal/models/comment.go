package models

import (
	"time"

	"github.com/google/uuid"
)

// CommentSubjectType is the kind of resource a comment is attached to.
type CommentSubjectType string

const (
	PostComment           CommentSubjectType = "post"
	FeatureRequestComment CommentSubjectType = "feature_request"
)

type Comment struct {
	ID             uuid.UUID          `json:"id" db:"id"`
	Content        string             `json:"content" db:"content"`
	AuthorID       uuid.UUID          `json:"authorId" db:"author_id"`
	AuthorUsername string             `json:"authorUsername,omitempty" db:"author_username"`
	SubjectID      uuid.UUID          `json:"subjectId" db:"subject_id"`
	SubjectType    CommentSubjectType `json:"subjectType" db:"subject_type"`
	CreatedAt      time.Time          `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time          `json:"updatedAt" db:"updated_at"`
}
