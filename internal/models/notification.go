package models

import (
	"time"

	"github.com/google/uuid"
)

type NotificationKind string

const (
	NotifyComment NotificationKind = "comment"
	NotifyVote    NotificationKind = "vote"
	NotifyMember  NotificationKind = "member_added"
)

// Notification is a fire-and-forget side effect of a mutation; a
// failed insert never rolls back the primary write.
type Notification struct {
	ID          uuid.UUID        `json:"id" db:"id"`
	RecipientID uuid.UUID        `json:"recipientId" db:"recipient_id"`
	ActorID     uuid.UUID        `json:"actorId" db:"actor_id"`
	Kind        NotificationKind `json:"kind" db:"kind"`
	SubjectID   uuid.UUID        `json:"subjectId" db:"subject_id"`
	Message     string           `json:"message" db:"message"`
	IsRead      bool             `json:"isRead" db:"is_read"`
	CreatedAt   time.Time        `json:"createdAt" db:"created_at"`
}
