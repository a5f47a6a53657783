package models

import (
	"time"

	"github.com/google/uuid"
)

// MemberRole marks what a membership grants on the parent idea.
// Collaborators are read-eligible; assigned members may additionally
// modify shared checklists under the idea.
type MemberRole string

const (
	RoleCollaborator MemberRole = "collaborator"
	RoleAssigned     MemberRole = "assigned"
)

type Membership struct {
	IdeaID   uuid.UUID  `json:"ideaId" db:"idea_id"`
	UserID   uuid.UUID  `json:"userId" db:"user_id"`
	Role     MemberRole `json:"role" db:"role"`
	JoinedAt time.Time  `json:"joinedAt" db:"joined_at"`
}
