package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

type Checklist struct {
	ID        uuid.UUID `json:"id" db:"id"`
	IdeaID    uuid.UUID `json:"ideaId" db:"idea_id"`
	Title     string    `json:"title" db:"title"`
	CreatorID uuid.UUID `json:"creatorId" db:"creator_id"`
	IsShared  bool      `json:"isShared" db:"is_shared"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// ChecklistItem invariant: Completed is true exactly when CompletedBy
// and CompletedAt are both set.
type ChecklistItem struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	ChecklistID uuid.UUID  `json:"checklistId" db:"checklist_id"`
	Text        string     `json:"text" db:"item_text"`
	Position    int        `json:"position" db:"position"`
	CreatedBy   uuid.UUID  `json:"createdBy" db:"created_by"`
	Completed   bool       `json:"completed" db:"completed"`
	CompletedBy *uuid.UUID `json:"completedBy,omitempty" db:"completed_by"`
	CompletedAt *time.Time `json:"completedAt,omitempty" db:"completed_at"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
}

// ChecklistWithItems is the read shape for a checklist. Progress is
// derived from Items on every read and never stored.
type ChecklistWithItems struct {
	Checklist
	Items    []*ChecklistItem `json:"items"`
	Progress int              `json:"progress"`
}

// Progress returns the completion percentage of items, rounded
// half-up to the nearest integer. An empty list is 0 percent.
func Progress(items []*ChecklistItem) int {
	if len(items) == 0 {
		return 0
	}
	completed := 0
	for _, item := range items {
		if item.Completed {
			completed++
		}
	}
	return int(math.Round(100 * float64(completed) / float64(len(items))))
}
