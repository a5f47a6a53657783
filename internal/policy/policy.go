// Package policy centralizes every ownership/membership predicate the
// handlers rely on. Rules live here, in one diffable place per
// resource kind, instead of being re-derived inline per endpoint.
//
// Callers resolve existence first: these predicates are only evaluated
// against resources that were found. An actor of uuid.Nil means the
// caller is unauthenticated and is denied every operation that
// requires identity before ownership is even considered.
package policy

import (
	"hivemind/internal/models"

	"github.com/google/uuid"
)

// IdeaContext carries the membership facts needed to evaluate
// checklist and idea rules for one actor against one idea.
type IdeaContext struct {
	IdeaCreatorID uuid.UUID
	// Role is the actor's membership on the idea, nil when none.
	Role *models.MemberRole
}

// IsMember reports whether the actor has any membership on the idea.
func (c IdeaContext) IsMember() bool {
	return c.Role != nil
}

// IsAssigned reports whether the actor holds an assigned membership.
func (c IdeaContext) IsAssigned() bool {
	return c.Role != nil && *c.Role == models.RoleAssigned
}

// CanReadIdea: public ideas are visible to everyone, private ideas to
// the creator and to members (collaborator or assigned).
func CanReadIdea(actorID uuid.UUID, idea *models.Idea, ctx IdeaContext) bool {
	if idea.IsPublic {
		return true
	}
	if actorID == uuid.Nil {
		return false
	}
	return actorID == idea.CreatorID || ctx.IsMember()
}

// CanModifyIdea: field edits and deletes are creator-only. Membership
// grants no edit rights on the idea itself.
func CanModifyIdea(actorID uuid.UUID, idea *models.Idea) bool {
	if actorID == uuid.Nil {
		return false
	}
	return actorID == idea.CreatorID
}

// CanReadPost: visible when public or owned by the actor.
// Unauthenticated callers see public posts only.
func CanReadPost(actorID uuid.UUID, post *models.Post) bool {
	if post.IsPublic {
		return true
	}
	if actorID == uuid.Nil {
		return false
	}
	return actorID == post.CreatorID
}

// CanModifyPost: creator-only, same as deletes.
func CanModifyPost(actorID uuid.UUID, post *models.Post) bool {
	if actorID == uuid.Nil {
		return false
	}
	return actorID == post.CreatorID
}

// CanModifyChecklist: the idea's creator always may; an assigned
// member may only when the checklist is shared. The checklist's own
// creator gets no special standing here beyond their membership.
func CanModifyChecklist(actorID uuid.UUID, checklist *models.Checklist, ctx IdeaContext) bool {
	if actorID == uuid.Nil {
		return false
	}
	if actorID == ctx.IdeaCreatorID {
		return true
	}
	return ctx.IsAssigned() && checklist.IsShared
}

// CanDeleteChecklistItem: the idea creator override applies regardless
// of sharing; otherwise the item's own creator may delete it, and an
// actor with modify rights may delete items on shared checklists.
func CanDeleteChecklistItem(actorID uuid.UUID, checklist *models.Checklist, item *models.ChecklistItem, ctx IdeaContext) bool {
	if actorID == uuid.Nil {
		return false
	}
	if actorID == ctx.IdeaCreatorID {
		return true
	}
	if actorID == item.CreatedBy {
		return true
	}
	return CanModifyChecklist(actorID, checklist, ctx) && checklist.IsShared
}

// CanModifyComment: author-only edits.
func CanModifyComment(actorID uuid.UUID, comment *models.Comment) bool {
	if actorID == uuid.Nil {
		return false
	}
	return actorID == comment.AuthorID
}

// CanDeleteComment: the author, or the owner of the commented subject.
func CanDeleteComment(actorID uuid.UUID, comment *models.Comment, subjectOwnerID uuid.UUID) bool {
	if actorID == uuid.Nil {
		return false
	}
	return actorID == comment.AuthorID || actorID == subjectOwnerID
}

// CanChangeFeatureStatus: owner-only status transitions.
func CanChangeFeatureStatus(actorID uuid.UUID, fr *models.FeatureRequest) bool {
	if actorID == uuid.Nil {
		return false
	}
	return actorID == fr.CreatorID
}
