package policy

import (
	"testing"

	"hivemind/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func roleCtx(creatorID uuid.UUID, role models.MemberRole) IdeaContext {
	return IdeaContext{IdeaCreatorID: creatorID, Role: &role}
}

func TestCanReadIdea(t *testing.T) {
	creator := uuid.New()
	member := uuid.New()
	stranger := uuid.New()

	public := &models.Idea{CreatorID: creator, IsPublic: true}
	private := &models.Idea{CreatorID: creator, IsPublic: false}

	// Public ideas are readable by anyone, including anonymous.
	assert.True(t, CanReadIdea(uuid.Nil, public, IdeaContext{IdeaCreatorID: creator}))
	assert.True(t, CanReadIdea(stranger, public, IdeaContext{IdeaCreatorID: creator}))

	// Private ideas: creator and members only.
	assert.True(t, CanReadIdea(creator, private, IdeaContext{IdeaCreatorID: creator}))
	assert.True(t, CanReadIdea(member, private, roleCtx(creator, models.RoleCollaborator)))
	assert.True(t, CanReadIdea(member, private, roleCtx(creator, models.RoleAssigned)))
	assert.False(t, CanReadIdea(stranger, private, IdeaContext{IdeaCreatorID: creator}))
	assert.False(t, CanReadIdea(uuid.Nil, private, IdeaContext{IdeaCreatorID: creator}))
}

func TestCanModifyIdea(t *testing.T) {
	creator := uuid.New()
	member := uuid.New()

	idea := &models.Idea{CreatorID: creator, IsPublic: true}

	assert.True(t, CanModifyIdea(creator, idea))
	// Membership grants read, never write, on the idea itself.
	assert.False(t, CanModifyIdea(member, idea))
	assert.False(t, CanModifyIdea(uuid.Nil, idea))
}

func TestCanReadPost(t *testing.T) {
	creator := uuid.New()
	stranger := uuid.New()

	assert.True(t, CanReadPost(uuid.Nil, &models.Post{CreatorID: creator, IsPublic: true}))
	assert.True(t, CanReadPost(creator, &models.Post{CreatorID: creator, IsPublic: false}))
	assert.False(t, CanReadPost(stranger, &models.Post{CreatorID: creator, IsPublic: false}))
	assert.False(t, CanReadPost(uuid.Nil, &models.Post{CreatorID: creator, IsPublic: false}))
}

func TestCanModifyChecklist(t *testing.T) {
	ideaCreator := uuid.New()
	assigned := uuid.New()
	collaborator := uuid.New()
	stranger := uuid.New()

	shared := &models.Checklist{IsShared: true}
	personal := &models.Checklist{IsShared: false}

	// Idea creator may modify any checklist under the idea.
	assert.True(t, CanModifyChecklist(ideaCreator, shared, IdeaContext{IdeaCreatorID: ideaCreator}))
	assert.True(t, CanModifyChecklist(ideaCreator, personal, IdeaContext{IdeaCreatorID: ideaCreator}))

	// Assigned members may modify shared checklists only.
	assert.True(t, CanModifyChecklist(assigned, shared, roleCtx(ideaCreator, models.RoleAssigned)))
	assert.False(t, CanModifyChecklist(assigned, personal, roleCtx(ideaCreator, models.RoleAssigned)))

	// Collaborators get no checklist write access at all.
	assert.False(t, CanModifyChecklist(collaborator, shared, roleCtx(ideaCreator, models.RoleCollaborator)))
	assert.False(t, CanModifyChecklist(collaborator, personal, roleCtx(ideaCreator, models.RoleCollaborator)))

	// Non-members and anonymous actors are denied.
	assert.False(t, CanModifyChecklist(stranger, shared, IdeaContext{IdeaCreatorID: ideaCreator}))
	assert.False(t, CanModifyChecklist(uuid.Nil, shared, IdeaContext{IdeaCreatorID: ideaCreator}))
}

func TestCanDeleteChecklistItem(t *testing.T) {
	ideaCreator := uuid.New()
	itemAuthor := uuid.New()
	assigned := uuid.New()
	stranger := uuid.New()

	shared := &models.Checklist{IsShared: true}
	personal := &models.Checklist{IsShared: false}
	item := &models.ChecklistItem{CreatedBy: itemAuthor}

	// Idea creator override applies regardless of sharing.
	assert.True(t, CanDeleteChecklistItem(ideaCreator, personal, item, IdeaContext{IdeaCreatorID: ideaCreator}))

	// The item's own creator may delete it even on an unshared list.
	assert.True(t, CanDeleteChecklistItem(itemAuthor, personal, item, roleCtx(ideaCreator, models.RoleAssigned)))

	// Assigned members may delete others' items on shared lists only.
	assert.True(t, CanDeleteChecklistItem(assigned, shared, item, roleCtx(ideaCreator, models.RoleAssigned)))
	assert.False(t, CanDeleteChecklistItem(assigned, personal, item, roleCtx(ideaCreator, models.RoleAssigned)))

	assert.False(t, CanDeleteChecklistItem(stranger, shared, item, IdeaContext{IdeaCreatorID: ideaCreator}))
}

func TestCanDeleteComment(t *testing.T) {
	author := uuid.New()
	subjectOwner := uuid.New()
	stranger := uuid.New()

	comment := &models.Comment{AuthorID: author}

	assert.True(t, CanDeleteComment(author, comment, subjectOwner))
	assert.True(t, CanDeleteComment(subjectOwner, comment, subjectOwner))
	assert.False(t, CanDeleteComment(stranger, comment, subjectOwner))
	assert.False(t, CanDeleteComment(uuid.Nil, comment, subjectOwner))
}

func TestCanChangeFeatureStatus(t *testing.T) {
	owner := uuid.New()
	voter := uuid.New()

	fr := &models.FeatureRequest{CreatorID: owner}

	assert.True(t, CanChangeFeatureStatus(owner, fr))
	assert.False(t, CanChangeFeatureStatus(voter, fr))
	assert.False(t, CanChangeFeatureStatus(uuid.Nil, fr))
}
