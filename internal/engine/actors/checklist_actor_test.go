package actors

import (
	stdctx "context"
	"testing"

	"hivemind/internal/database"
	"hivemind/internal/models"
	"hivemind/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type checklistFixture struct {
	system       *actor.ActorSystem
	db           *database.MemoryDB
	pid          *actor.PID
	ideaCreator  *models.User
	assigned     *models.User
	collaborator *models.User
	stranger     *models.User
	idea         *models.Idea
}

func newChecklistFixture(t *testing.T, publicIdea bool) *checklistFixture {
	t.Helper()
	system := actor.NewActorSystem()
	db := database.NewMemoryDB()
	ctx := stdctx.Background()

	f := &checklistFixture{system: system, db: db}
	for name, dst := range map[string]**models.User{
		"creator": &f.ideaCreator, "assigned": &f.assigned,
		"collab": &f.collaborator, "stranger": &f.stranger,
	} {
		user := &models.User{ID: uuid.New(), Username: name, Email: name + "@example.com", HashedPassword: "x"}
		require.NoError(t, db.UpsertUser(ctx, user))
		*dst = user
	}

	f.idea = &models.Idea{
		ID:        uuid.New(),
		Title:     "project",
		CreatorID: f.ideaCreator.ID,
		IsPublic:  publicIdea,
		Status:    models.IdeaOpen,
	}
	require.NoError(t, db.SaveIdea(ctx, f.idea))
	require.NoError(t, db.AddMembership(ctx, &models.Membership{
		IdeaID: f.idea.ID, UserID: f.assigned.ID, Role: models.RoleAssigned,
	}))
	require.NoError(t, db.AddMembership(ctx, &models.Membership{
		IdeaID: f.idea.ID, UserID: f.collaborator.ID, Role: models.RoleCollaborator,
	}))

	f.pid = system.Root.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return NewChecklistActor(db, utils.NewMetricsCollector())
	}))
	return f
}

func (f *checklistFixture) ask(t *testing.T, msg interface{}) interface{} {
	t.Helper()
	result, err := f.system.Root.RequestFuture(f.pid, msg, askTimeout).Result()
	require.NoError(t, err)
	return result
}

func (f *checklistFixture) createChecklist(t *testing.T, shared bool) *models.ChecklistWithItems {
	t.Helper()
	result := f.ask(t, &CreateChecklistMsg{
		IdeaID:    f.idea.ID,
		Title:     "tasks",
		IsShared:  shared,
		CreatorID: f.ideaCreator.ID,
	})
	cl, ok := result.(*models.ChecklistWithItems)
	require.True(t, ok, "expected checklist, got %T", result)
	return cl
}

func TestChecklistSharedListPermissions(t *testing.T) {
	f := newChecklistFixture(t, false)
	cl := f.createChecklist(t, true)

	// Assigned member may add items to a shared checklist.
	result := f.ask(t, &AddChecklistItemMsg{ChecklistID: cl.ID, Text: "by assigned", UserID: f.assigned.ID})
	item, ok := result.(*models.ChecklistItem)
	require.True(t, ok, "expected item, got %T", result)
	assert.Equal(t, f.assigned.ID, item.CreatedBy)

	// Collaborator may not modify, even though the list is shared.
	result = f.ask(t, &AddChecklistItemMsg{ChecklistID: cl.ID, Text: "by collab", UserID: f.collaborator.ID})
	appErr, ok := result.(*utils.AppError)
	require.True(t, ok, "expected error, got %T", result)
	assert.Equal(t, utils.ErrForbidden, appErr.Code)

	// Stranger is denied too.
	result = f.ask(t, &AddChecklistItemMsg{ChecklistID: cl.ID, Text: "by stranger", UserID: f.stranger.ID})
	appErr, ok = result.(*utils.AppError)
	require.True(t, ok, "expected error, got %T", result)
	assert.Equal(t, utils.ErrForbidden, appErr.Code)
}

func TestChecklistUnsharedListPermissions(t *testing.T) {
	f := newChecklistFixture(t, false)
	cl := f.createChecklist(t, false)

	// Assigned member loses write access when the list is not shared.
	result := f.ask(t, &AddChecklistItemMsg{ChecklistID: cl.ID, Text: "x", UserID: f.assigned.ID})
	appErr, ok := result.(*utils.AppError)
	require.True(t, ok, "expected error, got %T", result)
	assert.Equal(t, utils.ErrForbidden, appErr.Code)

	// The idea creator always may.
	result = f.ask(t, &AddChecklistItemMsg{ChecklistID: cl.ID, Text: "x", UserID: f.ideaCreator.ID})
	_, ok = result.(*models.ChecklistItem)
	assert.True(t, ok, "expected item, got %T", result)
}

func TestChecklistToggleSetsCompletionAudit(t *testing.T) {
	f := newChecklistFixture(t, false)
	cl := f.createChecklist(t, true)

	item := f.ask(t, &AddChecklistItemMsg{ChecklistID: cl.ID, Text: "task", UserID: f.ideaCreator.ID}).(*models.ChecklistItem)

	result := f.ask(t, &ToggleChecklistItemMsg{ItemID: item.ID, UserID: f.assigned.ID, Completed: true})
	toggled, ok := result.(*models.ChecklistItem)
	require.True(t, ok, "expected item, got %T", result)
	assert.True(t, toggled.Completed)
	require.NotNil(t, toggled.CompletedBy)
	assert.Equal(t, f.assigned.ID, *toggled.CompletedBy)
	assert.NotNil(t, toggled.CompletedAt)

	// Untoggle clears both audit fields.
	result = f.ask(t, &ToggleChecklistItemMsg{ItemID: item.ID, UserID: f.assigned.ID, Completed: false})
	untoggled := result.(*models.ChecklistItem)
	assert.False(t, untoggled.Completed)
	assert.Nil(t, untoggled.CompletedBy)
	assert.Nil(t, untoggled.CompletedAt)
}

func TestChecklistItemDeletion(t *testing.T) {
	f := newChecklistFixture(t, false)
	cl := f.createChecklist(t, true)

	item := f.ask(t, &AddChecklistItemMsg{ChecklistID: cl.ID, Text: "mine", UserID: f.assigned.ID}).(*models.ChecklistItem)

	// Collaborator cannot delete someone else's item.
	result := f.ask(t, &DeleteChecklistItemMsg{ItemID: item.ID, UserID: f.collaborator.ID})
	appErr, ok := result.(*utils.AppError)
	require.True(t, ok, "expected error, got %T", result)
	assert.Equal(t, utils.ErrForbidden, appErr.Code)

	// The item's creator can.
	result = f.ask(t, &DeleteChecklistItemMsg{ItemID: item.ID, UserID: f.assigned.ID})
	status, ok := result.(*models.StatusResponse)
	require.True(t, ok, "expected status, got %T", result)
	assert.True(t, status.Success)
}

func TestChecklistReadRequiresIdeaVisibility(t *testing.T) {
	f := newChecklistFixture(t, false)
	cl := f.createChecklist(t, true)

	// Members can read checklists under a private idea.
	result := f.ask(t, &GetChecklistMsg{ChecklistID: cl.ID, UserID: f.collaborator.ID})
	_, ok := result.(*models.ChecklistWithItems)
	assert.True(t, ok, "expected checklist, got %T", result)

	// Strangers cannot.
	result = f.ask(t, &GetChecklistMsg{ChecklistID: cl.ID, UserID: f.stranger.ID})
	appErr, ok := result.(*utils.AppError)
	require.True(t, ok, "expected error, got %T", result)
	assert.Equal(t, utils.ErrForbidden, appErr.Code)

	// Missing checklist is not found, not forbidden.
	result = f.ask(t, &GetChecklistMsg{ChecklistID: uuid.New(), UserID: f.stranger.ID})
	appErr, ok = result.(*utils.AppError)
	require.True(t, ok, "expected error, got %T", result)
	assert.Equal(t, utils.ErrNotFound, appErr.Code)
}

func TestChecklistCreationRequiresStanding(t *testing.T) {
	f := newChecklistFixture(t, false)

	// Collaborators may not create checklists.
	result := f.ask(t, &CreateChecklistMsg{
		IdeaID: f.idea.ID, Title: "nope", CreatorID: f.collaborator.ID,
	})
	appErr, ok := result.(*utils.AppError)
	require.True(t, ok, "expected error, got %T", result)
	assert.Equal(t, utils.ErrForbidden, appErr.Code)

	// Assigned members may.
	result = f.ask(t, &CreateChecklistMsg{
		IdeaID: f.idea.ID, Title: "ok", IsShared: true, CreatorID: f.assigned.ID,
	})
	_, ok = result.(*models.ChecklistWithItems)
	assert.True(t, ok, "expected checklist, got %T", result)
}
