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

func spawnIdeaActor(t *testing.T) (*actor.ActorSystem, *database.MemoryDB, *actor.PID) {
	t.Helper()
	system := actor.NewActorSystem()
	db := database.NewMemoryDB()
	pid := system.Root.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return NewIdeaActor(db, utils.NewMetricsCollector(), nil)
	}))
	return system, db, pid
}

func mustUser(t *testing.T, db *database.MemoryDB, name string) *models.User {
	t.Helper()
	user := &models.User{ID: uuid.New(), Username: name, Email: name + "@example.com", HashedPassword: "x"}
	require.NoError(t, db.UpsertUser(stdctx.Background(), user))
	return user
}

func TestIdeaVisibility(t *testing.T) {
	system, db, pid := spawnIdeaActor(t)
	creator := mustUser(t, db, "creator")
	member := mustUser(t, db, "member")
	stranger := mustUser(t, db, "stranger")

	created, err := system.Root.RequestFuture(pid, &CreateIdeaMsg{
		Title: "private idea", CreatorID: creator.ID, IsPublic: false,
	}, askTimeout).Result()
	require.NoError(t, err)
	idea := created.(*models.Idea)

	require.NoError(t, db.AddMembership(stdctx.Background(), &models.Membership{
		IdeaID: idea.ID, UserID: member.ID, Role: models.RoleCollaborator,
	}))

	// Creator and member read it; stranger and anonymous are refused.
	for _, viewer := range []uuid.UUID{creator.ID, member.ID} {
		result, err := system.Root.RequestFuture(pid, &GetIdeaMsg{IdeaID: idea.ID, RequestingUserID: viewer}, askTimeout).Result()
		require.NoError(t, err)
		_, ok := result.(*models.Idea)
		assert.True(t, ok, "viewer %s should read the idea, got %T", viewer, result)
	}
	for _, viewer := range []uuid.UUID{stranger.ID, uuid.Nil} {
		result, err := system.Root.RequestFuture(pid, &GetIdeaMsg{IdeaID: idea.ID, RequestingUserID: viewer}, askTimeout).Result()
		require.NoError(t, err)
		appErr, ok := result.(*utils.AppError)
		require.True(t, ok, "expected error for viewer %s, got %T", viewer, result)
		assert.Equal(t, utils.ErrForbidden, appErr.Code)
	}

	// Unknown idea reports not found before any policy outcome.
	result, err := system.Root.RequestFuture(pid, &GetIdeaMsg{IdeaID: uuid.New(), RequestingUserID: stranger.ID}, askTimeout).Result()
	require.NoError(t, err)
	appErr := result.(*utils.AppError)
	assert.Equal(t, utils.ErrNotFound, appErr.Code)
}

func TestIdeaUpdateIsCreatorOnly(t *testing.T) {
	system, db, pid := spawnIdeaActor(t)
	creator := mustUser(t, db, "creator")
	member := mustUser(t, db, "member")

	created, err := system.Root.RequestFuture(pid, &CreateIdeaMsg{
		Title: "idea", CreatorID: creator.ID, IsPublic: true,
	}, askTimeout).Result()
	require.NoError(t, err)
	idea := created.(*models.Idea)

	require.NoError(t, db.AddMembership(stdctx.Background(), &models.Membership{
		IdeaID: idea.ID, UserID: member.ID, Role: models.RoleAssigned,
	}))

	newTitle := "renamed"
	result, err := system.Root.RequestFuture(pid, &UpdateIdeaMsg{
		IdeaID: idea.ID, ActorID: member.ID, Title: &newTitle,
	}, askTimeout).Result()
	require.NoError(t, err)
	appErr, ok := result.(*utils.AppError)
	require.True(t, ok, "expected error, got %T", result)
	assert.Equal(t, utils.ErrForbidden, appErr.Code)

	result, err = system.Root.RequestFuture(pid, &UpdateIdeaMsg{
		IdeaID: idea.ID, ActorID: creator.ID, Title: &newTitle,
	}, askTimeout).Result()
	require.NoError(t, err)
	updated, ok := result.(*models.Idea)
	require.True(t, ok, "expected idea, got %T", result)
	assert.Equal(t, "renamed", updated.Title)
}

func TestIdeaVoteToggleAndFlip(t *testing.T) {
	system, db, pid := spawnIdeaActor(t)
	creator := mustUser(t, db, "creator")
	voter := mustUser(t, db, "voter")

	created, err := system.Root.RequestFuture(pid, &CreateIdeaMsg{
		Title: "idea", CreatorID: creator.ID, IsPublic: true,
	}, askTimeout).Result()
	require.NoError(t, err)
	idea := created.(*models.Idea)

	vote := func(vt models.VoteType) *models.VoteResult {
		result, err := system.Root.RequestFuture(pid, &VoteIdeaMsg{
			IdeaID: idea.ID, UserID: voter.ID, VoteType: vt,
		}, askTimeout).Result()
		require.NoError(t, err)
		vr, ok := result.(*models.VoteResult)
		require.True(t, ok, "expected vote result, got %T", result)
		return vr
	}

	up := vote(models.VoteUp)
	assert.Equal(t, models.VoteCreated, up.Action)
	assert.Equal(t, 1, up.Upvotes)

	flipped := vote(models.VoteDown)
	assert.Equal(t, models.VoteUpdated, flipped.Action)
	assert.Equal(t, -1, flipped.Upvotes)

	removed := vote(models.VoteDown)
	assert.Equal(t, models.VoteRemoved, removed.Action)
	assert.Equal(t, 0, removed.Upvotes)

	// Invalid vote value is rejected.
	result, err := system.Root.RequestFuture(pid, &VoteIdeaMsg{
		IdeaID: idea.ID, UserID: voter.ID, VoteType: models.VoteType(3),
	}, askTimeout).Result()
	require.NoError(t, err)
	appErr, ok := result.(*utils.AppError)
	require.True(t, ok, "expected error, got %T", result)
	assert.Equal(t, utils.ErrInvalidInput, appErr.Code)
}

func TestAddCollaboratorIsCreatorOnly(t *testing.T) {
	system, db, pid := spawnIdeaActor(t)
	creator := mustUser(t, db, "creator")
	member := mustUser(t, db, "member")
	other := mustUser(t, db, "other")

	created, err := system.Root.RequestFuture(pid, &CreateIdeaMsg{
		Title: "idea", CreatorID: creator.ID, IsPublic: false,
	}, askTimeout).Result()
	require.NoError(t, err)
	idea := created.(*models.Idea)

	// Non-creator cannot grant membership.
	result, err := system.Root.RequestFuture(pid, &AddCollaboratorMsg{
		IdeaID: idea.ID, ActorID: member.ID, UserID: other.ID, Role: models.RoleCollaborator,
	}, askTimeout).Result()
	require.NoError(t, err)
	appErr, ok := result.(*utils.AppError)
	require.True(t, ok, "expected error, got %T", result)
	assert.Equal(t, utils.ErrForbidden, appErr.Code)

	// Creator can; the member can then read the private idea.
	result, err = system.Root.RequestFuture(pid, &AddCollaboratorMsg{
		IdeaID: idea.ID, ActorID: creator.ID, UserID: member.ID, Role: models.RoleAssigned,
	}, askTimeout).Result()
	require.NoError(t, err)
	membership, ok := result.(*models.Membership)
	require.True(t, ok, "expected membership, got %T", result)
	assert.Equal(t, models.RoleAssigned, membership.Role)

	result, err = system.Root.RequestFuture(pid, &GetIdeaMsg{IdeaID: idea.ID, RequestingUserID: member.ID}, askTimeout).Result()
	require.NoError(t, err)
	_, ok = result.(*models.Idea)
	assert.True(t, ok, "member should read the idea after being added, got %T", result)

	// Unknown users cannot be added.
	result, err = system.Root.RequestFuture(pid, &AddCollaboratorMsg{
		IdeaID: idea.ID, ActorID: creator.ID, UserID: uuid.New(), Role: models.RoleCollaborator,
	}, askTimeout).Result()
	require.NoError(t, err)
	appErr, ok = result.(*utils.AppError)
	require.True(t, ok, "expected error, got %T", result)
	assert.Equal(t, utils.ErrUserNotFound, appErr.Code)
}
