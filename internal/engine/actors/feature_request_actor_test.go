package actors

import (
	"testing"

	"hivemind/internal/database"
	"hivemind/internal/models"
	"hivemind/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spawnFeatureRequestActor(t *testing.T) (*actor.ActorSystem, *database.MemoryDB, *actor.PID) {
	t.Helper()
	system := actor.NewActorSystem()
	db := database.NewMemoryDB()
	pid := system.Root.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return NewFeatureRequestActor(db, utils.NewMetricsCollector(), nil)
	}))
	return system, db, pid
}

func TestFeatureRequestBoardIsPublic(t *testing.T) {
	system, db, pid := spawnFeatureRequestActor(t)
	owner := mustUser(t, db, "owner")

	created, err := system.Root.RequestFuture(pid, &CreateFeatureRequestMsg{
		Title: "dark mode", CreatorID: owner.ID,
	}, askTimeout).Result()
	require.NoError(t, err)
	fr := created.(*models.FeatureRequest)
	assert.Equal(t, models.FeatureOpen, fr.Status)

	// Anyone, even anonymous, can read the board.
	result, err := system.Root.RequestFuture(pid, &GetFeatureRequestMsg{
		FeatureRequestID: fr.ID, RequestingUserID: uuid.Nil,
	}, askTimeout).Result()
	require.NoError(t, err)
	_, ok := result.(*models.FeatureRequest)
	assert.True(t, ok, "expected feature request, got %T", result)

	result, err = system.Root.RequestFuture(pid, &ListFeatureRequestsMsg{RequestingUserID: uuid.Nil}, askTimeout).Result()
	require.NoError(t, err)
	list, ok := result.([]*models.FeatureRequest)
	require.True(t, ok, "expected list, got %T", result)
	assert.Len(t, list, 1)
}

func TestFeatureRequestStatusIsOwnerGated(t *testing.T) {
	system, db, pid := spawnFeatureRequestActor(t)
	owner := mustUser(t, db, "owner")
	voter := mustUser(t, db, "voter")

	created, err := system.Root.RequestFuture(pid, &CreateFeatureRequestMsg{
		Title: "export to csv", CreatorID: owner.ID,
	}, askTimeout).Result()
	require.NoError(t, err)
	fr := created.(*models.FeatureRequest)

	result, err := system.Root.RequestFuture(pid, &SetFeatureStatusMsg{
		FeatureRequestID: fr.ID, ActorID: voter.ID, Status: models.FeaturePlanned,
	}, askTimeout).Result()
	require.NoError(t, err)
	appErr, ok := result.(*utils.AppError)
	require.True(t, ok, "expected error, got %T", result)
	assert.Equal(t, utils.ErrForbidden, appErr.Code)

	result, err = system.Root.RequestFuture(pid, &SetFeatureStatusMsg{
		FeatureRequestID: fr.ID, ActorID: owner.ID, Status: models.FeaturePlanned,
	}, askTimeout).Result()
	require.NoError(t, err)
	updated, ok := result.(*models.FeatureRequest)
	require.True(t, ok, "expected feature request, got %T", result)
	assert.Equal(t, models.FeaturePlanned, updated.Status)

	// Unknown status values never reach the store.
	result, err = system.Root.RequestFuture(pid, &SetFeatureStatusMsg{
		FeatureRequestID: fr.ID, ActorID: owner.ID, Status: models.FeatureRequestStatus("someday"),
	}, askTimeout).Result()
	require.NoError(t, err)
	appErr, ok = result.(*utils.AppError)
	require.True(t, ok, "expected error, got %T", result)
	assert.Equal(t, utils.ErrInvalidInput, appErr.Code)
}

func TestFeatureRequestVoting(t *testing.T) {
	system, db, pid := spawnFeatureRequestActor(t)
	owner := mustUser(t, db, "owner")
	voter := mustUser(t, db, "voter")

	created, err := system.Root.RequestFuture(pid, &CreateFeatureRequestMsg{
		Title: "keyboard shortcuts", CreatorID: owner.ID,
	}, askTimeout).Result()
	require.NoError(t, err)
	fr := created.(*models.FeatureRequest)

	result, err := system.Root.RequestFuture(pid, &VoteFeatureRequestMsg{
		FeatureRequestID: fr.ID, UserID: voter.ID, VoteType: models.VoteUp,
	}, askTimeout).Result()
	require.NoError(t, err)
	vr, ok := result.(*models.VoteResult)
	require.True(t, ok, "expected vote result, got %T", result)
	assert.Equal(t, 1, vr.Upvotes)

	// Anonymous voting is refused even though reads are open.
	result, err = system.Root.RequestFuture(pid, &VoteFeatureRequestMsg{
		FeatureRequestID: fr.ID, UserID: uuid.Nil, VoteType: models.VoteUp,
	}, askTimeout).Result()
	require.NoError(t, err)
	appErr, ok := result.(*utils.AppError)
	require.True(t, ok, "expected error, got %T", result)
	assert.Equal(t, utils.ErrForbidden, appErr.Code)
}
