package database

import (
	"context"
	"testing"

	"hivemind/internal/models"
	"hivemind/internal/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, db *MemoryDB, name string) *models.User {
	t.Helper()
	user := &models.User{
		ID:             uuid.New(),
		Username:       name,
		Email:          name + "@example.com",
		HashedPassword: "x",
	}
	require.NoError(t, db.UpsertUser(context.Background(), user))
	return user
}

func seedIdea(t *testing.T, db *MemoryDB, creator *models.User, public bool) *models.Idea {
	t.Helper()
	idea := &models.Idea{
		ID:        uuid.New(),
		Title:     "test idea",
		CreatorID: creator.ID,
		IsPublic:  public,
		Status:    models.IdeaOpen,
	}
	require.NoError(t, db.SaveIdea(context.Background(), idea))
	return idea
}

func TestUpsertUserIsIdempotent(t *testing.T) {
	db := NewMemoryDB()
	ctx := context.Background()

	user := seedUser(t, db, "alice")

	// Same ID again: no error, original row preserved.
	again := &models.User{ID: user.ID, Username: "alice2", Email: "alice2@example.com"}
	require.NoError(t, db.UpsertUser(ctx, again))

	stored, err := db.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", stored.Username)

	// Different ID, same email: conflict.
	dup := &models.User{ID: uuid.New(), Username: "other", Email: user.Email}
	err = db.UpsertUser(ctx, dup)
	assert.True(t, utils.IsErrorCode(err, utils.ErrUserAlreadyExists))
}

// Five upvotes, one more from a sixth user, then that user toggles
// off: 5 -> 6 -> 5.
func TestApplyVoteCounterRoundTrip(t *testing.T) {
	db := NewMemoryDB()
	ctx := context.Background()

	creator := seedUser(t, db, "creator")
	idea := seedIdea(t, db, creator, true)

	for i := 0; i < 5; i++ {
		voter := seedUser(t, db, uuid.NewString()[:8])
		result, err := db.ApplyVote(ctx, voter.ID, idea.ID, models.IdeaVote, models.VoteUp)
		require.NoError(t, err)
		assert.Equal(t, i+1, result.Upvotes)
	}

	sixth := seedUser(t, db, "sixth")
	result, err := db.ApplyVote(ctx, sixth.ID, idea.ID, models.IdeaVote, models.VoteUp)
	require.NoError(t, err)
	assert.Equal(t, models.VoteCreated, result.Action)
	assert.Equal(t, 6, result.Upvotes)

	result, err = db.ApplyVote(ctx, sixth.ID, idea.ID, models.IdeaVote, models.VoteUp)
	require.NoError(t, err)
	assert.Equal(t, models.VoteRemoved, result.Action)
	assert.Equal(t, 5, result.Upvotes)

	// The sixth user's ledger row is gone.
	_, err = db.GetVote(ctx, sixth.ID, idea.ID, models.IdeaVote)
	assert.True(t, utils.IsErrorCode(err, utils.ErrNotFound))
}

func TestApplyVoteFlip(t *testing.T) {
	db := NewMemoryDB()
	ctx := context.Background()

	creator := seedUser(t, db, "creator")
	voter := seedUser(t, db, "voter")
	idea := seedIdea(t, db, creator, true)

	result, err := db.ApplyVote(ctx, voter.ID, idea.ID, models.IdeaVote, models.VoteUp)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Upvotes)

	result, err = db.ApplyVote(ctx, voter.ID, idea.ID, models.IdeaVote, models.VoteDown)
	require.NoError(t, err)
	assert.Equal(t, models.VoteUpdated, result.Action)
	assert.Equal(t, -1, result.Upvotes)

	stored, err := db.GetVote(ctx, voter.ID, idea.ID, models.IdeaVote)
	require.NoError(t, err)
	assert.Equal(t, models.VoteDown, stored.VoteType)
}

func TestApplyVoteUnknownSubject(t *testing.T) {
	db := NewMemoryDB()
	voter := seedUser(t, db, "voter")

	_, err := db.ApplyVote(context.Background(), voter.ID, uuid.New(), models.PostVote, models.VoteUp)
	assert.True(t, utils.IsErrorCode(err, utils.ErrNotFound))
}

func TestChecklistItemPositions(t *testing.T) {
	db := NewMemoryDB()
	ctx := context.Background()

	creator := seedUser(t, db, "creator")
	idea := seedIdea(t, db, creator, false)

	cl := &models.Checklist{ID: uuid.New(), IdeaID: idea.ID, Title: "tasks", CreatorID: creator.ID}
	require.NoError(t, db.SaveChecklist(ctx, cl))

	for i := 1; i <= 3; i++ {
		item := &models.ChecklistItem{ID: uuid.New(), ChecklistID: cl.ID, Text: "t", CreatedBy: creator.ID}
		require.NoError(t, db.AddChecklistItem(ctx, item))
		assert.Equal(t, i, item.Position)
	}

	// Deleting the middle item does not renumber; the next append
	// still lands after the current maximum.
	withItems, err := db.GetChecklist(ctx, cl.ID)
	require.NoError(t, err)
	require.Len(t, withItems.Items, 3)
	require.NoError(t, db.DeleteChecklistItem(ctx, withItems.Items[1].ID))

	next := &models.ChecklistItem{ID: uuid.New(), ChecklistID: cl.ID, Text: "t", CreatedBy: creator.ID}
	require.NoError(t, db.AddChecklistItem(ctx, next))
	assert.Equal(t, 4, next.Position)
}

func TestSetItemCompletionPairsFields(t *testing.T) {
	db := NewMemoryDB()
	ctx := context.Background()

	creator := seedUser(t, db, "creator")
	idea := seedIdea(t, db, creator, false)
	cl := &models.Checklist{ID: uuid.New(), IdeaID: idea.ID, Title: "tasks", CreatorID: creator.ID}
	require.NoError(t, db.SaveChecklist(ctx, cl))

	item := &models.ChecklistItem{ID: uuid.New(), ChecklistID: cl.ID, Text: "t", CreatedBy: creator.ID}
	require.NoError(t, db.AddChecklistItem(ctx, item))

	done, err := db.SetItemCompletion(ctx, item.ID, creator.ID, true)
	require.NoError(t, err)
	assert.True(t, done.Completed)
	require.NotNil(t, done.CompletedBy)
	assert.Equal(t, creator.ID, *done.CompletedBy)
	assert.NotNil(t, done.CompletedAt)

	undone, err := db.SetItemCompletion(ctx, item.ID, creator.ID, false)
	require.NoError(t, err)
	assert.False(t, undone.Completed)
	assert.Nil(t, undone.CompletedBy)
	assert.Nil(t, undone.CompletedAt)
}

func TestChecklistProgressIsDerived(t *testing.T) {
	db := NewMemoryDB()
	ctx := context.Background()

	creator := seedUser(t, db, "creator")
	idea := seedIdea(t, db, creator, false)
	cl := &models.Checklist{ID: uuid.New(), IdeaID: idea.ID, Title: "tasks", CreatorID: creator.ID}
	require.NoError(t, db.SaveChecklist(ctx, cl))

	items := make([]*models.ChecklistItem, 3)
	for i := range items {
		items[i] = &models.ChecklistItem{ID: uuid.New(), ChecklistID: cl.ID, Text: "t", CreatedBy: creator.ID}
		require.NoError(t, db.AddChecklistItem(ctx, items[i]))
	}

	_, err := db.SetItemCompletion(ctx, items[0].ID, creator.ID, true)
	require.NoError(t, err)

	withItems, err := db.GetChecklist(ctx, cl.ID)
	require.NoError(t, err)
	assert.Equal(t, 33, withItems.Progress)

	_, err = db.SetItemCompletion(ctx, items[1].ID, creator.ID, true)
	require.NoError(t, err)

	withItems, err = db.GetChecklist(ctx, cl.ID)
	require.NoError(t, err)
	assert.Equal(t, 67, withItems.Progress)
}

func TestCommentCountTracksPostComments(t *testing.T) {
	db := NewMemoryDB()
	ctx := context.Background()

	author := seedUser(t, db, "author")
	post := &models.Post{ID: uuid.New(), Title: "p", CreatorID: author.ID, IsPublic: true}
	require.NoError(t, db.SavePost(ctx, post))

	comment := &models.Comment{
		ID:          uuid.New(),
		Content:     "hi",
		AuthorID:    author.ID,
		SubjectID:   post.ID,
		SubjectType: models.PostComment,
	}
	require.NoError(t, db.SaveComment(ctx, comment))

	stored, err := db.GetPost(ctx, post.ID, uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.CommentCount)

	// Editing the comment does not bump the counter again.
	comment.Content = "edited"
	require.NoError(t, db.SaveComment(ctx, comment))
	stored, err = db.GetPost(ctx, post.ID, uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.CommentCount)

	require.NoError(t, db.DeleteComment(ctx, comment.ID))
	stored, err = db.GetPost(ctx, post.ID, uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.CommentCount)
}

func TestListIdeasVisibility(t *testing.T) {
	db := NewMemoryDB()
	ctx := context.Background()

	owner := seedUser(t, db, "owner")
	member := seedUser(t, db, "member")
	stranger := seedUser(t, db, "stranger")

	public := seedIdea(t, db, owner, true)
	private := seedIdea(t, db, owner, false)

	require.NoError(t, db.AddMembership(ctx, &models.Membership{
		IdeaID: private.ID, UserID: member.ID, Role: models.RoleCollaborator,
	}))

	strangerView, err := db.ListIdeas(ctx, stranger.ID, 50, 0)
	require.NoError(t, err)
	require.Len(t, strangerView, 1)
	assert.Equal(t, public.ID, strangerView[0].ID)

	memberView, err := db.ListIdeas(ctx, member.ID, 50, 0)
	require.NoError(t, err)
	assert.Len(t, memberView, 2)

	anonView, err := db.ListIdeas(ctx, uuid.Nil, 50, 0)
	require.NoError(t, err)
	assert.Len(t, anonView, 1)
}
