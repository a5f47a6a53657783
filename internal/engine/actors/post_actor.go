package actors

import (
	stdctx "context"
	"fmt"
	"log"
	"time"

	"hivemind/internal/database"
	"hivemind/internal/models"
	"hivemind/internal/policy"
	"hivemind/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// Message types for PostActor
type (
	CreatePostMsg struct {
		Title     string    `json:"title"`
		Content   string    `json:"content"`
		CreatorID uuid.UUID `json:"creatorId"`
		IsPublic  bool      `json:"isPublic"`
	}

	GetPostMsg struct {
		PostID           uuid.UUID `json:"postId"`
		RequestingUserID uuid.UUID `json:"requestingUserId,omitempty"`
	}

	GetRecentPostsMsg struct {
		ViewerID uuid.UUID `json:"viewerId,omitempty"`
		Limit    int       `json:"limit"`
		Offset   int       `json:"offset"`
	}

	UpdatePostMsg struct {
		PostID   uuid.UUID `json:"postId"`
		ActorID  uuid.UUID `json:"actorId"`
		Title    *string   `json:"title,omitempty"`
		Content  *string   `json:"content,omitempty"`
		IsPublic *bool     `json:"isPublic,omitempty"`
	}

	DeletePostMsg struct {
		PostID  uuid.UUID `json:"postId"`
		ActorID uuid.UUID `json:"actorId"`
	}

	VotePostMsg struct {
		PostID   uuid.UUID       `json:"postId"`
		UserID   uuid.UUID       `json:"userId"`
		VoteType models.VoteType `json:"voteType"`
	}
)

// PostActor handles post CRUD and post votes.
type PostActor struct {
	db              database.DBAdapter
	metrics         *utils.MetricsCollector
	notificationPID *actor.PID
}

func NewPostActor(db database.DBAdapter, metrics *utils.MetricsCollector, notificationPID *actor.PID) actor.Actor {
	return &PostActor{db: db, metrics: metrics, notificationPID: notificationPID}
}

func (a *PostActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		log.Printf("PostActor started with PID: %v", context.Self())

	case *CreatePostMsg:
		a.handleCreatePost(context, msg)
	case *GetPostMsg:
		a.handleGetPost(context, msg)
	case *GetRecentPostsMsg:
		a.handleGetRecentPosts(context, msg)
	case *UpdatePostMsg:
		a.handleUpdatePost(context, msg)
	case *DeletePostMsg:
		a.handleDeletePost(context, msg)
	case *VotePostMsg:
		a.handleVotePost(context, msg)

	default:
		log.Printf("PostActor: Unknown message type %T", msg)
	}
}

func (a *PostActor) handleCreatePost(context actor.Context, msg *CreatePostMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	if msg.Title == "" {
		context.Respond(utils.NewValidationError("title"))
		return
	}

	post := &models.Post{
		ID:        uuid.New(),
		Title:     msg.Title,
		Content:   msg.Content,
		CreatorID: msg.CreatorID,
		IsPublic:  msg.IsPublic,
	}

	if err := a.db.SavePost(ctx, post); err != nil {
		context.Respond(err)
		return
	}

	a.metrics.AddOperationLatency("create_post", time.Since(startTime))
	context.Respond(post)
}

func (a *PostActor) handleGetPost(context actor.Context, msg *GetPostMsg) {
	ctx := stdctx.Background()

	post, err := a.db.GetPost(ctx, msg.PostID, msg.RequestingUserID)
	if err != nil {
		context.Respond(err)
		return
	}

	if !policy.CanReadPost(msg.RequestingUserID, post) {
		context.Respond(utils.NewForbiddenError("post is private"))
		return
	}

	context.Respond(post)
}

func (a *PostActor) handleGetRecentPosts(context actor.Context, msg *GetRecentPostsMsg) {
	ctx := stdctx.Background()

	limit := msg.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	posts, err := a.db.GetRecentPosts(ctx, msg.ViewerID, limit, msg.Offset)
	if err != nil {
		context.Respond(err)
		return
	}
	context.Respond(posts)
}

func (a *PostActor) handleUpdatePost(context actor.Context, msg *UpdatePostMsg) {
	ctx := stdctx.Background()

	post, err := a.db.GetPost(ctx, msg.PostID, msg.ActorID)
	if err != nil {
		context.Respond(err)
		return
	}

	if !policy.CanModifyPost(msg.ActorID, post) {
		context.Respond(utils.NewForbiddenError("only the post creator may modify it"))
		return
	}

	if msg.Title != nil {
		if *msg.Title == "" {
			context.Respond(utils.NewValidationError("title"))
			return
		}
		post.Title = *msg.Title
	}
	if msg.Content != nil {
		post.Content = *msg.Content
	}
	if msg.IsPublic != nil {
		post.IsPublic = *msg.IsPublic
	}

	if err := a.db.SavePost(ctx, post); err != nil {
		context.Respond(err)
		return
	}
	context.Respond(post)
}

func (a *PostActor) handleDeletePost(context actor.Context, msg *DeletePostMsg) {
	ctx := stdctx.Background()

	post, err := a.db.GetPost(ctx, msg.PostID, msg.ActorID)
	if err != nil {
		context.Respond(err)
		return
	}

	if !policy.CanModifyPost(msg.ActorID, post) {
		context.Respond(utils.NewForbiddenError("only the post creator may delete it"))
		return
	}

	if err := a.db.DeletePost(ctx, msg.PostID); err != nil {
		context.Respond(err)
		return
	}
	context.Respond(&models.StatusResponse{Success: true, Message: "post deleted"})
}

func (a *PostActor) handleVotePost(context actor.Context, msg *VotePostMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	if msg.UserID == uuid.Nil {
		context.Respond(utils.NewForbiddenError("voting requires authentication"))
		return
	}

	post, err := a.db.GetPost(ctx, msg.PostID, msg.UserID)
	if err != nil {
		context.Respond(err)
		return
	}

	if !policy.CanReadPost(msg.UserID, post) {
		context.Respond(utils.NewForbiddenError("post is private"))
		return
	}

	result, err := a.db.ApplyVote(ctx, msg.UserID, msg.PostID, models.PostVote, msg.VoteType)
	if err != nil {
		context.Respond(err)
		return
	}

	if a.notificationPID != nil && result.Action == models.VoteCreated && post.CreatorID != msg.UserID {
		context.Send(a.notificationPID, &PushNotificationMsg{
			RecipientID: post.CreatorID,
			ActorID:     msg.UserID,
			Kind:        models.NotifyVote,
			SubjectID:   msg.PostID,
			Message:     fmt.Sprintf("Your post %q received a vote", post.Title),
		})
	}

	a.metrics.AddOperationLatency("vote_post", time.Since(startTime))
	context.Respond(result)
}
