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

// Message types for IdeaActor
type (
	CreateIdeaMsg struct {
		Title       string    `json:"title"`
		Description string    `json:"description"`
		CreatorID   uuid.UUID `json:"creatorId"`
		IsPublic    bool      `json:"isPublic"`
	}

	GetIdeaMsg struct {
		IdeaID           uuid.UUID `json:"ideaId"`
		RequestingUserID uuid.UUID `json:"requestingUserId,omitempty"`
	}

	ListIdeasMsg struct {
		ViewerID uuid.UUID `json:"viewerId,omitempty"`
		Limit    int       `json:"limit"`
		Offset   int       `json:"offset"`
	}

	UpdateIdeaMsg struct {
		IdeaID      uuid.UUID          `json:"ideaId"`
		ActorID     uuid.UUID          `json:"actorId"`
		Title       *string            `json:"title,omitempty"`
		Description *string            `json:"description,omitempty"`
		IsPublic    *bool              `json:"isPublic,omitempty"`
		Status      *models.IdeaStatus `json:"status,omitempty"`
	}

	DeleteIdeaMsg struct {
		IdeaID  uuid.UUID `json:"ideaId"`
		ActorID uuid.UUID `json:"actorId"`
	}

	AddCollaboratorMsg struct {
		IdeaID  uuid.UUID         `json:"ideaId"`
		ActorID uuid.UUID         `json:"actorId"`
		UserID  uuid.UUID         `json:"userId"`
		Role    models.MemberRole `json:"role"`
	}

	ListMembersMsg struct {
		IdeaID  uuid.UUID `json:"ideaId"`
		ActorID uuid.UUID `json:"actorId"`
	}

	VoteIdeaMsg struct {
		IdeaID   uuid.UUID       `json:"ideaId"`
		UserID   uuid.UUID       `json:"userId"`
		VoteType models.VoteType `json:"voteType"`
	}
)

// IdeaActor handles idea CRUD, memberships and idea votes.
type IdeaActor struct {
	db              database.DBAdapter
	metrics         *utils.MetricsCollector
	notificationPID *actor.PID
}

func NewIdeaActor(db database.DBAdapter, metrics *utils.MetricsCollector, notificationPID *actor.PID) actor.Actor {
	return &IdeaActor{db: db, metrics: metrics, notificationPID: notificationPID}
}

func (a *IdeaActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		log.Printf("IdeaActor started with PID: %v", context.Self())

	case *CreateIdeaMsg:
		a.handleCreateIdea(context, msg)
	case *GetIdeaMsg:
		a.handleGetIdea(context, msg)
	case *ListIdeasMsg:
		a.handleListIdeas(context, msg)
	case *UpdateIdeaMsg:
		a.handleUpdateIdea(context, msg)
	case *DeleteIdeaMsg:
		a.handleDeleteIdea(context, msg)
	case *AddCollaboratorMsg:
		a.handleAddCollaborator(context, msg)
	case *ListMembersMsg:
		a.handleListMembers(context, msg)
	case *VoteIdeaMsg:
		a.handleVoteIdea(context, msg)

	default:
		log.Printf("IdeaActor: Unknown message type %T", msg)
	}
}

// resolveIdeaContext loads the idea and the actor's membership on it.
// Existence is resolved here, before any policy evaluation, so a
// missing idea is always reported as not found rather than forbidden.
func resolveIdeaContext(ctx stdctx.Context, db database.DBAdapter, ideaID, actorID uuid.UUID) (*models.Idea, policy.IdeaContext, error) {
	idea, err := db.GetIdea(ctx, ideaID, actorID)
	if err != nil {
		return nil, policy.IdeaContext{}, err
	}

	ideaCtx := policy.IdeaContext{IdeaCreatorID: idea.CreatorID}
	if actorID != uuid.Nil {
		membership, err := db.GetMembership(ctx, ideaID, actorID)
		if err == nil {
			role := membership.Role
			ideaCtx.Role = &role
		} else if !utils.IsErrorCode(err, utils.ErrNotFound) {
			return nil, policy.IdeaContext{}, err
		}
	}
	return idea, ideaCtx, nil
}

func (a *IdeaActor) handleCreateIdea(context actor.Context, msg *CreateIdeaMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	if msg.Title == "" {
		context.Respond(utils.NewValidationError("title"))
		return
	}

	idea := &models.Idea{
		ID:          uuid.New(),
		Title:       msg.Title,
		Description: msg.Description,
		CreatorID:   msg.CreatorID,
		IsPublic:    msg.IsPublic,
		Status:      models.IdeaOpen,
	}

	if err := a.db.SaveIdea(ctx, idea); err != nil {
		context.Respond(err)
		return
	}

	a.metrics.AddOperationLatency("create_idea", time.Since(startTime))
	context.Respond(idea)
}

func (a *IdeaActor) handleGetIdea(context actor.Context, msg *GetIdeaMsg) {
	ctx := stdctx.Background()

	idea, ideaCtx, err := resolveIdeaContext(ctx, a.db, msg.IdeaID, msg.RequestingUserID)
	if err != nil {
		context.Respond(err)
		return
	}

	if !policy.CanReadIdea(msg.RequestingUserID, idea, ideaCtx) {
		context.Respond(utils.NewForbiddenError("idea is private"))
		return
	}

	context.Respond(idea)
}

func (a *IdeaActor) handleListIdeas(context actor.Context, msg *ListIdeasMsg) {
	ctx := stdctx.Background()

	limit := msg.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	ideas, err := a.db.ListIdeas(ctx, msg.ViewerID, limit, msg.Offset)
	if err != nil {
		context.Respond(err)
		return
	}
	context.Respond(ideas)
}

func (a *IdeaActor) handleUpdateIdea(context actor.Context, msg *UpdateIdeaMsg) {
	ctx := stdctx.Background()

	idea, _, err := resolveIdeaContext(ctx, a.db, msg.IdeaID, msg.ActorID)
	if err != nil {
		context.Respond(err)
		return
	}

	if !policy.CanModifyIdea(msg.ActorID, idea) {
		context.Respond(utils.NewForbiddenError("only the idea creator may modify it"))
		return
	}

	if msg.Title != nil {
		if *msg.Title == "" {
			context.Respond(utils.NewValidationError("title"))
			return
		}
		idea.Title = *msg.Title
	}
	if msg.Description != nil {
		idea.Description = *msg.Description
	}
	if msg.IsPublic != nil {
		idea.IsPublic = *msg.IsPublic
	}
	if msg.Status != nil {
		idea.Status = *msg.Status
	}

	if err := a.db.SaveIdea(ctx, idea); err != nil {
		context.Respond(err)
		return
	}
	context.Respond(idea)
}

func (a *IdeaActor) handleDeleteIdea(context actor.Context, msg *DeleteIdeaMsg) {
	ctx := stdctx.Background()

	idea, _, err := resolveIdeaContext(ctx, a.db, msg.IdeaID, msg.ActorID)
	if err != nil {
		context.Respond(err)
		return
	}

	if !policy.CanModifyIdea(msg.ActorID, idea) {
		context.Respond(utils.NewForbiddenError("only the idea creator may delete it"))
		return
	}

	if err := a.db.DeleteIdea(ctx, msg.IdeaID); err != nil {
		context.Respond(err)
		return
	}
	context.Respond(&models.StatusResponse{Success: true, Message: "idea deleted"})
}

func (a *IdeaActor) handleAddCollaborator(context actor.Context, msg *AddCollaboratorMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	idea, _, err := resolveIdeaContext(ctx, a.db, msg.IdeaID, msg.ActorID)
	if err != nil {
		context.Respond(err)
		return
	}

	// Membership grants are creator-only, same as idea edits.
	if !policy.CanModifyIdea(msg.ActorID, idea) {
		context.Respond(utils.NewForbiddenError("only the idea creator may add members"))
		return
	}

	if msg.Role != models.RoleCollaborator && msg.Role != models.RoleAssigned {
		context.Respond(utils.NewValidationError("role"))
		return
	}

	// The added user must exist.
	if _, err := a.db.GetUser(ctx, msg.UserID); err != nil {
		context.Respond(err)
		return
	}

	membership := &models.Membership{
		IdeaID: msg.IdeaID,
		UserID: msg.UserID,
		Role:   msg.Role,
	}
	if err := a.db.AddMembership(ctx, membership); err != nil {
		context.Respond(err)
		return
	}

	if a.notificationPID != nil && msg.UserID != msg.ActorID {
		context.Send(a.notificationPID, &PushNotificationMsg{
			RecipientID: msg.UserID,
			ActorID:     msg.ActorID,
			Kind:        models.NotifyMember,
			SubjectID:   msg.IdeaID,
			Message:     fmt.Sprintf("You were added to the idea %q", idea.Title),
		})
	}

	a.metrics.AddOperationLatency("add_collaborator", time.Since(startTime))
	context.Respond(membership)
}

func (a *IdeaActor) handleListMembers(context actor.Context, msg *ListMembersMsg) {
	ctx := stdctx.Background()

	idea, ideaCtx, err := resolveIdeaContext(ctx, a.db, msg.IdeaID, msg.ActorID)
	if err != nil {
		context.Respond(err)
		return
	}

	if !policy.CanReadIdea(msg.ActorID, idea, ideaCtx) {
		context.Respond(utils.NewForbiddenError("idea is private"))
		return
	}

	members, err := a.db.ListMembers(ctx, msg.IdeaID)
	if err != nil {
		context.Respond(err)
		return
	}
	context.Respond(members)
}

func (a *IdeaActor) handleVoteIdea(context actor.Context, msg *VoteIdeaMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	if msg.UserID == uuid.Nil {
		context.Respond(utils.NewForbiddenError("voting requires authentication"))
		return
	}

	idea, ideaCtx, err := resolveIdeaContext(ctx, a.db, msg.IdeaID, msg.UserID)
	if err != nil {
		context.Respond(err)
		return
	}

	// Voting requires read visibility.
	if !policy.CanReadIdea(msg.UserID, idea, ideaCtx) {
		context.Respond(utils.NewForbiddenError("idea is private"))
		return
	}

	result, err := a.db.ApplyVote(ctx, msg.UserID, msg.IdeaID, models.IdeaVote, msg.VoteType)
	if err != nil {
		context.Respond(err)
		return
	}

	if a.notificationPID != nil && result.Action == models.VoteCreated && idea.CreatorID != msg.UserID {
		context.Send(a.notificationPID, &PushNotificationMsg{
			RecipientID: idea.CreatorID,
			ActorID:     msg.UserID,
			Kind:        models.NotifyVote,
			SubjectID:   msg.IdeaID,
			Message:     fmt.Sprintf("Your idea %q received a vote", idea.Title),
		})
	}

	a.metrics.AddOperationLatency("vote_idea", time.Since(startTime))
	context.Respond(result)
}
