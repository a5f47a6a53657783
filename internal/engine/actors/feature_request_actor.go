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

// Message types for FeatureRequestActor
type (
	CreateFeatureRequestMsg struct {
		Title       string    `json:"title"`
		Description string    `json:"description"`
		CreatorID   uuid.UUID `json:"creatorId"`
	}

	GetFeatureRequestMsg struct {
		FeatureRequestID uuid.UUID `json:"featureRequestId"`
		RequestingUserID uuid.UUID `json:"requestingUserId,omitempty"`
	}

	ListFeatureRequestsMsg struct {
		RequestingUserID uuid.UUID `json:"requestingUserId,omitempty"`
		Limit            int       `json:"limit"`
		Offset           int       `json:"offset"`
	}

	VoteFeatureRequestMsg struct {
		FeatureRequestID uuid.UUID       `json:"featureRequestId"`
		UserID           uuid.UUID       `json:"userId"`
		VoteType         models.VoteType `json:"voteType"`
	}

	SetFeatureStatusMsg struct {
		FeatureRequestID uuid.UUID                   `json:"featureRequestId"`
		ActorID          uuid.UUID                   `json:"actorId"`
		Status           models.FeatureRequestStatus `json:"status"`
	}
)

// FeatureRequestActor handles the shared feature request board. The
// board is visible to every user; only status changes are owner-gated.
type FeatureRequestActor struct {
	db              database.DBAdapter
	metrics         *utils.MetricsCollector
	notificationPID *actor.PID
}

func NewFeatureRequestActor(db database.DBAdapter, metrics *utils.MetricsCollector, notificationPID *actor.PID) actor.Actor {
	return &FeatureRequestActor{db: db, metrics: metrics, notificationPID: notificationPID}
}

func (a *FeatureRequestActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		log.Printf("FeatureRequestActor started with PID: %v", context.Self())

	case *CreateFeatureRequestMsg:
		a.handleCreate(context, msg)
	case *GetFeatureRequestMsg:
		a.handleGet(context, msg)
	case *ListFeatureRequestsMsg:
		a.handleList(context, msg)
	case *VoteFeatureRequestMsg:
		a.handleVote(context, msg)
	case *SetFeatureStatusMsg:
		a.handleSetStatus(context, msg)

	default:
		log.Printf("FeatureRequestActor: Unknown message type %T", msg)
	}
}

func (a *FeatureRequestActor) handleCreate(context actor.Context, msg *CreateFeatureRequestMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	if msg.Title == "" {
		context.Respond(utils.NewValidationError("title"))
		return
	}

	fr := &models.FeatureRequest{
		ID:          uuid.New(),
		Title:       msg.Title,
		Description: msg.Description,
		CreatorID:   msg.CreatorID,
		Status:      models.FeatureOpen,
	}
	if err := a.db.SaveFeatureRequest(ctx, fr); err != nil {
		context.Respond(err)
		return
	}

	a.metrics.AddOperationLatency("create_feature_request", time.Since(startTime))
	context.Respond(fr)
}

func (a *FeatureRequestActor) handleGet(context actor.Context, msg *GetFeatureRequestMsg) {
	ctx := stdctx.Background()

	fr, err := a.db.GetFeatureRequest(ctx, msg.FeatureRequestID, msg.RequestingUserID)
	if err != nil {
		context.Respond(err)
		return
	}
	context.Respond(fr)
}

func (a *FeatureRequestActor) handleList(context actor.Context, msg *ListFeatureRequestsMsg) {
	ctx := stdctx.Background()

	limit := msg.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	frs, err := a.db.ListFeatureRequests(ctx, msg.RequestingUserID, limit, msg.Offset)
	if err != nil {
		context.Respond(err)
		return
	}
	context.Respond(frs)
}

func (a *FeatureRequestActor) handleVote(context actor.Context, msg *VoteFeatureRequestMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	if msg.UserID == uuid.Nil {
		context.Respond(utils.NewForbiddenError("voting requires authentication"))
		return
	}

	fr, err := a.db.GetFeatureRequest(ctx, msg.FeatureRequestID, msg.UserID)
	if err != nil {
		context.Respond(err)
		return
	}

	result, err := a.db.ApplyVote(ctx, msg.UserID, msg.FeatureRequestID, models.FeatureRequestVote, msg.VoteType)
	if err != nil {
		context.Respond(err)
		return
	}

	if a.notificationPID != nil && result.Action == models.VoteCreated && fr.CreatorID != msg.UserID {
		context.Send(a.notificationPID, &PushNotificationMsg{
			RecipientID: fr.CreatorID,
			ActorID:     msg.UserID,
			Kind:        models.NotifyVote,
			SubjectID:   msg.FeatureRequestID,
			Message:     fmt.Sprintf("Your feature request %q received a vote", fr.Title),
		})
	}

	a.metrics.AddOperationLatency("vote_feature_request", time.Since(startTime))
	context.Respond(result)
}

func (a *FeatureRequestActor) handleSetStatus(context actor.Context, msg *SetFeatureStatusMsg) {
	ctx := stdctx.Background()

	if !models.ValidFeatureStatus(msg.Status) {
		context.Respond(utils.NewValidationError("status"))
		return
	}

	fr, err := a.db.GetFeatureRequest(ctx, msg.FeatureRequestID, msg.ActorID)
	if err != nil {
		context.Respond(err)
		return
	}

	if !policy.CanChangeFeatureStatus(msg.ActorID, fr) {
		context.Respond(utils.NewForbiddenError("only the feature request owner may change its status"))
		return
	}

	fr.Status = msg.Status
	if err := a.db.SaveFeatureRequest(ctx, fr); err != nil {
		context.Respond(err)
		return
	}
	context.Respond(fr)
}
