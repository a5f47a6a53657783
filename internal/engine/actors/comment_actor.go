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

// Message types for CommentActor
type (
	CreateCommentMsg struct {
		Content     string                    `json:"content"`
		AuthorID    uuid.UUID                 `json:"authorId"`
		SubjectID   uuid.UUID                 `json:"subjectId"`
		SubjectType models.CommentSubjectType `json:"subjectType"`
	}

	EditCommentMsg struct {
		CommentID uuid.UUID `json:"commentId"`
		AuthorID  uuid.UUID `json:"authorId"`
		Content   string    `json:"content"`
	}

	DeleteCommentMsg struct {
		CommentID uuid.UUID `json:"commentId"`
		ActorID   uuid.UUID `json:"actorId"`
	}

	GetCommentsMsg struct {
		SubjectID        uuid.UUID                 `json:"subjectId"`
		SubjectType      models.CommentSubjectType `json:"subjectType"`
		RequestingUserID uuid.UUID                 `json:"requestingUserId,omitempty"`
	}
)

// CommentActor manages comments on posts and feature requests.
type CommentActor struct {
	db              database.DBAdapter
	metrics         *utils.MetricsCollector
	notificationPID *actor.PID
}

func NewCommentActor(db database.DBAdapter, metrics *utils.MetricsCollector, notificationPID *actor.PID) actor.Actor {
	return &CommentActor{db: db, metrics: metrics, notificationPID: notificationPID}
}

func (a *CommentActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		log.Printf("CommentActor started with PID: %v", context.Self())

	case *CreateCommentMsg:
		a.handleCreateComment(context, msg)
	case *EditCommentMsg:
		a.handleEditComment(context, msg)
	case *DeleteCommentMsg:
		a.handleDeleteComment(context, msg)
	case *GetCommentsMsg:
		a.handleGetComments(context, msg)

	default:
		log.Printf("CommentActor: Unknown message type %T", msg)
	}
}

// subjectInfo resolves the commented resource's owner and title, and
// whether the viewer may see it at all.
func (a *CommentActor) subjectInfo(ctx stdctx.Context, subjectID uuid.UUID, subjectType models.CommentSubjectType, viewerID uuid.UUID) (ownerID uuid.UUID, title string, readable bool, err error) {
	switch subjectType {
	case models.PostComment:
		post, err := a.db.GetPost(ctx, subjectID, viewerID)
		if err != nil {
			return uuid.Nil, "", false, err
		}
		return post.CreatorID, post.Title, policy.CanReadPost(viewerID, post), nil
	case models.FeatureRequestComment:
		fr, err := a.db.GetFeatureRequest(ctx, subjectID, viewerID)
		if err != nil {
			return uuid.Nil, "", false, err
		}
		// Feature requests are board-wide; any authenticated user may
		// read and comment.
		return fr.CreatorID, fr.Title, true, nil
	default:
		return uuid.Nil, "", false, utils.NewValidationError("subjectType")
	}
}

func (a *CommentActor) handleCreateComment(context actor.Context, msg *CreateCommentMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	if msg.Content == "" {
		context.Respond(utils.NewValidationError("content"))
		return
	}

	ownerID, title, readable, err := a.subjectInfo(ctx, msg.SubjectID, msg.SubjectType, msg.AuthorID)
	if err != nil {
		context.Respond(err)
		return
	}
	if !readable {
		context.Respond(utils.NewForbiddenError("cannot comment on a private resource"))
		return
	}

	comment := &models.Comment{
		ID:          uuid.New(),
		Content:     msg.Content,
		AuthorID:    msg.AuthorID,
		SubjectID:   msg.SubjectID,
		SubjectType: msg.SubjectType,
	}
	if err := a.db.SaveComment(ctx, comment); err != nil {
		context.Respond(err)
		return
	}

	if a.notificationPID != nil && ownerID != msg.AuthorID {
		context.Send(a.notificationPID, &PushNotificationMsg{
			RecipientID: ownerID,
			ActorID:     msg.AuthorID,
			Kind:        models.NotifyComment,
			SubjectID:   msg.SubjectID,
			Message:     fmt.Sprintf("New comment on %q", title),
		})
	}

	a.metrics.AddOperationLatency("create_comment", time.Since(startTime))
	context.Respond(comment)
}

func (a *CommentActor) handleEditComment(context actor.Context, msg *EditCommentMsg) {
	ctx := stdctx.Background()

	if msg.Content == "" {
		context.Respond(utils.NewValidationError("content"))
		return
	}

	comment, err := a.db.GetComment(ctx, msg.CommentID)
	if err != nil {
		context.Respond(err)
		return
	}

	if !policy.CanModifyComment(msg.AuthorID, comment) {
		context.Respond(utils.NewForbiddenError("only the comment author may edit it"))
		return
	}

	comment.Content = msg.Content
	if err := a.db.SaveComment(ctx, comment); err != nil {
		context.Respond(err)
		return
	}
	context.Respond(comment)
}

func (a *CommentActor) handleDeleteComment(context actor.Context, msg *DeleteCommentMsg) {
	ctx := stdctx.Background()

	comment, err := a.db.GetComment(ctx, msg.CommentID)
	if err != nil {
		context.Respond(err)
		return
	}

	ownerID, _, _, err := a.subjectInfo(ctx, comment.SubjectID, comment.SubjectType, msg.ActorID)
	if err != nil {
		// The subject may be gone; fall back to author-only deletion.
		ownerID = uuid.Nil
	}

	if !policy.CanDeleteComment(msg.ActorID, comment, ownerID) {
		context.Respond(utils.NewForbiddenError("only the author or the resource owner may delete this comment"))
		return
	}

	if err := a.db.DeleteComment(ctx, msg.CommentID); err != nil {
		context.Respond(err)
		return
	}
	context.Respond(&models.StatusResponse{Success: true, Message: "comment deleted"})
}

func (a *CommentActor) handleGetComments(context actor.Context, msg *GetCommentsMsg) {
	ctx := stdctx.Background()

	_, _, readable, err := a.subjectInfo(ctx, msg.SubjectID, msg.SubjectType, msg.RequestingUserID)
	if err != nil {
		context.Respond(err)
		return
	}
	if !readable {
		context.Respond(utils.NewForbiddenError("resource is private"))
		return
	}

	comments, err := a.db.GetSubjectComments(ctx, msg.SubjectID, msg.SubjectType)
	if err != nil {
		context.Respond(err)
		return
	}
	context.Respond(comments)
}
