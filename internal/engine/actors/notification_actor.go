package actors

import (
	stdctx "context"
	"encoding/json"
	"log"

	"hivemind/internal/database"
	"hivemind/internal/models"
	"hivemind/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// Message types for NotificationActor
type (
	// PushNotificationMsg is fire-and-forget: senders use context.Send
	// and never wait. A failed store or push must not affect the
	// mutation that triggered it.
	PushNotificationMsg struct {
		RecipientID uuid.UUID               `json:"recipientId"`
		ActorID     uuid.UUID               `json:"actorId"`
		Kind        models.NotificationKind `json:"kind"`
		SubjectID   uuid.UUID               `json:"subjectId"`
		Message     string                  `json:"message"`
	}

	ListNotificationsMsg struct {
		UserID     uuid.UUID `json:"userId"`
		UnreadOnly bool      `json:"unreadOnly"`
	}

	MarkNotificationsReadMsg struct {
		UserID uuid.UUID   `json:"userId"`
		IDs    []uuid.UUID `json:"ids,omitempty"`
	}
)

// NotificationActor persists notifications and pushes them over the
// websocket hub to connected recipients.
type NotificationActor struct {
	db  database.DBAdapter
	hub *websocket.Hub
}

func NewNotificationActor(db database.DBAdapter, hub *websocket.Hub) actor.Actor {
	return &NotificationActor{db: db, hub: hub}
}

func (a *NotificationActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		log.Printf("NotificationActor started with PID: %v", context.Self())

	case *PushNotificationMsg:
		a.handlePush(msg)
	case *ListNotificationsMsg:
		a.handleList(context, msg)
	case *MarkNotificationsReadMsg:
		a.handleMarkRead(context, msg)

	default:
		log.Printf("NotificationActor: Unknown message type %T", msg)
	}
}

func (a *NotificationActor) handlePush(msg *PushNotificationMsg) {
	ctx := stdctx.Background()

	n := &models.Notification{
		ID:          uuid.New(),
		RecipientID: msg.RecipientID,
		ActorID:     msg.ActorID,
		Kind:        msg.Kind,
		SubjectID:   msg.SubjectID,
		Message:     msg.Message,
	}

	if err := a.db.SaveNotification(ctx, n); err != nil {
		log.Printf("NotificationActor: failed to store notification for %s: %v", msg.RecipientID, err)
		return
	}

	if a.hub != nil {
		payload, err := json.Marshal(n)
		if err != nil {
			log.Printf("NotificationActor: failed to marshal notification %s: %v", n.ID, err)
			return
		}
		a.hub.Push(n.RecipientID, payload)
	}
}

func (a *NotificationActor) handleList(context actor.Context, msg *ListNotificationsMsg) {
	ctx := stdctx.Background()

	notifications, err := a.db.ListNotifications(ctx, msg.UserID, msg.UnreadOnly)
	if err != nil {
		context.Respond(err)
		return
	}
	context.Respond(notifications)
}

func (a *NotificationActor) handleMarkRead(context actor.Context, msg *MarkNotificationsReadMsg) {
	ctx := stdctx.Background()

	if err := a.db.MarkNotificationsRead(ctx, msg.UserID, msg.IDs); err != nil {
		context.Respond(err)
		return
	}
	context.Respond(&models.StatusResponse{Success: true, Message: "notifications marked read"})
}
