// Package engine wires up the actor system. Each resource family gets
// one actor; handlers talk to them through the PIDs held here.
package engine

import (
	"hivemind/internal/database"
	"hivemind/internal/engine/actors"
	"hivemind/internal/utils"
	"hivemind/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
)

// Engine holds the PIDs for all top-level actors.
type Engine struct {
	UserPID           *actor.PID
	IdeaPID           *actor.PID
	PostPID           *actor.PID
	ChecklistPID      *actor.PID
	CommentPID        *actor.PID
	FeatureRequestPID *actor.PID
	NotificationPID   *actor.PID
}

// NewEngine spawns every actor. The notification actor is spawned
// first so the others can push to it.
func NewEngine(system *actor.ActorSystem, db database.DBAdapter, metrics *utils.MetricsCollector, hub *websocket.Hub) *Engine {
	context := system.Root

	notificationPID := context.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return actors.NewNotificationActor(db, hub)
	}))

	userPID := context.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return actors.NewUserActor(db, metrics)
	}))

	ideaPID := context.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return actors.NewIdeaActor(db, metrics, notificationPID)
	}))

	postPID := context.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return actors.NewPostActor(db, metrics, notificationPID)
	}))

	checklistPID := context.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return actors.NewChecklistActor(db, metrics)
	}))

	commentPID := context.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return actors.NewCommentActor(db, metrics, notificationPID)
	}))

	featureRequestPID := context.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return actors.NewFeatureRequestActor(db, metrics, notificationPID)
	}))

	return &Engine{
		UserPID:           userPID,
		IdeaPID:           ideaPID,
		PostPID:           postPID,
		ChecklistPID:      checklistPID,
		CommentPID:        commentPID,
		FeatureRequestPID: featureRequestPID,
		NotificationPID:   notificationPID,
	}
}
