package actors

import (
	stdctx "context"
	"log"
	"time"

	"hivemind/internal/database"
	"hivemind/internal/models"
	"hivemind/internal/policy"
	"hivemind/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// Message types for ChecklistActor
type (
	CreateChecklistMsg struct {
		IdeaID    uuid.UUID `json:"ideaId"`
		Title     string    `json:"title"`
		IsShared  bool      `json:"isShared"`
		CreatorID uuid.UUID `json:"creatorId"`
	}

	GetChecklistMsg struct {
		ChecklistID uuid.UUID `json:"checklistId"`
		UserID      uuid.UUID `json:"userId"`
	}

	ListIdeaChecklistsMsg struct {
		IdeaID uuid.UUID `json:"ideaId"`
		UserID uuid.UUID `json:"userId"`
	}

	UpdateChecklistMsg struct {
		ChecklistID uuid.UUID `json:"checklistId"`
		ActorID     uuid.UUID `json:"actorId"`
		Title       *string   `json:"title,omitempty"`
		IsShared    *bool     `json:"isShared,omitempty"`
	}

	DeleteChecklistMsg struct {
		ChecklistID uuid.UUID `json:"checklistId"`
		ActorID     uuid.UUID `json:"actorId"`
	}

	AddChecklistItemMsg struct {
		ChecklistID uuid.UUID `json:"checklistId"`
		Text        string    `json:"text"`
		UserID      uuid.UUID `json:"userId"`
	}

	ToggleChecklistItemMsg struct {
		ItemID    uuid.UUID `json:"itemId"`
		UserID    uuid.UUID `json:"userId"`
		Completed bool      `json:"completed"`
	}

	DeleteChecklistItemMsg struct {
		ItemID uuid.UUID `json:"itemId"`
		UserID uuid.UUID `json:"userId"`
	}
)

// ChecklistActor handles checklists and their items under an idea.
// Every operation resolves the parent idea and the actor's membership
// before the policy check runs.
type ChecklistActor struct {
	db      database.DBAdapter
	metrics *utils.MetricsCollector
}

func NewChecklistActor(db database.DBAdapter, metrics *utils.MetricsCollector) actor.Actor {
	return &ChecklistActor{db: db, metrics: metrics}
}

func (a *ChecklistActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		log.Printf("ChecklistActor started with PID: %v", context.Self())

	case *CreateChecklistMsg:
		a.handleCreateChecklist(context, msg)
	case *GetChecklistMsg:
		a.handleGetChecklist(context, msg)
	case *ListIdeaChecklistsMsg:
		a.handleListIdeaChecklists(context, msg)
	case *UpdateChecklistMsg:
		a.handleUpdateChecklist(context, msg)
	case *DeleteChecklistMsg:
		a.handleDeleteChecklist(context, msg)
	case *AddChecklistItemMsg:
		a.handleAddItem(context, msg)
	case *ToggleChecklistItemMsg:
		a.handleToggleItem(context, msg)
	case *DeleteChecklistItemMsg:
		a.handleDeleteItem(context, msg)

	default:
		log.Printf("ChecklistActor: Unknown message type %T", msg)
	}
}

// resolveChecklist loads the checklist, its parent idea and the
// actor's membership in one go.
func (a *ChecklistActor) resolveChecklist(ctx stdctx.Context, checklistID, actorID uuid.UUID) (*models.ChecklistWithItems, *models.Idea, policy.IdeaContext, error) {
	cl, err := a.db.GetChecklist(ctx, checklistID)
	if err != nil {
		return nil, nil, policy.IdeaContext{}, err
	}

	idea, ideaCtx, err := resolveIdeaContext(ctx, a.db, cl.IdeaID, actorID)
	if err != nil {
		return nil, nil, policy.IdeaContext{}, err
	}
	return cl, idea, ideaCtx, nil
}

func (a *ChecklistActor) handleCreateChecklist(context actor.Context, msg *CreateChecklistMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	if msg.Title == "" {
		context.Respond(utils.NewValidationError("title"))
		return
	}

	_, ideaCtx, err := resolveIdeaContext(ctx, a.db, msg.IdeaID, msg.CreatorID)
	if err != nil {
		context.Respond(err)
		return
	}

	// The idea creator and assigned members may create checklists;
	// plain collaborators may not.
	if msg.CreatorID != ideaCtx.IdeaCreatorID && !ideaCtx.IsAssigned() {
		context.Respond(utils.NewForbiddenError("only the idea creator or assigned members may create checklists"))
		return
	}

	cl := &models.Checklist{
		ID:        uuid.New(),
		IdeaID:    msg.IdeaID,
		Title:     msg.Title,
		CreatorID: msg.CreatorID,
		IsShared:  msg.IsShared,
	}
	if err := a.db.SaveChecklist(ctx, cl); err != nil {
		context.Respond(err)
		return
	}

	a.metrics.AddOperationLatency("create_checklist", time.Since(startTime))
	context.Respond(&models.ChecklistWithItems{Checklist: *cl, Items: []*models.ChecklistItem{}, Progress: 0})
}

func (a *ChecklistActor) handleGetChecklist(context actor.Context, msg *GetChecklistMsg) {
	ctx := stdctx.Background()

	cl, idea, ideaCtx, err := a.resolveChecklist(ctx, msg.ChecklistID, msg.UserID)
	if err != nil {
		context.Respond(err)
		return
	}

	if !policy.CanReadIdea(msg.UserID, idea, ideaCtx) {
		context.Respond(utils.NewForbiddenError("idea is private"))
		return
	}

	context.Respond(cl)
}

func (a *ChecklistActor) handleListIdeaChecklists(context actor.Context, msg *ListIdeaChecklistsMsg) {
	ctx := stdctx.Background()

	idea, ideaCtx, err := resolveIdeaContext(ctx, a.db, msg.IdeaID, msg.UserID)
	if err != nil {
		context.Respond(err)
		return
	}

	if !policy.CanReadIdea(msg.UserID, idea, ideaCtx) {
		context.Respond(utils.NewForbiddenError("idea is private"))
		return
	}

	lists, err := a.db.ListIdeaChecklists(ctx, msg.IdeaID)
	if err != nil {
		context.Respond(err)
		return
	}
	context.Respond(lists)
}

func (a *ChecklistActor) handleUpdateChecklist(context actor.Context, msg *UpdateChecklistMsg) {
	ctx := stdctx.Background()

	cl, _, ideaCtx, err := a.resolveChecklist(ctx, msg.ChecklistID, msg.ActorID)
	if err != nil {
		context.Respond(err)
		return
	}

	if !policy.CanModifyChecklist(msg.ActorID, &cl.Checklist, ideaCtx) {
		context.Respond(utils.NewForbiddenError("not allowed to modify this checklist"))
		return
	}

	if msg.Title != nil {
		if *msg.Title == "" {
			context.Respond(utils.NewValidationError("title"))
			return
		}
		cl.Title = *msg.Title
	}
	if msg.IsShared != nil {
		// Sharing is a creator-level decision, not something an
		// assigned member can flip on a shared list.
		if msg.ActorID != ideaCtx.IdeaCreatorID {
			context.Respond(utils.NewForbiddenError("only the idea creator may change sharing"))
			return
		}
		cl.IsShared = *msg.IsShared
	}

	if err := a.db.SaveChecklist(ctx, &cl.Checklist); err != nil {
		context.Respond(err)
		return
	}

	updated, err := a.db.GetChecklist(ctx, msg.ChecklistID)
	if err != nil {
		context.Respond(err)
		return
	}
	context.Respond(updated)
}

func (a *ChecklistActor) handleDeleteChecklist(context actor.Context, msg *DeleteChecklistMsg) {
	ctx := stdctx.Background()

	cl, _, ideaCtx, err := a.resolveChecklist(ctx, msg.ChecklistID, msg.ActorID)
	if err != nil {
		context.Respond(err)
		return
	}

	if !policy.CanModifyChecklist(msg.ActorID, &cl.Checklist, ideaCtx) {
		context.Respond(utils.NewForbiddenError("not allowed to delete this checklist"))
		return
	}

	if err := a.db.DeleteChecklist(ctx, msg.ChecklistID); err != nil {
		context.Respond(err)
		return
	}
	context.Respond(&models.StatusResponse{Success: true, Message: "checklist deleted"})
}

func (a *ChecklistActor) handleAddItem(context actor.Context, msg *AddChecklistItemMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	if msg.Text == "" {
		context.Respond(utils.NewValidationError("text"))
		return
	}

	cl, _, ideaCtx, err := a.resolveChecklist(ctx, msg.ChecklistID, msg.UserID)
	if err != nil {
		context.Respond(err)
		return
	}

	if !policy.CanModifyChecklist(msg.UserID, &cl.Checklist, ideaCtx) {
		context.Respond(utils.NewForbiddenError("not allowed to modify this checklist"))
		return
	}

	item := &models.ChecklistItem{
		ID:          uuid.New(),
		ChecklistID: msg.ChecklistID,
		Text:        msg.Text,
		CreatedBy:   msg.UserID,
	}
	if err := a.db.AddChecklistItem(ctx, item); err != nil {
		context.Respond(err)
		return
	}

	a.metrics.AddOperationLatency("add_checklist_item", time.Since(startTime))
	context.Respond(item)
}

func (a *ChecklistActor) handleToggleItem(context actor.Context, msg *ToggleChecklistItemMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	item, err := a.db.GetChecklistItem(ctx, msg.ItemID)
	if err != nil {
		context.Respond(err)
		return
	}

	cl, _, ideaCtx, err := a.resolveChecklist(ctx, item.ChecklistID, msg.UserID)
	if err != nil {
		context.Respond(err)
		return
	}

	if !policy.CanModifyChecklist(msg.UserID, &cl.Checklist, ideaCtx) {
		context.Respond(utils.NewForbiddenError("not allowed to modify this checklist"))
		return
	}

	updated, err := a.db.SetItemCompletion(ctx, msg.ItemID, msg.UserID, msg.Completed)
	if err != nil {
		context.Respond(err)
		return
	}

	a.metrics.AddOperationLatency("toggle_checklist_item", time.Since(startTime))
	context.Respond(updated)
}

func (a *ChecklistActor) handleDeleteItem(context actor.Context, msg *DeleteChecklistItemMsg) {
	ctx := stdctx.Background()

	item, err := a.db.GetChecklistItem(ctx, msg.ItemID)
	if err != nil {
		context.Respond(err)
		return
	}

	cl, _, ideaCtx, err := a.resolveChecklist(ctx, item.ChecklistID, msg.UserID)
	if err != nil {
		context.Respond(err)
		return
	}

	if !policy.CanDeleteChecklistItem(msg.UserID, &cl.Checklist, item, ideaCtx) {
		context.Respond(utils.NewForbiddenError("not allowed to delete this item"))
		return
	}

	if err := a.db.DeleteChecklistItem(ctx, msg.ItemID); err != nil {
		context.Respond(err)
		return
	}
	context.Respond(&models.StatusResponse{Success: true, Message: "item deleted"})
}
