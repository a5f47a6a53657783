package handlers

import (
	"encoding/json"
	"net/http"

	"hivemind/internal/engine/actors"
	"hivemind/internal/utils"
)

// CreateChecklistRequest represents a request to create a checklist
type CreateChecklistRequest struct {
	IdeaID   string `json:"ideaId"`
	Title    string `json:"title"`
	IsShared bool   `json:"isShared"`
}

// UpdateChecklistRequest carries partial checklist updates.
type UpdateChecklistRequest struct {
	Title    *string `json:"title,omitempty"`
	IsShared *bool   `json:"isShared,omitempty"`
}

// AddChecklistItemRequest appends an item to a checklist.
type AddChecklistItemRequest struct {
	ChecklistID string `json:"checklistId"`
	Text        string `json:"text"`
}

// ToggleItemRequest flips an item's completion state.
type ToggleItemRequest struct {
	ItemID    string `json:"itemId"`
	Completed bool   `json:"completed"`
}

// HandleChecklist handles checklist CRUD. GET serves a single list by
// checklistId or all lists under an idea by ideaId.
func (s *Server) HandleChecklist() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			var req CreateChecklistRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				s.respondError(w, utils.NewAppError(utils.ErrInvalidInput, "invalid request body", err))
				return
			}
			ideaID, err := parseUUIDField(req.IdeaID, "ideaId")
			if err != nil {
				s.respondError(w, err)
				return
			}
			s.askAndRespond(w, s.Engine.ChecklistPID, &actors.CreateChecklistMsg{
				IdeaID:    ideaID,
				Title:     req.Title,
				IsShared:  req.IsShared,
				CreatorID: s.currentUserID(r),
			}, http.StatusCreated)

		case http.MethodGet:
			if raw := r.URL.Query().Get("checklistId"); raw != "" {
				checklistID, ok := s.parseUUIDParam(w, r, "checklistId")
				if !ok {
					return
				}
				s.askAndRespond(w, s.Engine.ChecklistPID, &actors.GetChecklistMsg{
					ChecklistID: checklistID,
					UserID:      s.currentUserID(r),
				}, http.StatusOK)
				return
			}
			ideaID, ok := s.parseUUIDParam(w, r, "ideaId")
			if !ok {
				return
			}
			s.askAndRespond(w, s.Engine.ChecklistPID, &actors.ListIdeaChecklistsMsg{
				IdeaID: ideaID,
				UserID: s.currentUserID(r),
			}, http.StatusOK)

		case http.MethodPut:
			checklistID, ok := s.parseUUIDParam(w, r, "checklistId")
			if !ok {
				return
			}
			var req UpdateChecklistRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				s.respondError(w, utils.NewAppError(utils.ErrInvalidInput, "invalid request body", err))
				return
			}
			s.askAndRespond(w, s.Engine.ChecklistPID, &actors.UpdateChecklistMsg{
				ChecklistID: checklistID,
				ActorID:     s.currentUserID(r),
				Title:       req.Title,
				IsShared:    req.IsShared,
			}, http.StatusOK)

		case http.MethodDelete:
			checklistID, ok := s.parseUUIDParam(w, r, "checklistId")
			if !ok {
				return
			}
			s.askAndRespond(w, s.Engine.ChecklistPID, &actors.DeleteChecklistMsg{
				ChecklistID: checklistID,
				ActorID:     s.currentUserID(r),
			}, http.StatusOK)

		default:
			s.methodNotAllowed(w)
		}
	}
}

// HandleChecklistItem adds and deletes checklist items.
func (s *Server) HandleChecklistItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			var req AddChecklistItemRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				s.respondError(w, utils.NewAppError(utils.ErrInvalidInput, "invalid request body", err))
				return
			}
			checklistID, err := parseUUIDField(req.ChecklistID, "checklistId")
			if err != nil {
				s.respondError(w, err)
				return
			}
			s.askAndRespond(w, s.Engine.ChecklistPID, &actors.AddChecklistItemMsg{
				ChecklistID: checklistID,
				Text:        req.Text,
				UserID:      s.currentUserID(r),
			}, http.StatusCreated)

		case http.MethodDelete:
			itemID, ok := s.parseUUIDParam(w, r, "itemId")
			if !ok {
				return
			}
			s.askAndRespond(w, s.Engine.ChecklistPID, &actors.DeleteChecklistItemMsg{
				ItemID: itemID,
				UserID: s.currentUserID(r),
			}, http.StatusOK)

		default:
			s.methodNotAllowed(w)
		}
	}
}

// HandleChecklistItemToggle flips an item's completion state.
func (s *Server) HandleChecklistItemToggle() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			s.methodNotAllowed(w)
			return
		}
		var req ToggleItemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, utils.NewAppError(utils.ErrInvalidInput, "invalid request body", err))
			return
		}
		itemID, err := parseUUIDField(req.ItemID, "itemId")
		if err != nil {
			s.respondError(w, err)
			return
		}
		s.askAndRespond(w, s.Engine.ChecklistPID, &actors.ToggleChecklistItemMsg{
			ItemID:    itemID,
			UserID:    s.currentUserID(r),
			Completed: req.Completed,
		}, http.StatusOK)
	}
}
