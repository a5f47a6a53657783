package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"hivemind/internal/engine/actors"
	"hivemind/internal/models"
	"hivemind/internal/utils"
)

// CreateIdeaRequest represents a request to create a new idea
type CreateIdeaRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	IsPublic    bool   `json:"isPublic"`
}

// UpdateIdeaRequest carries partial idea updates; nil fields are
// left unchanged.
type UpdateIdeaRequest struct {
	Title       *string            `json:"title,omitempty"`
	Description *string            `json:"description,omitempty"`
	IsPublic    *bool              `json:"isPublic,omitempty"`
	Status      *models.IdeaStatus `json:"status,omitempty"`
}

// VoteRequest is shared by every vote endpoint.
type VoteRequest struct {
	VoteType models.VoteType `json:"voteType"`
}

// AddCollaboratorRequest adds a user to an idea.
type AddCollaboratorRequest struct {
	UserID string            `json:"userId"`
	Role   models.MemberRole `json:"role"`
}

// HandleIdea handles single-idea operations
func (s *Server) HandleIdea() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			var req CreateIdeaRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				s.respondError(w, utils.NewAppError(utils.ErrInvalidInput, "invalid request body", err))
				return
			}
			s.askAndRespond(w, s.Engine.IdeaPID, &actors.CreateIdeaMsg{
				Title:       req.Title,
				Description: req.Description,
				CreatorID:   s.currentUserID(r),
				IsPublic:    req.IsPublic,
			}, http.StatusCreated)

		case http.MethodGet:
			ideaID, ok := s.parseUUIDParam(w, r, "ideaId")
			if !ok {
				return
			}
			s.askAndRespond(w, s.Engine.IdeaPID, &actors.GetIdeaMsg{
				IdeaID:           ideaID,
				RequestingUserID: s.currentUserID(r),
			}, http.StatusOK)

		case http.MethodPut:
			ideaID, ok := s.parseUUIDParam(w, r, "ideaId")
			if !ok {
				return
			}
			var req UpdateIdeaRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				s.respondError(w, utils.NewAppError(utils.ErrInvalidInput, "invalid request body", err))
				return
			}
			s.askAndRespond(w, s.Engine.IdeaPID, &actors.UpdateIdeaMsg{
				IdeaID:      ideaID,
				ActorID:     s.currentUserID(r),
				Title:       req.Title,
				Description: req.Description,
				IsPublic:    req.IsPublic,
				Status:      req.Status,
			}, http.StatusOK)

		case http.MethodDelete:
			ideaID, ok := s.parseUUIDParam(w, r, "ideaId")
			if !ok {
				return
			}
			s.askAndRespond(w, s.Engine.IdeaPID, &actors.DeleteIdeaMsg{
				IdeaID:  ideaID,
				ActorID: s.currentUserID(r),
			}, http.StatusOK)

		default:
			s.methodNotAllowed(w)
		}
	}
}

// HandleIdeas lists ideas visible to the caller.
func (s *Server) HandleIdeas() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			s.methodNotAllowed(w)
			return
		}
		limit, offset := parsePagination(r)
		s.askAndRespond(w, s.Engine.IdeaPID, &actors.ListIdeasMsg{
			ViewerID: s.currentUserID(r),
			Limit:    limit,
			Offset:   offset,
		}, http.StatusOK)
	}
}

// HandleIdeaVote toggles the caller's vote on an idea.
func (s *Server) HandleIdeaVote() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			s.methodNotAllowed(w)
			return
		}
		ideaID, ok := s.parseUUIDParam(w, r, "ideaId")
		if !ok {
			return
		}
		var req VoteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, utils.NewAppError(utils.ErrInvalidInput, "invalid request body", err))
			return
		}
		s.askAndRespond(w, s.Engine.IdeaPID, &actors.VoteIdeaMsg{
			IdeaID:   ideaID,
			UserID:   s.currentUserID(r),
			VoteType: req.VoteType,
		}, http.StatusOK)
	}
}

// HandleIdeaCollaborator adds and lists idea members.
func (s *Server) HandleIdeaCollaborator() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			ideaID, ok := s.parseUUIDParam(w, r, "ideaId")
			if !ok {
				return
			}
			var req AddCollaboratorRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				s.respondError(w, utils.NewAppError(utils.ErrInvalidInput, "invalid request body", err))
				return
			}
			userID, err := parseUUIDField(req.UserID, "userId")
			if err != nil {
				s.respondError(w, err)
				return
			}
			s.askAndRespond(w, s.Engine.IdeaPID, &actors.AddCollaboratorMsg{
				IdeaID:  ideaID,
				ActorID: s.currentUserID(r),
				UserID:  userID,
				Role:    req.Role,
			}, http.StatusCreated)

		case http.MethodGet:
			ideaID, ok := s.parseUUIDParam(w, r, "ideaId")
			if !ok {
				return
			}
			s.askAndRespond(w, s.Engine.IdeaPID, &actors.ListMembersMsg{
				IdeaID:  ideaID,
				ActorID: s.currentUserID(r),
			}, http.StatusOK)

		default:
			s.methodNotAllowed(w)
		}
	}
}

func parsePagination(r *http.Request) (limit, offset int) {
	limit = 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			offset = n
		}
	}
	return limit, offset
}
