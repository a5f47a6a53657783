package handlers

import (
	"encoding/json"
	"net/http"

	"hivemind/internal/engine/actors"
	"hivemind/internal/models"
	"hivemind/internal/utils"
)

// CreateFeatureRequestRequest represents a new feature request
type CreateFeatureRequestRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// SetFeatureStatusRequest changes a feature request's status
type SetFeatureStatusRequest struct {
	Status models.FeatureRequestStatus `json:"status"`
}

// HandleFeatureRequest handles create and single reads.
func (s *Server) HandleFeatureRequest() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			var req CreateFeatureRequestRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				s.respondError(w, utils.NewAppError(utils.ErrInvalidInput, "invalid request body", err))
				return
			}
			s.askAndRespond(w, s.Engine.FeatureRequestPID, &actors.CreateFeatureRequestMsg{
				Title:       req.Title,
				Description: req.Description,
				CreatorID:   s.currentUserID(r),
			}, http.StatusCreated)

		case http.MethodGet:
			frID, ok := s.parseUUIDParam(w, r, "featureRequestId")
			if !ok {
				return
			}
			s.askAndRespond(w, s.Engine.FeatureRequestPID, &actors.GetFeatureRequestMsg{
				FeatureRequestID: frID,
				RequestingUserID: s.currentUserID(r),
			}, http.StatusOK)

		default:
			s.methodNotAllowed(w)
		}
	}
}

// HandleFeatureRequests lists the board, most-voted first.
func (s *Server) HandleFeatureRequests() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			s.methodNotAllowed(w)
			return
		}
		limit, offset := parsePagination(r)
		s.askAndRespond(w, s.Engine.FeatureRequestPID, &actors.ListFeatureRequestsMsg{
			RequestingUserID: s.currentUserID(r),
			Limit:            limit,
			Offset:           offset,
		}, http.StatusOK)
	}
}

// HandleFeatureRequestVote toggles the caller's vote.
func (s *Server) HandleFeatureRequestVote() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			s.methodNotAllowed(w)
			return
		}
		frID, ok := s.parseUUIDParam(w, r, "featureRequestId")
		if !ok {
			return
		}
		var req VoteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, utils.NewAppError(utils.ErrInvalidInput, "invalid request body", err))
			return
		}
		s.askAndRespond(w, s.Engine.FeatureRequestPID, &actors.VoteFeatureRequestMsg{
			FeatureRequestID: frID,
			UserID:           s.currentUserID(r),
			VoteType:         req.VoteType,
		}, http.StatusOK)
	}
}

// HandleFeatureRequestStatus updates the status, owner-only.
func (s *Server) HandleFeatureRequestStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			s.methodNotAllowed(w)
			return
		}
		frID, ok := s.parseUUIDParam(w, r, "featureRequestId")
		if !ok {
			return
		}
		var req SetFeatureStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, utils.NewAppError(utils.ErrInvalidInput, "invalid request body", err))
			return
		}
		s.askAndRespond(w, s.Engine.FeatureRequestPID, &actors.SetFeatureStatusMsg{
			FeatureRequestID: frID,
			ActorID:          s.currentUserID(r),
			Status:           req.Status,
		}, http.StatusOK)
	}
}
