package handlers

import (
	"encoding/json"
	"net/http"

	"hivemind/internal/engine/actors"
	"hivemind/internal/models"
	"hivemind/internal/utils"
)

// CreateCommentRequest represents a request to create a new comment
type CreateCommentRequest struct {
	Content     string                    `json:"content"`
	SubjectID   string                    `json:"subjectId"`
	SubjectType models.CommentSubjectType `json:"subjectType"`
}

// EditCommentRequest represents a request to edit an existing comment
type EditCommentRequest struct {
	Content string `json:"content"`
}

// HandleComment handles comment create, edit and delete.
func (s *Server) HandleComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			var req CreateCommentRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				s.respondError(w, utils.NewAppError(utils.ErrInvalidInput, "invalid request body", err))
				return
			}
			subjectID, err := parseUUIDField(req.SubjectID, "subjectId")
			if err != nil {
				s.respondError(w, err)
				return
			}
			s.askAndRespond(w, s.Engine.CommentPID, &actors.CreateCommentMsg{
				Content:     req.Content,
				AuthorID:    s.currentUserID(r),
				SubjectID:   subjectID,
				SubjectType: req.SubjectType,
			}, http.StatusCreated)

		case http.MethodPut:
			commentID, ok := s.parseUUIDParam(w, r, "commentId")
			if !ok {
				return
			}
			var req EditCommentRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				s.respondError(w, utils.NewAppError(utils.ErrInvalidInput, "invalid request body", err))
				return
			}
			s.askAndRespond(w, s.Engine.CommentPID, &actors.EditCommentMsg{
				CommentID: commentID,
				AuthorID:  s.currentUserID(r),
				Content:   req.Content,
			}, http.StatusOK)

		case http.MethodDelete:
			commentID, ok := s.parseUUIDParam(w, r, "commentId")
			if !ok {
				return
			}
			s.askAndRespond(w, s.Engine.CommentPID, &actors.DeleteCommentMsg{
				CommentID: commentID,
				ActorID:   s.currentUserID(r),
			}, http.StatusOK)

		default:
			s.methodNotAllowed(w)
		}
	}
}

// HandleComments lists comments on a post or feature request.
func (s *Server) HandleComments() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			s.methodNotAllowed(w)
			return
		}
		subjectID, ok := s.parseUUIDParam(w, r, "subjectId")
		if !ok {
			return
		}
		subjectType := models.CommentSubjectType(r.URL.Query().Get("subjectType"))
		if subjectType == "" {
			subjectType = models.PostComment
		}
		s.askAndRespond(w, s.Engine.CommentPID, &actors.GetCommentsMsg{
			SubjectID:        subjectID,
			SubjectType:      subjectType,
			RequestingUserID: s.currentUserID(r),
		}, http.StatusOK)
	}
}
