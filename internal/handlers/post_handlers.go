package handlers

import (
	"encoding/json"
	"net/http"

	"hivemind/internal/engine/actors"
	"hivemind/internal/utils"
)

// CreatePostRequest represents a request to create a new post
type CreatePostRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	IsPublic bool   `json:"isPublic"`
}

// UpdatePostRequest carries partial post updates.
type UpdatePostRequest struct {
	Title    *string `json:"title,omitempty"`
	Content  *string `json:"content,omitempty"`
	IsPublic *bool   `json:"isPublic,omitempty"`
}

// HandlePost handles single-post operations
func (s *Server) HandlePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			var req CreatePostRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				s.respondError(w, utils.NewAppError(utils.ErrInvalidInput, "invalid request body", err))
				return
			}
			s.askAndRespond(w, s.Engine.PostPID, &actors.CreatePostMsg{
				Title:     req.Title,
				Content:   req.Content,
				CreatorID: s.currentUserID(r),
				IsPublic:  req.IsPublic,
			}, http.StatusCreated)

		case http.MethodGet:
			postID, ok := s.parseUUIDParam(w, r, "postId")
			if !ok {
				return
			}
			s.askAndRespond(w, s.Engine.PostPID, &actors.GetPostMsg{
				PostID:           postID,
				RequestingUserID: s.currentUserID(r),
			}, http.StatusOK)

		case http.MethodPut:
			postID, ok := s.parseUUIDParam(w, r, "postId")
			if !ok {
				return
			}
			var req UpdatePostRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				s.respondError(w, utils.NewAppError(utils.ErrInvalidInput, "invalid request body", err))
				return
			}
			s.askAndRespond(w, s.Engine.PostPID, &actors.UpdatePostMsg{
				PostID:   postID,
				ActorID:  s.currentUserID(r),
				Title:    req.Title,
				Content:  req.Content,
				IsPublic: req.IsPublic,
			}, http.StatusOK)

		case http.MethodDelete:
			postID, ok := s.parseUUIDParam(w, r, "postId")
			if !ok {
				return
			}
			s.askAndRespond(w, s.Engine.PostPID, &actors.DeletePostMsg{
				PostID:  postID,
				ActorID: s.currentUserID(r),
			}, http.StatusOK)

		default:
			s.methodNotAllowed(w)
		}
	}
}

// HandleRecentPosts lists the newest posts visible to the caller.
func (s *Server) HandleRecentPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			s.methodNotAllowed(w)
			return
		}
		limit, offset := parsePagination(r)
		s.askAndRespond(w, s.Engine.PostPID, &actors.GetRecentPostsMsg{
			ViewerID: s.currentUserID(r),
			Limit:    limit,
			Offset:   offset,
		}, http.StatusOK)
	}
}

// HandlePostVote toggles the caller's vote on a post.
func (s *Server) HandlePostVote() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			s.methodNotAllowed(w)
			return
		}
		postID, ok := s.parseUUIDParam(w, r, "postId")
		if !ok {
			return
		}
		var req VoteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, utils.NewAppError(utils.ErrInvalidInput, "invalid request body", err))
			return
		}
		s.askAndRespond(w, s.Engine.PostPID, &actors.VotePostMsg{
			PostID:   postID,
			UserID:   s.currentUserID(r),
			VoteType: req.VoteType,
		}, http.StatusOK)
	}
}
