package handlers

import (
	"encoding/json"
	"net/http"

	"hivemind/internal/engine/actors"
	"hivemind/internal/utils"

	"github.com/google/uuid"
)

// MarkNotificationsReadRequest marks notifications read; an empty ID
// list marks everything.
type MarkNotificationsReadRequest struct {
	IDs []string `json:"ids,omitempty"`
}

// HandleNotifications lists the caller's notifications.
func (s *Server) HandleNotifications() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			s.methodNotAllowed(w)
			return
		}
		unreadOnly := r.URL.Query().Get("unread") == "true"
		s.askAndRespond(w, s.Engine.NotificationPID, &actors.ListNotificationsMsg{
			UserID:     s.currentUserID(r),
			UnreadOnly: unreadOnly,
		}, http.StatusOK)
	}
}

// HandleNotificationsRead marks notifications as read.
func (s *Server) HandleNotificationsRead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			s.methodNotAllowed(w)
			return
		}
		var req MarkNotificationsReadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, utils.NewAppError(utils.ErrInvalidInput, "invalid request body", err))
			return
		}

		ids := make([]uuid.UUID, 0, len(req.IDs))
		for _, raw := range req.IDs {
			id, err := uuid.Parse(raw)
			if err != nil {
				s.respondError(w, utils.NewAppError(utils.ErrInvalidInput, "invalid notification id", err))
				return
			}
			ids = append(ids, id)
		}

		s.askAndRespond(w, s.Engine.NotificationPID, &actors.MarkNotificationsReadMsg{
			UserID: s.currentUserID(r),
			IDs:    ids,
		}, http.StatusOK)
	}
}
