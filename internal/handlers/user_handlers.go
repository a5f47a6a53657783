package handlers

import (
	"encoding/json"
	"net/http"

	"hivemind/internal/engine/actors"
	"hivemind/internal/models"
	"hivemind/internal/utils"

	"github.com/google/uuid"
)

// RegisterUserRequest represents a request to register a new user
type RegisterUserRequest struct {
	ID       string `json:"id,omitempty"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents a login attempt
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the signed token and the user it belongs to
type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// HandleUserRegistration registers a new user. Registration is
// idempotent per ID: repeating it returns the existing user.
func (s *Server) HandleUserRegistration() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			s.methodNotAllowed(w)
			return
		}

		var req RegisterUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, utils.NewAppError(utils.ErrInvalidInput, "invalid request body", err))
			return
		}

		var id uuid.UUID
		if req.ID != "" {
			parsed, err := uuid.Parse(req.ID)
			if err != nil {
				s.respondError(w, utils.NewAppError(utils.ErrInvalidInput, "invalid id", err))
				return
			}
			id = parsed
		}

		s.askAndRespond(w, s.Engine.UserPID, &actors.RegisterUserMsg{
			ID:       id,
			Username: req.Username,
			Email:    req.Email,
			Password: req.Password,
		}, http.StatusCreated)
	}
}

// HandleUserLogin checks credentials and issues a JWT.
func (s *Server) HandleUserLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			s.methodNotAllowed(w)
			return
		}

		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, utils.NewAppError(utils.ErrInvalidInput, "invalid request body", err))
			return
		}

		s.Metrics.IncrementRequests()
		result, err := s.ask(s.Engine.UserPID, &actors.LoginMsg{Email: req.Email, Password: req.Password})
		if err != nil {
			s.respondError(w, err)
			return
		}
		if appErr, ok := result.(*utils.AppError); ok {
			s.respondError(w, appErr)
			return
		}

		user, ok := result.(*models.User)
		if !ok {
			s.respondError(w, utils.NewAppError(utils.ErrDatabase, "unexpected login response", nil))
			return
		}

		token, err := s.Tokens.GenerateToken(user.ID)
		if err != nil {
			s.respondError(w, utils.NewAppError(utils.ErrDatabase, "failed to sign token", err))
			return
		}

		s.respondJSON(w, http.StatusOK, &LoginResponse{Token: token, User: user})
	}
}

// HandleUserProfile returns the authenticated user's profile, or any
// user's profile when userId is given.
func (s *Server) HandleUserProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			s.methodNotAllowed(w)
			return
		}

		userID := s.currentUserID(r)
		if raw := r.URL.Query().Get("userId"); raw != "" {
			parsed, err := uuid.Parse(raw)
			if err != nil {
				s.respondError(w, utils.NewAppError(utils.ErrInvalidInput, "invalid userId", err))
				return
			}
			userID = parsed
		}
		if userID == uuid.Nil {
			s.respondError(w, utils.NewValidationError("userId"))
			return
		}

		s.askAndRespond(w, s.Engine.UserPID, &actors.GetUserProfileMsg{UserID: userID}, http.StatusOK)
	}
}
