package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"hivemind/internal/database"
	"hivemind/internal/engine"
	"hivemind/internal/middleware"
	"hivemind/internal/utils"
	"hivemind/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// Server holds all server dependencies, including the actor system and engine
type Server struct {
	System         *actor.ActorSystem
	Context        *actor.RootContext
	Engine         *engine.Engine
	Metrics        *utils.MetricsCollector
	DB             database.DBAdapter
	Hub            *websocket.Hub
	Tokens         *middleware.TokenManager
	RequestTimeout time.Duration
}

// NewServer creates a new Server instance with the given components
func NewServer(
	system *actor.ActorSystem,
	eng *engine.Engine,
	metrics *utils.MetricsCollector,
	db database.DBAdapter,
	hub *websocket.Hub,
	tokens *middleware.TokenManager,
) *Server {
	return &Server{
		System:         system,
		Context:        system.Root,
		Engine:         eng,
		Metrics:        metrics,
		DB:             db,
		Hub:            hub,
		Tokens:         tokens,
		RequestTimeout: 5 * time.Second, // Default timeout for actor requests
	}
}

// currentUserID returns the authenticated user from the request
// context, or uuid.Nil for unauthenticated optional-auth reads.
func (s *Server) currentUserID(r *http.Request) uuid.UUID {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		return uuid.Nil
	}
	return userID
}

// ask sends a message to an actor and waits for the response.
func (s *Server) ask(pid *actor.PID, msg interface{}) (interface{}, error) {
	future := s.Context.RequestFuture(pid, msg, s.RequestTimeout)
	result, err := future.Result()
	if err != nil {
		return nil, utils.NewActorTimeoutError(pid.String())
	}
	return result, nil
}

// askAndRespond sends msg to the actor and writes whatever comes back:
// AppErrors map to their HTTP status, everything else is encoded as
// JSON. This is the single choke point for actor-backed endpoints.
func (s *Server) askAndRespond(w http.ResponseWriter, pid *actor.PID, msg interface{}, successStatus int) {
	s.Metrics.IncrementRequests()

	result, err := s.ask(pid, msg)
	if err != nil {
		s.respondError(w, err)
		return
	}

	if appErr, ok := result.(*utils.AppError); ok {
		s.respondError(w, appErr)
		return
	}

	s.respondJSON(w, successStatus, result)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, err error) {
	s.Metrics.IncrementErrors()

	if appErr, ok := err.(*utils.AppError); ok {
		status := utils.AppErrorToHTTPStatus(appErr.Code)
		if status >= http.StatusInternalServerError {
			log.Printf("Internal error [%s]: %v", appErr.Code, appErr)
		}
		s.respondJSON(w, status, map[string]string{
			"error": appErr.Message,
			"code":  appErr.Code,
		})
		return
	}

	log.Printf("Unhandled error: %v", err)
	s.respondJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
		"code":  utils.ErrDatabase,
	})
}

// parseUUIDParam reads a required UUID query parameter. The bool is
// false when the response has already been written.
func (s *Server) parseUUIDParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		s.respondError(w, utils.NewValidationError(name))
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		s.respondError(w, utils.NewAppError(utils.ErrInvalidInput, "invalid "+name, err))
		return uuid.Nil, false
	}
	return id, true
}

// parseUUIDField parses a UUID from a JSON body field.
func parseUUIDField(raw, name string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, utils.NewValidationError(name)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, utils.NewAppError(utils.ErrInvalidInput, "invalid "+name, err)
	}
	return id, nil
}

func (s *Server) methodNotAllowed(w http.ResponseWriter) {
	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
}
