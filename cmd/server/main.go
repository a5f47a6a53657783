package main

import (
	stdctx "context"
	"fmt"
	"log"
	"net/http"

	"hivemind/internal/config"
	"hivemind/internal/database"
	"hivemind/internal/engine"
	"hivemind/internal/handlers"
	"hivemind/internal/middleware"
	"hivemind/internal/utils"
	"hivemind/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	metrics := utils.NewMetricsCollector()

	// Pick the store adapter.
	var db database.DBAdapter
	switch cfg.Database.Type {
	case "memory":
		log.Println("Using in-memory store (DB_TYPE=memory)")
		db = database.NewMemoryDB()
	default:
		pg, err := database.NewPostgresDB(cfg.Database.URI)
		if err != nil {
			log.Fatalf("Failed to connect to PostgreSQL: %v", err)
		}
		if err := pg.InitializeTables(stdctx.Background()); err != nil {
			log.Fatalf("Failed to initialize tables: %v", err)
		}
		defer pg.Close(stdctx.Background())
		db = pg
	}

	// Notification push hub.
	hub := websocket.NewHub()
	go hub.Run()

	// Actor system and engine.
	system := actor.NewActorSystem()
	eng := engine.NewEngine(system, db, metrics, hub)

	tokens := middleware.NewTokenManager(cfg.JWTSecret)
	server := handlers.NewServer(system, eng, metrics, db, hub, tokens)

	corsConfig := middleware.DefaultCORSConfig(cfg.AllowedOrigins)

	// route wires CORS and JWT around a handler the same way for
	// every endpoint.
	route := func(path string, handler http.HandlerFunc) {
		http.HandleFunc(path, middleware.ApplyCORS(tokens.ApplyJWTMiddleware(handler, path), corsConfig))
	}

	route("/health", server.HandleHealth())

	route("/user/register", server.HandleUserRegistration())
	route("/user/login", server.HandleUserLogin())
	route("/user/profile", server.HandleUserProfile())

	route("/idea", server.HandleIdea())
	route("/ideas", server.HandleIdeas())
	route("/idea/vote", server.HandleIdeaVote())
	route("/idea/collaborator", server.HandleIdeaCollaborator())

	route("/checklist", server.HandleChecklist())
	route("/checklist/item", server.HandleChecklistItem())
	route("/checklist/item/toggle", server.HandleChecklistItemToggle())

	route("/post", server.HandlePost())
	route("/posts/recent", server.HandleRecentPosts())
	route("/post/vote", server.HandlePostVote())

	route("/comment", server.HandleComment())
	route("/comments", server.HandleComments())

	route("/feature-request", server.HandleFeatureRequest())
	route("/feature-requests", server.HandleFeatureRequests())
	route("/feature-request/vote", server.HandleFeatureRequestVote())
	route("/feature-request/status", server.HandleFeatureRequestStatus())

	route("/notifications", server.HandleNotifications())
	route("/notifications/read", server.HandleNotificationsRead())

	// The websocket endpoint authenticates itself via query token.
	http.HandleFunc("/ws", server.HandleWebSocket())

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Starting server on %s", serverAddr)
	if err := http.ListenAndServe(serverAddr, nil); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
