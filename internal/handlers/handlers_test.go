package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"hivemind/internal/database"
	"hivemind/internal/engine"
	"hivemind/internal/middleware"
	"hivemind/internal/models"
	"hivemind/internal/utils"
	"hivemind/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer wires the full in-process stack: memory store, actor
// system, notification hub and JWT middleware, routed the same way
// cmd/server does.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	db := database.NewMemoryDB()
	metrics := utils.NewMetricsCollector()
	hub := websocket.NewHub()
	go hub.Run()

	system := actor.NewActorSystem()
	eng := engine.NewEngine(system, db, metrics, hub)
	tokens := middleware.NewTokenManager("test-secret")
	server := NewServer(system, eng, metrics, db, hub, tokens)

	mux := http.NewServeMux()
	route := func(path string, handler http.HandlerFunc) {
		mux.HandleFunc(path, tokens.ApplyJWTMiddleware(handler, path))
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
	route("/comment", server.HandleComment())
	route("/comments", server.HandleComments())
	route("/notifications", server.HandleNotifications())

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

// call issues a JSON request and decodes the response body into out
// when out is non-nil. It returns the response status code.
func call(t *testing.T, ts *httptest.Server, token, method, path string, body, out interface{}) int {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < http.StatusMultipleChoices {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func registerAndLogin(t *testing.T, ts *httptest.Server, name string) (string, *models.User) {
	t.Helper()

	var user models.User
	status := call(t, ts, "", http.MethodPost, "/user/register", RegisterUserRequest{
		Username: name,
		Email:    name + "@example.com",
		Password: "password123",
	}, &user)
	require.Equal(t, http.StatusCreated, status)

	var login LoginResponse
	status = call(t, ts, "", http.MethodPost, "/user/login", LoginRequest{
		Email:    name + "@example.com",
		Password: "password123",
	}, &login)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, login.Token)

	return login.Token, login.User
}

func TestRegisterLoginAndVoteFlow(t *testing.T) {
	ts := newTestServer(t)

	creatorToken, _ := registerAndLogin(t, ts, "creator")
	voterToken, _ := registerAndLogin(t, ts, "voter")

	var idea models.Idea
	status := call(t, ts, creatorToken, http.MethodPost, "/idea", CreateIdeaRequest{
		Title:       "build the thing",
		Description: "a thing worth building",
		IsPublic:    true,
	}, &idea)
	require.Equal(t, http.StatusCreated, status)
	require.NotEqual(t, "", idea.ID.String())
	assert.Equal(t, 0, idea.Upvotes)

	votePath := fmt.Sprintf("/idea/vote?ideaId=%s", idea.ID)

	var result models.VoteResult
	status = call(t, ts, voterToken, http.MethodPost, votePath, VoteRequest{VoteType: models.VoteUp}, &result)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.VoteCreated, result.Action)
	assert.Equal(t, 1, result.Upvotes)

	// Same vote again toggles it off.
	status = call(t, ts, voterToken, http.MethodPost, votePath, VoteRequest{VoteType: models.VoteUp}, &result)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.VoteRemoved, result.Action)
	assert.Equal(t, 0, result.Upvotes)

	// A downvote from zero lands at -1.
	status = call(t, ts, voterToken, http.MethodPost, votePath, VoteRequest{VoteType: models.VoteDown}, &result)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.VoteCreated, result.Action)
	assert.Equal(t, -1, result.Upvotes)

	// Voting requires a token.
	status = call(t, ts, "", http.MethodPost, votePath, VoteRequest{VoteType: models.VoteUp}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestIdeaVisibilityOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	creatorToken, _ := registerAndLogin(t, ts, "owner")
	strangerToken, _ := registerAndLogin(t, ts, "stranger")

	var public, private models.Idea
	status := call(t, ts, creatorToken, http.MethodPost, "/idea", CreateIdeaRequest{
		Title: "public idea", IsPublic: true,
	}, &public)
	require.Equal(t, http.StatusCreated, status)
	status = call(t, ts, creatorToken, http.MethodPost, "/idea", CreateIdeaRequest{
		Title: "private idea", IsPublic: false,
	}, &private)
	require.Equal(t, http.StatusCreated, status)

	// Anonymous GET works on the public idea, not the private one.
	var fetched models.Idea
	status = call(t, ts, "", http.MethodGet, "/idea?ideaId="+public.ID.String(), nil, &fetched)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, public.ID, fetched.ID)

	status = call(t, ts, "", http.MethodGet, "/idea?ideaId="+private.ID.String(), nil, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status = call(t, ts, strangerToken, http.MethodGet, "/idea?ideaId="+private.ID.String(), nil, nil)
	assert.Equal(t, http.StatusForbidden, status)

	// Listing reflects the same policy.
	var anonList, ownerList []*models.Idea
	status = call(t, ts, "", http.MethodGet, "/ideas", nil, &anonList)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, anonList, 1)

	status = call(t, ts, creatorToken, http.MethodGet, "/ideas", nil, &ownerList)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, ownerList, 2)

	// Writes stay locked behind authentication.
	status = call(t, ts, "", http.MethodPost, "/idea", CreateIdeaRequest{Title: "nope"}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestChecklistFlowOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	creatorToken, _ := registerAndLogin(t, ts, "lead")

	var idea models.Idea
	status := call(t, ts, creatorToken, http.MethodPost, "/idea", CreateIdeaRequest{
		Title: "roadmap", IsPublic: false,
	}, &idea)
	require.Equal(t, http.StatusCreated, status)

	var cl models.ChecklistWithItems
	status = call(t, ts, creatorToken, http.MethodPost, "/checklist", CreateChecklistRequest{
		IdeaID:   idea.ID.String(),
		Title:    "launch tasks",
		IsShared: true,
	}, &cl)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, 0, cl.Progress)

	var items [3]models.ChecklistItem
	for i := range items {
		status = call(t, ts, creatorToken, http.MethodPost, "/checklist/item", AddChecklistItemRequest{
			ChecklistID: cl.ID.String(),
			Text:        fmt.Sprintf("task %d", i+1),
		}, &items[i])
		require.Equal(t, http.StatusCreated, status)
		assert.Equal(t, i+1, items[i].Position)
	}

	status = call(t, ts, creatorToken, http.MethodPost, "/checklist/item/toggle", ToggleItemRequest{
		ItemID:    items[0].ID.String(),
		Completed: true,
	}, nil)
	require.Equal(t, http.StatusOK, status)

	var after models.ChecklistWithItems
	status = call(t, ts, creatorToken, http.MethodGet, "/checklist?checklistId="+cl.ID.String(), nil, &after)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 33, after.Progress)
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)

	var health HealthResponse
	status := call(t, ts, "", http.MethodGet, "/health", nil, &health)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "ok", health.Database)
}
