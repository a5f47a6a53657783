// Package simulator drives a running server over HTTP with a
// population of synthetic users: registrations, ideas, checklists,
// posts, votes and comments, with activity skewed toward popular
// resources.
package simulator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

type SimConfig struct {
	NumUsers         int
	NumIdeas         int
	SimulationTime   time.Duration
	PostFrequency    float64 // posts per user per minute
	CommentFrequency float64
	VoteFrequency    float64
	ToggleFrequency  float64
	ZipfS            float64 // skew for popularity-weighted target picks
	ServerURL        string
}

type SimulationStats struct {
	mu               sync.RWMutex
	StartTime        time.Time
	TotalRequests    int64
	SuccessRequests  int64
	FailedRequests   int64
	TotalVotes       int64
	TotalComments    int64
	TotalToggles     int64
	RequestLatencies []time.Duration
}

func (st *SimulationStats) record(latency time.Duration, ok bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.TotalRequests++
	if ok {
		st.SuccessRequests++
	} else {
		st.FailedRequests++
	}
	st.RequestLatencies = append(st.RequestLatencies, latency)
}

// SimulatedUser carries the state one synthetic user accumulates.
type SimulatedUser struct {
	ID       uuid.UUID
	Username string
	Email    string
	Token    string
	Ideas    []uuid.UUID
	Posts    []uuid.UUID
}

type Simulator struct {
	config SimConfig
	stats  *SimulationStats
	users  []*SimulatedUser
	client *http.Client

	mu         sync.RWMutex
	ideas      []uuid.UUID
	posts      []uuid.UUID
	checklists []uuid.UUID
	items      []uuid.UUID
}

func NewSimulator(config SimConfig) *Simulator {
	return &Simulator{
		config: config,
		stats: &SimulationStats{
			StartTime:        time.Now(),
			RequestLatencies: make([]time.Duration, 0),
		},
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *Simulator) Run(ctx context.Context) error {
	log.Printf("Starting simulation: %d users, %d ideas, %s",
		s.config.NumUsers, s.config.NumIdeas, s.config.SimulationTime)

	if err := s.initialize(ctx); err != nil {
		return fmt.Errorf("initialization failed: %v", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, s.config.SimulationTime)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.simulateActivities(runCtx)
	}()
	go func() {
		defer wg.Done()
		s.reportProgress(runCtx)
	}()
	wg.Wait()

	s.printSummary()
	return nil
}

// initialize registers users, logs them in, and seeds ideas with
// checklists and posts.
func (s *Simulator) initialize(ctx context.Context) error {
	runID := rand.Intn(1_000_000)
	for i := 0; i < s.config.NumUsers; i++ {
		user := &SimulatedUser{
			Username: fmt.Sprintf("simuser_%d_%d", runID, i),
			Email:    fmt.Sprintf("simuser_%d_%d@example.com", runID, i),
		}

		var registered struct {
			ID uuid.UUID `json:"id"`
		}
		if err := s.call(ctx, "", http.MethodPost, "/user/register", map[string]interface{}{
			"username": user.Username,
			"email":    user.Email,
			"password": "simulation-pass",
		}, &registered); err != nil {
			return fmt.Errorf("register %s: %v", user.Username, err)
		}
		user.ID = registered.ID

		var login struct {
			Token string `json:"token"`
		}
		if err := s.call(ctx, "", http.MethodPost, "/user/login", map[string]interface{}{
			"email":    user.Email,
			"password": "simulation-pass",
		}, &login); err != nil {
			return fmt.Errorf("login %s: %v", user.Username, err)
		}
		user.Token = login.Token

		s.users = append(s.users, user)
	}
	log.Printf("Registered %d users", len(s.users))

	for i := 0; i < s.config.NumIdeas; i++ {
		owner := s.users[i%len(s.users)]

		var idea struct {
			ID uuid.UUID `json:"id"`
		}
		if err := s.call(ctx, owner.Token, http.MethodPost, "/idea", map[string]interface{}{
			"title":       fmt.Sprintf("Simulated idea %d", i),
			"description": "generated by the load simulator",
			"isPublic":    i%3 != 0, // every third idea private
		}, &idea); err != nil {
			return fmt.Errorf("create idea: %v", err)
		}
		owner.Ideas = append(owner.Ideas, idea.ID)
		s.ideas = append(s.ideas, idea.ID)

		// One shared checklist with a few items per idea.
		var cl struct {
			ID uuid.UUID `json:"id"`
		}
		if err := s.call(ctx, owner.Token, http.MethodPost, "/checklist", map[string]interface{}{
			"ideaId":   idea.ID.String(),
			"title":    "Launch tasks",
			"isShared": true,
		}, &cl); err != nil {
			return fmt.Errorf("create checklist: %v", err)
		}
		s.checklists = append(s.checklists, cl.ID)

		for j := 0; j < 4; j++ {
			var item struct {
				ID uuid.UUID `json:"id"`
			}
			if err := s.call(ctx, owner.Token, http.MethodPost, "/checklist/item", map[string]interface{}{
				"checklistId": cl.ID.String(),
				"text":        fmt.Sprintf("Task %d", j+1),
			}, &item); err != nil {
				return fmt.Errorf("create checklist item: %v", err)
			}
			s.items = append(s.items, item.ID)
		}

		// Add a collaborator and an assigned member so membership
		// paths get exercised.
		if len(s.users) > 2 {
			collab := s.users[rand.Intn(len(s.users))]
			assigned := s.users[rand.Intn(len(s.users))]
			for _, m := range []struct {
				user *SimulatedUser
				role string
			}{{collab, "collaborator"}, {assigned, "assigned"}} {
				if m.user.ID == owner.ID {
					continue
				}
				_ = s.call(ctx, owner.Token, http.MethodPost, "/idea/collaborator?ideaId="+idea.ID.String(), map[string]interface{}{
					"userId": m.user.ID.String(),
					"role":   m.role,
				}, nil)
			}
		}
	}
	log.Printf("Seeded %d ideas with checklists", len(s.ideas))
	return nil
}

// call performs one JSON request and records latency. out may be nil.
func (s *Simulator) call(ctx context.Context, token, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.config.ServerURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	latency := time.Since(start)
	if err != nil {
		s.stats.record(latency, false)
		return err
	}
	defer resp.Body.Close()

	ok := resp.StatusCode < 400
	s.stats.record(latency, ok)
	if !ok {
		payload, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, string(payload))
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (s *Simulator) reportProgress(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.stats.mu.RLock()
			log.Printf("Progress: %d requests (%d failed), %d votes, %d comments, %d toggles",
				s.stats.TotalRequests, s.stats.FailedRequests,
				s.stats.TotalVotes, s.stats.TotalComments, s.stats.TotalToggles)
			s.stats.mu.RUnlock()
		}
	}
}

func (s *Simulator) printSummary() {
	s.stats.mu.RLock()
	defer s.stats.mu.RUnlock()

	var total time.Duration
	for _, l := range s.stats.RequestLatencies {
		total += l
	}
	var avg time.Duration
	if len(s.stats.RequestLatencies) > 0 {
		avg = total / time.Duration(len(s.stats.RequestLatencies))
	}

	log.Printf("Simulation finished in %s", time.Since(s.stats.StartTime))
	log.Printf("  requests: %d (success %d, failed %d)",
		s.stats.TotalRequests, s.stats.SuccessRequests, s.stats.FailedRequests)
	log.Printf("  votes: %d, comments: %d, item toggles: %d",
		s.stats.TotalVotes, s.stats.TotalComments, s.stats.TotalToggles)
	log.Printf("  average latency: %s", avg)
}
