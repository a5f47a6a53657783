package simulator

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// simulateActivities runs one goroutine per user, each firing votes,
// comments, posts and checklist toggles at the configured rates until
// the context expires.
func (s *Simulator) simulateActivities(ctx context.Context) {
	var wg sync.WaitGroup
	for _, user := range s.users {
		wg.Add(1)
		go func(u *SimulatedUser) {
			defer wg.Done()
			s.runUser(ctx, u)
		}(user)
	}
	wg.Wait()
}

func (s *Simulator) runUser(ctx context.Context, user *SimulatedUser) {
	// Each user acts on a jittered interval so load is spread out.
	interval := time.Duration(float64(time.Minute) / (s.config.PostFrequency + s.config.CommentFrequency + s.config.VoteFrequency + s.config.ToggleFrequency))
	ticker := time.NewTicker(interval + time.Duration(rand.Int63n(int64(interval/2)+1)))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.performRandomAction(ctx, user)
		}
	}
}

func (s *Simulator) performRandomAction(ctx context.Context, user *SimulatedUser) {
	total := s.config.PostFrequency + s.config.CommentFrequency + s.config.VoteFrequency + s.config.ToggleFrequency
	roll := rand.Float64() * total

	switch {
	case roll < s.config.VoteFrequency:
		s.voteSomething(ctx, user)
	case roll < s.config.VoteFrequency+s.config.CommentFrequency:
		s.commentSomething(ctx, user)
	case roll < s.config.VoteFrequency+s.config.CommentFrequency+s.config.ToggleFrequency:
		s.toggleItem(ctx, user)
	default:
		s.createPost(ctx, user)
	}
}

// pickSkewed picks an index with popularity skew: low indexes get
// picked far more often, approximating a zipf-shaped interest curve.
func (s *Simulator) pickSkewed(n int) int {
	if n == 0 {
		return -1
	}
	z := rand.NewZipf(rand.New(rand.NewSource(rand.Int63())), s.config.ZipfS, 1, uint64(n-1))
	if z == nil {
		return rand.Intn(n)
	}
	return int(z.Uint64())
}

func (s *Simulator) voteSomething(ctx context.Context, user *SimulatedUser) {
	s.mu.RLock()
	var path string
	voteType := 1
	if rand.Float64() < 0.2 {
		voteType = -1
	}
	if len(s.posts) > 0 && rand.Float64() < 0.5 {
		idx := s.pickSkewed(len(s.posts))
		path = "/post/vote?postId=" + s.posts[idx].String()
	} else if len(s.ideas) > 0 {
		idx := s.pickSkewed(len(s.ideas))
		path = "/idea/vote?ideaId=" + s.ideas[idx].String()
	}
	s.mu.RUnlock()
	if path == "" {
		return
	}

	// Private targets legitimately refuse some voters.
	if err := s.call(ctx, user.Token, http.MethodPost, path, map[string]interface{}{"voteType": voteType}, nil); err == nil {
		s.stats.mu.Lock()
		s.stats.TotalVotes++
		s.stats.mu.Unlock()
	}
}

func (s *Simulator) commentSomething(ctx context.Context, user *SimulatedUser) {
	s.mu.RLock()
	var subjectID uuid.UUID
	if len(s.posts) > 0 {
		subjectID = s.posts[s.pickSkewed(len(s.posts))]
	}
	s.mu.RUnlock()
	if subjectID == uuid.Nil {
		return
	}

	err := s.call(ctx, user.Token, http.MethodPost, "/comment", map[string]interface{}{
		"content":     fmt.Sprintf("Comment from %s at %d", user.Username, time.Now().UnixNano()),
		"subjectId":   subjectID.String(),
		"subjectType": "post",
	}, nil)
	if err == nil {
		s.stats.mu.Lock()
		s.stats.TotalComments++
		s.stats.mu.Unlock()
	}
}

func (s *Simulator) toggleItem(ctx context.Context, user *SimulatedUser) {
	s.mu.RLock()
	var itemID uuid.UUID
	if len(s.items) > 0 {
		itemID = s.items[rand.Intn(len(s.items))]
	}
	s.mu.RUnlock()
	if itemID == uuid.Nil {
		return
	}

	err := s.call(ctx, user.Token, http.MethodPost, "/checklist/item/toggle", map[string]interface{}{
		"itemId":    itemID.String(),
		"completed": rand.Float64() < 0.7,
	}, nil)
	if err == nil {
		s.stats.mu.Lock()
		s.stats.TotalToggles++
		s.stats.mu.Unlock()
	}
}

func (s *Simulator) createPost(ctx context.Context, user *SimulatedUser) {
	var post struct {
		ID uuid.UUID `json:"id"`
	}
	err := s.call(ctx, user.Token, http.MethodPost, "/post", map[string]interface{}{
		"title":    fmt.Sprintf("Post by %s %d", user.Username, time.Now().UnixNano()),
		"content":  "generated by the load simulator",
		"isPublic": rand.Float64() < 0.8,
	}, &post)
	if err != nil {
		return
	}

	s.mu.Lock()
	user.Posts = append(user.Posts, post.ID)
	s.posts = append(s.posts, post.ID)
	s.mu.Unlock()
}
