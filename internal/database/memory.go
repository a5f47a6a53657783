// internal/database/memory.go
package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"hivemind/internal/models"
	"hivemind/internal/utils"
	"hivemind/internal/vote"

	"github.com/google/uuid"
)

type memberKey struct {
	ideaID uuid.UUID
	userID uuid.UUID
}

type voteKey struct {
	voterID     uuid.UUID
	subjectID   uuid.UUID
	subjectType models.VoteSubjectType
}

// MemoryDB is an in-process DBAdapter used by tests and dev mode. A
// single mutex serializes every call, which gives each operation the
// same atomicity the Postgres adapter gets from transactions.
type MemoryDB struct {
	mu sync.Mutex

	users           map[uuid.UUID]*models.User
	ideas           map[uuid.UUID]*models.Idea
	members         map[memberKey]*models.Membership
	checklists      map[uuid.UUID]*models.Checklist
	items           map[uuid.UUID]*models.ChecklistItem
	posts           map[uuid.UUID]*models.Post
	comments        map[uuid.UUID]*models.Comment
	featureRequests map[uuid.UUID]*models.FeatureRequest
	votes           map[voteKey]*models.Vote
	notifications   map[uuid.UUID]*models.Notification
}

// NewMemoryDB creates an empty in-memory store.
func NewMemoryDB() *MemoryDB {
	return &MemoryDB{
		users:           make(map[uuid.UUID]*models.User),
		ideas:           make(map[uuid.UUID]*models.Idea),
		members:         make(map[memberKey]*models.Membership),
		checklists:      make(map[uuid.UUID]*models.Checklist),
		items:           make(map[uuid.UUID]*models.ChecklistItem),
		posts:           make(map[uuid.UUID]*models.Post),
		comments:        make(map[uuid.UUID]*models.Comment),
		featureRequests: make(map[uuid.UUID]*models.FeatureRequest),
		votes:           make(map[voteKey]*models.Vote),
		notifications:   make(map[uuid.UUID]*models.Notification),
	}
}

func (m *MemoryDB) Close(ctx context.Context) error { return nil }
func (m *MemoryDB) Ping(ctx context.Context) error  { return nil }

// --- User Methods ---

func (m *MemoryDB) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, utils.NewAppError(utils.ErrUserNotFound, "user not found", nil)
	}
	copied := *user
	return &copied, nil
}

func (m *MemoryDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, utils.NewAppError(utils.ErrUserNotFound, "user not found", nil)
}

func (m *MemoryDB) UpsertUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if existing, ok := m.users[user.ID]; ok {
		existing.UpdatedAt = now
		existing.LastActive = now
		*user = *existing
		return nil
	}
	for _, other := range m.users {
		if other.Email == user.Email || other.Username == user.Username {
			return utils.NewAppError(utils.ErrUserAlreadyExists, "user already exists", nil)
		}
	}

	user.UpdatedAt = now
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.LastActive.IsZero() {
		user.LastActive = now
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *MemoryDB) UpdateUserActivity(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return utils.NewAppError(utils.ErrUserNotFound, "user not found for activity update", nil)
	}
	user.LastActive = time.Now()
	user.UpdatedAt = user.LastActive
	return nil
}

// --- Idea Methods ---

func (m *MemoryDB) SaveIdea(ctx context.Context, idea *models.Idea) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idea.UpdatedAt = time.Now()
	if idea.CreatedAt.IsZero() {
		idea.CreatedAt = idea.UpdatedAt
	}
	if existing, ok := m.ideas[idea.ID]; ok {
		// creator and counter survive updates
		idea.CreatorID = existing.CreatorID
		idea.Upvotes = existing.Upvotes
		idea.CreatedAt = existing.CreatedAt
	}
	copied := *idea
	m.ideas[idea.ID] = &copied
	return nil
}

func (m *MemoryDB) GetIdea(ctx context.Context, id uuid.UUID, requestingUserID uuid.UUID) (*models.Idea, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idea, ok := m.ideas[id]
	if !ok {
		return nil, utils.NewAppError(utils.ErrNotFound, "idea not found", nil)
	}
	copied := *idea
	m.decorateIdea(&copied, requestingUserID)
	return &copied, nil
}

func (m *MemoryDB) decorateIdea(idea *models.Idea, viewerID uuid.UUID) {
	if creator, ok := m.users[idea.CreatorID]; ok {
		idea.CreatorUsername = creator.Username
	}
	if v, ok := m.votes[voteKey{viewerID, idea.ID, models.IdeaVote}]; ok {
		vt := int(v.VoteType)
		idea.CurrentUserVote = &vt
	}
}

func (m *MemoryDB) ListIdeas(ctx context.Context, viewerID uuid.UUID, limit, offset int) ([]*models.Idea, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	visible := []*models.Idea{}
	for _, idea := range m.ideas {
		_, isMember := m.members[memberKey{idea.ID, viewerID}]
		if idea.IsPublic || idea.CreatorID == viewerID || isMember {
			copied := *idea
			m.decorateIdea(&copied, viewerID)
			visible = append(visible, &copied)
		}
	}
	sort.Slice(visible, func(i, j int) bool {
		return visible[i].CreatedAt.After(visible[j].CreatedAt)
	})
	return paginate(visible, limit, offset), nil
}

func (m *MemoryDB) DeleteIdea(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.ideas[id]; !ok {
		return utils.NewAppError(utils.ErrNotFound, "idea not found", nil)
	}
	delete(m.ideas, id)
	for key := range m.members {
		if key.ideaID == id {
			delete(m.members, key)
		}
	}
	for clID, cl := range m.checklists {
		if cl.IdeaID == id {
			m.deleteChecklistLocked(clID)
		}
	}
	return nil
}

// --- Membership Methods ---

func (m *MemoryDB) AddMembership(ctx context.Context, membership *models.Membership) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if membership.JoinedAt.IsZero() {
		membership.JoinedAt = time.Now()
	}
	copied := *membership
	m.members[memberKey{membership.IdeaID, membership.UserID}] = &copied
	return nil
}

func (m *MemoryDB) GetMembership(ctx context.Context, ideaID, userID uuid.UUID) (*models.Membership, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	membership, ok := m.members[memberKey{ideaID, userID}]
	if !ok {
		return nil, utils.NewAppError(utils.ErrNotFound, "membership not found", nil)
	}
	copied := *membership
	return &copied, nil
}

func (m *MemoryDB) ListMembers(ctx context.Context, ideaID uuid.UUID) ([]*models.Membership, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	members := []*models.Membership{}
	for key, membership := range m.members {
		if key.ideaID == ideaID {
			copied := *membership
			members = append(members, &copied)
		}
	}
	sort.Slice(members, func(i, j int) bool {
		return members[i].JoinedAt.Before(members[j].JoinedAt)
	})
	return members, nil
}

// --- Checklist Methods ---

func (m *MemoryDB) SaveChecklist(ctx context.Context, cl *models.Checklist) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cl.UpdatedAt = time.Now()
	if cl.CreatedAt.IsZero() {
		cl.CreatedAt = cl.UpdatedAt
	}
	if existing, ok := m.checklists[cl.ID]; ok {
		cl.CreatorID = existing.CreatorID
		cl.IdeaID = existing.IdeaID
		cl.CreatedAt = existing.CreatedAt
	}
	copied := *cl
	m.checklists[cl.ID] = &copied
	return nil
}

func (m *MemoryDB) GetChecklist(ctx context.Context, id uuid.UUID) (*models.ChecklistWithItems, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cl, ok := m.checklists[id]
	if !ok {
		return nil, utils.NewAppError(utils.ErrNotFound, "checklist not found", nil)
	}
	return m.checklistWithItemsLocked(cl), nil
}

func (m *MemoryDB) checklistWithItemsLocked(cl *models.Checklist) *models.ChecklistWithItems {
	items := []*models.ChecklistItem{}
	for _, item := range m.items {
		if item.ChecklistID == cl.ID {
			copied := *item
			items = append(items, &copied)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Position < items[j].Position })
	return &models.ChecklistWithItems{
		Checklist: *cl,
		Items:     items,
		Progress:  models.Progress(items),
	}
}

func (m *MemoryDB) ListIdeaChecklists(ctx context.Context, ideaID uuid.UUID) ([]*models.ChecklistWithItems, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lists := []*models.ChecklistWithItems{}
	for _, cl := range m.checklists {
		if cl.IdeaID == ideaID {
			lists = append(lists, m.checklistWithItemsLocked(cl))
		}
	}
	sort.Slice(lists, func(i, j int) bool {
		return lists[i].CreatedAt.Before(lists[j].CreatedAt)
	})
	return lists, nil
}

func (m *MemoryDB) DeleteChecklist(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.checklists[id]; !ok {
		return utils.NewAppError(utils.ErrNotFound, "checklist not found", nil)
	}
	m.deleteChecklistLocked(id)
	return nil
}

func (m *MemoryDB) deleteChecklistLocked(id uuid.UUID) {
	delete(m.checklists, id)
	for itemID, item := range m.items {
		if item.ChecklistID == id {
			delete(m.items, itemID)
		}
	}
}

func (m *MemoryDB) AddChecklistItem(ctx context.Context, item *models.ChecklistItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.checklists[item.ChecklistID]; !ok {
		return utils.NewAppError(utils.ErrNotFound, "checklist not found", nil)
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	maxPos := 0
	for _, other := range m.items {
		if other.ChecklistID == item.ChecklistID && other.Position > maxPos {
			maxPos = other.Position
		}
	}
	item.Position = maxPos + 1
	item.Completed = false
	copied := *item
	m.items[item.ID] = &copied
	return nil
}

func (m *MemoryDB) GetChecklistItem(ctx context.Context, id uuid.UUID) (*models.ChecklistItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return nil, utils.NewAppError(utils.ErrNotFound, "checklist item not found", nil)
	}
	copied := *item
	return &copied, nil
}

func (m *MemoryDB) SetItemCompletion(ctx context.Context, itemID, actorID uuid.UUID, completed bool) (*models.ChecklistItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[itemID]
	if !ok {
		return nil, utils.NewAppError(utils.ErrNotFound, "checklist item not found", nil)
	}
	if completed {
		now := time.Now()
		by := actorID
		item.Completed = true
		item.CompletedBy = &by
		item.CompletedAt = &now
	} else {
		item.Completed = false
		item.CompletedBy = nil
		item.CompletedAt = nil
	}
	copied := *item
	return &copied, nil
}

func (m *MemoryDB) DeleteChecklistItem(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return utils.NewAppError(utils.ErrNotFound, "checklist item not found", nil)
	}
	delete(m.items, id)
	return nil
}

// --- Post Methods ---

func (m *MemoryDB) SavePost(ctx context.Context, post *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	post.UpdatedAt = time.Now()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = post.UpdatedAt
	}
	if existing, ok := m.posts[post.ID]; ok {
		post.CreatorID = existing.CreatorID
		post.Upvotes = existing.Upvotes
		post.CommentCount = existing.CommentCount
		post.CreatedAt = existing.CreatedAt
	}
	copied := *post
	m.posts[post.ID] = &copied
	return nil
}

func (m *MemoryDB) GetPost(ctx context.Context, id uuid.UUID, requestingUserID uuid.UUID) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	post, ok := m.posts[id]
	if !ok {
		return nil, utils.NewAppError(utils.ErrNotFound, "post not found", nil)
	}
	copied := *post
	m.decoratePost(&copied, requestingUserID)
	return &copied, nil
}

func (m *MemoryDB) decoratePost(post *models.Post, viewerID uuid.UUID) {
	if creator, ok := m.users[post.CreatorID]; ok {
		post.CreatorUsername = creator.Username
	}
	if v, ok := m.votes[voteKey{viewerID, post.ID, models.PostVote}]; ok {
		vt := int(v.VoteType)
		post.CurrentUserVote = &vt
	}
}

func (m *MemoryDB) GetRecentPosts(ctx context.Context, viewerID uuid.UUID, limit, offset int) ([]*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	visible := []*models.Post{}
	for _, post := range m.posts {
		if post.IsPublic || post.CreatorID == viewerID {
			copied := *post
			m.decoratePost(&copied, viewerID)
			visible = append(visible, &copied)
		}
	}
	sort.Slice(visible, func(i, j int) bool {
		return visible[i].CreatedAt.After(visible[j].CreatedAt)
	})
	return paginate(visible, limit, offset), nil
}

func (m *MemoryDB) DeletePost(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[id]; !ok {
		return utils.NewAppError(utils.ErrNotFound, "post not found", nil)
	}
	delete(m.posts, id)
	return nil
}

// --- Comment Methods ---

func (m *MemoryDB) SaveComment(ctx context.Context, comment *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	comment.UpdatedAt = time.Now()
	isNew := comment.CreatedAt.IsZero()
	if isNew {
		comment.CreatedAt = comment.UpdatedAt
	}
	if existing, ok := m.comments[comment.ID]; ok {
		comment.AuthorID = existing.AuthorID
		comment.SubjectID = existing.SubjectID
		comment.SubjectType = existing.SubjectType
		comment.CreatedAt = existing.CreatedAt
		isNew = false
	}
	copied := *comment
	m.comments[comment.ID] = &copied

	if isNew && comment.SubjectType == models.PostComment {
		if post, ok := m.posts[comment.SubjectID]; ok {
			post.CommentCount++
		}
	}
	return nil
}

func (m *MemoryDB) GetComment(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	comment, ok := m.comments[id]
	if !ok {
		return nil, utils.NewAppError(utils.ErrNotFound, "comment not found", nil)
	}
	copied := *comment
	if author, ok := m.users[copied.AuthorID]; ok {
		copied.AuthorUsername = author.Username
	}
	return &copied, nil
}

func (m *MemoryDB) GetSubjectComments(ctx context.Context, subjectID uuid.UUID, subjectType models.CommentSubjectType) ([]*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	comments := []*models.Comment{}
	for _, comment := range m.comments {
		if comment.SubjectID == subjectID && comment.SubjectType == subjectType {
			copied := *comment
			if author, ok := m.users[copied.AuthorID]; ok {
				copied.AuthorUsername = author.Username
			}
			comments = append(comments, &copied)
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
	return comments, nil
}

func (m *MemoryDB) DeleteComment(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	comment, ok := m.comments[id]
	if !ok {
		return utils.NewAppError(utils.ErrNotFound, "comment not found", nil)
	}
	delete(m.comments, id)
	if comment.SubjectType == models.PostComment {
		if post, ok := m.posts[comment.SubjectID]; ok && post.CommentCount > 0 {
			post.CommentCount--
		}
	}
	return nil
}

// --- Feature Request Methods ---

func (m *MemoryDB) SaveFeatureRequest(ctx context.Context, fr *models.FeatureRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	fr.UpdatedAt = time.Now()
	if fr.CreatedAt.IsZero() {
		fr.CreatedAt = fr.UpdatedAt
	}
	if existing, ok := m.featureRequests[fr.ID]; ok {
		fr.CreatorID = existing.CreatorID
		fr.Upvotes = existing.Upvotes
		fr.CreatedAt = existing.CreatedAt
	}
	copied := *fr
	m.featureRequests[fr.ID] = &copied
	return nil
}

func (m *MemoryDB) GetFeatureRequest(ctx context.Context, id uuid.UUID, requestingUserID uuid.UUID) (*models.FeatureRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fr, ok := m.featureRequests[id]
	if !ok {
		return nil, utils.NewAppError(utils.ErrNotFound, "feature request not found", nil)
	}
	copied := *fr
	m.decorateFeatureRequest(&copied, requestingUserID)
	return &copied, nil
}

func (m *MemoryDB) decorateFeatureRequest(fr *models.FeatureRequest, viewerID uuid.UUID) {
	if creator, ok := m.users[fr.CreatorID]; ok {
		fr.CreatorUsername = creator.Username
	}
	if v, ok := m.votes[voteKey{viewerID, fr.ID, models.FeatureRequestVote}]; ok {
		vt := int(v.VoteType)
		fr.CurrentUserVote = &vt
	}
}

func (m *MemoryDB) ListFeatureRequests(ctx context.Context, requestingUserID uuid.UUID, limit, offset int) ([]*models.FeatureRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	frs := []*models.FeatureRequest{}
	for _, fr := range m.featureRequests {
		copied := *fr
		m.decorateFeatureRequest(&copied, requestingUserID)
		frs = append(frs, &copied)
	}
	sort.Slice(frs, func(i, j int) bool {
		if frs[i].Upvotes != frs[j].Upvotes {
			return frs[i].Upvotes > frs[j].Upvotes
		}
		return frs[i].CreatedAt.After(frs[j].CreatedAt)
	})
	return paginate(frs, limit, offset), nil
}

// --- Vote Ledger ---

// ApplyVote mirrors the Postgres transaction: resolve the transition
// against the existing ledger row, adjust the counter, and mutate the
// row, all under the store mutex.
func (m *MemoryDB) ApplyVote(ctx context.Context, voterID, subjectID uuid.UUID, subjectType models.VoteSubjectType, requested models.VoteType) (*models.VoteResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	counter, err := m.voteCounterLocked(subjectID, subjectType)
	if err != nil {
		return nil, err
	}

	key := voteKey{voterID, subjectID, subjectType}
	var existing *models.VoteType
	if row, ok := m.votes[key]; ok {
		vt := row.VoteType
		existing = &vt
	}

	outcome, err := vote.Resolve(existing, requested)
	if err != nil {
		return nil, err
	}

	*counter += outcome.Delta
	if outcome.Next == nil {
		delete(m.votes, key)
	} else {
		m.votes[key] = &models.Vote{
			ID:          uuid.New(),
			VoterID:     voterID,
			SubjectID:   subjectID,
			SubjectType: subjectType,
			VoteType:    *outcome.Next,
			CreatedAt:   time.Now(),
		}
	}

	return &models.VoteResult{Action: outcome.Action, Upvotes: *counter}, nil
}

func (m *MemoryDB) voteCounterLocked(subjectID uuid.UUID, subjectType models.VoteSubjectType) (*int, error) {
	switch subjectType {
	case models.IdeaVote:
		if idea, ok := m.ideas[subjectID]; ok {
			return &idea.Upvotes, nil
		}
	case models.PostVote:
		if post, ok := m.posts[subjectID]; ok {
			return &post.Upvotes, nil
		}
	case models.FeatureRequestVote:
		if fr, ok := m.featureRequests[subjectID]; ok {
			return &fr.Upvotes, nil
		}
	default:
		return nil, utils.NewAppError(utils.ErrInvalidInput, "invalid vote subject type", nil)
	}
	return nil, utils.NewAppError(utils.ErrNotFound, "vote subject not found", nil)
}

func (m *MemoryDB) GetVote(ctx context.Context, voterID, subjectID uuid.UUID, subjectType models.VoteSubjectType) (*models.Vote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.votes[voteKey{voterID, subjectID, subjectType}]
	if !ok {
		return nil, utils.NewAppError(utils.ErrNotFound, "vote not found", nil)
	}
	copied := *row
	return &copied, nil
}

// --- Notification Methods ---

func (m *MemoryDB) SaveNotification(ctx context.Context, n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	copied := *n
	m.notifications[n.ID] = &copied
	return nil
}

func (m *MemoryDB) ListNotifications(ctx context.Context, recipientID uuid.UUID, unreadOnly bool) ([]*models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := []*models.Notification{}
	for _, n := range m.notifications {
		if n.RecipientID != recipientID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		copied := *n
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (m *MemoryDB) MarkNotificationsRead(ctx context.Context, recipientID uuid.UUID, ids []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(ids) == 0 {
		for _, n := range m.notifications {
			if n.RecipientID == recipientID {
				n.IsRead = true
			}
		}
		return nil
	}
	for _, id := range ids {
		if n, ok := m.notifications[id]; ok && n.RecipientID == recipientID {
			n.IsRead = true
		}
	}
	return nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
