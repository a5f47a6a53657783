// internal/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"hivemind/internal/models"
	"hivemind/internal/utils"
	"hivemind/internal/vote"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// DBAdapter is the store interface every handler and actor talks to.
// Each call is individually atomic; ApplyVote is the one composite
// operation and runs inside a single transaction.
type DBAdapter interface {
	// Connection
	Close(ctx context.Context) error
	Ping(ctx context.Context) error

	// User methods
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpsertUser(ctx context.Context, user *models.User) error
	UpdateUserActivity(ctx context.Context, id uuid.UUID) error

	// Idea methods
	SaveIdea(ctx context.Context, idea *models.Idea) error
	GetIdea(ctx context.Context, id uuid.UUID, requestingUserID uuid.UUID) (*models.Idea, error)
	ListIdeas(ctx context.Context, viewerID uuid.UUID, limit, offset int) ([]*models.Idea, error)
	DeleteIdea(ctx context.Context, id uuid.UUID) error

	// Membership methods
	AddMembership(ctx context.Context, m *models.Membership) error
	GetMembership(ctx context.Context, ideaID, userID uuid.UUID) (*models.Membership, error)
	ListMembers(ctx context.Context, ideaID uuid.UUID) ([]*models.Membership, error)

	// Checklist methods
	SaveChecklist(ctx context.Context, cl *models.Checklist) error
	GetChecklist(ctx context.Context, id uuid.UUID) (*models.ChecklistWithItems, error)
	ListIdeaChecklists(ctx context.Context, ideaID uuid.UUID) ([]*models.ChecklistWithItems, error)
	DeleteChecklist(ctx context.Context, id uuid.UUID) error
	AddChecklistItem(ctx context.Context, item *models.ChecklistItem) error
	GetChecklistItem(ctx context.Context, id uuid.UUID) (*models.ChecklistItem, error)
	SetItemCompletion(ctx context.Context, itemID, actorID uuid.UUID, completed bool) (*models.ChecklistItem, error)
	DeleteChecklistItem(ctx context.Context, id uuid.UUID) error

	// Post methods
	SavePost(ctx context.Context, post *models.Post) error
	GetPost(ctx context.Context, id uuid.UUID, requestingUserID uuid.UUID) (*models.Post, error)
	GetRecentPosts(ctx context.Context, viewerID uuid.UUID, limit, offset int) ([]*models.Post, error)
	DeletePost(ctx context.Context, id uuid.UUID) error

	// Comment methods
	SaveComment(ctx context.Context, comment *models.Comment) error
	GetComment(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	GetSubjectComments(ctx context.Context, subjectID uuid.UUID, subjectType models.CommentSubjectType) ([]*models.Comment, error)
	DeleteComment(ctx context.Context, id uuid.UUID) error

	// Feature request methods
	SaveFeatureRequest(ctx context.Context, fr *models.FeatureRequest) error
	GetFeatureRequest(ctx context.Context, id uuid.UUID, requestingUserID uuid.UUID) (*models.FeatureRequest, error)
	ListFeatureRequests(ctx context.Context, requestingUserID uuid.UUID, limit, offset int) ([]*models.FeatureRequest, error)

	// Vote ledger
	ApplyVote(ctx context.Context, voterID, subjectID uuid.UUID, subjectType models.VoteSubjectType, requested models.VoteType) (*models.VoteResult, error)
	GetVote(ctx context.Context, voterID, subjectID uuid.UUID, subjectType models.VoteSubjectType) (*models.Vote, error)

	// Notification methods
	SaveNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, recipientID uuid.UUID, unreadOnly bool) ([]*models.Notification, error)
	MarkNotificationsRead(ctx context.Context, recipientID uuid.UUID, ids []uuid.UUID) error
}

// PostgresDB represents a PostgreSQL database connection
type PostgresDB struct {
	DB *sqlx.DB
}

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(connectionString string) (*PostgresDB, error) {
	db, err := sqlx.Connect("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %v", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping PostgreSQL: %v", err)
	}

	log.Println("Successfully connected to PostgreSQL!")

	return &PostgresDB{DB: db}, nil
}

// Close closes the database connection
func (p *PostgresDB) Close(ctx context.Context) error {
	log.Println("Closing PostgreSQL connection...")
	return p.DB.Close()
}

// Ping verifies the connection is still alive.
func (p *PostgresDB) Ping(ctx context.Context) error {
	return p.DB.PingContext(ctx)
}

// InitializeTables creates all necessary tables if they don't exist
func (p *PostgresDB) InitializeTables(ctx context.Context) error {
	statements := []struct {
		name  string
		query string
	}{
		{"users", `
			CREATE TABLE IF NOT EXISTS users (
				id UUID PRIMARY KEY,
				username VARCHAR(50) UNIQUE NOT NULL,
				email VARCHAR(100) UNIQUE NOT NULL,
				password_hash VARCHAR(100) NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
				last_active TIMESTAMP WITH TIME ZONE DEFAULT NOW()
			)
		`},
		{"ideas", `
			CREATE TABLE IF NOT EXISTS ideas (
				id UUID PRIMARY KEY,
				title VARCHAR(300) NOT NULL,
				description TEXT,
				creator_id UUID REFERENCES users(id),
				is_public BOOLEAN DEFAULT FALSE NOT NULL,
				status VARCHAR(20) DEFAULT 'open' NOT NULL,
				upvotes INTEGER DEFAULT 0,
				created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
			)
		`},
		{"idea_members", `
			CREATE TABLE IF NOT EXISTS idea_members (
				idea_id UUID REFERENCES ideas(id) ON DELETE CASCADE,
				user_id UUID REFERENCES users(id),
				role VARCHAR(20) NOT NULL,
				joined_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
				PRIMARY KEY (idea_id, user_id)
			)
		`},
		{"checklists", `
			CREATE TABLE IF NOT EXISTS checklists (
				id UUID PRIMARY KEY,
				idea_id UUID REFERENCES ideas(id) ON DELETE CASCADE,
				title VARCHAR(300) NOT NULL,
				creator_id UUID REFERENCES users(id),
				is_shared BOOLEAN DEFAULT FALSE NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
			)
		`},
		{"checklist_items", `
			CREATE TABLE IF NOT EXISTS checklist_items (
				id UUID PRIMARY KEY,
				checklist_id UUID REFERENCES checklists(id) ON DELETE CASCADE,
				item_text TEXT NOT NULL,
				position INTEGER NOT NULL,
				created_by UUID REFERENCES users(id),
				completed BOOLEAN DEFAULT FALSE NOT NULL,
				completed_by UUID REFERENCES users(id),
				completed_at TIMESTAMP WITH TIME ZONE,
				created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
			)
		`},
		{"posts", `
			CREATE TABLE IF NOT EXISTS posts (
				id UUID PRIMARY KEY,
				title VARCHAR(300) NOT NULL,
				content TEXT,
				creator_id UUID REFERENCES users(id),
				is_public BOOLEAN DEFAULT FALSE NOT NULL,
				upvotes INTEGER DEFAULT 0,
				comment_count INTEGER DEFAULT 0,
				created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
			)
		`},
		{"comments", `
			CREATE TABLE IF NOT EXISTS comments (
				id UUID PRIMARY KEY,
				content TEXT NOT NULL,
				author_id UUID REFERENCES users(id),
				subject_id UUID NOT NULL,
				subject_type VARCHAR(20) NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
			)
		`},
		{"feature_requests", `
			CREATE TABLE IF NOT EXISTS feature_requests (
				id UUID PRIMARY KEY,
				title VARCHAR(300) NOT NULL,
				description TEXT,
				creator_id UUID REFERENCES users(id),
				status VARCHAR(20) DEFAULT 'open' NOT NULL,
				upvotes INTEGER DEFAULT 0,
				created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
			)
		`},
		{"votes", `
			CREATE TABLE IF NOT EXISTS votes (
				id UUID PRIMARY KEY,
				voter_id UUID REFERENCES users(id),
				subject_id UUID NOT NULL,
				subject_type VARCHAR(20) NOT NULL,
				vote_type INTEGER NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
				UNIQUE(voter_id, subject_id, subject_type)
			)
		`},
		{"notifications", `
			CREATE TABLE IF NOT EXISTS notifications (
				id UUID PRIMARY KEY,
				recipient_id UUID REFERENCES users(id),
				actor_id UUID REFERENCES users(id),
				kind VARCHAR(20) NOT NULL,
				subject_id UUID NOT NULL,
				message TEXT NOT NULL,
				is_read BOOLEAN DEFAULT FALSE NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
			)
		`},
	}

	for _, stmt := range statements {
		if _, err := p.DB.ExecContext(ctx, stmt.query); err != nil {
			return fmt.Errorf("failed to create %s table: %v", stmt.name, err)
		}
	}
	return nil
}

// --- User Methods ---

// GetUser fetches a user by their ID.
func (p *PostgresDB) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT id, username, email, password_hash, created_at, updated_at, last_active FROM users WHERE id = $1`
	var user models.User
	err := p.DB.GetContext(ctx, &user, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, utils.NewAppError(utils.ErrUserNotFound, "user not found", err)
		}
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to query user by id", err)
	}
	return &user, nil
}

// GetUserByEmail fetches a user by their email address.
func (p *PostgresDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT id, username, email, password_hash, created_at, updated_at, last_active FROM users WHERE email = $1`
	var user models.User
	err := p.DB.GetContext(ctx, &user, query, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, utils.NewAppError(utils.ErrUserNotFound, "user not found", err)
		}
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to query user by email", err)
	}
	return &user, nil
}

// UpsertUser provisions the identity row idempotently: registering the
// same identity twice leaves the original row untouched.
func (p *PostgresDB) UpsertUser(ctx context.Context, user *models.User) error {
	now := time.Now()
	user.UpdatedAt = now
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.LastActive.IsZero() {
		user.LastActive = now
	}

	query := `
		INSERT INTO users (id, username, email, password_hash, created_at, updated_at, last_active)
		VALUES (:id, :username, :email, :password_hash, :created_at, :updated_at, :last_active)
		ON CONFLICT (id) DO UPDATE SET
			updated_at = EXCLUDED.updated_at,
			last_active = EXCLUDED.last_active
	`
	_, err := p.DB.NamedExecContext(ctx, query, user)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return utils.NewAppError(utils.ErrUserAlreadyExists, fmt.Sprintf("user already exists: %v", pqErr.Constraint), err)
		}
		return utils.NewAppError(utils.ErrDatabase, "failed to upsert user", err)
	}
	return nil
}

// UpdateUserActivity bumps the user's last active time.
func (p *PostgresDB) UpdateUserActivity(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE users SET last_active = NOW(), updated_at = NOW() WHERE id = $1`
	result, err := p.DB.ExecContext(ctx, query, id)
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to update user activity", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to get rows affected after update", err)
	}
	if rowsAffected == 0 {
		return utils.NewAppError(utils.ErrUserNotFound, "user not found for activity update", nil)
	}
	return nil
}

// --- Idea Methods ---

// SaveIdea inserts a new idea or updates the mutable fields of an
// existing one.
func (p *PostgresDB) SaveIdea(ctx context.Context, idea *models.Idea) error {
	idea.UpdatedAt = time.Now()
	if idea.CreatedAt.IsZero() {
		idea.CreatedAt = idea.UpdatedAt
	}

	query := `
		INSERT INTO ideas (id, title, description, creator_id, is_public, status, upvotes, created_at, updated_at)
		VALUES (:id, :title, :description, :creator_id, :is_public, :status, :upvotes, :created_at, :updated_at)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			is_public = EXCLUDED.is_public,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
	`
	// creator_id and upvotes are never overwritten on conflict

	if _, err := p.DB.NamedExecContext(ctx, query, idea); err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to save idea", err)
	}
	return nil
}

// GetIdea fetches an idea by ID and includes the requesting user's
// vote status.
func (p *PostgresDB) GetIdea(ctx context.Context, id uuid.UUID, requestingUserID uuid.UUID) (*models.Idea, error) {
	query := `SELECT
			i.id, i.title, i.description, i.creator_id, i.is_public, i.status,
			i.upvotes, i.created_at, i.updated_at,
			u.username AS creator_username
		FROM ideas i
		LEFT JOIN users u ON i.creator_id = u.id
		WHERE i.id = $1`
	var idea models.Idea
	err := p.DB.GetContext(ctx, &idea, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, utils.NewAppError(utils.ErrNotFound, "idea not found", err)
		}
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to query idea by id", err)
	}

	p.attachCurrentUserVote(ctx, requestingUserID, id, models.IdeaVote, &idea.CurrentUserVote)
	return &idea, nil
}

// ListIdeas returns ideas visible to the viewer: public ones plus the
// viewer's own and any they are a member of.
func (p *PostgresDB) ListIdeas(ctx context.Context, viewerID uuid.UUID, limit, offset int) ([]*models.Idea, error) {
	query := `
		SELECT DISTINCT
			i.id, i.title, i.description, i.creator_id, i.is_public, i.status,
			i.upvotes, i.created_at, i.updated_at,
			u.username AS creator_username
		FROM ideas i
		LEFT JOIN users u ON i.creator_id = u.id
		LEFT JOIN idea_members m ON m.idea_id = i.id AND m.user_id = $1
		WHERE i.is_public = TRUE OR i.creator_id = $1 OR m.user_id IS NOT NULL
		ORDER BY i.created_at DESC
		LIMIT $2 OFFSET $3
	`
	ideas := []*models.Idea{}
	if err := p.DB.SelectContext(ctx, &ideas, query, viewerID, limit, offset); err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to query ideas", err)
	}
	return ideas, nil
}

// DeleteIdea removes an idea; memberships, checklists and items
// cascade in the schema.
func (p *PostgresDB) DeleteIdea(ctx context.Context, id uuid.UUID) error {
	result, err := p.DB.ExecContext(ctx, `DELETE FROM ideas WHERE id = $1`, id)
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to delete idea", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return utils.NewAppError(utils.ErrNotFound, "idea not found", nil)
	}
	return nil
}

// --- Membership Methods ---

// AddMembership records a collaborator/assigned relation; re-adding an
// existing member updates the role.
func (p *PostgresDB) AddMembership(ctx context.Context, m *models.Membership) error {
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now()
	}
	query := `
		INSERT INTO idea_members (idea_id, user_id, role, joined_at)
		VALUES (:idea_id, :user_id, :role, :joined_at)
		ON CONFLICT (idea_id, user_id) DO UPDATE SET role = EXCLUDED.role
	`
	if _, err := p.DB.NamedExecContext(ctx, query, m); err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to add idea membership", err)
	}
	return nil
}

// GetMembership fetches the relation between a user and an idea, or
// ErrNotFound when none exists.
func (p *PostgresDB) GetMembership(ctx context.Context, ideaID, userID uuid.UUID) (*models.Membership, error) {
	query := `SELECT idea_id, user_id, role, joined_at FROM idea_members WHERE idea_id = $1 AND user_id = $2`
	var m models.Membership
	err := p.DB.GetContext(ctx, &m, query, ideaID, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, utils.NewAppError(utils.ErrNotFound, "membership not found", err)
		}
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to query membership", err)
	}
	return &m, nil
}

// ListMembers fetches all memberships for an idea.
func (p *PostgresDB) ListMembers(ctx context.Context, ideaID uuid.UUID) ([]*models.Membership, error) {
	query := `SELECT idea_id, user_id, role, joined_at FROM idea_members WHERE idea_id = $1 ORDER BY joined_at`
	members := []*models.Membership{}
	if err := p.DB.SelectContext(ctx, &members, query, ideaID); err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to query idea members", err)
	}
	return members, nil
}

// --- Checklist Methods ---

func (p *PostgresDB) SaveChecklist(ctx context.Context, cl *models.Checklist) error {
	cl.UpdatedAt = time.Now()
	if cl.CreatedAt.IsZero() {
		cl.CreatedAt = cl.UpdatedAt
	}
	query := `
		INSERT INTO checklists (id, idea_id, title, creator_id, is_shared, created_at, updated_at)
		VALUES (:id, :idea_id, :title, :creator_id, :is_shared, :created_at, :updated_at)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			is_shared = EXCLUDED.is_shared,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := p.DB.NamedExecContext(ctx, query, cl); err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to save checklist", err)
	}
	return nil
}

// GetChecklist fetches a checklist with its items; progress is derived
// from the items here, never read from a column.
func (p *PostgresDB) GetChecklist(ctx context.Context, id uuid.UUID) (*models.ChecklistWithItems, error) {
	query := `SELECT id, idea_id, title, creator_id, is_shared, created_at, updated_at FROM checklists WHERE id = $1`
	var cl models.Checklist
	err := p.DB.GetContext(ctx, &cl, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, utils.NewAppError(utils.ErrNotFound, "checklist not found", err)
		}
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to query checklist", err)
	}

	items, err := p.getChecklistItems(ctx, id)
	if err != nil {
		return nil, err
	}

	return &models.ChecklistWithItems{
		Checklist: cl,
		Items:     items,
		Progress:  models.Progress(items),
	}, nil
}

func (p *PostgresDB) getChecklistItems(ctx context.Context, checklistID uuid.UUID) ([]*models.ChecklistItem, error) {
	query := `
		SELECT id, checklist_id, item_text, position, created_by, completed, completed_by, completed_at, created_at
		FROM checklist_items
		WHERE checklist_id = $1
		ORDER BY position
	`
	items := []*models.ChecklistItem{}
	if err := p.DB.SelectContext(ctx, &items, query, checklistID); err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to query checklist items", err)
	}
	return items, nil
}

// ListIdeaChecklists fetches all checklists under an idea, each with
// items and derived progress.
func (p *PostgresDB) ListIdeaChecklists(ctx context.Context, ideaID uuid.UUID) ([]*models.ChecklistWithItems, error) {
	query := `SELECT id, idea_id, title, creator_id, is_shared, created_at, updated_at FROM checklists WHERE idea_id = $1 ORDER BY created_at`
	lists := []*models.Checklist{}
	if err := p.DB.SelectContext(ctx, &lists, query, ideaID); err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to query idea checklists", err)
	}

	result := make([]*models.ChecklistWithItems, 0, len(lists))
	for _, cl := range lists {
		items, err := p.getChecklistItems(ctx, cl.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, &models.ChecklistWithItems{
			Checklist: *cl,
			Items:     items,
			Progress:  models.Progress(items),
		})
	}
	return result, nil
}

func (p *PostgresDB) DeleteChecklist(ctx context.Context, id uuid.UUID) error {
	result, err := p.DB.ExecContext(ctx, `DELETE FROM checklists WHERE id = $1`, id)
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to delete checklist", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return utils.NewAppError(utils.ErrNotFound, "checklist not found", nil)
	}
	return nil
}

// AddChecklistItem inserts an item at the end of the list. Position is
// assigned inside the INSERT so concurrent adds cannot race a separate
// max-position read.
func (p *PostgresDB) AddChecklistItem(ctx context.Context, item *models.ChecklistItem) error {
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO checklist_items (id, checklist_id, item_text, position, created_by, completed, created_at)
		SELECT $1, $2, $3, COALESCE(MAX(position), 0) + 1, $4, FALSE, $5
		FROM checklist_items WHERE checklist_id = $2
		RETURNING position
	`
	err := p.DB.QueryRowxContext(ctx, query, item.ID, item.ChecklistID, item.Text, item.CreatedBy, item.CreatedAt).Scan(&item.Position)
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to insert checklist item", err)
	}
	return nil
}

func (p *PostgresDB) GetChecklistItem(ctx context.Context, id uuid.UUID) (*models.ChecklistItem, error) {
	query := `
		SELECT id, checklist_id, item_text, position, created_by, completed, completed_by, completed_at, created_at
		FROM checklist_items WHERE id = $1
	`
	var item models.ChecklistItem
	err := p.DB.GetContext(ctx, &item, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, utils.NewAppError(utils.ErrNotFound, "checklist item not found", err)
		}
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to query checklist item", err)
	}
	return &item, nil
}

// SetItemCompletion flips an item's completed flag. completed_by and
// completed_at are set and cleared in the same statement so the pair
// can never disagree with the flag.
func (p *PostgresDB) SetItemCompletion(ctx context.Context, itemID, actorID uuid.UUID, completed bool) (*models.ChecklistItem, error) {
	var query string
	if completed {
		query = `
			UPDATE checklist_items
			SET completed = TRUE, completed_by = $1, completed_at = NOW()
			WHERE id = $2
			RETURNING id, checklist_id, item_text, position, created_by, completed, completed_by, completed_at, created_at
		`
	} else {
		query = `
			UPDATE checklist_items
			SET completed = FALSE, completed_by = NULL, completed_at = NULL
			WHERE id = $2 AND $1 IS NOT NULL
			RETURNING id, checklist_id, item_text, position, created_by, completed, completed_by, completed_at, created_at
		`
	}
	var item models.ChecklistItem
	err := p.DB.GetContext(ctx, &item, query, actorID, itemID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, utils.NewAppError(utils.ErrNotFound, "checklist item not found", err)
		}
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to update checklist item", err)
	}
	return &item, nil
}

func (p *PostgresDB) DeleteChecklistItem(ctx context.Context, id uuid.UUID) error {
	result, err := p.DB.ExecContext(ctx, `DELETE FROM checklist_items WHERE id = $1`, id)
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to delete checklist item", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return utils.NewAppError(utils.ErrNotFound, "checklist item not found", nil)
	}
	return nil
}

// --- Post Methods ---

// SavePost inserts a new post or updates an existing one based on the ID.
func (p *PostgresDB) SavePost(ctx context.Context, post *models.Post) error {
	post.UpdatedAt = time.Now()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = post.UpdatedAt
	}

	query := `
		INSERT INTO posts (id, title, content, creator_id, is_public, upvotes, comment_count, created_at, updated_at)
		VALUES (:id, :title, :content, :creator_id, :is_public, :upvotes, :comment_count, :created_at, :updated_at)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			content = EXCLUDED.content,
			is_public = EXCLUDED.is_public,
			updated_at = EXCLUDED.updated_at
	`
	// creator_id, upvotes and comment_count are never overwritten on conflict

	if _, err := p.DB.NamedExecContext(ctx, query, post); err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to save post", err)
	}
	return nil
}

// GetPost fetches a post by its ID and includes the requesting user's
// vote status.
func (p *PostgresDB) GetPost(ctx context.Context, id uuid.UUID, requestingUserID uuid.UUID) (*models.Post, error) {
	query := `SELECT
			p.id, p.title, p.content, p.creator_id, p.is_public,
			p.upvotes, p.comment_count, p.created_at, p.updated_at,
			u.username AS creator_username
		FROM posts p
		LEFT JOIN users u ON p.creator_id = u.id
		WHERE p.id = $1`
	var post models.Post
	err := p.DB.GetContext(ctx, &post, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, utils.NewAppError(utils.ErrNotFound, "post not found", err)
		}
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to query post by id", err)
	}

	p.attachCurrentUserVote(ctx, requestingUserID, id, models.PostVote, &post.CurrentUserVote)
	return &post, nil
}

// GetRecentPosts retrieves the most recent posts visible to the
// viewer, including the viewer's vote status.
func (p *PostgresDB) GetRecentPosts(ctx context.Context, viewerID uuid.UUID, limit, offset int) ([]*models.Post, error) {
	query := `
		SELECT
			p.id, p.title, p.content, p.creator_id, p.is_public,
			p.upvotes, p.comment_count, p.created_at, p.updated_at,
			u.username AS creator_username,
			v.vote_type AS current_user_vote
		FROM posts p
		LEFT JOIN users u ON p.creator_id = u.id
		LEFT JOIN votes v ON v.subject_id = p.id AND v.voter_id = $3 AND v.subject_type = 'post'
		WHERE p.is_public = TRUE OR p.creator_id = $3
		ORDER BY p.created_at DESC
		LIMIT $1 OFFSET $2
	`
	posts := []*models.Post{}
	if err := p.DB.SelectContext(ctx, &posts, query, limit, offset, viewerID); err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to query recent posts", err)
	}
	return posts, nil
}

func (p *PostgresDB) DeletePost(ctx context.Context, id uuid.UUID) error {
	result, err := p.DB.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to delete post", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return utils.NewAppError(utils.ErrNotFound, "post not found", nil)
	}
	return nil
}

// --- Comment Methods ---

// SaveComment inserts or updates a comment. New comments on posts also
// bump the post's comment_count.
func (p *PostgresDB) SaveComment(ctx context.Context, comment *models.Comment) error {
	comment.UpdatedAt = time.Now()
	isNew := comment.CreatedAt.IsZero()
	if isNew {
		comment.CreatedAt = comment.UpdatedAt
	}

	tx, err := p.DB.BeginTxx(ctx, nil)
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to begin transaction", err)
	}
	defer tx.Rollback() // Rollback is ignored if tx is committed.

	query := `
		INSERT INTO comments (id, content, author_id, subject_id, subject_type, created_at, updated_at)
		VALUES (:id, :content, :author_id, :subject_id, :subject_type, :created_at, :updated_at)
		ON CONFLICT (id) DO UPDATE SET
			content = EXCLUDED.content,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := tx.NamedExecContext(ctx, query, comment); err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to save comment", err)
	}

	if isNew && comment.SubjectType == models.PostComment {
		if _, err := tx.ExecContext(ctx, `UPDATE posts SET comment_count = comment_count + 1 WHERE id = $1`, comment.SubjectID); err != nil {
			return utils.NewAppError(utils.ErrDatabase, "failed to bump post comment count", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to commit comment transaction", err)
	}
	return nil
}

func (p *PostgresDB) GetComment(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	query := `SELECT
			c.id, c.content, c.author_id, c.subject_id, c.subject_type, c.created_at, c.updated_at,
			u.username AS author_username
		FROM comments c
		LEFT JOIN users u ON c.author_id = u.id
		WHERE c.id = $1`
	var comment models.Comment
	err := p.DB.GetContext(ctx, &comment, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, utils.NewAppError(utils.ErrNotFound, "comment not found", err)
		}
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to query comment", err)
	}
	return &comment, nil
}

func (p *PostgresDB) GetSubjectComments(ctx context.Context, subjectID uuid.UUID, subjectType models.CommentSubjectType) ([]*models.Comment, error) {
	query := `SELECT
			c.id, c.content, c.author_id, c.subject_id, c.subject_type, c.created_at, c.updated_at,
			u.username AS author_username
		FROM comments c
		LEFT JOIN users u ON c.author_id = u.id
		WHERE c.subject_id = $1 AND c.subject_type = $2
		ORDER BY c.created_at`
	comments := []*models.Comment{}
	if err := p.DB.SelectContext(ctx, &comments, query, subjectID, subjectType); err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to query subject comments", err)
	}
	return comments, nil
}

// DeleteComment removes a comment and, for post comments, decrements
// the post's comment_count in the same transaction.
func (p *PostgresDB) DeleteComment(ctx context.Context, id uuid.UUID) error {
	tx, err := p.DB.BeginTxx(ctx, nil)
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to begin transaction", err)
	}
	defer tx.Rollback()

	var subjectID uuid.UUID
	var subjectType models.CommentSubjectType
	err = tx.QueryRowxContext(ctx, `DELETE FROM comments WHERE id = $1 RETURNING subject_id, subject_type`, id).Scan(&subjectID, &subjectType)
	if err != nil {
		if err == sql.ErrNoRows {
			return utils.NewAppError(utils.ErrNotFound, "comment not found", err)
		}
		return utils.NewAppError(utils.ErrDatabase, "failed to delete comment", err)
	}

	if subjectType == models.PostComment {
		if _, err := tx.ExecContext(ctx, `UPDATE posts SET comment_count = comment_count - 1 WHERE id = $1 AND comment_count > 0`, subjectID); err != nil {
			return utils.NewAppError(utils.ErrDatabase, "failed to decrement post comment count", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to commit comment deletion", err)
	}
	return nil
}

// --- Feature Request Methods ---

func (p *PostgresDB) SaveFeatureRequest(ctx context.Context, fr *models.FeatureRequest) error {
	fr.UpdatedAt = time.Now()
	if fr.CreatedAt.IsZero() {
		fr.CreatedAt = fr.UpdatedAt
	}
	query := `
		INSERT INTO feature_requests (id, title, description, creator_id, status, upvotes, created_at, updated_at)
		VALUES (:id, :title, :description, :creator_id, :status, :upvotes, :created_at, :updated_at)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := p.DB.NamedExecContext(ctx, query, fr); err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to save feature request", err)
	}
	return nil
}

func (p *PostgresDB) GetFeatureRequest(ctx context.Context, id uuid.UUID, requestingUserID uuid.UUID) (*models.FeatureRequest, error) {
	query := `SELECT
			f.id, f.title, f.description, f.creator_id, f.status, f.upvotes, f.created_at, f.updated_at,
			u.username AS creator_username
		FROM feature_requests f
		LEFT JOIN users u ON f.creator_id = u.id
		WHERE f.id = $1`
	var fr models.FeatureRequest
	err := p.DB.GetContext(ctx, &fr, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, utils.NewAppError(utils.ErrNotFound, "feature request not found", err)
		}
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to query feature request", err)
	}

	p.attachCurrentUserVote(ctx, requestingUserID, id, models.FeatureRequestVote, &fr.CurrentUserVote)
	return &fr, nil
}

func (p *PostgresDB) ListFeatureRequests(ctx context.Context, requestingUserID uuid.UUID, limit, offset int) ([]*models.FeatureRequest, error) {
	query := `
		SELECT
			f.id, f.title, f.description, f.creator_id, f.status, f.upvotes, f.created_at, f.updated_at,
			u.username AS creator_username,
			v.vote_type AS current_user_vote
		FROM feature_requests f
		LEFT JOIN users u ON f.creator_id = u.id
		LEFT JOIN votes v ON v.subject_id = f.id AND v.voter_id = $3 AND v.subject_type = 'feature_request'
		ORDER BY f.upvotes DESC, f.created_at DESC
		LIMIT $1 OFFSET $2
	`
	frs := []*models.FeatureRequest{}
	if err := p.DB.SelectContext(ctx, &frs, query, limit, offset, requestingUserID); err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to query feature requests", err)
	}
	return frs, nil
}

// --- Vote Ledger ---

var voteSubjectTables = map[models.VoteSubjectType]string{
	models.IdeaVote:           "ideas",
	models.PostVote:           "posts",
	models.FeatureRequestVote: "feature_requests",
}

// ApplyVote runs the whole ledger transition in one transaction: read
// the voter's existing row, resolve the tri-state outcome, adjust the
// subject's upvotes counter, and upsert or delete the vote row. The
// counter can therefore never drift from the signed sum of vote rows.
func (p *PostgresDB) ApplyVote(ctx context.Context, voterID, subjectID uuid.UUID, subjectType models.VoteSubjectType, requested models.VoteType) (*models.VoteResult, error) {
	table, ok := voteSubjectTables[subjectType]
	if !ok {
		return nil, utils.NewAppError(utils.ErrInvalidInput, "invalid vote subject type", nil)
	}

	tx, err := p.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to begin transaction", err)
	}
	defer tx.Rollback() // Rollback is ignored if tx is committed.

	// --- 1. Determine the voter's existing vote ---
	var existingVoteID uuid.UUID
	var existing *models.VoteType
	getVoteQuery := `SELECT id, vote_type FROM votes WHERE voter_id = $1 AND subject_id = $2 AND subject_type = $3 FOR UPDATE`
	var existingType models.VoteType
	err = tx.QueryRowxContext(ctx, getVoteQuery, voterID, subjectID, subjectType).Scan(&existingVoteID, &existingType)
	if err != nil && err != sql.ErrNoRows {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to check existing vote", err)
	}
	if err == nil {
		existing = &existingType
	}

	// --- 2. Resolve the transition ---
	outcome, err := vote.Resolve(existing, requested)
	if err != nil {
		return nil, err
	}

	// --- 3. Apply the counter delta ---
	updateQuery := fmt.Sprintf(`UPDATE %s SET upvotes = upvotes + $1, updated_at = NOW() WHERE id = $2 RETURNING upvotes`, table)
	var newUpvotes int
	err = tx.QueryRowxContext(ctx, updateQuery, outcome.Delta, subjectID).Scan(&newUpvotes)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, utils.NewAppError(utils.ErrNotFound, "vote subject not found", err)
		}
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to update subject upvotes", err)
	}

	// --- 4. Upsert or delete the vote row ---
	if outcome.Next == nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM votes WHERE id = $1`, existingVoteID); err != nil {
			return nil, utils.NewAppError(utils.ErrDatabase, "failed to delete vote record", err)
		}
	} else {
		voteID := existingVoteID
		if voteID == uuid.Nil {
			voteID = uuid.New()
		}
		upsertQuery := `
			INSERT INTO votes (id, voter_id, subject_id, subject_type, vote_type, created_at)
			VALUES ($1, $2, $3, $4, $5, NOW())
			ON CONFLICT (voter_id, subject_id, subject_type) DO UPDATE SET
				vote_type = EXCLUDED.vote_type,
				created_at = NOW()
		`
		if _, err := tx.ExecContext(ctx, upsertQuery, voteID, voterID, subjectID, subjectType, int(*outcome.Next)); err != nil {
			return nil, utils.NewAppError(utils.ErrDatabase, "failed to upsert vote record", err)
		}
	}

	// --- 5. Commit ---
	if err := tx.Commit(); err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to commit vote transaction", err)
	}

	return &models.VoteResult{Action: outcome.Action, Upvotes: newUpvotes}, nil
}

// GetVote fetches the voter's ledger row, or ErrNotFound when absent.
func (p *PostgresDB) GetVote(ctx context.Context, voterID, subjectID uuid.UUID, subjectType models.VoteSubjectType) (*models.Vote, error) {
	query := `SELECT id, voter_id, subject_id, subject_type, vote_type, created_at FROM votes WHERE voter_id = $1 AND subject_id = $2 AND subject_type = $3`
	var v models.Vote
	err := p.DB.GetContext(ctx, &v, query, voterID, subjectID, subjectType)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, utils.NewAppError(utils.ErrNotFound, "vote not found", err)
		}
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to query vote", err)
	}
	return &v, nil
}

// attachCurrentUserVote fills dst with the requesting user's vote on
// the subject, if any. Failures are logged and never fail the read.
func (p *PostgresDB) attachCurrentUserVote(ctx context.Context, requestingUserID, subjectID uuid.UUID, subjectType models.VoteSubjectType, dst **int) {
	if requestingUserID == uuid.Nil {
		return
	}
	var voteType sql.NullInt64
	query := `SELECT vote_type FROM votes WHERE voter_id = $1 AND subject_id = $2 AND subject_type = $3`
	err := p.DB.GetContext(ctx, &voteType, query, requestingUserID, subjectID, subjectType)
	if err != nil && err != sql.ErrNoRows {
		log.Printf("Error fetching vote status for user %s on %s %s: %v", requestingUserID, subjectType, subjectID, err)
		return
	}
	if err == nil && voteType.Valid {
		v := int(voteType.Int64)
		*dst = &v
	}
}

// --- Notification Methods ---

func (p *PostgresDB) SaveNotification(ctx context.Context, n *models.Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO notifications (id, recipient_id, actor_id, kind, subject_id, message, is_read, created_at)
		VALUES (:id, :recipient_id, :actor_id, :kind, :subject_id, :message, :is_read, :created_at)
	`
	if _, err := p.DB.NamedExecContext(ctx, query, n); err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to save notification", err)
	}
	return nil
}

func (p *PostgresDB) ListNotifications(ctx context.Context, recipientID uuid.UUID, unreadOnly bool) ([]*models.Notification, error) {
	query := `
		SELECT id, recipient_id, actor_id, kind, subject_id, message, is_read, created_at
		FROM notifications
		WHERE recipient_id = $1 AND ($2 = FALSE OR is_read = FALSE)
		ORDER BY created_at DESC
	`
	notifications := []*models.Notification{}
	if err := p.DB.SelectContext(ctx, &notifications, query, recipientID, unreadOnly); err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to query notifications", err)
	}
	return notifications, nil
}

// MarkNotificationsRead marks the given notifications read; an empty
// id list marks everything for the recipient.
func (p *PostgresDB) MarkNotificationsRead(ctx context.Context, recipientID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		_, err := p.DB.ExecContext(ctx, `UPDATE notifications SET is_read = TRUE WHERE recipient_id = $1`, recipientID)
		if err != nil {
			return utils.NewAppError(utils.ErrDatabase, "failed to mark notifications read", err)
		}
		return nil
	}

	query, args, err := sqlx.In(`UPDATE notifications SET is_read = TRUE WHERE recipient_id = ? AND id IN (?)`, recipientID, ids)
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to build notification update", err)
	}
	query = p.DB.Rebind(query)
	if _, err := p.DB.ExecContext(ctx, query, args...); err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to mark notifications read", err)
	}
	return nil
}
