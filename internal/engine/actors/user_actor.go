package actors

import (
	stdctx "context"
	"log"
	"time"

	"hivemind/internal/database"
	"hivemind/internal/models"
	"hivemind/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Message types for UserActor
type (
	RegisterUserMsg struct {
		// ID is optional; clients that provision identities from an
		// external provider pass their own stable ID and re-registering
		// it is a no-op.
		ID       uuid.UUID `json:"id,omitempty"`
		Username string    `json:"username"`
		Email    string    `json:"email"`
		Password string    `json:"password"`
	}

	LoginMsg struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	GetUserProfileMsg struct {
		UserID uuid.UUID `json:"userId"`
	}
)

// UserActor owns identity: registration, credential checks and
// profile reads. Token signing stays in the HTTP layer.
type UserActor struct {
	db      database.DBAdapter
	metrics *utils.MetricsCollector
}

func NewUserActor(db database.DBAdapter, metrics *utils.MetricsCollector) actor.Actor {
	return &UserActor{db: db, metrics: metrics}
}

func (a *UserActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		log.Printf("UserActor started with PID: %v", context.Self())

	case *RegisterUserMsg:
		a.handleRegisterUser(context, msg)

	case *LoginMsg:
		a.handleLogin(context, msg)

	case *GetUserProfileMsg:
		a.handleGetProfile(context, msg)

	default:
		log.Printf("UserActor: Unknown message type %T", msg)
	}
}

func (a *UserActor) handleRegisterUser(context actor.Context, msg *RegisterUserMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	if msg.Username == "" {
		context.Respond(utils.NewValidationError("username"))
		return
	}
	if msg.Email == "" {
		context.Respond(utils.NewValidationError("email"))
		return
	}
	if len(msg.Password) < 8 {
		context.Respond(utils.NewAppError(utils.ErrInvalidInput, "password must be at least 8 characters", nil))
		return
	}

	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(msg.Password), bcrypt.DefaultCost)
	if err != nil {
		context.Respond(utils.NewAppError(utils.ErrInvalidInput, "failed to hash password", err))
		return
	}

	id := msg.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	user := &models.User{
		ID:             id,
		Username:       msg.Username,
		Email:          msg.Email,
		HashedPassword: string(hashedBytes),
	}

	if err := a.db.UpsertUser(ctx, user); err != nil {
		context.Respond(err)
		return
	}

	a.metrics.AddOperationLatency("register_user", time.Since(startTime))
	context.Respond(user)
}

func (a *UserActor) handleLogin(context actor.Context, msg *LoginMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	user, err := a.db.GetUserByEmail(ctx, msg.Email)
	if err != nil {
		// Same response for unknown email and bad password.
		context.Respond(utils.NewAppError(utils.ErrInvalidCredentials, "invalid email or password", nil))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(msg.Password)); err != nil {
		context.Respond(utils.NewAppError(utils.ErrInvalidCredentials, "invalid email or password", nil))
		return
	}

	if err := a.db.UpdateUserActivity(ctx, user.ID); err != nil {
		log.Printf("UserActor: failed to update activity for %s: %v", user.ID, err)
	}

	a.metrics.AddOperationLatency("login", time.Since(startTime))
	context.Respond(user)
}

func (a *UserActor) handleGetProfile(context actor.Context, msg *GetUserProfileMsg) {
	ctx := stdctx.Background()
	user, err := a.db.GetUser(ctx, msg.UserID)
	if err != nil {
		context.Respond(err)
		return
	}
	context.Respond(user)
}
