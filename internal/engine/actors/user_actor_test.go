package actors

import (
	"testing"
	"time"

	"hivemind/internal/database"
	"hivemind/internal/models"
	"hivemind/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const askTimeout = 5 * time.Second

func TestUserRegistrationAndLogin(t *testing.T) {
	system := actor.NewActorSystem()
	db := database.NewMemoryDB()

	pid := system.Root.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return NewUserActor(db, utils.NewMetricsCollector())
	}))

	regResult, err := system.Root.RequestFuture(pid, &RegisterUserMsg{
		Username: "testuser",
		Email:    "test@example.com",
		Password: "password123",
	}, askTimeout).Result()
	require.NoError(t, err)

	user, ok := regResult.(*models.User)
	require.True(t, ok, "expected *models.User, got %T", regResult)
	assert.Equal(t, "testuser", user.Username)
	assert.NotEmpty(t, user.HashedPassword)
	assert.NotEqual(t, "password123", user.HashedPassword)

	// Re-registering the same ID is a no-op, not a conflict.
	repeatResult, err := system.Root.RequestFuture(pid, &RegisterUserMsg{
		ID:       user.ID,
		Username: "testuser",
		Email:    "test@example.com",
		Password: "password123",
	}, askTimeout).Result()
	require.NoError(t, err)
	repeat, ok := repeatResult.(*models.User)
	require.True(t, ok, "expected *models.User, got %T", repeatResult)
	assert.Equal(t, user.ID, repeat.ID)

	// Valid login returns the user.
	loginResult, err := system.Root.RequestFuture(pid, &LoginMsg{
		Email:    "test@example.com",
		Password: "password123",
	}, askTimeout).Result()
	require.NoError(t, err)
	loggedIn, ok := loginResult.(*models.User)
	require.True(t, ok, "expected *models.User, got %T", loginResult)
	assert.Equal(t, user.ID, loggedIn.ID)

	// Wrong password and unknown email both fail the same way.
	badResult, err := system.Root.RequestFuture(pid, &LoginMsg{
		Email:    "test@example.com",
		Password: "wrongpassword",
	}, askTimeout).Result()
	require.NoError(t, err)
	assert.True(t, utils.IsErrorCode(badResult.(*utils.AppError), utils.ErrInvalidCredentials))

	unknownResult, err := system.Root.RequestFuture(pid, &LoginMsg{
		Email:    "nobody@example.com",
		Password: "password123",
	}, askTimeout).Result()
	require.NoError(t, err)
	assert.True(t, utils.IsErrorCode(unknownResult.(*utils.AppError), utils.ErrInvalidCredentials))
}

func TestUserRegistrationValidation(t *testing.T) {
	system := actor.NewActorSystem()
	db := database.NewMemoryDB()

	pid := system.Root.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return NewUserActor(db, utils.NewMetricsCollector())
	}))

	result, err := system.Root.RequestFuture(pid, &RegisterUserMsg{
		Username: "shortpw",
		Email:    "short@example.com",
		Password: "short",
	}, askTimeout).Result()
	require.NoError(t, err)
	assert.True(t, utils.IsErrorCode(result.(*utils.AppError), utils.ErrInvalidInput))

	result, err = system.Root.RequestFuture(pid, &RegisterUserMsg{
		Email:    "nouser@example.com",
		Password: "password123",
	}, askTimeout).Result()
	require.NoError(t, err)
	assert.True(t, utils.IsErrorCode(result.(*utils.AppError), utils.ErrInvalidInput))
}
