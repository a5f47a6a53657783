package vote

import (
	"testing"

	"hivemind/internal/models"
	"hivemind/internal/utils"

	"github.com/stretchr/testify/assert"
)

func TestResolveFirstVote(t *testing.T) {
	out, err := Resolve(nil, models.VoteUp)
	assert.NoError(t, err)
	assert.Equal(t, models.VoteCreated, out.Action)
	assert.Equal(t, 1, out.Delta)
	if assert.NotNil(t, out.Next) {
		assert.Equal(t, models.VoteUp, *out.Next)
	}

	out, err = Resolve(nil, models.VoteDown)
	assert.NoError(t, err)
	assert.Equal(t, models.VoteCreated, out.Action)
	assert.Equal(t, -1, out.Delta)
}

func TestResolveToggleOff(t *testing.T) {
	up := models.VoteUp
	out, err := Resolve(&up, models.VoteUp)
	assert.NoError(t, err)
	assert.Equal(t, models.VoteRemoved, out.Action)
	assert.Equal(t, -1, out.Delta)
	assert.Nil(t, out.Next)

	down := models.VoteDown
	out, err = Resolve(&down, models.VoteDown)
	assert.NoError(t, err)
	assert.Equal(t, models.VoteRemoved, out.Action)
	assert.Equal(t, 1, out.Delta)
	assert.Nil(t, out.Next)
}

func TestResolveFlip(t *testing.T) {
	up := models.VoteUp
	out, err := Resolve(&up, models.VoteDown)
	assert.NoError(t, err)
	assert.Equal(t, models.VoteUpdated, out.Action)
	assert.Equal(t, -2, out.Delta)
	if assert.NotNil(t, out.Next) {
		assert.Equal(t, models.VoteDown, *out.Next)
	}

	down := models.VoteDown
	out, err = Resolve(&down, models.VoteUp)
	assert.NoError(t, err)
	assert.Equal(t, models.VoteUpdated, out.Action)
	assert.Equal(t, 2, out.Delta)
}

func TestResolveInvalidVote(t *testing.T) {
	_, err := Resolve(nil, models.VoteType(0))
	assert.True(t, utils.IsErrorCode(err, utils.ErrInvalidInput))

	_, err = Resolve(nil, models.VoteType(2))
	assert.True(t, utils.IsErrorCode(err, utils.ErrInvalidInput))
}

// Applying the same vote twice must always land back where it started.
func TestToggleIsInvolutive(t *testing.T) {
	for _, requested := range []models.VoteType{models.VoteUp, models.VoteDown} {
		first, err := Resolve(nil, requested)
		assert.NoError(t, err)
		second, err := Resolve(first.Next, requested)
		assert.NoError(t, err)
		assert.Equal(t, 0, first.Delta+second.Delta)
		assert.Nil(t, second.Next)
	}
}

// A flip's delta must conserve the ledger sum: counter change equals
// new value minus old value.
func TestFlipConservesLedgerSum(t *testing.T) {
	for _, existing := range []models.VoteType{models.VoteUp, models.VoteDown} {
		e := existing
		requested := models.VoteUp
		if existing == models.VoteUp {
			requested = models.VoteDown
		}
		out, err := Resolve(&e, requested)
		assert.NoError(t, err)
		assert.Equal(t, int(requested)-int(existing), out.Delta)
	}
}
