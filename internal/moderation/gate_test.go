package moderation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Kenkanekiqwe/yotaapp/internal/db"
	"github.com/Kenkanekiqwe/yotaapp/internal/models"
)

type fakeUsers struct {
	users map[int64]*models.User
}

func (f *fakeUsers) GetUserByID(userID int64) (*models.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, db.ErrNotFound
	}
	return u, nil
}

func TestCanWrite(t *testing.T) {
	gate := NewGate(&fakeUsers{users: map[int64]*models.User{
		1: {ID: 1, Username: "active"},
		2: {ID: 2, Username: "blocked", Banned: 1},
	}})

	assert.NoError(t, gate.CanWrite(1))
	assert.ErrorIs(t, gate.CanWrite(0), ErrUnauthorized)
	assert.ErrorIs(t, gate.CanWrite(2), db.ErrBanned)
	assert.ErrorIs(t, gate.CanWrite(99), db.ErrNotFound)
}
