// Package moderation holds the single write gate every mutating endpoint
// consults before touching the store.
package moderation

import (
	"errors"

	"github.com/Kenkanekiqwe/yotaapp/internal/db"
	"github.com/Kenkanekiqwe/yotaapp/internal/models"
)

// ErrUnauthorized means no actor identity was supplied.
var ErrUnauthorized = errors.New("authorization required")

// UserStore is the identity lookup the gate depends on.
type UserStore interface {
	GetUserByID(userID int64) (*models.User, error)
}

// Gate decides whether an actor may perform writes.
type Gate struct {
	users UserStore
}

// NewGate creates a gate over the given identity store.
func NewGate(users UserStore) *Gate {
	return &Gate{users: users}
}

// CanWrite returns nil when the actor exists and is not banned.
// It returns ErrUnauthorized for a missing actor id, db.ErrNotFound for an
// unknown one and db.ErrBanned for a banned account. Callers must not
// perform any write when an error is returned.
func (g *Gate) CanWrite(actorID int64) error {
	if actorID == 0 {
		return ErrUnauthorized
	}
	user, err := g.users.GetUserByID(actorID)
	if err != nil {
		return err
	}
	if user.Banned == 1 {
		return db.ErrBanned
	}
	return nil
}
