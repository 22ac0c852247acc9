// Package captcha keeps short-lived proof-of-human challenges in memory.
// Challenges are single-use: the first verification attempt consumes the
// challenge whatever the answer was.
package captcha

import (
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL is how long an issued challenge stays valid.
const DefaultTTL = 5 * time.Minute

var (
	// ErrExpired means the challenge is unknown, expired or already used.
	ErrExpired = errors.New("captcha expired")
	// ErrIncorrect means the supplied answer is wrong.
	ErrIncorrect = errors.New("captcha incorrect")
)

// Challenge is a two-operand addition puzzle handed to the client.
type Challenge struct {
	ID string `json:"id"`
	A  int    `json:"a"`
	B  int    `json:"b"`
}

type entry struct {
	answer  int
	expires time.Time
}

// Store owns the challenge map and its lifecycle. Construct one at process
// start and inject it into the handlers that need it.
type Store struct {
	mu         sync.Mutex
	ttl        time.Duration
	challenges map[string]entry
	now        func() time.Time
}

// NewStore creates a store with the given TTL (DefaultTTL when ttl <= 0).
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		ttl:        ttl,
		challenges: make(map[string]entry),
		now:        time.Now,
	}
}

// Issue creates a new challenge. Expired leftovers are purged on the way.
func (s *Store) Issue() Challenge {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purgeLocked()

	c := Challenge{
		ID: uuid.NewString(),
		A:  rand.IntN(9) + 1,
		B:  rand.IntN(9) + 1,
	}
	s.challenges[c.ID] = entry{answer: c.A + c.B, expires: s.now().Add(s.ttl)}
	return c
}

// Verify consumes the challenge and checks the answer. A second attempt
// with the same id always fails with ErrExpired.
func (s *Store) Verify(id string, answer int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purgeLocked()

	e, ok := s.challenges[id]
	delete(s.challenges, id)
	if !ok || e.expires.Before(s.now()) {
		return ErrExpired
	}
	if answer != e.answer {
		return ErrIncorrect
	}
	return nil
}

func (s *Store) purgeLocked() {
	now := s.now()
	for id, e := range s.challenges {
		if e.expires.Before(now) {
			delete(s.challenges, id)
		}
	}
}
