// Package session holds the console's browser sessions: who is signed in,
// keyed by an opaque ID carried in a cookie. Memory and Redis stores
// implement the same interface.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound marks a session ID with no live session.
var ErrNotFound = errors.New("session not found")

// Principal is the signed-in account reference: the backend's (owner,
// name) identity.
type Principal struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
}

// ID returns the owner/name form used by the backend.
func (p Principal) ID() string {
	return p.Owner + "/" + p.Name
}

// Session is one live browser session.
type Session struct {
	ID        string    `json:"id"`
	Principal Principal `json:"principal"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store creates, fetches, and deletes sessions.
type Store interface {
	Create(ctx context.Context, p Principal) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

func newSession(p Principal) *Session {
	return &Session{
		ID:        uuid.NewString(),
		Principal: p,
		CreatedAt: time.Now().UTC(),
	}
}
