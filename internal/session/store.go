package session

import (
	"context"
)

// Store journals sessions and serializes runs that would touch the same zones.
type Store interface {
	LockTransaction(ctx context.Context, keys []string, fn func() error) error
	Save(ctx context.Context, s *Session) error
	Remove(ctx context.Context, id string) error
	List(ctx context.Context) ([]*Session, error)
	Close() error
	// Durable reports whether journaled sessions outlive the process.
	Durable() bool
}
