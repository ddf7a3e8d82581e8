package session

import (
	"context"
	"time"
)

// Store defines the interface for session persistence.
// Implementations handle storage-specific operations like database
// queries or cache lookups.
type Store interface {
	// Create persists a new session.
	Create(ctx context.Context, s *Session) error

	// Get retrieves a session by its cookie token.
	// Returns ErrNotFound if the session doesn't exist.
	// Returns ErrExpired if the session has expired.
	Get(ctx context.Context, token string) (*Session, error)

	// Update saves changes to an existing session.
	Update(ctx context.Context, s *Session) error

	// Delete removes a session by its ID.
	Delete(ctx context.Context, id string) error

	// DeleteExpired removes all sessions that expired before the cutoff.
	// Intended for periodic cleanup.
	DeleteExpired(ctx context.Context, cutoff time.Time) error
}
