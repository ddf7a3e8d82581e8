package session

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrations holds the schema for the sessions table.
// Apply with db.Migrate before using the store.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// PostgresStore persists sessions in PostgreSQL.
// Session values are stored as a JSONB column, so anything placed in the
// session must round-trip through JSON.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed session store.
//
// Example:
//
//	pool, _ := db.Connect(ctx, db.Config{ConnectionString: dsn})
//	store := session.NewPostgresStore(pool)
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Create persists a new session.
func (s *PostgresStore) Create(ctx context.Context, sess *Session) error {
	values, err := json.Marshal(sess.Values)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO sessions (id, token, user_id, data, created_at, last_active_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		sess.ID, sess.Token, sess.UserID, values,
		sess.CreatedAt, sess.LastActiveAt, sess.ExpiresAt,
	)
	return err
}

// Get retrieves a session by its cookie token.
func (s *PostgresStore) Get(ctx context.Context, token string) (*Session, error) {
	var (
		sess   Session
		values []byte
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, token, user_id, data, created_at, last_active_at, expires_at
		FROM sessions WHERE token = $1`, token,
	).Scan(&sess.ID, &sess.Token, &sess.UserID, &values,
		&sess.CreatedAt, &sess.LastActiveAt, &sess.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(values, &sess.Values); err != nil {
		return nil, err
	}
	if sess.Values == nil {
		sess.Values = make(map[string]any)
	}
	if sess.IsExpired() {
		return nil, ErrExpired
	}
	return &sess, nil
}

// Update saves changes to an existing session.
func (s *PostgresStore) Update(ctx context.Context, sess *Session) error {
	values, err := json.Marshal(sess.Values)
	if err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE sessions
		SET user_id = $2, data = $3, last_active_at = $4, expires_at = $5
		WHERE id = $1`,
		sess.ID, sess.UserID, values, sess.LastActiveAt, sess.ExpiresAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a session by its ID.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

// DeleteExpired removes all sessions that expired before the cutoff.
func (s *PostgresStore) DeleteExpired(ctx context.Context, cutoff time.Time) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < $1`, cutoff)
	return err
}
