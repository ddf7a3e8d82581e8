package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists sessions in Redis, serialized as JSON.
// Expiry is enforced twice: Redis TTLs evict records automatically, and
// Get still checks ExpiresAt in case the clock and TTL disagree.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// RedisOption configures the RedisStore.
type RedisOption func(*RedisStore)

// WithRedisPrefix sets the key prefix. Defaults to "session".
func WithRedisPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// NewRedisStore creates a Redis-backed session store.
//
// Example:
//
//	opt, _ := redis.ParseURL(os.Getenv("REDIS_URL"))
//	store := session.NewRedisStore(redis.NewClient(opt))
func NewRedisStore(client redis.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		client: client,
		prefix: "session",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// redisSession is the wire shape. Unexported lifecycle flags don't
// round-trip through JSON, so the store rebuilds them on load.
type redisSession struct {
	CreatedAt    time.Time      `json:"created_at"`
	LastActiveAt time.Time      `json:"last_active_at"`
	ExpiresAt    time.Time      `json:"expires_at"`
	UserID       *string        `json:"user_id,omitempty"`
	Values       map[string]any `json:"values"`
	ID           string         `json:"id"`
	Token        string         `json:"token"`
}

// Create persists a new session.
func (s *RedisStore) Create(ctx context.Context, sess *Session) error {
	return s.write(ctx, sess)
}

// Get retrieves a session by its cookie token.
func (s *RedisStore) Get(ctx context.Context, token string) (*Session, error) {
	data, err := s.client.Get(ctx, s.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var rs redisSession
	if err := json.Unmarshal(data, &rs); err != nil {
		return nil, err
	}

	sess := &Session{
		ID:           rs.ID,
		Token:        rs.Token,
		UserID:       rs.UserID,
		Values:       rs.Values,
		CreatedAt:    rs.CreatedAt,
		LastActiveAt: rs.LastActiveAt,
		ExpiresAt:    rs.ExpiresAt,
	}
	if sess.Values == nil {
		sess.Values = make(map[string]any)
	}
	if sess.IsExpired() {
		return nil, ErrExpired
	}
	return sess, nil
}

// Update saves changes to an existing session.
func (s *RedisStore) Update(ctx context.Context, sess *Session) error {
	return s.write(ctx, sess)
}

// Delete removes a session by its ID.
// The store is keyed by token, so deletion scans the ID index key.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	token, err := s.client.Get(ctx, s.idKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	}
	return s.client.Del(ctx, s.key(token), s.idKey(id)).Err()
}

// DeleteExpired is a no-op for Redis: TTLs evict expired sessions.
func (s *RedisStore) DeleteExpired(_ context.Context, _ time.Time) error {
	return nil
}

func (s *RedisStore) write(ctx context.Context, sess *Session) error {
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return ErrExpired
	}

	data, err := json.Marshal(redisSession{
		ID:           sess.ID,
		Token:        sess.Token,
		UserID:       sess.UserID,
		Values:       sess.Values,
		CreatedAt:    sess.CreatedAt,
		LastActiveAt: sess.LastActiveAt,
		ExpiresAt:    sess.ExpiresAt,
	})
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(sess.Token), data, ttl)
	pipe.Set(ctx, s.idKey(sess.ID), sess.Token, ttl)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) key(token string) string {
	return s.prefix + ":" + token
}

func (s *RedisStore) idKey(id string) string {
	return s.prefix + ":id:" + id
}
