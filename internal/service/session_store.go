package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// SessionStore maps session ids to user ids with a sliding expiry.
type SessionStore interface {
	Save(ctx context.Context, sessionID, userID string, ttl time.Duration) error
	// Touch returns the user id and pushes the expiry out by ttl.
	Touch(ctx context.Context, sessionID string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, sessionID string) error
}

// NewSessionStore connects to Redis when redisURL is usable and falls back
// to an in-process store otherwise. The returned client is nil in the
// fallback case.
func NewSessionStore(redisURL string, logger zerolog.Logger) (SessionStore, *redis.Client) {
	if redisURL == "" {
		logger.Warn().Msg("redis: no URL configured, sessions kept in memory")
		return NewMemorySessionStore(), nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("redis: invalid URL, sessions kept in memory")
		return NewMemorySessionStore(), nil
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Msg("redis: connection failed, sessions kept in memory")
		rdb.Close()
		return NewMemorySessionStore(), nil
	}

	logger.Info().Msg("redis: connected, sessions stored in redis")
	return NewRedisSessionStore(rdb), rdb
}

// RedisSessionStore keeps sessions under session:<id> with a TTL.
type RedisSessionStore struct {
	rdb *redis.Client
}

func NewRedisSessionStore(rdb *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb}
}

func (s *RedisSessionStore) Save(ctx context.Context, sessionID, userID string, ttl time.Duration) error {
	return s.rdb.Set(ctx, sessionKey(sessionID), userID, ttl).Err()
}

func (s *RedisSessionStore) Touch(ctx context.Context, sessionID string, ttl time.Duration) (string, error) {
	userID, err := s.rdb.GetEx(ctx, sessionKey(sessionID), ttl).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrSessionNotFound
	}
	return userID, err
}

func (s *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, sessionKey(sessionID)).Err()
}

func sessionKey(sessionID string) string {
	return "session:" + sessionID
}

type memorySession struct {
	userID  string
	expires time.Time
}

// MemorySessionStore is a single-process SessionStore. Expired entries are
// dropped on access and by a periodic sweep.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]memorySession
	now      func() time.Time
}

const memorySweepInterval = 5 * time.Minute

func NewMemorySessionStore() *MemorySessionStore {
	s := &MemorySessionStore{sessions: make(map[string]memorySession), now: time.Now}
	go s.cleanup()
	return s
}

// cleanup removes expired sessions every few minutes.
func (s *MemorySessionStore) cleanup() {
	ticker := time.NewTicker(memorySweepInterval)
	defer ticker.Stop()
	for range ticker.C {
		s.sweepExpired()
	}
}

func (s *MemorySessionStore) sweepExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for id, sess := range s.sessions {
		if !now.Before(sess.expires) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

func (s *MemorySessionStore) Save(ctx context.Context, sessionID, userID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = memorySession{userID: userID, expires: s.now().Add(ttl)}
	return nil
}

func (s *MemorySessionStore) Touch(ctx context.Context, sessionID string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return "", ErrSessionNotFound
	}
	now := s.now()
	if !now.Before(sess.expires) {
		delete(s.sessions, sessionID)
		return "", ErrSessionNotFound
	}
	sess.expires = now.Add(ttl)
	s.sessions[sessionID] = sess
	return sess.userID, nil
}

func (s *MemorySessionStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}
