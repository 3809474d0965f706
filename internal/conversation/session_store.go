package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultSessionTTL bounds how long an abandoned purchase flow keeps
// its state before the shopper starts over.
const DefaultSessionTTL = 24 * time.Hour

// SessionStore persists per-phone session state between turns.
type SessionStore interface {
	Load(ctx context.Context, phone string) (Session, error)
	Save(ctx context.Context, phone string, sess Session) error
	Delete(ctx context.Context, phone string) error
}

// RedisSessionStore keeps sessions in Redis with a rolling TTL.
type RedisSessionStore struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewRedisSessionStore builds a Redis-backed store.
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	if client == nil {
		panic("conversation: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisSessionStore{redis: client, ttl: ttl}
}

// Load returns the stored session for phone, or a zero session when
// none exists.
func (s *RedisSessionStore) Load(ctx context.Context, phone string) (Session, error) {
	data, err := s.redis.Get(ctx, sessionKey(phone)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return Session{}, nil
		}
		return Session{}, fmt.Errorf("conversation: failed to load session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return Session{}, fmt.Errorf("conversation: failed to decode session: %w", err)
	}
	return sess, nil
}

// Save persists the session and resets its TTL.
func (s *RedisSessionStore) Save(ctx context.Context, phone string, sess Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("conversation: failed to marshal session: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKey(phone), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("conversation: failed to persist session: %w", err)
	}
	return nil
}

// Delete removes the session for phone.
func (s *RedisSessionStore) Delete(ctx context.Context, phone string) error {
	if err := s.redis.Del(ctx, sessionKey(phone)).Err(); err != nil {
		return fmt.Errorf("conversation: failed to delete session: %w", err)
	}
	return nil
}

func sessionKey(phone string) string {
	return fmt.Sprintf("session:%s", phone)
}

// MemorySessionStore is an in-process store for the simulator and for
// tests. TTL is not enforced.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewMemorySessionStore builds an empty in-memory store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]Session)}
}

func (s *MemorySessionStore) Load(_ context.Context, phone string) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[phone], nil
}

func (s *MemorySessionStore) Save(_ context.Context, phone string, sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[phone] = sess
	return nil
}

func (s *MemorySessionStore) Delete(_ context.Context, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, phone)
	return nil
}
