package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"quizboard/internal/app"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Notes:
//   - Sessions own a running countdown, so the session objects stay in a local map.
//   - Redis holds a liveness key per session with the idle TTL. Each lookup
//     refreshes it; once it expires the session is closed and dropped.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) Add(session *app.Session) {
	s.mu.Lock()
	s.sessions[session.ID()] = session
	s.mu.Unlock()
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(session.ID()), "1", s.ttl).Err()
}

func (s *SessionStore) Get(sessionID string) (*app.Session, bool) {
	s.mu.RLock()
	session, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}

	ctx := context.Background()
	alive, err := s.touch(ctx, sessionID)
	if err == nil && !alive && session.Busy() {
		// a running countdown still owes a result, so the attempt stays live
		_ = s.client.Set(ctx, s.key(sessionID), "1", s.ttl).Err()
		return session, true
	}
	if err == nil && !alive {
		s.Delete(sessionID)
		session.Close()
		return nil, false
	}
	// Redis errors keep the local session usable.
	return session, true
}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	_ = s.client.Del(context.Background(), s.key(sessionID)).Err()
}

func (s *SessionStore) List() []*app.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*app.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		out = append(out, session)
	}
	return out
}

// touch refreshes the liveness key and reports whether it still existed.
func (s *SessionStore) touch(ctx context.Context, sessionID string) (bool, error) {
	if s.ttl <= 0 {
		n, err := s.client.Exists(ctx, s.key(sessionID)).Result()
		return n > 0, err
	}
	return s.client.Expire(ctx, s.key(sessionID), s.ttl).Result()
}

func (s *SessionStore) key(sessionID string) string {
	return "quiz:session:" + sessionID
}
