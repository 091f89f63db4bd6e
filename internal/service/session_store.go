package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// ExerciseFeedback is one exercise's outcome, accumulated across a
// session and returned in full on close.
type ExerciseFeedback struct {
	ExerciseID uint    `json:"exerciseId"`
	Points     float64 `json:"points"`
	MaxPoints  float64 `json:"maxPoints"`
	Correct    bool    `json:"correct"`
	Comment    string  `json:"comment,omitempty"`
}

// PracticeSession is the transient per-user state of one practice pass
// through a workout. It lives in the session store, never in the
// relational store, and is cleared explicitly on close.
type PracticeSession struct {
	AttemptID      string             `json:"attemptId"`
	CurrentWorkout uint               `json:"currentWorkout"`
	OfferingID     *uint              `json:"offeringId,omitempty"`
	StartedAt      time.Time          `json:"startedAt"`
	Cutoff         *time.Time         `json:"cutoff,omitempty"`
	Remaining      []uint             `json:"remaining"`
	Seen           []uint             `json:"seen"`
	Feedback       []ExerciseFeedback `json:"feedback"`
}

func (s *PracticeSession) HasSeen(exerciseID uint) bool {
	for _, id := range s.Seen {
		if id == exerciseID {
			return true
		}
	}
	return false
}

// SessionStore holds practice sessions keyed by user id. Get returns
// (nil, nil) when the user has no active session; absence is an answer.
type SessionStore interface {
	Get(ctx context.Context, userID uint) (*PracticeSession, error)
	Save(ctx context.Context, userID uint, session *PracticeSession) error
	Clear(ctx context.Context, userID uint) error
}

// RedisSessionStore keeps sessions in Redis so they survive process
// restarts and are shared across workers.
type RedisSessionStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisSessionStore{Client: client, TTL: ttl}
}

func sessionKey(userID uint) string {
	return fmt.Sprintf("practice:session:%d", userID)
}

func (s *RedisSessionStore) Get(ctx context.Context, userID uint) (*PracticeSession, error) {
	data, err := s.Client.Get(ctx, sessionKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var session PracticeSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *RedisSessionStore) Save(ctx context.Context, userID uint, session *PracticeSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.Client.Set(ctx, sessionKey(userID), data, s.TTL).Err()
}

func (s *RedisSessionStore) Clear(ctx context.Context, userID uint) error {
	return s.Client.Del(ctx, sessionKey(userID)).Err()
}

// MemorySessionStore is a process-local store for tests and single-node
// deployments without Redis.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[uint]*PracticeSession
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[uint]*PracticeSession)}
}

func (s *MemorySessionStore) Get(ctx context.Context, userID uint) (*PracticeSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[userID]
	if !ok {
		return nil, nil
	}
	copied := *session
	return &copied, nil
}

func (s *MemorySessionStore) Save(ctx context.Context, userID uint, session *PracticeSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *session
	s.sessions[userID] = &copied
	return nil
}

func (s *MemorySessionStore) Clear(ctx context.Context, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}
