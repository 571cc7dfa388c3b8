package auth

import (
	"context"
	"sync"
	"time"
)

// LoginAttemptStore counts failed logins per account
type LoginAttemptStore interface {
	GetAttempts(ctx context.Context, key string) (int, error)
	IncrementAttempts(ctx context.Context, key string, ttl time.Duration) error
	ResetAttempts(ctx context.Context, key string) error
	IsLocked(ctx context.Context, key string, maxAttempts int) (bool, error)
	Close() error
}

// MemoryLoginAttemptStore keeps attempts in process memory. Expired records
// are pruned on write.
type MemoryLoginAttemptStore struct {
	mu       sync.RWMutex
	attempts map[string]*attemptRecord
	now      func() time.Time
}

type attemptRecord struct {
	count     int
	expiresAt time.Time
}

func NewMemoryLoginAttemptStore() *MemoryLoginAttemptStore {
	return &MemoryLoginAttemptStore{
		attempts: make(map[string]*attemptRecord),
		now:      time.Now,
	}
}

func (s *MemoryLoginAttemptStore) GetAttempts(_ context.Context, key string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.attempts[key]
	if !ok || s.now().After(record.expiresAt) {
		return 0, nil
	}
	return record.count, nil
}

// IncrementAttempts adds one failure and extends the window to ttl
func (s *MemoryLoginAttemptStore) IncrementAttempts(_ context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.pruneLocked(now)

	record, ok := s.attempts[key]
	if !ok {
		s.attempts[key] = &attemptRecord{count: 1, expiresAt: now.Add(ttl)}
		return nil
	}
	record.count++
	record.expiresAt = now.Add(ttl)
	return nil
}

func (s *MemoryLoginAttemptStore) ResetAttempts(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attempts, key)
	return nil
}

func (s *MemoryLoginAttemptStore) IsLocked(ctx context.Context, key string, maxAttempts int) (bool, error) {
	attempts, err := s.GetAttempts(ctx, key)
	if err != nil {
		return false, err
	}
	return attempts >= maxAttempts, nil
}

func (s *MemoryLoginAttemptStore) Close() error {
	return nil
}

func (s *MemoryLoginAttemptStore) pruneLocked(now time.Time) {
	for key, record := range s.attempts {
		if now.After(record.expiresAt) {
			delete(s.attempts, key)
		}
	}
}
