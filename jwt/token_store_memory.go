package jwt

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/KOMKZ/cpipeline/logger"
)

type userRevocation struct {
	at     time.Time
	expiry time.Time
}

// MemoryTokenStore keeps revocations in process memory. Expired entries are
// pruned on write.
type MemoryTokenStore struct {
	mu            sync.Mutex
	blacklist     map[string]time.Time // jti -> expiry
	userBlacklist map[string]userRevocation
	logger        *logger.CtxZapLogger
	now           func() time.Time
}

// NewMemoryTokenStore creates an empty store
func NewMemoryTokenStore(log *logger.CtxZapLogger) *MemoryTokenStore {
	if log == nil {
		log = logger.NewNop()
	}
	return &MemoryTokenStore{
		blacklist:     make(map[string]time.Time),
		userBlacklist: make(map[string]userRevocation),
		logger:        log,
		now:           time.Now,
	}
}

func (s *MemoryTokenStore) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, ok := s.blacklist[jti]
	if !ok {
		return false, nil
	}
	if s.now().After(expiry) {
		delete(s.blacklist, jti)
		return false, nil
	}
	return true, nil
}

func (s *MemoryTokenStore) AddToBlacklist(ctx context.Context, jti string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prune()
	s.blacklist[jti] = s.now().Add(ttl)

	s.logger.DebugCtx(ctx, "token added to blacklist",
		zap.String("jti", jti),
		zap.Duration("ttl", ttl),
	)
	return nil
}

func (s *MemoryTokenStore) BlacklistUserTokens(ctx context.Context, subject string, at time.Time, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prune()
	s.userBlacklist[subject] = userRevocation{at: at, expiry: s.now().Add(ttl)}

	s.logger.InfoCtx(ctx, "user tokens blacklisted",
		zap.String("subject", subject),
		zap.Time("at", at),
	)
	return nil
}

func (s *MemoryTokenStore) IsUserBlacklisted(ctx context.Context, subject string, issuedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rev, ok := s.userBlacklist[subject]
	if !ok {
		return false, nil
	}
	if s.now().After(rev.expiry) {
		delete(s.userBlacklist, subject)
		return false, nil
	}
	return !issuedAt.After(rev.at), nil
}

// Close drops every entry
func (s *MemoryTokenStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blacklist = make(map[string]time.Time)
	s.userBlacklist = make(map[string]userRevocation)
	return nil
}

// Len returns the number of live JTI entries
func (s *MemoryTokenStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blacklist)
}

// prune must be called with mu held
func (s *MemoryTokenStore) prune() {
	now := s.now()
	for jti, expiry := range s.blacklist {
		if now.After(expiry) {
			delete(s.blacklist, jti)
		}
	}
	for subject, rev := range s.userBlacklist {
		if now.After(rev.expiry) {
			delete(s.userBlacklist, subject)
		}
	}
}
