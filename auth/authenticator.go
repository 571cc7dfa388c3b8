package auth

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/KOMKZ/cpipeline/logger"
)

// Authenticator verifies email/password credentials against the users table
type Authenticator struct {
	users     *UserRepository
	passwords *PasswordService
	attempts  LoginAttemptStore
	cfg       LoginAttemptConfig
	logger    *logger.CtxZapLogger
}

// NewAuthenticator creates an authenticator; attempts may be nil to disable lockout
func NewAuthenticator(users *UserRepository, passwords *PasswordService, attempts LoginAttemptStore,
	cfg LoginAttemptConfig, log *logger.CtxZapLogger) *Authenticator {
	if !cfg.Enabled {
		attempts = nil
	}
	return &Authenticator{
		users:     users,
		passwords: passwords,
		attempts:  attempts,
		cfg:       cfg,
		logger:    log,
	}
}

// Authenticate returns the user for valid credentials. Unknown emails and
// wrong passwords both yield ErrInvalidCredentials.
func (a *Authenticator) Authenticate(ctx context.Context, email, password string) (*User, error) {
	key := normalizeEmail(email)

	if a.attempts != nil {
		locked, err := a.attempts.IsLocked(ctx, key, a.cfg.MaxAttempts)
		if err == nil && locked {
			a.logger.WarnCtx(ctx, "login locked out", zap.String("email", key))
			return nil, ErrTooManyAttempts
		}
	}

	user, err := a.users.FindByEmail(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		a.recordFailure(ctx, key)
		return nil, ErrInvalidCredentials
	}

	if !a.passwords.CheckPassword(password, user.HashedPassword) {
		a.recordFailure(ctx, key)
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	if a.attempts != nil {
		_ = a.attempts.ResetAttempts(ctx, key)
	}

	a.logger.InfoCtx(ctx, "authentication successful",
		zap.Uint("user_id", user.ID),
		zap.String("email", user.Email))
	return user, nil
}

func (a *Authenticator) recordFailure(ctx context.Context, key string) {
	a.logger.WarnCtx(ctx, "authentication failed", zap.String("email", key))
	if a.attempts == nil {
		return
	}
	if err := a.attempts.IncrementAttempts(ctx, key, a.cfg.LockoutDuration); err != nil {
		a.logger.ErrorCtx(ctx, "failed to record login attempt", zap.Error(err))
	}
}
