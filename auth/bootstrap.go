package auth

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/KOMKZ/cpipeline/logger"
	"github.com/KOMKZ/cpipeline/settings"
)

// Bootstrapper creates the first superuser from FIRST_SUPERUSER_EMAIL and
// FIRST_SUPERUSER_PASSWORD.
type Bootstrapper struct {
	users     *UserRepository
	passwords *PasswordService
	email     string
	password  string
	logger    *logger.CtxZapLogger
}

func NewBootstrapper(users *UserRepository, passwords *PasswordService, s *settings.Settings, log *logger.CtxZapLogger) *Bootstrapper {
	return &Bootstrapper{
		users:     users,
		passwords: passwords,
		email:     s.FirstSuperuserEmail,
		password:  s.FirstSuperuserPassword,
		logger:    log,
	}
}

// EnsureFirstSuperuser migrates the users table and creates the superuser
// unless an account with that email already exists. created reports whether
// a row was inserted; an existing account is returned unchanged.
func (b *Bootstrapper) EnsureFirstSuperuser(ctx context.Context) (user *User, created bool, err error) {
	if err := b.users.AutoMigrate(ctx); err != nil {
		return nil, false, err
	}

	existing, err := b.users.FindByEmail(ctx, b.email)
	if err == nil {
		b.logger.DebugCtx(ctx, "first superuser already exists", zap.String("email", existing.Email))
		return existing, false, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, false, err
	}

	if err := b.passwords.ValidatePassword(b.password); err != nil {
		return nil, false, err
	}
	hash, err := b.passwords.HashPassword(b.password)
	if err != nil {
		return nil, false, err
	}

	user = &User{
		Email:          normalizeEmail(b.email),
		HashedPassword: hash,
		FullName:       "Superuser",
		IsActive:       true,
		IsSuperuser:    true,
	}
	if err := b.users.Create(ctx, user); err != nil {
		return nil, false, err
	}

	b.logger.InfoCtx(ctx, "first superuser created",
		zap.Uint("user_id", user.ID),
		zap.String("email", user.Email))
	return user, true, nil
}
