package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/KOMKZ/cpipeline/logger"
)

func setupAuthenticator(t *testing.T, maxAttempts int) (*Authenticator, *UserRepository, *logger.TestCtxLogger) {
	t.Helper()
	users := setupUsers(t)
	ctx := context.Background()
	require.NoError(t, users.AutoMigrate(ctx))

	passwords := NewPasswordService(PasswordPolicy{MinLength: 8, MaxLength: 72}, bcrypt.MinCost)
	hash, err := passwords.HashPassword("correct-horse")
	require.NoError(t, err)
	require.NoError(t, users.Create(ctx, &User{Email: "user@example.com", HashedPassword: hash, IsActive: true}))
	require.NoError(t, users.Create(ctx, &User{Email: "off@example.com", HashedPassword: hash, IsActive: false}))

	log := logger.NewTestCtxLogger()
	cfg := LoginAttemptConfig{Enabled: true, MaxAttempts: maxAttempts, LockoutDuration: time.Minute}
	return NewAuthenticator(users, passwords, NewMemoryLoginAttemptStore(), cfg, log.CtxZapLogger), users, log
}

func TestAuthenticator_Success(t *testing.T) {
	a, _, log := setupAuthenticator(t, 3)

	user, err := a.Authenticate(context.Background(), "User@Example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", user.Email)
	assert.True(t, log.HasLog("INFO", "authentication successful"))
}

func TestAuthenticator_InvalidCredentials(t *testing.T) {
	a, _, _ := setupAuthenticator(t, 10)
	ctx := context.Background()

	_, err := a.Authenticate(ctx, "user@example.com", "wrong")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	_, err = a.Authenticate(ctx, "ghost@example.com", "correct-horse")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
}

func TestAuthenticator_Disabled(t *testing.T) {
	a, _, _ := setupAuthenticator(t, 3)

	_, err := a.Authenticate(context.Background(), "off@example.com", "correct-horse")
	assert.True(t, errors.Is(err, ErrAccountDisabled))
}

func TestAuthenticator_Lockout(t *testing.T) {
	a, _, _ := setupAuthenticator(t, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := a.Authenticate(ctx, "user@example.com", "wrong")
		require.True(t, errors.Is(err, ErrInvalidCredentials))
	}

	_, err := a.Authenticate(ctx, "user@example.com", "correct-horse")
	assert.True(t, errors.Is(err, ErrTooManyAttempts))
}

func TestAuthenticator_SuccessResetsAttempts(t *testing.T) {
	a, _, _ := setupAuthenticator(t, 2)
	ctx := context.Background()

	_, err := a.Authenticate(ctx, "user@example.com", "wrong")
	require.Error(t, err)
	_, err = a.Authenticate(ctx, "user@example.com", "correct-horse")
	require.NoError(t, err)
	_, err = a.Authenticate(ctx, "user@example.com", "wrong")
	require.True(t, errors.Is(err, ErrInvalidCredentials))

	_, err = a.Authenticate(ctx, "user@example.com", "correct-horse")
	assert.NoError(t, err)
}

func TestAuthenticator_LockoutDisabled(t *testing.T) {
	users := setupUsers(t)
	require.NoError(t, users.AutoMigrate(context.Background()))
	passwords := NewPasswordService(PasswordPolicy{}, bcrypt.MinCost)

	a := NewAuthenticator(users, passwords, NewMemoryLoginAttemptStore(), LoginAttemptConfig{}, logger.NewNop())
	for i := 0; i < 10; i++ {
		_, err := a.Authenticate(context.Background(), "ghost@example.com", "x")
		require.True(t, errors.Is(err, ErrInvalidCredentials))
	}
}
