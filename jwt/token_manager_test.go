package jwt

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KOMKZ/cpipeline/logger"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestConfig() Config {
	return Config{
		Algorithm: AlgorithmHS256,
		Secret:    "test-secret-key-for-jwt-testing",
		AccessToken: AccessTokenConfig{
			TTL:    time.Hour,
			Issuer: "cpipeline-test",
		},
		RefreshToken: RefreshTokenConfig{Enabled: true, TTL: 24 * time.Hour},
		Blacklist:    true,
		ClockSkew:    5 * time.Second,
	}
}

func newTestManager(t *testing.T, cfg Config) (*Manager, *clock, *logger.TestCtxLogger) {
	t.Helper()
	c := &clock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	log := logger.NewTestCtxLogger()
	store := NewMemoryTokenStore(log.CtxZapLogger)
	store.now = c.now
	t.Cleanup(func() { _ = store.Close() })

	m, err := NewTokenManager(cfg, store, log.CtxZapLogger)
	require.NoError(t, err)
	m.now = c.now
	return m, c, log
}

var alice = Identity{Subject: "1", UserID: 1, Email: "alice@example.com", IsSuperuser: true}

func TestNewTokenManager_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"empty secret", func(c *Config) { c.Secret = "" }, ErrSecretEmpty},
		{"unsupported algorithm", func(c *Config) { c.Algorithm = "RS256" }, ErrAlgorithmNotSupported},
		{"negative access ttl", func(c *Config) { c.AccessToken.TTL = -time.Minute }, ErrInvalidConfig},
		{"negative refresh ttl", func(c *Config) { c.RefreshToken.TTL = -time.Minute }, ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newTestConfig()
			tt.mutate(&cfg)
			_, err := NewTokenManager(cfg, NewMemoryTokenStore(nil), nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestNewTokenManager_BlacklistNeedsStore(t *testing.T) {
	_, err := NewTokenManager(newTestConfig(), nil, nil)
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	cfg := newTestConfig()
	cfg.Blacklist = false
	_, err = NewTokenManager(cfg, nil, nil)
	assert.NoError(t, err)
}

func TestManager_GenerateAndVerify(t *testing.T) {
	m, c, _ := newTestManager(t, newTestConfig())
	ctx := context.Background()

	token, err := m.GenerateAccessToken(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)

	claims, err := m.VerifyToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "1", claims.Subject)
	assert.Equal(t, uint(1), claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.True(t, claims.IsSuperuser)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.Equal(t, "cpipeline-test", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, c.t.Add(time.Hour), claims.ExpiresAt.Time.UTC())

	other, err := m.GenerateAccessToken(ctx, alice)
	require.NoError(t, err)
	otherClaims, err := m.VerifyToken(ctx, other)
	require.NoError(t, err)
	assert.NotEqual(t, claims.ID, otherClaims.ID)
}

func TestManager_GenerateRequiresSubject(t *testing.T) {
	m, _, _ := newTestManager(t, newTestConfig())

	_, err := m.GenerateAccessToken(context.Background(), Identity{})
	assert.True(t, errors.Is(err, ErrInvalidClaims))
}

func TestManager_VerifyErrors(t *testing.T) {
	m, _, _ := newTestManager(t, newTestConfig())
	ctx := context.Background()
	valid, err := m.GenerateAccessToken(ctx, alice)
	require.NoError(t, err)

	otherCfg := newTestConfig()
	otherCfg.Secret = "a-different-secret"
	foreign, _, _ := newTestManager(t, otherCfg)
	foreignToken, err := foreign.GenerateAccessToken(ctx, alice)
	require.NoError(t, err)

	issuerCfg := newTestConfig()
	issuerCfg.AccessToken.Issuer = "someone-else"
	wrongIssuer, _, _ := newTestManager(t, issuerCfg)
	wrongIssuerToken, err := wrongIssuer.GenerateAccessToken(ctx, alice)
	require.NoError(t, err)

	hs512Cfg := newTestConfig()
	hs512Cfg.Algorithm = AlgorithmHS512
	hs512, _, _ := newTestManager(t, hs512Cfg)
	hs512Token, err := hs512.GenerateAccessToken(ctx, alice)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"missing", "", ErrTokenMissing},
		{"garbage", "not-a-token", ErrTokenInvalid},
		{"tampered payload", tamper(foreignToken, valid), ErrInvalidSignature},
		{"foreign secret", foreignToken, ErrInvalidSignature},
		{"wrong issuer", wrongIssuerToken, ErrInvalidClaims},
		{"wrong algorithm", hs512Token, ErrInvalidSignature},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.VerifyToken(ctx, tt.token)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

// tamper keeps the header and payload of a and the signature of b
func tamper(a, b string) string {
	pa := strings.Split(a, ".")
	pb := strings.Split(b, ".")
	return pa[0] + "." + pa[1] + "." + pb[2]
}

func TestManager_VerifyRejectsUnknownTokenType(t *testing.T) {
	m, c, _ := newTestManager(t, newTestConfig())

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "x",
			Subject:   "1",
			Issuer:    "cpipeline-test",
			IssuedAt:  jwt.NewNumericDate(c.t),
			ExpiresAt: jwt.NewNumericDate(c.t.Add(time.Hour)),
		},
		TokenType: "session",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret-key-for-jwt-testing"))
	require.NoError(t, err)

	_, err = m.VerifyToken(context.Background(), token)
	assert.True(t, errors.Is(err, ErrInvalidClaims))
}

func TestManager_Expiry(t *testing.T) {
	m, c, log := newTestManager(t, newTestConfig())
	ctx := context.Background()

	token, err := m.GenerateAccessToken(ctx, alice)
	require.NoError(t, err)

	// within the clock skew
	c.advance(time.Hour + 3*time.Second)
	_, err = m.VerifyToken(ctx, token)
	require.NoError(t, err)

	c.advance(10 * time.Second)
	_, err = m.VerifyToken(ctx, token)
	assert.True(t, errors.Is(err, ErrTokenExpired))
	assert.True(t, log.HasLog("WARN", "token verification failed"))
}

func TestManager_RefreshToken(t *testing.T) {
	m, c, _ := newTestManager(t, newTestConfig())
	ctx := context.Background()

	pair, err := m.GenerateTokenPair(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "bearer", pair.TokenType)
	assert.Equal(t, int64(3600), pair.ExpiresIn)
	require.NotEmpty(t, pair.RefreshToken)

	// access token is no longer valid but the refresh token is
	c.advance(2 * time.Hour)
	_, err = m.VerifyToken(ctx, pair.AccessToken)
	require.True(t, errors.Is(err, ErrTokenExpired))

	access, err := m.RefreshToken(ctx, pair.RefreshToken)
	require.NoError(t, err)

	claims, err := m.VerifyAccessToken(ctx, access)
	require.NoError(t, err)
	assert.Equal(t, alice.Email, claims.Email)
	assert.True(t, claims.IsSuperuser)
}

func TestManager_TokenTypeChecks(t *testing.T) {
	m, _, _ := newTestManager(t, newTestConfig())
	ctx := context.Background()
	pair, err := m.GenerateTokenPair(ctx, alice)
	require.NoError(t, err)

	_, err = m.RefreshToken(ctx, pair.AccessToken)
	assert.True(t, errors.Is(err, ErrWrongTokenType))

	_, err = m.VerifyAccessToken(ctx, pair.RefreshToken)
	assert.True(t, errors.Is(err, ErrWrongTokenType))
}

func TestManager_RefreshDisabled(t *testing.T) {
	cfg := newTestConfig()
	cfg.RefreshToken.Enabled = false
	m, _, _ := newTestManager(t, cfg)
	ctx := context.Background()

	_, err := m.GenerateRefreshToken(ctx, alice)
	assert.True(t, errors.Is(err, ErrRefreshDisabled))

	pair, err := m.GenerateTokenPair(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, pair.RefreshToken)
}

func TestManager_RevokeToken(t *testing.T) {
	m, _, log := newTestManager(t, newTestConfig())
	ctx := context.Background()

	token, err := m.GenerateAccessToken(ctx, alice)
	require.NoError(t, err)
	other, err := m.GenerateAccessToken(ctx, alice)
	require.NoError(t, err)

	require.NoError(t, m.RevokeToken(ctx, token))
	assert.True(t, log.HasLog("INFO", "token revoked"))

	_, err = m.VerifyToken(ctx, token)
	assert.True(t, errors.Is(err, ErrTokenBlacklisted))

	_, err = m.VerifyToken(ctx, other)
	assert.NoError(t, err)
}

func TestManager_RevokeExpiredTokenIsNoop(t *testing.T) {
	m, c, _ := newTestManager(t, newTestConfig())
	ctx := context.Background()

	token, err := m.GenerateAccessToken(ctx, alice)
	require.NoError(t, err)
	c.advance(2 * time.Hour)

	require.NoError(t, m.RevokeToken(ctx, token))
	assert.Zero(t, m.tokenStore.(*MemoryTokenStore).Len())
}

func TestManager_RevokeUserTokens(t *testing.T) {
	m, c, _ := newTestManager(t, newTestConfig())
	ctx := context.Background()

	access, err := m.GenerateAccessToken(ctx, alice)
	require.NoError(t, err)
	refresh, err := m.GenerateRefreshToken(ctx, alice)
	require.NoError(t, err)
	bob, err := m.GenerateAccessToken(ctx, Identity{Subject: "2"})
	require.NoError(t, err)

	require.NoError(t, m.RevokeUserTokens(ctx, "1"))

	_, err = m.VerifyToken(ctx, access)
	assert.True(t, errors.Is(err, ErrTokenBlacklisted))
	_, err = m.RefreshToken(ctx, refresh)
	assert.True(t, errors.Is(err, ErrTokenBlacklisted))
	_, err = m.VerifyToken(ctx, bob)
	assert.NoError(t, err)

	c.advance(2 * time.Second)
	fresh, err := m.GenerateAccessToken(ctx, alice)
	require.NoError(t, err)
	_, err = m.VerifyToken(ctx, fresh)
	assert.NoError(t, err)
}

func TestManager_BlacklistDisabled(t *testing.T) {
	cfg := newTestConfig()
	cfg.Blacklist = false
	m, err := NewTokenManager(cfg, nil, nil)
	require.NoError(t, err)
	ctx := context.Background()

	token, err := m.GenerateAccessToken(ctx, alice)
	require.NoError(t, err)

	assert.True(t, errors.Is(m.RevokeToken(ctx, token), ErrBlacklistDisabled))
	assert.True(t, errors.Is(m.RevokeUserTokens(ctx, "1"), ErrBlacklistDisabled))

	_, err = m.VerifyToken(ctx, token)
	assert.NoError(t, err)
}
