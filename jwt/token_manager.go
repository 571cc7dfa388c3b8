package jwt

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/KOMKZ/cpipeline/logger"
)

// TokenManager issues and verifies signed tokens
type TokenManager interface {
	GenerateAccessToken(ctx context.Context, id Identity) (string, error)
	GenerateRefreshToken(ctx context.Context, id Identity) (string, error)
	GenerateTokenPair(ctx context.Context, id Identity) (*TokenPair, error)
	VerifyToken(ctx context.Context, token string) (*Claims, error)
	VerifyAccessToken(ctx context.Context, token string) (*Claims, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, error)
	RevokeToken(ctx context.Context, token string) error
	RevokeUserTokens(ctx context.Context, subject string) error
}

// TokenPair is an access token with its refresh token
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Manager is the HMAC TokenManager
type Manager struct {
	config        Config
	signingMethod jwt.SigningMethod
	key           []byte
	parser        *jwt.Parser
	tokenStore    TokenStore
	logger        *logger.CtxZapLogger
	now           func() time.Time
}

var _ TokenManager = (*Manager)(nil)

// NewTokenManager validates config and builds a Manager. tokenStore may be
// nil when the blacklist is disabled.
func NewTokenManager(config Config, tokenStore TokenStore, log *logger.CtxZapLogger) (*Manager, error) {
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Blacklist && tokenStore == nil {
		return nil, ErrInvalidConfig.WithMsgf("jwt: blacklist enabled without a token store")
	}
	if log == nil {
		log = logger.NewNop()
	}

	m := &Manager{
		config:     config,
		key:        []byte(config.Secret),
		tokenStore: tokenStore,
		logger:     log,
		now:        time.Now,
	}

	switch config.Algorithm {
	case AlgorithmHS384:
		m.signingMethod = jwt.SigningMethodHS384
	case AlgorithmHS512:
		m.signingMethod = jwt.SigningMethodHS512
	default:
		m.signingMethod = jwt.SigningMethodHS256
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{m.signingMethod.Alg()}),
		jwt.WithLeeway(config.ClockSkew),
		jwt.WithIssuer(config.AccessToken.Issuer),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return m.now() }),
	}
	if config.AccessToken.Audience != "" {
		opts = append(opts, jwt.WithAudience(config.AccessToken.Audience))
	}
	m.parser = jwt.NewParser(opts...)

	return m, nil
}

// Config returns the effective configuration
func (m *Manager) Config() Config {
	return m.config
}

// GenerateAccessToken signs an access token for id
func (m *Manager) GenerateAccessToken(ctx context.Context, id Identity) (string, error) {
	return m.generate(ctx, id, TokenTypeAccess, m.config.AccessToken.TTL)
}

// GenerateRefreshToken signs a refresh token for id
func (m *Manager) GenerateRefreshToken(ctx context.Context, id Identity) (string, error) {
	if !m.config.RefreshToken.Enabled {
		return "", ErrRefreshDisabled
	}
	return m.generate(ctx, id, TokenTypeRefresh, m.config.RefreshToken.TTL)
}

// GenerateTokenPair signs an access token and, when enabled, a refresh token
func (m *Manager) GenerateTokenPair(ctx context.Context, id Identity) (*TokenPair, error) {
	access, err := m.GenerateAccessToken(ctx, id)
	if err != nil {
		return nil, err
	}
	pair := &TokenPair{
		AccessToken: access,
		TokenType:   "bearer",
		ExpiresIn:   int64(m.config.AccessToken.TTL / time.Second),
	}
	if m.config.RefreshToken.Enabled {
		if pair.RefreshToken, err = m.GenerateRefreshToken(ctx, id); err != nil {
			return nil, err
		}
	}
	return pair, nil
}

func (m *Manager) generate(ctx context.Context, id Identity, tokenType string, ttl time.Duration) (string, error) {
	if id.Subject == "" {
		return "", ErrInvalidClaims.WithMsgf("jwt: subject is required")
	}

	now := m.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   id.Subject,
			Issuer:    m.config.AccessToken.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		TokenType:   tokenType,
		UserID:      id.UserID,
		Email:       id.Email,
		IsSuperuser: id.IsSuperuser,
	}
	if m.config.AccessToken.Audience != "" {
		claims.Audience = jwt.ClaimStrings{m.config.AccessToken.Audience}
	}

	signed, err := jwt.NewWithClaims(m.signingMethod, claims).SignedString(m.key)
	if err != nil {
		m.logger.ErrorCtx(ctx, "failed to sign token",
			zap.Error(err),
			zap.String("subject", id.Subject),
			zap.String("token_type", tokenType),
		)
		return "", ErrSignFailed.Wrap(err)
	}

	m.logger.DebugCtx(ctx, "token generated",
		zap.String("subject", id.Subject),
		zap.String("token_type", tokenType),
		zap.Duration("ttl", ttl),
	)
	return signed, nil
}

// VerifyToken checks signature, registered claims and revocation
func (m *Manager) VerifyToken(ctx context.Context, tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrTokenMissing
	}

	claims := &Claims{}
	_, err := m.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return m.key, nil
	})
	if err != nil {
		m.logger.WarnCtx(ctx, "token verification failed", zap.Error(err))
		return nil, translateParseError(err)
	}

	if claims.TokenType != TokenTypeAccess && claims.TokenType != TokenTypeRefresh {
		return nil, ErrInvalidClaims.WithMsgf("jwt: unknown token type %q", claims.TokenType)
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, ErrInvalidClaims.WithMsgf("jwt: sub and jti are required")
	}

	if m.config.Blacklist {
		if err := m.checkRevoked(ctx, claims); err != nil {
			return nil, err
		}
	}

	m.logger.DebugCtx(ctx, "token verified",
		zap.String("subject", claims.Subject),
		zap.String("token_type", claims.TokenType),
	)
	return claims, nil
}

// VerifyAccessToken is VerifyToken restricted to access tokens
func (m *Manager) VerifyAccessToken(ctx context.Context, tokenString string) (*Claims, error) {
	claims, err := m.VerifyToken(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != TokenTypeAccess {
		return nil, ErrWrongTokenType.WithMsgf("jwt: expected an access token")
	}
	return claims, nil
}

func (m *Manager) checkRevoked(ctx context.Context, claims *Claims) error {
	revoked, err := m.tokenStore.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		m.logger.ErrorCtx(ctx, "failed to check token blacklist", zap.Error(err))
		return ErrStoreFailed.Wrap(err)
	}
	if !revoked {
		revoked, err = m.tokenStore.IsUserBlacklisted(ctx, claims.Subject, claims.IssuedAtTime())
		if err != nil {
			m.logger.ErrorCtx(ctx, "failed to check user blacklist", zap.Error(err))
			return ErrStoreFailed.Wrap(err)
		}
	}
	if revoked {
		m.logger.WarnCtx(ctx, "token is revoked",
			zap.String("subject", claims.Subject),
			zap.String("jti", claims.ID),
		)
		return ErrTokenBlacklisted
	}
	return nil
}

// RefreshToken exchanges a refresh token for a new access token
func (m *Manager) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	if !m.config.RefreshToken.Enabled {
		return "", ErrRefreshDisabled
	}

	claims, err := m.VerifyToken(ctx, refreshToken)
	if err != nil {
		return "", err
	}
	if claims.TokenType != TokenTypeRefresh {
		return "", ErrWrongTokenType.WithMsgf("jwt: expected a refresh token")
	}

	access, err := m.GenerateAccessToken(ctx, claims.identity())
	if err != nil {
		return "", err
	}

	m.logger.InfoCtx(ctx, "token refreshed", zap.String("subject", claims.Subject))
	return access, nil
}

// RevokeToken blacklists a token until it would have expired. Tokens that
// are already expired are ignored.
func (m *Manager) RevokeToken(ctx context.Context, tokenString string) error {
	if !m.config.Blacklist {
		return ErrBlacklistDisabled
	}

	claims, err := m.VerifyToken(ctx, tokenString)
	if errors.Is(err, ErrTokenExpired) {
		return nil
	}
	if err != nil {
		return err
	}

	ttl := claims.ExpiresAt.Time.Sub(m.now()) + m.config.ClockSkew
	if ttl <= 0 {
		return nil
	}
	if err := m.tokenStore.AddToBlacklist(ctx, claims.ID, ttl); err != nil {
		return ErrStoreFailed.Wrap(err)
	}

	m.logger.InfoCtx(ctx, "token revoked",
		zap.String("subject", claims.Subject),
		zap.String("jti", claims.ID),
		zap.Duration("ttl", ttl),
	)
	return nil
}

// RevokeUserTokens revokes every token of subject issued up to now. iat has
// one-second precision, so tokens issued within the current second are
// revoked as well.
func (m *Manager) RevokeUserTokens(ctx context.Context, subject string) error {
	if !m.config.Blacklist {
		return ErrBlacklistDisabled
	}

	ttl := m.config.AccessToken.TTL
	if m.config.RefreshToken.Enabled && m.config.RefreshToken.TTL > ttl {
		ttl = m.config.RefreshToken.TTL
	}
	ttl += m.config.ClockSkew

	at := m.now().Truncate(time.Second)
	if err := m.tokenStore.BlacklistUserTokens(ctx, subject, at, ttl); err != nil {
		return ErrStoreFailed.Wrap(err)
	}

	m.logger.InfoCtx(ctx, "user tokens revoked", zap.String("subject", subject))
	return nil
}

func translateParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired.Wrap(err)
	case errors.Is(err, jwt.ErrTokenNotValidYet), errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return ErrTokenNotYetValid.Wrap(err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrInvalidSignature.Wrap(err)
	case errors.Is(err, jwt.ErrTokenInvalidIssuer),
		errors.Is(err, jwt.ErrTokenInvalidAudience),
		errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return ErrInvalidClaims.Wrap(err)
	default:
		return ErrTokenInvalid.Wrap(err)
	}
}
