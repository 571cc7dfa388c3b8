package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/KOMKZ/cpipeline/jwt"
)

const claimsKey = "jwt_claims"

// JWTConfig JWT middleware configuration
type JWTConfig struct {
	// Skipper bypasses the check when it returns true
	Skipper func(*gin.Context) bool

	// TokenLookup is "<source>:<name>" with source header, query or cookie
	TokenLookup string

	// TokenHeadName is the scheme stripped from header values
	TokenHeadName string

	// RequireSuperuser rejects valid tokens without is_superuser with 403
	RequireSuperuser bool

	ErrorHandler func(*gin.Context, error)
}

// DefaultJWTConfig reads "Authorization: Bearer <token>"
func DefaultJWTConfig() JWTConfig {
	return JWTConfig{
		TokenLookup:   "header:Authorization",
		TokenHeadName: "Bearer",
		ErrorHandler:  defaultJWTErrorHandler,
	}
}

// JWT uses DefaultJWTConfig
func JWT(tokens jwt.TokenManager) gin.HandlerFunc {
	return JWTWithConfig(tokens, DefaultJWTConfig())
}

// JWTWithConfig verifies an access token and stores its claims on the context
func JWTWithConfig(tokens jwt.TokenManager, config JWTConfig) gin.HandlerFunc {
	defaults := DefaultJWTConfig()
	if config.TokenLookup == "" {
		config.TokenLookup = defaults.TokenLookup
	}
	if config.TokenHeadName == "" {
		config.TokenHeadName = defaults.TokenHeadName
	}
	if config.ErrorHandler == nil {
		config.ErrorHandler = defaults.ErrorHandler
	}

	return func(c *gin.Context) {
		if config.Skipper != nil && config.Skipper(c) {
			c.Next()
			return
		}

		token, err := extractToken(c, config.TokenLookup, config.TokenHeadName)
		if err != nil {
			config.ErrorHandler(c, err)
			return
		}

		claims, err := tokens.VerifyAccessToken(c.Request.Context(), token)
		if err != nil {
			config.ErrorHandler(c, err)
			return
		}
		if config.RequireSuperuser && !claims.IsSuperuser {
			config.ErrorHandler(c, ErrForbidden)
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

func extractToken(c *gin.Context, tokenLookup, tokenHeadName string) (string, error) {
	source, name, ok := strings.Cut(tokenLookup, ":")
	if !ok {
		return "", jwt.ErrTokenMissing
	}

	var token string
	switch source {
	case "header":
		token = c.GetHeader(name)
		if tokenHeadName != "" {
			prefix := tokenHeadName + " "
			if len(token) < len(prefix) || !strings.EqualFold(token[:len(prefix)], prefix) {
				return "", jwt.ErrTokenMissing
			}
			token = token[len(prefix):]
		}
	case "query":
		token = c.Query(name)
	case "cookie":
		token, _ = c.Cookie(name)
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", jwt.ErrTokenMissing
	}
	return token, nil
}

func defaultJWTErrorHandler(c *gin.Context, err error) {
	abortWithError(c, err, ErrUnauthorized)
}

// GetClaims returns the claims stored by JWT
func GetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get(claimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	return claims, ok
}

// GetUserID returns the user_id claim
func GetUserID(c *gin.Context) (uint, bool) {
	claims, ok := GetClaims(c)
	if !ok {
		return 0, false
	}
	return claims.UserID, true
}
