package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/KOMKZ/cpipeline/settings"
)

// CORSConfig CORS middleware configuration
type CORSConfig struct {
	// AllowOrigins lists exact origins, or the single entry "*"
	AllowOrigins []string

	AllowMethods  []string
	AllowHeaders  []string
	ExposeHeaders []string

	// AllowCredentials cannot be combined with the "*" origin
	AllowCredentials bool

	// MaxAge preflight cache time in seconds
	MaxAge int
}

// DefaultCORSConfig allows every origin without credentials
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{},
		AllowCredentials: false,
		MaxAge:           43200,
	}
}

// CORSConfigFromSettings allows the BACKEND_CORS_ORIGINS origins with
// credentials, every method and every header. An empty list yields a config
// that allows no origin.
func CORSConfigFromSettings(s *settings.Settings) CORSConfig {
	origins := make([]string, 0, len(s.BackendCORSOrigins))
	for _, o := range s.BackendCORSOrigins {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			origins = append(origins, o)
		}
	}
	return CORSConfig{
		AllowOrigins:     origins,
		AllowMethods:     []string{"*"},
		AllowHeaders:     []string{"*"},
		AllowCredentials: true,
		MaxAge:           600,
	}
}

// CORS uses DefaultCORSConfig
func CORS() gin.HandlerFunc {
	return CORSWithConfig(DefaultCORSConfig())
}

// CORSWithConfig handles preflight requests and sets the CORS response headers
// for allowed origins. Requests from other origins pass through untouched.
func CORSWithConfig(cfg CORSConfig) gin.HandlerFunc {
	if cfg.AllowOrigins == nil {
		cfg.AllowOrigins = []string{"*"}
	}
	if len(cfg.AllowMethods) == 0 {
		cfg.AllowMethods = DefaultCORSConfig().AllowMethods
	}
	if len(cfg.AllowHeaders) == 0 {
		cfg.AllowHeaders = DefaultCORSConfig().AllowHeaders
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = 43200
	}

	wildcard := len(cfg.AllowOrigins) == 1 && cfg.AllowOrigins[0] == "*"
	allowed := make(map[string]struct{}, len(cfg.AllowOrigins))
	for _, o := range cfg.AllowOrigins {
		allowed[o] = struct{}{}
	}

	allowMethods := strings.Join(cfg.AllowMethods, ", ")
	allowHeaders := strings.Join(cfg.AllowHeaders, ", ")
	exposeHeaders := strings.Join(cfg.ExposeHeaders, ", ")
	maxAge := strconv.Itoa(cfg.MaxAge)

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			c.Next()
			return
		}

		allowOrigin := ""
		if wildcard && !cfg.AllowCredentials {
			allowOrigin = "*"
		} else if _, ok := allowed[origin]; ok || wildcard {
			allowOrigin = origin
		}
		if allowOrigin == "" {
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", allowOrigin)
		if allowOrigin != "*" {
			h.Add("Vary", "Origin")
		}
		if cfg.AllowCredentials {
			h.Set("Access-Control-Allow-Credentials", "true")
		}
		if exposeHeaders != "" {
			h.Set("Access-Control-Expose-Headers", exposeHeaders)
		}

		if c.Request.Method == http.MethodOptions {
			methods := allowMethods
			if allowMethods == "*" {
				if m := c.GetHeader("Access-Control-Request-Method"); m != "" {
					methods = m
				}
			}
			headers := allowHeaders
			if allowHeaders == "*" {
				headers = c.GetHeader("Access-Control-Request-Headers")
			}
			h.Set("Access-Control-Allow-Methods", methods)
			if headers != "" {
				h.Set("Access-Control-Allow-Headers", headers)
			}
			h.Set("Access-Control-Max-Age", maxAge)
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
