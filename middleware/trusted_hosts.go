package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/KOMKZ/cpipeline/settings"
)

// TrustedHostsFromSettings feeds ALLOWED_HOSTS to TrustedHosts
func TrustedHostsFromSettings(s *settings.Settings) gin.HandlerFunc {
	return TrustedHosts(s.AllowedHosts)
}

// TrustedHosts rejects requests whose Host header matches none of hosts with
// 400. "*" allows every host and "*.example.com" allows any subdomain of
// example.com but not example.com itself. An empty list rejects every host.
func TrustedHosts(hosts []string) gin.HandlerFunc {
	var (
		allowAll bool
		exact    = make(map[string]struct{})
		suffixes []string
	)
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		switch {
		case h == "":
		case h == "*":
			allowAll = true
		case strings.HasPrefix(h, "*."):
			suffixes = append(suffixes, h[1:])
		default:
			exact[h] = struct{}{}
		}
	}
	return func(c *gin.Context) {
		if allowAll {
			c.Next()
			return
		}

		host := hostOnly(c.Request.Host)
		if _, ok := exact[host]; ok {
			c.Next()
			return
		}
		for _, suffix := range suffixes {
			if strings.HasSuffix(host, suffix) {
				c.Next()
				return
			}
		}

		abortWithError(c, ErrInvalidHost.WithData("host", host), ErrInvalidHost)
	}
}

// hostOnly strips the port and lowercases
func hostOnly(hostport string) string {
	host := hostport
	if h, _, err := net.SplitHostPort(hostport); err == nil {
		host = h
	}
	return strings.ToLower(strings.Trim(host, "[]"))
}
