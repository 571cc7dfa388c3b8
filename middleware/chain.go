package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/KOMKZ/cpipeline/logger"
	"github.com/KOMKZ/cpipeline/settings"
)

// FromSettings is the middleware chain for an engine serving s, outermost first
func FromSettings(s *settings.Settings, log *logger.CtxZapLogger) []gin.HandlerFunc {
	return []gin.HandlerFunc{
		Recovery(log),
		TraceID(DefaultTraceConfig()),
		RequestLog(log, RequestLogConfig{}),
		TrustedHostsFromSettings(s),
		CORSWithConfig(CORSConfigFromSettings(s)),
	}
}
