package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler serves the aggregated result: 200 when healthy, 503 otherwise
func Handler(a *Aggregator) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := a.Check(c.Request.Context())
		code := http.StatusOK
		if !resp.IsHealthy() {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, resp)
	}
}

// Register mounts the handler on GET path
func Register(r gin.IRoutes, path string, a *Aggregator) {
	r.GET(path, Handler(a))
}
