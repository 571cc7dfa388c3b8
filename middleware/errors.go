// Package middleware holds the gin middleware driven by cpipeline settings.
package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KOMKZ/cpipeline/errcode"
)

const moduleCode = 15

// Middleware errors
var (
	ErrInvalidHost   = errcode.Register(errcode.New(moduleCode, 1, "middleware", "error.middleware.invalid_host", "Invalid host header", http.StatusBadRequest))
	ErrUnauthorized  = errcode.Register(errcode.New(moduleCode, 2, "middleware", "error.middleware.unauthorized", "Unauthorized", http.StatusUnauthorized))
	ErrForbidden     = errcode.Register(errcode.New(moduleCode, 3, "middleware", "error.middleware.forbidden", "Forbidden", http.StatusForbidden))
	ErrInternalError = errcode.Register(errcode.New(moduleCode, 4, "middleware", "error.middleware.internal", "Internal Server Error", http.StatusInternalServerError))
)

// abortWithError writes err as the JSON error body and stops the chain.
// Errors that are not LayeredError are reported as fallback.
func abortWithError(c *gin.Context, err error, fallback *errcode.LayeredError) {
	var le *errcode.LayeredError
	if !errors.As(err, &le) {
		le = fallback
	}
	c.AbortWithStatusJSON(le.HTTPStatus(), gin.H{
		"code":    le.Code(),
		"message": le.Message(),
	})
}
