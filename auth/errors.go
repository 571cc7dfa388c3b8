package auth

import (
	"net/http"

	"github.com/KOMKZ/cpipeline/errcode"
)

const moduleCode = 13

func newError(code int, key, msg string, status int) *errcode.LayeredError {
	return errcode.Register(errcode.New(moduleCode, code, "auth", "error.auth."+key, msg, status))
}

// Password policy errors
var (
	ErrPasswordTooShort         = newError(1, "password_too_short", "password is too short", http.StatusBadRequest)
	ErrPasswordTooLong          = newError(2, "password_too_long", "password is too long", http.StatusBadRequest)
	ErrPasswordRequireUppercase = newError(3, "password_require_uppercase", "password must contain an uppercase letter", http.StatusBadRequest)
	ErrPasswordRequireLowercase = newError(4, "password_require_lowercase", "password must contain a lowercase letter", http.StatusBadRequest)
	ErrPasswordRequireDigit     = newError(5, "password_require_digit", "password must contain a digit", http.StatusBadRequest)
	ErrPasswordRequireSpecial   = newError(6, "password_require_special", "password must contain a special character", http.StatusBadRequest)
	ErrPasswordInBlacklist      = newError(7, "password_blacklisted", "password is too common", http.StatusBadRequest)
	ErrPasswordHash             = newError(8, "password_hash", "failed to hash password", http.StatusInternalServerError)
)

// Login errors
var (
	ErrInvalidCredentials = newError(20, "invalid_credentials", "incorrect email or password", http.StatusUnauthorized)
	ErrAccountDisabled    = newError(21, "account_disabled", "account is disabled", http.StatusForbidden)
	ErrTooManyAttempts    = newError(22, "too_many_attempts", "too many login attempts, try again later", http.StatusTooManyRequests)
	ErrUserNotFound       = newError(23, "user_not_found", "user not found", http.StatusNotFound)
)
