package jwt

import (
	"net/http"

	"github.com/KOMKZ/cpipeline/errcode"
)

const moduleCode = 14

func newError(code int, key, msg string, status int) *errcode.LayeredError {
	return errcode.Register(errcode.New(moduleCode, code, "jwt", "error.jwt."+key, msg, status))
}

// Configuration errors
var (
	ErrInvalidConfig         = newError(1, "invalid_config", "jwt: invalid config", http.StatusInternalServerError)
	ErrSecretEmpty           = newError(2, "secret_empty", "jwt: secret is empty", http.StatusInternalServerError)
	ErrAlgorithmNotSupported = newError(3, "algorithm_not_supported", "jwt: algorithm not supported", http.StatusInternalServerError)
	ErrRefreshDisabled       = newError(4, "refresh_disabled", "jwt: refresh token not enabled", http.StatusBadRequest)
	ErrBlacklistDisabled     = newError(5, "blacklist_disabled", "jwt: blacklist not enabled", http.StatusBadRequest)
	ErrSignFailed            = newError(6, "sign_failed", "jwt: failed to sign token", http.StatusInternalServerError)
	ErrStoreFailed           = newError(7, "store_failed", "jwt: token store failure", http.StatusInternalServerError)
)

// Verification errors
var (
	ErrTokenMissing      = newError(20, "token_missing", "jwt: token missing", http.StatusUnauthorized)
	ErrTokenInvalid      = newError(21, "token_invalid", "jwt: token invalid", http.StatusUnauthorized)
	ErrTokenExpired      = newError(22, "token_expired", "jwt: token expired", http.StatusUnauthorized)
	ErrTokenNotYetValid  = newError(23, "token_not_yet_valid", "jwt: token not yet valid", http.StatusUnauthorized)
	ErrInvalidSignature  = newError(24, "invalid_signature", "jwt: invalid signature", http.StatusUnauthorized)
	ErrTokenBlacklisted  = newError(25, "token_blacklisted", "jwt: token revoked", http.StatusUnauthorized)
	ErrInvalidClaims     = newError(26, "invalid_claims", "jwt: invalid claims", http.StatusUnauthorized)
	ErrWrongTokenType    = newError(27, "wrong_token_type", "jwt: wrong token type", http.StatusUnauthorized)
)
