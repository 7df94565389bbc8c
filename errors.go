package supportdesk

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// Text codes exposed to API clients. These are stable identifiers; the
// human-readable messages may change.
const (
	TextCodeMissingSecret     = "MISSING_SECRET"
	TextCodeTokenMalformed    = "TOKEN_MALFORMED"
	TextCodeMissingEmailClaim = "MISSING_EMAIL_CLAIM"
	TextCodeTokenExpired      = "TOKEN_EXPIRED"
	TextCodeMissingAuthHeader = "MISSING_AUTH_HEADER"
	TextCodeMalformedHeader   = "MALFORMED_AUTH_HEADER"
	TextCodeBadScheme         = "UNSUPPORTED_AUTH_SCHEME"
	TextCodeUserNotFound      = "USER_NOT_FOUND"
	TextCodeNoActiveSession   = "NO_ACTIVE_SESSION"
	TextCodeSessionExpired    = "SESSION_EXPIRED"
	TextCodeInvalidToken      = "INVALID_TOKEN"
	TextCodeAuthStoreFailure  = "AUTH_STORE_FAILURE"
)

// ErrMissingSecret means no signing secret was configured at validation time.
// It maps to 401 like every other validation failure so callers cannot probe
// server configuration, but it is logged at error level.
var ErrMissingSecret = errors.New("signing secret is not configured", errors.CategoryAuth).
	WithTextCode(TextCodeMissingSecret).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed covers every structural or cryptographic decode failure.
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrMissingEmailClaim means the payload decoded but carries no identity claim.
var ErrMissingEmailClaim = errors.New("email not found in token payload", errors.CategoryAuth).
	WithTextCode(TextCodeMissingEmailClaim).
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired covers expired compact tokens, whether the signing library
// rejected them or the payload carried an expiry already in the past.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrMissingAuthHeader means the request carried no Authorization header at all.
var ErrMissingAuthHeader = errors.New("authorization header is required", errors.CategoryAuth).
	WithTextCode(TextCodeMissingAuthHeader).
	WithCode(errors.CodeUnauthorized)

// ErrMalformedHeader means the header did not split into scheme and token.
var ErrMalformedHeader = errors.New("invalid authorization header format", errors.CategoryAuth).
	WithTextCode(TextCodeMalformedHeader).
	WithCode(errors.CodeUnauthorized)

// ErrUnsupportedScheme means the header scheme is not the configured one.
var ErrUnsupportedScheme = errors.New("unsupported authentication scheme", errors.CategoryAuth).
	WithTextCode(TextCodeBadScheme).
	WithCode(errors.CodeUnauthorized)

// ErrUserNotFound means a validated identity has no persisted user record.
var ErrUserNotFound = errors.New("user not found", errors.CategoryNotFound).
	WithTextCode(TextCodeUserNotFound).
	WithCode(errors.CodeNotFound)

// ErrNoActiveSession means the resolved user has no session expiring in the future.
var ErrNoActiveSession = errors.New("no active session found for user", errors.CategoryAuth).
	WithTextCode(TextCodeNoActiveSession).
	WithCode(errors.CodeUnauthorized)

// ErrSessionExpired means the presented session token matched a session whose
// expiry is not in the future.
var ErrSessionExpired = errors.New("session has expired", errors.CategoryAuth).
	WithTextCode(TextCodeSessionExpired).
	WithCode(errors.CodeUnauthorized)

// ErrInvalidToken means the opaque token matched neither a session nor a user.
var ErrInvalidToken = errors.New("invalid authentication token", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidToken).
	WithCode(errors.CodeUnauthorized)

// newStoreError downgrades a storage failure before it crosses the resolver
// boundary. The original error never reaches the caller.
func newStoreError() *errors.Error {
	return errors.New("unexpected error during authentication", errors.CategoryInternal).
		WithTextCode(TextCodeAuthStoreFailure).
		WithCode(errors.CodeInternal)
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.TextCode == TextCodeTokenExpired {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.TextCode == TextCodeTokenMalformed {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
