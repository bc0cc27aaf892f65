package accounts

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// Text codes surfaced alongside error categories so API clients and log
// pipelines can distinguish failure kinds without parsing messages.
const (
	TextCodeInvalidCreds          = "INVALID_CREDENTIALS"
	TextCodeTokenExpired          = "TOKEN_EXPIRED"
	TextCodeTokenMalformed        = "TOKEN_MALFORMED"
	TextCodeMalformedClaims       = "MALFORMED_CLAIMS"
	TextCodeUserNotFound          = "USER_NOT_FOUND"
	TextCodeForbidden             = "FORBIDDEN"
	TextCodeDuplicateIdentifier   = "DUPLICATE_IDENTIFIER"
	TextCodeRepositoryUnavailable = "REPOSITORY_UNAVAILABLE"
	TextCodeEmptyPassword         = "EMPTY_PASSWORD"
)

// ErrInvalidCredentials is returned for both unknown identifiers and
// password mismatches so login failures carry no enumeration signal.
var ErrInvalidCredentials = errors.New("the credentials provided are invalid", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired is the internal expiry failure. Callers at the boundary
// treat it the same as ErrTokenMalformed; the distinct text code exists for
// observability only.
var ErrTokenExpired = errors.New("authentication token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed covers structurally invalid, tampered, or otherwise
// unverifiable tokens.
var ErrTokenMalformed = errors.New("authentication token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrMalformedClaims is returned when a token verifies but its payload does
// not match the expected claim schema (missing or empty subject).
var ErrMalformedClaims = errors.New("token claims do not match the expected schema", errors.CategoryAuth).
	WithTextCode(TextCodeMalformedClaims).
	WithCode(errors.CodeUnauthorized)

// ErrUnauthorized is the generic protected-boundary failure: no token,
// an untrusted token, or (under strict resolution) a stale token.
var ErrUnauthorized = errors.New("could not validate credentials", errors.CategoryAuth).
	WithTextCode("UNAUTHORIZED").
	WithCode(errors.CodeUnauthorized)

// ErrUserNotFound is returned when a valid token references a user that no
// longer exists (for example, removed after the token was issued).
var ErrUserNotFound = errors.New("user not found", errors.CategoryNotFound).
	WithTextCode(TextCodeUserNotFound).
	WithCode(errors.CodeNotFound)

// ErrForbidden is returned for authenticated principals lacking privileges.
var ErrForbidden = errors.New("the user doesn't have enough privileges", errors.CategoryAuthz).
	WithTextCode(TextCodeForbidden).
	WithCode(errors.CodeForbidden)

// ErrDuplicateIdentifier is returned when a create or update would violate
// the uniqueness of email, username, or slug.
var ErrDuplicateIdentifier = errors.New("a user with this identifier already exists", errors.CategoryConflict).
	WithTextCode(TextCodeDuplicateIdentifier).
	WithCode(errors.CodeConflict)

// ErrRepositoryUnavailable surfaces exhausted transient storage failures.
var ErrRepositoryUnavailable = errors.New("user store is unavailable", errors.CategoryOperation).
	WithTextCode(TextCodeRepositoryUnavailable)

// ErrNoEmptyString rejects empty passwords before hashing.
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword)

// IsTokenInvalidError reports whether err belongs to the untrusted-token
// failure class (expired, malformed, tampered, or bad claim schema).
func IsTokenInvalidError(err error) bool {
	if err == nil {
		return false
	}
	return IsTokenExpiredError(err) ||
		IsMalformedError(err) ||
		errors.Is(err, ErrMalformedClaims)
}

// IsTokenExpiredError will check for expired tokens, including legacy
// string-matched errors from upstream JWT middleware.
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for malformed token errors.
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenMalformed) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
