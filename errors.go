package users

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// The error taxonomy every operation speaks. Precondition and uniqueness
// failures both surface as HTTP 400; the text codes keep the classes
// distinguishable for callers.
var (
	// ErrInvalidInput is returned when a request fails shape validation.
	ErrInvalidInput = errors.New("invalid input", errors.CategoryValidation).
			WithTextCode("INVALID_INPUT").
			WithCode(errors.CodeBadRequest)

	// ErrAuthRequired is returned when an operation needs an authenticated caller.
	ErrAuthRequired = errors.New("authentication required", errors.CategoryAuth).
			WithTextCode("AUTH_REQUIRED").
			WithCode(errors.CodeUnauthorized)

	// ErrInvalidCredentials covers absent accounts, secret mismatches and
	// inactive accounts uniformly so login probes learn nothing.
	ErrInvalidCredentials = errors.New("invalid login or secret", errors.CategoryAuth).
				WithTextCode("INVALID_CREDENTIALS").
				WithCode(errors.CodeUnauthorized)

	// ErrForbidden is returned when the caller is authenticated but lacks privilege.
	ErrForbidden = errors.New("insufficient privileges", errors.CategoryAuthz).
			WithTextCode("FORBIDDEN").
			WithCode(errors.CodeForbidden)

	// ErrAccountNotFound is returned when the target login does not exist.
	ErrAccountNotFound = errors.New("account not found", errors.CategoryNotFound).
				WithTextCode("ACCOUNT_NOT_FOUND").
				WithCode(errors.CodeNotFound)

	// ErrAccountNotActive is the lifecycle precondition failure: the target
	// exists but is revoked.
	ErrAccountNotActive = errors.New("account is not active", errors.CategoryConflict).
				WithTextCode("ACCOUNT_NOT_ACTIVE").
				WithCode(errors.CodeBadRequest)

	// ErrLoginTaken is the login uniqueness violation.
	ErrLoginTaken = errors.New("login is already taken", errors.CategoryConflict).
			WithTextCode("LOGIN_TAKEN").
			WithCode(errors.CodeBadRequest)

	// ErrSecretMismatch is produced by secret comparers.
	ErrSecretMismatch = errors.New("secret does not match", errors.CategoryAuth).
				WithTextCode("SECRET_MISMATCH").
				WithCode(errors.CodeUnauthorized)

	ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
			WithTextCode("TOKEN_EXPIRED").
			WithCode(errors.CodeUnauthorized)

	ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
				WithTextCode("TOKEN_MALFORMED").
				WithCode(errors.CodeUnauthorized)
)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

// isUniqueViolation detects a store-level duplicate insert. The pre-check in
// CreateUser and ChangeLogin is advisory; the unique index on login is what
// actually decides races, and this is how its rejection surfaces.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

// isConflictError reports whether the error is a login uniqueness conflict.
func isConflictError(err error) bool {
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr.TextCode == ErrLoginTaken.TextCode
	}
	return false
}

// storeFailure wraps persistence errors that should surface as server errors.
func storeFailure(err error, msg string) error {
	return errors.Wrap(err, errors.CategoryInternal, msg).
		WithCode(errors.CodeInternal)
}
