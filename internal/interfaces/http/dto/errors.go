package dto

import "net/http"

// Error codes emitted by the handler layer itself. Domain errors carry
// their own codes and are mapped to status codes via ErrorCodeHTTPStatus.
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "INVALID_JSON"
	// ErrCodeValidation is used when request validation fails
	ErrCodeValidation = "VALIDATION_ERROR"
	// ErrCodeUnauthorized is used when authentication is required but missing or invalid
	ErrCodeUnauthorized = "UNAUTHORIZED"
	// ErrCodeForbidden is used when the caller lacks permission
	ErrCodeForbidden = "FORBIDDEN"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeConflict is used for resource conflicts
	ErrCodeConflict = "CONFLICT"
	// ErrCodeRateLimited is used when the rate limit is exceeded
	ErrCodeRateLimited = "RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes.
// Codes produced by the domain and application layers are listed alongside
// the handler-layer codes so that HandleError can translate any of them.
var ErrorCodeHTTPStatus = map[string]int{
	// Handler-layer codes
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeConflict:     http.StatusConflict,
	ErrCodeRateLimited:  http.StatusTooManyRequests,

	// Input and state validation -> 400 Bad Request
	"INVALID_INPUT":          http.StatusBadRequest,
	"INVALID_AMOUNT":         http.StatusBadRequest,
	"EXCEEDS_BALANCE":        http.StatusBadRequest,
	"INVALID_STATUS":         http.StatusBadRequest,
	"INVALID_SALE":           http.StatusBadRequest,
	"INVALID_CUSTOMER_PHONE": http.StatusBadRequest,
	"INVALID_USERNAME":       http.StatusBadRequest,
	"INVALID_PASSWORD":       http.StatusBadRequest,
	"INVALID_ROLE":           http.StatusBadRequest,

	// Authentication -> 401 Unauthorized
	"INVALID_CREDENTIALS": http.StatusUnauthorized,
	"TOKEN_EXPIRED":       http.StatusUnauthorized,
	"TOKEN_INVALID":       http.StatusUnauthorized,
	"TOKEN_MAX_REFRESH":   http.StatusUnauthorized,
	"TOKEN_ERROR":         http.StatusUnauthorized,

	// Deactivated accounts -> 403 Forbidden
	"ACCOUNT_DEACTIVATED": http.StatusForbidden,

	// Missing resources -> 404 Not Found
	"USER_NOT_FOUND": http.StatusNotFound,

	// Conflicts -> 409 Conflict
	"ALREADY_EXISTS":       http.StatusConflict,
	"USERNAME_EXISTS":      http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,

	// Broken invariants -> 422 Unprocessable Entity
	"INVALID_STATE": http.StatusUnprocessableEntity,

	// Server-side failures -> 500 Internal Server Error
	"PASSWORD_HASH_ERROR": http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not found.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
