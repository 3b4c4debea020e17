package dto

import (
	"net/http"
	"strings"
)

// Transport-level error codes. Domain error codes pass through unchanged;
// HTTPStatusForCode decides the status line for both kinds.
const (
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeConflict     = "CONFLICT"
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodePayloadSize  = "PAYLOAD_TOO_LARGE"
)

// exactStatus maps codes that cannot be classified by prefix alone.
var exactStatus = map[string]int{
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeConflict:     http.StatusConflict,
	ErrCodeRateLimited:  http.StatusTooManyRequests,
	ErrCodePayloadSize:  http.StatusRequestEntityTooLarge,

	// Authentication
	"INVALID_CREDENTIALS": http.StatusUnauthorized,
	"TOKEN_EXPIRED":       http.StatusUnauthorized,
	"TOKEN_INVALID":       http.StatusUnauthorized,
	"TOKEN_MAX_REFRESH":   http.StatusUnauthorized,
	"TOKEN_ERROR":         http.StatusUnauthorized,
	"ACCOUNT_LOCKED":      http.StatusUnauthorized,
	"ACCOUNT_INACTIVE":    http.StatusUnauthorized,
	"ACCOUNT_DEACTIVATED": http.StatusUnauthorized,

	// Approval / PIN
	"APPROVAL_REQUIRED":    http.StatusForbidden,
	"APPROVAL_FORBIDDEN":   http.StatusForbidden,
	"APPROVAL_UNAVAILABLE": http.StatusForbidden,
	"SELF_APPROVAL":        http.StatusForbidden,
	"APPROVER_INACTIVE":    http.StatusForbidden,
	"INVALID_PIN":          http.StatusForbidden,
	"PIN_LOCKED":           http.StatusForbidden,
	"NO_PIN":               http.StatusForbidden,

	// Uniqueness and concurrency
	"ALREADY_EXISTS":       http.StatusConflict,
	"USERNAME_TAKEN":       http.StatusConflict,
	"ROLE_CODE_TAKEN":      http.StatusConflict,
	"DUPLICATE_PRODUCT":    http.StatusConflict,
	"SESSION_ALREADY_OPEN": http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,
}

// HTTPStatusForCode maps an error code to an HTTP status. Codes with an
// INVALID_ prefix are client input errors, _NOT_FOUND suffixes are lookups
// that missed; everything else is a business rule violation.
func HTTPStatusForCode(code string) int {
	if status, ok := exactStatus[code]; ok {
		return status
	}
	switch {
	case strings.HasPrefix(code, "INVALID_"):
		return http.StatusBadRequest
	case strings.HasSuffix(code, "_NOT_FOUND"):
		return http.StatusNotFound
	case strings.HasPrefix(code, "INSUFFICIENT_"):
		return http.StatusUnprocessableEntity
	case code == "":
		return http.StatusInternalServerError
	}
	return http.StatusUnprocessableEntity
}
